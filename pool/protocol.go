// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import "math/big"

var (
	// PrecisionFactor scales the per-share accumulator. All per-share math
	// floors against this constant.
	PrecisionFactor = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	// MinRewardAmount is the dust floor of AccrueRewards, independent of
	// token decimals. Deposits below it would let an attacker reset a
	// near-finished stream with negligible value, diluting its rate over
	// a fresh window.
	MinRewardAmount = big.NewInt(1_000_000)
)

// StreamWindow is the vesting window of a reward stream, in seconds.
const StreamWindow uint64 = 7 * 24 * 60 * 60
