// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package poolapi

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
)

// Status pool wiring and aggregate stake.
type Status struct {
	Initialized bool                  `json:"initialized"`
	StakedToken common.Address        `json:"stakedToken"`
	ShareToken  common.Address        `json:"shareToken"`
	Treasury    common.Address        `json:"treasury"`
	TokenAdmin  common.Address        `json:"tokenAdmin"`
	TotalStaked *math.HexOrDecimal256 `json:"totalStaked"`
}

// RewardToken one registry entry.
type RewardToken struct {
	Address     common.Address `json:"address"`
	Whitelisted bool           `json:"whitelisted"`
}

// StreamDetail the vesting state of one reward token.
type StreamDetail struct {
	Total         *math.HexOrDecimal256 `json:"total"`
	Vested        *math.HexOrDecimal256 `json:"vested"`
	Start         uint64                `json:"start"`
	End           uint64                `json:"end"`
	RatePerSecond *math.HexOrDecimal256 `json:"ratePerSecond"`
}

// TokenDetail registry entry with stream and escrow breakdown.
type TokenDetail struct {
	Address     common.Address        `json:"address"`
	Whitelisted bool                  `json:"whitelisted"`
	Stream      *StreamDetail         `json:"stream"`
	Escrowed    *math.HexOrDecimal256 `json:"escrowed"`
	Available   *math.HexOrDecimal256 `json:"available"`
}

// Participant staked position of one address.
type Participant struct {
	Address common.Address        `json:"address"`
	Staked  *math.HexOrDecimal256 `json:"staked"`
}

// Claimable reward owed to a participant for one token.
type Claimable struct {
	Token  common.Address        `json:"token"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// StakeRequest body of POST /pool/stakes.
type StakeRequest struct {
	Caller common.Address        `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
	Time   uint64                `json:"time"`
}

// UnstakeRequest body of POST /pool/unstakes.
type UnstakeRequest struct {
	Caller common.Address        `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
	To     common.Address        `json:"to"`
	Time   uint64                `json:"time"`
}

// ClaimRequest body of POST /pool/claims.
type ClaimRequest struct {
	Caller common.Address   `json:"caller"`
	Tokens []common.Address `json:"tokens"`
	To     common.Address   `json:"to"`
	Time   uint64           `json:"time"`
}

// ClaimResult per-token amounts paid by a claim, aligned with the
// request's token list.
type ClaimResult struct {
	Amounts []*math.HexOrDecimal256 `json:"amounts"`
}

// AccrueRequest body of POST /pool/accruals.
type AccrueRequest struct {
	Token common.Address `json:"token"`
	Time  uint64         `json:"time"`
}

// WhitelistRequest body of POST /pool/tokens and
// POST /pool/tokens/{token}/disable.
type WhitelistRequest struct {
	Caller common.Address `json:"caller"`
	Token  common.Address `json:"token"`
}

func toDecimal(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(v)
}

func fromDecimal(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return nil
	}
	return (*big.Int)(v)
}
