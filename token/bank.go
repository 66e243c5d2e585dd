// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token defines the engine's only view of value movement. The
// pool never decides reward amounts or sources; it just accounts for
// whatever balance the bank reports as held.
package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Bank moves token value between holders. Implementations are external
// collaborators (a chain, a custodian, a test double).
type Bank interface {
	// BalanceOf returns the holder's balance of the given token.
	BalanceOf(token, holder common.Address) (*big.Int, error)

	// Transfer moves amount of token from one holder to another.
	Transfer(token, from, to common.Address, amount *big.Int) error

	// Mint creates amount of token for the holder. Used for the pool's
	// share token.
	Mint(token, to common.Address, amount *big.Int) error

	// Burn destroys amount of token held by the holder.
	Burn(token, from common.Address, amount *big.Int) error
}
