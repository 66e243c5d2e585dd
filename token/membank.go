// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var _ Bank = (*MemBank)(nil)

// MemBank is an in-memory Bank, used by tests and the solo mode of the
// command line tool.
type MemBank struct {
	mu       sync.Mutex
	balances map[common.Address]map[common.Address]*big.Int
}

func NewMemBank() *MemBank {
	return &MemBank{
		balances: make(map[common.Address]map[common.Address]*big.Int),
	}
}

func (b *MemBank) balance(token, holder common.Address) *big.Int {
	holders, ok := b.balances[token]
	if !ok {
		return new(big.Int)
	}
	balance, ok := holders[holder]
	if !ok {
		return new(big.Int)
	}
	return balance
}

func (b *MemBank) setBalance(token, holder common.Address, balance *big.Int) {
	holders, ok := b.balances[token]
	if !ok {
		holders = make(map[common.Address]*big.Int)
		b.balances[token] = holders
	}
	holders[holder] = balance
}

// BalanceOf returns the holder's balance of the given token.
func (b *MemBank) BalanceOf(token, holder common.Address) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return new(big.Int).Set(b.balance(token, holder)), nil
}

// Transfer moves amount of token from one holder to another.
func (b *MemBank) Transfer(token, from, to common.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("negative transfer amount")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	fromBalance := b.balance(token, from)
	if fromBalance.Cmp(amount) < 0 {
		return errors.Errorf("transfer exceeds balance: have %s, want %s", fromBalance, amount)
	}
	b.setBalance(token, from, new(big.Int).Sub(fromBalance, amount))
	b.setBalance(token, to, new(big.Int).Add(b.balance(token, to), amount))
	return nil
}

// Mint creates amount of token for the holder.
func (b *MemBank) Mint(token, to common.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("negative mint amount")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.setBalance(token, to, new(big.Int).Add(b.balance(token, to), amount))
	return nil
}

// Burn destroys amount of token held by the holder.
func (b *MemBank) Burn(token, from common.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("negative burn amount")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	balance := b.balance(token, from)
	if balance.Cmp(amount) < 0 {
		return errors.Errorf("burn exceeds balance: have %s, want %s", balance, amount)
	}
	b.setBalance(token, from, new(big.Int).Sub(balance, amount))
	return nil
}
