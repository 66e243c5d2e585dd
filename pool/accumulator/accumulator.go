// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package accumulator keeps the per-token running total of reward
// released per unit of stake, scaled by the engine precision. The
// accumulator only ever grows; debt snapshots taken from it make
// claims pro-rata without per-participant settlement rounds.
package accumulator

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/streampool/streampool/slot"
)

var slotAccPerShare = slot.Position("acc-per-share")

// Service manages accumulator storage.
type Service struct {
	acc       *slot.Mapping[common.Address, *big.Int]
	precision *big.Int
}

func New(sctx *slot.Context, precision *big.Int) *Service {
	return &Service{
		acc:       slot.NewMapping[common.Address, *big.Int](sctx, slotAccPerShare),
		precision: precision,
	}
}

// Get returns the accumulator of a token, zero-normalized.
func (s *Service) Get(token common.Address) (*big.Int, error) {
	stored, err := s.acc.Get(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get accumulator")
	}
	if stored == nil {
		return new(big.Int), nil
	}
	return stored, nil
}

// Advance folds newly vested value into the accumulator:
//
//	accPerShare += newlyVested * precision / totalStaked
//
// The caller must guarantee totalStaked > 0; empty-pool intervals hold
// value back on the stream instead of advancing here.
func (s *Service) Advance(token common.Address, newlyVested, totalStaked *big.Int) error {
	next, err := s.Preview(token, newlyVested, totalStaked)
	if err != nil {
		return err
	}
	if err := s.acc.Set(token, next); err != nil {
		return errors.Wrap(err, "failed to set accumulator")
	}
	return nil
}

// Preview returns the accumulator value Advance would store, without
// writing it. Used by read-only claimable queries.
func (s *Service) Preview(token common.Address, newlyVested, totalStaked *big.Int) (*big.Int, error) {
	if totalStaked == nil || totalStaked.Sign() <= 0 {
		return nil, errors.New("total staked must be positive")
	}
	stored, err := s.Get(token)
	if err != nil {
		return nil, err
	}
	delta := new(big.Int).Mul(newlyVested, s.precision)
	delta.Div(delta, totalStaked)
	return new(big.Int).Add(stored, delta), nil
}
