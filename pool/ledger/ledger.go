// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger tracks staked principal per participant and the
// per-(participant, reward token) settlement records that carry claimable
// value forward across balance changes. Settlement must happen before any
// balance mutation: the accumulator math depends on the balance held
// during the elapsed interval, not after.
package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/streampool/streampool/pool/reverts"
	"github.com/streampool/streampool/pool/vesting"
	"github.com/streampool/streampool/slot"
)

var (
	slotBalances    = slot.Position("staked-balances")
	slotTotalStaked = slot.Position("total-staked")
	slotSettlements = slot.Position("reward-settlements")
)

// Settlement is one participant's standing with one reward token:
// the accumulator snapshot of the last settlement and the value already
// settled but not yet claimed.
type Settlement struct {
	Debt    *big.Int
	Accrued *big.Int
}

type pairKey struct {
	participant common.Address
	token       common.Address
}

func (k pairKey) Bytes() []byte {
	b := make([]byte, 0, 2*common.AddressLength)
	b = append(b, k.participant.Bytes()...)
	return append(b, k.token.Bytes()...)
}

// Service manages stake balances and settlement records.
type Service struct {
	balances    *slot.Mapping[common.Address, *big.Int]
	settlements *slot.Mapping[pairKey, Settlement]
	totalStaked *slot.Uint256
	precision   *big.Int
}

func New(sctx *slot.Context, precision *big.Int) *Service {
	return &Service{
		balances:    slot.NewMapping[common.Address, *big.Int](sctx, slotBalances),
		settlements: slot.NewMapping[pairKey, Settlement](sctx, slotSettlements),
		totalStaked: slot.NewUint256(sctx, slotTotalStaked),
		precision:   precision,
	}
}

// Balance returns the staked balance of a participant.
func (s *Service) Balance(participant common.Address) (*big.Int, error) {
	stored, err := s.balances.Get(participant)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	if stored == nil {
		return new(big.Int), nil
	}
	return stored, nil
}

// TotalStaked returns the aggregate staked principal.
func (s *Service) TotalStaked() (*big.Int, error) {
	return s.totalStaked.Get()
}

// AddStake increases a participant's balance and the aggregate total.
func (s *Service) AddStake(participant common.Address, amount *big.Int) error {
	balance, err := s.Balance(participant)
	if err != nil {
		return err
	}
	if err := s.setBalance(participant, new(big.Int).Add(balance, amount)); err != nil {
		return err
	}
	return s.totalStaked.Add(amount)
}

// SubStake decreases a participant's balance and the aggregate total.
func (s *Service) SubStake(participant common.Address, amount *big.Int) error {
	balance, err := s.Balance(participant)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return reverts.ErrInsufficientBalance
	}
	if err := s.setBalance(participant, new(big.Int).Sub(balance, amount)); err != nil {
		return err
	}
	return s.totalStaked.Sub(amount)
}

func (s *Service) setBalance(participant common.Address, balance *big.Int) error {
	if err := s.balances.Set(participant, balance); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return nil
}

// Settlement returns a participant's settlement record for a token,
// zero-normalized.
func (s *Service) Settlement(participant, token common.Address) (*Settlement, error) {
	stored, err := s.settlements.Get(pairKey{participant, token})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get settlement")
	}
	if stored.Debt == nil {
		stored.Debt = new(big.Int)
	}
	if stored.Accrued == nil {
		stored.Accrued = new(big.Int)
	}
	return &stored, nil
}

// Settle banks the pending reward of a participant into the accrued
// bucket and re-baselines the debt snapshot at the given accumulator.
// Must run against the balance held during the elapsed interval.
func (s *Service) Settle(participant, token common.Address, accPerShare *big.Int) error {
	record, err := s.Settlement(participant, token)
	if err != nil {
		return err
	}
	balance, err := s.Balance(participant)
	if err != nil {
		return err
	}

	pending := vesting.Pending(balance, accPerShare, record.Debt, s.precision)
	record.Accrued = new(big.Int).Add(record.Accrued, pending)
	record.Debt = new(big.Int).Set(accPerShare)
	return s.setSettlement(participant, token, record)
}

// TakeAccrued settles at the given accumulator, then drains and returns
// the full claimable amount. The record is zeroed before the caller
// moves any value out.
func (s *Service) TakeAccrued(participant, token common.Address, accPerShare *big.Int) (*big.Int, error) {
	if err := s.Settle(participant, token, accPerShare); err != nil {
		return nil, err
	}
	record, err := s.Settlement(participant, token)
	if err != nil {
		return nil, err
	}
	amount := record.Accrued
	record.Accrued = new(big.Int)
	if err := s.setSettlement(participant, token, record); err != nil {
		return nil, err
	}
	return amount, nil
}

// Claimable returns accrued plus pending at the given accumulator,
// without mutating anything.
func (s *Service) Claimable(participant, token common.Address, accPerShare *big.Int) (*big.Int, error) {
	record, err := s.Settlement(participant, token)
	if err != nil {
		return nil, err
	}
	balance, err := s.Balance(participant)
	if err != nil {
		return nil, err
	}
	pending := vesting.Pending(balance, accPerShare, record.Debt, s.precision)
	return pending.Add(pending, record.Accrued), nil
}

func (s *Service) setSettlement(participant, token common.Address, record *Settlement) error {
	if err := s.settlements.Set(pairKey{participant, token}, *record); err != nil {
		return errors.Wrap(err, "failed to set settlement")
	}
	return nil
}
