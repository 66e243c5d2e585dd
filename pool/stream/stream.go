// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stream manages the per-token vesting streams and the escrow
// counters that tell newly arrived deposits apart from value already
// attributed to a stream.
package stream

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/streampool/streampool/slot"
)

var (
	slotStreams = slot.Position("reward-streams")
	slotEscrow  = slot.Position("reward-escrow")
)

// Stream is the vesting state of one reward token.
// Invariants: Vested <= Total, End > Start for any live stream.
type Stream struct {
	Total  *big.Int
	Vested *big.Int
	Start  uint64
	End    uint64
}

// Exists reports whether a stream has ever been created for the token.
func (s *Stream) Exists() bool {
	return s.End > 0
}

// Remainder returns the principal not yet released, zero for a
// fully vested or missing stream.
func (s *Stream) Remainder() *big.Int {
	r := new(big.Int).Sub(s.Total, s.Vested)
	if r.Sign() < 0 {
		return new(big.Int)
	}
	return r
}

// RatePerSecond returns the release rate of the stream, floored.
func (s *Stream) RatePerSecond() *big.Int {
	if !s.Exists() || s.End <= s.Start {
		return new(big.Int)
	}
	window := new(big.Int).SetUint64(s.End - s.Start)
	return new(big.Int).Div(s.Total, window)
}

// Service manages stream and escrow storage.
type Service struct {
	streams *slot.Mapping[common.Address, Stream]
	escrow  *slot.Mapping[common.Address, *big.Int]
}

func New(sctx *slot.Context) *Service {
	return &Service{
		streams: slot.NewMapping[common.Address, Stream](sctx, slotStreams),
		escrow:  slot.NewMapping[common.Address, *big.Int](sctx, slotEscrow),
	}
}

// Get returns the stream of a token, zero-normalized.
func (s *Service) Get(token common.Address) (*Stream, error) {
	stored, err := s.streams.Get(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stream")
	}
	if stored.Total == nil {
		stored.Total = new(big.Int)
	}
	if stored.Vested == nil {
		stored.Vested = new(big.Int)
	}
	return &stored, nil
}

// AdvanceVested records newly released value on the stream.
func (s *Service) AdvanceVested(token common.Address, delta *big.Int) error {
	stored, err := s.Get(token)
	if err != nil {
		return err
	}
	stored.Vested = new(big.Int).Add(stored.Vested, delta)
	if stored.Vested.Cmp(stored.Total) > 0 {
		return errors.New("vested exceeds stream total")
	}
	return s.set(token, stored)
}

// Replace folds the unvested remainder of the caught-up stream together
// with a new deposit and restarts the window over the combined amount.
// The previous stream must be fully settled against the accumulator
// before this is called, so no value is double-counted or stranded.
func (s *Service) Replace(token common.Address, deposit *big.Int, now, window uint64) (*Stream, error) {
	current, err := s.Get(token)
	if err != nil {
		return nil, err
	}
	next := &Stream{
		Total:  new(big.Int).Add(current.Remainder(), deposit),
		Vested: new(big.Int),
		Start:  now,
		End:    now + window,
	}
	if err := s.set(token, next); err != nil {
		return nil, err
	}
	if err := s.AddEscrow(token, deposit); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *Service) set(token common.Address, stored *Stream) error {
	if err := s.streams.Set(token, *stored); err != nil {
		return errors.Wrap(err, "failed to set stream")
	}
	return nil
}

// Escrow returns how much of the token's held balance is already
// attributed to some stream.
func (s *Service) Escrow(token common.Address) (*big.Int, error) {
	stored, err := s.escrow.Get(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get escrow")
	}
	if stored == nil {
		return new(big.Int), nil
	}
	return stored, nil
}

// AddEscrow attributes newly deposited value to the token's escrow.
func (s *Service) AddEscrow(token common.Address, amount *big.Int) error {
	stored, err := s.Escrow(token)
	if err != nil {
		return err
	}
	return s.setEscrow(token, new(big.Int).Add(stored, amount))
}

// SubEscrow releases escrowed value when rewards leave the pool.
func (s *Service) SubEscrow(token common.Address, amount *big.Int) error {
	stored, err := s.Escrow(token)
	if err != nil {
		return err
	}
	next := new(big.Int).Sub(stored, amount)
	if next.Sign() < 0 {
		return errors.New("escrow balance underflow")
	}
	return s.setEscrow(token, next)
}

func (s *Service) setEscrow(token common.Address, amount *big.Int) error {
	if err := s.escrow.Set(token, amount); err != nil {
		return errors.Wrap(err, "failed to set escrow")
	}
	return nil
}
