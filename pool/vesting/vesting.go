// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vesting holds the pure fixed-point arithmetic of the engine:
// time-linear release of a stream and the accumulator/debt pending
// calculation. Everything rounds down; nothing here touches state.
package vesting

import "math/big"

// VestedAt returns how much of total has been released at time `at` for a
// stream running linearly from start to end:
//
//	vested = total * (at - start) / (end - start)
//
// The result is floored and clamped to [0, total]. Before start nothing is
// released, at or after end the full total is.
func VestedAt(total *big.Int, start, end, at uint64) *big.Int {
	if total == nil || total.Sign() <= 0 {
		return new(big.Int)
	}
	if at <= start || end <= start {
		return new(big.Int)
	}
	if at >= end {
		return new(big.Int).Set(total)
	}
	elapsed := new(big.Int).SetUint64(at - start)
	window := new(big.Int).SetUint64(end - start)

	released := new(big.Int).Mul(total, elapsed)
	return released.Div(released, window)
}

// NewlyVested returns the stream value released since `vested` was last
// recorded, clamped so the running vested amount can never regress nor
// exceed total.
func NewlyVested(total, vested *big.Int, start, end, at uint64) *big.Int {
	due := VestedAt(total, start, end, at)
	if vested != nil {
		due.Sub(due, vested)
	}
	if due.Sign() < 0 {
		return new(big.Int)
	}
	return due
}

// Pending returns the reward owed to a position given the current
// accumulator and the position's debt snapshot:
//
//	pending = floor(balance*accPerShare/precision) - floor(balance*debt/precision)
//
// A negative difference can only come from floor rounding (the accumulator
// is monotonic and debt is a prior snapshot of it) and is reported as zero.
func Pending(balance, accPerShare, debt, precision *big.Int) *big.Int {
	if balance == nil || balance.Sign() <= 0 {
		return new(big.Int)
	}
	earned := new(big.Int).Mul(balance, nonNil(accPerShare))
	earned.Div(earned, precision)

	owed := new(big.Int).Mul(balance, nonNil(debt))
	owed.Div(owed, precision)

	pending := earned.Sub(earned, owed)
	if pending.Sign() < 0 {
		return new(big.Int)
	}
	return pending
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
