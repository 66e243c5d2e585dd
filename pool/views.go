// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/streampool/streampool/pool/stream"
	"github.com/streampool/streampool/pool/vesting"
)

// Status is a read-only snapshot of the pool wiring.
type Status struct {
	Initialized bool
	StakedToken common.Address
	ShareToken  common.Address
	Treasury    common.Address
	TokenAdmin  common.Address
	TotalStaked *big.Int
}

// Status returns the pool wiring and aggregate stake.
func (p *Pool) Status() (*Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	initialized, err := p.initialized.Get()
	if err != nil {
		return nil, err
	}
	stakedToken, err := p.stakedToken.Get()
	if err != nil {
		return nil, err
	}
	shareToken, err := p.shareToken.Get()
	if err != nil {
		return nil, err
	}
	treasury, err := p.treasury.Get()
	if err != nil {
		return nil, err
	}
	tokenAdmin, err := p.tokenAdmin.Get()
	if err != nil {
		return nil, err
	}
	totalStaked, err := p.ledgerService.TotalStaked()
	if err != nil {
		return nil, err
	}
	return &Status{
		Initialized: initialized,
		StakedToken: stakedToken,
		ShareToken:  shareToken,
		Treasury:    treasury,
		TokenAdmin:  tokenAdmin,
		TotalStaked: totalStaked,
	}, nil
}

// StakedBalance returns the staked principal of a participant.
func (p *Pool) StakedBalance(participant common.Address) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledgerService.Balance(participant)
}

// TotalStaked returns the aggregate staked principal.
func (p *Pool) TotalStaked() (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledgerService.TotalStaked()
}

// RewardToken describes one registry entry for callers of RewardTokens.
type RewardToken struct {
	Address     common.Address
	Whitelisted bool
}

// RewardTokens returns every token ever registered, in registration
// order, with its current whitelist state.
func (p *Pool) RewardTokens() ([]*RewardToken, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tokens, err := p.registryService.Tokens()
	if err != nil {
		return nil, err
	}
	list := make([]*RewardToken, 0, len(tokens))
	for _, addr := range tokens {
		entry, err := p.registryService.Get(addr)
		if err != nil {
			return nil, err
		}
		list = append(list, &RewardToken{Address: addr, Whitelisted: entry.Enabled})
	}
	return list, nil
}

// IsWhitelisted reports whether the token currently accepts accruals.
func (p *Pool) IsWhitelisted(rewardToken common.Address) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.registryService.IsEnabled(rewardToken)
}

// ClaimableRewards returns what a claim at `now` would pay the
// participant for the token, without mutating anything.
func (p *Pool) ClaimableRewards(participant, rewardToken common.Address, now uint64) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acc, err := p.accumulatorAt(rewardToken, now)
	if err != nil {
		return nil, err
	}
	return p.ledgerService.Claimable(participant, rewardToken, acc)
}

// accumulatorAt previews the accumulator as a catch-up at `now` would
// leave it. Empty pool intervals release nothing, same as catchUp.
func (p *Pool) accumulatorAt(rewardToken common.Address, now uint64) (*big.Int, error) {
	acc, err := p.accumulatorService.Get(rewardToken)
	if err != nil {
		return nil, err
	}
	st, err := p.streamService.Get(rewardToken)
	if err != nil {
		return nil, err
	}
	if !st.Exists() {
		return acc, nil
	}
	totalStaked, err := p.ledgerService.TotalStaked()
	if err != nil {
		return nil, err
	}
	if totalStaked.Sign() == 0 {
		return acc, nil
	}
	newly := vesting.NewlyVested(st.Total, st.Vested, st.Start, st.End, now)
	if newly.Sign() == 0 {
		return acc, nil
	}
	return p.accumulatorService.Preview(rewardToken, newly, totalStaked)
}

// StreamOf returns the vesting stream of a token, zero for a token that
// never accrued.
func (p *Pool) StreamOf(rewardToken common.Address) (*stream.Stream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.streamService.Get(rewardToken)
}

// StreamEnd returns when the token's current stream stops vesting,
// zero for a token that never accrued.
func (p *Pool) StreamEnd(rewardToken common.Address) (uint64, error) {
	st, err := p.StreamOf(rewardToken)
	if err != nil {
		return 0, err
	}
	return st.End, nil
}

// RewardRatePerSecond returns the release rate of the token's current
// stream, floored.
func (p *Pool) RewardRatePerSecond(rewardToken common.Address) (*big.Int, error) {
	st, err := p.StreamOf(rewardToken)
	if err != nil {
		return nil, err
	}
	return st.RatePerSecond(), nil
}

// EscrowBalance returns how much of the token's held balance is
// attributed to streams and not yet claimed.
func (p *Pool) EscrowBalance(rewardToken common.Address) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.streamService.Escrow(rewardToken)
}

// OutstandingRewards returns the token balance newly arrived and not yet
// attributed to a stream, next to the escrowed amount.
func (p *Pool) OutstandingRewards(rewardToken common.Address) (available, escrowed *big.Int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	held, err := p.bank.BalanceOf(rewardToken, p.addr)
	if err != nil {
		return nil, nil, err
	}
	escrowed, err = p.streamService.Escrow(rewardToken)
	if err != nil {
		return nil, nil, err
	}
	available = new(big.Int).Sub(held, escrowed)
	if available.Sign() < 0 {
		available = new(big.Int)
	}
	return available, escrowed, nil
}

// Precision returns the accumulator scaling factor.
func (p *Pool) Precision() *big.Int {
	return new(big.Int).Set(PrecisionFactor)
}
