// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool implements the reward-accounting engine: staked principal,
// approved reward tokens, time-linear vesting streams and pro-rata claims.
// Mutating operations are atomic: a failure rolls the state back before
// anything reaches the store, and external bank effects that cannot be
// rolled back are either compensated or kept together with the state
// that accounts for them.
package pool

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/streampool/streampool/eventdb"
	"github.com/streampool/streampool/metrics"
	"github.com/streampool/streampool/pool/accumulator"
	"github.com/streampool/streampool/pool/ledger"
	"github.com/streampool/streampool/pool/registry"
	"github.com/streampool/streampool/pool/reverts"
	"github.com/streampool/streampool/pool/stream"
	"github.com/streampool/streampool/pool/vesting"
	"github.com/streampool/streampool/slot"
	"github.com/streampool/streampool/state"
	"github.com/streampool/streampool/token"
)

var logger = log.New("pkg", "pool")

var (
	slotInitialized = slot.Position("initialized")
	slotStakedToken = slot.Position("staked-token")
	slotShareToken  = slot.Position("share-token")
	slotTreasury    = slot.Position("treasury")
	slotTokenAdmin  = slot.Position("token-admin")
)

// Recorder receives one event per state change of a successful operation.
// Recording happens after the state commit and is best effort.
type Recorder interface {
	Append(*eventdb.Event) error
}

// Pool wires the engine services together and enforces the operation
// ordering: streams are caught up and positions settled before any
// balance mutation, and all state effects land before value moves
// through the bank.
type Pool struct {
	mu       sync.Mutex
	addr     common.Address
	state    *state.State
	bank     token.Bank
	recorder Recorder

	initialized *slot.Value[bool]
	stakedToken *slot.Address
	shareToken  *slot.Address
	treasury    *slot.Address
	tokenAdmin  *slot.Address

	registryService    *registry.Service
	streamService      *stream.Service
	accumulatorService *accumulator.Service
	ledgerService      *ledger.Service
}

// New create a new pool instance at the given address.
func New(addr common.Address, st *state.State, bank token.Bank) *Pool {
	sctx := slot.NewContext(addr, st)
	return &Pool{
		addr:  addr,
		state: st,
		bank:  bank,

		initialized: slot.NewValue[bool](sctx, slotInitialized),
		stakedToken: slot.NewAddress(sctx, slotStakedToken),
		shareToken:  slot.NewAddress(sctx, slotShareToken),
		treasury:    slot.NewAddress(sctx, slotTreasury),
		tokenAdmin:  slot.NewAddress(sctx, slotTokenAdmin),

		registryService:    registry.New(sctx),
		streamService:      stream.New(sctx),
		accumulatorService: accumulator.New(sctx, PrecisionFactor),
		ledgerService:      ledger.New(sctx, PrecisionFactor),
	}
}

// Address returns the address the pool holds custody under.
func (p *Pool) Address() common.Address {
	return p.addr
}

// SetRecorder attaches an event recorder. Pass nil to detach.
func (p *Pool) SetRecorder(r Recorder) {
	p.recorder = r
}

// runTx executes fn under the lock with a fresh checkpoint. On failure the
// state rolls back to the checkpoint; on success it commits to the store
// and the collected events are recorded.
func (p *Pool) runTx(fn func() ([]*eventdb.Event, error)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	checkpoint := p.state.NewCheckpoint()
	events, err := fn()
	if err != nil {
		p.state.RevertTo(checkpoint)
		return err
	}
	if err := p.state.Commit(); err != nil {
		return err
	}
	p.record(events)
	return nil
}

func (p *Pool) record(events []*eventdb.Event) {
	if p.recorder == nil {
		return
	}
	for _, ev := range events {
		if err := p.recorder.Append(ev); err != nil {
			logger.Warn("failed to record event", "kind", ev.Kind, "err", err)
		}
	}
}

func (p *Pool) requireInitialized() error {
	done, err := p.initialized.Get()
	if err != nil {
		return err
	}
	if !done {
		return reverts.ErrNotInitialized
	}
	return nil
}

// Initialize sets the token wiring of the pool and whitelists the initial
// reward tokens. It can run exactly once.
func (p *Pool) Initialize(stakedToken, shareToken, treasury, tokenAdmin common.Address, rewardTokens []common.Address) error {
	return p.runTx(func() ([]*eventdb.Event, error) {
		done, err := p.initialized.Get()
		if err != nil {
			return nil, err
		}
		if done {
			return nil, reverts.ErrAlreadyInitialized
		}
		for _, addr := range []common.Address{stakedToken, shareToken, treasury, tokenAdmin} {
			if addr.Cmp(common.Address{}) == 0 {
				return nil, reverts.ErrZeroAddress
			}
		}

		if err := p.stakedToken.Set(stakedToken); err != nil {
			return nil, err
		}
		if err := p.shareToken.Set(shareToken); err != nil {
			return nil, err
		}
		if err := p.treasury.Set(treasury); err != nil {
			return nil, err
		}
		if err := p.tokenAdmin.Set(tokenAdmin); err != nil {
			return nil, err
		}

		var events []*eventdb.Event
		for _, rewardToken := range rewardTokens {
			if rewardToken.Cmp(common.Address{}) == 0 {
				return nil, reverts.ErrZeroAddress
			}
			if rewardToken == stakedToken {
				return nil, reverts.ErrCannotModifyUnderlying
			}
			if err := p.registryService.Register(rewardToken); err != nil {
				return nil, err
			}
			events = append(events, &eventdb.Event{Kind: eventdb.KindWhitelisted, Token: rewardToken})
		}

		if err := p.initialized.Set(true); err != nil {
			return nil, err
		}
		logger.Info("pool initialized",
			"stakedToken", stakedToken,
			"shareToken", shareToken,
			"rewardTokens", len(rewardTokens))
		return events, nil
	})
}

// catchUp releases the stream value due since the last touch and folds it
// into the token's accumulator. While the pool is empty nothing is
// released; the due value stays on the stream until stake exists to
// attribute it to.
func (p *Pool) catchUp(rewardToken common.Address, now uint64) error {
	st, err := p.streamService.Get(rewardToken)
	if err != nil {
		return err
	}
	if !st.Exists() {
		return nil
	}
	totalStaked, err := p.ledgerService.TotalStaked()
	if err != nil {
		return err
	}
	if totalStaked.Sign() == 0 {
		return nil
	}
	newly := vesting.NewlyVested(st.Total, st.Vested, st.Start, st.End, now)
	if newly.Sign() == 0 {
		return nil
	}
	if err := p.accumulatorService.Advance(rewardToken, newly, totalStaked); err != nil {
		return err
	}
	return p.streamService.AdvanceVested(rewardToken, newly)
}

// settleAll catches up every token ever registered and banks the
// participant's pending rewards, so a following balance change cannot
// retroactively alter what the old balance earned. Disabled tokens are
// settled too: their already vested value stays claimable.
func (p *Pool) settleAll(participant common.Address, now uint64) error {
	tokens, err := p.registryService.Tokens()
	if err != nil {
		return err
	}
	for _, rewardToken := range tokens {
		if err := p.catchUp(rewardToken, now); err != nil {
			return err
		}
		acc, err := p.accumulatorService.Get(rewardToken)
		if err != nil {
			return err
		}
		if err := p.ledgerService.Settle(participant, rewardToken, acc); err != nil {
			return err
		}
	}
	return nil
}

// Stake moves amount of the staked token from the caller into pool
// custody and mints the same amount of share token to the caller.
func (p *Pool) Stake(caller common.Address, amount *big.Int, now uint64) error {
	return p.runTx(func() ([]*eventdb.Event, error) {
		if err := p.requireInitialized(); err != nil {
			return nil, err
		}
		if caller.Cmp(common.Address{}) == 0 {
			return nil, reverts.ErrZeroAddress
		}
		if amount == nil || amount.Sign() <= 0 {
			return nil, reverts.ErrZeroAmount
		}

		if err := p.settleAll(caller, now); err != nil {
			return nil, err
		}
		if err := p.ledgerService.AddStake(caller, amount); err != nil {
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
		if err := p.bank.Transfer(stakedToken, caller, p.addr, amount); err != nil {
			return nil, errors.Wrap(err, "failed to pull staked token")
		}
		if err := p.bank.Mint(shareToken, caller, amount); err != nil {
			// the pulled principal is already external; hand it back so
			// the state revert leaves bank and book in agreement
			if rerr := p.bank.Transfer(stakedToken, p.addr, caller, amount); rerr != nil {
				logger.Error("failed to refund principal after mint failure",
					"participant", caller, "amount", amount, "err", rerr)
			}
			return nil, errors.Wrap(err, "failed to mint share token")
		}

		logger.Debug("staked", "participant", caller, "amount", amount)
		metricOps("stake")
		p.updateStakeGauge()
		return []*eventdb.Event{{
			Time:        now,
			Kind:        eventdb.KindStaked,
			Participant: caller,
			Amount:      amount,
		}}, nil
	})
}

// Unstake burns amount of share token from the caller and returns the
// same amount of staked principal to the recipient.
func (p *Pool) Unstake(caller common.Address, amount *big.Int, to common.Address, now uint64) error {
	return p.runTx(func() ([]*eventdb.Event, error) {
		if err := p.requireInitialized(); err != nil {
			return nil, err
		}
		if caller.Cmp(common.Address{}) == 0 || to.Cmp(common.Address{}) == 0 {
			return nil, reverts.ErrZeroAddress
		}
		if amount == nil || amount.Sign() <= 0 {
			return nil, reverts.ErrZeroAmount
		}

		if err := p.settleAll(caller, now); err != nil {
			return nil, err
		}
		if err := p.ledgerService.SubStake(caller, amount); err != nil {
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
		if err := p.bank.Burn(shareToken, caller, amount); err != nil {
			return nil, errors.Wrap(err, "failed to burn share token")
		}
		if err := p.bank.Transfer(stakedToken, p.addr, to, amount); err != nil {
			// shares were already burned externally; restore them so the
			// state revert leaves bank and book in agreement
			if rerr := p.bank.Mint(shareToken, caller, amount); rerr != nil {
				logger.Error("failed to restore shares after payout failure",
					"participant", caller, "amount", amount, "err", rerr)
			}
			return nil, errors.Wrap(err, "failed to return staked token")
		}

		logger.Debug("unstaked", "participant", caller, "amount", amount, "to", to)
		metricOps("unstake")
		p.updateStakeGauge()
		return []*eventdb.Event{{
			Time:        now,
			Kind:        eventdb.KindUnstaked,
			Participant: caller,
			Amount:      amount,
		}}, nil
	})
}

// AccrueRewards turns the newly arrived balance of a whitelisted reward
// token into a fresh vesting stream. The unvested remainder of the
// previous stream folds into the new one; the new window starts at now.
func (p *Pool) AccrueRewards(rewardToken common.Address, now uint64) error {
	return p.runTx(func() ([]*eventdb.Event, error) {
		if err := p.requireInitialized(); err != nil {
			return nil, err
		}
		if rewardToken.Cmp(common.Address{}) == 0 {
			return nil, reverts.ErrZeroAddress
		}
		entry, err := p.registryService.Get(rewardToken)
		if err != nil {
			return nil, err
		}
		if !entry.Exists {
			return nil, reverts.ErrTokenNotRegistered
		}
		if !entry.Enabled {
			return nil, reverts.ErrNotWhitelisted
		}

		// release what the old window owes before folding its remainder
		if err := p.catchUp(rewardToken, now); err != nil {
			return nil, err
		}

		deposit, err := p.newlyArrived(rewardToken)
		if err != nil {
			return nil, err
		}
		if deposit.Cmp(MinRewardAmount) < 0 {
			return nil, reverts.ErrRewardTooSmall
		}

		next, err := p.streamService.Replace(rewardToken, deposit, now, StreamWindow)
		if err != nil {
			return nil, err
		}

		logger.Debug("rewards accrued",
			"token", rewardToken,
			"deposit", deposit,
			"streamTotal", next.Total,
			"end", next.End)
		metricOps("accrue")
		return []*eventdb.Event{{
			Time:   now,
			Kind:   eventdb.KindAccrued,
			Token:  rewardToken,
			Amount: deposit,
		}}, nil
	})
}

// newlyArrived diffs the held balance against escrow: whatever the bank
// holds beyond what streams already account for must be a new deposit.
func (p *Pool) newlyArrived(rewardToken common.Address) (*big.Int, error) {
	held, err := p.bank.BalanceOf(rewardToken, p.addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get held balance")
	}
	escrow, err := p.streamService.Escrow(rewardToken)
	if err != nil {
		return nil, err
	}
	deposit := new(big.Int).Sub(held, escrow)
	if deposit.Sign() < 0 {
		return nil, errors.Errorf("held balance %v below escrow %v", held, escrow)
	}
	return deposit, nil
}

// ClaimRewards pays out the caller's claimable amount of each listed
// token to the recipient. Unregistered tokens yield zero without
// failing the call. With no stake in the pool the call is a no-op
// returning zero amounts.
//
// Payouts settle token by token: each token's record is drained and its
// value paid before the next one is touched. A bank transfer that was
// executed cannot be unwound, so when a payout fails the claim commits
// the tokens already paid, undoes only the unpaid token's effects and
// returns the error. Escrow keeps matching the transfers that actually
// went out; the claimant simply retries for the rest.
func (p *Pool) ClaimRewards(caller common.Address, rewardTokens []common.Address, to common.Address, now uint64) ([]*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.requireInitialized(); err != nil {
		return nil, err
	}
	if caller.Cmp(common.Address{}) == 0 || to.Cmp(common.Address{}) == 0 {
		return nil, reverts.ErrZeroAddress
	}

	amounts := make([]*big.Int, len(rewardTokens))
	for i := range amounts {
		amounts[i] = new(big.Int)
	}
	totalStaked, err := p.ledgerService.TotalStaked()
	if err != nil {
		return nil, err
	}
	if totalStaked.Sign() == 0 {
		return amounts, nil
	}

	var events []*eventdb.Event
	finish := func(err error) error {
		if cerr := p.state.Commit(); cerr != nil {
			return cerr
		}
		p.record(events)
		return err
	}
	for i, rewardToken := range rewardTokens {
		checkpoint := p.state.NewCheckpoint()
		amount, err := p.drainClaim(caller, rewardToken, now)
		if err != nil {
			p.state.RevertTo(checkpoint)
			return nil, finish(err)
		}
		if amount.Sign() == 0 {
			continue
		}
		if err := p.bank.Transfer(rewardToken, p.addr, to, amount); err != nil {
			p.state.RevertTo(checkpoint)
			return nil, finish(errors.Wrap(err, "failed to pay out reward"))
		}
		amounts[i] = amount
		events = append(events, &eventdb.Event{
			Time:        now,
			Kind:        eventdb.KindClaimed,
			Participant: caller,
			Token:       rewardToken,
			Amount:      amount,
		})
	}
	if err := finish(nil); err != nil {
		return nil, err
	}

	logger.Debug("rewards claimed", "participant", caller, "tokens", len(rewardTokens), "to", to)
	metricOps("claim")
	return amounts, nil
}

// drainClaim banks and removes the caller's claimable amount of one
// token, releasing the matching escrow. Unregistered tokens drain zero.
func (p *Pool) drainClaim(caller, rewardToken common.Address, now uint64) (*big.Int, error) {
	entry, err := p.registryService.Get(rewardToken)
	if err != nil {
		return nil, err
	}
	if !entry.Exists {
		return new(big.Int), nil
	}
	if err := p.catchUp(rewardToken, now); err != nil {
		return nil, err
	}
	acc, err := p.accumulatorService.Get(rewardToken)
	if err != nil {
		return nil, err
	}
	amount, err := p.ledgerService.TakeAccrued(caller, rewardToken, acc)
	if err != nil {
		return nil, err
	}
	if amount.Sign() > 0 {
		if err := p.streamService.SubEscrow(rewardToken, amount); err != nil {
			return nil, err
		}
	}
	return amount, nil
}

// WhitelistToken approves a token for reward accrual. Only the token
// admin may call. A previously disabled token may come back only once
// its old stream is fully drained, so a fresh window cannot strand or
// double-count old value.
func (p *Pool) WhitelistToken(caller, rewardToken common.Address) error {
	return p.runTx(func() ([]*eventdb.Event, error) {
		if err := p.requireTokenAdmin(caller); err != nil {
			return nil, err
		}
		if rewardToken.Cmp(common.Address{}) == 0 {
			return nil, reverts.ErrZeroAddress
		}
		stakedToken, err := p.stakedToken.Get()
		if err != nil {
			return nil, err
		}
		if rewardToken == stakedToken {
			return nil, reverts.ErrCannotModifyUnderlying
		}

		entry, err := p.registryService.Get(rewardToken)
		if err != nil {
			return nil, err
		}
		if entry.Enabled {
			return nil, reverts.ErrAlreadyWhitelisted
		}
		if entry.Exists {
			pending, err := p.hasPendingRewards(rewardToken)
			if err != nil {
				return nil, err
			}
			if pending {
				return nil, reverts.ErrCannotWhitelistWithPendingRewards
			}
		}
		if err := p.registryService.Register(rewardToken); err != nil {
			return nil, err
		}

		logger.Info("token whitelisted", "token", rewardToken)
		metricOps("whitelist")
		return []*eventdb.Event{{Kind: eventdb.KindWhitelisted, Token: rewardToken}}, nil
	})
}

// hasPendingRewards reports whether any stream value of the token is
// still unvested or vested but unclaimed.
func (p *Pool) hasPendingRewards(rewardToken common.Address) (bool, error) {
	st, err := p.streamService.Get(rewardToken)
	if err != nil {
		return false, err
	}
	if st.Remainder().Sign() > 0 {
		return true, nil
	}
	escrow, err := p.streamService.Escrow(rewardToken)
	if err != nil {
		return false, err
	}
	return escrow.Sign() > 0, nil
}

// UnwhitelistToken stops future accruals for a token. Value already
// vested stays claimable; the live stream keeps vesting.
func (p *Pool) UnwhitelistToken(caller, rewardToken common.Address) error {
	return p.runTx(func() ([]*eventdb.Event, error) {
		if err := p.requireTokenAdmin(caller); err != nil {
			return nil, err
		}
		if rewardToken.Cmp(common.Address{}) == 0 {
			return nil, reverts.ErrZeroAddress
		}
		stakedToken, err := p.stakedToken.Get()
		if err != nil {
			return nil, err
		}
		if rewardToken == stakedToken {
			return nil, reverts.ErrCannotUnwhitelistUnderlying
		}
		if err := p.registryService.Disable(rewardToken); err != nil {
			return nil, err
		}

		logger.Info("token unwhitelisted", "token", rewardToken)
		metricOps("unwhitelist")
		return []*eventdb.Event{{Kind: eventdb.KindUnwhitelisted, Token: rewardToken}}, nil
	})
}

func (p *Pool) requireTokenAdmin(caller common.Address) error {
	if err := p.requireInitialized(); err != nil {
		return err
	}
	admin, err := p.tokenAdmin.Get()
	if err != nil {
		return err
	}
	if caller != admin {
		return reverts.ErrOnlyTokenAdmin
	}
	return nil
}

func metricOps(op string) {
	metrics.CounterVec("pool_ops_total", []string{"op"}).AddWithLabel(1, map[string]string{"op": op})
}

// updateStakeGauge gauges the raw staked total; amounts carry no fixed
// decimal scaling, so no unit conversion applies.
func (p *Pool) updateStakeGauge() {
	totalStaked, err := p.ledgerService.TotalStaked()
	if err != nil || !totalStaked.IsInt64() {
		return
	}
	metrics.Gauge("pool_total_staked").Set(totalStaked.Int64())
}
