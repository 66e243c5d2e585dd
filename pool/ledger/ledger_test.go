// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streampool/streampool/kvdb"
	"github.com/streampool/streampool/pool/reverts"
	"github.com/streampool/streampool/slot"
	"github.com/streampool/streampool/state"
)

var (
	precision = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	alice     = common.BytesToAddress([]byte("alice"))
	bob       = common.BytesToAddress([]byte("bob"))
	token     = common.BytesToAddress([]byte("reward-a"))
)

func newTestService(t *testing.T) *Service {
	db, err := kvdb.NewMemLevelDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(slot.NewContext(common.BytesToAddress([]byte("pool")), state.New(db)), precision)
}

func perShare(units int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(units), precision)
}

func TestStakeAccounting(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.AddStake(alice, big.NewInt(100)))
	require.NoError(t, svc.AddStake(bob, big.NewInt(50)))
	require.NoError(t, svc.SubStake(alice, big.NewInt(30)))

	balance, err := svc.Balance(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(70), balance.Int64())

	total, err := svc.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, int64(120), total.Int64())
}

func TestSubStakeInsufficient(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.AddStake(alice, big.NewInt(10)))
	assert.ErrorIs(t, svc.SubStake(alice, big.NewInt(11)), reverts.ErrInsufficientBalance)
	assert.ErrorIs(t, svc.SubStake(bob, big.NewInt(1)), reverts.ErrInsufficientBalance)
}

func TestSumOfBalancesEqualsTotal(t *testing.T) {
	svc := newTestService(t)

	stakes := map[common.Address]int64{alice: 100, bob: 250}
	for p, amount := range stakes {
		require.NoError(t, svc.AddStake(p, big.NewInt(amount)))
	}
	require.NoError(t, svc.SubStake(bob, big.NewInt(50)))
	stakes[bob] -= 50

	sum := new(big.Int)
	for p := range stakes {
		balance, err := svc.Balance(p)
		require.NoError(t, err)
		sum.Add(sum, balance)
	}
	total, err := svc.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Cmp(total))
}

func TestSettleBanksPendingAndRebaselines(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.AddStake(alice, big.NewInt(10)))

	require.NoError(t, svc.Settle(alice, token, perShare(3)))

	record, err := svc.Settlement(alice, token)
	require.NoError(t, err)
	assert.Equal(t, int64(30), record.Accrued.Int64())
	assert.Equal(t, perShare(3), record.Debt)

	// settling again at the same accumulator adds nothing
	require.NoError(t, svc.Settle(alice, token, perShare(3)))
	record, err = svc.Settlement(alice, token)
	require.NoError(t, err)
	assert.Equal(t, int64(30), record.Accrued.Int64())
}

func TestSettleThenBalanceChangeKeepsHistory(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.AddStake(alice, big.NewInt(10)))
	require.NoError(t, svc.Settle(alice, token, perShare(2)))

	// stake change after settlement must not inflate the settled interval
	require.NoError(t, svc.AddStake(alice, big.NewInt(90)))
	require.NoError(t, svc.Settle(alice, token, perShare(3)))

	record, err := svc.Settlement(alice, token)
	require.NoError(t, err)
	// 10 * 2 from the first interval + 100 * 1 from the second
	assert.Equal(t, int64(120), record.Accrued.Int64())
}

func TestTakeAccrued(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.AddStake(alice, big.NewInt(10)))

	amount, err := svc.TakeAccrued(alice, token, perShare(5))
	require.NoError(t, err)
	assert.Equal(t, int64(50), amount.Int64())

	// drained: a second take at the same accumulator yields zero
	amount, err = svc.TakeAccrued(alice, token, perShare(5))
	require.NoError(t, err)
	assert.Equal(t, int64(0), amount.Int64())
}

func TestClaimableIsReadOnly(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.AddStake(alice, big.NewInt(10)))

	claimable, err := svc.Claimable(alice, token, perShare(4))
	require.NoError(t, err)
	assert.Equal(t, int64(40), claimable.Int64())

	record, err := svc.Settlement(alice, token)
	require.NoError(t, err)
	assert.Equal(t, int64(0), record.Accrued.Int64())
	assert.Equal(t, int64(0), record.Debt.Int64())
}

func TestSettlementsIndependentPerToken(t *testing.T) {
	svc := newTestService(t)
	other := common.BytesToAddress([]byte("reward-b"))

	require.NoError(t, svc.AddStake(alice, big.NewInt(10)))
	require.NoError(t, svc.Settle(alice, token, perShare(1)))

	record, err := svc.Settlement(alice, other)
	require.NoError(t, err)
	assert.Equal(t, int64(0), record.Accrued.Int64())
}
