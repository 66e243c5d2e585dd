// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stream

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streampool/streampool/kvdb"
	"github.com/streampool/streampool/slot"
	"github.com/streampool/streampool/state"
)

var token = common.BytesToAddress([]byte("reward-a"))

func newTestService(t *testing.T) *Service {
	db, err := kvdb.NewMemLevelDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(slot.NewContext(common.BytesToAddress([]byte("pool")), state.New(db)))
}

func TestGetMissingStream(t *testing.T) {
	svc := newTestService(t)

	s, err := svc.Get(token)
	require.NoError(t, err)
	assert.False(t, s.Exists())
	assert.Equal(t, int64(0), s.Total.Int64())
	assert.Equal(t, int64(0), s.Remainder().Int64())
	assert.Equal(t, int64(0), s.RatePerSecond().Int64())
}

func TestReplaceCreatesStream(t *testing.T) {
	svc := newTestService(t)

	s, err := svc.Replace(token, big.NewInt(700), 1000, 700)
	require.NoError(t, err)
	assert.Equal(t, int64(700), s.Total.Int64())
	assert.Equal(t, int64(0), s.Vested.Int64())
	assert.Equal(t, uint64(1000), s.Start)
	assert.Equal(t, uint64(1700), s.End)
	assert.Equal(t, int64(1), s.RatePerSecond().Int64())

	escrow, err := svc.Escrow(token)
	require.NoError(t, err)
	assert.Equal(t, int64(700), escrow.Int64())
}

func TestReplaceFoldsRemainder(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Replace(token, big.NewInt(700), 1000, 700)
	require.NoError(t, err)

	// half the stream vested before the next deposit arrives
	require.NoError(t, svc.AdvanceVested(token, big.NewInt(350)))

	s, err := svc.Replace(token, big.NewInt(100), 1350, 700)
	require.NoError(t, err)
	assert.Equal(t, int64(450), s.Total.Int64()) // 350 unvested + 100 new
	assert.Equal(t, int64(0), s.Vested.Int64())
	assert.Equal(t, uint64(1350), s.Start)
	assert.Equal(t, uint64(2050), s.End)

	// escrow grows only by the new deposit
	escrow, err := svc.Escrow(token)
	require.NoError(t, err)
	assert.Equal(t, int64(800), escrow.Int64())
}

func TestAdvanceVestedBounds(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Replace(token, big.NewInt(100), 0, 10)
	require.NoError(t, err)

	require.NoError(t, svc.AdvanceVested(token, big.NewInt(100)))

	s, err := svc.Get(token)
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.Remainder().Int64())

	assert.Error(t, svc.AdvanceVested(token, big.NewInt(1)))
}

func TestEscrowAccounting(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.AddEscrow(token, big.NewInt(500)))
	require.NoError(t, svc.SubEscrow(token, big.NewInt(200)))

	escrow, err := svc.Escrow(token)
	require.NoError(t, err)
	assert.Equal(t, int64(300), escrow.Int64())

	assert.Error(t, svc.SubEscrow(token, big.NewInt(301)))
}

func TestStreamsAreIndependentPerToken(t *testing.T) {
	svc := newTestService(t)
	other := common.BytesToAddress([]byte("reward-b"))

	_, err := svc.Replace(token, big.NewInt(100), 0, 10)
	require.NoError(t, err)

	s, err := svc.Get(other)
	require.NoError(t, err)
	assert.False(t, s.Exists())
}
