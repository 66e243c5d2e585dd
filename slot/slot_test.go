// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streampool/streampool/kvdb"
	"github.com/streampool/streampool/state"
)

func newTestContext(t *testing.T) *Context {
	db, err := kvdb.NewMemLevelDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(common.BytesToAddress([]byte("engine")), state.New(db))
}

func TestUint256(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint256(ctx, Position("total"))

	v, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, int64(0), v.Int64())

	require.NoError(t, u.Set(big.NewInt(100)))
	require.NoError(t, u.Add(big.NewInt(20)))
	require.NoError(t, u.Sub(big.NewInt(30)))

	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, int64(90), v.Int64())
}

func TestAddress(t *testing.T) {
	ctx := newTestContext(t)
	a := NewAddress(ctx, Position("admin"))

	v, err := a.Get()
	require.NoError(t, err)
	assert.Equal(t, common.Address{}, v)

	want := common.BytesToAddress([]byte("someone"))
	require.NoError(t, a.Set(want))

	v, err = a.Get()
	require.NoError(t, err)
	assert.Equal(t, want, v)
}

type testEntry struct {
	Amount *big.Int
	Start  uint64
	Live   bool
}

func TestMappingStruct(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[common.Address, testEntry](ctx, Position("entries"))

	key := common.BytesToAddress([]byte("token"))

	// zero value for a never-written key
	got, err := m.Get(key)
	require.NoError(t, err)
	assert.Nil(t, got.Amount)
	assert.False(t, got.Live)

	want := testEntry{Amount: big.NewInt(7), Start: 99, Live: true}
	require.NoError(t, m.Set(key, want))

	got, err = m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, want.Amount, got.Amount)
	assert.Equal(t, want.Start, got.Start)
	assert.True(t, got.Live)
}

func TestMappingBigIntPointer(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[Index, *big.Int](ctx, Position("amounts"))

	require.NoError(t, m.Set(Index(3), big.NewInt(55)))

	got, err := m.Get(Index(3))
	require.NoError(t, err)
	assert.Equal(t, int64(55), got.Int64())
}

func TestMappingKeysDoNotCollide(t *testing.T) {
	ctx := newTestContext(t)
	a := NewMapping[Index, uint64](ctx, Position("list-a"))
	b := NewMapping[Index, uint64](ctx, Position("list-b"))

	require.NoError(t, a.Set(Index(1), 10))
	require.NoError(t, b.Set(Index(1), 20))

	va, err := a.Get(Index(1))
	require.NoError(t, err)
	vb, err := b.Get(Index(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), va)
	assert.Equal(t, uint64(20), vb)
}
