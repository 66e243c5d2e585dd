// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streampool/streampool/kvdb"
)

var (
	testAddr = common.BytesToAddress([]byte("engine"))
	testKey  = common.BytesToHash([]byte("slot"))
)

func newTestState(t *testing.T) (*State, *kvdb.LevelDB) {
	db, err := kvdb.NewMemLevelDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), db
}

func TestStorageRoundTrip(t *testing.T) {
	st, _ := newTestState(t)

	err := st.EncodeStorage(testAddr, testKey, func() ([]byte, error) {
		return rlp.EncodeToBytes(uint64(42))
	})
	require.NoError(t, err)

	var got uint64
	err = st.DecodeStorage(testAddr, testKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &got)
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got)
}

func TestEmptySlotDecodesAsNil(t *testing.T) {
	st, _ := newTestState(t)

	var seen []byte = []byte("sentinel")
	err := st.DecodeStorage(testAddr, testKey, func(raw []byte) error {
		seen = raw
		return nil
	})
	require.NoError(t, err)
	assert.Nil(t, seen)
}

func TestCheckpointRevert(t *testing.T) {
	st, _ := newTestState(t)

	st.SetRawStorage(testAddr, testKey, rlp.RawValue{0x01})

	cp := st.NewCheckpoint()
	st.SetRawStorage(testAddr, testKey, rlp.RawValue{0x02})

	raw, err := st.GetRawStorage(testAddr, testKey)
	require.NoError(t, err)
	assert.Equal(t, rlp.RawValue{0x02}, raw)

	st.RevertTo(cp)

	raw, err = st.GetRawStorage(testAddr, testKey)
	require.NoError(t, err)
	assert.Equal(t, rlp.RawValue{0x01}, raw)
}

func TestNestedCheckpoints(t *testing.T) {
	st, _ := newTestState(t)

	cp1 := st.NewCheckpoint()
	st.SetRawStorage(testAddr, testKey, rlp.RawValue{0x01})
	st.NewCheckpoint()
	st.SetRawStorage(testAddr, testKey, rlp.RawValue{0x02})

	st.RevertTo(cp1)

	raw, err := st.GetRawStorage(testAddr, testKey)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestCommitPersists(t *testing.T) {
	st, db := newTestState(t)

	st.SetRawStorage(testAddr, testKey, rlp.RawValue{0x01, 0x02})
	require.NoError(t, st.Commit())

	// a fresh state over the same store sees the committed slot
	fresh := New(db)
	raw, err := fresh.GetRawStorage(testAddr, testKey)
	require.NoError(t, err)
	assert.Equal(t, rlp.RawValue{0x01, 0x02}, raw)
}

func TestCommitClearsEmptySlots(t *testing.T) {
	st, db := newTestState(t)

	st.SetRawStorage(testAddr, testKey, rlp.RawValue{0x01})
	require.NoError(t, st.Commit())

	st.SetRawStorage(testAddr, testKey, nil)
	require.NoError(t, st.Commit())

	has, err := db.Has(append(testAddr.Bytes(), testKey.Bytes()...))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestJournalDepth(t *testing.T) {
	j := newJournal(func(k string) (int, error) { return 0, nil })

	assert.Equal(t, 1, j.Depth())
	cp := j.Push()
	assert.Equal(t, 1, cp)

	j.Put("a", 7)
	v, err := j.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	j.PopTo(cp)
	v, err = j.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}
