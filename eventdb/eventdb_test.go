// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.BytesToAddress([]byte("alice"))
	bob   = common.BytesToAddress([]byte("bob"))
	token = common.BytesToAddress([]byte("reward-a"))
)

func newTestDB(t *testing.T) *EventDB {
	db, err := NewMem()
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func appendEvents(t *testing.T, db *EventDB) {
	events := []*Event{
		{Time: 100, Kind: KindStaked, Participant: alice, Amount: big.NewInt(1000)},
		{Time: 200, Kind: KindAccrued, Token: token, Amount: big.NewInt(700)},
		{Time: 300, Kind: KindClaimed, Participant: alice, Token: token, Amount: big.NewInt(100)},
		{Time: 400, Kind: KindStaked, Participant: bob, Amount: big.NewInt(500)},
	}
	for _, ev := range events {
		require.NoError(t, db.Append(ev))
	}
}

func TestAppendAndFilterAll(t *testing.T) {
	db := newTestDB(t)
	appendEvents(t, db)

	events, err := db.Filter(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, events, 4)

	// sequences are assigned in insertion order
	assert.Equal(t, uint64(1), events[0].Sequence)
	assert.Equal(t, KindStaked, events[0].Kind)
	assert.Equal(t, alice, events[0].Participant)
	assert.Equal(t, int64(1000), events[0].Amount.Int64())
}

func TestFilterByKind(t *testing.T) {
	db := newTestDB(t)
	appendEvents(t, db)

	kind := KindStaked
	events, err := db.Filter(context.Background(), &Filter{Kind: &kind})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, alice, events[0].Participant)
	assert.Equal(t, bob, events[1].Participant)
}

func TestFilterByParticipantAndRange(t *testing.T) {
	db := newTestDB(t)
	appendEvents(t, db)

	events, err := db.Filter(context.Background(), &Filter{
		Participant: &alice,
		Range:       &Range{From: 250, To: 500},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, KindClaimed, events[0].Kind)
	assert.Equal(t, token, events[0].Token)
}

func TestFilterOrderAndPagination(t *testing.T) {
	db := newTestDB(t)
	appendEvents(t, db)

	events, err := db.Filter(context.Background(), &Filter{
		Order:   DESC,
		Options: &Options{Offset: 1, Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(3), events[0].Sequence)
	assert.Equal(t, uint64(2), events[1].Sequence)
}

func TestBigAmountsSurviveRoundTrip(t *testing.T) {
	db := newTestDB(t)

	amount, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)
	require.NoError(t, db.Append(&Event{Time: 1, Kind: KindAccrued, Token: token, Amount: amount}))

	events, err := db.Filter(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, amount, events[0].Amount)
}
