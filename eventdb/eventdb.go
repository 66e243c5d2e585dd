// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb records pool operations in a sqlite database so the
// API can answer history queries without replaying state.
package eventdb

import (
	"context"
	"database/sql"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Kind tags the operation an event came from.
type Kind string

const (
	KindStaked        Kind = "staked"
	KindUnstaked      Kind = "unstaked"
	KindAccrued       Kind = "accrued"
	KindClaimed       Kind = "claimed"
	KindWhitelisted   Kind = "whitelisted"
	KindUnwhitelisted Kind = "unwhitelisted"
)

// Event is one recorded pool operation.
type Event struct {
	Sequence    uint64         `json:"sequence"`
	Time        uint64         `json:"time"`
	Kind        Kind           `json:"kind"`
	Participant common.Address `json:"participant"`
	Token       common.Address `json:"token"`
	Amount      *big.Int       `json:"amount"`
}

// OrderType event ordering by sequence.
type OrderType string

const (
	ASC  OrderType = "ASC"
	DESC OrderType = "DESC"
)

// Range filters events by operation time.
type Range struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

// Options pagination options.
type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter event query filter.
type Filter struct {
	Kind        *Kind           `json:"kind"`
	Participant *common.Address `json:"participant"`
	Token       *common.Address `json:"token"`
	Range       *Range          `json:"range"`
	Options     *Options        `json:"options"`
	Order       OrderType       `json:"order"` // default asc
}

const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	eventTime INTEGER NOT NULL,
	kind TEXT NOT NULL,
	participant BLOB NOT NULL,
	token BLOB NOT NULL,
	amount TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS event_kind_time ON event(kind, eventTime);`

// EventDB manages the recorded pool events.
type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open event db at given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	// a single connection keeps :memory: databases coherent as well
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close close the event db.
func (db *EventDB) Close() {
	db.db.Close()
}

func (db *EventDB) Path() string {
	return db.path
}

// Append records an event. The sequence number is assigned by the db.
func (db *EventDB) Append(ev *Event) error {
	amount := "0"
	if ev.Amount != nil {
		amount = ev.Amount.String()
	}
	_, err := db.db.Exec(
		"INSERT INTO event(eventTime, kind, participant, token, amount) VALUES(?,?,?,?,?)",
		ev.Time, string(ev.Kind), ev.Participant.Bytes(), ev.Token.Bytes(), amount,
	)
	return errors.Wrap(err, "failed to append event")
}

// Filter returns events matching the filter, ascending by default.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*Event, error) {
	stmt := "SELECT seq, eventTime, kind, participant, token, amount FROM event WHERE 1"
	var args []any

	if filter != nil {
		if filter.Kind != nil {
			stmt += " AND kind = ?"
			args = append(args, string(*filter.Kind))
		}
		if filter.Participant != nil {
			stmt += " AND participant = ?"
			args = append(args, filter.Participant.Bytes())
		}
		if filter.Token != nil {
			stmt += " AND token = ?"
			args = append(args, filter.Token.Bytes())
		}
		if filter.Range != nil {
			stmt += " AND eventTime >= ? AND eventTime <= ?"
			args = append(args, filter.Range.From, filter.Range.To)
		}
		if filter.Order == DESC {
			stmt += " ORDER BY seq DESC"
		} else {
			stmt += " ORDER BY seq ASC"
		}
		if filter.Options != nil {
			stmt += " LIMIT ? OFFSET ?"
			args = append(args, filter.Options.Limit, filter.Options.Offset)
		}
	} else {
		stmt += " ORDER BY seq ASC"
	}

	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query events")
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			ev          Event
			kind        string
			participant []byte
			token       []byte
			amount      string
		)
		if err := rows.Scan(&ev.Sequence, &ev.Time, &kind, &participant, &token, &amount); err != nil {
			return nil, errors.Wrap(err, "failed to scan event")
		}
		ev.Kind = Kind(kind)
		ev.Participant = common.BytesToAddress(participant)
		ev.Token = common.BytesToAddress(token)
		value, ok := new(big.Int).SetString(amount, 10)
		if !ok {
			return nil, errors.Errorf("corrupted event amount %q", amount)
		}
		ev.Amount = value
		events = append(events, &ev)
	}
	return events, rows.Err()
}
