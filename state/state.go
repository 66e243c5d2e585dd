// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"

	"github.com/streampool/streampool/kvdb"
)

const slotCacheSize = 4096

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

type storageKey struct {
	addr common.Address
	key  common.Hash
}

func (k storageKey) bytes() []byte {
	b := make([]byte, 0, common.AddressLength+common.HashLength)
	b = append(b, k.addr.Bytes()...)
	return append(b, k.key.Bytes()...)
}

// State manages the engine state: rlp-encoded storage slots namespaced by
// address, persisted in a key/value store. Writes are journaled so a failing
// operation can be reverted as a whole before anything hits the store.
type State struct {
	kv    kvdb.GetPutter
	cache *lru.Cache // raw slots loaded from kv
	sm    *journal[storageKey, rlp.RawValue]
}

// New create state object.
func New(kv kvdb.GetPutter) *State {
	cache, _ := lru.New(slotCacheSize)
	state := &State{
		kv:    kv,
		cache: cache,
	}
	state.sm = newJournal(state.load)
	return state
}

// load reads a raw slot from the store, treating missing keys as empty.
func (s *State) load(key storageKey) (rlp.RawValue, error) {
	if cached, ok := s.cache.Get(key); ok {
		return cached.(rlp.RawValue), nil
	}
	raw, err := s.kv.Get(key.bytes())
	if err != nil {
		if !s.kv.IsNotFound(err) {
			return nil, &Error{err}
		}
		raw = nil
	}
	s.cache.Add(key, rlp.RawValue(raw))
	return raw, nil
}

// GetRawStorage returns the raw rlp value of the slot.
func (s *State) GetRawStorage(addr common.Address, key common.Hash) (rlp.RawValue, error) {
	return s.sm.Get(storageKey{addr, key})
}

// SetRawStorage sets the raw rlp value of the slot. Empty raw clears the slot.
func (s *State) SetRawStorage(addr common.Address, key common.Hash, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// DecodeStorage loads a slot and passes its raw value to the decode callback.
// The callback sees nil raw for a never-written slot.
func (s *State) DecodeStorage(addr common.Address, key common.Hash, decode func(raw []byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := decode(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// EncodeStorage stores the value produced by the encode callback into a slot.
func (s *State) EncodeStorage(addr common.Address, key common.Hash, encode func() ([]byte, error)) error {
	raw, err := encode()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns the checkpoint handle to be passed to RevertTo.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts state to the given checkpoint, discarding every
// write recorded after it.
func (s *State) RevertTo(checkpoint int) {
	s.sm.PopTo(checkpoint)
}

// Commit writes all journaled slots to the underlying store in one batch
// and resets the journal.
func (s *State) Commit() error {
	entries := s.sm.Entries()
	if len(entries) == 0 {
		return nil
	}
	batch := s.kv.NewBatch()
	for key, raw := range entries {
		if len(raw) == 0 {
			if err := batch.Delete(key.bytes()); err != nil {
				return &Error{err}
			}
		} else if err := batch.Put(key.bytes(), raw); err != nil {
			return &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}
	for key, raw := range entries {
		s.cache.Add(key, raw)
	}
	s.sm.Reset()
	return nil
}
