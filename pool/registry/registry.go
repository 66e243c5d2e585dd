// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package registry keeps the set of approved reward tokens. Entries are
// created on first whitelist and never deleted; disabling only stops
// future accruals so settlement history stays intact.
package registry

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/streampool/streampool/pool/reverts"
	"github.com/streampool/streampool/slot"
)

var (
	slotEntries = slot.Position("reward-token-entries")
	slotTokens  = slot.Position("reward-token-list")
	slotCount   = slot.Position("reward-token-count")
)

// Entry is the registry state of one reward token.
type Entry struct {
	Exists  bool
	Enabled bool
}

// Service manages reward token entries and the index of every token
// ever registered, so settle loops can walk the full history.
type Service struct {
	entries *slot.Mapping[common.Address, Entry]
	tokens  *slot.Mapping[slot.Index, common.Address]
	count   *slot.Value[uint64]
}

func New(sctx *slot.Context) *Service {
	return &Service{
		entries: slot.NewMapping[common.Address, Entry](sctx, slotEntries),
		tokens:  slot.NewMapping[slot.Index, common.Address](sctx, slotTokens),
		count:   slot.NewValue[uint64](sctx, slotCount),
	}
}

// Get returns the entry of a token. A token never registered yields
// the zero entry.
func (s *Service) Get(token common.Address) (Entry, error) {
	entry, err := s.entries.Get(token)
	if err != nil {
		return Entry{}, errors.Wrap(err, "failed to get token entry")
	}
	return entry, nil
}

// IsEnabled reports whether the token currently accepts accruals.
func (s *Service) IsEnabled(token common.Address) (bool, error) {
	entry, err := s.Get(token)
	if err != nil {
		return false, err
	}
	return entry.Enabled, nil
}

// Register enables a token, creating its entry and appending it to the
// token index on first registration.
func (s *Service) Register(token common.Address) error {
	entry, err := s.Get(token)
	if err != nil {
		return err
	}
	if entry.Enabled {
		return reverts.ErrAlreadyWhitelisted
	}

	if !entry.Exists {
		count, err := s.count.Get()
		if err != nil {
			return errors.Wrap(err, "failed to get token count")
		}
		if err := s.tokens.Set(slot.Index(count), token); err != nil {
			return errors.Wrap(err, "failed to append token")
		}
		if err := s.count.Set(count + 1); err != nil {
			return errors.Wrap(err, "failed to set token count")
		}
	}

	return s.setEntry(token, Entry{Exists: true, Enabled: true})
}

// Disable stops future accruals for the token. The entry stays so value
// already vested remains claimable.
func (s *Service) Disable(token common.Address) error {
	entry, err := s.Get(token)
	if err != nil {
		return err
	}
	if !entry.Exists {
		return reverts.ErrTokenNotRegistered
	}
	if !entry.Enabled {
		return reverts.ErrNotWhitelisted
	}
	return s.setEntry(token, Entry{Exists: true, Enabled: false})
}

// Tokens returns every token ever registered, in registration order.
func (s *Service) Tokens() ([]common.Address, error) {
	count, err := s.count.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get token count")
	}
	tokens := make([]common.Address, 0, count)
	for i := uint64(0); i < count; i++ {
		token, err := s.tokens.Get(slot.Index(i))
		if err != nil {
			return nil, errors.Wrap(err, "failed to get token at index")
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func (s *Service) setEntry(token common.Address, entry Entry) error {
	if err := s.entries.Set(token, entry); err != nil {
		return errors.Wrap(err, "failed to set token entry")
	}
	return nil
}
