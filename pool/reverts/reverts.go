// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// ErrRevert is a failure of a pool operation. The whole operation is
// rolled back when one is returned; callers can match the named errors
// below to tell failures apart.
type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

var (
	ErrZeroAddress                       = New("zero address")
	ErrZeroAmount                        = New("amount must be greater than zero")
	ErrInsufficientBalance               = New("insufficient staked balance")
	ErrRewardTooSmall                    = New("reward deposit below minimum")
	ErrTokenNotRegistered                = New("token not registered")
	ErrNotWhitelisted                    = New("token not whitelisted")
	ErrAlreadyWhitelisted                = New("token already whitelisted")
	ErrCannotModifyUnderlying            = New("cannot whitelist the staked token")
	ErrCannotUnwhitelistUnderlying       = New("cannot unwhitelist the staked token")
	ErrCannotWhitelistWithPendingRewards = New("cannot whitelist token with pending rewards")
	ErrOnlyTokenAdmin                    = New("caller is not the token admin")
	ErrAlreadyInitialized                = New("pool already initialized")
	ErrNotInitialized                    = New("pool not initialized")
)
