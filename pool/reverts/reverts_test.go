// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsRevertErr(t *testing.T) {
	assert.True(t, IsRevertErr(ErrZeroAddress))
	assert.True(t, IsRevertErr(New("custom revert")))
	assert.True(t, IsRevertErr(errors.Wrap(ErrRewardTooSmall, "accrue")))

	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(errors.New("plain error")))
	assert.False(t, IsRevertErr("not an error"))
}

func TestNamedErrorsAreDistinguishable(t *testing.T) {
	assert.ErrorIs(t, errors.Wrap(ErrInsufficientBalance, "unstake"), ErrInsufficientBalance)
	assert.NotErrorIs(t, ErrInsufficientBalance, ErrZeroAddress)
}
