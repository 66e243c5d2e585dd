// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tkn   = common.BytesToAddress([]byte("token"))
	alice = common.BytesToAddress([]byte("alice"))
	bob   = common.BytesToAddress([]byte("bob"))
)

func TestMintTransferBurn(t *testing.T) {
	bank := NewMemBank()

	require.NoError(t, bank.Mint(tkn, alice, big.NewInt(100)))
	require.NoError(t, bank.Transfer(tkn, alice, bob, big.NewInt(40)))
	require.NoError(t, bank.Burn(tkn, bob, big.NewInt(10)))

	balance, err := bank.BalanceOf(tkn, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(60), balance.Int64())

	balance, err = bank.BalanceOf(tkn, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(30), balance.Int64())
}

func TestTransferExceedsBalance(t *testing.T) {
	bank := NewMemBank()

	require.NoError(t, bank.Mint(tkn, alice, big.NewInt(10)))
	assert.Error(t, bank.Transfer(tkn, alice, bob, big.NewInt(11)))
	assert.Error(t, bank.Burn(tkn, alice, big.NewInt(11)))
}

func TestBalanceOfReturnsCopy(t *testing.T) {
	bank := NewMemBank()

	require.NoError(t, bank.Mint(tkn, alice, big.NewInt(10)))
	balance, err := bank.BalanceOf(tkn, alice)
	require.NoError(t, err)
	balance.SetInt64(0)

	balance, err = bank.BalanceOf(tkn, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance.Int64())
}

func TestTokensAreIndependent(t *testing.T) {
	bank := NewMemBank()
	other := common.BytesToAddress([]byte("other"))

	require.NoError(t, bank.Mint(tkn, alice, big.NewInt(10)))

	balance, err := bank.BalanceOf(other, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.Int64())
}
