// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/blake2b"

	"github.com/streampool/streampool/state"
)

// Context binds typed slots to the engine address they live under.
type Context struct {
	address common.Address
	state   *state.State
}

func NewContext(address common.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() common.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// Position derives a named storage position.
func Position(name string) common.Hash {
	return common.BytesToHash([]byte(name))
}

// hashPosition derives the slot of a mapping entry from its key and base position.
func hashPosition(key []byte, base common.Hash) common.Hash {
	h, _ := blake2b.New256(nil)
	h.Write(key)
	h.Write(base.Bytes())
	return common.BytesToHash(h.Sum(nil))
}
