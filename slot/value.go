// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// Value is a wrapper for storage and retrieval of a single rlp-encoded value,
// similar to a state variable in a smart contract.
type Value[V any] struct {
	context *Context
	pos     common.Hash
}

func NewValue[V any](context *Context, pos common.Hash) *Value[V] {
	return &Value[V]{context: context, pos: pos}
}

func (s *Value[V]) Get() (value V, err error) {
	err = s.context.state.DecodeStorage(s.context.address, s.pos, func(raw []byte) error {
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

func (s *Value[V]) Set(value V) error {
	return s.context.state.EncodeStorage(s.context.address, s.pos, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Uint256 is a wrapper for storage and retrieval of an uint256,
// zero-normalized so callers never see a nil big.Int.
type Uint256 struct {
	inner *Value[*big.Int]
}

func NewUint256(context *Context, pos common.Hash) *Uint256 {
	return &Uint256{inner: NewValue[*big.Int](context, pos)}
}

func (u *Uint256) Get() (*big.Int, error) {
	value, err := u.inner.Get()
	if err != nil {
		return nil, err
	}
	if value == nil {
		return new(big.Int), nil
	}
	return value, nil
}

func (u *Uint256) Set(value *big.Int) error {
	return u.inner.Set(value)
}

func (u *Uint256) Add(value *big.Int) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(new(big.Int).Add(stored, value))
}

func (u *Uint256) Sub(value *big.Int) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(new(big.Int).Sub(stored, value))
}

// Address is a wrapper for storage and retrieval of an address.
type Address struct {
	inner *Value[common.Address]
}

func NewAddress(context *Context, pos common.Hash) *Address {
	return &Address{inner: NewValue[common.Address](context, pos)}
}

func (a *Address) Get() (common.Address, error) {
	return a.inner.Get()
}

func (a *Address) Set(addr common.Address) error {
	return a.inner.Set(addr)
}
