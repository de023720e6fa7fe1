// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package evmactor

import (
	"fmt"

	"github.com/Fantom-foundation/Actors/go/evm"
	"github.com/ethereum/go-ethereum/rlp"
)

// State is the persistent state of an EVM actor besides its contract
// storage, which is kept in the world state.
type State struct {
	BytecodeHash evm.Hash
	Nonce        uint64
	Tombstone    *Tombstone `rlp:"nil"` // < set once the contract self-destructed
}

// Tombstone records the message in which a contract self-destructed.
type Tombstone struct {
	Origin evm.Address
	Nonce  uint64
}

// IsDead reports whether the contract has self-destructed.
func (s *State) IsDead() bool {
	return s.Tombstone != nil
}

// ConstructorParams are the parameters of Constructor and Resurrect.
type ConstructorParams struct {
	Creator  evm.Address
	Initcode []byte
}

// DelegateCallParams are the parameters of InvokeContractDelegate.
type DelegateCallParams struct {
	CodeHash evm.Hash // < hash of the code in the blockstore
	Input    []byte
	Caller   evm.Address
	Value    evm.Value
}

// GetStorageAtParams are the parameters of GetStorageAt.
type GetStorageAtParams struct {
	StorageKey evm.Key
}

// Encode serializes a value as an RLP list of its fields.
func Encode(value any) ([]byte, error) {
	return rlp.EncodeToBytes(value)
}

// decode parses RLP encoded parameters into value.
func decode(data []byte, value any) error {
	if err := rlp.DecodeBytes(data, value); err != nil {
		return newActorError(ExitSerialization, "failed to decode %T: %v", value, err)
	}
	return nil
}

// encode serializes a return value of a method.
func encode(value any) ([]byte, error) {
	data, err := Encode(value)
	if err != nil {
		return nil, newActorError(ExitSerialization, "failed to encode %T: %v", value, err)
	}
	return data, nil
}

// DecodeState parses an RLP encoded actor state.
func DecodeState(data []byte) (State, error) {
	var state State
	if err := rlp.DecodeBytes(data, &state); err != nil {
		return State{}, fmt.Errorf("invalid actor state: %w", err)
	}
	return state, nil
}
