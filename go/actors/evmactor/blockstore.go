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
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
)

// Blockstore keeps contract code addressed by its Keccak-256 hash.
type Blockstore interface {
	Put(code evm.Code) (evm.Hash, error)
	// Get returns the code with the given hash. The second result is false
	// if the code is unknown.
	Get(hash evm.Hash) (evm.Code, bool, error)
}

// keyValueBlockstore stores code in a key-value database, keyed by hash.
type keyValueBlockstore struct {
	db ethdb.KeyValueStore
}

// NewBlockstore creates a Blockstore on top of the given database.
func NewBlockstore(db ethdb.KeyValueStore) Blockstore {
	return &keyValueBlockstore{db: db}
}

// NewMemoryBlockstore creates a Blockstore kept in memory. It is safe for
// concurrent use.
func NewMemoryBlockstore() Blockstore {
	return NewBlockstore(memorydb.New())
}

func (s *keyValueBlockstore) Put(code evm.Code) (evm.Hash, error) {
	hash := crypto.Keccak256Hash(code)
	found, err := s.db.Has(hash[:])
	if err != nil {
		return evm.Hash{}, fmt.Errorf("failed to look up code %v: %w", hash, err)
	}
	if !found {
		if err := s.db.Put(hash[:], code); err != nil {
			return evm.Hash{}, fmt.Errorf("failed to store code %v: %w", hash, err)
		}
	}
	return evm.Hash(hash), nil
}

func (s *keyValueBlockstore) Get(hash evm.Hash) (evm.Code, bool, error) {
	found, err := s.db.Has(hash[:])
	if err != nil || !found {
		return nil, false, err
	}
	code, err := s.db.Get(hash[:])
	if err != nil {
		return nil, false, fmt.Errorf("failed to load code %v: %w", hash, err)
	}
	return code, true, nil
}
