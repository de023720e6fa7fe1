// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package evm11

import (
	"hash"
	"sync"

	"github.com/Fantom-foundation/Actors/go/evm"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/sha3"
)

// keccakState is the subset of the sha3 state used for hashing.
type keccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

var keccakStatePool = sync.Pool{New: func() any { return sha3.NewLegacyKeccak256() }}

// Keccak256 computes the Keccak-256 hash of the given data.
func Keccak256(data []byte) evm.Hash {
	state := keccakStatePool.Get().(keccakState)
	state.Reset()
	state.Write(data)
	var res evm.Hash
	state.Read(res[:])
	keccakStatePool.Put(state)
	return res
}

// keccakHasher is the hash function used by SHA3.
type keccakHasher interface {
	hash(data []byte) evm.Hash
}

type plainHasher struct{}

func (plainHasher) hash(data []byte) evm.Hash {
	return Keccak256(data)
}

// cachingHasher remembers hashes of 32 and 64 byte inputs, the sizes of
// mapping keys and the bulk of the values hashed by contracts. Other inputs
// are hashed on demand. The caches are safe for concurrent use.
type cachingHasher struct {
	cache32 *lru.Cache[[32]byte, evm.Hash]
	cache64 *lru.Cache[[64]byte, evm.Hash]
}

func newCachingHasher(capacity32, capacity64 int) (*cachingHasher, error) {
	cache32, err := lru.New[[32]byte, evm.Hash](capacity32)
	if err != nil {
		return nil, err
	}
	cache64, err := lru.New[[64]byte, evm.Hash](capacity64)
	if err != nil {
		return nil, err
	}
	return &cachingHasher{cache32: cache32, cache64: cache64}, nil
}

func (h *cachingHasher) hash(data []byte) evm.Hash {
	switch len(data) {
	case 32:
		return lookupOrHash(h.cache32, [32]byte(data), data)
	case 64:
		return lookupOrHash(h.cache64, [64]byte(data), data)
	}
	return Keccak256(data)
}

func lookupOrHash[K comparable](cache *lru.Cache[K, evm.Hash], key K, data []byte) evm.Hash {
	if res, found := cache.Get(key); found {
		return res
	}
	res := Keccak256(data)
	cache.Add(key, res)
	return res
}
