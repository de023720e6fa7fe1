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
	"github.com/Fantom-foundation/Actors/go/evm"
	"github.com/bits-and-blooms/bitset"
	"github.com/ethereum/go-ethereum/params"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Bytecode is a contract code together with the set of its valid jump
// destinations. Any byte sequence is accepted; malformed code faults when the
// offending instruction is reached, not when it is analysed. A Bytecode is
// immutable after construction and may be shared by concurrent frames.
type Bytecode struct {
	code      evm.Code
	jumpDests *bitset.BitSet
}

// NewBytecode analyses the given code in a single forward scan. Positions
// covered by PUSH immediates are skipped, so a 0x5b byte inside push data is
// never a valid jump destination.
func NewBytecode(code evm.Code) *Bytecode {
	jumpDests := bitset.New(uint(len(code)))
	for pc := 0; pc < len(code); pc++ {
		op := OpCode(code[pc])
		if op == JUMPDEST {
			jumpDests.Set(uint(pc))
		}
		pc += op.immediateSize()
	}
	return &Bytecode{
		code:      code,
		jumpDests: jumpDests,
	}
}

// Len returns the number of bytes of the code.
func (b *Bytecode) Len() int {
	return len(b.code)
}

// Code returns the analysed code. The result must not be modified.
func (b *Bytecode) Code() evm.Code {
	return b.code
}

// OpCodeAt returns the instruction at the given position. Positions beyond
// the end of the code read as STOP.
func (b *Bytecode) OpCodeAt(pc uint64) OpCode {
	if pc >= uint64(len(b.code)) {
		return STOP
	}
	return OpCode(b.code[pc])
}

// IsValidJumpDest reports whether pc is the position of a JUMPDEST
// instruction.
func (b *Bytecode) IsValidJumpDest(pc uint64) bool {
	if pc >= uint64(len(b.code)) {
		return false
	}
	return b.jumpDests.Test(uint(pc))
}

// PushData returns the n immediate bytes following the instruction at pc.
// Immediates cut off by the end of the code are padded with zeros on the
// right.
func (b *Bytecode) PushData(pc uint64, n int) []byte {
	start := pc + 1
	end := start + uint64(n)
	size := uint64(len(b.code))
	if start >= size {
		return make([]byte, n)
	}
	if end <= size {
		return b.code[start:end]
	}
	data := make([]byte, n)
	copy(data, b.code[start:])
	return data
}

// maxCachedCodeLength is the size limit of deployed contracts. Longer codes
// can only be init codes which are not cached.
const maxCachedCodeLength = params.MaxCodeSize

// analyzer reuses analyses of code for which a hash is known.
type analyzer struct {
	cache *lru.Cache[evm.Hash, *Bytecode]
}

// newAnalyzer creates an analyzer retaining up to size analyses. A size of
// zero selects a default, a negative size disables caching.
func newAnalyzer(size int) (*analyzer, error) {
	if size == 0 {
		size = 1 << 12
	}
	if size < 0 {
		return &analyzer{}, nil
	}
	cache, err := lru.New[evm.Hash, *Bytecode](size)
	if err != nil {
		return nil, err
	}
	return &analyzer{cache: cache}, nil
}

// analyze returns the analysis of the given code. The hash, if not nil, must
// be the hash of the code.
func (a *analyzer) analyze(code evm.Code, hash *evm.Hash) *Bytecode {
	if a.cache == nil || hash == nil || len(code) > maxCachedCodeLength {
		return NewBytecode(code)
	}
	if res, found := a.cache.Get(*hash); found {
		return res
	}
	res := NewBytecode(code)
	a.cache.Add(*hash, res)
	return res
}
