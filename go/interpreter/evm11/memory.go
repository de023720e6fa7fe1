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
	"math"

	"github.com/Fantom-foundation/Actors/go/evm"
	"github.com/holiman/uint256"
)

// Memory is the volatile, byte-addressable working memory of a frame. It
// grows in words of 32 bytes, is zero-initialized, and never shrinks.
// Growing is charged with 3 gas per word plus words²/512; only the difference
// to the cost of the current size is charged on each expansion.
type Memory struct {
	store             []byte
	currentMemoryCost evm.Gas
}

func NewMemory() *Memory {
	return &Memory{}
}

// maxMemoryExpansionSize is the largest memory size whose cost fits into an
// int64 (same bound as core/vm/gas_table.go in geth).
const maxMemoryExpansionSize = 0x1FFFFFFFE0

// Len returns the current size in bytes, always a multiple of 32.
func (m *Memory) Len() uint64 {
	return uint64(len(m.store))
}

// memoryCost is the total cost of a memory of the given number of words.
func memoryCost(words uint64) evm.Gas {
	return evm.Gas(3*words + words*words/512)
}

// expansionCost returns the gas to be charged for growing the memory to
// cover size bytes.
func (m *Memory) expansionCost(size uint64) evm.Gas {
	if size <= m.Len() {
		return 0
	}
	if size > maxMemoryExpansionSize {
		return math.MaxInt64
	}
	return memoryCost(evm.SizeInWords(size)) - m.currentMemoryCost
}

// expand grows the memory to cover [offset, offset+size), charging the
// expansion to the given state. Zero-sized ranges never expand memory,
// independent of the offset.
func (m *Memory) expand(offset, size uint64, s *executionState) error {
	if size == 0 {
		return nil
	}
	end := offset + size
	if end < offset {
		return evm.OutOfGas
	}
	if end <= m.Len() {
		return nil
	}
	if err := s.useGas(m.expansionCost(end)); err != nil {
		return err
	}
	words := evm.SizeInWords(end)
	m.currentMemoryCost = memoryCost(words)
	m.store = append(m.store, make([]byte, words*32-m.Len())...)
	return nil
}

// load returns a view of size bytes at the given offset after growing the
// memory to cover them. The view shares the memory's storage and is only
// valid until the next expansion.
func (m *Memory) load(offset, size uint64, s *executionState) ([]byte, error) {
	if err := m.expand(offset, size, s); err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	return m.store[offset : offset+size], nil
}

// set writes data at the given offset, growing memory as needed.
func (m *Memory) set(offset uint64, data []byte, s *executionState) error {
	target, err := m.load(offset, uint64(len(data)), s)
	if err != nil {
		return err
	}
	copy(target, data)
	return nil
}

func (m *Memory) readWord(offset uint64, target *uint256.Int, s *executionState) error {
	data, err := m.load(offset, 32, s)
	if err != nil {
		return err
	}
	target.SetBytes32(data)
	return nil
}

func (m *Memory) setWord(offset uint64, value *uint256.Int, s *executionState) error {
	target, err := m.load(offset, 32, s)
	if err != nil {
		return err
	}
	value.WriteToSlice(target)
	return nil
}

func (m *Memory) setByte(offset uint64, value byte, s *executionState) error {
	target, err := m.load(offset, 1, s)
	if err != nil {
		return err
	}
	target[0] = value
	return nil
}

// copyWithin copies size bytes from src to dst, growing memory to cover both
// ranges. Overlapping ranges are handled like memmove.
func (m *Memory) copyWithin(dst, src, size uint64, s *executionState) error {
	if size == 0 {
		return nil
	}
	if err := m.expand(max(dst, src), size, s); err != nil {
		return err
	}
	copy(m.store[dst:dst+size], m.store[src:src+size])
	return nil
}
