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
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/Fantom-foundation/Actors/go/evm"
	"github.com/holiman/uint256"
)

func TestMemory_NewMemoryIsEmpty(t *testing.T) {
	m := NewMemory()
	if want, got := uint64(0), m.Len(); want != got {
		t.Errorf("unexpected size, wanted %d, got %d", want, got)
	}
}

func TestMemory_memoryCost_IsQuadraticInWords(t *testing.T) {
	tests := map[uint64]evm.Gas{
		0:    0,
		1:    3,
		2:    6,
		32:   98,
		512:  2048,
		1024: 5120,
	}
	for words, want := range tests {
		if got := memoryCost(words); want != got {
			t.Errorf("unexpected cost for %d words, wanted %d, got %d", words, want, got)
		}
	}
}

func TestMemory_expand_GrowsInWordsAndChargesIncrementally(t *testing.T) {
	tests := []struct {
		offset, size uint64
		length       uint64
		cost         evm.Gas
	}{
		{offset: 0, size: 0, length: 0, cost: 0},
		{offset: 1000, size: 0, length: 0, cost: 0},
		{offset: 0, size: 1, length: 32, cost: 3},
		{offset: 10, size: 10, length: 32, cost: 0},
		{offset: 31, size: 2, length: 64, cost: 3},
		{offset: 0, size: 1024 * 32, length: 1024 * 32, cost: 5120 - 6},
		{offset: 0, size: 64, length: 1024 * 32, cost: 0},
	}

	m := NewMemory()
	s := &executionState{gas: 1_000_000}
	for i, test := range tests {
		before := s.gas
		if err := m.expand(test.offset, test.size, s); err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if want, got := test.length, m.Len(); want != got {
			t.Errorf("step %d: unexpected size, wanted %d, got %d", i, want, got)
		}
		if want, got := test.cost, before-s.gas; want != got {
			t.Errorf("step %d: unexpected cost, wanted %d, got %d", i, want, got)
		}
	}
}

func TestMemory_expand_FailsForUnaffordableSizes(t *testing.T) {
	tests := map[string]struct {
		offset, size uint64
		gas          evm.Gas
	}{
		"insufficient gas":  {offset: 0, size: 32, gas: 2},
		"beyond size limit": {offset: maxMemoryExpansionSize, size: 1, gas: 1 << 40},
		"offset overflow":   {offset: math.MaxUint64, size: 2, gas: math.MaxInt64},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			m := NewMemory()
			s := &executionState{gas: test.gas}
			if err := m.expand(test.offset, test.size, s); !errors.Is(err, evm.OutOfGas) {
				t.Errorf("unexpected error, wanted %v, got %v", evm.OutOfGas, err)
			}
			if want, got := uint64(0), m.Len(); want != got {
				t.Errorf("failed expansion modified the memory, size %d", got)
			}
		})
	}
}

func TestMemory_load_NewMemoryReadsZero(t *testing.T) {
	m := NewMemory()
	s := &executionState{gas: 1000}
	data, err := m.load(5, 40, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := make([]byte, 40), data; !bytes.Equal(want, got) {
		t.Errorf("unexpected content, wanted %x, got %x", want, got)
	}
	if want, got := uint64(64), m.Len(); want != got {
		t.Errorf("unexpected size, wanted %d, got %d", want, got)
	}
}

func TestMemory_setWordAndReadWord_RoundTrip(t *testing.T) {
	m := NewMemory()
	s := &executionState{gas: 1000}
	value := uint256.NewInt(0x0102030405)
	if err := m.setWord(7, value, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got uint256.Int
	if err := m.readWord(7, &got, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Eq(value) {
		t.Errorf("unexpected value, wanted %v, got %v", value, &got)
	}
	if want, got := byte(0x05), m.store[7+31]; want != got {
		t.Errorf("word is not stored big-endian, last byte is %x", got)
	}
}

func TestMemory_setByte_WritesSingleByte(t *testing.T) {
	m := NewMemory()
	s := &executionState{gas: 1000}
	if err := m.setByte(33, 0xAB, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := uint64(64), m.Len(); want != got {
		t.Errorf("unexpected size, wanted %d, got %d", want, got)
	}
	if want, got := byte(0xAB), m.store[33]; want != got {
		t.Errorf("unexpected byte, wanted %x, got %x", want, got)
	}
}

func TestMemory_copyWithin_HandlesOverlappingRanges(t *testing.T) {
	tests := map[string]struct {
		dst, src, size uint64
		want           []byte
	}{
		"forward":  {dst: 2, src: 0, size: 4, want: []byte{1, 2, 1, 2, 3, 4, 7, 8}},
		"backward": {dst: 0, src: 2, size: 4, want: []byte{3, 4, 5, 6, 5, 6, 7, 8}},
		"empty":    {dst: 0, src: 2, size: 0, want: []byte{1, 2, 3, 4, 5, 6, 7, 8}},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			m := NewMemory()
			s := &executionState{gas: 1000}
			if err := m.set(0, []byte{1, 2, 3, 4, 5, 6, 7, 8}, s); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := m.copyWithin(test.dst, test.src, test.size, s); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := m.store[:8]; !bytes.Equal(test.want, got) {
				t.Errorf("unexpected content, wanted %v, got %v", test.want, got)
			}
		})
	}
}

func TestMemory_copyWithin_GrowsToCoverBothRanges(t *testing.T) {
	m := NewMemory()
	s := &executionState{gas: 1000}
	if err := m.copyWithin(0, 64, 32, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := uint64(96), m.Len(); want != got {
		t.Errorf("unexpected size, wanted %d, got %d", want, got)
	}
}
