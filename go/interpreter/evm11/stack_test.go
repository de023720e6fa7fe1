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
	"errors"
	"testing"

	"github.com/Fantom-foundation/Actors/go/evm"
	"github.com/holiman/uint256"
	"pgregory.net/rand"
)

func TestStack_NewStackIsEmpty(t *testing.T) {
	stack := NewStack()
	defer ReturnStack(stack)
	if want, got := 0, stack.Len(); want != got {
		t.Errorf("expected empty stack, got %d elements", got)
	}
}

func TestStack_PushAndPop_AreLastInFirstOut(t *testing.T) {
	rnd := rand.New(0)
	stack := NewStack()
	defer ReturnStack(stack)

	values := make([]uint256.Int, maxStackSize)
	for i := range values {
		values[i] = uint256.Int{rnd.Uint64(), rnd.Uint64(), rnd.Uint64(), rnd.Uint64()}
		if err := stack.Push(&values[i]); err != nil {
			t.Fatalf("failed to push element %d: %v", i, err)
		}
	}
	if want, got := maxStackSize, stack.Len(); want != got {
		t.Fatalf("unexpected stack size, wanted %d, got %d", want, got)
	}
	for i := len(values) - 1; i >= 0; i-- {
		got, err := stack.Pop()
		if err != nil {
			t.Fatalf("failed to pop element %d: %v", i, err)
		}
		if want := values[i]; want != got {
			t.Errorf("unexpected value at position %d, wanted %v, got %v", i, &want, &got)
		}
	}
}

func TestStack_Push_FullStackOverflows(t *testing.T) {
	stack := NewStack()
	defer ReturnStack(stack)
	for i := 0; i < maxStackSize; i++ {
		stack.push(uint256.NewInt(uint64(i)))
	}
	if want, got := evm.StackOverflow, stack.Push(uint256.NewInt(1)); !errors.Is(got, want) {
		t.Errorf("unexpected error, wanted %v, got %v", want, got)
	}
	if want, got := maxStackSize, stack.Len(); want != got {
		t.Errorf("failed push modified the stack, size %d", got)
	}
}

func TestStack_CheckedAccess_EmptyStackUnderflows(t *testing.T) {
	stack := NewStack()
	defer ReturnStack(stack)

	tests := map[string]func() error{
		"pop": func() error {
			_, err := stack.Pop()
			return err
		},
		"peek": func() error {
			_, err := stack.Peek(0)
			return err
		},
		"set": func() error {
			return stack.Set(0, uint256.NewInt(1))
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if want, got := evm.StackUnderflow, test(); !errors.Is(got, want) {
				t.Errorf("unexpected error, wanted %v, got %v", want, got)
			}
		})
	}
}

func TestStack_PeekAndSet_AddressElementsFromTheTop(t *testing.T) {
	stack := NewStack()
	defer ReturnStack(stack)
	for i := 0; i < 4; i++ {
		stack.push(uint256.NewInt(uint64(i)))
	}
	if err := stack.Set(1, uint256.NewInt(42)); err != nil {
		t.Fatalf("failed to set element: %v", err)
	}
	for n, want := range []uint64{3, 42, 1, 0} {
		got, err := stack.Peek(n)
		if err != nil {
			t.Fatalf("failed to peek element %d: %v", n, err)
		}
		if !got.Eq(uint256.NewInt(want)) {
			t.Errorf("unexpected element %d, wanted %d, got %v", n, want, &got)
		}
	}
	if _, err := stack.Peek(4); !errors.Is(err, evm.StackUnderflow) {
		t.Errorf("peeking beyond the bottom should fail, got %v", err)
	}
}

func TestStack_SwapAndDup_FollowInstructionNumbering(t *testing.T) {
	for n := 1; n <= 16; n++ {
		stack := NewStack()
		for i := 0; i <= n; i++ {
			stack.push(uint256.NewInt(uint64(i)))
		}
		// stack from the top: n, n-1, ..., 0
		stack.swap(n)
		if want, got := uint64(0), stack.peek().Uint64(); want != got {
			t.Errorf("SWAP%d: unexpected top, wanted %d, got %d", n, want, got)
		}
		if want, got := uint64(n), stack.peekN(n).Uint64(); want != got {
			t.Errorf("SWAP%d: unexpected swapped element, wanted %d, got %d", n, want, got)
		}

		ReturnStack(stack)

		stack = NewStack()
		for i := 0; i < n; i++ {
			stack.push(uint256.NewInt(uint64(i + 1)))
		}
		// the n-th element from the top is the bottom element
		stack.dup(n)
		if want, got := uint64(1), stack.peek().Uint64(); want != got {
			t.Errorf("DUP%d: unexpected top, wanted %d, got %d", n, want, got)
		}
		if want, got := n+1, stack.Len(); want != got {
			t.Errorf("DUP%d: unexpected size, wanted %d, got %d", n, want, got)
		}
		ReturnStack(stack)
	}
}

func TestStack_ReturnStack_ResetsSize(t *testing.T) {
	stack := NewStack()
	stack.push(uint256.NewInt(1))
	ReturnStack(stack)
	if want, got := 0, stack.Len(); want != got {
		t.Errorf("returned stack should be empty, got %d elements", got)
	}
}
