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
	"fmt"
	"strings"
	"sync"

	"github.com/Fantom-foundation/Actors/go/evm"
	"github.com/holiman/uint256"
)

const maxStackSize = 1024

// Stack is the operand stack of a frame: up to 1024 words of 256 bit.
//
// The exported methods check their bounds and fail with StackOverflow or
// StackUnderflow. The unexported methods do not; they are used by
// instructions after the execution loop has validated the stack
// requirements of the instruction against the dispatch table.
//
// A Stack occupies 32KiB. Stacks are therefore recycled through a pool:
//
//	s := NewStack()
//	defer ReturnStack(s)
//
// A Stack must not be used by multiple goroutines at once.
type Stack struct {
	data         [maxStackSize]uint256.Int
	stackPointer int
}

// Push adds a copy of v to the top of the stack.
func (s *Stack) Push(v *uint256.Int) error {
	if s.stackPointer == maxStackSize {
		return evm.StackOverflow
	}
	s.push(v)
	return nil
}

// Pop removes the top element and returns it.
func (s *Stack) Pop() (uint256.Int, error) {
	if s.stackPointer == 0 {
		return uint256.Int{}, evm.StackUnderflow
	}
	return *s.pop(), nil
}

// Peek returns the n-th element from the top; Peek(0) is the top.
func (s *Stack) Peek(n int) (uint256.Int, error) {
	if n < 0 || n >= s.stackPointer {
		return uint256.Int{}, evm.StackUnderflow
	}
	return *s.peekN(n), nil
}

// Set replaces the n-th element from the top.
func (s *Stack) Set(n int, v *uint256.Int) error {
	if n < 0 || n >= s.stackPointer {
		return evm.StackUnderflow
	}
	*s.peekN(n) = *v
	return nil
}

// Len returns the number of elements on the stack.
func (s *Stack) Len() int {
	return s.stackPointer
}

func (s *Stack) push(v *uint256.Int) {
	s.data[s.stackPointer] = *v
	s.stackPointer++
}

// pushUndefined grows the stack by one element and returns a pointer to it
// for in-place initialization.
func (s *Stack) pushUndefined() *uint256.Int {
	s.stackPointer++
	return &s.data[s.stackPointer-1]
}

// pop returns a pointer to the removed element. It stays valid until the
// next push.
func (s *Stack) pop() *uint256.Int {
	s.stackPointer--
	return &s.data[s.stackPointer]
}

func (s *Stack) peek() *uint256.Int {
	return &s.data[s.stackPointer-1]
}

func (s *Stack) peekN(n int) *uint256.Int {
	return &s.data[s.stackPointer-n-1]
}

// swap exchanges the top with the n-th element below it.
func (s *Stack) swap(n int) {
	top := s.stackPointer - 1
	s.data[top], s.data[top-n] = s.data[top-n], s.data[top]
}

// dup pushes a copy of the n-th element from the top; dup(1) copies the top.
func (s *Stack) dup(n int) {
	s.data[s.stackPointer] = s.data[s.stackPointer-n]
	s.stackPointer++
}

func (s *Stack) String() string {
	var b strings.Builder
	for i := 0; i < s.stackPointer; i++ {
		word := s.peekN(i).Bytes32()
		fmt.Fprintf(&b, "    [%4d] 0x%x\n", i, word[:])
	}
	return b.String()
}

var stackPool = sync.Pool{
	New: func() any {
		return &Stack{}
	},
}

// NewStack obtains an empty stack from the pool.
func NewStack() *Stack {
	return stackPool.Get().(*Stack)
}

// ReturnStack puts a stack back into the pool. Each stack may only be
// returned once.
func ReturnStack(s *Stack) {
	s.stackPointer = 0
	stackPool.Put(s)
}
