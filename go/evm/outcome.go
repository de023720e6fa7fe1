// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package evm

import "fmt"

// OutcomeKind classifies how a frame terminated.
type OutcomeKind byte

const (
	// Returned is the result of STOP, RETURN or running past the end of code.
	Returned OutcomeKind = iota
	// Reverted is the result of REVERT. The host must discard all state
	// changes of the frame, the remaining gas is returned to the caller.
	Reverted
	// SelfDestructed is the result of SELFDESTRUCT. Account removal is
	// scheduled by the host for the end of the transaction.
	SelfDestructed
	// Faulted is the result of any execution failure. All gas is consumed.
	Faulted
)

func (k OutcomeKind) String() string {
	switch k {
	case Returned:
		return "returned"
	case Reverted:
		return "reverted"
	case SelfDestructed:
		return "self-destructed"
	case Faulted:
		return "faulted"
	}
	return fmt.Sprintf("OutcomeKind(%d)", k)
}

// Fault names the reason a frame ended in the Faulted state. Faults are
// values, not Go errors crossing frames; the type implements error so that
// instruction implementations can return it directly and the execution loop
// can classify it with errors.As.
type Fault byte

const (
	NoFault Fault = iota
	StackUnderflow
	StackOverflow
	OutOfGas
	InvalidOpcode
	InvalidJump
	StateChangeViolation
	CallDepthExceeded
	PrecompileInputError
	ReturnDataOutOfBounds
	InitCodeTooLarge
	AddressCollision
	InsufficientBalance
	CodeSizeExceeded
	InvalidCode
)

func (f Fault) String() string {
	switch f {
	case NoFault:
		return "no fault"
	case StackUnderflow:
		return "stack underflow"
	case StackOverflow:
		return "stack overflow"
	case OutOfGas:
		return "out of gas"
	case InvalidOpcode:
		return "invalid opcode"
	case InvalidJump:
		return "invalid jump destination"
	case StateChangeViolation:
		return "state change in static context"
	case CallDepthExceeded:
		return "call depth exceeded"
	case PrecompileInputError:
		return "precompile input error"
	case ReturnDataOutOfBounds:
		return "return data out of bounds"
	case InitCodeTooLarge:
		return "init code too large"
	case AddressCollision:
		return "contract address collision"
	case InsufficientBalance:
		return "insufficient balance for transfer"
	case CodeSizeExceeded:
		return "max code size exceeded"
	case InvalidCode:
		return "invalid code"
	}
	return fmt.Sprintf("Fault(%d)", f)
}

func (f Fault) Error() string {
	return f.String()
}

// Outcome is the terminal, externally observable result of a frame.
type Outcome struct {
	Kind      OutcomeKind
	Fault     Fault // < set iff Kind == Faulted
	Output    []byte
	GasLeft   Gas
	GasRefund Gas
}

// Success is true for frames whose state changes are to be kept.
func (o Outcome) Success() bool {
	return o.Kind == Returned || o.Kind == SelfDestructed
}

// GasUsed returns the gas consumed from the given limit.
func (o Outcome) GasUsed(limit Gas) Gas {
	return limit - o.GasLeft
}

func (o Outcome) String() string {
	if o.Kind == Faulted {
		return fmt.Sprintf("faulted(%v)", o.Fault)
	}
	return fmt.Sprintf("%v(output: 0x%x, gas left: %d, refund: %d)", o.Kind, o.Output, o.GasLeft, o.GasRefund)
}

// NewFaultedOutcome creates the outcome of a frame failing with the given
// fault. A faulted frame consumes all its gas and produces no output.
func NewFaultedOutcome(fault Fault) Outcome {
	return Outcome{Kind: Faulted, Fault: fault}
}
