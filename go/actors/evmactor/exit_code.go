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
)

// ExitCode is the status of an actor invocation.
type ExitCode uint32

const (
	ExitOk                   ExitCode = 0
	ExitSysOutOfGas          ExitCode = 7
	ExitIllegalArgument      ExitCode = 16
	ExitNotFound             ExitCode = 17
	ExitForbidden            ExitCode = 18
	ExitInsufficientFunds    ExitCode = 19
	ExitIllegalState         ExitCode = 20
	ExitSerialization        ExitCode = 21
	ExitUnhandledMessage     ExitCode = 22
	ExitContractReverted     ExitCode = 33
	ExitInvalidInstruction   ExitCode = 34
	ExitUndefinedInstruction ExitCode = 35
	ExitStackUnderflow       ExitCode = 36
	ExitStackOverflow        ExitCode = 37
	ExitIllegalMemoryAccess  ExitCode = 38
	ExitBadJumpdest          ExitCode = 39
)

func (c ExitCode) String() string {
	switch c {
	case ExitOk:
		return "Ok"
	case ExitSysOutOfGas:
		return "SysErrOutOfGas"
	case ExitIllegalArgument:
		return "ErrIllegalArgument"
	case ExitNotFound:
		return "ErrNotFound"
	case ExitForbidden:
		return "ErrForbidden"
	case ExitInsufficientFunds:
		return "ErrInsufficientFunds"
	case ExitIllegalState:
		return "ErrIllegalState"
	case ExitSerialization:
		return "ErrSerialization"
	case ExitUnhandledMessage:
		return "ErrUnhandledMessage"
	case ExitContractReverted:
		return "EvmContractReverted"
	case ExitInvalidInstruction:
		return "EvmInvalidInstruction"
	case ExitUndefinedInstruction:
		return "EvmUndefinedInstruction"
	case ExitStackUnderflow:
		return "EvmStackUnderflow"
	case ExitStackOverflow:
		return "EvmStackOverflow"
	case ExitIllegalMemoryAccess:
		return "EvmIllegalMemoryAccess"
	case ExitBadJumpdest:
		return "EvmBadJumpdest"
	}
	return fmt.Sprintf("ExitCode(%d)", uint32(c))
}

// ActorError is returned by invocations ending with a non-zero exit code.
type ActorError struct {
	Code    ExitCode
	Message string
}

func newActorError(code ExitCode, format string, args ...any) *ActorError {
	return &ActorError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *ActorError) Error() string {
	return fmt.Sprintf("%v (%d): %s", e.Code, uint32(e.Code), e.Message)
}

// exitCodeOf maps the outcome of a frame to the exit code of the
// invocation running it.
func exitCodeOf(outcome evm.Outcome) ExitCode {
	switch outcome.Kind {
	case evm.Returned, evm.SelfDestructed:
		return ExitOk
	case evm.Reverted:
		return ExitContractReverted
	}
	switch outcome.Fault {
	case evm.OutOfGas:
		return ExitSysOutOfGas
	case evm.InvalidOpcode:
		return ExitUndefinedInstruction
	case evm.StackUnderflow:
		return ExitStackUnderflow
	case evm.StackOverflow:
		return ExitStackOverflow
	case evm.InvalidJump:
		return ExitBadJumpdest
	case evm.StateChangeViolation:
		return ExitForbidden
	case evm.ReturnDataOutOfBounds:
		return ExitIllegalMemoryAccess
	case evm.InsufficientBalance:
		return ExitInsufficientFunds
	}
	return ExitInvalidInstruction
}

// outcomeError converts a failed outcome into an actor error.
func outcomeError(outcome evm.Outcome) error {
	code := exitCodeOf(outcome)
	if code == ExitOk {
		return nil
	}
	if outcome.Kind == evm.Reverted {
		return newActorError(code, "contract reverted with 0x%x", outcome.Output)
	}
	return newActorError(code, "contract failed: %v", outcome.Fault)
}
