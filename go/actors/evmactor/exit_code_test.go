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
	"errors"
	"testing"

	"github.com/Fantom-foundation/Actors/go/evm"
)

func TestExitCodeOf(t *testing.T) {
	tests := map[string]struct {
		outcome evm.Outcome
		want    ExitCode
	}{
		"returned":               {evm.Outcome{Kind: evm.Returned}, ExitOk},
		"self-destructed":        {evm.Outcome{Kind: evm.SelfDestructed}, ExitOk},
		"reverted":               {evm.Outcome{Kind: evm.Reverted}, ExitContractReverted},
		"invalid opcode":         {evm.NewFaultedOutcome(evm.InvalidOpcode), ExitUndefinedInstruction},
		"stack underflow":        {evm.NewFaultedOutcome(evm.StackUnderflow), ExitStackUnderflow},
		"stack overflow":         {evm.NewFaultedOutcome(evm.StackOverflow), ExitStackOverflow},
		"out of gas":             {evm.NewFaultedOutcome(evm.OutOfGas), ExitSysOutOfGas},
		"invalid jump":           {evm.NewFaultedOutcome(evm.InvalidJump), ExitBadJumpdest},
		"state change violation": {evm.NewFaultedOutcome(evm.StateChangeViolation), ExitForbidden},
		"return data":            {evm.NewFaultedOutcome(evm.ReturnDataOutOfBounds), ExitIllegalMemoryAccess},
		"call depth":             {evm.NewFaultedOutcome(evm.CallDepthExceeded), ExitInvalidInstruction},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if want, got := test.want, exitCodeOf(test.outcome); want != got {
				t.Errorf("unexpected exit code, wanted %v, got %v", want, got)
			}
		})
	}
}

func TestOutcomeError(t *testing.T) {
	if err := outcomeError(evm.Outcome{Kind: evm.Returned}); err != nil {
		t.Errorf("successful outcome should not produce an error, got %v", err)
	}
	err := outcomeError(evm.Outcome{Kind: evm.Reverted, Output: []byte{0xAB}})
	var actorErr *ActorError
	if !errors.As(err, &actorErr) {
		t.Fatalf("unexpected error type %T", err)
	}
	if want, got := "EvmContractReverted (33): contract reverted with 0xab", actorErr.Error(); want != got {
		t.Errorf("unexpected message, wanted %q, got %q", want, got)
	}
}
