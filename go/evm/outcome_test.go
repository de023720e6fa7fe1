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

import (
	"errors"
	"strings"
	"testing"
)

func TestOutcome_SuccessOnlyForKeptState(t *testing.T) {
	tests := map[OutcomeKind]bool{
		Returned:       true,
		SelfDestructed: true,
		Reverted:       false,
		Faulted:        false,
	}
	for kind, want := range tests {
		if got := (Outcome{Kind: kind}).Success(); want != got {
			t.Errorf("unexpected success for %v, want %t, got %t", kind, want, got)
		}
	}
}

func TestOutcome_FaultedOutcomeConsumesAllGas(t *testing.T) {
	outcome := NewFaultedOutcome(OutOfGas)
	if want, got := Faulted, outcome.Kind; want != got {
		t.Errorf("unexpected kind, want %v, got %v", want, got)
	}
	if want, got := Gas(100), outcome.GasUsed(100); want != got {
		t.Errorf("unexpected gas used, want %d, got %d", want, got)
	}
	if outcome.Output != nil || outcome.GasRefund != 0 {
		t.Errorf("faulted outcome must not carry output or refund: %v", outcome)
	}
}

func TestFault_IsClassifiableAsError(t *testing.T) {
	var err error = InvalidJump
	wrapped := errors.Join(errors.New("context"), err)
	var fault Fault
	if !errors.As(wrapped, &fault) {
		t.Fatalf("fault not found in %v", wrapped)
	}
	if want, got := InvalidJump, fault; want != got {
		t.Errorf("unexpected fault, want %v, got %v", want, got)
	}
}

func TestFault_AllFaultsHaveNames(t *testing.T) {
	for fault := NoFault; fault <= InvalidCode; fault++ {
		if strings.HasPrefix(fault.String(), "Fault(") {
			t.Errorf("fault %d has no name", fault)
		}
	}
	if want, got := "Fault(200)", Fault(200).String(); want != got {
		t.Errorf("unexpected name, want %q, got %q", want, got)
	}
}

func TestOutcome_StringShowsFaultOrOutput(t *testing.T) {
	if want, got := "faulted(stack overflow)", NewFaultedOutcome(StackOverflow).String(); want != got {
		t.Errorf("unexpected string, want %q, got %q", want, got)
	}
	returned := Outcome{Kind: Returned, Output: []byte{1, 2}, GasLeft: 5}
	if got := returned.String(); !strings.Contains(got, "0x0102") {
		t.Errorf("output missing in %q", got)
	}
}
