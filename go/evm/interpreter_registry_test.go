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
	"testing"

	"go.uber.org/mock/gomock"
)

func TestInterpreterRegistry_NamesAreCaseInsensitive(t *testing.T) {
	ctrl := gomock.NewController(t)
	interpreter := NewMockInterpreter(ctrl)
	factory := func(any) (Interpreter, error) { return interpreter, nil }

	if err := RegisterInterpreterFactory("Case-Test", factory); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"case-test", "CASE-TEST", "Case-Test"} {
		got, err := NewInterpreter(name)
		if err != nil {
			t.Fatalf("failed to create %q: %v", name, err)
		}
		if got != interpreter {
			t.Errorf("unexpected interpreter for %q", name)
		}
	}
	if _, found := GetAllRegisteredInterpreters()["case-test"]; !found {
		t.Errorf("registered factory missing in snapshot")
	}
}

func TestInterpreterRegistry_ConfigIsForwardedToFactory(t *testing.T) {
	var seen any
	factory := func(config any) (Interpreter, error) {
		seen = config
		return nil, nil
	}
	if err := RegisterInterpreterFactory("config-test", factory); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewInterpreter("config-test", 12); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := any(12), seen; want != got {
		t.Errorf("unexpected config, want %v, got %v", want, got)
	}
	if _, err := NewInterpreter("config-test", 1, 2); err == nil {
		t.Errorf("expected too many configurations to be rejected")
	}
}

func TestInterpreterRegistry_UnknownNameIsAnError(t *testing.T) {
	if _, err := NewInterpreter("does-not-exist"); err == nil {
		t.Errorf("expected error for unknown interpreter")
	}
}

func TestInterpreterRegistry_MultipleRegistrationsAreRejected(t *testing.T) {
	factory := func(any) (Interpreter, error) { return nil, nil }
	if err := RegisterInterpreterFactory("twice", factory); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := RegisterInterpreterFactory("TWICE", factory); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestInterpreterRegistry_NilFactoriesAreRejected(t *testing.T) {
	if err := RegisterInterpreterFactory("nil-factory", nil); err == nil {
		t.Fatalf("expected error, got nil")
	}
}
