// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package builtin

import (
	"testing"
)

func TestMethods_NumbersAreUniquePerActor(t *testing.T) {
	for actor, methods := range Methods {
		t.Run(string(actor), func(t *testing.T) {
			seen := map[MethodNum]string{}
			for _, method := range methods {
				if other, found := seen[method.Num]; found {
					t.Errorf("methods %s and %s share number %d", other, method.Name, method.Num)
				}
				seen[method.Num] = method.Name
			}
			if want, got := MethodConstructor, methods[0].Num; want != got {
				t.Errorf("first method should be the constructor, wanted %d, got %d", want, got)
			}
		})
	}
}

func TestMethods_EVMTable(t *testing.T) {
	tests := map[string]MethodNum{
		"Constructor":            1,
		"Resurrect":              2,
		"GetBytecode":            3,
		"GetBytecodeHash":        4,
		"GetStorageAt":           5,
		"InvokeContractDelegate": 6,
		"InvokeContract":         3844450837,
	}
	if want, got := len(tests), len(Methods[EVM]); want != got {
		t.Fatalf("unexpected number of methods, wanted %d, got %d", want, got)
	}
	for name, num := range tests {
		t.Run(name, func(t *testing.T) {
			got, found := Lookup(EVM, num)
			if !found {
				t.Fatalf("method %d not found", num)
			}
			if want := name; want != got {
				t.Errorf("unexpected name, wanted %s, got %s", want, got)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	tests := map[string]struct {
		actor Actor
		num   MethodNum
		name  string
		found bool
	}{
		"send":                  {Account, MethodSend, "Send", true},
		"numbered method":       {Init, 3, "Exec4", true},
		"exported method":       {DataCap, MethodHash("Transfer"), "Transfer", true},
		"receiver hook":         {VerifReg, MethodHash("Receive"), "UniversalReceiverHook", true},
		"unknown number":        {Reward, 17, "", false},
		"unknown actor":         {Actor("miner"), 2, "", false},
		"method of other actor": {System, 2, "", false},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, found := Lookup(test.actor, test.num)
			if want := test.found; want != found {
				t.Fatalf("unexpected lookup result, wanted %t, got %t", want, found)
			}
			if want := test.name; want != got {
				t.Errorf("unexpected name, wanted %q, got %q", want, got)
			}
		})
	}
}
