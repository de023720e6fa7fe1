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
	"bytes"
	"encoding/json"
	"testing"

	"github.com/holiman/uint256"
)

func TestValue_NewValueFillsLimbsFromTheRight(t *testing.T) {
	tests := map[string]struct {
		limbs []uint64
		want  *uint256.Int
	}{
		"zero":       {nil, uint256.NewInt(0)},
		"one limb":   {[]uint64{42}, uint256.NewInt(42)},
		"two limbs":  {[]uint64{1, 0}, new(uint256.Int).Lsh(uint256.NewInt(1), 64)},
		"four limbs": {[]uint64{1, 0, 0, 0}, new(uint256.Int).Lsh(uint256.NewInt(1), 192)},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if want, got := test.want, NewValue(test.limbs...).ToUint256(); !want.Eq(got) {
				t.Errorf("unexpected value, want %v, got %v", want, got)
			}
		})
	}
}

func TestValue_AddAndSubWrapAround(t *testing.T) {
	max := ValueFromUint256(new(uint256.Int).SetAllOne())
	if want, got := NewValue(), Add(max, NewValue(1)); want != got {
		t.Errorf("unexpected sum, want %v, got %v", want, got)
	}
	if want, got := max, Sub(NewValue(), NewValue(1)); want != got {
		t.Errorf("unexpected difference, want %v, got %v", want, got)
	}
}

func TestValue_CmpOrdersNumerically(t *testing.T) {
	small, large := NewValue(1), NewValue(1, 0)
	if small.Cmp(large) >= 0 || large.Cmp(small) <= 0 || small.Cmp(small) != 0 {
		t.Errorf("unexpected order of %v and %v", small, large)
	}
}

func TestValue_ValueFromNilIsZero(t *testing.T) {
	if !ValueFromUint256(nil).IsZero() {
		t.Errorf("nil should convert to zero")
	}
}

func TestAddress_TextRoundTrip(t *testing.T) {
	address := Address{0x12, 19: 0x34}
	text, err := address.MarshalText()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var restored Address
	if err := restored.UnmarshalText(text); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := address, restored; want != got {
		t.Errorf("unexpected address, want %v, got %v", want, got)
	}
}

func TestAddress_UnmarshalRejectsInvalidInput(t *testing.T) {
	inputs := []string{"", "12", "0x12", "0xzz00000000000000000000000000000000000000"}
	for _, input := range inputs {
		var address Address
		if err := address.UnmarshalText([]byte(input)); err == nil {
			t.Errorf("expected error for input %q", input)
		}
	}
}

func TestCallKind_JsonEncoding(t *testing.T) {
	for kind := Call; kind <= Create2; kind++ {
		data, err := json.Marshal(kind)
		if err != nil {
			t.Fatalf("failed to encode %v: %v", kind, err)
		}
		var restored CallKind
		if err := json.Unmarshal(data, &restored); err != nil {
			t.Fatalf("failed to decode %s: %v", data, err)
		}
		if want, got := kind, restored; want != got {
			t.Errorf("unexpected kind, want %v, got %v", want, got)
		}
	}
	if _, err := json.Marshal(CallKind(42)); err == nil {
		t.Errorf("expected encoding of unknown kind to fail")
	}
}

func TestRevision_JsonEncoding(t *testing.T) {
	for revision := R07_Istanbul; revision <= R13_Cancun; revision++ {
		data, err := json.Marshal(revision)
		if err != nil {
			t.Fatalf("failed to encode %v: %v", revision, err)
		}
		if want, got := []byte("\""+revision.String()+"\""), data; !bytes.Equal(want, got) {
			t.Errorf("unexpected encoding, want %s, got %s", want, got)
		}
		var restored Revision
		if err := json.Unmarshal(data, &restored); err != nil {
			t.Fatalf("failed to decode %s: %v", data, err)
		}
		if want, got := revision, restored; want != got {
			t.Errorf("unexpected revision, want %v, got %v", want, got)
		}
	}
	if _, err := json.Marshal(R99_UnknownNextRevision); err == nil {
		t.Errorf("expected encoding of unknown revision to fail")
	}
}

func TestSizeInWords(t *testing.T) {
	tests := map[uint64]uint64{
		0:               0,
		1:               1,
		32:              1,
		33:              2,
		^uint64(0):      ^uint64(0)/32 + 1,
		^uint64(0) - 31: ^uint64(0) / 32,
		^uint64(0) - 32: (^uint64(0) - 1) / 32,
	}
	for size, want := range tests {
		if got := SizeInWords(size); want != got {
			t.Errorf("unexpected words for size %d, want %d, got %d", size, want, got)
		}
	}
}
