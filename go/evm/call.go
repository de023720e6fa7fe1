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
	"encoding/json"
	"fmt"
	"strings"
)

// CallKind distinguishes the ways a frame can be entered.
type CallKind int

const (
	Call CallKind = iota
	DelegateCall
	StaticCall
	CallCode
	Create
	Create2
)

// IsCreate is true for the kinds deploying new code.
func (k CallKind) IsCreate() bool {
	return k == Create || k == Create2
}

func (k CallKind) String() string {
	switch k {
	case Call:
		return "call"
	case DelegateCall:
		return "delegate_call"
	case StaticCall:
		return "static_call"
	case CallCode:
		return "call_code"
	case Create:
		return "create"
	case Create2:
		return "create2"
	}
	return "unknown"
}

func (k CallKind) MarshalJSON() ([]byte, error) {
	if k < Call || k > Create2 {
		return nil, fmt.Errorf("invalid call kind: %d", int(k))
	}
	return json.Marshal(k.String())
}

func (k *CallKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for cur := Call; cur <= Create2; cur++ {
		if cur.String() == strings.ToLower(name) {
			*k = cur
			return nil
		}
	}
	return fmt.Errorf("invalid call kind: %q", name)
}

// CallParameters describe a nested call or create requested by a frame.
type CallParameters struct {
	Sender      Address
	Recipient   Address // < not used for create calls
	Value       Value
	Input       []byte // < the init code for create calls
	Gas         Gas
	Salt        Hash    // < only used by Create2
	CodeAddress Address // < account providing the code, not used for create calls
}

// CallResult is the outcome of a nested call as observed by the caller.
type CallResult struct {
	Outcome
	CreatedAddress Address // < only set for successful create calls
}
