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
	"github.com/Fantom-foundation/Actors/go/evm"
	"github.com/holiman/uint256"
)

func opCreate(s *executionState) error {
	return genericCreate(s, evm.Create)
}

func opCreate2(s *executionState) error {
	return genericCreate(s, evm.Create2)
}

func genericCreate(s *executionState, kind evm.CallKind) error {
	if s.params.Static {
		return evm.StateChangeViolation
	}

	var (
		value  = s.stack.pop()
		offset = s.stack.pop()
		length = s.stack.pop()
		salt   = evm.Hash{}
	)
	if kind == evm.Create2 {
		salt = s.stack.pop().Bytes32()
	}

	offset64, size, err := toOffsetAndSize(offset, length)
	if err != nil {
		return err
	}
	if s.isAtLeast(evm.R12_Shanghai) {
		cost, err := initCodeCost(size)
		if err != nil {
			return err
		}
		if err := s.useGas(cost); err != nil {
			return err
		}
	}
	if kind == evm.Create2 {
		// the init code is hashed to derive the new address
		if err := s.useGas(wordGas(gasCreate2HashWord, size)); err != nil {
			return err
		}
	}
	input, err := s.memory.load(offset64, size, s)
	if err != nil {
		return err
	}

	if !value.IsZero() {
		balance := s.system.GetBalance(s.params.Recipient)
		if value.Gt(balance.ToUint256()) {
			s.stack.pushUndefined().Clear()
			s.returnData = nil
			return nil
		}
	}

	// EIP-150: all but one 64th of the remaining gas is forwarded.
	gas := s.gas - s.gas/64
	if err := s.useGas(gas); err != nil {
		return err
	}

	res, err := s.system.Call(kind, evm.CallParameters{
		Sender: s.params.Recipient,
		Value:  evm.Value(value.Bytes32()),
		Input:  input,
		Gas:    gas,
		Salt:   salt,
	})

	result := s.stack.pushUndefined()
	if err != nil || !res.Success() {
		result.Clear()
	} else {
		result.SetBytes20(res.CreatedAddress[:])
	}

	// only a reverted init code provides return data
	if err == nil && res.Kind == evm.Reverted {
		s.returnData = res.Output
	} else {
		s.returnData = nil
	}
	s.gas += res.GasLeft
	s.refund += res.GasRefund
	return nil
}

func opCall(s *executionState) error {
	// value transfers are state changes
	if s.params.Static && !s.stack.peekN(2).IsZero() {
		return evm.StateChangeViolation
	}
	return genericCall(s, evm.Call)
}

func opCallCode(s *executionState) error {
	return genericCall(s, evm.CallCode)
}

func opDelegateCall(s *executionState) error {
	return genericCall(s, evm.DelegateCall)
}

func opStaticCall(s *executionState) error {
	return genericCall(s, evm.StaticCall)
}

func genericCall(s *executionState, kind evm.CallKind) error {
	value := uint256.NewInt(0)
	requestedGas, target := s.stack.pop(), s.stack.pop()
	if kind == evm.Call || kind == evm.CallCode {
		value = s.stack.pop()
	}
	inOffset, inSize, outOffset, outSize := s.stack.pop(), s.stack.pop(), s.stack.pop(), s.stack.pop()
	address := evm.Address(target.Bytes20())

	inOffset64, inSize64, err := toOffsetAndSize(inOffset, inSize)
	if err != nil {
		return err
	}
	outOffset64, outSize64, err := toOffsetAndSize(outOffset, outSize)
	if err != nil {
		return err
	}
	input, err := s.memory.load(inOffset64, inSize64, s)
	if err != nil {
		return err
	}
	output, err := s.memory.load(outOffset64, outSize64, s)
	if err != nil {
		return err
	}

	if s.isAtLeast(evm.R09_Berlin) {
		if err := s.useGas(coldAccountSurcharge(s.system.AccessAccount(address))); err != nil {
			return err
		}
	}
	transfersValue := !value.IsZero()
	if transfersValue {
		if err := s.useGas(CallValueTransferGas); err != nil {
			return err
		}
	}
	if kind == evm.Call && transfersValue && !s.system.AccountExists(address) {
		if err := s.useGas(CallNewAccountGas); err != nil {
			return err
		}
	}

	gas := callGas(s.gas, requestedGas.Uint64(), requestedGas.IsUint64())
	if err := s.useGas(gas); err != nil {
		return err
	}
	if transfersValue {
		gas += CallStipend
	}

	if (kind == evm.Call || kind == evm.CallCode) && transfersValue {
		balance := s.system.GetBalance(s.params.Recipient)
		if balance.ToUint256().Lt(value) {
			s.stack.pushUndefined().Clear()
			s.returnData = nil
			s.gas += gas
			return nil
		}
	}

	// Calls from a static frame may not change state anywhere down the line.
	if s.params.Static && kind == evm.Call {
		kind = evm.StaticCall
	}

	params := evm.CallParameters{
		Input: input,
		Gas:   gas,
		Value: evm.Value(value.Bytes32()),
	}
	switch kind {
	case evm.Call, evm.StaticCall:
		params.Sender = s.params.Recipient
		params.Recipient = address
		params.CodeAddress = address
	case evm.CallCode:
		params.Sender = s.params.Recipient
		params.Recipient = s.params.Recipient
		params.CodeAddress = address
	case evm.DelegateCall:
		params.Sender = s.params.Sender
		params.Recipient = s.params.Recipient
		params.CodeAddress = address
		params.Value = s.params.Value
	}

	res, err := s.system.Call(kind, params)
	if err == nil {
		copy(output, res.Output)
	}

	result := s.stack.pushUndefined()
	if err != nil || !res.Success() {
		result.Clear()
	} else {
		result.SetOne()
	}
	s.gas += res.GasLeft
	s.refund += res.GasRefund
	s.returnData = res.Output
	return nil
}
