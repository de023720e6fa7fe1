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
	"errors"
	"fmt"

	"github.com/Fantom-foundation/Actors/go/evm"
)

// status is the state of the frame's state machine.
type status byte

const (
	statusRunning        status = iota // < keep executing instructions
	statusStopped                      // < STOP or end of code
	statusReturned                     // < RETURN
	statusReverted                     // < REVERT
	statusSelfDestructed               // < SELFDESTRUCT
	statusFaulted                      // < terminated by a fault
)

func (s status) String() string {
	switch s {
	case statusRunning:
		return "running"
	case statusStopped:
		return "stopped"
	case statusReturned:
		return "returned"
	case statusReverted:
		return "reverted"
	case statusSelfDestructed:
		return "self-destructed"
	case statusFaulted:
		return "faulted"
	}
	return fmt.Sprintf("status(%d)", byte(s))
}

// executionState is the mutable record of a single frame. It is created at
// frame entry, mutated only by the execution loop of this frame, and turned
// into an evm.Outcome at exit. Nested frames get their own state.
type executionState struct {
	params  evm.Parameters
	system  evm.System
	code    *Bytecode
	table   *jumpTable
	sstore  sstorePrices
	refunds evm.RefundSchedule
	hasher  keccakHasher

	pc         uint64
	gas        evm.Gas
	refund     evm.Gas
	stack      *Stack
	memory     *Memory
	returnData []byte

	status status
	fault  evm.Fault
}

// useGas charges the given amount. If insufficient gas is left, the frame
// runs out of gas and OutOfGas is returned.
func (s *executionState) useGas(amount evm.Gas) error {
	if amount < 0 || s.gas < amount {
		return evm.OutOfGas
	}
	s.gas -= amount
	return nil
}

func (s *executionState) isAtLeast(revision evm.Revision) bool {
	return s.params.Revision >= revision
}

// fail moves the frame into the faulted state. Errors not naming a fault
// are internal errors and are not expected; they are reported as invalid
// opcodes to keep the frame deterministic.
func (s *executionState) fail(err error) {
	var fault evm.Fault
	if !errors.As(err, &fault) {
		fault = evm.InvalidOpcode
	}
	s.status = statusFaulted
	s.fault = fault
	s.gas = 0
}

// outcome converts the terminal state into an evm.Outcome.
func (s *executionState) outcome() evm.Outcome {
	switch s.status {
	case statusStopped:
		return evm.Outcome{Kind: evm.Returned, GasLeft: s.gas, GasRefund: s.refund}
	case statusReturned:
		return evm.Outcome{Kind: evm.Returned, Output: s.returnData, GasLeft: s.gas, GasRefund: s.refund}
	case statusReverted:
		return evm.Outcome{Kind: evm.Reverted, Output: s.returnData, GasLeft: s.gas}
	case statusSelfDestructed:
		return evm.Outcome{Kind: evm.SelfDestructed, GasLeft: s.gas, GasRefund: s.refund}
	case statusFaulted:
		return evm.NewFaultedOutcome(s.fault)
	}
	// a running frame has no outcome yet
	return evm.NewFaultedOutcome(evm.InvalidOpcode)
}
