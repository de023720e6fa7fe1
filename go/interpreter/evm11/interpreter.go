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
)

// runner drives the execution loop of a frame. Runners differ in what they
// observe along the way; all of them leave the frame in a terminal state.
type runner interface {
	run(*executionState)
}

// vanillaRunner executes the code without any additional features.
type vanillaRunner struct{}

func (vanillaRunner) run(s *executionState) {
	execute(s)
}

// execute runs the frame until it reaches a terminal state.
func execute(s *executionState) {
	for s.status == statusRunning {
		step(s)
	}
}

// step executes the instruction at the current program counter.
func step(s *executionState) {
	if s.pc >= uint64(s.code.Len()) {
		s.status = statusStopped
		return
	}

	op := s.table[s.code.OpCodeAt(s.pc)]
	if op == nil {
		s.fail(evm.InvalidOpcode)
		return
	}

	if size := s.stack.Len(); size < op.minStack {
		s.fail(evm.StackUnderflow)
		return
	} else if size > op.maxStack {
		s.fail(evm.StackOverflow)
		return
	}

	if err := s.useGas(op.constantGas); err != nil {
		s.fail(err)
		return
	}

	if err := op.execute(s); err != nil {
		s.fail(err)
		return
	}

	if !op.jumps {
		s.pc++
	}
}

// run sets up the state of a frame, executes it with the given runner and
// converts the final state into an outcome.
func run(config interpreterConfig, params evm.Parameters, code *Bytecode) evm.Outcome {
	if code.Len() == 0 {
		return evm.Outcome{Kind: evm.Returned, GasLeft: params.Gas}
	}

	state := executionState{
		params:  params,
		system:  params.System,
		code:    code,
		table:   config.table,
		sstore:  getSstorePrices(params.Revision, config.refunds),
		refunds: config.refunds,
		hasher:  config.hasher,
		gas:     params.Gas,
		stack:   NewStack(),
		memory:  NewMemory(),
	}
	defer ReturnStack(state.stack)

	config.runner.run(&state)
	return state.outcome()
}

// interpreterConfig bundles the per-frame settings derived from the
// interpreter configuration and the frame's revision.
type interpreterConfig struct {
	table   *jumpTable
	refunds evm.RefundSchedule
	hasher  keccakHasher
	runner  runner
}
