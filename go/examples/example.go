// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package examples provides contracts with a single (int)->int entry point
// and reference implementations of the functions they compute. They are
// used to check interpreters and hosts end to end and to benchmark them.
package examples

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Fantom-foundation/Actors/go/evm"
	"github.com/Fantom-foundation/Actors/go/runtime"
	"github.com/ethereum/go-ethereum/crypto"
)

// Example is a contract together with the selector of its entry point and
// a reference function computing the same result.
type Example struct {
	Name      string
	Code      evm.Code
	codeHash  evm.Hash
	function  uint32
	reference func(int) int
}

func newExample(name string, code []byte, function uint32, reference func(int) int) Example {
	return Example{
		Name:      name,
		Code:      code,
		codeHash:  evm.Hash(crypto.Keccak256Hash(code)),
		function:  function,
		reference: reference,
	}
}

// GetAllExamples lists all examples of this package not depending on any
// state, which can thus be run directly on an interpreter.
func GetAllExamples() []Example {
	return []Example{
		GetIncrementExample(),
		GetSha3Example(),
		GetStaticOverheadExample(),
		GetJumpdestAnalysisExample(),
		GetStopAnalysisExample(),
		GetPush1AnalysisExample(),
		GetPush32AnalysisExample(),
	}
}

// GetStatefulExamples lists the examples using persistent or transient
// storage. They produce correct results only through RunOnRuntime.
func GetStatefulExamples() []Example {
	return []Example{
		GetStorageExample(),
		GetTransientStorageExample(),
	}
}

// Result is the decoded output of an example run.
type Result struct {
	Result  int
	UsedGas evm.Gas
}

// revision is the revision examples are run with.
const revision = evm.R13_Cancun

// RunOn runs the example directly on the given interpreter. The example
// does not have access to any state.
func (e *Example) RunOn(interpreter evm.Interpreter, argument int) (Result, error) {
	const initialGas = math.MaxInt64
	outcome, err := interpreter.Run(evm.Parameters{
		BlockParameters: evm.BlockParameters{Revision: revision},
		System:          noOpSystem{},
		Kind:            evm.Call,
		Code:            e.Code,
		CodeHash:        &e.codeHash,
		Input:           encodeArgument(e.function, argument),
		Gas:             initialGas,
	})
	if err != nil {
		return Result{}, err
	}
	return toResult(outcome, outcome.GasUsed(initialGas))
}

// RunOnRuntime deploys the example into a fresh world state and calls it
// through the given runtime.
func (e *Example) RunOnRuntime(rt *runtime.Runtime, argument int) (Result, error) {
	sender, contract := evm.Address{1}, evm.Address{2}
	state := runtime.NewState(runtime.WorldState{
		sender:   {},
		contract: {Code: e.Code},
	})
	receipt, err := rt.Execute(state, evm.BlockParameters{Revision: revision}, evm.TransactionParameters{}, runtime.Message{
		Sender:    sender,
		Recipient: &contract,
		Input:     encodeArgument(e.function, argument),
		GasLimit:  math.MaxInt64,
	})
	if err != nil {
		return Result{}, err
	}
	return toResult(receipt.Outcome, receipt.GasUsed)
}

// RunReference computes the expected result of the example.
func (e *Example) RunReference(argument int) int {
	return e.reference(argument)
}

func toResult(outcome evm.Outcome, used evm.Gas) (Result, error) {
	if outcome.Kind != evm.Returned {
		return Result{}, fmt.Errorf("unexpected outcome: %v", outcome)
	}
	result, err := decodeOutput(outcome.Output)
	if err != nil {
		return Result{}, err
	}
	return Result{Result: result, UsedGas: used}, nil
}

// encodeArgument creates call data consisting of the function selector and
// the argument padded to 32 bytes, following the Solidity ABI.
func encodeArgument(function uint32, arg int) []byte {
	data := make([]byte, 4+32)
	binary.BigEndian.PutUint32(data, function)
	binary.BigEndian.PutUint32(data[4+28:], uint32(arg))
	return data
}

func decodeOutput(output []byte) (int, error) {
	if len(output) != 32 {
		return 0, fmt.Errorf("unexpected length of output; wanted 32, got %d", len(output))
	}
	return int(binary.BigEndian.Uint32(output[28:])), nil
}

// noOpSystem is a System for examples not depending on any chain state.
// No operation has any effect.
type noOpSystem struct{}

func (noOpSystem) AccountExists(evm.Address) bool             { return false }
func (noOpSystem) GetBalance(evm.Address) evm.Value           { return evm.Value{} }
func (noOpSystem) GetNonce(evm.Address) uint64                { return 0 }
func (noOpSystem) GetCode(evm.Address) evm.Code               { return nil }
func (noOpSystem) GetCodeHash(evm.Address) evm.Hash           { return evm.Hash{} }
func (noOpSystem) GetCodeSize(evm.Address) int                { return 0 }
func (noOpSystem) GetStorage(evm.Address, evm.Key) evm.Word   { return evm.Word{} }
func (noOpSystem) GetBlockHash(int64) evm.Hash                { return evm.Hash{} }
func (noOpSystem) EmitLog(evm.Log)                            {}
func (noOpSystem) SelfDestruct(evm.Address, evm.Address) bool { return false }

func (noOpSystem) SetStorage(evm.Address, evm.Key, evm.Word) evm.StorageStatus {
	return evm.StorageAdded
}

func (noOpSystem) GetTransientStorage(evm.Address, evm.Key) evm.Word {
	return evm.Word{}
}

func (noOpSystem) SetTransientStorage(evm.Address, evm.Key, evm.Word) {}

func (noOpSystem) AccessAccount(evm.Address) evm.AccessStatus {
	return evm.ColdAccess
}

func (noOpSystem) AccessStorage(evm.Address, evm.Key) evm.AccessStatus {
	return evm.ColdAccess
}

func (noOpSystem) Call(evm.CallKind, evm.CallParameters) (evm.CallResult, error) {
	return evm.CallResult{}, nil
}
