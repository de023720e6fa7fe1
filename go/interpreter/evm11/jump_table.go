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

import "github.com/Fantom-foundation/Actors/go/evm"

// executionFunc implements the effect of an instruction, including the
// charging of its dynamic gas.
type executionFunc func(s *executionState) error

// operation describes one entry of the dispatch table.
type operation struct {
	execute     executionFunc
	constantGas evm.Gas
	minStack    int  // < stack size required to pop all operands
	maxStack    int  // < largest stack size leaving room for all results
	jumps       bool // < execute sets the program counter itself
}

// jumpTable maps every opcode to its operation. Unassigned opcodes and
// opcodes not yet activated in a revision have a nil entry.
type jumpTable [256]*operation

func stackBounds(pops, pushes int) (int, int) {
	return pops, maxStackSize + pops - pushes
}

func newOperation(execute executionFunc, gas evm.Gas, pops, pushes int) *operation {
	minStack, maxStack := stackBounds(pops, pushes)
	return &operation{
		execute:     execute,
		constantGas: gas,
		minStack:    minStack,
		maxStack:    maxStack,
	}
}

// setConstantGas replaces the entry of op by a copy with the given static
// gas, leaving tables sharing the original entry untouched.
func (t *jumpTable) setConstantGas(op OpCode, gas evm.Gas) {
	entry := *t[op]
	entry.constantGas = gas
	t[op] = &entry
}

var jumpTables = func() [evm.R13_Cancun + 1]*jumpTable {
	istanbul := newIstanbulInstructionSet()
	berlin := newBerlinInstructionSet(istanbul)
	london := newLondonInstructionSet(berlin)
	paris := london // PREVRANDAO reuses the DIFFICULTY slot, the value comes from the block parameters
	shanghai := newShanghaiInstructionSet(paris)
	cancun := newCancunInstructionSet(shanghai)
	return [...]*jumpTable{
		evm.R07_Istanbul: &istanbul,
		evm.R09_Berlin:   &berlin,
		evm.R10_London:   &london,
		evm.R11_Paris:    &paris,
		evm.R12_Shanghai: &shanghai,
		evm.R13_Cancun:   &cancun,
	}
}()

// getJumpTable returns the dispatch table of the given revision or nil if
// the revision is not supported.
func getJumpTable(revision evm.Revision) *jumpTable {
	if revision < evm.R07_Istanbul || int(revision) >= len(jumpTables) {
		return nil
	}
	return jumpTables[revision]
}

func newIstanbulInstructionSet() jumpTable {
	t := jumpTable{
		STOP:       newOperation(opStop, gasZero, 0, 0),
		ADD:        newOperation(opAdd, gasVeryLow, 2, 1),
		MUL:        newOperation(opMul, gasLow, 2, 1),
		SUB:        newOperation(opSub, gasVeryLow, 2, 1),
		DIV:        newOperation(opDiv, gasLow, 2, 1),
		SDIV:       newOperation(opSdiv, gasLow, 2, 1),
		MOD:        newOperation(opMod, gasLow, 2, 1),
		SMOD:       newOperation(opSmod, gasLow, 2, 1),
		ADDMOD:     newOperation(opAddmod, gasMid, 3, 1),
		MULMOD:     newOperation(opMulmod, gasMid, 3, 1),
		EXP:        newOperation(opExp, gasHigh, 2, 1),
		SIGNEXTEND: newOperation(opSignExtend, gasLow, 2, 1),

		LT:     newOperation(opLt, gasVeryLow, 2, 1),
		GT:     newOperation(opGt, gasVeryLow, 2, 1),
		SLT:    newOperation(opSlt, gasVeryLow, 2, 1),
		SGT:    newOperation(opSgt, gasVeryLow, 2, 1),
		EQ:     newOperation(opEq, gasVeryLow, 2, 1),
		ISZERO: newOperation(opIszero, gasVeryLow, 1, 1),
		AND:    newOperation(opAnd, gasVeryLow, 2, 1),
		OR:     newOperation(opOr, gasVeryLow, 2, 1),
		XOR:    newOperation(opXor, gasVeryLow, 2, 1),
		NOT:    newOperation(opNot, gasVeryLow, 1, 1),
		BYTE:   newOperation(opByte, gasVeryLow, 2, 1),
		SHL:    newOperation(opShl, gasVeryLow, 2, 1),
		SHR:    newOperation(opShr, gasVeryLow, 2, 1),
		SAR:    newOperation(opSar, gasVeryLow, 2, 1),

		SHA3: newOperation(opSha3, gasSha3, 2, 1),

		ADDRESS:        newOperation(opAddress, gasBase, 0, 1),
		BALANCE:        newOperation(opBalance, gasExtStepIstanbul, 1, 1),
		ORIGIN:         newOperation(opOrigin, gasBase, 0, 1),
		CALLER:         newOperation(opCaller, gasBase, 0, 1),
		CALLVALUE:      newOperation(opCallValue, gasBase, 0, 1),
		CALLDATALOAD:   newOperation(opCallDataLoad, gasVeryLow, 1, 1),
		CALLDATASIZE:   newOperation(opCallDataSize, gasBase, 0, 1),
		CALLDATACOPY:   newOperation(opCallDataCopy, gasVeryLow, 3, 0),
		CODESIZE:       newOperation(opCodeSize, gasBase, 0, 1),
		CODECOPY:       newOperation(opCodeCopy, gasVeryLow, 3, 0),
		GASPRICE:       newOperation(opGasPrice, gasBase, 0, 1),
		EXTCODESIZE:    newOperation(opExtCodeSize, gasExtStepIstanbul, 1, 1),
		EXTCODECOPY:    newOperation(opExtCodeCopy, gasExtStepIstanbul, 4, 0),
		RETURNDATASIZE: newOperation(opReturnDataSize, gasBase, 0, 1),
		RETURNDATACOPY: newOperation(opReturnDataCopy, gasVeryLow, 3, 0),
		EXTCODEHASH:    newOperation(opExtCodeHash, gasExtStepIstanbul, 1, 1),

		BLOCKHASH:   newOperation(opBlockhash, gasBlockhash, 1, 1),
		COINBASE:    newOperation(opCoinbase, gasBase, 0, 1),
		TIMESTAMP:   newOperation(opTimestamp, gasBase, 0, 1),
		NUMBER:      newOperation(opNumber, gasBase, 0, 1),
		PREVRANDAO:  newOperation(opPrevRandao, gasBase, 0, 1),
		GASLIMIT:    newOperation(opGasLimit, gasBase, 0, 1),
		CHAINID:     newOperation(opChainId, gasBase, 0, 1),
		SELFBALANCE: newOperation(opSelfBalance, gasLow, 0, 1),

		POP:      newOperation(opPop, gasBase, 1, 0),
		MLOAD:    newOperation(opMload, gasVeryLow, 1, 1),
		MSTORE:   newOperation(opMstore, gasVeryLow, 2, 0),
		MSTORE8:  newOperation(opMstore8, gasVeryLow, 2, 0),
		SLOAD:    newOperation(opSload, gasSloadIstanbul, 1, 1),
		SSTORE:   newOperation(opSstore, gasZero, 2, 0),
		JUMP:     newOperation(opJump, gasMid, 1, 0),
		JUMPI:    newOperation(opJumpi, gasHigh, 2, 0),
		PC:       newOperation(opPc, gasBase, 0, 1),
		MSIZE:    newOperation(opMsize, gasBase, 0, 1),
		GAS:      newOperation(opGas, gasBase, 0, 1),
		JUMPDEST: newOperation(opJumpdest, gasJumpdest, 0, 0),

		CREATE:       newOperation(opCreate, gasCreate, 3, 1),
		CALL:         newOperation(opCall, gasExtStepIstanbul, 7, 1),
		CALLCODE:     newOperation(opCallCode, gasExtStepIstanbul, 7, 1),
		RETURN:       newOperation(opReturn, gasZero, 2, 0),
		DELEGATECALL: newOperation(opDelegateCall, gasExtStepIstanbul, 6, 1),
		CREATE2:      newOperation(opCreate2, gasCreate, 4, 1),
		STATICCALL:   newOperation(opStaticCall, gasExtStepIstanbul, 6, 1),
		REVERT:       newOperation(opRevert, gasZero, 2, 0),
		SELFDESTRUCT: newOperation(opSelfdestruct, gasSelfdestruct, 1, 0),
	}
	t[JUMP].jumps = true
	t[JUMPI].jumps = true

	for i := 1; i <= 32; i++ {
		t[PUSH1+OpCode(i-1)] = newOperation(makePush(i), gasVeryLow, 0, 1)
	}
	for i := 1; i <= 16; i++ {
		t[DUP1+OpCode(i-1)] = newOperation(makeDup(i), gasVeryLow, i, i+1)
		t[SWAP1+OpCode(i-1)] = newOperation(makeSwap(i), gasVeryLow, i+1, i+1)
	}
	for i := 0; i <= 4; i++ {
		t[LOG0+OpCode(i)] = newOperation(makeLog(i), gasLog+evm.Gas(i)*gasLogTopic, 2+i, 0)
	}
	return t
}

// newBerlinInstructionSet applies EIP-2929: the static gas of state
// accessing instructions is reduced to the warm access cost, cold accesses
// are charged by the instructions.
func newBerlinInstructionSet(previous jumpTable) jumpTable {
	t := previous
	for _, op := range []OpCode{BALANCE, EXTCODESIZE, EXTCODECOPY, EXTCODEHASH, SLOAD, CALL, CALLCODE, DELEGATECALL, STATICCALL} {
		t.setConstantGas(op, WarmStorageReadCostEIP2929)
	}
	return t
}

// newLondonInstructionSet adds BASEFEE (EIP-3198).
func newLondonInstructionSet(previous jumpTable) jumpTable {
	t := previous
	t[BASEFEE] = newOperation(opBaseFee, gasBase, 0, 1)
	return t
}

// newShanghaiInstructionSet adds PUSH0 (EIP-3855).
func newShanghaiInstructionSet(previous jumpTable) jumpTable {
	t := previous
	t[PUSH0] = newOperation(opPush0, gasBase, 0, 1)
	return t
}

// newCancunInstructionSet adds transient storage (EIP-1153), MCOPY
// (EIP-5656) and the blob instructions (EIP-4844, EIP-7516).
func newCancunInstructionSet(previous jumpTable) jumpTable {
	t := previous
	t[TLOAD] = newOperation(opTload, gasTransientStorage, 1, 1)
	t[TSTORE] = newOperation(opTstore, gasTransientStorage, 2, 0)
	t[MCOPY] = newOperation(opMcopy, gasVeryLow, 3, 0)
	t[BLOBHASH] = newOperation(opBlobHash, gasVeryLow, 1, 1)
	t[BLOBBASEFEE] = newOperation(opBlobBaseFee, gasBase, 0, 1)
	return t
}
