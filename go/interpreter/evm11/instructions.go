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
	"bytes"
	"math"

	"github.com/Fantom-foundation/Actors/go/evm"
	"github.com/holiman/uint256"
)

// Instructions are executed after the execution loop checked the stack
// bounds and charged the static gas of the operation. Stack operands may
// therefore be accessed without further checks.

// --- control flow ---

func opStop(s *executionState) error {
	s.status = statusStopped
	return nil
}

func opReturn(s *executionState) error {
	return endWithResult(s, statusReturned)
}

func opRevert(s *executionState) error {
	return endWithResult(s, statusReverted)
}

func endWithResult(s *executionState, status status) error {
	offset, size, err := toOffsetAndSize(s.stack.pop(), s.stack.pop())
	if err != nil {
		return err
	}
	data, err := s.memory.load(offset, size, s)
	if err != nil {
		return err
	}
	s.returnData = bytes.Clone(data)
	s.status = status
	return nil
}

func checkJumpDest(s *executionState, target *uint256.Int) error {
	if !target.IsUint64() || !s.code.IsValidJumpDest(target.Uint64()) {
		return evm.InvalidJump
	}
	return nil
}

func opJump(s *executionState) error {
	target := s.stack.pop()
	if err := checkJumpDest(s, target); err != nil {
		return err
	}
	s.pc = target.Uint64()
	return nil
}

func opJumpi(s *executionState) error {
	target, condition := s.stack.pop(), s.stack.pop()
	if condition.IsZero() {
		s.pc++
		return nil
	}
	if err := checkJumpDest(s, target); err != nil {
		return err
	}
	s.pc = target.Uint64()
	return nil
}

func opJumpdest(s *executionState) error {
	return nil
}

func opPc(s *executionState) error {
	s.stack.pushUndefined().SetUint64(s.pc)
	return nil
}

func opGas(s *executionState) error {
	s.stack.pushUndefined().SetUint64(uint64(s.gas))
	return nil
}

// --- stack ---

func opPop(s *executionState) error {
	s.stack.pop()
	return nil
}

func opPush0(s *executionState) error {
	s.stack.pushUndefined().Clear()
	return nil
}

func makePush(n int) executionFunc {
	return func(s *executionState) error {
		s.stack.pushUndefined().SetBytes(s.code.PushData(s.pc, n))
		s.pc += uint64(n)
		return nil
	}
}

func makeDup(n int) executionFunc {
	return func(s *executionState) error {
		s.stack.dup(n)
		return nil
	}
}

func makeSwap(n int) executionFunc {
	return func(s *executionState) error {
		s.stack.swap(n)
		return nil
	}
}

// --- arithmetic ---

func opAdd(s *executionState) error {
	x, y := s.stack.pop(), s.stack.peek()
	y.Add(x, y)
	return nil
}

func opSub(s *executionState) error {
	x, y := s.stack.pop(), s.stack.peek()
	y.Sub(x, y)
	return nil
}

func opMul(s *executionState) error {
	x, y := s.stack.pop(), s.stack.peek()
	y.Mul(x, y)
	return nil
}

func opDiv(s *executionState) error {
	x, y := s.stack.pop(), s.stack.peek()
	y.Div(x, y)
	return nil
}

func opSdiv(s *executionState) error {
	x, y := s.stack.pop(), s.stack.peek()
	y.SDiv(x, y)
	return nil
}

func opMod(s *executionState) error {
	x, y := s.stack.pop(), s.stack.peek()
	y.Mod(x, y)
	return nil
}

func opSmod(s *executionState) error {
	x, y := s.stack.pop(), s.stack.peek()
	y.SMod(x, y)
	return nil
}

func opAddmod(s *executionState) error {
	x, y, z := s.stack.pop(), s.stack.pop(), s.stack.peek()
	z.AddMod(x, y, z)
	return nil
}

func opMulmod(s *executionState) error {
	x, y, z := s.stack.pop(), s.stack.pop(), s.stack.peek()
	z.MulMod(x, y, z)
	return nil
}

func opExp(s *executionState) error {
	base, exponent := s.stack.pop(), s.stack.peek()
	if err := s.useGas(gasExpByte * evm.Gas(exponent.ByteLen())); err != nil {
		return err
	}
	exponent.Exp(base, exponent)
	return nil
}

func opSignExtend(s *executionState) error {
	back, num := s.stack.pop(), s.stack.peek()
	num.ExtendSign(num, back)
	return nil
}

// --- comparison and bitwise logic ---

func setBool(z *uint256.Int, value bool) {
	if value {
		z.SetOne()
	} else {
		z.Clear()
	}
}

func opLt(s *executionState) error {
	x, y := s.stack.pop(), s.stack.peek()
	setBool(y, x.Lt(y))
	return nil
}

func opGt(s *executionState) error {
	x, y := s.stack.pop(), s.stack.peek()
	setBool(y, x.Gt(y))
	return nil
}

func opSlt(s *executionState) error {
	x, y := s.stack.pop(), s.stack.peek()
	setBool(y, x.Slt(y))
	return nil
}

func opSgt(s *executionState) error {
	x, y := s.stack.pop(), s.stack.peek()
	setBool(y, x.Sgt(y))
	return nil
}

func opEq(s *executionState) error {
	x, y := s.stack.pop(), s.stack.peek()
	setBool(y, x.Eq(y))
	return nil
}

func opIszero(s *executionState) error {
	x := s.stack.peek()
	setBool(x, x.IsZero())
	return nil
}

func opAnd(s *executionState) error {
	x, y := s.stack.pop(), s.stack.peek()
	y.And(x, y)
	return nil
}

func opOr(s *executionState) error {
	x, y := s.stack.pop(), s.stack.peek()
	y.Or(x, y)
	return nil
}

func opXor(s *executionState) error {
	x, y := s.stack.pop(), s.stack.peek()
	y.Xor(x, y)
	return nil
}

func opNot(s *executionState) error {
	x := s.stack.peek()
	x.Not(x)
	return nil
}

func opByte(s *executionState) error {
	index, value := s.stack.pop(), s.stack.peek()
	value.Byte(index)
	return nil
}

func opShl(s *executionState) error {
	shift, value := s.stack.pop(), s.stack.peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil
}

func opShr(s *executionState) error {
	shift, value := s.stack.pop(), s.stack.peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil
}

func opSar(s *executionState) error {
	shift, value := s.stack.pop(), s.stack.peek()
	if shift.GtUint64(255) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			value.SetAllOne()
		}
		return nil
	}
	value.SRsh(value, uint(shift.Uint64()))
	return nil
}

func opSha3(s *executionState) error {
	offset, size := s.stack.pop(), s.stack.peek()
	offset64, size64, err := toOffsetAndSize(offset, size)
	if err != nil {
		return err
	}
	if err := s.useGas(wordGas(gasSha3Word, size64)); err != nil {
		return err
	}
	data, err := s.memory.load(offset64, size64, s)
	if err != nil {
		return err
	}
	hash := s.hasher.hash(data)
	size.SetBytes32(hash[:])
	return nil
}

// --- environment ---

func opAddress(s *executionState) error {
	s.stack.pushUndefined().SetBytes20(s.params.Recipient[:])
	return nil
}

func opBalance(s *executionState) error {
	top := s.stack.peek()
	address := evm.Address(top.Bytes20())
	if err := chargeAccountAccess(s, address); err != nil {
		return err
	}
	balance := s.system.GetBalance(address)
	top.SetBytes32(balance[:])
	return nil
}

func opOrigin(s *executionState) error {
	s.stack.pushUndefined().SetBytes20(s.params.Origin[:])
	return nil
}

func opCaller(s *executionState) error {
	s.stack.pushUndefined().SetBytes20(s.params.Sender[:])
	return nil
}

func opCallValue(s *executionState) error {
	s.stack.pushUndefined().SetBytes32(s.params.Value[:])
	return nil
}

func opCallDataLoad(s *executionState) error {
	top := s.stack.peek()
	offset, overflow := top.Uint64WithOverflow()
	if overflow {
		top.Clear()
		return nil
	}
	top.SetBytes32(getData(s.params.Input, offset, 32))
	return nil
}

func opCallDataSize(s *executionState) error {
	s.stack.pushUndefined().SetUint64(uint64(len(s.params.Input)))
	return nil
}

func opCallDataCopy(s *executionState) error {
	return genericDataCopy(s, s.params.Input)
}

func opCodeSize(s *executionState) error {
	s.stack.pushUndefined().SetUint64(uint64(s.code.Len()))
	return nil
}

func opCodeCopy(s *executionState) error {
	return genericDataCopy(s, s.code.Code())
}

func opGasPrice(s *executionState) error {
	s.stack.pushUndefined().SetBytes32(s.params.GasPrice[:])
	return nil
}

func opExtCodeSize(s *executionState) error {
	top := s.stack.peek()
	address := evm.Address(top.Bytes20())
	if err := chargeAccountAccess(s, address); err != nil {
		return err
	}
	top.SetUint64(uint64(s.system.GetCodeSize(address)))
	return nil
}

func opExtCodeCopy(s *executionState) error {
	address := evm.Address(s.stack.pop().Bytes20())
	if err := chargeAccountAccess(s, address); err != nil {
		return err
	}
	return genericDataCopy(s, s.system.GetCode(address))
}

func opExtCodeHash(s *executionState) error {
	top := s.stack.peek()
	address := evm.Address(top.Bytes20())
	if err := chargeAccountAccess(s, address); err != nil {
		return err
	}
	if !s.system.AccountExists(address) {
		top.Clear()
		return nil
	}
	hash := s.system.GetCodeHash(address)
	top.SetBytes32(hash[:])
	return nil
}

func opReturnDataSize(s *executionState) error {
	s.stack.pushUndefined().SetUint64(uint64(len(s.returnData)))
	return nil
}

func opReturnDataCopy(s *executionState) error {
	memOffset, dataOffset, length := s.stack.pop(), s.stack.pop(), s.stack.pop()

	var end uint256.Int
	if _, overflow := end.AddOverflow(dataOffset, length); overflow || !end.IsUint64() {
		return evm.ReturnDataOutOfBounds
	}
	if end.Uint64() > uint64(len(s.returnData)) {
		return evm.ReturnDataOutOfBounds
	}
	offset, size, err := toOffsetAndSize(memOffset, length)
	if err != nil {
		return err
	}
	if err := s.useGas(wordGas(gasCopyWord, size)); err != nil {
		return err
	}
	start := dataOffset.Uint64()
	return s.memory.set(offset, s.returnData[start:start+size], s)
}

// genericDataCopy implements the *COPY instructions reading from a byte
// source. Source positions beyond the end of the data read as zero.
func genericDataCopy(s *executionState, source []byte) error {
	memOffset, dataOffset, length := s.stack.pop(), s.stack.pop(), s.stack.pop()
	offset, size, err := toOffsetAndSize(memOffset, length)
	if err != nil {
		return err
	}
	if err := s.useGas(wordGas(gasCopyWord, size)); err != nil {
		return err
	}
	start, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		start = math.MaxUint64
	}
	target, err := s.memory.load(offset, size, s)
	if err != nil {
		return err
	}
	copy(target, getData(source, start, size))
	return nil
}

// getData returns size bytes of data starting at start, padded with zeros
// on the right where data ends.
func getData(data []byte, start uint64, size uint64) []byte {
	length := uint64(len(data))
	res := make([]byte, size)
	if start >= length {
		return res
	}
	end := length
	if size < length-start {
		end = start + size
	}
	copy(res, data[start:end])
	return res
}

// --- block ---

func opBlockhash(s *executionState) error {
	top := s.stack.peek()
	number, overflow := top.Uint64WithOverflow()
	if overflow {
		top.Clear()
		return nil
	}
	upper := uint64(s.params.BlockNumber)
	lower := uint64(0)
	if upper > 256 {
		lower = upper - 256
	}
	if number < lower || number >= upper {
		top.Clear()
		return nil
	}
	hash := s.system.GetBlockHash(int64(number))
	top.SetBytes32(hash[:])
	return nil
}

func opCoinbase(s *executionState) error {
	s.stack.pushUndefined().SetBytes20(s.params.Coinbase[:])
	return nil
}

func opTimestamp(s *executionState) error {
	s.stack.pushUndefined().SetUint64(uint64(s.params.Timestamp))
	return nil
}

func opNumber(s *executionState) error {
	s.stack.pushUndefined().SetUint64(uint64(s.params.BlockNumber))
	return nil
}

// opPrevRandao also serves as DIFFICULTY before Paris; the host provides
// the respective value.
func opPrevRandao(s *executionState) error {
	s.stack.pushUndefined().SetBytes32(s.params.PrevRandao[:])
	return nil
}

func opGasLimit(s *executionState) error {
	s.stack.pushUndefined().SetUint64(uint64(s.params.GasLimit))
	return nil
}

func opChainId(s *executionState) error {
	s.stack.pushUndefined().SetBytes32(s.params.ChainID[:])
	return nil
}

func opSelfBalance(s *executionState) error {
	balance := s.system.GetBalance(s.params.Recipient)
	s.stack.pushUndefined().SetBytes32(balance[:])
	return nil
}

func opBaseFee(s *executionState) error {
	s.stack.pushUndefined().SetBytes32(s.params.BaseFee[:])
	return nil
}

func opBlobHash(s *executionState) error {
	top := s.stack.peek()
	if index, overflow := top.Uint64WithOverflow(); !overflow && index < uint64(len(s.params.BlobHashes)) {
		top.SetBytes32(s.params.BlobHashes[index][:])
	} else {
		top.Clear()
	}
	return nil
}

func opBlobBaseFee(s *executionState) error {
	s.stack.pushUndefined().SetBytes32(s.params.BlobBaseFee[:])
	return nil
}

// --- memory ---

func opMload(s *executionState) error {
	top := s.stack.peek()
	if !top.IsUint64() {
		return evm.OutOfGas
	}
	return s.memory.readWord(top.Uint64(), top, s)
}

func opMstore(s *executionState) error {
	address, value := s.stack.pop(), s.stack.pop()
	if !address.IsUint64() {
		return evm.OutOfGas
	}
	return s.memory.setWord(address.Uint64(), value, s)
}

func opMstore8(s *executionState) error {
	address, value := s.stack.pop(), s.stack.pop()
	if !address.IsUint64() {
		return evm.OutOfGas
	}
	return s.memory.setByte(address.Uint64(), byte(value.Uint64()), s)
}

func opMsize(s *executionState) error {
	s.stack.pushUndefined().SetUint64(s.memory.Len())
	return nil
}

func opMcopy(s *executionState) error {
	dst, src, length := s.stack.pop(), s.stack.pop(), s.stack.pop()
	if length.IsZero() {
		return nil
	}
	if !dst.IsUint64() || !src.IsUint64() || !length.IsUint64() {
		return evm.OutOfGas
	}
	size := length.Uint64()
	if err := s.useGas(wordGas(gasCopyWord, size)); err != nil {
		return err
	}
	return s.memory.copyWithin(dst.Uint64(), src.Uint64(), size, s)
}

// --- storage ---

func opSload(s *executionState) error {
	top := s.stack.peek()
	key := evm.Key(top.Bytes32())
	if s.isAtLeast(evm.R09_Berlin) && s.system.AccessStorage(s.params.Recipient, key) == evm.ColdAccess {
		if err := s.useGas(ColdSloadCostEIP2929 - WarmStorageReadCostEIP2929); err != nil {
			return err
		}
	}
	value := s.system.GetStorage(s.params.Recipient, key)
	top.SetBytes32(value[:])
	return nil
}

func opSstore(s *executionState) error {
	if s.params.Static {
		return evm.StateChangeViolation
	}
	// EIP-2200: SSTORE fails if no more than the call stipend is left.
	if s.gas <= SstoreSentryGasEIP2200 {
		return evm.OutOfGas
	}
	key := evm.Key(s.stack.pop().Bytes32())
	value := evm.Word(s.stack.pop().Bytes32())

	cost := evm.Gas(0)
	if s.isAtLeast(evm.R09_Berlin) && s.system.AccessStorage(s.params.Recipient, key) == evm.ColdAccess {
		cost += ColdSloadCostEIP2929
	}
	status := s.system.SetStorage(s.params.Recipient, key, value)
	cost += s.sstore.cost(status)
	if err := s.useGas(cost); err != nil {
		return err
	}
	s.refund += s.sstore.refund(status)
	return nil
}

func opTload(s *executionState) error {
	top := s.stack.peek()
	value := s.system.GetTransientStorage(s.params.Recipient, evm.Key(top.Bytes32()))
	top.SetBytes32(value[:])
	return nil
}

func opTstore(s *executionState) error {
	if s.params.Static {
		return evm.StateChangeViolation
	}
	key := evm.Key(s.stack.pop().Bytes32())
	value := evm.Word(s.stack.pop().Bytes32())
	s.system.SetTransientStorage(s.params.Recipient, key, value)
	return nil
}

// --- logs ---

func makeLog(numTopics int) executionFunc {
	return func(s *executionState) error {
		if s.params.Static {
			return evm.StateChangeViolation
		}
		offset, size, err := toOffsetAndSize(s.stack.pop(), s.stack.pop())
		if err != nil {
			return err
		}
		topics := make([]evm.Hash, numTopics)
		for i := range topics {
			topics[i] = s.stack.pop().Bytes32()
		}
		if err := s.useGas(byteGas(gasLogData, size)); err != nil {
			return err
		}
		data, err := s.memory.load(offset, size, s)
		if err != nil {
			return err
		}
		s.system.EmitLog(evm.Log{
			Address: s.params.Recipient,
			Topics:  topics,
			Data:    bytes.Clone(data),
		})
		return nil
	}
}

// --- self-destruct ---

func opSelfdestruct(s *executionState) error {
	if s.params.Static {
		return evm.StateChangeViolation
	}
	beneficiary := evm.Address(s.stack.pop().Bytes20())

	cost := evm.Gas(0)
	// EIP-2929 charges cold beneficiaries only; warm access is free.
	if s.isAtLeast(evm.R09_Berlin) && s.system.AccessAccount(beneficiary) == evm.ColdAccess {
		cost += ColdAccountAccessCostEIP2929
	}
	balance := s.system.GetBalance(s.params.Recipient)
	if !balance.IsZero() && !s.system.AccountExists(beneficiary) {
		cost += CreateBySelfdestructGas
	}
	if err := s.useGas(cost); err != nil {
		return err
	}
	if s.system.SelfDestruct(s.params.Recipient, beneficiary) {
		s.refund += s.refunds.SelfDestruct
	}
	s.status = statusSelfDestructed
	return nil
}

// --- helpers ---

// chargeAccountAccess charges the EIP-2929 surcharge for cold accounts.
func chargeAccountAccess(s *executionState, address evm.Address) error {
	if !s.isAtLeast(evm.R09_Berlin) {
		return nil
	}
	return s.useGas(coldAccountSurcharge(s.system.AccessAccount(address)))
}

// toOffsetAndSize converts memory range operands. Zero-sized ranges are
// valid regardless of their offset and are reported as (0, 0). Ranges that
// can not be addressed could never be paid for and fault with OutOfGas.
func toOffsetAndSize(offset, size *uint256.Int) (uint64, uint64, error) {
	if size.IsZero() {
		return 0, 0, nil
	}
	if !offset.IsUint64() || !size.IsUint64() {
		return 0, 0, evm.OutOfGas
	}
	return offset.Uint64(), size.Uint64(), nil
}

// wordGas returns perWord times the number of words covering size bytes,
// saturating at the largest gas value.
func wordGas(perWord evm.Gas, size uint64) evm.Gas {
	return byteGas(perWord, evm.SizeInWords(size))
}

// byteGas returns perUnit*count, saturating at the largest gas value.
func byteGas(perUnit evm.Gas, count uint64) evm.Gas {
	if count > uint64(math.MaxInt64/perUnit) {
		return math.MaxInt64
	}
	return perUnit * evm.Gas(count)
}
