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
	"github.com/ethereum/go-ethereum/params"
)

const (
	gasZero    evm.Gas = 0
	gasBase    evm.Gas = 2
	gasVeryLow evm.Gas = 3
	gasLow     evm.Gas = 5
	gasMid     evm.Gas = 8
	gasHigh    evm.Gas = 10

	gasExtStepIstanbul  evm.Gas = 700 // BALANCE, EXT*, CALL* before EIP-2929
	gasSloadIstanbul    evm.Gas = 800 // EIP-2200
	gasSelfdestruct     evm.Gas = 5000
	gasBlockhash        evm.Gas = 20
	gasJumpdest         evm.Gas = 1
	gasSha3             evm.Gas = 30
	gasSha3Word         evm.Gas = 6
	gasCopyWord         evm.Gas = 3
	gasExpByte          evm.Gas = 50
	gasLog              evm.Gas = 375
	gasLogTopic         evm.Gas = 375
	gasLogData          evm.Gas = 8
	gasCreate           evm.Gas = 32000
	gasInitCodeWord     evm.Gas = 2 // EIP-3860
	gasCreate2HashWord  evm.Gas = 6
	gasTransientStorage evm.Gas = 100 // EIP-1153

	CallNewAccountGas       evm.Gas = 25000 // CALL with value to a non-existing account
	CallValueTransferGas    evm.Gas = 9000  // CALL with non-zero value
	CallStipend             evm.Gas = 2300  // free gas granted to the callee of a value transfer
	CreateBySelfdestructGas evm.Gas = 25000

	WarmStorageReadCostEIP2929   evm.Gas = 100
	ColdSloadCostEIP2929         evm.Gas = 2100
	ColdAccountAccessCostEIP2929 evm.Gas = 2600

	SstoreSentryGasEIP2200 evm.Gas = 2300 // minimum gas to be left for SSTORE, not consumed
	SstoreSetGasEIP2200    evm.Gas = 20000
	SstoreResetGasEIP2200  evm.Gas = 5000
)

// maxInitCodeSize limits the init code of CREATE and CREATE2 since Shanghai.
const maxInitCodeSize = params.MaxInitCodeSize

// coldAccountSurcharge is charged on top of the warm access cost included
// in the static gas of account accessing instructions since Berlin.
func coldAccountSurcharge(status evm.AccessStatus) evm.Gas {
	if status == evm.ColdAccess {
		return ColdAccountAccessCostEIP2929 - WarmStorageReadCostEIP2929
	}
	return 0
}

// sstorePrices are the revision dependent components of SSTORE pricing.
type sstorePrices struct {
	noop  evm.Gas // SLOAD_GAS
	set   evm.Gas
	reset evm.Gas
	clear evm.Gas // refund for clearing a slot
}

func getSstorePrices(revision evm.Revision, refunds evm.RefundSchedule) sstorePrices {
	if revision < evm.R09_Berlin {
		return sstorePrices{
			noop:  gasSloadIstanbul,
			set:   SstoreSetGasEIP2200,
			reset: SstoreResetGasEIP2200,
			clear: refunds.StorageClear,
		}
	}
	return sstorePrices{
		noop:  WarmStorageReadCostEIP2929,
		set:   SstoreSetGasEIP2200,
		reset: SstoreResetGasEIP2200 - ColdSloadCostEIP2929,
		clear: refunds.StorageClear,
	}
}

// cost returns the gas charged for an SSTORE with the given effect,
// excluding the cold access surcharge.
func (p sstorePrices) cost(status evm.StorageStatus) evm.Gas {
	switch status {
	case evm.StorageAdded:
		return p.set
	case evm.StorageDeleted, evm.StorageModified:
		return p.reset
	}
	return p.noop
}

// refund returns the refund granted (or withdrawn, if negative) for an
// SSTORE with the given effect.
func (p sstorePrices) refund(status evm.StorageStatus) evm.Gas {
	switch status {
	case evm.StorageDeleted, evm.StorageModifiedDeleted:
		return p.clear
	case evm.StorageDeletedAdded:
		return -p.clear
	case evm.StorageDeletedRestored:
		return p.reset - p.noop - p.clear
	case evm.StorageAddedDeleted:
		return p.set - p.noop
	case evm.StorageModifiedRestored:
		return p.reset - p.noop
	}
	return 0
}

// callGas applies the EIP-150 rule: a nested call receives at most all but
// one 64th of the gas available, and no more than requested.
func callGas(available evm.Gas, requested uint64, requestedIsUint64 bool) evm.Gas {
	limit := available - available/64
	if requestedIsUint64 && requested < uint64(limit) {
		return evm.Gas(requested)
	}
	return limit
}

// initCodeCost returns the EIP-3860 charge for init code of the given size.
func initCodeCost(size uint64) (evm.Gas, error) {
	if size > maxInitCodeSize {
		return 0, evm.InitCodeTooLarge
	}
	return gasInitCodeWord * evm.Gas(evm.SizeInWords(size)), nil
}
