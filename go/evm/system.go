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

import "fmt"

//go:generate mockgen -source system.go -destination system_mock.go -package evm

// System is the set of host capabilities an interpreter frame may use. It is
// implemented by the surrounding runtime which owns accounts, storage and the
// call stack. Interpreters charge gas for every operation before calling into
// the System; implementations never charge for the call envelope.
//
// The interpreter never attempts to roll back state itself. Hosts must keep
// track of the effects of each frame and discard them when a frame reverts
// or faults.
type System interface {
	AccountExists(Address) bool

	GetBalance(Address) Value
	GetNonce(Address) uint64

	GetCode(Address) Code
	GetCodeHash(Address) Hash
	GetCodeSize(Address) int

	GetStorage(Address, Key) Word
	SetStorage(Address, Key, Word) StorageStatus

	GetTransientStorage(Address, Key) Word
	SetTransientStorage(Address, Key, Word)

	// AccessAccount marks the account as accessed and reports whether it was
	// accessed before in the current transaction.
	AccessAccount(Address) AccessStatus
	// AccessStorage marks the slot as accessed and reports whether it was
	// accessed before in the current transaction.
	AccessStorage(Address, Key) AccessStatus

	EmitLog(Log)
	GetBlockHash(number int64) Hash

	// SelfDestruct moves the balance of addr to the beneficiary and
	// schedules addr for removal at the end of the transaction where the
	// revision requires it. It returns true if addr did not self-destruct
	// before in the current transaction.
	SelfDestruct(addr Address, beneficiary Address) bool

	// Call runs a nested frame synchronously and returns its outcome. Faults
	// of the nested frame are reported in the result, the error is reserved
	// for failures of the host itself.
	Call(kind CallKind, parameters CallParameters) (CallResult, error)
}

// AccessStatus reports whether an account or slot was accessed before in the
// current transaction (EIP-2929).
type AccessStatus bool

const (
	ColdAccess AccessStatus = false
	WarmAccess AccessStatus = true
)

func (s AccessStatus) String() string {
	if s == WarmAccess {
		return "warm"
	}
	return "cold"
}

// Log is an event emitted by a contract through LOG0-LOG4.
type Log struct {
	Address Address
	Topics  []Hash
	Data    []byte
}

// StorageStatus describes the effect of a storage update on a slot in the
// context of the current transaction. It drives SSTORE pricing.
type StorageStatus int

const (
	// <original> -> <current> -> <new>; X, Y, Z are distinct non-zero values.
	StorageAssigned         StorageStatus = iota
	StorageAdded                          // 0 -> 0 -> Z
	StorageDeleted                        // X -> X -> 0
	StorageModified                       // X -> X -> Z
	StorageDeletedAdded                   // X -> 0 -> Z
	StorageModifiedDeleted                // X -> Y -> 0
	StorageDeletedRestored                // X -> 0 -> X
	StorageAddedDeleted                   // 0 -> Y -> 0
	StorageModifiedRestored               // X -> Y -> X
)

func (s StorageStatus) String() string {
	switch s {
	case StorageAssigned:
		return "StorageAssigned"
	case StorageAdded:
		return "StorageAdded"
	case StorageDeleted:
		return "StorageDeleted"
	case StorageModified:
		return "StorageModified"
	case StorageDeletedAdded:
		return "StorageDeletedAdded"
	case StorageModifiedDeleted:
		return "StorageModifiedDeleted"
	case StorageDeletedRestored:
		return "StorageDeletedRestored"
	case StorageAddedDeleted:
		return "StorageAddedDeleted"
	case StorageModifiedRestored:
		return "StorageModifiedRestored"
	}
	return fmt.Sprintf("StorageStatus(%d)", int(s))
}

// GetStorageStatus classifies an update of a slot from its original
// (committed at transaction start), current and new value.
func GetStorageStatus(original, current, new Word) StorageStatus {
	var zero Word
	if current == new {
		return StorageAssigned
	}
	if original == current {
		switch {
		case original == zero:
			return StorageAdded
		case new == zero:
			return StorageDeleted
		default:
			return StorageModified
		}
	}
	// the slot is dirty: original != current
	switch {
	case original == zero && new == zero:
		return StorageAddedDeleted
	case original == zero:
		return StorageAssigned
	case current == zero && new == original:
		return StorageDeletedRestored
	case current == zero:
		return StorageDeletedAdded
	case new == zero:
		return StorageModifiedDeleted
	case new == original:
		return StorageModifiedRestored
	}
	return StorageAssigned
}
