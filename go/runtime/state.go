// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package runtime

import (
	"bytes"
	"maps"
	"slices"

	"github.com/Fantom-foundation/Actors/go/evm"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account is the state of a single account.
type Account struct {
	Balance evm.Value
	Nonce   uint64
	Code    evm.Code
	Storage map[evm.Key]evm.Word

	codeHash *evm.Hash // < lazily computed hash of Code
}

// IsEmpty reports whether the account is empty in the sense of EIP-161.
func (a *Account) IsEmpty() bool {
	return a.Balance.IsZero() && a.Nonce == 0 && len(a.Code) == 0
}

func (a Account) clone() Account {
	a.Code = bytes.Clone(a.Code)
	a.Storage = maps.Clone(a.Storage)
	return a
}

// WorldState maps addresses to accounts.
type WorldState map[evm.Address]Account

// Clone creates a deep copy of the world state.
func (s WorldState) Clone() WorldState {
	res := make(WorldState, len(s))
	for addr, account := range s {
		res[addr] = account.clone()
	}
	return res
}

type slot struct {
	address evm.Address
	key     evm.Key
}

// State is the mutable world state observed by a transaction. Every
// modification is recorded in an undo log, so that the effects of frames
// that revert or fault can be rolled back to a snapshot. A State is not safe
// for concurrent use.
type State struct {
	committed WorldState // < state at the start of the current transaction
	current   WorldState

	transient        map[slot]evm.Word
	accessedAccounts map[evm.Address]struct{}
	accessedSlots    map[slot]struct{}
	created          map[evm.Address]struct{}
	selfDestructed   map[evm.Address]struct{}
	destructed       []evm.Address // < removed at the end of the transaction
	logs             []evm.Log

	undo []func()
}

// NewState creates a state starting from a copy of the given world state.
func NewState(initial WorldState) *State {
	s := &State{
		committed: initial.Clone(),
		current:   initial.Clone(),
	}
	s.resetTransaction()
	return s
}

func (s *State) resetTransaction() {
	s.transient = map[slot]evm.Word{}
	s.accessedAccounts = map[evm.Address]struct{}{}
	s.accessedSlots = map[slot]struct{}{}
	s.created = map[evm.Address]struct{}{}
	s.selfDestructed = map[evm.Address]struct{}{}
	s.destructed = nil
	s.logs = nil
	s.undo = nil
}

// Snapshot returns an identifier of the current state to be used with
// RevertToSnapshot.
func (s *State) Snapshot() int {
	return len(s.undo)
}

// RevertToSnapshot undoes all modifications performed after the snapshot
// was taken. Snapshots taken after the given one become invalid.
func (s *State) RevertToSnapshot(snapshot int) {
	for len(s.undo) > snapshot {
		s.undo[len(s.undo)-1]()
		s.undo = s.undo[:len(s.undo)-1]
	}
}

// EndTransaction removes the accounts scheduled for destruction, commits
// the current state and resets all transaction scoped data.
func (s *State) EndTransaction() {
	for _, addr := range s.destructed {
		delete(s.current, addr)
	}
	s.committed = s.current.Clone()
	s.resetTransaction()
}

// Accounts returns a copy of the current world state.
func (s *State) Accounts() WorldState {
	return s.current.Clone()
}

// update applies the given modification to an account and records its
// reversal in the undo log.
func (s *State) update(addr evm.Address, modify func(*Account)) {
	original, existed := s.current[addr]
	modified := original
	modify(&modified)
	s.current[addr] = modified
	s.undo = append(s.undo, func() {
		if existed {
			s.current[addr] = original
		} else {
			delete(s.current, addr)
		}
	})
}

func (s *State) AccountExists(addr evm.Address) bool {
	account, found := s.current[addr]
	return found && !account.IsEmpty()
}

func (s *State) GetBalance(addr evm.Address) evm.Value {
	return s.current[addr].Balance
}

func (s *State) SetBalance(addr evm.Address, value evm.Value) {
	s.update(addr, func(a *Account) { a.Balance = value })
}

func (s *State) GetNonce(addr evm.Address) uint64 {
	return s.current[addr].Nonce
}

func (s *State) SetNonce(addr evm.Address, nonce uint64) {
	s.update(addr, func(a *Account) { a.Nonce = nonce })
}

func (s *State) GetCode(addr evm.Address) evm.Code {
	return s.current[addr].Code
}

func (s *State) GetCodeSize(addr evm.Address) int {
	return len(s.current[addr].Code)
}

// GetCodeHash returns the hash of the account's code, or the zero hash if
// the account does not exist.
func (s *State) GetCodeHash(addr evm.Address) evm.Hash {
	account, found := s.current[addr]
	if !found || account.IsEmpty() {
		return evm.Hash{}
	}
	if account.codeHash == nil {
		hash := evm.Hash(crypto.Keccak256Hash(account.Code))
		account.codeHash = &hash
		s.current[addr] = account
	}
	return *account.codeHash
}

func (s *State) SetCode(addr evm.Address, code evm.Code) {
	s.update(addr, func(a *Account) {
		a.Code = bytes.Clone(code)
		a.codeHash = nil
	})
}

func (s *State) GetStorage(addr evm.Address, key evm.Key) evm.Word {
	return s.current[addr].Storage[key]
}

// GetCommittedStorage returns the value of a slot at the start of the
// current transaction.
func (s *State) GetCommittedStorage(addr evm.Address, key evm.Key) evm.Word {
	return s.committed[addr].Storage[key]
}

// SetStorage updates a slot and classifies the update for gas pricing.
func (s *State) SetStorage(addr evm.Address, key evm.Key, value evm.Word) evm.StorageStatus {
	original := s.GetCommittedStorage(addr, key)
	current := s.GetStorage(addr, key)
	if account, found := s.current[addr]; !found || account.Storage == nil {
		s.update(addr, func(a *Account) { a.Storage = map[evm.Key]evm.Word{} })
	}

	// only the modified slot is journaled
	storage := s.current[addr].Storage
	previous, existed := storage[key]
	if value == (evm.Word{}) {
		delete(storage, key)
	} else {
		storage[key] = value
	}
	s.undo = append(s.undo, func() {
		if existed {
			storage[key] = previous
		} else {
			delete(storage, key)
		}
	})
	return evm.GetStorageStatus(original, current, value)
}

func (s *State) GetTransientStorage(addr evm.Address, key evm.Key) evm.Word {
	return s.transient[slot{addr, key}]
}

func (s *State) SetTransientStorage(addr evm.Address, key evm.Key, value evm.Word) {
	id := slot{addr, key}
	original, existed := s.transient[id]
	s.transient[id] = value
	s.undo = append(s.undo, func() {
		if existed {
			s.transient[id] = original
		} else {
			delete(s.transient, id)
		}
	})
}

// AccessAccount adds the account to the access list and reports whether it
// was accessed before.
func (s *State) AccessAccount(addr evm.Address) evm.AccessStatus {
	if _, found := s.accessedAccounts[addr]; found {
		return evm.WarmAccess
	}
	s.accessedAccounts[addr] = struct{}{}
	s.undo = append(s.undo, func() { delete(s.accessedAccounts, addr) })
	return evm.ColdAccess
}

// AccessStorage adds the slot to the access list and reports whether it was
// accessed before.
func (s *State) AccessStorage(addr evm.Address, key evm.Key) evm.AccessStatus {
	id := slot{addr, key}
	if _, found := s.accessedSlots[id]; found {
		return evm.WarmAccess
	}
	s.accessedSlots[id] = struct{}{}
	s.undo = append(s.undo, func() { delete(s.accessedSlots, id) })
	return evm.ColdAccess
}

func (s *State) EmitLog(log evm.Log) {
	length := len(s.logs)
	s.logs = append(s.logs, log)
	s.undo = append(s.undo, func() { s.logs = s.logs[:length] })
}

// Logs returns the logs emitted in the current transaction.
func (s *State) Logs() []evm.Log {
	return slices.Clone(s.logs)
}

// MarkCreated records that the account was created in the current
// transaction.
func (s *State) MarkCreated(addr evm.Address) {
	if _, found := s.created[addr]; found {
		return
	}
	s.created[addr] = struct{}{}
	s.undo = append(s.undo, func() { delete(s.created, addr) })
}

func (s *State) IsCreated(addr evm.Address) bool {
	_, found := s.created[addr]
	return found
}

// MarkSelfDestructed records that the account executed SELFDESTRUCT in the
// current transaction, whether or not it is removed. It reports false if
// the account was marked before.
func (s *State) MarkSelfDestructed(addr evm.Address) bool {
	if s.HasSelfDestructed(addr) {
		return false
	}
	s.selfDestructed[addr] = struct{}{}
	s.undo = append(s.undo, func() { delete(s.selfDestructed, addr) })
	return true
}

func (s *State) HasSelfDestructed(addr evm.Address) bool {
	_, found := s.selfDestructed[addr]
	return found
}

// ScheduleDestruction marks the account for removal at the end of the
// transaction. It reports false if the account was already scheduled.
func (s *State) ScheduleDestruction(addr evm.Address) bool {
	if s.IsScheduledForDestruction(addr) {
		return false
	}
	length := len(s.destructed)
	s.destructed = append(s.destructed, addr)
	s.undo = append(s.undo, func() { s.destructed = s.destructed[:length] })
	return true
}

func (s *State) IsScheduledForDestruction(addr evm.Address) bool {
	return slices.Contains(s.destructed, addr)
}

// ClearAccount removes the code, nonce and storage of an account while
// keeping its balance.
func (s *State) ClearAccount(addr evm.Address) {
	s.update(addr, func(a *Account) {
		*a = Account{Balance: a.Balance}
	})
}
