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
	"testing"

	"github.com/Fantom-foundation/Actors/go/evm"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	alice = evm.Address{19: 0xA1}
	bob   = evm.Address{19: 0xB0}
)

func TestState_SnapshotRevertsAllModifications(t *testing.T) {
	state := NewState(WorldState{
		alice: {Balance: evm.NewValue(100), Nonce: 1},
	})

	snapshot := state.Snapshot()
	state.SetBalance(alice, evm.NewValue(50))
	state.SetNonce(alice, 2)
	state.SetCode(bob, evm.Code{0x01})
	state.SetStorage(alice, evm.Key{1}, evm.Word{2})
	state.SetTransientStorage(alice, evm.Key{1}, evm.Word{3})
	state.AccessAccount(bob)
	state.AccessStorage(bob, evm.Key{1})
	state.EmitLog(evm.Log{Address: alice})
	state.MarkCreated(bob)
	state.MarkSelfDestructed(alice)
	state.ScheduleDestruction(alice)

	state.RevertToSnapshot(snapshot)

	if want, got := evm.NewValue(100), state.GetBalance(alice); want != got {
		t.Errorf("unexpected balance, wanted %v, got %v", want, got)
	}
	if want, got := uint64(1), state.GetNonce(alice); want != got {
		t.Errorf("unexpected nonce, wanted %d, got %d", want, got)
	}
	if _, found := state.Accounts()[bob]; found {
		t.Errorf("account created after the snapshot still exists")
	}
	if want, got := (evm.Word{}), state.GetStorage(alice, evm.Key{1}); want != got {
		t.Errorf("unexpected storage, wanted %v, got %v", want, got)
	}
	if want, got := (evm.Word{}), state.GetTransientStorage(alice, evm.Key{1}); want != got {
		t.Errorf("unexpected transient storage, wanted %v, got %v", want, got)
	}
	if want, got := evm.ColdAccess, state.AccessAccount(bob); want != got {
		t.Errorf("account access was not reverted")
	}
	if want, got := evm.ColdAccess, state.AccessStorage(bob, evm.Key{1}); want != got {
		t.Errorf("storage access was not reverted")
	}
	if got := state.Logs(); len(got) != 0 {
		t.Errorf("logs were not reverted: %v", got)
	}
	if state.IsCreated(bob) {
		t.Errorf("creation mark was not reverted")
	}
	if state.HasSelfDestructed(alice) {
		t.Errorf("self-destruct was not reverted")
	}
	if state.IsScheduledForDestruction(alice) {
		t.Errorf("scheduled removal was not reverted")
	}
}

func TestState_NestedSnapshotsAreIndependent(t *testing.T) {
	state := NewState(nil)

	state.SetBalance(alice, evm.NewValue(1))
	outer := state.Snapshot()
	state.SetBalance(alice, evm.NewValue(2))
	inner := state.Snapshot()
	state.SetBalance(alice, evm.NewValue(3))

	state.RevertToSnapshot(inner)
	if want, got := evm.NewValue(2), state.GetBalance(alice); want != got {
		t.Errorf("unexpected balance after inner revert, wanted %v, got %v", want, got)
	}
	state.RevertToSnapshot(outer)
	if want, got := evm.NewValue(1), state.GetBalance(alice); want != got {
		t.Errorf("unexpected balance after outer revert, wanted %v, got %v", want, got)
	}
}

func TestState_SetStorageClassifiesAgainstCommittedValue(t *testing.T) {
	one, two := evm.Word{31: 1}, evm.Word{31: 2}
	state := NewState(WorldState{
		alice: {Storage: map[evm.Key]evm.Word{{}: one}},
	})

	steps := []struct {
		value evm.Word
		want  evm.StorageStatus
	}{
		{two, evm.StorageModified},
		{evm.Word{}, evm.StorageModifiedDeleted},
		{one, evm.StorageDeletedRestored},
		{one, evm.StorageAssigned},
		{evm.Word{}, evm.StorageDeleted},
	}
	for i, step := range steps {
		if want, got := step.want, state.SetStorage(alice, evm.Key{}, step.value); want != got {
			t.Errorf("step %d: unexpected status, wanted %v, got %v", i, want, got)
		}
	}

	state.EndTransaction()
	if want, got := evm.StorageAdded, state.SetStorage(alice, evm.Key{}, two); want != got {
		t.Errorf("committed value was not updated, wanted %v, got %v", want, got)
	}
}

func TestState_SnapshotsDoNotAliasStorage(t *testing.T) {
	initial := WorldState{alice: {Storage: map[evm.Key]evm.Word{}}}
	state := NewState(initial)

	snapshot := state.Snapshot()
	state.SetStorage(alice, evm.Key{1}, evm.Word{1})
	state.RevertToSnapshot(snapshot)

	if len(initial[alice].Storage) != 0 {
		t.Errorf("initial world state was modified")
	}
	if want, got := (evm.Word{}), state.GetStorage(alice, evm.Key{1}); want != got {
		t.Errorf("storage modification survived revert")
	}
}

func TestState_StorageWritesAreRevertedSlotBySlot(t *testing.T) {
	state := NewState(WorldState{})

	state.SetStorage(alice, evm.Key{1}, evm.Word{1})
	snapshot := state.Snapshot()
	state.SetStorage(alice, evm.Key{1}, evm.Word{2})
	state.SetStorage(alice, evm.Key{2}, evm.Word{3})
	state.SetStorage(alice, evm.Key{1}, evm.Word{})

	state.RevertToSnapshot(snapshot)
	if want, got := (evm.Word{1}), state.GetStorage(alice, evm.Key{1}); want != got {
		t.Errorf("unexpected value of first slot, wanted %v, got %v", want, got)
	}
	if want, got := (evm.Word{}), state.GetStorage(alice, evm.Key{2}); want != got {
		t.Errorf("unexpected value of second slot, wanted %v, got %v", want, got)
	}

	state.RevertToSnapshot(0)
	if _, found := state.Accounts()[alice]; found {
		t.Errorf("account created by a reverted write still exists")
	}
}

func TestState_SetStorageDoesNotCopyStorage(t *testing.T) {
	storage := map[evm.Key]evm.Word{}
	for i := 0; i < 1000; i++ {
		storage[evm.Key{0: byte(i >> 8), 1: byte(i)}] = evm.Word{1}
	}
	state := NewState(WorldState{alice: {Storage: storage}})

	allocs := testing.AllocsPerRun(100, func() {
		state.SetStorage(alice, evm.Key{}, evm.Word{2})
	})
	if allocs > 3 {
		t.Errorf("updating a single slot should not copy the storage, got %.0f allocations", allocs)
	}
}

func TestState_EndTransactionRemovesDestructedAccounts(t *testing.T) {
	state := NewState(WorldState{
		alice: {Balance: evm.NewValue(1), Code: evm.Code{0x00}},
		bob:   {Balance: evm.NewValue(1)},
	})
	state.SetTransientStorage(bob, evm.Key{}, evm.Word{1})
	state.AccessAccount(bob)

	if !state.ScheduleDestruction(alice) {
		t.Fatalf("first destruction should be reported")
	}
	if state.ScheduleDestruction(alice) {
		t.Errorf("repeated destruction should not be reported")
	}
	state.EndTransaction()

	accounts := state.Accounts()
	if _, found := accounts[alice]; found {
		t.Errorf("destructed account still exists")
	}
	if _, found := accounts[bob]; !found {
		t.Errorf("other account was removed")
	}
	if want, got := (evm.Word{}), state.GetTransientStorage(bob, evm.Key{}); want != got {
		t.Errorf("transient storage survived the transaction")
	}
	if want, got := evm.ColdAccess, state.AccessAccount(bob); want != got {
		t.Errorf("access list survived the transaction")
	}
}

func TestState_SelfDestructIsTrackedIndependentlyOfRemoval(t *testing.T) {
	state := NewState(WorldState{alice: {Balance: evm.NewValue(1)}})

	if !state.MarkSelfDestructed(alice) {
		t.Fatalf("first self-destruct should be reported")
	}
	if state.MarkSelfDestructed(alice) {
		t.Errorf("repeated self-destruct should not be reported")
	}
	if state.IsScheduledForDestruction(alice) {
		t.Errorf("self-destructed account should not be scheduled for removal implicitly")
	}

	state.EndTransaction()
	if _, found := state.Accounts()[alice]; !found {
		t.Errorf("account without scheduled removal was deleted")
	}
	if state.HasSelfDestructed(alice) {
		t.Errorf("self-destruct mark survived the transaction")
	}
}

func TestState_CodeHash(t *testing.T) {
	code := evm.Code{0x60, 0x01}
	state := NewState(WorldState{
		alice: {Code: code},
		bob:   {Balance: evm.NewValue(1)},
	})

	tests := map[string]struct {
		address evm.Address
		want    evm.Hash
	}{
		"missing account":      {evm.Address{0xFF}, evm.Hash{}},
		"account with code":    {alice, evm.Hash(crypto.Keccak256Hash(code))},
		"account without code": {bob, evm.Hash(crypto.Keccak256Hash(nil))},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if want, got := test.want, state.GetCodeHash(test.address); want != got {
				t.Errorf("unexpected code hash, wanted %v, got %v", want, got)
			}
		})
	}

	state.SetCode(alice, evm.Code{0x00})
	if want, got := evm.Hash(crypto.Keccak256Hash([]byte{0x00})), state.GetCodeHash(alice); want != got {
		t.Errorf("code hash was not updated, wanted %v, got %v", want, got)
	}
}

func TestState_ClearAccountKeepsBalance(t *testing.T) {
	state := NewState(WorldState{
		alice: {
			Balance: evm.NewValue(3),
			Nonce:   4,
			Code:    evm.Code{0x00},
			Storage: map[evm.Key]evm.Word{{}: {1}},
		},
	})

	state.ClearAccount(alice)

	if want, got := evm.NewValue(3), state.GetBalance(alice); want != got {
		t.Errorf("unexpected balance, wanted %v, got %v", want, got)
	}
	if state.GetNonce(alice) != 0 || state.GetCodeSize(alice) != 0 || state.GetStorage(alice, evm.Key{}) != (evm.Word{}) {
		t.Errorf("account was not cleared: %v", state.Accounts()[alice])
	}
}
