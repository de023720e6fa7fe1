// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package examples

import "github.com/ethereum/go-ethereum/core/vm"

// GetStorageExample writes the values 1..n into the storage slots of the
// same number and sums them up again by reading them back.
func GetStorageExample() Example {
	const writeLoop, writeEnd, readLoop, readEnd = 4, 20, 24, 42
	code := []byte{
		byte(vm.PUSH1), 4,
		byte(vm.CALLDATALOAD),
		byte(vm.DUP1),

		// storage[i] = i for i = n..1
		byte(vm.JUMPDEST),
		byte(vm.DUP1),
		byte(vm.ISZERO),
		byte(vm.PUSH1), writeEnd,
		byte(vm.JUMPI),
		byte(vm.DUP1),
		byte(vm.DUP1),
		byte(vm.SSTORE),
		byte(vm.PUSH1), 1,
		byte(vm.SWAP1),
		byte(vm.SUB),
		byte(vm.PUSH1), writeLoop,
		byte(vm.JUMP),

		byte(vm.JUMPDEST),
		byte(vm.POP),
		byte(vm.PUSH1), 0,

		// sum += storage[i] for i = n..1
		byte(vm.JUMPDEST),
		byte(vm.DUP2),
		byte(vm.ISZERO),
		byte(vm.PUSH1), readEnd,
		byte(vm.JUMPI),
		byte(vm.DUP2),
		byte(vm.SLOAD),
		byte(vm.ADD),
		byte(vm.SWAP1),
		byte(vm.PUSH1), 1,
		byte(vm.SWAP1),
		byte(vm.SUB),
		byte(vm.SWAP1),
		byte(vm.PUSH1), readLoop,
		byte(vm.JUMP),

		byte(vm.JUMPDEST),
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}
	return newExample("storage", code, 0, func(n int) int { return n * (n + 1) / 2 })
}
