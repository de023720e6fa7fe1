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

// GetTransientStorageExample accumulates the squares of 1..n in a transient
// storage slot and returns the final value of the slot.
func GetTransientStorageExample() Example {
	const loopStart, loopEnd = 3, 26
	code := []byte{
		byte(vm.PUSH1), 4,
		byte(vm.CALLDATALOAD),

		byte(vm.JUMPDEST),
		byte(vm.DUP1),
		byte(vm.ISZERO),
		byte(vm.PUSH1), loopEnd,
		byte(vm.JUMPI),

		// transient[0] += i*i
		byte(vm.DUP1),
		byte(vm.DUP1),
		byte(vm.MUL),
		byte(vm.PUSH1), 0,
		byte(vm.TLOAD),
		byte(vm.ADD),
		byte(vm.PUSH1), 0,
		byte(vm.TSTORE),

		byte(vm.PUSH1), 1,
		byte(vm.SWAP1),
		byte(vm.SUB),
		byte(vm.PUSH1), loopStart,
		byte(vm.JUMP),

		byte(vm.JUMPDEST),
		byte(vm.PUSH1), 0,
		byte(vm.TLOAD),
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}
	return newExample("transient_storage", code, 0, func(n int) int { return n * (n + 1) * (2*n + 1) / 6 })
}
