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

import (
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
)

// GetSha3Example returns a contract hashing a zero word n times, feeding
// each hash into the next iteration. It returns the last byte of the final
// hash.
func GetSha3Example() Example {
	const loopStart, loopEnd = 3, 24
	code := []byte{
		byte(vm.PUSH1), 4,
		byte(vm.CALLDATALOAD),

		// loop while the counter is not zero
		byte(vm.JUMPDEST),
		byte(vm.DUP1),
		byte(vm.ISZERO),
		byte(vm.PUSH1), loopEnd,
		byte(vm.JUMPI),

		// memory[0:32] = keccak(memory[0:32])
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.KECCAK256),
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),

		byte(vm.PUSH1), 1,
		byte(vm.SWAP1),
		byte(vm.SUB),
		byte(vm.PUSH1), loopStart,
		byte(vm.JUMP),

		byte(vm.JUMPDEST),
		byte(vm.PUSH1), 0,
		byte(vm.MLOAD),
		byte(vm.PUSH1), 0xFF,
		byte(vm.AND),
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}
	return newExample("sha3", code, 0, sha3Reference)
}

func sha3Reference(n int) int {
	hash := make([]byte, 32)
	for i := 0; i < n; i++ {
		hash = crypto.Keccak256(hash)
	}
	return int(hash[31])
}
