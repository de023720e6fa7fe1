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

// GetStaticOverheadExample returns a minimal contract echoing its
// argument. It measures the fixed cost of running a contract.
func GetStaticOverheadExample() Example {
	code := []byte{
		// memory[28:32] = calldata[32:36], the low bytes of the argument
		byte(vm.PUSH1), 4,
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 28,
		byte(vm.CALLDATACOPY),
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}
	return newExample("static_overhead", code, 0, identity)
}

func identity(x int) int {
	return x
}
