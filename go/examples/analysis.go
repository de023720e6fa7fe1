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
	"bytes"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"
)

// GenerateAnalysisCode creates a contract of maximum size consisting mostly
// of the given filler, which is jumped over. Running it is dominated by the
// analysis of the code.
func GenerateAnalysisCode(filler []byte) []byte {
	prologue := []byte{
		// memory[0:32] = argument
		byte(vm.PUSH1), 4,
		byte(vm.CALLDATALOAD),
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),

		// jump over the filler, the target is patched below
		byte(vm.PUSH2), 0, 0,
		byte(vm.JUMP),
	}
	const targetOffset = 7

	epilogue := []byte{
		byte(vm.JUMPDEST),
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}

	repetitions := (params.MaxCodeSize - len(prologue) - len(epilogue)) / len(filler)
	target := len(prologue) + repetitions*len(filler)
	prologue[targetOffset] = byte(target >> 8)
	prologue[targetOffset+1] = byte(target)

	return bytes.Join([][]byte{prologue, bytes.Repeat(filler, repetitions), epilogue}, nil)
}

func GetJumpdestAnalysisExample() Example {
	return newAnalysisExample("jumpdest", []byte{byte(vm.JUMPDEST)})
}

func GetStopAnalysisExample() Example {
	return newAnalysisExample("stop", []byte{byte(vm.STOP)})
}

func GetPush1AnalysisExample() Example {
	return newAnalysisExample("push1", []byte{byte(vm.PUSH1), 0})
}

func GetPush32AnalysisExample() Example {
	return newAnalysisExample("push32", append([]byte{byte(vm.PUSH32)}, make([]byte, 32)...))
}

func newAnalysisExample(name string, filler []byte) Example {
	return newExample(name, GenerateAnalysisCode(filler), 0, identity)
}
