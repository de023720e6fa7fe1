// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package precompiled

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/Fantom-foundation/Actors/go/evm"
	"github.com/ethereum/go-ethereum/common"
	geth "github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
)

// validPointEvaluationInput is a valid KZG proof taken from geth's tests.
var validPointEvaluationInput = []byte{1, 231, 152, 21, 71, 8, 254, 119, 137, 66, 150, 52, 5, 60, 191, 159,
	153, 182, 25, 249, 240, 132, 4, 137, 39, 51, 63, 206, 99, 127, 84, 155, 86, 76,
	10, 17, 160, 247, 4, 244, 252, 62, 138, 207, 224, 248, 36, 95, 10, 209, 52, 123,
	55, 143, 191, 150, 226, 6, 218, 17, 165, 211, 99, 6, 36, 210, 80, 50, 230, 122,
	126, 106, 73, 16, 223, 88, 52, 184, 254, 112, 230, 188, 254, 234, 192, 53, 36,
	52, 25, 107, 223, 75, 36, 133, 213, 161, 143, 89, 168, 210, 161, 166, 37, 161,
	127, 63, 234, 15, 229, 235, 140, 137, 109, 179, 118, 79, 49, 133, 72, 27, 194,
	47, 145, 180, 170, 255, 204, 162, 95, 38, 147, 104, 87, 188, 58, 124, 37, 57,
	234, 142, 195, 169, 82, 183, 135, 48, 51, 224, 56, 50, 110, 135, 237, 62, 18,
	118, 253, 20, 2, 83, 250, 8, 233, 252, 37, 251, 45, 154, 152, 82, 127, 194, 42,
	44, 150, 18, 251, 234, 253, 173, 68, 108, 188, 123, 205, 189, 205, 120, 10, 242,
	193, 106}

func TestPrecompiled_NumberOfContractsDependsOnRevision(t *testing.T) {
	tests := map[evm.Revision]int{
		evm.R07_Istanbul: 9,
		evm.R09_Berlin:   9,
		evm.R10_London:   9,
		evm.R11_Paris:    9,
		evm.R12_Shanghai: 9,
		evm.R13_Cancun:   10,
	}
	for revision, want := range tests {
		count := 0
		for i := 0; i < 256; i++ {
			if IsPrecompiled(revision, address(byte(i))) {
				count++
			}
		}
		if count != want {
			t.Errorf("unexpected number of contracts in %v, wanted %d, got %d", revision, want, count)
		}
		if got := len(Addresses(revision)); got != want {
			t.Errorf("unexpected number of addresses in %v, wanted %d, got %d", revision, want, got)
		}
	}
}

func TestPrecompiled_UnknownRevisionHasNoContracts(t *testing.T) {
	if IsPrecompiled(evm.R99_UnknownNextRevision, address(1)) {
		t.Errorf("unknown revisions should have no precompiled contracts")
	}
	if _, found := Run(evm.R99_UnknownNextRevision, address(1), nil, 10_000); found {
		t.Errorf("unknown revisions should have no precompiled contracts")
	}
}

func TestPrecompiled_OnlyLowBytesOfAddressIdentifyContracts(t *testing.T) {
	if IsPrecompiled(evm.R13_Cancun, evm.Address{0: 1}) {
		t.Errorf("address with a high byte must not be precompiled")
	}
}

func TestPrecompiled_Run(t *testing.T) {
	tests := map[string]struct {
		revision evm.Revision
		address  evm.Address
		input    []byte
		gas      evm.Gas
		found    bool
		kind     evm.OutcomeKind
		fault    evm.Fault
		gasLeft  evm.Gas
	}{
		"not precompiled":                {evm.R09_Berlin, address(0x20), nil, 3000, false, evm.Returned, evm.NoFault, 0},
		"identity":                       {evm.R09_Berlin, address(0x04), []byte{1, 2, 3}, 100, true, evm.Returned, evm.NoFault, 100 - 18},
		"identity out of gas":            {evm.R09_Berlin, address(0x04), []byte{1, 2, 3}, 17, true, evm.Faulted, evm.OutOfGas, 0},
		"sha256 two words":               {evm.R09_Berlin, address(0x02), make([]byte, 33), 100, true, evm.Returned, evm.NoFault, 100 - 84},
		"ripemd160 empty":                {evm.R09_Berlin, address(0x03), nil, 600, true, evm.Returned, evm.NoFault, 0},
		"ecrecover invalid signature":    {evm.R10_London, address(0x01), nil, 3000, true, evm.Returned, evm.NoFault, 0},
		"ecrecover out of gas":           {evm.R10_London, address(0x01), nil, 2999, true, evm.Faulted, evm.OutOfGas, 0},
		"point evaluation":               {evm.R13_Cancun, address(0x0a), validPointEvaluationInput, 60_000, true, evm.Returned, evm.NoFault, 10_000},
		"point evaluation out of gas":    {evm.R13_Cancun, address(0x0a), validPointEvaluationInput, 1, true, evm.Faulted, evm.OutOfGas, 0},
		"point evaluation before Cancun": {evm.R12_Shanghai, address(0x0a), validPointEvaluationInput, 60_000, false, evm.Returned, evm.NoFault, 0},
		"point evaluation invalid input": {evm.R13_Cancun, address(0x0a), []byte{1, 2, 3}, 60_000, true, evm.Faulted, evm.PrecompileInputError, 0},
		"blake2f invalid input":          {evm.R13_Cancun, address(0x09), []byte{1}, 60_000, true, evm.Faulted, evm.PrecompileInputError, 0},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			outcome, found := Run(test.revision, test.address, test.input, test.gas)
			if want, got := test.found, found; want != got {
				t.Fatalf("unexpected precompiled status, wanted %t, got %t", want, got)
			}
			if !found {
				return
			}
			if want, got := test.kind, outcome.Kind; want != got {
				t.Errorf("unexpected outcome, wanted %v, got %v", want, got)
			}
			if want, got := test.fault, outcome.Fault; want != got {
				t.Errorf("unexpected fault, wanted %v, got %v", want, got)
			}
			if want, got := test.gasLeft, outcome.GasLeft; want != got {
				t.Errorf("unexpected gas left, wanted %d, got %d", want, got)
			}
		})
	}
}

func TestPrecompiled_HashFunctions(t *testing.T) {
	tests := map[string]struct {
		address evm.Address
		input   []byte
		want    string
	}{
		"sha256": {
			address: address(0x02),
			input:   []byte("abc"),
			want:    "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
		"ripemd160": {
			address: address(0x03),
			input:   []byte("abc"),
			want:    "0000000000000000000000008eb208f7e05d987a9b044a8e98c6b087f15a0bfc",
		},
		"identity": {
			address: address(0x04),
			input:   []byte("abc"),
			want:    "616263",
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			outcome, _ := Run(evm.R13_Cancun, test.address, test.input, 10_000)
			if want, got := test.want, hex.EncodeToString(outcome.Output); want != got {
				t.Errorf("unexpected output, wanted %s, got %s", want, got)
			}
		})
	}
}

func TestPrecompiled_EcrecoverRecoversSigner(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	hash := crypto.Keccak256([]byte("message"))
	signature, err := crypto.Sign(hash, key)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	input := make([]byte, 128)
	copy(input[0:32], hash)
	input[63] = signature[64] + 27
	copy(input[64:128], signature[:64])

	outcome, _ := Run(evm.R13_Cancun, address(0x01), input, 3000)
	if want, got := evm.Returned, outcome.Kind; want != got {
		t.Fatalf("unexpected outcome, wanted %v, got %v", want, got)
	}
	signer := crypto.PubkeyToAddress(key.PublicKey)
	if want, got := common.LeftPadBytes(signer[:], 32), outcome.Output; !bytes.Equal(want, got) {
		t.Errorf("unexpected signer, wanted %x, got %x", want, got)
	}

	// a malformed v yields no output
	input[63] = 29
	outcome, _ = Run(evm.R13_Cancun, address(0x01), input, 3000)
	if len(outcome.Output) != 0 {
		t.Errorf("invalid signature should not recover a signer, got %x", outcome.Output)
	}
}

func TestPrecompiled_ModexpPricingChangesInBerlin(t *testing.T) {
	// 1^1 mod 1 with one byte operands
	input := make([]byte, 96+3)
	input[31], input[63], input[95] = 1, 1, 1
	input[96], input[97], input[98] = 1, 1, 1

	istanbul, _ := Get(evm.R07_Istanbul, address(0x05))
	berlin, _ := Get(evm.R09_Berlin, address(0x05))
	if want, got := uint64(0), istanbul.RequiredGas(input); want != got {
		t.Errorf("unexpected EIP-198 price, wanted %d, got %d", want, got)
	}
	if want, got := uint64(200), berlin.RequiredGas(input); want != got {
		t.Errorf("unexpected EIP-2565 price, wanted %d, got %d", want, got)
	}
}

func TestPrecompiled_ContractsAreTakenFromGeth(t *testing.T) {
	tests := map[evm.Revision]map[common.Address]geth.PrecompiledContract{
		evm.R07_Istanbul: geth.PrecompiledContractsIstanbul,
		evm.R09_Berlin:   geth.PrecompiledContractsBerlin,
		evm.R12_Shanghai: geth.PrecompiledContractsBerlin,
		evm.R13_Cancun:   geth.PrecompiledContractsCancun,
	}
	for revision, contracts := range tests {
		t.Run(revision.String(), func(t *testing.T) {
			for _, addr := range Addresses(revision) {
				contract, _ := Get(revision, addr)
				if want, got := contracts[common.Address(addr)], contract; want != got {
					t.Errorf("unexpected contract at %v, wanted %T, got %T", addr, want, got)
				}
			}
		})
	}
}
