// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package precompiled provides the contracts living at the reserved
// addresses 0x01 to 0x0a. The set of contracts and their prices depend on
// the revision; the tables are built once and never modified afterwards.
package precompiled

import (
	"github.com/Fantom-foundation/Actors/go/evm"
	"github.com/ethereum/go-ethereum/common"
	geth "github.com/ethereum/go-ethereum/core/vm"
)

// Contract is a natively implemented contract, as provided by geth's
// precompiled contract tables. RequiredGas must not depend on anything but
// the input; Run only fails on malformed input.
type Contract interface {
	RequiredGas(input []byte) uint64
	Run(input []byte) ([]byte, error)
}

var tables = func() [evm.R13_Cancun + 1]map[evm.Address]Contract {
	fromGeth := func(contracts map[common.Address]geth.PrecompiledContract, ids ...byte) map[evm.Address]Contract {
		res := make(map[evm.Address]Contract, len(ids))
		for _, id := range ids {
			addr := address(id)
			contract, found := contracts[common.Address(addr)]
			if !found {
				panic("missing precompiled contract " + addr.String())
			}
			res[addr] = contract
		}
		return res
	}

	istanbul := fromGeth(geth.PrecompiledContractsIstanbul, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09)
	berlin := fromGeth(geth.PrecompiledContractsBerlin, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09)
	cancun := fromGeth(geth.PrecompiledContractsCancun, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a)
	return [...]map[evm.Address]Contract{
		evm.R07_Istanbul: istanbul,
		evm.R09_Berlin:   berlin,
		evm.R10_London:   berlin,
		evm.R11_Paris:    berlin,
		evm.R12_Shanghai: berlin,
		evm.R13_Cancun:   cancun,
	}
}()

func address(id byte) evm.Address {
	return evm.Address{19: id}
}

func table(revision evm.Revision) map[evm.Address]Contract {
	if revision < evm.R07_Istanbul || int(revision) >= len(tables) {
		return nil
	}
	return tables[revision]
}

// IsPrecompiled reports whether a contract is located at the given address
// in the given revision.
func IsPrecompiled(revision evm.Revision, address evm.Address) bool {
	_, found := table(revision)[address]
	return found
}

// Get returns the contract located at the given address, if any.
func Get(revision evm.Revision, address evm.Address) (Contract, bool) {
	contract, found := table(revision)[address]
	return contract, found
}

// Addresses returns the addresses of all contracts of the given revision.
func Addresses(revision evm.Revision) []evm.Address {
	res := make([]evm.Address, 0, len(table(revision)))
	for addr := range table(revision) {
		res = append(res, addr)
	}
	return res
}

// Run executes the contract at the given address with the provided gas. The
// second result is false if there is no contract at this address, in which
// case the outcome is meaningless.
func Run(revision evm.Revision, address evm.Address, input []byte, gas evm.Gas) (evm.Outcome, bool) {
	contract, found := Get(revision, address)
	if !found {
		return evm.Outcome{}, false
	}
	cost := contract.RequiredGas(input)
	if gas < 0 || cost > uint64(gas) {
		return evm.NewFaultedOutcome(evm.OutOfGas), true
	}
	output, err := contract.Run(input)
	if err != nil {
		return evm.NewFaultedOutcome(evm.PrecompileInputError), true
	}
	return evm.Outcome{
		Kind:    evm.Returned,
		Output:  output,
		GasLeft: gas - evm.Gas(cost),
	}, true
}
