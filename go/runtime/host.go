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
	"github.com/Fantom-foundation/Actors/go/evm"
	"github.com/Fantom-foundation/Actors/go/precompiled"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
)

const (
	// MaxCodeSize is the maximum size of deployed code (EIP-170).
	MaxCodeSize = params.MaxCodeSize
	// CreateDataGas is the gas charged per byte of deployed code.
	CreateDataGas = evm.Gas(params.CreateDataGas)
)

// host provides the System of a single frame. Nested frames get their own
// host sharing the state of the transaction.
type host struct {
	runtime *Runtime
	state   *State
	block   evm.BlockParameters
	tx      evm.TransactionParameters
	depth   int  // < depth of the frame using this host, -1 for the transaction
	static  bool // < the frame using this host may not modify the state
}

var _ evm.System = (*host)(nil)

func (h *host) AccountExists(addr evm.Address) bool   { return h.state.AccountExists(addr) }
func (h *host) GetBalance(addr evm.Address) evm.Value { return h.state.GetBalance(addr) }
func (h *host) GetNonce(addr evm.Address) uint64      { return h.state.GetNonce(addr) }
func (h *host) GetCode(addr evm.Address) evm.Code     { return h.state.GetCode(addr) }
func (h *host) GetCodeHash(addr evm.Address) evm.Hash { return h.state.GetCodeHash(addr) }
func (h *host) GetCodeSize(addr evm.Address) int      { return h.state.GetCodeSize(addr) }

func (h *host) GetStorage(addr evm.Address, key evm.Key) evm.Word {
	return h.state.GetStorage(addr, key)
}

func (h *host) SetStorage(addr evm.Address, key evm.Key, value evm.Word) evm.StorageStatus {
	return h.state.SetStorage(addr, key, value)
}

func (h *host) GetTransientStorage(addr evm.Address, key evm.Key) evm.Word {
	return h.state.GetTransientStorage(addr, key)
}

func (h *host) SetTransientStorage(addr evm.Address, key evm.Key, value evm.Word) {
	h.state.SetTransientStorage(addr, key, value)
}

func (h *host) AccessAccount(addr evm.Address) evm.AccessStatus {
	return h.state.AccessAccount(addr)
}

func (h *host) AccessStorage(addr evm.Address, key evm.Key) evm.AccessStatus {
	return h.state.AccessStorage(addr, key)
}

func (h *host) EmitLog(log evm.Log) {
	h.state.EmitLog(log)
}

func (h *host) GetBlockHash(number int64) evm.Hash {
	if h.runtime.config.BlockHashes == nil {
		return evm.Hash{}
	}
	return h.runtime.config.BlockHashes(number)
}

func (h *host) SelfDestruct(addr evm.Address, beneficiary evm.Address) bool {
	first := h.state.MarkSelfDestructed(addr)

	// EIP-6780: only accounts created in the same transaction are removed.
	if h.block.Revision >= evm.R13_Cancun && !h.state.IsCreated(addr) {
		transferValue(h.state, addr, beneficiary, h.state.GetBalance(addr))
		return first
	}

	// a contract naming itself as beneficiary burns its balance
	balance := h.state.GetBalance(addr)
	h.state.SetBalance(beneficiary, evm.Add(h.state.GetBalance(beneficiary), balance))
	h.state.SetBalance(addr, evm.Value{})
	h.state.ScheduleDestruction(addr)
	return first
}

func (h *host) Call(kind evm.CallKind, params evm.CallParameters) (evm.CallResult, error) {
	if h.depth >= evm.MaxCallDepth {
		return evm.CallResult{Outcome: evm.NewFaultedOutcome(evm.CallDepthExceeded)}, nil
	}
	if kind.IsCreate() {
		return h.executeCreate(kind, params)
	}
	return h.executeCall(kind, params)
}

func (h *host) nested(static bool) *host {
	res := *h
	res.depth++
	res.static = static
	return &res
}

func (h *host) executeCall(kind evm.CallKind, params evm.CallParameters) (evm.CallResult, error) {
	if kind == evm.Call || kind == evm.CallCode {
		if !canTransferValue(h.state, params.Value, params.Sender) {
			return evm.CallResult{Outcome: evm.Outcome{
				Kind:    evm.Faulted,
				Fault:   evm.InsufficientBalance,
				GasLeft: params.Gas,
			}}, nil
		}
	}

	codeAddress := params.CodeAddress
	if kind == evm.Call || kind == evm.StaticCall {
		codeAddress = params.Recipient
	}

	snapshot := h.state.Snapshot()
	if kind == evm.Call {
		transferValue(h.state, params.Sender, params.Recipient, params.Value)
	}

	if outcome, isPrecompiled := precompiled.Run(h.block.Revision, codeAddress, params.Input, params.Gas); isPrecompiled {
		if !outcome.Success() {
			h.state.RevertToSnapshot(snapshot)
		}
		return evm.CallResult{Outcome: outcome}, nil
	}

	code := h.state.GetCode(codeAddress)
	if len(code) == 0 {
		return evm.CallResult{Outcome: evm.Outcome{Kind: evm.Returned, GasLeft: params.Gas}}, nil
	}
	codeHash := h.state.GetCodeHash(codeAddress)
	return h.runCode(kind, params, code, &codeHash, snapshot)
}

// runCode runs the given code in a nested frame and reverts the state to the
// snapshot if the frame fails.
func (h *host) runCode(kind evm.CallKind, params evm.CallParameters, code evm.Code, codeHash *evm.Hash, snapshot int) (evm.CallResult, error) {
	static := h.static || kind == evm.StaticCall
	outcome, err := h.runtime.interpreter.Run(evm.Parameters{
		BlockParameters:       h.block,
		TransactionParameters: h.tx,
		System:                h.nested(static),
		Kind:                  kind,
		Static:                static,
		Depth:                 h.depth + 1,
		Gas:                   params.Gas,
		Recipient:             params.Recipient,
		Sender:                params.Sender,
		Input:                 params.Input,
		Value:                 params.Value,
		CodeHash:              codeHash,
		Code:                  code,
		Refunds:               h.runtime.config.Refunds,
	})
	if err != nil {
		h.state.RevertToSnapshot(snapshot)
		return evm.CallResult{}, err
	}
	if !outcome.Success() {
		h.runtime.logger.Debug("Frame failed", "kind", kind, "recipient", params.Recipient, "depth", h.depth+1, "outcome", outcome)
		h.state.RevertToSnapshot(snapshot)
	}
	return evm.CallResult{Outcome: outcome}, nil
}

func (h *host) executeCreate(kind evm.CallKind, params evm.CallParameters) (evm.CallResult, error) {
	if !canTransferValue(h.state, params.Value, params.Sender) {
		return evm.CallResult{Outcome: evm.Outcome{
			Kind:    evm.Faulted,
			Fault:   evm.InsufficientBalance,
			GasLeft: params.Gas,
		}}, nil
	}

	nonce := h.state.GetNonce(params.Sender)
	h.state.SetNonce(params.Sender, nonce+1)

	var created evm.Address
	if kind == evm.Create {
		created = evm.Address(crypto.CreateAddress(common.Address(params.Sender), nonce))
	} else {
		initHash := crypto.Keccak256(params.Input)
		created = evm.Address(crypto.CreateAddress2(common.Address(params.Sender), common.Hash(params.Salt), initHash))
	}
	return h.deploy(kind, params, created)
}

// deploy runs the init code in params.Input for the given address and stores
// the code it returns.
func (h *host) deploy(kind evm.CallKind, params evm.CallParameters, created evm.Address) (evm.CallResult, error) {
	if h.block.Revision >= evm.R09_Berlin {
		h.state.AccessAccount(created)
	}

	if h.state.GetNonce(created) != 0 || h.state.GetCodeSize(created) != 0 {
		h.runtime.logger.Debug("Address collision", "address", created, "sender", params.Sender)
		return evm.CallResult{Outcome: evm.NewFaultedOutcome(evm.AddressCollision)}, nil
	}

	snapshot := h.state.Snapshot()
	h.state.MarkCreated(created)
	h.state.SetNonce(created, 1)
	transferValue(h.state, params.Sender, created, params.Value)

	outcome, err := h.runtime.interpreter.Run(evm.Parameters{
		BlockParameters:       h.block,
		TransactionParameters: h.tx,
		System:                h.nested(false),
		Kind:                  kind,
		Depth:                 h.depth + 1,
		Gas:                   params.Gas,
		Recipient:             created,
		Sender:                params.Sender,
		Value:                 params.Value,
		Code:                  params.Input,
	})
	if err != nil {
		h.state.RevertToSnapshot(snapshot)
		return evm.CallResult{}, err
	}
	if !outcome.Success() {
		h.runtime.logger.Debug("Init code failed", "address", created, "depth", h.depth+1, "outcome", outcome)
		h.state.RevertToSnapshot(snapshot)
		return evm.CallResult{Outcome: outcome}, nil
	}

	code := outcome.Output
	if fault, ok := checkDeployedCode(h.block.Revision, code, outcome.GasLeft); !ok {
		h.state.RevertToSnapshot(snapshot)
		return evm.CallResult{Outcome: evm.NewFaultedOutcome(fault)}, nil
	}
	outcome.GasLeft -= evm.Gas(len(code)) * CreateDataGas
	h.state.SetCode(created, code)

	return evm.CallResult{Outcome: outcome, CreatedAddress: created}, nil
}

// checkDeployedCode validates code returned by init code and checks that the
// remaining gas covers its deposit.
func checkDeployedCode(revision evm.Revision, code []byte, gas evm.Gas) (evm.Fault, bool) {
	if len(code) > MaxCodeSize {
		return evm.CodeSizeExceeded, false
	}
	// EIP-3541: reserve the 0xEF prefix
	if revision >= evm.R10_London && len(code) > 0 && code[0] == 0xEF {
		return evm.InvalidCode, false
	}
	if evm.Gas(len(code))*CreateDataGas > gas {
		return evm.OutOfGas, false
	}
	return evm.NoFault, true
}

func canTransferValue(state *State, value evm.Value, sender evm.Address) bool {
	if value.IsZero() {
		return true
	}
	return state.GetBalance(sender).Cmp(value) >= 0
}

// transferValue moves value between accounts. The caller has to check the
// balance of the sender beforehand.
func transferValue(state *State, sender, recipient evm.Address, value evm.Value) {
	if value.IsZero() || sender == recipient {
		return
	}
	state.SetBalance(sender, evm.Sub(state.GetBalance(sender), value))
	state.SetBalance(recipient, evm.Add(state.GetBalance(recipient), value))
}
