// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package runtime hosts the execution of EVM transactions. It owns the world
// state and the call stack and implements the System used by interpreter
// frames for nested calls and creates.
package runtime

import (
	"fmt"

	"github.com/Fantom-foundation/Actors/go/evm"
	"github.com/Fantom-foundation/Actors/go/precompiled"
	"github.com/ethereum/go-ethereum/log"
)

// Config customizes a Runtime. The zero value is a valid configuration.
type Config struct {
	// Refunds overrides the refund schedule of the block's revision. It is
	// forwarded to every frame and used for the refund cap.
	Refunds *evm.RefundSchedule
	// BlockHashes resolves BLOCKHASH queries. If nil, all hashes are zero.
	BlockHashes func(number int64) evm.Hash
	// Logger receives transaction summaries. If nil, the root logger is used.
	Logger log.Logger
}

// Runtime executes messages on a State using an interpreter for all frames.
// A Runtime is stateless and may be shared; a State may not.
type Runtime struct {
	interpreter evm.Interpreter
	config      Config
	logger      log.Logger
}

func New(interpreter evm.Interpreter, config Config) *Runtime {
	logger := config.Logger
	if logger == nil {
		logger = log.Root()
	}
	return &Runtime{
		interpreter: interpreter,
		config:      config,
		logger:      logger,
	}
}

// Message is the outermost call of a transaction.
type Message struct {
	Sender    evm.Address
	Recipient *evm.Address // < nil for contract creation
	Value     evm.Value
	Input     []byte
	GasLimit  evm.Gas
	Salt      *evm.Hash // < creates using CREATE2 addressing if set
}

// Receipt summarizes the execution of a message.
type Receipt struct {
	Outcome         evm.Outcome
	GasUsed         evm.Gas      // < after refunds
	GasRefund       evm.Gas      // < refund granted after capping
	ContractAddress *evm.Address // < set for successful creates
	Logs            []evm.Log
}

// Success is true if the effects of the message have been kept.
func (r Receipt) Success() bool {
	return r.Outcome.Success()
}

// Execute runs the message as a transaction on the given state. Effects of
// failed executions are discarded, except for the nonce increment of the
// sender of a create. The error is only set if the host failed, in which
// case the state is left as it was before the call.
func (r *Runtime) Execute(state *State, block evm.BlockParameters, tx evm.TransactionParameters, msg Message) (Receipt, error) {
	kind := evm.Call
	params := evm.CallParameters{
		Sender: msg.Sender,
		Value:  msg.Value,
		Input:  msg.Input,
		Gas:    msg.GasLimit,
	}
	switch {
	case msg.Recipient != nil:
		params.Recipient = *msg.Recipient
		params.CodeAddress = *msg.Recipient
	case msg.Salt != nil:
		kind = evm.Create2
		params.Salt = *msg.Salt
	default:
		kind = evm.Create
	}
	return r.transact(state, block, tx, msg, kind, func(root *host) (evm.CallResult, error) {
		return root.Call(kind, params)
	})
}

// Deploy runs the init code in msg.Input for an address assigned by the
// caller instead of one derived from the sender. The recipient and salt of
// the message are ignored.
func (r *Runtime) Deploy(state *State, block evm.BlockParameters, tx evm.TransactionParameters, msg Message, address evm.Address) (Receipt, error) {
	params := evm.CallParameters{
		Sender: msg.Sender,
		Value:  msg.Value,
		Input:  msg.Input,
		Gas:    msg.GasLimit,
	}
	return r.transact(state, block, tx, msg, evm.Create, func(root *host) (evm.CallResult, error) {
		if !canTransferValue(state, msg.Value, msg.Sender) {
			return evm.CallResult{Outcome: evm.Outcome{Kind: evm.Faulted, Fault: evm.InsufficientBalance, GasLeft: msg.GasLimit}}, nil
		}
		return root.deploy(evm.Create, params, address)
	})
}

// Delegate runs the given code in the context of the message's recipient,
// like a DELEGATECALL issued by the recipient itself. No value is
// transferred.
func (r *Runtime) Delegate(state *State, block evm.BlockParameters, tx evm.TransactionParameters, msg Message, code evm.Code) (Receipt, error) {
	if msg.Recipient == nil {
		return Receipt{}, ErrMissingRecipient
	}
	params := evm.CallParameters{
		Sender:      msg.Sender,
		Recipient:   *msg.Recipient,
		CodeAddress: *msg.Recipient,
		Value:       msg.Value,
		Input:       msg.Input,
		Gas:         msg.GasLimit,
	}
	return r.transact(state, block, tx, msg, evm.DelegateCall, func(root *host) (evm.CallResult, error) {
		return root.runCode(evm.DelegateCall, params, code, nil, state.Snapshot())
	})
}

const ErrMissingRecipient = evm.ConstError("message has no recipient")

// transact wraps the outermost frame of a transaction: it sets up the access
// list, applies the refund cap and ends the transaction on the state.
func (r *Runtime) transact(
	state *State,
	block evm.BlockParameters,
	tx evm.TransactionParameters,
	msg Message,
	kind evm.CallKind,
	run func(root *host) (evm.CallResult, error),
) (Receipt, error) {
	if tx.Origin == (evm.Address{}) {
		tx.Origin = msg.Sender
	}
	root := &host{
		runtime: r,
		state:   state,
		block:   block,
		tx:      tx,
		depth:   -1,
	}

	snapshot := state.Snapshot()
	if block.Revision >= evm.R09_Berlin {
		warmUp(state, block, msg)
	}

	result, err := run(root)
	if err != nil {
		state.RevertToSnapshot(snapshot)
		return Receipt{}, fmt.Errorf("failed to execute %v from %v: %w", kind, msg.Sender, err)
	}

	receipt := Receipt{
		Outcome: result.Outcome,
		GasUsed: result.GasUsed(msg.GasLimit),
	}
	if result.Success() {
		receipt.GasRefund = r.refunds(block.Revision).Cap(receipt.GasUsed, result.GasRefund)
		receipt.GasUsed -= receipt.GasRefund
		receipt.Logs = state.Logs()
		if kind.IsCreate() {
			created := result.CreatedAddress
			receipt.ContractAddress = &created
		}
	}
	state.EndTransaction()

	r.logger.Debug("Executed message",
		"kind", kind,
		"sender", msg.Sender,
		"outcome", result.Kind,
		"gasUsed", receipt.GasUsed,
		"refund", receipt.GasRefund,
		"logs", len(receipt.Logs),
	)
	return receipt, nil
}

func (r *Runtime) refunds(revision evm.Revision) evm.RefundSchedule {
	if r.config.Refunds != nil {
		return *r.config.Refunds
	}
	return evm.DefaultRefundSchedule(revision)
}

// warmUp adds the accounts accessible at no extra cost to the access list
// (EIP-2929, EIP-3651).
func warmUp(state *State, block evm.BlockParameters, msg Message) {
	state.AccessAccount(msg.Sender)
	if msg.Recipient != nil {
		state.AccessAccount(*msg.Recipient)
	}
	for _, addr := range precompiled.Addresses(block.Revision) {
		state.AccessAccount(addr)
	}
	if block.Revision >= evm.R12_Shanghai {
		state.AccessAccount(block.Coinbase)
	}
}
