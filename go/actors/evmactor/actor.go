// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package evmactor implements the EVM actor: a builtin actor hosting a
// single EVM contract. Its methods deploy the contract, invoke it and expose
// its code and storage.
package evmactor

import (
	"errors"
	"fmt"

	"github.com/Fantom-foundation/Actors/go/actors/builtin"
	"github.com/Fantom-foundation/Actors/go/evm"
	"github.com/Fantom-foundation/Actors/go/runtime"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
)

// Config provides the environment of an EVM actor.
type Config struct {
	Runtime    *runtime.Runtime
	World      *runtime.State // < holds the contract's code, balance and storage
	Blockstore Blockstore     // < receives the deployed code
	Logger     log.Logger     // < defaults to the root logger
}

// Message is the context of a single invocation.
type Message struct {
	Caller   evm.Address
	Value    evm.Value
	GasLimit evm.Gas
	Block    evm.BlockParameters
	Tx       evm.TransactionParameters
}

// Actor is an EVM actor bound to an address. It is not safe for concurrent
// use.
type Actor struct {
	address evm.Address
	config  Config
	logger  log.Logger
	state   *State // < nil until constructed
}

// New creates an actor that is yet to be constructed.
func New(address evm.Address, config Config) *Actor {
	logger := config.Logger
	if logger == nil {
		logger = log.Root()
	}
	return &Actor{
		address: address,
		config:  config,
		logger:  logger.New("actor", address),
	}
}

// Load creates an actor from its encoded state.
func Load(address evm.Address, config Config, encoded []byte) (*Actor, error) {
	state, err := DecodeState(encoded)
	if err != nil {
		return nil, err
	}
	actor := New(address, config)
	actor.state = &state
	return actor, nil
}

func (a *Actor) Address() evm.Address {
	return a.address
}

// State returns the state of the actor and whether it has been constructed.
func (a *Actor) State() (State, bool) {
	if a.state == nil {
		return State{}, false
	}
	return *a.state, true
}

// EncodeState serializes the state of a constructed actor.
func (a *Actor) EncodeState() ([]byte, error) {
	if a.state == nil {
		return nil, errNotConstructed
	}
	return Encode(a.state)
}

var errNotConstructed = newActorError(ExitIllegalState, "actor not constructed")

// Invoke runs the given method. Failures are reported as *ActorError; other
// errors indicate a failure of the environment. A reverted contract
// invocation returns the revert data along with the error.
func (a *Actor) Invoke(msg Message, method builtin.MethodNum, params []byte) ([]byte, error) {
	var (
		res []byte
		err error
	)
	switch method {
	case builtin.MethodsEVM.Constructor:
		err = a.constructor(msg, params)
	case builtin.MethodsEVM.Resurrect:
		err = a.resurrect(msg, params)
	case builtin.MethodsEVM.GetBytecode:
		res, err = a.getBytecode()
	case builtin.MethodsEVM.GetBytecodeHash:
		res, err = a.getBytecodeHash()
	case builtin.MethodsEVM.GetStorageAt:
		res, err = a.getStorageAt(params)
	case builtin.MethodsEVM.InvokeContractDelegate:
		res, err = a.invokeContractDelegate(msg, params)
	case builtin.MethodsEVM.InvokeContract:
		res, err = a.invokeContract(msg, params)
	default:
		err = newActorError(ExitUnhandledMessage, "unknown method %d", method)
	}

	name, _ := builtin.Lookup(builtin.EVM, method)
	var actorErr *ActorError
	switch {
	case err == nil:
		a.logger.Debug("Invoked method", "method", name, "caller", msg.Caller)
	case errors.As(err, &actorErr):
		a.logger.Debug("Method failed", "method", name, "caller", msg.Caller, "exit", actorErr.Code)
	default:
		a.logger.Error("Method aborted", "method", name, "caller", msg.Caller, "err", err)
	}
	return res, err
}

func (a *Actor) constructor(msg Message, params []byte) error {
	if a.state != nil {
		return newActorError(ExitIllegalState, "actor already constructed")
	}
	var p ConstructorParams
	if err := decode(params, &p); err != nil {
		return err
	}
	return a.deploy(msg, p)
}

func (a *Actor) resurrect(msg Message, params []byte) error {
	if a.state == nil {
		return errNotConstructed
	}
	if !a.state.IsDead() {
		return newActorError(ExitForbidden, "can only resurrect a dead contract")
	}
	var p ConstructorParams
	if err := decode(params, &p); err != nil {
		return err
	}
	a.config.World.ClearAccount(a.address)
	return a.deploy(msg, p)
}

// deploy runs the init code and records the resulting contract.
func (a *Actor) deploy(msg Message, p ConstructorParams) error {
	receipt, err := a.config.Runtime.Deploy(a.config.World, msg.Block, msg.Tx, runtime.Message{
		Sender:   p.Creator,
		Value:    msg.Value,
		Input:    p.Initcode,
		GasLimit: msg.GasLimit,
	}, a.address)
	if err != nil {
		return fmt.Errorf("failed to deploy contract: %w", err)
	}
	if err := outcomeError(receipt.Outcome); err != nil {
		return err
	}

	hash, err := a.config.Blockstore.Put(a.config.World.GetCode(a.address))
	if err != nil {
		return err
	}
	a.state = &State{
		BytecodeHash: hash,
		Nonce:        a.config.World.GetNonce(a.address),
	}
	a.recordSelfDestruct(msg, receipt)
	return nil
}

func (a *Actor) invokeContract(msg Message, input []byte) ([]byte, error) {
	if a.state == nil {
		return nil, errNotConstructed
	}
	if a.state.IsDead() {
		return nil, nil
	}
	receipt, err := a.config.Runtime.Execute(a.config.World, msg.Block, msg.Tx, runtime.Message{
		Sender:    msg.Caller,
		Recipient: &a.address,
		Value:     msg.Value,
		Input:     input,
		GasLimit:  msg.GasLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke contract: %w", err)
	}
	return a.finish(msg, receipt)
}

func (a *Actor) invokeContractDelegate(msg Message, params []byte) ([]byte, error) {
	if a.state == nil {
		return nil, errNotConstructed
	}
	if msg.Caller != a.address {
		return nil, newActorError(ExitForbidden, "delegate calls may only be issued by the actor itself")
	}
	var p DelegateCallParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	code, found, err := a.config.Blockstore.Get(p.CodeHash)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, newActorError(ExitNotFound, "code %v not found", p.CodeHash)
	}
	if a.state.IsDead() {
		return nil, nil
	}
	receipt, err := a.config.Runtime.Delegate(a.config.World, msg.Block, msg.Tx, runtime.Message{
		Sender:    p.Caller,
		Recipient: &a.address,
		Value:     p.Value,
		Input:     p.Input,
		GasLimit:  msg.GasLimit,
	}, code)
	if err != nil {
		return nil, fmt.Errorf("failed to run delegated code: %w", err)
	}
	return a.finish(msg, receipt)
}

// finish updates the actor state after running the contract and converts
// the outcome into the result of the invocation.
func (a *Actor) finish(msg Message, receipt runtime.Receipt) ([]byte, error) {
	if !receipt.Success() {
		return receipt.Outcome.Output, outcomeError(receipt.Outcome)
	}
	a.state.Nonce = a.config.World.GetNonce(a.address)
	a.recordSelfDestruct(msg, receipt)
	return receipt.Outcome.Output, nil
}

func (a *Actor) recordSelfDestruct(msg Message, receipt runtime.Receipt) {
	if receipt.Outcome.Kind != evm.SelfDestructed {
		return
	}
	origin := msg.Tx.Origin
	if origin == (evm.Address{}) {
		origin = msg.Caller
	}
	a.state.Tombstone = &Tombstone{
		Origin: origin,
		Nonce:  a.config.World.GetNonce(origin),
	}
}

var emptyCodeHash = evm.Hash(crypto.Keccak256Hash(nil))

func (a *Actor) getBytecode() ([]byte, error) {
	if a.state == nil {
		return nil, errNotConstructed
	}
	if a.state.IsDead() {
		return encode([]byte{})
	}
	return encode(a.config.World.GetCode(a.address))
}

func (a *Actor) getBytecodeHash() ([]byte, error) {
	if a.state == nil {
		return nil, errNotConstructed
	}
	if a.state.IsDead() {
		return encode(emptyCodeHash)
	}
	return encode(a.state.BytecodeHash)
}

func (a *Actor) getStorageAt(params []byte) ([]byte, error) {
	if a.state == nil {
		return nil, errNotConstructed
	}
	var p GetStorageAtParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if a.state.IsDead() {
		return encode(evm.Word{})
	}
	return encode(a.config.World.GetStorage(a.address, p.StorageKey))
}
