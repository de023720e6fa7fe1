// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package evm

//go:generate mockgen -source interpreter.go -destination interpreter_mock.go -package evm

// Interpreter executes the code of a single frame. Implementations must be
// safe for concurrent use by multiple goroutines running independent frames.
type Interpreter interface {
	// Run executes the code in the given parameters until a terminal state
	// is reached. Execution faults are reported in the Outcome; an error is
	// only returned if the frame could not be executed at all, for instance
	// because the revision is not supported.
	Run(Parameters) (Outcome, error)
}

// MaxCallDepth is the maximum nesting depth of frames. A frame at this depth
// may still run, but any call or create it attempts fails.
const MaxCallDepth = 1024

// Parameters summarizes the inputs of a single frame.
type Parameters struct {
	BlockParameters
	TransactionParameters
	System    System
	Kind      CallKind
	Static    bool
	Depth     int
	Gas       Gas
	Recipient Address
	Sender    Address
	Input     []byte
	Value     Value
	CodeHash  *Hash // < optional, enables analysis caching
	Code      Code
	Refunds   *RefundSchedule // < optional, overrides the interpreter's schedule
}

// BlockParameters are the block-level inputs visible to contracts.
type BlockParameters struct {
	ChainID     Word
	BlockNumber int64
	Timestamp   int64
	Coinbase    Address
	GasLimit    Gas
	PrevRandao  Hash
	BaseFee     Value
	BlobBaseFee Value
	Revision    Revision
}

// TransactionParameters are the transaction-level inputs visible to
// contracts.
type TransactionParameters struct {
	Origin     Address
	GasPrice   Value
	BlobHashes []Hash
}
