// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package evm11

import (
	"fmt"

	"github.com/Fantom-foundation/Actors/go/evm"
	"github.com/ethereum/go-ethereum/log"
)

// Registers the interpreter under its production name and the two
// diagnostic variants.
func init() {
	configs := map[string]func() Config{
		"evm11": func() Config {
			return Config{WithShaCache: true}
		},
		"evm11-logging": func() Config {
			return Config{WithShaCache: true, runner: newLoggingRunner(nil)}
		},
		"evm11-stats": func() Config {
			return Config{WithShaCache: true, runner: &statisticsRunner{}}
		},
	}
	for name, newConfig := range configs {
		newConfig := newConfig
		err := evm.RegisterInterpreterFactory(name, func(config any) (evm.Interpreter, error) {
			if config == nil {
				return NewInterpreter(newConfig())
			}
			if c, ok := config.(Config); ok {
				return NewInterpreter(c)
			}
			return nil, fmt.Errorf("invalid configuration type %T", config)
		})
		if err != nil {
			panic(err)
		}
	}
}

// Config customizes an interpreter instance.
type Config struct {
	// WithShaCache enables caching of Keccak-256 hashes of 32 and 64 byte
	// inputs.
	WithShaCache bool
	// AnalysisCacheSize is the number of code analyses retained by code
	// hash. Zero selects a default, negative values disable the cache.
	AnalysisCacheSize int
	// Refunds overrides the revision's default refund schedule unless the
	// parameters of a frame provide one.
	Refunds *evm.RefundSchedule
	// Logger, if set, makes the interpreter trace every instruction.
	Logger log.Logger

	runner runner
}

const (
	sha3Cache32Size = 1 << 16
	sha3Cache64Size = 1 << 16
)

// Interpreter is the EVM bytecode interpreter. It is safe for concurrent
// use; every Run executes in its own execution state.
type Interpreter struct {
	config   Config
	analyzer *analyzer
	hasher   keccakHasher
}

// NewInterpreter creates an interpreter with the given configuration.
func NewInterpreter(config Config) (*Interpreter, error) {
	analyzer, err := newAnalyzer(config.AnalysisCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create code analyzer: %w", err)
	}
	var hasher keccakHasher = plainHasher{}
	if config.WithShaCache {
		cached, err := newCachingHasher(sha3Cache32Size, sha3Cache64Size)
		if err != nil {
			return nil, fmt.Errorf("failed to create hash cache: %w", err)
		}
		hasher = cached
	}
	if config.runner == nil {
		if config.Logger != nil {
			config.runner = newLoggingRunner(config.Logger)
		} else {
			config.runner = vanillaRunner{}
		}
	}
	return &Interpreter{
		config:   config,
		analyzer: analyzer,
		hasher:   hasher,
	}, nil
}

// newestSupportedRevision is the latest revision with a dispatch table.
const newestSupportedRevision = evm.R13_Cancun

// Run executes the frame described by params. Unsupported revisions are
// reported as an error, all execution faults are part of the outcome.
func (i *Interpreter) Run(params evm.Parameters) (evm.Outcome, error) {
	table := getJumpTable(params.Revision)
	if params.Revision > newestSupportedRevision || table == nil {
		return evm.Outcome{}, fmt.Errorf("%w: %v", evm.ErrUnsupportedRevision, params.Revision)
	}

	refunds := evm.DefaultRefundSchedule(params.Revision)
	if params.Refunds != nil {
		refunds = *params.Refunds
	} else if i.config.Refunds != nil {
		refunds = *i.config.Refunds
	}

	config := interpreterConfig{
		table:   table,
		refunds: refunds,
		hasher:  i.hasher,
		runner:  i.config.runner,
	}
	code := i.analyzer.analyze(params.Code, params.CodeHash)
	return run(config, params, code), nil
}

// DumpProfile prints the collected instruction statistics, if enabled.
func (i *Interpreter) DumpProfile() {
	if stats, ok := i.config.runner.(*statisticsRunner); ok {
		fmt.Print(stats.summary())
	}
}

// ResetProfile clears the collected instruction statistics, if enabled.
func (i *Interpreter) ResetProfile() {
	if stats, ok := i.config.runner.(*statisticsRunner); ok {
		stats.reset()
	}
}
