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
	"context"

	"github.com/ethereum/go-ethereum/log"
)

// loggingRunner traces every executed instruction on the given logger. If
// no logger is set, the root logger is used.
type loggingRunner struct {
	log log.Logger
}

func newLoggingRunner(logger log.Logger) loggingRunner {
	return loggingRunner{log: logger}
}

func (l loggingRunner) run(s *executionState) {
	logger := l.log
	if logger == nil {
		logger = log.Root()
	}
	if !logger.Enabled(context.Background(), log.LevelTrace) {
		execute(s)
		return
	}
	for s.status == statusRunning {
		if s.pc < uint64(s.code.Len()) {
			top := "-empty-"
			if s.stack.Len() > 0 {
				top = s.stack.peek().Hex()
			}
			logger.Trace("step", "op", s.code.OpCodeAt(s.pc), "pc", s.pc, "gas", s.gas, "depth", s.params.Depth, "top", top)
		}
		step(s)
	}
	if s.status == statusFaulted {
		logger.Trace("fault", "pc", s.pc, "fault", s.fault)
	}
}
