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
	"sort"
	"strings"
	"sync"

	"github.com/Fantom-foundation/Actors/go/evm"
	"github.com/dsnet/golib/unitconv"
)

// statisticsRunner counts executed instructions and instruction pairs over
// all frames it runs. It is safe for concurrent use.
type statisticsRunner struct {
	mutex sync.Mutex
	stats *statistics
}

func (r *statisticsRunner) run(s *executionState) {
	local := newStatistics()
	last := -1
	for s.status == statusRunning {
		if s.pc < uint64(s.code.Len()) {
			op := s.code.OpCodeAt(s.pc)
			local.count++
			local.singleCount[op]++
			if last >= 0 {
				local.pairCount[[2]OpCode{OpCode(last), op}]++
			}
			last = int(op)
		}
		step(s)
	}
	if s.status == statusFaulted {
		local.faults[s.fault]++
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.stats == nil {
		r.stats = newStatistics()
	}
	r.stats.insert(local)
}

// summary returns a human-readable digest of the collected statistics.
func (r *statisticsRunner) summary() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.stats == nil {
		r.stats = newStatistics()
	}
	return r.stats.print()
}

func (r *statisticsRunner) reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.stats = newStatistics()
}

type statistics struct {
	count       uint64
	singleCount map[OpCode]uint64
	pairCount   map[[2]OpCode]uint64
	faults      map[evm.Fault]uint64
}

func newStatistics() *statistics {
	return &statistics{
		singleCount: map[OpCode]uint64{},
		pairCount:   map[[2]OpCode]uint64{},
		faults:      map[evm.Fault]uint64{},
	}
}

func (s *statistics) insert(src *statistics) {
	s.count += src.count
	for k, v := range src.singleCount {
		s.singleCount[k] += v
	}
	for k, v := range src.pairCount {
		s.pairCount[k] += v
	}
	for k, v := range src.faults {
		s.faults[k] += v
	}
}

func topN[K comparable](data map[K]uint64, n int) []K {
	keys := make([]K, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return data[keys[i]] > data[keys[j]]
	})
	return keys[:min(n, len(keys))]
}

func (s *statistics) print() string {
	var b strings.Builder
	share := func(count uint64) float64 {
		if s.count == 0 {
			return 0
		}
		return float64(count*100) / float64(s.count)
	}

	fmt.Fprintf(&b, "\n----- Statistics ------\n")
	fmt.Fprintf(&b, "\nSteps: %s\n", unitconv.FormatPrefix(float64(s.count), unitconv.SI, 2))
	fmt.Fprintf(&b, "\nSingles:\n")
	for _, op := range topN(s.singleCount, 5) {
		fmt.Fprintf(&b, "\t%-20v: %d (%.2f%%)\n", op, s.singleCount[op], share(s.singleCount[op]))
	}
	fmt.Fprintf(&b, "\nPairs:\n")
	for _, pair := range topN(s.pairCount, 5) {
		fmt.Fprintf(&b, "\t%-20v%-20v: %d (%.2f%%)\n", pair[0], pair[1], s.pairCount[pair], share(s.pairCount[pair]))
	}
	if len(s.faults) > 0 {
		fmt.Fprintf(&b, "\nFaults:\n")
		for _, fault := range topN(s.faults, len(s.faults)) {
			fmt.Fprintf(&b, "\t%-20v: %d\n", fault, s.faults[fault])
		}
	}
	b.WriteString("\n")
	return b.String()
}
