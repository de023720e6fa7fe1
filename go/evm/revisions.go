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

import (
	"encoding/json"
	"fmt"
)

// Revision identifies the protocol upgrade whose rules govern an execution.
// Opcode availability, gas prices and refunds are all selected by revision.
type Revision int

const (
	R07_Istanbul Revision = iota
	R09_Berlin
	R10_London
	R11_Paris
	R12_Shanghai
	R13_Cancun
)

// R99_UnknownNextRevision is the first revision not supported by this
// repository. It is used in tests to check that unknown revisions are
// rejected.
const R99_UnknownNextRevision = R13_Cancun + 1

const ErrUnsupportedRevision = ConstError("unsupported revision")

func (r Revision) String() string {
	switch r {
	case R07_Istanbul:
		return "Istanbul"
	case R09_Berlin:
		return "Berlin"
	case R10_London:
		return "London"
	case R11_Paris:
		return "Paris"
	case R12_Shanghai:
		return "Shanghai"
	case R13_Cancun:
		return "Cancun"
	}
	return fmt.Sprintf("Revision(%d)", int(r))
}

func (r Revision) MarshalJSON() ([]byte, error) {
	if r < R07_Istanbul || r > R13_Cancun {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedRevision, int(r))
	}
	return json.Marshal(r.String())
}

func (r *Revision) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for cur := R07_Istanbul; cur <= R13_Cancun; cur++ {
		if cur.String() == name {
			*r = cur
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedRevision, name)
}
