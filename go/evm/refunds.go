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

// RefundSchedule collects the refund rules that changed across protocol
// upgrades. Interpreters use it to accumulate refunds of a frame, hosts use
// it to cap the refund at the end of a transaction.
type RefundSchedule struct {
	// SelfDestruct is granted the first time an account is self-destructed
	// within a transaction.
	SelfDestruct Gas
	// StorageClear is granted when a non-zero slot is set to zero.
	StorageClear Gas
	// MaxRefundQuotient bounds the refund to gasUsed/MaxRefundQuotient.
	MaxRefundQuotient uint64
}

// DefaultRefundSchedule returns the refund rules in effect at the given
// revision. EIP-3529 removed the self-destruct refund and reduced the
// storage clearing refund with London.
func DefaultRefundSchedule(revision Revision) RefundSchedule {
	if revision < R10_London {
		return RefundSchedule{
			SelfDestruct:      24_000,
			StorageClear:      15_000,
			MaxRefundQuotient: 2,
		}
	}
	return RefundSchedule{
		SelfDestruct:      0,
		StorageClear:      4_800,
		MaxRefundQuotient: 5,
	}
}

// Cap limits the given refund to the share of the used gas allowed by the
// schedule.
func (s RefundSchedule) Cap(gasUsed, refund Gas) Gas {
	if s.MaxRefundQuotient == 0 {
		return 0
	}
	limit := gasUsed / Gas(s.MaxRefundQuotient)
	return min(refund, limit)
}
