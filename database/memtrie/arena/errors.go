// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package arena

import "github.com/Fantom-foundation/memtrie/go/common"

const (
	// ErrOutOfBounds is the panic value for positions or sub-ranges not
	// covered by the addressed memory.
	ErrOutOfBounds = common.ConstError("arena access out of bounds")
	// ErrIllegalMutation is the panic value for attempts to mutate or free
	// memory shared with other arenas.
	ErrIllegalMutation = common.ConstError("illegal mutation of shared memory")
	// ErrInvalidAllocation signals inconsistent allocator bookkeeping.
	ErrInvalidAllocation = common.ConstError("invalid allocation")
	// ErrArenaConsumed is the panic value for using an arena after it has
	// been frozen or released.
	ErrArenaConsumed = common.ConstError("arena already frozen or released")
	// ErrInvalidBase is the panic value for forks of a zero FrozenArenaMemory.
	ErrInvalidBase = common.ConstError("invalid base memory")
)
