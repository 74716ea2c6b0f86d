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

import (
	"github.com/Fantom-foundation/memtrie/go/common"
)

// FrozenArenaMemory is a shared, read-only handle on an STArenaMemory. Copies
// of the handle refer to the same bytes. The type offers no way to mutate the
// memory, which makes it safe to read from any number of goroutines without
// synchronization. Valid handles are obtained from FrozenArena.SharedMemory
// or HybridArena.Base; the zero value refers to no memory.
type FrozenArenaMemory struct {
	shared *STArenaMemory
}

func (m FrozenArenaMemory) RawSlice(pos Pos, length int) []byte {
	return m.shared.RawSlice(pos, length)
}

// valid reports whether the handle refers to a memory.
func (m FrozenArenaMemory) valid() bool {
	return m.shared != nil
}

func (m FrozenArenaMemory) NumChunks() int {
	return m.shared.NumChunks()
}

func (m FrozenArenaMemory) GetMemoryFootprint() *common.MemoryFootprint {
	return m.shared.GetMemoryFootprint()
}

// FrozenArena is an immutable arena. Cloning is O(1) and produces an arena
// sharing the same memory.
type FrozenArena struct {
	memory FrozenArenaMemory
}

// NewFrozenArena takes ownership of the given memory and freezes it. Any
// later attempt to mutate it panics with ErrIllegalMutation.
func NewFrozenArena(memory *STArenaMemory) FrozenArena {
	memory.freeze()
	return FrozenArena{memory: FrozenArenaMemory{shared: memory}}
}

func (a FrozenArena) Memory() Memory {
	return a.memory
}

// SharedMemory returns the handle to be used as base of hybrid arenas.
func (a FrozenArena) SharedMemory() FrozenArenaMemory {
	return a.memory
}

// Clone returns another handle on the same frozen memory.
func (a FrozenArena) Clone() FrozenArena {
	return FrozenArena{memory: a.memory}
}

// NewHybrid opens a fork on top of this arena. All positions valid in this
// arena remain valid in the fork.
func (a FrozenArena) NewHybrid(name string) *HybridArena {
	return NewHybridArena(name, a.memory)
}

func (a FrozenArena) GetMemoryFootprint() *common.MemoryFootprint {
	return a.memory.GetMemoryFootprint()
}

var (
	_ Memory = FrozenArenaMemory{}
	_ Arena  = FrozenArena{}
)
