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
	"fmt"
	"unsafe"

	"github.com/Fantom-foundation/memtrie/go/common"
)

// HybridArenaMemory combines a shared immutable base with an owned, mutable
// delta memory. With B being the number of chunks of the base, positions of
// chunks below B address the base while positions of chunks >= B address
// chunk-B of the delta.
type HybridArenaMemory struct {
	owned  *STArenaMemory
	shared FrozenArenaMemory
}

func newHybridArenaMemory(shared FrozenArenaMemory) *HybridArenaMemory {
	return &HybridArenaMemory{
		owned:  NewSTArenaMemory(),
		shared: shared,
	}
}

func (m *HybridArenaMemory) chunksOffset() uint32 {
	return uint32(m.shared.NumChunks())
}

func (m *HybridArenaMemory) RawSlice(pos Pos, length int) []byte {
	offset := m.chunksOffset()
	if pos.Chunk >= offset {
		pos.Chunk -= offset
		return m.owned.RawSlice(pos, length)
	}
	return m.shared.RawSlice(pos, length)
}

// RawSliceMut resolves positions of the delta memory only; positions in the
// shared base cause a panic with ErrIllegalMutation.
func (m *HybridArenaMemory) RawSliceMut(pos Pos, length int) []byte {
	return m.owned.RawSliceMut(m.toOwned(pos), length)
}

func (m *HybridArenaMemory) toOwned(pos Pos) Pos {
	offset := m.chunksOffset()
	if pos.Chunk < offset {
		panic(fmt.Errorf("%w: position %v is in shared chunks [0,%d)", ErrIllegalMutation, pos, offset))
	}
	pos.Chunk -= offset
	return pos
}

func (m *HybridArenaMemory) NumChunks() int {
	return m.shared.NumChunks() + m.owned.NumChunks()
}

func (m *HybridArenaMemory) GetMemoryFootprint() *common.MemoryFootprint {
	res := common.NewMemoryFootprint(unsafe.Sizeof(*m))
	base := m.shared.GetMemoryFootprint()
	base.SetNote("shared")
	res.AddChild("base", base)
	res.AddChild("delta", m.owned.GetMemoryFootprint())
	return res
}

// HybridArena is an arena for a fork of a frozen trie version. It reads the
// nodes of the frozen base in place and places all new allocations in its
// own delta memory. Forks of the same base do not observe each other's
// allocations.
type HybridArena struct {
	memory    *HybridArenaMemory
	allocator *Allocator
}

// NewHybridArena creates a fork of the given shared memory with an empty
// delta. Creating a fork does not copy the base. A zero FrozenArenaMemory
// is rejected with a panic carrying ErrInvalidBase.
func NewHybridArena(name string, shared FrozenArenaMemory) *HybridArena {
	if !shared.valid() {
		panic(fmt.Errorf("%w: hybrid arena %q", ErrInvalidBase, name))
	}
	return &HybridArena{
		memory:    newHybridArenaMemory(shared),
		allocator: NewAllocator(name),
	}
}

func (a *HybridArena) mem() *HybridArenaMemory {
	if a.memory == nil {
		panic(ErrArenaConsumed)
	}
	return a.memory
}

func (a *HybridArena) Memory() Memory {
	return a.mem()
}

func (a *HybridArena) MemoryMut() MemoryMut {
	return a.mem()
}

// Base returns the shared memory this fork is built on.
func (a *HybridArena) Base() FrozenArenaMemory {
	return a.mem().shared
}

// Alloc reserves size bytes in the delta memory. The chunk index of the
// resulting position is shifted by the number of base chunks.
func (a *HybridArena) Alloc(size int) SliceMut {
	memory := a.mem()
	pos := a.allocator.Allocate(memory.owned, size)
	pos.Chunk += memory.chunksOffset()
	return NewSliceMut(memory, pos, size)
}

// Dealloc releases an allocation of the delta memory. Positions in the base
// cause a panic with ErrIllegalMutation.
func (a *HybridArena) Dealloc(pos Pos, size int) {
	memory := a.mem()
	a.allocator.Deallocate(memory.owned, memory.toOwned(pos), size)
}

func (a *HybridArena) NumActiveAllocs() int {
	return a.allocator.NumActiveAllocs()
}

func (a *HybridArena) ActiveAllocsBytes() int {
	return a.allocator.ActiveAllocsBytes()
}

// Freeze converts this fork into a frozen arena whose chunks are the base
// chunks followed by the delta chunks. No bytes are copied and every
// position obtained from this arena, or valid in its base, stays valid in
// the result. The hybrid arena must not be used afterwards.
func (a *HybridArena) Freeze() FrozenArena {
	memory := a.mem()
	memory.owned.freeze()
	base := memory.shared.shared.chunks
	delta := memory.owned.chunks
	chunks := make([][]byte, 0, len(base)+len(delta))
	chunks = append(chunks, base...)
	chunks = append(chunks, delta...)
	a.allocator.release()
	a.memory = nil
	return NewFrozenArena(&STArenaMemory{chunks: chunks})
}

// Release drops the delta memory of this fork; the base is not affected.
func (a *HybridArena) Release() {
	if a.memory == nil {
		return
	}
	a.allocator.release()
	a.memory = nil
}

func (a *HybridArena) GetMemoryFootprint() *common.MemoryFootprint {
	res := common.NewMemoryFootprint(unsafe.Sizeof(*a))
	res.SetNote(a.allocator.name)
	res.AddChild("memory", a.mem().GetMemoryFootprint())
	res.AddChild("allocator", a.allocator.GetMemoryFootprint())
	return res
}

var (
	_ MemoryMut = (*HybridArenaMemory)(nil)
	_ ArenaMut  = (*HybridArena)(nil)
)
