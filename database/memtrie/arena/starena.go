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

// STArenaMemory is the single-owner backing store of arenas: an append-only
// list of independently sized chunks. Chunks are never resized or removed,
// thus bytes handed out remain at a stable location for the lifetime of the
// memory. An STArenaMemory must only be mutated by one owner at a time.
//
// Once frozen, a memory rejects all mutable access, including access through
// handles and slices obtained before it was frozen.
type STArenaMemory struct {
	chunks [][]byte
	frozen bool
}

// NewSTArenaMemory creates an empty memory.
func NewSTArenaMemory() *STArenaMemory {
	return &STArenaMemory{}
}

func (m *STArenaMemory) NumChunks() int {
	return len(m.chunks)
}

func (m *STArenaMemory) RawSlice(pos Pos, length int) []byte {
	return m.resolve(pos, length)
}

// RawSliceMut panics with ErrIllegalMutation if the memory is frozen.
func (m *STArenaMemory) RawSliceMut(pos Pos, length int) []byte {
	if m.frozen {
		panic(fmt.Errorf("%w: position %v is in frozen memory", ErrIllegalMutation, pos))
	}
	return m.resolve(pos, length)
}

// freeze makes the memory immutable. There is no way back.
func (m *STArenaMemory) freeze() {
	m.frozen = true
}

// resolve returns the addressed range with its capacity clipped to its length
// such that appending to the result never overwrites neighboring bytes.
func (m *STArenaMemory) resolve(pos Pos, length int) []byte {
	if int(pos.Chunk) >= len(m.chunks) {
		panic(fmt.Errorf("%w: chunk of position %v not in memory with %d chunks", ErrOutOfBounds, pos, len(m.chunks)))
	}
	chunk := m.chunks[pos.Chunk]
	start := int(pos.Offset)
	end := start + length
	if length < 0 || end > len(chunk) {
		panic(fmt.Errorf("%w: range of %d bytes at %v exceeds chunk size %d", ErrOutOfBounds, length, pos, len(chunk)))
	}
	return chunk[start:end:end]
}

// addChunk appends a zeroed chunk of the given size and returns its index.
func (m *STArenaMemory) addChunk(size int) uint32 {
	m.chunks = append(m.chunks, make([]byte, size))
	return uint32(len(m.chunks) - 1)
}

// size returns the total number of bytes held by the chunks.
func (m *STArenaMemory) size() uintptr {
	res := uintptr(0)
	for _, chunk := range m.chunks {
		res += uintptr(cap(chunk))
	}
	return res
}

func (m *STArenaMemory) GetMemoryFootprint() *common.MemoryFootprint {
	res := common.NewMemoryFootprint(unsafe.Sizeof(*m) + uintptr(cap(m.chunks))*unsafe.Sizeof([]byte{}))
	chunks := common.NewMemoryFootprint(m.size())
	chunks.SetNote(fmt.Sprintf("%d chunks", len(m.chunks)))
	res.AddChild("chunks", chunks)
	return res
}

// STArena is a growable arena owning its memory exclusively. Once all nodes
// of a trie version are in place, Freeze turns it into a shareable
// FrozenArena.
type STArena struct {
	memory    *STArenaMemory
	allocator *Allocator
}

// NewSTArena creates an empty arena. The name identifies the arena in
// metrics and memory footprints.
func NewSTArena(name string) *STArena {
	return &STArena{
		memory:    NewSTArenaMemory(),
		allocator: NewAllocator(name),
	}
}

func (a *STArena) mem() *STArenaMemory {
	if a.memory == nil {
		panic(ErrArenaConsumed)
	}
	return a.memory
}

func (a *STArena) Memory() Memory {
	return a.mem()
}

func (a *STArena) MemoryMut() MemoryMut {
	return a.mem()
}

func (a *STArena) Alloc(size int) SliceMut {
	memory := a.mem()
	pos := a.allocator.Allocate(memory, size)
	return NewSliceMut(memory, pos, size)
}

func (a *STArena) Dealloc(pos Pos, size int) {
	a.allocator.Deallocate(a.mem(), pos, size)
}

// NumActiveAllocs returns the number of allocations not yet deallocated.
func (a *STArena) NumActiveAllocs() int {
	return a.allocator.NumActiveAllocs()
}

// ActiveAllocsBytes returns the number of bytes reserved by live allocations.
func (a *STArena) ActiveAllocsBytes() int {
	return a.allocator.ActiveAllocsBytes()
}

// Freeze hands the memory of this arena over to a new FrozenArena. The
// arena must not be used afterwards.
func (a *STArena) Freeze() FrozenArena {
	memory := a.mem()
	a.allocator.release()
	a.memory = nil
	return NewFrozenArena(memory)
}

// Release drops the memory of this arena. The arena must not be used
// afterwards.
func (a *STArena) Release() {
	if a.memory == nil {
		return
	}
	a.allocator.release()
	a.memory = nil
}

func (a *STArena) GetMemoryFootprint() *common.MemoryFootprint {
	res := common.NewMemoryFootprint(unsafe.Sizeof(*a))
	res.SetNote(a.allocator.name)
	res.AddChild("memory", a.mem().GetMemoryFootprint())
	res.AddChild("allocator", a.allocator.GetMemoryFootprint())
	return res
}

var (
	_ MemoryMut = (*STArenaMemory)(nil)
	_ ArenaMut  = (*STArena)(nil)
)
