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

// Memory provides read access to the bytes of an arena.
type Memory interface {
	// RawSlice resolves the given position into a view of exactly length
	// bytes. The position must be valid for this memory, otherwise the call
	// panics with ErrOutOfBounds.
	RawSlice(pos Pos, length int) []byte

	// NumChunks returns the number of chunks addressable through this memory.
	NumChunks() int
}

// MemoryMut provides read and write access to the bytes of an arena.
type MemoryMut interface {
	Memory

	// RawSliceMut is like RawSlice but the result may be modified. Memories
	// with an immutable region panic with ErrIllegalMutation when the
	// position lies in this region.
	RawSliceMut(pos Pos, length int) []byte
}

// Arena is an owner of a read-only memory.
type Arena interface {
	Memory() Memory
}

// ArenaMut is an owner of a memory and of an allocator able to grow it.
type ArenaMut interface {
	Arena

	MemoryMut() MemoryMut

	// Alloc reserves size fresh bytes and returns a writable view on them.
	// The view's position may be stored to look the bytes up later.
	Alloc(size int) SliceMut

	// Dealloc returns a range obtained from Alloc to the allocator. The size
	// must be the size used for the allocation.
	Dealloc(pos Pos, size int)
}
