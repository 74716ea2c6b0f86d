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
	"bytes"
	"testing"
)

// newTwoChunkBase creates a frozen base of two chunks of 1000 bytes with
// the bytes 100+i for i in [0,size) written at position 1:25.
func newTwoChunkBase(size int) FrozenArena {
	memory := newTestMemory(1000, 1000)
	data := memory.RawSliceMut(Pos{Chunk: 1, Offset: 25}, size)
	for i := range data {
		data[i] = byte(100 + i)
	}
	return NewFrozenArena(memory)
}

func TestHybridArena_ReadsBaseAndAllocatesInDelta(t *testing.T) {
	const size = 50
	basePos := Pos{Chunk: 1, Offset: 25}
	hybrid := NewHybridArena("hybrid", newTwoChunkBase(size).SharedMemory())

	slice := hybrid.Alloc(size)
	for i := 0; i < size; i++ {
		slice.RawMut()[i] = byte(i)
	}

	deltaPos := slice.Pos()
	if got, want := deltaPos, (Pos{Chunk: 2, Offset: 0}); got != want {
		t.Fatalf("unexpected position of allocation, got %v, want %v", got, want)
	}

	for i := 0; i < size; i++ {
		shared := NewSlice(hybrid.Memory(), basePos, size).Subslice(i, 1).Raw()[0]
		owned := NewSlice(hybrid.Memory(), deltaPos, size).Subslice(i, 1).Raw()[0]
		if got, want := shared, byte(100+i); got != want {
			t.Errorf("unexpected shared byte %d, got %d, want %d", i, got, want)
		}
		if got, want := owned, byte(i); got != want {
			t.Errorf("unexpected owned byte %d, got %d, want %d", i, got, want)
		}
	}
}

func TestHybridArena_MutableAccessToBaseIsRejected(t *testing.T) {
	base := newTwoChunkBase(50)
	before := bytes.Clone(base.Memory().RawSlice(Pos{Chunk: 1, Offset: 25}, 50))

	hybrid := NewHybridArena("hybrid", base.SharedMemory())
	expectPanic(t, ErrIllegalMutation, func() {
		hybrid.MemoryMut().RawSliceMut(Pos{Chunk: 1, Offset: 25}, 50)
	})
	expectPanic(t, ErrIllegalMutation, func() {
		NewSliceMut(hybrid.MemoryMut(), Pos{Chunk: 0, Offset: 0}, 8).WriteUint64At(0, 1)
	})

	if got := base.Memory().RawSlice(Pos{Chunk: 1, Offset: 25}, 50); !bytes.Equal(got, before) {
		t.Errorf("base modified, got %v, want %v", got, before)
	}
}

func TestHybridArena_DeallocationInBaseIsRejected(t *testing.T) {
	base := newTwoChunkBase(50)
	before := bytes.Clone(base.Memory().RawSlice(Pos{Chunk: 1, Offset: 25}, 50))

	hybrid := NewHybridArena("hybrid", base.SharedMemory())
	hybrid.Alloc(8)
	expectPanic(t, ErrIllegalMutation, func() {
		hybrid.Dealloc(Pos{Chunk: 1, Offset: 25}, 8)
	})
	if got := base.Memory().RawSlice(Pos{Chunk: 1, Offset: 25}, 50); !bytes.Equal(got, before) {
		t.Errorf("base modified, got %v, want %v", got, before)
	}
	if got, want := hybrid.NumActiveAllocs(), 1; got != want {
		t.Errorf("unexpected number of active allocations, got %d, want %d", got, want)
	}
}

func TestHybridArena_BaseReadsMatchBase(t *testing.T) {
	builder := newTestSTArena(128)
	positions := []Pos{}
	for i := 0; i < 40; i++ {
		slice := builder.Alloc(24)
		slice.WriteUint64At(0, uint64(i))
		positions = append(positions, slice.Pos())
	}
	base := builder.Freeze()

	hybrid := base.NewHybrid("fork")
	for i := 0; i < 40; i++ {
		hybrid.Alloc(24).WriteUint64At(0, uint64(1000+i))
	}

	for _, pos := range positions {
		want := base.Memory().RawSlice(pos, 24)
		got := hybrid.Memory().RawSlice(pos, 24)
		if !bytes.Equal(got, want) {
			t.Errorf("unexpected content at %v, got %v, want %v", pos, got, want)
		}
	}
}

func TestHybridArena_DeltaPositionsAreTranslated(t *testing.T) {
	base := newTwoChunkBase(10)
	hybrid := NewHybridArena("hybrid", base.SharedMemory())

	slice := hybrid.Alloc(16)
	slice.WriteUint64At(8, 77)

	owned := hybrid.memory.owned
	if got, want := owned.NumChunks(), 1; got != want {
		t.Fatalf("unexpected number of delta chunks, got %d, want %d", got, want)
	}
	translated := Pos{Chunk: slice.Pos().Chunk - 2, Offset: slice.Pos().Offset}
	if got, want := NewSlice(owned, translated, 16).ReadUint64At(8), uint64(77); got != want {
		t.Errorf("unexpected value in delta, got %d, want %d", got, want)
	}
	if got, want := hybrid.Memory().NumChunks(), 3; got != want {
		t.Errorf("unexpected number of chunks, got %d, want %d", got, want)
	}
	expectPanic(t, ErrOutOfBounds, func() {
		hybrid.Memory().RawSlice(Pos{Chunk: 3}, 1)
	})
}

func TestHybridArena_ForksOfSameBaseAreIsolated(t *testing.T) {
	base := newTwoChunkBase(10)
	a := base.NewHybrid("a")
	b := base.Clone().NewHybrid("b")

	sliceA := a.Alloc(8)
	sliceB := b.Alloc(8)
	if sliceA.Pos() != sliceB.Pos() {
		t.Fatalf("forks should hand out the same positions, got %v and %v", sliceA.Pos(), sliceB.Pos())
	}
	sliceA.WriteUint64At(0, 1)
	sliceB.WriteUint64At(0, 2)

	if got, want := NewSlice(a.Memory(), sliceA.Pos(), 8).ReadUint64At(0), uint64(1); got != want {
		t.Errorf("unexpected value in fork a, got %d, want %d", got, want)
	}
	if got, want := NewSlice(b.Memory(), sliceB.Pos(), 8).ReadUint64At(0), uint64(2); got != want {
		t.Errorf("unexpected value in fork b, got %d, want %d", got, want)
	}
}

func TestHybridArena_DeltaAllocationsCanBeReleasedAndReused(t *testing.T) {
	hybrid := newTwoChunkBase(10).NewHybrid("hybrid")
	first := hybrid.Alloc(32).Pos()
	hybrid.Dealloc(first, 32)
	if got, want := hybrid.Alloc(32).Pos(), first; got != want {
		t.Errorf("released range not reused, got %v, want %v", got, want)
	}
	if got, want := hybrid.ActiveAllocsBytes(), 32; got != want {
		t.Errorf("unexpected active bytes, got %d, want %d", got, want)
	}
}

func TestHybridArena_FreezeKeepsAllPositionsValid(t *testing.T) {
	base := newTwoChunkBase(50)
	hybrid := base.NewHybrid("hybrid")
	slice := hybrid.Alloc(50)
	for i := range slice.RawMut() {
		slice.RawMut()[i] = byte(i)
	}
	deltaPos := slice.Pos()

	frozen := hybrid.Freeze()
	expectPanic(t, ErrArenaConsumed, func() { hybrid.Alloc(1) })

	if got, want := frozen.Memory().NumChunks(), 3; got != want {
		t.Fatalf("unexpected number of chunks, got %d, want %d", got, want)
	}
	data := frozen.Memory().RawSlice(Pos{Chunk: 1, Offset: 25}, 50)
	for i, cur := range data {
		if want := byte(100 + i); cur != want {
			t.Errorf("unexpected base byte %d, got %d, want %d", i, cur, want)
		}
	}
	data = frozen.Memory().RawSlice(deltaPos, 50)
	for i, cur := range data {
		if want := byte(i); cur != want {
			t.Errorf("unexpected delta byte %d, got %d, want %d", i, cur, want)
		}
	}

	// The frozen result can be the base of the next generation of forks.
	next := frozen.NewHybrid("next")
	if got, want := next.Alloc(8).Pos(), (Pos{Chunk: 3, Offset: 0}); got != want {
		t.Errorf("unexpected position, got %v, want %v", got, want)
	}
	expectPanic(t, ErrIllegalMutation, func() {
		next.MemoryMut().RawSliceMut(deltaPos, 1)
	})
}

func TestHybridArena_ReleaseKeepsBase(t *testing.T) {
	base := newTwoChunkBase(50)
	hybrid := base.NewHybrid("hybrid")
	hybrid.Alloc(100)
	hybrid.Release()
	hybrid.Release()

	expectPanic(t, ErrArenaConsumed, func() { hybrid.Memory() })
	if got, want := base.Memory().RawSlice(Pos{Chunk: 1, Offset: 25}, 1)[0], byte(100); got != want {
		t.Errorf("base affected by release, got %d, want %d", got, want)
	}
}

func TestHybridArena_MemoryFootprintListsBaseAndDelta(t *testing.T) {
	hybrid := newTwoChunkBase(50).NewHybrid("hybrid")
	hybrid.Alloc(100)
	memory := hybrid.GetMemoryFootprint().GetChild("memory")
	if memory == nil {
		t.Fatalf("missing memory footprint")
	}
	if base := memory.GetChild("base"); base == nil || base.Total() < 2000 {
		t.Errorf("base footprint missing or too small: %v", base)
	}
	if delta := memory.GetChild("delta"); delta == nil || delta.Total() < ChunkSize {
		t.Errorf("delta footprint missing or too small: %v", delta)
	}
}

func TestHybridArena_FreezeBlocksWritesThroughEarlierDeltaSlices(t *testing.T) {
	hybrid := NewHybridArena("hybrid", newTwoChunkBase(50).SharedMemory())
	slice := hybrid.Alloc(8)
	copy(slice.RawMut(), []byte{9, 8, 7, 6, 5, 4, 3, 2})
	memory := hybrid.MemoryMut()

	frozen := hybrid.Freeze()

	expectPanic(t, ErrIllegalMutation, func() { slice.RawMut() })
	expectPanic(t, ErrIllegalMutation, func() { memory.RawSliceMut(slice.Pos(), 8) })
	if got, want := frozen.Memory().RawSlice(slice.Pos(), 8), []byte{9, 8, 7, 6, 5, 4, 3, 2}; !bytes.Equal(got, want) {
		t.Errorf("frozen content was modified, got %v, want %v", got, want)
	}
}

func TestHybridArena_ZeroBaseIsRejected(t *testing.T) {
	expectPanic(t, ErrInvalidBase, func() {
		NewHybridArena("hybrid", FrozenArenaMemory{})
	})
}
