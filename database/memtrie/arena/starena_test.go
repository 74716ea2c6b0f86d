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
	"math/rand"
	"strings"
	"testing"
)

func newTestSTArena(chunkSize int) *STArena {
	return &STArena{
		memory:    NewSTArenaMemory(),
		allocator: newAllocator("test", chunkSize),
	}
}

func TestSTArenaMemory_IsEmptyWhenCreated(t *testing.T) {
	memory := NewSTArenaMemory()
	if got, want := memory.NumChunks(), 0; got != want {
		t.Errorf("unexpected number of chunks, got %d, want %d", got, want)
	}
	expectPanic(t, ErrOutOfBounds, func() {
		memory.RawSlice(Pos{}, 0)
	})
}

func TestSTArenaMemory_ResolvedSlicesCanNotGrowIntoNeighbors(t *testing.T) {
	memory := newTestMemory(16)
	data := memory.RawSliceMut(Pos{Offset: 2}, 4)
	if got, want := cap(data), 4; got != want {
		t.Fatalf("unexpected capacity, got %d, want %d", got, want)
	}
	_ = append(data, 1, 2, 3)
	if got, want := memory.RawSlice(Pos{Offset: 6}, 3), []byte{0, 0, 0}; !bytes.Equal(got, want) {
		t.Errorf("neighboring bytes modified, got %v, want %v", got, want)
	}
}

func TestSTArena_WrittenBytesCanBeReadBack(t *testing.T) {
	arena := NewSTArena("test")
	slices := []SliceMut{}
	for i := 0; i < 100; i++ {
		slice := arena.Alloc(i + 1)
		for j := range slice.RawMut() {
			slice.RawMut()[j] = byte(i + j)
		}
		slices = append(slices, slice)
	}
	for i, slice := range slices {
		data := arena.Memory().RawSlice(slice.Pos(), slice.Len())
		for j, cur := range data {
			if want := byte(i + j); cur != want {
				t.Fatalf("unexpected byte %d of allocation %d, got %d, want %d", j, i, cur, want)
			}
		}
	}
}

func TestSTArena_AllocationsDoNotOverlap(t *testing.T) {
	type interval struct {
		chunk      uint32
		start, end int
	}
	overlaps := func(a, b interval) bool {
		return a.chunk == b.chunk && a.start < b.end && b.start < a.end
	}

	arena := newTestSTArena(1024)
	r := rand.New(rand.NewSource(42))
	live := []interval{}
	for i := 0; i < 2000; i++ {
		// Release a random live allocation from time to time.
		if len(live) > 0 && r.Intn(3) == 0 {
			k := r.Intn(len(live))
			arena.Dealloc(Pos{Chunk: live[k].chunk, Offset: uint32(live[k].start)}, live[k].end-live[k].start)
			live = append(live[:k], live[k+1:]...)
			continue
		}
		size := r.Intn(1500) + 1
		pos := arena.Alloc(size).Pos()
		cur := interval{pos.Chunk, int(pos.Offset), int(pos.Offset) + size}
		for _, other := range live {
			if overlaps(cur, other) {
				t.Fatalf("allocation %v overlaps with %v", cur, other)
			}
		}
		live = append(live, cur)
	}
	if got, want := arena.NumActiveAllocs(), len(live); got != want {
		t.Errorf("unexpected number of active allocations, got %d, want %d", got, want)
	}
}

func TestSTArena_ChunksAreAddedOnDemand(t *testing.T) {
	arena := newTestSTArena(100)
	first := arena.Alloc(64).Pos()
	second := arena.Alloc(32).Pos()
	third := arena.Alloc(16).Pos()

	if got, want := first, (Pos{Chunk: 0, Offset: 0}); got != want {
		t.Errorf("unexpected position, got %v, want %v", got, want)
	}
	if got, want := second, (Pos{Chunk: 0, Offset: 64}); got != want {
		t.Errorf("unexpected position, got %v, want %v", got, want)
	}
	if got, want := third, (Pos{Chunk: 1, Offset: 0}); got != want {
		t.Errorf("unexpected position, got %v, want %v", got, want)
	}
	if got, want := arena.Memory().NumChunks(), 2; got != want {
		t.Errorf("unexpected number of chunks, got %d, want %d", got, want)
	}
}

func TestSTArena_OversizedAllocationsGetDedicatedChunk(t *testing.T) {
	arena := newTestSTArena(100)
	small := arena.Alloc(8).Pos()
	large := arena.Alloc(1000)
	after := arena.Alloc(8).Pos()

	if got, want := large.Pos(), (Pos{Chunk: 1, Offset: 0}); got != want {
		t.Errorf("unexpected position, got %v, want %v", got, want)
	}
	if got, want := len(large.RawMut()), 1000; got != want {
		t.Errorf("unexpected length, got %d, want %d", got, want)
	}
	// Regular allocations continue in the partially used chunk.
	if got, want := after, (Pos{Chunk: small.Chunk, Offset: 8}); got != want {
		t.Errorf("unexpected position, got %v, want %v", got, want)
	}
}

func TestSTArena_ZeroSizedAllocationsAreEmptyAndDistinct(t *testing.T) {
	arena := NewSTArena("test")
	a := arena.Alloc(0)
	b := arena.Alloc(0)
	if a.Pos() == b.Pos() {
		t.Errorf("zero sized allocations share position %v", a.Pos())
	}
	if got := len(a.Raw()); got != 0 {
		t.Errorf("unexpected length, got %d", got)
	}
	arena.Dealloc(a.Pos(), 0)
	arena.Dealloc(b.Pos(), 0)
	if got := arena.NumActiveAllocs(); got != 0 {
		t.Errorf("unexpected number of active allocations, got %d", got)
	}
}

func TestSTArena_FreezeConsumesArena(t *testing.T) {
	arena := NewSTArena("test")
	slice := arena.Alloc(4)
	copy(slice.RawMut(), []byte{1, 2, 3, 4})

	frozen := arena.Freeze()
	if got, want := frozen.Memory().RawSlice(slice.Pos(), 4), []byte{1, 2, 3, 4}; !bytes.Equal(got, want) {
		t.Errorf("unexpected content, got %v, want %v", got, want)
	}

	expectPanic(t, ErrArenaConsumed, func() { arena.Alloc(4) })
	expectPanic(t, ErrArenaConsumed, func() { arena.Memory() })
	expectPanic(t, ErrArenaConsumed, func() { arena.MemoryMut() })
	expectPanic(t, ErrArenaConsumed, func() { arena.Freeze() })
}

func TestSTArena_ReleaseConsumesArena(t *testing.T) {
	arena := NewSTArena("test")
	arena.Alloc(4)
	arena.Release()
	arena.Release()
	expectPanic(t, ErrArenaConsumed, func() { arena.Alloc(4) })
}

func TestSTArena_MemoryFootprintCoversChunks(t *testing.T) {
	arena := newTestSTArena(1000)
	arena.Alloc(600)
	arena.Alloc(600)

	footprint := arena.GetMemoryFootprint()
	if got := footprint.Total(); got < 2000 {
		t.Errorf("footprint does not cover chunks, got %d", got)
	}
	if !strings.Contains(footprint.String(), "2 chunks") {
		t.Errorf("footprint does not list chunks: %v", footprint)
	}
}

func TestSTArena_FreezeBlocksWritesThroughEarlierHandles(t *testing.T) {
	arena := NewSTArena("test")
	slice := arena.Alloc(8)
	copy(slice.RawMut(), []byte{1, 2, 3, 4, 5, 6, 7, 8})
	memory := arena.MemoryMut()

	frozen := arena.Freeze()

	expectPanic(t, ErrIllegalMutation, func() { memory.RawSliceMut(slice.Pos(), 8) })
	expectPanic(t, ErrIllegalMutation, func() { slice.RawMut() })
	expectPanic(t, ErrIllegalMutation, func() { slice.WriteUint32At(0, 42) })

	if got, want := frozen.Memory().RawSlice(slice.Pos(), 8), []byte{1, 2, 3, 4, 5, 6, 7, 8}; !bytes.Equal(got, want) {
		t.Errorf("frozen content was modified, got %v, want %v", got, want)
	}
	if got, want := slice.AsSlice().Raw(), []byte{1, 2, 3, 4, 5, 6, 7, 8}; !bytes.Equal(got, want) {
		t.Errorf("earlier slices should still be readable, got %v, want %v", got, want)
	}
}
