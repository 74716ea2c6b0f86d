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
	"math/bits"
	"unsafe"

	"github.com/Fantom-foundation/memtrie/go/common"
)

// ChunkSize is the capacity of the regular chunks appended by an Allocator.
// Requests exceeding it are served by a dedicated chunk of their own.
const ChunkSize = 4 << 20

const (
	// Requests up to this size are rounded up to a multiple of 8 bytes.
	smallAllocLimit = 128
	// Number of size classes for requests up to smallAllocLimit.
	numSmallClasses = smallAllocLimit / 8
	// Number of size classes per power of two above smallAllocLimit.
	classesPerPowerOfTwo = 4
)

// Allocator hands out non-overlapping byte ranges of an STArenaMemory. New
// ranges are bump-allocated from the tail chunk; released ranges are kept in
// per size class free lists and reused by later allocations of the same
// class. The links of those free lists are stored in the released bytes
// themselves. Released positions are tracked until they are reused, which
// makes releasing a range twice a detected error instead of a source of
// aliased allocations.
//
// An Allocator must always be used with the same memory and is, like the
// memory, not safe for concurrent use.
type Allocator struct {
	name      string
	chunkSize int
	freeLists []freeList
	freed     map[Pos]struct{} // positions currently in a free list
	next      Pos  // next free byte in the current bump chunk
	hasChunk  bool // false until the first bump chunk was added

	activeAllocs      int
	activeAllocsBytes int
	memoryUsage       int

	metrics allocatorMetrics
}

type freeList struct {
	head   Pos
	length int
}

// NewAllocator creates an allocator using ChunkSize sized chunks.
func NewAllocator(name string) *Allocator {
	return newAllocator(name, ChunkSize)
}

func newAllocator(name string, chunkSize int) *Allocator {
	return &Allocator{
		name:      name,
		chunkSize: chunkSize,
		freed:     map[Pos]struct{}{},
		metrics:   newAllocatorMetrics(name),
	}
}

// Name returns the diagnostic name of this allocator.
func (a *Allocator) Name() string {
	return a.name
}

// Allocate reserves a range of at least size bytes in the given memory and
// returns its position. The range is zeroed. Zero-sized requests are served
// like requests for the smallest size class.
func (a *Allocator) Allocate(memory *STArenaMemory, size int) Pos {
	if size < 0 {
		panic(fmt.Errorf("%w: negative size %d", ErrInvalidAllocation, size))
	}
	class := allocationClass(size)
	classSize := allocationSize(class)

	a.activeAllocs++
	a.activeAllocsBytes += classSize
	a.metrics.allocated(classSize)

	// Reuse released ranges first.
	if class < len(a.freeLists) && a.freeLists[class].length > 0 {
		list := &a.freeLists[class]
		pos := list.head
		data := memory.RawSliceMut(pos, classSize)
		list.head = DecodePos(data)
		list.length--
		delete(a.freed, pos)
		clear(data)
		return pos
	}

	// Oversized requests get a chunk on their own.
	if classSize > a.chunkSize {
		return Pos{Chunk: a.addChunk(memory, classSize)}
	}

	if !a.hasChunk || int(a.next.Offset)+classSize > a.chunkSize {
		a.next = Pos{Chunk: a.addChunk(memory, a.chunkSize)}
		a.hasChunk = true
	}
	pos := a.next
	a.next.Offset += uint32(classSize)
	return pos
}

// Deallocate releases a range previously obtained from Allocate with the
// same size. The range must not be accessed afterwards.
func (a *Allocator) Deallocate(memory *STArenaMemory, pos Pos, size int) {
	if size < 0 {
		panic(fmt.Errorf("%w: negative size %d", ErrInvalidAllocation, size))
	}
	if _, found := a.freed[pos]; found {
		panic(fmt.Errorf("%w: range at %v released twice", ErrInvalidAllocation, pos))
	}
	class := allocationClass(size)
	classSize := allocationSize(class)
	if a.activeAllocs == 0 || a.activeAllocsBytes < classSize {
		panic(fmt.Errorf("%w: release of %d bytes at %v exceeds live allocations", ErrInvalidAllocation, size, pos))
	}

	data := memory.RawSliceMut(pos, classSize)
	for len(a.freeLists) <= class {
		a.freeLists = append(a.freeLists, freeList{})
	}
	list := &a.freeLists[class]
	list.head.Encode(data)
	list.head = pos
	list.length++
	a.freed[pos] = struct{}{}

	a.activeAllocs--
	a.activeAllocsBytes -= classSize
	a.metrics.deallocated(classSize)
}

// NumActiveAllocs returns the number of live allocations.
func (a *Allocator) NumActiveAllocs() int {
	return a.activeAllocs
}

// ActiveAllocsBytes returns the number of bytes reserved by live
// allocations, including the padding of their size class.
func (a *Allocator) ActiveAllocsBytes() int {
	return a.activeAllocsBytes
}

func (a *Allocator) addChunk(memory *STArenaMemory, size int) uint32 {
	a.memoryUsage += size
	a.metrics.grown(size)
	return memory.addChunk(size)
}

// release withdraws the contributions of this allocator from the metrics.
// It is called when the owning arena gives up its memory.
func (a *Allocator) release() {
	a.metrics.released(a.activeAllocs, a.activeAllocsBytes, a.memoryUsage)
	a.activeAllocs = 0
	a.activeAllocsBytes = 0
	a.memoryUsage = 0
}

func (a *Allocator) GetMemoryFootprint() *common.MemoryFootprint {
	res := common.NewMemoryFootprint(unsafe.Sizeof(*a) +
		uintptr(cap(a.freeLists))*unsafe.Sizeof(freeList{}) +
		uintptr(len(a.freed))*unsafe.Sizeof(Pos{}))
	res.SetNote(fmt.Sprintf("%d active allocations, %d bytes", a.activeAllocs, a.activeAllocsBytes))
	return res
}

// allocationClass maps a request size to its size class. Sizes up to
// smallAllocLimit are rounded to multiples of 8, larger sizes to one of
// classesPerPowerOfTwo evenly spaced steps between consecutive powers of two.
func allocationClass(size int) int {
	if size <= 8 {
		return 0
	}
	if size <= smallAllocLimit {
		return (size+7)/8 - 1
	}
	exp := bits.Len(uint(size - 1))
	base := 1 << (exp - 1)
	step := base / classesPerPowerOfTwo
	k := (size - base + step - 1) / step
	return numSmallClasses + (exp-8)*classesPerPowerOfTwo + k - 1
}

// allocationSize returns the number of bytes reserved for a size class.
func allocationSize(class int) int {
	if class < numSmallClasses {
		return (class + 1) * 8
	}
	class -= numSmallClasses
	base := 1 << (class/classesPerPowerOfTwo + 7)
	k := class%classesPerPowerOfTwo + 1
	return base + k*(base/classesPerPowerOfTwo)
}
