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
	"encoding/binary"
	"fmt"
)

// Slice is a read-only window of an arena memory. It does not own the bytes
// and must not be used beyond the lifetime of the memory it was taken from.
type Slice struct {
	memory Memory
	pos    Pos
	length int
}

// NewSlice creates a view on length bytes of the given memory starting at pos.
func NewSlice(memory Memory, pos Pos, length int) Slice {
	return Slice{memory: memory, pos: pos, length: length}
}

func (s Slice) Pos() Pos {
	return s.pos
}

func (s Slice) Len() int {
	return s.length
}

// Raw resolves the view into the underlying bytes.
func (s Slice) Raw() []byte {
	return s.memory.RawSlice(s.pos, s.length)
}

// Subslice narrows the view to [start, start+length) of the current range.
func (s Slice) Subslice(start, length int) Slice {
	checkSubrange(s.pos, s.length, start, length)
	return Slice{memory: s.memory, pos: s.pos.add(start), length: length}
}

// ReadPosAt decodes a position stored at the given offset of the view.
func (s Slice) ReadPosAt(offset int) Pos {
	return DecodePos(s.Subslice(offset, PosSize).Raw())
}

func (s Slice) ReadUint32At(offset int) uint32 {
	return binary.LittleEndian.Uint32(s.Subslice(offset, 4).Raw())
}

func (s Slice) ReadUint64At(offset int) uint64 {
	return binary.LittleEndian.Uint64(s.Subslice(offset, 8).Raw())
}

// SliceMut is a read-write window of an arena memory. Like Slice, it borrows
// the memory and carries no ownership.
type SliceMut struct {
	memory MemoryMut
	pos    Pos
	length int
}

// NewSliceMut creates a writable view on length bytes starting at pos.
func NewSliceMut(memory MemoryMut, pos Pos, length int) SliceMut {
	return SliceMut{memory: memory, pos: pos, length: length}
}

func (s SliceMut) Pos() Pos {
	return s.pos
}

func (s SliceMut) Len() int {
	return s.length
}

func (s SliceMut) Raw() []byte {
	return s.memory.RawSlice(s.pos, s.length)
}

func (s SliceMut) RawMut() []byte {
	return s.memory.RawSliceMut(s.pos, s.length)
}

// AsSlice drops the write permission of this view.
func (s SliceMut) AsSlice() Slice {
	return Slice{memory: s.memory, pos: s.pos, length: s.length}
}

func (s SliceMut) Subslice(start, length int) Slice {
	return s.AsSlice().Subslice(start, length)
}

func (s SliceMut) SubsliceMut(start, length int) SliceMut {
	checkSubrange(s.pos, s.length, start, length)
	return SliceMut{memory: s.memory, pos: s.pos.add(start), length: length}
}

// WritePosAt encodes the given position at the given offset of the view.
func (s SliceMut) WritePosAt(offset int, pos Pos) {
	pos.Encode(s.SubsliceMut(offset, PosSize).RawMut())
}

func (s SliceMut) WriteUint32At(offset int, value uint32) {
	binary.LittleEndian.PutUint32(s.SubsliceMut(offset, 4).RawMut(), value)
}

func (s SliceMut) WriteUint64At(offset int, value uint64) {
	binary.LittleEndian.PutUint64(s.SubsliceMut(offset, 8).RawMut(), value)
}

func checkSubrange(pos Pos, parentLength, start, length int) {
	if start < 0 || length < 0 || start+length > parentLength {
		panic(fmt.Errorf("%w: sub-range [%d,%d) of %d bytes at %v", ErrOutOfBounds, start, start+length, parentLength, pos))
	}
}
