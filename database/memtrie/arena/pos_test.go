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
	"errors"
	"testing"
)

// expectPanic runs f and checks that it panics with an error matching target.
func expectPanic(t *testing.T, target error, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Errorf("expected panic with %v, got none", target)
			return
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Errorf("expected panic with %v, got %v", target, r)
		}
	}()
	f()
}

func TestPos_EncodingRoundTrip(t *testing.T) {
	positions := []Pos{
		{},
		{Chunk: 1, Offset: 25},
		{Chunk: 12, Offset: ChunkSize - 8},
		{Chunk: 1<<32 - 1, Offset: 1<<32 - 1},
	}
	for _, pos := range positions {
		var buffer [PosSize]byte
		pos.Encode(buffer[:])
		if got, want := DecodePos(buffer[:]), pos; got != want {
			t.Errorf("failed to restore position, got %v, want %v", got, want)
		}
	}
}

func TestPos_EncodingIsLittleEndian(t *testing.T) {
	var buffer [PosSize]byte
	Pos{Chunk: 0x01020304, Offset: 0x05060708}.Encode(buffer[:])
	want := [PosSize]byte{4, 3, 2, 1, 8, 7, 6, 5}
	if buffer != want {
		t.Errorf("unexpected encoding, got %v, want %v", buffer, want)
	}
}

func TestPos_CanBePrinted(t *testing.T) {
	if got, want := (Pos{Chunk: 2, Offset: 17}).String(), "2:17"; got != want {
		t.Errorf("unexpected print, got %s, want %s", got, want)
	}
}

func TestPos_IsComparable(t *testing.T) {
	a := Pos{Chunk: 1, Offset: 2}
	b := Pos{Chunk: 1, Offset: 2}
	c := Pos{Chunk: 2, Offset: 1}
	if a != b {
		t.Errorf("equal positions are not equal")
	}
	if a == c {
		t.Errorf("different positions are equal")
	}
}
