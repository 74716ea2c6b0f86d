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

// PosSize is the number of bytes required to encode a Pos.
const PosSize = 8

// Pos addresses a byte offset within a chunk of an arena memory. A Pos is a
// plain value; it only becomes meaningful in combination with the memory it
// was obtained from (or a memory sharing the same chunk prefix).
type Pos struct {
	Chunk  uint32
	Offset uint32
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Chunk, p.Offset)
}

// Encode writes the position into the first PosSize bytes of trg. It is the
// format used to store child references inside trie nodes.
func (p Pos) Encode(trg []byte) {
	binary.LittleEndian.PutUint32(trg[0:4], p.Chunk)
	binary.LittleEndian.PutUint32(trg[4:8], p.Offset)
}

// DecodePos restores a position written by Encode.
func DecodePos(src []byte) Pos {
	return Pos{
		Chunk:  binary.LittleEndian.Uint32(src[0:4]),
		Offset: binary.LittleEndian.Uint32(src[4:8]),
	}
}

func (p Pos) add(offset int) Pos {
	return Pos{Chunk: p.Chunk, Offset: p.Offset + uint32(offset)}
}
