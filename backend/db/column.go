// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package db

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// DBCol identifies a column of a store. Columns are realized as key
// prefixes of the underlying key-value database, similar to table spaces.
type DBCol byte

const (
	// DbVersion stores the version of the database schema.
	DbVersion DBCol = 'v'
	// Misc stores miscellaneous metadata like the kind of the database.
	Misc DBCol = 'm'
	// State stores trie nodes of the state tries.
	State DBCol = 'S'
	// FlatState stores the flat key-value view of the state.
	FlatState DBCol = 'F'
	// FlatStorageStatus stores the creation status of the flat state.
	FlatStorageStatus DBCol = 'f'
	// EpochInfo stores information on epochs.
	EpochInfo DBCol = 'E'
	// ChunkExtra stores the results of applying chunks.
	ChunkExtra DBCol = 'X'
	// Block stores full blocks.
	Block DBCol = 'B'
	// BlockHeader stores block headers.
	BlockHeader DBCol = 'H'
	// BlockHeight maps heights to block hashes.
	BlockHeight DBCol = 'h'
	// Chunks stores shard chunks.
	Chunks DBCol = 'C'
	// Transactions stores signed transactions.
	Transactions DBCol = 'T'
	// Receipts stores receipts.
	Receipts DBCol = 'R'
	// StateChanges stores the changes applied to the state by each block.
	StateChanges DBCol = 'D'
	// TrieChanges stores the trie node insertions and deletions of each block.
	TrieChanges DBCol = 't'
)

var columnNames = map[DBCol]string{
	DbVersion:         "DbVersion",
	Misc:              "Misc",
	State:             "State",
	FlatState:         "FlatState",
	FlatStorageStatus: "FlatStorageStatus",
	EpochInfo:         "EpochInfo",
	ChunkExtra:        "ChunkExtra",
	Block:             "Block",
	BlockHeader:       "BlockHeader",
	BlockHeight:       "BlockHeight",
	Chunks:            "Chunks",
	Transactions:      "Transactions",
	Receipts:          "Receipts",
	StateChanges:      "StateChanges",
	TrieChanges:       "TrieChanges",
}

// AllColumns lists all known columns in the order of their prefixes.
func AllColumns() []DBCol {
	res := maps.Keys(columnNames)
	slices.Sort(res)
	return res
}

func (c DBCol) String() string {
	if name, found := columnNames[c]; found {
		return name
	}
	return fmt.Sprintf("DBCol(%d)", byte(c))
}

// ParseDBCol resolves a column by its name.
func ParseDBCol(name string) (DBCol, error) {
	for col, cur := range columnNames {
		if cur == name {
			return col, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// UnmarshalText allows columns to be used as flag values and config entries.
func (c *DBCol) UnmarshalText(text []byte) error {
	col, err := ParseDBCol(string(text))
	if err != nil {
		return err
	}
	*c = col
	return nil
}

// prefix returns the key prefix of this column.
func (c DBCol) prefix() []byte {
	return []byte{byte(c)}
}

// key returns the database key of the given key in this column.
func (c DBCol) key(key []byte) []byte {
	res := make([]byte, 0, len(key)+1)
	res = append(res, byte(c))
	return append(res, key...)
}

// upperBound returns the smallest key larger than all keys of this column.
func (c DBCol) upperBound() []byte {
	return []byte{byte(c) + 1}
}
