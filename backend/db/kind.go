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
	"strings"
)

// DbKind describes the role of a store in a node.
type DbKind byte

const (
	// KindRPC is the kind of stores of non-archival nodes.
	KindRPC DbKind = iota
	// KindArchive is the kind of a single store holding the full history.
	KindArchive
	// KindHot is the kind of the recent-data store of a split storage.
	KindHot
	// KindCold is the kind of the historic-data store of a split storage.
	KindCold
)

var dbKindNames = []string{"RPC", "Archive", "Hot", "Cold"}

func (k DbKind) String() string {
	if int(k) < len(dbKindNames) {
		return dbKindNames[k]
	}
	return fmt.Sprintf("DbKind(%d)", byte(k))
}

// ParseDbKind resolves a kind by its name; the match is case-insensitive.
func ParseDbKind(name string) (DbKind, error) {
	for i, cur := range dbKindNames {
		if strings.EqualFold(cur, name) {
			return DbKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDbKind, name)
}

func (k *DbKind) UnmarshalText(text []byte) error {
	kind, err := ParseDbKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

func (k DbKind) MarshalText() ([]byte, error) {
	if int(k) >= len(dbKindNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDbKind, byte(k))
	}
	return []byte(k.String()), nil
}

// Mode defines how a database is opened.
type Mode byte

const (
	// ReadOnly opens an existing database without write permissions.
	ReadOnly Mode = iota
	// ReadWriteExisting opens an existing database for reading and writing.
	ReadWriteExisting
	// ReadWrite opens a database for reading and writing, creating it if needed.
	ReadWrite
)

func (m Mode) String() string {
	switch m {
	case ReadOnly:
		return "ReadOnly"
	case ReadWriteExisting:
		return "ReadWriteExisting"
	case ReadWrite:
		return "ReadWrite"
	}
	return fmt.Sprintf("Mode(%d)", byte(m))
}

func (m Mode) readOnly() bool {
	return m == ReadOnly
}

func (m Mode) mustExist() bool {
	return m != ReadWrite
}

// Temperature distinguishes the hot and cold store of a node.
type Temperature byte

const (
	Hot Temperature = iota
	Cold
)

func (t Temperature) String() string {
	switch t {
	case Hot:
		return "hot"
	case Cold:
		return "cold"
	}
	return fmt.Sprintf("Temperature(%d)", byte(t))
}
