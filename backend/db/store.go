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
	"errors"
	"fmt"
)

// dbKindKey is the key of the database kind in the Misc column.
var dbKindKey = []byte("DB_KIND")

// Store wraps a database with access to the metadata of a node store.
type Store struct {
	db Database
}

func NewStore(db Database) *Store {
	return &Store{db: db}
}

// Database returns the wrapped database.
func (s *Store) Database() Database {
	return s.db
}

// GetDbKind reads the kind recorded in the store. The second result is
// false if no kind has been recorded yet.
func (s *Store) GetDbKind() (DbKind, bool, error) {
	value, err := s.db.Get(Misc, dbKindKey)
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	kind, err := ParseDbKind(string(value))
	if err != nil {
		return 0, false, fmt.Errorf("invalid kind recorded in store: %w", err)
	}
	return kind, true, nil
}

// SetDbKind records the kind of the store.
func (s *Store) SetDbKind(kind DbKind) error {
	text, err := kind.MarshalText()
	if err != nil {
		return err
	}
	tx := NewTransaction()
	tx.Set(Misc, dbKindKey, text)
	return s.db.Write(tx)
}
