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
	"path/filepath"

	"github.com/Fantom-foundation/memtrie/go/common"
)

//go:generate mockgen -source database.go -destination database_mocks.go -package db

const (
	// ErrNotFound is returned by Get for missing keys.
	ErrNotFound = common.ConstError("not found")
	// ErrIO wraps failures of the underlying key-value store.
	ErrIO = common.ConstError("database IO error")
	// ErrNoColdStore is returned when a cold store is requested but none is configured.
	ErrNoColdStore = common.ConstError("no cold store")
	// ErrUnknownColumn is returned for unknown column names.
	ErrUnknownColumn = common.ConstError("unknown column")
	// ErrUnknownDbKind is returned for unknown database kinds.
	ErrUnknownDbKind = common.ConstError("unknown database kind")
	// ErrUnknownBackend is returned for unsupported database backends.
	ErrUnknownBackend = common.ConstError("unknown database backend")
)

// Database is a key-value store partitioned into columns.
type Database interface {
	// Get returns a copy of the value stored for the given key or ErrNotFound.
	Get(col DBCol, key []byte) ([]byte, error)

	// Iter creates an iterator over all entries of a column in key order.
	// The iterator is lazy, finite and can not be restarted. It must be
	// released after use. Keys and values provided by the iterator are only
	// valid until the next call to Next.
	Iter(col DBCol) Iterator

	// Write applies all operations of the given transaction atomically.
	// Failures of the underlying store are reported wrapped in ErrIO.
	Write(tx *Transaction) error

	common.FlushAndCloser
	common.MemoryFootprintProvider
}

// Iterator enumerates the entries of a single column.
type Iterator interface {
	// Next moves to the next entry and reports whether there is one.
	Next() bool
	// Key returns the key of the current entry, without column prefix.
	Key() []byte
	// Value returns the value of the current entry.
	Value() []byte
	// Error returns the first error encountered while iterating, if any.
	Error() error
	// Release frees the resources bound by the iterator.
	Release()
}

// Backend names a key-value store implementation.
type Backend string

const (
	LevelDbBackend Backend = "leveldb"
	PebbleBackend  Backend = "pebble"
)

// StoreConfig is the configuration of a single store.
type StoreConfig struct {
	// Path of the store, relative paths are resolved against the home directory.
	Path string
	// Backend selects the key-value store implementation.
	Backend Backend
	// CacheSizeMB is the memory budget for caches and write buffers.
	CacheSizeMB int
	// MaxOpenFiles limits the number of file handles used by the store.
	MaxOpenFiles int
}

// DefaultStoreConfig returns the configuration of a hot store.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Path:         "data",
		Backend:      LevelDbBackend,
		CacheSizeMB:  64,
		MaxOpenFiles: 512,
	}
}

// DefaultColdStoreConfig returns the configuration of a cold store.
func DefaultColdStoreConfig() StoreConfig {
	res := DefaultStoreConfig()
	res.Path = "cold-data"
	return res
}

// Open opens the store at the given path using the backend selected by the
// configuration. An empty backend defaults to LevelDB.
func Open(path string, config StoreConfig, mode Mode, temperature Temperature) (Database, error) {
	switch config.Backend {
	case LevelDbBackend, "":
		return OpenLevelDb(path, config, mode, temperature)
	case PebbleBackend:
		return OpenPebble(path, config, mode, temperature)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, config.Backend)
}

// ResolvePath resolves a store path relative to the home directory.
func ResolvePath(home, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(home, path)
}
