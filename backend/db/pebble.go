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
	"unsafe"

	"github.com/Fantom-foundation/memtrie/go/common"
	"github.com/cockroachdb/pebble"
)

// pebbleDb is a Database backed by Pebble. Like the LevelDB backend, columns
// are key prefixes; deleting a column is a single range deletion.
type pebbleDb struct {
	db          *pebble.DB
	path        string
	temperature Temperature
}

// OpenPebble opens the Pebble store in the given directory.
func OpenPebble(path string, config StoreConfig, mode Mode, temperature Temperature) (Database, error) {
	cache := pebble.NewCache(int64(config.CacheSizeMB) * 1024 * 1024)
	defer cache.Unref()
	options := &pebble.Options{
		Cache:            cache,
		MaxOpenFiles:     config.MaxOpenFiles,
		ReadOnly:         mode.readOnly(),
		ErrorIfNotExists: mode.mustExist(),
	}
	db, err := pebble.Open(path, options)
	if err != nil {
		return nil, fmt.Errorf("failed to open %v Pebble store in %s: %w", temperature, path, err)
	}
	return &pebbleDb{db: db, path: path, temperature: temperature}, nil
}

func (p *pebbleDb) Get(col DBCol, key []byte) ([]byte, error) {
	value, closer, err := p.db.Get(col.key(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	res := make([]byte, len(value))
	copy(res, value)
	if err := closer.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return res, nil
}

func (p *pebbleDb) Iter(col DBCol) Iterator {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: col.prefix(),
		UpperBound: col.upperBound(),
	})
	if err != nil {
		return &failedIterator{err: fmt.Errorf("%w: %w", ErrIO, err)}
	}
	return &pebbleIterator{iter: iter}
}

func (p *pebbleDb) Write(tx *Transaction) error {
	batch := p.db.NewBatch()
	defer batch.Close()
	for _, op := range tx.ops {
		var err error
		switch op.kind {
		case opSet:
			err = batch.Set(op.col.key(op.key), op.value, nil)
		case opDelete:
			err = batch.Delete(op.col.key(op.key), nil)
		case opDeleteAll:
			err = batch.DeleteRange(op.col.prefix(), op.col.upperBound(), nil)
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

func (p *pebbleDb) Flush() error {
	return p.db.Flush()
}

func (p *pebbleDb) Close() error {
	return p.db.Close()
}

func (p *pebbleDb) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*p))
	mf.SetNote(fmt.Sprintf("%v Pebble at %s", p.temperature, p.path))
	metrics := p.db.Metrics()
	mf.AddChild("blockCache", common.NewMemoryFootprint(uintptr(metrics.BlockCache.Size)))
	mf.AddChild("memTable", common.NewMemoryFootprint(uintptr(metrics.MemTable.Size)))
	return mf
}

// pebbleIterator adapts a Pebble iterator to the Iterator interface.
type pebbleIterator struct {
	iter    *pebble.Iterator
	started bool
}

func (i *pebbleIterator) Next() bool {
	if !i.started {
		i.started = true
		return i.iter.First()
	}
	return i.iter.Next()
}

func (i *pebbleIterator) Key() []byte {
	return i.iter.Key()[1:]
}

func (i *pebbleIterator) Value() []byte {
	return i.iter.Value()
}

func (i *pebbleIterator) Error() error {
	return i.iter.Error()
}

func (i *pebbleIterator) Release() {
	i.iter.Close()
}

// failedIterator is an empty iterator reporting the error that prevented
// the creation of the actual iterator.
type failedIterator struct {
	err error
}

func (i *failedIterator) Next() bool    { return false }
func (i *failedIterator) Key() []byte   { return nil }
func (i *failedIterator) Value() []byte { return nil }
func (i *failedIterator) Error() error  { return i.err }
func (i *failedIterator) Release()      {}
