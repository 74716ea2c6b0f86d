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
	"bytes"
	"errors"
	"fmt"
	"unsafe"

	"github.com/Fantom-foundation/memtrie/go/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// levelDb is a Database backed by LevelDB. Columns are mapped to key
// prefixes of a single LevelDB instance.
type levelDb struct {
	db          *leveldb.DB
	path        string
	temperature Temperature
	writeBuffer int
}

// OpenLevelDb opens the LevelDB store in the given directory.
func OpenLevelDb(path string, config StoreConfig, mode Mode, temperature Temperature) (Database, error) {
	options := &opt.Options{
		ReadOnly:               mode.readOnly(),
		ErrorIfMissing:         mode.mustExist(),
		BlockCacheCapacity:     config.CacheSizeMB / 2 * opt.MiB,
		WriteBuffer:            config.CacheSizeMB / 4 * opt.MiB,
		OpenFilesCacheCapacity: config.MaxOpenFiles,
	}
	db, err := leveldb.OpenFile(path, options)
	if err != nil {
		return nil, fmt.Errorf("failed to open %v LevelDB store in %s: %w", temperature, path, err)
	}
	return &levelDb{
		db:          db,
		path:        path,
		temperature: temperature,
		writeBuffer: options.GetWriteBuffer(),
	}, nil
}

func (l *levelDb) Get(col DBCol, key []byte) ([]byte, error) {
	value, err := l.db.Get(col.key(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return value, nil
}

func (l *levelDb) Iter(col DBCol) Iterator {
	return &levelDbIterator{l.db.NewIterator(util.BytesPrefix(col.prefix()), nil)}
}

func (l *levelDb) Write(tx *Transaction) error {
	batch := new(leveldb.Batch)
	for i, op := range tx.ops {
		switch op.kind {
		case opSet:
			batch.Put(op.col.key(op.key), op.value)
		case opDelete:
			batch.Delete(op.col.key(op.key))
		case opDeleteAll:
			// LevelDB has no range deletion, existing keys are deleted one by one.
			if err := l.deleteAll(batch, op.col); err != nil {
				return err
			}
			for _, prev := range tx.ops[:i] {
				if prev.kind == opSet && prev.col == op.col {
					batch.Delete(prev.col.key(prev.key))
				}
			}
		}
	}
	if err := l.db.Write(batch, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

func (l *levelDb) deleteAll(batch *leveldb.Batch, col DBCol) error {
	iter := l.db.NewIterator(util.BytesPrefix(col.prefix()), nil)
	defer iter.Release()
	for iter.Next() {
		batch.Delete(bytes.Clone(iter.Key()))
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// Flush is a no-op; LevelDB persists written batches in its journal.
func (l *levelDb) Flush() error {
	return nil
}

func (l *levelDb) Close() error {
	return l.db.Close()
}

func (l *levelDb) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*l))
	mf.SetNote(fmt.Sprintf("%v LevelDB at %s", l.temperature, l.path))
	mf.AddChild("writeBuffer", common.NewMemoryFootprint(uintptr(l.writeBuffer)))
	var stats leveldb.DBStats
	if err := l.db.Stats(&stats); err == nil {
		mf.AddChild("blockCache", common.NewMemoryFootprint(uintptr(stats.BlockCacheSize)))
	}
	return mf
}

// levelDbIterator strips the column prefix from the keys of the wrapped
// prefix iterator.
type levelDbIterator struct {
	iterator.Iterator
}

func (i *levelDbIterator) Key() []byte {
	return i.Iterator.Key()[1:]
}
