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

// Opener opens the stores of a node as described by its configuration.
type Opener struct {
	home    string
	archive bool
	hot     StoreConfig
	cold    *StoreConfig
	mode    Mode
}

// NewOpener creates an opener for the stores of a node located in the given
// home directory. A nil cold configuration means the node has no cold store.
func NewOpener(home string, archive bool, hot StoreConfig, cold *StoreConfig) *Opener {
	return &Opener{
		home:    home,
		archive: archive,
		hot:     hot,
		cold:    cold,
		mode:    ReadWrite,
	}
}

// WithMode sets the mode in which the stores are opened.
func (o *Opener) WithMode(mode Mode) *Opener {
	o.mode = mode
	return o
}

// HotPath returns the location of the hot store.
func (o *Opener) HotPath() string {
	return ResolvePath(o.home, o.hot.Path)
}

// ColdPath returns the location of the cold store, if one is configured.
func (o *Opener) ColdPath() (string, bool) {
	if o.cold == nil {
		return "", false
	}
	return ResolvePath(o.home, o.cold.Path), true
}

// Open opens all configured stores. In writable modes stores without a
// recorded kind are initialized with the kind implied by the configuration.
func (o *Opener) Open() (*NodeStorage, error) {
	hotDb, err := Open(o.HotPath(), o.hot, o.mode, Hot)
	if err != nil {
		return nil, err
	}
	res := &NodeStorage{hot: NewStore(hotDb), readOnly: o.mode.readOnly()}

	if path, found := o.ColdPath(); found {
		coldDb, err := Open(path, *o.cold, o.mode, Cold)
		if err != nil {
			return nil, errors.Join(err, hotDb.Close())
		}
		res.cold = NewStore(coldDb)
	}

	if !o.mode.readOnly() {
		if err := o.initKinds(res); err != nil {
			return nil, errors.Join(err, res.Close())
		}
	}
	return res, nil
}

func (o *Opener) initKinds(storage *NodeStorage) error {
	hotKind := KindRPC
	if storage.cold != nil {
		hotKind = KindHot
	} else if o.archive {
		hotKind = KindArchive
	}
	if err := initKind(storage.hot, hotKind); err != nil {
		return fmt.Errorf("failed to initialize kind of hot store: %w", err)
	}
	if storage.cold != nil {
		if err := initKind(storage.cold, KindCold); err != nil {
			return fmt.Errorf("failed to initialize kind of cold store: %w", err)
		}
	}
	return nil
}

func initKind(store *Store, kind DbKind) error {
	_, found, err := store.GetDbKind()
	if err != nil || found {
		return err
	}
	return store.SetDbKind(kind)
}

// NodeStorage bundles the hot and the optional cold store of a node.
type NodeStorage struct {
	hot      *Store
	cold     *Store
	readOnly bool
}

func (s *NodeStorage) GetHotStore() *Store {
	return s.hot
}

// GetColdStore returns the cold store or ErrNoColdStore if the node has none.
func (s *NodeStorage) GetColdStore() (*Store, error) {
	if s.cold == nil {
		return nil, ErrNoColdStore
	}
	return s.cold, nil
}

// HasColdStore reports whether the node has a cold store.
func (s *NodeStorage) HasColdStore() bool {
	return s.cold != nil
}

// Close flushes and closes all stores. Stores opened read-only are only closed.
func (s *NodeStorage) Close() error {
	var errs []error
	for _, store := range []*Store{s.hot, s.cold} {
		if store == nil {
			continue
		}
		if !s.readOnly {
			errs = append(errs, store.db.Flush())
		}
		errs = append(errs, store.db.Close())
	}
	return errors.Join(errs...)
}

// ClearColumns deletes all entries of the given columns in every store of
// the node described by the given configuration.
func ClearColumns(home string, archive bool, hot StoreConfig, cold *StoreConfig, cols []DBCol) error {
	storage, err := NewOpener(home, archive, hot, cold).WithMode(ReadWriteExisting).Open()
	if err != nil {
		return err
	}
	stores := []*Store{storage.hot}
	if storage.cold != nil {
		stores = append(stores, storage.cold)
	}
	for _, store := range stores {
		tx := NewTransaction()
		for _, col := range cols {
			tx.DeleteAll(col)
		}
		if err := store.db.Write(tx); err != nil {
			return errors.Join(err, storage.Close())
		}
	}
	return storage.Close()
}
