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

import "bytes"

type opKind byte

const (
	opSet opKind = iota
	opDelete
	opDeleteAll
)

type dbOp struct {
	kind  opKind
	col   DBCol
	key   []byte
	value []byte
}

// Transaction is an ordered list of write operations applied atomically by
// Database.Write.
type Transaction struct {
	ops  []dbOp
	size int
}

func NewTransaction() *Transaction {
	return &Transaction{}
}

// Set stores a copy of the given key and value.
func (t *Transaction) Set(col DBCol, key, value []byte) {
	t.ops = append(t.ops, dbOp{kind: opSet, col: col, key: bytes.Clone(key), value: bytes.Clone(value)})
	t.size += len(key) + len(value)
}

func (t *Transaction) Delete(col DBCol, key []byte) {
	t.ops = append(t.ops, dbOp{kind: opDelete, col: col, key: bytes.Clone(key)})
	t.size += len(key)
}

// DeleteAll removes all entries of the given column, including entries set
// by earlier operations of this transaction.
func (t *Transaction) DeleteAll(col DBCol) {
	t.ops = append(t.ops, dbOp{kind: opDeleteAll, col: col})
}

// Len returns the number of operations in the transaction.
func (t *Transaction) Len() int {
	return len(t.ops)
}

// Size returns the number of key and value bytes in the transaction.
func (t *Transaction) Size() int {
	return t.size
}

// BatchTransaction collects updates and writes them to a database whenever
// the collected data exceeds a size limit. It is used to copy large amounts
// of data without holding it in memory at once.
type BatchTransaction struct {
	db    Database
	tx    *Transaction
	limit int
}

func NewBatchTransaction(db Database, limit int) *BatchTransaction {
	return &BatchTransaction{db: db, tx: NewTransaction(), limit: limit}
}

// SetAndWriteIfFull adds an update and writes the batch if the size limit
// is reached.
func (b *BatchTransaction) SetAndWriteIfFull(col DBCol, key, value []byte) error {
	b.tx.Set(col, key, value)
	if b.tx.Size() < b.limit {
		return nil
	}
	return b.Write()
}

// Write writes all pending updates. Empty batches are not written.
func (b *BatchTransaction) Write() error {
	if b.tx.Len() == 0 {
		return nil
	}
	tx := b.tx
	b.tx = NewTransaction()
	return b.db.Write(tx)
}
