// Copyright 2025 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Package memdb is an in-memory kv.RwDB. Every table is a copy-on-write B-tree:
// a read transaction takes O(1) snapshots of all tables at Begin, the single
// write transaction mutates private copies which replace the committed trees on Commit.
package memdb

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/ledgerwatch/log/v3"
	"github.com/tidwall/btree"
	"golang.org/x/sync/semaphore"

	"github.com/erigontech/starkdb/db/kv"
)

const pageSize = 4 * datasize.KB

type MemoryKV struct {
	mu     sync.Mutex // protects tables, txID, closed
	tables map[string]*btree.BTreeG[entry]
	txID   uint64
	closed bool

	writer *semaphore.Weighted // one RwTx at a time
	wg     sync.WaitGroup      // open transactions
	cfg    kv.TableCfg
	label  kv.Label
	log    log.Logger
}

func New(cfg kv.TableCfg, logger log.Logger) *MemoryKV {
	db := &MemoryKV{
		tables: make(map[string]*btree.BTreeG[entry], len(cfg)),
		writer: semaphore.NewWeighted(1),
		cfg:    cfg.Clone(),
		label:  kv.TemporaryDB,
		log:    logger,
	}
	for _, name := range db.cfg.Names() {
		db.tables[name] = newTree(db.cfg[name])
	}
	return db
}

func NewTestDB(tb testing.TB, cfg kv.TableCfg) *MemoryKV {
	tb.Helper()
	db := New(cfg, log.New())
	tb.Cleanup(db.Close)
	return db
}

func BeginRw(tb testing.TB, db kv.RwDB) kv.RwTx {
	tb.Helper()
	tx, err := db.BeginRw(context.Background()) //nolint:gocritic
	if err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(tx.Rollback)
	return tx
}

func newTree(cfg kv.TableCfgItem) *btree.BTreeG[entry] {
	less := lessKey
	if cfg.IsDupSort() {
		less = lessDup
	}
	return btree.NewBTreeGOptions(less, btree.Options{NoLocks: true})
}

// Close closes db
// All transactions must be closed before closing the database.
func (db *MemoryKV) Close() {
	db.mu.Lock()
	if db.closed {
		db.mu.Unlock()
		return
	}
	db.closed = true
	db.mu.Unlock()

	db.wg.Wait()
	db.log.Debug("database closed (memdb)", "label", db.label)
}

func (db *MemoryKV) ReadOnly() bool                 { return false }
func (db *MemoryKV) AllTables() kv.TableCfg         { return db.cfg.Clone() }
func (db *MemoryKV) PageSize() datasize.ByteSize    { return pageSize }
func (db *MemoryKV) Label(label kv.Label) *MemoryKV { db.label = label; return db }

// snapshot copies the committed trees. Copy marks the source tree as shared, so it runs under db.mu.
func (db *MemoryKV) snapshot() (map[string]*btree.BTreeG[entry], uint64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil, 0, kv.ErrDBClosed
	}
	res := make(map[string]*btree.BTreeG[entry], len(db.tables))
	for name, t := range db.tables {
		res[name] = t.Copy()
	}
	db.wg.Add(1)
	return res, db.txID, nil
}

func (db *MemoryKV) BeginRo(ctx context.Context) (kv.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tables, id, err := db.snapshot()
	if err != nil {
		return nil, err
	}
	return &memTx{db: db, tables: tables, id: id}, nil
}

func (db *MemoryKV) BeginRw(ctx context.Context) (kv.RwTx, error) {
	if err := db.writer.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	tables, id, err := db.snapshot()
	if err != nil {
		db.writer.Release(1)
		return nil, err
	}
	return &memTx{db: db, tables: tables, id: id + 1, rw: true}, nil
}

func (db *MemoryKV) View(ctx context.Context, f func(tx kv.Tx) error) error {
	tx, err := db.BeginRo(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	return f(tx)
}

func (db *MemoryKV) Update(ctx context.Context, f func(tx kv.RwTx) error) error {
	tx, err := db.BeginRw(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err = f(tx); err != nil {
		return err
	}
	return tx.Commit()
}

type memTx struct {
	db     *MemoryKV
	tables map[string]*btree.BTreeG[entry]
	id     uint64
	rw     bool
	done   bool
}

func (tx *memTx) table(name string) (*btree.BTreeG[entry], bool, error) {
	if tx.done {
		return nil, false, fmt.Errorf("memdb: transaction already finished")
	}
	cfg, err := tx.db.cfg.Lookup(name)
	if err != nil {
		return nil, false, err
	}
	return tx.tables[name], cfg.IsDupSort(), nil
}

func (tx *memTx) ViewID() uint64 { return tx.id }

func (tx *memTx) Commit() error {
	if tx.done {
		return fmt.Errorf("memdb: transaction already finished")
	}
	if !tx.rw {
		tx.finish()
		return nil
	}
	tx.db.mu.Lock()
	tx.db.tables = tx.tables
	tx.db.txID = tx.id
	tx.db.mu.Unlock()
	tx.finish()
	return nil
}

// Rollback - it's safe to call after Commit
func (tx *memTx) Rollback() {
	if tx.done {
		return
	}
	tx.finish()
}

func (tx *memTx) finish() {
	tx.done = true
	tx.tables = nil
	if tx.rw {
		tx.db.writer.Release(1)
	}
	tx.db.wg.Done()
}

func (tx *memTx) Has(table string, key []byte) (bool, error) {
	v, err := tx.GetOne(table, key)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

func (tx *memTx) GetOne(table string, key []byte) ([]byte, error) {
	c, err := tx.cursor(table)
	if err != nil {
		return nil, err
	}
	_, v, err := c.SeekExact(key)
	return v, err
}

func (tx *memTx) ForEach(table string, fromPrefix []byte, walker func(k, v []byte) error) error {
	c, err := tx.cursor(table)
	if err != nil {
		return err
	}
	defer c.Close()
	for k, v, err := c.Seek(fromPrefix); ; k, v, err = c.Next() {
		if err != nil {
			return err
		}
		if k == nil {
			return nil
		}
		if err := walker(k, v); err != nil {
			return err
		}
	}
}

func (tx *memTx) Count(table string) (uint64, error) {
	t, _, err := tx.table(table)
	if err != nil {
		return 0, err
	}
	return uint64(t.Len()), nil
}

func (tx *memTx) Put(table string, k, v []byte) error {
	c, err := tx.cursor(table)
	if err != nil {
		return err
	}
	return c.Put(k, v)
}

func (tx *memTx) Delete(table string, k []byte) error {
	c, err := tx.cursor(table)
	if err != nil {
		return err
	}
	return c.Delete(k)
}

func (tx *memTx) cursor(table string) (*memCursor, error) {
	t, dup, err := tx.table(table)
	if err != nil {
		return nil, err
	}
	return &memCursor{tx: tx, table: table, tree: t, dup: dup}, nil
}

func (tx *memTx) Cursor(table string) (kv.Cursor, error)               { return tx.cursor(table) }
func (tx *memTx) RwCursor(table string) (kv.RwCursor, error)           { return tx.cursor(table) }
func (tx *memTx) CursorDupSort(table string) (kv.CursorDupSort, error) { return tx.dupCursor(table) }
func (tx *memTx) RwCursorDupSort(table string) (kv.RwCursorDupSort, error) {
	return tx.dupCursor(table)
}

func (tx *memTx) dupCursor(table string) (*memCursor, error) {
	c, err := tx.cursor(table)
	if err != nil {
		return nil, err
	}
	if !c.dup {
		return nil, fmt.Errorf("table %s is not DupSort", table)
	}
	return c, nil
}
