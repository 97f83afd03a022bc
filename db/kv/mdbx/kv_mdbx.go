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

package mdbx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/erigontech/mdbx-go/mdbx"
	"github.com/ledgerwatch/log/v3"
	"golang.org/x/sync/semaphore"

	"github.com/erigontech/starkdb/db/kv"
	"github.com/erigontech/starkdb/metrics"
)

const (
	pageSize     = 4 * datasize.KB
	ReadersLimit = 32000 // MDBX_READERS_LIMIT=32767
)

type MdbxOpts struct {
	log        log.Logger
	tableCfg   kv.TableCfg
	roTxsLimit *semaphore.Weighted
	path       string
	label      kv.Label // marker to distinct db instances - one process may open many databases
	mapSize    datasize.ByteSize
	growthStep datasize.ByteSize
	flags      uint
	inMem      bool
}

func NewMDBX(logger log.Logger) MdbxOpts {
	return MdbxOpts{
		log:        logger,
		tableCfg:   kv.TableCfg{},
		label:      kv.ChainDB,
		mapSize:    2 * datasize.TB,
		growthStep: 2 * datasize.GB,
		flags:      mdbx.NoReadahead | mdbx.Durable,
		roTxsLimit: semaphore.NewWeighted(int64(runtime.GOMAXPROCS(-1)) * 16),
	}
}

func (opts MdbxOpts) Label(label kv.Label) MdbxOpts {
	opts.label = label
	return opts
}

func (opts MdbxOpts) Path(path string) MdbxOpts {
	opts.path = path
	return opts
}

// InMem creates the database in a fresh directory under tmpDir, removed on Close. Durability is switched off.
func (opts MdbxOpts) InMem(tmpDir string) MdbxOpts {
	opts.inMem = true
	opts.path = tmpDir
	opts.label = kv.TemporaryDB
	opts.mapSize = 512 * datasize.MB
	opts.growthStep = 2 * datasize.MB
	opts.flags = mdbx.UtterlyNoSync | mdbx.NoMetaSync | mdbx.NoMemInit
	return opts
}

func (opts MdbxOpts) Readonly() MdbxOpts {
	opts.flags = opts.flags | mdbx.Readonly
	return opts
}

func (opts MdbxOpts) Exclusive() MdbxOpts {
	opts.flags = opts.flags | mdbx.Exclusive
	return opts
}

func (opts MdbxOpts) MapSize(sz datasize.ByteSize) MdbxOpts {
	opts.mapSize = sz
	return opts
}

func (opts MdbxOpts) GrowthStep(v datasize.ByteSize) MdbxOpts {
	opts.growthStep = v
	return opts
}

func (opts MdbxOpts) RoTxsLimiter(l *semaphore.Weighted) MdbxOpts {
	opts.roTxsLimit = l
	return opts
}

func (opts MdbxOpts) WithTableCfg(cfg kv.TableCfg) MdbxOpts {
	opts.tableCfg = cfg.Clone()
	return opts
}

func (opts MdbxOpts) Open(ctx context.Context) (kv.RwDB, error) {
	if opts.inMem {
		dir, err := os.MkdirTemp(opts.path, "mdbx-")
		if err != nil {
			return nil, err
		}
		opts.path = dir
	}
	if opts.path == "" {
		return nil, errors.New("mdbx: empty path")
	}
	logger := opts.log.New("mdbx", filepath.Base(opts.path), "label", opts.label)

	env, err := mdbx.NewEnv(mdbx.Label(opts.label))
	if err != nil {
		return nil, err
	}
	if err = env.SetOption(mdbx.OptMaxDB, 200); err != nil {
		return nil, err
	}
	if err = env.SetOption(mdbx.OptMaxReaders, ReadersLimit); err != nil {
		return nil, err
	}

	readOnly := opts.flags&mdbx.Readonly != 0
	if !readOnly {
		if err = env.SetGeometry(-1, -1, int(opts.mapSize), int(opts.growthStep), -1, int(pageSize)); err != nil {
			return nil, err
		}
		if err = os.MkdirAll(opts.path, 0744); err != nil {
			return nil, fmt.Errorf("could not create dir: %s, %w", opts.path, err)
		}
	}

	if err = env.Open(opts.path, opts.flags, 0664); err != nil {
		env.Close()
		return nil, fmt.Errorf("%w, label: %s, path: %s", err, opts.label, opts.path)
	}

	db := &MdbxKV{
		opts:       opts,
		env:        env,
		log:        logger,
		tables:     opts.tableCfg,
		dbis:       make(map[string]mdbx.DBI, len(opts.tableCfg)),
		roTxsLimit: opts.roTxsLimit,
		commitTime: metrics.GetOrCreateHistogram(fmt.Sprintf(`db_commit_seconds{label="%s"}`, opts.label)),
	}
	if err = db.openDBIs(ctx); err != nil {
		env.Close()
		return nil, err
	}
	logger.Debug("opened database", "tables", len(db.dbis), "readonly", readOnly)
	return db, nil
}

func (opts MdbxOpts) MustOpen() kv.RwDB {
	db, err := opts.Open(context.Background())
	if err != nil {
		panic(fmt.Errorf("fail to open mdbx: %w", err))
	}
	return db
}

// NewTestDB opens an in-memory database removed at the end of the test.
func NewTestDB(tb testing.TB, cfg kv.TableCfg) kv.RwDB {
	tb.Helper()
	db := NewMDBX(log.New()).InMem(tb.TempDir()).WithTableCfg(cfg).MustOpen()
	tb.Cleanup(db.Close)
	return db
}

type MdbxKV struct {
	env        *mdbx.Env
	log        log.Logger
	opts       MdbxOpts
	tables     kv.TableCfg
	dbis       map[string]mdbx.DBI
	roTxsLimit *semaphore.Weighted
	commitTime metrics.Histogram

	wg        sync.WaitGroup
	closeOnce sync.Once
	closed    bool
	mu        sync.RWMutex // protects closed
}

// openDBIs creates missing tables in read-write mode and only opens them in read-only mode.
func (db *MdbxKV) openDBIs(ctx context.Context) error {
	readOnly := db.opts.flags&mdbx.Readonly != 0
	var txFlags uint
	if readOnly {
		txFlags = mdbx.Readonly
	}
	if !readOnly {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	txn, err := db.env.BeginTxn(nil, txFlags)
	if err != nil {
		return err
	}
	for _, name := range db.tables.Names() {
		var flags uint
		if db.tables[name].IsDupSort() {
			flags |= mdbx.DupSort
		}
		if !readOnly {
			flags |= mdbx.Create
		}
		dbi, err := txn.OpenDBISimple(name, flags)
		if err != nil {
			txn.Abort()
			return fmt.Errorf("table: %s, %w", name, err)
		}
		db.dbis[name] = dbi
	}
	if _, err = txn.Commit(); err != nil {
		return err
	}
	return nil
}

func (db *MdbxKV) ReadOnly() bool              { return db.opts.flags&mdbx.Readonly != 0 }
func (db *MdbxKV) AllTables() kv.TableCfg      { return db.tables.Clone() }
func (db *MdbxKV) PageSize() datasize.ByteSize { return pageSize }

// Close closes db
// All transactions must be closed before closing the database.
func (db *MdbxKV) Close() {
	db.closeOnce.Do(func() {
		db.mu.Lock()
		db.closed = true
		db.mu.Unlock()

		db.wg.Wait()
		db.env.Close()

		if db.opts.inMem {
			if err := os.RemoveAll(db.opts.path); err != nil {
				db.log.Warn("failed to remove in-mem db file", "err", err)
			}
			return
		}
		db.log.Info("database closed (MDBX)")
	})
}

func (db *MdbxKV) trackTx() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return false
	}
	db.wg.Add(1)
	return true
}

func (db *MdbxKV) BeginRo(ctx context.Context) (txn kv.Tx, err error) {
	if err := db.roTxsLimit.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	if !db.trackTx() {
		db.roTxsLimit.Release(1)
		return nil, kv.ErrDBClosed
	}
	tx, err := db.env.BeginTxn(nil, mdbx.Readonly)
	if err != nil {
		db.wg.Done()
		db.roTxsLimit.Release(1)
		return nil, fmt.Errorf("%w, label: %s", err, db.opts.label)
	}
	return &MdbxTx{db: db, tx: tx, readOnly: true}, nil
}

func (db *MdbxKV) BeginRw(ctx context.Context) (kv.RwTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if db.ReadOnly() {
		return nil, fmt.Errorf("%w: database opened read-only", kv.ErrReadOnlyTx)
	}
	if !db.trackTx() {
		return nil, kv.ErrDBClosed
	}
	runtime.LockOSThread()
	tx, err := db.env.BeginTxn(nil, 0)
	if err != nil {
		runtime.UnlockOSThread() // unlock only in case of error. normal flow is "defer .Rollback()"
		db.wg.Done()
		return nil, fmt.Errorf("%w, label: %s", err, db.opts.label)
	}
	return &MdbxTx{db: db, tx: tx}, nil
}

func (db *MdbxKV) View(ctx context.Context, f func(tx kv.Tx) error) (err error) {
	tx, err := db.BeginRo(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	return f(tx)
}

func (db *MdbxKV) Update(ctx context.Context, f func(tx kv.RwTx) error) (err error) {
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

type MdbxTx struct {
	tx       *mdbx.Txn
	db       *MdbxKV
	cursors  []*MdbxCursor
	readOnly bool
}

func (tx *MdbxTx) dbi(table string) (mdbx.DBI, kv.TableCfgItem, error) {
	if tx.tx == nil {
		return 0, kv.TableCfgItem{}, errors.New("mdbx: transaction already finished")
	}
	cfg, err := tx.db.tables.Lookup(table)
	if err != nil {
		return 0, kv.TableCfgItem{}, err
	}
	return tx.db.dbis[table], cfg, nil
}

func (tx *MdbxTx) ViewID() uint64 { return tx.tx.ID() }

func (tx *MdbxTx) closeCursors() {
	cursors := tx.cursors
	tx.cursors = nil
	for _, c := range cursors {
		c.Close()
	}
}

// forget drops a closed cursor. Cursors are usually closed in reverse order of opening.
func (tx *MdbxTx) forget(c *MdbxCursor) {
	for i := len(tx.cursors) - 1; i >= 0; i-- {
		if tx.cursors[i] == c {
			tx.cursors = append(tx.cursors[:i], tx.cursors[i+1:]...)
			return
		}
	}
}

func (tx *MdbxTx) finish() {
	tx.tx = nil
	tx.db.wg.Done()
	if tx.readOnly {
		tx.db.roTxsLimit.Release(1)
	} else {
		runtime.UnlockOSThread()
	}
}

func (tx *MdbxTx) Commit() error {
	if tx.tx == nil {
		return errors.New("mdbx: transaction already finished")
	}
	defer tx.finish()
	tx.closeCursors()

	start := time.Now()
	if _, err := tx.tx.Commit(); err != nil {
		return fmt.Errorf("label: %s, %w", tx.db.opts.label, err)
	}
	if !tx.readOnly {
		tx.db.commitTime.ObserveDuration(start)
	}
	return nil
}

// Rollback - it's safe to call after Commit
func (tx *MdbxTx) Rollback() {
	if tx.tx == nil {
		return
	}
	defer tx.finish()
	tx.closeCursors()
	tx.tx.Abort()
}

func (tx *MdbxTx) GetOne(table string, key []byte) ([]byte, error) {
	dbi, _, err := tx.dbi(table)
	if err != nil {
		return nil, err
	}
	v, err := tx.tx.Get(dbi, key)
	if mdbx.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("label: %s, table: %s, %w", tx.db.opts.label, table, err)
	}
	return v, nil
}

func (tx *MdbxTx) Has(table string, key []byte) (bool, error) {
	v, err := tx.GetOne(table, key)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

func (tx *MdbxTx) ForEach(table string, fromPrefix []byte, walker func(k, v []byte) error) error {
	c, err := tx.Cursor(table)
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

func (tx *MdbxTx) Count(table string) (uint64, error) {
	dbi, _, err := tx.dbi(table)
	if err != nil {
		return 0, err
	}
	st, err := tx.tx.StatDBI(dbi)
	if err != nil {
		return 0, err
	}
	return st.Entries, nil
}

func (tx *MdbxTx) Put(table string, k, v []byte) error {
	dbi, _, err := tx.dbi(table)
	if err != nil {
		return err
	}
	if len(k) == 0 {
		return fmt.Errorf("mdbx doesn't support empty keys. table: %s", table)
	}
	if err := tx.tx.Put(dbi, k, v, 0); err != nil {
		return fmt.Errorf("label: %s, table: %s, %w", tx.db.opts.label, table, err)
	}
	return nil
}

// Delete removes the key and, in DupSort tables, all of its duplicates.
func (tx *MdbxTx) Delete(table string, k []byte) error {
	dbi, _, err := tx.dbi(table)
	if err != nil {
		return err
	}
	err = tx.tx.Del(dbi, k, nil)
	if mdbx.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("label: %s, table: %s, %w", tx.db.opts.label, table, err)
	}
	return nil
}

func (tx *MdbxTx) stdCursor(table string) (*MdbxCursor, error) {
	dbi, cfg, err := tx.dbi(table)
	if err != nil {
		return nil, err
	}
	c, err := tx.tx.OpenCursor(dbi)
	if err != nil {
		return nil, fmt.Errorf("table: %s, %w", table, err)
	}
	cur := &MdbxCursor{tx: tx, table: table, c: c, dup: cfg.IsDupSort()}
	tx.cursors = append(tx.cursors, cur)
	return cur, nil
}

func (tx *MdbxTx) dupCursor(table string) (*MdbxCursor, error) {
	c, err := tx.stdCursor(table)
	if err != nil {
		return nil, err
	}
	if !c.dup {
		c.Close()
		return nil, fmt.Errorf("table %s is not DupSort", table)
	}
	return c, nil
}

func (tx *MdbxTx) Cursor(table string) (kv.Cursor, error)               { return tx.stdCursor(table) }
func (tx *MdbxTx) RwCursor(table string) (kv.RwCursor, error)           { return tx.stdCursor(table) }
func (tx *MdbxTx) CursorDupSort(table string) (kv.CursorDupSort, error) { return tx.dupCursor(table) }
func (tx *MdbxTx) RwCursorDupSort(table string) (kv.RwCursorDupSort, error) {
	return tx.dupCursor(table)
}
