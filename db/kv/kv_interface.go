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

package kv

import (
	"context"
	"errors"

	"github.com/c2h5oh/datasize"
)

/*
Naming:
 tx - Database Transaction
 RoTx - Read-Only Database Transaction. RwTx - read-write
 k, v - key, value
 Table - collection of key-value pairs. In MDBX - it's `dbi`. Keys are sorted and unique
 DupSort - if table created `Sorted Duplicates` option: then 1 key can have multiple (sorted and unique) values
 Cursor - low-level api to navigate over Table

Isolation:
 Exactly one RwTx may be open at a time. Any number of RoTx may be open concurrently, each one
 observes the data as of its Begin and never sees writes committed after that point.
*/

var (
	ErrUnknownTable = errors.New("unknown table")
	ErrDBClosed     = errors.New("database is closed")
	ErrReadOnlyTx   = errors.New("write in read-only transaction")
)

type Label string

const (
	ChainDB     Label = "chaindata"
	TemporaryDB Label = "temporary"
)

func (l Label) String() string { return string(l) }

type Closer interface {
	Close()
}

/*
RoDB low-level interface - main target is - to provide common abstraction over top of MDBX and in-memory storage.
Warning: can't move `tx` between goroutines. ReadOnly transactions do not lock goroutine to thread, RwTx does.
Lifetime: read data valid until end of transaction.
Example:

	tx, err := db.BeginRo(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback() // it's safe to Rollback after `tx.Commit()`

	... application logic using `tx`

	if err := tx.Commit(); err != nil {
		return err
	}
*/
type RoDB interface {
	Closer
	BeginRo(ctx context.Context) (Tx, error)

	// View like BeginRo but for short-living transactions. Example:
	//	 if err := db.View(ctx, func(tx kv.Tx) error {
	//	    ... code which uses database in transaction
	//	 }); err != nil {
	//			return err
	//	}
	View(ctx context.Context, f func(tx Tx) error) error

	ReadOnly() bool
	AllTables() TableCfg
	PageSize() datasize.ByteSize
}

type RwDB interface {
	RoDB

	// Update runs f inside one RwTx. The transaction is committed if f returns nil and rolled back otherwise:
	// either every write of f becomes visible or none does.
	Update(ctx context.Context, f func(tx RwTx) error) error

	// BeginRw - creates transaction, blocks while another RwTx is open.
	BeginRw(ctx context.Context) (RwTx, error)
}

// Tx
// WARNING:
//   - Tx is not threadsafe and may only be used in the goroutine that created it
//   - ReadOnly transactions do not lock goroutine to thread, RwTx does
type Tx interface {
	Getter

	// Cursor - creates cursor object on top of given table.
	Cursor(table string) (Cursor, error)
	CursorDupSort(table string) (CursorDupSort, error) // CursorDupSort - can be used if table has DupSort flag

	// Count - amount of key/value pairs in table, duplicates included
	Count(table string) (uint64, error)

	// ViewID returns the identifier associated with this transaction. For a
	// read-only transaction, this corresponds to the snapshot being read;
	// concurrent readers will frequently have the same transaction ID.
	ViewID() uint64
}

// RwTx
//
// WARNING:
//   - RwTx is not threadsafe and may only be used in the goroutine that created it.
//   - User Can't call runtime.LockOSThread/runtime.UnlockOSThread in same goroutine until RwTx Commit/Rollback
type RwTx interface {
	Tx
	Putter

	RwCursor(table string) (RwCursor, error)
	RwCursorDupSort(table string) (RwCursorDupSort, error)

	Commit() error // Commit all the operations of a transaction into the database.
}

/*
Cursor - low-level api to navigate through a db table
If methods (like First/Next/Seek) return error, then returned key SHOULD not be nil (can be []byte{} for example).
Exmaple iterate table:

	c := db.Cursor(tableName)
	defer c.Close()
	for k, v, err := c.First(); k != nil; k, v, err = c.Next() {
	   if err != nil {
		   return err
	   }
	   ... logic using `k` and `v` (key and value)
	}
*/
type Cursor interface {
	First() ([]byte, []byte, error)               // First - position at first key/data item
	Seek(seek []byte) ([]byte, []byte, error)     // Seek - position at first key greater than or equal to specified key
	SeekExact(key []byte) ([]byte, []byte, error) // SeekExact - position at exact matching key if exists
	Next() ([]byte, []byte, error)                // Next - position at next key/value (can iterate over DupSort key/values automatically)
	Prev() ([]byte, []byte, error)                // Prev - position at previous key
	Last() ([]byte, []byte, error)                // Last - position at last key and last possible value
	Current() ([]byte, []byte, error)             // Current - return key/data at current cursor position

	Close()
}

type RwCursor interface {
	Cursor

	Put(k, v []byte) error // Put - based on order
	Delete(k []byte) error // Delete - short version of SeekExact+DeleteCurrent or SeekBothExact+DeleteCurrent

	// DeleteCurrent This function deletes the key/data pair to which the cursor refers.
	// This does not invalidate the cursor, so operations such as Next
	// can still be used on it.
	DeleteCurrent() error
}

/*
CursorDupSort
Example iterate over DupSort table:

	for k, v, err = cursor.First(); k != nil; k, v, err = cursor.NextNoDup() {
		if err != nil {
			return err
		}
		// iterate over all values of key `k`
		for ; v != nil; _, v, err = cursor.NextDup() {
			if err != nil {
				return err
			}
			// use
		}
	}
*/
type CursorDupSort interface {
	Cursor

	// SeekBothExact -
	// second parameter can be nil only if searched key has no duplicates, or return error
	SeekBothExact(key, value []byte) ([]byte, []byte, error)
	SeekBothRange(key, value []byte) ([]byte, error) // SeekBothRange - exact match of the key, but range match of the value
	FirstDup() ([]byte, error)                       // FirstDup - position at first data item of current key
	NextDup() ([]byte, []byte, error)                // NextDup - position at next data item of current key
	NextNoDup() ([]byte, []byte, error)              // NextNoDup - position at first data item of next key
	LastDup() ([]byte, error)                        // LastDup - position at last data item of current key

	CountDuplicates() (uint64, error) // CountDuplicates - number of duplicates for the current key
}

type RwCursorDupSort interface {
	CursorDupSort
	RwCursor

	DeleteCurrentDuplicates() error    // DeleteCurrentDuplicates - deletes all values of the current key
	DeleteExact(k1, k2 []byte) error   // DeleteExact - delete 1 value from given key
	AppendDup(key, value []byte) error // AppendDup - same as Put, but value must be greater than existing values of key
}

type Getter interface {
	// Has indicates whether a key exists in the database.
	Has(table string, key []byte) (bool, error)

	// GetOne references a readonly section of memory that must not be accessed after txn has terminated.
	// For DupSort tables it returns the first value of the key.
	GetOne(table string, key []byte) (val []byte, err error)

	Rollback() // Rollback - abandon all the operations of the transaction instead of saving them.

	// ForEach iterates over entries with keys greater or equal to fromPrefix.
	// walker is called for each eligible entry. Iteration stops at the first walker error.
	ForEach(table string, fromPrefix []byte, walker func(k, v []byte) error) error
}

// Putter wraps the database write operations.
type Putter interface {
	// Put inserts or updates a single entry. For DupSort tables it adds a value to the key.
	Put(table string, k, v []byte) error

	// Delete removes a single entry, for DupSort tables - all values of the key.
	Delete(table string, k []byte) error
}
