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

// Package kvtest holds behaviour checks shared by every kv.RwDB backend.
package kvtest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/starkdb/db/kv"
)

const (
	DupTable   = "Table"
	PlainTable = "Plain"
)

var Tables = kv.TableCfg{
	DupTable:   kv.TableCfgItem{Flags: kv.DupSort},
	PlainTable: kv.TableCfgItem{},
}

type OpenFunc func(t *testing.T, cfg kv.TableCfg) kv.RwDB

func Run(t *testing.T, open OpenFunc) {
	t.Run("SeekBothRange", func(t *testing.T) { testSeekBothRange(t, open) })
	t.Run("LastDup", func(t *testing.T) { testLastDup(t, open) })
	t.Run("PutGet", func(t *testing.T) { testPutGet(t, open) })
	t.Run("HasDelete", func(t *testing.T) { testHasDelete(t, open) })
	t.Run("NextDup", func(t *testing.T) { testNextDup(t, open) })
	t.Run("DeleteCurrent", func(t *testing.T) { testDeleteCurrent(t, open) })
	t.Run("PlainOverwrite", func(t *testing.T) { testPlainOverwrite(t, open) })
	t.Run("Isolation", func(t *testing.T) { testIsolation(t, open) })
	t.Run("UpdateRollback", func(t *testing.T) { testUpdateRollback(t, open) })
	t.Run("CursorErrors", func(t *testing.T) { testCursorErrors(t, open) })
}

func BaseCase(t *testing.T, open OpenFunc) (kv.RwDB, kv.RwTx, kv.RwCursorDupSort) {
	t.Helper()
	db := open(t, Tables)

	tx, err := db.BeginRw(context.Background())
	require.NoError(t, err)
	t.Cleanup(tx.Rollback)

	c, err := tx.RwCursorDupSort(DupTable)
	require.NoError(t, err)

	// Insert some dupsorted records
	require.NoError(t, c.Put([]byte("key1"), []byte("value1.1")))
	require.NoError(t, c.Put([]byte("key3"), []byte("value3.1")))
	require.NoError(t, c.Put([]byte("key1"), []byte("value1.3")))
	require.NoError(t, c.Put([]byte("key3"), []byte("value3.3")))

	return db, tx, c
}

func testSeekBothRange(t *testing.T, open OpenFunc) {
	_, _, c := BaseCase(t, open)
	defer c.Close()

	v, err := c.SeekBothRange([]byte("key2"), []byte("value1.2"))
	require.NoError(t, err)
	// exact match of the key, range match of the value
	require.Nil(t, v)

	v, err = c.SeekBothRange([]byte("key3"), []byte("value3.2"))
	require.NoError(t, err)
	require.Equal(t, "value3.3", string(v))

	v, err = c.SeekBothRange([]byte("key1"), []byte("value1.4"))
	require.NoError(t, err)
	require.Nil(t, v)
}

func testLastDup(t *testing.T, open OpenFunc) {
	db, tx, c := BaseCase(t, open)
	c.Close()
	require.NoError(t, tx.Commit())

	roTx, err := db.BeginRo(context.Background())
	require.NoError(t, err)
	defer roTx.Rollback()

	roC, err := roTx.CursorDupSort(DupTable)
	require.NoError(t, err)
	defer roC.Close()

	var keys, vals []string
	var k, v []byte
	for k, _, err = roC.First(); err == nil && k != nil; k, _, err = roC.NextNoDup() {
		v, err = roC.LastDup()
		require.NoError(t, err)
		keys = append(keys, string(k))
		vals = append(vals, string(v))
	}
	require.NoError(t, err)
	require.Equal(t, []string{"key1", "key3"}, keys)
	require.Equal(t, []string{"value1.3", "value3.3"}, vals)

	n, err := roTx.Count(DupTable)
	require.NoError(t, err)
	require.Equal(t, uint64(4), n)
}

func testPutGet(t *testing.T, open OpenFunc) {
	_, tx, c := BaseCase(t, open)
	defer c.Close()

	require.Error(t, c.Put([]byte(""), []byte("value1.1")))

	v, err := tx.GetOne(DupTable, []byte("key1"))
	require.NoError(t, err)
	require.Equal(t, []byte("value1.1"), v)

	v, err = tx.GetOne("RANDOM", []byte("key1"))
	require.ErrorIs(t, err, kv.ErrUnknownTable)
	require.Nil(t, v)
}

func testHasDelete(t *testing.T, open OpenFunc) {
	_, tx, c := BaseCase(t, open)
	defer c.Close()

	require.NoError(t, tx.Put(DupTable, []byte("key2"), []byte("value2.1")))
	require.NoError(t, c.DeleteExact([]byte("key3"), []byte("value3.1")))
	require.NoError(t, tx.Delete(DupTable, []byte("key1")))

	res, err := tx.Has(DupTable, []byte("key1"))
	require.NoError(t, err)
	require.False(t, res)

	res, err = tx.Has(DupTable, []byte("key2"))
	require.NoError(t, err)
	require.True(t, res)

	v, err := tx.GetOne(DupTable, []byte("key3"))
	require.NoError(t, err)
	require.Equal(t, "value3.3", string(v)) // another key3 left

	res, err = tx.Has(DupTable, []byte("k"))
	require.NoError(t, err)
	require.False(t, res)
}

func testNextDup(t *testing.T, open OpenFunc) {
	_, _, c := BaseCase(t, open)
	defer c.Close()

	k, v, err := c.SeekExact([]byte("key1"))
	require.NoError(t, err)
	require.Equal(t, "key1", string(k))
	require.Equal(t, "value1.1", string(v))

	cnt, err := c.CountDuplicates()
	require.NoError(t, err)
	require.Equal(t, uint64(2), cnt)

	_, v, err = c.NextDup()
	require.NoError(t, err)
	require.Equal(t, "value1.3", string(v))

	k, v, err = c.NextDup()
	require.NoError(t, err)
	require.Nil(t, k)
	require.Nil(t, v)

	k, v, err = c.NextNoDup()
	require.NoError(t, err)
	require.Equal(t, "key3", string(k))
	require.Equal(t, "value3.1", string(v))
}

func testDeleteCurrent(t *testing.T, open OpenFunc) {
	_, tx, c := BaseCase(t, open)
	defer c.Close()

	v, err := c.SeekBothRange([]byte("key1"), []byte("value1.2"))
	require.NoError(t, err)
	require.Equal(t, "value1.3", string(v))
	require.NoError(t, c.DeleteCurrent())
	require.NoError(t, c.Put([]byte("key1"), []byte("value1.4")))
	require.NoError(t, c.AppendDup([]byte("key3"), []byte("value3.5")))
	require.Error(t, c.AppendDup([]byte("key3"), []byte("value3.0")))

	var vals []string
	require.NoError(t, tx.ForEach(DupTable, nil, func(k, v []byte) error {
		vals = append(vals, string(v))
		return nil
	}))
	require.Equal(t, []string{"value1.1", "value1.4", "value3.1", "value3.3", "value3.5"}, vals)
}

func testPlainOverwrite(t *testing.T, open OpenFunc) {
	db := open(t, Tables)
	ctx := context.Background()

	require.NoError(t, db.Update(ctx, func(tx kv.RwTx) error {
		if err := tx.Put(PlainTable, []byte("a"), []byte("1")); err != nil {
			return err
		}
		if err := tx.Put(PlainTable, []byte("a"), []byte("2")); err != nil {
			return err
		}
		return tx.Put(PlainTable, []byte("b"), []byte("3"))
	}))
	require.NoError(t, db.View(ctx, func(tx kv.Tx) error {
		v, err := tx.GetOne(PlainTable, []byte("a"))
		require.NoError(t, err)
		require.Equal(t, "2", string(v))

		c, err := tx.Cursor(PlainTable)
		require.NoError(t, err)
		defer c.Close()
		k, _, err := c.Last()
		require.NoError(t, err)
		require.Equal(t, "b", string(k))
		k, _, err = c.Prev()
		require.NoError(t, err)
		require.Equal(t, "a", string(k))
		k, _, err = c.Prev()
		require.NoError(t, err)
		require.Nil(t, k)

		n, err := tx.Count(PlainTable)
		require.NoError(t, err)
		require.Equal(t, uint64(2), n)
		return nil
	}))
}

func testIsolation(t *testing.T, open OpenFunc) {
	db := open(t, Tables)
	ctx := context.Background()

	roTx, err := db.BeginRo(ctx)
	require.NoError(t, err)
	defer roTx.Rollback()

	require.NoError(t, db.Update(ctx, func(tx kv.RwTx) error {
		return tx.Put(PlainTable, []byte("a"), []byte("1"))
	}))

	v, err := roTx.GetOne(PlainTable, []byte("a"))
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, db.View(ctx, func(tx kv.Tx) error {
		v, err := tx.GetOne(PlainTable, []byte("a"))
		require.NoError(t, err)
		require.Equal(t, "1", string(v))
		require.Greater(t, tx.ViewID(), roTx.ViewID())
		return nil
	}))
}

func testUpdateRollback(t *testing.T, open OpenFunc) {
	db := open(t, Tables)
	ctx := context.Background()

	errStop := errors.New("stop")
	err := db.Update(ctx, func(tx kv.RwTx) error {
		if err := tx.Put(PlainTable, []byte("a"), []byte("1")); err != nil {
			return err
		}
		return errStop
	})
	require.ErrorIs(t, err, errStop)

	require.NoError(t, db.View(ctx, func(tx kv.Tx) error {
		has, err := tx.Has(PlainTable, []byte("a"))
		require.NoError(t, err)
		require.False(t, has)
		return nil
	}))
}

func testCursorErrors(t *testing.T, open OpenFunc) {
	db := open(t, Tables)

	roTx, err := db.BeginRo(context.Background())
	require.NoError(t, err)
	defer roTx.Rollback()

	_, err = roTx.CursorDupSort(PlainTable)
	require.Error(t, err)

	_, err = roTx.Cursor("RANDOM")
	require.ErrorIs(t, err, kv.ErrUnknownTable)
}
