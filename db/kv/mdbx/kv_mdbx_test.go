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
	"testing"

	"github.com/ledgerwatch/log/v3"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/starkdb/db/kv"
	"github.com/erigontech/starkdb/db/kv/kvtest"
)

func TestBackend(t *testing.T) {
	kvtest.Run(t, func(t *testing.T, cfg kv.TableCfg) kv.RwDB {
		return NewTestDB(t, cfg)
	})
}

func TestReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	logger := log.New()

	db := NewMDBX(logger).Path(dir).MapSize(64 << 20).GrowthStep(2 << 20).WithTableCfg(kvtest.Tables).MustOpen()
	require.NoError(t, db.Update(ctx, func(tx kv.RwTx) error {
		return tx.Put(kvtest.DupTable, []byte("key1"), []byte("value1.1"))
	}))
	db.Close()

	ro, err := NewMDBX(logger).Path(dir).WithTableCfg(kvtest.Tables).Readonly().Open(ctx)
	require.NoError(t, err)
	defer ro.Close()
	require.True(t, ro.ReadOnly())

	require.NoError(t, ro.View(ctx, func(tx kv.Tx) error {
		v, err := tx.GetOne(kvtest.DupTable, []byte("key1"))
		require.NoError(t, err)
		require.Equal(t, "value1.1", string(v))
		return nil
	}))

	_, err = ro.BeginRw(ctx)
	require.ErrorIs(t, err, kv.ErrReadOnlyTx)
}

func TestClosed(t *testing.T) {
	db := NewMDBX(log.New()).InMem(t.TempDir()).WithTableCfg(kvtest.Tables).MustOpen()
	db.Close()
	db.Close()
	_, err := db.BeginRo(context.Background())
	require.ErrorIs(t, err, kv.ErrDBClosed)
}

func TestClosedCursorsReleased(t *testing.T) {
	db := NewTestDB(t, kvtest.Tables)
	ctx := context.Background()
	require.NoError(t, db.Update(ctx, func(rwTx kv.RwTx) error {
		tx := rwTx.(*MdbxTx)
		for i := byte(1); i <= 100; i++ {
			require.NoError(t, tx.Put(kvtest.DupTable, []byte{i}, []byte{i, 1}))
			require.NoError(t, tx.Put(kvtest.PlainTable, []byte{i}, []byte{i}))
			c, err := tx.RwCursorDupSort(kvtest.DupTable)
			require.NoError(t, err)
			v, err := c.SeekBothRange([]byte{i}, []byte{i})
			require.NoError(t, err)
			require.Equal(t, []byte{i, 1}, v)
			c.Close()
		}
		require.NoError(t, tx.Delete(kvtest.PlainTable, []byte{1}))
		require.NoError(t, tx.Delete(kvtest.PlainTable, []byte{1}))
		require.Empty(t, tx.cursors)

		_, err := tx.Cursor(kvtest.PlainTable) // left open, Commit closes it
		require.NoError(t, err)
		require.Len(t, tx.cursors, 1)
		return nil
	}))

	require.NoError(t, db.View(ctx, func(tx kv.Tx) error {
		n, err := tx.Count(kvtest.PlainTable)
		require.NoError(t, err)
		require.Equal(t, uint64(99), n)
		return nil
	}))
}
