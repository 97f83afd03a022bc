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

package kv_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/starkdb/db/kv"
	"github.com/erigontech/starkdb/db/kv/memdb"
	"github.com/erigontech/starkdb/metrics"
)

func TestCollectTableCounts(t *testing.T) {
	cfg := kv.TableCfg{
		"Dup":   {Flags: kv.DupSort},
		"Plain": {Flags: kv.Default},
	}
	db := memdb.NewTestDB(t, cfg)
	ctx := context.Background()
	require.NoError(t, db.Update(ctx, func(tx kv.RwTx) error {
		for _, row := range [][3]string{{"Dup", "a", "1"}, {"Dup", "a", "2"}, {"Dup", "b", "1"}, {"Plain", "x", "y"}} {
			if err := tx.Put(row[0], []byte(row[1]), []byte(row[2])); err != nil {
				return err
			}
		}
		return nil
	}))

	counts, err := kv.CollectTableCounts(ctx, db, "counts-test")
	require.NoError(t, err)
	require.Equal(t, []kv.TableCount{{Name: "Dup", Entries: 3}, {Name: "Plain", Entries: 1}}, counts)
	require.Equal(t, float64(3), metrics.GetOrCreateGauge(`db_table_entries{db="counts-test",table="Dup"}`).GetValue())
}
