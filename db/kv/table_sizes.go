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
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/erigontech/starkdb/metrics"
)

type TableCount struct {
	Name    string
	Entries uint64
}

// CollectTableCounts counts the entries of every table, duplicates included, one read transaction per table.
// Results are sorted by name and published as db_table_entries gauges.
func CollectTableCounts(ctx context.Context, db RoDB, label Label) ([]TableCount, error) {
	allTables := db.AllTables().Names()
	counts := make([]TableCount, len(allTables))

	g, ctx := errgroup.WithContext(ctx)
	for i, table := range allTables {
		g.Go(func() error {
			return db.View(ctx, func(tx Tx) error {
				n, err := tx.Count(table)
				if err != nil {
					return fmt.Errorf("count %s: %w", table, err)
				}
				counts[i] = TableCount{Name: table, Entries: n}
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, c := range counts {
		metrics.GetOrCreateGauge(fmt.Sprintf(`db_table_entries{db="%s",table="%s"}`, label, c.Name)).SetUint64(c.Entries)
	}
	return counts, nil
}
