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

package genesis

import (
	"context"
	"fmt"

	"github.com/ledgerwatch/log/v3"

	"github.com/erigontech/starkdb/db/kv"
	"github.com/erigontech/starkdb/db/state"
)

// Write validates g and commits its state as block g.Number. An invalid genesis writes nothing.
func Write(ctx context.Context, db kv.RwDB, g *Genesis, logger log.Logger) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("genesis: %w", err)
	}
	diff, err := g.StateDiff()
	if err != nil {
		return fmt.Errorf("genesis: %w", err)
	}
	if err := state.CommitBlock(ctx, db, g.Number, diff, logger); err != nil {
		return fmt.Errorf("genesis: %w", err)
	}
	logger.Info("Writing genesis block", "number", g.Number, "classes", len(g.Classes),
		"allocations", len(g.Allocations), "storage", diff.StorageChangesCount())
	return nil
}
