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

package state

import (
	"context"

	"github.com/ledgerwatch/log/v3"

	"github.com/erigontech/starkdb/core/types"
	"github.com/erigontech/starkdb/db/kv"
)

// StateStore writes blocks and opens historical views over one database.
type StateStore struct {
	db   kv.RwDB
	base BaseStateReader
	log  log.Logger
}

var _ StateWriter = (*StateStore)(nil)

func NewStateStore(db kv.RwDB, base BaseStateReader, logger log.Logger) *StateStore {
	if base == nil {
		base = EmptyBaseState{}
	}
	return &StateStore{db: db, base: base, log: logger}
}

func (s *StateStore) DB() kv.RwDB { return s.db }

func (s *StateStore) CommitBlock(ctx context.Context, block types.BlockNumber, diff *types.StateDiff) error {
	return CommitBlock(ctx, s.db, block, diff, s.log)
}

// HistoryAt opens a read transaction and returns the state as of block.
// The provider is valid until release is called.
func (s *StateStore) HistoryAt(ctx context.Context, block types.BlockNumber) (p StateProvider, release func(), err error) {
	tx, err := s.db.BeginRo(ctx)
	if err != nil {
		return nil, nil, err
	}
	return NewHistoricalStateProvider(NewHistoryReader(tx, s.base), block), tx.Rollback, nil
}

// View runs fn with the state as of block inside one read transaction.
func (s *StateStore) View(ctx context.Context, block types.BlockNumber, fn func(StateProvider) error) error {
	return s.db.View(ctx, func(tx kv.Tx) error {
		return fn(NewHistoricalStateProvider(NewHistoryReader(tx, s.base), block))
	})
}

// History runs fn with a reader over all blocks inside one read transaction.
func (s *StateStore) History(ctx context.Context, fn func(*HistoryReader) error) error {
	return s.db.View(ctx, func(tx kv.Tx) error {
		return fn(NewHistoryReader(tx, s.base))
	})
}

func (s *StateStore) LastCommittedBlock(ctx context.Context) (block types.BlockNumber, ok bool, err error) {
	err = s.db.View(ctx, func(tx kv.Tx) error {
		block, ok, err = LastCommittedBlock(tx)
		return err
	})
	return block, ok, err
}
