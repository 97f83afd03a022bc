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
	"errors"
	"testing"

	"github.com/ledgerwatch/log/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/erigontech/starkdb/common/felt"
	"github.com/erigontech/starkdb/core/types"
	"github.com/erigontech/starkdb/db/kv"
	"github.com/erigontech/starkdb/db/kv/memdb"
	"github.com/erigontech/starkdb/db/tables"
)

var (
	addr = felt.MustFromHex("0x1234")
	slot = felt.MustFromHex("0x5")
)

func newTestStore(t *testing.T, base BaseStateReader) *StateStore {
	t.Helper()
	return NewStateStore(memdb.NewTestDB(t, tables.TablesCfg()), base, log.New())
}

func storageDiff(value uint64) *types.StateDiff {
	diff := types.NewStateDiff()
	diff.SetStorage(addr, slot, felt.FromUint64(value))
	return diff
}

func TestHistoricalStorage(t *testing.T) {
	ctrl := gomock.NewController(t)
	base := NewMockBaseStateReader(ctrl)
	preGenesis := felt.FromUint64(0xdead)
	base.EXPECT().Storage(addr, slot).Return(preGenesis, nil).Times(1)

	s := newTestStore(t, base)
	ctx := context.Background()
	for _, b := range []types.BlockNumber{1, 5, 10} {
		require.NoError(t, s.CommitBlock(ctx, b, storageDiff(100+b)))
	}

	for block, want := range map[types.BlockNumber]felt.Felt{
		0:   preGenesis,
		3:   felt.FromUint64(101),
		7:   felt.FromUint64(105),
		10:  felt.FromUint64(110),
		100: felt.FromUint64(110),
	} {
		require.NoError(t, s.View(ctx, block, func(p StateProvider) error {
			got, err := p.StorageAt(addr, slot)
			require.NoError(t, err)
			require.Equal(t, want, got, "block %d", block)
			return nil
		}))
	}

	require.NoError(t, s.History(ctx, func(r *HistoryReader) error {
		blocks, err := r.ChangeList(addr, slot)
		require.NoError(t, err)
		require.Equal(t, []types.BlockNumber{1, 5, 10}, blocks)
		return nil
	}))
}

func TestIdempotentRecommit(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, s.CommitBlock(ctx, 5, storageDiff(1)))
	require.NoError(t, s.CommitBlock(ctx, 5, storageDiff(2)))

	require.NoError(t, s.History(ctx, func(r *HistoryReader) error {
		blocks, err := r.ChangeList(addr, slot)
		require.NoError(t, err)
		require.Equal(t, []types.BlockNumber{5}, blocks)

		v, err := r.StorageAt(addr, slot, 5)
		require.NoError(t, err)
		require.Equal(t, felt.FromUint64(2), v)
		return nil
	}))

	last, ok, err := s.LastCommittedBlock(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, types.BlockNumber(5), last)
}

func TestOutOfOrderCommit(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, s.CommitBlock(ctx, 5, storageDiff(1)))

	diff := storageDiff(2)
	diff.SetNonce(addr, felt.FromUint64(1))
	err := s.CommitBlock(ctx, 3, diff)
	require.ErrorIs(t, err, ErrOutOfOrderBlock)

	require.NoError(t, s.DB().View(ctx, func(tx kv.Tx) error {
		n, err := tx.Count(kv.NonceChanges)
		require.NoError(t, err)
		require.Zero(t, n)
		return nil
	}))
}

func TestChangeListGuard(t *testing.T) {
	db := memdb.NewTestDB(t, tables.TablesCfg())
	tx := memdb.BeginRw(t, db)

	require.NoError(t, NewChangeSetWriter(tx, 5, log.New()).WriteStorage(addr, slot, felt.FromUint64(1)))
	err := NewChangeSetWriter(tx, 3, log.New()).WriteStorage(addr, slot, felt.FromUint64(2))
	require.ErrorIs(t, err, ErrOutOfOrderBlock)
}

func TestAtomicity(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()
	errFail := errors.New("simulated failure")

	err := s.DB().Update(ctx, func(tx kv.RwTx) error {
		w := NewChangeSetWriter(tx, 1, log.New())
		require.NoError(t, w.WriteNonce(addr, felt.FromUint64(1)))
		require.NoError(t, w.WriteClassHash(addr, felt.FromUint64(2)))
		require.NoError(t, w.WriteStorage(addr, slot, felt.FromUint64(3)))
		return errFail
	})
	require.ErrorIs(t, err, errFail)

	// invalid felt after valid writes aborts the whole block
	var tooBig felt.Felt
	tooBig[0] = 0xff
	diff := storageDiff(7)
	diff.SetNonce(addr, felt.FromUint64(1))
	diff.SetStorage(tooBig, slot, felt.FromUint64(1))
	require.ErrorIs(t, s.CommitBlock(ctx, 1, diff), felt.ErrOutOfRange)

	require.NoError(t, s.DB().View(ctx, func(tx kv.Tx) error {
		for _, table := range []string{kv.NonceChanges, kv.ContractClassChanges, kv.StorageChangeSet, kv.StorageChanges, kv.SyncStageProgress} {
			n, err := tx.Count(table)
			require.NoError(t, err)
			require.Zero(t, n, table)
		}
		return nil
	}))
}

func TestIsolation(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	p, release, err := s.HistoryAt(ctx, 100)
	require.NoError(t, err)
	defer release()

	require.NoError(t, s.CommitBlock(ctx, 1, storageDiff(42)))

	v, err := p.StorageAt(addr, slot)
	require.NoError(t, err)
	require.True(t, v.IsZero())

	require.NoError(t, s.View(ctx, 100, func(p StateProvider) error {
		v, err := p.StorageAt(addr, slot)
		require.NoError(t, err)
		require.Equal(t, felt.FromUint64(42), v)
		return nil
	}))
}

func TestNonceAndClassHashPointLookups(t *testing.T) {
	ctrl := gomock.NewController(t)
	base := NewMockBaseStateReader(ctrl)
	baseNonce, baseClass := felt.FromUint64(0), felt.MustFromHex("0xba5e")
	base.EXPECT().Nonce(addr).Return(baseNonce, nil).Times(1)
	base.EXPECT().ClassHash(addr).Return(baseClass, nil).Times(1)

	s := newTestStore(t, base)
	ctx := context.Background()

	classHash := felt.MustFromHex("0xc1a55")
	artifact := []byte(`{"abi":[]}`)
	diff := types.NewStateDiff()
	diff.SetNonce(addr, felt.FromUint64(1))
	diff.SetClassHash(addr, classHash)
	diff.DeclareClass(classHash, artifact)
	require.NoError(t, s.CommitBlock(ctx, 2, diff))

	require.NoError(t, s.View(ctx, 2, func(p StateProvider) error {
		nonce, err := p.Nonce(addr)
		require.NoError(t, err)
		require.Equal(t, felt.FromUint64(1), nonce)

		ch, err := p.ClassHash(addr)
		require.NoError(t, err)
		require.Equal(t, classHash, ch)

		got, ok, err := p.Class(classHash)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, artifact, got)

		_, ok, err = p.Class(felt.FromUint64(1))
		require.NoError(t, err)
		require.False(t, ok)
		return nil
	}))

	require.NoError(t, s.View(ctx, 3, func(p StateProvider) error {
		nonce, err := p.Nonce(addr)
		require.NoError(t, err)
		require.Equal(t, baseNonce, nonce)

		ch, err := p.ClassHash(addr)
		require.NoError(t, err)
		require.Equal(t, baseClass, ch)
		return nil
	}))
}

func TestLastNonceAndClassHashChange(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	classHash := felt.MustFromHex("0xc1a55")
	diff := types.NewStateDiff()
	diff.SetNonce(addr, felt.FromUint64(1))
	diff.SetClassHash(addr, classHash)
	require.NoError(t, s.CommitBlock(ctx, 2, diff))
	diff = types.NewStateDiff()
	diff.SetNonce(addr, felt.FromUint64(2))
	require.NoError(t, s.CommitBlock(ctx, 4, diff))
	require.NoError(t, s.CommitBlock(ctx, 6, storageDiff(1)))

	require.NoError(t, s.History(ctx, func(r *HistoryReader) error {
		_, ok, err := r.LastNonceChange(addr, 1)
		require.NoError(t, err)
		require.False(t, ok)

		at, ok, err := r.LastNonceChange(addr, 3)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, types.BlockNumber(2), at)

		at, ok, err = r.LastNonceChange(addr, 6)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, types.BlockNumber(4), at)

		at, ok, err = r.LastClassHashChange(addr, 6)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, types.BlockNumber(2), at)

		_, ok, err = r.LastClassHashChange(felt.FromUint64(1), 6)
		require.NoError(t, err)
		require.False(t, ok)
		return nil
	}))
}

func TestMissingChange(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()
	require.NoError(t, s.CommitBlock(ctx, 4, storageDiff(1)))

	require.NoError(t, s.DB().Update(ctx, func(tx kv.RwTx) error {
		return tx.Delete(kv.StorageChanges, tables.StorageChanges.Key.Encode(4))
	}))

	err := s.History(ctx, func(r *HistoryReader) error {
		_, err := r.StorageAt(addr, slot, 10)
		return err
	})
	require.ErrorIs(t, err, ErrMissingChange)
}
