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
	"fmt"

	"github.com/ledgerwatch/log/v3"

	"github.com/erigontech/starkdb/common/felt"
	"github.com/erigontech/starkdb/core/types"
	"github.com/erigontech/starkdb/db/kv"
	"github.com/erigontech/starkdb/db/tables"
	"github.com/erigontech/starkdb/metrics"
)

// ChangeSetsStage is the SyncStage key holding the last committed block.
const ChangeSetsStage = "ChangeSets"

var (
	// ErrOutOfOrderBlock means a block lower than an already committed one was written.
	// The transaction is aborted, the caller reprocessed an old block.
	ErrOutOfOrderBlock = tables.ErrOutOfOrderBlock
	// ErrMissingChange means a change list points to a block without a StorageChanges row.
	ErrMissingChange = errors.New("change list entry without storage change")
)

type writeStats struct {
	nonces, classHashes, storage, appends, classes int
}

// ChangeSetWriter records the changes of one block inside one RwTx.
type ChangeSetWriter struct {
	tx    kv.RwTx
	block types.BlockNumber
	log   log.Logger
	stats writeStats
}

func NewChangeSetWriter(tx kv.RwTx, block types.BlockNumber, logger log.Logger) *ChangeSetWriter {
	return &ChangeSetWriter{tx: tx, block: block, log: logger}
}

func checkFelts(what string, fs ...felt.Felt) error {
	for _, f := range fs {
		if !f.Valid() {
			return fmt.Errorf("%s %x: %w", what, f[:], felt.ErrOutOfRange)
		}
	}
	return nil
}

func (w *ChangeSetWriter) WriteNonce(addr types.ContractAddress, nonce types.Nonce) error {
	if err := checkFelts("nonce", addr, nonce); err != nil {
		return err
	}
	if err := tables.NonceChanges.Upsert(w.tx, w.block, tables.ContractNonceChange{ContractAddress: addr, Nonce: nonce}); err != nil {
		return err
	}
	w.stats.nonces++
	return nil
}

func (w *ChangeSetWriter) WriteClassHash(addr types.ContractAddress, classHash types.ClassHash) error {
	if err := checkFelts("class hash", addr, classHash); err != nil {
		return err
	}
	if err := tables.ContractClassChanges.Upsert(w.tx, w.block, tables.ContractClassChange{ContractAddress: addr, ClassHash: classHash}); err != nil {
		return err
	}
	w.stats.classHashes++
	return nil
}

// WriteStorage stores the value of the slot at this block and appends the block to the slot's change list.
func (w *ChangeSetWriter) WriteStorage(addr types.ContractAddress, key types.StorageKey, value types.StorageValue) error {
	if err := checkFelts("storage", addr, key, value); err != nil {
		return err
	}
	entry := tables.ContractStorageEntry{Key: types.ContractStorageKey{Address: addr, Key: key}, Value: value}
	if err := tables.StorageChanges.Upsert(w.tx, w.block, entry); err != nil {
		return err
	}
	w.stats.storage++

	changed, err := tables.AppendChange(w.tx, addr, key, w.block)
	if err != nil {
		return fmt.Errorf("contract %s: %w", addr, err)
	}
	if changed {
		w.stats.appends++
	}
	return nil
}

// WriteClass stores a declared class artifact.
func (w *ChangeSetWriter) WriteClass(hash types.ClassHash, artifact []byte) error {
	if err := checkFelts("class", hash); err != nil {
		return err
	}
	if err := tables.Classes.Put(w.tx, hash, artifact); err != nil {
		return err
	}
	w.log.Trace("[state] declared class", "block", w.block, "hash", hash, "size", len(artifact))
	w.stats.classes++
	return nil
}

// WriteDiff applies the diff in key order: classes, class hashes, nonces, then storage.
func (w *ChangeSetWriter) WriteDiff(diff *types.StateDiff) error {
	for _, hash := range types.SortedFelts(diff.DeclaredClasses) {
		if err := w.WriteClass(hash, diff.DeclaredClasses[hash]); err != nil {
			return err
		}
	}
	for _, addr := range types.SortedFelts(diff.ClassHashes) {
		if err := w.WriteClassHash(addr, diff.ClassHashes[addr]); err != nil {
			return err
		}
	}
	for _, addr := range types.SortedFelts(diff.Nonces) {
		if err := w.WriteNonce(addr, diff.Nonces[addr]); err != nil {
			return err
		}
	}
	for _, addr := range types.SortedFelts(diff.Storage) {
		slots := diff.Storage[addr]
		for _, key := range types.SortedFelts(slots) {
			if err := w.WriteStorage(addr, key, slots[key]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *ChangeSetWriter) updateMetrics() {
	mxNonceWrites.Add(float64(w.stats.nonces))
	mxClassHashWrites.Add(float64(w.stats.classHashes))
	mxStorageWrites.Add(float64(w.stats.storage))
	mxClassWrites.Add(float64(w.stats.classes))
	mxChangeListAppends.Add(float64(w.stats.appends))
}

// LastCommittedBlock reads the progress marker, ok is false before the first commit.
func LastCommittedBlock(tx kv.Getter) (block types.BlockNumber, ok bool, err error) {
	return tables.SyncStage.Get(tx, ChangeSetsStage)
}

// CommitBlock writes diff as the changes of block in one transaction.
// Re-committing the last committed block is allowed, committing an older block fails with ErrOutOfOrderBlock.
func CommitBlock(ctx context.Context, db kv.RwDB, block types.BlockNumber, diff *types.StateDiff, logger log.Logger) error {
	timer := metrics.NewHistTimer(mxCommitTimer)
	var w *ChangeSetWriter
	if err := db.Update(ctx, func(tx kv.RwTx) error {
		last, ok, err := LastCommittedBlock(tx)
		if err != nil {
			return err
		}
		if ok && block < last {
			return fmt.Errorf("%w: block %d, last committed %d", ErrOutOfOrderBlock, block, last)
		}
		w = NewChangeSetWriter(tx, block, logger)
		if err := w.WriteDiff(diff); err != nil {
			return err
		}
		return tables.SyncStage.Put(tx, ChangeSetsStage, block)
	}); err != nil {
		return fmt.Errorf("commit block %d: %w", block, err)
	}
	timer.PutSince()

	w.updateMetrics()
	mxBlocksCommitted.Inc()
	mxLastBlock.SetUint64(block)
	logger.Debug("[state] committed block", "block", block,
		"nonces", w.stats.nonces, "classHashes", w.stats.classHashes, "storage", w.stats.storage,
		"changeListAppends", w.stats.appends, "classes", w.stats.classes)
	return nil
}
