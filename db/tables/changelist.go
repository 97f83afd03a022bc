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

package tables

import (
	"bytes"
	"fmt"

	"github.com/c2h5oh/datasize"

	"github.com/erigontech/starkdb/core/types"
	"github.com/erigontech/starkdb/db/codec"
	"github.com/erigontech/starkdb/db/kv"
)

// ShardLimit is the encoded block-list size at which the last shard of a change list is frozen.
// It keeps every StorageChangeSet value well below the MDBX DupSort value limit of half a page.
const ShardLimit = 1 * datasize.KB

// LastShard is the Max of the shard receiving appends.
const LastShard = ^types.BlockNumber(0)

// AppendChange records that the slot changed at block. Appending the last recorded block again is a no-op,
// appending a lower block fails with ErrOutOfOrderBlock.
func AppendChange(tx kv.RwTx, addr types.ContractAddress, key types.StorageKey, block types.BlockNumber) (changed bool, err error) {
	last, ok, err := StorageChangeSet.Get(tx, addr, ChangeListShardKey{Key: key, Max: LastShard})
	if err != nil {
		return false, err
	}
	if !ok {
		last = ChangeListShard{StorageEntryChangeList: StorageEntryChangeList{Key: key}, Max: LastShard}
	}
	var full bool
	if ok {
		encoded, err := codec.BlockList{}.Compress(last.BlockList)
		if err != nil {
			return false, err
		}
		full = len(encoded) >= int(ShardLimit)
	}
	if changed, err = last.Append(block); err != nil || !changed {
		return changed, err
	}

	if full {
		// rename the full shard and start a new last shard with block
		frozen := last.BlockList[:len(last.BlockList)-1]
		shard := ChangeListShard{
			StorageEntryChangeList: StorageEntryChangeList{Key: key, BlockList: frozen},
			Max:                    frozen[len(frozen)-1],
		}
		if err := StorageChangeSet.Upsert(tx, addr, shard); err != nil {
			return false, err
		}
		last.BlockList = []types.BlockNumber{block}
	}
	if err := StorageChangeSet.Upsert(tx, addr, last); err != nil {
		return false, err
	}
	return true, nil
}

// ReadChangeList returns the blocks at which the slot changed, in increasing order, across all shards.
func ReadChangeList(tx kv.Tx, addr types.ContractAddress, key types.StorageKey) ([]types.BlockNumber, error) {
	c, err := tx.CursorDupSort(StorageChangeSet.Name)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	prefix := codec.Felt{}.Encode(key)
	var blocks []types.BlockNumber
	v, err := c.SeekBothRange(codec.Felt{}.Encode(addr), ChangeListShardKeyCodec{}.Encode(ChangeListShardKey{Key: key}))
	for ; v != nil && err == nil && bytes.HasPrefix(v, prefix); _, v, err = c.NextDup() {
		shard, err := ChangeListShardCodec{}.Decompress(v)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", StorageChangeSet.Name, err)
		}
		if n := len(blocks); n > 0 && shard.BlockList[0] <= blocks[n-1] {
			return nil, fmt.Errorf("table %s: %w: shards of %s overlap", StorageChangeSet.Name, codec.ErrCorrupted, key)
		}
		blocks = append(blocks, shard.BlockList...)
	}
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", StorageChangeSet.Name, err)
	}
	return blocks, nil
}

// FindChange returns the last block not after block at which the slot changed.
// It reads at most two shards: the first one covering block and the one before it.
func FindChange(tx kv.Tx, addr types.ContractAddress, key types.StorageKey, block types.BlockNumber) (types.BlockNumber, bool, error) {
	c, err := tx.CursorDupSort(StorageChangeSet.Name)
	if err != nil {
		return 0, false, err
	}
	defer c.Close()

	kb, prefix := codec.Felt{}.Encode(addr), codec.Felt{}.Encode(key)
	v, err := c.SeekBothRange(kb, ChangeListShardKeyCodec{}.Encode(ChangeListShardKey{Key: key, Max: block}))
	if err != nil {
		return 0, false, fmt.Errorf("table %s: %w", StorageChangeSet.Name, err)
	}
	if v == nil || !bytes.HasPrefix(v, prefix) {
		return 0, false, nil
	}
	shard, err := ChangeListShardCodec{}.Decompress(v)
	if err != nil {
		return 0, false, fmt.Errorf("table %s: %w", StorageChangeSet.Name, err)
	}
	if found, ok := shard.Find(block); ok {
		return found, true, nil
	}

	// every block of this shard is after block, the answer is the tail of the previous shard
	k, v, err := c.Prev()
	if err != nil {
		return 0, false, fmt.Errorf("table %s: %w", StorageChangeSet.Name, err)
	}
	if k == nil || !bytes.Equal(k, kb) || !bytes.HasPrefix(v, prefix) {
		return 0, false, nil
	}
	prev, err := ChangeListShardCodec{}.Decompress(v)
	if err != nil {
		return 0, false, fmt.Errorf("table %s: %w", StorageChangeSet.Name, err)
	}
	found, ok := prev.Find(block)
	return found, ok, nil
}
