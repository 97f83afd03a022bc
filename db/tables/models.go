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
	"errors"
	"fmt"
	"sort"

	"github.com/erigontech/starkdb/common/felt"
	"github.com/erigontech/starkdb/core/types"
	"github.com/erigontech/starkdb/db/codec"
	"github.com/erigontech/starkdb/db/kv/dbutils"
)

// ErrOutOfOrderBlock is returned when a block is recorded before a block already stored after it.
var ErrOutOfOrderBlock = errors.New("block out of order")

type ContractNonceChange struct {
	ContractAddress types.ContractAddress
	Nonce           types.Nonce
}

type ContractClassChange struct {
	ContractAddress types.ContractAddress
	ClassHash       types.ClassHash
}

type ContractStorageEntry struct {
	Key   types.ContractStorageKey
	Value types.StorageValue
}

// StorageEntryChangeList lists the blocks at which a storage slot changed, strictly increasing.
type StorageEntryChangeList struct {
	Key       types.StorageKey
	BlockList []types.BlockNumber
}

// Append records a change at block. Appending the tail again is a no-op.
func (l *StorageEntryChangeList) Append(block types.BlockNumber) (changed bool, err error) {
	if n := len(l.BlockList); n > 0 {
		tail := l.BlockList[n-1]
		if tail == block {
			return false, nil
		}
		if block < tail {
			return false, fmt.Errorf("%w: storage key %s changed at %d, already recorded %d", ErrOutOfOrderBlock, l.Key, block, tail)
		}
	}
	l.BlockList = append(l.BlockList, block)
	return true, nil
}

// Find returns the last block in the list not greater than block.
func (l StorageEntryChangeList) Find(block types.BlockNumber) (types.BlockNumber, bool) {
	i := sort.Search(len(l.BlockList), func(i int) bool { return l.BlockList[i] > block })
	if i == 0 {
		return 0, false
	}
	return l.BlockList[i-1], true
}

// ContractStorageKeyCodec encodes (address, storage key) as 64 bytes.
type ContractStorageKeyCodec struct{}

func (ContractStorageKeyCodec) Encode(k types.ContractStorageKey) []byte {
	return dbutils.StorageSlotKey(k.Address, k.Key)
}

func (ContractStorageKeyCodec) Decode(b []byte) (types.ContractStorageKey, error) {
	if len(b) != dbutils.StorageSlotLength {
		return types.ContractStorageKey{}, fmt.Errorf("ContractStorageKey: %w: want %d bytes, got %d", codec.ErrInvalidLength, dbutils.StorageSlotLength, len(b))
	}
	addr, key, err := dbutils.ParseStorageSlotKey(b)
	if err != nil {
		return types.ContractStorageKey{}, err
	}
	k := types.ContractStorageKey{Address: addr, Key: key}
	if !k.Address.Valid() || !k.Key.Valid() {
		return types.ContractStorageKey{}, fmt.Errorf("ContractStorageKey: %w: %x", codec.ErrCorrupted, b)
	}
	return k, nil
}

func (ContractStorageKeyCodec) EncodedLen() int { return dbutils.StorageSlotLength }
func (ContractStorageKeyCodec) Name() string    { return "ContractStorageKey" }

// split cuts a dupsort value into its sub-key prefix and payload.
func split(name string, b []byte, width int) ([]byte, []byte, error) {
	if len(b) < width {
		return nil, nil, fmt.Errorf("%s: %w: want at least %d bytes, got %d", name, codec.ErrInvalidLength, width, len(b))
	}
	return b[:width], b[width:], nil
}

func join(prefix, payload []byte) []byte {
	res := make([]byte, 0, len(prefix)+len(payload))
	return append(append(res, prefix...), payload...)
}

// ContractNonceChangeCodec: address + nonce without leading zeros.
type ContractNonceChangeCodec struct{}

func (ContractNonceChangeCodec) Compress(v ContractNonceChange) ([]byte, error) {
	nonce, err := codec.CompressedFelt{}.Compress(v.Nonce)
	if err != nil {
		return nil, err
	}
	return join(codec.Felt{}.Encode(v.ContractAddress), nonce), nil
}

func (ContractNonceChangeCodec) Decompress(b []byte) (ContractNonceChange, error) {
	prefix, payload, err := split("ContractNonceChange", b, felt.Length)
	if err != nil {
		return ContractNonceChange{}, err
	}
	addr, err := codec.Felt{}.Decode(prefix)
	if err != nil {
		return ContractNonceChange{}, err
	}
	nonce, err := codec.CompressedFelt{}.Decompress(payload)
	if err != nil {
		return ContractNonceChange{}, err
	}
	return ContractNonceChange{ContractAddress: addr, Nonce: nonce}, nil
}

func (ContractNonceChangeCodec) Name() string { return "ContractNonceChange" }

// ContractClassChangeCodec: address + class hash without leading zeros.
type ContractClassChangeCodec struct{}

func (ContractClassChangeCodec) Compress(v ContractClassChange) ([]byte, error) {
	hash, err := codec.CompressedFelt{}.Compress(v.ClassHash)
	if err != nil {
		return nil, err
	}
	return join(codec.Felt{}.Encode(v.ContractAddress), hash), nil
}

func (ContractClassChangeCodec) Decompress(b []byte) (ContractClassChange, error) {
	prefix, payload, err := split("ContractClassChange", b, felt.Length)
	if err != nil {
		return ContractClassChange{}, err
	}
	addr, err := codec.Felt{}.Decode(prefix)
	if err != nil {
		return ContractClassChange{}, err
	}
	hash, err := codec.CompressedFelt{}.Decompress(payload)
	if err != nil {
		return ContractClassChange{}, err
	}
	return ContractClassChange{ContractAddress: addr, ClassHash: hash}, nil
}

func (ContractClassChangeCodec) Name() string { return "ContractClassChange" }

// ContractStorageEntryCodec: address + storage key + value without leading zeros.
type ContractStorageEntryCodec struct{}

func (ContractStorageEntryCodec) Compress(v ContractStorageEntry) ([]byte, error) {
	value, err := codec.CompressedFelt{}.Compress(v.Value)
	if err != nil {
		return nil, err
	}
	return join(ContractStorageKeyCodec{}.Encode(v.Key), value), nil
}

func (ContractStorageEntryCodec) Decompress(b []byte) (ContractStorageEntry, error) {
	prefix, payload, err := split("ContractStorageEntry", b, dbutils.StorageSlotLength)
	if err != nil {
		return ContractStorageEntry{}, err
	}
	key, err := ContractStorageKeyCodec{}.Decode(prefix)
	if err != nil {
		return ContractStorageEntry{}, err
	}
	value, err := codec.CompressedFelt{}.Decompress(payload)
	if err != nil {
		return ContractStorageEntry{}, err
	}
	return ContractStorageEntry{Key: key, Value: value}, nil
}

func (ContractStorageEntryCodec) Name() string { return "ContractStorageEntry" }

// ChangeListShardKey is the sub-key of a change-list shard: the storage key, then the last block the shard covers.
type ChangeListShardKey struct {
	Key types.StorageKey
	Max types.BlockNumber
}

// ChangeListShardKeyCodec encodes (storage key, max block) as 40 bytes.
type ChangeListShardKeyCodec struct{}

const changeListShardKeyLength = felt.Length + dbutils.NumberLength

func (ChangeListShardKeyCodec) Encode(k ChangeListShardKey) []byte {
	return join(codec.Felt{}.Encode(k.Key), codec.BlockNumber{}.Encode(k.Max))
}

func (ChangeListShardKeyCodec) Decode(b []byte) (ChangeListShardKey, error) {
	if len(b) != changeListShardKeyLength {
		return ChangeListShardKey{}, fmt.Errorf("ChangeListShardKey: %w: want %d bytes, got %d", codec.ErrInvalidLength, changeListShardKeyLength, len(b))
	}
	key, err := codec.Felt{}.Decode(b[:felt.Length])
	if err != nil {
		return ChangeListShardKey{}, err
	}
	last, err := codec.BlockNumber{}.Decode(b[felt.Length:])
	if err != nil {
		return ChangeListShardKey{}, err
	}
	return ChangeListShardKey{Key: key, Max: last}, nil
}

func (ChangeListShardKeyCodec) EncodedLen() int { return changeListShardKeyLength }
func (ChangeListShardKeyCodec) Name() string    { return "ChangeListShardKey" }

// ChangeListShard is one stored piece of a slot's change list. The shards of a slot hold disjoint,
// increasing ranges of blocks. A full shard has Max equal to its last block, the shard receiving
// appends has Max == LastShard.
type ChangeListShard struct {
	StorageEntryChangeList
	Max types.BlockNumber
}

// ChangeListShardCodec: storage key + max block + roaring64 block list.
type ChangeListShardCodec struct{}

func (ChangeListShardCodec) Compress(v ChangeListShard) ([]byte, error) {
	if len(v.BlockList) == 0 {
		return nil, fmt.Errorf("ChangeListShard: %w: empty shard", codec.ErrInvalidLength)
	}
	blocks, err := codec.BlockList{}.Compress(v.BlockList)
	if err != nil {
		return nil, err
	}
	return join(ChangeListShardKeyCodec{}.Encode(ChangeListShardKey{Key: v.Key, Max: v.Max}), blocks), nil
}

func (ChangeListShardCodec) Decompress(b []byte) (ChangeListShard, error) {
	prefix, payload, err := split("ChangeListShard", b, changeListShardKeyLength)
	if err != nil {
		return ChangeListShard{}, err
	}
	sk, err := ChangeListShardKeyCodec{}.Decode(prefix)
	if err != nil {
		return ChangeListShard{}, err
	}
	blocks, err := codec.BlockList{}.Decompress(payload)
	if err != nil {
		return ChangeListShard{}, err
	}
	if len(blocks) == 0 || (sk.Max != LastShard && blocks[len(blocks)-1] != sk.Max) {
		return ChangeListShard{}, fmt.Errorf("ChangeListShard: %w: %d blocks, max %d", codec.ErrCorrupted, len(blocks), sk.Max)
	}
	return ChangeListShard{StorageEntryChangeList: StorageEntryChangeList{Key: sk.Key, BlockList: blocks}, Max: sk.Max}, nil
}

func (ChangeListShardCodec) Name() string { return "ChangeListShard" }
