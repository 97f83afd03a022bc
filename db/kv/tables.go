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
	"fmt"
	"slices"
	"strings"
)

// Starknet state tables. Names are part of the on-disk format: renaming a table is a breaking change.
const (
	// Contract nonce changes by block.
	// key - block_num_u64
	// value - address (dupsort subkey) + nonce without leading zeros
	NonceChanges = "NonceChanges"

	// Contract class hash changes by block.
	// key - block_num_u64
	// value - address (dupsort subkey) + class hash without leading zeros
	ContractClassChanges = "ContractClassChanges"

	// Storage change set: blocks at which a slot changed.
	// key - address
	// value - storage key (dupsort subkey) + roaring64 bitmap of block numbers
	StorageChangeSet = "StorageChangeSet"

	// Storage values written at a block.
	// key - block_num_u64
	// value - address + storage key (dupsort subkey) + value without leading zeros
	StorageChanges = "StorageChanges"

	// Declared classes.
	// key - class hash
	// value - zstd compressed class artifact
	Classes = "Classes"

	// Progress of writers: stageName -> block_num_u64
	SyncStageProgress = "SyncStage"
)

type TableCfg map[string]TableCfgItem

type TableFlags uint

const (
	Default TableFlags = 0x00
	DupSort TableFlags = 0x04
)

type TableCfgItem struct {
	Flags TableFlags
}

func (c TableCfgItem) IsDupSort() bool { return c.Flags&DupSort != 0 }

// Names returns table names in sorted order, the order in which backends create them.
func (c TableCfg) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	slices.SortFunc(names, strings.Compare)
	return names
}

// Lookup returns the table config or ErrUnknownTable.
func (c TableCfg) Lookup(name string) (TableCfgItem, error) {
	cfg, ok := c[name]
	if !ok {
		return TableCfgItem{}, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return cfg, nil
}

// Clone copies the map, so backends never share the caller's config.
func (c TableCfg) Clone() TableCfg {
	res := make(TableCfg, len(c))
	for name, item := range c {
		res[name] = item
	}
	return res
}
