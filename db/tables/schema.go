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
	"fmt"
	"slices"
	"strings"

	"github.com/erigontech/starkdb/core/types"
	"github.com/erigontech/starkdb/db/codec"
	"github.com/erigontech/starkdb/db/kv"
)

var (
	NonceChanges = DupSortTable[types.BlockNumber, types.ContractAddress, ContractNonceChange]{
		Name:   kv.NonceChanges,
		Key:    codec.BlockNumber{},
		SubKey: codec.Felt{},
		Value:  ContractNonceChangeCodec{},
	}
	ContractClassChanges = DupSortTable[types.BlockNumber, types.ContractAddress, ContractClassChange]{
		Name:   kv.ContractClassChanges,
		Key:    codec.BlockNumber{},
		SubKey: codec.Felt{},
		Value:  ContractClassChangeCodec{},
	}
	StorageChangeSet = DupSortTable[types.ContractAddress, ChangeListShardKey, ChangeListShard]{
		Name:   kv.StorageChangeSet,
		Key:    codec.Felt{},
		SubKey: ChangeListShardKeyCodec{},
		Value:  ChangeListShardCodec{},
	}
	StorageChanges = DupSortTable[types.BlockNumber, types.ContractStorageKey, ContractStorageEntry]{
		Name:   kv.StorageChanges,
		Key:    codec.BlockNumber{},
		SubKey: ContractStorageKeyCodec{},
		Value:  ContractStorageEntryCodec{},
	}
	Classes = Table[types.ClassHash, []byte]{
		Name:  kv.Classes,
		Key:   codec.Felt{},
		Value: codec.Zstd{},
	}
	SyncStage = Table[string, types.BlockNumber]{
		Name:  kv.SyncStageProgress,
		Key:   codec.String{},
		Value: codec.Fixed[types.BlockNumber]{Key: codec.BlockNumber{}},
	}
)

// Named is implemented by every codec.
type Named interface {
	Name() string
}

// Descriptor describes one table: its codecs and, for DupSort tables, the sub-key codec.
type Descriptor struct {
	Name   string
	Key    Named
	SubKey Named // nil for plain tables
	Value  Named
}

func (d Descriptor) IsDupSort() bool { return d.SubKey != nil }

func (d Descriptor) String() string {
	if d.SubKey == nil {
		return fmt.Sprintf("%s(%s => %s)", d.Name, d.Key.Name(), d.Value.Name())
	}
	return fmt.Sprintf("%s(%s, %s => %s) dupsort", d.Name, d.Key.Name(), d.SubKey.Name(), d.Value.Name())
}

// Schema maps table names to their descriptors.
type Schema map[string]Descriptor

// Registry holds every table of the database.
var Registry = Schema{}

func init() {
	for _, d := range []Descriptor{
		NonceChanges.Descriptor(),
		ContractClassChanges.Descriptor(),
		StorageChangeSet.Descriptor(),
		StorageChanges.Descriptor(),
		Classes.Descriptor(),
		SyncStage.Descriptor(),
	} {
		Registry.Register(d)
	}
}

// Register adds a table. Registering the same name twice panics.
func (s Schema) Register(d Descriptor) {
	if _, ok := s[d.Name]; ok {
		panic(fmt.Sprintf("table %s registered twice", d.Name))
	}
	s[d.Name] = d
}

func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	slices.SortFunc(names, strings.Compare)
	return names
}

// TablesCfg is the backend configuration for the schema, DupSort for sub-keyed tables.
func (s Schema) TablesCfg() kv.TableCfg {
	cfg := make(kv.TableCfg, len(s))
	for name, d := range s {
		item := kv.TableCfgItem{Flags: kv.Default}
		if d.IsDupSort() {
			item.Flags = kv.DupSort
		}
		cfg[name] = item
	}
	return cfg
}

// TablesCfg of Registry.
func TablesCfg() kv.TableCfg { return Registry.TablesCfg() }
