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

package types

import (
	"slices"

	"github.com/erigontech/starkdb/common/felt"
)

// StateDiff is the post-execution state change of one block.
// Entries for the same entity overwrite each other, the last write wins.
type StateDiff struct {
	Nonces          map[ContractAddress]Nonce
	ClassHashes     map[ContractAddress]ClassHash
	Storage         map[ContractAddress]map[StorageKey]StorageValue
	DeclaredClasses map[ClassHash][]byte
}

func NewStateDiff() *StateDiff {
	return &StateDiff{
		Nonces:          map[ContractAddress]Nonce{},
		ClassHashes:     map[ContractAddress]ClassHash{},
		Storage:         map[ContractAddress]map[StorageKey]StorageValue{},
		DeclaredClasses: map[ClassHash][]byte{},
	}
}

func (d *StateDiff) SetNonce(addr ContractAddress, nonce Nonce) {
	if d.Nonces == nil {
		d.Nonces = map[ContractAddress]Nonce{}
	}
	d.Nonces[addr] = nonce
}

func (d *StateDiff) SetClassHash(addr ContractAddress, classHash ClassHash) {
	if d.ClassHashes == nil {
		d.ClassHashes = map[ContractAddress]ClassHash{}
	}
	d.ClassHashes[addr] = classHash
}

func (d *StateDiff) SetStorage(addr ContractAddress, key StorageKey, value StorageValue) {
	if d.Storage == nil {
		d.Storage = map[ContractAddress]map[StorageKey]StorageValue{}
	}
	slots, ok := d.Storage[addr]
	if !ok {
		slots = map[StorageKey]StorageValue{}
		d.Storage[addr] = slots
	}
	slots[key] = value
}

func (d *StateDiff) DeclareClass(hash ClassHash, artifact []byte) {
	if d.DeclaredClasses == nil {
		d.DeclaredClasses = map[ClassHash][]byte{}
	}
	d.DeclaredClasses[hash] = artifact
}

// Merge applies other on top of d.
func (d *StateDiff) Merge(other *StateDiff) {
	for addr, nonce := range other.Nonces {
		d.SetNonce(addr, nonce)
	}
	for addr, classHash := range other.ClassHashes {
		d.SetClassHash(addr, classHash)
	}
	for addr, slots := range other.Storage {
		for key, value := range slots {
			d.SetStorage(addr, key, value)
		}
	}
	for hash, artifact := range other.DeclaredClasses {
		d.DeclareClass(hash, artifact)
	}
}

func (d *StateDiff) Empty() bool {
	return len(d.Nonces) == 0 && len(d.ClassHashes) == 0 && len(d.Storage) == 0 && len(d.DeclaredClasses) == 0
}

// StorageChangesCount is the number of storage slots touched by the diff.
func (d *StateDiff) StorageChangesCount() int {
	n := 0
	for _, slots := range d.Storage {
		n += len(slots)
	}
	return n
}

// SortedFelts returns the keys of m in ascending order. Writers iterate
// diffs through it so that table writes happen in key order.
func SortedFelts[V any](m map[felt.Felt]V) []felt.Felt {
	keys := make([]felt.Felt, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b felt.Felt) int { return a.Cmp(b) })
	return keys
}
