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
	"fmt"

	"github.com/erigontech/starkdb/core/types"
	"github.com/erigontech/starkdb/db/kv"
	"github.com/erigontech/starkdb/db/tables"
)

// HistoryReader answers point-in-time queries from the change-set tables of one read transaction.
type HistoryReader struct {
	tx   kv.Tx
	base BaseStateReader
}

// NewHistoryReader reads from tx. Entities without recorded changes resolve through base, EmptyBaseState if nil.
func NewHistoryReader(tx kv.Tx, base BaseStateReader) *HistoryReader {
	if base == nil {
		base = EmptyBaseState{}
	}
	return &HistoryReader{tx: tx, base: base}
}

// ChangeList returns the blocks at which the slot changed, in increasing order.
func (r *HistoryReader) ChangeList(addr types.ContractAddress, key types.StorageKey) ([]types.BlockNumber, error) {
	return tables.ReadChangeList(r.tx, addr, key)
}

// StorageAt returns the slot value as of block: the value written at the last change not after block.
func (r *HistoryReader) StorageAt(addr types.ContractAddress, key types.StorageKey, block types.BlockNumber) (types.StorageValue, error) {
	changedAt, found, err := tables.FindChange(r.tx, addr, key, block)
	if err != nil {
		return types.StorageValue{}, err
	}
	if !found {
		return r.base.Storage(addr, key)
	}
	entry, ok, err := tables.StorageChanges.Get(r.tx, changedAt, types.ContractStorageKey{Address: addr, Key: key})
	if err != nil {
		return types.StorageValue{}, err
	}
	if !ok {
		return types.StorageValue{}, fmt.Errorf("%w: contract %s key %s block %d", ErrMissingChange, addr, key, changedAt)
	}
	return entry.Value, nil
}

// NonceAt returns the nonce written exactly at block, or the base nonce.
// Nonces and class hashes have no change lists, a block without a change resolves to base.
func (r *HistoryReader) NonceAt(addr types.ContractAddress, block types.BlockNumber) (types.Nonce, error) {
	change, ok, err := tables.NonceChanges.Get(r.tx, block, addr)
	if err != nil {
		return types.Nonce{}, err
	}
	if !ok {
		return r.base.Nonce(addr)
	}
	return change.Nonce, nil
}

// ClassHashAt returns the class hash written exactly at block, or the base class hash.
func (r *HistoryReader) ClassHashAt(addr types.ContractAddress, block types.BlockNumber) (types.ClassHash, error) {
	change, ok, err := tables.ContractClassChanges.Get(r.tx, block, addr)
	if err != nil {
		return types.ClassHash{}, err
	}
	if !ok {
		return r.base.ClassHash(addr)
	}
	return change.ClassHash, nil
}

// LastNonceChange returns the newest block not after block at which the nonce of addr was written.
func (r *HistoryReader) LastNonceChange(addr types.ContractAddress, block types.BlockNumber) (types.BlockNumber, bool, error) {
	at, _, ok, err := tables.LastChange(r.tx, tables.NonceChanges, addr, block)
	return at, ok, err
}

// LastClassHashChange returns the newest block not after block at which the class hash of addr was written.
func (r *HistoryReader) LastClassHashChange(addr types.ContractAddress, block types.BlockNumber) (types.BlockNumber, bool, error) {
	at, _, ok, err := tables.LastChange(r.tx, tables.ContractClassChanges, addr, block)
	return at, ok, err
}

func (r *HistoryReader) ClassArtifact(hash types.ClassHash) ([]byte, bool, error) {
	return tables.Classes.Get(r.tx, hash)
}

// HistoricalStateProvider is the state as of one block.
type HistoricalStateProvider struct {
	r     *HistoryReader
	block types.BlockNumber
}

var _ StateProvider = (*HistoricalStateProvider)(nil)

func NewHistoricalStateProvider(r *HistoryReader, block types.BlockNumber) *HistoricalStateProvider {
	return &HistoricalStateProvider{r: r, block: block}
}

func (p *HistoricalStateProvider) Block() types.BlockNumber { return p.block }

func (p *HistoricalStateProvider) Nonce(addr types.ContractAddress) (types.Nonce, error) {
	return p.r.NonceAt(addr, p.block)
}

func (p *HistoricalStateProvider) ClassHash(addr types.ContractAddress) (types.ClassHash, error) {
	return p.r.ClassHashAt(addr, p.block)
}

func (p *HistoricalStateProvider) StorageAt(addr types.ContractAddress, key types.StorageKey) (types.StorageValue, error) {
	return p.r.StorageAt(addr, key, p.block)
}

func (p *HistoricalStateProvider) Class(hash types.ClassHash) ([]byte, bool, error) {
	return p.r.ClassArtifact(hash)
}
