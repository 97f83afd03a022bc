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

	"github.com/erigontech/starkdb/core/types"
)

//go:generate mockgen -destination=./base_state_mock.go -package=state . BaseStateReader

// StateProvider reads contract state as of one block.
type StateProvider interface {
	Nonce(addr types.ContractAddress) (types.Nonce, error)
	ClassHash(addr types.ContractAddress) (types.ClassHash, error)
	StorageAt(addr types.ContractAddress, key types.StorageKey) (types.StorageValue, error)
	// Class returns the declared class artifact, ok is false for unknown hashes.
	Class(hash types.ClassHash) (artifact []byte, ok bool, err error)
}

// StateWriter persists the state diff of one block.
type StateWriter interface {
	CommitBlock(ctx context.Context, block types.BlockNumber, diff *types.StateDiff) error
}

// BaseStateReader provides the values entities have before their first recorded change.
type BaseStateReader interface {
	Nonce(addr types.ContractAddress) (types.Nonce, error)
	ClassHash(addr types.ContractAddress) (types.ClassHash, error)
	Storage(addr types.ContractAddress, key types.StorageKey) (types.StorageValue, error)
}

// EmptyBaseState resolves every entity to zero.
type EmptyBaseState struct{}

func (EmptyBaseState) Nonce(types.ContractAddress) (types.Nonce, error) { return types.Nonce{}, nil }
func (EmptyBaseState) ClassHash(types.ContractAddress) (types.ClassHash, error) {
	return types.ClassHash{}, nil
}
func (EmptyBaseState) Storage(types.ContractAddress, types.StorageKey) (types.StorageValue, error) {
	return types.StorageValue{}, nil
}
