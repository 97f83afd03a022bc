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

import "github.com/erigontech/starkdb/common/felt"

// BlockNumber identifies a committed block. Blocks commit in increasing order.
type BlockNumber = uint64

type (
	ContractAddress = felt.Felt
	StorageKey      = felt.Felt
	StorageValue    = felt.Felt
	ClassHash       = felt.Felt
	Nonce           = felt.Felt
	BlockHash       = felt.Felt
)

// ContractStorageKey addresses one storage slot of one contract.
type ContractStorageKey struct {
	Address ContractAddress
	Key     StorageKey
}

// GasPrices are the L1 gas prices of a block, in wei and fri.
type GasPrices struct {
	Eth  uint64 `json:"eth"`
	Strk uint64 `json:"strk"`
}
