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

// Package genesis builds the initial state of a chain and seeds it through the ordinary block write path.
package genesis

import (
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/erigontech/starkdb/common/felt"
	"github.com/erigontech/starkdb/core/types"
)

// Storage variable slots of the predeployed contracts.
var (
	AccountPublicKeySlot = StorageVarSlot("Account_public_key")
	ERC20NameSlot        = StorageVarSlot("ERC20_name")
	ERC20SymbolSlot      = StorageVarSlot("ERC20_symbol")
	ERC20DecimalsSlot    = StorageVarSlot("ERC20_decimals")
)

// Genesis is a validated genesis block state.
type Genesis struct {
	ParentHash        types.BlockHash
	StateRoot         felt.Felt
	Number            types.BlockNumber
	Timestamp         uint64
	SequencerAddress  types.ContractAddress
	GasPrices         types.GasPrices
	FeeToken          FeeTokenConfig
	UniversalDeployer *UniversalDeployerConfig
	Classes           map[types.ClassHash][]byte
	Allocations       map[types.ContractAddress]Allocation
}

type FeeTokenConfig struct {
	Name      string
	Symbol    string
	Decimals  uint8
	Address   types.ContractAddress
	ClassHash types.ClassHash
	Storage   map[types.StorageKey]types.StorageValue
}

type UniversalDeployerConfig struct {
	Address   types.ContractAddress
	ClassHash types.ClassHash
	Storage   map[types.StorageKey]types.StorageValue
}

// AccountAlloc is a predeployed account. Its public key lands in the Account_public_key slot.
type AccountAlloc struct {
	PublicKey felt.Felt
	ClassHash types.ClassHash
	Nonce     *types.Nonce
	Storage   map[types.StorageKey]types.StorageValue
}

// ContractAlloc is a predeployed contract. ClassHash is required by Build.
type ContractAlloc struct {
	ClassHash *types.ClassHash
	Nonce     *types.Nonce
	Storage   map[types.StorageKey]types.StorageValue
}

// Allocation holds exactly one of Account and Contract.
type Allocation struct {
	Account  *AccountAlloc
	Contract *ContractAlloc
}

func (a Allocation) ClassHash() (types.ClassHash, bool) {
	switch {
	case a.Account != nil:
		return a.Account.ClassHash, true
	case a.Contract != nil && a.Contract.ClassHash != nil:
		return *a.Contract.ClassHash, true
	}
	return types.ClassHash{}, false
}

func (a Allocation) Nonce() *types.Nonce {
	switch {
	case a.Account != nil:
		return a.Account.Nonce
	case a.Contract != nil:
		return a.Contract.Nonce
	}
	return nil
}

func (a Allocation) Storage() map[types.StorageKey]types.StorageValue {
	switch {
	case a.Account != nil:
		return a.Account.Storage
	case a.Contract != nil:
		return a.Contract.Storage
	}
	return nil
}

// SnKeccak is keccak256 truncated to 250 bits, the Starknet selector hash.
func SnKeccak(data []byte) felt.Felt {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var f felt.Felt
	h.Sum(f[:0])
	f[0] &= 0x03
	return f
}

// StorageVarSlot is the storage address of a Cairo storage variable without arguments.
func StorageVarSlot(name string) types.StorageKey { return SnKeccak([]byte(name)) }

// ShortString encodes up to 31 ASCII characters as a felt, the Cairo short string encoding.
func ShortString(s string) (felt.Felt, error) {
	if len(s) >= felt.Length {
		return felt.Zero, fmt.Errorf("short string %q longer than %d characters", s, felt.Length-1)
	}
	return felt.FromBytes([]byte(s))
}

// Validate checks that every referenced class is declared.
func (g *Genesis) Validate() error {
	for _, addr := range types.SortedFelts(g.Allocations) {
		hash, ok := g.Allocations[addr].ClassHash()
		if !ok {
			return fmt.Errorf("contract %s: %w", addr, ErrMissingClassHash)
		}
		if _, ok := g.Classes[hash]; !ok {
			return &UnknownClassHashError{Contract: addr, ClassHash: hash}
		}
	}
	if _, ok := g.Classes[g.FeeToken.ClassHash]; !ok {
		return &UnknownClassHashError{Contract: g.FeeToken.Address, ClassHash: g.FeeToken.ClassHash}
	}
	if udc := g.UniversalDeployer; udc != nil {
		if _, ok := g.Classes[udc.ClassHash]; !ok {
			return &UnknownClassHashError{Contract: udc.Address, ClassHash: udc.ClassHash}
		}
	}
	return nil
}

// StateDiff is the state of block g.Number: declared classes, predeployed contracts and their storage.
func (g *Genesis) StateDiff() (*types.StateDiff, error) {
	diff := types.NewStateDiff()
	for hash, artifact := range g.Classes {
		diff.DeclareClass(hash, artifact)
	}

	name, err := ShortString(g.FeeToken.Name)
	if err != nil {
		return nil, fmt.Errorf("fee token name: %w", err)
	}
	symbol, err := ShortString(g.FeeToken.Symbol)
	if err != nil {
		return nil, fmt.Errorf("fee token symbol: %w", err)
	}
	fee := g.FeeToken.Address
	diff.SetClassHash(fee, g.FeeToken.ClassHash)
	diff.SetStorage(fee, ERC20NameSlot, name)
	diff.SetStorage(fee, ERC20SymbolSlot, symbol)
	diff.SetStorage(fee, ERC20DecimalsSlot, felt.FromUint64(uint64(g.FeeToken.Decimals)))
	for key, value := range g.FeeToken.Storage {
		diff.SetStorage(fee, key, value)
	}

	if udc := g.UniversalDeployer; udc != nil {
		diff.SetClassHash(udc.Address, udc.ClassHash)
		for key, value := range udc.Storage {
			diff.SetStorage(udc.Address, key, value)
		}
	}

	for addr, alloc := range g.Allocations {
		hash, ok := alloc.ClassHash()
		if !ok {
			return nil, fmt.Errorf("contract %s: %w", addr, ErrMissingClassHash)
		}
		diff.SetClassHash(addr, hash)
		if nonce := alloc.Nonce(); nonce != nil {
			diff.SetNonce(addr, *nonce)
		}
		for key, value := range alloc.Storage() {
			diff.SetStorage(addr, key, value)
		}
		if alloc.Account != nil {
			diff.SetStorage(addr, AccountPublicKeySlot, alloc.Account.PublicKey)
		}
	}
	return diff, nil
}
