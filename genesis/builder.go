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

package genesis

import (
	"fmt"
	"maps"

	jsoniter "github.com/json-iterator/go"

	"github.com/erigontech/starkdb/common/felt"
	"github.com/erigontech/starkdb/core/types"
)

// ClassArtifact is a class JSON artifact, Hash is derived from the artifact when nil.
type ClassArtifact struct {
	Artifact []byte
	Hash     *types.ClassHash
}

// Builder collects genesis parts, Build validates them.
type Builder struct {
	parentHash       *types.BlockHash
	stateRoot        *felt.Felt
	number           *types.BlockNumber
	timestamp        *uint64
	sequencerAddress *types.ContractAddress
	gasPrices        *types.GasPrices
	feeToken         *FeeTokenConfig
	udc              *UniversalDeployerConfig
	rawClasses       []ClassArtifact
	allocations      map[types.ContractAddress]Allocation
	classes          map[types.ClassHash][]byte
}

func NewBuilder() *Builder {
	return &Builder{
		allocations: map[types.ContractAddress]Allocation{},
		classes:     map[types.ClassHash][]byte{},
	}
}

// NewBuilderFrom starts from an existing genesis, every required field already set.
func NewBuilderFrom(g *Genesis) *Builder {
	b := NewBuilder().
		ParentHash(g.ParentHash).
		StateRoot(g.StateRoot).
		Number(g.Number).
		Timestamp(g.Timestamp).
		SequencerAddress(g.SequencerAddress).
		GasPrices(g.GasPrices).
		FeeToken(g.FeeToken)
	if g.UniversalDeployer != nil {
		b.UniversalDeployer(*g.UniversalDeployer)
	}
	maps.Copy(b.allocations, g.Allocations)
	maps.Copy(b.classes, g.Classes)
	return b
}

func (b *Builder) ParentHash(hash types.BlockHash) *Builder {
	b.parentHash = &hash
	return b
}

func (b *Builder) StateRoot(root felt.Felt) *Builder {
	b.stateRoot = &root
	return b
}

func (b *Builder) Number(number types.BlockNumber) *Builder {
	b.number = &number
	return b
}

func (b *Builder) Timestamp(timestamp uint64) *Builder {
	b.timestamp = &timestamp
	return b
}

func (b *Builder) SequencerAddress(addr types.ContractAddress) *Builder {
	b.sequencerAddress = &addr
	return b
}

func (b *Builder) GasPrices(prices types.GasPrices) *Builder {
	b.gasPrices = &prices
	return b
}

func (b *Builder) FeeToken(cfg FeeTokenConfig) *Builder {
	b.feeToken = &cfg
	return b
}

func (b *Builder) UniversalDeployer(cfg UniversalDeployerConfig) *Builder {
	b.udc = &cfg
	return b
}

func (b *Builder) AddClasses(classes ...ClassArtifact) *Builder {
	b.rawClasses = append(b.rawClasses, classes...)
	return b
}

func (b *Builder) AddAccounts(accounts map[types.ContractAddress]AccountAlloc) *Builder {
	for addr, alloc := range accounts {
		b.allocations[addr] = Allocation{Account: &alloc}
	}
	return b
}

func (b *Builder) AddContracts(contracts map[types.ContractAddress]ContractAlloc) *Builder {
	for addr, alloc := range contracts {
		b.allocations[addr] = Allocation{Contract: &alloc}
	}
	return b
}

// Build parses the class artifacts, checks that every allocation references a known class,
// then checks the required fields.
func (b *Builder) Build() (*Genesis, error) {
	classes := maps.Clone(b.classes)
	for i, raw := range b.rawClasses {
		hash, err := parseClassArtifact(raw)
		if err != nil {
			return nil, fmt.Errorf("class %d: %w", i, err)
		}
		if _, ok := classes[hash]; !ok {
			classes[hash] = raw.Artifact
		}
	}

	for _, addr := range types.SortedFelts(b.allocations) {
		hash, ok := b.allocations[addr].ClassHash()
		if !ok {
			return nil, fmt.Errorf("contract %s: %w", addr, ErrMissingClassHash)
		}
		if _, ok := classes[hash]; !ok {
			return nil, &UnknownClassHashError{Contract: addr, ClassHash: hash}
		}
	}

	switch {
	case b.parentHash == nil:
		return nil, ErrParentHashNotSet
	case b.stateRoot == nil:
		return nil, ErrStateRootNotSet
	case b.number == nil:
		return nil, ErrNumberNotSet
	case b.timestamp == nil:
		return nil, ErrTimestampNotSet
	case b.sequencerAddress == nil:
		return nil, ErrSequencerAddressNotSet
	case b.feeToken == nil:
		return nil, ErrFeeTokenNotSet
	case b.gasPrices == nil:
		return nil, ErrGasPricesNotSet
	}

	g := &Genesis{
		ParentHash:        *b.parentHash,
		StateRoot:         *b.stateRoot,
		Number:            *b.number,
		Timestamp:         *b.timestamp,
		SequencerAddress:  *b.sequencerAddress,
		GasPrices:         *b.gasPrices,
		FeeToken:          *b.feeToken,
		UniversalDeployer: b.udc,
		Classes:           classes,
		Allocations:       maps.Clone(b.allocations),
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// parseClassArtifact checks that the artifact is JSON and returns its hash, derived when not given.
func parseClassArtifact(c ClassArtifact) (types.ClassHash, error) {
	if !jsoniter.Valid(c.Artifact) {
		return types.ClassHash{}, ErrClassParsing
	}
	if c.Hash != nil {
		return *c.Hash, nil
	}
	return SnKeccak(c.Artifact), nil
}
