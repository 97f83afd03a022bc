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
	"context"
	"testing"

	"github.com/ledgerwatch/log/v3"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/starkdb/common/felt"
	"github.com/erigontech/starkdb/core/types"
	"github.com/erigontech/starkdb/db/kv"
	"github.com/erigontech/starkdb/db/kv/memdb"
	"github.com/erigontech/starkdb/db/state"
	"github.com/erigontech/starkdb/db/tables"
)

var (
	feeTokenClass = felt.MustFromHex("0xfee")
	accountClass  = felt.MustFromHex("0xacc")
	feeToken      = FeeTokenConfig{Name: "ETHER", Symbol: "ETH", Decimals: 18, Address: felt.MustFromHex("0xf00"), ClassHash: feeTokenClass}
)

func completeBuilder() *Builder {
	return NewBuilder().
		ParentHash(felt.MustFromHex("0x1")).
		StateRoot(felt.MustFromHex("0x2")).
		Number(0).
		Timestamp(1700000000).
		SequencerAddress(felt.MustFromHex("0x3")).
		GasPrices(types.GasPrices{Eth: 1, Strk: 2}).
		FeeToken(feeToken).
		AddClasses(
			ClassArtifact{Artifact: []byte(`{"name":"erc20"}`), Hash: &feeTokenClass},
			ClassArtifact{Artifact: []byte(`{"name":"account"}`), Hash: &accountClass},
		)
}

func TestBuilderRequiredFields(t *testing.T) {
	for _, tc := range []struct {
		name string
		b    *Builder
		err  error
	}{
		{"parent hash", NewBuilder(), ErrParentHashNotSet},
		{"state root", NewBuilder().ParentHash(felt.Zero), ErrStateRootNotSet},
		{"number", NewBuilder().ParentHash(felt.Zero).StateRoot(felt.Zero), ErrNumberNotSet},
		{"timestamp", NewBuilder().ParentHash(felt.Zero).StateRoot(felt.Zero).Number(0), ErrTimestampNotSet},
		{"sequencer", NewBuilder().ParentHash(felt.Zero).StateRoot(felt.Zero).Number(0).Timestamp(0), ErrSequencerAddressNotSet},
		{"fee token", NewBuilder().ParentHash(felt.Zero).StateRoot(felt.Zero).Number(0).Timestamp(0).SequencerAddress(felt.Zero), ErrFeeTokenNotSet},
		{"gas prices", NewBuilder().ParentHash(felt.Zero).StateRoot(felt.Zero).Number(0).Timestamp(0).SequencerAddress(felt.Zero).FeeToken(feeToken), ErrGasPricesNotSet},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.b.Build()
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestBuilderClasses(t *testing.T) {
	artifact := []byte(`{"abi":[]}`)
	g, err := completeBuilder().AddClasses(ClassArtifact{Artifact: artifact}).Build()
	require.NoError(t, err)
	require.Len(t, g.Classes, 3)
	require.Equal(t, artifact, g.Classes[SnKeccak(artifact)])
	require.True(t, SnKeccak(artifact).Valid())

	_, err = completeBuilder().AddClasses(ClassArtifact{Artifact: []byte(`{not json`)}).Build()
	require.ErrorIs(t, err, ErrClassParsing)
}

func TestBuilderAllocations(t *testing.T) {
	unknown := felt.MustFromHex("0xdead")
	contract := felt.MustFromHex("0xc0")
	_, err := completeBuilder().AddContracts(map[types.ContractAddress]ContractAlloc{contract: {ClassHash: &unknown}}).Build()
	require.ErrorIs(t, err, ErrUnknownClassHash)
	var unknownErr *UnknownClassHashError
	require.ErrorAs(t, err, &unknownErr)
	require.Equal(t, contract, unknownErr.Contract)
	require.Equal(t, unknown, unknownErr.ClassHash)

	_, err = completeBuilder().AddContracts(map[types.ContractAddress]ContractAlloc{contract: {}}).Build()
	require.ErrorIs(t, err, ErrMissingClassHash)

	// allocations are checked before required fields
	_, err = NewBuilder().AddAccounts(map[types.ContractAddress]AccountAlloc{contract: {ClassHash: unknown}}).Build()
	require.ErrorIs(t, err, ErrUnknownClassHash)
}

func TestNewBuilderFrom(t *testing.T) {
	g, err := completeBuilder().Build()
	require.NoError(t, err)

	g2, err := NewBuilderFrom(g).Number(7).Build()
	require.NoError(t, err)
	require.Equal(t, types.BlockNumber(7), g2.Number)
	require.Equal(t, g.Classes, g2.Classes)
	require.Equal(t, g.FeeToken, g2.FeeToken)
}

func TestWriteInvalidGenesisWritesNothing(t *testing.T) {
	db := memdb.NewTestDB(t, tables.TablesCfg())
	ctx := context.Background()

	g, err := completeBuilder().Build()
	require.NoError(t, err)
	unknown := felt.MustFromHex("0xdead")
	g.Allocations[felt.MustFromHex("0xc0")] = Allocation{Contract: &ContractAlloc{ClassHash: &unknown}}

	require.ErrorIs(t, Write(ctx, db, g, log.New()), ErrUnknownClassHash)
	require.NoError(t, db.View(ctx, func(tx kv.Tx) error {
		for _, table := range tables.Registry.Names() {
			n, err := tx.Count(table)
			require.NoError(t, err)
			require.Zero(t, n, table)
		}
		return nil
	}))
}

func TestLoadAndWrite(t *testing.T) {
	g, err := LoadFile("testdata/genesis.json")
	require.NoError(t, err)
	require.Len(t, g.Classes, 3)
	require.Len(t, g.Allocations, 2)
	require.Equal(t, types.GasPrices{Eth: 1111, Strk: 2222}, g.GasPrices)

	db := memdb.NewTestDB(t, tables.TablesCfg())
	ctx := context.Background()
	require.NoError(t, Write(ctx, db, g, log.New()))

	account := felt.MustFromHex("0x66efb28ac62686966ae85095ff3a772e014e7fbf56d4c5f6fac5606d4dde23a")
	contract := felt.MustFromHex("0x29873c310fbefde666dc32a1554fea6bb45eecc84f680f8a2b0a8fbb8cb89af")
	accountClassHash := felt.MustFromHex("0x5400e90f7e0ae78bd02c77cd75527280470e2fe19c54970dd79dc37a9d3645c")

	s := state.NewStateStore(db, nil, log.New())
	require.NoError(t, s.View(ctx, 0, func(p state.StateProvider) error {
		nonce, err := p.Nonce(account)
		require.NoError(t, err)
		require.Equal(t, felt.FromUint64(1), nonce)

		ch, err := p.ClassHash(contract)
		require.NoError(t, err)
		require.Equal(t, accountClassHash, ch)

		pub, err := p.StorageAt(account, AccountPublicKeySlot)
		require.NoError(t, err)
		require.Equal(t, felt.FromUint64(1), pub)

		v, err := p.StorageAt(contract, felt.FromUint64(0x10))
		require.NoError(t, err)
		require.Equal(t, felt.FromUint64(0x20), v)

		symbol, err := p.StorageAt(g.FeeToken.Address, ERC20SymbolSlot)
		require.NoError(t, err)
		require.Equal(t, felt.MustFromHex("0x455448"), symbol)

		artifact, ok, err := p.Class(accountClassHash)
		require.NoError(t, err)
		require.True(t, ok)
		require.JSONEq(t, `{"abi": [], "name": "account"}`, string(artifact))
		return nil
	}))

	last, ok, err := s.LastCommittedBlock(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, last)
}

func TestShortString(t *testing.T) {
	f, err := ShortString("ETH")
	require.NoError(t, err)
	require.Equal(t, felt.MustFromHex("0x455448"), f)

	_, err = ShortString("this string is way too long for a felt")
	require.Error(t, err)
}
