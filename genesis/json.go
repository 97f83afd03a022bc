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
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/erigontech/starkdb/common/felt"
	"github.com/erigontech/starkdb/core/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Felts are hex strings. Map keys stay strings and are parsed explicitly.
type storageJSON map[string]felt.Felt

type feeTokenJSON struct {
	Name      string      `json:"name"`
	Symbol    string      `json:"symbol"`
	Decimals  uint8       `json:"decimals"`
	Address   felt.Felt   `json:"address"`
	ClassHash felt.Felt   `json:"class"`
	Storage   storageJSON `json:"storage,omitempty"`
}

type udcJSON struct {
	Address   felt.Felt   `json:"address"`
	ClassHash felt.Felt   `json:"class"`
	Storage   storageJSON `json:"storage,omitempty"`
}

type classJSON struct {
	Class     jsoniter.RawMessage `json:"class"`
	ClassHash *felt.Felt          `json:"classHash,omitempty"`
}

type accountJSON struct {
	PublicKey felt.Felt   `json:"publicKey"`
	ClassHash felt.Felt   `json:"class"`
	Nonce     *felt.Felt  `json:"nonce,omitempty"`
	Storage   storageJSON `json:"storage,omitempty"`
}

type contractJSON struct {
	ClassHash *felt.Felt  `json:"class,omitempty"`
	Nonce     *felt.Felt  `json:"nonce,omitempty"`
	Storage   storageJSON `json:"storage,omitempty"`
}

type genesisJSON struct {
	ParentHash        *felt.Felt              `json:"parentHash"`
	StateRoot         *felt.Felt              `json:"stateRoot"`
	Number            *uint64                 `json:"number"`
	Timestamp         *uint64                 `json:"timestamp"`
	SequencerAddress  *felt.Felt              `json:"sequencerAddress"`
	GasPrices         *types.GasPrices        `json:"gasPrices"`
	FeeToken          *feeTokenJSON           `json:"feeToken"`
	UniversalDeployer *udcJSON                `json:"universalDeployer,omitempty"`
	Classes           []classJSON             `json:"classes"`
	Accounts          map[string]accountJSON  `json:"accounts"`
	Contracts         map[string]contractJSON `json:"contracts"`
}

func (s storageJSON) parse() (map[types.StorageKey]types.StorageValue, error) {
	res := make(map[types.StorageKey]types.StorageValue, len(s))
	for k, v := range s {
		key, err := felt.FromHex(k)
		if err != nil {
			return nil, fmt.Errorf("storage key %q: %w", k, err)
		}
		res[key] = v
	}
	return res, nil
}

// LoadJSON parses a genesis JSON document and builds it.
func LoadJSON(data []byte) (*Genesis, error) {
	var raw genesisJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("genesis json: %w", err)
	}
	b := NewBuilder()
	if raw.ParentHash != nil {
		b.ParentHash(*raw.ParentHash)
	}
	if raw.StateRoot != nil {
		b.StateRoot(*raw.StateRoot)
	}
	if raw.Number != nil {
		b.Number(*raw.Number)
	}
	if raw.Timestamp != nil {
		b.Timestamp(*raw.Timestamp)
	}
	if raw.SequencerAddress != nil {
		b.SequencerAddress(*raw.SequencerAddress)
	}
	if raw.GasPrices != nil {
		b.GasPrices(*raw.GasPrices)
	}
	if ft := raw.FeeToken; ft != nil {
		storage, err := ft.Storage.parse()
		if err != nil {
			return nil, fmt.Errorf("fee token: %w", err)
		}
		b.FeeToken(FeeTokenConfig{
			Name: ft.Name, Symbol: ft.Symbol, Decimals: ft.Decimals,
			Address: ft.Address, ClassHash: ft.ClassHash, Storage: storage,
		})
	}
	if udc := raw.UniversalDeployer; udc != nil {
		storage, err := udc.Storage.parse()
		if err != nil {
			return nil, fmt.Errorf("universal deployer: %w", err)
		}
		b.UniversalDeployer(UniversalDeployerConfig{Address: udc.Address, ClassHash: udc.ClassHash, Storage: storage})
	}
	for _, c := range raw.Classes {
		b.AddClasses(ClassArtifact{Artifact: c.Class, Hash: c.ClassHash})
	}

	accounts := make(map[types.ContractAddress]AccountAlloc, len(raw.Accounts))
	for k, a := range raw.Accounts {
		addr, err := felt.FromHex(k)
		if err != nil {
			return nil, fmt.Errorf("account %q: %w", k, err)
		}
		storage, err := a.Storage.parse()
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", addr, err)
		}
		accounts[addr] = AccountAlloc{PublicKey: a.PublicKey, ClassHash: a.ClassHash, Nonce: a.Nonce, Storage: storage}
	}
	b.AddAccounts(accounts)

	contracts := make(map[types.ContractAddress]ContractAlloc, len(raw.Contracts))
	for k, c := range raw.Contracts {
		addr, err := felt.FromHex(k)
		if err != nil {
			return nil, fmt.Errorf("contract %q: %w", k, err)
		}
		storage, err := c.Storage.parse()
		if err != nil {
			return nil, fmt.Errorf("contract %s: %w", addr, err)
		}
		contracts[addr] = ContractAlloc{ClassHash: c.ClassHash, Nonce: c.Nonce, Storage: storage}
	}
	b.AddContracts(contracts)

	return b.Build()
}

func LoadFile(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, err := LoadJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
