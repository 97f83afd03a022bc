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

package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/c2h5oh/datasize"
	"github.com/ledgerwatch/log/v3"
	"github.com/urfave/cli/v2"

	"github.com/erigontech/starkdb/common/felt"
	"github.com/erigontech/starkdb/core/types"
	"github.com/erigontech/starkdb/db/kv"
	"github.com/erigontech/starkdb/db/kv/mdbx"
	"github.com/erigontech/starkdb/db/state"
	"github.com/erigontech/starkdb/db/tables"
	"github.com/erigontech/starkdb/genesis"
)

var errEmptyDatabase = errors.New("no block committed yet")

var commands = []*cli.Command{
	{
		Name:   "init",
		Usage:  "Write the genesis state into a new database",
		Flags:  []cli.Flag{&GenesisFlag},
		Action: initGenesis,
	},
	{
		Name:   "nonce",
		Usage:  "Print the nonce written at --block, or the latest nonce change if --block is not set",
		Flags:  []cli.Flag{&AddressFlag, &BlockFlag},
		Action: printNonce,
	},
	{
		Name:   "classhash",
		Usage:  "Print the class hash written at --block, or the latest class hash change if --block is not set",
		Flags:  []cli.Flag{&AddressFlag, &BlockFlag},
		Action: printClassHash,
	},
	{
		Name:   "storage",
		Usage:  "Print a storage slot of a contract",
		Flags:  []cli.Flag{&AddressFlag, &KeyFlag, &BlockFlag},
		Action: printStorage,
	},
	{
		Name:   "changelist",
		Usage:  "Print the blocks at which a storage slot changed",
		Flags:  []cli.Flag{&AddressFlag, &KeyFlag},
		Action: printChangeList,
	},
	{
		Name:   "stats",
		Usage:  "Print the entry count of every table and the last committed block",
		Action: printStats,
	},
}

func openDB(cliCtx *cli.Context, readonly bool) (kv.RwDB, error) {
	var mapSize, growthStep datasize.ByteSize
	if err := mapSize.UnmarshalText([]byte(cliCtx.String(DbMapSizeFlag.Name))); err != nil {
		return nil, fmt.Errorf("--%s: %w", DbMapSizeFlag.Name, err)
	}
	if err := growthStep.UnmarshalText([]byte(cliCtx.String(DbGrowthStepFlag.Name))); err != nil {
		return nil, fmt.Errorf("--%s: %w", DbGrowthStepFlag.Name, err)
	}
	opts := mdbx.NewMDBX(log.Root()).
		Path(filepath.Join(cliCtx.String(DataDirFlag.Name), "chaindata")).
		WithTableCfg(tables.TablesCfg()).
		MapSize(mapSize).
		GrowthStep(growthStep)
	if readonly {
		opts = opts.Readonly()
	}
	return opts.Open(cliCtx.Context)
}

// latestChange picks the block to read when --block is not set: the newest change at or before the last committed block.
type latestChange func(r *state.HistoryReader, last types.BlockNumber) (types.BlockNumber, bool, error)

// withState runs fn against the state as of --block. Without --block it reads the last committed block,
// or the block latest picks if latest is not nil.
func withState(cliCtx *cli.Context, latest latestChange, fn func(p state.StateProvider) error) error {
	db, err := openDB(cliCtx, true)
	if err != nil {
		return err
	}
	defer db.Close()

	store := state.NewStateStore(db, nil, log.Root())
	if cliCtx.IsSet(BlockFlag.Name) {
		return store.View(cliCtx.Context, cliCtx.Uint64(BlockFlag.Name), fn)
	}
	last, ok, err := store.LastCommittedBlock(cliCtx.Context)
	if err != nil {
		return err
	}
	if !ok {
		return errEmptyDatabase
	}
	return store.History(cliCtx.Context, func(r *state.HistoryReader) error {
		block := last
		if latest != nil {
			at, found, err := latest(r, last)
			if err != nil {
				return err
			}
			if found {
				block = at
			}
		}
		return fn(state.NewHistoricalStateProvider(r, block))
	})
}

func feltFlag(cliCtx *cli.Context, name string) (felt.Felt, error) {
	f, err := felt.FromHex(cliCtx.String(name))
	if err != nil {
		return felt.Zero, fmt.Errorf("--%s: %w", name, err)
	}
	return f, nil
}

func initGenesis(cliCtx *cli.Context) error {
	g, err := genesis.LoadFile(cliCtx.String(GenesisFlag.Name))
	if err != nil {
		return err
	}
	db, err := openDB(cliCtx, false)
	if err != nil {
		return err
	}
	defer db.Close()
	return genesis.Write(cliCtx.Context, db, g, log.Root())
}

func printNonce(cliCtx *cli.Context) error {
	addr, err := feltFlag(cliCtx, AddressFlag.Name)
	if err != nil {
		return err
	}
	latest := func(r *state.HistoryReader, last types.BlockNumber) (types.BlockNumber, bool, error) {
		return r.LastNonceChange(addr, last)
	}
	return withState(cliCtx, latest, func(p state.StateProvider) error {
		nonce, err := p.Nonce(addr)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cliCtx.App.Writer, nonce)
		return err
	})
}

func printClassHash(cliCtx *cli.Context) error {
	addr, err := feltFlag(cliCtx, AddressFlag.Name)
	if err != nil {
		return err
	}
	latest := func(r *state.HistoryReader, last types.BlockNumber) (types.BlockNumber, bool, error) {
		return r.LastClassHashChange(addr, last)
	}
	return withState(cliCtx, latest, func(p state.StateProvider) error {
		classHash, err := p.ClassHash(addr)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cliCtx.App.Writer, classHash)
		return err
	})
}

func printStorage(cliCtx *cli.Context) error {
	addr, err := feltFlag(cliCtx, AddressFlag.Name)
	if err != nil {
		return err
	}
	key, err := feltFlag(cliCtx, KeyFlag.Name)
	if err != nil {
		return err
	}
	return withState(cliCtx, nil, func(p state.StateProvider) error {
		value, err := p.StorageAt(addr, key)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cliCtx.App.Writer, value)
		return err
	})
}

func printChangeList(cliCtx *cli.Context) error {
	addr, err := feltFlag(cliCtx, AddressFlag.Name)
	if err != nil {
		return err
	}
	key, err := feltFlag(cliCtx, KeyFlag.Name)
	if err != nil {
		return err
	}
	db, err := openDB(cliCtx, true)
	if err != nil {
		return err
	}
	defer db.Close()

	return state.NewStateStore(db, nil, log.Root()).History(cliCtx.Context, func(r *state.HistoryReader) error {
		blocks, err := r.ChangeList(addr, key)
		if err != nil {
			return err
		}
		for _, b := range blocks {
			if _, err := fmt.Fprintln(cliCtx.App.Writer, b); err != nil {
				return err
			}
		}
		return nil
	})
}

func printStats(cliCtx *cli.Context) error {
	db, err := openDB(cliCtx, true)
	if err != nil {
		return err
	}
	defer db.Close()

	counts, err := kv.CollectTableCounts(cliCtx.Context, db, kv.ChainDB)
	if err != nil {
		return err
	}
	var (
		last types.BlockNumber
		ok   bool
	)
	if err := db.View(cliCtx.Context, func(tx kv.Tx) (err error) {
		last, ok, err = state.LastCommittedBlock(tx)
		return err
	}); err != nil {
		return err
	}

	w := cliCtx.App.Writer
	for _, c := range counts {
		fmt.Fprintf(w, "%-24s %d\t%s\n", c.Name, c.Entries, tables.Registry[c.Name])
	}
	if ok {
		fmt.Fprintf(w, "last committed block: %d\n", last)
	} else {
		fmt.Fprintln(w, "last committed block: none")
	}
	return nil
}
