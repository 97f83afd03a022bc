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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/ledgerwatch/log/v3"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/erigontech/starkdb/common/felt"
	"github.com/erigontech/starkdb/core/types"
	"github.com/erigontech/starkdb/db/kv/mdbx"
	"github.com/erigontech/starkdb/db/state"
	"github.com/erigontech/starkdb/db/tables"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := makeApp()
	app.Writer = &out
	err := app.Run(append([]string{"starkdb"}, args...))
	return strings.TrimSpace(out.String()), err
}

func TestConfigFileFillsUnsetFlags(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"config.toml": "'db.mapsize' = '64MB'\ndatadir = 'from-file'\n",
		"config.yaml": "db.mapsize: 64MB\ndatadir: from-file\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0600))

			var mapSize, datadir string
			app := makeApp()
			app.Commands = []*cli.Command{{
				Name: "show",
				Action: func(ctx *cli.Context) error {
					mapSize = ctx.String(DbMapSizeFlag.Name)
					datadir = ctx.String(DataDirFlag.Name)
					return nil
				},
			}}
			fromCli := filepath.Join(dir, "from-cli")
			require.NoError(t, app.Run([]string{"starkdb", "--config", path, "--datadir", fromCli, "show"}))
			require.Equal(t, "64MB", mapSize)
			require.Equal(t, fromCli, datadir)
		})
	}
}

func TestConfigFileUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0600))
	_, err := runApp(t, "--config", path, "stats")
	require.ErrorContains(t, err, "only accepted are .yaml and .toml")
}

func TestInitAndQuery(t *testing.T) {
	datadir := t.TempDir()
	global := []string{"--datadir", datadir, "--db.mapsize", "64MB", "--db.growth.step", "2MB", "--verbosity", "crit"}
	run := func(args ...string) string {
		out, err := runApp(t, append(global, args...)...)
		require.NoError(t, err)
		return out
	}

	_, err := runApp(t, append(global, "stats")...)
	require.Error(t, err)

	run("init", "--genesis", "../../genesis/testdata/genesis.json")

	const (
		account  = "0x66efb28ac62686966ae85095ff3a772e014e7fbf56d4c5f6fac5606d4dde23a"
		contract = "0x29873c310fbefde666dc32a1554fea6bb45eecc84f680f8a2b0a8fbb8cb89af"
	)
	require.Equal(t, "0x1", run("nonce", "--address", account))
	require.Equal(t, "0x5400e90f7e0ae78bd02c77cd75527280470e2fe19c54970dd79dc37a9d3645c", run("classhash", "--address", contract, "--block", "0"))
	require.Equal(t, "0x20", run("storage", "--address", contract, "--key", "0x10"))
	require.Equal(t, "0", run("changelist", "--address", contract, "--key", "0x10"))
	require.Empty(t, run("changelist", "--address", contract, "--key", "0x11"))

	stats := run("stats")
	require.Contains(t, stats, "last committed block: 0")
	require.Contains(t, stats, "StorageChanges")

	_, err = runApp(t, append(global, "nonce", "--address", "0xzz")...)
	require.ErrorContains(t, err, "--address")

	// genesis is block 0 again: re-running init rewrites the same block
	run("init", "--genesis", "../../genesis/testdata/genesis.json")
	require.Equal(t, "0", run("changelist", "--address", contract, "--key", "0x10"))
}

func TestNonceDefaultsToLatestChange(t *testing.T) {
	datadir := t.TempDir()
	global := []string{"--datadir", datadir, "--db.mapsize", "64MB", "--db.growth.step", "2MB", "--verbosity", "crit"}
	run := func(args ...string) string {
		out, err := runApp(t, append(global, args...)...)
		require.NoError(t, err)
		return out
	}
	run("init", "--genesis", "../../genesis/testdata/genesis.json")

	const (
		account  = "0x66efb28ac62686966ae85095ff3a772e014e7fbf56d4c5f6fac5606d4dde23a"
		contract = "0x29873c310fbefde666dc32a1554fea6bb45eecc84f680f8a2b0a8fbb8cb89af"
	)
	db := mdbx.NewMDBX(log.New()).
		Path(filepath.Join(datadir, "chaindata")).
		MapSize(64 * datasize.MB).
		GrowthStep(2 * datasize.MB).
		WithTableCfg(tables.TablesCfg()).
		MustOpen()
	diff := types.NewStateDiff()
	diff.SetStorage(felt.MustFromHex(contract), felt.FromUint64(0x10), felt.FromUint64(0x21))
	require.NoError(t, state.CommitBlock(context.Background(), db, 5, diff, log.New()))
	db.Close()

	// block 5 wrote no nonce or class hash, the genesis values are still the latest
	require.Equal(t, "0x1", run("nonce", "--address", account))
	require.Equal(t, "0x5400e90f7e0ae78bd02c77cd75527280470e2fe19c54970dd79dc37a9d3645c", run("classhash", "--address", contract))
	require.Equal(t, "0x21", run("storage", "--address", contract, "--key", "0x10"))

	// --block reads the exact block, which has no nonce change and no base state
	require.Equal(t, "0x0", run("nonce", "--address", account, "--block", "5"))
	require.Equal(t, "0x1", run("nonce", "--address", account, "--block", "0"))
}
