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
	"github.com/urfave/cli/v2"

	"github.com/erigontech/starkdb/turbo/logging"
)

var (
	DataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for the database",
		Value: "starkdb-data",
	}
	ConfigFlag = cli.StringFlag{
		Name:  "config",
		Usage: "Sets flags from a .toml or .yaml file, command line values take precedence",
	}
	DbMapSizeFlag = cli.StringFlag{
		Name:  "db.mapsize",
		Usage: "Upper bound of the database size, e.g. 512MB, 2TB",
		Value: "2TB",
	}
	DbGrowthStepFlag = cli.StringFlag{
		Name:  "db.growth.step",
		Usage: "Step the database file grows by",
		Value: "2GB",
	}
	MetricsAddrFlag = cli.StringFlag{
		Name:  "metrics.addr",
		Usage: "Serve prometheus metrics on this address, disabled if empty",
	}

	GenesisFlag = cli.StringFlag{
		Name:     "genesis",
		Usage:    "Genesis JSON file",
		Required: true,
	}
	AddressFlag = cli.StringFlag{
		Name:     "address",
		Usage:    "Contract address (hex)",
		Required: true,
	}
	KeyFlag = cli.StringFlag{
		Name:     "key",
		Usage:    "Storage key (hex)",
		Required: true,
	}
	BlockFlag = cli.Uint64Flag{
		Name:  "block",
		Usage: "Block to read the state at (default: the last committed block, or the newest change for nonce and classhash)",
	}
)

var globalFlags = append([]cli.Flag{
	&DataDirFlag,
	&ConfigFlag,
	&DbMapSizeFlag,
	&DbGrowthStepFlag,
	&MetricsAddrFlag,
}, logging.Flags...)
