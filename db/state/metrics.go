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
	"github.com/erigontech/starkdb/db/kv"
	"github.com/erigontech/starkdb/metrics"
)

var (
	mxBlocksCommitted   = metrics.GetOrCreateCounter("state_blocks_committed")
	mxLastBlock         = metrics.GetOrCreateGauge("state_last_committed_block")
	mxNonceWrites       = metrics.GetOrCreateCounter(`state_entries_written{table="` + kv.NonceChanges + `"}`)
	mxClassHashWrites   = metrics.GetOrCreateCounter(`state_entries_written{table="` + kv.ContractClassChanges + `"}`)
	mxStorageWrites     = metrics.GetOrCreateCounter(`state_entries_written{table="` + kv.StorageChanges + `"}`)
	mxClassWrites       = metrics.GetOrCreateCounter(`state_entries_written{table="` + kv.Classes + `"}`)
	mxChangeListAppends = metrics.GetOrCreateCounter("state_changelist_appends")
)

const mxCommitTimer = "state_commit_seconds"
