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

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/starkdb/common/felt"
)

func TestStateDiffLastWriteWins(t *testing.T) {
	addr, key := felt.FromUint64(1), felt.FromUint64(2)

	d := NewStateDiff()
	require.True(t, d.Empty())
	d.SetStorage(addr, key, felt.FromUint64(10))
	d.SetStorage(addr, key, felt.FromUint64(11))
	d.SetNonce(addr, felt.FromUint64(1))
	d.SetNonce(addr, felt.FromUint64(2))

	require.False(t, d.Empty())
	require.Equal(t, 1, d.StorageChangesCount())
	require.Equal(t, felt.FromUint64(11), d.Storage[addr][key])
	require.Equal(t, felt.FromUint64(2), d.Nonces[addr])
}

func TestStateDiffMerge(t *testing.T) {
	a, b := felt.FromUint64(1), felt.FromUint64(2)

	var d StateDiff
	d.SetStorage(a, a, felt.FromUint64(1))
	d.SetClassHash(a, felt.FromUint64(100))

	other := NewStateDiff()
	other.SetStorage(a, a, felt.FromUint64(5))
	other.SetStorage(b, a, felt.FromUint64(6))
	other.DeclareClass(felt.FromUint64(100), []byte(`{}`))

	d.Merge(other)
	require.Equal(t, 2, d.StorageChangesCount())
	require.Equal(t, felt.FromUint64(5), d.Storage[a][a])
	require.Equal(t, []byte(`{}`), d.DeclaredClasses[felt.FromUint64(100)])
}

func TestSortedFelts(t *testing.T) {
	m := map[felt.Felt]int{
		felt.FromUint64(300): 0,
		felt.FromUint64(2):   0,
		felt.FromUint64(256): 0,
	}
	require.Equal(t, []felt.Felt{felt.FromUint64(2), felt.FromUint64(256), felt.FromUint64(300)}, SortedFelts(m))
}
