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

package dbutils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockNumber(t *testing.T) {
	for _, n := range []uint64{0, 1, 255, 256, 1 << 40, ^uint64(0)} {
		got, err := DecodeBlockNumber(EncodeBlockNumber(n))
		require.NoError(t, err)
		require.Equal(t, n, got)
	}
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 0}, EncodeBlockNumber(256))

	_, err := DecodeBlockNumber([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrInvalidSize)
}

func TestStorageSlotKey(t *testing.T) {
	var addr, key [FeltLength]byte
	addr[31], key[0] = 1, 2
	k := StorageSlotKey(addr, key)
	require.Len(t, k, StorageSlotLength)

	a, s, err := ParseStorageSlotKey(append(k, 0xff))
	require.NoError(t, err)
	require.Equal(t, addr, a)
	require.Equal(t, key, s)

	_, _, err = ParseStorageSlotKey(k[:40])
	require.ErrorIs(t, err, ErrInvalidSize)
}
