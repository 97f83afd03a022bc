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

package felt

import (
	"encoding/json"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestFromHex(t *testing.T) {
	f, err := FromHex("0x1")
	require.NoError(t, err)
	require.Equal(t, FromUint64(1), f)
	require.Equal(t, "0x1", f.Hex())

	f, err = FromHex("abc")
	require.NoError(t, err)
	require.Equal(t, FromUint64(0xabc), f)

	f, err = FromHex("0x000000ff")
	require.NoError(t, err)
	require.Equal(t, FromUint64(0xff), f)

	require.Equal(t, "0x0", Zero.Hex())

	_, err = FromHex("0xzz")
	require.Error(t, err)
}

func TestModulusBoundary(t *testing.T) {
	p := Modulus()
	require.Equal(t, "0x800000000000011000000000000000000000000000000000000000000000001", p.Hex())

	_, err := FromUint256(p)
	require.ErrorIs(t, err, ErrOutOfRange)

	pMinusOne := new(uint256.Int).SubUint64(p, 1)
	f, err := FromUint256(pMinusOne)
	require.NoError(t, err)
	require.True(t, f.Valid())

	var max Felt
	for i := range max {
		max[i] = 0xff
	}
	require.False(t, max.Valid())
	_, err = FromBytes(max[:])
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = FromBytes(make([]byte, 33))
	require.ErrorIs(t, err, ErrTooLong)
}

func TestOrdering(t *testing.T) {
	a, b := FromUint64(255), FromUint64(256)
	require.Equal(t, -1, a.Cmp(b))
	require.Equal(t, 1, b.Cmp(a))
	require.Equal(t, 0, a.Cmp(FromUint64(255)))

	v, ok := b.Uint64()
	require.True(t, ok)
	require.Equal(t, uint64(256), v)
}

func TestJSON(t *testing.T) {
	type wrapper struct {
		Addr Felt `json:"addr"`
	}
	in := wrapper{Addr: MustFromHex("0x49d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7")}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	require.JSONEq(t, `{"addr":"0x49d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7"}`, string(b))

	var out wrapper
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, in, out)
}
