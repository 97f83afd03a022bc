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

package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/starkdb/common/felt"
)

func TestBlockNumber(t *testing.T) {
	var c BlockNumber
	require.Equal(t, 8, c.EncodedLen())
	for _, n := range []uint64{0, 1, 1 << 32, ^uint64(0)} {
		got, err := c.Decode(c.Encode(n))
		require.NoError(t, err)
		require.Equal(t, n, got)
	}
	_, err := c.Decode([]byte{1})
	require.ErrorIs(t, err, ErrInvalidLength)
}

func TestFelt(t *testing.T) {
	var c Felt
	f := felt.MustFromHex("0x123abc")
	got, err := c.Decode(c.Encode(f))
	require.NoError(t, err)
	require.Equal(t, f, got)

	_, err = c.Decode(make([]byte, 31))
	require.ErrorIs(t, err, ErrInvalidLength)

	p := felt.Modulus().Bytes32()
	_, err = c.Decode(p[:])
	require.ErrorIs(t, err, ErrCorrupted)
}

func TestCompressedFelt(t *testing.T) {
	var c CompressedFelt
	for _, f := range []felt.Felt{felt.Zero, felt.FromUint64(1), felt.MustFromHex("0x7ff"), felt.MustFromHex("0x800000000000011000000000000000000000000000000000000000000000000")} {
		b, err := c.Compress(f)
		require.NoError(t, err)
		require.LessOrEqual(t, len(b), felt.Length)
		got, err := c.Decompress(b)
		require.NoError(t, err)
		require.Equal(t, f, got)
	}

	b, err := c.Compress(felt.Zero)
	require.NoError(t, err)
	require.Empty(t, b)

	_, err = c.Decompress(make([]byte, 33))
	require.ErrorIs(t, err, ErrCorrupted)

	p := felt.Modulus().Bytes32()
	_, err = c.Decompress(p[:])
	require.ErrorIs(t, err, ErrCorrupted)
}

func TestBlockList(t *testing.T) {
	var c BlockList
	for _, blocks := range [][]uint64{{}, {0}, {1, 5, 10}, {1, 2, 3, 4, 5, 1 << 33, 1<<33 + 1}} {
		b, err := c.Compress(blocks)
		require.NoError(t, err)
		got, err := c.Decompress(b)
		require.NoError(t, err)
		require.Len(t, got, len(blocks))
		if len(blocks) > 0 {
			require.Equal(t, blocks, got)
		}
	}

	_, err := c.Compress([]uint64{5, 5})
	require.ErrorIs(t, err, ErrCorrupted)
	_, err = c.Compress([]uint64{5, 1})
	require.ErrorIs(t, err, ErrCorrupted)

	_, err = c.Decompress([]byte{0, 0, 0})
	require.ErrorIs(t, err, ErrUnexpectedEOF)

	b, err := c.Compress([]uint64{1, 5, 10})
	require.NoError(t, err)
	_, err = c.Decompress(b[:len(b)-1])
	require.ErrorIs(t, err, ErrUnexpectedEOF)

	_, err = c.Decompress(append(b, 0))
	require.ErrorIs(t, err, ErrCorrupted)

	huge := make([]byte, 16)
	binary.LittleEndian.PutUint64(huge, 1<<62)
	_, err = c.Decompress(huge)
	require.ErrorIs(t, err, ErrCorrupted)
}

func requireBlockListError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		return
	}
	if !errors.Is(err, ErrCorrupted) && !errors.Is(err, ErrUnexpectedEOF) && !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("unexpected error kind: %v", err)
	}
}

func TestBlockListBitFlips(t *testing.T) {
	var c BlockList
	b, err := c.Compress([]uint64{1, 5, 10, 1 << 33, 1<<33 + 7, 1 << 40})
	require.NoError(t, err)
	for i := range b {
		for bit := 0; bit < 8; bit++ {
			flipped := bytes.Clone(b)
			flipped[i] ^= 1 << bit
			_, err := c.Decompress(flipped)
			requireBlockListError(t, err)
		}
	}
}

func TestZstd(t *testing.T) {
	var c Zstd
	artifact := bytes.Repeat([]byte(`{"abi":[],"entry_points_by_type":{}}`), 100)
	b, err := c.Compress(artifact)
	require.NoError(t, err)
	require.Less(t, len(b), len(artifact))
	got, err := c.Decompress(b)
	require.NoError(t, err)
	require.Equal(t, artifact, got)

	_, err = c.Decompress([]byte("not zstd"))
	require.ErrorIs(t, err, ErrCorrupted)
}

func TestFixed(t *testing.T) {
	c := Fixed[uint64]{Key: BlockNumber{}}
	b, err := c.Compress(42)
	require.NoError(t, err)
	n, err := c.Decompress(b)
	require.NoError(t, err)
	require.Equal(t, uint64(42), n)
	require.Equal(t, "BlockNumber", c.Name())
}

func FuzzBlockNumberOrder(f *testing.F) {
	f.Add(uint64(0), uint64(1))
	f.Add(uint64(255), uint64(256))
	f.Fuzz(func(t *testing.T, a, b uint64) {
		var c BlockNumber
		cmp := bytes.Compare(c.Encode(a), c.Encode(b))
		switch {
		case a < b:
			require.Negative(t, cmp)
		case a > b:
			require.Positive(t, cmp)
		default:
			require.Zero(t, cmp)
		}
	})
}

func FuzzFeltOrder(f *testing.F) {
	f.Add(uint64(1), uint64(2), uint64(3), uint64(4))
	f.Fuzz(func(t *testing.T, a0, a1, b0, b1 uint64) {
		var c Felt
		a, b := feltOf(a0, a1), feltOf(b0, b1)
		cmp := bytes.Compare(c.Encode(a), c.Encode(b))
		require.Equal(t, a.Uint256().Cmp(b.Uint256()), cmp)
	})
}

func feltOf(hi, lo uint64) felt.Felt {
	var f felt.Felt
	binary.BigEndian.PutUint64(f[16:], hi)
	binary.BigEndian.PutUint64(f[24:], lo)
	return f
}

func FuzzBlockListDecompress(f *testing.F) {
	var c BlockList
	for _, blocks := range [][]uint64{{}, {1, 5, 10}, {1, 2, 3, 1 << 33}} {
		b, err := c.Compress(blocks)
		require.NoError(f, err)
		f.Add(b)
	}
	f.Add([]byte{0, 0, 0, 0, 0, 0, 0, 0x40, 0, 0, 0, 0, 0, 0, 0, 0})
	f.Fuzz(func(t *testing.T, b []byte) {
		blocks, err := c.Decompress(b)
		requireBlockListError(t, err)
		if err == nil {
			for i := 1; i < len(blocks); i++ {
				require.Less(t, blocks[i-1], blocks[i])
			}
		}
	})
}

func FuzzBlockListRoundTrip(f *testing.F) {
	f.Add([]byte{1, 5, 10})
	f.Fuzz(func(t *testing.T, deltas []byte) {
		var blocks []uint64
		var cur uint64
		for _, d := range deltas {
			cur += uint64(d) + 1
			blocks = append(blocks, cur)
		}
		var c BlockList
		b, err := c.Compress(blocks)
		require.NoError(t, err)
		got, err := c.Decompress(b)
		require.NoError(t, err)
		require.Len(t, got, len(blocks))
		for i := range blocks {
			require.Equal(t, blocks[i], got[i])
		}
	})
}
