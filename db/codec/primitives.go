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
	"fmt"

	"github.com/erigontech/starkdb/common/felt"
	"github.com/erigontech/starkdb/db/kv/dbutils"
)

// BlockNumber encodes block numbers as 8 bytes big endian.
type BlockNumber struct{}

func (BlockNumber) Encode(n uint64) []byte { return dbutils.EncodeBlockNumber(n) }

func (BlockNumber) Decode(b []byte) (uint64, error) {
	if len(b) != dbutils.NumberLength {
		return 0, invalidLength("BlockNumber", dbutils.NumberLength, len(b))
	}
	return dbutils.DecodeBlockNumber(b)
}

func (BlockNumber) EncodedLen() int { return dbutils.NumberLength }
func (BlockNumber) Name() string    { return "BlockNumber" }

// Felt encodes field elements as 32 bytes big endian.
type Felt struct{}

func (Felt) Encode(f felt.Felt) []byte { return bytes.Clone(f[:]) }

func (Felt) Decode(b []byte) (felt.Felt, error) {
	if len(b) != felt.Length {
		return felt.Zero, invalidLength("Felt", felt.Length, len(b))
	}
	var f felt.Felt
	copy(f[:], b)
	if !f.Valid() {
		return felt.Zero, fmt.Errorf("Felt: %w: %x is not below the field modulus", ErrCorrupted, b)
	}
	return f, nil
}

func (Felt) EncodedLen() int { return felt.Length }
func (Felt) Name() string    { return "Felt" }

// CompressedFelt stores a field element without its leading zero bytes. Zero is stored as an empty value.
type CompressedFelt struct{}

func (CompressedFelt) Compress(f felt.Felt) ([]byte, error) {
	return bytes.Clone(bytes.TrimLeft(f[:], "\x00")), nil
}

func (CompressedFelt) Decompress(b []byte) (felt.Felt, error) {
	if len(b) > felt.Length {
		return felt.Zero, fmt.Errorf("CompressedFelt: %w: %d bytes", ErrCorrupted, len(b))
	}
	var f felt.Felt
	copy(f[felt.Length-len(b):], b)
	if !f.Valid() {
		return felt.Zero, fmt.Errorf("CompressedFelt: %w: %x is not below the field modulus", ErrCorrupted, b)
	}
	return f, nil
}

func (CompressedFelt) Name() string { return "CompressedFelt" }
