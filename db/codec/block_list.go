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
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// BlockList stores a strictly increasing list of block numbers as a roaring64 bitmap in portable format.
type BlockList struct{}

func (BlockList) Compress(blocks []uint64) ([]byte, error) {
	for i := 1; i < len(blocks); i++ {
		if blocks[i] <= blocks[i-1] {
			return nil, fmt.Errorf("BlockList: %w: not strictly increasing at %d: %d after %d", ErrCorrupted, i, blocks[i], blocks[i-1])
		}
	}
	bm := roaring64.BitmapOf(blocks...)
	bm.RunOptimize()
	b, err := bm.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("BlockList: %w", err)
	}
	return b, nil
}

// Decompress bounds the container count by the payload size before decoding.
func (BlockList) Decompress(b []byte) (blocks []uint64, err error) {
	const (
		header       = 8      // number of 32-bit containers, little endian
		minContainer = 4 + 8 // high 32 bits key + smallest roaring32 header
	)
	if len(b) < header {
		return nil, fmt.Errorf("BlockList: %w: %d bytes", ErrUnexpectedEOF, len(b))
	}
	if count := binary.LittleEndian.Uint64(b[:header]); count > uint64((len(b)-header)/minContainer) {
		return nil, fmt.Errorf("BlockList: %w: %d containers in %d bytes", ErrCorrupted, count, len(b))
	}
	defer func() {
		if rec := recover(); rec != nil {
			blocks, err = nil, fmt.Errorf("BlockList: %w: %v", ErrCorrupted, rec)
		}
	}()

	bm := roaring64.New()
	r := bytes.NewReader(b)
	if _, err := bm.ReadFrom(r); err != nil {
		if r.Len() == 0 || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("BlockList: %w: %w", ErrUnexpectedEOF, err)
		}
		return nil, fmt.Errorf("BlockList: %w: %w", ErrCorrupted, err)
	}
	if r.Len() > 0 {
		return nil, fmt.Errorf("BlockList: %w: %d trailing bytes", ErrCorrupted, r.Len())
	}
	blocks = bm.ToArray()
	for i := 1; i < len(blocks); i++ {
		if blocks[i] <= blocks[i-1] {
			return nil, fmt.Errorf("BlockList: %w: containers out of order", ErrCorrupted)
		}
	}
	return blocks, nil
}

func (BlockList) Name() string { return "BlockList" }
