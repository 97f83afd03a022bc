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
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	NumberLength = 8
	FeltLength   = 32
	// StorageSlotLength = address + storage key
	StorageSlotLength = 2 * FeltLength
)

// EncodeBlockNumber encodes a block number as big endian uint64
func EncodeBlockNumber(number uint64) []byte {
	enc := make([]byte, NumberLength)
	binary.BigEndian.PutUint64(enc, number)
	return enc
}

var ErrInvalidSize = errors.New("bit endian number has an invalid size")

func DecodeBlockNumber(number []byte) (uint64, error) {
	if len(number) != NumberLength {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSize, len(number))
	}
	return binary.BigEndian.Uint64(number), nil
}

// StorageSlotKey = address + storage key
func StorageSlotKey(address, key [FeltLength]byte) []byte {
	compositeKey := make([]byte, 0, StorageSlotLength)
	compositeKey = append(compositeKey, address[:]...)
	compositeKey = append(compositeKey, key[:]...)
	return compositeKey
}

// ParseStorageSlotKey splits the first StorageSlotLength bytes of k into address and storage key.
func ParseStorageSlotKey(k []byte) (address, key [FeltLength]byte, err error) {
	if len(k) < StorageSlotLength {
		return address, key, fmt.Errorf("%w: %d", ErrInvalidSize, len(k))
	}
	copy(address[:], k[:FeltLength])
	copy(key[:], k[FeltLength:StorageSlotLength])
	return address, key, nil
}
