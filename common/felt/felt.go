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

// Package felt implements the Starknet field element: an integer in [0, P)
// with P = 2^251 + 17*2^192 + 1, stored as 32 big-endian bytes.
package felt

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

const Length = 32

var (
	ErrOutOfRange = errors.New("felt: value is not below the field modulus")
	ErrTooLong    = errors.New("felt: more than 32 bytes")
)

// modulus limbs are little-endian: 2^251 + 17*2^192 + 1
var modulus = uint256.Int{1, 0, 0, 0x0800000000000011}

// Felt is a field element in canonical big-endian form.
// The zero value is the field element 0.
type Felt [Length]byte

var Zero Felt

// Modulus returns a copy of the field modulus P.
func Modulus() *uint256.Int {
	m := modulus
	return &m
}

func FromUint64(v uint64) Felt {
	var f Felt
	for i := 0; i < 8; i++ {
		f[Length-1-i] = byte(v >> (8 * i))
	}
	return f
}

// FromUint256 converts u, rejecting values >= P.
func FromUint256(u *uint256.Int) (Felt, error) {
	if !u.Lt(&modulus) {
		return Zero, ErrOutOfRange
	}
	return Felt(u.Bytes32()), nil
}

// FromBytes interprets b as a big-endian integer, left padding it to 32 bytes.
func FromBytes(b []byte) (Felt, error) {
	if len(b) > Length {
		return Zero, fmt.Errorf("%w: %d", ErrTooLong, len(b))
	}
	var f Felt
	copy(f[Length-len(b):], b)
	if !f.Valid() {
		return Zero, ErrOutOfRange
	}
	return f, nil
}

// FromHex parses a hex string with optional 0x prefix. Odd lengths and
// leading zeros are accepted.
func FromHex(s string) (Felt, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Zero, fmt.Errorf("felt: %w", err)
	}
	b = bytes.TrimLeft(b, "\x00")
	return FromBytes(b)
}

func MustFromHex(s string) Felt {
	f, err := FromHex(s)
	if err != nil {
		panic(err)
	}
	return f
}

// Valid reports whether f is below the field modulus.
func (f Felt) Valid() bool {
	var u uint256.Int
	u.SetBytes32(f[:])
	return u.Lt(&modulus)
}

func (f Felt) IsZero() bool { return f == Zero }

func (f Felt) Bytes() []byte { return f[:] }

func (f Felt) Uint256() *uint256.Int {
	return new(uint256.Int).SetBytes32(f[:])
}

// Uint64 returns the value and whether it fits into 64 bits.
func (f Felt) Uint64() (uint64, bool) {
	u := f.Uint256()
	return u.Uint64(), u.IsUint64()
}

func (f Felt) Cmp(o Felt) int { return bytes.Compare(f[:], o[:]) }

// Hex returns the shortest 0x-prefixed hex form, "0x0" for zero.
func (f Felt) Hex() string {
	s := strings.TrimLeft(hex.EncodeToString(f[:]), "0")
	if s == "" {
		s = "0"
	}
	return "0x" + s
}

func (f Felt) String() string { return f.Hex() }

func (f Felt) MarshalText() ([]byte, error) { return []byte(f.Hex()), nil }

func (f *Felt) UnmarshalText(input []byte) error {
	v, err := FromHex(string(input))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
