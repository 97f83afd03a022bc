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

// Package codec turns typed keys and values into the bytes stored in kv tables.
//
// Key codecs are fixed width and order preserving: for any a < b,
// bytes.Compare(Encode(a), Encode(b)) < 0, so cursor order is value order.
// Value codecs may compress and may fail.
package codec

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidLength = errors.New("invalid encoded length")
	ErrCorrupted     = errors.New("corrupted encoding")
	ErrUnexpectedEOF = errors.New("unexpected end of encoded data")
)

type KeyCodec[T any] interface {
	Encode(v T) []byte
	Decode(b []byte) (T, error)
	// EncodedLen is the width of every encoded key, 0 for variable width keys.
	EncodedLen() int
	Name() string
}

type ValueCodec[T any] interface {
	Compress(v T) ([]byte, error)
	Decompress(b []byte) (T, error)
	Name() string
}

func invalidLength(name string, want, got int) error {
	return fmt.Errorf("%s: %w: want %d bytes, got %d", name, ErrInvalidLength, want, got)
}

// Fixed stores values with a key codec, uncompressed.
type Fixed[T any] struct {
	Key KeyCodec[T]
}

func (c Fixed[T]) Compress(v T) ([]byte, error)   { return c.Key.Encode(v), nil }
func (c Fixed[T]) Decompress(b []byte) (T, error) { return c.Key.Decode(b) }
func (c Fixed[T]) Name() string                   { return c.Key.Name() }

// Bytes is the identity codec. As a key it has variable width.
type Bytes struct{}

func (Bytes) Encode(v []byte) []byte              { return v }
func (Bytes) Decode(b []byte) ([]byte, error)     { return b, nil }
func (Bytes) EncodedLen() int                     { return 0 }
func (Bytes) Compress(v []byte) ([]byte, error)   { return v, nil }
func (Bytes) Decompress(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Name() string                        { return "Bytes" }

// String is a variable width key codec for human readable keys, like stage names.
type String struct{}

func (String) Encode(v string) []byte          { return []byte(v) }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
func (String) EncodedLen() int                 { return 0 }
func (String) Name() string                    { return "String" }
