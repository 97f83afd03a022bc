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

// Package tables binds kv table names to typed codecs.
package tables

import (
	"bytes"
	"fmt"

	"github.com/erigontech/starkdb/core/types"
	"github.com/erigontech/starkdb/db/codec"
	"github.com/erigontech/starkdb/db/kv"
)

// Table is a plain table: one value per key.
type Table[K, V any] struct {
	Name  string
	Key   codec.KeyCodec[K]
	Value codec.ValueCodec[V]
}

func (t Table[K, V]) Get(tx kv.Getter, k K) (v V, ok bool, err error) {
	b, err := tx.GetOne(t.Name, t.Key.Encode(k))
	if err != nil || b == nil {
		return v, false, err
	}
	if v, err = t.Value.Decompress(b); err != nil {
		return v, false, fmt.Errorf("table %s: %w", t.Name, err)
	}
	return v, true, nil
}

func (t Table[K, V]) Put(tx kv.Putter, k K, v V) error {
	b, err := t.Value.Compress(v)
	if err != nil {
		return fmt.Errorf("table %s: %w", t.Name, err)
	}
	return tx.Put(t.Name, t.Key.Encode(k), b)
}

func (t Table[K, V]) Delete(tx kv.Putter, k K) error {
	return tx.Delete(t.Name, t.Key.Encode(k))
}

// ForEach walks the table in key order.
func (t Table[K, V]) ForEach(tx kv.Getter, fn func(K, V) error) error {
	return tx.ForEach(t.Name, nil, func(kb, vb []byte) error {
		k, err := t.Key.Decode(kb)
		if err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
		v, err := t.Value.Decompress(vb)
		if err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
		return fn(k, v)
	})
}

func (t Table[K, V]) Descriptor() Descriptor {
	return Descriptor{Name: t.Name, Key: t.Key, Value: t.Value}
}

// DupSortTable keeps many values per key, one per sub-key. Every encoded value starts with
// its encoded sub-key, so duplicates are ordered by sub-key.
type DupSortTable[K, SK, V any] struct {
	Name   string
	Key    codec.KeyCodec[K]
	SubKey codec.KeyCodec[SK]
	Value  codec.ValueCodec[V]
}

// Get returns the value stored under (k, sk).
func (t DupSortTable[K, SK, V]) Get(tx kv.Tx, k K, sk SK) (v V, ok bool, err error) {
	c, err := tx.CursorDupSort(t.Name)
	if err != nil {
		return v, false, err
	}
	defer c.Close()

	prefix := t.SubKey.Encode(sk)
	b, err := c.SeekBothRange(t.Key.Encode(k), prefix)
	if err != nil {
		return v, false, fmt.Errorf("table %s: %w", t.Name, err)
	}
	if b == nil || !bytes.HasPrefix(b, prefix) {
		return v, false, nil
	}
	if v, err = t.Value.Decompress(b); err != nil {
		return v, false, fmt.Errorf("table %s: %w", t.Name, err)
	}
	return v, true, nil
}

// Upsert stores v under k, replacing the value with the same sub-key if there is one.
func (t DupSortTable[K, SK, V]) Upsert(tx kv.RwTx, k K, v V) error {
	b, err := t.Value.Compress(v)
	if err != nil {
		return fmt.Errorf("table %s: %w", t.Name, err)
	}
	width := t.SubKey.EncodedLen()
	if len(b) < width {
		return fmt.Errorf("table %s: %w: value shorter than its sub-key", t.Name, codec.ErrInvalidLength)
	}

	c, err := tx.RwCursorDupSort(t.Name)
	if err != nil {
		return err
	}
	defer c.Close()

	kb, prefix := t.Key.Encode(k), b[:width]
	old, err := c.SeekBothRange(kb, prefix)
	if err != nil {
		return fmt.Errorf("table %s: %w", t.Name, err)
	}
	if old != nil && bytes.HasPrefix(old, prefix) {
		if bytes.Equal(old, b) {
			return nil
		}
		if err := c.DeleteCurrent(); err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
	}
	if err := c.Put(kb, b); err != nil {
		return fmt.Errorf("table %s: %w", t.Name, err)
	}
	return nil
}

// Walk calls fn for every value of k in sub-key order.
func (t DupSortTable[K, SK, V]) Walk(tx kv.Tx, k K, fn func(V) error) error {
	c, err := tx.CursorDupSort(t.Name)
	if err != nil {
		return err
	}
	defer c.Close()

	_, b, err := c.SeekExact(t.Key.Encode(k))
	for ; b != nil && err == nil; _, b, err = c.NextDup() {
		v, err := t.Value.Decompress(b)
		if err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	if err != nil {
		return fmt.Errorf("table %s: %w", t.Name, err)
	}
	return nil
}

// ForEach walks every (key, value) pair, keys in order and values in sub-key order.
func (t DupSortTable[K, SK, V]) ForEach(tx kv.Tx, fn func(K, V) error) error {
	return tx.ForEach(t.Name, nil, func(kb, vb []byte) error {
		k, err := t.Key.Decode(kb)
		if err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
		v, err := t.Value.Decompress(vb)
		if err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
		return fn(k, v)
	})
}

func (t DupSortTable[K, SK, V]) Descriptor() Descriptor {
	return Descriptor{Name: t.Name, Key: t.Key, SubKey: t.SubKey, Value: t.Value}
}

// LastChange walks a block-keyed table backwards from block and returns the newest value stored for sk
// at or before block, with the block it was stored at.
func LastChange[SK, V any](tx kv.Tx, t DupSortTable[types.BlockNumber, SK, V], sk SK, block types.BlockNumber) (at types.BlockNumber, v V, ok bool, err error) {
	c, err := tx.CursorDupSort(t.Name)
	if err != nil {
		return 0, v, false, err
	}
	defer c.Close()

	from := t.Key.Encode(block)
	k, _, err := c.Seek(from)
	switch {
	case err != nil:
	case k == nil:
		k, _, err = c.Last()
	case !bytes.Equal(k, from):
		k, _, err = c.Prev()
	}

	prefix := t.SubKey.Encode(sk)
	for ; k != nil && err == nil; k, _, err = c.Prev() {
		k = bytes.Clone(k)
		var b []byte
		if b, err = c.SeekBothRange(k, prefix); err != nil {
			break
		}
		if b != nil && bytes.HasPrefix(b, prefix) {
			if at, err = t.Key.Decode(k); err != nil {
				return 0, v, false, fmt.Errorf("table %s: %w", t.Name, err)
			}
			if v, err = t.Value.Decompress(b); err != nil {
				return 0, v, false, fmt.Errorf("table %s: %w", t.Name, err)
			}
			return at, v, true, nil
		}
		// back to the first value of k, Prev then moves to the last value of the previous block
		if _, _, err = c.SeekExact(k); err != nil {
			break
		}
	}
	if err != nil {
		return 0, v, false, fmt.Errorf("table %s: %w", t.Name, err)
	}
	return 0, v, false, nil
}
