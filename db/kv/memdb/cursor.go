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

package memdb

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tidwall/btree"

	"github.com/erigontech/starkdb/db/kv"
)

var errNotPositioned = errors.New("memdb: cursor is not positioned")

type entry struct {
	k, v []byte
}

func lessKey(a, b entry) bool { return bytes.Compare(a.k, b.k) < 0 }

func lessDup(a, b entry) bool {
	if c := bytes.Compare(a.k, b.k); c != 0 {
		return c < 0
	}
	return bytes.Compare(a.v, b.v) < 0
}

// memCursor keeps no iterator state besides the current item, every move re-seeks the tree.
// This keeps it valid across writes made through the same transaction.
type memCursor struct {
	tx    *memTx
	table string
	tree  *btree.BTreeG[entry]
	dup   bool
	cur   entry
	valid bool
}

func (c *memCursor) less(a, b entry) bool {
	if c.dup {
		return lessDup(a, b)
	}
	return lessKey(a, b)
}

func (c *memCursor) set(e entry, ok bool) ([]byte, []byte, error) {
	if !ok {
		c.valid = false
		return nil, nil, nil
	}
	c.cur, c.valid = e, true
	return e.k, e.v, nil
}

func (c *memCursor) seekGE(pivot entry) (res entry, found bool) {
	c.tree.Ascend(pivot, func(e entry) bool {
		res, found = e, true
		return false
	})
	return res, found
}

func (c *memCursor) after(pivot entry) (res entry, found bool) {
	c.tree.Ascend(pivot, func(e entry) bool {
		if !c.less(pivot, e) {
			return true
		}
		res, found = e, true
		return false
	})
	return res, found
}

func (c *memCursor) before(pivot entry) (res entry, found bool) {
	c.tree.Descend(pivot, func(e entry) bool {
		if !c.less(e, pivot) {
			return true
		}
		res, found = e, true
		return false
	})
	return res, found
}

func (c *memCursor) First() ([]byte, []byte, error) { return c.set(c.tree.Min()) }
func (c *memCursor) Last() ([]byte, []byte, error)  { return c.set(c.tree.Max()) }

func (c *memCursor) Seek(seek []byte) ([]byte, []byte, error) {
	if len(seek) == 0 {
		return c.First()
	}
	return c.set(c.seekGE(entry{k: seek}))
}

func (c *memCursor) SeekExact(key []byte) ([]byte, []byte, error) {
	e, ok := c.seekGE(entry{k: key})
	if !ok || !bytes.Equal(e.k, key) {
		return nil, nil, nil
	}
	return c.set(e, true)
}

func (c *memCursor) Next() ([]byte, []byte, error) {
	if !c.valid {
		return c.First()
	}
	return c.set(c.after(c.cur))
}

func (c *memCursor) Prev() ([]byte, []byte, error) {
	if !c.valid {
		return c.Last()
	}
	return c.set(c.before(c.cur))
}

func (c *memCursor) Current() ([]byte, []byte, error) {
	if !c.valid {
		return nil, nil, nil
	}
	return c.cur.k, c.cur.v, nil
}

func (c *memCursor) Close() { c.valid = false }

func (c *memCursor) SeekBothExact(key, value []byte) ([]byte, []byte, error) {
	e, ok := c.tree.Get(entry{k: key, v: value})
	if !ok {
		return nil, nil, nil
	}
	return c.set(e, true)
}

func (c *memCursor) SeekBothRange(key, value []byte) ([]byte, error) {
	e, ok := c.seekGE(entry{k: key, v: value})
	if !ok || !bytes.Equal(e.k, key) {
		return nil, nil
	}
	_, v, err := c.set(e, true)
	return v, err
}

func (c *memCursor) FirstDup() ([]byte, error) {
	if !c.valid {
		return nil, nil
	}
	_, v, err := c.set(c.seekGE(entry{k: c.cur.k}))
	return v, err
}

func (c *memCursor) LastDup() ([]byte, error) {
	if !c.valid {
		return nil, nil
	}
	last, ok := c.lastDup(c.cur.k)
	_, v, err := c.set(last, ok)
	return v, err
}

func (c *memCursor) lastDup(key []byte) (last entry, found bool) {
	c.tree.Ascend(entry{k: key}, func(e entry) bool {
		if !bytes.Equal(e.k, key) {
			return false
		}
		last, found = e, true
		return true
	})
	return last, found
}

func (c *memCursor) NextDup() ([]byte, []byte, error) {
	if !c.valid {
		return nil, nil, nil
	}
	e, ok := c.after(c.cur)
	if !ok || !bytes.Equal(e.k, c.cur.k) {
		return nil, nil, nil
	}
	return c.set(e, true)
}

func (c *memCursor) NextNoDup() ([]byte, []byte, error) {
	if !c.valid {
		return c.First()
	}
	key := c.cur.k
	var res entry
	var found bool
	c.tree.Ascend(entry{k: key}, func(e entry) bool {
		if bytes.Equal(e.k, key) {
			return true
		}
		res, found = e, true
		return false
	})
	return c.set(res, found)
}

func (c *memCursor) CountDuplicates() (uint64, error) {
	if !c.valid {
		return 0, errNotPositioned
	}
	var n uint64
	c.tree.Ascend(entry{k: c.cur.k}, func(e entry) bool {
		if !bytes.Equal(e.k, c.cur.k) {
			return false
		}
		n++
		return true
	})
	return n, nil
}

func (c *memCursor) checkRw() error {
	if !c.tx.rw {
		return fmt.Errorf("%w: table %s", kv.ErrReadOnlyTx, c.table)
	}
	return nil
}

func (c *memCursor) Put(k, v []byte) error {
	if err := c.checkRw(); err != nil {
		return err
	}
	if len(k) == 0 {
		return fmt.Errorf("memdb: empty key, table %s", c.table)
	}
	e := entry{k: bytes.Clone(k), v: bytes.Clone(v)}
	if e.v == nil {
		e.v = []byte{}
	}
	c.tree.Set(e)
	c.cur, c.valid = e, true
	return nil
}

func (c *memCursor) AppendDup(k, v []byte) error {
	if last, ok := c.lastDup(k); ok && bytes.Compare(last.v, v) >= 0 {
		return fmt.Errorf("memdb: AppendDup out of order, table %s key %x", c.table, k)
	}
	return c.Put(k, v)
}

// Delete removes the key and, in DupSort tables, all of its duplicates.
func (c *memCursor) Delete(k []byte) error {
	if err := c.checkRw(); err != nil {
		return err
	}
	if !c.dup {
		c.tree.Delete(entry{k: k})
		return nil
	}
	var dups []entry
	c.tree.Ascend(entry{k: k}, func(e entry) bool {
		if !bytes.Equal(e.k, k) {
			return false
		}
		dups = append(dups, e)
		return true
	})
	for _, e := range dups {
		c.tree.Delete(e)
	}
	return nil
}

// DeleteCurrent keeps the cursor at the removed item, so Next moves to its successor.
func (c *memCursor) DeleteCurrent() error {
	if err := c.checkRw(); err != nil {
		return err
	}
	if !c.valid {
		return errNotPositioned
	}
	c.tree.Delete(c.cur)
	return nil
}

func (c *memCursor) DeleteExact(k1, k2 []byte) error {
	if err := c.checkRw(); err != nil {
		return err
	}
	c.tree.Delete(entry{k: k1, v: k2})
	return nil
}

func (c *memCursor) DeleteCurrentDuplicates() error {
	if !c.valid {
		return errNotPositioned
	}
	return c.Delete(c.cur.k)
}
