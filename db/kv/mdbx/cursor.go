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

package mdbx

import (
	"fmt"

	"github.com/erigontech/mdbx-go/mdbx"
)

type MdbxCursor struct {
	tx    *MdbxTx
	c     *mdbx.Cursor
	table string
	dup   bool
}

// get maps MDBX_NOTFOUND to a nil key, the end-of-data marker of kv.Cursor.
func (c *MdbxCursor) get(k, v []byte, op uint) ([]byte, []byte, error) {
	k, v, err := c.c.Get(k, v, op)
	if err != nil {
		if mdbx.IsNotFound(err) {
			return nil, nil, nil
		}
		return []byte{}, nil, fmt.Errorf("table: %s, %w", c.table, err)
	}
	return k, v, nil
}

func (c *MdbxCursor) First() ([]byte, []byte, error) { return c.get(nil, nil, mdbx.First) }
func (c *MdbxCursor) Last() ([]byte, []byte, error)  { return c.get(nil, nil, mdbx.Last) }
func (c *MdbxCursor) Next() ([]byte, []byte, error)  { return c.get(nil, nil, mdbx.Next) }
func (c *MdbxCursor) Prev() ([]byte, []byte, error)  { return c.get(nil, nil, mdbx.Prev) }

func (c *MdbxCursor) Current() ([]byte, []byte, error) {
	return c.get(nil, nil, mdbx.GetCurrent)
}

func (c *MdbxCursor) Seek(seek []byte) ([]byte, []byte, error) {
	if len(seek) == 0 {
		return c.First()
	}
	return c.get(seek, nil, mdbx.SetRange)
}

func (c *MdbxCursor) SeekExact(key []byte) ([]byte, []byte, error) {
	return c.get(key, nil, mdbx.SetKey)
}

func (c *MdbxCursor) SeekBothExact(key, value []byte) ([]byte, []byte, error) {
	return c.get(key, value, mdbx.GetBoth)
}

func (c *MdbxCursor) SeekBothRange(key, value []byte) ([]byte, error) {
	_, v, err := c.get(key, value, mdbx.GetBothRange)
	return v, err
}

func (c *MdbxCursor) FirstDup() ([]byte, error) {
	_, v, err := c.get(nil, nil, mdbx.FirstDup)
	return v, err
}

func (c *MdbxCursor) LastDup() ([]byte, error) {
	_, v, err := c.get(nil, nil, mdbx.LastDup)
	return v, err
}

func (c *MdbxCursor) NextDup() ([]byte, []byte, error) { return c.get(nil, nil, mdbx.NextDup) }

func (c *MdbxCursor) NextNoDup() ([]byte, []byte, error) { return c.get(nil, nil, mdbx.NextNoDup) }

func (c *MdbxCursor) CountDuplicates() (uint64, error) { return c.c.Count() }

func (c *MdbxCursor) Put(key, value []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("mdbx doesn't support empty keys. table: %s", c.table)
	}
	if err := c.c.Put(key, value, 0); err != nil {
		return fmt.Errorf("label: %s, table: %s, %w", c.tx.db.opts.label, c.table, err)
	}
	return nil
}

func (c *MdbxCursor) AppendDup(key, value []byte) error {
	if err := c.c.Put(key, value, mdbx.AppendDup); err != nil {
		return fmt.Errorf("label: %s, table: %s, %w", c.tx.db.opts.label, c.table, err)
	}
	return nil
}

// Delete removes the key and, in DupSort tables, all of its duplicates.
func (c *MdbxCursor) Delete(k []byte) error {
	key, _, err := c.SeekExact(k)
	if err != nil {
		return err
	}
	if key == nil {
		return nil
	}
	if c.dup {
		return c.c.Del(mdbx.AllDups)
	}
	return c.c.Del(mdbx.Current)
}

// DeleteCurrent This function deletes the key/data pair to which the cursor refers.
// This does not invalidate the cursor, so operations such as Next
// can still be used on it.
func (c *MdbxCursor) DeleteCurrent() error { return c.c.Del(mdbx.Current) }

func (c *MdbxCursor) DeleteExact(k1, k2 []byte) error {
	k, _, err := c.SeekBothExact(k1, k2)
	if err != nil {
		return err
	}
	if k == nil {
		return nil
	}
	return c.c.Del(mdbx.Current)
}

func (c *MdbxCursor) DeleteCurrentDuplicates() error { return c.c.Del(mdbx.AllDups) }

func (c *MdbxCursor) Close() {
	if c.c == nil {
		return
	}
	c.c.Close()
	c.c = nil
	c.tx.forget(c)
}
