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

package metrics

import (
	"strings"
	"time"
)

type HistTimer struct {
	Histogram

	start time.Time

	name string
}

func NewHistTimer(name string) *HistTimer {
	return &HistTimer{
		Histogram: GetOrCreateHistogram(name),
		start:     time.Now(),
		name:      name,
	}
}

func (h *HistTimer) PutSince() {
	h.ObserveDuration(h.start)
}

// Child starts a timer named after this one plus suffix, so `foo` becomes `foo_suffix`.
// Labels stay at the end: `foo{a="b"}` becomes `foo_suffix{a="b"}`.
func (h *HistTimer) Child(suffix string) *HistTimer {
	suffix = strings.TrimPrefix(suffix, "_")
	if n := strings.IndexByte(h.name, '{'); n >= 0 {
		return NewHistTimer(h.name[:n] + "_" + suffix + h.name[n:])
	}
	return NewHistTimer(h.name + "_" + suffix)
}
