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
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

type Counter interface {
	prometheus.Counter
	GetValue() float64
	AddUint64(v uint64)
}

type counter struct {
	prometheus.Counter
}

// GetValue returns native float64 value stored by this counter
func (c *counter) GetValue() float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		panic(fmt.Errorf("calling GetValue with invalid metric: %w", err))
	}
	return m.GetCounter().GetValue()
}

func (c *counter) AddUint64(v uint64) { c.Add(float64(v)) }

type Gauge interface {
	prometheus.Gauge
	GetValue() float64
	SetUint64(v uint64)
}

type gauge struct {
	prometheus.Gauge
}

func (g *gauge) GetValue() float64 {
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		panic(fmt.Errorf("calling GetValue with invalid metric: %w", err))
	}
	return m.GetGauge().GetValue()
}

func (g *gauge) SetUint64(v uint64) { g.Set(float64(v)) }

type Histogram interface {
	prometheus.Histogram
	// ObserveDuration observes the time passed since start, in seconds.
	ObserveDuration(start time.Time)
	SampleCount() uint64
}

type histogram struct {
	prometheus.Histogram
}

func (h *histogram) ObserveDuration(start time.Time) {
	h.Observe(time.Since(start).Seconds())
}

func (h *histogram) SampleCount() uint64 {
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		panic(fmt.Errorf("calling SampleCount with invalid metric: %w", err))
	}
	return m.GetHistogram().GetSampleCount()
}
