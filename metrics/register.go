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
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultRegistry holds every metric created by this package.
var DefaultRegistry = prometheus.NewRegistry()

var defaultSet = &set{metrics: map[string]prometheus.Collector{}}

type set struct {
	mu      sync.Mutex
	metrics map[string]prometheus.Collector
}

// getOrCreate returns the collector registered under the full name (labels included) or registers a new one.
func (s *set) getOrCreate(name string, create func(opts prometheus.Opts) prometheus.Collector) (prometheus.Collector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.metrics[name]; ok {
		return c, nil
	}
	metricName, labels, err := parseMetric(name)
	if err != nil {
		return nil, err
	}
	c := create(prometheus.Opts{Name: metricName, Help: metricName, ConstLabels: labels})
	if err := DefaultRegistry.Register(c); err != nil {
		return nil, err
	}
	s.metrics[name] = c
	return c, nil
}

// GetOrCreateCounter returns registered counter with the given name
// or creates new counter if the registry doesn't contain counter with
// the given name.
//
// name must be valid Prometheus-compatible metric with possible labels.
// For instance,
//
//   - foo
//   - foo{bar="baz"}
//   - foo{bar="baz",aaa="b"}
//
// The returned counter is safe to use from concurrent goroutines.
func GetOrCreateCounter(name string) Counter {
	c, err := defaultSet.getOrCreate(name, func(opts prometheus.Opts) prometheus.Collector {
		return prometheus.NewCounter(prometheus.CounterOpts(opts))
	})
	if err != nil {
		panic(fmt.Errorf("could not get or create new counter: %w", err))
	}
	cnt, ok := c.(prometheus.Counter)
	if !ok {
		panic(fmt.Errorf("metric %s is not a counter", name))
	}
	return &counter{cnt}
}

// GetOrCreateGauge returns registered gauge with the given name
// or creates new gauge if the registry doesn't contain gauge with
// the given name.
func GetOrCreateGauge(name string) Gauge {
	c, err := defaultSet.getOrCreate(name, func(opts prometheus.Opts) prometheus.Collector {
		return prometheus.NewGauge(prometheus.GaugeOpts(opts))
	})
	if err != nil {
		panic(fmt.Errorf("could not get or create new gauge: %w", err))
	}
	g, ok := c.(prometheus.Gauge)
	if !ok {
		panic(fmt.Errorf("metric %s is not a gauge", name))
	}
	return &gauge{g}
}

// GetOrCreateHistogram returns registered histogram with the given name
// or creates new histogram if the registry doesn't contain histogram with
// the given name. Buckets are prometheus.DefBuckets, values are seconds.
func GetOrCreateHistogram(name string) Histogram {
	c, err := defaultSet.getOrCreate(name, func(opts prometheus.Opts) prometheus.Collector {
		return prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        opts.Name,
			Help:        opts.Help,
			ConstLabels: opts.ConstLabels,
			Buckets:     prometheus.DefBuckets,
		})
	})
	if err != nil {
		panic(fmt.Errorf("could not get or create new histogram: %w", err))
	}
	h, ok := c.(prometheus.Histogram)
	if !ok {
		panic(fmt.Errorf("metric %s is not a histogram", name))
	}
	return &histogram{h}
}

// Handler serves DefaultRegistry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{})
}

// parseMetric splits `foo{bar="baz",aaa="b"}` into the metric name and its labels.
func parseMetric(s string) (string, prometheus.Labels, error) {
	n := strings.IndexByte(s, '{')
	if n < 0 {
		if err := validateIdent(s); err != nil {
			return "", nil, err
		}
		return s, nil, nil
	}
	name := s[:n]
	if err := validateIdent(name); err != nil {
		return "", nil, err
	}
	rest := s[n+1:]
	if !strings.HasSuffix(rest, "}") {
		return "", nil, fmt.Errorf("missing closing curly brace at the end of %q", s)
	}
	rest = strings.TrimSuffix(rest, "}")
	labels := prometheus.Labels{}
	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq < 0 {
			return "", nil, fmt.Errorf("missing `=` after %q in %q", rest, s)
		}
		key := strings.TrimSpace(rest[:eq])
		if err := validateIdent(key); err != nil {
			return "", nil, err
		}
		rest = strings.TrimSpace(rest[eq+1:])
		if !strings.HasPrefix(rest, `"`) {
			return "", nil, fmt.Errorf("missing starting `\"` for %q value in %q", key, s)
		}
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			return "", nil, fmt.Errorf("missing trailing `\"` for %q value in %q", key, s)
		}
		labels[key] = rest[1 : end+1]
		rest = strings.TrimPrefix(strings.TrimSpace(rest[end+2:]), ",")
		rest = strings.TrimSpace(rest)
	}
	return name, labels, nil
}

func validateIdent(s string) error {
	if s == "" {
		return fmt.Errorf("empty metric identifier")
	}
	for i, r := range s {
		ok := r == '_' || r == ':' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9')
		if !ok {
			return fmt.Errorf("invalid character %q in metric identifier %q", r, s)
		}
	}
	return nil
}

// Names lists registered metrics, sorted.
func Names() []string {
	defaultSet.mu.Lock()
	defer defaultSet.mu.Unlock()
	res := make([]string, 0, len(defaultSet.metrics))
	for name := range defaultSet.metrics {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}
