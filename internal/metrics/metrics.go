// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics recorded by the master store.
type Metrics struct {
	Registry *prometheus.Registry

	RefreshTotal  *prometheus.CounterVec // labels: action
	FetchErrors   prometheus.Counter
	FetchDuration prometheus.Histogram
	Rows          prometheus.Gauge
	CacheModTime  prometheus.Gauge
}

// New registers and returns all metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bfomaster_refresh_total",
			Help: "Master initializations by outcome (fetched, loaded, fallback, failed)",
		}, []string{"action"}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bfomaster_fetch_errors_total",
			Help: "Master downloads that failed or returned no rows",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bfomaster_fetch_duration_seconds",
			Help:    "Time to download and decode the master archive",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		Rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bfomaster_rows",
			Help: "Rows in the memoized master table",
		}),
		CacheModTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bfomaster_cache_mtime_seconds",
			Help: "Unix modification time of the cached master file",
		}),
	}

	m.Registry.MustRegister(
		m.RefreshTotal,
		m.FetchErrors,
		m.FetchDuration,
		m.Rows,
		m.CacheModTime,
	)

	return m
}

// ObserveRefresh records one initialization outcome. Nil receivers are no-ops
// so callers can leave metrics unset.
func (m *Metrics) ObserveRefresh(action string, rows int) {
	if m == nil {
		return
	}
	m.RefreshTotal.WithLabelValues(action).Inc()
	m.Rows.Set(float64(rows))
}

// ObserveFetch records a download attempt.
func (m *Metrics) ObserveFetch(d time.Duration, ok bool) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
	if !ok {
		m.FetchErrors.Inc()
	}
}

// ObserveCache records the cache file's modification time.
func (m *Metrics) ObserveCache(mtime time.Time) {
	if m == nil || mtime.IsZero() {
		return
	}
	m.CacheModTime.Set(float64(mtime.Unix()))
}

// WriteTextfile writes the registry in the text exposition format, suitable
// for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
