// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package master

import (
	"context"
	"path/filepath"
	"time"

	"github.com/apex/log"

	"github.com/staranto/bfomaster/internal/cacheutil"
	"github.com/staranto/bfomaster/internal/fetch"
	"github.com/staranto/bfomaster/internal/metrics"
	"github.com/staranto/bfomaster/internal/symbol"
)

// staleTempAge is how old an orphaned temp file must be before it is purged.
const staleTempAge = time.Hour

// Fetcher downloads the raw, un-normalized master.
type Fetcher interface {
	Fetch(ctx context.Context) (symbol.Table, error)
}

// Action describes how the memoized table was produced.
type Action string

const (
	ActionNone     Action = ""
	ActionFetched  Action = "fetched"
	ActionLoaded   Action = "loaded"
	ActionFallback Action = "fallback"
	ActionFailed   Action = "failed"
)

// Store owns the cached master file and the memoized table built from it.
// It is not safe for concurrent use.
type Store struct {
	path        string
	fetcher     Fetcher
	now         func() time.Time
	today       time.Time
	hardRefresh bool
	metrics     *metrics.Metrics

	loaded bool
	table  symbol.Table
	action Action
}

// Option customizes a Store.
type Option func(*Store)

// WithPath sets the cache file path.
func WithPath(path string) Option {
	return func(s *Store) { s.path = path }
}

// WithFetcher replaces the network fetcher.
func WithFetcher(f Fetcher) Option {
	return func(s *Store) { s.fetcher = f }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithHardRefresh forces a download on construction.
func WithHardRefresh(force bool) Option {
	return func(s *Store) { s.hardRefresh = force }
}

// WithMetrics records refresh outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New builds a Store and initializes it. Failures are logged, never returned:
// the worst case is an empty table.
func New(ctx context.Context, opts ...Option) *Store {
	s := &Store{
		path: cacheutil.MasterPath(""),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fetcher == nil {
		s.fetcher = fetch.New("")
	}
	s.today = s.now()

	s.Initialize(ctx, s.hardRefresh)
	return s
}

// Initialize evaluates the refresh policy and memoizes its result. A forced
// refresh discards any earlier result and always downloads.
func (s *Store) Initialize(ctx context.Context, forceRefresh bool) {
	if forceRefresh {
		s.loaded = false
		s.table = nil
	}
	if s.loaded {
		return
	}

	s.table, s.action = s.resolve(ctx, forceRefresh)
	s.loaded = true

	log.WithFields(log.Fields{
		"action": string(s.action),
		"rows":   len(s.table),
		"path":   s.path,
	}).Info("master ready")

	s.metrics.ObserveRefresh(string(s.action), len(s.table))
	if mt, ok := cacheutil.ModTime(s.path); ok {
		s.metrics.ObserveCache(mt)
	}
}

// Table returns the memoized master, building it on first use.
func (s *Store) Table(ctx context.Context) symbol.Table {
	if !s.loaded {
		s.Initialize(ctx, false)
	}
	return s.table
}

// Today is the calendar date the store was created on. Expiry filtering is
// relative to it.
func (s *Store) Today() time.Time {
	return s.today
}

// Path is the cache file location.
func (s *Store) Path() string {
	return s.path
}

// LastAction reports how the current table was produced.
func (s *Store) LastAction() Action {
	return s.action
}

// IsLatest reports whether the cache file was written today.
func (s *Store) IsLatest() bool {
	return cacheutil.IsFromToday(s.path, s.today)
}

// resolve applies the refresh policy:
//
//	no cache                  -> fetch, persist
//	stale cache               -> fetch, persist; load cache if the fetch fails
//	stale cache, forced       -> fetch, persist
//	today's cache             -> load
//	today's cache, forced     -> fetch, persist
func (s *Store) resolve(ctx context.Context, force bool) (symbol.Table, Action) {
	if _, exists := cacheutil.ModTime(s.path); !exists {
		log.Debugf("no master at %s", s.path)
		return s.refresh(ctx)
	}

	latest := s.IsLatest()
	switch {
	case !latest && !force:
		table, action := s.refresh(ctx)
		if action == ActionFetched {
			return table, action
		}
		log.Info("download failed, using old symbol master")
		return s.load(ActionFallback)
	case force:
		return s.refresh(ctx)
	default:
		return s.load(ActionLoaded)
	}
}

// refresh downloads, normalizes and persists the master. Only a non-empty
// table ever replaces the cache.
func (s *Store) refresh(ctx context.Context) (symbol.Table, Action) {
	start := time.Now()
	raw, err := s.fetcher.Fetch(ctx)
	s.metrics.ObserveFetch(time.Since(start), err == nil && len(raw) > 0)
	if err != nil {
		log.WithError(err).Warn("error downloading symbol master")
		return symbol.Table{}, ActionFailed
	}
	if len(raw) == 0 {
		log.Warn("downloaded symbol master is empty")
		return symbol.Table{}, ActionFailed
	}

	table := symbol.Prepare(raw)

	if err := cacheutil.Purge(filepath.Dir(s.path), staleTempAge); err != nil {
		log.WithError(err).Warn("failed to purge cache")
	}
	if err := symbol.SaveFile(s.path, table); err != nil {
		log.WithError(err).Warn("failed to write symbol master")
	}

	return table, ActionFetched
}

func (s *Store) load(action Action) (symbol.Table, Action) {
	table, err := symbol.LoadFile(s.path)
	if err != nil {
		log.WithError(err).Warnf("failed to load symbol master %s", s.path)
		return symbol.Table{}, ActionFailed
	}
	return table, action
}
