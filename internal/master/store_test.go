// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package master

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/bfomaster/internal/cacheutil"
	"github.com/staranto/bfomaster/internal/fetch"
	"github.com/staranto/bfomaster/internal/metrics"
	"github.com/staranto/bfomaster/internal/symbol"
)

type fakeFetcher struct {
	table symbol.Table
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(context.Context) (symbol.Table, error) {
	f.calls++
	return f.table, f.err
}

func freshRaw() symbol.Table {
	return symbol.Table{
		{Exchange: "BFO", Token: "1151042", LotSize: "10", Symbol: "SENSEX", TradingSymbol: "SENSEX24JAN72000CE", Expiry: "25-JAN-2024", Instrument: "OPTIDX", OptionType: "CE", StrikePrice: "72000.0", TickSize: "0.05"},
		{Exchange: "BFO", Token: "845521", LotSize: "25", Symbol: "SENSEX50", TradingSymbol: "SENSEX5024JANFUT", Expiry: "25-JAN-2024", Instrument: "FUTIDX", OptionType: "XX", StrikePrice: "0.0", TickSize: "0.05"},
	}
}

func oldCache() symbol.Table {
	return symbol.Table{
		{Exchange: "BFO", Token: "1", LotSize: "10", Symbol: "BANKEX", Root: "BANKEX", TradingSymbol: "BANKEX23DECFUT", Expiry: "26-DEC-2023", Instrument: "FUTIDX", OptionType: "XX", StrikePrice: "0.0", TickSize: "0.05"},
	}
}

// writeCache persists t at path with the given modification time.
func writeCache(t *testing.T, path string, table symbol.Table, mtime time.Time) []byte {
	t.Helper()
	require.NoError(t, symbol.SaveFile(path, table))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return b
}

func cachePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), cacheutil.DefaultFile)
}

func TestStore_NoCache_FetchOK(t *testing.T) {
	path := cachePath(t)
	f := &fakeFetcher{table: freshRaw()}

	s := New(context.Background(), WithPath(path), WithFetcher(f))

	assert.Equal(t, ActionFetched, s.LastAction())
	table := s.Table(context.Background())
	require.Len(t, table, 2)
	assert.Equal(t, "SENSEX", table[0].Root)
	assert.Equal(t, "SENSEX50", table[1].Root)

	onDisk, err := symbol.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, table, onDisk)
	assert.True(t, s.IsLatest())
}

func TestStore_NoCache_FetchFails(t *testing.T) {
	path := cachePath(t)
	f := &fakeFetcher{err: errors.New("connection refused")}

	s := New(context.Background(), WithPath(path), WithFetcher(f))

	assert.Equal(t, ActionFailed, s.LastAction())
	assert.Empty(t, s.Table(context.Background()))
	assert.NoFileExists(t, path)
}

func TestStore_StaleCache_FetchOK_Overwrites(t *testing.T) {
	path := cachePath(t)
	now := time.Now()
	writeCache(t, path, oldCache(), now.AddDate(0, 0, -1))

	s := New(context.Background(), WithPath(path), WithFetcher(&fakeFetcher{table: freshRaw()}))

	assert.Equal(t, ActionFetched, s.LastAction())
	assert.Len(t, s.Table(context.Background()), 2)

	mt, ok := cacheutil.ModTime(path)
	require.True(t, ok)
	assert.True(t, cacheutil.SameDay(mt, now), "cache must be rewritten today")

	onDisk, err := symbol.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "SENSEX24JAN72000CE", onDisk[0].TradingSymbol)
}

func TestStore_StaleCache_FetchFails_FallsBack(t *testing.T) {
	path := cachePath(t)
	yesterday := time.Now().AddDate(0, 0, -1)
	before := writeCache(t, path, oldCache(), yesterday)
	beforeMT, _ := cacheutil.ModTime(path)

	s := New(context.Background(), WithPath(path), WithFetcher(&fakeFetcher{err: fetch.ErrUnsupportedFormat}))

	assert.Equal(t, ActionFallback, s.LastAction())
	assert.Equal(t, oldCache(), s.Table(context.Background()))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "cache contents must be untouched")
	afterMT, _ := cacheutil.ModTime(path)
	assert.True(t, beforeMT.Equal(afterMT), "cache mtime must be untouched")
}

func TestStore_StaleCache_EmptyFetch_FallsBack(t *testing.T) {
	path := cachePath(t)
	before := writeCache(t, path, oldCache(), time.Now().AddDate(0, 0, -2))

	s := New(context.Background(), WithPath(path), WithFetcher(&fakeFetcher{table: symbol.Table{}}))

	assert.Equal(t, ActionFallback, s.LastAction())
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_StaleCache_Forced_NoFallback(t *testing.T) {
	path := cachePath(t)
	before := writeCache(t, path, oldCache(), time.Now().AddDate(0, 0, -1))

	s := New(context.Background(), WithPath(path), WithHardRefresh(true),
		WithFetcher(&fakeFetcher{err: errors.New("timeout")}))

	assert.Equal(t, ActionFailed, s.LastAction())
	assert.Empty(t, s.Table(context.Background()))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "a failed fetch never overwrites the cache")
}

func TestStore_FreshCache_Loads(t *testing.T) {
	path := cachePath(t)
	writeCache(t, path, oldCache(), time.Now())
	f := &fakeFetcher{table: freshRaw()}

	s := New(context.Background(), WithPath(path), WithFetcher(f))

	assert.Equal(t, ActionLoaded, s.LastAction())
	assert.Equal(t, 0, f.calls)
	assert.Equal(t, oldCache(), s.Table(context.Background()))
}

func TestStore_FreshCache_Forced_Fetches(t *testing.T) {
	path := cachePath(t)
	writeCache(t, path, oldCache(), time.Now())
	f := &fakeFetcher{table: freshRaw()}

	s := New(context.Background(), WithPath(path), WithFetcher(f), WithHardRefresh(true))

	assert.Equal(t, ActionFetched, s.LastAction())
	assert.Equal(t, 1, f.calls)
	assert.Len(t, s.Table(context.Background()), 2)
}

func TestStore_Memoized(t *testing.T) {
	path := cachePath(t)
	f := &fakeFetcher{table: freshRaw()}
	ctx := context.Background()

	s := New(ctx, WithPath(path), WithFetcher(f))
	_ = s.Table(ctx)
	_ = s.Table(ctx)
	s.Initialize(ctx, false)
	assert.Equal(t, 1, f.calls)

	s.Initialize(ctx, true)
	assert.Equal(t, 2, f.calls, "a forced refresh drops the memoized table")
	assert.Equal(t, ActionFetched, s.LastAction())
}

func TestStore_UnreadableCache(t *testing.T) {
	path := cachePath(t)
	require.NoError(t, os.WriteFile(path, []byte("Exchange,Token\n\"BFO,1\n"), 0o600))

	s := New(context.Background(), WithPath(path), WithFetcher(&fakeFetcher{}))

	assert.NotPanics(t, func() { _ = s.Table(context.Background()) })
}

func TestStore_Today(t *testing.T) {
	fixed := time.Date(2024, 1, 10, 9, 15, 0, 0, time.UTC)
	s := New(context.Background(),
		WithPath(cachePath(t)),
		WithClock(func() time.Time { return fixed }),
		WithFetcher(&fakeFetcher{table: freshRaw()}))

	assert.Equal(t, fixed, s.Today())
	assert.NotEmpty(t, s.Path())
}

func TestStore_Metrics(t *testing.T) {
	m := metrics.New()
	path := cachePath(t)
	ctx := context.Background()

	s := New(ctx, WithPath(path), WithMetrics(m), WithFetcher(&fakeFetcher{table: freshRaw()}))
	s.Initialize(ctx, true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RefreshTotal.WithLabelValues(string(ActionFetched))))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Rows))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FetchErrors))
}

func TestStore_HTTPEndToEnd(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("BFO_symbols.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("Exchange,Token,LotSize,Symbol,TradingSymbol,Expiry,Instrument,OptionType,StrikePrice,TickSize,\n" +
		"BFO,1151042,10,SENSEX,SENSEX24JAN72000CE,25-JAN-2024,OPTIDX,CE,72000.0,0.05,\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	path := cachePath(t)
	writeCache(t, path, oldCache(), time.Now().AddDate(0, 0, -1))

	s := New(context.Background(), WithPath(path), WithFetcher(fetch.New(srv.URL)))

	assert.Equal(t, 1, hits)
	assert.Equal(t, ActionFetched, s.LastAction())
	table := s.Table(context.Background())
	require.Len(t, table, 1)
	assert.Equal(t, "SENSEX", table[0].Root)
	assert.True(t, s.IsLatest())
}
