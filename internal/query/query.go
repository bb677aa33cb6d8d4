// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/shopspring/decimal"

	"github.com/staranto/bfomaster/internal/filters"
	"github.com/staranto/bfomaster/internal/symbol"
)

// Source supplies the memoized master and the date expiries are relative to.
// *master.Store satisfies it.
type Source interface {
	Table(ctx context.Context) symbol.Table
	Today() time.Time
}

// Querier answers lookups against a Source. It never caches rows itself.
type Querier struct {
	src Source
}

// New returns a Querier reading from src.
func New(src Source) *Querier {
	return &Querier{src: src}
}

// ExpiryKind selects which upcoming expiry Expiry returns.
type ExpiryKind int

const (
	Near ExpiryKind = iota
	Next
	Far
	All
)

func (k ExpiryKind) String() string {
	switch k {
	case Near:
		return "near"
	case Next:
		return "next"
	case Far:
		return "far"
	case All:
		return "all"
	}
	return fmt.Sprintf("ExpiryKind(%d)", int(k))
}

// ParseExpiryKind maps near, next, far and all (case-insensitive) to a kind.
func ParseExpiryKind(s string) (ExpiryKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "near":
		return Near, nil
	case "next":
		return Next, nil
	case "far":
		return Far, nil
	case "all":
		return All, nil
	}
	return Near, fmt.Errorf("invalid expiry type %q: must be near, next, far or all", s)
}

// Contract identifies a single contract by its five-field key.
type Contract struct {
	Symbol     string
	Instrument string
	Expiry     string
	OptionType string
	Strike     decimal.Decimal
}

// TokenQuery selects a contract either by TradingSymbol or by Contract. A
// non-empty TradingSymbol wins.
type TokenQuery struct {
	TradingSymbol string
	Contract
}

// Expiries returns every expiry of symbol's instrument that falls on or after
// today, ascending and without duplicates. instrument defaults to OPTIDX.
func (q *Querier) Expiries(ctx context.Context, sym, instrument string) []string {
	if instrument == "" {
		instrument = symbol.OptIdx
	}
	root := strings.ToUpper(sym)
	today := truncateDay(q.src.Today())

	seen := map[time.Time]struct{}{}
	var dates []time.Time
	for _, row := range q.src.Table(ctx) {
		if row.Root != root || row.Instrument != instrument {
			continue
		}
		d, err := symbol.ParseExpiry(row.Expiry)
		if err != nil {
			log.Debugf("skipping %s: unparsable expiry %q", row.TradingSymbol, row.Expiry)
			continue
		}
		if d.Before(today) {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = symbol.FormatExpiry(d)
	}
	return out
}

// Expiry returns the near, next or far expiry. All is answered with the near
// expiry; use Expiries for the full list.
func (q *Querier) Expiry(ctx context.Context, sym, instrument string, kind ExpiryKind) (string, bool) {
	all := q.Expiries(ctx, sym, instrument)
	idx := int(kind)
	if kind == All {
		idx = 0
	}
	if idx < 0 || idx >= len(all) {
		log.Debugf("no %s expiry for %s %s (%d available)", kind, sym, instrument, len(all))
		return "", false
	}
	return all[idx], true
}

// TradingSymbol returns the trading symbol of the first row matching c.
func (q *Querier) TradingSymbol(ctx context.Context, c Contract) (string, bool) {
	row, ok := q.find(ctx, c)
	if !ok {
		return "", false
	}
	return row.TradingSymbol, true
}

// Token returns the exchange token for the contract selected by tq.
func (q *Querier) Token(ctx context.Context, tq TokenQuery) (string, bool) {
	switch {
	case tq.TradingSymbol != "":
		tsym := strings.ToUpper(tq.TradingSymbol)
		for _, row := range q.src.Table(ctx) {
			if row.TradingSymbol == tsym {
				return row.Token, true
			}
		}
		log.Debugf("no token for trading symbol %s", tsym)
		return "", false
	case tq.Symbol != "":
		row, ok := q.find(ctx, tq.Contract)
		if !ok {
			return "", false
		}
		return row.Token, true
	default:
		log.Debug("token lookup needs a trading symbol or a symbol")
		return "", false
	}
}

// StrikeDiff returns the smallest gap between consecutive distinct positive
// strikes of sym.
func (q *Querier) StrikeDiff(ctx context.Context, sym string) (decimal.Decimal, bool) {
	root := strings.ToUpper(sym)

	var strikes []decimal.Decimal
	for _, row := range q.src.Table(ctx) {
		if row.Root != root {
			continue
		}
		s, err := decimal.NewFromString(strings.TrimSpace(row.StrikePrice))
		if err != nil || !s.IsPositive() {
			continue
		}
		strikes = append(strikes, s)
	}

	sort.Slice(strikes, func(i, j int) bool { return strikes[i].LessThan(strikes[j]) })

	var (
		diff  decimal.Decimal
		found bool
	)
	for i := 1; i < len(strikes); i++ {
		d := strikes[i].Sub(strikes[i-1])
		if d.IsZero() {
			continue
		}
		if !found || d.LessThan(diff) {
			diff, found = d, true
		}
	}
	if !found {
		log.Debugf("fewer than two distinct strikes for %s", root)
	}
	return diff, found
}

// LotSize returns the lot size of the first row whose root is exactly sym.
// The symbol is compared as given, without upper-casing.
func (q *Querier) LotSize(ctx context.Context, sym string) (string, bool) {
	for _, row := range q.src.Table(ctx) {
		if row.Root == sym {
			return row.LotSize, true
		}
	}
	log.Debugf("no lot size for %s", sym)
	return "", false
}

// Search returns the rows matching every filter.
func (q *Querier) Search(ctx context.Context, fs []filters.Filter) symbol.Table {
	return filters.Apply(q.src.Table(ctx), fs)
}

// find returns the first row matching the contract key.
func (q *Querier) find(ctx context.Context, c Contract) (symbol.SymbolRow, bool) {
	root := strings.ToUpper(c.Symbol)
	opt := c.OptionType
	if opt == "" {
		opt = symbol.NoOption
	}

	for _, row := range q.src.Table(ctx) {
		if row.Root != root ||
			row.Instrument != c.Instrument ||
			row.Expiry != c.Expiry ||
			row.OptionType != opt {
			continue
		}
		strike, err := decimal.NewFromString(strings.TrimSpace(row.StrikePrice))
		if err != nil || !strike.Equal(c.Strike) {
			continue
		}
		return row, true
	}

	log.Debugf("no contract %s %s %s %s %s", root, c.Instrument, c.Expiry, opt, c.Strike)
	return symbol.SymbolRow{}, false
}

// truncateDay returns t's calendar date as UTC midnight, the form ParseExpiry
// produces.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
