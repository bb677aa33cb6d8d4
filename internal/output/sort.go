// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/staranto/bfomaster/internal/symbol"
)

type sortKey struct {
	name          string
	descending    bool
	caseSensitive bool
}

// parseSortSpec splits a --sort spec. Each key may be prefixed by - for
// descending order and ! for a case-sensitive comparison, in either order.
func parseSortSpec(spec string) []sortKey {
	var keys []sortKey
	for _, raw := range strings.Split(spec, ",") {
		k := sortKey{name: strings.TrimSpace(raw)}
		for len(k.name) > 0 && (k.name[0] == '-' || k.name[0] == '!') {
			if k.name[0] == '-' {
				k.descending = true
			} else {
				k.caseSensitive = true
			}
			k.name = k.name[1:]
		}
		if k.name != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// SortDataset sorts records in place per spec. Numbers compare numerically,
// Expiry style dates chronologically and everything else as text. Records
// that compare equal keep their order.
func SortDataset(data []map[string]interface{}, spec string) {
	keys := parseSortSpec(spec)
	if len(keys) == 0 {
		return
	}

	sort.SliceStable(data, func(i, j int) bool {
		for _, k := range keys {
			c := compareValues(data[i][k.name], data[j][k.name], k.caseSensitive)
			if c == 0 {
				continue
			}
			if k.descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compareValues(a, b interface{}, caseSensitive bool) int {
	as, bs := InterfaceToString(a), InterfaceToString(b)

	if ad, err := decimal.NewFromString(as); err == nil {
		if bd, err := decimal.NewFromString(bs); err == nil {
			return ad.Cmp(bd)
		}
	}

	if at, err := symbol.ParseExpiry(as); err == nil {
		if bt, err := symbol.ParseExpiry(bs); err == nil {
			return at.Compare(bt)
		}
	}

	if !caseSensitive {
		as, bs = strings.ToLower(as), strings.ToLower(bs)
	}
	return strings.Compare(as, bs)
}
