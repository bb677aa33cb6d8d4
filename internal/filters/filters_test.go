// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package filters

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/staranto/bfomaster/internal/symbol"
)

func TestBuildFilters(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		delimiter string
		want      []Filter
		wantCount int
	}{
		{
			name:      "empty spec",
			spec:      "",
			wantCount: 0,
		},
		{
			name:      "single exact match filter",
			spec:      "Symbol_1=SENSEX",
			wantCount: 1,
			want: []Filter{
				{Key: "Symbol_1", Operand: "=", Target: "SENSEX"},
			},
		},
		{
			name:      "prefix match filter",
			spec:      "TradingSymbol^BANKEX24",
			wantCount: 1,
			want: []Filter{
				{Key: "TradingSymbol", Operand: "^", Target: "BANKEX24"},
			},
		},
		{
			name:      "negated exact match",
			spec:      "OptionType!=XX",
			wantCount: 1,
			want: []Filter{
				{Key: "OptionType", Operand: "=", Target: "XX", Negate: true},
			},
		},
		{
			name:      "multiple filters",
			spec:      "Instrument=OPTIDX,StrikePrice>72000",
			wantCount: 2,
			want: []Filter{
				{Key: "Instrument", Operand: "=", Target: "OPTIDX"},
				{Key: "StrikePrice", Operand: ">", Target: "72000"},
			},
		},
		{
			name:      "regex operand",
			spec:      "TradingSymbol/^SENSEX.*CE$",
			wantCount: 1,
			want: []Filter{
				{Key: "TradingSymbol", Operand: "/", Target: "^SENSEX.*CE$"},
			},
		},
		{
			name:      "invalid filter skipped",
			spec:      "Symbol=SENSEX,invalid-filter,Instrument^OPT",
			wantCount: 2,
		},
		{
			name:      "custom delimiter",
			spec:      "Symbol=SENSEX|Instrument^OPT",
			delimiter: "|",
			wantCount: 2,
			want: []Filter{
				{Key: "Symbol", Operand: "=", Target: "SENSEX"},
				{Key: "Instrument", Operand: "^", Target: "OPT"},
			},
		},
		{
			name:      "empty target",
			spec:      "Expiry=",
			wantCount: 1,
			want: []Filter{
				{Key: "Expiry", Operand: "=", Target: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.delimiter != "" {
				t.Setenv("BFOMASTER_FILTER_DELIM", tt.delimiter)
			}

			got := BuildFilters(tt.spec)
			assert.Len(t, got, tt.wantCount)
			for i, filter := range tt.want {
				assert.Equal(t, filter, got[i])
			}
		})
	}
}

func TestFilterString(t *testing.T) {
	assert.Equal(t, "OptionType!=XX", Filter{Key: "OptionType", Operand: "=", Target: "XX", Negate: true}.String())
	assert.Equal(t, "Symbol^SEN", Filter{Key: "Symbol", Operand: "^", Target: "SEN"}.String())
}

func TestCheckStringOperand(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		filter Filter
		want   bool
	}{
		{"exact match true", "SENSEX", Filter{Operand: "=", Target: "SENSEX"}, true},
		{"exact match false", "SENSEX", Filter{Operand: "=", Target: "BANKEX"}, false},
		{"negated exact match", "SENSEX", Filter{Operand: "=", Target: "BANKEX", Negate: true}, true},
		{"prefix match true", "SENSEX24JAN72000CE", Filter{Operand: "^", Target: "SENSEX24"}, true},
		{"prefix match false", "BANKEX24JANFUT", Filter{Operand: "^", Target: "SENSEX"}, false},
		{"case insensitive match", "sensex", Filter{Operand: "~", Target: "SENSEX"}, true},
		{"contains true", "SENSEX24JAN72000CE", Filter{Operand: "@", Target: "JAN"}, true},
		{"negated contains", "SENSEX24FEBFUT", Filter{Operand: "@", Target: "JAN", Negate: true}, true},
		{"regex match", "SENSEX24JAN72000PE", Filter{Operand: "/", Target: `^SENSEX\d+JAN\d+PE$`}, true},
		{"invalid regex", "SENSEX", Filter{Operand: "/", Target: "[invalid"}, false},
		{"greater than string", "Z", Filter{Operand: ">", Target: "A"}, true},
		{"unsupported operand", "SENSEX", Filter{Operand: "?", Target: "SENSEX"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkStringOperand(tt.value, tt.filter))
		})
	}
}

func TestCheckNumericOperand(t *testing.T) {
	d := decimal.RequireFromString
	tests := []struct {
		name   string
		value  decimal.Decimal
		filter Filter
		want   bool
	}{
		{"equal across scale", d("72000.0"), Filter{Operand: "=", Target: "72000"}, true},
		{"not equal", d("72000.0"), Filter{Operand: "=", Target: "72100", Negate: true}, true},
		{"greater", d("72100"), Filter{Operand: ">", Target: "72000"}, true},
		{"less", d("0.05"), Filter{Operand: "<", Target: "0.1"}, true},
		{"negated less", d("5"), Filter{Operand: "<", Target: "10", Negate: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tgt, ok := toDecimal(tt.filter.Target)
			assert.True(t, ok)
			assert.Equal(t, tt.want, checkNumericOperand(tt.value, tgt, tt.filter))
		})
	}
}

func TestToDecimal(t *testing.T) {
	_, ok := toDecimal("")
	assert.False(t, ok)
	_, ok = toDecimal("SENSEX")
	assert.False(t, ok)
	v, ok := toDecimal(" 72000.0 ")
	assert.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromInt(72000)))
}

var table = symbol.Table{
	{Token: "1", Symbol: "SENSEX", Root: "SENSEX", TradingSymbol: "SENSEX24JAN72000CE", Instrument: "OPTIDX", OptionType: "CE", StrikePrice: "72000.0", LotSize: "10"},
	{Token: "2", Symbol: "SENSEX", Root: "SENSEX", TradingSymbol: "SENSEX24JAN72100PE", Instrument: "OPTIDX", OptionType: "PE", StrikePrice: "72100.0", LotSize: "10"},
	{Token: "3", Symbol: "SENSEX", Root: "SENSEX", TradingSymbol: "SENSEX24JANFUT", Instrument: "FUTIDX", OptionType: "XX", StrikePrice: "0.0", LotSize: "10"},
	{Token: "4", Symbol: "BANKEX", Root: "BANKEX", TradingSymbol: "BANKEX24JANFUT", Instrument: "FUTIDX", OptionType: "XX", StrikePrice: "0.0", LotSize: "15"},
}

func tokens(t symbol.Table) []string {
	out := []string{}
	for _, r := range t {
		out = append(out, r.Token)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want []string
	}{
		{"no filters", "", []string{"1", "2", "3", "4"}},
		{"root", "Symbol_1=SENSEX", []string{"1", "2", "3"}},
		{"numeric strike", "StrikePrice=72000", []string{"1"}},
		{"numeric greater", "StrikePrice>0", []string{"1", "2"}},
		{"options only", "OptionType!=XX", []string{"1", "2"}},
		{"combined", "Instrument=FUTIDX,LotSize>10", []string{"4"}},
		{"unknown key ignored", "Nope=1,Symbol=BANKEX", []string{"4"}},
		{"no match", "Symbol=NIFTY", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(table, BuildFilters(tt.spec))
			assert.Equal(t, tt.want, tokens(got))
		})
	}
}
