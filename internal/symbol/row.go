// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package symbol

import (
	"regexp"
	"strings"
	"time"
)

// Instrument types published in the BFO master.
const (
	FutIdx = "FUTIDX"
	FutStk = "FUTSTK"
	OptIdx = "OPTIDX"
	OptStk = "OPTSTK"
)

// NoOption is the OptionType used by non-option contracts.
const NoOption = "XX"

// ExpiryLayout is the layout of the Expiry column, e.g. 25-JAN-2024. Output is
// upper-cased; parsing is case-insensitive.
const ExpiryLayout = "02-Jan-2006"

// sensex50 is special-cased because its root itself ends in digits.
const sensex50 = "SENSEX50"

var rootRegex = regexp.MustCompile(`^(.*?)\d`)

// Columns is the fixed column order of a normalized table.
var Columns = []string{
	"Exchange",
	"Token",
	"LotSize",
	"Symbol",
	"Symbol_1",
	"TradingSymbol",
	"Expiry",
	"Instrument",
	"OptionType",
	"StrikePrice",
	"TickSize",
}

// SymbolRow is a single contract in the master. Every column is kept as the
// published text so numbers survive the trip through the CSV cache untouched.
type SymbolRow struct {
	Exchange      string `csv:"Exchange" json:"Exchange" yaml:"Exchange"`
	Token         string `csv:"Token" json:"Token" yaml:"Token"`
	LotSize       string `csv:"LotSize" json:"LotSize" yaml:"LotSize"`
	Symbol        string `csv:"Symbol" json:"Symbol" yaml:"Symbol"`
	Root          string `csv:"Symbol_1" json:"Symbol_1" yaml:"Symbol_1"`
	TradingSymbol string `csv:"TradingSymbol" json:"TradingSymbol" yaml:"TradingSymbol"`
	Expiry        string `csv:"Expiry" json:"Expiry" yaml:"Expiry"`
	Instrument    string `csv:"Instrument" json:"Instrument" yaml:"Instrument"`
	OptionType    string `csv:"OptionType" json:"OptionType" yaml:"OptionType"`
	StrikePrice   string `csv:"StrikePrice" json:"StrikePrice" yaml:"StrikePrice"`
	TickSize      string `csv:"TickSize" json:"TickSize" yaml:"TickSize"`
}

// Field returns the value of the named column. Column names are the CSV
// headers, so Symbol_1 addresses Root.
func (r SymbolRow) Field(column string) (string, bool) {
	switch column {
	case "Exchange":
		return r.Exchange, true
	case "Token":
		return r.Token, true
	case "LotSize":
		return r.LotSize, true
	case "Symbol":
		return r.Symbol, true
	case "Symbol_1":
		return r.Root, true
	case "TradingSymbol":
		return r.TradingSymbol, true
	case "Expiry":
		return r.Expiry, true
	case "Instrument":
		return r.Instrument, true
	case "OptionType":
		return r.OptionType, true
	case "StrikePrice":
		return r.StrikePrice, true
	case "TickSize":
		return r.TickSize, true
	}
	return "", false
}

// Table is the in-memory master.
type Table []SymbolRow

// DeriveRoot returns the root symbol for a trading symbol: the characters in
// front of the first digit, or SENSEX50 when the symbol contains it. An empty
// string means no root could be extracted.
func DeriveRoot(tradingSymbol string) string {
	if strings.Contains(tradingSymbol, sensex50) {
		return sensex50
	}
	m := rootRegex.FindStringSubmatch(tradingSymbol)
	if m == nil {
		return ""
	}
	return m[1]
}

// Prepare normalizes a freshly downloaded table by deriving Root for every
// row. Rows without a derivable root are kept. The input is not modified.
func Prepare(raw Table) Table {
	out := make(Table, len(raw))
	for i, row := range raw {
		row.Root = DeriveRoot(row.TradingSymbol)
		out[i] = row
	}
	return out
}

// FormatExpiry renders a date the way the Expiry column stores it.
func FormatExpiry(t time.Time) string {
	return strings.ToUpper(t.Format(ExpiryLayout))
}

// ParseExpiry parses an Expiry column value.
func ParseExpiry(s string) (time.Time, error) {
	return time.Parse(ExpiryLayout, strings.TrimSpace(s))
}
