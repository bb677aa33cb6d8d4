// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package output

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/staranto/bfomaster/internal/attrs"
	"github.com/staranto/bfomaster/internal/symbol"
)

func TestSortDataset(t *testing.T) {
	testData := []map[string]interface{}{
		{"tsym": "SENSEX24JAN72100CE", "strike": "72100.0", "expiry": "25-JAN-2024"},
		{"tsym": "bankex24jan50000ce", "strike": "50000.0", "expiry": "02-FEB-2024"},
		{"tsym": "SENSEX24JAN9000CE", "strike": "9000.0", "expiry": "10-JAN-2024"},
	}

	tests := []struct {
		name      string
		spec      string
		wantOrder []string
	}{
		{
			name:      "ascending text is case-insensitive",
			spec:      "tsym",
			wantOrder: []string{"bankex24jan50000ce", "SENSEX24JAN72100CE", "SENSEX24JAN9000CE"},
		},
		{
			name:      "case sensitive",
			spec:      "!tsym",
			wantOrder: []string{"SENSEX24JAN72100CE", "SENSEX24JAN9000CE", "bankex24jan50000ce"},
		},
		{
			name:      "numeric strike",
			spec:      "strike",
			wantOrder: []string{"SENSEX24JAN9000CE", "bankex24jan50000ce", "SENSEX24JAN72100CE"},
		},
		{
			name:      "descending numeric strike",
			spec:      "-strike",
			wantOrder: []string{"SENSEX24JAN72100CE", "bankex24jan50000ce", "SENSEX24JAN9000CE"},
		},
		{
			name:      "expiry is chronological",
			spec:      "expiry",
			wantOrder: []string{"SENSEX24JAN9000CE", "SENSEX24JAN72100CE", "bankex24jan50000ce"},
		},
		{
			name:      "empty spec",
			spec:      "",
			wantOrder: []string{"SENSEX24JAN72100CE", "bankex24jan50000ce", "SENSEX24JAN9000CE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]map[string]interface{}, len(testData))
			copy(data, testData)

			SortDataset(data, tt.spec)

			for i, want := range tt.wantOrder {
				assert.Equal(t, want, data[i]["tsym"], "at index %d", i)
			}
		})
	}
}

func TestSortDataset_MultipleKeys(t *testing.T) {
	data := []map[string]interface{}{
		{"root": "SENSEX", "strike": "200"},
		{"root": "BANKEX", "strike": "300"},
		{"root": "SENSEX", "strike": "100"},
	}
	SortDataset(data, "root,-strike")
	assert.Equal(t, "300", data[0]["strike"])
	assert.Equal(t, "200", data[1]["strike"])
	assert.Equal(t, "100", data[2]["strike"])
}

func TestParseSortSpec(t *testing.T) {
	got := parseSortSpec("-!a, !-b,c,,-")
	assert.Equal(t, []sortKey{
		{name: "a", descending: true, caseSensitive: true},
		{name: "b", descending: true, caseSensitive: true},
		{name: "c"},
	}, got)
}

func TestInterfaceToString(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		emptyVal string
		want     string
	}{
		{"string", "SENSEX", "", "SENSEX"},
		{"int", 42, "", "42"},
		{"float64", 0.05, "", "0.05"},
		{"bool true", true, "", "true"},
		{"nil default", nil, "", ""},
		{"nil custom", nil, "-", "-"},
		{"empty string custom", "", "-", "-"},
		{"slice", []string{"a", "b"}, "", `["a","b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			if tt.emptyVal != "" {
				got = InterfaceToString(tt.value, tt.emptyVal)
			} else {
				got = InterfaceToString(tt.value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchemaColumns(t *testing.T) {
	assert.Equal(t, symbol.Columns, SchemaColumns(reflect.TypeOf(symbol.SymbolRow{})))
}

func TestDumpSchema(t *testing.T) {
	var buf bytes.Buffer
	DumpSchema(&buf, reflect.TypeOf(symbol.SymbolRow{}))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Schema for SymbolRow --\n"))
	assert.Contains(t, out, "\nSymbol_1\n")
}

func TestDumpExamples(t *testing.T) {
	var buf bytes.Buffer
	DumpExamples(&buf, nil)
	assert.Empty(t, buf.String())

	DumpExamples(&buf, [][2]string{{"bfomaster lotsize SENSEX", "lot size of SENSEX"}})
	assert.Contains(t, buf.String(), "bfomaster lotsize SENSEX")
	assert.Contains(t, buf.String(), "Description")
}

var rows = symbol.Table{
	{Token: "2", Root: "SENSEX", TradingSymbol: "SENSEX24JAN72100CE", StrikePrice: "72100.0"},
	{Token: "1", Root: "SENSEX", TradingSymbol: "SENSEX24JAN72000CE", StrikePrice: "72000.0"},
}

func attrList(t *testing.T, spec string) attrs.AttrList {
	t.Helper()
	var al attrs.AttrList
	require.NoError(t, al.Set(spec))
	al.SetGlobalTransformSpec()
	return al
}

func TestProject(t *testing.T) {
	al := attrList(t, "TradingSymbol:tsym:l,!StrikePrice")
	got := Project(rows, al)
	require.Len(t, got, 2)
	assert.Equal(t, "sensex24jan72100ce", got[0]["tsym"])
	assert.Equal(t, "72100.0", got[0]["StrikePrice"], "hidden attrs remain for sorting")
}

func TestSliceDiceSpit_JSON(t *testing.T) {
	var buf bytes.Buffer
	al := attrList(t, "TradingSymbol,Token,!StrikePrice")

	err := SliceDiceSpit(rows, al, Options{Output: "json", Sort: "StrikePrice"}, &buf)
	require.NoError(t, err)

	var got []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []map[string]string{
		{"TradingSymbol": "SENSEX24JAN72000CE", "Token": "1"},
		{"TradingSymbol": "SENSEX24JAN72100CE", "Token": "2"},
	}, got)
}

func TestSliceDiceSpit_YAML(t *testing.T) {
	var buf bytes.Buffer
	al := attrList(t, "Token")

	require.NoError(t, SliceDiceSpit(rows, al, Options{Output: "yaml", Sort: "-Token"}, &buf))

	var got []map[string]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []map[string]string{{"Token": "2"}, {"Token": "1"}}, got)
}

func TestSliceDiceSpit_Text(t *testing.T) {
	var buf bytes.Buffer
	al := attrList(t, "TradingSymbol,Token")

	require.NoError(t, SliceDiceSpit(rows, al, Options{Output: "text", Titles: true}, &buf))

	out := buf.String()
	assert.Contains(t, out, "TradingSymbol")
	assert.Contains(t, out, "SENSEX24JAN72100CE")
	assert.Less(t, strings.Index(out, "72100"), strings.Index(out, "72000"), "unsorted input keeps its order")
}

func TestSliceDiceSpit_TextEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SliceDiceSpit(symbol.Table{}, attrList(t, "Token"), Options{}, &buf))
	assert.Empty(t, buf.String())
}
