// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/bfomaster/internal/filters"
	"github.com/staranto/bfomaster/internal/meta"
	"github.com/staranto/bfomaster/internal/output"
	"github.com/staranto/bfomaster/internal/symbol"
)

var searchDefaultAttrs = []string{"TradingSymbol,Token,Expiry,OptionType,StrikePrice,LotSize"}

var searchExamples = [][2]string{
	{"bfomaster search -f Symbol_1=SENSEX,Instrument=FUTIDX", "SENSEX futures"},
	{"bfomaster search -f 'TradingSymbol^SENSEX24JAN,StrikePrice>72000' -s StrikePrice -t", "January calls and puts above 72000"},
	{"bfomaster search -f Symbol_1=BANKEX -a '!LotSize,Symbol_1:root' -o json", "BANKEX rows as JSON"},
	{"bfomaster search --schema", "columns usable with --attrs, --filter and --sort"},
}

// SearchCommandAction filters the master and emits the matching rows.
func SearchCommandAction(ctx context.Context, cmd *cli.Command) error {
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(symbol.SymbolRow{})) {
		return nil
	}

	al, err := BuildAttrs(cmd, searchDefaultAttrs...)
	if err != nil {
		return err
	}
	log.Debugf("attrs: %v", al.String())

	fs := filters.BuildFilters(cmd.String("filter"))
	log.Debugf("filters: %v", fs)

	rows := OpenQuerier(ctx, cmd).Search(ctx, fs)

	return output.SliceDiceSpit(rows, al, output.OptionsFromCommand(cmd), GetMeta(cmd).Out())
}

func SearchCommandBuilder(m meta.Meta) *cli.Command {
	b := &LookupCommandBuilder{
		Name:      "search",
		Usage:     "filter, sort and print master rows",
		UsageText: "bfomaster search [--filter spec] [--attrs cols] [--sort cols] [--output text|json|yaml] [--titles] [--color]",
		Flags:     append(NewGlobalFlags("search"), newSchemaFlag()),
		Examples:  searchExamples,
		Action:    SearchCommandAction,
		Meta:      m,
	}
	return b.Build()
}
