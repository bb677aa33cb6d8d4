// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/bfomaster/internal/meta"
)

var tsymExamples = [][2]string{
	{"bfomaster tsym SENSEX -i FUTIDX -e 25-JAN-2024", "SENSEX January future"},
	{"bfomaster tsym SENSEX -e 25-JAN-2024 -p CE --strike 72000", "SENSEX 72000 call"},
}

// TsymCommandAction prints the trading symbol of a contract.
func TsymCommandAction(ctx context.Context, cmd *cli.Command) error {
	sym, err := SymbolArg(cmd)
	if err != nil {
		return err
	}
	if cmd.String("expiry") == "" {
		return errors.New("tsym: --expiry is required")
	}
	c, err := ContractFromFlags(cmd, sym)
	if err != nil {
		return err
	}

	tsym, ok := OpenQuerier(ctx, cmd).TradingSymbol(ctx, c)
	if !ok {
		return fmt.Errorf("%w: no trading symbol for %s %s %s %s %s",
			ErrNotFound, sym, c.Instrument, c.Expiry, c.OptionType, c.Strike)
	}
	return Emit(cmd, tsym)
}

func TsymCommandBuilder(m meta.Meta) *cli.Command {
	b := &LookupCommandBuilder{
		Name:      "tsym",
		Usage:     "trading symbol of a contract",
		UsageText: "bfomaster tsym SYMBOL --instrument I --expiry E [--option XX] [--strike 0]",
		ArgsUsage: "SYMBOL",
		Flags:     NewContractFlags("tsym"),
		Examples:  tsymExamples,
		Action:    TsymCommandAction,
		Meta:      m,
	}
	return b.Build()
}
