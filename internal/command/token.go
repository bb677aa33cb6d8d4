// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/bfomaster/internal/meta"
	"github.com/staranto/bfomaster/internal/query"
)

var tokenExamples = [][2]string{
	{"bfomaster token --tsym SENSEX24JAN72000CE", "token of a trading symbol"},
	{"bfomaster token SENSEX -e 25-JAN-2024 -p PE --strike 71500", "token of a contract"},
}

// TokenCommandAction prints the exchange token selected by --tsym or by
// SYMBOL plus the contract flags.
func TokenCommandAction(ctx context.Context, cmd *cli.Command) error {
	tq := query.TokenQuery{TradingSymbol: cmd.String("tsym")}

	if tq.TradingSymbol == "" {
		sym := cmd.Args().First()
		if sym == "" {
			return errors.New("token: give SYMBOL or --tsym")
		}
		c, err := ContractFromFlags(cmd, sym)
		if err != nil {
			return err
		}
		tq.Contract = c
	}

	token, ok := OpenQuerier(ctx, cmd).Token(ctx, tq)
	if !ok {
		if tq.TradingSymbol != "" {
			return fmt.Errorf("%w: no token for %s", ErrNotFound, tq.TradingSymbol)
		}
		return fmt.Errorf("%w: no token for %s %s %s %s %s", ErrNotFound,
			tq.Symbol, tq.Instrument, tq.Expiry, tq.OptionType, tq.Strike)
	}
	return Emit(cmd, token)
}

func TokenCommandBuilder(m meta.Meta) *cli.Command {
	b := &LookupCommandBuilder{
		Name:      "token",
		Usage:     "exchange token of a trading symbol or contract",
		UsageText: "bfomaster token [SYMBOL] [--tsym T] [--instrument] [--expiry] [--option] [--strike]",
		ArgsUsage: "[SYMBOL]",
		Flags: append(NewContractFlags("token"), &cli.StringFlag{
			Name:    "tsym",
			Aliases: []string{"T"},
			Usage:   "trading symbol, e.g. SENSEX24JAN72000CE",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		}),
		Examples: tokenExamples,
		Action:   TokenCommandAction,
		Meta:     m,
	}
	return b.Build()
}
