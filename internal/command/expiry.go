// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/bfomaster/internal/meta"
	"github.com/staranto/bfomaster/internal/query"
)

var expiryExamples = [][2]string{
	{"bfomaster expiry SENSEX", "nearest SENSEX option expiry"},
	{"bfomaster expiry SENSEX --type next", "the expiry after that"},
	{"bfomaster expiry BANKEX -i FUTIDX --type all", "every upcoming BANKEX futures expiry"},
}

// ExpiryCommandAction prints one expiry, or every upcoming one for --type all.
func ExpiryCommandAction(ctx context.Context, cmd *cli.Command) error {
	sym, err := SymbolArg(cmd)
	if err != nil {
		return err
	}
	kind, err := query.ParseExpiryKind(cmd.String("type"))
	if err != nil {
		return err
	}

	q := OpenQuerier(ctx, cmd)
	instrument := strings.ToUpper(cmd.String("instrument"))

	if kind == query.All {
		all := q.Expiries(ctx, sym, instrument)
		if len(all) == 0 {
			return fmt.Errorf("%w: no expiries for %s %s", ErrNotFound, sym, instrument)
		}
		for _, e := range all {
			if err := Emit(cmd, e); err != nil {
				return err
			}
		}
		return nil
	}

	e, ok := q.Expiry(ctx, sym, instrument, kind)
	if !ok {
		return fmt.Errorf("%w: no %s expiry for %s %s", ErrNotFound, kind, sym, instrument)
	}
	return Emit(cmd, e)
}

func ExpiryCommandBuilder(m meta.Meta) *cli.Command {
	b := &LookupCommandBuilder{
		Name:      "expiry",
		Usage:     "upcoming expiry dates of a symbol",
		UsageText: "bfomaster expiry SYMBOL [--instrument OPTIDX] [--type near|next|far|all]",
		ArgsUsage: "SYMBOL",
		Flags: []cli.Flag{
			NameSpacedValueChainFlagFromConfigFile("expiry", cfg.Source, &cli.StringFlag{
				Name:    "instrument",
				Aliases: []string{"i"},
				Usage:   "instrument type (OPTIDX, OPTSTK, FUTIDX, FUTSTK)",
				Sources: cli.NewValueSourceChain(),
				Value:   "OPTIDX",
			}),
			&cli.StringFlag{
				Name:  "type",
				Usage: "which expiry: near, next, far or all",
				Value: "near",
				Validator: func(value string) error {
					return FlagValidators(value, ExpiryTypeValidator)
				},
			},
		},
		Examples: expiryExamples,
		Action:   ExpiryCommandAction,
		Meta:     m,
	}
	return b.Build()
}
