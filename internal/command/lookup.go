// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/bfomaster/internal/meta"
)

// StrikeDiffCommandAction prints the strike step of a symbol.
func StrikeDiffCommandAction(ctx context.Context, cmd *cli.Command) error {
	sym, err := SymbolArg(cmd)
	if err != nil {
		return err
	}

	diff, ok := OpenQuerier(ctx, cmd).StrikeDiff(ctx, sym)
	if !ok {
		return fmt.Errorf("%w: fewer than two strikes for %s", ErrNotFound, sym)
	}
	return Emit(cmd, diff.String())
}

// LotSizeCommandAction prints the lot size of a symbol. The symbol is
// matched exactly as typed.
func LotSizeCommandAction(ctx context.Context, cmd *cli.Command) error {
	sym, err := SymbolArg(cmd)
	if err != nil {
		return err
	}

	lot, ok := OpenQuerier(ctx, cmd).LotSize(ctx, sym)
	if !ok {
		return fmt.Errorf("%w: no lot size for %s", ErrNotFound, sym)
	}
	return Emit(cmd, lot)
}

func StrikeDiffCommandBuilder(m meta.Meta) *cli.Command {
	b := &LookupCommandBuilder{
		Name:      "strikediff",
		Usage:     "smallest gap between consecutive strikes of a symbol",
		UsageText: "bfomaster strikediff SYMBOL",
		ArgsUsage: "SYMBOL",
		Examples: [][2]string{
			{"bfomaster strikediff SENSEX", "SENSEX strike step"},
		},
		Action: StrikeDiffCommandAction,
		Meta:   m,
	}
	return b.Build()
}

func LotSizeCommandBuilder(m meta.Meta) *cli.Command {
	b := &LookupCommandBuilder{
		Name:      "lotsize",
		Usage:     "lot size of a symbol (case-sensitive)",
		UsageText: "bfomaster lotsize SYMBOL",
		ArgsUsage: "SYMBOL",
		Examples: [][2]string{
			{"bfomaster lotsize SENSEX", "SENSEX lot size"},
		},
		Action: LotSizeCommandAction,
		Meta:   m,
	}
	return b.Build()
}
