// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/bfomaster/internal/config"
	"github.com/staranto/bfomaster/internal/meta"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	// The arg[1] immediately following the binary (arg[0]) is the bfomaster
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	config.Config.Namespace = ns
	cfg, _ := config.Load()

	return NewApp(meta.Meta{
		Args:    args,
		Config:  cfg,
		Context: ctx,
	}), nil
}

// NewApp returns the root command with every subcommand wired to m.
func NewApp(m meta.Meta) *cli.Command {
	app := &cli.Command{
		Name:  "bfomaster",
		Usage: "BSE F&O symbol master",
		Metadata: map[string]any{
			"meta": m,
		},
		Flags: append(NewRootFlags(),
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "bfomaster version info",
				HideDefault: true,
			},
		),
	}

	app.Commands = append(app.Commands,
		ExpiryCommandBuilder(m),
		LotSizeCommandBuilder(m),
		RefreshCommandBuilder(m),
		SearchCommandBuilder(m),
		StrikeDiffCommandBuilder(m),
		TokenCommandBuilder(m),
		TsymCommandBuilder(m),
		CompletionCommandBuilder(m),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range append(app.Commands, app) {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app
}
