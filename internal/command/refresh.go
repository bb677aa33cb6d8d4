// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/bfomaster/internal/cacheutil"
	"github.com/staranto/bfomaster/internal/master"
	"github.com/staranto/bfomaster/internal/meta"
	"github.com/staranto/bfomaster/internal/metrics"
)

var refreshExamples = [][2]string{
	{"bfomaster refresh", "download the master unless today's copy is cached"},
	{"bfomaster refresh --force", "download the master unconditionally"},
	{"bfomaster refresh --metrics-file /var/lib/node_exporter/bfomaster.prom", "also export refresh metrics"},
}

// RefreshCommandAction runs the refresh policy and reports its outcome.
func RefreshCommandAction(ctx context.Context, cmd *cli.Command) error {
	mx := metrics.New()

	store := OpenStore(ctx, cmd,
		master.WithMetrics(mx),
		master.WithHardRefresh(cmd.Bool("force") || cmd.Bool("hard-refresh")),
	)

	if path := cmd.String("metrics-file"); path != "" {
		if err := mx.WriteTextfile(path); err != nil {
			return err
		}
		log.Debugf("wrote metrics to %s", path)
	}

	size := "-"
	if fi, err := os.Stat(store.Path()); err == nil {
		size = humanize.Bytes(uint64(fi.Size()))
	}

	rows := len(store.Table(ctx))
	w := GetMeta(cmd).Out()
	fmt.Fprintf(w, "action  %s\n", store.LastAction())
	fmt.Fprintf(w, "rows    %s\n", humanize.Comma(int64(rows)))
	fmt.Fprintf(w, "path    %s\n", store.Path())
	fmt.Fprintf(w, "size    %s\n", size)
	fmt.Fprintf(w, "age     %s\n", cacheutil.Age(store.Path(), time.Now()))

	if store.LastAction() == master.ActionFailed {
		return fmt.Errorf("refresh failed: no symbol master available")
	}
	return nil
}

func RefreshCommandBuilder(m meta.Meta) *cli.Command {
	b := &LookupCommandBuilder{
		Name:      "refresh",
		Usage:     "download or load the symbol master and report its state",
		UsageText: "bfomaster refresh [--force] [--metrics-file PATH]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "force",
				Aliases:     []string{"F"},
				Usage:       "download even if today's copy is cached",
				HideDefault: true,
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "write Prometheus metrics in textfile format to `PATH`",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
		},
		Examples: refreshExamples,
		Action:   RefreshCommandAction,
		Meta:     m,
	}
	return b.Build()
}
