// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/apex/log"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"

	"github.com/staranto/bfomaster/internal/attrs"
	"github.com/staranto/bfomaster/internal/cacheutil"
	"github.com/staranto/bfomaster/internal/fetch"
	"github.com/staranto/bfomaster/internal/master"
	"github.com/staranto/bfomaster/internal/meta"
	"github.com/staranto/bfomaster/internal/output"
	"github.com/staranto/bfomaster/internal/query"
)

// ErrNotFound is returned by lookup commands when nothing matches.
var ErrNotFound = errors.New("not found")

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr bfomaster <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "bfomaster", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// ShowExamplesIfRequested prints the command's examples when --examples is
// set, and returns true if it handled the request.
func ShowExamplesIfRequested(cmd *cli.Command, examples [][2]string) bool {
	if cmd.Bool("examples") {
		output.DumpExamples(GetMeta(cmd).Out(), examples)
		return true
	}
	return false
}

// DumpSchemaIfRequested prints the columns of the provided type when
// --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema(GetMeta(cmd).Out(), t)
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (attrs.AttrList, error) {
	var al attrs.AttrList
	for _, d := range defaults {
		if err := al.Set(d); err != nil {
			return nil, err
		}
	}
	if extras := cmd.String("attrs"); extras != "" {
		if err := al.Set(extras); err != nil {
			return nil, err
		}
	}
	al.SetGlobalTransformSpec()
	return al, nil
}

// GetMeta returns the meta.Meta stored in the command's Metadata, looking up
// falling back to the root command. If missing it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil {
		return meta.Meta{}
	}
	for _, c := range []*cli.Command{cmd, cmd.Root()} {
		if c == nil || c.Metadata == nil {
			continue
		}
		if m, ok := c.Metadata["meta"].(meta.Meta); ok {
			return m
		}
	}
	return meta.Meta{}
}

// CachePath resolves the cache file from --cache-dir and --cache-file.
func CachePath(cmd *cli.Command) string {
	file := cmd.String("cache-file")
	if dir := cmd.String("cache-dir"); dir != "" && !filepath.IsAbs(file) {
		if file == "" {
			file = cacheutil.DefaultFile
		}
		return filepath.Join(dir, file)
	}
	return cacheutil.MasterPath(file)
}

// OpenStore builds the master store from the root flags. Options in extra are
// applied last.
func OpenStore(ctx context.Context, cmd *cli.Command, extra ...master.Option) *master.Store {
	m := GetMeta(cmd)

	fetcher := m.Fetcher
	if fetcher == nil {
		fetcher = fetch.New(cmd.String("url"), fetch.WithTimeout(cmd.Duration("timeout")))
	}

	opts := []master.Option{
		master.WithPath(CachePath(cmd)),
		master.WithFetcher(fetcher),
		master.WithHardRefresh(cmd.Bool("hard-refresh")),
	}
	if m.Clock != nil {
		opts = append(opts, master.WithClock(m.Clock))
	}

	return master.New(ctx, append(opts, extra...)...)
}

// OpenQuerier opens the master store and wraps it for lookups.
func OpenQuerier(ctx context.Context, cmd *cli.Command) *query.Querier {
	return query.New(OpenStore(ctx, cmd))
}

// SymbolArg returns the required SYMBOL argument.
func SymbolArg(cmd *cli.Command) (string, error) {
	sym := strings.TrimSpace(cmd.Args().First())
	if sym == "" {
		return "", fmt.Errorf("%s: SYMBOL is required", cmd.Name)
	}
	return sym, nil
}

// ContractFromFlags builds a contract for sym from the contract flags.
func ContractFromFlags(cmd *cli.Command, sym string) (query.Contract, error) {
	strike, err := decimal.NewFromString(strings.TrimSpace(cmd.String("strike")))
	if err != nil {
		return query.Contract{}, fmt.Errorf("invalid strike %q: %w", cmd.String("strike"), err)
	}
	return query.Contract{
		Symbol:     sym,
		Instrument: strings.ToUpper(cmd.String("instrument")),
		Expiry:     strings.ToUpper(cmd.String("expiry")),
		OptionType: strings.ToUpper(cmd.String("option")),
		Strike:     strike,
	}, nil
}

// Emit writes one result line.
func Emit(cmd *cli.Command, value string) error {
	_, err := fmt.Fprintln(GetMeta(cmd).Out(), value)
	return err
}

// LookupCommandBuilder constructs a cli.Command for the master subcommands
// using a consistent pattern. The builder wires metadata, adds the tldr and
// examples flags, sets up validators and short-circuits --tldr/--examples
// before Action runs.
type LookupCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	ArgsUsage string
	Flags     []cli.Flag
	Examples  [][2]string
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (b *LookupCommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      b.Name,
		Usage:     b.Usage,
		UsageText: b.UsageText,
		ArgsUsage: b.ArgsUsage,
		Metadata: map[string]any{
			"meta":     b.Meta,
			"examples": b.Examples,
		},
		Flags: append(b.Flags, newTldrFlag(), newExamplesFlag()),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			log.Debugf("Executing action for %s %v", b.Name, c.Args().Slice())

			if ShortCircuitTLDR(ctx, c, b.Name) {
				return nil
			}
			if ShowExamplesIfRequested(c, b.Examples) {
				return nil
			}
			return b.Action(ctx, c)
		},
	}
}
