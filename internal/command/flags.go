// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os"
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/bfomaster/internal/config"
	"github.com/staranto/bfomaster/internal/fetch"
)

func init() {
	cfg, _ = config.Load("")
}

var cfg config.Type

func newSchemaFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "schema",
		Usage:       "list the master columns usable with --attrs, --filter and --sort",
		HideDefault: true,
	}
}

func newExamplesFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "examples",
		Usage:       "show example invocations",
		HideDefault: true,
	}
}

func newTldrFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
}

// NewRootFlags returns the flags every command inherits. They decide where
// the master comes from and where it is cached.
func NewRootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "hard-refresh",
			Aliases:     []string{"H"},
			Usage:       "download the master even if today's copy is cached",
			HideDefault: true,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("BFOMASTER_HARD_REFRESH"),
			),
		},
		NameSpacedValueChainFlagFromConfigFile("", cfg.Source, &cli.StringFlag{
			Name:  "url",
			Usage: "master archive location (http(s)://, s3:// or file://)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("BFOMASTER_URL"),
			),
			Value: fetch.DefaultURL,
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, URLValidator)
			},
		}),
		&cli.StringFlag{
			Name:  "cache-file",
			Usage: "cached master file, relative to the cache directory unless absolute",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("BFOMASTER_CACHE_FILE"),
				yaml.YAML("cache.file", altsrc.StringSourcer(cfg.Source)),
			),
		},
		&cli.StringFlag{
			Name:  "cache-dir",
			Usage: "cache directory",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("BFOMASTER_CACHE_DIR"),
				yaml.YAML("cache.dir", altsrc.StringSourcer(cfg.Source)),
			),
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "download timeout",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("BFOMASTER_HTTP_TIMEOUT"),
				yaml.YAML("http.timeout", altsrc.StringSourcer(cfg.Source)),
			),
		},
	}
}

// NewGlobalFlags returns the presentation flags of row-emitting commands.
// params[0] is the command name and the config namespace.
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of columns to include in results",
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"color", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("color", altsrc.StringSourcer(cfg.Source)),
			),
			Value: isTerminal(),
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml)",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"output", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("output", altsrc.StringSourcer(cfg.Source)),
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of columns to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"sort", altsrc.StringSourcer(cfg.Source)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"titles", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("titles", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
	}

	return
}

// NewContractFlags returns the flags that identify a contract next to the
// SYMBOL argument. params[0] is the command name and the config namespace.
func NewContractFlags(params ...string) []cli.Flag {
	return []cli.Flag{
		NameSpacedValueChainFlagFromConfigFile(params[0], cfg.Source, &cli.StringFlag{
			Name:    "instrument",
			Aliases: []string{"i"},
			Usage:   "instrument type (OPTIDX, OPTSTK, FUTIDX, FUTSTK)",
			Sources: cli.NewValueSourceChain(),
			Value:   "OPTIDX",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		}),
		&cli.StringFlag{
			Name:    "expiry",
			Aliases: []string{"e"},
			Usage:   "expiry as DD-MON-YYYY, e.g. 25-JAN-2024",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, ExpiryValidator)
			},
		},
		&cli.StringFlag{
			Name:    "option",
			Aliases: []string{"p"},
			Usage:   "option type (CE, PE or XX for futures)",
			Value:   "XX",
		},
		&cli.StringFlag{
			Name:  "strike",
			Usage: "strike price",
			Value: "0",
			Validator: func(value string) error {
				return FlagValidators(value, StrikeValidator)
			},
		},
	}
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain. An empty ns adds only the global
// source.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	if ns != "" {
		src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
		flag.Sources.Chain = append(flag.Sources.Chain, src)
	}

	src := yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// pathHas checks if the target executable is on the PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}

// isTerminal reports whether stdout is a terminal. Colors default to on only
// when it is.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
