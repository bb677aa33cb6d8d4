// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/bfomaster/internal/meta"
)

const bashCompletionScript = `# bash completion for bfomaster
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_bfomaster()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "expiry lotsize refresh search strikediff token tsym completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local root="--hard-refresh -H --url --cache-file --cache-dir --timeout --examples --tldr"
    local contract="--instrument -i --expiry -e --option -p --strike"

    case "$cmd" in
        expiry)
            local opts="$root --instrument -i --type"
            ;;
        lotsize|strikediff)
            local opts="$root"
            ;;
        refresh)
            local opts="$root --force -F --metrics-file"
            ;;
        search)
            local opts="$root --attrs -a --color -c --filter -f --output -o --sort -s --titles -t --schema"
            ;;
        token)
            local opts="$root $contract --tsym -T"
            ;;
        tsym)
            local opts="$root $contract"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$root"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
            return 0
            ;;
        --type)
            COMPREPLY=( $(compgen -W "near next far all" -- "$cur") )
            return 0
            ;;
        --instrument|-i)
            COMPREPLY=( $(compgen -W "OPTIDX OPTSTK FUTIDX FUTSTK" -- "$cur") )
            return 0
            ;;
        --option|-p)
            COMPREPLY=( $(compgen -W "CE PE XX" -- "$cur") )
            return 0
            ;;
        --cache-dir)
            COMPREPLY=( $(compgen -o dirnames -- "$cur") )
            return 0
            ;;
        --cache-file|--metrics-file)
            COMPREPLY=( $(compgen -f -- "$cur") )
            return 0
            ;;
    esac

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _bfomaster bfomaster
`

const zshCompletionScript = `#compdef bfomaster

_bfomaster() {
  local -a cmds
  cmds=(
    'expiry:upcoming expiry dates of a symbol'
    'lotsize:lot size of a symbol'
    'refresh:download or reload the symbol master'
    'search:filter, sort and print master rows'
    'strikediff:strike step of a symbol'
    'token:exchange token of a trading symbol or contract'
    'tsym:trading symbol of a contract'
    'completion:generate shell completion script'
  )

  local -a root
  root=(
  '(-H --hard-refresh)'{-H,--hard-refresh}'[download even if cached today]'
  '--url[master archive location]:url'
  '--cache-file[cached master file]:file:_files'
  '--cache-dir[cache directory]:dir:_directories'
  '--timeout[download timeout]:duration'
  '--examples[show examples]'
  '--tldr[show tldr page]'
  )

  local -a contract
  contract=(
  '(-i --instrument)'{-i,--instrument}'[instrument type]:instrument:(OPTIDX OPTSTK FUTIDX FUTSTK)'
  '(-e --expiry)'{-e,--expiry}'[expiry DD-MON-YYYY]:expiry'
  '(-p --option)'{-p,--option}'[option type]:option:(CE PE XX)'
  '--strike[strike price]:strike'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'bfomaster commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    expiry)
      _arguments -C \
        $root \
        '(-i --instrument)'{-i,--instrument}'[instrument type]:instrument:(OPTIDX OPTSTK FUTIDX FUTSTK)' \
        '--type[which expiry]:type:(near next far all)' \
        '1:SYMBOL'
      ;;
    lotsize|strikediff)
      _arguments -C $root '1:SYMBOL'
      ;;
    refresh)
      _arguments -C \
        $root \
        '(-F --force)'{-F,--force}'[always download]' \
        '--metrics-file[write metrics here]:file:_files'
      ;;
    search)
      _arguments -C \
        $root \
        '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs' \
        '(-c --color)'{-c,--color}'[enable colored text]' \
        '(-f --filter)'{-f,--filter}'[filters to apply]:filters' \
        '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)' \
        '(-s --sort)'{-s,--sort}'[sort attributes]:attrs' \
        '(-t --titles)'{-t,--titles}'[show titles]' \
        '--schema[list columns]'
      ;;
    token)
      _arguments -C $root $contract '(-T --tsym)'{-T,--tsym}'[trading symbol]:tsym' '::SYMBOL'
      ;;
    tsym)
      _arguments -C $root $contract '1:SYMBOL'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $root
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _bfomaster bfomaster
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	out := GetMeta(cmd).Out()

	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(out, bashCompletionScript)
	case "zsh":
		fmt.Fprint(out, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(out, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(out, bashCompletionScript)
		} else {
			fmt.Fprintln(os.Stderr, "usage: bfomaster completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "bfomaster completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
