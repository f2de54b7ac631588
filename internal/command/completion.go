// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/stackctl/stackctl/internal/meta"
)

const bashCompletionScript = `# bash completion for stackctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_stackctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "validate functions layers package deploy outputs diff run completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
  local common="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t --tldr"

    # Determine if an optional RootDir (first non-flag after subcommand) has
			# already been provided
    local have_rootdir=0
    local idx=2
    while [[ $idx -lt ${#COMP_WORDS[@]} ]]; do
        local w=${COMP_WORDS[$idx]}
        if [[ $w != -* ]]; then
            have_rootdir=1
            break
        fi
        ((idx++))
    done

    case "$cmd" in
    validate)
      local opts="$common --schema --template -T"
            ;;
        functions)
      local opts="$common --schema --template -T --param"
            ;;
        layers)
      local opts="$common --schema --pipeline -p --profile --region --layer --cache-hours --no-cache"
            ;;
        package)
      local opts="$common --schema --template -T --bucket -b --profile --region --prefix --write"
            ;;
        deploy)
      local opts="$common --schema --stack -n --template -T --bucket -b --profile --region --prefix --param --layer --capability --wait -w --guided -g --cache-hours --no-cache"
            ;;
        outputs)
      local opts="$common --schema --stack -n --profile --region"
            ;;
        diff)
      local opts="$common --stack -n --template -T --profile --region --diff_filter --pager --changesets"
            ;;
        run)
      local opts="--pipeline -p --profile --cache-hours --no-cache --tldr"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

  # If current token starts with '-', or we've already consumed RootDir, offer flags
  if [[ "$cur" == -* || $have_rootdir -eq 1 ]]; then
    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
  fi

  # Otherwise, we're on the (optional) RootDir positional — complete directories
  COMPREPLY=( $(compgen -o dirnames -- "$cur") )
  return 0
}

complete -F _stackctl stackctl
`

const zshCompletionScript = `#compdef stackctl

_stackctl() {
  local -a cmds
  cmds=(
    'validate:validate the template'
    'functions:list the template functions'
    'layers:resolve latest layer versions'
    'package:upload function code to the artifact bucket'
    'deploy:deploy the template through a changeset'
    'outputs:list the deployed stack outputs'
    'diff:diff the local template against the deployed stack'
    'run:execute a pipeline branch locally'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'stackctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    validate)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '(-T --template)'{-T,--template}'[template file]:file:_files' \
        '::RootDir:_directories'
      ;;
    functions)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '(-T --template)'{-T,--template}'[template file]:file:_files' \
        '--param[Key=Value parameter override]:param' \
        '::RootDir:_directories'
      ;;
    layers)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '(-p --pipeline)'{-p,--pipeline}'[pipeline definition]:file:_files' \
        '--profile[AWS profile]:profile' \
        '--region[AWS region]:region' \
        '--layer[ParamName=layer-name]:layer' \
        '--cache-hours[cache lifetime in hours]:hours' \
        '--no-cache[bypass the layer version cache]' \
        '::RootDir:_directories'
      ;;
    package)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '(-T --template)'{-T,--template}'[template file]:file:_files' \
        '(-b --bucket)'{-b,--bucket}'[artifact bucket]:bucket' \
        '--profile[AWS profile]:profile' \
        '--region[AWS region]:region' \
        '--prefix[artifact key prefix]:prefix' \
        '--write[write the rewritten template]:file:_files' \
        '::RootDir:_directories'
      ;;
    deploy)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '(-n --stack)'{-n,--stack}'[stack name]:stack' \
        '(-T --template)'{-T,--template}'[template file]:file:_files' \
        '(-b --bucket)'{-b,--bucket}'[artifact bucket]:bucket' \
        '--profile[AWS profile]:profile' \
        '--region[AWS region]:region' \
        '--prefix[artifact key prefix]:prefix' \
        '--param[Key=Value parameter override]:param' \
        '--layer[ParamName=layer-name]:layer' \
        '--capability[capability to acknowledge]:capability' \
        '(-w --wait)'{-w,--wait}'[block until the operation completes]' \
        '(-g --guided)'{-g,--guided}'[prompt for missing parameters]' \
        '--cache-hours[cache lifetime in hours]:hours' \
        '--no-cache[bypass the layer version cache]' \
        '::RootDir:_directories'
      ;;
    outputs)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '(-n --stack)'{-n,--stack}'[stack name]:stack' \
        '--profile[AWS profile]:profile' \
        '--region[AWS region]:region' \
        '::RootDir:_directories'
      ;;
    diff)
      _arguments -C \
        $common \
        '(-n --stack)'{-n,--stack}'[stack name]:stack' \
        '(-T --template)'{-T,--template}'[template file]:file:_files' \
        '--profile[AWS profile]:profile' \
        '--region[AWS region]:region' \
        '--diff_filter[keys to drop from diff context]:keys' \
        '--pager[page long diff output]' \
        '--changesets[browse the stack changesets]' \
        '::RootDir:_directories'
      ;;
    run)
      _arguments -C \
        '(-p --pipeline)'{-p,--pipeline}'[pipeline definition]:file:_files' \
        '--profile[AWS profile]:profile' \
        '--cache-hours[cache lifetime in hours]:hours' \
        '--no-cache[bypass the layer version cache]' \
        '1:branch'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common '*:directory:_directories'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _stackctl stackctl stackctl
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(os.Stdout, bashCompletionScript)
	case "zsh":
		fmt.Fprint(os.Stdout, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			fmt.Fprint(os.Stdout, zshCompletionScript)
		case strings.HasSuffix(sh, "bash"):
			fmt.Fprint(os.Stdout, bashCompletionScript)
		default:
			fmt.Fprintln(os.Stderr, "usage: stackctl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "stackctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
