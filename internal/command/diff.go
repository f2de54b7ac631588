// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/urfave/cli/v3"

	"github.com/stackctl/stackctl/internal/aws"
	"github.com/stackctl/stackctl/internal/config"
	"github.com/stackctl/stackctl/internal/csutil"
	"github.com/stackctl/stackctl/internal/deploy"
	"github.com/stackctl/stackctl/internal/differ"
	"github.com/stackctl/stackctl/internal/meta"
)

// diffCommandAction compares the locally rendered template against what the
// stack was deployed with.
func diffCommandAction(ctx context.Context, cmd *cli.Command) error {
	config.Config.Namespace = "diff"

	if ShortCircuitTLDR(ctx, cmd, "diff") {
		return nil
	}

	stack := cmd.String("stack")
	if stack == "" {
		return fmt.Errorf("no stack name given")
	}

	cfg, err := LoadAWS(ctx, cmd)
	if err != nil {
		return err
	}
	deployer := &deploy.Deployer{API: aws.NewCloudFormation(cfg)}

	// --changesets short-circuits into the changeset browser. A --changeset
	// spec resolves without the interactive picker.
	if cmd.Bool("changesets") || cmd.String("changeset") != "" {
		summaries, err := deployer.ChangeSets(ctx, stack)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No changesets found.")
			return nil
		}

		var picked *types.ChangeSetSummary
		if spec := cmd.String("changeset"); spec != "" {
			resolved, err := csutil.Resolve(summaries, spec)
			if err != nil {
				return err
			}
			picked = &resolved[0]
		} else {
			picked = differ.SelectChangeSet(summaries)
		}

		if picked != nil {
			fmt.Printf("%s %s %s\n",
				awsv2.ToString(picked.ChangeSetName),
				picked.Status,
				awsv2.ToString(picked.StatusReason))
		}
		return nil
	}

	tpl, err := LoadTemplate(cmd)
	if err != nil {
		return err
	}
	local, err := tpl.Render()
	if err != nil {
		return err
	}

	deployed, err := deployer.DeployedTemplate(ctx, stack)
	if err != nil {
		return err
	}

	ignore := strings.Split(cmd.String("diff_filter"), ",")
	text, modified, err := differ.Diff(deployed, local, ignore, cmd.Bool("color"))
	if err != nil {
		return err
	}
	if !modified {
		fmt.Println("The templates are identical.")
		return nil
	}

	if cmd.Bool("pager") {
		return differ.Page(fmt.Sprintf("stack %s vs %s", stack, tpl.Source), text)
	}

	fmt.Fprintln(os.Stdout, text)
	return nil
}

// diffCommandBuilder constructs the cli.Command for "diff".
func diffCommandBuilder(meta meta.Meta) *cli.Command {
	return (&ActionCommandBuilder{
		Name:      "diff",
		Usage:     "diff the local template against the deployed stack",
		UsageText: "stackctl diff [RootDir] [options]",
		Flags: []cli.Flag{
			NewStackFlag("diff", meta.Config.Source),
			NewTemplateFlag("diff", meta.Config.Source),
			NewProfileFlag("diff", meta.Config.Source),
			NewRegionFlag("diff", meta.Config.Source),
			&cli.StringFlag{
				Name:  "diff_filter",
				Usage: "comma-separated top-level keys to drop from diff context",
			},
			&cli.BoolFlag{
				Name:        "pager",
				Usage:       "page long diff output",
				HideDefault: true,
			},
			&cli.BoolFlag{
				Name:        "changesets",
				Usage:       "browse the stack's changesets instead of diffing",
				HideDefault: true,
			},
			&cli.StringFlag{
				Name:  "changeset",
				Usage: "changeset spec to resolve (LATEST~N, -N, ARN or name prefix)",
			},
		},
		Action: diffCommandAction,
		Meta:   meta,
	}).Build()
}
