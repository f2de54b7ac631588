// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/stackctl/stackctl/internal/config"
	"github.com/stackctl/stackctl/internal/meta"
	"github.com/stackctl/stackctl/internal/pipeline"
)

// runCommandAction executes one branch of the pipeline definition: script
// steps run through the shell and deploy steps go through the full
// deployment flow.
func runCommandAction(ctx context.Context, cmd *cli.Command) error {
	config.Config.Namespace = "run"

	if ShortCircuitTLDR(ctx, cmd, "run") {
		return nil
	}

	branch := cmd.Args().First()
	if branch == "" {
		return fmt.Errorf("no branch given. Usage: stackctl run <branch>")
	}

	m := GetMeta(cmd)
	path := cmd.String("pipeline")
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.RootDir, path)
	}

	p, err := pipeline.Load(path)
	if err != nil {
		return err
	}

	runner := &pipeline.Runner{
		Pipeline: p,
		Dir:      m.RootDir,
		Deploy: func(ctx context.Context, spec pipeline.DeploySpec) error {
			_, err := executeDeploy(ctx, cmd, spec, false)
			return err
		},
	}

	return runner.Run(ctx, branch)
}

// runCommandBuilder constructs the cli.Command for "run".
func runCommandBuilder(meta meta.Meta) *cli.Command {
	return (&ActionCommandBuilder{
		Name:      "run",
		Usage:     "execute a pipeline branch locally",
		UsageText: "stackctl run <branch> [options]",
		Flags: []cli.Flag{
			NewPipelineFlag("run", meta.Config.Source),
			NewProfileFlag("run", meta.Config.Source),
			&cli.IntFlag{
				Name:  "cache-hours",
				Usage: "serve layer versions from cache for this many hours",
				Value: 24,
			},
			&cli.BoolFlag{
				Name:        "no-cache",
				Usage:       "bypass the layer version cache",
				HideDefault: true,
			},
		},
		Action: runCommandAction,
		Meta:   meta,
	}).Build()
}
