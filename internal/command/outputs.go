// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/stackctl/stackctl/internal/aws"
	"github.com/stackctl/stackctl/internal/config"
	"github.com/stackctl/stackctl/internal/deploy"
	"github.com/stackctl/stackctl/internal/meta"
)

// outputsDefaultAttrs specifies the default attributes displayed for stack
// outputs.
var outputsDefaultAttrs = []string{"key,value,export"}

// outputsCommandAction lists the deployed stack's outputs with their export
// names.
func outputsCommandAction(ctx context.Context, cmd *cli.Command) error {
	config.Config.Namespace = "outputs"

	fn := func(ctx context.Context, cmd *cli.Command) ([]deploy.StackOutput, error) {
		stack := cmd.String("stack")
		if stack == "" {
			return nil, fmt.Errorf("no stack name given")
		}

		cfg, err := LoadAWS(ctx, cmd)
		if err != nil {
			return nil, err
		}

		deployer := &deploy.Deployer{API: aws.NewCloudFormation(cfg)}
		return deployer.Outputs(ctx, stack)
	}

	return NewActionRunner(
		"outputs",
		reflect.TypeOf(deploy.StackOutput{}),
		outputsDefaultAttrs,
		fn,
	).Run(ctx, cmd)
}

// outputsCommandBuilder constructs the cli.Command for "outputs".
func outputsCommandBuilder(meta meta.Meta) *cli.Command {
	return (&ActionCommandBuilder{
		Name:      "outputs",
		Usage:     "list the deployed stack's outputs and exports",
		UsageText: "stackctl outputs [RootDir] [options]",
		Flags: []cli.Flag{
			NewStackFlag("outputs", meta.Config.Source),
			NewProfileFlag("outputs", meta.Config.Source),
			NewRegionFlag("outputs", meta.Config.Source),
		},
		Action: outputsCommandAction,
		Meta:   meta,
	}).Build()
}
