// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/stackctl/stackctl/internal/config"
	"github.com/stackctl/stackctl/internal/meta"
	"github.com/stackctl/stackctl/internal/template"
)

// functionsDefaultAttrs specifies the default attributes displayed for
// function resources.
var functionsDefaultAttrs = []string{"logicalId,name,runtime,memorySize:memory,timeout,exported"}

// functionsCommandAction lists the template's function resources flattened
// against the global defaults.
func functionsCommandAction(ctx context.Context, cmd *cli.Command) error {
	config.Config.Namespace = "functions"

	fn := func(ctx context.Context, cmd *cli.Command) ([]template.FunctionView, error) {
		tpl, err := LoadTemplate(cmd)
		if err != nil {
			return nil, err
		}

		params, err := TemplateParams(cmd)
		if err != nil {
			return nil, err
		}

		return tpl.Functions(params), nil
	}

	return NewActionRunner(
		"functions",
		reflect.TypeOf(template.FunctionView{}),
		functionsDefaultAttrs,
		fn,
	).Run(ctx, cmd)
}

// functionsCommandBuilder constructs the cli.Command for "functions".
func functionsCommandBuilder(meta meta.Meta) *cli.Command {
	return (&ActionCommandBuilder{
		Name:      "functions",
		Usage:     "list the template's function resources",
		UsageText: "stackctl functions [RootDir] [options]",
		Flags: []cli.Flag{
			NewTemplateFlag("functions", meta.Config.Source),
			&cli.StringSliceFlag{
				Name:  "param",
				Usage: "Key=Value parameter used when evaluating names and exports",
			},
		},
		Action: functionsCommandAction,
		Meta:   meta,
	}).Build()
}
