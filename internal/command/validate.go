// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/stackctl/stackctl/internal/config"
	"github.com/stackctl/stackctl/internal/meta"
	"github.com/stackctl/stackctl/internal/template"
)

// validateDefaultAttrs specifies the default attributes displayed for
// validation findings.
var validateDefaultAttrs = []string{"path", "message"}

// validateCommandAction checks the template's internal consistency and emits
// the findings. A template with findings fails the command.
func validateCommandAction(ctx context.Context, cmd *cli.Command) error {
	config.Config.Namespace = "validate"

	if ShortCircuitTLDR(ctx, cmd, "validate") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(template.Problem{})) {
		return nil
	}

	tpl, err := LoadTemplate(cmd)
	if err != nil {
		return err
	}

	problems := tpl.Validate()

	attrs := BuildAttrs(cmd, validateDefaultAttrs...)
	if err := EmitRows(problems, attrs, cmd, nil); err != nil {
		return err
	}

	if len(problems) > 0 {
		return fmt.Errorf("template %s failed validation with %d problem(s)", tpl.Source, len(problems))
	}

	fmt.Println("Template is valid.")
	return nil
}

// validateCommandBuilder constructs the cli.Command for "validate".
func validateCommandBuilder(meta meta.Meta) *cli.Command {
	return (&ActionCommandBuilder{
		Name:      "validate",
		Usage:     "check the template for structural problems",
		UsageText: "stackctl validate [RootDir] [options]",
		Flags: []cli.Flag{
			NewTemplateFlag("validate", meta.Config.Source),
		},
		Action: validateCommandAction,
		Meta:   meta,
	}).Build()
}
