// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/urfave/cli/v3"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"

	"github.com/stackctl/stackctl/internal/attrs"
	"github.com/stackctl/stackctl/internal/aws"
	"github.com/stackctl/stackctl/internal/meta"
	"github.com/stackctl/stackctl/internal/output"
	"github.com/stackctl/stackctl/internal/template"
)

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// envParameter is the template parameter carrying the environment prefix
// used by function names and export names.
const envParameter = "EnvironmentName"

// TemplateParams parses the --param overrides. When the RootDir positional
// carried an ::env suffix and no explicit override names it, the environment
// parameter defaults to that suffix.
func TemplateParams(cmd *cli.Command) (map[string]string, error) {
	params, err := ParseKeyValues("param", cmd.StringSlice("param"))
	if err != nil {
		return nil, err
	}

	m := GetMeta(cmd)
	if m.Env == "" {
		return params, nil
	}
	if params == nil {
		params = map[string]string{}
	}
	if _, ok := params[envParameter]; !ok {
		params[envParameter] = m.Env
	}
	return params, nil
}

// DumpSchemaIfRequested writes the attribute schema for the provided type to
// stdout when --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema("", t, nil)
		return true
	}
	return false
}

// EmitRows wraps a slice in the standard rows envelope and passes it to the
// common output routine. If w is nil, os.Stdout is used.
func EmitRows(results any, al attrs.AttrList, cmd *cli.Command, w io.Writer) error {
	data, err := json.Marshal(map[string]any{"rows": results})
	if err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}
	if w == nil {
		w = os.Stdout
	}
	output.SliceDiceSpit(*bytes.NewBuffer(data), al, cmd, "rows", w, nil)
	return nil
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr stackctl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "stackctl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// LoadTemplate loads the template named by --template, resolved against the
// RootDir positional.
func LoadTemplate(cmd *cli.Command) (*template.Template, error) {
	m := GetMeta(cmd)

	path := cmd.String("template")
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.RootDir, path)
	}

	return template.Load(path)
}

// LoadAWS loads SDK config honoring the --profile and --region flags.
func LoadAWS(ctx context.Context, cmd *cli.Command) (awsv2.Config, error) {
	var opts []aws.Option
	if profile := cmd.String("profile"); profile != "" {
		opts = append(opts, aws.WithProfile(profile))
	}
	if region := cmd.String("region"); region != "" {
		opts = append(opts, aws.WithRegion(region))
	}
	return aws.LoadAWSConfig(ctx, opts...)
}

// ParseKeyValues splits repeated Key=Value flag values into a map. A missing
// = is an error naming the offending entry.
func ParseKeyValues(flagName string, values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}

	parsed := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("--%s expects Key=Value, got %q", flagName, v)
		}
		parsed[key] = value
	}
	return parsed, nil
}

// ValidateOrFail runs template validation and reports every finding before
// failing, so one pass surfaces all problems.
func ValidateOrFail(tpl *template.Template) error {
	problems := tpl.Validate()
	if len(problems) == 0 {
		return nil
	}

	for _, p := range problems {
		fmt.Fprintln(os.Stderr, p.String())
	}
	return fmt.Errorf("template %s failed validation with %d problem(s)", tpl.Source, len(problems))
}
