// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/stackctl/stackctl/internal/aws"
	"github.com/stackctl/stackctl/internal/config"
	"github.com/stackctl/stackctl/internal/deploy"
	"github.com/stackctl/stackctl/internal/meta"
)

// packageDefaultAttrs specifies the default attributes displayed for packaged
// artifacts.
var packageDefaultAttrs = []string{"logicalId,localPath,uri,size"}

// packageCommandAction zips each function's code, uploads it to the artifact
// bucket, and optionally writes the rewritten template.
func packageCommandAction(ctx context.Context, cmd *cli.Command) error {
	config.Config.Namespace = "package"

	fn := func(ctx context.Context, cmd *cli.Command) ([]deploy.Artifact, error) {
		tpl, err := LoadTemplate(cmd)
		if err != nil {
			return nil, err
		}
		if err := ValidateOrFail(tpl); err != nil {
			return nil, err
		}

		cfg, err := LoadAWS(ctx, cmd)
		if err != nil {
			return nil, err
		}

		m := GetMeta(cmd)
		packager := &deploy.Packager{
			S3:      aws.NewS3(cfg),
			Bucket:  cmd.String("bucket"),
			Prefix:  cmd.String("prefix"),
			RootDir: m.RootDir,
		}

		artifacts, err := packager.Package(ctx, tpl)
		if err != nil {
			return nil, err
		}

		if out := cmd.String("write"); out != "" {
			body, err := tpl.Render()
			if err != nil {
				return nil, err
			}
			if !filepath.IsAbs(out) {
				out = filepath.Join(m.RootDir, out)
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return nil, fmt.Errorf("failed to write packaged template: %w", err)
			}
		}

		return artifacts, nil
	}

	return NewActionRunner(
		"package",
		reflect.TypeOf(deploy.Artifact{}),
		packageDefaultAttrs,
		fn,
	).Run(ctx, cmd)
}

// packageCommandBuilder constructs the cli.Command for "package".
func packageCommandBuilder(meta meta.Meta) *cli.Command {
	return (&ActionCommandBuilder{
		Name:      "package",
		Usage:     "upload function code to the artifact bucket",
		UsageText: "stackctl package [RootDir] [options]",
		Flags: []cli.Flag{
			NewTemplateFlag("package", meta.Config.Source),
			NewBucketFlag("package", meta.Config.Source),
			NewProfileFlag("package", meta.Config.Source),
			NewRegionFlag("package", meta.Config.Source),
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "key prefix for uploaded artifacts",
			},
			&cli.StringFlag{
				Name:  "write",
				Usage: "write the rewritten template to this file",
			},
		},
		Action: packageCommandAction,
		Meta:   meta,
	}).Build()
}
