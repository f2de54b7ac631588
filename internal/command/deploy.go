// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/stackctl/stackctl/internal/aws"
	"github.com/stackctl/stackctl/internal/config"
	"github.com/stackctl/stackctl/internal/deploy"
	"github.com/stackctl/stackctl/internal/layers"
	"github.com/stackctl/stackctl/internal/log"
	"github.com/stackctl/stackctl/internal/meta"
	"github.com/stackctl/stackctl/internal/pipeline"
	"github.com/stackctl/stackctl/internal/template"
)

// deployDefaultAttrs specifies the default attributes displayed for a
// deployment result.
var deployDefaultAttrs = []string{"stackName:stack,operation,changeSetName:changeset,noChanges"}

// deployCommandAction packages and deploys the template to the target stack
// through a changeset.
func deployCommandAction(ctx context.Context, cmd *cli.Command) error {
	config.Config.Namespace = "deploy"

	fn := func(ctx context.Context, cmd *cli.Command) ([]deploy.Result, error) {
		params, err := TemplateParams(cmd)
		if err != nil {
			return nil, err
		}
		layerParams, err := ParseKeyValues("layer", cmd.StringSlice("layer"))
		if err != nil {
			return nil, err
		}

		spec := pipeline.DeploySpec{
			StackName:       cmd.String("stack"),
			Region:          cmd.String("region"),
			Bucket:          cmd.String("bucket"),
			Template:        cmd.String("template"),
			Capabilities:    cmd.StringSlice("capability"),
			Wait:            cmd.Bool("wait"),
			Parameters:      params,
			LayerParameters: layerParams,
		}

		result, err := executeDeploy(ctx, cmd, spec, cmd.Bool("guided"))
		if err != nil {
			return nil, err
		}
		return []deploy.Result{result}, nil
	}

	return NewActionRunner(
		"deploy",
		reflect.TypeOf(deploy.Result{}),
		deployDefaultAttrs,
		fn,
	).Run(ctx, cmd)
}

// executeDeploy is the full deployment flow shared by the deploy and run
// commands: validate, resolve layers, package, render and deploy.
func executeDeploy(ctx context.Context, cmd *cli.Command, spec pipeline.DeploySpec, guided bool) (deploy.Result, error) {
	if spec.StackName == "" {
		return deploy.Result{}, fmt.Errorf("no stack name given")
	}

	m := GetMeta(cmd)

	path := spec.Template
	if path == "" {
		path = "template.yaml"
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.RootDir, path)
	}

	tpl, err := template.Load(path)
	if err != nil {
		return deploy.Result{}, err
	}
	if err := ValidateOrFail(tpl); err != nil {
		return deploy.Result{}, err
	}

	var opts []aws.Option
	if profile := cmd.String("profile"); profile != "" {
		opts = append(opts, aws.WithProfile(profile))
	}
	region := spec.Region
	if region == "" {
		region = cmd.String("region")
	}
	if region != "" {
		opts = append(opts, aws.WithRegion(region))
	}
	cfg, err := aws.LoadAWSConfig(ctx, opts...)
	if err != nil {
		return deploy.Result{}, err
	}

	params := make(map[string]string, len(spec.Parameters))
	for k, v := range spec.Parameters {
		params[k] = v
	}

	// The layer parameters are resolved to their latest published versions
	// immediately before deployment.
	if len(spec.LayerParameters) > 0 {
		resolver := &layers.Resolver{
			API:        aws.NewLambda(cfg),
			CacheHours: int(cmd.Int("cache-hours")),
			NoCache:    cmd.Bool("no-cache"),
		}
		resolved, versions, err := resolver.ResolveAll(ctx, spec.LayerParameters)
		if err != nil {
			return deploy.Result{}, err
		}
		for _, v := range versions {
			log.Infof("layer %s resolved to version %d", v.Name, v.Version)
		}
		for k, v := range resolved {
			params[k] = v
		}
	}

	if guided {
		if err := promptForParameters(tpl, params); err != nil {
			return deploy.Result{}, err
		}
	}

	if spec.Bucket != "" {
		packager := &deploy.Packager{
			S3:      aws.NewS3(cfg),
			Bucket:  spec.Bucket,
			Prefix:  cmd.String("prefix"),
			RootDir: m.RootDir,
		}
		if _, err := packager.Package(ctx, tpl); err != nil {
			return deploy.Result{}, err
		}
	}

	body, err := tpl.Render()
	if err != nil {
		return deploy.Result{}, err
	}

	deployer := &deploy.Deployer{API: aws.NewCloudFormation(cfg)}
	return deployer.Deploy(ctx, deploy.Input{
		StackName:    spec.StackName,
		TemplateBody: body,
		Parameters:   params,
		Capabilities: spec.Capabilities,
		Wait:         spec.Wait,
	})
}

// promptForParameters asks for declared parameters that have no value and no
// default. NoEcho parameters are read without terminal echo.
func promptForParameters(tpl *template.Template, params map[string]string) error {
	names := make([]string, 0, len(tpl.Parameters))
	for name := range tpl.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	reader := bufio.NewReader(os.Stdin)
	for _, name := range names {
		decl := tpl.Parameters[name]
		if _, ok := params[name]; ok || decl.Default != "" {
			continue
		}

		if decl.NoEcho {
			fmt.Fprintf(os.Stderr, "%s (hidden): ", name)
			value, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", name, err)
			}
			params[name] = string(value)
			continue
		}

		fmt.Fprintf(os.Stderr, "%s: ", name)
		value, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		params[name] = strings.TrimSpace(value)
	}

	return nil
}

// deployCommandBuilder constructs the cli.Command for "deploy".
func deployCommandBuilder(meta meta.Meta) *cli.Command {
	return (&ActionCommandBuilder{
		Name:      "deploy",
		Usage:     "deploy the template to a stack through a changeset",
		UsageText: "stackctl deploy [RootDir] [options]",
		Flags: []cli.Flag{
			NewStackFlag("deploy", meta.Config.Source),
			NewTemplateFlag("deploy", meta.Config.Source),
			NewBucketFlag("deploy", meta.Config.Source),
			NewProfileFlag("deploy", meta.Config.Source),
			NewRegionFlag("deploy", meta.Config.Source),
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "key prefix for uploaded artifacts",
			},
			&cli.StringSliceFlag{
				Name:  "param",
				Usage: "Key=Value parameter override",
			},
			&cli.StringSliceFlag{
				Name:  "layer",
				Usage: "ParamName=layer-name resolved to the latest version",
			},
			&cli.StringSliceFlag{
				Name:  "capability",
				Usage: "capability to acknowledge (e.g. CAPABILITY_IAM)",
			},
			&cli.BoolFlag{
				Name:        "wait",
				Aliases:     []string{"w"},
				Usage:       "block until the stack operation completes",
				HideDefault: true,
			},
			&cli.BoolFlag{
				Name:        "guided",
				Aliases:     []string{"g"},
				Usage:       "prompt for missing parameters",
				HideDefault: true,
			},
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
		Action: deployCommandAction,
		Meta:   meta,
	}).Build()
}
