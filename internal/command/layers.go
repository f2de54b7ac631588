// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/stackctl/stackctl/internal/aws"
	"github.com/stackctl/stackctl/internal/config"
	"github.com/stackctl/stackctl/internal/layers"
	"github.com/stackctl/stackctl/internal/meta"
	"github.com/stackctl/stackctl/internal/pipeline"
)

// layersDefaultAttrs specifies the default attributes displayed for resolved
// layer versions.
var layersDefaultAttrs = []string{"name,version,arn,createdDate:created:T"}

// layersCommandAction resolves the latest published version of each shared
// layer. Layers come from repeated --layer flags, or from the pipeline
// definition's layer-parameters when no flags are given.
func layersCommandAction(ctx context.Context, cmd *cli.Command) error {
	config.Config.Namespace = "layers"

	fn := func(ctx context.Context, cmd *cli.Command) ([]layers.Version, error) {
		layerParams, err := layerParameters(cmd)
		if err != nil {
			return nil, err
		}
		if len(layerParams) == 0 {
			return nil, fmt.Errorf("no layers given via --layer and none found in the pipeline definition")
		}

		cfg, err := LoadAWS(ctx, cmd)
		if err != nil {
			return nil, err
		}

		resolver := &layers.Resolver{
			API:        aws.NewLambda(cfg),
			CacheHours: int(cmd.Int("cache-hours")),
			NoCache:    cmd.Bool("no-cache"),
		}

		_, versions, err := resolver.ResolveAll(ctx, layerParams)
		return versions, err
	}

	return NewActionRunner(
		"layers",
		reflect.TypeOf(layers.Version{}),
		layersDefaultAttrs,
		fn,
	).Run(ctx, cmd)
}

// layerParameters builds the template parameter to layer name map from
// --layer flags, falling back to the union of the pipeline definition's
// layer-parameters across branches.
func layerParameters(cmd *cli.Command) (map[string]string, error) {
	layerParams, err := ParseKeyValues("layer", cmd.StringSlice("layer"))
	if err != nil {
		return nil, err
	}
	if len(layerParams) > 0 {
		return layerParams, nil
	}

	m := GetMeta(cmd)
	path := cmd.String("pipeline")
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.RootDir, path)
	}

	p, err := pipeline.Load(path)
	if err != nil {
		return nil, err
	}

	layerParams = map[string]string{}
	for _, branch := range p.BranchNames() {
		for _, step := range p.Branches[branch] {
			if step.Deploy == nil {
				continue
			}
			for param, layer := range step.Deploy.LayerParameters {
				layerParams[param] = layer
			}
		}
	}
	return layerParams, nil
}

// layersCommandBuilder constructs the cli.Command for "layers".
func layersCommandBuilder(meta meta.Meta) *cli.Command {
	return (&ActionCommandBuilder{
		Name:      "layers",
		Usage:     "resolve the latest published layer versions",
		UsageText: "stackctl layers [RootDir] [options]",
		Flags: []cli.Flag{
			NewPipelineFlag("layers", meta.Config.Source),
			NewProfileFlag("layers", meta.Config.Source),
			NewRegionFlag("layers", meta.Config.Source),
			&cli.StringSliceFlag{
				Name:  "layer",
				Usage: "ParamName=layer-name to resolve. Overrides the pipeline definition",
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
		Action: layersCommandAction,
		Meta:   meta,
	}).Build()
}
