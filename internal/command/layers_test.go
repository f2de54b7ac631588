// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/stackctl/stackctl/internal/meta"
)

// runLayerParams runs layerParameters through a parsed command so flag
// values and metadata resolve the same way they do at runtime.
func runLayerParams(t *testing.T, args []string) (map[string]string, error) {
	t.Helper()
	var got map[string]string
	var gotErr error
	cmd := &cli.Command{
		Name: "layers",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "layer"},
			&cli.StringFlag{Name: "pipeline", Value: "bitbucket-pipelines.yml"},
		},
		Metadata: map[string]any{"meta": meta.Meta{RootDirSpec: meta.RootDirSpec{RootDir: "testdata"}}},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			got, gotErr = layerParameters(cmd)
			return nil
		},
	}
	err := cmd.Run(context.Background(), append([]string{"layers"}, args...))
	require.NoError(t, err)
	return got, gotErr
}

func TestLayerParameters_FlagsWin(t *testing.T) {
	got, err := runLayerParams(t, []string{
		"--layer", "UtilsLayerArn=utils",
		"--layer", "RequestsLayerArn=requests",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"UtilsLayerArn":    "utils",
		"RequestsLayerArn": "requests",
	}, got)
}

func TestLayerParameters_PipelineFallback(t *testing.T) {
	got, err := runLayerParams(t, nil)
	require.NoError(t, err)

	// Union of layer-parameters across every branch in the pipeline file.
	assert.Equal(t, map[string]string{
		"UtilsLayerArn":     "utils",
		"DatabasesLayerArn": "databases",
		"RequestsLayerArn":  "requests",
	}, got)
}

func TestLayerParameters_BadFlag(t *testing.T) {
	_, err := runLayerParams(t, []string{"--layer", "NoEqualsSign"})
	assert.Error(t, err)
}

func TestLayerParameters_MissingPipeline(t *testing.T) {
	_, err := runLayerParams(t, []string{"--pipeline", "does-not-exist.yml"})
	assert.Error(t, err)
}
