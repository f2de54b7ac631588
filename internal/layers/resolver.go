// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package layers

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	lambdav2 "github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/stackctl/stackctl/internal/cacheutil"
	"github.com/stackctl/stackctl/internal/log"
)

// Version identifies one published version of a shared layer.
type Version struct {
	Name        string `json:"name"`
	Version     int64  `json:"version"`
	Arn         string `json:"arn"`
	CreatedDate string `json:"createdDate,omitempty"`
}

// Resolver looks up the latest published version of shared layers. Lookups
// hit the control plane once and are then served from the file cache for
// CacheHours (0 disables caching).
type Resolver struct {
	API        lambdav2.ListLayerVersionsAPIClient
	CacheHours int
	NoCache    bool
}

// LatestVersion returns the highest published version of the named layer.
// A layer with no published versions is an error.
func (r *Resolver) LatestVersion(ctx context.Context, name string) (Version, error) {
	if !r.NoCache {
		if entry, ok := cacheutil.Read([]string{"layers"}, name, r.CacheHours); ok {
			var v Version
			if err := json.Unmarshal(entry.Data, &v); err == nil {
				log.Debugf("layer version from cache: name=%s, version=%d", name, v.Version)
				return v, nil
			}
		}
	}

	var latest Version
	paginator := lambdav2.NewListLayerVersionsPaginator(r.API, &lambdav2.ListLayerVersionsInput{
		LayerName: awsv2.String(name),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return Version{}, fmt.Errorf("failed to list versions of layer %s: %w", name, err)
		}
		for _, item := range page.LayerVersions {
			if item.Version > latest.Version {
				latest = Version{
					Name:    name,
					Version: item.Version,
					Arn:     awsv2.ToString(item.LayerVersionArn),
				}
				if item.CreatedDate != nil {
					latest.CreatedDate = *item.CreatedDate
				}
			}
		}
	}

	if latest.Version == 0 {
		return Version{}, fmt.Errorf("layer %s has no published versions", name)
	}

	if !r.NoCache {
		if data, err := json.Marshal(latest); err == nil {
			if err := cacheutil.Write([]string{"layers"}, name, data); err != nil {
				log.Warnf("failed to cache layer version: name=%s, err=%v", name, err)
			}
		}
	}

	log.Debugf("layer version resolved: name=%s, version=%d", name, latest.Version)
	return latest, nil
}

// ResolveAll resolves a map of template parameter name to layer name into
// parameter values (the latest version ARNs). The returned versions slice is
// sorted by layer name for stable reporting.
func (r *Resolver) ResolveAll(ctx context.Context, layerParams map[string]string) (map[string]string, []Version, error) {
	params := make(map[string]string, len(layerParams))
	versions := make([]Version, 0, len(layerParams))

	names := make([]string, 0, len(layerParams))
	for param := range layerParams {
		names = append(names, param)
	}
	sort.Strings(names)

	for _, param := range names {
		v, err := r.LatestVersion(ctx, layerParams[param])
		if err != nil {
			return nil, nil, err
		}
		params[param] = v.Arn
		versions = append(versions, v)
	}

	sort.Slice(versions, func(i, j int) bool { return versions[i].Name < versions[j].Name })
	return params, versions, nil
}
