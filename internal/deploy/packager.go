// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/stackctl/stackctl/internal/log"
	"github.com/stackctl/stackctl/internal/template"
)

// defaultUploadConcurrency bounds parallel artifact uploads.
const defaultUploadConcurrency = 4

// PutObjectAPI is the slice of the S3 surface the packager needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
}

// Artifact records one packaged function: where the code came from and where
// the uploaded zip lives.
type Artifact struct {
	LogicalID string `json:"logicalId"`
	LocalPath string `json:"localPath"`
	Key       string `json:"key"`
	URI       string `json:"uri"`
	Size      int64  `json:"size"`
}

// Packager zips each function's code directory and uploads it to the
// artifact bucket under a content-hash key, then rewrites the template's code
// locations to the uploaded objects. Identical code across functions
// deduplicates to a single object.
type Packager struct {
	S3      PutObjectAPI
	Bucket  string
	Prefix  string
	RootDir string

	// Concurrency bounds parallel uploads; zero means the default.
	Concurrency int
}

// Package processes every function resource whose CodeUri is still a local
// directory. Uploads run concurrently; the template is only mutated after
// every upload succeeded. Artifacts are returned sorted by logical ID.
func (p *Packager) Package(ctx context.Context, tpl *template.Template) ([]Artifact, error) {
	if p.Bucket == "" {
		return nil, fmt.Errorf("no artifact bucket configured")
	}

	ids := make([]string, 0, len(tpl.Resources))
	for id, res := range tpl.Resources {
		if strings.HasPrefix(res.Properties.CodeUri, "s3://") {
			log.Debugf("already packaged: id=%s, uri=%s", id, res.Properties.CodeUri)
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	limit := p.Concurrency
	if limit <= 0 {
		limit = defaultUploadConcurrency
	}

	var mu sync.Mutex
	artifacts := make([]Artifact, 0, len(ids))
	uploaded := map[string]bool{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, id := range ids {
		res := tpl.Resources[id]
		g.Go(func() error {
			local := res.Properties.CodeUri
			if !filepath.IsAbs(local) {
				local = filepath.Join(p.RootDir, local)
			}

			data, err := zipDir(local)
			if err != nil {
				return fmt.Errorf("failed to package %s: %w", id, err)
			}

			sum := sha256.Sum256(data)
			key := path.Join(p.Prefix, hex.EncodeToString(sum[:])+".zip")

			mu.Lock()
			dup := uploaded[key]
			uploaded[key] = true
			mu.Unlock()

			if !dup {
				_, err = p.S3.PutObject(gctx, &s3v2.PutObjectInput{
					Bucket: awsv2.String(p.Bucket),
					Key:    awsv2.String(key),
					Body:   bytes.NewReader(data),
				})
				if err != nil {
					return fmt.Errorf("failed to upload %s: %w", id, err)
				}
			}

			log.Infof("packaged %s: %s (%s)", id, key, humanize.Bytes(uint64(len(data))))

			mu.Lock()
			artifacts = append(artifacts, Artifact{
				LogicalID: id,
				LocalPath: res.Properties.CodeUri,
				Key:       key,
				URI:       fmt.Sprintf("s3://%s/%s", p.Bucket, key),
				Size:      int64(len(data)),
			})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].LogicalID < artifacts[j].LogicalID
	})

	for _, a := range artifacts {
		if err := tpl.SetCodeUri(a.LogicalID, a.URI); err != nil {
			return nil, err
		}
	}

	return artifacts, nil
}

// zipDir produces a deterministic zip of a directory tree: entries are
// sorted, paths are slash-separated and relative to root, and timestamps are
// zeroed so identical trees hash identically.
func zipDir(root string) ([]byte, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s contains no files", root)
	}
	sort.Strings(files)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, file := range files {
		rel, err := filepath.Rel(root, file)
		if err != nil {
			return nil, err
		}

		header := &zip.FileHeader{
			Name:   filepath.ToSlash(rel),
			Method: zip.Deflate,
		}

		entry, err := w.CreateHeader(header)
		if err != nil {
			return nil, err
		}

		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		_, err = io.Copy(entry, f)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
