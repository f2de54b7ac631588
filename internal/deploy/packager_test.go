// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package deploy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackctl/stackctl/internal/template"
)

// fakeS3 records uploaded keys.
type fakeS3 struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeS3) PutObject(
	_ context.Context,
	in *s3v2.PutObjectInput,
	_ ...func(*s3v2.Options),
) (*s3v2.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.keys = append(f.keys, awsv2.ToString(in.Key))
	f.mu.Unlock()
	return &s3v2.PutObjectOutput{}, nil
}

func writeCode(t *testing.T, root, dir, content string) {
	t.Helper()
	full := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(full, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(full, "handler.py"), []byte(content), 0o644))
}

func packagerTemplate(t *testing.T, resources map[string]string) *template.Template {
	t.Helper()

	var b strings.Builder
	b.WriteString("AWSTemplateFormatVersion: '2010-09-09'\nTransform: AWS::Serverless-2016-10-31\nResources:\n")
	for id, uri := range resources {
		fmt.Fprintf(&b, `  %s:
    Type: AWS::Serverless::Function
    Properties:
      CodeUri: %s
      Handler: handler.lambda_handler
      Runtime: python3.8
`, id, uri)
	}

	path := filepath.Join(t.TempDir(), "template.yaml")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	tpl, err := template.Load(path)
	require.NoError(t, err)
	return tpl
}

func TestPackageUploadsAndRewrites(t *testing.T) {
	root := t.TempDir()
	writeCode(t, root, "src/create_user", "def lambda_handler(event, context): pass\n")
	writeCode(t, root, "src/get_user", "def lambda_handler(event, context): return {}\n")

	tpl := packagerTemplate(t, map[string]string{
		"CreateUser": "src/create_user",
		"GetUser":    "src/get_user",
	})

	s3 := &fakeS3{}
	p := &Packager{S3: s3, Bucket: "artifacts", Prefix: "builds", RootDir: root}

	artifacts, err := p.Package(context.Background(), tpl)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	assert.Equal(t, "CreateUser", artifacts[0].LogicalID)
	assert.Equal(t, "GetUser", artifacts[1].LogicalID)
	for _, a := range artifacts {
		assert.True(t, strings.HasPrefix(a.Key, "builds/"))
		assert.True(t, strings.HasSuffix(a.Key, ".zip"))
		assert.Equal(t, "s3://artifacts/"+a.Key, a.URI)
		assert.Positive(t, a.Size)
		assert.Equal(t, a.URI, tpl.Resources[a.LogicalID].Properties.CodeUri)
	}
	assert.Len(t, s3.keys, 2)
}

func TestPackageDeduplicatesIdenticalCode(t *testing.T) {
	root := t.TempDir()
	writeCode(t, root, "src/a", "same\n")
	writeCode(t, root, "src/b", "same\n")

	tpl := packagerTemplate(t, map[string]string{
		"FnA": "src/a",
		"FnB": "src/b",
	})

	s3 := &fakeS3{}
	p := &Packager{S3: s3, Bucket: "artifacts", RootDir: root}

	artifacts, err := p.Package(context.Background(), tpl)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	assert.Equal(t, artifacts[0].Key, artifacts[1].Key)
	assert.Len(t, s3.keys, 1, "identical trees must upload once")
}

func TestPackageSkipsAlreadyUploaded(t *testing.T) {
	root := t.TempDir()
	writeCode(t, root, "src/fn", "x\n")

	tpl := packagerTemplate(t, map[string]string{
		"Local":  "src/fn",
		"Remote": "s3://artifacts/prior/abc.zip",
	})

	s3 := &fakeS3{}
	p := &Packager{S3: s3, Bucket: "artifacts", RootDir: root}

	artifacts, err := p.Package(context.Background(), tpl)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "Local", artifacts[0].LogicalID)
	assert.Equal(t, "s3://artifacts/prior/abc.zip", tpl.Resources["Remote"].Properties.CodeUri)
}

func TestPackageUploadFailureLeavesTemplateUntouched(t *testing.T) {
	root := t.TempDir()
	writeCode(t, root, "src/fn", "x\n")

	tpl := packagerTemplate(t, map[string]string{"Fn": "src/fn"})

	s3 := &fakeS3{err: fmt.Errorf("access denied")}
	p := &Packager{S3: s3, Bucket: "artifacts", RootDir: root}

	_, err := p.Package(context.Background(), tpl)
	require.Error(t, err)
	assert.Equal(t, "src/fn", tpl.Resources["Fn"].Properties.CodeUri)
}

func TestPackageMissingBucket(t *testing.T) {
	tpl := packagerTemplate(t, map[string]string{"Fn": "src/fn"})
	p := &Packager{S3: &fakeS3{}}
	_, err := p.Package(context.Background(), tpl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket")
}

func TestPackageMissingCodeDir(t *testing.T) {
	tpl := packagerTemplate(t, map[string]string{"Fn": "src/missing"})
	p := &Packager{S3: &fakeS3{}, Bucket: "artifacts", RootDir: t.TempDir()}
	_, err := p.Package(context.Background(), tpl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Fn")
}

func TestZipDirDeterministic(t *testing.T) {
	root := t.TempDir()
	writeCode(t, root, "pkg", "content\n")
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "util.py"), []byte("u\n"), 0o644))

	first, err := zipDir(filepath.Join(root, "pkg"))
	require.NoError(t, err)
	second, err := zipDir(filepath.Join(root, "pkg"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestZipDirEmpty(t *testing.T) {
	_, err := zipDir(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files")
}
