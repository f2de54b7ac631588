// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package aws

import (
	"context"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	cfnv2 "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	lambdav2 "github.com/aws/aws-sdk-go-v2/service/lambda"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWithProfile verifies that WithProfile sets the profile option
// correctly.
func TestWithProfile(t *testing.T) {
	tests := []struct {
		name     string
		profile  string
		expected string
	}{
		{
			name:     "empty profile",
			profile:  "",
			expected: "",
		},
		{
			name:     "default profile",
			profile:  "default",
			expected: "default",
		},
		{
			name:     "custom profile",
			profile:  "my-profile",
			expected: "my-profile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts options
			opt := WithProfile(tt.profile)
			opt(&opts)
			assert.Equal(t, tt.expected, opts.profile)
		})
	}
}

// TestWithRegion verifies that WithRegion sets the region option
// correctly.
func TestWithRegion(t *testing.T) {
	tests := []struct {
		name     string
		region   string
		expected string
	}{
		{
			name:     "empty region",
			region:   "",
			expected: "",
		},
		{
			name:     "us-east-1",
			region:   "us-east-1",
			expected: "us-east-1",
		},
		{
			name:     "eu-west-1",
			region:   "eu-west-1",
			expected: "eu-west-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts options
			opt := WithRegion(tt.region)
			opt(&opts)
			assert.Equal(t, tt.expected, opts.region)
		})
	}
}

// TestWithRetryer verifies that WithRetryer sets the retryer function
// option.
func TestWithRetryer(t *testing.T) {
	mockRetryer := func() awsv2.Retryer {
		return retry.NewStandard()
	}

	var opts options
	opt := WithRetryer(mockRetryer)
	opt(&opts)

	assert.NotNil(t, opts.retryer)
	result := opts.retryer()
	assert.NotNil(t, result)
}

// TestLoadAWSConfig_NoOptions verifies LoadAWSConfig loads successfully
// with no overrides, relying on defaults and environment.
func TestLoadAWSConfig_NoOptions(t *testing.T) {
	ctx := context.Background()
	cfg, err := LoadAWSConfig(ctx)

	// The config chain loads without network access; missing credentials
	// only surface when a call is made.
	assert.NoError(t, err)
	assert.NotNil(t, cfg)
}

// TestLoadAWSConfig_WithRegion verifies that region option is applied
// during config loading.
func TestLoadAWSConfig_WithRegion(t *testing.T) {
	ctx := context.Background()
	testRegion := "us-west-2"

	cfg, err := LoadAWSConfig(ctx, WithRegion(testRegion))

	assert.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, testRegion, cfg.Region)
}

// TestLoadAWSConfig_MultipleOptions verifies that multiple options are
// applied correctly in sequence.
func TestLoadAWSConfig_MultipleOptions(t *testing.T) {
	ctx := context.Background()
	testRegion := "eu-central-1"

	cfg, err := LoadAWSConfig(
		ctx,
		WithRegion(testRegion),
		WithRetryer(func() awsv2.Retryer {
			return retry.NewStandard()
		}),
	)

	assert.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, testRegion, cfg.Region)
}

// TestLoadAWSConfig_OptionsStruct verifies that options struct is
// correctly populated by option functions.
func TestLoadAWSConfig_OptionsStruct(t *testing.T) {
	testProfile := "test-profile"
	testRegion := "ap-southeast-1"
	testRetryer := func() awsv2.Retryer {
		return retry.NewStandard()
	}

	var opts options
	WithProfile(testProfile)(&opts)
	WithRegion(testRegion)(&opts)
	WithRetryer(testRetryer)(&opts)

	assert.Equal(t, testProfile, opts.profile)
	assert.Equal(t, testRegion, opts.region)
	assert.NotNil(t, opts.retryer)
}

// TestLoadAWSConfig_OptionsOrder verifies that later options override
// earlier ones.
func TestLoadAWSConfig_OptionsOrder(t *testing.T) {
	region1 := "us-east-1"
	region2 := "eu-west-1"

	ctx := context.Background()
	cfg, err := LoadAWSConfig(
		ctx,
		WithRegion(region1),
		WithRegion(region2),
	)

	assert.NoError(t, err)
	assert.Equal(t, region2, cfg.Region)
}

// TestNewS3_BasicConstruction verifies that NewS3 constructs an S3 client
// from a valid config.
func TestNewS3_BasicConstruction(t *testing.T) {
	ctx := context.Background()
	cfg, err := LoadAWSConfig(ctx, WithRegion("us-east-1"))
	require.NoError(t, err)

	client := NewS3(cfg)

	assert.NotNil(t, client)
	assert.IsType(t, &s3v2.Client{}, client)
}

// TestNewLambda_BasicConstruction verifies that NewLambda constructs a
// Lambda client from a valid config.
func TestNewLambda_BasicConstruction(t *testing.T) {
	ctx := context.Background()
	cfg, err := LoadAWSConfig(ctx, WithRegion("us-east-1"))
	require.NoError(t, err)

	client := NewLambda(cfg)

	assert.NotNil(t, client)
	assert.IsType(t, &lambdav2.Client{}, client)
}

// TestNewCloudFormation_BasicConstruction verifies that NewCloudFormation
// constructs a CloudFormation client from a valid config.
func TestNewCloudFormation_BasicConstruction(t *testing.T) {
	ctx := context.Background()
	cfg, err := LoadAWSConfig(ctx, WithRegion("us-east-1"))
	require.NoError(t, err)

	client := NewCloudFormation(cfg)

	assert.NotNil(t, client)
	assert.IsType(t, &cfnv2.Client{}, client)
}
