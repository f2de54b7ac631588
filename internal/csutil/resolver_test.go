// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package csutil

import (
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeSummaries creates a newest-first slice of changeset summaries.
func makeSummaries() []types.ChangeSetSummary {
	return []types.ChangeSetSummary{
		{
			ChangeSetId:   awsv2.String("arn:aws:cloudformation:us-east-1:123456789012:changeSet/stackctl-300/ccc"),
			ChangeSetName: awsv2.String("stackctl-300"),
		},
		{
			ChangeSetId:   awsv2.String("arn:aws:cloudformation:us-east-1:123456789012:changeSet/stackctl-200/bbb"),
			ChangeSetName: awsv2.String("stackctl-200"),
		},
		{
			ChangeSetId:   awsv2.String("arn:aws:cloudformation:us-east-1:123456789012:changeSet/stackctl-100/aaa"),
			ChangeSetName: awsv2.String("stackctl-100"),
		},
		{
			ChangeSetId:   awsv2.String("arn:aws:cloudformation:us-east-1:123456789012:changeSet/manual-fix/ddd"),
			ChangeSetName: awsv2.String("manual-fix"),
		},
	}
}

func TestResolve(t *testing.T) {
	summaries := makeSummaries()

	tests := []struct {
		name      string
		specs     []string
		wantNames []string
		wantErr   bool
	}{
		{
			name:      "no specs defaults to LATEST~0",
			specs:     []string{},
			wantNames: []string{"stackctl-300"},
		},
		{
			name:      "single LATEST spec",
			specs:     []string{"LATEST~0"},
			wantNames: []string{"stackctl-300"},
		},
		{
			name:      "multiple LATEST specs",
			specs:     []string{"LATEST~1", "LATEST~3"},
			wantNames: []string{"stackctl-200", "manual-fix"},
		},
		{
			name:      "LATEST spec with lowercase",
			specs:     []string{"latest~2"},
			wantNames: []string{"stackctl-100"},
		},
		{
			name:    "LATEST index out of range",
			specs:   []string{"LATEST~9"},
			wantErr: true,
		},
		{
			name:    "LATEST index not numeric",
			specs:   []string{"LATEST~x"},
			wantErr: true,
		},
		{
			name:      "relative numeric index",
			specs:     []string{"-1"},
			wantNames: []string{"stackctl-200"},
		},
		{
			name:      "zero index is most recent",
			specs:     []string{"0"},
			wantNames: []string{"stackctl-300"},
		},
		{
			name:    "positive numeric rejected",
			specs:   []string{"2"},
			wantErr: true,
		},
		{
			name:    "relative index out of range",
			specs:   []string{"-9"},
			wantErr: true,
		},
		{
			name:      "ARN prefix",
			specs:     []string{"arn:aws:cloudformation:us-east-1:123456789012:changeSet/manual-fix"},
			wantNames: []string{"manual-fix"},
		},
		{
			name:    "unknown ARN",
			specs:   []string{"arn:aws:cloudformation:us-east-1:123456789012:changeSet/nope"},
			wantErr: true,
		},
		{
			name:      "name prefix",
			specs:     []string{"manual"},
			wantNames: []string{"manual-fix"},
		},
		{
			name:      "ambiguous name prefix picks most recent",
			specs:     []string{"stackctl-"},
			wantNames: []string{"stackctl-300"},
		},
		{
			name:    "unknown name prefix",
			specs:   []string{"nope"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(summaries, tt.specs...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, len(tt.wantNames))
			for i, want := range tt.wantNames {
				assert.Equal(t, want, awsv2.ToString(got[i].ChangeSetName))
			}
		})
	}
}

func TestResolveEmptySummaries(t *testing.T) {
	_, err := Resolve(nil)
	assert.Error(t, err)
}
