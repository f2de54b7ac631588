// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package csutil

import (
	"fmt"
	"strconv"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
)

// Resolve takes a collection of changeset summaries plus a spec and returns
// the summaries that match the specs. The spec can be in any of the formats
// shown below. The list of summaries is in descending creation order, which
// effectively makes it most recent first.
func Resolve(summaries []types.ChangeSetSummary, specs ...string) ([]types.ChangeSetSummary, error) {
	var result = []types.ChangeSetSummary{}

	// specs is going to be zero or more changeset specs. A spec could be -
	//   empty     - the most recent changeset.
	//   LATEST~1  - the -1 changeset.
	//   -N        - the Nth most recent changeset.
	//   arn:...   - the changeset with that ARN.
	//   name      - the first changeset whose name has that prefix.

	// Short circuit if no spec was provided and return the most recent.
	if len(specs) == 0 {
		specs = []string{"LATEST~0"}
	}

	for _, spec := range specs {
		cs, err := resolveSpec(spec, summaries)
		if err != nil {
			return nil, err
		}
		result = append(result, cs)
	}

	return result, nil
}

// resolveSpec takes a single spec string and returns the matching changeset
// summary. Specs can be:
//   - LATEST~N: relative index (0 is the most recent)
//   - numeric: negative or zero means a relative index
//   - arn: prefix: match on the changeset ARN
//   - anything else: first summary whose name has that prefix
func resolveSpec(spec string, summaries []types.ChangeSetSummary) (types.ChangeSetSummary, error) {
	switch {
	case strings.HasPrefix(strings.ToUpper(spec), "LATEST~"):
		return resolveLatestSpec(spec, summaries)

	case isNumeric(spec):
		return resolveNumericSpec(spec, summaries)

	case strings.HasPrefix(spec, "arn:"):
		return resolveArnSpec(spec, summaries)

	default:
		return resolveNameSpec(spec, summaries)
	}
}

// resolveLatestSpec handles LATEST~N format specs.
func resolveLatestSpec(spec string, summaries []types.ChangeSetSummary) (types.ChangeSetSummary, error) {
	parts := strings.Split(spec, "~")
	if len(parts) != 2 {
		return types.ChangeSetSummary{}, fmt.Errorf("invalid LATEST spec format: %s", spec)
	}

	index, err := strconv.Atoi(parts[1])
	if err != nil {
		return types.ChangeSetSummary{}, fmt.Errorf("invalid LATEST index: %s", parts[1])
	}

	if index < 0 || index > len(summaries)-1 {
		return types.ChangeSetSummary{}, fmt.Errorf("index %d out of range for %d changesets", index, len(summaries))
	}

	return summaries[index], nil
}

// resolveNumericSpec handles relative index specs.
func resolveNumericSpec(spec string, summaries []types.ChangeSetSummary) (types.ChangeSetSummary, error) {
	i, _ := strconv.Atoi(spec)

	if i > 0 {
		return types.ChangeSetSummary{}, fmt.Errorf("numeric changeset spec must be <= 0, got %s", spec)
	}

	// <= 0 means it's a relative index into the summary list
	index := -i
	if index > len(summaries)-1 {
		return types.ChangeSetSummary{}, fmt.Errorf("index %d out of range for %d changesets", index, len(summaries))
	}
	return summaries[index], nil
}

// resolveArnSpec handles changeset ARN specs.
func resolveArnSpec(spec string, summaries []types.ChangeSetSummary) (types.ChangeSetSummary, error) {
	for _, s := range summaries {
		if strings.HasPrefix(awsv2.ToString(s.ChangeSetId), spec) {
			return s, nil
		}
	}

	return types.ChangeSetSummary{}, fmt.Errorf("failed to find changeset with ARN: %s", spec)
}

// resolveNameSpec handles changeset name prefix specs.
func resolveNameSpec(spec string, summaries []types.ChangeSetSummary) (types.ChangeSetSummary, error) {
	for _, s := range summaries {
		if strings.HasPrefix(awsv2.ToString(s.ChangeSetName), spec) {
			return s, nil
		}
	}

	return types.ChangeSetSummary{}, fmt.Errorf("failed to find changeset with name prefix: %s", spec)
}

// isNumeric checks if a string is a numeric value.
func isNumeric(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
