// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"reflect"
	"testing"
)

func TestDeduplicateFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "empty args",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "only program and command",
			args:     []string{"stackctl", "functions"},
			expected: []string{"stackctl", "functions"},
		},
		{
			name:     "no duplicates",
			args:     []string{"stackctl", "functions", "--output", "text", "--titles"},
			expected: []string{"stackctl", "functions", "--output", "text", "--titles"},
		},
		{
			name:     "duplicate flag with value - last wins",
			args:     []string{"stackctl", "functions", "--output", "json", "--titles", "--output", "text"},
			expected: []string{"stackctl", "functions", "--titles", "--output", "text"},
		},
		{
			name:     "duplicate boolean flag",
			args:     []string{"stackctl", "functions", "--titles", "--wait", "--titles"},
			expected: []string{"stackctl", "functions", "--wait", "--titles"},
		},
		{
			name:     "duplicate flag with equals syntax",
			args:     []string{"stackctl", "functions", "--output=json", "--titles", "--output=text"},
			expected: []string{"stackctl", "functions", "--titles", "--output=text"},
		},
		{
			name:     "mixed equals and space syntax - same flag",
			args:     []string{"stackctl", "functions", "--output=json", "--output", "text"},
			expected: []string{"stackctl", "functions", "--output", "text"},
		},
		{
			name:     "multiple different flags with duplicates",
			args:     []string{"stackctl", "deploy", "--stack", "svc-dev", "--region", "us-east-1", "--stack", "svc-prd", "--region", "us-west-2"},
			expected: []string{"stackctl", "deploy", "--stack", "svc-prd", "--region", "us-west-2"},
		},
		{
			name:     "positional args preserved",
			args:     []string{"stackctl", "functions", "/path/to/app", "--output", "json", "--output", "text"},
			expected: []string{"stackctl", "functions", "/path/to/app", "--output", "text"},
		},
		{
			name:     "short flags deduplicated",
			args:     []string{"stackctl", "functions", "-o", "json", "-o", "text"},
			expected: []string{"stackctl", "functions", "-o", "text"},
		},
		{
			name:     "different flags not affected",
			args:     []string{"stackctl", "deploy", "--wait", "--no-cache"},
			expected: []string{"stackctl", "deploy", "--wait", "--no-cache"},
		},
		{
			name:     "triple duplicate",
			args:     []string{"stackctl", "functions", "--output", "a", "--output", "b", "--output", "c"},
			expected: []string{"stackctl", "functions", "--output", "c"},
		},
		{
			name:     "flag at end with no value treated as boolean",
			args:     []string{"stackctl", "deploy", "--titles", "--wait", "--titles"},
			expected: []string{"stackctl", "deploy", "--wait", "--titles"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := deduplicateFlags(tt.args)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("deduplicateFlags(%v) = %v, want %v", tt.args, result, tt.expected)
			}
		})
	}
}

func TestDeduplicateFlagsPreservesOrder(t *testing.T) {
	// Ensure non-duplicate flags maintain their relative order.
	args := []string{"stackctl", "functions", "--alpha", "--beta", "--gamma"}
	result := deduplicateFlags(args)
	expected := []string{"stackctl", "functions", "--alpha", "--beta", "--gamma"}

	if !reflect.DeepEqual(result, expected) {
		t.Errorf("Order not preserved: got %v, want %v", result, expected)
	}
}

func TestDeduplicateFlagsWithPositionalAfterFlags(t *testing.T) {
	// Positional args after flags should be preserved.
	args := []string{"stackctl", "functions", "--output", "json", "/path", "--output", "text"}
	result := deduplicateFlags(args)
	expected := []string{"stackctl", "functions", "/path", "--output", "text"}

	if !reflect.DeepEqual(result, expected) {
		t.Errorf("got %v, want %v", result, expected)
	}
}

func TestInjectConfigSet(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		key       string
		insertIdx int
		configVal []string
		expected  []string
	}{
		{
			name:      "empty config returns args unchanged",
			args:      []string{"stackctl", "functions", "--titles"},
			key:       "defaults",
			insertIdx: 2,
			configVal: nil,
			expected:  []string{"stackctl", "functions", "--titles"},
		},
		{
			name:      "single entry injected",
			args:      []string{"stackctl", "functions", "--titles"},
			key:       "defaults",
			insertIdx: 2,
			configVal: []string{"--color"},
			expected:  []string{"stackctl", "functions", "--color", "--titles"},
		},
		{
			name:      "multi-word entry split",
			args:      []string{"stackctl", "functions", "--titles"},
			key:       "defaults",
			insertIdx: 2,
			configVal: []string{"--output text"},
			expected:  []string{"stackctl", "functions", "--output", "text", "--titles"},
		},
		{
			name:      "multiple entries",
			args:      []string{"stackctl", "functions"},
			key:       "defaults",
			insertIdx: 2,
			configVal: []string{"--color", "--output json"},
			expected:  []string{"stackctl", "functions", "--color", "--output", "json"},
		},
		{
			name:      "insert at index 3",
			args:      []string{"stackctl", "functions", "/path/to/app", "--titles"},
			key:       "defaults",
			insertIdx: 3,
			configVal: []string{"--color"},
			expected:  []string{"stackctl", "functions", "/path/to/app", "--color", "--titles"},
		},
		{
			name:      "complex multi-word entries",
			args:      []string{"stackctl", "deploy"},
			key:       "deploy.defaults",
			insertIdx: 2,
			configVal: []string{"--stack svc-dev", "--region us-east-1"},
			expected:  []string{"stackctl", "deploy", "--stack", "svc-dev", "--region", "us-east-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := injectConfigSetTestable(tt.args, tt.configVal, tt.insertIdx)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("injectConfigSet() = %v, want %v", result, tt.expected)
			}
		})
	}
}

// injectConfigSetTestable is a test-friendly version that accepts config values
// directly instead of reading from global config.
func injectConfigSetTestable(args []string, entries []string, insertIdx int) []string {
	if len(entries) == 0 {
		return args
	}

	var expanded []string
	for _, entry := range entries {
		for _, field := range splitFields(entry) {
			expanded = append(expanded, field)
		}
	}

	return append(args[:insertIdx], append(expanded, args[insertIdx:]...)...)
}

// splitFields splits a string by whitespace, matching strings.Fields behavior.
func splitFields(s string) []string {
	var result []string
	start := -1

	for i, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if start >= 0 {
				result = append(result, s[start:i])
				start = -1
			}
		} else {
			if start < 0 {
				start = i
			}
		}
	}

	if start >= 0 {
		result = append(result, s[start:])
	}

	return result
}
