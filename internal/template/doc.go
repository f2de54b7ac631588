// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package template models the serverless infrastructure template: parameter
// declarations, global function defaults, function resources with their
// layers and environment bindings, and exported outputs. It parses the YAML
// intrinsic forms, validates cross-references, and renders the canonical
// JSON body for deployment.
package template
