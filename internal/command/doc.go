// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package command wires the stackctl subcommands: template validation and
// inspection, layer resolution, artifact packaging, changeset deployment and
// pipeline execution.
package command
