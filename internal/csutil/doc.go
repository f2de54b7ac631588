// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package csutil resolves changeset specs (LATEST~N, relative index, ARN or
// name prefix) against a stack's changeset history.
package csutil
