// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package deploy packages function code to the artifact bucket and drives
// changeset-based stack deployments.
package deploy
