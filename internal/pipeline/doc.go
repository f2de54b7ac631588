// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package pipeline models the branch-driven deployment pipeline definition
// and executes its steps: shell script lines followed by a packaged template
// deployment with environment-resolved parameters.
package pipeline
