// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package layers resolves the latest published versions of the shared code
// layers attached to function resources, with file-cache backing.
package layers
