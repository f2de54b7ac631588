// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters parses --filter expressions and applies them to the row
// datasets commands produce.
//
// A filter spec is a comma separated list of expressions. Each expression is
// key, or key OP value, where OP is one of:
//
//	=   equal
//	~   equal, case-insensitive
//	^   prefix
//	@   contains (substring, list membership or map key)
//	/   regex
//	<   less than
//	>   greater than
//
// Prefixing the operator with ! negates it. The key names an output column,
// so renamed columns are filtered by their output name.
package filters
