// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"encoding/json"
	"fmt"
)

// Render produces the canonical JSON template body submitted to the control
// plane. Intrinsics stay symbolic (long form); this is a format conversion,
// not an evaluation, so the body diffs cleanly against what a deployed stack
// returns from GetTemplate.
func (t *Template) Render() ([]byte, error) {
	body, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}
	return body, nil
}

// SetCodeUri rewrites a single resource's code location, used by the packager
// to point functions at uploaded artifacts.
func (t *Template) SetCodeUri(logicalID, uri string) error {
	res, ok := t.Resources[logicalID]
	if !ok {
		return fmt.Errorf("no resource %q", logicalID)
	}
	res.Properties.CodeUri = uri
	t.Resources[logicalID] = res
	return nil
}
