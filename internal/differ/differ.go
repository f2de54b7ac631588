// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"fmt"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/stackctl/stackctl/internal/log"
)

// Diff compares the deployed template body against the locally rendered one
// and returns a line-oriented diff. The second return is false when the
// documents are identical.
func Diff(deployed, local []byte, ignore []string, color bool) (string, bool, error) {
	log.Debugf("comparing templates: deployed=%d bytes, local=%d bytes", len(deployed), len(local))

	if len(deployed) == 0 || len(local) == 0 {
		return "", false, fmt.Errorf("nothing to compare")
	}

	differ := gojsondiff.New()
	delta, err := differ.Compare(deployed, local)
	if err != nil {
		return "", false, fmt.Errorf("failed to compare templates: %w", err)
	}
	if !delta.Modified() {
		return "", false, nil
	}

	var jdoc map[string]interface{}
	if err := json.Unmarshal(deployed, &jdoc); err != nil {
		return "", false, fmt.Errorf("failed to unmarshal deployed template: %w", err)
	}

	for _, key := range ignore {
		if key != "" {
			delete(jdoc, key)
		}
	}

	config := formatter.AsciiFormatterConfig{
		ShowArrayIndex: false,
		Coloring:       color,
	}

	text, err := formatter.NewAsciiFormatter(jdoc, config).Format(delta)
	if err != nil {
		return "", false, err
	}

	return text, true, nil
}
