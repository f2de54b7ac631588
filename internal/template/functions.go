// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"sort"
)

// FunctionView is a single function resource flattened against the template
// globals: what the function will actually run with once deployed.
type FunctionView struct {
	LogicalID   string            `json:"logicalId"`
	Name        string            `json:"name"`
	CodeUri     string            `json:"codeUri"`
	Handler     string            `json:"handler"`
	Runtime     string            `json:"runtime"`
	MemorySize  int               `json:"memorySize"`
	Timeout     int               `json:"timeout"`
	Layers      []string          `json:"layers,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
	Exported    string            `json:"exported,omitempty"`
}

// Functions returns the flattened function views, sorted by logical ID.
// Expressions are evaluated against the given parameter values; anything
// unresolvable keeps its symbolic form rather than failing, since listings
// are routinely produced without a full parameter set.
func (t *Template) Functions(params map[string]string) []FunctionView {
	scope := t.Scope(params)

	// Map each resource to its export name, if an output exports it.
	exports := map[string]string{}
	for _, out := range t.Outputs {
		if out.Export.Name.IsZero() {
			continue
		}
		resource, _, _ := splitAttTarget(out.Value.Target)
		if name, err := out.Export.Name.Eval(scope); err == nil {
			exports[resource] = name
		} else {
			exports[resource] = out.Export.Name.String()
		}
	}

	views := make([]FunctionView, 0, len(t.Resources))
	for id, res := range t.Resources {
		props := res.Properties
		view := FunctionView{
			LogicalID:  id,
			CodeUri:    props.CodeUri,
			Handler:    props.Handler,
			Runtime:    firstOf(props.Runtime, t.Globals.Function.Runtime),
			MemorySize: firstIntOf(props.MemorySize, t.Globals.Function.MemorySize),
			Timeout:    firstIntOf(props.Timeout, t.Globals.Function.Timeout),
			Exported:   exports[id],
		}

		view.Name = evalOrSymbolic(props.FunctionName, scope)
		if view.Name == "" {
			view.Name = id
		}

		for _, layer := range props.Layers {
			view.Layers = append(view.Layers, evalOrSymbolic(layer, scope))
		}

		view.Environment = map[string]string{}
		if t.Globals.Function.Environment != nil {
			for key, value := range t.Globals.Function.Environment.Variables {
				view.Environment[key] = evalOrSymbolic(value, scope)
			}
		}
		if props.Environment != nil {
			// Per-function bindings override the inherited globals.
			for key, value := range props.Environment.Variables {
				view.Environment[key] = evalOrSymbolic(value, scope)
			}
		}

		views = append(views, view)
	}

	sort.Slice(views, func(i, j int) bool {
		return views[i].LogicalID < views[j].LogicalID
	})
	return views
}

func evalOrSymbolic(e Expr, scope map[string]string) string {
	if v, err := e.Eval(scope); err == nil {
		return v
	}
	return e.String()
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstIntOf(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

// splitAttTarget splits the "Resource.Attribute" shape of GetAtt targets;
// plain Refs pass through unchanged.
func splitAttTarget(target string) (string, string, bool) {
	for i := 0; i < len(target); i++ {
		if target[i] == '.' {
			return target[:i], target[i+1:], true
		}
	}
	return target, "", false
}
