// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stackctl/stackctl/internal/log"
)

// Problem is a single validation finding, addressed by a dotted template path.
type Problem struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	return p.Path + ": " + p.Message
}

// Validate checks the template's internal consistency:
//
//   - every resource is a supported type with an effective CodeUri, Handler
//     and Runtime (directly or via Globals);
//   - every layer attached to a function is a declared parameter reference or
//     a literal layer ARN — no undeclared layer references;
//   - every output's source resource exists among the declared resources, and
//     export names are unique;
//   - every substitution variable and reference resolves to a declared
//     parameter, declared resource, or pseudo-parameter;
//   - the resource reference graph is acyclic.
//
// Findings are returned sorted by path so output is stable.
func (t *Template) Validate() []Problem {
	var problems []Problem
	add := func(path, format string, args ...interface{}) {
		problems = append(problems, Problem{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	for name, res := range t.Resources {
		base := "Resources." + name

		if res.Type != FunctionResourceType {
			add(base+".Type", "unsupported resource type %q", res.Type)
			continue
		}

		props := res.Properties
		if props.CodeUri == "" {
			add(base+".Properties.CodeUri", "missing code location")
		}
		if props.Handler == "" {
			add(base+".Properties.Handler", "missing entry point")
		}
		if props.Runtime == "" && t.Globals.Function.Runtime == "" {
			add(base+".Properties.Runtime", "no runtime declared here or in Globals")
		}

		t.checkExpr(base+".Properties.FunctionName", props.FunctionName, add)
		t.checkExpr(base+".Properties.Role", props.Role, add)

		for i, layer := range props.Layers {
			path := fmt.Sprintf("%s.Properties.Layers[%d]", base, i)
			switch layer.Kind {
			case ExprRef:
				if _, ok := t.Parameters[layer.Target]; !ok {
					add(path, "layer reference %q is not a declared parameter", layer.Target)
				}
			case ExprLiteral:
				if !strings.HasPrefix(layer.Literal, "arn:") {
					add(path, "literal layer %q is not an ARN", layer.Literal)
				}
			default:
				t.checkExpr(path, layer, add)
			}
		}

		if props.Environment != nil {
			for key, value := range props.Environment.Variables {
				t.checkExpr(base+".Properties.Environment.Variables."+key, value, add)
			}
		}
	}

	if t.Globals.Function.Environment != nil {
		for key, value := range t.Globals.Function.Environment.Variables {
			t.checkExpr("Globals.Function.Environment.Variables."+key, value, add)
		}
	}

	exports := map[string]string{}
	for name, out := range t.Outputs {
		base := "Outputs." + name

		switch out.Value.Kind {
		case ExprRef, ExprGetAtt:
			resource, _, _ := strings.Cut(out.Value.Target, ".")
			if _, ok := t.Resources[resource]; !ok {
				add(base+".Value", "output references undeclared resource %q", resource)
			}
		case ExprEmpty:
			add(base+".Value", "output has no value")
		default:
			t.checkExpr(base+".Value", out.Value, add)
		}

		if !out.Export.Name.IsZero() {
			t.checkExpr(base+".Export.Name", out.Export.Name, add)
			key := out.Export.Name.String()
			if prior, dup := exports[key]; dup {
				add(base+".Export.Name", "export name duplicates output %q", prior)
			}
			exports[key] = name
		}
	}

	if _, err := t.Graph(); err != nil {
		add("Resources", "%v", err)
	}

	sort.Slice(problems, func(i, j int) bool {
		if problems[i].Path != problems[j].Path {
			return problems[i].Path < problems[j].Path
		}
		return problems[i].Message < problems[j].Message
	})

	log.Debugf("template validated: problems=%d", len(problems))
	return problems
}

// checkExpr verifies every name an expression refers to is declared.
func (t *Template) checkExpr(path string, e Expr, add func(string, string, ...interface{})) {
	for _, name := range e.Vars() {
		if !t.knownName(name) {
			add(path, "reference to undeclared name %q", name)
		}
	}
}
