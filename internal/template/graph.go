// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"

	"github.com/dominikbraun/graph"
)

// Graph builds the directed reference graph between resources: an edge from A
// to B means A's properties refer to B. Cycle-producing references are
// rejected, since the control plane cannot order the creation of mutually
// dependent resources.
func (t *Template) Graph() (graph.Graph[string, string], error) {
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())

	for name := range t.Resources {
		if err := g.AddVertex(name); err != nil {
			return nil, fmt.Errorf("failed to add resource %s: %w", name, err)
		}
	}

	for name, res := range t.Resources {
		for _, dep := range resourceRefs(t, res) {
			if dep == name {
				return nil, fmt.Errorf("resource %s references itself", name)
			}
			err := g.AddEdge(name, dep)
			switch err {
			case nil, graph.ErrEdgeAlreadyExists:
				// fine
			case graph.ErrEdgeCreatesCycle:
				return nil, fmt.Errorf("reference cycle between %s and %s", name, dep)
			default:
				return nil, fmt.Errorf("failed to add edge %s -> %s: %w", name, dep, err)
			}
		}
	}

	return g, nil
}

// resourceRefs collects the names of declared resources a resource refers to.
func resourceRefs(t *Template, res Resource) []string {
	var exprs []Expr
	exprs = append(exprs, res.Properties.FunctionName, res.Properties.Role)
	exprs = append(exprs, res.Properties.Layers...)
	if res.Properties.Environment != nil {
		for _, v := range res.Properties.Environment.Variables {
			exprs = append(exprs, v)
		}
	}

	var deps []string
	seen := map[string]bool{}
	for _, e := range exprs {
		for _, name := range e.Vars() {
			if _, ok := t.Resources[name]; ok && !seen[name] {
				seen[name] = true
				deps = append(deps, name)
			}
		}
	}
	return deps
}
