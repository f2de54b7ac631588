// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/stackctl/stackctl/internal/log"
)

// FunctionResourceType is the only resource type stackctl manages. Everything
// else in a template is rejected by Validate.
const FunctionResourceType = "AWS::Serverless::Function"

// pseudoParameters are always in scope for substitutions and refs, resolved
// by the control plane at deploy time.
var pseudoParameters = map[string]bool{
	"AWS::AccountId": true,
	"AWS::Partition": true,
	"AWS::Region":    true,
	"AWS::StackName": true,
}

// Template is the parsed infrastructure template: parameter declarations,
// global function defaults, the function resources, and the exported outputs.
type Template struct {
	FormatVersion string               `yaml:"AWSTemplateFormatVersion" json:"AWSTemplateFormatVersion,omitempty"`
	Transform     string               `yaml:"Transform" json:"Transform,omitempty"`
	Description   string               `yaml:"Description" json:"Description,omitempty"`
	Parameters    map[string]Parameter `yaml:"Parameters" json:"Parameters,omitempty"`
	Globals       Globals              `yaml:"Globals" json:"Globals,omitzero"`
	Resources     map[string]Resource  `yaml:"Resources" json:"Resources"`
	Outputs       map[string]Output    `yaml:"Outputs" json:"Outputs,omitempty"`

	// Source is the path the template was loaded from. Not part of the
	// rendered body.
	Source string `yaml:"-" json:"-"`
}

// Parameter is a named input substituted at deployment time.
type Parameter struct {
	Type          string   `yaml:"Type" json:"Type"`
	Default       string   `yaml:"Default" json:"Default,omitempty"`
	AllowedValues []string `yaml:"AllowedValues" json:"AllowedValues,omitempty"`
	NoEcho        bool     `yaml:"NoEcho" json:"NoEcho,omitempty"`
	Description   string   `yaml:"Description" json:"Description,omitempty"`
}

// Globals carries defaults inherited by every function resource.
type Globals struct {
	Function FunctionDefaults `yaml:"Function" json:"Function,omitempty"`
}

// FunctionDefaults are the global runtime defaults: fixed runtime, memory
// allocation, timeout ceiling, and shared environment variables (the database
// connection settings in the reference stack).
type FunctionDefaults struct {
	Runtime     string       `yaml:"Runtime" json:"Runtime,omitempty"`
	MemorySize  int          `yaml:"MemorySize" json:"MemorySize,omitempty"`
	Timeout     int          `yaml:"Timeout" json:"Timeout,omitempty"`
	Environment *Environment `yaml:"Environment" json:"Environment,omitempty"`
}

// Environment is a set of environment variable bindings. Values may be
// literals or intrinsic references to parameters.
type Environment struct {
	Variables map[string]Expr `yaml:"Variables" json:"Variables"`
}

// Resource declares a single serverless function.
type Resource struct {
	Type       string             `yaml:"Type" json:"Type"`
	Properties FunctionProperties `yaml:"Properties" json:"Properties"`
}

// FunctionProperties is the per-function configuration. Fields left zero fall
// back to the template globals.
type FunctionProperties struct {
	FunctionName Expr         `yaml:"FunctionName" json:"FunctionName,omitzero"`
	CodeUri      string       `yaml:"CodeUri" json:"CodeUri,omitempty"`
	Handler      string       `yaml:"Handler" json:"Handler,omitempty"`
	Runtime      string       `yaml:"Runtime" json:"Runtime,omitempty"`
	MemorySize   int          `yaml:"MemorySize" json:"MemorySize,omitempty"`
	Timeout      int          `yaml:"Timeout" json:"Timeout,omitempty"`
	Layers       []Expr       `yaml:"Layers" json:"Layers,omitempty"`
	Environment  *Environment `yaml:"Environment" json:"Environment,omitempty"`
	Role         Expr         `yaml:"Role" json:"Role,omitzero"`
}

// Output is a named value exported for cross-stack consumption.
type Output struct {
	Description string `yaml:"Description" json:"Description,omitempty"`
	Value       Expr   `yaml:"Value" json:"Value"`
	Export      Export `yaml:"Export" json:"Export,omitzero"`
}

// Export names an output for reference by other stacks.
type Export struct {
	Name Expr `yaml:"Name" json:"Name,omitzero"`
}

// Load reads and parses the template at path. Structural problems beyond
// YAML well-formedness are left to Validate.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}

	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}

	if len(t.Resources) == 0 {
		return nil, fmt.Errorf("template %s declares no resources", path)
	}

	t.Source = path
	log.Debugf("template loaded: path=%s, resources=%d, outputs=%d",
		path, len(t.Resources), len(t.Outputs))
	return &t, nil
}

// ResourceNames returns the declared resource logical IDs, sorted.
func (t *Template) ResourceNames() []string {
	names := make([]string, 0, len(t.Resources))
	for name := range t.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OutputNames returns the declared output names, sorted.
func (t *Template) OutputNames() []string {
	names := make([]string, 0, len(t.Outputs))
	for name := range t.Outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// knownName reports whether name resolves to a declared parameter, a declared
// resource, or a pseudo-parameter.
func (t *Template) knownName(name string) bool {
	if pseudoParameters[name] {
		return true
	}
	if _, ok := t.Parameters[name]; ok {
		return true
	}
	_, ok := t.Resources[name]
	return ok
}

// Scope builds the evaluation scope for expression rendering: defaults,
// caller-provided parameter values, pseudo-parameter placeholders, and
// resource name placeholders.
func (t *Template) Scope(params map[string]string) map[string]string {
	scope := make(map[string]string, len(t.Parameters)+len(params)+len(t.Resources))
	for name, p := range t.Parameters {
		if p.Default != "" {
			scope[name] = p.Default
		}
	}
	for name, value := range params {
		scope[name] = value
	}
	for name := range pseudoParameters {
		if _, ok := scope[name]; !ok {
			scope[name] = "<" + name + ">"
		}
	}
	for name := range t.Resources {
		if _, ok := scope[name]; !ok {
			scope[name] = "<" + name + ">"
		}
	}
	return scope
}
