// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/stackctl/stackctl/internal/log"
)

// Pipeline is the parsed deployment pipeline definition: an informational
// runner image and the ordered steps to execute per branch.
type Pipeline struct {
	Image    string
	Branches map[string][]Step
	Source   string
}

// Step is one ordered pipeline action: shell script lines, a template
// deployment, or both (scripts run first).
type Step struct {
	Name   string      `yaml:"name"`
	Script []string    `yaml:"script"`
	Deploy *DeploySpec `yaml:"deploy"`
}

// DeploySpec is the packaged deployment invocation: the target stack, the
// template, the artifact bucket, static parameter overrides (with $VAR
// substitution from the environment), and the layer parameters resolved to
// their latest versions immediately before deployment.
type DeploySpec struct {
	StackName       string            `yaml:"stack-name"`
	Region          string            `yaml:"region"`
	Bucket          string            `yaml:"s3-bucket"`
	Template        string            `yaml:"template"`
	Capabilities    []string          `yaml:"capabilities"`
	Wait            bool              `yaml:"wait"`
	Parameters      map[string]string `yaml:"parameter-overrides"`
	LayerParameters map[string]string `yaml:"layer-parameters"`
}

// file mirrors the on-disk YAML shape. Steps are wrapped in a single-key
// "step" map so the branch sequence reads naturally.
type file struct {
	Image     string `yaml:"image"`
	Pipelines struct {
		Branches map[string][]struct {
			Step Step `yaml:"step"`
		} `yaml:"branches"`
	} `yaml:"pipelines"`
}

// Load reads and validates the pipeline definition at path.
func Load(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read pipeline definition")
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "failed to parse pipeline definition %s", path)
	}

	if len(f.Pipelines.Branches) == 0 {
		return nil, errors.Errorf("pipeline %s declares no branches", path)
	}

	p := &Pipeline{
		Image:    f.Image,
		Branches: make(map[string][]Step, len(f.Pipelines.Branches)),
		Source:   path,
	}

	for branch, wrapped := range f.Pipelines.Branches {
		if len(wrapped) == 0 {
			return nil, errors.Errorf("branch %q has no steps", branch)
		}
		steps := make([]Step, 0, len(wrapped))
		for i, w := range wrapped {
			step := w.Step
			if step.Name == "" {
				return nil, errors.Errorf("branch %q step %d has no name", branch, i+1)
			}
			if len(step.Script) == 0 && step.Deploy == nil {
				return nil, errors.Errorf("branch %q step %q has neither script nor deploy", branch, step.Name)
			}
			if step.Deploy != nil {
				if step.Deploy.StackName == "" {
					return nil, errors.Errorf("branch %q step %q deploy has no stack-name", branch, step.Name)
				}
				if step.Deploy.Template == "" {
					return nil, errors.Errorf("branch %q step %q deploy has no template", branch, step.Name)
				}
			}
			steps = append(steps, step)
		}
		p.Branches[branch] = steps
	}

	log.Debugf("pipeline loaded: path=%s, branches=%d", path, len(p.Branches))
	return p, nil
}

// BranchNames returns the declared branch names, sorted.
func (p *Pipeline) BranchNames() []string {
	names := make([]string, 0, len(p.Branches))
	for name := range p.Branches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns a copy of the spec with every $VAR / ${VAR} in its string
// fields expanded through lookup. Unresolved variables are collected into a
// single error so the caller sees the complete set of missing secrets, not
// just the first.
func (d DeploySpec) Resolve(lookup func(string) (string, bool)) (DeploySpec, error) {
	var missing []string

	expand := func(s string) string {
		return os.Expand(s, func(name string) string {
			if v, ok := lookup(name); ok {
				return v
			}
			missing = append(missing, name)
			return ""
		})
	}

	resolved := d
	resolved.StackName = expand(d.StackName)
	resolved.Region = expand(d.Region)
	resolved.Bucket = expand(d.Bucket)
	resolved.Template = expand(d.Template)

	resolved.Capabilities = make([]string, len(d.Capabilities))
	for i, c := range d.Capabilities {
		resolved.Capabilities[i] = expand(c)
	}

	resolved.Parameters = make(map[string]string, len(d.Parameters))
	for key, value := range d.Parameters {
		resolved.Parameters[key] = expand(value)
	}

	// Layer names are plain identifiers, never substituted.
	resolved.LayerParameters = make(map[string]string, len(d.LayerParameters))
	for key, value := range d.LayerParameters {
		resolved.LayerParameters[key] = value
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return DeploySpec{}, errors.Errorf(
			"unresolved pipeline variables: %s", strings.Join(missing, ", "))
	}

	return resolved, nil
}
