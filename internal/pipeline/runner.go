// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/stackctl/stackctl/internal/log"
)

// DeployFunc executes a resolved deployment spec. The runner stays decoupled
// from the deploy package so it can be tested without a control plane.
type DeployFunc func(ctx context.Context, spec DeploySpec) error

// Runner executes the steps of one pipeline branch sequentially, aborting on
// the first failure.
type Runner struct {
	Pipeline *Pipeline

	// Dir is the working directory for script steps. Empty means the
	// current directory.
	Dir string

	// Env is the base environment for scripts and variable resolution.
	// Nil means the process environment.
	Env []string

	Stdout io.Writer
	Stderr io.Writer

	Deploy DeployFunc
}

// Run executes the named branch. Script lines run through `sh -c` with the
// runner's environment; a step's deploy spec is resolved against that same
// environment and handed to the Deploy callback.
func (r *Runner) Run(ctx context.Context, branch string) error {
	steps, ok := r.Pipeline.Branches[branch]
	if !ok {
		return errors.Errorf("pipeline has no branch %q (have: %s)",
			branch, strings.Join(r.Pipeline.BranchNames(), ", "))
	}

	stdout := r.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := r.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	started := time.Now()

	for i, step := range steps {
		log.Infof("step %d/%d: %s", i+1, len(steps), step.Name)

		for n, line := range step.Script {
			cmd := exec.CommandContext(ctx, "sh", "-c", line)
			cmd.Dir = r.Dir
			cmd.Env = r.environ()
			cmd.Stdout = stdout
			cmd.Stderr = stderr
			if err := cmd.Run(); err != nil {
				return errors.Wrapf(err, "step %q script line %d (%s)", step.Name, n+1, line)
			}
		}

		if step.Deploy != nil {
			if r.Deploy == nil {
				return errors.Errorf("step %q declares a deploy but the runner has no deployer", step.Name)
			}
			spec, err := step.Deploy.Resolve(r.lookup)
			if err != nil {
				return errors.Wrapf(err, "step %q", step.Name)
			}
			if err := r.Deploy(ctx, spec); err != nil {
				return errors.Wrapf(err, "step %q deploy of stack %s", step.Name, spec.StackName)
			}
		}
	}

	log.Infof("branch %s finished: steps=%d, elapsed=%s",
		branch, len(steps), humanize.RelTime(started, time.Now(), "", ""))
	return nil
}

// environ returns the effective environment for script execution.
func (r *Runner) environ() []string {
	if r.Env != nil {
		return r.Env
	}
	return os.Environ()
}

// lookup resolves a variable from the runner environment.
func (r *Runner) lookup(name string) (string, bool) {
	if r.Env == nil {
		return os.LookupEnv(name)
	}
	prefix := name + "="
	// Last assignment wins, matching shell semantics.
	for i := len(r.Env) - 1; i >= 0; i-- {
		if strings.HasPrefix(r.Env[i], prefix) {
			return r.Env[i][len(prefix):], true
		}
	}
	return "", false
}
