// Package depend runs the install script a command declares for the
// current platform, at most once per script for a run.
package depend

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rigup-dev/rigup/pkg/config"
	"github.com/rigup-dev/rigup/pkg/exec"
)

// Status describes how a dependency request ended.
type Status string

const (
	// None means the command declares no dependency for this platform.
	None Status = "none"
	// Satisfied means the install script ran and exited cleanly.
	Satisfied Status = "satisfied"
	// Cached means the script already succeeded earlier in this run.
	Cached Status = "cached"
	// Missing means the declared script file does not exist.
	Missing Status = "missing"
	// Failed means the script could not be started or exited nonzero.
	Failed Status = "failed"
)

// Result reports one Ensure call. Path is the resolved script path
// when a dependency was declared. Err is set for spawn failures.
type Result struct {
	Status Status
	Path   string
	Code   int
	Err    error
}

// Satisfied reports whether the command may reasonably expect its
// dependency to be present. Missing and Failed still do not stop the
// run; the command is attempted regardless.
func (r Result) Satisfied() bool {
	return r.Status == None || r.Status == Satisfied || r.Status == Cached
}

// Resolver memoizes dependency scripts by resolved path. Success is
// cached for the rest of the run; failures are not, so a later line
// naming the same script gets a fresh attempt.
type Resolver struct {
	Root     string
	Platform string
	Config   *config.Config
	Runner   *exec.Runner

	done map[string]struct{}
}

func NewResolver(root, platform string, cfg *config.Config, runner *exec.Runner) *Resolver {
	return &Resolver{
		Root:     root,
		Platform: platform,
		Config:   cfg,
		Runner:   runner,
		done:     make(map[string]struct{}),
	}
}

// Ensure runs the dependency script declared for command on this
// platform, unless it already succeeded or there is nothing to run.
func (r *Resolver) Ensure(ctx context.Context, command string) Result {
	rule, ok := r.Config.CommandRuleFor(command)
	if !ok {
		return Result{Status: None}
	}
	ref, ok := rule.Dependency(r.Platform)
	if !ok || ref.None {
		return Result{Status: None}
	}

	path := ref.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.Root, path)
	}
	if _, done := r.done[path]; done {
		return Result{Status: Cached, Path: path}
	}
	if _, err := os.Stat(path); err != nil {
		return Result{Status: Missing, Path: path}
	}

	res, err := r.Runner.RunScript(ctx, path)
	if err != nil {
		return Result{Status: Failed, Path: path, Err: err}
	}
	if !res.Ok() {
		return Result{Status: Failed, Path: path, Code: res.Code}
	}
	r.done[path] = struct{}{}
	return Result{Status: Satisfied, Path: path}
}
