// Package engine walks the setup lines in order. One line failing
// never stops the run; every outcome is recorded and the loop moves
// on.
package engine

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/rigup-dev/rigup/internal/depend"
	"github.com/rigup-dev/rigup/pkg/exec"
	"github.com/rigup-dev/rigup/pkg/notify"
	"github.com/rigup-dev/rigup/pkg/policy"
	"github.com/rigup-dev/rigup/pkg/report"
	"github.com/rigup-dev/rigup/pkg/script"
)

type Engine struct {
	Root     string
	Platform string
	Policy   *policy.Evaluator
	Deps     *depend.Resolver
	Runner   *exec.Runner
	Log      *slog.Logger
	Notify   *notify.Printer
}

// Run executes every line and returns the aggregated report. Per-line
// conditions are outcomes, not errors.
func (e *Engine) Run(ctx context.Context, lines []script.Line) *report.Run {
	run := report.NewRun(e.Root, e.Platform)
	e.Log.Info("run started", "id", run.ID, "platform", e.Platform, "lines", len(lines))

	for _, line := range lines {
		run.Record(e.step(ctx, line))
	}

	run.Finish()
	e.Log.Info("run finished",
		"id", run.ID,
		"succeeded", run.Summary.Succeeded,
		"failed", run.Summary.Failed,
		"rejected", run.Summary.Rejected,
		"skipped", run.Summary.Skipped)
	return run
}

func (e *Engine) step(ctx context.Context, line script.Line) report.Outcome {
	out := report.Outcome{Line: line.Number, Kind: line.Kind, Target: line.Target}

	if line.Kind == script.Blank || line.Kind == script.Comment {
		e.Log.Debug("skipping line", "line", line.Number, "kind", line.Kind)
		out.Status = report.Skipped
		return out
	}

	decision := e.Policy.Evaluate(line)
	if !decision.Allowed {
		e.Log.Warn("line rejected", "line", line.Number, "target", line.Target, "reason", decision.Reason)
		e.Notify.Warnf("line %d: %s", line.Number, decision.Reason)
		out.Status = report.Rejected
		out.Reason = decision.Reason
		return out
	}

	if line.Kind == script.Command {
		e.ensureDependency(ctx, line, &out)
	}

	e.Notify.Activityf("line %d: %s", line.Number, line.Text)
	res, err := e.invoke(ctx, line)
	if err != nil {
		e.Log.Error("line could not start", "line", line.Number, "target", line.Target, "error", err)
		e.Notify.Errorf("line %d: %s could not start: %v", line.Number, line.Target, err)
		out.Status = report.Failed
		out.Reason = err.Error()
		return out
	}

	if res.HasCode {
		code := res.Code
		out.ExitCode = &code
	}
	if res.Ok() {
		e.Log.Info("line succeeded", "line", line.Number, "target", line.Target, "duration", res.Duration)
		e.Notify.Successf("line %d: %s", line.Number, line.Text)
		out.Status = report.Succeeded
	} else {
		e.Log.Warn("line failed", "line", line.Number, "target", line.Target, "code", res.Code, "duration", res.Duration)
		e.Notify.Errorf("line %d: %s exited %d", line.Number, line.Text, res.Code)
		out.Status = report.Failed
	}
	return out
}

// ensureDependency runs the command's install script if one is
// declared. Dependency trouble is warned about but never blocks the
// command itself.
func (e *Engine) ensureDependency(ctx context.Context, line script.Line, out *report.Outcome) {
	dep := e.Deps.Ensure(ctx, line.Target)
	if dep.Status == depend.None {
		return
	}
	out.Dependency = string(dep.Status)
	out.DependencyScript = dep.Path

	switch dep.Status {
	case depend.Satisfied:
		e.Log.Info("dependency installed", "line", line.Number, "command", line.Target, "script", dep.Path)
	case depend.Cached:
		e.Log.Debug("dependency already installed this run", "line", line.Number, "script", dep.Path)
	case depend.Missing:
		e.Log.Warn("dependency script missing", "line", line.Number, "command", line.Target, "script", dep.Path)
		e.Notify.Warnf("dependency script %s not found, running %s anyway", dep.Path, line.Target)
	case depend.Failed:
		if dep.Err != nil {
			e.Log.Warn("dependency script could not start", "line", line.Number, "script", dep.Path, "error", dep.Err)
		} else {
			e.Log.Warn("dependency script failed", "line", line.Number, "script", dep.Path, "code", dep.Code)
		}
		e.Notify.Warnf("dependency for %s failed, running it anyway", line.Target)
	}
}

func (e *Engine) invoke(ctx context.Context, line script.Line) (exec.Result, error) {
	if line.Kind == script.File {
		target := line.Target
		if !filepath.IsAbs(target) {
			target = filepath.Join(e.Root, target)
		}
		return e.Runner.RunScript(ctx, target, line.Args...)
	}
	return e.Runner.RunShell(ctx, line.Text)
}
