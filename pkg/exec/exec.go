package exec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Result carries what a finished child process reported. HasCode is
// false when the OS gave no exit status back (for example a
// signal-terminated child); such results still count as Ok.
type Result struct {
	Code     int
	HasCode  bool
	Duration time.Duration
}

func (r Result) Ok() bool {
	return !r.HasCode || r.Code == 0
}

// Runner spawns setup scripts and shell expressions. Children inherit
// the parent environment unless Env is set, and run in Dir when it is
// non-empty.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Dir    string
	Env    []string
}

// RunScript executes a script file as its own process, picking the
// interpreter from the file extension.
func (r *Runner) RunScript(ctx context.Context, path string, args ...string) (Result, error) {
	argv, err := scriptArgv(path, args)
	if err != nil {
		return Result{}, err
	}
	return r.run(exec.CommandContext(ctx, argv[0], argv[1:]...))
}

// RunShell evaluates a shell expression through the platform shell,
// PowerShell on Windows and sh elsewhere.
func (r *Runner) RunShell(ctx context.Context, expr string) (Result, error) {
	if runtime.GOOS == "windows" {
		shell, err := powershellBinary()
		if err != nil {
			return Result{}, err
		}
		return r.run(exec.CommandContext(ctx, shell, "-NoProfile", "-NonInteractive", "-Command", expr))
	}
	return r.run(exec.CommandContext(ctx, "sh", "-c", expr))
}

func scriptArgv(path string, args []string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ps1":
		shell, err := powershellBinary()
		if err != nil {
			return nil, err
		}
		return append([]string{shell, "-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass", "-File", path}, args...), nil
	case ".sh":
		return append([]string{"sh", path}, args...), nil
	default:
		return append([]string{path}, args...), nil
	}
}

func powershellBinary() (string, error) {
	for _, name := range []string{"pwsh", "powershell"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no PowerShell binary on PATH")
}

func (r *Runner) run(cmd *exec.Cmd) (Result, error) {
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Dir = r.Dir
	if r.Env != nil {
		cmd.Env = r.Env
	}

	start := time.Now()
	err := cmd.Run()
	res := Result{Duration: time.Since(start)}
	if err == nil {
		res.HasCode = true
		return res, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			res.Code = code
			res.HasCode = true
		}
		return res, nil
	}
	return Result{}, err
}
