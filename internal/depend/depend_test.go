package depend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rigup-dev/rigup/pkg/config"
	"github.com/rigup-dev/rigup/pkg/exec"
)

func newResolver(t *testing.T, yaml string) (*Resolver, string) {
	t.Helper()
	root := t.TempDir()
	cfgPath := filepath.Join(root, "restrictions.yaml")
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return NewResolver(root, "linux", cfg, &exec.Runner{Dir: root}), root
}

func countRuns(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return strings.Count(string(data), "x")
}

func TestEnsureNoDependency(t *testing.T) {
	t.Parallel()

	r, _ := newResolver(t, `
platforms:
  linux: linux
commands:
  winget:
    platform: windows
    windows_dependency: scripts/install-winget.ps1
  apt-get:
    linux_dependency: false
`)

	if res := r.Ensure(context.Background(), "unlisted"); res.Status != None || !res.Satisfied() {
		t.Fatalf("unlisted command: %+v", res)
	}
	if res := r.Ensure(context.Background(), "winget"); res.Status != None {
		t.Fatalf("no linux dependency declared for winget: %+v", res)
	}
	if res := r.Ensure(context.Background(), "apt-get"); res.Status != None {
		t.Fatalf("explicit false means nothing to run: %+v", res)
	}
}

func TestEnsureMissingScript(t *testing.T) {
	t.Parallel()

	r, root := newResolver(t, `
platforms:
  linux: linux
commands:
  mytool:
    linux_dependency: scripts/install-mytool.sh
`)

	res := r.Ensure(context.Background(), "mytool")
	if res.Status != Missing || res.Satisfied() {
		t.Fatalf("result = %+v", res)
	}
	if want := filepath.Join(root, "scripts", "install-mytool.sh"); res.Path != want {
		t.Fatalf("path = %q, want %q", res.Path, want)
	}
}

func TestEnsureMemoizesSuccess(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("dependency scripts use sh")
	}

	r, root := newResolver(t, `
platforms:
  linux: linux
commands:
  mytool:
    linux_dependency: scripts/install-mytool.sh
  othertool:
    linux_dependency: scripts/install-mytool.sh
`)

	counter := filepath.Join(root, "count")
	script := filepath.Join(root, "scripts", "install-mytool.sh")
	if err := os.MkdirAll(filepath.Dir(script), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(script, []byte(fmt.Sprintf("echo x >> %q\n", counter)), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	first := r.Ensure(context.Background(), "mytool")
	if first.Status != Satisfied {
		t.Fatalf("first = %+v", first)
	}
	second := r.Ensure(context.Background(), "mytool")
	if second.Status != Cached || !second.Satisfied() {
		t.Fatalf("second = %+v", second)
	}
	// Another command naming the same script shares the cache entry.
	third := r.Ensure(context.Background(), "othertool")
	if third.Status != Cached {
		t.Fatalf("third = %+v", third)
	}
	if got := countRuns(t, counter); got != 1 {
		t.Fatalf("script ran %d times, want 1", got)
	}
}

func TestEnsureFailureIsNotCached(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("dependency scripts use sh")
	}

	r, root := newResolver(t, `
platforms:
  linux: linux
commands:
  mytool:
    linux_dependency: scripts/install-mytool.sh
`)

	counter := filepath.Join(root, "count")
	ready := filepath.Join(root, "ready")
	script := filepath.Join(root, "scripts", "install-mytool.sh")
	if err := os.MkdirAll(filepath.Dir(script), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	body := fmt.Sprintf("echo x >> %q\ntest -f %q\n", counter, ready)
	if err := os.WriteFile(script, []byte(body), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	first := r.Ensure(context.Background(), "mytool")
	if first.Status != Failed || first.Satisfied() {
		t.Fatalf("first = %+v", first)
	}
	if first.Code == 0 {
		t.Fatalf("failure should carry the exit code, got %+v", first)
	}

	// The failure must not stick: the next request tries again.
	if err := os.WriteFile(ready, nil, 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	second := r.Ensure(context.Background(), "mytool")
	if second.Status != Satisfied {
		t.Fatalf("second = %+v", second)
	}
	if got := countRuns(t, counter); got != 2 {
		t.Fatalf("script ran %d times, want 2", got)
	}
}
