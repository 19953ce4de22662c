// Package workspace locates the repository root that holds the setup
// file and the restrictions file.
package workspace

import (
	"os"
	"path/filepath"
)

const (
	SetupFile        = "setup.txt"
	RestrictionsFile = "restrictions.yaml"
	RootEnv          = "RIGUP_ROOT"
)

// Resolve finds the workspace root: the RIGUP_ROOT override if set,
// else the nearest ancestor of the working directory containing
// .git, else the parent of the directory holding the running binary
// (a binary installed under <repo>/bin lands on the repo).
func Resolve() (string, error) {
	if root := os.Getenv(RootEnv); root != "" {
		return root, nil
	}
	if wd, err := os.Getwd(); err == nil {
		if root, ok := gitRoot(wd); ok {
			return root, nil
		}
	}
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(filepath.Dir(exe)), nil
}

// gitRoot walks upward until it finds a .git entry. A plain file
// counts too, so linked worktrees resolve like checkouts.
func gitRoot(dir string) (string, bool) {
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func SetupPath(root string) string {
	return filepath.Join(root, SetupFile)
}

func RestrictionsPath(root string) string {
	return filepath.Join(root, RestrictionsFile)
}
