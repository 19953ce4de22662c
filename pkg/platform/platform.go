// Package platform canonicalizes host OS signals through the
// config's platforms table.
package platform

import (
	"fmt"
	"os"
	"runtime"
)

// UnmappedError reports that neither host signal appears in the
// platforms table. The run cannot proceed without a canonical name.
type UnmappedError struct {
	Primary  string
	Fallback string
}

func (e *UnmappedError) Error() string {
	if e.Primary == "" {
		return fmt.Sprintf("platform %q is not mapped in the platforms table", e.Fallback)
	}
	return fmt.Sprintf("neither %q nor %q is mapped in the platforms table", e.Primary, e.Fallback)
}

// Signals returns the raw host identifiers in precedence order: the
// OS environment variable (set to Windows_NT on Windows), then the
// compiled-in target.
func Signals() (primary, fallback string) {
	return os.Getenv("OS"), runtime.GOOS
}

// Resolve canonicalizes the host signals through the platforms table.
// The primary signal wins when it is non-blank and mapped, otherwise
// the fallback is tried.
func Resolve(primary, fallback string, table map[string]string) (string, error) {
	if primary != "" {
		if name, ok := table[primary]; ok {
			return name, nil
		}
	}
	if name, ok := table[fallback]; ok {
		return name, nil
	}
	return "", &UnmappedError{Primary: primary, Fallback: fallback}
}

// Detect resolves the current host against the platforms table.
func Detect(table map[string]string) (string, error) {
	primary, fallback := Signals()
	return Resolve(primary, fallback, table)
}

// Elevated reports whether the process runs with administrative
// rights. On Windows the check opens a raw device handle that only
// elevated processes may touch.
func Elevated() bool {
	if runtime.GOOS == "windows" {
		f, err := os.Open(`\\.\PHYSICALDRIVE0`)
		if err != nil {
			return false
		}
		f.Close()
		return true
	}
	return os.Geteuid() == 0
}
