// Package probe queries live interpreter and command versions from
// the host. Anything unobtainable is reported as an empty string,
// never an error.
package probe

import (
	"os/exec"
	"strings"
)

// Prober asks the binaries on PATH for their versions.
type Prober struct{}

// InterpreterVersion reports the version of the interpreter that
// would host scripts with the given extension.
func (Prober) InterpreterVersion(ext string) string {
	switch strings.ToLower(ext) {
	case ".ps1":
		shell, ok := powershell()
		if !ok {
			return ""
		}
		return firstLine(output(shell, "-NoProfile", "-NonInteractive", "-Command", "$PSVersionTable.PSVersion.ToString()"))
	case ".sh":
		return firstLine(output("bash", "--version"))
	default:
		return ""
	}
}

// CommandVersion reports the first line of `name --version`.
func (Prober) CommandVersion(name string) string {
	return firstLine(output(name, "--version"))
}

func powershell() (string, bool) {
	for _, name := range []string{"pwsh", "powershell"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, true
		}
	}
	return "", false
}

func output(name string, args ...string) string {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return ""
	}
	return string(out)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
