// Package policy evaluates restriction rules against classified
// setup lines.
package policy

import (
	"fmt"

	"github.com/rigup-dev/rigup/pkg/config"
	"github.com/rigup-dev/rigup/pkg/script"
)

// VersionSource answers live version queries. It is only consulted
// when a rule actually pins a version.
type VersionSource interface {
	InterpreterVersion(ext string) string
	CommandVersion(name string) string
}

// Decision is the outcome of evaluating one line.
type Decision struct {
	Allowed bool
	Reason  string
}

// Evaluator checks lines against the loaded restrictions for one
// canonical platform.
type Evaluator struct {
	Config   *config.Config
	Platform string
	Versions VersionSource
}

// Evaluate decides whether a line may execute. Blank and comment
// lines pass, as does any line without a matching rule.
func (e *Evaluator) Evaluate(line script.Line) Decision {
	switch line.Kind {
	case script.File:
		return e.evaluateFile(line)
	case script.Command:
		return e.evaluateCommand(line)
	default:
		return allow()
	}
}

// CanExecute reports just the verdict.
func (e *Evaluator) CanExecute(line script.Line) bool {
	return e.Evaluate(line).Allowed
}

func (e *Evaluator) evaluateFile(line script.Line) Decision {
	ext := script.Ext(line.Target)
	rule, ok := e.Config.FileRuleFor(ext)
	if !ok {
		return allow()
	}
	if !rule.Platform.Admits(e.Platform) {
		return reject("%s scripts are restricted to platform %s, host is %s", ext, rule.Platform.Value, e.Platform)
	}
	if rule.InterpreterVersion.Kind == config.ConstraintExact {
		live := e.Versions.InterpreterVersion(ext)
		if !rule.InterpreterVersion.Admits(live) {
			return reject("%s requires interpreter version %s, host has %s", line.Target, rule.InterpreterVersion.Value, orNone(live))
		}
	}
	return allow()
}

func (e *Evaluator) evaluateCommand(line script.Line) Decision {
	rule, ok := e.Config.CommandRuleFor(line.Target)
	if !ok {
		return allow()
	}
	if !rule.Platform.Admits(e.Platform) {
		return reject("%s is restricted to platform %s, host is %s", line.Target, rule.Platform.Value, e.Platform)
	}
	if rule.Version.Kind == config.ConstraintExact {
		live := e.Versions.CommandVersion(line.Target)
		if !rule.Version.Admits(live) {
			return reject("%s requires version %s, host has %s", line.Target, rule.Version.Value, orNone(live))
		}
	}
	return allow()
}

func allow() Decision { return Decision{Allowed: true} }

func reject(format string, args ...any) Decision {
	return Decision{Reason: fmt.Sprintf(format, args...)}
}

func orNone(live string) string {
	if live == "" {
		return "none"
	}
	return live
}
