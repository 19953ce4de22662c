// Package notify prints user-facing outcome lines with a color and a
// status symbol.
package notify

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer writes styled one-line notices. A nil Printer and a quiet
// Printer both discard everything, so call sites never guard.
type Printer struct {
	out   io.Writer
	quiet bool
}

func New(out io.Writer, quiet bool) *Printer {
	if out == nil {
		out = os.Stdout
	}
	return &Printer{out: out, quiet: quiet}
}

// Successf prints a green check line.
func (p *Printer) Successf(format string, args ...any) {
	p.printf(color.New(color.FgGreen), "✔ ", format, args...)
}

// Warnf prints a yellow warning line.
func (p *Printer) Warnf(format string, args ...any) {
	p.printf(color.New(color.FgYellow), "⚠ ", format, args...)
}

// Errorf prints a red failure line.
func (p *Printer) Errorf(format string, args ...any) {
	p.printf(color.New(color.FgRed), "✗ ", format, args...)
}

// Activityf prints an uncolored progress line.
func (p *Printer) Activityf(format string, args ...any) {
	p.printf(color.New(color.Reset), "► ", format, args...)
}

func (p *Printer) printf(c *color.Color, symbol, format string, args ...any) {
	if p == nil || p.quiet {
		return
	}
	_, _ = c.Fprintf(p.out, "%s%s\n", symbol, fmt.Sprintf(format, args...))
}
