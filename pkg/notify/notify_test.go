package notify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestPrinterSymbols(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	p := New(&buf, false)
	p.Successf("installed %s", "git")
	p.Warnf("skipping %s", "winget")
	p.Errorf("%s exited %d", "apt-get", 100)
	p.Activityf("running line %d", 3)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"✔ installed git",
		"⚠ skipping winget",
		"✗ apt-get exited 100",
		"► running line 3",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines: %q", len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestPrinterQuiet(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	p := New(&buf, true)
	p.Successf("hidden")
	p.Errorf("also hidden")
	if buf.Len() != 0 {
		t.Fatalf("quiet printer wrote %q", buf.String())
	}
}

func TestNilPrinter(t *testing.T) {
	var p *Printer
	p.Successf("no panic")
	p.Warnf("still fine")
}
