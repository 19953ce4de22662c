// Package script reads a setup file and classifies each line into
// the shape the execution loop understands.
package script

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Kind tells the execution loop how to treat a line.
type Kind string

const (
	Blank   Kind = "blank"
	Comment Kind = "comment"
	File    Kind = "file"
	Command Kind = "command"
)

// Line is one classified entry of the setup file. Raw keeps the
// original text, Text the trimmed form the loop acts on. Target is
// the script path for file lines and the command name for command
// lines.
type Line struct {
	Raw    string
	Number int
	Text   string
	Kind   Kind
	Target string
	Args   []string
}

// DefaultExtensions are the script suffixes recognized even when the
// restrictions file declares none.
var DefaultExtensions = []string{".ps1", ".sh"}

// Classifier decides whether a line's first token names a script file
// or a command.
type Classifier struct {
	extensions map[string]struct{}
}

// NewClassifier builds a classifier over the given extensions plus
// the defaults. Lookup is case-insensitive.
func NewClassifier(extensions ...string) *Classifier {
	set := make(map[string]struct{}, len(extensions)+len(DefaultExtensions))
	for _, ext := range DefaultExtensions {
		set[strings.ToLower(ext)] = struct{}{}
	}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return &Classifier{extensions: set}
}

// Extensions returns the recognized suffixes in sorted order.
func (c *Classifier) Extensions() []string {
	out := make([]string, 0, len(c.extensions))
	for ext := range c.extensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Classify turns one raw setup line into a Line. Leading and trailing
// whitespace never changes meaning.
func (c *Classifier) Classify(raw string, number int) Line {
	line := Line{Raw: raw, Number: number, Text: strings.TrimSpace(raw)}
	switch {
	case line.Text == "":
		line.Kind = Blank
	case strings.HasPrefix(line.Text, "#"):
		line.Kind = Comment
	default:
		fields := strings.Fields(line.Text)
		line.Target = fields[0]
		if _, ok := c.extensions[strings.ToLower(Ext(line.Target))]; ok {
			line.Kind = File
			line.Args = fields[1:]
		} else {
			line.Kind = Command
		}
	}
	return line
}

// Ext returns the extension of a script target, dot included.
func Ext(target string) string {
	return filepath.Ext(target)
}

// Read loads a setup file and classifies every line, numbering from
// one.
func Read(path string, c *Classifier) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []Line
	scanner := bufio.NewScanner(f)
	number := 0
	for scanner.Scan() {
		number++
		lines = append(lines, c.Classify(scanner.Text(), number))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}
