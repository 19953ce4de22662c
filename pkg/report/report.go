// Package report aggregates per-line outcomes of a run and persists
// them as JSON under the workspace.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/rigup-dev/rigup/pkg/script"
)

// Status is the terminal state of one setup line.
type Status string

const (
	Skipped   Status = "skipped"
	Rejected  Status = "rejected"
	Succeeded Status = "succeeded"
	Failed    Status = "failed"
)

// Outcome records what happened to a single line. ExitCode is absent
// when the child reported no status. Dependency tells how the
// command's declared install script resolved (satisfied, cached,
// missing or failed) and DependencyScript names it; both are empty
// when the command declares none.
type Outcome struct {
	Line             int         `json:"line"`
	Kind             script.Kind `json:"kind"`
	Target           string      `json:"target,omitempty"`
	Status           Status      `json:"status"`
	Reason           string      `json:"reason,omitempty"`
	ExitCode         *int        `json:"exit_code,omitempty"`
	Dependency       string      `json:"dependency,omitempty"`
	DependencyScript string      `json:"dependency_script,omitempty"`
}

// Summary counts outcomes by status.
type Summary struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Rejected  int `json:"rejected"`
	Skipped   int `json:"skipped"`
}

// Run is one full pass over the setup file. Outcomes keep file order.
type Run struct {
	ID        string     `json:"id"`
	Root      string     `json:"root"`
	Platform  string     `json:"platform"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Lines     []Outcome  `json:"lines"`
	Summary   Summary    `json:"summary"`
}

func NewRun(root, platform string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Root:      root,
		Platform:  platform,
		StartedAt: time.Now(),
	}
}

// Record appends an outcome and keeps the summary current.
func (r *Run) Record(o Outcome) {
	r.Lines = append(r.Lines, o)
	switch o.Status {
	case Succeeded:
		r.Summary.Succeeded++
	case Failed:
		r.Summary.Failed++
	case Rejected:
		r.Summary.Rejected++
	case Skipped:
		r.Summary.Skipped++
	}
}

// Finish stamps the end time.
func (r *Run) Finish() {
	now := time.Now()
	r.EndedAt = &now
}
