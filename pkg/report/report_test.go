package report

import (
	"testing"

	"github.com/rigup-dev/rigup/pkg/script"
)

func TestRecordKeepsOrderAndSummary(t *testing.T) {
	t.Parallel()

	run := NewRun("/tmp/repo", "linux")
	if run.ID == "" {
		t.Fatalf("run should get an id")
	}

	code := 2
	run.Record(Outcome{Line: 1, Kind: script.Comment, Status: Skipped})
	run.Record(Outcome{Line: 2, Kind: script.Command, Target: "winget", Status: Rejected, Reason: "wrong platform"})
	run.Record(Outcome{Line: 3, Kind: script.File, Target: "setup.sh", Status: Succeeded})
	run.Record(Outcome{Line: 4, Kind: script.Command, Target: "apt-get", Status: Failed, ExitCode: &code})

	if len(run.Lines) != 4 {
		t.Fatalf("got %d outcomes", len(run.Lines))
	}
	for i, want := range []int{1, 2, 3, 4} {
		if run.Lines[i].Line != want {
			t.Fatalf("outcome %d is line %d, want %d", i, run.Lines[i].Line, want)
		}
	}
	if run.Summary != (Summary{Succeeded: 1, Failed: 1, Rejected: 1, Skipped: 1}) {
		t.Fatalf("summary = %+v", run.Summary)
	}

	run.Finish()
	if run.EndedAt == nil || run.EndedAt.Before(run.StartedAt) {
		t.Fatalf("finish should stamp a later end time")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)

	run := NewRun(root, "windows")
	code := 0
	run.Record(Outcome{Line: 1, Kind: script.File, Target: "install.ps1", Status: Succeeded, ExitCode: &code})
	run.Finish()

	path, err := store.Save(run)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(run.ID)
	if err != nil {
		t.Fatalf("Load %s: %v", path, err)
	}
	if loaded.ID != run.ID || loaded.Platform != "windows" {
		t.Fatalf("loaded = %+v", loaded)
	}
	if len(loaded.Lines) != 1 || loaded.Lines[0].Target != "install.ps1" {
		t.Fatalf("lines = %+v", loaded.Lines)
	}
	if loaded.Lines[0].ExitCode == nil || *loaded.Lines[0].ExitCode != 0 {
		t.Fatalf("exit code should survive the round trip")
	}
}
