package report

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Store writes run reports under <root>/.rigup/runs.
type Store struct {
	baseDir string
}

func NewStore(root string) *Store {
	return &Store{baseDir: filepath.Join(root, ".rigup", "runs")}
}

// Save persists the run as <id>.json and returns the path.
func (s *Store) Save(run *Run) (string, error) {
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.baseDir, run.ID+".json")
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads a saved run back by id.
func (s *Store) Load(id string) (*Run, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id+".json"))
	if err != nil {
		return nil, err
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, err
	}
	return &run, nil
}
