// Package env applies a workspace .env file to the process
// environment before anything else reads it.
package env

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// LoadRoot applies <root>/.env. A missing file is not an error.
func LoadRoot(root string) (int, error) {
	return Load(filepath.Join(root, ".env"))
}

// Load reads simple KEY=VALUE lines and sets each variable that is
// not already present, returning how many were applied. Existing
// environment always wins over the file.
func Load(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	applied := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "export "); ok {
			line = strings.TrimSpace(rest)
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		val = strings.Trim(strings.TrimSpace(val), `"'`)
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, val); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, scanner.Err()
}
