package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DependencySuffix marks the per-platform dependency keys inside a
// command rule, e.g. "windows_dependency".
const DependencySuffix = "_dependency"

// ErrNoPlatforms indicates the restrictions file lacks a usable
// platforms table. Without it no signal can be canonicalized, so the
// config is unusable as a whole.
var ErrNoPlatforms = errors.New("platforms table is missing or empty")

// ConfigError describes a fatal problem with the restrictions file.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("restrictions config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Config holds the restriction tables loaded from the restrictions
// file. It is immutable after Load.
type Config struct {
	Platforms map[string]string      `yaml:"platforms"`
	Files     map[string]FileRule    `yaml:"files"`
	Commands  map[string]CommandRule `yaml:"commands"`
}

// FileRule gates execution of script files recognized by an extension
// pattern such as "*.ps1".
type FileRule struct {
	Platform           Constraint `yaml:"platform"`
	InterpreterVersion Constraint `yaml:"interpreter_version"`
}

// CommandRule gates execution of a named command and carries its
// per-platform dependency scripts.
type CommandRule struct {
	Platform     Constraint
	Version      Constraint
	Dependencies map[string]DependencyRef
}

// UnmarshalYAML decodes the fixed rule fields and harvests every
// "<platform>_dependency" key into the Dependencies map. Unknown keys
// are ignored.
func (r *CommandRule) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: command rule must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		switch {
		case key == "platform":
			if err := r.Platform.UnmarshalYAML(val); err != nil {
				return fmt.Errorf("platform: %w", err)
			}
		case key == "version":
			if err := r.Version.UnmarshalYAML(val); err != nil {
				return fmt.Errorf("version: %w", err)
			}
		case strings.HasSuffix(key, DependencySuffix) && len(key) > len(DependencySuffix):
			var ref DependencyRef
			if err := ref.UnmarshalYAML(val); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			if r.Dependencies == nil {
				r.Dependencies = make(map[string]DependencyRef)
			}
			r.Dependencies[strings.TrimSuffix(key, DependencySuffix)] = ref
		}
	}
	return nil
}

// Dependency returns the dependency reference the rule declares for a
// canonical platform.
func (r CommandRule) Dependency(platform string) (DependencyRef, bool) {
	ref, ok := r.Dependencies[platform]
	return ref, ok
}

// Load reads and validates the restrictions file. Any failure is
// returned as a *ConfigError and is fatal to the run.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	if len(cfg.Platforms) == 0 {
		return nil, &ConfigError{Path: path, Err: ErrNoPlatforms}
	}
	if err := cfg.normalizeFiles(); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return &cfg, nil
}

// normalizeFiles rewrites file rule keys to the canonical "*.<ext>"
// lowercase form so lookups stay single map accesses.
func (c *Config) normalizeFiles() error {
	if len(c.Files) == 0 {
		return nil
	}
	normalized := make(map[string]FileRule, len(c.Files))
	for key, rule := range c.Files {
		ext := strings.ToLower(strings.TrimPrefix(key, "*"))
		if !strings.HasPrefix(ext, ".") || len(ext) == 1 {
			return fmt.Errorf("file rule key %q is not an extension pattern like \"*.ps1\"", key)
		}
		canon := "*" + ext
		if _, dup := normalized[canon]; dup {
			return fmt.Errorf("duplicate file rule for %q", canon)
		}
		normalized[canon] = rule
	}
	c.Files = normalized
	return nil
}

// FileRuleFor returns the rule for a file extension like ".ps1".
// Absent extensions are unrestricted.
func (c *Config) FileRuleFor(ext string) (FileRule, bool) {
	rule, ok := c.Files["*"+strings.ToLower(ext)]
	return rule, ok
}

// CommandRuleFor returns the rule for a command name. Absent commands
// are unrestricted.
func (c *Config) CommandRuleFor(name string) (CommandRule, bool) {
	rule, ok := c.Commands[name]
	return rule, ok
}

// Extensions lists the script extensions named by file rule patterns,
// sorted, lowercase, dot-prefixed.
func (c *Config) Extensions() []string {
	exts := make([]string, 0, len(c.Files))
	for key := range c.Files {
		exts = append(exts, strings.TrimPrefix(key, "*"))
	}
	sort.Strings(exts)
	return exts
}
