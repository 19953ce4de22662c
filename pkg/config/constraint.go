package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ConstraintKind discriminates the states a restriction field can take
// in the config source.
type ConstraintKind int

const (
	// ConstraintUnset means the key was absent from the rule.
	ConstraintUnset ConstraintKind = iota
	// ConstraintAny is the explicit `false` sentinel: the dimension
	// imposes no restriction.
	ConstraintAny
	// ConstraintExact requires exact string equality with the live
	// value. No range or semantic comparison is ever performed.
	ConstraintExact
)

// Constraint is a tri-state restriction value. The zero value is
// unset, which admits everything, as does the explicit sentinel; the
// two stay distinguishable for diagnostics.
type Constraint struct {
	Kind  ConstraintKind
	Value string
}

// UnmarshalYAML accepts `false` as the unrestricted sentinel and any
// other scalar as an exact requirement. `true` is rejected: a
// restriction equal to boolean true has no meaning.
func (c *Constraint) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: restriction value must be false or a string", node.Line)
	}
	if node.Tag == "!!bool" {
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		if b {
			return fmt.Errorf("line %d: true is not a valid restriction value, use false or a string", node.Line)
		}
		c.Kind = ConstraintAny
		return nil
	}
	if node.Tag == "!!null" {
		return fmt.Errorf("line %d: restriction value must be false or a string", node.Line)
	}
	c.Kind = ConstraintExact
	c.Value = node.Value
	return nil
}

// Admits reports whether the constraint allows the given live value.
// Unset and the explicit sentinel admit anything. An exact constraint
// requires equality, and an empty live value never matches.
func (c Constraint) Admits(live string) bool {
	if c.Kind != ConstraintExact {
		return true
	}
	return live != "" && live == c.Value
}

// String renders the constraint for diagnostics output.
func (c Constraint) String() string {
	switch c.Kind {
	case ConstraintAny:
		return "unrestricted (explicit)"
	case ConstraintExact:
		return fmt.Sprintf("= %q", c.Value)
	default:
		return "unrestricted"
	}
}

// DependencyRef points at a prerequisite script for one platform, or
// records that the platform explicitly has none.
type DependencyRef struct {
	None bool
	Path string
}

// UnmarshalYAML accepts `false` as the no-dependency sentinel and a
// non-empty scalar as a script path relative to the repository root.
func (d *DependencyRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: dependency must be false or a script path", node.Line)
	}
	if node.Tag == "!!bool" {
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		if b {
			return fmt.Errorf("line %d: true is not a valid dependency, use false or a script path", node.Line)
		}
		d.None = true
		return nil
	}
	if node.Tag == "!!null" || node.Value == "" {
		return fmt.Errorf("line %d: dependency path cannot be empty", node.Line)
	}
	d.Path = node.Value
	return nil
}
