// Package yamlenv lets a YAML scalar be overridden from the environment.
//
// A value written as "${NAME:default}" is resolved from the NAME environment
// variable, falling back to default when the variable is unset or empty.
// Plain scalars are decoded as-is.
package yamlenv

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var placeholder = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)(?::(.*))?\}$`)

type Env[T any] struct {
	Name  string
	Value T
}

func New[T any](value T) *Env[T] {
	return &Env[T]{Value: value}
}

func (e *Env[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return node.Decode(&e.Value)
	}

	raw := strings.TrimSpace(node.Value)
	m := placeholder.FindStringSubmatch(raw)
	if m == nil {
		return node.Decode(&e.Value)
	}

	e.Name = m[1]
	resolved := m[2]
	if v, ok := os.LookupEnv(m[1]); ok && v != "" {
		resolved = v
	}

	// re-decode through yaml so ints, bools and durations parse the usual way
	var scalar yaml.Node
	scalar.Kind = yaml.ScalarNode
	scalar.Value = resolved
	if resolved == "" {
		var zero T
		e.Value = zero
		return nil
	}
	if err := scalar.Decode(&e.Value); err != nil {
		return fmt.Errorf("yamlenv: decode %s=%q: %w", m[1], resolved, err)
	}

	return nil
}

// Get returns the value or the zero value for a nil receiver, so optional
// config blocks can be read without nil checks.
func (e *Env[T]) Get() T {
	if e == nil {
		var zero T
		return zero
	}
	return e.Value
}
