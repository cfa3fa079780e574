// Package tool defines the tool abstraction the dispatch server routes across.
package tool

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// ExecuteFunc runs a tool with decoded request parameters. Implementations
// validate their own input and return a descriptive error on failure.
type ExecuteFunc func(ctx context.Context, params map[string]any) (any, error)

// Tool is a named, independently invokable unit of server functionality.
type Tool struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
	Execute     ExecuteFunc
}

// Descriptor is the public projection of a Tool advertised in capability
// listings. Execution behavior is never serialized.
type Descriptor struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// Registry holds the fixed set of registered tools. It is built once at
// process start and read-only afterwards, so concurrent lookups need no
// locking.
type Registry struct {
	tools []Tool
	index map[string]int
}

// NewRegistry builds a registry from the given tools, preserving order.
// Duplicate names are rejected.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{
		tools: tools,
		index: make(map[string]int, len(tools)),
	}
	for i, t := range tools {
		if t.Name == "" {
			return nil, fmt.Errorf("tool at position %d has no name", i)
		}
		if t.Execute == nil {
			return nil, fmt.Errorf("tool %q has no execute function", t.Name)
		}
		if _, exists := r.index[t.Name]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", t.Name)
		}
		r.index[t.Name] = i
	}
	return r, nil
}

// Lookup finds a tool by exact name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	i, ok := r.index[name]
	if !ok {
		return Tool{}, false
	}
	return r.tools[i], true
}

// Descriptors returns the public descriptor of every registered tool, in
// registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, Descriptor{Name: t.Name, Description: t.Description, Parameters: t.Schema})
	}
	return out
}

// Len reports the number of registered tools.
func (r *Registry) Len() int { return len(r.tools) }
