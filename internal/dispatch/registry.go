// Package dispatch looks up commands by name and runs pipelines of them.
package dispatch

import (
	"fmt"
	"sort"

	"github.com/jfschaefer/GLIFcore/internal/command"
)

// Registry maps every command name and alias to its type. It is read-only
// once built.
type Registry struct {
	byName map[string]*command.Type
	types  []*command.Type
}

// NewRegistry registers types in order. Two types claiming the same name is an error.
func NewRegistry(types ...*command.Type) (*Registry, error) {
	r := &Registry{byName: make(map[string]*command.Type)}
	for _, t := range types {
		for _, name := range t.Names {
			if prev, ok := r.byName[name]; ok {
				return nil, fmt.Errorf("command name %q registered by both %s and %s", name, prev.Name(), t.Name())
			}
			r.byName[name] = t
		}
		r.types = append(r.types, t)
	}
	return r, nil
}

// Lookup finds a command type by name or alias.
func (r *Registry) Lookup(name string) (*command.Type, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Types returns the registered types in registration order.
func (r *Registry) Types() []*command.Type {
	return append([]*command.Type(nil), r.types...)
}

// Names returns every registered name and alias, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
