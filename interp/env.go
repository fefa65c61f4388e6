package interp

import (
	"maps"
	"slices"
)

// Env is an ordered set of variable bindings with an optional enclosing
// scope. Lookups search the innermost scope first.
//
// An Env is not safe for concurrent use. Evaluation may mutate it through
// assignment, and later expressions of the same render observe the change.
type Env struct {
	parent *Env
	names  []string
	vars   map[string]any
}

// NewEnv returns an empty scope enclosed by parent, which may be nil.
func NewEnv(parent *Env) *Env {
	return &Env{
		parent: parent,
		vars:   make(map[string]any),
	}
}

// EnvOf returns a root scope holding the entries of m in sorted key order.
func EnvOf(m map[string]any) *Env {
	env := NewEnv(nil)

	for _, name := range slices.Sorted(maps.Keys(m)) {
		env.Set(name, m[name])
	}

	return env
}

// Child returns a new empty scope enclosed by e.
func (e *Env) Child() *Env { return NewEnv(e) }

// Parent returns the enclosing scope, or nil for a root scope.
func (e *Env) Parent() *Env { return e.parent }

// Set binds name to value in this scope, shadowing any outer binding.
func (e *Env) Set(name string, value any) *Env {
	if _, ok := e.vars[name]; !ok {
		e.names = append(e.names, name)
	}

	e.vars[name] = value

	return e
}

// Get returns the innermost binding of name.
func (e *Env) Get(name string) (any, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}

	return nil, false
}

// Assign rebinds name in the innermost scope that defines it. If no scope
// defines name, it is bound in e.
func (e *Env) Assign(name string, value any) {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = value

			return
		}
	}

	e.Set(name, value)
}

// Names returns every visible name, innermost scope first and in insertion
// order within each scope. Shadowed names appear once.
func (e *Env) Names() []string {
	var names []string

	seen := make(map[string]struct{})

	for s := e; s != nil; s = s.parent {
		for _, name := range s.names {
			if _, ok := seen[name]; ok {
				continue
			}

			seen[name] = struct{}{}
			names = append(names, name)
		}
	}

	return names
}

// Len returns the number of visible names.
func (e *Env) Len() int { return len(e.Names()) }

// Map flattens the visible bindings into a new map.
func (e *Env) Map() map[string]any {
	m := make(map[string]any)

	for s := e; s != nil; s = s.parent {
		for name, v := range s.vars {
			if _, ok := m[name]; !ok {
				m[name] = v
			}
		}
	}

	return m
}
