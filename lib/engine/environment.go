package engine

import "github.com/besnikbelegu/rustbase/lib/query"

// Environment is the per-session mapping from bound identifiers to their
// last-assigned values. One instance is created per executed program and
// discarded when execution completes; it is never shared between sessions,
// which keeps concurrent sessions isolated without any locking.
//
// Thread-safety: an Environment is confined to a single program execution
// and must not be used concurrently.
type Environment struct {
	vars map[string]query.Value
}

// NewEnvironment creates an empty environment.
func NewEnvironment() *Environment {
	return &Environment{
		vars: make(map[string]query.Value),
	}
}

// Bind stores a value under a name, overwriting any prior binding.
func (e *Environment) Bind(name string, v query.Value) {
	e.vars[name] = v
}

// Lookup returns the value bound to a name. The boolean return value
// indicates whether a binding exists.
func (e *Environment) Lookup(name string) (query.Value, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Len returns the number of bindings.
func (e *Environment) Len() int {
	return len(e.vars)
}
