// Package scope implements the lexical scope tree described in §3: an
// ordered mapping from name to a Type (during analysis) or a RuntimeValue
// (during evaluation, out of core scope), with an optional parent pointer.
package scope

import "fmt"

// ReturnsKey is the reserved pseudo-name `$RETURNS`, used only by the
// analyzer to thread a function's declared return type to nested Return
// checks. `$` is not a valid identifier start, so it can never collide with
// a user-declared name.
const ReturnsKey = "$RETURNS"

// Scope is one node of the lexical scope tree.
type Scope struct {
	parent   *Scope
	bindings map[string]interface{}
	order    []string
}

// New creates a scope whose parent is parent (nil for a root scope).
func New(parent *Scope) *Scope {
	return &Scope{parent: parent, bindings: make(map[string]interface{})}
}

// Parent returns the enclosing scope, or nil at the root.
func (s *Scope) Parent() *Scope { return s.parent }

// Define binds name to value in this scope. It fails if name is already
// bound in this scope (not the chain) — shadowing a parent binding is fine,
// redeclaring in the same scope is not.
func (s *Scope) Define(name string, value interface{}) error {
	if _, exists := s.bindings[name]; exists {
		return fmt.Errorf("%q already declared in this scope", name)
	}
	s.bindings[name] = value
	s.order = append(s.order, name)
	return nil
}

// Get searches this scope, and — unless currentOnly is set — its ancestor
// chain, for name.
func (s *Scope) Get(name string, currentOnly bool) (interface{}, bool) {
	if v, ok := s.bindings[name]; ok {
		return v, true
	}
	if currentOnly || s.parent == nil {
		return nil, false
	}
	return s.parent.Get(name, false)
}

// Set mutates the nearest enclosing binding of name, walking up the chain.
// It reports false if name is not bound anywhere in the chain.
func (s *Scope) Set(name string, value interface{}) bool {
	if _, ok := s.bindings[name]; ok {
		s.bindings[name] = value
		return true
	}
	if s.parent == nil {
		return false
	}
	return s.parent.Set(name, value)
}

// Names returns the names defined directly in this scope, in declaration
// order.
func (s *Scope) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// AllNames returns every name visible from this scope: its own bindings
// plus every ancestor's, for use in "did you mean" suggestions when a
// lookup fails. A name shadowed by a nearer scope is only reported once.
func (s *Scope) AllNames() []string {
	seen := make(map[string]bool)
	var out []string
	for sc := s; sc != nil; sc = sc.parent {
		for _, name := range sc.order {
			if name == ReturnsKey || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
