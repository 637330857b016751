// Package types implements the atomic subtype lattice (§3) and the
// process-wide Environment type-name table (§3, §5) that the analyzer
// consults when resolving declared type annotations.
package types

import (
	"fmt"
	"strings"

	"github.com/lumen-lang/lumen/internal/compiler/scope"
)

// Kind discriminates the atomic type constructors.
type Kind int

const (
	KindAny Kind = iota
	KindNil
	KindComparable
	KindEquatable
	KindIterable
	KindBoolean
	KindInteger
	KindDecimal
	KindString
	KindObject
	KindFunction
)

// Type is implemented by every member of the subtype lattice.
type Type interface {
	Kind() Kind
	String() string
	Equals(other Type) bool
}

// AtomicType is one of the nine non-parametric members of the lattice.
type AtomicType struct {
	kind Kind
	name string
}

func (a AtomicType) Kind() Kind      { return a.kind }
func (a AtomicType) String() string  { return a.name }
func (a AtomicType) Equals(o Type) bool {
	other, ok := o.(AtomicType)
	return ok && other.kind == a.kind
}

// The nine atomic types, plus Object and Function below.
var (
	Any        = AtomicType{KindAny, "Any"}
	Nil        = AtomicType{KindNil, "Nil"}
	Comparable = AtomicType{KindComparable, "Comparable"}
	Equatable  = AtomicType{KindEquatable, "Equatable"}
	Iterable   = AtomicType{KindIterable, "Iterable"}
	Boolean    = AtomicType{KindBoolean, "Boolean"}
	Integer    = AtomicType{KindInteger, "Integer"}
	Decimal    = AtomicType{KindDecimal, "Decimal"}
	String     = AtomicType{KindString, "String"}
)

// ObjectType is `Object(scope)`: invariant, equal only to itself by scope
// identity (the scope is the object's structural identity — see the design
// note in DESIGN.md about representing cyclic `this` self-reference).
type ObjectType struct {
	Scope *scope.Scope
}

func (o ObjectType) Kind() Kind     { return KindObject }
func (o ObjectType) String() string { return "Object" }
func (o ObjectType) Equals(other Type) bool {
	oo, ok := other.(ObjectType)
	return ok && oo.Scope == o.Scope
}

// FunctionType is `Function(parameter types, return type)`: invariant,
// equal only when structurally identical.
type FunctionType struct {
	Params []Type
	Return Type
}

func (f FunctionType) Kind() Kind { return KindFunction }

func (f FunctionType) String() string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.String()
	}
	return fmt.Sprintf("Function(%s) -> %s", strings.Join(names, ", "), f.Return.String())
}

func (f FunctionType) Equals(other Type) bool {
	of, ok := other.(FunctionType)
	if !ok || len(of.Params) != len(f.Params) {
		return false
	}
	for i, p := range f.Params {
		if !p.Equals(of.Params[i]) {
			return false
		}
	}
	return f.Return.Equals(of.Return)
}

// equatableMembers and comparableMembers enumerate the two non-reflexive
// subtype rules from §3 directly — no further transitive rules exist even
// though Comparable <: Equatable.
var equatableMembers = map[Kind]bool{
	KindNil: true, KindComparable: true, KindIterable: true,
	KindBoolean: true, KindInteger: true, KindDecimal: true, KindString: true,
}

var comparableMembers = map[Kind]bool{
	KindBoolean: true, KindInteger: true, KindDecimal: true, KindString: true,
}

// IsSubtype reports whether s <: t under the relation in §3: reflexive,
// everything is a subtype of Any, and the two enumerated Equatable /
// Comparable membership rules. Object and Function are invariant, so they
// only satisfy the reflexive and Any cases.
func IsSubtype(s, t Type) bool {
	if s.Equals(t) {
		return true
	}
	if t.Equals(Any) {
		return true
	}
	if t.Equals(Equatable) && equatableMembers[s.Kind()] {
		return true
	}
	if t.Equals(Comparable) && comparableMembers[s.Kind()] {
		return true
	}
	return false
}

// RequireSubtype implements the §4.3 `requireSubtype` helper: succeeds iff
// IsSubtype(s, t), else fails naming both types.
func RequireSubtype(s, t Type) error {
	if IsSubtype(s, t) {
		return nil
	}
	return fmt.Errorf("%s is not a subtype of %s", s.String(), t.String())
}

// Environment is the process-wide, read-only mapping from the nine atomic
// type-name literals to their types (§3, §5). It is the only table
// consulted when resolving a declared type annotation; an unrecognized name
// is an analysis error (§4.3), not a lookup into any other source. It must
// be initialized once and never mutated afterward.
type Environment struct {
	names map[string]Type
}

// NewEnvironment builds the fixed initial Environment.
func NewEnvironment() *Environment {
	return &Environment{names: map[string]Type{
		"Any": Any, "Nil": Nil, "Comparable": Comparable, "Equatable": Equatable,
		"Iterable": Iterable, "Boolean": Boolean, "Integer": Integer,
		"Decimal": Decimal, "String": String,
	}}
}

// Lookup resolves a declared type-annotation name.
func (e *Environment) Lookup(name string) (Type, bool) {
	t, ok := e.names[name]
	return t, ok
}

// Names returns every type name the Environment recognizes, for use in
// "did you mean" suggestions when Lookup fails.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.names))
	for name := range e.names {
		names = append(names, name)
	}
	return names
}
