// Package ir defines the typed intermediate representation produced by the
// analyzer: it mirrors the ast package's shape, but every expression node
// additionally carries a resolved types.Type, and assignment splits into a
// Variable-target and a Property-target variant, each holding a
// pre-resolved target node (§3).
package ir

import (
	"github.com/lumen-lang/lumen/internal/compiler/ast"
	"github.com/lumen-lang/lumen/internal/compiler/types"
)

// Node is the base interface for every IR node.
type Node interface {
	Location() ast.SourceLocation
	node()
}

// Stmt is the interface for IR statement variants.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is the interface for IR expression variants; every expression node
// carries its resolved Type.
type Expr interface {
	Node
	exprNode()
	Type() types.Type
}

// Source is the root of an IR tree.
type Source struct {
	Statements []Stmt
}

func (s *Source) node() {}

// Location returns 1:1, or the first statement's location if present.
func (s *Source) Location() ast.SourceLocation {
	if len(s.Statements) > 0 {
		return s.Statements[0].Location()
	}
	return ast.SourceLocation{Line: 1, Column: 1}
}

// Param is a DEF parameter with its resolved type.
type Param struct {
	Name string
	Type types.Type
}

// LetStmt carries the effective type computed by the analyzer (declared,
// else inferred, else Any).
type LetStmt struct {
	Name string
	Type types.Type
	Init Expr // nil if absent
	Loc  ast.SourceLocation
}

func (l *LetStmt) node()              {}
func (l *LetStmt) stmtNode()          {}
func (l *LetStmt) Location() ast.SourceLocation { return l.Loc }

// DefStmt carries resolved parameter and return types.
type DefStmt struct {
	Name       string
	Params     []Param
	ReturnType types.Type
	Body       []Stmt
	Loc        ast.SourceLocation
}

func (d *DefStmt) node()              {}
func (d *DefStmt) stmtNode()          {}
func (d *DefStmt) Location() ast.SourceLocation { return d.Loc }

// IfStmt mirrors ast.IfStmt with IR sub-nodes.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
	Loc  ast.SourceLocation
}

func (i *IfStmt) node()              {}
func (i *IfStmt) stmtNode()          {}
func (i *IfStmt) Location() ast.SourceLocation { return i.Loc }

// ForStmt mirrors ast.ForStmt; the loop variable's type is always Integer
// (§4.3, the Open Question about trusting the iterable's element type).
type ForStmt struct {
	Name     string
	Iterable Expr
	Body     []Stmt
	Loc      ast.SourceLocation
}

func (f *ForStmt) node()              {}
func (f *ForStmt) stmtNode()          {}
func (f *ForStmt) Location() ast.SourceLocation { return f.Loc }

// ReturnStmt mirrors ast.ReturnStmt.
type ReturnStmt struct {
	Value Expr // nil if absent
	Loc   ast.SourceLocation
}

func (r *ReturnStmt) node()              {}
func (r *ReturnStmt) stmtNode()          {}
func (r *ReturnStmt) Location() ast.SourceLocation { return r.Loc }

// ExpressionStmt mirrors ast.ExpressionStmt.
type ExpressionStmt struct {
	Expr Expr
	Loc  ast.SourceLocation
}

func (e *ExpressionStmt) node()              {}
func (e *ExpressionStmt) stmtNode()          {}
func (e *ExpressionStmt) Location() ast.SourceLocation { return e.Loc }

// VariableAssignmentStmt is an Assignment whose target resolved to a bound
// variable name.
type VariableAssignmentStmt struct {
	Target *VariableExpr
	Value  Expr
	Loc    ast.SourceLocation
}

func (a *VariableAssignmentStmt) node()              {}
func (a *VariableAssignmentStmt) stmtNode()          {}
func (a *VariableAssignmentStmt) Location() ast.SourceLocation { return a.Loc }

// PropertyAssignmentStmt is an Assignment whose target resolved to a
// property of an Object-typed receiver.
type PropertyAssignmentStmt struct {
	Target *PropertyExpr
	Value  Expr
	Loc    ast.SourceLocation
}

func (a *PropertyAssignmentStmt) node()              {}
func (a *PropertyAssignmentStmt) stmtNode()          {}
func (a *PropertyAssignmentStmt) Location() ast.SourceLocation { return a.Loc }

// LiteralExpr mirrors ast.LiteralExpr with its resolved Type attached.
type LiteralExpr struct {
	Kind ast.LiteralKind
	Value interface{}
	Typ   types.Type
	Loc   ast.SourceLocation
}

func (l *LiteralExpr) node()              {}
func (l *LiteralExpr) exprNode()          {}
func (l *LiteralExpr) Location() ast.SourceLocation { return l.Loc }
func (l *LiteralExpr) Type() types.Type   { return l.Typ }

// GroupExpr mirrors ast.GroupExpr.
type GroupExpr struct {
	Inner Expr
	Typ   types.Type
	Loc   ast.SourceLocation
}

func (g *GroupExpr) node()              {}
func (g *GroupExpr) exprNode()          {}
func (g *GroupExpr) Location() ast.SourceLocation { return g.Loc }
func (g *GroupExpr) Type() types.Type   { return g.Typ }

// BinaryExpr mirrors ast.BinaryExpr with its result Type attached.
type BinaryExpr struct {
	Operator string
	Left     Expr
	Right    Expr
	Typ      types.Type
	Loc      ast.SourceLocation
}

func (b *BinaryExpr) node()              {}
func (b *BinaryExpr) exprNode()          {}
func (b *BinaryExpr) Location() ast.SourceLocation { return b.Loc }
func (b *BinaryExpr) Type() types.Type   { return b.Typ }

// VariableExpr mirrors ast.VariableExpr with its resolved Type attached.
type VariableExpr struct {
	Name string
	Typ  types.Type
	Loc  ast.SourceLocation
}

func (v *VariableExpr) node()              {}
func (v *VariableExpr) exprNode()          {}
func (v *VariableExpr) Location() ast.SourceLocation { return v.Loc }
func (v *VariableExpr) Type() types.Type   { return v.Typ }

// PropertyExpr mirrors ast.PropertyExpr with its resolved Type attached.
type PropertyExpr struct {
	Receiver Expr
	Name     string
	Typ      types.Type
	Loc      ast.SourceLocation
}

func (p *PropertyExpr) node()              {}
func (p *PropertyExpr) exprNode()          {}
func (p *PropertyExpr) Location() ast.SourceLocation { return p.Loc }
func (p *PropertyExpr) Type() types.Type   { return p.Typ }

// FunctionExpr mirrors ast.FunctionExpr with its result Type attached.
type FunctionExpr struct {
	Name string
	Args []Expr
	Typ  types.Type
	Loc  ast.SourceLocation
}

func (f *FunctionExpr) node()              {}
func (f *FunctionExpr) exprNode()          {}
func (f *FunctionExpr) Location() ast.SourceLocation { return f.Loc }
func (f *FunctionExpr) Type() types.Type   { return f.Typ }

// MethodExpr mirrors ast.MethodExpr with its result Type attached.
type MethodExpr struct {
	Receiver Expr
	Name     string
	Args     []Expr
	Typ      types.Type
	Loc      ast.SourceLocation
}

func (m *MethodExpr) node()              {}
func (m *MethodExpr) exprNode()          {}
func (m *MethodExpr) Location() ast.SourceLocation { return m.Loc }
func (m *MethodExpr) Type() types.Type   { return m.Typ }

// ObjectExpr mirrors ast.ObjectExpr; its Type is always an ObjectType over
// the freshly built object scope.
type ObjectExpr struct {
	Name    *string
	Fields  []*LetStmt
	Methods []*DefStmt
	Typ     types.Type
	Loc     ast.SourceLocation
}

func (o *ObjectExpr) node()              {}
func (o *ObjectExpr) exprNode()          {}
func (o *ObjectExpr) Location() ast.SourceLocation { return o.Loc }
func (o *ObjectExpr) Type() types.Type   { return o.Typ }
