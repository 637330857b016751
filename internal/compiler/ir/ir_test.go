package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumen-lang/lumen/internal/compiler/ast"
	"github.com/lumen-lang/lumen/internal/compiler/types"
)

func TestSourceLocationDefaultsToOneOneWhenEmpty(t *testing.T) {
	src := &Source{}
	assert.Equal(t, ast.SourceLocation{Line: 1, Column: 1}, src.Location())
}

func TestSourceLocationDelegatesToFirstStatement(t *testing.T) {
	loc := ast.SourceLocation{Line: 7, Column: 3}
	src := &Source{Statements: []Stmt{&LetStmt{Name: "x", Loc: loc}}}
	assert.Equal(t, loc, src.Location())
}

func TestExprVariantsReportResolvedType(t *testing.T) {
	exprs := []Expr{
		&LiteralExpr{Typ: types.Integer},
		&GroupExpr{Typ: types.Boolean},
		&BinaryExpr{Typ: types.String},
		&VariableExpr{Typ: types.Decimal},
		&PropertyExpr{Typ: types.Any},
		&FunctionExpr{Typ: types.Nil},
		&MethodExpr{Typ: types.Equatable},
		&ObjectExpr{Typ: types.Comparable},
	}

	want := []types.Type{
		types.Integer, types.Boolean, types.String, types.Decimal,
		types.Any, types.Nil, types.Equatable, types.Comparable,
	}

	for i, e := range exprs {
		assert.True(t, e.Type().Equals(want[i]))
	}
}

func TestStmtVariantsSatisfyStmtInterface(t *testing.T) {
	stmts := []Stmt{
		&LetStmt{}, &DefStmt{}, &IfStmt{}, &ForStmt{}, &ReturnStmt{},
		&ExpressionStmt{}, &VariableAssignmentStmt{}, &PropertyAssignmentStmt{},
	}
	assert.Len(t, stmts, 8)
}

func TestVariableAssignmentCarriesTargetAndValue(t *testing.T) {
	target := &VariableExpr{Name: "x", Typ: types.Integer}
	value := &LiteralExpr{Typ: types.Integer}
	stmt := &VariableAssignmentStmt{Target: target, Value: value}

	assert.Equal(t, "x", stmt.Target.Name)
	assert.Same(t, value, stmt.Value)
}

func TestPropertyAssignmentCarriesTargetAndValue(t *testing.T) {
	receiver := &VariableExpr{Name: "obj", Typ: types.Any}
	target := &PropertyExpr{Receiver: receiver, Name: "field", Typ: types.String}
	value := &LiteralExpr{Typ: types.String}
	stmt := &PropertyAssignmentStmt{Target: target, Value: value}

	assert.Equal(t, "field", stmt.Target.Name)
	assert.Same(t, value, stmt.Value)
}

func TestLocationAccessorsReturnTheirOwnLoc(t *testing.T) {
	loc := ast.SourceLocation{Line: 2, Column: 9}

	assert.Equal(t, loc, (&LetStmt{Loc: loc}).Location())
	assert.Equal(t, loc, (&DefStmt{Loc: loc}).Location())
	assert.Equal(t, loc, (&IfStmt{Loc: loc}).Location())
	assert.Equal(t, loc, (&ForStmt{Loc: loc}).Location())
	assert.Equal(t, loc, (&ReturnStmt{Loc: loc}).Location())
	assert.Equal(t, loc, (&ExpressionStmt{Loc: loc}).Location())
	assert.Equal(t, loc, (&VariableAssignmentStmt{Loc: loc}).Location())
	assert.Equal(t, loc, (&PropertyAssignmentStmt{Loc: loc}).Location())

	assert.Equal(t, loc, (&LiteralExpr{Loc: loc, Typ: types.Any}).Location())
	assert.Equal(t, loc, (&GroupExpr{Loc: loc, Typ: types.Any}).Location())
	assert.Equal(t, loc, (&BinaryExpr{Loc: loc, Typ: types.Any}).Location())
	assert.Equal(t, loc, (&VariableExpr{Loc: loc, Typ: types.Any}).Location())
	assert.Equal(t, loc, (&PropertyExpr{Loc: loc, Typ: types.Any}).Location())
	assert.Equal(t, loc, (&FunctionExpr{Loc: loc, Typ: types.Any}).Location())
	assert.Equal(t, loc, (&MethodExpr{Loc: loc, Typ: types.Any}).Location())
	assert.Equal(t, loc, (&ObjectExpr{Loc: loc, Typ: types.Any}).Location())
}
