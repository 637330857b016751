// Package analyzer lowers an untyped ast.Source into a typed ir.Source,
// enforcing every typing and scoping rule in §4.3: declared-type resolution
// against the fixed types.Environment, subtype checks at every expression
// boundary, and scope-isolated name resolution via the scope tree.
package analyzer

import (
	"github.com/lumen-lang/lumen/internal/compiler/ast"
	"github.com/lumen-lang/lumen/internal/compiler/ir"
	"github.com/lumen-lang/lumen/internal/compiler/scope"
	"github.com/lumen-lang/lumen/internal/compiler/types"
)

// Analyzer lowers a single ast.Source against a fixed types.Environment.
type Analyzer struct {
	env *types.Environment
}

// New creates an Analyzer using env to resolve declared type-annotation
// names.
func New(env *types.Environment) *Analyzer {
	return &Analyzer{env: env}
}

// Analyze runs the full lowering over source, rooted at rootScope, returning
// either the IR or the first AnalyzeError encountered (§4.6: no recovery).
func Analyze(source *ast.Source, rootScope *scope.Scope) (*ir.Source, *AnalyzeError) {
	a := New(types.NewEnvironment())
	stmts, err := a.analyzeStmtList(source.Statements, rootScope)
	if err != nil {
		return nil, err
	}
	return &ir.Source{Statements: stmts}, nil
}

func (a *Analyzer) analyzeStmtList(stmts []ast.Stmt, sc *scope.Scope) ([]ir.Stmt, *AnalyzeError) {
	out := make([]ir.Stmt, 0, len(stmts))
	for _, stmt := range stmts {
		lowered, err := a.analyzeStmt(stmt, sc)
		if err != nil {
			return nil, err
		}
		out = append(out, lowered)
	}
	return out, nil
}

func (a *Analyzer) analyzeStmt(stmt ast.Stmt, sc *scope.Scope) (ir.Stmt, *AnalyzeError) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		return a.analyzeLet(s, sc)
	case *ast.DefStmt:
		return a.analyzeDef(s, sc)
	case *ast.IfStmt:
		return a.analyzeIf(s, sc)
	case *ast.ForStmt:
		return a.analyzeFor(s, sc)
	case *ast.ReturnStmt:
		return a.analyzeReturn(s, sc)
	case *ast.ExpressionStmt:
		expr, err := a.analyzeExpr(s.Expr, sc)
		if err != nil {
			return nil, err
		}
		return &ir.ExpressionStmt{Expr: expr, Loc: s.Loc}, nil
	case *ast.AssignmentStmt:
		return a.analyzeAssignment(s, sc)
	default:
		return nil, newAnalyzeError("unrecognized statement", stmt.Location())
	}
}

// resolveTypeName resolves a declared type-annotation name against the
// Environment, defaulting to Any when name is nil (no annotation given).
func (a *Analyzer) resolveTypeName(name *string, loc ast.SourceLocation) (types.Type, *AnalyzeError) {
	if name == nil {
		return types.Any, nil
	}
	t, ok := a.env.Lookup(*name)
	if !ok {
		return nil, newUnknownNameError("unknown type name '"+*name+"'", loc, *name, a.env.Names())
	}
	return t, nil
}

// analyzeLet implements §4.3's Let rule: resolve the declared type (if any),
// analyze Init (if any), and require Init's type to be a subtype of the
// declared type. With no declared type the effective type is Init's type, or
// Any if Init is also absent. The name is then defined in the current scope
// only — redeclaration in the same scope is rejected by scope.Define.
func (a *Analyzer) analyzeLet(s *ast.LetStmt, sc *scope.Scope) (*ir.LetStmt, *AnalyzeError) {
	declared, err := a.resolveTypeName(s.TypeName, s.Loc)
	if err != nil {
		return nil, err
	}

	var init ir.Expr
	effective := declared
	if s.Init != nil {
		init, err = a.analyzeExpr(s.Init, sc)
		if err != nil {
			return nil, err
		}
		if s.TypeName != nil {
			if serr := types.RequireSubtype(init.Type(), declared); serr != nil {
				return nil, newAnalyzeError(serr.Error(), s.Loc)
			}
		} else {
			effective = init.Type()
		}
	} else if s.TypeName == nil {
		effective = types.Any
	}

	if derr := sc.Define(s.Name, effective); derr != nil {
		return nil, newAnalyzeError(derr.Error(), s.Loc)
	}

	return &ir.LetStmt{Name: s.Name, Type: effective, Init: init, Loc: s.Loc}, nil
}

// analyzeDef implements §4.3's Def rule: resolve parameter and return types,
// define the function's own name in the enclosing scope before analyzing its
// body (so recursive calls resolve), then analyze the body in a fresh child
// scope binding every parameter plus the reserved $RETURNS pseudo-binding.
func (a *Analyzer) analyzeDef(s *ast.DefStmt, sc *scope.Scope) (*ir.DefStmt, *AnalyzeError) {
	params := make([]ir.Param, len(s.Params))
	paramTypes := make([]types.Type, len(s.Params))
	for i, p := range s.Params {
		pt, err := a.resolveTypeName(p.TypeName, s.Loc)
		if err != nil {
			return nil, err
		}
		params[i] = ir.Param{Name: p.Name, Type: pt}
		paramTypes[i] = pt
	}

	returnType, err := a.resolveTypeName(s.ReturnType, s.Loc)
	if err != nil {
		return nil, err
	}

	fnType := types.FunctionType{Params: paramTypes, Return: returnType}
	if derr := sc.Define(s.Name, fnType); derr != nil {
		return nil, newAnalyzeError(derr.Error(), s.Loc)
	}

	bodyScope := scope.New(sc)
	for _, p := range params {
		if derr := bodyScope.Define(p.Name, p.Type); derr != nil {
			return nil, newAnalyzeError(derr.Error(), s.Loc)
		}
	}
	if derr := bodyScope.Define(scope.ReturnsKey, returnType); derr != nil {
		return nil, newAnalyzeError(derr.Error(), s.Loc)
	}

	body, aerr := a.analyzeStmtList(s.Body, bodyScope)
	if aerr != nil {
		return nil, aerr
	}

	return &ir.DefStmt{Name: s.Name, Params: params, ReturnType: returnType, Body: body, Loc: s.Loc}, nil
}

// analyzeIf implements §4.3's If rule: the condition must be a Boolean, and
// Then and Else are each analyzed in their own fresh child scope regardless
// of which branch would run.
func (a *Analyzer) analyzeIf(s *ast.IfStmt, sc *scope.Scope) (*ir.IfStmt, *AnalyzeError) {
	cond, err := a.analyzeExpr(s.Cond, sc)
	if err != nil {
		return nil, err
	}
	if serr := types.RequireSubtype(cond.Type(), types.Boolean); serr != nil {
		return nil, newAnalyzeError(serr.Error(), s.Loc)
	}

	then, err := a.analyzeStmtList(s.Then, scope.New(sc))
	if err != nil {
		return nil, err
	}

	var elseBody []ir.Stmt
	if s.Else != nil {
		elseBody, err = a.analyzeStmtList(s.Else, scope.New(sc))
		if err != nil {
			return nil, err
		}
	}

	return &ir.IfStmt{Cond: cond, Then: then, Else: elseBody, Loc: s.Loc}, nil
}

// analyzeFor implements §4.3's For rule: the iterable must be an Iterable,
// and the loop variable is bound to Integer in a fresh child scope — the
// core trusts the iterable's element type unconditionally rather than
// tracking a parametric element type (the Open Question decision recorded in
// DESIGN.md).
func (a *Analyzer) analyzeFor(s *ast.ForStmt, sc *scope.Scope) (*ir.ForStmt, *AnalyzeError) {
	iterable, err := a.analyzeExpr(s.Iterable, sc)
	if err != nil {
		return nil, err
	}
	if serr := types.RequireSubtype(iterable.Type(), types.Iterable); serr != nil {
		return nil, newAnalyzeError(serr.Error(), s.Loc)
	}

	bodyScope := scope.New(sc)
	if derr := bodyScope.Define(s.Name, types.Integer); derr != nil {
		return nil, newAnalyzeError(derr.Error(), s.Loc)
	}

	body, aerr := a.analyzeStmtList(s.Body, bodyScope)
	if aerr != nil {
		return nil, aerr
	}

	return &ir.ForStmt{Name: s.Name, Iterable: iterable, Body: body, Loc: s.Loc}, nil
}

// analyzeReturn implements §4.3's Return rule: $RETURNS must be bound
// somewhere in the enclosing scope chain — its absence means RETURN appears
// outside any DEF, caught here at analysis time rather than at parse time
// (the Open Question decision recorded in DESIGN.md). A bare RETURN is
// treated as returning Nil.
func (a *Analyzer) analyzeReturn(s *ast.ReturnStmt, sc *scope.Scope) (*ir.ReturnStmt, *AnalyzeError) {
	raw, ok := sc.Get(scope.ReturnsKey, false)
	if !ok {
		return nil, newAnalyzeError("RETURN outside of a DEF", s.Loc)
	}
	returns := raw.(types.Type)

	var value ir.Expr
	valueType := types.Type(types.Nil)
	if s.Value != nil {
		var err *AnalyzeError
		value, err = a.analyzeExpr(s.Value, sc)
		if err != nil {
			return nil, err
		}
		valueType = value.Type()
	}

	if serr := types.RequireSubtype(valueType, returns); serr != nil {
		return nil, newAnalyzeError(serr.Error(), s.Loc)
	}

	return &ir.ReturnStmt{Value: value, Loc: s.Loc}, nil
}

// analyzeAssignment implements §4.3's Assignment rule: the target must
// resolve to either a bound variable or a property of an Object-typed
// receiver; the value's type must be a subtype of the target's current
// type. The statement splits into the two IR variants so the generator never
// has to re-derive which kind of target it is.
func (a *Analyzer) analyzeAssignment(s *ast.AssignmentStmt, sc *scope.Scope) (ir.Stmt, *AnalyzeError) {
	switch target := s.Target.(type) {
	case *ast.VariableExpr:
		raw, ok := sc.Get(target.Name, false)
		if !ok {
			return nil, newUnknownNameError("undeclared name '"+target.Name+"'", target.Loc, target.Name, sc.AllNames())
		}
		varType := raw.(types.Type)

		value, err := a.analyzeExpr(s.Value, sc)
		if err != nil {
			return nil, err
		}
		if serr := types.RequireSubtype(value.Type(), varType); serr != nil {
			return nil, newAnalyzeError(serr.Error(), s.Loc)
		}

		return &ir.VariableAssignmentStmt{
			Target: &ir.VariableExpr{Name: target.Name, Typ: varType, Loc: target.Loc},
			Value:  value,
			Loc:    s.Loc,
		}, nil

	case *ast.PropertyExpr:
		receiver, err := a.analyzeExpr(target.Receiver, sc)
		if err != nil {
			return nil, err
		}
		obj, ok := receiver.Type().(types.ObjectType)
		if !ok {
			return nil, newAnalyzeError("property access on a non-Object value", target.Loc)
		}
		raw, ok := obj.Scope.Get(target.Name, true)
		if !ok {
			return nil, newUnknownNameError("unknown property '"+target.Name+"'", target.Loc, target.Name, obj.Scope.Names())
		}
		propType := raw.(types.Type)

		value, err := a.analyzeExpr(s.Value, sc)
		if err != nil {
			return nil, err
		}
		if serr := types.RequireSubtype(value.Type(), propType); serr != nil {
			return nil, newAnalyzeError(serr.Error(), s.Loc)
		}

		return &ir.PropertyAssignmentStmt{
			Target: &ir.PropertyExpr{Receiver: receiver, Name: target.Name, Typ: propType, Loc: target.Loc},
			Value:  value,
			Loc:    s.Loc,
		}, nil

	default:
		return nil, newAnalyzeError("assignment target must be a variable or property", s.Loc)
	}
}
