package analyzer

import (
	"github.com/lumen-lang/lumen/internal/compiler/ast"
	"github.com/lumen-lang/lumen/internal/compiler/ir"
	"github.com/lumen-lang/lumen/internal/compiler/scope"
	"github.com/lumen-lang/lumen/internal/compiler/types"
)

func (a *Analyzer) analyzeExpr(expr ast.Expr, sc *scope.Scope) (ir.Expr, *AnalyzeError) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return a.analyzeLiteral(e)
	case *ast.GroupExpr:
		return a.analyzeGroup(e, sc)
	case *ast.BinaryExpr:
		return a.analyzeBinary(e, sc)
	case *ast.VariableExpr:
		return a.analyzeVariable(e, sc)
	case *ast.PropertyExpr:
		return a.analyzeProperty(e, sc)
	case *ast.FunctionExpr:
		return a.analyzeFunction(e, sc)
	case *ast.MethodExpr:
		return a.analyzeMethod(e, sc)
	case *ast.ObjectExpr:
		return a.analyzeObject(e, sc)
	default:
		return nil, newAnalyzeError("unrecognized expression", expr.Location())
	}
}

// analyzeLiteral implements §4.3's Literal rule: a character literal
// collapses to a single-code-unit String, since the lattice has no separate
// Character type; every other kind maps to its matching atomic type.
func (a *Analyzer) analyzeLiteral(e *ast.LiteralExpr) (*ir.LiteralExpr, *AnalyzeError) {
	switch e.Kind {
	case ast.LiteralNil:
		return &ir.LiteralExpr{Kind: e.Kind, Value: nil, Typ: types.Nil, Loc: e.Loc}, nil
	case ast.LiteralBool:
		return &ir.LiteralExpr{Kind: e.Kind, Value: e.Value, Typ: types.Boolean, Loc: e.Loc}, nil
	case ast.LiteralInteger:
		return &ir.LiteralExpr{Kind: e.Kind, Value: e.Value, Typ: types.Integer, Loc: e.Loc}, nil
	case ast.LiteralDecimal:
		return &ir.LiteralExpr{Kind: e.Kind, Value: e.Value, Typ: types.Decimal, Loc: e.Loc}, nil
	case ast.LiteralChar:
		r := e.Value.(rune)
		return &ir.LiteralExpr{Kind: ast.LiteralString, Value: string(r), Typ: types.String, Loc: e.Loc}, nil
	case ast.LiteralString:
		return &ir.LiteralExpr{Kind: e.Kind, Value: e.Value, Typ: types.String, Loc: e.Loc}, nil
	default:
		return nil, newAnalyzeError("unrecognized literal kind", e.Loc)
	}
}

func (a *Analyzer) analyzeGroup(e *ast.GroupExpr, sc *scope.Scope) (*ir.GroupExpr, *AnalyzeError) {
	inner, err := a.analyzeExpr(e.Inner, sc)
	if err != nil {
		return nil, err
	}
	return &ir.GroupExpr{Inner: inner, Typ: inner.Type(), Loc: e.Loc}, nil
}

func isNumeric(t types.Type) bool {
	return t.Equals(types.Integer) || t.Equals(types.Decimal)
}

// analyzeBinary implements §4.3's Binary rule, one family of operators at a
// time: AND/OR require Boolean on both sides; the comparison operators
// require Comparable; equality requires Equatable; '+' additionally allows
// String concatenation; all four arithmetic operators promote to Decimal
// unless both operands are Integer.
func (a *Analyzer) analyzeBinary(e *ast.BinaryExpr, sc *scope.Scope) (*ir.BinaryExpr, *AnalyzeError) {
	left, err := a.analyzeExpr(e.Left, sc)
	if err != nil {
		return nil, err
	}
	right, err := a.analyzeExpr(e.Right, sc)
	if err != nil {
		return nil, err
	}

	var result types.Type
	switch e.Operator {
	case "AND", "OR":
		if serr := types.RequireSubtype(left.Type(), types.Boolean); serr != nil {
			return nil, newAnalyzeError(serr.Error(), e.Loc)
		}
		if serr := types.RequireSubtype(right.Type(), types.Boolean); serr != nil {
			return nil, newAnalyzeError(serr.Error(), e.Loc)
		}
		result = types.Boolean

	case "<", "<=", ">", ">=":
		if serr := types.RequireSubtype(left.Type(), types.Comparable); serr != nil {
			return nil, newAnalyzeError(serr.Error(), e.Loc)
		}
		if serr := types.RequireSubtype(right.Type(), types.Comparable); serr != nil {
			return nil, newAnalyzeError(serr.Error(), e.Loc)
		}
		result = types.Boolean

	case "==", "!=":
		if serr := types.RequireSubtype(left.Type(), types.Equatable); serr != nil {
			return nil, newAnalyzeError(serr.Error(), e.Loc)
		}
		if serr := types.RequireSubtype(right.Type(), types.Equatable); serr != nil {
			return nil, newAnalyzeError(serr.Error(), e.Loc)
		}
		result = types.Boolean

	case "+":
		if left.Type().Equals(types.String) && right.Type().Equals(types.String) {
			result = types.String
		} else if isNumeric(left.Type()) && isNumeric(right.Type()) {
			result = arithmeticResult(left.Type(), right.Type())
		} else {
			return nil, newAnalyzeError("'+' requires two Strings or two numeric operands", e.Loc)
		}

	case "-", "*", "/":
		if !isNumeric(left.Type()) || !isNumeric(right.Type()) {
			return nil, newAnalyzeError("'"+e.Operator+"' requires two numeric operands", e.Loc)
		}
		result = arithmeticResult(left.Type(), right.Type())

	default:
		return nil, newAnalyzeError("unrecognized operator '"+e.Operator+"'", e.Loc)
	}

	return &ir.BinaryExpr{Operator: e.Operator, Left: left, Right: right, Typ: result, Loc: e.Loc}, nil
}

// arithmeticResult is Integer only when both operands are Integer; any
// Decimal operand promotes the whole expression to Decimal.
func arithmeticResult(left, right types.Type) types.Type {
	if left.Equals(types.Integer) && right.Equals(types.Integer) {
		return types.Integer
	}
	return types.Decimal
}

func (a *Analyzer) analyzeVariable(e *ast.VariableExpr, sc *scope.Scope) (*ir.VariableExpr, *AnalyzeError) {
	raw, ok := sc.Get(e.Name, false)
	if !ok {
		return nil, newUnknownNameError("undeclared name '"+e.Name+"'", e.Loc, e.Name, sc.AllNames())
	}
	t, ok := raw.(types.Type)
	if !ok {
		return nil, newAnalyzeError("'"+e.Name+"' does not name a value", e.Loc)
	}
	return &ir.VariableExpr{Name: e.Name, Typ: t, Loc: e.Loc}, nil
}

func (a *Analyzer) analyzeProperty(e *ast.PropertyExpr, sc *scope.Scope) (*ir.PropertyExpr, *AnalyzeError) {
	receiver, err := a.analyzeExpr(e.Receiver, sc)
	if err != nil {
		return nil, err
	}
	obj, ok := receiver.Type().(types.ObjectType)
	if !ok {
		return nil, newAnalyzeError("property access on a non-Object value", e.Loc)
	}
	raw, ok := obj.Scope.Get(e.Name, true)
	if !ok {
		return nil, newUnknownNameError("unknown property '"+e.Name+"'", e.Loc, e.Name, obj.Scope.Names())
	}
	t := raw.(types.Type)
	return &ir.PropertyExpr{Receiver: receiver, Name: e.Name, Typ: t, Loc: e.Loc}, nil
}

// analyzeArgs analyzes a call's argument list and requires it to match arity
// and each parameter's declared type.
func (a *Analyzer) analyzeArgs(args []ast.Expr, params []types.Type, sc *scope.Scope, loc ast.SourceLocation) ([]ir.Expr, *AnalyzeError) {
	if len(args) != len(params) {
		return nil, newAnalyzeError("wrong number of arguments", loc)
	}
	out := make([]ir.Expr, len(args))
	for i, arg := range args {
		lowered, err := a.analyzeExpr(arg, sc)
		if err != nil {
			return nil, err
		}
		if serr := types.RequireSubtype(lowered.Type(), params[i]); serr != nil {
			return nil, newAnalyzeError(serr.Error(), arg.Location())
		}
		out[i] = lowered
	}
	return out, nil
}

func (a *Analyzer) analyzeFunction(e *ast.FunctionExpr, sc *scope.Scope) (*ir.FunctionExpr, *AnalyzeError) {
	raw, ok := sc.Get(e.Name, false)
	if !ok {
		return nil, newUnknownNameError("undeclared name '"+e.Name+"'", e.Loc, e.Name, sc.AllNames())
	}
	fn, ok := raw.(types.FunctionType)
	if !ok {
		return nil, newAnalyzeError("'"+e.Name+"' is not callable", e.Loc)
	}
	args, err := a.analyzeArgs(e.Args, fn.Params, sc, e.Loc)
	if err != nil {
		return nil, err
	}
	return &ir.FunctionExpr{Name: e.Name, Args: args, Typ: fn.Return, Loc: e.Loc}, nil
}

func (a *Analyzer) analyzeMethod(e *ast.MethodExpr, sc *scope.Scope) (*ir.MethodExpr, *AnalyzeError) {
	receiver, err := a.analyzeExpr(e.Receiver, sc)
	if err != nil {
		return nil, err
	}
	obj, ok := receiver.Type().(types.ObjectType)
	if !ok {
		return nil, newAnalyzeError("method call on a non-Object value", e.Loc)
	}
	raw, ok := obj.Scope.Get(e.Name, true)
	if !ok {
		return nil, newUnknownNameError("unknown method '"+e.Name+"'", e.Loc, e.Name, obj.Scope.Names())
	}
	fn, ok := raw.(types.FunctionType)
	if !ok {
		return nil, newAnalyzeError("'"+e.Name+"' is not callable", e.Loc)
	}
	args, aerr := a.analyzeArgs(e.Args, fn.Params, sc, e.Loc)
	if aerr != nil {
		return nil, aerr
	}
	return &ir.MethodExpr{Receiver: receiver, Name: e.Name, Args: args, Typ: fn.Return, Loc: e.Loc}, nil
}

// analyzeObject implements §4.3's ObjectExpr rule: a fresh, parentless scope
// holds the object's fields and methods. Field initializers are analyzed
// against the enclosing scope (an object literal captures its surrounding
// bindings, not its own half-built scope), but each field name is then
// defined into the object's own scope. Method names are defined into the
// object scope before their bodies are analyzed, so methods can call one
// another and reference fields by bare name through a body scope chained to
// the object scope.
func (a *Analyzer) analyzeObject(e *ast.ObjectExpr, sc *scope.Scope) (*ir.ObjectExpr, *AnalyzeError) {
	if e.Name != nil {
		if _, ok := a.env.Lookup(*e.Name); ok {
			return nil, newAnalyzeError("object name '"+*e.Name+"' collides with a type name", e.Loc)
		}
	}

	objScope := scope.New(nil)

	fields := make([]*ir.LetStmt, 0, len(e.Fields))
	for _, f := range e.Fields {
		declared, err := a.resolveTypeName(f.TypeName, f.Loc)
		if err != nil {
			return nil, err
		}

		var init ir.Expr
		effective := declared
		if f.Init != nil {
			init, err = a.analyzeExpr(f.Init, sc)
			if err != nil {
				return nil, err
			}
			if f.TypeName != nil {
				if serr := types.RequireSubtype(init.Type(), declared); serr != nil {
					return nil, newAnalyzeError(serr.Error(), f.Loc)
				}
			} else {
				effective = init.Type()
			}
		} else if f.TypeName == nil {
			effective = types.Any
		}

		if derr := objScope.Define(f.Name, effective); derr != nil {
			return nil, newAnalyzeError(derr.Error(), f.Loc)
		}
		fields = append(fields, &ir.LetStmt{Name: f.Name, Type: effective, Init: init, Loc: f.Loc})
	}

	methods := make([]*ir.DefStmt, 0, len(e.Methods))
	methodTypes := make([]types.FunctionType, len(e.Methods))
	for i, m := range e.Methods {
		paramTypes := make([]types.Type, len(m.Params))
		for j, p := range m.Params {
			pt, err := a.resolveTypeName(p.TypeName, m.Loc)
			if err != nil {
				return nil, err
			}
			paramTypes[j] = pt
		}
		returnType, err := a.resolveTypeName(m.ReturnType, m.Loc)
		if err != nil {
			return nil, err
		}
		fnType := types.FunctionType{Params: paramTypes, Return: returnType}
		methodTypes[i] = fnType
		if derr := objScope.Define(m.Name, fnType); derr != nil {
			return nil, newAnalyzeError(derr.Error(), m.Loc)
		}
	}

	for i, m := range e.Methods {
		fnType := methodTypes[i]
		params := make([]ir.Param, len(m.Params))
		bodyScope := scope.New(objScope)
		for j, p := range m.Params {
			params[j] = ir.Param{Name: p.Name, Type: fnType.Params[j]}
			if derr := bodyScope.Define(p.Name, fnType.Params[j]); derr != nil {
				return nil, newAnalyzeError(derr.Error(), m.Loc)
			}
		}
		if derr := bodyScope.Define(scope.ReturnsKey, fnType.Return); derr != nil {
			return nil, newAnalyzeError(derr.Error(), m.Loc)
		}

		body, aerr := a.analyzeStmtList(m.Body, bodyScope)
		if aerr != nil {
			return nil, aerr
		}
		methods = append(methods, &ir.DefStmt{Name: m.Name, Params: params, ReturnType: fnType.Return, Body: body, Loc: m.Loc})
	}

	return &ir.ObjectExpr{Name: e.Name, Fields: fields, Methods: methods, Typ: types.ObjectType{Scope: objScope}, Loc: e.Loc}, nil
}
