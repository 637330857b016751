package codegen

import (
	"fmt"
	"strings"

	"github.com/lumen-lang/lumen/internal/compiler/ast"
	"github.com/lumen-lang/lumen/internal/compiler/ir"
	"github.com/lumen-lang/lumen/internal/compiler/types"
)

// generateExpr lowers an IR expression to target source text (§4.4).
func (g *Generator) generateExpr(expr ir.Expr) string {
	switch e := expr.(type) {
	case *ir.LiteralExpr:
		return g.generateLiteral(e)
	case *ir.GroupExpr:
		return fmt.Sprintf("(%s)", g.generateExpr(e.Inner))
	case *ir.BinaryExpr:
		return g.generateBinary(e)
	case *ir.VariableExpr:
		return e.Name
	case *ir.PropertyExpr:
		return fmt.Sprintf("%s.%s", g.generateExpr(e.Receiver), e.Name)
	case *ir.FunctionExpr:
		return fmt.Sprintf("%s(%s)", e.Name, g.generateArgs(e.Args))
	case *ir.MethodExpr:
		return fmt.Sprintf("%s.%s(%s)", g.generateExpr(e.Receiver), e.Name, g.generateArgs(e.Args))
	case *ir.ObjectExpr:
		return g.generateObject(e)
	default:
		return fmt.Sprintf("/* unsupported expression %T */", expr)
	}
}

func (g *Generator) generateArgs(args []ir.Expr) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = g.generateExpr(arg)
	}
	return strings.Join(parts, ", ")
}

// generateLiteral renders an arbitrary-precision literal via its target
// constructor; a plain string or boolean needs no wrapping.
func (g *Generator) generateLiteral(lit *ir.LiteralExpr) string {
	switch lit.Kind {
	case ast.LiteralNil:
		return "null"
	case ast.LiteralBool:
		if lit.Value.(bool) {
			return "true"
		}
		return "false"
	case ast.LiteralInteger:
		g.imports["java.math.BigInteger"] = true
		return fmt.Sprintf("new BigInteger(%q)", lit.Value.(fmt.Stringer).String())
	case ast.LiteralDecimal:
		g.imports["java.math.BigDecimal"] = true
		return fmt.Sprintf("new BigDecimal(%q)", lit.Value.(fmt.Stringer).String())
	case ast.LiteralString:
		return fmt.Sprintf("%q", lit.Value.(string))
	default:
		return fmt.Sprintf("%v", lit.Value)
	}
}

// generateLogicalOperand renders operand, parenthesizing it when it is a
// nested OR directly inside an AND — the target's && binds tighter than ||,
// so without explicit grouping the two would no longer share a single
// left-associative level the way the source grammar's flat logical cascade
// does.
func (g *Generator) generateLogicalOperand(operand ir.Expr, parentIsAnd bool) string {
	code := g.generateExpr(operand)
	if parentIsAnd {
		if b, ok := operand.(*ir.BinaryExpr); ok && b.Operator == "OR" {
			return "(" + code + ")"
		}
	}
	return code
}

// generateBinary implements §4.4's operator lowering: AND/OR become the
// target's short-circuit operators; comparisons become a compareTo(...) OP 0
// call; equality becomes a helper call, negated for '!='; '+' between two
// Strings is native concatenation, every other arithmetic operator is an
// arbitrary-precision method call, with '/' on two Integers using exact
// division and any Decimal operand using a rounding mode.
func (g *Generator) generateBinary(e *ir.BinaryExpr) string {
	switch e.Operator {
	case "AND", "OR":
		isAnd := e.Operator == "AND"
		left := g.generateLogicalOperand(e.Left, isAnd)
		right := g.generateLogicalOperand(e.Right, isAnd)
		op := "||"
		if isAnd {
			op = "&&"
		}
		return fmt.Sprintf("%s %s %s", left, op, right)

	case "<", "<=", ">", ">=":
		left := g.generateExpr(e.Left)
		right := g.generateExpr(e.Right)
		return fmt.Sprintf("(%s.compareTo(%s) %s 0)", left, right, e.Operator)

	case "==", "!=":
		g.imports["java.util.Objects"] = true
		left := g.generateExpr(e.Left)
		right := g.generateExpr(e.Right)
		call := fmt.Sprintf("Objects.equals(%s, %s)", left, right)
		if e.Operator == "!=" {
			return "!" + call
		}
		return call

	case "+":
		left := g.generateExpr(e.Left)
		right := g.generateExpr(e.Right)
		if e.Left.Type().Equals(types.String) && e.Right.Type().Equals(types.String) {
			return fmt.Sprintf("%s + %s", left, right)
		}
		return fmt.Sprintf("%s.add(%s)", left, right)

	case "-":
		return fmt.Sprintf("%s.subtract(%s)", g.generateExpr(e.Left), g.generateExpr(e.Right))

	case "*":
		return fmt.Sprintf("%s.multiply(%s)", g.generateExpr(e.Left), g.generateExpr(e.Right))

	case "/":
		left := g.generateExpr(e.Left)
		right := g.generateExpr(e.Right)
		if e.Typ.Equals(types.Integer) {
			return fmt.Sprintf("%s.divide(%s)", left, right)
		}
		g.imports["java.math.RoundingMode"] = true
		return fmt.Sprintf("%s.divide(%s, RoundingMode.HALF_EVEN)", left, right)

	default:
		return fmt.Sprintf("/* unsupported operator %s */", e.Operator)
	}
}

// generateObject renders an ObjectExpr as an anonymous Object subclass:
// every field declaration (with its initializer inline — the target, unlike
// the hoisting-preamble case, allows forward reference among instance
// members regardless of textual order), a blank line, then every method.
func (g *Generator) generateObject(o *ir.ObjectExpr) string {
	var b strings.Builder
	b.WriteString("new Object() {\n")

	g.indent++
	for _, f := range o.Fields {
		init := "null"
		if f.Init != nil {
			init = g.generateExpr(f.Init)
		}
		b.WriteString(g.indentStr())
		b.WriteString(fmt.Sprintf("%s %s = %s;\n", g.javaType(f.Type), f.Name, init))
	}

	if len(o.Fields) > 0 && len(o.Methods) > 0 {
		b.WriteString("\n")
	}

	for i, m := range o.Methods {
		oldBuf := g.buf
		g.buf = strings.Builder{}
		g.writeMethod(m, false)
		b.WriteString(g.buf.String())
		g.buf = oldBuf
		if i < len(o.Methods)-1 {
			b.WriteString("\n")
		}
	}
	g.indent--

	b.WriteString(g.indentStr())
	b.WriteString("}")
	return b.String()
}

func (g *Generator) indentStr() string {
	return strings.Repeat("\t", g.indent)
}
