// Package codegen lowers a typed ir.Source into the target language's
// source text: a single static class holding every DEF as a static method
// (hoisted out of whatever block it was declared in, since the target has
// no nested function declarations), each LET of the leading run of top-level
// LETs as a static field, and a main entry point running the remaining
// top-level statements (later LETs included) in their original order (§4.4).
package codegen

import (
	"fmt"
	"strings"

	"github.com/lumen-lang/lumen/internal/compiler/ir"
	"github.com/lumen-lang/lumen/internal/compiler/types"
)

// Generator lowers IR into target source text.
type Generator struct {
	buf     strings.Builder
	indent  int
	imports map[string]bool
}

// NewGenerator creates a fresh Generator.
func NewGenerator() *Generator {
	return &Generator{imports: make(map[string]bool)}
}

// Generate runs the full lowering over source and returns the generated
// class as a single string (§4.4 — generate(ir) -> string).
func Generate(source *ir.Source) string {
	g := NewGenerator()
	return g.GenerateProgram(source)
}

// GenerateProgram implements the Program rule: hoist every DEF (at any
// nesting depth) to a class-level static method, hoist the top-level LETs
// that precede the first other top-level statement to class-level static
// fields (their initializers become assignments at the start of main), and
// run everything else, later LETs included, through main in source order.
func (g *Generator) GenerateProgram(source *ir.Source) string {
	g.reset()

	defs, topRest := hoistDefs(source.Statements)

	var fields []*ir.LetStmt
	var mainStmts []ir.Stmt
	inDeclarationPrefix := true
	for _, stmt := range topRest {
		let, ok := stmt.(*ir.LetStmt)
		if ok && inDeclarationPrefix {
			fields = append(fields, let)
			if let.Init != nil {
				mainStmts = append(mainStmts, &ir.VariableAssignmentStmt{
					Target: &ir.VariableExpr{Name: let.Name, Typ: let.Type, Loc: let.Loc},
					Value:  let.Init,
					Loc:    let.Loc,
				})
			}
			continue
		}
		inDeclarationPrefix = false
		mainStmts = append(mainStmts, stmt)
	}

	body := &strings.Builder{}
	oldBuf := g.buf
	g.buf = strings.Builder{}

	g.indent = 1
	for _, f := range fields {
		g.writeFieldDecl(f, true)
	}
	if len(fields) > 0 {
		g.writeLine("")
	}
	for i, d := range defs {
		g.writeMethod(d, true)
		if i < len(defs)-1 {
			g.writeLine("")
		}
	}
	if len(defs) > 0 {
		g.writeLine("")
	}
	g.writeLine("public static void main(String[] args) {")
	g.indent++
	g.writeStmtList(mainStmts)
	g.indent--
	g.writeLine("}")

	body.WriteString(g.buf.String())
	g.buf = oldBuf

	g.writeLine("public final class Program {")
	g.writeLine("")
	g.buf.WriteString(body.String())
	g.writeLine("}")

	return g.header() + g.buf.String()
}

func (g *Generator) reset() {
	g.buf.Reset()
	g.indent = 0
	g.imports = make(map[string]bool)
}

func (g *Generator) writeLine(format string, args ...interface{}) {
	if format == "" {
		g.buf.WriteString("\n")
		return
	}
	for i := 0; i < g.indent; i++ {
		g.buf.WriteString("\t")
	}
	if len(args) > 0 {
		g.buf.WriteString(fmt.Sprintf(format, args...))
	} else {
		g.buf.WriteString(format)
	}
	g.buf.WriteString("\n")
}

// header renders the import block accumulated as a side effect of lowering
// types and expressions — mirroring the teacher's collect-as-you-go import
// bookkeeping rather than a fixed prelude.
func (g *Generator) header() string {
	if len(g.imports) == 0 {
		return ""
	}
	names := make([]string, 0, len(g.imports))
	for name := range g.imports {
		names = append(names, name)
	}
	names = sortStrings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(fmt.Sprintf("import %s;\n", name))
	}
	b.WriteString("\n")
	return b.String()
}

func sortStrings(strs []string) []string {
	result := make([]string, len(strs))
	copy(result, strs)
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[i] > result[j] {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result
}

// javaType lowers a lattice type to its target representation. Every
// mapped type is a reference type, so `null` is always a valid zero value —
// the hoisting-preamble never needs a type-specific default.
func (g *Generator) javaType(t types.Type) string {
	switch v := t.(type) {
	case types.AtomicType:
		switch v.Kind() {
		case types.KindInteger:
			g.imports["java.math.BigInteger"] = true
			return "BigInteger"
		case types.KindDecimal:
			g.imports["java.math.BigDecimal"] = true
			return "BigDecimal"
		case types.KindString:
			return "String"
		case types.KindBoolean:
			return "Boolean"
		default:
			// Any, Nil, Comparable, Equatable, Iterable have no concrete
			// target representation; erase to Object.
			return "Object"
		}
	case types.ObjectType:
		// Object types have no nameable class in the target, and the
		// anonymous subclass generated for the literal can't be spelled
		// back out as a type name, so the variable's type is inferred.
		return "var"
	case types.FunctionType:
		// DEF never compiles to a target value — only to a static method —
		// so a FunctionType is never actually materialized.
		return "Object"
	default:
		return "Object"
	}
}

func (g *Generator) writeFieldDecl(f *ir.LetStmt, static bool) {
	keyword := ""
	if static {
		keyword = "static "
	}
	g.writeLine("%s%s %s = null;", keyword, g.javaType(f.Type), f.Name)
}

// writeMethod renders a DEF as a method of the enclosing class; static for
// a hoisted top-level or nested DEF, instance for an ObjectExpr method.
func (g *Generator) writeMethod(d *ir.DefStmt, static bool) {
	keyword := ""
	if static {
		keyword = "static "
	}
	params := make([]string, len(d.Params))
	for i, p := range d.Params {
		params[i] = fmt.Sprintf("%s %s", g.javaType(p.Type), p.Name)
	}
	g.writeLine("%s%s %s(%s) {", keyword, g.javaType(d.ReturnType), d.Name, strings.Join(params, ", "))
	g.indent++
	g.writeStmtList(d.Body)
	g.indent--
	g.writeLine("}")
}

func (g *Generator) writeStmtList(stmts []ir.Stmt) {
	for _, stmt := range stmts {
		g.writeStmt(stmt)
	}
}

func (g *Generator) writeStmt(stmt ir.Stmt) {
	switch s := stmt.(type) {
	case *ir.LetStmt:
		init := "null"
		if s.Init != nil {
			init = g.generateExpr(s.Init)
		}
		g.writeLine("%s %s = %s;", g.javaType(s.Type), s.Name, init)

	case *ir.DefStmt:
		// hoistDefs removes every DefStmt from a body before it reaches
		// here; a survivor means the pre-pass was not run over this list.
		panic("codegen: unhoisted DefStmt reached statement generation")

	case *ir.IfStmt:
		g.writeLine("if (%s) {", g.generateExpr(s.Cond))
		g.indent++
		g.writeStmtList(s.Then)
		g.indent--
		if s.Else != nil {
			g.writeLine("} else {")
			g.indent++
			g.writeStmtList(s.Else)
			g.indent--
		}
		g.writeLine("}")

	case *ir.ForStmt:
		g.imports["java.util.Iterator"] = true
		iterable := g.generateExpr(s.Iterable)
		g.writeLine("for (Iterator<Object> %s$it = ((Iterable<Object>) %s).iterator(); %s$it.hasNext(); ) {",
			s.Name, iterable, s.Name)
		g.indent++
		g.writeLine("BigInteger %s = (BigInteger) %s$it.next();", s.Name, s.Name)
		g.writeStmtList(s.Body)
		g.indent--
		g.writeLine("}")

	case *ir.ReturnStmt:
		if s.Value == nil {
			g.writeLine("return null;")
			return
		}
		g.writeLine("return %s;", g.generateExpr(s.Value))

	case *ir.ExpressionStmt:
		g.writeLine("%s;", g.generateExpr(s.Expr))

	case *ir.VariableAssignmentStmt:
		g.writeLine("%s = %s;", s.Target.Name, g.generateExpr(s.Value))

	case *ir.PropertyAssignmentStmt:
		g.writeLine("%s.%s = %s;", g.generateExpr(s.Target.Receiver), s.Target.Name, g.generateExpr(s.Value))

	default:
		g.writeLine("/* unsupported statement %T */", stmt)
	}
}
