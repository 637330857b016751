package codegen

import "github.com/lumen-lang/lumen/internal/compiler/ir"

// hoistDefs recursively strips every ir.DefStmt out of stmts and its nested
// statement lists (If branches, For bodies, and a hoisted DEF's own body),
// returning the flattened list of all DefStmt nodes found anywhere plus the
// original list with those nodes removed. The target has no nested function
// declarations, so every DEF — however deeply nested in the source — becomes
// one static method of the enclosing class (§4.4).
func hoistDefs(stmts []ir.Stmt) (defs []*ir.DefStmt, rest []ir.Stmt) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ir.DefStmt:
			nested, body := hoistDefs(s.Body)
			defs = append(defs, nested...)
			defs = append(defs, &ir.DefStmt{
				Name: s.Name, Params: s.Params, ReturnType: s.ReturnType, Body: body, Loc: s.Loc,
			})

		case *ir.IfStmt:
			nestedThen, then := hoistDefs(s.Then)
			nestedElse, elseBody := hoistDefs(s.Else)
			defs = append(defs, nestedThen...)
			defs = append(defs, nestedElse...)
			rest = append(rest, &ir.IfStmt{Cond: s.Cond, Then: then, Else: elseBody, Loc: s.Loc})

		case *ir.ForStmt:
			nested, body := hoistDefs(s.Body)
			defs = append(defs, nested...)
			rest = append(rest, &ir.ForStmt{Name: s.Name, Iterable: s.Iterable, Body: body, Loc: s.Loc})

		default:
			rest = append(rest, stmt)
		}
	}
	return defs, rest
}
