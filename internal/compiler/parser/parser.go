// Package parser implements recursive-descent parsing of a Lumen token
// sequence into an untyped AST, using a fixed precedence cascade for
// expressions. There is no error recovery: the first ParseError aborts
// parsing and is returned to the caller (§4.6).
package parser

import (
	"github.com/lumen-lang/lumen/internal/compiler/ast"
	"github.com/lumen-lang/lumen/internal/compiler/lexer"
)

// Parser is a cursor over a token sequence.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// New creates a Parser over tokens.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse runs the full grammar over tokens and returns either the AST or the
// first parse error encountered.
func Parse(tokens []lexer.Token) (*ast.Source, *ParseError) {
	p := New(tokens)
	return p.parseSource()
}

// has reports whether a token exists at pos+offset.
func (p *Parser) has(offset int) bool {
	idx := p.pos + offset
	return idx >= 0 && idx < len(p.tokens)
}

// get reads the token at pos+offset without consuming anything. get(-1)
// retrieves the token most recently consumed by advance.
func (p *Parser) get(offset int) lexer.Token {
	idx := p.pos + offset
	if idx < 0 || idx >= len(p.tokens) {
		return lexer.Token{}
	}
	return p.tokens[idx]
}

// peek checks patterns against successive tokens starting at the current
// position: patterns[0] against get(0), patterns[1] against get(1), and so
// on. Each pattern is either a lexer.TokenKind (matches on Kind) or a string
// (matches on Literal). peek reports true only if every position is present
// and matches its pattern.
func (p *Parser) peek(patterns ...interface{}) bool {
	for i, pat := range patterns {
		if !p.has(i) {
			return false
		}
		tok := p.get(i)
		switch v := pat.(type) {
		case lexer.TokenKind:
			if tok.Kind != v {
				return false
			}
		case string:
			if tok.Literal != v {
				return false
			}
		}
	}
	return true
}

// match peeks patterns and, on success, advances past all matched
// positions.
func (p *Parser) match(patterns ...interface{}) bool {
	if !p.peek(patterns...) {
		return false
	}
	for range patterns {
		p.advance()
	}
	return true
}

func (p *Parser) advance() lexer.Token {
	tok := p.get(0)
	if p.has(0) {
		p.pos++
	}
	return tok
}

// consume requires pattern to match the current token, advancing past it;
// otherwise it fails with a ParseError carrying msg.
func (p *Parser) consume(pattern interface{}, msg string) (lexer.Token, *ParseError) {
	if p.peek(pattern) {
		return p.advance(), nil
	}
	return lexer.Token{}, newParseError(msg, p.get(0))
}

func loc(tok lexer.Token) ast.SourceLocation {
	return ast.SourceLocation{Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseSource() (*ast.Source, *ParseError) {
	var stmts []ast.Stmt
	for p.has(0) {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return &ast.Source{Statements: stmts}, nil
}

func (p *Parser) parseStmt() (ast.Stmt, *ParseError) {
	switch {
	case p.peek("LET"):
		return p.parseLetStmt()
	case p.peek("DEF"):
		return p.parseDefStmt()
	case p.peek("IF"):
		return p.parseIfStmt()
	case p.peek("FOR"):
		return p.parseForStmt()
	case p.peek("RETURN"):
		return p.parseReturnStmt()
	default:
		return p.parseExprOrAssign()
	}
}

// parseStmtList parses stmt* until the current token's literal matches one
// of terminators (the terminator itself is not consumed).
func (p *Parser) parseStmtList(terminators ...string) ([]ast.Stmt, *ParseError) {
	var stmts []ast.Stmt
	for {
		if !p.has(0) {
			return nil, newParseError("unexpected end of input", p.get(-1))
		}
		for _, term := range terminators {
			if p.peek(term) {
				return stmts, nil
			}
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

func (p *Parser) parseLetStmt() (*ast.LetStmt, *ParseError) {
	letTok := p.advance()

	nameTok, err := p.consume(lexer.Identifier, "expected identifier after LET")
	if err != nil {
		return nil, err
	}

	var typeName *string
	if p.match(":") {
		typeTok, err := p.consume(lexer.Identifier, "expected type name after ':'")
		if err != nil {
			return nil, err
		}
		lit := typeTok.Literal
		typeName = &lit
	}

	var init ast.Expr
	if p.match("=") {
		init, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.consume(";", "expected ';' after let statement"); err != nil {
		return nil, err
	}

	return &ast.LetStmt{Name: nameTok.Literal, TypeName: typeName, Init: init, Loc: loc(letTok)}, nil
}

func (p *Parser) parseDefStmt() (*ast.DefStmt, *ParseError) {
	defTok := p.advance()

	nameTok, err := p.consume(lexer.Identifier, "expected function name after DEF")
	if err != nil {
		return nil, err
	}

	if _, err := p.consume("(", "expected '(' after function name"); err != nil {
		return nil, err
	}

	var params []ast.Param
	if !p.peek(")") {
		for {
			pNameTok, err := p.consume(lexer.Identifier, "expected parameter name")
			if err != nil {
				return nil, err
			}
			var pType *string
			if p.match(":") {
				pTypeTok, err := p.consume(lexer.Identifier, "expected parameter type")
				if err != nil {
					return nil, err
				}
				lit := pTypeTok.Literal
				pType = &lit
			}
			params = append(params, ast.Param{Name: pNameTok.Literal, TypeName: pType})

			if !p.match(",") {
				break
			}
			if p.peek(")") {
				return nil, newParseError("trailing comma before ')'", p.get(0))
			}
		}
	}

	if _, err := p.consume(")", "expected ')' after parameters"); err != nil {
		return nil, err
	}

	var returnType *string
	if p.match(":") {
		retTok, err := p.consume(lexer.Identifier, "expected return type")
		if err != nil {
			return nil, err
		}
		lit := retTok.Literal
		returnType = &lit
	}

	if _, err := p.consume("DO", "expected 'DO' to start function body"); err != nil {
		return nil, err
	}

	body, err := p.parseStmtList("END")
	if err != nil {
		return nil, err
	}

	if _, err := p.consume("END", "expected 'END' to close function body"); err != nil {
		return nil, err
	}

	return &ast.DefStmt{Name: nameTok.Literal, Params: params, ReturnType: returnType, Body: body, Loc: loc(defTok)}, nil
}

func (p *Parser) parseIfStmt() (*ast.IfStmt, *ParseError) {
	ifTok := p.advance()

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.consume("DO", "expected 'DO' after if condition"); err != nil {
		return nil, err
	}

	thenBody, err := p.parseStmtList("ELSE", "END")
	if err != nil {
		return nil, err
	}

	var elseBody []ast.Stmt
	if p.match("ELSE") {
		elseBody, err = p.parseStmtList("END")
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.consume("END", "expected 'END' to close if statement"); err != nil {
		return nil, err
	}

	return &ast.IfStmt{Cond: cond, Then: thenBody, Else: elseBody, Loc: loc(ifTok)}, nil
}

func (p *Parser) parseForStmt() (*ast.ForStmt, *ParseError) {
	forTok := p.advance()

	nameTok, err := p.consume(lexer.Identifier, "expected loop variable name after FOR")
	if err != nil {
		return nil, err
	}

	if _, err := p.consume("IN", "expected 'IN' after loop variable"); err != nil {
		return nil, err
	}

	iterable, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.consume("DO", "expected 'DO' to start for body"); err != nil {
		return nil, err
	}

	body, err := p.parseStmtList("END")
	if err != nil {
		return nil, err
	}

	if _, err := p.consume("END", "expected 'END' to close for statement"); err != nil {
		return nil, err
	}

	return &ast.ForStmt{Name: nameTok.Literal, Iterable: iterable, Body: body, Loc: loc(forTok)}, nil
}

func (p *Parser) parseReturnStmt() (*ast.ReturnStmt, *ParseError) {
	retTok := p.advance()

	var value ast.Expr
	if !p.peek(";") {
		var err *ParseError
		value, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.consume(";", "expected ';' after return statement"); err != nil {
		return nil, err
	}

	return &ast.ReturnStmt{Value: value, Loc: loc(retTok)}, nil
}

func (p *Parser) parseExprOrAssign() (ast.Stmt, *ParseError) {
	startTok := p.get(0)

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.match("=") {
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(";", "expected ';' after assignment"); err != nil {
			return nil, err
		}
		return &ast.AssignmentStmt{Target: expr, Value: value, Loc: loc(startTok)}, nil
	}

	if _, err := p.consume(";", "expected ';' after expression statement"); err != nil {
		return nil, err
	}

	return &ast.ExpressionStmt{Expr: expr, Loc: loc(startTok)}, nil
}
