package parser

// Expression parsing implements the fixed precedence cascade from §4.2:
//
//	expr           := logical
//	logical        := comparison (('AND'|'OR') comparison)*
//	comparison     := additive (('<'|'<='|'>'|'>='|'=='|'!=') additive)*
//	additive       := multiplicative (('+'|'-') multiplicative)*
//	multiplicative := secondary (('*'|'/') secondary)*
//	secondary      := primary ('.' IDENT ( '(' args? ')' )?)*
//	primary        := literal | '(' expr ')' | objectExpr | IDENT ( '(' args? ')' )?
//
// Every binary level folds left over its current `left` operand, so all
// operators are left-associative.

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/lumen-lang/lumen/internal/compiler/ast"
	"github.com/lumen-lang/lumen/internal/compiler/lexer"
)

func (p *Parser) parseExpr() (ast.Expr, *ParseError) {
	return p.parseLogical()
}

func (p *Parser) parseLogical() (ast.Expr, *ParseError) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.peek("AND") || p.peek("OR") {
		opTok := p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Operator: opTok.Literal, Left: left, Right: right, Loc: loc(opTok)}
	}
	return left, nil
}

func (p *Parser) parseComparison() (ast.Expr, *ParseError) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.peek("<") || p.peek("<=") || p.peek(">") || p.peek(">=") || p.peek("==") || p.peek("!=") {
		opTok := p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Operator: opTok.Literal, Left: left, Right: right, Loc: loc(opTok)}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expr, *ParseError) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek("+") || p.peek("-") {
		opTok := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Operator: opTok.Literal, Left: left, Right: right, Loc: loc(opTok)}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, *ParseError) {
	left, err := p.parseSecondary()
	if err != nil {
		return nil, err
	}
	for p.peek("*") || p.peek("/") {
		opTok := p.advance()
		right, err := p.parseSecondary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Operator: opTok.Literal, Left: left, Right: right, Loc: loc(opTok)}
	}
	return left, nil
}

func (p *Parser) parseSecondary() (ast.Expr, *ParseError) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.match(".") {
		nameTok, err := p.consume(lexer.Identifier, "expected member name after '.'")
		if err != nil {
			return nil, err
		}
		if p.match("(") {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(")", "expected ')' after arguments"); err != nil {
				return nil, err
			}
			expr = &ast.MethodExpr{Receiver: expr, Name: nameTok.Literal, Args: args, Loc: loc(nameTok)}
		} else {
			expr = &ast.PropertyExpr{Receiver: expr, Name: nameTok.Literal, Loc: loc(nameTok)}
		}
	}

	return expr, nil
}

//nolint:gocyclo // primary dispatches over every literal and expression start token
func (p *Parser) parsePrimary() (ast.Expr, *ParseError) {
	tok := p.get(0)

	switch {
	case p.peek("NIL"):
		p.advance()
		return &ast.LiteralExpr{Kind: ast.LiteralNil, Value: nil, Loc: loc(tok)}, nil

	case p.peek("TRUE"):
		p.advance()
		return &ast.LiteralExpr{Kind: ast.LiteralBool, Value: true, Loc: loc(tok)}, nil

	case p.peek("FALSE"):
		p.advance()
		return &ast.LiteralExpr{Kind: ast.LiteralBool, Value: false, Loc: loc(tok)}, nil

	case p.peek(lexer.Integer):
		p.advance()
		val, perr := parseIntegerLiteral(tok.Literal)
		if perr != nil {
			return nil, newParseError(perr.Error(), tok)
		}
		return &ast.LiteralExpr{Kind: ast.LiteralInteger, Value: val, Loc: loc(tok)}, nil

	case p.peek(lexer.Decimal):
		p.advance()
		val, perr := parseDecimalLiteral(tok.Literal)
		if perr != nil {
			return nil, newParseError(perr.Error(), tok)
		}
		return &ast.LiteralExpr{Kind: ast.LiteralDecimal, Value: val, Loc: loc(tok)}, nil

	case p.peek(lexer.Character):
		p.advance()
		val, perr := parseCharacterLiteral(tok.Literal)
		if perr != nil {
			return nil, newParseError(perr.Error(), tok)
		}
		return &ast.LiteralExpr{Kind: ast.LiteralChar, Value: val, Loc: loc(tok)}, nil

	case p.peek(lexer.String):
		p.advance()
		val, perr := parseStringLiteral(tok.Literal)
		if perr != nil {
			return nil, newParseError(perr.Error(), tok)
		}
		return &ast.LiteralExpr{Kind: ast.LiteralString, Value: val, Loc: loc(tok)}, nil

	case p.match("("):
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(")", "expected ')' to close group"); err != nil {
			return nil, err
		}
		return &ast.GroupExpr{Inner: inner, Loc: loc(tok)}, nil

	case p.peek("OBJECT"):
		return p.parseObjectExpr()

	case p.peek(lexer.Identifier):
		if lexer.IsKeyword(tok.Literal) {
			return nil, newParseError("unexpected token", tok)
		}
		p.advance()
		if p.match("(") {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(")", "expected ')' after arguments"); err != nil {
				return nil, err
			}
			return &ast.FunctionExpr{Name: tok.Literal, Args: args, Loc: loc(tok)}, nil
		}
		return &ast.VariableExpr{Name: tok.Literal, Loc: loc(tok)}, nil

	default:
		return nil, newParseError("unexpected token", tok)
	}
}

func (p *Parser) parseArgs() ([]ast.Expr, *ParseError) {
	if p.peek(")") {
		return nil, nil
	}

	var args []ast.Expr
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if !p.match(",") {
			break
		}
		if p.peek(")") {
			return nil, newParseError("trailing comma before ')'", p.get(0))
		}
	}
	return args, nil
}

// parseObjectExpr implements `'OBJECT' IDENT? 'DO' letStmt* defStmt* 'END'`.
// An identifier immediately before DO is the object's name; OBJECT with no
// name must still be followed by DO.
func (p *Parser) parseObjectExpr() (ast.Expr, *ParseError) {
	objTok := p.advance()

	var name *string
	if p.peek(lexer.Identifier, "DO") {
		nameTok := p.advance()
		lit := nameTok.Literal
		name = &lit
	}

	if _, err := p.consume("DO", "expected 'DO' to start object body"); err != nil {
		return nil, err
	}

	var fields []*ast.LetStmt
	for p.peek("LET") {
		field, err := p.parseLetStmt()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}

	var methods []*ast.DefStmt
	for p.peek("DEF") {
		method, err := p.parseDefStmt()
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}

	if _, err := p.consume("END", "expected 'END' to close object"); err != nil {
		return nil, err
	}

	return &ast.ObjectExpr{Name: name, Fields: fields, Methods: methods, Loc: loc(objTok)}, nil
}

// parseIntegerLiteral implements §4.2's INTEGER conversion: parse as an
// arbitrary-precision integer, or if the literal contains 'e', first parse
// as an arbitrary-precision decimal and truncate.
func parseIntegerLiteral(literal string) (*big.Int, error) {
	if strings.ContainsAny(literal, "eE") {
		f, _, err := big.ParseFloat(literal, 10, 256, big.ToNearestEven)
		if err != nil {
			return nil, fmt.Errorf("invalid integer literal %q: %w", literal, err)
		}
		i, _ := f.Int(nil)
		return i, nil
	}
	i, ok := new(big.Int).SetString(literal, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer literal %q", literal)
	}
	return i, nil
}

func parseDecimalLiteral(literal string) (*big.Float, error) {
	f, _, err := big.ParseFloat(literal, 10, 256, big.ToNearestEven)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal literal %q: %w", literal, err)
	}
	return f, nil
}

// parseCharacterLiteral strips the surrounding quotes and resolves the
// single escaped or plain code unit inside.
func parseCharacterLiteral(literal string) (rune, error) {
	body, err := resolveEscapes(literal[1 : len(literal)-1])
	if err != nil {
		return 0, err
	}
	runes := []rune(body)
	if len(runes) != 1 {
		return 0, fmt.Errorf("invalid character literal %q", literal)
	}
	return runes[0], nil
}

// parseStringLiteral strips the surrounding quotes and resolves escapes.
func parseStringLiteral(literal string) (string, error) {
	return resolveEscapes(literal[1 : len(literal)-1])
}

// resolveEscapes decodes the escape set `{b, n, r, t, ', ", \}` to their
// single-code-unit values; the lexer has already rejected any other escape.
func resolveEscapes(body string) (string, error) {
	var out strings.Builder
	runes := []rune(body)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '\\' {
			out.WriteRune(c)
			continue
		}
		i++
		if i >= len(runes) {
			return "", fmt.Errorf("dangling escape in literal")
		}
		switch runes[i] {
		case 'b':
			out.WriteRune('\b')
		case 'n':
			out.WriteRune('\n')
		case 'r':
			out.WriteRune('\r')
		case 't':
			out.WriteRune('\t')
		case '\'':
			out.WriteRune('\'')
		case '"':
			out.WriteRune('"')
		case '\\':
			out.WriteRune('\\')
		default:
			return "", fmt.Errorf("invalid escape sequence '\\%c'", runes[i])
		}
	}
	return out.String(), nil
}
