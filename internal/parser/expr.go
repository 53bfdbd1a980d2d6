// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package parser

import (
	"strconv"
	"strings"

	"github.com/saferwall/vbaproj/internal/ast"
	"github.com/saferwall/vbaproj/internal/lexer"
)

// parseExpr implements the precedence-climbing chain described in
// spec.md §4.F, from loosest to tightest:
//
//	Imp
//	Eqv
//	Xor
//	Or
//	And
//	Not (unary)
//	comparison (= <> < > <= >= Is Like)
//	Concat (&)
//	Additive (+ -)
//	Mod
//	IntDiv (\)
//	Multiplicative (* /)
//	unary minus
//	Power (^)
//	postfix (call/index/member)
//	primary
func (p *Parser) parseExpr() (*ast.Expression, error) {
	return p.parseImp()
}

func (p *Parser) parseImp() (*ast.Expression, error) {
	left, err := p.parseEqv()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("Imp") {
		pos := p.advance().Pos
		right, err := p.parseEqv()
		if err != nil {
			return nil, err
		}
		left = &ast.Expression{Kind: ast.ExprBinary, Pos: toPos(pos), BinOp: ast.OpImp, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseEqv() (*ast.Expression, error) {
	left, err := p.parseXor()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("Eqv") {
		pos := p.advance().Pos
		right, err := p.parseXor()
		if err != nil {
			return nil, err
		}
		left = &ast.Expression{Kind: ast.ExprBinary, Pos: toPos(pos), BinOp: ast.OpEqv, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseXor() (*ast.Expression, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("Xor") {
		pos := p.advance().Pos
		right, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		left = &ast.Expression{Kind: ast.ExprBinary, Pos: toPos(pos), BinOp: ast.OpXor, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseOr() (*ast.Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("Or") {
		pos := p.advance().Pos
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Expression{Kind: ast.ExprBinary, Pos: toPos(pos), BinOp: ast.OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (*ast.Expression, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("And") {
		pos := p.advance().Pos
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &ast.Expression{Kind: ast.ExprBinary, Pos: toPos(pos), BinOp: ast.OpAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (*ast.Expression, error) {
	if p.isKeyword("Not") {
		pos := p.advance().Pos
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.Expression{Kind: ast.ExprUnary, Pos: toPos(pos), UnOp: ast.OpNot, Operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (*ast.Expression, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		matched := true
		pos := p.cur().Pos
		switch {
		case p.isOp("="):
			op = ast.OpEq
		case p.isOp("<>"):
			op = ast.OpNeq
		case p.isOp("<"):
			op = ast.OpLt
		case p.isOp(">"):
			op = ast.OpGt
		case p.isOp("<="):
			op = ast.OpLe
		case p.isOp(">="):
			op = ast.OpGe
		case p.isKeyword("Like"):
			op = ast.OpLike
		case p.isKeyword("Is"):
			op = ast.OpIs
		default:
			matched = false
		}
		if !matched {
			return left, nil
		}
		p.advance()
		// TypeOf X Is TypeName is handled in parsePrimary; a bare
		// "expr Is expr" compares object identity/Nothing.
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		left = &ast.Expression{Kind: ast.ExprBinary, Pos: toPos(pos), BinOp: op, Left: left, Right: right}
	}
}

func (p *Parser) parseConcat() (*ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.isOp("&") {
		pos := p.advance().Pos
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.Expression{Kind: ast.ExprBinary, Pos: toPos(pos), BinOp: ast.OpConcat, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (*ast.Expression, error) {
	left, err := p.parseMod()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := ast.OpAdd
		if p.cur().Text == "-" {
			op = ast.OpSub
		}
		pos := p.advance().Pos
		right, err := p.parseMod()
		if err != nil {
			return nil, err
		}
		left = &ast.Expression{Kind: ast.ExprBinary, Pos: toPos(pos), BinOp: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMod() (*ast.Expression, error) {
	left, err := p.parseIntDiv()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("Mod") {
		pos := p.advance().Pos
		right, err := p.parseIntDiv()
		if err != nil {
			return nil, err
		}
		left = &ast.Expression{Kind: ast.ExprBinary, Pos: toPos(pos), BinOp: ast.OpMod, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseIntDiv() (*ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.isOp("\\") {
		pos := p.advance().Pos
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.Expression{Kind: ast.ExprBinary, Pos: toPos(pos), BinOp: ast.OpIntDiv, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (*ast.Expression, error) {
	left, err := p.parseUnaryMinus()
	if err != nil {
		return nil, err
	}
	for p.isOp("*") || p.isOp("/") {
		op := ast.OpMul
		if p.cur().Text == "/" {
			op = ast.OpDiv
		}
		pos := p.advance().Pos
		right, err := p.parseUnaryMinus()
		if err != nil {
			return nil, err
		}
		left = &ast.Expression{Kind: ast.ExprBinary, Pos: toPos(pos), BinOp: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnaryMinus() (*ast.Expression, error) {
	if p.isOp("-") || p.isOp("+") {
		neg := p.cur().Text == "-"
		pos := p.advance().Pos
		operand, err := p.parseUnaryMinus()
		if err != nil {
			return nil, err
		}
		if !neg {
			return operand, nil
		}
		return &ast.Expression{Kind: ast.ExprUnary, Pos: toPos(pos), UnOp: ast.OpNeg, Operand: operand}, nil
	}
	return p.parsePower()
}

func (p *Parser) parsePower() (*ast.Expression, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.isOp("^") {
		pos := p.advance().Pos
		// right-associative
		right, err := p.parseUnaryMinus()
		if err != nil {
			return nil, err
		}
		return &ast.Expression{Kind: ast.ExprBinary, Pos: toPos(pos), BinOp: ast.OpPow, Left: left, Right: right}, nil
	}
	return left, nil
}

// parsePostfix parses a primary followed by any chain of .Member, (Index...)
// applications, left-associatively.
func (p *Parser) parsePostfix() (*ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isOp("."):
			pos := p.advance().Pos
			if p.cur().Type != lexer.TokIdent && p.cur().Type != lexer.TokKeyword {
				return nil, p.fail("expected member name after '.'")
			}
			member := p.advance().Text
			expr = &ast.Expression{Kind: ast.ExprMember, Pos: toPos(pos), Target: expr, Member: member}
		case p.isOp("("):
			pos := p.advance().Pos
			var args []*ast.Expression
			for !p.isOp(")") && p.cur().Type != lexer.TokEOF {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.isOp(",") {
					p.advance()
					continue
				}
				break
			}
			if !p.isOp(")") {
				return nil, p.fail("expected ')'")
			}
			p.advance()
			kind := ast.ExprCall
			if expr.Kind == ast.ExprIdent {
				kind = ast.ExprIndex
			}
			if kind == ast.ExprIndex {
				expr = &ast.Expression{Kind: ast.ExprIndex, Pos: toPos(pos), Target: expr, Index: args}
			} else {
				expr = &ast.Expression{Kind: ast.ExprCall, Pos: toPos(pos), Target: expr, Args: args}
			}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (*ast.Expression, error) {
	t := p.cur()
	pos := t.Pos
	switch t.Type {
	case lexer.TokNumber:
		p.advance()
		return &ast.Expression{Kind: ast.ExprLiteral, Pos: toPos(pos), LitKind: ast.LitNumber, Text: t.Text, Num: parseNumberLiteral(t.Text)}, nil
	case lexer.TokString:
		p.advance()
		return &ast.Expression{Kind: ast.ExprLiteral, Pos: toPos(pos), LitKind: ast.LitString, Str: t.Text}, nil
	case lexer.TokDate:
		p.advance()
		return &ast.Expression{Kind: ast.ExprLiteral, Pos: toPos(pos), LitKind: ast.LitDate, Text: t.Text}, nil
	case lexer.TokKeyword:
		switch lowerWord(t.Text) {
		case "true":
			p.advance()
			return &ast.Expression{Kind: ast.ExprLiteral, Pos: toPos(pos), LitKind: ast.LitBoolean, Bool: true}, nil
		case "false":
			p.advance()
			return &ast.Expression{Kind: ast.ExprLiteral, Pos: toPos(pos), LitKind: ast.LitBoolean, Bool: false}, nil
		case "nothing":
			p.advance()
			return &ast.Expression{Kind: ast.ExprLiteral, Pos: toPos(pos), LitKind: ast.LitNothing}, nil
		case "null":
			p.advance()
			return &ast.Expression{Kind: ast.ExprLiteral, Pos: toPos(pos), LitKind: ast.LitNull}, nil
		case "me":
			p.advance()
			return &ast.Expression{Kind: ast.ExprIdent, Pos: toPos(pos), Name: "Me"}, nil
		case "new":
			p.advance()
			if p.cur().Type != lexer.TokIdent && p.cur().Type != lexer.TokKeyword {
				return nil, p.fail("expected class name after New")
			}
			name := p.advance().Text
			return &ast.Expression{Kind: ast.ExprNew, Pos: toPos(pos), ClassName: name}, nil
		case "typeof":
			p.advance()
			operand, err := p.parseConcat()
			if err != nil {
				return nil, err
			}
			if !p.isKeyword("Is") {
				return nil, p.fail("expected 'Is' in TypeOf expression")
			}
			p.advance()
			if p.cur().Type != lexer.TokIdent && p.cur().Type != lexer.TokKeyword {
				return nil, p.fail("expected type name after TypeOf ... Is")
			}
			typeName := p.advance().Text
			return &ast.Expression{Kind: ast.ExprTypeTest, Pos: toPos(pos), Operand: operand, TypeName: typeName}, nil
		}
	case lexer.TokIdent:
		p.advance()
		return &ast.Expression{Kind: ast.ExprIdent, Pos: toPos(pos), Name: t.Text}, nil
	case lexer.TokPunct:
		if t.Text == "(" {
			p.advance()
			inner, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if !p.isOp(")") {
				return nil, p.fail("expected ')'")
			}
			p.advance()
			return &ast.Expression{Kind: ast.ExprParen, Pos: toPos(pos), Inner: inner}, nil
		}
		if t.Text == "." {
			// Leading-dot member reference inside a With block.
			p.advance()
			if p.cur().Type != lexer.TokIdent && p.cur().Type != lexer.TokKeyword {
				return nil, p.fail("expected member name after '.'")
			}
			member := p.advance().Text
			return &ast.Expression{Kind: ast.ExprMember, Pos: toPos(pos), ImplicitWith: true, Member: member}, nil
		}
	}
	return nil, p.fail("unexpected token " + t.Type.String() + " " + t.Text)
}

// parseNumberLiteral converts a lexed numeric token text (including &H/&O
// radix prefixes and a trailing type-suffix character) into a float64.
func parseNumberLiteral(text string) float64 {
	s := text
	if len(s) > 0 {
		switch s[len(s)-1] {
		case '%', '&', '!', '#', '@':
			s = s[:len(s)-1]
		}
	}
	if strings.HasPrefix(s, "&H") || strings.HasPrefix(s, "&h") {
		n, _ := strconv.ParseInt(s[2:], 16, 64)
		return float64(n)
	}
	if strings.HasPrefix(s, "&O") || strings.HasPrefix(s, "&o") {
		n, _ := strconv.ParseInt(s[2:], 8, 64)
		return float64(n)
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
