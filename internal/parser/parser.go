// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package parser implements the recursive-descent parser over the lexer's
// token stream, producing the statement/expression IR defined in package
// ast. Two top-level entry points are offered per spec.md §4.F: a whole
// module's statement list (ParseModule, which skips procedure bodies and
// records their signatures) and a single procedure body (ParseProcedureBody).
package parser

import (
	"fmt"

	"github.com/saferwall/vbaproj/internal/ast"
	"github.com/saferwall/vbaproj/internal/lexer"
)

// Error is a positional parse error (spec.md §7 "Parse").
type Error struct {
	Message string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// Parser consumes a flattened token slice (newlines significant,
// whitespace/comments already stripped by the lexer).
type Parser struct {
	toks []lexer.Token
	pos  int
}

// New creates a Parser over src, tokenizing it with the lexer.
func New(src string) *Parser {
	return &Parser{toks: lexer.Tokenize(src)}
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return lexer.Token{Type: lexer.TokEOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) at(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= len(p.toks) || idx < 0 {
		return lexer.Token{Type: lexer.TokEOF}
	}
	return p.toks[idx]
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) fail(msg string) error {
	t := p.cur()
	return &Error{Message: msg, Line: t.Pos.Line, Column: t.Pos.Column}
}

func (p *Parser) isKeyword(word string) bool {
	t := p.cur()
	return t.Type == lexer.TokKeyword && eqFold(t.Text, word)
}

func (p *Parser) isOp(op string) bool {
	t := p.cur()
	return (t.Type == lexer.TokOperator || t.Type == lexer.TokPunct) && t.Text == op
}

func eqFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// skipSeparators consumes newlines and ':' statement separators.
func (p *Parser) skipSeparators() {
	for p.cur().Type == lexer.TokNewline || p.isOp(":") {
		p.advance()
	}
}

func (p *Parser) skipToEOL() {
	for p.cur().Type != lexer.TokNewline && p.cur().Type != lexer.TokEOF {
		p.advance()
	}
}

// ParseExpression parses a single expression from src in isolation.
func ParseExpression(src string) (*ast.Expression, error) {
	p := New(src)
	return p.parseExpr()
}

// ParseProcedureBody parses the statement list of a single procedure body
// (no enclosing Sub/Function/Property header).
func ParseProcedureBody(src string) ([]*ast.Statement, error) {
	p := New(src)
	return p.parseStatementsUntil(nil)
}

// isBlockEnd reports whether the current position starts one of the given
// terminator phrases (each phrase is one or two keywords, e.g. {"End","If"}
// or {"Next"}), without consuming it.
func (p *Parser) isBlockEnd(terminators [][]string) bool {
	for _, phrase := range terminators {
		match := true
		for i, word := range phrase {
			t := p.at(i)
			if !((t.Type == lexer.TokKeyword || t.Type == lexer.TokIdent) && eqFold(t.Text, word)) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func (p *Parser) parseStatementsUntil(terminators [][]string) ([]*ast.Statement, error) {
	var stmts []*ast.Statement
	for {
		p.skipSeparators()
		if p.cur().Type == lexer.TokEOF {
			return stmts, nil
		}
		if terminators != nil && p.isBlockEnd(terminators) {
			return stmts, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
}

func (p *Parser) parseStatement() (*ast.Statement, error) {
	t := p.cur()
	if t.Type == lexer.TokKeyword {
		switch lowerWord(t.Text) {
		case "dim", "static":
			return p.parseDim()
		case "if":
			return p.parseIf()
		case "select":
			return p.parseSelectCase()
		case "for":
			return p.parseFor()
		case "do":
			return p.parseDoLoop()
		case "while":
			return p.parseWhileWend()
		case "exit":
			return p.parseExit()
		case "on":
			return p.parseOnError()
		case "with":
			return p.parseWith()
		case "set":
			return p.parseSet()
		case "raiseevent":
			return p.parseRaiseEvent()
		case "call":
			p.advance()
			target, err := p.parsePostfix()
			if err != nil {
				return nil, err
			}
			return &ast.Statement{Kind: ast.StmtCall, Pos: toPos(t.Pos), Call: target}, nil
		case "option", "attribute":
			p.skipToEOL()
			return nil, nil
		}
	}
	return p.parseAssignOrCallStatement()
}

func lowerWord(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func toPos(p lexer.Position) ast.Position {
	return ast.Position{Line: p.Line, Column: p.Column}
}

// parseAssignOrCallStatement handles: "x = expr" (assignment),
// "obj.Member(args)" with no "=" (call-statement), and the paren-less
// call-statement form "DoWork 1, 2" (spec.md §4.F "Call statements").
func (p *Parser) parseAssignOrCallStatement() (*ast.Statement, error) {
	pos := p.cur().Pos
	expr, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.isOp("=") {
		p.advance()
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Statement{Kind: ast.StmtAssign, Pos: toPos(pos), LHS: expr, RHS: rhs}, nil
	}
	if (expr.Kind == ast.ExprIdent || expr.Kind == ast.ExprMember) && !p.atStatementEnd() {
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		expr = &ast.Expression{Kind: ast.ExprCall, Pos: expr.Pos, Target: expr, Args: args}
	}
	return &ast.Statement{Kind: ast.StmtCall, Pos: toPos(pos), Call: expr}, nil
}

// atStatementEnd reports whether the parser sits at a statement boundary:
// end of input, a newline, a ':' separator, or an Else/ElseIf keyword
// closing a single-line If's Then branch.
func (p *Parser) atStatementEnd() bool {
	switch p.cur().Type {
	case lexer.TokEOF, lexer.TokNewline:
		return true
	}
	if p.isOp(":") {
		return true
	}
	if p.isKeyword("Else") || p.isKeyword("ElseIf") {
		return true
	}
	return false
}

// parseArgList parses a comma-separated expression list for a paren-less
// call statement, stopping at the next statement boundary.
func (p *Parser) parseArgList() ([]*ast.Expression, error) {
	var args []*ast.Expression
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.isOp(",") {
			p.advance()
			continue
		}
		return args, nil
	}
}

func (p *Parser) parseSet() (*ast.Statement, error) {
	pos := p.advance().Pos // "Set"
	lhs, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if !p.isOp("=") {
		return nil, p.fail("expected '=' after Set target")
	}
	p.advance()
	rhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Statement{Kind: ast.StmtSet, Pos: toPos(pos), LHS: lhs, RHS: rhs}, nil
}

func (p *Parser) parseDim() (*ast.Statement, error) {
	pos := p.advance().Pos // "Dim"/"Static"
	var decls []ast.VarDecl
	for {
		if p.cur().Type != lexer.TokIdent && p.cur().Type != lexer.TokKeyword {
			return nil, p.fail("expected variable name in Dim")
		}
		name := p.advance().Text
		decl := ast.VarDecl{Name: name}
		if p.isOp("(") {
			p.advance()
			for !p.isOp(")") && p.cur().Type != lexer.TokEOF {
				p.advance()
			}
			if p.isOp(")") {
				p.advance()
			}
			decl.IsArray = true
		}
		if p.isKeyword("As") {
			p.advance()
			if p.cur().Type == lexer.TokIdent || p.cur().Type == lexer.TokKeyword {
				decl.TypeName = p.advance().Text
			}
		}
		decls = append(decls, decl)
		if p.isOp(",") {
			p.advance()
			continue
		}
		break
	}
	return &ast.Statement{Kind: ast.StmtDim, Pos: toPos(pos), Decls: decls}, nil
}

var ifTerminators = [][]string{{"End", "If"}, {"Else"}, {"ElseIf"}}

func (p *Parser) parseIf() (*ast.Statement, error) {
	pos := p.advance().Pos // "If"
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.isKeyword("Then") {
		return nil, p.fail("expected 'Then'")
	}
	p.advance()

	// Single-line form: no newline directly after Then.
	if p.cur().Type != lexer.TokNewline && p.cur().Type != lexer.TokEOF {
		thenStmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmt := &ast.Statement{Kind: ast.StmtIf, Pos: toPos(pos), Cond: cond}
		if thenStmt != nil {
			stmt.Then = []*ast.Statement{thenStmt}
		}
		if p.isKeyword("Else") {
			p.advance()
			elseStmt, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			if elseStmt != nil {
				stmt.Else = []*ast.Statement{elseStmt}
			}
		}
		return stmt, nil
	}

	stmt := &ast.Statement{Kind: ast.StmtIf, Pos: toPos(pos), Cond: cond}
	then, err := p.parseStatementsUntil(ifTerminators)
	if err != nil {
		return nil, err
	}
	stmt.Then = then

	for p.isKeyword("ElseIf") {
		p.advance()
		econd, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.isKeyword("Then") {
			return nil, p.fail("expected 'Then' after ElseIf")
		}
		p.advance()
		body, err := p.parseStatementsUntil(ifTerminators)
		if err != nil {
			return nil, err
		}
		stmt.ElseIfs = append(stmt.ElseIfs, ast.ElseIf{Cond: econd, Body: body})
	}

	if p.isKeyword("Else") {
		p.advance()
		body, err := p.parseStatementsUntil([][]string{{"End", "If"}})
		if err != nil {
			return nil, err
		}
		stmt.Else = body
	}

	if !p.isBlockEnd([][]string{{"End", "If"}}) {
		return nil, p.fail("expected 'End If'")
	}
	p.advance()
	p.advance()
	return stmt, nil
}

func (p *Parser) parseSelectCase() (*ast.Statement, error) {
	pos := p.advance().Pos // "Select"
	if !p.isKeyword("Case") {
		return nil, p.fail("expected 'Case' after Select")
	}
	p.advance()
	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	stmt := &ast.Statement{Kind: ast.StmtSelectCase, Pos: toPos(pos), Test: test}
	p.skipSeparators()

	for p.isKeyword("Case") {
		p.advance()
		if p.isKeyword("Else") {
			p.advance()
			body, err := p.parseStatementsUntil([][]string{{"End", "Select"}, {"Case"}})
			if err != nil {
				return nil, err
			}
			stmt.Cases = append(stmt.Cases, ast.CaseClause{Body: body})
			break
		}
		var conds []*ast.Expression
		for {
			// "Is <op> expr" and "expr To expr" are accepted syntactically
			// and evaluated as equality against the leading expression, per
			// spec.md §9 ("Select Case with ranges").
			if p.isKeyword("Is") {
				p.advance()
				p.advanceComparisonOperator()
			}
			c, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if p.isKeyword("To") {
				p.advance()
				if _, err := p.parseExpr(); err != nil {
					return nil, err
				}
			}
			conds = append(conds, c)
			if p.isOp(",") {
				p.advance()
				continue
			}
			break
		}
		body, err := p.parseStatementsUntil([][]string{{"End", "Select"}, {"Case"}})
		if err != nil {
			return nil, err
		}
		stmt.Cases = append(stmt.Cases, ast.CaseClause{Conditions: conds, Body: body})
	}

	if !p.isBlockEnd([][]string{{"End", "Select"}}) {
		return nil, p.fail("expected 'End Select'")
	}
	p.advance()
	p.advance()
	return stmt, nil
}

func (p *Parser) advanceComparisonOperator() {
	if p.cur().Type == lexer.TokOperator {
		p.advance()
	}
}

func (p *Parser) parseFor() (*ast.Statement, error) {
	pos := p.advance().Pos // "For"
	if p.isKeyword("Each") {
		p.advance()
		name := p.advance().Text
		if !p.isKeyword("In") {
			return nil, p.fail("expected 'In' in For Each")
		}
		p.advance()
		coll, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipSeparators()
		body, err := p.parseStatementsUntil([][]string{{"Next"}})
		if err != nil {
			return nil, err
		}
		stmt := &ast.Statement{Kind: ast.StmtForEach, Pos: toPos(pos), ElementName: name, Collection: coll, Body: body}
		p.advance() // "Next"
		if p.cur().Type == lexer.TokIdent {
			stmt.NextName = p.advance().Text
		}
		return stmt, nil
	}

	counter := p.advance().Text
	if !p.isOp("=") {
		return nil, p.fail("expected '=' in For")
	}
	p.advance()
	start, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.isKeyword("To") {
		return nil, p.fail("expected 'To' in For")
	}
	p.advance()
	end, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var step *ast.Expression
	if p.isKeyword("Step") {
		p.advance()
		step, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	p.skipSeparators()
	body, err := p.parseStatementsUntil([][]string{{"Next"}})
	if err != nil {
		return nil, err
	}
	stmt := &ast.Statement{Kind: ast.StmtFor, Pos: toPos(pos), Counter: counter, Start: start, End: end, Step: step, Body: body}
	p.advance() // "Next"
	if p.cur().Type == lexer.TokIdent {
		stmt.NextName = p.advance().Text
	}
	return stmt, nil
}

func (p *Parser) parseDoLoop() (*ast.Statement, error) {
	pos := p.advance().Pos // "Do"
	stmt := &ast.Statement{Kind: ast.StmtDoLoop, Pos: toPos(pos)}

	if p.isKeyword("While") || p.isKeyword("Until") {
		stmt.CondPos = ast.DoCondPre
		if p.isKeyword("While") {
			stmt.CondKind = ast.DoCondWhile
		} else {
			stmt.CondKind = ast.DoCondUntil
		}
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.DoCond = cond
	}
	p.skipSeparators()
	body, err := p.parseStatementsUntil([][]string{{"Loop"}})
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	p.advance() // "Loop"

	if stmt.DoCond == nil && (p.isKeyword("While") || p.isKeyword("Until")) {
		stmt.CondPos = ast.DoCondPost
		if p.isKeyword("While") {
			stmt.CondKind = ast.DoCondWhile
		} else {
			stmt.CondKind = ast.DoCondUntil
		}
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.DoCond = cond
	}
	return stmt, nil
}

func (p *Parser) parseWhileWend() (*ast.Statement, error) {
	pos := p.advance().Pos // "While"
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSeparators()
	body, err := p.parseStatementsUntil([][]string{{"Wend"}})
	if err != nil {
		return nil, err
	}
	p.advance() // "Wend"
	return &ast.Statement{Kind: ast.StmtWhileWend, Pos: toPos(pos), DoCond: cond, Body: body}, nil
}

func (p *Parser) parseExit() (*ast.Statement, error) {
	pos := p.advance().Pos // "Exit"
	word := lowerWord(p.advance().Text)
	var kind ast.ExitKind
	switch word {
	case "sub":
		kind = ast.ExitSub
	case "function":
		kind = ast.ExitFunction
	case "property":
		kind = ast.ExitProperty
	case "for":
		kind = ast.ExitFor
	case "do":
		kind = ast.ExitDo
	default:
		return nil, p.fail("unknown Exit target: " + word)
	}
	return &ast.Statement{Kind: ast.StmtExit, Pos: toPos(pos), ExitKind: kind}, nil
}

func (p *Parser) parseOnError() (*ast.Statement, error) {
	pos := p.advance().Pos // "On"
	if !p.isKeyword("Error") {
		return nil, p.fail("expected 'Error' after On")
	}
	p.advance()
	stmt := &ast.Statement{Kind: ast.StmtOnError, Pos: toPos(pos)}
	switch {
	case p.isKeyword("Resume"):
		p.advance()
		if p.isKeyword("Next") {
			p.advance()
			stmt.ErrorMode = ast.OnErrorResumeNext
		} else {
			stmt.ErrorMode = ast.OnErrorResume
		}
	case p.isKeyword("GoTo"):
		p.advance()
		if p.cur().Type == lexer.TokNumber && p.cur().Text == "0" {
			p.advance()
			stmt.ErrorMode = ast.OnErrorGoto0
		} else {
			stmt.ErrorMode = ast.OnErrorGotoLabel
			stmt.Label = p.advance().Text
		}
	default:
		return nil, p.fail("expected 'Resume' or 'GoTo' after On Error")
	}
	return stmt, nil
}

func (p *Parser) parseWith() (*ast.Statement, error) {
	pos := p.advance().Pos // "With"
	obj, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSeparators()
	body, err := p.parseStatementsUntil([][]string{{"End", "With"}})
	if err != nil {
		return nil, err
	}
	if !p.isBlockEnd([][]string{{"End", "With"}}) {
		return nil, p.fail("expected 'End With'")
	}
	p.advance()
	p.advance()
	return &ast.Statement{Kind: ast.StmtWith, Pos: toPos(pos), WithObject: obj, Body: body}, nil
}

func (p *Parser) parseRaiseEvent() (*ast.Statement, error) {
	pos := p.advance().Pos // "RaiseEvent"
	name := p.advance().Text
	stmt := &ast.Statement{Kind: ast.StmtRaiseEvent, Pos: toPos(pos), EventName: name}
	if p.isOp("(") {
		p.advance()
		for !p.isOp(")") && p.cur().Type != lexer.TokEOF {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			stmt.EventArgs = append(stmt.EventArgs, arg)
			if p.isOp(",") {
				p.advance()
				continue
			}
			break
		}
		if p.isOp(")") {
			p.advance()
		}
	}
	return stmt, nil
}
