// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package parser

import (
	"github.com/saferwall/vbaproj/internal/ast"
	"github.com/saferwall/vbaproj/internal/lexer"
)

// ProcKind distinguishes the five procedure shapes a module can declare.
type ProcKind int

// Procedure kinds named in spec.md §4.F "Procedure declarations".
const (
	ProcSub ProcKind = iota
	ProcFunction
	ProcPropertyGet
	ProcPropertyLet
	ProcPropertySet
)

// Param is one formal parameter of a procedure declaration.
type Param struct {
	Name       string
	TypeName   string
	ByVal      bool
	Optional   bool
	IsParamArray bool
	Default    *ast.Expression
}

// Procedure is one parsed Sub/Function/Property signature. Its body is not
// parsed at module-scan time (spec.md §4.F: module-level parsing only skips
// procedure contents via a balanced depth counter); call ParseBody to parse
// it on demand.
type Procedure struct {
	Name      string
	Kind      ProcKind
	Params    []Param
	IsPrivate bool
	TypeName  string // Function/Property Get return type, if declared

	bodyToks []lexer.Token
}

// ParseBody parses this procedure's statement list on demand, the lazy half
// of spec.md §4.F's two-entry-point design. A malformed body only fails this
// call, not the ParseModule scan that discovered the procedure.
func (proc *Procedure) ParseBody() ([]*ast.Statement, error) {
	p := &Parser{toks: proc.bodyToks}
	return p.parseStatementsUntil(nil)
}

// Module is the parsed contents of one source-code module stream:
// top-level Dim/Const declarations plus every procedure it declares.
type Module struct {
	Declarations []*ast.Statement
	Procedures   []*Procedure
}

// ParseModule parses an entire module's source text (spec.md §4.F
// "Module-level parse"). Attribute/Option directives are skipped; Dim/Const
// found outside any procedure become module-level declarations; Sub/
// Function/Property blocks are parsed into Procedure entries.
func ParseModule(src string) (*Module, error) {
	p := New(src)
	mod := &Module{}
	for {
		p.skipSeparators()
		t := p.cur()
		if t.Type == lexer.TokEOF {
			return mod, nil
		}
		if t.Type == lexer.TokKeyword {
			switch lowerWord(t.Text) {
			case "attribute", "option":
				p.skipToEOL()
				continue
			case "dim", "const":
				if lowerWord(t.Text) == "const" {
					decl, err := p.parseConstDecl()
					if err != nil {
						return nil, err
					}
					mod.Declarations = append(mod.Declarations, decl)
					continue
				}
				decl, err := p.parseDim()
				if err != nil {
					return nil, err
				}
				mod.Declarations = append(mod.Declarations, decl)
				continue
			case "private", "public", "sub", "function", "property", "friend":
				proc, err := p.parseProcedure()
				if err != nil {
					return nil, err
				}
				if proc != nil {
					mod.Procedures = append(mod.Procedures, proc)
				}
				continue
			}
		}
		// Unrecognized module-level construct (Enum, Type, Declare, Event,
		// Implements...): skip to end of logical line and continue,
		// matching the tolerant-parse posture spec.md §9 asks for.
		p.skipToEOL()
	}
}

func (p *Parser) parseConstDecl() (*ast.Statement, error) {
	pos := p.advance().Pos // "Const"
	var decls []ast.VarDecl
	for {
		if p.cur().Type != lexer.TokIdent && p.cur().Type != lexer.TokKeyword {
			return nil, p.fail("expected constant name")
		}
		name := p.advance().Text
		decl := ast.VarDecl{Name: name}
		if p.isKeyword("As") {
			p.advance()
			decl.TypeName = p.advance().Text
		}
		if !p.isOp("=") {
			return nil, p.fail("expected '=' in Const")
		}
		p.advance()
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		decl.Init = val
		decls = append(decls, decl)
		if p.isOp(",") {
			p.advance()
			continue
		}
		break
	}
	return &ast.Statement{Kind: ast.StmtDim, Pos: toPos(pos), Decls: decls}, nil
}

// parseProcedure parses one Sub/Function/Property Get|Let|Set block,
// including its End terminator, and returns nil, nil if the leading
// modifiers turn out not to introduce a procedure (defensive fallback).
func (p *Parser) parseProcedure() (*Procedure, error) {
	proc := &Procedure{}
	for p.cur().Type == lexer.TokKeyword {
		switch lowerWord(p.cur().Text) {
		case "private":
			proc.IsPrivate = true
			p.advance()
			continue
		case "public", "friend":
			p.advance()
			continue
		case "static":
			p.advance()
			continue
		}
		break
	}
	if p.cur().Type != lexer.TokKeyword {
		return nil, nil
	}
	switch lowerWord(p.cur().Text) {
	case "sub", "function", "property":
	default:
		return nil, nil
	}
	kindWord := lowerWord(p.advance().Text)
	var endPhrase [][]string
	switch kindWord {
	case "sub":
		proc.Kind = ProcSub
		endPhrase = [][]string{{"End", "Sub"}}
	case "function":
		proc.Kind = ProcFunction
		endPhrase = [][]string{{"End", "Function"}}
	case "property":
		switch lowerWord(p.cur().Text) {
		case "get":
			proc.Kind = ProcPropertyGet
		case "let":
			proc.Kind = ProcPropertyLet
		case "set":
			proc.Kind = ProcPropertySet
		}
		p.advance() // Get/Let/Set
		endPhrase = [][]string{{"End", "Property"}}
	}

	if p.cur().Type != lexer.TokIdent && p.cur().Type != lexer.TokKeyword {
		return nil, p.fail("expected procedure name")
	}
	proc.Name = p.advance().Text

	if p.isOp("(") {
		p.advance()
		for !p.isOp(")") && p.cur().Type != lexer.TokEOF {
			param, err := p.parseParam()
			if err != nil {
				return nil, err
			}
			proc.Params = append(proc.Params, param)
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

	if p.isKeyword("As") {
		p.advance()
		if p.cur().Type == lexer.TokIdent || p.cur().Type == lexer.TokKeyword {
			proc.TypeName = p.advance().Text
		}
	}

	p.skipSeparators()
	proc.bodyToks = p.skipProcedureBody(endPhrase)
	if p.isBlockEnd(endPhrase) {
		p.advance()
		p.advance()
	}
	return proc, nil
}

// isBodyOpenKeyword reports whether word is one of the three procedure-
// introducing keywords the depth counter in skipProcedureBody tracks.
func isBodyOpenKeyword(word string) bool {
	switch word {
	case "sub", "function", "property":
		return true
	}
	return false
}

// skipProcedureBody scans forward from the current position to the matching
// End Sub/Function/Property for endPhrase, without parsing statements,
// tracking nested Sub/Function/Property ... End Sub/Function/Property pairs
// with a balanced depth counter so an unexpected inner declaration doesn't
// stop the scan early (spec.md §4.F "module-level parsing ... skipped by a
// balanced depth counter"). It returns the token slice spanning the body
// (not including the terminating End phrase), for later on-demand parsing
// via Procedure.ParseBody.
func (p *Parser) skipProcedureBody(endPhrase [][]string) []lexer.Token {
	start := p.pos
	depth := 0
	for p.cur().Type != lexer.TokEOF {
		if depth == 0 && p.isBlockEnd(endPhrase) {
			break
		}
		if p.cur().Type == lexer.TokKeyword {
			switch lowerWord(p.cur().Text) {
			case "sub", "function", "property":
				depth++
			case "end", "exit":
				if next := p.at(1); next.Type == lexer.TokKeyword && isBodyOpenKeyword(lowerWord(next.Text)) {
					if lowerWord(p.cur().Text) == "end" && depth > 0 {
						depth--
					}
					p.advance() // the loop's advance below steps over the Sub/Function/Property word
				}
			}
		}
		p.advance()
	}
	return p.toks[start:p.pos]
}

func (p *Parser) parseParam() (Param, error) {
	var param Param
	for p.cur().Type == lexer.TokKeyword {
		switch lowerWord(p.cur().Text) {
		case "optional":
			param.Optional = true
			p.advance()
			continue
		case "byval":
			param.ByVal = true
			p.advance()
			continue
		case "byref":
			p.advance()
			continue
		case "paramarray":
			param.IsParamArray = true
			p.advance()
			continue
		}
		break
	}
	if p.cur().Type != lexer.TokIdent && p.cur().Type != lexer.TokKeyword {
		return param, p.fail("expected parameter name")
	}
	param.Name = p.advance().Text
	if p.isOp("(") {
		p.advance()
		if p.isOp(")") {
			p.advance()
		}
	}
	if p.isKeyword("As") {
		p.advance()
		if p.cur().Type == lexer.TokIdent || p.cur().Type == lexer.TokKeyword {
			param.TypeName = p.advance().Text
		}
	}
	if p.isOp("=") {
		p.advance()
		val, err := p.parseExpr()
		if err != nil {
			return param, err
		}
		param.Default = val
	}
	return param, nil
}
