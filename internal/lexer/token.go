// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package lexer tokenizes source-language text into a lazy sequence of
// tokens, grounded on the Type/Token/Position trio and LookupIdent keyword
// table shown in the tsqlparser example pack's token.go, and the
// rune-at-a-time scanning-loop structure shown in the saashard/vippsas
// scanner examples.
package lexer

// TokenType classifies a lexeme.
type TokenType int

// Token classes named in spec.md §4.F.
const (
	TokIdent TokenType = iota
	TokNumber
	TokString
	TokDate
	TokKeyword
	TokOperator
	TokPunct
	TokNewline
	TokEOF
	TokIllegal
)

func (t TokenType) String() string {
	switch t {
	case TokIdent:
		return "IDENT"
	case TokNumber:
		return "NUMBER"
	case TokString:
		return "STRING"
	case TokDate:
		return "DATE"
	case TokKeyword:
		return "KEYWORD"
	case TokOperator:
		return "OPERATOR"
	case TokPunct:
		return "PUNCT"
	case TokNewline:
		return "NEWLINE"
	case TokEOF:
		return "EOF"
	default:
		return "ILLEGAL"
	}
}

// Position is a 1-based line/column pair.
type Position struct {
	Line   int
	Column int
}

// Token is one lexeme: its class, literal text, and source position.
type Token struct {
	Type TokenType
	Text string
	Pos  Position
}

// keywords is the fixed, case-insensitive reserved-word set. Populated once
// at package init and never mutated, per spec.md §9 "Global registries".
var keywords map[string]bool

func init() {
	keywords = make(map[string]bool, len(keywordList))
	for _, k := range keywordList {
		keywords[lower(k)] = true
	}
}

var keywordList = []string{
	"And", "As", "Base", "Begin", "Boolean", "ByRef", "ByVal", "Byte", "Call",
	"Case", "Class", "Const", "Currency", "Date", "Dim", "Do", "Double",
	"Each", "Else", "ElseIf", "End", "Enum", "Eqv", "Error", "Event", "Exit",
	"Explicit", "False", "For", "Function", "Get", "GoSub", "GoTo", "If",
	"Imp", "Implements", "In", "Integer", "Is", "LBound", "Let", "Like",
	"Long", "Loop", "Me", "Mod", "New", "Next", "Not", "Nothing", "Null",
	"Object", "On", "Optional", "Option", "Or", "ParamArray", "Preserve",
	"Private", "Property", "Public", "RaiseEvent", "ReDim", "Rem", "Resume",
	"Select", "Set", "Single", "Static", "Step", "String", "Sub", "Then",
	"To", "True", "Type", "TypeOf", "UBound", "Until", "Variant", "Wend",
	"While", "With", "WithEvents", "Xor",
}

// IsKeyword reports whether ident (case-insensitively) is reserved.
func IsKeyword(ident string) bool {
	return keywords[lower(ident)]
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
