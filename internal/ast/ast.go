// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package ast defines the tagged-union intermediate representation for
// source-language expressions and statements (spec.md §3, §4.F). Per
// spec.md §9 ("Design Notes"), this is a closed-world enum dispatched by a
// match-like primary rather than an open class hierarchy: every node type
// carries its own Kind and the evaluator switches on it.
package ast

// Position records where a node began in its source text, for diagnostics.
type Position struct {
	Line   int
	Column int
}

// BinaryOp is the closed set of binary operators named in spec.md §3.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpIntDiv // \
	OpMod
	OpPow // ^
	OpConcat // &
	OpEq
	OpNeq
	OpLt
	OpGt
	OpLe
	OpGe
	OpAnd
	OpOr
	OpXor
	OpEqv
	OpImp
	OpIs
	OpLike
)

// UnaryOp is negation or logical-not.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
)

// ExprKind tags an Expression's concrete shape.
type ExprKind int

const (
	ExprLiteral ExprKind = iota
	ExprIdent
	ExprMember
	ExprIndex
	ExprCall
	ExprBinary
	ExprUnary
	ExprNew
	ExprTypeTest
	ExprParen
)

// LiteralKind distinguishes the literal lexeme classes the lexer produces.
type LiteralKind int

const (
	LitNumber LiteralKind = iota
	LitString
	LitDate
	LitBoolean
	LitNothing
	LitEmpty
	LitNull
)

// Expression is the closed tagged union for the expression grammar
// (spec.md §3 "Expression IR").
type Expression struct {
	Kind ExprKind
	Pos  Position

	// ExprLiteral
	LitKind LiteralKind
	Text    string  // verbatim lexeme, for numeric/date literals
	Num     float64 // ExprLiteral/LitNumber
	Str     string  // ExprLiteral/LitString
	Bool    bool    // ExprLiteral/LitBoolean

	// ExprIdent
	Name string

	// ExprMember: Target.Member (Target nil means implicit With-top)
	Target       *Expression
	Member       string
	ImplicitWith bool

	// ExprIndex: Target(Index...)
	Index []*Expression

	// ExprCall: Target(Args...)
	Args []*Expression

	// ExprBinary
	BinOp BinaryOp
	Left  *Expression
	Right *Expression

	// ExprUnary
	UnOp    UnaryOp
	Operand *Expression

	// ExprNew
	ClassName string

	// ExprTypeTest: Operand Is TypeName (TypeOf ... Is ...)
	TypeName string

	// ExprParen
	Inner *Expression
}

// StmtKind tags a Statement's concrete shape.
type StmtKind int

const (
	StmtAssign StmtKind = iota
	StmtCall
	StmtIf
	StmtSelectCase
	StmtFor
	StmtForEach
	StmtDoLoop
	StmtWhileWend
	StmtDim
	StmtSet
	StmtExit
	StmtOnError
	StmtWith
	StmtRaiseEvent
)

// ExitKind names the control-flow exit a StmtExit statement requests.
type ExitKind int

const (
	ExitSub ExitKind = iota
	ExitFunction
	ExitProperty
	ExitFor
	ExitDo
)

// OnErrorMode is the handler-selection mode of an On Error statement.
type OnErrorMode int

const (
	OnErrorResume OnErrorMode = iota
	OnErrorResumeNext
	OnErrorGoto0
	OnErrorGotoLabel
)

// ElseIf is one ElseIf arm of an If statement.
type ElseIf struct {
	Cond *Expression
	Body []*Statement
}

// CaseClause is one Case arm of a Select Case statement. Conditions may
// include range/Is-comparison forms syntactically; per spec.md §9 they are
// evaluated as equality against Test.
type CaseClause struct {
	Conditions []*Expression
	Body       []*Statement
}

// DoCondKind distinguishes While/Until/none for a Do...Loop.
type DoCondKind int

const (
	DoCondNone DoCondKind = iota
	DoCondWhile
	DoCondUntil
)

// DoCondPos distinguishes a pre- from a post-conditioned Do...Loop.
type DoCondPos int

const (
	DoCondPre DoCondPos = iota
	DoCondPost
)

// VarDecl is one name in a Dim, Static or Const declaration list, with its
// optional type name, array flag and (for Const) initializer.
type VarDecl struct {
	Name     string
	TypeName string
	IsArray  bool
	Init     *Expression // non-nil for Const declarations
}

// Statement is the closed tagged union for the statement grammar
// (spec.md §3 "Statement IR").
type Statement struct {
	Kind StmtKind
	Pos  Position

	// StmtAssign / StmtSet: LHS = RHS
	LHS *Expression
	RHS *Expression

	// StmtCall
	Call *Expression

	// StmtIf
	Cond     *Expression
	Then     []*Statement
	ElseIfs  []ElseIf
	Else     []*Statement

	// StmtSelectCase
	Test  *Expression
	Cases []CaseClause

	// StmtFor
	Counter  string
	Start    *Expression
	End      *Expression
	Step     *Expression
	Body     []*Statement
	NextName string

	// StmtForEach
	ElementName string
	Collection  *Expression

	// StmtDoLoop / StmtWhileWend
	DoCond    *Expression
	CondKind  DoCondKind
	CondPos   DoCondPos

	// StmtDim
	Decls []VarDecl

	// StmtExit
	ExitKind ExitKind

	// StmtOnError
	ErrorMode OnErrorMode
	Label     string

	// StmtWith
	WithObject *Expression

	// StmtRaiseEvent
	EventName string
	EventArgs []*Expression
}
