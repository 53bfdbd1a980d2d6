// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package vbaproj

import (
	"github.com/saferwall/vbaproj/internal/ast"
	"github.com/saferwall/vbaproj/internal/eval"
	"github.com/saferwall/vbaproj/internal/parser"
	"github.com/saferwall/vbaproj/internal/value"
)

// Statement and Expression re-export the source-language IR (spec.md §3)
// so a caller never has to import an internal package to hold onto a parse
// result.
type Statement = ast.Statement
type Expression = ast.Expression

// Value is the dynamic runtime value type (spec.md §3).
type Value = value.Value

// Context is the evaluator's execution context: scope chain, With stack,
// exit flags, call stack, builtin table, and host binding (spec.md §5).
type Context = eval.Context

// ParseSource tokenizes and parses a whole module's source text into its
// top-level declarations and the signatures of its procedures (spec.md §6
// "parseSource"). Unlike ParseProject's ingest-time regex scan, this
// performs a full recursive-descent parse of the module's top level — but,
// per spec.md §4.F, procedure bodies are only skipped here, not parsed; a
// malformed statement inside one procedure does not fail this call. Parse an
// individual procedure's statements with its ParseBody method, or with
// ParseProcedureBody directly against its source text.
func ParseSource(text string) (*parser.Module, error) {
	return parser.ParseModule(text)
}

// ParseExpression parses a single expression (spec.md §6
// "parseExpression").
func ParseExpression(text string) (*Expression, error) {
	return parser.ParseExpression(text)
}

// ParseProcedureBody parses a statement list, as would appear inside one
// procedure (spec.md §6 "parseProcedureBody").
func ParseProcedureBody(text string) ([]*Statement, error) {
	return parser.ParseProcedureBody(text)
}

// EvaluateExpression tree-walks a parsed expression against ctx (spec.md §6
// "evaluateExpression").
func EvaluateExpression(ctx *Context, expr *Expression) (Value, error) {
	return eval.EvalExpression(ctx, expr)
}

// ExecuteStatements tree-walks a parsed statement list against ctx
// (spec.md §6 "executeStatements").
func ExecuteStatements(ctx *Context, stmts []*Statement) error {
	return eval.ExecStatements(ctx, stmts)
}
