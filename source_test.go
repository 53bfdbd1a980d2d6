// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package vbaproj

import (
	"testing"

	"github.com/saferwall/vbaproj/internal/eval"
	"github.com/saferwall/vbaproj/internal/builtin"
)

func TestParseExpression(t *testing.T) {
	expr, err := ParseExpression("1 + 2 * 3")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	ctx := eval.NewContext(eval.Options{Builtins: builtin.Table()})
	got, err := EvaluateExpression(ctx, expr)
	if err != nil {
		t.Fatalf("EvaluateExpression: %v", err)
	}
	if got.Num != 7 {
		t.Errorf("1 + 2 * 3 = %v, want 7", got.Num)
	}
}

func TestParseSourceSkipsBodiesSoOneBadProcedureDoesNotFailTheModule(t *testing.T) {
	src := "Sub Good()\r\nx = 1\r\nEnd Sub\r\n\r\nFunction Bad() As Long\r\nx = (\r\nEnd Function\r\n"
	mod, err := ParseSource(src)
	if err != nil {
		t.Fatalf("ParseSource should skip procedure bodies rather than parse them, got error: %v", err)
	}
	if len(mod.Procedures) != 2 {
		t.Fatalf("expected 2 procedures, got %d", len(mod.Procedures))
	}
	if _, err := mod.Procedures[0].ParseBody(); err != nil {
		t.Fatalf("Good.ParseBody: %v", err)
	}
	if _, err := mod.Procedures[1].ParseBody(); err == nil {
		t.Fatal("expected Bad.ParseBody to fail in isolation")
	}
}

func TestRuntimeRegisterModuleSkipsOnlyTheMalformedProcedure(t *testing.T) {
	src := "Sub Good()\r\nx = 1\r\nEnd Sub\r\n\r\nFunction Bad() As Long\r\nx = (\r\nEnd Function\r\n"
	mod := mustParseModule(t, src)

	rt := NewRuntime(nil)
	rt.RegisterModule(mod)

	if _, err := rt.Call("Good", nil); err != nil {
		t.Fatalf("Call(Good): %v", err)
	}
	if _, err := rt.Call("Bad", nil); err == nil {
		t.Fatal("expected Bad to not be registered")
	}
}

func TestParseProcedureBodyAndExecute(t *testing.T) {
	stmts, err := ParseProcedureBody("Dim x As Long\r\nx = 5\r\nx = x + 1\r\n")
	if err != nil {
		t.Fatalf("ParseProcedureBody: %v", err)
	}
	ctx := eval.NewContext(eval.Options{Builtins: builtin.Table()})
	if err := ExecuteStatements(ctx, stmts); err != nil {
		t.Fatalf("ExecuteStatements: %v", err)
	}
	if got := ctx.Current.Get("x"); got.Num != 6 {
		t.Errorf("x = %v, want 6", got.Num)
	}
}
