// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package eval_test

import (
	"testing"

	"github.com/saferwall/vbaproj/internal/builtin"
	"github.com/saferwall/vbaproj/internal/eval"
	"github.com/saferwall/vbaproj/internal/parser"
	"github.com/saferwall/vbaproj/internal/value"
)

func newTestContext(host eval.HostAPI) *eval.Context {
	return eval.NewContext(eval.Options{Host: host, Builtins: builtin.Table()})
}

func run(t *testing.T, src string) *eval.Context {
	t.Helper()
	stmts, err := parser.ParseProcedureBody(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	c := newTestContext(nil)
	if err := eval.ExecStatements(c, stmts); err != nil {
		t.Fatalf("exec error: %v", err)
	}
	return c
}

func evalExpr(t *testing.T, src string) value.Value {
	t.Helper()
	expr, err := parser.ParseExpression(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	c := newTestContext(nil)
	v, err := eval.EvalExpression(c, expr)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	return v
}

func TestForLoopSum(t *testing.T) {
	c := run(t, "sum = 0 : For i = 1 To 5 : sum = sum + i : Next")
	if got := value.ToNumber(c.Current.Get("sum")); got != 15 {
		t.Fatalf("expected sum == 15, got %v", got)
	}
}

func TestStringConcatAndCoercion(t *testing.T) {
	if got := value.ToString(evalExpr(t, `"Hello" & " " & "World"`)); got != "Hello World" {
		t.Fatalf("got %q", got)
	}
	if got := value.ToNumber(evalExpr(t, `1 + "2"`)); got != 3 {
		t.Fatalf("got %v", got)
	}
}

func TestSelectCaseDispatch(t *testing.T) {
	c := run(t, `x = 2 : Select Case x : Case 1 : r = "one" : Case 2 : r = "two" : Case Else : r = "other" : End Select`)
	if got := value.ToString(c.Current.Get("r")); got != "two" {
		t.Fatalf("expected two, got %q", got)
	}
}

func TestExitForStopsLoop(t *testing.T) {
	c := run(t, `count = 0 : For i = 1 To 10 : count = count + 1 : If i = 3 Then Exit For : Next`)
	if got := value.ToNumber(c.Current.Get("count")); got != 3 {
		t.Fatalf("expected count == 3, got %v", got)
	}
}

func TestZeroStepForFails(t *testing.T) {
	stmts, err := parser.ParseProcedureBody("For i = 1 To 5 Step 0 : Next")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	c := newTestContext(nil)
	if err := eval.ExecStatements(c, stmts); err == nil {
		t.Fatalf("expected error for zero step")
	}
}

func TestWithImplicitMember(t *testing.T) {
	host := &fakeHost{props: map[string]value.Value{}}
	c := newTestContext(host)
	stmts, err := parser.ParseProcedureBody("With Obj\n  .Value = 5\nEnd With")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	host.objects = map[string]value.Value{"Obj": value.HostObject("handle", "Thing")}
	if err := eval.ExecStatements(c, stmts); err != nil {
		t.Fatalf("exec error: %v", err)
	}
	if host.props["Value"].Num != 5 {
		t.Fatalf("expected Value == 5, got %+v", host.props["Value"])
	}
}

func TestLikeOperator(t *testing.T) {
	if !eval.Like("hello.txt", "*.txt") {
		t.Fatalf("expected match")
	}
	if eval.Like("hello.doc", "*.txt") {
		t.Fatalf("expected no match")
	}
	if !eval.Like("a1", "a#") {
		t.Fatalf("expected digit-class match")
	}
}

func TestOnErrorResumeNext(t *testing.T) {
	c := run(t, "On Error Resume Next\nx = 1 \\ 0\ny = 5")
	if got := value.ToNumber(c.Current.Get("y")); got != 5 {
		t.Fatalf("expected execution to continue past the suppressed error, got y=%v", got)
	}
}

// fakeHost is a minimal HostAPI for exercising With/member statements.
type fakeHost struct {
	objects map[string]value.Value
	props   map[string]value.Value
}

func (h *fakeHost) GetGlobalObject(name string) (value.Value, bool) {
	v, ok := h.objects[name]
	return v, ok
}

func (h *fakeHost) GetProperty(obj value.Value, name string) (value.Value, error) {
	return h.props[name], nil
}

func (h *fakeHost) SetProperty(obj value.Value, name string, v value.Value) error {
	h.props[name] = v
	return nil
}

func (h *fakeHost) CallMethod(obj value.Value, name string, args []value.Value) (value.Value, error) {
	return value.Empty, nil
}
