// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package vbaproj

import (
	"errors"
	"testing"

	"github.com/saferwall/vbaproj/internal/parser"
	"github.com/saferwall/vbaproj/internal/value"
)

func mustParseModule(t *testing.T, src string) *parser.Module {
	t.Helper()
	mod, err := ParseSource(src)
	if err != nil {
		t.Fatalf("ParseSource: %v", err)
	}
	return mod
}

func TestRuntimeCallFunctionReturnValue(t *testing.T) {
	src := "Function Twice(x As Long) As Long\r\nTwice = x * 2\r\nEnd Function\r\n"
	mod := mustParseModule(t, src)

	rt := NewRuntime(nil)
	rt.RegisterModule(mod)

	got, err := rt.Call("Twice", []Value{value.Number(21)})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if value.ToNumber(got) != 42 {
		t.Errorf("Twice(21) = %v, want 42", value.ToNumber(got))
	}
}

func TestRuntimeCallDefaultParameter(t *testing.T) {
	src := "Function Greet(Optional name As String = \"world\") As String\r\nGreet = name\r\nEnd Function\r\n"
	mod := mustParseModule(t, src)

	rt := NewRuntime(nil)
	rt.RegisterModule(mod)

	got, err := rt.Call("Greet", nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if value.ToString(got) != "world" {
		t.Errorf("Greet() = %q, want %q", value.ToString(got), "world")
	}
}

func TestNewRuntimeWithOptionsAppliesCallDepth(t *testing.T) {
	src := "Function Twice(x As Long) As Long\r\nTwice = x * 2\r\nEnd Function\r\n"
	mod := mustParseModule(t, src)

	rt := NewRuntimeWithOptions(nil, RuntimeOptions{MaxCallDepth: 1, MaxLoopIterations: 10})
	rt.RegisterModule(mod)

	got, err := rt.Call("Twice", []Value{value.Number(21)})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if value.ToNumber(got) != 42 {
		t.Errorf("Twice(21) = %v, want 42", value.ToNumber(got))
	}
}

func TestRuntimeCallUnregisteredProcedure(t *testing.T) {
	rt := NewRuntime(nil)
	_, err := rt.Call("Missing", nil)
	if err == nil {
		t.Fatal("expected error for unregistered procedure")
	}
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("error is not *Error: %v", err)
	}
	if verr.Kind != KindRuntime {
		t.Errorf("Kind = %v, want KindRuntime", verr.Kind)
	}
}

func TestRuntimeCallSubHasNoReturnValue(t *testing.T) {
	src := "Sub DoNothing()\r\nEnd Sub\r\n"
	mod := mustParseModule(t, src)

	rt := NewRuntime(nil)
	rt.RegisterModule(mod)

	got, err := rt.Call("DoNothing", nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got.Kind != value.Empty.Kind {
		t.Errorf("DoNothing() = %v, want Empty", got)
	}
}
