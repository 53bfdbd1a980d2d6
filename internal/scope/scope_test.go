// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package scope

import (
	"testing"

	"github.com/saferwall/vbaproj/internal/value"
)

func TestGetUndeclaredReturnsEmpty(t *testing.T) {
	s := New(KindModule)
	v := s.Get("x")
	if v.Kind != value.KindEmpty {
		t.Fatalf("expected Empty, got %+v", v)
	}
}

func TestSetUpdatesCurrentFrameIfPresent(t *testing.T) {
	s := New(KindModule)
	s.Declare("x")
	s.Set("x", value.Number(5))
	if s.Get("x").Num != 5 {
		t.Fatalf("expected 5, got %+v", s.Get("x"))
	}
}

func TestSetUpdatesAncestorWhenDeclaredThere(t *testing.T) {
	parent := New(KindModule)
	parent.Declare("x")
	child := parent.Push(KindProcedure)
	child.Set("x", value.Number(7))
	if parent.Get("x").Num != 7 {
		t.Fatalf("expected parent's x updated to 7, got %+v", parent.Get("x"))
	}
	if _, ok := child.vars["x"]; ok {
		t.Fatalf("child should not have its own binding for x")
	}
}

func TestSetImplicitlyDeclaresInCurrentFrame(t *testing.T) {
	parent := New(KindModule)
	child := parent.Push(KindProcedure)
	child.Set("y", value.Number(3))
	if _, ok := parent.vars["y"]; ok {
		t.Fatalf("parent should not receive an implicit declaration")
	}
	if child.Get("y").Num != 3 {
		t.Fatalf("expected child's y == 3")
	}
}

func TestCaseInsensitiveNames(t *testing.T) {
	s := New(KindModule)
	s.Set("Total", value.Number(1))
	if s.Get("total").Num != 1 || s.Get("TOTAL").Num != 1 {
		t.Fatalf("expected case-insensitive lookup to succeed")
	}
}

func TestWithStackEmptyFails(t *testing.T) {
	var w WithStack
	if _, err := w.Top(); err != ErrObjectRequired {
		t.Fatalf("expected ErrObjectRequired, got %v", err)
	}
}

func TestWithStackPushPop(t *testing.T) {
	var w WithStack
	w.Push(value.String("a"))
	w.Push(value.String("b"))
	top, err := w.Top()
	if err != nil || top.Str != "b" {
		t.Fatalf("expected top b, got %+v, %v", top, err)
	}
	w.Pop()
	top, err = w.Top()
	if err != nil || top.Str != "a" {
		t.Fatalf("expected top a after pop, got %+v, %v", top, err)
	}
}

func TestExitFlagsProcedureClearedAtBoundary(t *testing.T) {
	var f ExitFlags
	f.For = true
	f.Sub = true
	if !f.ShouldExitFor() {
		t.Fatalf("expected ShouldExitFor true")
	}
	f.ClearProcedure()
	if f.Sub || f.ShouldExitProcedure() {
		t.Fatalf("expected procedure flags cleared")
	}
}

func TestCallStackOverflow(t *testing.T) {
	cs := NewCallStack(2)
	if err := cs.Push(Frame{Procedure: "A"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cs.Push(Frame{Procedure: "B"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cs.Push(Frame{Procedure: "C"}); err != ErrStackOverflow {
		t.Fatalf("expected ErrStackOverflow, got %v", err)
	}
}
