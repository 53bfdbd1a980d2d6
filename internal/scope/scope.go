// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package scope implements the evaluator's lexical-with-dynamic-fallback
// scope chain, With stack, exit-flag record, and bounded call stack
// (spec.md §4.H "Scope / call stack").
package scope

import (
	"errors"
	"strings"

	"github.com/saferwall/vbaproj/internal/value"
)

// ErrObjectRequired is raised when a With-relative member access is made
// with an empty With stack.
var ErrObjectRequired = errors.New("object required")

// ErrStackOverflow is raised when the call stack exceeds its configured bound.
var ErrStackOverflow = errors.New("stack overflow")

// Kind tags what a Scope represents, for diagnostics.
type Kind int

// Scope kinds.
const (
	KindModule Kind = iota
	KindProcedure
	KindBlock
)

// Scope is one open-addressed name→value frame in the chain. Per spec.md
// §9, names are pre-normalized to lowercase at insertion so lookups never
// case-fold per character.
type Scope struct {
	kind   Kind
	vars   map[string]value.Value
	parent *Scope
}

// New creates a root scope with no parent.
func New(kind Kind) *Scope {
	return &Scope{kind: kind, vars: make(map[string]value.Value)}
}

// Push creates a child scope of s.
func (s *Scope) Push(kind Kind) *Scope {
	return &Scope{kind: kind, vars: make(map[string]value.Value), parent: s}
}

func normalize(name string) string { return strings.ToLower(name) }

// Get reads a name, returning Empty (never an error) when undeclared
// anywhere in the chain (spec.md §4.H).
func (s *Scope) Get(name string) value.Value {
	v, _ := s.Lookup(name)
	return v
}

// Lookup reads a name, reporting whether it was declared anywhere in the
// chain. The evaluator uses this to distinguish "declared as Empty" from
// "undeclared" when applying spec.md §4.I's identifier-lookup order.
func (s *Scope) Lookup(name string) (value.Value, bool) {
	key := normalize(name)
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[key]; ok {
			return v, true
		}
	}
	return value.Empty, false
}

// Declare binds name to Empty in the current frame, used for Dim; a name
// the current frame already holds keeps its value.
func (s *Scope) Declare(name string) {
	key := normalize(name)
	if _, ok := s.vars[key]; !ok {
		s.vars[key] = value.Empty
	}
}

// Set implements spec.md §4.H's assignment rule: update the current
// frame if it already holds the name; else update the nearest ancestor
// that does; else implicitly declare it in the current frame.
func (s *Scope) Set(name string, v value.Value) {
	key := normalize(name)
	if _, ok := s.vars[key]; ok {
		s.vars[key] = v
		return
	}
	for cur := s.parent; cur != nil; cur = cur.parent {
		if _, ok := cur.vars[key]; ok {
			cur.vars[key] = v
			return
		}
	}
	s.vars[key] = v
}

// WithStack is a separate stack of objects pushed during With blocks.
type WithStack struct {
	items []value.Value
}

// Push pushes a With target.
func (w *WithStack) Push(v value.Value) { w.items = append(w.items, v) }

// Pop removes the top With target; on an empty stack it does nothing.
func (w *WithStack) Pop() {
	if len(w.items) > 0 {
		w.items = w.items[:len(w.items)-1]
	}
}

// Top returns the current With target, or ErrObjectRequired if the stack
// is empty.
func (w *WithStack) Top() (value.Value, error) {
	if len(w.items) == 0 {
		return value.Value{}, ErrObjectRequired
	}
	return w.items[len(w.items)-1], nil
}

// Len reports the current With-stack depth.
func (w *WithStack) Len() int { return len(w.items) }

// ExitFlags is the small exit-control record consulted at block
// boundaries (spec.md §4.H).
type ExitFlags struct {
	Sub      bool
	Function bool
	Property bool
	For      bool
	Do       bool
}

// ShouldExitProcedure reports whether the current procedure should stop
// executing statements.
func (f *ExitFlags) ShouldExitProcedure() bool {
	return f.Sub || f.Function || f.Property
}

// ShouldExitFor reports whether a For loop body should stop iterating:
// either its own exit flag, or a procedure-level exit propagating out.
func (f *ExitFlags) ShouldExitFor() bool {
	return f.For || f.ShouldExitProcedure()
}

// ShouldExitDo reports whether a Do/While loop body should stop iterating.
func (f *ExitFlags) ShouldExitDo() bool {
	return f.Do || f.ShouldExitProcedure()
}

// ClearFor clears the For-loop exit flag; the loop's own responsibility
// on exit, per spec.md §4.H.
func (f *ExitFlags) ClearFor() { f.For = false }

// ClearDo clears the Do/While exit flag.
func (f *ExitFlags) ClearDo() { f.Do = false }

// ClearProcedure clears all procedure-level exit flags at the call
// boundary so they never leak into the caller (spec.md §5 "Ordering").
func (f *ExitFlags) ClearProcedure() {
	f.Sub = false
	f.Function = false
	f.Property = false
}

// Frame is one call-stack entry.
type Frame struct {
	Module    string
	Procedure string
	Line      int
}

// CallStack is a bounded stack of call frames.
type CallStack struct {
	frames []Frame
	max    int
}

// DefaultMaxDepth is the call-stack bound used when Options doesn't
// override it.
const DefaultMaxDepth = 512

// NewCallStack creates a CallStack bounded at max frames (DefaultMaxDepth
// if max <= 0).
func NewCallStack(max int) *CallStack {
	if max <= 0 {
		max = DefaultMaxDepth
	}
	return &CallStack{max: max}
}

// Push adds a frame, failing with ErrStackOverflow past the configured bound.
func (c *CallStack) Push(f Frame) error {
	if len(c.frames) >= c.max {
		return ErrStackOverflow
	}
	c.frames = append(c.frames, f)
	return nil
}

// Pop removes the top frame.
func (c *CallStack) Pop() {
	if len(c.frames) > 0 {
		c.frames = c.frames[:len(c.frames)-1]
	}
}

// Depth reports the current call-stack depth.
func (c *CallStack) Depth() int { return len(c.frames) }

// Top returns the current frame and true, or the zero Frame and false if
// the stack is empty.
func (c *CallStack) Top() (Frame, bool) {
	if len(c.frames) == 0 {
		return Frame{}, false
	}
	return c.frames[len(c.frames)-1], true
}
