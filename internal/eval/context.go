// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package eval

import (
	"math/rand"

	"github.com/saferwall/vbaproj/internal/scope"
	"github.com/saferwall/vbaproj/internal/value"
)

// BuiltinFunc is the shape of an entry in the builtin name→function table
// (spec.md §4.J). It receives the owning Context (for host/RNG access)
// plus the slice of already-evaluated arguments.
type BuiltinFunc func(c *Context, args []value.Value) (value.Value, error)

// Options configures a Context's resource bounds, mirroring the
// zero-value-friendly Options pattern used throughout this module.
type Options struct {
	MaxCallDepth     int
	MaxLoopIterations int
	Host             HostAPI
	Builtins         map[string]BuiltinFunc
	Rand             *rand.Rand
}

const defaultMaxLoopIterations = 10_000_000

func (o *Options) setDefaults() {
	if o.MaxCallDepth <= 0 {
		o.MaxCallDepth = scope.DefaultMaxDepth
	}
	if o.MaxLoopIterations <= 0 {
		o.MaxLoopIterations = defaultMaxLoopIterations
	}
	if o.Builtins == nil {
		o.Builtins = map[string]BuiltinFunc{}
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(1))
	}
}

// Context is the single-threaded, cooperative execution context described
// by spec.md §5: it owns the scope chain, With stack, exit flags, and
// call stack for one logical thread of evaluation.
type Context struct {
	Module  *scope.Scope
	Current *scope.Scope
	With    scope.WithStack
	Exit    scope.ExitFlags
	Calls   *scope.CallStack
	Host    HostAPI
	Builtins map[string]BuiltinFunc
	Rand     *rand.Rand

	MaxLoopIterations int

	// ResumeNext mirrors "On Error Resume Next": while true, runtime
	// errors raised by statement execution are swallowed and execution
	// continues with the next statement (spec.md §4.I).
	ResumeNext bool

	// Warnings accumulates non-fatal diagnostics (e.g. On Error Goto
	// label degrading to Goto 0, per spec.md §9 "Open questions").
	Warnings []string
}

// NewContext creates a fresh module-level Context.
func NewContext(opts Options) *Context {
	opts.setDefaults()
	mod := scope.New(scope.KindModule)
	return &Context{
		Module:            mod,
		Current:           mod,
		Calls:             scope.NewCallStack(opts.MaxCallDepth),
		Host:              opts.Host,
		Builtins:          opts.Builtins,
		Rand:              opts.Rand,
		MaxLoopIterations: opts.MaxLoopIterations,
	}
}

// EnterProcedure pushes a new procedure-level scope chained off the
// module scope (source-language procedures close over module-level
// variables, not their caller's locals) and returns the scope to restore
// via Leave.
func (c *Context) EnterProcedure() (restore *scope.Scope) {
	restore = c.Current
	c.Current = c.Module.Push(scope.KindProcedure)
	return restore
}

// Leave restores a scope saved by EnterProcedure.
func (c *Context) Leave(restore *scope.Scope) { c.Current = restore }

func (c *Context) warn(msg string) { c.Warnings = append(c.Warnings, msg) }
