// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package vbaproj

import (
	"errors"
	"fmt"

	"github.com/saferwall/vbaproj/internal/ast"
	"github.com/saferwall/vbaproj/internal/builtin"
	"github.com/saferwall/vbaproj/internal/eval"
	"github.com/saferwall/vbaproj/internal/parser"
	"github.com/saferwall/vbaproj/internal/scope"
	"github.com/saferwall/vbaproj/internal/value"
)

// registration is one procedure the runtime knows how to call: its
// parameter list and parsed body (spec.md §6: "a runtime handle that
// registers named procedures and calls them").
type registration struct {
	kind   parser.ProcKind
	params []parser.Param
	body   []*ast.Statement
}

// Runtime binds a HostAPI to the evaluator and lets a caller register
// procedures by name and invoke them by name, without managing a Context's
// scope/call-stack lifecycle directly.
type Runtime struct {
	opts  eval.Options
	procs map[string]registration
}

// RuntimeOptions bounds a Runtime's call recursion and loop iterations
// (spec.md §9 "Resource limits"). Zero values fall back to the evaluator's
// defaults (scope.DefaultMaxDepth call frames, 10,000,000 loop iterations).
type RuntimeOptions struct {
	MaxCallDepth      int
	MaxLoopIterations int
}

// NewRuntime creates a Runtime bound to host with default resource limits.
// A nil host is valid: any identifier or call that would require host
// resolution then fails with ErrProcedureNotDefined / falls back to Empty,
// matching spec.md §4.I's identifier lookup order.
func NewRuntime(host HostAPI) *Runtime {
	return NewRuntimeWithOptions(host, RuntimeOptions{})
}

// NewRuntimeWithOptions creates a Runtime bound to host with explicit
// recursion/loop bounds.
func NewRuntimeWithOptions(host HostAPI, opts RuntimeOptions) *Runtime {
	return &Runtime{
		opts: eval.Options{
			Host:              host,
			Builtins:          builtin.Table(),
			MaxCallDepth:      opts.MaxCallDepth,
			MaxLoopIterations: opts.MaxLoopIterations,
		},
		procs: map[string]registration{},
	}
}

// RegisterModule registers mod's procedures into the runtime's registry.
// Each procedure's body is parsed here, on demand, via its ParseBody method
// (spec.md §4.F) — a malformed body only drops that one procedure from the
// registry rather than failing registration for the whole module.
func (rt *Runtime) RegisterModule(mod *parser.Module) {
	for _, p := range mod.Procedures {
		body, err := p.ParseBody()
		if err != nil {
			continue
		}
		rt.procs[lowerASCII(p.Name)] = registration{kind: p.Kind, params: p.Params, body: body}
	}
}

// RegisterProcedure registers a single procedure body directly, for
// callers that parsed or synthesized it outside of ParseSource.
func (rt *Runtime) RegisterProcedure(name string, kind parser.ProcKind, params []parser.Param, body []*ast.Statement) {
	rt.procs[lowerASCII(name)] = registration{kind: kind, params: params, body: body}
}

// Call invokes a registered procedure by name with positional arguments.
// Extra arguments are ignored; missing arguments fall back to a parameter's
// declared default, or Empty if it has none. For Function and Property Get
// procedures, the returned value is read from the procedure-named variable
// the VBA convention assigns it to.
func (rt *Runtime) Call(name string, args []Value) (Value, error) {
	reg, ok := rt.procs[lowerASCII(name)]
	if !ok {
		return value.Empty, &Error{Kind: KindRuntime, Message: fmt.Sprintf("procedure %q is not registered", name),
			Code: eval.LegacyCode(eval.ErrProcedureNotDefined)}
	}

	ctx := eval.NewContext(rt.opts)
	if err := ctx.Calls.Push(scope.Frame{Procedure: name}); err != nil {
		return value.Empty, &Error{Kind: KindStackOverflow, Message: err.Error(), Wrapped: err}
	}
	defer ctx.Calls.Pop()

	restore := ctx.EnterProcedure()
	defer ctx.Leave(restore)

	for i, p := range reg.params {
		var v value.Value
		switch {
		case i < len(args):
			v = args[i]
		case p.Default != nil:
			dv, err := eval.EvalExpression(ctx, p.Default)
			if err == nil {
				v = dv
			}
		default:
			v = value.Empty
		}
		ctx.Current.Declare(p.Name)
		ctx.Current.Set(p.Name, v)
	}

	returnsValue := reg.kind == parser.ProcFunction || reg.kind == parser.ProcPropertyGet
	if returnsValue {
		ctx.Current.Declare(name)
	}

	if err := eval.ExecStatements(ctx, reg.body); err != nil {
		return value.Empty, runtimeError(name, err)
	}

	if returnsValue {
		return ctx.Current.Get(name), nil
	}
	return value.Empty, nil
}

// runtimeError classifies an eval-layer error into the public Error
// taxonomy (spec.md §7).
func runtimeError(proc string, err error) *Error {
	if errors.Is(err, eval.ErrStackOverflow) {
		return &Error{Kind: KindStackOverflow, Message: err.Error(), Stream: proc, Wrapped: err}
	}
	var re *eval.RuntimeError
	if errors.As(err, &re) {
		return &Error{Kind: KindRuntime, Message: re.Error(), Stream: proc, Code: eval.LegacyCode(re.Err), Wrapped: err}
	}
	return &Error{Kind: KindRuntime, Message: err.Error(), Stream: proc, Code: eval.LegacyCode(err), Wrapped: err}
}
