// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package eval

import (
	"github.com/saferwall/vbaproj/internal/ast"
	"github.com/saferwall/vbaproj/internal/value"
)

// ExecStatements runs a statement list top-to-bottom (spec.md §5
// "Ordering"), stopping early if a procedure-level exit flag is raised.
func ExecStatements(c *Context, stmts []*ast.Statement) error {
	for _, s := range stmts {
		if c.Exit.ShouldExitProcedure() {
			return nil
		}
		if err := ExecStatement(c, s); err != nil {
			if c.ResumeNext {
				continue
			}
			return err
		}
	}
	return nil
}

// ExecStatement dispatches one statement by Kind.
func ExecStatement(c *Context, s *ast.Statement) error {
	switch s.Kind {
	case ast.StmtAssign, ast.StmtSet:
		return execAssign(c, s)
	case ast.StmtCall:
		_, err := EvalExpression(c, s.Call)
		return err
	case ast.StmtDim:
		return execDim(c, s)
	case ast.StmtIf:
		return execIf(c, s)
	case ast.StmtSelectCase:
		return execSelectCase(c, s)
	case ast.StmtFor:
		return execFor(c, s)
	case ast.StmtForEach:
		return execForEach(c, s)
	case ast.StmtDoLoop:
		return execDoLoop(c, s)
	case ast.StmtWhileWend:
		return execWhileWend(c, s)
	case ast.StmtExit:
		return execExit(c, s)
	case ast.StmtOnError:
		return execOnError(c, s)
	case ast.StmtWith:
		return execWith(c, s)
	case ast.StmtRaiseEvent:
		return &RuntimeError{Err: ErrNotImplemented, Name: "RaiseEvent " + s.EventName}
	default:
		return &RuntimeError{Err: ErrNotImplemented}
	}
}

// execAssign evaluates RHS first, then stores through the LHS target,
// per spec.md §4.I "Statements". Set and plain "=" assignment share this
// path: the dynamically-typed value layer does not otherwise
// differentiate object assignment from value assignment.
func execAssign(c *Context, s *ast.Statement) error {
	rhs, err := EvalExpression(c, s.RHS)
	if err != nil {
		return err
	}
	return storeTo(c, s.LHS, rhs)
}

func storeTo(c *Context, lhs *ast.Expression, v value.Value) error {
	switch lhs.Kind {
	case ast.ExprIdent:
		c.Current.Set(lhs.Name, v)
		return nil
	case ast.ExprMember:
		obj, err := resolveMemberTarget(c, lhs)
		if err != nil {
			return err
		}
		if c.Host == nil {
			return &RuntimeError{Err: ErrObjectRequired, Name: lhs.Member}
		}
		return c.Host.SetProperty(obj, lhs.Member, v)
	case ast.ExprIndex:
		return storeIndexed(c, lhs, v)
	default:
		return &RuntimeError{Err: ErrTypeMismatch}
	}
}

func storeIndexed(c *Context, lhs *ast.Expression, v value.Value) error {
	target, err := EvalExpression(c, lhs.Target)
	if err != nil {
		return err
	}
	args := make([]value.Value, len(lhs.Index))
	for i, a := range lhs.Index {
		args[i], err = EvalExpression(c, a)
		if err != nil {
			return err
		}
	}
	switch target.Kind {
	case value.KindArray:
		if len(args) != 1 {
			return &RuntimeError{Err: ErrSubscriptOutOfRange}
		}
		idx := int(value.ToNumber(args[0]))
		if idx < 0 || idx >= len(target.Arr) {
			return &RuntimeError{Err: ErrSubscriptOutOfRange}
		}
		target.Arr[idx] = v
		// Arrays are reference-shared slices; if the target identifier
		// itself holds the array, the mutation above is already visible.
		if lhs.Target.Kind == ast.ExprIdent {
			c.Current.Set(lhs.Target.Name, target)
		}
		return nil
	case value.KindHostObject:
		if ih, ok := c.Host.(IndexedHostAPI); ok {
			return ih.SetIndexed(target, args, v)
		}
		return &RuntimeError{Err: ErrNotImplemented}
	default:
		return &RuntimeError{Err: ErrTypeMismatch}
	}
}

func execDim(c *Context, s *ast.Statement) error {
	for _, d := range s.Decls {
		if d.Init != nil {
			v, err := EvalExpression(c, d.Init)
			if err != nil {
				return err
			}
			c.Current.Set(d.Name, v)
			continue
		}
		c.Current.Declare(d.Name)
	}
	return nil
}

func execIf(c *Context, s *ast.Statement) error {
	cond, err := EvalExpression(c, s.Cond)
	if err != nil {
		return err
	}
	if value.ToBoolean(cond) {
		return ExecStatements(c, s.Then)
	}
	for _, ei := range s.ElseIfs {
		econd, err := EvalExpression(c, ei.Cond)
		if err != nil {
			return err
		}
		if value.ToBoolean(econd) {
			return ExecStatements(c, ei.Body)
		}
	}
	return ExecStatements(c, s.Else)
}

// execSelectCase dispatches on equality only, per spec.md §9 "Select
// Case with ranges": range/Is-comparison case conditions are parsed but
// evaluated here as plain equality against the Select Case test value.
func execSelectCase(c *Context, s *ast.Statement) error {
	test, err := EvalExpression(c, s.Test)
	if err != nil {
		return err
	}
	for _, clause := range s.Cases {
		if len(clause.Conditions) == 0 {
			// Case Else
			return ExecStatements(c, clause.Body)
		}
		for _, cond := range clause.Conditions {
			cv, err := EvalExpression(c, cond)
			if err != nil {
				return err
			}
			if value.Equal(test, cv) {
				return ExecStatements(c, clause.Body)
			}
		}
	}
	return nil
}

func execFor(c *Context, s *ast.Statement) error {
	start, err := EvalExpression(c, s.Start)
	if err != nil {
		return err
	}
	end, err := EvalExpression(c, s.End)
	if err != nil {
		return err
	}
	step := value.Number(1)
	if s.Step != nil {
		step, err = EvalExpression(c, s.Step)
		if err != nil {
			return err
		}
	}
	stepN := value.ToNumber(step)
	if stepN == 0 {
		return &RuntimeError{Err: ErrInvalidProcedureCall, Name: "For"}
	}
	endN := value.ToNumber(end)

	c.Current.Set(s.Counter, start)
	iterations := 0
	for {
		cur := value.ToNumber(c.Current.Get(s.Counter))
		if stepN > 0 && cur > endN {
			break
		}
		if stepN < 0 && cur < endN {
			break
		}
		if err := ExecStatements(c, s.Body); err != nil {
			return err
		}
		if c.Exit.ShouldExitFor() {
			c.Exit.ClearFor()
			break
		}
		iterations++
		if iterations > c.MaxLoopIterations {
			return &RuntimeError{Err: ErrOverflow, Name: "For"}
		}
		c.Current.Set(s.Counter, value.Number(cur+stepN))
	}
	return nil
}

func execForEach(c *Context, s *ast.Statement) error {
	coll, err := EvalExpression(c, s.Collection)
	if err != nil {
		return err
	}
	if coll.Kind != value.KindArray {
		return &RuntimeError{Err: ErrTypeMismatch, Name: "For Each"}
	}
	for _, elem := range coll.Arr {
		c.Current.Set(s.ElementName, elem)
		if err := ExecStatements(c, s.Body); err != nil {
			return err
		}
		if c.Exit.ShouldExitFor() {
			c.Exit.ClearFor()
			break
		}
	}
	return nil
}

func execDoLoop(c *Context, s *ast.Statement) error {
	iterations := 0
	for {
		if s.CondKind != ast.DoCondNone && s.CondPos == ast.DoCondPre {
			stop, err := doCondSaysStop(c, s)
			if err != nil {
				return err
			}
			if stop {
				break
			}
		}
		if err := ExecStatements(c, s.Body); err != nil {
			return err
		}
		if c.Exit.ShouldExitDo() {
			c.Exit.ClearDo()
			break
		}
		if s.CondKind != ast.DoCondNone && s.CondPos == ast.DoCondPost {
			stop, err := doCondSaysStop(c, s)
			if err != nil {
				return err
			}
			if stop {
				break
			}
		}
		iterations++
		if iterations > c.MaxLoopIterations {
			return &RuntimeError{Err: ErrOverflow, Name: "Do"}
		}
	}
	return nil
}

func doCondSaysStop(c *Context, s *ast.Statement) (bool, error) {
	v, err := EvalExpression(c, s.DoCond)
	if err != nil {
		return false, err
	}
	truth := value.ToBoolean(v)
	if s.CondKind == ast.DoCondWhile {
		return !truth, nil
	}
	return truth, nil
}

func execWhileWend(c *Context, s *ast.Statement) error {
	iterations := 0
	for {
		cond, err := EvalExpression(c, s.DoCond)
		if err != nil {
			return err
		}
		if !value.ToBoolean(cond) {
			break
		}
		if err := ExecStatements(c, s.Body); err != nil {
			return err
		}
		if c.Exit.ShouldExitProcedure() {
			break
		}
		iterations++
		if iterations > c.MaxLoopIterations {
			return &RuntimeError{Err: ErrOverflow, Name: "While"}
		}
	}
	return nil
}

func execExit(c *Context, s *ast.Statement) error {
	switch s.ExitKind {
	case ast.ExitSub:
		c.Exit.Sub = true
	case ast.ExitFunction:
		c.Exit.Function = true
	case ast.ExitProperty:
		c.Exit.Property = true
	case ast.ExitFor:
		c.Exit.For = true
	case ast.ExitDo:
		c.Exit.Do = true
	}
	return nil
}

// execOnError recognizes On Error syntactically; per spec.md §4.I and §9,
// only ResumeNext has an observable runtime effect in this subset. Goto
// <label> degrades to Goto 0 (handling disabled) with a recorded warning,
// since labels are not represented in the statement IR.
func execOnError(c *Context, s *ast.Statement) error {
	switch s.ErrorMode {
	case ast.OnErrorResumeNext:
		c.ResumeNext = true
	case ast.OnErrorGoto0, ast.OnErrorResume:
		c.ResumeNext = false
	case ast.OnErrorGotoLabel:
		c.ResumeNext = false
		c.warn("On Error Goto " + s.Label + " degraded to Goto 0: labels are not represented in the statement IR")
	}
	return nil
}

func execWith(c *Context, s *ast.Statement) error {
	obj, err := EvalExpression(c, s.WithObject)
	if err != nil {
		return err
	}
	c.With.Push(obj)
	err = ExecStatements(c, s.Body)
	c.With.Pop()
	return err
}
