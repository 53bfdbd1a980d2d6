// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package eval

import (
	"strconv"

	"github.com/saferwall/vbaproj/internal/ast"
	"github.com/saferwall/vbaproj/internal/value"
)

// languageConstants are resolved before the scope chain, per spec.md §4.I
// identifier-lookup order.
var languageConstants = map[string]value.Value{
	"true":    value.Bool(true),
	"false":   value.Bool(false),
	"nothing": value.Nothing,
	"null":    value.Null,
	"empty":   value.Empty,
	"vbcrlf":  value.String("\r\n"),
	"vbcr":    value.String("\r"),
	"vblf":    value.String("\n"),
	"vbtab":   value.String("\t"),
	"vbnullstring": value.String(""),
}

func lookupConstant(name string) (value.Value, bool) {
	v, ok := languageConstants[lowerIdent(name)]
	return v, ok
}

func lowerIdent(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

// EvalExpression dispatches on expr.Kind and returns its value (spec.md
// §4.I "Evaluator").
func EvalExpression(c *Context, expr *ast.Expression) (value.Value, error) {
	switch expr.Kind {
	case ast.ExprLiteral:
		return evalLiteral(expr), nil
	case ast.ExprIdent:
		return evalIdent(c, expr.Name), nil
	case ast.ExprParen:
		return EvalExpression(c, expr.Inner)
	case ast.ExprUnary:
		return evalUnary(c, expr)
	case ast.ExprBinary:
		return evalBinary(c, expr)
	case ast.ExprMember:
		return evalMember(c, expr)
	case ast.ExprIndex:
		return evalIndex(c, expr)
	case ast.ExprCall:
		return evalCall(c, expr)
	case ast.ExprNew:
		return value.Value{}, &RuntimeError{Err: ErrNotImplemented, Name: "New " + expr.ClassName}
	case ast.ExprTypeTest:
		return evalTypeTest(c, expr)
	default:
		return value.Value{}, &RuntimeError{Err: ErrNotImplemented}
	}
}

func evalLiteral(expr *ast.Expression) value.Value {
	switch expr.LitKind {
	case ast.LitNumber:
		return value.Number(expr.Num)
	case ast.LitString:
		return value.String(expr.Str)
	case ast.LitBoolean:
		return value.Bool(expr.Bool)
	case ast.LitNothing:
		return value.Nothing
	case ast.LitEmpty:
		return value.Empty
	case ast.LitNull:
		return value.Null
	case ast.LitDate:
		return parseDateLiteral(expr.Text)
	default:
		return value.Empty
	}
}

// parseDateLiteral parses the free-text interior of a #...# literal on a
// best-effort basis; unparseable text yields Empty rather than an error,
// matching the lexer's deferral of date semantics to the evaluator.
func parseDateLiteral(text string) value.Value {
	// Minimal M/D/YYYY support; richer locale-aware parsing is out of
	// scope (spec.md §4.F defers interior parsing to the evaluator but
	// does not mandate full locale support).
	var m, d, y int
	n, err := parseMDY(text, &m, &d, &y)
	if err != nil || n != 3 {
		return value.Empty
	}
	return value.Date(mdyToOLE(m, d, y))
}

func parseMDY(text string, m, d, y *int) (int, error) {
	parts := splitAny(text, "/-")
	if len(parts) != 3 {
		return 0, strconv.ErrSyntax
	}
	vals := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(trimSpace(p))
		if err != nil {
			return 0, err
		}
		vals[i] = n
	}
	*m, *d, *y = vals[0], vals[1], vals[2]
	return 3, nil
}

func splitAny(s, seps string) []string {
	var out []string
	start := 0
	for i, r := range s {
		for _, sep := range seps {
			if r == sep {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

func trimSpace(s string) string {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t') {
		s = s[1:]
	}
	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t') {
		s = s[:len(s)-1]
	}
	return s
}

func mdyToOLE(m, d, y int) float64 {
	days := daysFromCivil(y, m, d)
	return float64(days + 25569)
}

// daysFromCivil converts a proleptic Gregorian date into days since the
// Unix epoch (1970-01-01), using Howard Hinnant's civil_from_days inverse.
func daysFromCivil(y, m, d int) int {
	yy := y
	if m <= 2 {
		yy--
	}
	era := yy
	if era < 0 {
		era -= 399
	}
	era /= 400
	yoe := yy - era*400
	var mp int
	if m > 2 {
		mp = m - 3
	} else {
		mp = m + 9
	}
	doy := (153*mp+2)/5 + d - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

func evalIdent(c *Context, name string) value.Value {
	if v, ok := lookupConstant(name); ok {
		return v
	}
	if v, ok := c.Current.Lookup(name); ok {
		return v
	}
	if c.Host != nil {
		if v, ok := c.Host.GetGlobalObject(name); ok {
			return v
		}
	}
	return value.Empty
}

func evalUnary(c *Context, expr *ast.Expression) (value.Value, error) {
	operand, err := EvalExpression(c, expr.Operand)
	if err != nil {
		return value.Value{}, err
	}
	switch expr.UnOp {
	case ast.OpNeg:
		return value.Neg(operand), nil
	case ast.OpNot:
		return value.Not(operand), nil
	default:
		return value.Value{}, &RuntimeError{Err: ErrNotImplemented}
	}
}

func evalBinary(c *Context, expr *ast.Expression) (value.Value, error) {
	left, err := EvalExpression(c, expr.Left)
	if err != nil {
		return value.Value{}, err
	}
	right, err := EvalExpression(c, expr.Right)
	if err != nil {
		return value.Value{}, err
	}
	switch expr.BinOp {
	case ast.OpAdd:
		return value.Add(left, right), nil
	case ast.OpSub:
		return value.Sub(left, right), nil
	case ast.OpMul:
		return value.Mul(left, right), nil
	case ast.OpDiv:
		return value.Div(left, right), nil
	case ast.OpIntDiv:
		v, err := value.IntDiv(left, right)
		return v, wrapDivErr(err)
	case ast.OpMod:
		v, err := value.Mod(left, right)
		return v, wrapDivErr(err)
	case ast.OpPow:
		return value.Pow(left, right), nil
	case ast.OpConcat:
		return value.Concat(left, right), nil
	case ast.OpEq:
		return value.Bool(value.Equal(left, right)), nil
	case ast.OpNeq:
		return value.Bool(!value.Equal(left, right)), nil
	case ast.OpLt:
		return value.Bool(value.Compare(left, right) < 0), nil
	case ast.OpGt:
		return value.Bool(value.Compare(left, right) > 0), nil
	case ast.OpLe:
		return value.Bool(value.Compare(left, right) <= 0), nil
	case ast.OpGe:
		return value.Bool(value.Compare(left, right) >= 0), nil
	case ast.OpAnd:
		return value.And(left, right), nil
	case ast.OpOr:
		return value.Or(left, right), nil
	case ast.OpXor:
		return value.Xor(left, right), nil
	case ast.OpEqv:
		return value.Eqv(left, right), nil
	case ast.OpImp:
		return value.Imp(left, right), nil
	case ast.OpIs:
		return value.Bool(isSameReference(left, right)), nil
	case ast.OpLike:
		return value.Bool(Like(value.ToString(left), value.ToString(right))), nil
	default:
		return value.Value{}, &RuntimeError{Err: ErrNotImplemented}
	}
}

func wrapDivErr(err error) error {
	if err == nil {
		return nil
	}
	return &RuntimeError{Err: ErrDivisionByZero}
}

// isSameReference implements "Is": reference identity. Two Nothing
// values, or two host objects wrapping the same underlying handle, are
// identical.
func isSameReference(a, b value.Value) bool {
	if a.Kind == value.KindNothing && b.Kind == value.KindNothing {
		return true
	}
	if a.Kind == value.KindHostObject && b.Kind == value.KindHostObject {
		return a.Obj == b.Obj
	}
	return false
}

func evalTypeTest(c *Context, expr *ast.Expression) (value.Value, error) {
	operand, err := EvalExpression(c, expr.Operand)
	if err != nil {
		return value.Value{}, err
	}
	return value.Bool(value.TypeName(operand) == expr.TypeName), nil
}

func evalMember(c *Context, expr *ast.Expression) (value.Value, error) {
	obj, err := resolveMemberTarget(c, expr)
	if err != nil {
		return value.Value{}, err
	}
	if c.Host == nil {
		return value.Value{}, &RuntimeError{Err: ErrObjectRequired, Name: expr.Member}
	}
	return c.Host.GetProperty(obj, expr.Member)
}

// resolveMemberTarget resolves the object a member/index expression with
// an implicit (With-relative) or explicit target applies to.
func resolveMemberTarget(c *Context, expr *ast.Expression) (value.Value, error) {
	if expr.ImplicitWith || expr.Target == nil {
		v, err := c.With.Top()
		if err != nil {
			return value.Value{}, &RuntimeError{Err: ErrObjectRequired}
		}
		return v, nil
	}
	return EvalExpression(c, expr.Target)
}

func evalIndex(c *Context, expr *ast.Expression) (value.Value, error) {
	// Name(args) parses as an index; when Name is not a variable but names a
	// builtin, it is a builtin call.
	if expr.Target.Kind == ast.ExprIdent {
		if _, bound := c.Current.Lookup(expr.Target.Name); !bound {
			if _, ok := c.Builtins[lowerIdent(expr.Target.Name)]; ok {
				return evalCall(c, &ast.Expression{Kind: ast.ExprCall, Pos: expr.Pos, Target: expr.Target, Args: expr.Index})
			}
		}
	}
	target, err := EvalExpression(c, expr.Target)
	if err != nil {
		return value.Value{}, err
	}
	args := make([]value.Value, len(expr.Index))
	for i, a := range expr.Index {
		args[i], err = EvalExpression(c, a)
		if err != nil {
			return value.Value{}, err
		}
	}
	return indexValue(c, target, args)
}

func indexValue(c *Context, target value.Value, args []value.Value) (value.Value, error) {
	switch target.Kind {
	case value.KindArray:
		if len(args) != 1 {
			return value.Value{}, &RuntimeError{Err: ErrSubscriptOutOfRange}
		}
		idx := int(value.ToNumber(args[0]))
		if idx < 0 || idx >= len(target.Arr) {
			return value.Value{}, &RuntimeError{Err: ErrSubscriptOutOfRange}
		}
		return target.Arr[idx], nil
	case value.KindString:
		if len(args) != 1 {
			return value.Value{}, &RuntimeError{Err: ErrSubscriptOutOfRange}
		}
		idx := int(value.ToNumber(args[0]))
		runes := []rune(target.Str)
		if idx < 1 || idx > len(runes) {
			return value.String(""), nil
		}
		return value.String(string(runes[idx-1])), nil
	case value.KindHostObject:
		if ih, ok := c.Host.(IndexedHostAPI); ok {
			return ih.GetIndexed(target, args)
		}
		return value.Value{}, &RuntimeError{Err: ErrNotImplemented}
	default:
		return value.Value{}, &RuntimeError{Err: ErrTypeMismatch}
	}
}

// evalCall implements spec.md §4.I's call-expression dispatch order:
// builtin by name, zero-arg host global object, else ProcedureNotDefined.
// Member calls (obj.Method(args)) route through host.CallMethod.
func evalCall(c *Context, expr *ast.Expression) (value.Value, error) {
	args := make([]value.Value, len(expr.Args))
	for i, a := range expr.Args {
		v, err := EvalExpression(c, a)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}

	switch expr.Target.Kind {
	case ast.ExprIdent:
		name := expr.Target.Name
		if fn, ok := c.Builtins[lowerIdent(name)]; ok {
			return fn(c, args)
		}
		if c.Host != nil {
			if obj, ok := c.Host.GetGlobalObject(name); ok && len(args) == 0 {
				return obj, nil
			}
		}
		return value.Value{}, &RuntimeError{Err: ErrProcedureNotDefined, Name: name}
	case ast.ExprMember:
		obj, err := resolveMemberTarget(c, expr.Target)
		if err != nil {
			return value.Value{}, err
		}
		if c.Host == nil {
			return value.Value{}, &RuntimeError{Err: ErrObjectRequired, Name: expr.Target.Member}
		}
		return c.Host.CallMethod(obj, expr.Target.Member, args)
	default:
		return value.Value{}, &RuntimeError{Err: ErrProcedureNotDefined}
	}
}
