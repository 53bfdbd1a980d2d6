// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package builtin

import (
	"testing"

	"github.com/saferwall/vbaproj/internal/eval"
	"github.com/saferwall/vbaproj/internal/value"
)

func call(t *testing.T, name string, args ...value.Value) value.Value {
	t.Helper()
	tbl := Table()
	fn, ok := tbl[name]
	if !ok {
		t.Fatalf("builtin %q not registered", name)
	}
	c := eval.NewContext(eval.Options{Builtins: tbl})
	v, err := fn(c, args)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", name, err)
	}
	return v
}

func TestMathBuiltins(t *testing.T) {
	if v := call(t, "abs", value.Number(-5)); v.Num != 5 {
		t.Errorf("Abs(-5) = %v", v.Num)
	}
	if v := call(t, "int", value.Number(3.7)); v.Num != 3 {
		t.Errorf("Int(3.7) = %v", v.Num)
	}
	if v := call(t, "sgn", value.Number(-2)); v.Num != -1 {
		t.Errorf("Sgn(-2) = %v", v.Num)
	}
	if v := call(t, "sqr", value.Number(9)); v.Num != 3 {
		t.Errorf("Sqr(9) = %v", v.Num)
	}
}

func TestStringBuiltins(t *testing.T) {
	if v := call(t, "len", value.String("hello")); v.Num != 5 {
		t.Errorf("Len(hello) = %v", v.Num)
	}
	if v := call(t, "left", value.String("hello"), value.Number(3)); v.Str != "hel" {
		t.Errorf("Left(hello,3) = %q", v.Str)
	}
	if v := call(t, "right", value.String("hello"), value.Number(3)); v.Str != "llo" {
		t.Errorf("Right(hello,3) = %q", v.Str)
	}
	if v := call(t, "mid", value.String("hello"), value.Number(2), value.Number(3)); v.Str != "ell" {
		t.Errorf("Mid(hello,2,3) = %q", v.Str)
	}
	if v := call(t, "ucase", value.String("abc")); v.Str != "ABC" {
		t.Errorf("UCase(abc) = %q", v.Str)
	}
	if v := call(t, "instr", value.String("hello world"), value.String("world")); v.Num != 7 {
		t.Errorf("InStr = %v", v.Num)
	}
	if v := call(t, "strreverse", value.String("abc")); v.Str != "cba" {
		t.Errorf("StrReverse(abc) = %q", v.Str)
	}
	if v := call(t, "split", value.String("a,b,c"), value.String(",")); v.Kind != value.KindArray || len(v.Arr) != 3 {
		t.Errorf("Split = %+v", v)
	}
	if v := call(t, "join", value.Array([]value.Value{value.String("a"), value.String("b")}), value.String("-")); v.Str != "a-b" {
		t.Errorf("Join = %q", v.Str)
	}
}

func TestTypeBuiltins(t *testing.T) {
	if v := call(t, "cint", value.String("42")); v.Num != 42 {
		t.Errorf("CInt(\"42\") = %v", v.Num)
	}
	if v := call(t, "isempty", value.Empty); !v.IsTrue() {
		t.Errorf("IsEmpty(Empty) should be true")
	}
	if v := call(t, "isnumeric", value.String("3.14")); !v.IsTrue() {
		t.Errorf("IsNumeric(3.14) should be true")
	}
	if v := call(t, "isnumeric", value.String("abc")); v.IsTrue() {
		t.Errorf("IsNumeric(abc) should be false")
	}
	if v := call(t, "typename", value.Number(1)); v.Str != "Double" {
		t.Errorf("TypeName(1) = %q", v.Str)
	}
}

func TestArrayBuiltins(t *testing.T) {
	arr := call(t, "array", value.Number(1), value.Number(2), value.Number(3))
	if arr.Kind != value.KindArray || len(arr.Arr) != 3 {
		t.Fatalf("Array(...) = %+v", arr)
	}
	if v := call(t, "lbound", arr); v.Num != 0 {
		t.Errorf("LBound = %v", v.Num)
	}
	if v := call(t, "ubound", arr); v.Num != 2 {
		t.Errorf("UBound = %v", v.Num)
	}
}

func TestUtilityBuiltins(t *testing.T) {
	if v := call(t, "iif", value.Bool(true), value.String("yes"), value.String("no")); v.Str != "yes" {
		t.Errorf("IIf(true,...) = %q", v.Str)
	}
	if v := call(t, "format", value.Number(3.14159), value.String("0.00")); v.Str != "3.14" {
		t.Errorf("Format(3.14159, 0.00) = %q", v.Str)
	}
	if v := call(t, "format", value.Number(1234567), value.String("#,##0")); v.Str != "1,234,567" {
		t.Errorf("Format(1234567, #,##0) = %q", v.Str)
	}
}

func TestArityErrors(t *testing.T) {
	tbl := Table()
	fn := tbl["abs"]
	c := eval.NewContext(eval.Options{Builtins: tbl})
	if _, err := fn(c, nil); err == nil {
		t.Fatalf("expected arity error for Abs()")
	}
}
