// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package builtin

import (
	"github.com/saferwall/vbaproj/internal/eval"
	"github.com/saferwall/vbaproj/internal/value"
)

func registerType(t map[string]eval.BuiltinFunc) {
	t["cbool"] = conv1("CBool", func(v value.Value) value.Value { return value.Bool(value.ToBoolean(v)) })
	t["cbyte"] = conv1("CByte", func(v value.Value) value.Value {
		n := value.ToLong(v)
		if n < 0 {
			n = 0
		}
		if n > 255 {
			n = 255
		}
		return value.Number(float64(n))
	})
	t["cint"] = conv1("CInt", func(v value.Value) value.Value { return value.Number(float64(value.ToInteger(v))) })
	t["clng"] = conv1("CLng", func(v value.Value) value.Value { return value.Number(float64(value.ToLong(v))) })
	t["csng"] = conv1("CSng", func(v value.Value) value.Value { return value.Number(value.ToNumber(v)) })
	t["cdbl"] = conv1("CDbl", func(v value.Value) value.Value { return value.Number(value.ToNumber(v)) })
	t["cstr"] = conv1("CStr", func(v value.Value) value.Value { return value.String(value.ToString(v)) })
	t["cdate"] = conv1("CDate", func(v value.Value) value.Value { return value.Date(value.ToNumber(v)) })
	t["cvar"] = conv1("CVar", func(v value.Value) value.Value { return v })

	t["isnull"] = isKind("IsNull", value.KindNull)
	t["isempty"] = isKind("IsEmpty", value.KindEmpty)
	t["isnothing"] = isKind("IsNothing", value.KindNothing)
	t["isarray"] = isKind("IsArray", value.KindArray)
	t["isdate"] = isKind("IsDate", value.KindDate)
	t["isobject"] = isKind("IsObject", value.KindHostObject)

	t["isnumeric"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, arityError("IsNumeric")
		}
		v := args[0]
		if v.Kind == value.KindNumber || v.Kind == value.KindDate {
			return value.Bool(true), nil
		}
		if v.Kind == value.KindString {
			n := value.ToNumber(v)
			return value.Bool(n == n), nil // false iff NaN
		}
		return value.Bool(false), nil
	}
	t["typename"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, arityError("TypeName")
		}
		return value.String(value.TypeName(args[0])), nil
	}
	t["vartype"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, arityError("VarType")
		}
		return value.Number(float64(value.VarType(args[0]))), nil
	}
}

func conv1(name string, fn func(value.Value) value.Value) eval.BuiltinFunc {
	return func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, arityError(name)
		}
		return fn(args[0]), nil
	}
}

func isKind(name string, k value.Kind) eval.BuiltinFunc {
	return func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, arityError(name)
		}
		return value.Bool(args[0].Kind == k), nil
	}
}
