// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package builtin

import (
	"math"

	"github.com/saferwall/vbaproj/internal/eval"
	"github.com/saferwall/vbaproj/internal/value"
)

func registerMath(t map[string]eval.BuiltinFunc) {
	t["abs"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, arityError("Abs")
		}
		return value.Number(math.Abs(value.ToNumber(args[0]))), nil
	}
	t["int"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, arityError("Int")
		}
		return value.Number(math.Floor(value.ToNumber(args[0]))), nil
	}
	t["fix"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, arityError("Fix")
		}
		return value.Number(math.Trunc(value.ToNumber(args[0]))), nil
	}
	t["sgn"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, arityError("Sgn")
		}
		n := value.ToNumber(args[0])
		switch {
		case n > 0:
			return value.Number(1), nil
		case n < 0:
			return value.Number(-1), nil
		default:
			return value.Number(0), nil
		}
	}
	t["sqr"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, arityError("Sqr")
		}
		n := value.ToNumber(args[0])
		if n < 0 {
			return value.Value{}, &eval.RuntimeError{Err: eval.ErrInvalidProcedureCall, Name: "Sqr"}
		}
		return value.Number(math.Sqrt(n)), nil
	}
	t["exp"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, arityError("Exp")
		}
		return value.Number(math.Exp(value.ToNumber(args[0]))), nil
	}
	t["log"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, arityError("Log")
		}
		return value.Number(math.Log(value.ToNumber(args[0]))), nil
	}
	t["sin"] = unary1("Sin", math.Sin)
	t["cos"] = unary1("Cos", math.Cos)
	t["tan"] = unary1("Tan", math.Tan)
	t["atn"] = unary1("Atn", math.Atan)
	t["rnd"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		return value.Number(c.Rand.Float64()), nil
	}
	t["round"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) < 1 || len(args) > 2 {
			return value.Value{}, arityError("Round")
		}
		n := value.ToNumber(args[0])
		digits := 0
		if len(args) == 2 {
			digits = int(value.ToNumber(args[1]))
		}
		mult := math.Pow(10, float64(digits))
		return value.Number(math.Round(n*mult) / mult), nil
	}
}

func unary1(name string, fn func(float64) float64) eval.BuiltinFunc {
	return func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, arityError(name)
		}
		return value.Number(fn(value.ToNumber(args[0]))), nil
	}
}
