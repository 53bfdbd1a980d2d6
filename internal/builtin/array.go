// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package builtin

import (
	"github.com/saferwall/vbaproj/internal/eval"
	"github.com/saferwall/vbaproj/internal/value"
)

func registerArray(t map[string]eval.BuiltinFunc) {
	t["array"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		elems := make([]value.Value, len(args))
		copy(elems, args)
		return value.Array(elems), nil
	}
	t["lbound"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 || args[0].Kind != value.KindArray {
			return value.Value{}, arityError("LBound")
		}
		return value.Number(0), nil
	}
	t["ubound"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 || args[0].Kind != value.KindArray {
			return value.Value{}, arityError("UBound")
		}
		return value.Number(float64(len(args[0].Arr) - 1)), nil
	}
}
