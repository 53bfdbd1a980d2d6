// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package builtin

import (
	"strings"

	"github.com/saferwall/vbaproj/internal/eval"
	"github.com/saferwall/vbaproj/internal/value"
)

func registerString(t map[string]eval.BuiltinFunc) {
	t["len"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, arityError("Len")
		}
		return value.Number(float64(len([]rune(value.ToString(args[0]))))), nil
	}
	t["left"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return value.Value{}, arityError("Left")
		}
		s := []rune(value.ToString(args[0]))
		n := clampLen(int(value.ToNumber(args[1])), len(s))
		return value.String(string(s[:n])), nil
	}
	t["right"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return value.Value{}, arityError("Right")
		}
		s := []rune(value.ToString(args[0]))
		n := clampLen(int(value.ToNumber(args[1])), len(s))
		return value.String(string(s[len(s)-n:])), nil
	}
	t["mid"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) < 2 || len(args) > 3 {
			return value.Value{}, arityError("Mid")
		}
		s := []rune(value.ToString(args[0]))
		start := int(value.ToNumber(args[1]))
		if start < 1 {
			start = 1
		}
		if start > len(s) {
			return value.String(""), nil
		}
		length := len(s) - (start - 1)
		if len(args) == 3 {
			l := int(value.ToNumber(args[2]))
			if l < length {
				length = l
			}
		}
		if length < 0 {
			length = 0
		}
		return value.String(string(s[start-1 : start-1+length])), nil
	}
	t["instr"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		return instrImpl(args, false)
	}
	t["instrrev"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		return instrImpl(args, true)
	}
	t["lcase"] = unaryStr("LCase", strings.ToLower)
	t["ucase"] = unaryStr("UCase", strings.ToUpper)
	t["trim"] = unaryStr("Trim", strings.TrimSpace)
	t["ltrim"] = unaryStr("LTrim", func(s string) string { return strings.TrimLeft(s, " \t") })
	t["rtrim"] = unaryStr("RTrim", func(s string) string { return strings.TrimRight(s, " \t") })
	t["strreverse"] = unaryStr("StrReverse", reverseString)
	t["replace"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) < 3 {
			return value.Value{}, arityError("Replace")
		}
		s := value.ToString(args[0])
		find := value.ToString(args[1])
		repl := value.ToString(args[2])
		if find == "" {
			return value.String(s), nil
		}
		return value.String(strings.ReplaceAll(s, find, repl)), nil
	}
	t["space"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, arityError("Space")
		}
		return value.String(strings.Repeat(" ", int(value.ToNumber(args[0])))), nil
	}
	t["string"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return value.Value{}, arityError("String")
		}
		n := int(value.ToNumber(args[0]))
		ch := value.ToString(args[1])
		if ch == "" {
			return value.String(""), nil
		}
		return value.String(strings.Repeat(string([]rune(ch)[0]), n)), nil
	}
	t["chr"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, arityError("Chr")
		}
		return value.String(string(rune(int(value.ToNumber(args[0]))))), nil
	}
	t["asc"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, arityError("Asc")
		}
		s := []rune(value.ToString(args[0]))
		if len(s) == 0 {
			return value.Value{}, &eval.RuntimeError{Err: eval.ErrInvalidProcedureCall, Name: "Asc"}
		}
		return value.Number(float64(s[0])), nil
	}
	t["split"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) < 1 {
			return value.Value{}, arityError("Split")
		}
		s := value.ToString(args[0])
		sep := " "
		if len(args) >= 2 {
			sep = value.ToString(args[1])
		}
		var parts []string
		if sep == "" {
			parts = []string{s}
		} else {
			parts = strings.Split(s, sep)
		}
		elems := make([]value.Value, len(parts))
		for i, p := range parts {
			elems[i] = value.String(p)
		}
		return value.Array(elems), nil
	}
	t["join"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) < 1 {
			return value.Value{}, arityError("Join")
		}
		if args[0].Kind != value.KindArray {
			return value.Value{}, &eval.RuntimeError{Err: eval.ErrTypeMismatch, Name: "Join"}
		}
		sep := " "
		if len(args) >= 2 {
			sep = value.ToString(args[1])
		}
		parts := make([]string, len(args[0].Arr))
		for i, v := range args[0].Arr {
			parts[i] = value.ToString(v)
		}
		return value.String(strings.Join(parts, sep)), nil
	}
}

func clampLen(n, max int) int {
	if n < 0 {
		n = 0
	}
	if n > max {
		n = max
	}
	return n
}

func unaryStr(name string, fn func(string) string) eval.BuiltinFunc {
	return func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, arityError(name)
		}
		return value.String(fn(value.ToString(args[0]))), nil
	}
}

func reverseString(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// instrImpl implements InStr/InStrRev. Both accept a leading 1-based
// start-position argument only in their 3-argument forms; positions are
// reported 1-based over runes, and 0 means "not found", per spec.md §4.J.
func instrImpl(args []value.Value, reverse bool) (value.Value, error) {
	var start int
	var hay, needle string
	switch len(args) {
	case 2:
		start = 1
		hay, needle = value.ToString(args[0]), value.ToString(args[1])
	case 3:
		start = int(value.ToNumber(args[0]))
		hay, needle = value.ToString(args[1]), value.ToString(args[2])
	default:
		name := "InStr"
		if reverse {
			name = "InStrRev"
		}
		return value.Value{}, arityError(name)
	}
	runes := []rune(hay)
	if start < 1 {
		start = 1
	}
	if start > len(runes) {
		return value.Number(0), nil
	}

	if reverse {
		for i := len(runes) - len([]rune(needle)); i >= start-1; i-- {
			if i < 0 {
				break
			}
			if string(runes[i:i+len([]rune(needle))]) == needle {
				return value.Number(float64(i + 1)), nil
			}
		}
		return value.Number(0), nil
	}

	needleRunes := []rune(needle)
	for i := start - 1; i+len(needleRunes) <= len(runes); i++ {
		if string(runes[i:i+len(needleRunes)]) == needle {
			return value.Number(float64(i + 1)), nil
		}
	}
	return value.Number(0), nil
}
