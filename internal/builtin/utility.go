// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package builtin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/saferwall/vbaproj/internal/eval"
	"github.com/saferwall/vbaproj/internal/value"
)

func registerUtility(t map[string]eval.BuiltinFunc) {
	t["iif"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 3 {
			return value.Value{}, arityError("IIf")
		}
		if value.ToBoolean(args[0]) {
			return args[1], nil
		}
		return args[2], nil
	}
	t["choose"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) < 1 {
			return value.Value{}, arityError("Choose")
		}
		idx := int(value.ToNumber(args[0]))
		if idx < 1 || idx >= len(args) {
			return value.Empty, nil
		}
		return args[idx], nil
	}
	t["switch"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args)%2 != 0 {
			return value.Value{}, arityError("Switch")
		}
		for i := 0; i < len(args); i += 2 {
			if value.ToBoolean(args[i]) {
				return args[i+1], nil
			}
		}
		return value.Empty, nil
	}
	t["format"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) < 1 || len(args) > 2 {
			return value.Value{}, arityError("Format")
		}
		if len(args) == 1 {
			return value.String(value.ToString(args[0])), nil
		}
		return value.String(formatValue(args[0], value.ToString(args[1]))), nil
	}
}

// formatValue implements the Format builtin's required patterns
// (spec.md §4.J): "0.00", "#,##0", "percent", "short date", "long date".
func formatValue(v value.Value, pattern string) string {
	switch strings.ToLower(pattern) {
	case "0.00":
		return strconv.FormatFloat(value.ToNumber(v), 'f', 2, 64)
	case "#,##0":
		return groupThousands(int64(value.ToNumber(v)))
	case "percent":
		return strconv.FormatFloat(value.ToNumber(v)*100, 'f', 0, 64) + "%"
	case "short date":
		tm := value.ToTime(value.ToNumber(v))
		return fmt.Sprintf("%d/%d/%d", int(tm.Month()), tm.Day(), tm.Year())
	case "long date":
		tm := value.ToTime(value.ToNumber(v))
		return fmt.Sprintf("%s, %s %d, %d", tm.Weekday(), tm.Month(), tm.Day(), tm.Year())
	default:
		return value.ToString(v)
	}
}

func groupThousands(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
