// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package builtin

import (
	"strings"
	"time"

	"github.com/saferwall/vbaproj/internal/eval"
	"github.com/saferwall/vbaproj/internal/value"
)

func registerDate(t map[string]eval.BuiltinFunc) {
	t["now"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		return value.Date(value.FromTime(time.Now().UTC())), nil
	}
	t["date"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		n := time.Now().UTC()
		midnight := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
		return value.Date(value.FromTime(midnight)), nil
	}
	t["time"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		n := time.Now().UTC()
		days := value.FromTime(n)
		return value.Date(days - float64(int(days))), nil
	}
	t["year"] = dateField("Year", func(tm time.Time) float64 { return float64(tm.Year()) })
	t["month"] = dateField("Month", func(tm time.Time) float64 { return float64(tm.Month()) })
	t["day"] = dateField("Day", func(tm time.Time) float64 { return float64(tm.Day()) })
	t["hour"] = dateField("Hour", func(tm time.Time) float64 { return float64(tm.Hour()) })
	t["minute"] = dateField("Minute", func(tm time.Time) float64 { return float64(tm.Minute()) })
	t["second"] = dateField("Second", func(tm time.Time) float64 { return float64(tm.Second()) })
	t["weekday"] = dateField("Weekday", func(tm time.Time) float64 { return float64(tm.Weekday()) + 1 })

	t["dateserial"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 3 {
			return value.Value{}, arityError("DateSerial")
		}
		y, m, d := int(value.ToNumber(args[0])), int(value.ToNumber(args[1])), int(value.ToNumber(args[2]))
		tm := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
		return value.Date(value.FromTime(tm)), nil
	}
	t["timeserial"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 3 {
			return value.Value{}, arityError("TimeSerial")
		}
		h, m, s := int(value.ToNumber(args[0])), int(value.ToNumber(args[1])), int(value.ToNumber(args[2]))
		tm := time.Date(1899, 12, 30, h, m, s, 0, time.UTC)
		return value.Date(value.FromTime(tm)), nil
	}
	t["dateadd"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 3 {
			return value.Value{}, arityError("DateAdd")
		}
		interval := strings.ToLower(value.ToString(args[0]))
		n := value.ToNumber(args[1])
		tm := value.ToTime(value.ToNumber(args[2]))
		return value.Date(value.FromTime(addInterval(tm, interval, n))), nil
	}
	t["datediff"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 3 {
			return value.Value{}, arityError("DateDiff")
		}
		interval := strings.ToLower(value.ToString(args[0]))
		d1 := value.ToTime(value.ToNumber(args[1]))
		d2 := value.ToTime(value.ToNumber(args[2]))
		return value.Number(diffInterval(d1, d2, interval)), nil
	}
}

func dateField(name string, fn func(time.Time) float64) eval.BuiltinFunc {
	return func(c *eval.Context, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, arityError(name)
		}
		return value.Number(fn(value.ToTime(value.ToNumber(args[0])))), nil
	}
}

// addInterval implements DateAdd's interval codes named in spec.md §4.J:
// yyyy (year), q (quarter), m (month), y/d/w (day), ww (week), h (hour),
// n (minute), s (second).
func addInterval(tm time.Time, interval string, n float64) time.Time {
	count := int(n)
	switch interval {
	case "yyyy":
		return tm.AddDate(count, 0, 0)
	case "q":
		return tm.AddDate(0, 3*count, 0)
	case "m":
		return tm.AddDate(0, count, 0)
	case "y", "d", "w":
		return tm.AddDate(0, 0, count)
	case "ww":
		return tm.AddDate(0, 0, 7*count)
	case "h":
		return tm.Add(time.Duration(count) * time.Hour)
	case "n":
		return tm.Add(time.Duration(count) * time.Minute)
	case "s":
		return tm.Add(time.Duration(count) * time.Second)
	default:
		return tm
	}
}

func diffInterval(d1, d2 time.Time, interval string) float64 {
	delta := d2.Sub(d1)
	switch interval {
	case "yyyy":
		return float64(d2.Year() - d1.Year())
	case "q":
		return float64((d2.Year()-d1.Year())*4 + (int(d2.Month())-int(d1.Month()))/3)
	case "m":
		return float64((d2.Year()-d1.Year())*12 + int(d2.Month()) - int(d1.Month()))
	case "y", "d":
		return float64(delta.Hours() / 24)
	case "w":
		return float64(int(delta.Hours()/24) % 7)
	case "ww":
		return float64(int(delta.Hours()/24) / 7)
	case "h":
		return delta.Hours()
	case "n":
		return delta.Minutes()
	case "s":
		return delta.Seconds()
	default:
		return 0
	}
}
