// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package value implements the dynamic runtime value type and its total
// coercion functions (spec.md §4.G "Value layer"). Values are a closed
// tagged union, per spec.md §9's preference for enums over class
// hierarchies, dispatched by Kind rather than a type switch over interfaces.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind tags a Value's concrete shape.
type Kind int

// The closed set of runtime value kinds named in spec.md §4.G.
const (
	KindEmpty Kind = iota
	KindNothing
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindDate
	KindHostObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindNothing:
		return "Nothing"
	case KindNull:
		return "Null"
	case KindBoolean:
		return "Boolean"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindDate:
		return "Date"
	case KindHostObject:
		return "Object"
	case KindArray:
		return "Array"
	default:
		return "Unknown"
	}
}

// Value is the dynamic value every expression evaluates to.
type Value struct {
	Kind Kind
	Num  float64     // KindNumber, KindDate (OLE-automation days), KindBoolean(0/-1)
	Str  string      // KindString
	Obj  interface{}  // KindHostObject: opaque host handle
	Arr  []Value     // KindArray
	Type string      // KindHostObject: host-reported type name, for toString/TypeName
}

// Empty is the zero value: an uninitialized Variant.
var Empty = Value{Kind: KindEmpty}

// Nothing is the null object reference.
var Nothing = Value{Kind: KindNothing}

// Null is the database-null Variant state.
var Null = Value{Kind: KindNull}

// Bool constructs a Boolean value (stored internally as 0/-1, per legacy
// convention, so arithmetic on booleans behaves bitwise as spec.md §4.G
// requires).
func Bool(b bool) Value {
	if b {
		return Value{Kind: KindBoolean, Num: -1}
	}
	return Value{Kind: KindBoolean, Num: 0}
}

// Number constructs a numeric value.
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// String constructs a string value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Date constructs a date value from OLE-automation days-since-1899-12-30.
func Date(days float64) Value { return Value{Kind: KindDate, Num: days} }

// HostObject constructs a value wrapping an opaque host handle.
func HostObject(obj interface{}, typeName string) Value {
	return Value{Kind: KindHostObject, Obj: obj, Type: typeName}
}

// Array constructs an array value from its elements.
func Array(elems []Value) Value { return Value{Kind: KindArray, Arr: elems} }

// IsTrue reports whether b is the True boolean value.
func (v Value) IsTrue() bool { return v.Kind == KindBoolean && v.Num != 0 }

const oleEpochOffsetDays = 25569 // 1970-01-01 expressed in OLE-automation days

// ToTime converts OLE-automation days to a UTC time.Time.
func ToTime(days float64) time.Time { return oleToTime(days) }

// FromTime converts a UTC time.Time to OLE-automation days.
func FromTime(t time.Time) float64 { return timeToOLE(t) }

// oleToTime converts OLE-automation days to a UTC time.Time.
func oleToTime(days float64) time.Time {
	ms := (days - oleEpochOffsetDays) * 86400000
	return time.UnixMilli(int64(ms)).UTC()
}

// timeToOLE converts a UTC time.Time to OLE-automation days.
func timeToOLE(t time.Time) float64 {
	ms := float64(t.UnixMilli())
	return ms/86400000 + oleEpochOffsetDays
}

// Now returns the current instant as an OLE-automation date value.
func Now(t time.Time) Value { return Date(timeToOLE(t)) }

// ToNumber implements spec.md §4.G's total toNumber coercion: Empty→0,
// Nothing→NaN, Boolean(true)→-1, Boolean(false)→0, String→parsed float
// (empty→0, unparseable→NaN), Date→OLE-automation days.
func ToNumber(v Value) float64 {
	switch v.Kind {
	case KindEmpty, KindNull:
		return 0
	case KindNothing:
		return math.NaN()
	case KindBoolean, KindNumber, KindDate:
		return v.Num
	case KindString:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return 0
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return n
	default:
		return math.NaN()
	}
}

// ToString implements spec.md §4.G's total toString coercion.
func ToString(v Value) string {
	switch v.Kind {
	case KindEmpty, KindNothing, KindNull:
		return ""
	case KindBoolean:
		if v.IsTrue() {
			return "True"
		}
		return "False"
	case KindNumber:
		return formatNumber(v.Num)
	case KindString:
		return v.Str
	case KindDate:
		t := oleToTime(v.Num)
		return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
	case KindHostObject:
		return fmt.Sprintf("[object %s]", v.Type)
	case KindArray:
		return "[Array]"
	default:
		return ""
	}
}

// formatNumber renders a float the way the legacy default numeric
// formatter does: integral values with no fractional part, otherwise the
// shortest round-tripping decimal representation.
func formatNumber(n float64) string {
	if math.IsNaN(n) {
		return "NaN"
	}
	if n == math.Trunc(n) && !math.IsInf(n, 0) && math.Abs(n) < 1e15 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// ToBoolean implements spec.md §4.G's total toBoolean coercion: 0, Empty,
// the empty string, Nothing and Null are false; the strings "true"/"false"
// are recognized case-insensitively, and a numeric string is false only
// when its value is 0; everything else is true.
func ToBoolean(v Value) bool {
	switch v.Kind {
	case KindEmpty, KindNothing, KindNull:
		return false
	case KindBoolean:
		return v.IsTrue()
	case KindNumber, KindDate:
		return v.Num != 0
	case KindString:
		if v.Str == "" {
			return false
		}
		switch strings.ToLower(v.Str) {
		case "true":
			return true
		case "false":
			return false
		}
		n, err := strconv.ParseFloat(v.Str, 64)
		if err == nil {
			return n != 0
		}
		return true
	default:
		return true
	}
}

// ToInteger truncates and clamps into the signed 16-bit range.
func ToInteger(v Value) int16 {
	n := truncClamp(ToNumber(v), math.MinInt16, math.MaxInt16)
	return int16(n)
}

// ToLong truncates and clamps into the signed 32-bit range.
func ToLong(v Value) int32 {
	n := truncClamp(ToNumber(v), math.MinInt32, math.MaxInt32)
	return int32(n)
}

func truncClamp(n, lo, hi float64) float64 {
	if math.IsNaN(n) {
		return 0
	}
	t := math.Trunc(n)
	if t < lo {
		return lo
	}
	if t > hi {
		return hi
	}
	return t
}

// TypeName returns the legacy VarType-style type name used by the
// TypeName builtin and toString's object formatting.
func TypeName(v Value) string {
	switch v.Kind {
	case KindEmpty:
		return "Empty"
	case KindNothing:
		return "Nothing"
	case KindNull:
		return "Null"
	case KindBoolean:
		return "Boolean"
	case KindNumber:
		return "Double"
	case KindString:
		return "String"
	case KindDate:
		return "Date"
	case KindArray:
		return "Variant()"
	case KindHostObject:
		if v.Type != "" {
			return v.Type
		}
		return "Object"
	default:
		return "Variant"
	}
}

// VarType returns the legacy numeric VarType code for v.
func VarType(v Value) int {
	switch v.Kind {
	case KindEmpty:
		return 0
	case KindNull:
		return 1
	case KindNumber:
		return 5 // vbDouble
	case KindString:
		return 8 // vbString
	case KindBoolean:
		return 11 // vbBoolean
	case KindHostObject:
		return 9 // vbObject
	case KindDate:
		return 7 // vbDate
	case KindArray:
		return 8204 // vbArray | vbVariant
	case KindNothing:
		return 9 // vbObject
	default:
		return 12 // vbVariant
	}
}
