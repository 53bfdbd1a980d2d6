// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package value

import (
	"math"
	"testing"
)

func TestToNumberCoercions(t *testing.T) {
	cases := []struct {
		v    Value
		want float64
	}{
		{Empty, 0},
		{Bool(true), -1},
		{Bool(false), 0},
		{String(""), 0},
		{String("42"), 42},
		{Number(3.5), 3.5},
	}
	for _, c := range cases {
		got := ToNumber(c.v)
		if got != c.want {
			t.Errorf("ToNumber(%+v) = %v, want %v", c.v, got, c.want)
		}
	}
	if !math.IsNaN(ToNumber(Nothing)) {
		t.Errorf("ToNumber(Nothing) should be NaN")
	}
	if !math.IsNaN(ToNumber(String("abc"))) {
		t.Errorf("ToNumber(unparseable string) should be NaN")
	}
}

func TestToStringCoercions(t *testing.T) {
	if ToString(Bool(true)) != "True" || ToString(Bool(false)) != "False" {
		t.Errorf("boolean toString mismatch")
	}
	if ToString(Number(42)) != "42" {
		t.Errorf("got %q, want 42", ToString(Number(42)))
	}
	if ToString(Empty) != "" || ToString(Nothing) != "" {
		t.Errorf("Empty/Nothing should stringify to empty string")
	}
}

func TestToBooleanCoercions(t *testing.T) {
	falsy := []Value{Empty, Nothing, Number(0), String(""), String("false")}
	for _, v := range falsy {
		if ToBoolean(v) {
			t.Errorf("ToBoolean(%+v) should be false", v)
		}
	}
	truthy := []Value{Number(1), String("true"), String("x")}
	for _, v := range truthy {
		if !ToBoolean(v) {
			t.Errorf("ToBoolean(%+v) should be true", v)
		}
	}
}

func TestToBooleanRoundTripLaw(t *testing.T) {
	// spec.md §8: toBoolean(toBoolean(v) ? -1 : 0) == toBoolean(v)
	values := []Value{Empty, Nothing, Number(0), Number(5), String(""), String("x")}
	for _, v := range values {
		b := ToBoolean(v)
		n := 0.0
		if b {
			n = -1
		}
		if ToBoolean(Number(n)) != b {
			t.Errorf("round-trip law failed for %+v", v)
		}
	}
}

func TestNumberStringRoundTripLaw(t *testing.T) {
	for _, n := range []float64{0, 1, -1, 42, 3} {
		s := ToString(Number(n))
		if s2 := ToString(Number(ToNumber(String(s)))); s2 != s {
			t.Errorf("round-trip law failed for %v: %q != %q", n, s, s2)
		}
	}
}

func TestAddStringConcatVsNumeric(t *testing.T) {
	r := Add(String("1"), String("2"))
	if r.Kind != KindString || r.Str != "12" {
		t.Errorf("string+string should concat, got %+v", r)
	}
	r2 := Add(Number(1), String("2"))
	if r2.Kind != KindNumber || r2.Num != 3 {
		t.Errorf("number+string should add numerically, got %+v", r2)
	}
}

func TestConcatAlwaysString(t *testing.T) {
	r := Concat(String("Hello"), String(" World"))
	if ToString(r) != "Hello World" {
		t.Errorf("got %q", ToString(r))
	}
}

func TestIntDivAndModDivisionByZero(t *testing.T) {
	if _, err := IntDiv(Number(5), Number(0)); err != ErrDivisionByZero {
		t.Errorf("expected ErrDivisionByZero, got %v", err)
	}
	if _, err := Mod(Number(5), Number(0)); err != ErrDivisionByZero {
		t.Errorf("expected ErrDivisionByZero, got %v", err)
	}
	q, err := IntDiv(Number(7), Number(2))
	if err != nil || q.Num != 3 {
		t.Errorf("7\\2 = %+v, err=%v", q, err)
	}
	m, err := Mod(Number(7), Number(2))
	if err != nil || m.Num != 1 {
		t.Errorf("7 Mod 2 = %+v, err=%v", m, err)
	}
}

func TestCompareNumericVsLexicographic(t *testing.T) {
	if Compare(Number(2), Number(10)) >= 0 {
		t.Errorf("numeric compare should treat 2 < 10")
	}
	if Compare(String("2"), String("10")) <= 0 {
		t.Errorf("lexicographic compare should treat \"2\" > \"10\"")
	}
}

func TestCompareMixedNumberAndNumericString(t *testing.T) {
	if Compare(Number(9), String("10")) >= 0 {
		t.Errorf("Number(9) vs String(\"10\") should coerce numerically and treat 9 < 10")
	}
	if Compare(String("10"), Number(9)) <= 0 {
		t.Errorf("String(\"10\") vs Number(9) should coerce numerically and treat 10 > 9")
	}
}

func TestDateRoundTrip(t *testing.T) {
	d := Date(44000.5)
	t2 := oleToTime(d.Num)
	back := timeToOLE(t2)
	if math.Abs(back-44000.5) > 1e-6 {
		t.Errorf("date round trip mismatch: %v != %v", back, 44000.5)
	}
}

func TestToIntegerClamp(t *testing.T) {
	if ToInteger(Number(1e9)) != math.MaxInt16 {
		t.Errorf("expected clamp to MaxInt16, got %v", ToInteger(Number(1e9)))
	}
}
