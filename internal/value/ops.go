// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package value

import (
	"errors"
	"math"
	"strings"
)

// ErrDivisionByZero is raised by integer-divide and Mod when the divisor
// truncates to zero (spec.md §4.G).
var ErrDivisionByZero = errors.New("division by zero")

// Add implements "+": string concatenation when both operands are
// strings, otherwise numeric addition (spec.md §4.G).
func Add(a, b Value) Value {
	if a.Kind == KindString && b.Kind == KindString {
		return String(a.Str + b.Str)
	}
	return Number(ToNumber(a) + ToNumber(b))
}

// Sub implements numeric "-".
func Sub(a, b Value) Value { return Number(ToNumber(a) - ToNumber(b)) }

// Mul implements numeric "*".
func Mul(a, b Value) Value { return Number(ToNumber(a) * ToNumber(b)) }

// Div implements floating-point "/".
func Div(a, b Value) Value { return Number(ToNumber(a) / ToNumber(b)) }

// Concat implements "&": always string concatenation.
func Concat(a, b Value) Value { return String(ToString(a) + ToString(b)) }

// IntDiv implements "\": 32-bit truncating integer division.
func IntDiv(a, b Value) (Value, error) {
	db := int32(truncToInt(ToNumber(b)))
	if db == 0 {
		return Value{}, ErrDivisionByZero
	}
	da := int32(truncToInt(ToNumber(a)))
	return Number(float64(da / db)), nil
}

// Mod implements 32-bit truncating modulo.
func Mod(a, b Value) (Value, error) {
	db := int32(truncToInt(ToNumber(b)))
	if db == 0 {
		return Value{}, ErrDivisionByZero
	}
	da := int32(truncToInt(ToNumber(a)))
	return Number(float64(da % db)), nil
}

func truncToInt(n float64) float64 {
	if math.IsNaN(n) {
		return 0
	}
	return math.Trunc(n)
}

// Pow implements "^".
func Pow(a, b Value) Value {
	return Number(math.Pow(ToNumber(a), ToNumber(b)))
}

// Neg implements unary "-".
func Neg(a Value) Value { return Number(-ToNumber(a)) }

// Not implements logical/bitwise Not: bitwise on numeric operands, boolean
// negation on boolean operands (spec.md §4.G, §9 "Short-circuit").
func Not(a Value) Value {
	if a.Kind == KindBoolean {
		return Bool(!a.IsTrue())
	}
	n := int32(truncToInt(ToNumber(a)))
	return Number(float64(^n))
}

// And implements bitwise/boolean And. Per spec.md §9, numeric operands are
// never short-circuited; both sides are always evaluated by the caller
// before this function runs.
func And(a, b Value) Value {
	if a.Kind == KindBoolean && b.Kind == KindBoolean {
		return Bool(a.IsTrue() && b.IsTrue())
	}
	na := int32(truncToInt(ToNumber(a)))
	nb := int32(truncToInt(ToNumber(b)))
	return Number(float64(na & nb))
}

// Or implements bitwise/boolean Or.
func Or(a, b Value) Value {
	if a.Kind == KindBoolean && b.Kind == KindBoolean {
		return Bool(a.IsTrue() || b.IsTrue())
	}
	na := int32(truncToInt(ToNumber(a)))
	nb := int32(truncToInt(ToNumber(b)))
	return Number(float64(na | nb))
}

// Xor implements bitwise/boolean Xor.
func Xor(a, b Value) Value {
	if a.Kind == KindBoolean && b.Kind == KindBoolean {
		return Bool(a.IsTrue() != b.IsTrue())
	}
	na := int32(truncToInt(ToNumber(a)))
	nb := int32(truncToInt(ToNumber(b)))
	return Number(float64(na ^ nb))
}

// Eqv implements logical/bitwise equivalence (negated Xor).
func Eqv(a, b Value) Value {
	if a.Kind == KindBoolean && b.Kind == KindBoolean {
		return Bool(a.IsTrue() == b.IsTrue())
	}
	na := int32(truncToInt(ToNumber(a)))
	nb := int32(truncToInt(ToNumber(b)))
	return Number(float64(^(na ^ nb)))
}

// Imp implements logical/bitwise implication.
func Imp(a, b Value) Value {
	if a.Kind == KindBoolean && b.Kind == KindBoolean {
		return Bool(!a.IsTrue() || b.IsTrue())
	}
	na := int32(truncToInt(ToNumber(a)))
	nb := int32(truncToInt(ToNumber(b)))
	return Number(float64((^na) | nb))
}

// numericComparable reports whether a and b should compare numerically:
// not both operands are String (a String/String pair always compares
// lexicographically, even when both look numeric, e.g. "2" vs "10"), and
// both actually coerce to a number (neither's ToNumber is NaN) — so a
// Number against a numeric String ("10") compares numerically, but a
// Number against a non-numeric String falls back to lexicographic rather
// than collapsing to an always-equal NaN compare (spec.md §4.G
// "Comparison": "Numeric when both coerce to numbers").
func numericComparable(a, b Value, na, nb float64) bool {
	if a.Kind == KindString && b.Kind == KindString {
		return false
	}
	return !math.IsNaN(na) && !math.IsNaN(nb)
}

// Compare returns -1, 0, or 1 per spec.md §4.G's comparison rule.
func Compare(a, b Value) int {
	na, nb := ToNumber(a), ToNumber(b)
	if numericComparable(a, b, na, nb) {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	sa, sb := strings.ToLower(ToString(a)), strings.ToLower(ToString(b))
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

// Equal implements "=".
func Equal(a, b Value) bool { return Compare(a, b) == 0 }
