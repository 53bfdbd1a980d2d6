// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package builtin implements the case-insensitive name→function table of
// built-in procedures named in spec.md §4.J. Table returns a fresh map
// suitable for eval.Options.Builtins; it builds a new map on every call,
// so each Context gets its own map and nothing here is shared mutable
// state.
package builtin

import "github.com/saferwall/vbaproj/internal/eval"

// Table returns the full builtin registry, keyed by lowercase name.
func Table() map[string]eval.BuiltinFunc {
	t := map[string]eval.BuiltinFunc{}
	registerMath(t)
	registerString(t)
	registerType(t)
	registerDate(t)
	registerArray(t)
	registerUtility(t)
	registerInteraction(t)
	return t
}

func arityError(name string) error {
	return &eval.RuntimeError{Err: eval.ErrInvalidProcedureCall, Name: name}
}
