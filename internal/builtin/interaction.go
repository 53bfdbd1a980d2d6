// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package builtin

import (
	"github.com/saferwall/vbaproj/internal/eval"
	"github.com/saferwall/vbaproj/internal/value"
)

// registerInteraction wires MsgBox/InputBox as side-effect-free stubs
// per spec.md §4.J: there is no UI in this runtime, so they return the
// legacy default responses (vbOK == 1, empty string) rather than blocking.
func registerInteraction(t map[string]eval.BuiltinFunc) {
	t["msgbox"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		return value.Number(1), nil // vbOK
	}
	t["inputbox"] = func(c *eval.Context, args []value.Value) (value.Value, error) {
		return value.String(""), nil
	}
}
