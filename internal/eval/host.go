// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package eval implements the tree-walking evaluator over internal/ast,
// dispatching on each node's Kind tag (spec.md §4.I "Evaluator"), grounded
// on the dispatch-table evaluation style used for moby's build-stage
// instruction evaluation.
package eval

import "github.com/saferwall/vbaproj/internal/value"

// HostAPI is the pluggable interface through which the evaluator reaches
// document-model objects it does not itself implement (spec.md §6
// "Public API"). Indexed access is optional: a host that supports it also
// implements IndexedHostAPI; for a host that doesn't, indexing one of its
// objects fails with ErrNotImplemented.
type HostAPI interface {
	GetGlobalObject(name string) (value.Value, bool)
	GetProperty(obj value.Value, name string) (value.Value, error)
	SetProperty(obj value.Value, name string, v value.Value) error
	CallMethod(obj value.Value, name string, args []value.Value) (value.Value, error)
}

// IndexedHostAPI is an optional extension to HostAPI for hosts that
// support indexed access on their objects (spec.md §6).
type IndexedHostAPI interface {
	GetIndexed(obj value.Value, index []value.Value) (value.Value, error)
	SetIndexed(obj value.Value, index []value.Value, v value.Value) error
}
