// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package vbaproj

import "github.com/saferwall/vbaproj/internal/eval"

// HostAPI is the interface a host object model (spreadsheet/word-processor
// bindings, or any other external object model) implements to answer
// identifier lookups, property access, and method calls the evaluator
// cannot resolve on its own (spec.md §6 "HostApi").
type HostAPI = eval.HostAPI

// IndexedHostAPI is the optional extension a HostAPI implements to support
// indexing into a host object (spec.md §6: "getIndexed?, setIndexed?").
type IndexedHostAPI = eval.IndexedHostAPI
