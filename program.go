// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package vbaproj reads, evaluates, and writes the persisted form of a
// legacy macro project embedded inside office documents: the compound
// container and its compressed directory/module streams, and the
// recursive-descent front end plus tree-walking evaluator for the macro
// source language itself. See SPEC_FULL.md for the full component map.
package vbaproj

// ModuleType classifies a module's refined purpose, after the project
// assembler inspects its source for VERSION/designer/class attributes
// (spec.md §3, §4.E step 3). On the wire only Procedural/Document are
// distinguished; Class and Form are both encoded as Document and refined
// here.
type ModuleType int

const (
	ModuleStandard ModuleType = iota
	ModuleClass
	ModuleForm
	ModuleDocument
)

func (t ModuleType) String() string {
	switch t {
	case ModuleStandard:
		return "Standard"
	case ModuleClass:
		return "Class"
	case ModuleForm:
		return "Form"
	case ModuleDocument:
		return "Document"
	default:
		return "Unknown"
	}
}

// ReferenceKind distinguishes the three reference shapes a project can
// carry (spec.md §3).
type ReferenceKind int

const (
	ReferenceRegistered ReferenceKind = iota
	ReferenceProject
	ReferenceControl
)

// ProjectInfo is the Program IR's project-level metadata (spec.md §3).
type ProjectInfo struct {
	Name         string
	HelpFile     string
	HelpContext  uint32
	Constants    string
	VersionMajor uint32
	VersionMinor uint32

	// Signed and Verified report on an optional Authenticode-style PKCS#7
	// signature blob found in a sibling stream. Signed is false whenever no
	// such stream is present; Verified is only meaningful when Signed is
	// true, and never gates ingest either way.
	Signed   bool
	Verified bool
}

// Reference is one entry of a project's reference list (spec.md §3).
type Reference struct {
	Name  string
	Libid string
	Kind  ReferenceKind
}

// ProcKind is the procedure shape named in spec.md §3.
type ProcKind int

const (
	ProcSub ProcKind = iota
	ProcFunction
	ProcPropertyGet
	ProcPropertyLet
	ProcPropertySet
)

func (k ProcKind) String() string {
	switch k {
	case ProcSub:
		return "Sub"
	case ProcFunction:
		return "Function"
	case ProcPropertyGet:
		return "Property Get"
	case ProcPropertyLet:
		return "Property Let"
	case ProcPropertySet:
		return "Property Set"
	default:
		return "Unknown"
	}
}

// Visibility is a procedure's declared access (spec.md §3).
type Visibility int

const (
	Public Visibility = iota
	Private
)

// primitiveTypeNames is the fixed set of declared-type spellings that are
// not a reference to a user-defined class/type (spec.md §3 "Type name").
var primitiveTypeNames = map[string]bool{
	"": true, "variant": true, "boolean": true, "byte": true, "integer": true,
	"long": true, "single": true, "double": true, "currency": true,
	"date": true, "string": true, "object": true, "error": true,
}

// TypeName is a declared type: either one of the fixed primitive spellings
// or a reference to a user-defined class/type, carried verbatim.
type TypeName struct {
	Name        string
	UserDefined bool
}

// NewTypeName classifies a raw declared-type spelling (spec.md §3).
func NewTypeName(raw string) TypeName {
	return TypeName{Name: raw, UserDefined: !primitiveTypeNames[lowerASCII(raw)]}
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}

// Parameter is one formal parameter of a procedure (spec.md §3).
type Parameter struct {
	Name         string
	TypeName     TypeName
	ByRef        bool // ByRef is the language default
	Optional     bool
	Default      string // stored verbatim as text, per spec.md §3
	IsParamArray bool
}

// Procedure is metadata only: name, kind, visibility, signature. Bodies are
// not retained in the Program IR (spec.md §3); they are reparsed on demand
// via ParseProcedureBody against a Module's Source.
type Procedure struct {
	Name       string
	Kind       ProcKind
	Visibility Visibility
	Params     []Parameter
	ReturnType TypeName // only meaningful for Function / PropertyGet
}

// Module is one module of a project: its decoded source text plus the
// lightweight procedure signatures the assembler extracted at ingest
// (spec.md §3, §4.E step 5).
type Module struct {
	Name       string
	Type       ModuleType
	Source     string
	TextOffset uint32
	Procedures []Procedure
}

// Program is the Program IR: the parsed, in-memory form of a macro project
// (spec.md §3).
type Program struct {
	Project    ProjectInfo
	Modules    []Module
	References []Reference
}
