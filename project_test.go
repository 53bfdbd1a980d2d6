// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package vbaproj

import (
	"testing"

	"github.com/saferwall/vbaproj/internal/directory"
)

func TestParseProjectText(t *testing.T) {
	text := "ID=\"{GUID}\"\r\nName=\"MyProject\"\r\nHelpFile=\"proj.chm\"\r\n[VBA]\r\nModule=Module1\r\n"
	pt := parseProjectText(text)
	if pt.name != "MyProject" {
		t.Errorf("name = %q, want %q", pt.name, "MyProject")
	}
	if pt.helpFile != "proj.chm" {
		t.Errorf("helpFile = %q, want %q", pt.helpFile, "proj.chm")
	}
}

func TestRefineModuleTypeForm(t *testing.T) {
	src := "VERSION 5.00\r\nBegin {C62A69F0-16DC-11CE-9E98-00AA00574A4F} UserForm1 \r\nEnd\r\n"
	got := refineModuleType(directory.ModuleDocument, src)
	if got != ModuleForm {
		t.Errorf("refineModuleType = %v, want ModuleForm", got)
	}
}

func TestRefineModuleTypeClass(t *testing.T) {
	src := "Attribute VB_Name = \"Class1\"\r\nAttribute VB_Exposed = True\r\n"
	got := refineModuleType(directory.ModuleDocument, src)
	if got != ModuleClass {
		t.Errorf("refineModuleType = %v, want ModuleClass", got)
	}
}

func TestRefineModuleTypeDocumentFallback(t *testing.T) {
	src := "Attribute VB_Name = \"ThisWorkbook\"\r\n"
	got := refineModuleType(directory.ModuleDocument, src)
	if got != ModuleDocument {
		t.Errorf("refineModuleType = %v, want ModuleDocument", got)
	}
}

func TestRefineModuleTypeStandardIsWireDriven(t *testing.T) {
	got := refineModuleType(directory.ModuleProcedural, "Attribute VB_Exposed = True\r\n")
	if got != ModuleStandard {
		t.Errorf("refineModuleType = %v, want ModuleStandard", got)
	}
}

func TestRegexScanProcedures(t *testing.T) {
	src := "Private Sub Foo(ByVal x As Integer, Optional y As String = \"z\")\r\nEnd Sub\r\n" +
		"Public Function Bar() As Long\r\nEnd Function\r\n"
	procs := regexScanProcedures(src)
	if len(procs) != 2 {
		t.Fatalf("len(procs) = %d, want 2", len(procs))
	}

	foo := procs[0]
	if foo.Name != "Foo" || foo.Kind != ProcSub || foo.Visibility != Private {
		t.Errorf("Foo = %+v, unexpected", foo)
	}
	if len(foo.Params) != 2 {
		t.Fatalf("len(Foo.Params) = %d, want 2", len(foo.Params))
	}
	if foo.Params[0].Name != "x" || foo.Params[0].ByRef {
		t.Errorf("Foo.Params[0] = %+v, want ByVal x", foo.Params[0])
	}
	if !foo.Params[1].Optional || foo.Params[1].Name != "y" {
		t.Errorf("Foo.Params[1] = %+v, want Optional y", foo.Params[1])
	}

	bar := procs[1]
	if bar.Name != "Bar" || bar.Kind != ProcFunction || bar.ReturnType.Name != "Long" {
		t.Errorf("Bar = %+v, unexpected", bar)
	}
}

func TestCandidateCompressedStarts(t *testing.T) {
	data := []byte{0x00, 0x01, 0x00, 0x30, 0x00, 0x01, 0xFF, 0x00}
	starts := candidateCompressedStarts(data)
	if len(starts) != 1 || starts[0] != 1 {
		t.Fatalf("candidateCompressedStarts = %v, want [1]", starts)
	}
}

func TestWarningKindStrings(t *testing.T) {
	cases := map[WarningKind]string{
		WarnSignature:         "signature",
		WarnStreamMissing:     "stream-missing",
		WarnModuleSkipped:     "module-skipped",
		WarnFallbackRecovered: "fallback-recovered",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", kind, got, want)
		}
	}
}

func TestWarningCarriesKindAndModule(t *testing.T) {
	w := Warning{Kind: WarnModuleSkipped, Message: "module \"Bad\" skipped: boom", Module: "Bad"}
	if w.Module != "Bad" || w.Kind != WarnModuleSkipped {
		t.Errorf("unexpected Warning: %+v", w)
	}
	if w.String() != w.Message {
		t.Errorf("Warning.String() = %q, want %q", w.String(), w.Message)
	}
}

func TestSerializeThenParseProjectRoundTrip(t *testing.T) {
	src := "Attribute VB_Name = \"Module1\"\r\nPublic Sub DoIt()\r\nEnd Sub\r\n"
	prog := &Program{
		Project: ProjectInfo{Name: "RoundTrip", HelpContext: 0},
		Modules: []Module{
			{Name: "Module1", Type: ModuleStandard, Source: src},
		},
	}

	data, err := SerializeProject(prog, SerializeOptions{})
	if err != nil {
		t.Fatalf("SerializeProject: %v", err)
	}

	got, warnings, err := ParseProject(data, ParseOptions{Strict: true})
	if err != nil {
		t.Fatalf("ParseProject: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	if got.Project.Name != "RoundTrip" {
		t.Errorf("Project.Name = %q, want %q", got.Project.Name, "RoundTrip")
	}
	if len(got.Modules) != 1 {
		t.Fatalf("len(Modules) = %d, want 1", len(got.Modules))
	}
	if got.Modules[0].Source != src {
		t.Errorf("Modules[0].Source = %q, want %q", got.Modules[0].Source, src)
	}
	if got.Modules[0].Type != ModuleStandard {
		t.Errorf("Modules[0].Type = %v, want ModuleStandard", got.Modules[0].Type)
	}
	if len(got.Modules[0].Procedures) != 1 || got.Modules[0].Procedures[0].Name != "DoIt" {
		t.Errorf("Modules[0].Procedures = %+v, want one DoIt", got.Modules[0].Procedures)
	}
}
