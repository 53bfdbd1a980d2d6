// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package directory

import "testing"

func sampleResult() *Result {
	return &Result{
		Project: ProjectInfo{
			SysKind:      0,
			LCID:         0x0409,
			CodePage:     1252,
			Name:         "TestProject",
			DocString:    "",
			HelpFile:     "",
			HelpContext:  0,
			VersionMajor: 1,
			VersionMinor: 0,
		},
		References: []Reference{
			{Name: "stdole", Libid: "*\\G{00020430-0000-0000-C000-000000000046}#2.0#0#C:\\stdole2.tlb#OLE Automation", Kind: ReferenceRegistered},
		},
		Modules: []Module{
			{Name: "Module1", StreamName: "Module1", TextOffset: 123, Type: ModuleProcedural},
			{Name: "ThisDocument", StreamName: "ThisDocument", TextOffset: 456, Type: ModuleDocument},
		},
	}
}

func TestSerializeParseRoundTrip(t *testing.T) {
	want := sampleResult()
	data := Serialize(want)
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Project.Name != want.Project.Name {
		t.Errorf("project name: got %q, want %q", got.Project.Name, want.Project.Name)
	}
	if got.Project.CodePage != want.Project.CodePage {
		t.Errorf("code page: got %d, want %d", got.Project.CodePage, want.Project.CodePage)
	}
	if len(got.Modules) != len(want.Modules) {
		t.Fatalf("modules: got %d, want %d", len(got.Modules), len(want.Modules))
	}
	for i, m := range want.Modules {
		if got.Modules[i].Name != m.Name {
			t.Errorf("module %d name: got %q, want %q", i, got.Modules[i].Name, m.Name)
		}
		if got.Modules[i].Type != m.Type {
			t.Errorf("module %d type: got %v, want %v", i, got.Modules[i].Type, m.Type)
		}
		if got.Modules[i].TextOffset != m.TextOffset {
			t.Errorf("module %d offset: got %d, want %d", i, got.Modules[i].TextOffset, m.TextOffset)
		}
	}
	if len(got.References) != 1 || got.References[0].Name != "stdole" {
		t.Errorf("references: got %+v", got.References)
	}
}

func TestParseToleratesUnknownRecords(t *testing.T) {
	want := sampleResult()
	data := Serialize(want)
	// Prepend an unrecognized record with a well-formed size field at the
	// start of the stream, ahead of the project-information section.
	injected := putRecord(nil, 0x00FF, []byte("unknown"))
	data = append(data[:0:0], append(injected, data...)...)
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse with leading unknown record: %v", err)
	}
	if got.Project.Name != want.Project.Name {
		t.Errorf("got %q, want %q", got.Project.Name, want.Project.Name)
	}
}

func TestParseEmptyStream(t *testing.T) {
	got, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if got.Project.Name != "" || len(got.Modules) != 0 {
		t.Fatalf("expected zero-value result, got %+v", got)
	}
}
