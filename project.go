// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package vbaproj

import (
	"encoding/binary"
	"fmt"
	"regexp"
	"strings"

	"github.com/saferwall/vbaproj/internal/bitstream"
	"github.com/saferwall/vbaproj/internal/cfb"
	"github.com/saferwall/vbaproj/internal/codepage"
	"github.com/saferwall/vbaproj/internal/directory"
	"github.com/saferwall/vbaproj/internal/vbalog"
)

// ParseOptions controls project ingest (spec.md §4.E "Strict vs tolerant
// mode"). In strict mode any per-module decoding or parsing failure
// propagates; in tolerant mode it is downgraded to a warning and the module
// is skipped.
type ParseOptions struct {
	Strict bool

	// Logger, if set, additionally receives every tolerant-mode warning as
	// it is produced. Nil is valid: warnings are still collected and
	// returned, just not logged as they happen.
	Logger vbalog.Logger
}

// SerializeOptions controls project emit (spec.md §4.E "Emit").
type SerializeOptions struct {
	// CodePage selects the text encoding used for every module stream.
	// Zero selects the default (Western, windows-1252).
	CodePage int
}

// WarningKind classifies a tolerant-mode ingest warning (spec.md §4.E
// "Strict vs tolerant mode").
type WarningKind int

const (
	WarnSignature WarningKind = iota
	WarnStreamMissing
	WarnModuleSkipped
	WarnFallbackRecovered
)

func (k WarningKind) String() string {
	switch k {
	case WarnSignature:
		return "signature"
	case WarnStreamMissing:
		return "stream-missing"
	case WarnModuleSkipped:
		return "module-skipped"
	case WarnFallbackRecovered:
		return "fallback-recovered"
	default:
		return "unknown"
	}
}

// Warning is one tolerant-mode ingest warning: what went wrong, and which
// module (if any) it concerns. Module is empty for project-wide warnings.
type Warning struct {
	Kind    WarningKind
	Message string
	Module  string
}

func (w Warning) String() string { return w.Message }

// ParseProject orchestrates the container, bitstream, directory, and
// code-page layers to ingest a Program IR from a compound-file project
// (spec.md §4.E "Ingest"). Per-module failures are downgraded to warnings
// only in tolerant mode; signature and fallback-recovery warnings can be
// returned in either mode.
func ParseProject(data []byte, opts ParseOptions) (*Program, []Warning, error) {
	r, err := cfb.OpenBytes(data)
	if err != nil {
		return nil, nil, parseError("", err)
	}
	defer r.Close()

	var warnings []Warning
	warn := func(kind WarningKind, module, format string, args ...interface{}) {
		msg := fmt.Sprintf(format, args...)
		warnings = append(warnings, Warning{Kind: kind, Message: msg, Module: module})
		if opts.Logger != nil {
			opts.Logger.Log(vbalog.LevelWarn, "kind", kind, "module", module, "msg", msg)
		}
	}

	var projMeta projectText
	if raw, err := r.Stream("PROJECT"); err == nil {
		projMeta = parseProjectText(string(raw))
	} else if opts.Strict {
		return nil, warnings, parseError("PROJECT", err)
	} else {
		warn(WarnStreamMissing, "", "PROJECT stream missing or unreadable: %v", err)
	}

	dirRaw, err := r.Stream("VBA", "dir")
	if err != nil {
		return nil, warnings, parseError("VBA/dir", err)
	}
	dirDecompressed, err := bitstream.Decompress(dirRaw)
	if err != nil {
		return nil, warnings, parseError("VBA/dir", err)
	}
	dirResult, err := directory.Parse(dirDecompressed)
	if err != nil {
		return nil, warnings, parseError("VBA/dir", err)
	}

	cp := dirResult.Project.CodePage
	if cp == 0 {
		cp = codepage.DefaultCodePage
	}

	program := &Program{
		Project: ProjectInfo{
			Name:         dirResult.Project.Name,
			HelpFile:     dirResult.Project.HelpFile,
			HelpContext:  dirResult.Project.HelpContext,
			Constants:    dirResult.Project.Constants,
			VersionMajor: dirResult.Project.VersionMajor,
			VersionMinor: dirResult.Project.VersionMinor,
		},
	}
	if program.Project.Name == "" {
		program.Project.Name = projMeta.name
	}
	if program.Project.HelpFile == "" {
		program.Project.HelpFile = projMeta.helpFile
	}
	detectSignature(r, &program.Project, warn)

	for _, ref := range dirResult.References {
		program.References = append(program.References, Reference{
			Name: ref.Name, Libid: ref.Libid, Kind: ReferenceKind(ref.Kind),
		})
	}

	for _, mod := range dirResult.Modules {
		m, err := ingestModule(r, mod, cp)
		if err != nil {
			if opts.Strict {
				return nil, warnings, parseError(mod.StreamName, err)
			}
			warn(WarnModuleSkipped, mod.Name, "module %q skipped: %v", mod.Name, err)
			continue
		}
		program.Modules = append(program.Modules, *m)
	}

	if len(program.Modules) == 0 {
		fallback, err := fallbackDiscoverModules(r, cp, warn)
		if err != nil && opts.Strict {
			return nil, warnings, parseError("VBA", err)
		}
		program.Modules = fallback
	}

	return program, warnings, nil
}

// signatureStreamNames lists the sibling stream names real-world documents
// occasionally use to hold a project's Authenticode-style PKCS#7 signature
// blob (spec.md §4.B "enumerate children of a storage"; SPEC_FULL.md §2).
var signatureStreamNames = [][]string{
	{"_VBA_PROJECT_CUR"},
	{"__SRP_0"},
	{"__SRP_2"},
}

// detectSignature looks for any of the known signature-blob stream
// locations and, if one parses as PKCS#7, records presence and verification
// result on info. Absence or a parse failure is not an error: signature
// inspection is diagnostic only and never gates ingest.
func detectSignature(r *cfb.Reader, info *ProjectInfo, warn func(kind WarningKind, module, format string, args ...interface{})) {
	for _, path := range signatureStreamNames {
		raw, err := r.Stream(path...)
		if err != nil {
			continue
		}
		blob, err := cfb.ParseSignatureBlob(raw)
		if err != nil {
			continue
		}
		info.Signed = true
		if err := cfb.VerifySignature(blob); err != nil {
			warn(WarnSignature, "", "signature present but did not verify: %v", err)
			info.Verified = false
		} else {
			info.Verified = true
		}
		return
	}
}

func ingestModule(r *cfb.Reader, mod directory.Module, cp int) (*Module, error) {
	raw, err := r.Stream("VBA", mod.StreamName)
	if err != nil {
		return nil, err
	}
	if int(mod.TextOffset) > len(raw) {
		return nil, fmt.Errorf("vbaproj: text offset %d beyond stream length %d", mod.TextOffset, len(raw))
	}
	decompressed, err := bitstream.Decompress(raw[mod.TextOffset:])
	if err != nil {
		return nil, err
	}
	text, err := codepage.Decode(decompressed, cp)
	if err != nil {
		return nil, err
	}
	return &Module{
		Name:       mod.Name,
		Type:       refineModuleType(mod.Type, text),
		Source:     text,
		TextOffset: mod.TextOffset,
		Procedures: regexScanProcedures(text),
	}, nil
}

// refineModuleType implements spec.md §4.E step 3: the on-wire indicator
// only distinguishes Procedural (always Standard) from Document; Class and
// Form are recovered by inspecting the decoded source.
var formHeaderRe = regexp.MustCompile(`(?is)^\s*VERSION\s+[\d.]+.*?Begin\s+\{[0-9A-Fa-f-]+\}`)

var classAttributes = []string{"Attribute VB_PredeclaredId", "Attribute VB_Exposed"}

func refineModuleType(wire directory.ModuleType, source string) ModuleType {
	if wire == directory.ModuleProcedural {
		return ModuleStandard
	}
	if formHeaderRe.MatchString(source) {
		return ModuleForm
	}
	for _, attr := range classAttributes {
		if strings.Contains(source, attr) {
			return ModuleClass
		}
	}
	return ModuleDocument
}

// fallbackDiscoverModules implements spec.md §4.E step 4 and §9's "Open
// questions" item: directory parsing yielded no modules, so every stream
// under the VBA storage is scanned for a candidate compressed start, tried
// latest-first until one decompresses. Every module recovered this way logs
// a warning, since the heuristic has no structural guarantee of correctness.
func fallbackDiscoverModules(r *cfb.Reader, cp int, warn func(kind WarningKind, module, format string, args ...interface{})) ([]Module, error) {
	names, err := r.Enumerate("VBA")
	if err != nil {
		return nil, err
	}
	var mods []Module
	for _, name := range names {
		if name == "dir" || name == "_VBA_PROJECT" {
			continue
		}
		data, err := r.Stream("VBA", name)
		if err != nil {
			continue
		}
		starts := candidateCompressedStarts(data)
		for i := len(starts) - 1; i >= 0; i-- {
			decompressed, err := bitstream.Decompress(data[starts[i]:])
			if err != nil {
				continue
			}
			text, err := codepage.Decode(decompressed, cp)
			if err != nil {
				continue
			}
			warn(WarnFallbackRecovered, name, "module %q recovered via fallback compressed-start scan at offset %d", name, starts[i])
			mods = append(mods, Module{
				Name:       name,
				Type:       refineModuleType(directory.ModuleDocument, text),
				Source:     text,
				TextOffset: uint32(starts[i]),
				Procedures: regexScanProcedures(text),
			})
			break
		}
	}
	return mods, nil
}

// candidateCompressedStarts returns every offset at which the bitstream
// signature byte is followed by a header whose 3-bit signature field
// equals 0b011, i.e. every plausible chunk start (spec.md §4.A, §4.E step
// 4).
func candidateCompressedStarts(data []byte) []int {
	var out []int
	for i := 0; i+3 <= len(data); i++ {
		if data[i] != bitstream.Signature {
			continue
		}
		hdr := binary.LittleEndian.Uint16(data[i+1:])
		if (hdr>>12)&0x7 == 0b011 {
			out = append(out, i)
		}
	}
	return out
}

// procSignatureRe locates Sub/Function/Property declarations without
// parsing the rest of the module (spec.md §4.E step 5: "light regex-scan...
// extracting signatures only; bodies are not parsed at ingest time").
var procSignatureRe = regexp.MustCompile(`(?im)^[ \t]*(Private[ \t]+|Public[ \t]+|Friend[ \t]+)?(Static[ \t]+)?(Sub|Function|Property[ \t]+(?:Get|Let|Set))[ \t]+([A-Za-z_][A-Za-z0-9_]*)[ \t]*\(([^)]*)\)(?:[ \t]+As[ \t]+([A-Za-z_][A-Za-z0-9_.]*))?`)

var paramSignatureRe = regexp.MustCompile(`(?i)^\s*(Optional\s+)?(ByVal\s+|ByRef\s+)?(ParamArray\s+)?([A-Za-z_][A-Za-z0-9_]*)\s*(\(\s*\))?\s*(?:As\s+([A-Za-z_][A-Za-z0-9_.]*))?\s*(?:=\s*(.*?))?\s*$`)

func regexScanProcedures(source string) []Procedure {
	var procs []Procedure
	for _, m := range procSignatureRe.FindAllStringSubmatch(source, -1) {
		p := Procedure{Name: m[4]}
		if strings.EqualFold(strings.TrimSpace(m[1]), "private") {
			p.Visibility = Private
		}
		switch strings.ToLower(strings.Join(strings.Fields(m[3]), " ")) {
		case "sub":
			p.Kind = ProcSub
		case "function":
			p.Kind = ProcFunction
			p.ReturnType = NewTypeName(m[6])
		case "property get":
			p.Kind = ProcPropertyGet
			p.ReturnType = NewTypeName(m[6])
		case "property let":
			p.Kind = ProcPropertyLet
		case "property set":
			p.Kind = ProcPropertySet
		}
		p.Params = parseParamSignatures(m[5])
		procs = append(procs, p)
	}
	return procs
}

func parseParamSignatures(raw string) []Parameter {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var params []Parameter
	for _, part := range strings.Split(raw, ",") {
		m := paramSignatureRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		param := Parameter{
			Name:         m[4],
			ByRef:        !strings.EqualFold(strings.TrimSpace(m[2]), "byval"),
			Optional:     strings.TrimSpace(m[1]) != "",
			IsParamArray: strings.TrimSpace(m[3]) != "",
			TypeName:     NewTypeName(m[6]),
			Default:      m[7],
		}
		params = append(params, param)
	}
	return params
}

// projectText is the subset of the PROJECT stream's INI-like text this
// package reads; additional sections are accepted on ingest but ignored,
// per spec.md §6.
type projectText struct {
	name     string
	helpFile string
}

func parseProjectText(text string) projectText {
	var pt projectText
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "[") {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.Trim(strings.TrimSpace(line[eq+1:]), `"`)
		switch strings.ToLower(key) {
		case "name":
			pt.name = val
		case "helpfile":
			pt.helpFile = val
		}
	}
	return pt
}

// SerializeProject orchestrates the reverse of ParseProject: it serializes
// the PROJECT text stream, compresses each module's source, builds and
// compresses the directory stream, and writes a minimal version-header
// stream, all via the compound-container writer (spec.md §4.E "Emit").
func SerializeProject(p *Program, opts SerializeOptions) ([]byte, error) {
	cp := opts.CodePage
	if cp == 0 {
		cp = codepage.DefaultCodePage
	}

	streams := map[string][]byte{
		"PROJECT": []byte(serializeProjectText(p)),
	}

	dirResult := &directory.Result{
		Project: directory.ProjectInfo{
			CodePage:     cp,
			Name:         p.Project.Name,
			HelpFile:     p.Project.HelpFile,
			HelpContext:  p.Project.HelpContext,
			VersionMajor: p.Project.VersionMajor,
			VersionMinor: p.Project.VersionMinor,
			Constants:    p.Project.Constants,
		},
	}
	for _, ref := range p.References {
		dirResult.References = append(dirResult.References, directory.Reference{
			Name: ref.Name, Libid: ref.Libid, Kind: directory.ReferenceKind(ref.Kind),
		})
	}

	for _, m := range p.Modules {
		encoded, err := codepage.Encode(m.Source, cp)
		if err != nil {
			return nil, encodingError(m.Name, err)
		}
		streams[cfb.JoinPath("VBA", m.Name)] = bitstream.Compress(encoded)

		wireType := directory.ModuleDocument
		if m.Type == ModuleStandard {
			wireType = directory.ModuleProcedural
		}
		dirResult.Modules = append(dirResult.Modules, directory.Module{
			Name: m.Name, StreamName: m.Name, Type: wireType,
		})
	}

	dirBytes := directory.Serialize(dirResult)
	streams[cfb.JoinPath("VBA", "dir")] = bitstream.Compress(dirBytes)

	// Minimal fixed version-header stream (spec.md §6): magic 0x61CC LE,
	// version 0xFFFF LE, two reserved bytes.
	streams[cfb.JoinPath("VBA", "_VBA_PROJECT")] = []byte{0xCC, 0x61, 0xFF, 0xFF, 0x00, 0x00}

	return cfb.Build(streams), nil
}

func serializeProjectText(p *Program) string {
	var b strings.Builder
	b.WriteString("ID=\"{00000000-0000-0000-0000-000000000000}\"\r\n")
	for _, m := range p.Modules {
		switch m.Type {
		case ModuleStandard:
			fmt.Fprintf(&b, "Module=%s\r\n", m.Name)
		case ModuleClass:
			fmt.Fprintf(&b, "Class=%s\r\n", m.Name)
		case ModuleForm:
			fmt.Fprintf(&b, "BaseClass=%s\r\n", m.Name)
		case ModuleDocument:
			fmt.Fprintf(&b, "Document=%s/&H00000000\r\n", m.Name)
		}
	}
	fmt.Fprintf(&b, "Name=\"%s\"\r\n", p.Project.Name)
	if p.Project.HelpFile != "" {
		fmt.Fprintf(&b, "HelpFile=\"%s\"\r\n", p.Project.HelpFile)
	}
	fmt.Fprintf(&b, "HelpContext=%d\r\n", p.Project.HelpContext)
	return b.String()
}
