// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package directory

import (
	"encoding/binary"
	"errors"
	"unicode/utf16"
)

// ErrMalformedRecord is returned only for conditions the tolerant forward
// scan cannot recover from (the section-parsing loop itself never returns
// it; it exists for callers that want to treat directory corruption as
// fatal in strict mode).
var ErrMalformedRecord = errors.New("directory: malformed record")

// ProjectInfo is the directory stream's Project Information section.
type ProjectInfo struct {
	SysKind      uint32
	LCID         uint32
	CodePage     int
	Name         string
	DocString    string
	HelpFile     string
	HelpContext  uint32
	VersionMajor uint32
	VersionMinor uint32
	Constants    string
}

// Reference is one parsed reference entry (spec.md §4.C section 2).
type Reference struct {
	Name    string
	Libid   string // library identifier: path/GUID string depending on kind
	Kind    ReferenceKind
}

// Module is one parsed module descriptor (spec.md §4.C section 3).
type Module struct {
	Name       string
	StreamName string
	TextOffset uint32
	Type       ModuleType
}

// Result is the fully parsed directory stream.
type Result struct {
	Project    ProjectInfo
	References []Reference
	Modules    []Module
}

type record struct {
	id   uint16
	data []byte
}

// scanner reads records forward-only, skipping unknown ids using their size
// field, and tolerating truncation by stopping rather than failing.
type scanner struct {
	data []byte
	pos  int
}

func (s *scanner) next() (record, bool) {
	if s.pos+6 > len(s.data) {
		return record{}, false
	}
	id := binary.LittleEndian.Uint16(s.data[s.pos:])
	size := int32(binary.LittleEndian.Uint32(s.data[s.pos+2:]))
	if size < 0 || s.pos+6+int(size) > len(s.data) {
		// Negative or oversized size field: stop section parsing without
		// raising (tolerant parse), per spec.md §4.C Edge policies.
		return record{}, false
	}
	rec := record{id: id, data: s.data[s.pos+6 : s.pos+6+int(size)]}
	s.pos += 6 + int(size)
	return rec, true
}

func (s *scanner) peekID() (uint16, bool) {
	if s.pos+2 > len(s.data) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(s.data[s.pos:]), true
}

// scanForward skips stray bytes one at a time until a known id is found or
// the input is exhausted, per spec.md §4.C section 1 ("tolerates a small
// gap of stray bytes... by scanning forward one byte at a time").
func (s *scanner) scanForward(known map[uint16]bool) {
	for s.pos+2 <= len(s.data) {
		id, ok := s.peekID()
		if !ok || known[id] {
			return
		}
		s.pos++
	}
}

// Parse decodes a decompressed directory stream into a Result. Unknown
// record ids are skipped via their size field; missing expected records end
// their section rather than failing (tolerant parse throughout, per
// spec.md §4.C).
func Parse(data []byte) (*Result, error) {
	s := &scanner{data: data}
	res := &Result{}

	if err := parseProjectInfo(s, &res.Project); err != nil {
		return nil, err
	}
	parseReferences(s, res)
	parseModules(s, res)
	return res, nil
}

var projectInfoKnownIDs = map[uint16]bool{
	idPROJECTSYSKIND: true, idPROJECTLCID: true, idPROJECTCODEPAGE: true,
	idPROJECTNAME: true, idPROJECTDOCSTRING: true, idPROJECTHELPFILEPATH: true,
	idPROJECTHELPFILEPATH2: true, idPROJECTHELPCONTEXT: true, idPROJECTLIBFLAGS: true,
	idPROJECTVERSION: true, idPROJECTCONSTANTS: true,
	idREFERENCEREGISTERED: true, idREFERENCEPROJECT: true,
	idREFERENCENAME: true, idPROJECTMODULES: true,
}

func parseProjectInfo(s *scanner, info *ProjectInfo) error {
	for {
		id, ok := s.peekID()
		if !ok {
			return nil
		}
		switch id {
		case idPROJECTSYSKIND:
			rec, _ := s.next()
			if len(rec.data) >= 4 {
				info.SysKind = binary.LittleEndian.Uint32(rec.data)
			}
		case idPROJECTLCID:
			rec, _ := s.next()
			if len(rec.data) >= 4 {
				info.LCID = binary.LittleEndian.Uint32(rec.data)
			}
		case idPROJECTCODEPAGE:
			rec, _ := s.next()
			if len(rec.data) >= 2 {
				info.CodePage = int(binary.LittleEndian.Uint16(rec.data))
			}
		case idPROJECTNAME:
			rec, _ := s.next()
			info.Name = string(rec.data)
		case idPROJECTDOCSTRING:
			rec, _ := s.next()
			info.DocString = string(rec.data)
		case idPROJECTHELPFILEPATH:
			rec, _ := s.next()
			info.HelpFile = string(rec.data)
		case idPROJECTHELPFILEPATH2:
			s.next() // secondary help path, discarded (matches primary on encode)
		case idPROJECTHELPCONTEXT:
			rec, _ := s.next()
			if len(rec.data) >= 4 {
				info.HelpContext = binary.LittleEndian.Uint32(rec.data)
			}
		case idPROJECTLIBFLAGS:
			s.next()
		case idPROJECTVERSION:
			rec, _ := s.next()
			if len(rec.data) >= 6 {
				info.VersionMajor = binary.LittleEndian.Uint32(rec.data)
				info.VersionMinor = uint32(binary.LittleEndian.Uint16(rec.data[4:]))
			}
		case idPROJECTCONSTANTS:
			rec, _ := s.next()
			info.Constants = string(rec.data)
			return nil // section ends after the (optional) constants record
		case idREFERENCEREGISTERED, idREFERENCEPROJECT, idREFERENCENAME,
			idPROJECTMODULES:
			// We've crossed into the next section: Project Information has
			// no explicit terminator other than PROJECTCONSTANTS, so any
			// record belonging to the next section ends this one.
			return nil
		default:
			// Unknown id with a well-formed size: skip it like any other
			// unrecognized record (spec.md §4.C: "unknown record ids are
			// skipped using the size field").
			if _, ok := s.next(); ok {
				continue
			}
			// The size field didn't describe a record that fits in the
			// remaining bytes: these are stray bytes, not a record. Scan
			// forward one byte at a time until a recognized id reappears
			// or the next section is entered (spec.md §4.C section 1).
			before := s.pos
			s.scanForward(projectInfoKnownIDs)
			if s.pos == before {
				return nil
			}
		}
	}
}

func parseReferences(s *scanner, res *Result) {
	for {
		id, ok := s.peekID()
		if !ok || id == idPROJECTMODULES {
			return
		}
		if id != idREFERENCENAME {
			// Not a reference-section record (or malformed); stop tolerant
			// parse of this section.
			return
		}
		rec, _ := s.next()
		name := string(rec.data)

		bodyID, ok := s.peekID()
		if !ok {
			return
		}
		var ref Reference
		ref.Name = name
		switch bodyID {
		case idREFERENCEREGISTERED:
			rec, _ := s.next()
			ref.Libid = string(rec.data)
			ref.Kind = ReferenceRegistered
			res.References = append(res.References, ref)
		case idREFERENCEPROJECT:
			rec, _ := s.next()
			ref.Libid = string(rec.data)
			ref.Kind = ReferenceProject
			res.References = append(res.References, ref)
		case idREFERENCEORIGINAL:
			// Original/Control pair: an Original without a matching Control
			// (and thus no name override) is discarded per spec.md §4.C.
			rec, _ := s.next()
			libid := string(rec.data)
			if ctrlID, ok := s.peekID(); ok && ctrlID == idREFERENCECONTROL {
				crec, _ := s.next()
				ref.Libid = libid + "|" + string(crec.data)
				ref.Kind = ReferenceControl
				if extID, ok := s.peekID(); ok && extID == idREFERENCEEXTENDEDNAME {
					erec, _ := s.next()
					ref.Name = string(erec.data) // extended name overrides
				}
				res.References = append(res.References, ref)
			}
		default:
			return
		}
	}
}

func parseModules(s *scanner, res *Result) {
	id, ok := s.peekID()
	if !ok || id != idPROJECTMODULES {
		return
	}
	rec, _ := s.next()
	var count uint16
	if len(rec.data) >= 2 {
		count = binary.LittleEndian.Uint16(rec.data)
	}
	if pid, ok := s.peekID(); ok && pid == idPROJECTCOOKIE {
		s.next()
	}

	for i := uint16(0); i < count; i++ {
		mod, ok := parseModuleDescriptor(s)
		if !ok {
			return // missing expected descriptor: end of section (tolerant)
		}
		res.Modules = append(res.Modules, mod)
	}
}

func parseModuleDescriptor(s *scanner) (Module, bool) {
	var mod Module
	var mbcsName, unicodeName, mbcsStream, unicodeStream string
	sawAny := false
	for {
		id, ok := s.peekID()
		if !ok {
			return mod, sawAny
		}
		if id == idMODULETERMINATOR {
			s.next()
			break
		}
		rec, ok := s.next()
		if !ok {
			return mod, sawAny
		}
		sawAny = true
		switch id {
		case idMODULENAME:
			mbcsName = string(rec.data)
		case idMODULENAMEUNICODE:
			unicodeName = fromUTF16LE(rec.data)
		case idMODULESTREAMNAME:
			mbcsStream = string(rec.data)
		case idMODULEDOCSTRING:
			// retained on re-encode only; discarded here
		case idMODULEOFFSET:
			if len(rec.data) >= 4 {
				mod.TextOffset = binary.LittleEndian.Uint32(rec.data)
			}
		case idMODULETYPEPROCEDURAL:
			mod.Type = ModuleProcedural
		case idMODULETYPEDOCUMENT:
			mod.Type = ModuleDocument
		case idMODULEHELPCONTEXT, idMODULECOOKIE, idMODULEREADONLY, idMODULEPRIVATE:
			// skipped help/doc fields, per spec.md §4.C
		case idMODULESTREAMNAMEUNICODE:
			unicodeStream = fromUTF16LE(rec.data)
		default:
			// unknown id within a module descriptor: already consumed via
			// its size field by s.next(); keep scanning.
		}
	}

	mod.Name = mbcsName
	if unicodeName != "" {
		mod.Name = unicodeName
	}
	mod.StreamName = mbcsStream
	if unicodeStream != "" {
		mod.StreamName = unicodeStream
	}
	if mod.StreamName == "" {
		mod.StreamName = mod.Name
	}
	return mod, sawAny
}

// --- Serialization (encoder): see Serialize. ---

func putRecord(buf []byte, id uint16, data []byte) []byte {
	hdr := make([]byte, 6)
	binary.LittleEndian.PutUint16(hdr, id)
	binary.LittleEndian.PutUint32(hdr[2:], uint32(len(data)))
	buf = append(buf, hdr...)
	buf = append(buf, data...)
	return buf
}

func utf16le(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		lo := byte(r)
		hi := byte(r >> 8)
		out = append(out, lo, hi)
	}
	return out
}

// fromUTF16LE decodes the payload of a Unicode-twin record.
func fromUTF16LE(b []byte) string {
	u := make([]uint16, len(b)/2)
	for i := range u {
		u[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return string(utf16.Decode(u))
}

// Serialize writes a fixed skeleton with every well-known id in canonical
// order. Module names and module stream names are written as MBCS+Unicode
// pairs; every other string (project name, doc string, help file,
// constants, reference names and libids) is written in MBCS form only,
// with no Unicode twin. Class and Form modules are
// encoded using the on-wire Document indicator; refinement back to
// Class/Form happens at the project-assembler layer (spec.md §4.C
// "Serializer duality").
func Serialize(r *Result) []byte {
	var buf []byte

	sysKind := make([]byte, 4)
	binary.LittleEndian.PutUint32(sysKind, r.Project.SysKind)
	buf = putRecord(buf, idPROJECTSYSKIND, sysKind)

	lcid := make([]byte, 4)
	binary.LittleEndian.PutUint32(lcid, r.Project.LCID)
	buf = putRecord(buf, idPROJECTLCID, lcid)

	cp := make([]byte, 2)
	binary.LittleEndian.PutUint16(cp, uint16(r.Project.CodePage))
	buf = putRecord(buf, idPROJECTCODEPAGE, cp)

	buf = putRecord(buf, idPROJECTNAME, []byte(r.Project.Name))
	buf = putRecord(buf, idPROJECTDOCSTRING, []byte(r.Project.DocString))
	buf = putRecord(buf, idPROJECTHELPFILEPATH, []byte(r.Project.HelpFile))
	buf = putRecord(buf, idPROJECTHELPFILEPATH2, []byte(r.Project.HelpFile))

	hc := make([]byte, 4)
	binary.LittleEndian.PutUint32(hc, r.Project.HelpContext)
	buf = putRecord(buf, idPROJECTHELPCONTEXT, hc)

	ver := make([]byte, 6)
	binary.LittleEndian.PutUint32(ver, r.Project.VersionMajor)
	binary.LittleEndian.PutUint16(ver[4:], uint16(r.Project.VersionMinor))
	buf = putRecord(buf, idPROJECTVERSION, ver)

	if r.Project.Constants != "" {
		buf = putRecord(buf, idPROJECTCONSTANTS, []byte(r.Project.Constants))
	}

	for _, ref := range r.References {
		buf = putRecord(buf, idREFERENCENAME, []byte(ref.Name))
		switch ref.Kind {
		case ReferenceRegistered:
			buf = putRecord(buf, idREFERENCEREGISTERED, []byte(ref.Libid))
		case ReferenceProject:
			buf = putRecord(buf, idREFERENCEPROJECT, []byte(ref.Libid))
		case ReferenceControl:
			orig, ctrl := splitControlLibid(ref.Libid)
			buf = putRecord(buf, idREFERENCEORIGINAL, []byte(orig))
			buf = putRecord(buf, idREFERENCECONTROL, []byte(ctrl))
		}
	}

	count := make([]byte, 2)
	binary.LittleEndian.PutUint16(count, uint16(len(r.Modules)))
	buf = putRecord(buf, idPROJECTMODULES, count)
	buf = putRecord(buf, idPROJECTCOOKIE, []byte{0xFF, 0xFF})

	for _, mod := range r.Modules {
		buf = putRecord(buf, idMODULENAME, []byte(mod.Name))
		buf = putRecord(buf, idMODULENAMEUNICODE, utf16le(mod.Name))
		buf = putRecord(buf, idMODULESTREAMNAME, []byte(mod.StreamName))
		buf = putRecord(buf, idMODULESTREAMNAMEUNICODE, utf16le(mod.StreamName))

		off := make([]byte, 4)
		binary.LittleEndian.PutUint32(off, mod.TextOffset)
		buf = putRecord(buf, idMODULEOFFSET, off)

		// Class/Form/Document all encode as MODULETYPEDOCUMENT on-wire;
		// Standard encodes as MODULETYPEPROCEDURAL (spec.md §4.C).
		if mod.Type == ModuleProcedural {
			buf = putRecord(buf, idMODULETYPEPROCEDURAL, nil)
		} else {
			buf = putRecord(buf, idMODULETYPEDOCUMENT, nil)
		}
		buf = putRecord(buf, idMODULETERMINATOR, nil)
	}

	return buf
}

func splitControlLibid(s string) (orig, ctrl string) {
	for i := 0; i < len(s); i++ {
		if s[i] == '|' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}
