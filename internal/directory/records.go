// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package directory parses and serializes the record-oriented "dir" stream:
// project information, references, and the per-module descriptor list.
// Record ids mirror real PE data-directory/constant tables the teacher
// hand-codes (ntheader.go, richheader.go): a flat named-constant block with
// the on-wire hex value as the comment-free source of truth.
package directory

// Record ids, 16-bit little-endian, per spec.md §6.
const (
	idPROJECTSYSKIND       = 0x0001
	idPROJECTLCID          = 0x0002
	idPROJECTCODEPAGE      = 0x0003
	idPROJECTNAME          = 0x0004
	idPROJECTDOCSTRING     = 0x0005
	idPROJECTHELPFILEPATH  = 0x0006
	idPROJECTHELPFILEPATH2 = 0x003D
	idPROJECTVERSION       = 0x0009
	idPROJECTCONSTANTS     = 0x000C

	idREFERENCEREGISTERED = 0x000D
	idREFERENCEPROJECT    = 0x000E
	idREFERENCENAME       = 0x0016
	idREFERENCECONTROL    = 0x002F
	idREFERENCEORIGINAL   = 0x0033

	idPROJECTMODULES     = 0x000F
	idPROJECTCOOKIE      = 0x0013
	idMODULENAME         = 0x0019
	idMODULENAMEUNICODE  = 0x0047
	idMODULESTREAMNAME   = 0x001A
	idMODULESTREAMNAMEUNICODE = 0x0032
	idMODULEDOCSTRING    = 0x001C
	idMODULEOFFSET       = 0x0031
	idMODULETYPEPROCEDURAL = 0x0021
	idMODULETYPEDOCUMENT   = 0x0022
	idMODULETERMINATOR     = 0x002B

	// Additional well-known ids skipped (and preserved as "unknown but
	// well-formed") by the tolerant, forward-only scan: help-context,
	// read-only/private flags, and per-reference extended-name overrides.
	idPROJECTHELPCONTEXT = 0x0007
	idPROJECTLIBFLAGS    = 0x0008
	idPROJECTCONSTANTSUNICODE = 0x003C
	idREFERENCENAMEUNICODE    = 0x003E
	idREFERENCEEXTENDEDNAME   = 0x003F
	idMODULEHELPCONTEXT       = 0x001E
	idMODULECOOKIE            = 0x002C
	idMODULEREADONLY          = 0x0025
	idMODULEPRIVATE           = 0x0028
	idMODULETYPECLASS         = 0x0022 // on-wire alias; Document & Class share the code page id (refined later)
)

// ModuleType is the on-wire module-type indicator, before project-assembler
// refinement into the Program IR's richer {Standard, Class, Form, Document}.
type ModuleType int

const (
	ModuleProcedural ModuleType = iota // MODULETYPEPROCEDURAL -> Standard
	ModuleDocument                     // MODULETYPEDOCUMENT -> Document (refined by the assembler)
)

// ReferenceKind distinguishes the three reference kinds decoded from the
// body shapes named in spec.md §4.C section 2; an Original/Control record
// pair decodes as ReferenceControl.
type ReferenceKind int

const (
	ReferenceRegistered ReferenceKind = iota
	ReferenceProject
	ReferenceControl
)
