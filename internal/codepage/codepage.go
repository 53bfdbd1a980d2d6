// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package codepage maps the numeric code-page identifiers stored in a
// project's PROJECTCODEPAGE record to text encodings, and transcodes module
// source text accordingly. Grounded on the teacher's single UTF-16 decode
// helper in helper.go (it imports golang.org/x/text/encoding/unicode for
// struct-name decoding); this package promotes golang.org/x/text to a
// direct, broadly used dependency per SPEC_FULL.md §2.
package codepage

import (
	"errors"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// Well-known numeric code-page identifiers (a subset of the legacy Windows
// code-page table; Decode and Encode return ErrUnsupported for unrecognized ids).
const (
	CPShiftJIS       = 932
	CPGBK            = 936
	CPEUCKR          = 949
	CPBig5           = 950
	CPWindows1250    = 1250
	CPWindows1251    = 1251
	CPWindows1252    = 1252
	CPWindows1253    = 1253
	CPWindows1254    = 1254
	CPWindows1255    = 1255
	CPWindows1256    = 1256
	CPWindows1257    = 1257
	CPWindows1258    = 1258
	CPUTF8           = 65001
	DefaultCodePage  = CPWindows1252
)

// ErrUnsupported is returned when a numeric code page has no mapping.
var ErrUnsupported = errors.New("codepage: unsupported code page")

// EncodingError is returned by Encode when a character cannot round-trip
// through the target code page.
type EncodingError struct {
	CodePage  int
	Character rune
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("codepage: character %q is not representable in code page %d", e.Character, e.CodePage)
}

var table = map[int]encoding.Encoding{
	CPShiftJIS:    japanese.ShiftJIS,
	CPGBK:         simplifiedchinese.GBK,
	CPEUCKR:       korean.EUCKR,
	CPBig5:        traditionalchinese.Big5,
	CPWindows1250: charmap.Windows1250,
	CPWindows1251: charmap.Windows1251,
	CPWindows1252: charmap.Windows1252,
	CPWindows1253: charmap.Windows1253,
	CPWindows1254: charmap.Windows1254,
	CPWindows1255: charmap.Windows1255,
	CPWindows1256: charmap.Windows1256,
	CPWindows1257: charmap.Windows1257,
	CPWindows1258: charmap.Windows1258,
}

// Supported reports whether a numeric code page is recognized.
func Supported(cp int) bool {
	if cp == CPUTF8 {
		return true
	}
	_, ok := table[cp]
	return ok
}

// Decode converts bytes encoded under cp into a Go string. Invalid byte
// sequences decode to the Unicode replacement character rather than
// failing; a valid input under a supported code page never produces one.
func Decode(data []byte, cp int) (string, error) {
	if cp == CPUTF8 || len(data) == 0 && cp == 0 {
		return string(data), nil
	}
	enc, ok := table[cp]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnsupported, cp)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("codepage: decode under %d: %w", cp, err)
	}
	return string(out), nil
}

// Encode converts s into bytes under cp. Every rune must round-trip; a
// character with no representation in cp fails with *EncodingError rather
// than being silently dropped or replaced.
func Encode(s string, cp int) ([]byte, error) {
	if cp == CPUTF8 {
		return []byte(s), nil
	}
	enc, ok := table[cp]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupported, cp)
	}
	out, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		for _, r := range s {
			if _, encErr := enc.NewEncoder().Bytes([]byte(string(r))); encErr != nil {
				return nil, &EncodingError{CodePage: cp, Character: r}
			}
		}
		return nil, fmt.Errorf("codepage: encode under %d: %w", cp, err)
	}
	return out, nil
}

// utf16le is the fixed transform used for MBCS/Unicode twin records and the
// PROJECT stream's Unicode companions.
var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeUTF16LE decodes a little-endian UTF-16 byte sequence with no
// surrogate-pair fixup beyond what the underlying mapping guarantees.
func DecodeUTF16LE(data []byte) (string, error) {
	out, err := utf16le.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("codepage: decode utf-16le: %w", err)
	}
	return string(out), nil
}

// EncodeUTF16LE encodes s as little-endian UTF-16.
func EncodeUTF16LE(s string) ([]byte, error) {
	out, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("codepage: encode utf-16le: %w", err)
	}
	return out, nil
}
