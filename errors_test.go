// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package vbaproj

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorKindString(t *testing.T) {
	cases := map[ErrorKind]string{
		KindParse:          "Parse",
		KindNotImplemented: "NotImplemented",
		KindEncoding:       "Encoding",
		KindRuntime:        "Runtime",
		KindStackOverflow:  "StackOverflow",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	e := &Error{Kind: KindParse, Message: inner.Error(), Wrapped: inner}
	if !errors.Is(e, inner) {
		t.Fatal("errors.Is(e, inner) = false, want true")
	}
}

func TestErrorMessageIncludesStream(t *testing.T) {
	e := &Error{Kind: KindEncoding, Message: "bad byte", Stream: "Module1", Offset: 12}
	msg := e.Error()
	if !strings.Contains(msg, "Module1") || !strings.Contains(msg, "bad byte") {
		t.Errorf("Error() = %q, missing stream or message", msg)
	}
}

func TestParseErrorWraps(t *testing.T) {
	inner := errors.New("unexpected token")
	e := parseError("dir", inner)
	if e.Kind != KindParse {
		t.Errorf("Kind = %v, want KindParse", e.Kind)
	}
	if e.Stream != "dir" {
		t.Errorf("Stream = %q, want %q", e.Stream, "dir")
	}
	if !errors.Is(e, inner) {
		t.Fatal("parseError result does not unwrap to inner error")
	}
}
