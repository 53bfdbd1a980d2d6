// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cfb

import (
	"bytes"
	"testing"
)

func TestBuildAndReadRoundTrip(t *testing.T) {
	streams := map[string][]byte{
		JoinPath("PROJECT"):          []byte("ID=\"{GUID}\"\r\nName=\"Test\"\r\n"),
		JoinPath("VBA", "dir"):       bytes.Repeat([]byte{0x01, 0x02}, 10),
		JoinPath("VBA", "Module1"):   []byte("module body bytes"),
		JoinPath("VBA", "ThisDoc"):   []byte{},
	}
	data := Build(streams)

	r, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer r.Close()

	got, err := r.Stream("PROJECT")
	if err != nil {
		t.Fatalf("Stream(PROJECT): %v", err)
	}
	if !bytes.Equal(got, streams[JoinPath("PROJECT")]) {
		t.Fatalf("PROJECT mismatch: got %q", got)
	}

	got, err = r.Stream("VBA", "Module1")
	if err != nil {
		t.Fatalf("Stream(VBA/Module1): %v", err)
	}
	if !bytes.Equal(got, streams[JoinPath("VBA", "Module1")]) {
		t.Fatalf("Module1 mismatch: got %q", got)
	}

	got, err = r.Stream("VBA", "ThisDoc")
	if err != nil {
		t.Fatalf("Stream(VBA/ThisDoc): %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty stream, got %d bytes", len(got))
	}

	names, err := r.Enumerate("VBA")
	if err != nil {
		t.Fatalf("Enumerate(VBA): %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("expected 3 children under VBA, got %v", names)
	}
}

func TestStreamNotFound(t *testing.T) {
	data := Build(map[string][]byte{JoinPath("PROJECT"): []byte("x")})
	r, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer r.Close()

	_, err = r.Stream("NoSuchStream")
	if err == nil {
		t.Fatalf("expected ErrNotFound")
	}
}

func TestInvalidSignature(t *testing.T) {
	_, err := OpenBytes(make([]byte, 600))
	if err == nil {
		t.Fatalf("expected ErrInvalidSignature")
	}
}
