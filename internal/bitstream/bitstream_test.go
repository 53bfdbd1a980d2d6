// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bitstream

import (
	"bytes"
	"strings"
	"testing"
)

func TestDecompressEmpty(t *testing.T) {
	out, err := Decompress(nil)
	if err != nil || out != nil {
		t.Fatalf("got (%v, %v), want (nil, nil)", out, err)
	}
}

func TestDecompressInvalidSignature(t *testing.T) {
	_, err := Decompress([]byte{0x00})
	if err == nil || !strings.Contains(err.Error(), "invalid signature") {
		t.Fatalf("got %v, want invalid signature error", err)
	}
}

func TestDecompressSignatureOnly(t *testing.T) {
	out, err := Decompress([]byte{Signature})
	if err != nil || len(out) != 0 {
		t.Fatalf("got (%v, %v), want (empty, nil)", out, err)
	}
}

func TestRoundTripRepeatingPattern(t *testing.T) {
	input := bytes.Repeat([]byte{'A'}, 32)
	compressed := Compress(input)
	if len(compressed) >= 34 {
		t.Fatalf("compressed length %d, want < 34", len(compressed))
	}
	out, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(out, input) {
		t.Fatalf("got %v, want %v", out, input)
	}
}

func TestRoundTripVarious(t *testing.T) {
	cases := [][]byte{
		nil,
		{0x41},
		[]byte("the quick brown fox jumps over the lazy dog"),
		bytes.Repeat([]byte("ab"), 3000),
		bytes.Repeat([]byte{0}, 5000),
	}
	for i, in := range cases {
		out, err := Decompress(Compress(in))
		if err != nil {
			t.Fatalf("case %d: decompress: %v", i, err)
		}
		if !bytes.Equal(out, in) {
			t.Fatalf("case %d: got %v, want %v", i, out, in)
		}
	}
}

func TestDecompressInvalidChunkSignature(t *testing.T) {
	// header with top 3 bits of the 4 high bits not 0b011: set bits 12-14 to 0b000.
	data := []byte{Signature, 0x00, 0x00}
	_, err := Decompress(data)
	if err == nil {
		t.Fatalf("expected error for invalid chunk signature")
	}
}

func TestMaxChunk(t *testing.T) {
	in := bytes.Repeat([]byte{'Z'}, MaxChunkSize)
	// Force a raw chunk: header size field at its maximum (0xFFF) means
	// (size-3)+3 == 4098 bytes including the 2-byte header -> 4096 payload.
	hdr := uint16(0b011<<12) | 0x0FFF
	raw := []byte{Signature, byte(hdr), byte(hdr >> 8)}
	raw = append(raw, in...)
	out, err := Decompress(raw)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Fatalf("got %d bytes, want %d", len(out), len(in))
	}
}

func TestCopyWidthTransitions(t *testing.T) {
	cases := []struct {
		p    int
		want int
	}{
		{0, 12}, {16, 12}, {17, 11},
		{32, 11}, {33, 10},
		{64, 10}, {65, 9},
		{128, 9}, {129, 8},
		{256, 8}, {257, 7},
		{512, 7}, {513, 6},
		{1024, 6}, {1025, 5},
		{2048, 5}, {2049, 4},
	}
	for _, c := range cases {
		if got := copyWidth(c.p); got != c.want {
			t.Errorf("copyWidth(%d) = %d, want %d", c.p, got, c.want)
		}
	}
}
