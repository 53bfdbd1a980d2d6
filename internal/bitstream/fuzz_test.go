// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bitstream

import (
	"bytes"
	"testing"
)

// FuzzRoundTrip exercises the round-trip law from spec.md §8:
// decompress(compress(s)) == s for all byte sequences s.
// Grounded on the teacher's fuzz.go, which wired go-fuzz's entrypoint onto
// PE parsing; this is its native testing.F equivalent.
func FuzzRoundTrip(f *testing.F) {
	f.Add([]byte("hello"))
	f.Add(bytes.Repeat([]byte{'A'}, 32))
	f.Add([]byte{})
	f.Fuzz(func(t *testing.T, data []byte) {
		out, err := Decompress(Compress(data))
		if err != nil {
			t.Fatalf("decompress(compress(data)) failed: %v", err)
		}
		if !bytes.Equal(out, data) {
			t.Fatalf("round trip mismatch: got %v, want %v", out, data)
		}
	})
}
