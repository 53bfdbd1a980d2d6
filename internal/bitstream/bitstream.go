// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package bitstream implements the chunked LZ-style (de)compression format
// used by the legacy macro container: a signature byte followed by one or
// more fixed-header chunks, each either a raw copy or a stream of
// literal/copy token groups with position-dependent bit widths.
//
// Grounded on the teacher's bit-level header parsing style in
// helper.go (sentinel errors plus small pure helper functions operating on
// byte slices read forward-only).
package bitstream

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Signature is the single byte that must prefix every compressed stream.
const Signature = 0x01

// MaxChunkSize is the maximum number of decoded bytes a single chunk can
// produce (the sliding window size and the allocation bound referenced by
// the resource model).
const MaxChunkSize = 4096

// Sentinel errors for malformed input (propagate unless the chunk was
// merely truncated, which is handled silently per the truncation policy).
var (
	ErrInvalidSignature    = errors.New("bitstream: invalid signature byte")
	ErrInvalidChunkSig     = errors.New("bitstream: chunk header signature is not 0b011")
	ErrInvalidCopyOffset   = errors.New("bitstream: copy token offset precedes chunk start")
	ErrTruncatedHeader     = errors.New("bitstream: truncated chunk header")
	ErrTruncatedChunk      = errors.New("bitstream: chunk declares more bytes than remain in input")
)

// chunkHeader fields, decoded from a little-endian uint16.
type chunkHeader struct {
	size       int  // size-3; total byte count of the chunk (incl. 2-byte header) is size+3
	compressed bool // MSB flag
}

func parseChunkHeader(v uint16) (chunkHeader, error) {
	sig := (v >> 12) & 0x7
	if sig != 0b011 {
		return chunkHeader{}, fmt.Errorf("%w: got %03b", ErrInvalidChunkSig, sig)
	}
	return chunkHeader{
		size:       int(v & 0x0FFF),
		compressed: v&0x8000 != 0,
	}, nil
}

// copyWidth returns the bit width L(p) of the length field of a copy token,
// given p bytes already emitted within the current chunk. Transitions occur
// at 17, 33, 65, 129, 257, 513, 1025, 2049 per spec.md Testable Properties.
func copyWidth(p int) int {
	switch {
	case p <= 16:
		return 12
	case p <= 32:
		return 11
	case p <= 64:
		return 10
	case p <= 128:
		return 9
	case p <= 256:
		return 8
	case p <= 512:
		return 7
	case p <= 1024:
		return 6
	case p <= 2048:
		return 5
	default:
		return 4
	}
}

// Decompress decodes a signature-prefixed chunk stream. Truncation (a
// partial trailing header, or a chunk whose declared size overruns the
// input) stops decoding silently and returns what was decoded so far.
// A bad signature byte or an invalid chunk signature/copy-offset is a hard
// error.
func Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] != Signature {
		return nil, fmt.Errorf("%w: got 0x%02x", ErrInvalidSignature, data[0])
	}
	data = data[1:]

	var out []byte
	for len(data) > 0 {
		if len(data) < 2 {
			break // truncated header: stop silently
		}
		hdr, err := parseChunkHeader(binary.LittleEndian.Uint16(data))
		if err != nil {
			return nil, err
		}
		total := hdr.size + 3
		payloadLen := total - 2
		if payloadLen > len(data)-2 {
			break // truncated chunk body: stop silently
		}
		payload := data[2 : 2+payloadLen]
		data = data[2+payloadLen:]

		if hdr.compressed {
			chunk, err := decompressChunk(payload)
			if err != nil {
				return nil, err
			}
			out = append(out, chunk...)
		} else {
			out = append(out, payload...)
		}
	}
	return out, nil
}

func decompressChunk(payload []byte) ([]byte, error) {
	out := make([]byte, 0, MaxChunkSize)
	i := 0
	for i < len(payload) {
		flags := payload[i]
		i++
		for bit := 0; bit < 8 && i < len(payload); bit++ {
			if flags&(1<<uint(bit)) == 0 {
				out = append(out, payload[i])
				i++
				continue
			}
			if i+1 >= len(payload) {
				// Mid-token chunk end: treat as truncated stop.
				return out, nil
			}
			tok := uint16(payload[i]) | uint16(payload[i+1])<<8
			i += 2
			width := copyWidth(len(out))
			mask := uint16(1)<<uint(width) - 1
			length := int(tok&mask) + 3
			offset := int(tok>>uint(width)) + 1
			if offset > len(out) {
				return nil, fmt.Errorf("%w: offset %d at output length %d", ErrInvalidCopyOffset, offset, len(out))
			}
			start := len(out) - offset
			for k := 0; k < length; k++ {
				out = append(out, out[start+k])
			}
		}
	}
	return out, nil
}

// Compress encodes data into the chunked format, guaranteeing
// Decompress(Compress(data)) == data. It splits data into MaxChunkSize
// chunks and, for each, emits a raw chunk unless the greedy LZ search
// (4096-byte sliding window, honoring the position-dependent bit widths)
// yields something strictly smaller.
func Compress(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/8+8)
	out = append(out, Signature)
	for off := 0; off < len(data); off += MaxChunkSize {
		end := off + MaxChunkSize
		if end > len(data) {
			end = len(data)
		}
		out = append(out, compressChunk(data[off:end])...)
	}
	return out
}

func compressChunk(chunk []byte) []byte {
	compressed := compressChunkBody(chunk)
	if len(compressed) < len(chunk) {
		return frameChunk(compressed, true)
	}
	return frameChunk(chunk, false)
}

func frameChunk(payload []byte, compressed bool) []byte {
	size := len(payload) + 2 - 3 // header field is total chunk bytes (2-byte header + payload) minus 3
	hdr := uint16(0b011<<12) | uint16(size&0x0FFF)
	if compressed {
		hdr |= 0x8000
	}
	out := make([]byte, 2+len(payload))
	binary.LittleEndian.PutUint16(out, hdr)
	copy(out[2:], payload)
	return out
}

// compressChunkBody performs a greedy longest-match search within the
// window of bytes already emitted in this chunk, subject to the
// position-dependent length/offset field widths.
func compressChunkBody(chunk []byte) []byte {
	var payload []byte
	var group []byte
	var flags byte
	var flagBit uint

	flushGroup := func() {
		if flagBit == 0 {
			return
		}
		payload = append(payload, flags)
		payload = append(payload, group...)
		group = nil
		flags = 0
		flagBit = 0
	}

	emitted := 0
	i := 0
	for i < len(chunk) {
		width := copyWidth(emitted)
		maxLen := (1 << uint(width)) - 1 + 3
		maxOffset := (1 << (16 - uint(width))) - 1 + 1

		bestLen, bestOffset := findMatch(chunk, i, maxLen, maxOffset)
		if bestLen >= 3 {
			length := bestLen - 3
			offset := bestOffset - 1
			tok := uint16(length) | uint16(offset)<<uint(width)
			group = append(group, byte(tok), byte(tok>>8))
			flags |= 1 << flagBit
			flagBit++
			i += bestLen
			emitted += bestLen
		} else {
			group = append(group, chunk[i])
			flagBit++ // literal: flag bit stays 0, but the slot is used
			i++
			emitted++
		}
		if flagBit == 8 {
			flushGroup()
		}
	}
	flushGroup()
	return payload
}

// findMatch searches chunk[:pos] for the longest match starting at pos,
// bounded by maxLen and maxOffset (both derived from the position-dependent
// bit widths), returning (0, 0) if no match of length >= 3 exists.
func findMatch(chunk []byte, pos, maxLen, maxOffset int) (length, offset int) {
	limit := pos - maxOffset
	if limit < 0 {
		limit = 0
	}
	bestLen := 0
	bestOffset := 0
	for start := pos - 1; start >= limit; start-- {
		l := 0
		for pos+l < len(chunk) && l < maxLen && chunk[start+l] == chunk[pos+l] {
			l++
		}
		if l > bestLen {
			bestLen = l
			bestOffset = pos - start
			if bestLen == maxLen {
				break
			}
		}
	}
	if bestLen < 3 {
		return 0, 0
	}
	return bestLen, bestOffset
}
