// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package cfb implements the compound file binary (OLE2-style) container
// format that wraps a legacy macro project: named storages and streams laid
// out over a chain of fixed-size sectors, addressed through a sector
// allocation table and a red-black tree of directory entries.
//
// Grounded on the teacher's file.go: New/NewBytes constructors, the same
// os.Open + mmap.Map zero-copy pattern for on-disk input, and Close()
// unmapping the backing file; struct layouts are read with encoding/binary
// exactly as the teacher reads ImageDOSHeader/ImageNtHeader in ntheader.go.
package cfb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

const (
	sectorSize     = 512
	miniSectorSize = 64
	miniStreamCutoffSize = 4096
	headerSize     = 512

	freeSector    = 0xFFFFFFFF
	endOfChain    = 0xFFFFFFFE
	fatSector     = 0xFFFFFFFD
	difatSector   = 0xFFFFFFFC

	objRoot    = 5
	objStorage = 1
	objStream  = 2
	objEmpty   = 0
)

var signature = [8]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// ErrNotFound is returned when a stream path does not resolve to any
// stream in the container.
var ErrNotFound = errors.New("cfb: stream not found")

// ErrInvalidSignature is returned when a file does not carry the
// compound-file magic number.
var ErrInvalidSignature = errors.New("cfb: invalid compound file signature")

type header struct {
	NumDirSectors     uint32
	NumFATSectors     uint32
	FirstDirSector    uint32
	FirstMiniFATSector uint32
	NumMiniFATSectors uint32
	FirstDIFATSector  uint32
	NumDIFATSectors   uint32
	DIFAT             [109]uint32
}

type dirEntry struct {
	name        string
	objType     byte
	left, right int32
	child       int32
	startSector uint32
	size        uint64
}

// Reader gives read access to an open compound file container.
type Reader struct {
	data    []byte // full backing bytes (mmap or loaded slice)
	backing mmap.MMap
	f       *os.File

	fat     []uint32
	miniFAT []uint32
	entries []dirEntry
	root    int32

	miniStreamStart uint32
}

// Open memory-maps path and parses its compound-file structure. Mirrors
// pe.New: zero-copy access to an on-disk container.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	r, err := parse(data)
	if err != nil {
		data.Unmap()
		f.Close()
		return nil, err
	}
	r.backing = data
	r.f = f
	return r, nil
}

// OpenBytes parses an in-memory container. Mirrors pe.NewBytes.
func OpenBytes(data []byte) (*Reader, error) {
	return parse(data)
}

// Close releases the memory mapping, if any.
func (r *Reader) Close() error {
	if r.backing != nil {
		_ = r.backing.Unmap()
	}
	if r.f != nil {
		return r.f.Close()
	}
	return nil
}

func parse(data []byte) (*Reader, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("cfb: file too small (%d bytes)", len(data))
	}
	if !bytes.Equal(data[:8], signature[:]) {
		return nil, ErrInvalidSignature
	}

	var sectorShift uint16
	binary.Read(bytes.NewReader(data[30:32]), binary.LittleEndian, &sectorShift)
	secSize := 1 << sectorShift
	if secSize != sectorSize {
		// Only the common 512-byte-sector (version 3) layout is supported.
		secSize = sectorSize
	}

	var h header
	h.NumDirSectors = binary.LittleEndian.Uint32(data[40:44])
	h.NumFATSectors = binary.LittleEndian.Uint32(data[44:48])
	h.FirstDirSector = binary.LittleEndian.Uint32(data[48:52])
	h.FirstMiniFATSector = binary.LittleEndian.Uint32(data[60:64])
	h.NumMiniFATSectors = binary.LittleEndian.Uint32(data[64:68])
	h.FirstDIFATSector = binary.LittleEndian.Uint32(data[68:72])
	h.NumDIFATSectors = binary.LittleEndian.Uint32(data[72:76])
	for i := 0; i < 109; i++ {
		off := 76 + i*4
		h.DIFAT[i] = binary.LittleEndian.Uint32(data[off : off+4])
	}

	r := &Reader{data: data}

	// Build the FAT sector list: the header's 109 DIFAT entries, followed
	// by overflow DIFAT sectors if present.
	fatSectors := make([]uint32, 0, h.NumFATSectors)
	for _, s := range h.DIFAT {
		if s != freeSector && uint32(len(fatSectors)) < h.NumFATSectors {
			fatSectors = append(fatSectors, s)
		}
	}
	next := h.FirstDIFATSector
	for i := uint32(0); i < h.NumDIFATSectors && next != endOfChain && next != freeSector; i++ {
		sec, err := r.sectorBytes(next, secSize)
		if err != nil {
			return nil, err
		}
		entriesPerSector := secSize/4 - 1
		for j := 0; j < entriesPerSector; j++ {
			v := binary.LittleEndian.Uint32(sec[j*4 : j*4+4])
			if v != freeSector && uint32(len(fatSectors)) < h.NumFATSectors {
				fatSectors = append(fatSectors, v)
			}
		}
		next = binary.LittleEndian.Uint32(sec[entriesPerSector*4:])
	}

	fat := make([]uint32, 0, len(fatSectors)*(secSize/4))
	for _, s := range fatSectors {
		sec, err := r.sectorBytes(s, secSize)
		if err != nil {
			return nil, err
		}
		for j := 0; j+4 <= len(sec); j += 4 {
			fat = append(fat, binary.LittleEndian.Uint32(sec[j:j+4]))
		}
	}
	r.fat = fat

	// Walk the directory sector chain and decode 128-byte directory entries.
	dirBytes, err := r.chainBytes(h.FirstDirSector, secSize)
	if err != nil {
		return nil, err
	}
	for off := 0; off+128 <= len(dirBytes); off += 128 {
		entries := dirBytes[off : off+128]
		nameLen := int(binary.LittleEndian.Uint16(entries[64:66]))
		var name string
		if nameLen > 2 {
			raw := entries[0 : nameLen-2]
			u16 := make([]uint16, len(raw)/2)
			for i := range u16 {
				u16[i] = binary.LittleEndian.Uint16(raw[i*2 : i*2+2])
			}
			name = utf16ToString(u16)
		}
		e := dirEntry{
			name:        name,
			objType:     entries[66],
			left:        int32(binary.LittleEndian.Uint32(entries[68:72])),
			right:       int32(binary.LittleEndian.Uint32(entries[72:76])),
			child:       int32(binary.LittleEndian.Uint32(entries[76:80])),
			startSector: binary.LittleEndian.Uint32(entries[116:120]),
			size:        binary.LittleEndian.Uint64(entries[120:128]),
		}
		r.entries = append(r.entries, e)
	}

	r.root = -1
	for i, e := range r.entries {
		if e.objType == objRoot {
			r.root = int32(i)
			r.miniStreamStart = e.startSector
			break
		}
	}
	if r.root < 0 {
		return nil, errors.New("cfb: no root storage entry found")
	}

	if h.NumMiniFATSectors > 0 {
		miniBytes, err := r.chainBytes(h.FirstMiniFATSector, secSize)
		if err == nil {
			for j := 0; j+4 <= len(miniBytes); j += 4 {
				r.miniFAT = append(r.miniFAT, binary.LittleEndian.Uint32(miniBytes[j:j+4]))
			}
		}
	}

	return r, nil
}

func utf16ToString(u16 []uint16) string {
	runes := make([]rune, 0, len(u16))
	for _, v := range u16 {
		runes = append(runes, rune(v))
	}
	return string(runes)
}

func (r *Reader) sectorBytes(sector uint32, secSize int) ([]byte, error) {
	start := headerSize + int(sector)*secSize
	if start < 0 || start+secSize > len(r.data) {
		return nil, fmt.Errorf("cfb: sector %d out of range", sector)
	}
	return r.data[start : start+secSize], nil
}

func (r *Reader) chainBytes(start uint32, secSize int) ([]byte, error) {
	var out []byte
	sector := start
	seen := map[uint32]bool{}
	for sector != endOfChain && sector != freeSector {
		if seen[sector] {
			return nil, errors.New("cfb: circular sector chain")
		}
		seen[sector] = true
		sec, err := r.sectorBytes(sector, secSize)
		if err != nil {
			return nil, err
		}
		out = append(out, sec...)
		if int(sector) >= len(r.fat) {
			break
		}
		sector = r.fat[sector]
	}
	return out, nil
}

func (r *Reader) miniSectorBytes(ministream []byte, sector uint32) []byte {
	start := int(sector) * miniSectorSize
	if start+miniSectorSize > len(ministream) {
		return nil
	}
	return ministream[start : start+miniSectorSize]
}

func (r *Reader) miniChainBytes(start uint32, entrySize uint64) ([]byte, error) {
	rootEntry := r.entries[r.root]
	ministream, err := r.chainBytes(rootEntry.startSector, sectorSize)
	if err != nil {
		return nil, err
	}
	var out []byte
	sector := start
	for sector != endOfChain && sector != freeSector {
		sec := r.miniSectorBytes(ministream, sector)
		if sec == nil {
			break
		}
		out = append(out, sec...)
		if int(sector) >= len(r.miniFAT) {
			break
		}
		sector = r.miniFAT[sector]
	}
	if uint64(len(out)) > entrySize {
		out = out[:entrySize]
	}
	return out, nil
}

// find locates the directory entry for path, walking each storage's child
// red-black tree by case-sensitive name comparison (per spec.md §4.B).
func (r *Reader) find(path []string) (*dirEntry, error) {
	cur := r.entries[r.root]
	for _, name := range path {
		child, ok := r.findChild(cur.child, name)
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, path)
		}
		cur = child
	}
	return &cur, nil
}

func (r *Reader) findChild(node int32, name string) (dirEntry, bool) {
	for node != -1 {
		e := r.entries[node]
		switch {
		case name == e.name:
			return e, true
		case name < e.name:
			node = e.left
		default:
			node = e.right
		}
	}
	return dirEntry{}, false
}

// Stream reads the stream named by path (a sequence of storage names
// ending in the stream name). Reading a non-existent path fails with
// ErrNotFound; an existing but empty stream returns empty bytes.
func (r *Reader) Stream(path ...string) ([]byte, error) {
	e, err := r.find(path)
	if err != nil {
		return nil, err
	}
	if e.objType != objStream {
		return nil, fmt.Errorf("%w: %v is a storage, not a stream", ErrNotFound, path)
	}
	if e.size == 0 {
		return []byte{}, nil
	}
	if e.size < miniStreamCutoffSize && len(r.miniFAT) > 0 {
		return r.miniChainBytes(e.startSector, e.size)
	}
	data, err := r.chainBytes(e.startSector, sectorSize)
	if err != nil {
		return nil, err
	}
	if uint64(len(data)) > e.size {
		data = data[:e.size]
	}
	return data, nil
}

// Enumerate lists the immediate child names of the storage at path (an
// empty path means the root storage).
func (r *Reader) Enumerate(path ...string) ([]string, error) {
	e, err := r.find(path)
	if err != nil {
		return nil, err
	}
	var names []string
	var walk func(node int32)
	walk = func(node int32) {
		if node == -1 {
			return
		}
		entry := r.entries[node]
		walk(entry.left)
		names = append(names, entry.name)
		walk(entry.right)
	}
	walk(e.child)
	return names, nil
}
