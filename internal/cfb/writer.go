// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cfb

import (
	"bytes"
	"encoding/binary"
	"sort"
)

// node is the build-time representation of a storage or stream, forming a
// tree mirrored into the on-disk directory-entry array by Build.
type node struct {
	name     string
	isStream bool
	data     []byte
	children map[string]*node
	order    []string // insertion order of children, for deterministic sort
}

func newStorageNode(name string) *node {
	return &node{name: name, children: map[string]*node{}}
}

// Build constructs compound-file bytes from a set of (path, data) pairs.
// Each path is an ordered name sequence where the last element is the
// stream name and earlier elements are storage names (spec.md §4.B). All
// streams are written through the regular (non-mini) FAT for simplicity;
// readers that expect the mini-stream optimization for small streams still
// decode these correctly since FAT-based streams are always valid.
func Build(streams map[string][]byte) []byte {
	var paths []string
	for p := range streams {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	root := newStorageNode("Root Entry")
	for _, p := range paths {
		parts := splitPath(p)
		cur := root
		for i, part := range parts {
			last := i == len(parts)-1
			child, ok := cur.children[part]
			if !ok {
				child = newStorageNode(part)
				cur.children[part] = child
				cur.order = append(cur.order, part)
			}
			if last {
				child.isStream = true
				child.data = streams[p]
			}
			cur = child
		}
	}

	w := &writer{}
	return w.build(root)
}

// splitPath is the inverse of the path-joining convention used by callers:
// a path is already a []string in this package's API, but Build accepts a
// flattened map keyed by a "\x00"-joined string for simplicity of callers
// that build the map directly; see JoinPath.
func splitPath(p string) []string {
	return bytesSplit(p, pathSep)
}

const pathSep = "\x00"

// JoinPath joins a storage/stream name sequence into the flattened key
// Build expects.
func JoinPath(parts ...string) string {
	return join(parts, pathSep)
}

func join(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

func bytesSplit(s, sep string) []string {
	var out []string
	for {
		idx := indexOf(s, sep)
		if idx < 0 {
			out = append(out, s)
			return out
		}
		out = append(out, s[:idx])
		s = s[idx+len(sep):]
	}
}

func indexOf(s, sub string) int {
	return bytes.Index([]byte(s), []byte(sub))
}

type writer struct {
	sectors [][]byte
}

func (w *writer) allocChain(data []byte) (first uint32, fat []uint32) {
	if len(data) == 0 {
		return endOfChain, nil
	}
	var secs []uint32
	for off := 0; off < len(data); off += sectorSize {
		end := off + sectorSize
		buf := make([]byte, sectorSize)
		if end > len(data) {
			end = len(data)
		}
		copy(buf, data[off:end])
		secs = append(secs, uint32(len(w.sectors)))
		w.sectors = append(w.sectors, buf)
	}
	for i, s := range secs {
		if i == len(secs)-1 {
			fat = append(fat, endOfChainMarker(s, uint32(len(w.sectors))))
		} else {
			fat = append(fat, secs[i+1])
		}
	}
	return secs[0], fat
}

// endOfChainMarker exists purely for readability at the call site above;
// the final sector of a chain always points at endOfChain.
func endOfChainMarker(uint32, uint32) uint32 { return endOfChain }

type flatEntry struct {
	name        string
	objType     byte
	left, right int32
	child       int32
	startSector uint32
	size        uint64
}

func (w *writer) build(root *node) []byte {
	var entries []flatEntry
	entries = append(entries, flatEntry{name: root.name, objType: objRoot, left: -1, right: -1, child: -1})

	fatEntries := map[uint32]uint32{}

	var addNode func(n *node) int32
	addNode = func(n *node) int32 {
		idx := int32(len(entries))
		e := flatEntry{name: n.name, left: -1, right: -1, child: -1}
		if n.isStream {
			e.objType = objStream
			e.size = uint64(len(n.data))
			first, chain := w.allocChain(n.data)
			e.startSector = first
			for i, v := range chain {
				fatEntries[first+uint32(i)] = v
			}
			if len(chain) == 0 {
				e.startSector = endOfChain
			}
		} else {
			e.objType = objStorage
		}
		entries = append(entries, e)

		if !n.isStream {
			names := append([]string{}, n.order...)
			sort.Strings(names)
			e.child = buildChildTree(entries, idx, names, n.children, addNode)
			entries[idx] = e
		}
		return idx
	}

	names := append([]string{}, root.order...)
	sort.Strings(names)
	entries[0].child = buildChildTree(entries, 0, names, root.children, addNode)

	// Serialize directory sectors (128 bytes per entry).
	var dirBuf bytes.Buffer
	for _, e := range entries {
		writeDirEntry(&dirBuf, e)
	}
	dirData := dirBuf.Bytes()
	for len(dirData)%sectorSize != 0 {
		dirData = append(dirData, 0)
	}
	dirFirst, dirChain := w.allocChain(dirData)
	for i, v := range dirChain {
		fatEntries[dirFirst+uint32(i)] = v
	}

	// FAT sectors: lay out the FAT entries covering every allocated sector,
	// including the FAT sectors themselves (marked fatSector).
	numDataSectors := uint32(len(w.sectors))
	entriesPerSector := uint32(sectorSize / 4)
	numFATSectors := (numDataSectors + entriesPerSector) / entriesPerSector
	if numFATSectors == 0 {
		numFATSectors = 1
	}
	fatSectorIdx := make([]uint32, numFATSectors)
	for i := range fatSectorIdx {
		fatSectorIdx[i] = numDataSectors + uint32(i)
	}
	for _, s := range fatSectorIdx {
		fatEntries[s] = fatSector
	}
	totalSectors := numDataSectors + numFATSectors
	fatTable := make([]uint32, totalSectors)
	for i := range fatTable {
		if v, ok := fatEntries[uint32(i)]; ok {
			fatTable[i] = v
		} else {
			fatTable[i] = freeSector
		}
	}
	for _, s := range fatSectorIdx {
		buf := make([]byte, sectorSize)
		for j := uint32(0); j < entriesPerSector; j++ {
			idx := s*0 + j // placeholder, overwritten below
			_ = idx
		}
		w.sectors = append(w.sectors, buf)
	}
	// Fill FAT sector contents now that every sector (including FAT
	// sectors themselves) is accounted for.
	for si, s := range fatSectorIdx {
		buf := w.sectors[s]
		for j := uint32(0); j < entriesPerSector; j++ {
			globalIdx := uint32(si)*entriesPerSector + j
			v := uint32(freeSector)
			if int(globalIdx) < len(fatTable) {
				v = fatTable[globalIdx]
			}
			binary.LittleEndian.PutUint32(buf[j*4:j*4+4], v)
		}
	}

	return w.serializeHeader(dirFirst, fatSectorIdx)
}

func buildChildTree(entries []flatEntry, _ int32, names []string, children map[string]*node, addNode func(*node) int32) int32 {
	if len(names) == 0 {
		return -1
	}
	mid := len(names) / 2
	idx := addNode(children[names[mid]])
	left := buildChildTree(entries, -1, names[:mid], children, addNode)
	right := buildChildTree(entries, -1, names[mid+1:], children, addNode)
	entries[idx].left = left
	entries[idx].right = right
	return idx
}

func writeDirEntry(buf *bytes.Buffer, e flatEntry) {
	nameBytes := make([]byte, 64)
	u16 := []uint16{}
	for _, r := range e.name {
		u16 = append(u16, uint16(r))
	}
	for i, v := range u16 {
		if i*2+2 > 64 {
			break
		}
		binary.LittleEndian.PutUint16(nameBytes[i*2:i*2+2], v)
	}
	buf.Write(nameBytes)
	nameLen := uint16(0)
	if len(e.name) > 0 {
		nameLen = uint16(len(u16)*2 + 2)
	}
	binary.Write(buf, binary.LittleEndian, nameLen)
	buf.WriteByte(e.objType)
	buf.WriteByte(1) // color: black, for a well-formed-enough tree
	binary.Write(buf, binary.LittleEndian, e.left)
	binary.Write(buf, binary.LittleEndian, e.right)
	binary.Write(buf, binary.LittleEndian, e.child)
	buf.Write(make([]byte, 16)) // CLSID
	binary.Write(buf, binary.LittleEndian, uint32(0)) // state bits
	buf.Write(make([]byte, 8))                         // creation time
	buf.Write(make([]byte, 8))                         // modified time
	binary.Write(buf, binary.LittleEndian, e.startSector)
	binary.Write(buf, binary.LittleEndian, e.size)
}

func (w *writer) serializeHeader(dirFirst uint32, fatSectorIdx []uint32) []byte {
	var out bytes.Buffer
	out.Write(signature[:])
	out.Write(make([]byte, 16)) // CLSID
	binary.Write(&out, binary.LittleEndian, uint16(0x003E)) // minor version
	binary.Write(&out, binary.LittleEndian, uint16(0x0003)) // major version (v3, 512-byte sectors)
	binary.Write(&out, binary.LittleEndian, uint16(0xFFFE)) // byte order
	binary.Write(&out, binary.LittleEndian, uint16(9))      // sector shift: 2^9 = 512
	binary.Write(&out, binary.LittleEndian, uint16(6))      // mini sector shift: 2^6 = 64
	out.Write(make([]byte, 6))                              // reserved
	binary.Write(&out, binary.LittleEndian, uint32(0))      // num dir sectors (0 for v3)
	binary.Write(&out, binary.LittleEndian, uint32(len(fatSectorIdx)))
	binary.Write(&out, binary.LittleEndian, dirFirst)
	binary.Write(&out, binary.LittleEndian, uint32(0))            // transaction signature
	binary.Write(&out, binary.LittleEndian, uint32(miniStreamCutoffSize)) // mini-stream cutoff
	binary.Write(&out, binary.LittleEndian, uint32(endOfChain))    // first mini-FAT sector
	binary.Write(&out, binary.LittleEndian, uint32(0))             // num mini-FAT sectors
	binary.Write(&out, binary.LittleEndian, uint32(endOfChain))    // first DIFAT sector
	binary.Write(&out, binary.LittleEndian, uint32(0))             // num DIFAT sectors

	difat := [109]uint32{}
	for i := range difat {
		difat[i] = freeSector
	}
	for i, s := range fatSectorIdx {
		if i < 109 {
			difat[i] = s
		}
	}
	for _, s := range difat {
		binary.Write(&out, binary.LittleEndian, s)
	}

	for _, sec := range w.sectors {
		out.Write(sec)
	}
	return out.Bytes()
}
