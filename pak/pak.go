// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package pak reads Quake PACK archives: a flat virtual file tree of
// named byte blobs consumed by the bsp and mdl decoders and by the asset
// loader.
//
// Package pak is provided as part of the qcore engine core.
package pak

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	magicSize  = 4
	entrySize  = 64
	pathSize   = 56
	headerSize = magicSize + 8
)

var magic = [magicSize]byte{'P', 'A', 'C', 'K'}

// Archive is a loaded PACK directory: file paths mapped to their byte
// ranges within the archive. Archive keeps the whole file resident (via
// mmap where available, otherwise a single read) rather than re-opening
// per lookup, so repeated asset loads share one long-lived reader.
type Archive struct {
	data    []byte
	entries map[string]entry
	closer  func() error
}

type entry struct {
	offset int32
	size   int32
}

// Open loads the PACK archive at path and parses its directory.
// The returned Archive owns file-backed memory; call Close when done.
func Open(path string) (*Archive, error) {
	data, closer, err := openBacking(path)
	if err != nil {
		return nil, fmt.Errorf("pak: open %s: %w", path, err)
	}
	a, err := Decode(data)
	if err != nil {
		closer()
		return nil, err
	}
	a.closer = closer
	return a, nil
}

// Decode parses an already-resident PACK image. The returned Archive
// keeps a reference to data; the caller must not mutate it afterward.
func Decode(data []byte) (*Archive, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("pak: file too small for header")
	}
	if !bytes.Equal(data[:magicSize], magic[:]) {
		return nil, fmt.Errorf("pak: bad magic %q", data[:magicSize])
	}
	dirOffset := int32(binary.LittleEndian.Uint32(data[4:8]))
	dirSize := int32(binary.LittleEndian.Uint32(data[8:12]))
	if dirOffset < 0 || dirSize < 0 || dirSize%entrySize != 0 {
		return nil, fmt.Errorf("pak: invalid directory offset=%d size=%d", dirOffset, dirSize)
	}
	end := int64(dirOffset) + int64(dirSize)
	if end > int64(len(data)) {
		return nil, fmt.Errorf("pak: directory extends past end of file")
	}

	count := int(dirSize) / entrySize
	entries := make(map[string]entry, count)
	for i := 0; i < count; i++ {
		rec := data[int(dirOffset)+i*entrySize : int(dirOffset)+(i+1)*entrySize]
		name := cString(rec[:pathSize])
		off := int32(binary.LittleEndian.Uint32(rec[pathSize : pathSize+4]))
		size := int32(binary.LittleEndian.Uint32(rec[pathSize+4 : pathSize+8]))
		if off < 0 || size < 0 || int64(off)+int64(size) > int64(len(data)) {
			return nil, fmt.Errorf("pak: entry %q out of range", name)
		}
		entries[name] = entry{offset: off, size: size}
	}
	return &Archive{data: data, entries: entries}, nil
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// Open returns a reader over the named file's bytes, or an error if the
// path is not present in the archive.
func (a *Archive) Open(path string) (io.Reader, error) {
	e, ok := a.entries[path]
	if !ok {
		return nil, fmt.Errorf("pak: no such file %q", path)
	}
	return bytes.NewReader(a.data[e.offset : e.offset+e.size]), nil
}

// Bytes returns a copy of the named file's bytes.
func (a *Archive) Bytes(path string) ([]byte, error) {
	e, ok := a.entries[path]
	if !ok {
		return nil, fmt.Errorf("pak: no such file %q", path)
	}
	out := make([]byte, e.size)
	copy(out, a.data[e.offset:e.offset+e.size])
	return out, nil
}

// Has reports whether path exists in the archive.
func (a *Archive) Has(path string) bool {
	_, ok := a.entries[path]
	return ok
}

// Paths returns every path stored in the archive, in no particular order.
func (a *Archive) Paths() []string {
	paths := make([]string, 0, len(a.entries))
	for p := range a.entries {
		paths = append(paths, p)
	}
	return paths
}

// Close releases any file-backed memory. Safe to call on an Archive
// returned from Decode, where it is a no-op.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer()
	}
	return nil
}

// os.ReadFile fallback used on platforms without the mmap syscall wired
// up in backing_unix.go / backing_other.go.
func readWhole(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}
