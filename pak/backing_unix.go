// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

//go:build unix

package pak

import (
	"os"

	"golang.org/x/sys/unix"
)

// openBacking maps the archive file into memory read-only. This avoids a
// full-file copy for the often-large pak0.pak/pak1.pak bundles; the
// returned byte slice aliases kernel page cache until Close unmaps it.
func openBacking(path string) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	size := info.Size()
	if size == 0 {
		return readWhole(path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		// Fall back to a regular read rather than failing outright;
		// some filesystems (overlayfs variants, certain CI sandboxes)
		// reject mmap even though the file itself is readable.
		return readWhole(path)
	}
	return data, func() error { return unix.Munmap(data) }, nil
}
