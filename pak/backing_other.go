// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

//go:build !unix

package pak

// openBacking falls back to a plain read on platforms without the POSIX
// mmap syscalls wired up in backing_unix.go (e.g. Windows).
func openBacking(path string) ([]byte, func() error, error) {
	return readWhole(path)
}
