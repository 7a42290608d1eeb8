// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix

package exe

import (
	"os"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// mapFile maps files of the host file system read-only and reads
// everything else into memory. The returned release func may be nil.
func mapFile(f afero.File, size int64) ([]byte, func() error, error) {
	osf, ok := f.(*os.File)
	if !ok || size <= 0 || int64(int(size)) != size {
		return readFile(f)
	}
	data, err := unix.Mmap(int(osf.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return readFile(f)
	}
	return data, func() error { return unix.Munmap(data) }, nil
}
