// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !unix

package exe

import "github.com/spf13/afero"

func mapFile(f afero.File, _ int64) ([]byte, func() error, error) {
	return readFile(f)
}
