// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exe

import "github.com/spf13/afero"

func readFile(f afero.File) ([]byte, func() error, error) {
	data, err := afero.ReadAll(f)
	if err != nil {
		return nil, nil, err
	}
	return data, nil, nil
}
