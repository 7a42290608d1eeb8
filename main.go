// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Program x86lift disassembles 32-bit x86 code, recovers its control flow
// and prints it as C-like text.
package main

import (
	"os"

	"github.com/google/x86lift/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
