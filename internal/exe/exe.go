// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package exe loads the code of 32-bit x86 executables and flat images.
package exe

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/afero"
)

// Format names an image format.
type Format string

const (
	FormatELF   Format = "elf"
	FormatPE    Format = "pe"
	FormatMachO Format = "macho"
	FormatRaw   Format = "raw"
)

var (
	// ErrArch is returned for executables that are not 32-bit x86.
	ErrArch = errors.New("not a 32-bit x86 executable")

	// ErrNoCode is returned when no code region contains the entry point.
	ErrNoCode = errors.New("no code at entry point")
)

// Sym is a named address inside the code region.
type Sym struct {
	Name string
	Addr uint32
	Size uint32
}

// Image is the code region of an executable: the loadable segment or
// section that holds the entry point.
type Image struct {
	Path   string
	Format Format

	// Data is the code region; Data[0] lives at Base. It may alias a
	// read-only mapping of the file and is valid until Close.
	Data  []byte
	Base  uint32
	Entry uint32

	// Symbols lists the symbols inside Data, by address.
	Symbols []Sym

	release func() error
}

// Open loads the image at path from fs. Files that are neither ELF, PE
// nor Mach-O are loaded whole as raw images at base 0 with entry 0.
func Open(fs afero.Fs, path string) (*Image, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	data, release, err := mapFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	img, err := load(data)
	if err != nil {
		if release != nil {
			release()
		}
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	img.Path = path
	img.release = release
	return img, nil
}

func load(data []byte) (*Image, error) {
	switch {
	case bytes.HasPrefix(data, []byte("\x7FELF")):
		return loadELF(data)
	case bytes.HasPrefix(data, []byte("MZ")):
		return loadPE(data)
	case bytes.HasPrefix(data, []byte("\xFE\xED\xFA")) ||
		len(data) > 1 && bytes.HasPrefix(data[1:], []byte("\xFA\xED\xFE")):
		return loadMachO(data)
	}
	return &Image{Format: FormatRaw, Data: data}, nil
}

// Close releases the file mapping behind Data.
func (img *Image) Close() error {
	if img.release == nil {
		return nil
	}
	err := img.release()
	img.release, img.Data = nil, nil
	return err
}

// Rebase moves the image so that Data[0] lives at base. Entry and symbol
// addresses move with it.
func (img *Image) Rebase(base uint32) {
	delta := base - img.Base
	img.Base = base
	img.Entry += delta
	for i := range img.Symbols {
		img.Symbols[i].Addr += delta
	}
}

// Contains reports whether addr falls inside Data.
func (img *Image) Contains(addr uint32) bool {
	return addr >= img.Base && uint64(addr-img.Base) < uint64(len(img.Data))
}

// Entries returns the entry point followed by the addresses of the
// symbols, without duplicates.
func (img *Image) Entries() []uint32 {
	out := []uint32{img.Entry}
	seen := map[uint32]bool{img.Entry: true}
	for _, s := range img.Symbols {
		if !seen[s.Addr] {
			seen[s.Addr] = true
			out = append(out, s.Addr)
		}
	}
	return out
}

// addSym records a symbol if it falls inside Data.
func (img *Image) addSym(name string, addr, size uint64) {
	if name == "" || addr > 0xFFFFFFFF || !img.Contains(uint32(addr)) {
		return
	}
	img.Symbols = append(img.Symbols, Sym{Name: name, Addr: uint32(addr), Size: uint32(size)})
}

func (img *Image) sortSymbols() {
	sort.SliceStable(img.Symbols, func(i, j int) bool {
		return img.Symbols[i].Addr < img.Symbols[j].Addr
	})
}

// region returns data[off:off+size] or an error when it is out of file
// bounds.
func region(data []byte, off, size uint64) ([]byte, error) {
	if off > uint64(len(data)) || size > uint64(len(data))-off {
		return nil, fmt.Errorf("region 0x%X+0x%X outside file of 0x%X bytes", off, size, len(data))
	}
	return data[off : off+size], nil
}
