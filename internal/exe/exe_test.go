// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exe

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	elfHeaderSize = 52
	elfProgSize   = 32
	elfCodeAddr   = 0x08049000
)

// tinyELF builds a 32-bit ELF executable with one loadable segment
// holding code.
func tinyELF(t *testing.T, machine elf.Machine, flags elf.ProgFlag, code []byte) []byte {
	t.Helper()
	off := uint32(elfHeaderSize + elfProgSize)
	hdr := elf.Header32{
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(machine),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     elfCodeAddr,
		Phoff:     elfHeaderSize,
		Ehsize:    elfHeaderSize,
		Phentsize: elfProgSize,
		Phnum:     1,
		Shentsize: 40,
	}
	copy(hdr.Ident[:], elf.ELFMAG)
	hdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS32)
	hdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	hdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	prog := elf.Prog32{
		Type:   uint32(elf.PT_LOAD),
		Off:    off,
		Vaddr:  elfCodeAddr,
		Paddr:  elfCodeAddr,
		Filesz: uint32(len(code)),
		Memsz:  uint32(len(code)),
		Flags:  uint32(flags),
		Align:  0x1000,
	}
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, hdr))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, prog))
	buf.Write(code)
	return buf.Bytes()
}

var code = []byte{
	0x55, 0x89, 0xE5, // push ebp; mov ebp, esp
	0x31, 0xC0, // xor eax, eax
	0x5D, 0xC3, // pop ebp; ret
}

func TestOpen(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bin/tiny", tinyELF(t, elf.EM_386, elf.PF_R|elf.PF_X, code), 0o755))
	require.NoError(t, afero.WriteFile(fs, "/bin/flat", code, 0o644))

	t.Run("elf", func(t *testing.T) {
		img, err := Open(fs, "/bin/tiny")
		require.NoError(t, err)
		defer img.Close()
		assert.Equal(t, FormatELF, img.Format)
		assert.Equal(t, "/bin/tiny", img.Path)
		assert.Equal(t, code, img.Data)
		assert.Equal(t, uint32(elfCodeAddr), img.Base)
		assert.Equal(t, uint32(elfCodeAddr), img.Entry)
		assert.Empty(t, img.Symbols)
		assert.Equal(t, []uint32{elfCodeAddr}, img.Entries())
	})

	t.Run("raw", func(t *testing.T) {
		img, err := Open(fs, "/bin/flat")
		require.NoError(t, err)
		defer img.Close()
		assert.Equal(t, FormatRaw, img.Format)
		assert.Equal(t, code, img.Data)
		assert.Equal(t, uint32(0), img.Base)
		assert.Equal(t, uint32(0), img.Entry)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Open(fs, "/bin/none")
		assert.Error(t, err)
	})
}

func TestOpenRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"x86-64", tinyELF(t, elf.EM_X86_64, elf.PF_R|elf.PF_X, code), ErrArch},
		{"no executable segment", tinyELF(t, elf.EM_386, elf.PF_R, code), ErrNoCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "a.out", tt.data, 0o755))
			_, err := Open(fs, "a.out")
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	t.Run("truncated pe", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "a.exe", []byte("MZ\x90\x00"), 0o644))
		_, err := Open(fs, "a.exe")
		assert.Error(t, err)
	})
}

func TestRebase(t *testing.T) {
	img := &Image{
		Data:    code,
		Base:    0,
		Entry:   3,
		Symbols: []Sym{{Name: "f", Addr: 5}},
	}
	img.Rebase(0x400000)
	assert.Equal(t, uint32(0x400000), img.Base)
	assert.Equal(t, uint32(0x400003), img.Entry)
	assert.Equal(t, uint32(0x400005), img.Symbols[0].Addr)
	assert.True(t, img.Contains(0x400006))
	assert.False(t, img.Contains(0x400007))
	assert.False(t, img.Contains(0x3FFFFF))
}

func TestAddSym(t *testing.T) {
	img := &Image{Data: code, Base: 0x1000}
	img.addSym("inside", 0x1003, 2)
	img.addSym("before", 0x0FFF, 0)
	img.addSym("after", 0x1007, 0)
	img.addSym("", 0x1000, 0)
	img.addSym("start", 0x1000, 7)
	img.sortSymbols()
	assert.Equal(t, []Sym{
		{Name: "start", Addr: 0x1000, Size: 7},
		{Name: "inside", Addr: 0x1003, Size: 2},
	}, img.Symbols)

	img.Entry = 0x1000
	assert.Equal(t, []uint32{0x1000, 0x1003}, img.Entries())
}

func TestPrologues(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want []uint32
	}{
		{"none", []byte{0x90, 0xC3}, nil},
		{"gnu", []byte{0x55, 0x89, 0xE5, 0xC3}, []uint32{0x100}},
		{"msvc", []byte{0xCC, 0x55, 0x8B, 0xEC}, []uint32{0x101}},
		{"hotpatch", []byte{0x8B, 0xFF, 0x55, 0x8B, 0xEC}, []uint32{0x100}},
		{"enter", []byte{0xC3, 0xC8, 0x10, 0x00, 0x00}, []uint32{0x101}},
		{"enter with nesting", []byte{0xC8, 0x10, 0x00, 0x01}, nil},
		{"truncated", []byte{0x90, 0x55, 0x89}, nil},
		{
			"several",
			[]byte{0x55, 0x89, 0xE5, 0xC3, 0x55, 0x8B, 0xEC, 0xC3},
			[]uint32{0x100, 0x104},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Prologues(tt.data, 0x100))
		})
	}
}
