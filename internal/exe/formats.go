// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exe

import (
	"bytes"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"fmt"
)

func loadELF(data []byte) (*Image, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if f.Class != elf.ELFCLASS32 || f.Machine != elf.EM_386 {
		return nil, fmt.Errorf("%v %v: %w", f.Class, f.Machine, ErrArch)
	}
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD || prog.Flags&elf.PF_X == 0 {
			continue
		}
		if prog.Vaddr <= f.Entry && f.Entry < prog.Vaddr+prog.Filesz {
			code, err := region(data, prog.Off, prog.Filesz)
			if err != nil {
				return nil, err
			}
			img := &Image{
				Format: FormatELF,
				Data:   code,
				Base:   uint32(prog.Vaddr),
				Entry:  uint32(f.Entry),
			}
			// Stripped binaries have no symbol table.
			syms, _ := f.Symbols()
			for _, sym := range syms {
				if elf.ST_TYPE(sym.Info) == elf.STT_FUNC {
					img.addSym(sym.Name, sym.Value, sym.Size)
				}
			}
			img.sortSymbols()
			return img, nil
		}
	}
	return nil, fmt.Errorf("entry 0x%08X: %w", f.Entry, ErrNoCode)
}

func loadPE(data []byte) (*Image, error) {
	f, err := pe.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	oh, ok := f.OptionalHeader.(*pe.OptionalHeader32)
	if f.Machine != pe.IMAGE_FILE_MACHINE_I386 || !ok {
		return nil, fmt.Errorf("machine 0x%X: %w", f.Machine, ErrArch)
	}
	rva := oh.AddressOfEntryPoint
	for _, sect := range f.Sections {
		size := sect.VirtualSize
		if sect.Size < size {
			size = sect.Size
		}
		if sect.VirtualAddress <= rva && rva < sect.VirtualAddress+size {
			code, err := region(data, uint64(sect.Offset), uint64(size))
			if err != nil {
				return nil, err
			}
			img := &Image{
				Format: FormatPE,
				Data:   code,
				Base:   oh.ImageBase + sect.VirtualAddress,
				Entry:  oh.ImageBase + rva,
			}
			for _, sym := range f.Symbols {
				if sym.SectionNumber <= 0 || int(sym.SectionNumber) > len(f.Sections) {
					continue
				}
				s := f.Sections[sym.SectionNumber-1]
				img.addSym(sym.Name, uint64(oh.ImageBase)+uint64(s.VirtualAddress)+uint64(sym.Value), 0)
			}
			img.sortSymbols()
			return img, nil
		}
	}
	return nil, fmt.Errorf("entry 0x%08X: %w", oh.ImageBase+rva, ErrNoCode)
}

func loadMachO(data []byte) (*Image, error) {
	f, err := macho.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if f.Cpu != macho.Cpu386 {
		return nil, fmt.Errorf("cpu %v: %w", f.Cpu, ErrArch)
	}
	text := f.Section("__text")
	if text == nil {
		return nil, fmt.Errorf("no __text section: %w", ErrNoCode)
	}
	code, err := region(data, uint64(text.Offset), text.Size)
	if err != nil {
		return nil, err
	}
	img := &Image{
		Format: FormatMachO,
		Data:   code,
		Base:   uint32(text.Addr),
		Entry:  uint32(text.Addr),
	}
	if f.Symtab != nil {
		for _, sym := range f.Symtab.Syms {
			img.addSym(sym.Name, sym.Value, 0)
		}
	}
	img.sortSymbols()
	// The thread state holding the real entry is not decoded; prefer the
	// conventional start symbols.
	for _, name := range []string{"start", "_main"} {
		for _, sym := range img.Symbols {
			if sym.Name == name {
				img.Entry = sym.Addr
				return img, nil
			}
		}
	}
	return img, nil
}
