// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import "fmt"

// decodeFunc decodes the operands of an instruction whose prefixes and
// opcode have been consumed.
type decodeFunc func(d *Decoder, opcode uint16) (Op, []Arg, error)

// prefixClass selects a handler by the operand-size prefix.
type prefixClass uint8

const (
	classAny prefixClass = iota
	class16              // 0x66 present
	class32              // 0x66 absent
)

func (c prefixClass) String() string {
	switch c {
	case class16:
		return "16"
	case class32:
		return "32"
	}
	return "any"
}

const anyReg = -1

// handler is one dispatch entry. Opcodes 0x0F xx are keyed as 0x0Fxx.
type handler struct {
	opcode uint16
	class  prefixClass
	reg    int8 // ModR/M reg field, or anyReg
	fn     decodeFunc
}

// table maps (opcode, prefix class, reg) to a handler. Keys never
// overlap, so at most one handler accepts any instruction.
type table struct {
	entries map[uint16][]handler
	group   map[uint16]bool // opcode needs the reg field to dispatch
}

func newTable(hs []handler) (*table, error) {
	t := &table{
		entries: make(map[uint16][]handler),
		group:   make(map[uint16]bool),
	}
	for _, h := range hs {
		for _, o := range t.entries[h.opcode] {
			if overlaps(o, h) {
				return nil, fmt.Errorf("opcode 0x%X class %v reg %d: %w", h.opcode, h.class, h.reg, ErrAmbiguous)
			}
		}
		t.entries[h.opcode] = append(t.entries[h.opcode], h)
		if h.reg != anyReg {
			t.group[h.opcode] = true
		}
	}
	return t, nil
}

func mustTable(hs []handler) *table {
	t, err := newTable(hs)
	if err != nil {
		panic(err)
	}
	return t
}

func overlaps(a, b handler) bool {
	class := a.class == classAny || b.class == classAny || a.class == b.class
	reg := a.reg == anyReg || b.reg == anyReg || a.reg == b.reg
	return class && reg
}

func (t *table) lookup(d *Decoder, opcode uint16) (decodeFunc, error) {
	hs := t.entries[opcode]
	if len(hs) == 0 {
		return nil, ErrUnknownOpcode
	}
	class := class32
	if d.prefix&PrefixOpSize != 0 {
		class = class16
	}
	reg := int8(anyReg)
	if t.group[opcode] {
		r, ok := d.peekReg()
		if !ok {
			return nil, ErrTruncated
		}
		reg = int8(r)
	}
	for _, h := range hs {
		if (h.class == classAny || h.class == class) && (h.reg == anyReg || h.reg == reg) {
			return h.fn, nil
		}
	}
	return nil, ErrUnknownOpcode
}

// size returns the number of dispatch entries.
func (t *table) size() int {
	n := 0
	for _, hs := range t.entries {
		n += len(hs)
	}
	return n
}
