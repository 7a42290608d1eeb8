// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	"fmt"
	"strings"
)

// An Arg is a single decoded operand. The set of implementations is
// closed: Reg, MemDirect, MemBase, MemBaseDisp, MemIndex, Imm and Rel.
// All of them are comparable values.
type Arg interface {
	String() string
	isArg()
}

// Mem is implemented by the four memory operand shapes.
type Mem interface {
	Arg
	Width() Width
	Segment() Reg
}

// MemDirect is an absolute address, [disp32].
type MemDirect struct {
	Seg  Reg
	Size Width
	Addr uint32
}

// MemBase is [base].
type MemBase struct {
	Seg  Reg
	Size Width
	Base Reg
}

// MemBaseDisp is [base+disp].
type MemBaseDisp struct {
	Seg  Reg
	Size Width
	Base Reg
	Disp int32
}

// MemIndex is [base+index*scale+disp]. Base may be RegNone.
type MemIndex struct {
	Seg   Reg
	Size  Width
	Base  Reg
	Index Reg
	Scale uint8
	Disp  int32
}

// Imm is an immediate. Value has already been sign-extended (or
// zero-extended) to Size and is masked to it.
type Imm struct {
	Value uint32
	Size  Width
}

// Rel is a resolved relative branch target.
type Rel struct {
	Target uint32
}

func (Reg) isArg()         {}
func (MemDirect) isArg()   {}
func (MemBase) isArg()     {}
func (MemBaseDisp) isArg() {}
func (MemIndex) isArg()    {}
func (Imm) isArg()         {}
func (Rel) isArg()         {}

func (m MemDirect) Width() Width   { return m.Size }
func (m MemBase) Width() Width     { return m.Size }
func (m MemBaseDisp) Width() Width { return m.Size }
func (m MemIndex) Width() Width    { return m.Size }

func (m MemDirect) Segment() Reg   { return m.Seg }
func (m MemBase) Segment() Reg     { return m.Seg }
func (m MemBaseDisp) Segment() Reg { return m.Seg }
func (m MemIndex) Segment() Reg    { return m.Seg }

// Int returns the immediate as a signed value of its width.
func (i Imm) Int() int32 {
	switch i.Size {
	case W8:
		return int32(int8(i.Value))
	case W16:
		return int32(int16(i.Value))
	}
	return int32(i.Value)
}

func (i Imm) String() string { return fmt.Sprintf("0x%X", i.Value) }

func (r Rel) String() string { return fmt.Sprintf("0x%08X", r.Target) }

func memString(seg Reg, w Width, inner string) string {
	var b strings.Builder
	b.WriteString(w.ptr())
	if seg != RegNone {
		b.WriteString(seg.String())
		b.WriteByte(':')
	}
	b.WriteByte('[')
	b.WriteString(inner)
	b.WriteByte(']')
	return b.String()
}

func dispString(d int32) string {
	if d < 0 {
		return fmt.Sprintf("-0x%X", -int64(d))
	}
	return fmt.Sprintf("+0x%X", d)
}

func (m MemDirect) String() string {
	return memString(m.Seg, m.Size, fmt.Sprintf("0x%08X", m.Addr))
}

func (m MemBase) String() string {
	return memString(m.Seg, m.Size, m.Base.String())
}

func (m MemBaseDisp) String() string {
	return memString(m.Seg, m.Size, m.Base.String()+dispString(m.Disp))
}

func (m MemIndex) String() string {
	var s string
	if m.Base != RegNone {
		s = m.Base.String() + "+"
	}
	s += fmt.Sprintf("%s*%d", m.Index, m.Scale)
	if m.Disp != 0 || m.Base == RegNone {
		s += dispString(m.Disp)
	}
	return memString(m.Seg, m.Size, s)
}

// ArgWidth returns the access width of a, or 0 for Rel.
func ArgWidth(a Arg) Width {
	switch a := a.(type) {
	case Reg:
		return a.Width()
	case Mem:
		return a.Width()
	case Imm:
		return a.Size
	}
	return 0
}
