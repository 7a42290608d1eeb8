// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package decode decodes 32-bit x86 machine code into instructions.
//
// A Decoder owns one cursor over one buffer; it is not safe for
// concurrent use, but any number of decoders may share a read-only
// buffer.
package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// maxInstLen is the architectural limit on instruction length.
const maxInstLen = 15

var (
	// ErrTruncated is returned when the buffer ends inside an instruction.
	ErrTruncated = errors.New("truncated instruction")

	// ErrUnknownOpcode is returned when no handler accepts the opcode.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrUnsupported is returned for encodings that are recognised but
	// not decoded, such as 16-bit addressing.
	ErrUnsupported = errors.New("unsupported encoding")

	// ErrAmbiguous is returned when two handlers accept the same key.
	ErrAmbiguous = errors.New("ambiguous opcode dispatch")

	// ErrOutOfRange is returned when seeking outside the buffer.
	ErrOutOfRange = errors.New("address outside buffer")

	errModRMReused = errors.New("ModR/M byte decoded twice")
)

// Error describes a failed decode.
type Error struct {
	Addr   uint32 // address of the first byte of the instruction
	Offset int    // byte offset of Addr in the buffer
	Bytes  []byte // bytes available at Addr, at most 15
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("decode at 0x%08X (offset 0x%X, bytes % X): %v", e.Addr, e.Offset, e.Bytes, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Decoder is a cursor over a code buffer mapped at a base address.
type Decoder struct {
	buf  []byte
	base uint32
	pos  int

	// Per-instruction state, reset by Decode.
	start  int
	prefix Prefix
	seg    Reg
	modrm  bool

	table *table
}

// NewDecoder returns a decoder for buf, whose first byte lives at base.
func NewDecoder(buf []byte, base uint32) *Decoder {
	return &Decoder{buf: buf, base: base, table: defaultTable}
}

// Decode decodes the single instruction at the start of buf.
func Decode(buf []byte, addr uint32) (Inst, error) {
	return NewDecoder(buf, addr).Decode()
}

// Contains reports whether addr lies inside the buffer.
func (d *Decoder) Contains(addr uint32) bool {
	return addr >= d.base && uint64(addr-d.base) < uint64(len(d.buf))
}

// Pos returns the address of the cursor.
func (d *Decoder) Pos() uint32 { return d.addrOf(d.pos) }

// Seek moves the cursor to addr.
func (d *Decoder) Seek(addr uint32) error {
	if !d.Contains(addr) {
		return fmt.Errorf("seek 0x%08X: %w", addr, ErrOutOfRange)
	}
	d.pos = int(addr - d.base)
	return nil
}

func (d *Decoder) addrOf(pos int) uint32 { return d.base + uint32(pos) }

// CanRead reports whether n more bytes are available at the cursor.
func (d *Decoder) CanRead(n int) bool {
	return n >= 0 && d.pos+n <= len(d.buf)
}

// Peek returns the byte off bytes past the cursor without consuming it.
func (d *Decoder) Peek(off int) (byte, bool) {
	p := d.pos + off
	if off < 0 || p >= len(d.buf) {
		return 0, false
	}
	return d.buf[p], true
}

// ReadU8 consumes one byte.
func (d *Decoder) ReadU8() (byte, error) {
	if !d.CanRead(1) {
		return 0, ErrTruncated
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

// ReadU16 consumes a little-endian word.
func (d *Decoder) ReadU16() (uint16, error) {
	if !d.CanRead(2) {
		return 0, ErrTruncated
	}
	v := binary.LittleEndian.Uint16(d.buf[d.pos:])
	d.pos += 2
	return v, nil
}

// ReadU32 consumes a little-endian dword.
func (d *Decoder) ReadU32() (uint32, error) {
	if !d.CanRead(4) {
		return 0, ErrTruncated
	}
	v := binary.LittleEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v, nil
}

// Decode decodes the instruction at the cursor and advances past it.
// On failure the cursor is left at the start of the instruction and the
// returned error is an *Error.
func (d *Decoder) Decode() (Inst, error) {
	d.start, d.prefix, d.seg, d.modrm = d.pos, 0, RegNone, false
	inst, err := d.decode()
	if err != nil {
		end := d.start + maxInstLen
		if end > len(d.buf) {
			end = len(d.buf)
		}
		e := &Error{
			Addr:   d.addrOf(d.start),
			Offset: d.start,
			Bytes:  append([]byte(nil), d.buf[d.start:end]...),
			Err:    err,
		}
		d.pos = d.start
		return Inst{}, e
	}
	return inst, nil
}

func (d *Decoder) decode() (Inst, error) {
	var b byte
	for {
		if d.pos-d.start >= maxInstLen-1 {
			return Inst{}, fmt.Errorf("too many prefixes: %w", ErrUnsupported)
		}
		var err error
		if b, err = d.ReadU8(); err != nil {
			return Inst{}, err
		}
		if !d.prefixByte(b) {
			break
		}
	}

	opcode := uint16(b)
	if b == 0x0F {
		b2, err := d.ReadU8()
		if err != nil {
			return Inst{}, err
		}
		opcode = 0x0F00 | uint16(b2)
	}

	fn, err := d.table.lookup(d, opcode)
	if err != nil {
		return Inst{}, err
	}
	op, args, err := fn(d, opcode)
	if err != nil {
		return Inst{}, err
	}
	if d.pos-d.start > maxInstLen {
		return Inst{}, fmt.Errorf("instruction longer than %d bytes: %w", maxInstLen, ErrUnsupported)
	}
	return Inst{
		Addr:   d.addrOf(d.start),
		Len:    d.pos - d.start,
		Op:     op,
		Args:   args,
		Prefix: d.prefix,
	}, nil
}

func (d *Decoder) prefixByte(b byte) bool {
	switch b {
	case 0xF0:
		d.prefix |= PrefixLock
	case 0xF2:
		d.prefix |= PrefixRepne
	case 0xF3:
		d.prefix |= PrefixRep
	case 0x66:
		d.prefix |= PrefixOpSize
	case 0x67:
		d.prefix |= PrefixAddrSize
	case 0x26:
		d.setSeg(ES)
	case 0x2E:
		d.setSeg(CS)
	case 0x36:
		d.setSeg(SS)
	case 0x3E:
		d.setSeg(DS)
	case 0x64:
		d.setSeg(FS)
	case 0x65:
		d.setSeg(GS)
	default:
		return false
	}
	return true
}

func (d *Decoder) setSeg(r Reg) {
	d.prefix |= PrefixSeg
	d.seg = r
}

// width returns the operand width for the current instruction: 8 when
// the handler forces byte operands, else 16 or 32 by the 0x66 prefix.
func (d *Decoder) width(byteOp bool) Width {
	switch {
	case byteOp:
		return W8
	case d.prefix&PrefixOpSize != 0:
		return W16
	}
	return W32
}

// imm reads an immediate of width w.
func (d *Decoder) imm(w Width) (Imm, error) {
	switch w {
	case W8:
		b, err := d.ReadU8()
		return Imm{Value: uint32(b), Size: W8}, err
	case W16:
		v, err := d.ReadU16()
		return Imm{Value: uint32(v), Size: W16}, err
	}
	v, err := d.ReadU32()
	return Imm{Value: v, Size: W32}, err
}

// immSext8 reads an 8-bit immediate sign-extended to w.
func (d *Decoder) immSext8(w Width) (Imm, error) {
	b, err := d.ReadU8()
	if err != nil {
		return Imm{}, err
	}
	return Imm{Value: uint32(int32(int8(b))) & w.Mask(), Size: w}, nil
}

// rel8, rel16 and rel32 read a displacement and resolve it against the end of
// the instruction, so they must be the last read of a handler.
func (d *Decoder) rel8() (Rel, error) {
	b, err := d.ReadU8()
	if err != nil {
		return Rel{}, err
	}
	return Rel{Target: d.addrOf(d.pos) + uint32(int32(int8(b)))}, nil
}

func (d *Decoder) rel16() (Rel, error) {
	v, err := d.ReadU16()
	if err != nil {
		return Rel{}, err
	}
	return Rel{Target: (d.addrOf(d.pos) + uint32(int32(int16(v)))) & 0xFFFF}, nil
}

func (d *Decoder) rel32() (Rel, error) {
	v, err := d.ReadU32()
	if err != nil {
		return Rel{}, err
	}
	return Rel{Target: d.addrOf(d.pos) + v}, nil
}
