// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

var defaultTable = mustTable(catalog())

// aluOps is the operation order shared by opcodes 0x00-0x3D and the
// /reg field of 0x80-0x83.
var aluOps = [8]Op{ADD, OR, ADC, SBB, AND, SUB, XOR, CMP}

// shiftOps is the /reg order of the shift group.
var shiftOps = [8]Op{ROL, ROR, RCL, RCR, SHL, SHR, SAL, SAR}

func catalog() []handler {
	var hs []handler
	add := func(opcode uint16, class prefixClass, reg int, fn decodeFunc) {
		hs = append(hs, handler{opcode: opcode, class: class, reg: int8(reg), fn: fn})
	}
	one := func(opcode uint16, fn decodeFunc) { add(opcode, classAny, anyReg, fn) }
	grp := func(opcode uint16, reg int, fn decodeFunc) { add(opcode, classAny, reg, fn) }
	// sized registers a 16-bit and a 32-bit handler for the same opcode.
	sized := func(opcode uint16, fn func(w Width) decodeFunc) {
		add(opcode, class16, anyReg, fn(W16))
		add(opcode, class32, anyReg, fn(W32))
	}

	for i, op := range aluOps {
		base := uint16(i * 8)
		one(base+0, opEG(op, true))
		one(base+1, opEG(op, false))
		one(base+2, opGE(op, true))
		one(base+3, opGE(op, false))
		one(base+4, opAccImm(op, W8))
		sized(base+5, func(w Width) decodeFunc { return opAccImm(op, w) })

		grp(0x80, i, opEImm(op, true, false))
		grp(0x81, i, opEImm(op, false, false))
		grp(0x82, i, opEImm(op, true, false))
		grp(0x83, i, opEImm(op, false, true))
	}

	one(0x06, fixed(PUSH, ES))
	one(0x07, fixed(POP, ES))
	one(0x0E, fixed(PUSH, CS))
	one(0x16, fixed(PUSH, SS))
	one(0x17, fixed(POP, SS))
	one(0x1E, fixed(PUSH, DS))
	one(0x1F, fixed(POP, DS))
	one(0x0FA0, fixed(PUSH, FS))
	one(0x0FA1, fixed(POP, FS))
	one(0x0FA8, fixed(PUSH, GS))
	one(0x0FA9, fixed(POP, GS))

	for r := uint16(0); r < 8; r++ {
		one(0x40+r, opReg(INC))
		one(0x48+r, opReg(DEC))
		one(0x50+r, opReg(PUSH))
		one(0x58+r, opReg(POP))
		one(0x90+r, opXchgAcc)
		one(0xB0+r, opMovRegImm(true))
		one(0xB8+r, opMovRegImm(false))
	}

	one(0x60, fixed(PUSHAD))
	one(0x61, fixed(POPAD))
	one(0x68, opPushImm(false))
	one(0x6A, opPushImm(true))
	one(0x69, opIMul3(false))
	one(0x6B, opIMul3(true))

	for cc := uint16(0); cc < 16; cc++ {
		one(0x70+cc, opRel8(JO+Op(cc)))
		add(0x0F80+cc, class16, anyReg, opRel16(JO+Op(cc)))
		add(0x0F80+cc, class32, anyReg, opRel32(JO+Op(cc)))
		one(0x0F90+cc, opSetcc(SETO+Op(cc)))
		one(0x0F40+cc, opGE(CMOVO+Op(cc), false))
	}

	one(0x84, opEG(TEST, true))
	one(0x85, opEG(TEST, false))
	one(0x86, opEG(XCHG, true))
	one(0x87, opEG(XCHG, false))
	one(0x88, opEG(MOV, true))
	one(0x89, opEG(MOV, false))
	one(0x8A, opGE(MOV, true))
	one(0x8B, opGE(MOV, false))
	one(0x8C, opMovSeg(false))
	one(0x8D, opLea)
	one(0x8E, opMovSeg(true))
	grp(0x8F, 0, opE(POP, false))

	add(0x98, class16, anyReg, fixed(CBW))
	add(0x98, class32, anyReg, fixed(CWDE))
	add(0x99, class16, anyReg, fixed(CWD))
	add(0x99, class32, anyReg, fixed(CDQ))
	one(0x9C, fixed(PUSHFD))
	one(0x9D, fixed(POPFD))
	one(0x9E, fixed(SAHF))
	one(0x9F, fixed(LAHF))

	one(0xA0, opMoffs(true, false))
	one(0xA1, opMoffs(false, false))
	one(0xA2, opMoffs(true, true))
	one(0xA3, opMoffs(false, true))
	one(0xA4, fixed(MOVSB))
	add(0xA5, class16, anyReg, fixed(MOVSW))
	add(0xA5, class32, anyReg, fixed(MOVSD))
	one(0xA6, fixed(CMPSB))
	add(0xA7, class16, anyReg, fixed(CMPSW))
	add(0xA7, class32, anyReg, fixed(CMPSD))
	one(0xA8, opAccImm(TEST, W8))
	sized(0xA9, func(w Width) decodeFunc { return opAccImm(TEST, w) })
	one(0xAA, fixed(STOSB))
	add(0xAB, class16, anyReg, fixed(STOSW))
	add(0xAB, class32, anyReg, fixed(STOSD))
	one(0xAC, fixed(LODSB))
	add(0xAD, class16, anyReg, fixed(LODSW))
	add(0xAD, class32, anyReg, fixed(LODSD))
	one(0xAE, fixed(SCASB))
	add(0xAF, class16, anyReg, fixed(SCASW))
	add(0xAF, class32, anyReg, fixed(SCASD))

	for i, op := range shiftOps {
		grp(0xC0, i, opShift(op, true, shiftImm))
		grp(0xC1, i, opShift(op, false, shiftImm))
		grp(0xD0, i, opShift(op, true, shiftOne))
		grp(0xD1, i, opShift(op, false, shiftOne))
		grp(0xD2, i, opShift(op, true, shiftCL))
		grp(0xD3, i, opShift(op, false, shiftCL))
	}

	one(0xC2, opRetImm)
	one(0xC3, fixed(RET))
	grp(0xC6, 0, opEImm(MOV, true, false))
	grp(0xC7, 0, opEImm(MOV, false, false))
	one(0xC9, fixed(LEAVE))
	one(0xCC, fixed(INT3))
	one(0xCD, opInt)

	add(0xE8, class16, anyReg, opRel16(CALL))
	add(0xE8, class32, anyReg, opRel32(CALL))
	add(0xE9, class16, anyReg, opRel16(JMP))
	add(0xE9, class32, anyReg, opRel32(JMP))
	one(0xEB, opRel8(JMP))

	one(0xF4, fixed(HLT))
	one(0xF5, fixed(CMC))
	for _, w := range []bool{true, false} {
		opcode := uint16(0xF7)
		if w {
			opcode = 0xF6
		}
		grp(opcode, 0, opEImm(TEST, w, false))
		grp(opcode, 1, opEImm(TEST, w, false))
		grp(opcode, 2, opE(NOT, w))
		grp(opcode, 3, opE(NEG, w))
		grp(opcode, 4, opE(MUL, w))
		grp(opcode, 5, opE(IMUL, w))
		grp(opcode, 6, opE(DIV, w))
		grp(opcode, 7, opE(IDIV, w))
	}
	one(0xF8, fixed(CLC))
	one(0xF9, fixed(STC))
	one(0xFC, fixed(CLD))
	one(0xFD, fixed(STD))
	grp(0xFE, 0, opE(INC, true))
	grp(0xFE, 1, opE(DEC, true))
	grp(0xFF, 0, opE(INC, false))
	grp(0xFF, 1, opE(DEC, false))
	grp(0xFF, 2, opNear(CALL))
	grp(0xFF, 4, opNear(JMP))
	grp(0xFF, 6, opE(PUSH, false))

	one(0x0FAF, opGE(IMUL, false))
	one(0x0FB6, opExtend(MOVZX, W8))
	one(0x0FB7, opExtend(MOVZX, W16))
	one(0x0FBE, opExtend(MOVSX, W8))
	one(0x0FBF, opExtend(MOVSX, W16))

	hs = append(hs, fpuCatalog()...)
	return hs
}

// fixed returns a handler for an opcode with implied operands.
func fixed(op Op, args ...Arg) decodeFunc {
	return func(*Decoder, uint16) (Op, []Arg, error) {
		return op, args, nil
	}
}

// opEG decodes "op r/m, reg".
func opEG(op Op, byteOp bool) decodeFunc {
	return func(d *Decoder, _ uint16) (Op, []Arg, error) {
		w := d.width(byteOp)
		m, err := d.modRM()
		if err != nil {
			return BAD, nil, err
		}
		rm, err := d.rmArg(m, w)
		if err != nil {
			return BAD, nil, err
		}
		return op, []Arg{rm, regArg(m, w)}, nil
	}
}

// opGE decodes "op reg, r/m".
func opGE(op Op, byteOp bool) decodeFunc {
	return func(d *Decoder, _ uint16) (Op, []Arg, error) {
		w := d.width(byteOp)
		m, err := d.modRM()
		if err != nil {
			return BAD, nil, err
		}
		rm, err := d.rmArg(m, w)
		if err != nil {
			return BAD, nil, err
		}
		return op, []Arg{regArg(m, w), rm}, nil
	}
}

// opE decodes a single r/m operand.
func opE(op Op, byteOp bool) decodeFunc {
	return func(d *Decoder, _ uint16) (Op, []Arg, error) {
		m, err := d.modRM()
		if err != nil {
			return BAD, nil, err
		}
		rm, err := d.rmArg(m, d.width(byteOp))
		if err != nil {
			return BAD, nil, err
		}
		return op, []Arg{rm}, nil
	}
}

// opNear decodes an indirect near CALL or JMP. The target is always a
// 32-bit operand.
func opNear(op Op) decodeFunc {
	return func(d *Decoder, _ uint16) (Op, []Arg, error) {
		m, err := d.modRM()
		if err != nil {
			return BAD, nil, err
		}
		rm, err := d.rmArg(m, W32)
		if err != nil {
			return BAD, nil, err
		}
		return op, []Arg{rm}, nil
	}
}

// opAccImm decodes "op AL/AX/EAX, imm" with a fixed width.
func opAccImm(op Op, w Width) decodeFunc {
	return func(d *Decoder, _ uint16) (Op, []Arg, error) {
		imm, err := d.imm(w)
		if err != nil {
			return BAD, nil, err
		}
		return op, []Arg{GPR(w, 0), imm}, nil
	}
}

// opEImm decodes "op r/m, imm". With sext8 the immediate is one byte
// sign-extended to the operand width.
func opEImm(op Op, byteOp, sext8 bool) decodeFunc {
	return func(d *Decoder, _ uint16) (Op, []Arg, error) {
		w := d.width(byteOp)
		m, err := d.modRM()
		if err != nil {
			return BAD, nil, err
		}
		rm, err := d.rmArg(m, w)
		if err != nil {
			return BAD, nil, err
		}
		var imm Imm
		if sext8 {
			imm, err = d.immSext8(w)
		} else {
			imm, err = d.imm(w)
		}
		if err != nil {
			return BAD, nil, err
		}
		return op, []Arg{rm, imm}, nil
	}
}

// opReg decodes the "+r" forms with the register in the low opcode bits.
func opReg(op Op) decodeFunc {
	return func(d *Decoder, opcode uint16) (Op, []Arg, error) {
		return op, []Arg{GPR(d.width(false), int(opcode&7))}, nil
	}
}

func opXchgAcc(d *Decoder, opcode uint16) (Op, []Arg, error) {
	if opcode == 0x90 {
		return NOP, nil, nil
	}
	w := d.width(false)
	return XCHG, []Arg{GPR(w, 0), GPR(w, int(opcode&7))}, nil
}

func opMovRegImm(byteOp bool) decodeFunc {
	return func(d *Decoder, opcode uint16) (Op, []Arg, error) {
		w := d.width(byteOp)
		imm, err := d.imm(w)
		if err != nil {
			return BAD, nil, err
		}
		return MOV, []Arg{GPR(w, int(opcode&7)), imm}, nil
	}
}

func opPushImm(sext8 bool) decodeFunc {
	return func(d *Decoder, _ uint16) (Op, []Arg, error) {
		w := d.width(false)
		var (
			imm Imm
			err error
		)
		if sext8 {
			imm, err = d.immSext8(w)
		} else {
			imm, err = d.imm(w)
		}
		if err != nil {
			return BAD, nil, err
		}
		return PUSH, []Arg{imm}, nil
	}
}

func opIMul3(sext8 bool) decodeFunc {
	return func(d *Decoder, _ uint16) (Op, []Arg, error) {
		w := d.width(false)
		m, err := d.modRM()
		if err != nil {
			return BAD, nil, err
		}
		rm, err := d.rmArg(m, w)
		if err != nil {
			return BAD, nil, err
		}
		var imm Imm
		if sext8 {
			imm, err = d.immSext8(w)
		} else {
			imm, err = d.imm(w)
		}
		if err != nil {
			return BAD, nil, err
		}
		return IMUL, []Arg{regArg(m, w), rm, imm}, nil
	}
}

func opRel8(op Op) decodeFunc {
	return func(d *Decoder, _ uint16) (Op, []Arg, error) {
		rel, err := d.rel8()
		if err != nil {
			return BAD, nil, err
		}
		return op, []Arg{rel}, nil
	}
}

// opRel16 decodes the operand-size prefixed near forms, whose target
// is truncated to 16 bits.
func opRel16(op Op) decodeFunc {
	return func(d *Decoder, _ uint16) (Op, []Arg, error) {
		rel, err := d.rel16()
		if err != nil {
			return BAD, nil, err
		}
		return op, []Arg{rel}, nil
	}
}

func opRel32(op Op) decodeFunc {
	return func(d *Decoder, _ uint16) (Op, []Arg, error) {
		rel, err := d.rel32()
		if err != nil {
			return BAD, nil, err
		}
		return op, []Arg{rel}, nil
	}
}

func opSetcc(op Op) decodeFunc {
	return func(d *Decoder, _ uint16) (Op, []Arg, error) {
		m, err := d.modRM()
		if err != nil {
			return BAD, nil, err
		}
		rm, err := d.rmArg(m, W8)
		if err != nil {
			return BAD, nil, err
		}
		return op, []Arg{rm}, nil
	}
}

func opLea(d *Decoder, _ uint16) (Op, []Arg, error) {
	w := d.width(false)
	m, err := d.modRM()
	if err != nil {
		return BAD, nil, err
	}
	addr, err := d.mem(m, w)
	if err != nil {
		return BAD, nil, err
	}
	return LEA, []Arg{regArg(m, w), addr}, nil
}

// opMovSeg decodes MOV between a segment register and r/m16.
func opMovSeg(toSeg bool) decodeFunc {
	return func(d *Decoder, _ uint16) (Op, []Arg, error) {
		m, err := d.modRM()
		if err != nil {
			return BAD, nil, err
		}
		if m.reg > 5 {
			return BAD, nil, ErrUnknownOpcode
		}
		w := W16
		if m.mod == 3 && !toSeg {
			w = d.width(false)
		}
		rm, err := d.rmArg(m, w)
		if err != nil {
			return BAD, nil, err
		}
		if toSeg {
			return MOV, []Arg{segReg(m.reg), rm}, nil
		}
		return MOV, []Arg{rm, segReg(m.reg)}, nil
	}
}

// opMoffs decodes MOV between the accumulator and an absolute address.
func opMoffs(byteOp, store bool) decodeFunc {
	return func(d *Decoder, _ uint16) (Op, []Arg, error) {
		if d.prefix&PrefixAddrSize != 0 {
			return BAD, nil, ErrUnsupported
		}
		w := d.width(byteOp)
		addr, err := d.ReadU32()
		if err != nil {
			return BAD, nil, err
		}
		m := MemDirect{Seg: d.seg, Size: w, Addr: addr}
		if store {
			return MOV, []Arg{m, GPR(w, 0)}, nil
		}
		return MOV, []Arg{GPR(w, 0), m}, nil
	}
}

type shiftCount int

const (
	shiftImm shiftCount = iota
	shiftOne
	shiftCL
)

func opShift(op Op, byteOp bool, count shiftCount) decodeFunc {
	return func(d *Decoder, _ uint16) (Op, []Arg, error) {
		w := d.width(byteOp)
		m, err := d.modRM()
		if err != nil {
			return BAD, nil, err
		}
		rm, err := d.rmArg(m, w)
		if err != nil {
			return BAD, nil, err
		}
		var n Arg
		switch count {
		case shiftImm:
			if n, err = d.imm(W8); err != nil {
				return BAD, nil, err
			}
		case shiftOne:
			n = Imm{Value: 1, Size: W8}
		case shiftCL:
			n = CL
		}
		return op, []Arg{rm, n}, nil
	}
}

func opRetImm(d *Decoder, _ uint16) (Op, []Arg, error) {
	imm, err := d.imm(W16)
	if err != nil {
		return BAD, nil, err
	}
	return RET, []Arg{imm}, nil
}

func opInt(d *Decoder, _ uint16) (Op, []Arg, error) {
	imm, err := d.imm(W8)
	if err != nil {
		return BAD, nil, err
	}
	return INT, []Arg{imm}, nil
}

// opExtend decodes MOVZX/MOVSX with a source of width src.
func opExtend(op Op, src Width) decodeFunc {
	return func(d *Decoder, _ uint16) (Op, []Arg, error) {
		w := d.width(false)
		m, err := d.modRM()
		if err != nil {
			return BAD, nil, err
		}
		rm, err := d.rmArg(m, src)
		if err != nil {
			return BAD, nil, err
		}
		return op, []Arg{regArg(m, w), rm}, nil
	}
}
