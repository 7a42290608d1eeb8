// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

// The x87 escape opcodes 0xD8-0xDF are split by the ModR/M reg field at
// dispatch time and by mod inside each handler: mod!=3 selects a memory
// form, mod==3 a register-stack form.

// fpuForm describes one /reg slot of an escape opcode.
type fpuForm struct {
	mem  Op    // memory form, or BAD
	memW Width // memory operand width
	// reg decodes the register-stack form from rm, or nil.
	reg func(rm byte) (Op, []Arg, bool)
}

var fpuArithOps = [8]Op{FADD, FMUL, FCOM, FCOMP, FSUB, FSUBR, FDIV, FDIVR}

// isFPUArith reports whether op takes ST0 as an implicit first operand in
// its memory form.
func isFPUArith(op Op) bool {
	switch op {
	case FADD, FMUL, FCOM, FCOMP, FSUB, FSUBR, FDIV, FDIVR:
		return true
	}
	return false
}

func stForm(op Op, dstST0 bool) func(rm byte) (Op, []Arg, bool) {
	return func(rm byte) (Op, []Arg, bool) {
		if dstST0 {
			return op, []Arg{ST0, stReg(rm)}, true
		}
		return op, []Arg{stReg(rm), ST0}, true
	}
}

func stOne(op Op) func(rm byte) (Op, []Arg, bool) {
	return func(rm byte) (Op, []Arg, bool) {
		return op, []Arg{stReg(rm)}, true
	}
}

// stFixed maps rm values to operand-less instructions.
func stFixed(ops map[byte]Op) func(rm byte) (Op, []Arg, bool) {
	return func(rm byte) (Op, []Arg, bool) {
		op, ok := ops[rm]
		return op, nil, ok
	}
}

func fpuForms() map[uint16][8]fpuForm {
	forms := make(map[uint16][8]fpuForm)

	var d8, dc [8]fpuForm
	for i, op := range fpuArithOps {
		d8[i] = fpuForm{mem: op, memW: W32, reg: stForm(op, true)}
		// DC register forms operate on ST(i) and swap the reversed
		// subtract and divide encodings.
		rop := op
		switch op {
		case FSUB:
			rop = FSUBR
		case FSUBR:
			rop = FSUB
		case FDIV:
			rop = FDIVR
		case FDIVR:
			rop = FDIV
		}
		dc[i] = fpuForm{mem: op, memW: W64, reg: stForm(rop, false)}
	}
	dc[2].reg, dc[3].reg = nil, nil
	forms[0xD8] = d8
	forms[0xDC] = dc

	forms[0xD9] = [8]fpuForm{
		0: {mem: FLD, memW: W32, reg: stOne(FLD)},
		1: {mem: BAD, reg: stOne(FXCH)},
		2: {mem: FST, memW: W32},
		3: {mem: FSTP, memW: W32},
		4: {mem: BAD, reg: stFixed(map[byte]Op{0: FCHS, 1: FABS})},
		5: {mem: FLDCW, memW: W16, reg: stFixed(map[byte]Op{0: FLD1, 6: FLDZ})},
		7: {mem: FNSTCW, memW: W16},
	}
	forms[0xDB] = [8]fpuForm{
		0: {mem: FILD, memW: W32},
		2: {mem: FIST, memW: W32},
		3: {mem: FISTP, memW: W32},
		5: {mem: FLD, memW: W80},
		7: {mem: FSTP, memW: W80},
	}
	forms[0xDD] = [8]fpuForm{
		0: {mem: FLD, memW: W64},
		2: {mem: FST, memW: W64, reg: stOne(FST)},
		3: {mem: FSTP, memW: W64, reg: stOne(FSTP)},
	}
	forms[0xDE] = [8]fpuForm{
		0: {reg: stForm(FADDP, false)},
		1: {reg: stForm(FMULP, false)},
		3: {reg: stFixed(map[byte]Op{1: FCOMPP})},
		4: {reg: stForm(FSUBRP, false)},
		5: {reg: stForm(FSUBP, false)},
		6: {reg: stForm(FDIVRP, false)},
		7: {reg: stForm(FDIVP, false)},
	}
	forms[0xDF] = [8]fpuForm{
		4: {reg: func(rm byte) (Op, []Arg, bool) {
			return FNSTSW, []Arg{AX}, rm == 0
		}},
		5: {mem: FILD, memW: W64},
		7: {mem: FISTP, memW: W64},
	}
	return forms
}

func fpuCatalog() []handler {
	var hs []handler
	for opcode, slots := range fpuForms() {
		for reg, f := range slots {
			if f.mem == BAD && f.reg == nil {
				continue
			}
			hs = append(hs, handler{
				opcode: opcode,
				class:  classAny,
				reg:    int8(reg),
				fn:     opFPU(f),
			})
		}
	}
	return hs
}

func opFPU(f fpuForm) decodeFunc {
	return func(d *Decoder, _ uint16) (Op, []Arg, error) {
		m, err := d.modRM()
		if err != nil {
			return BAD, nil, err
		}
		if m.mod == 3 {
			if f.reg == nil {
				return BAD, nil, ErrUnknownOpcode
			}
			op, args, ok := f.reg(m.rm)
			if !ok {
				return BAD, nil, ErrUnknownOpcode
			}
			return op, args, nil
		}
		if f.mem == BAD {
			return BAD, nil, ErrUnknownOpcode
		}
		arg, err := d.mem(m, f.memW)
		if err != nil {
			return BAD, nil, err
		}
		if isFPUArith(f.mem) {
			return f.mem, []Arg{ST0, arg}, nil
		}
		return f.mem, []Arg{arg}, nil
	}
}
