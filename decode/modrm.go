// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

type modRM struct {
	mod, reg, rm byte
}

// modRM consumes the ModR/M byte. It may run once per instruction;
// handlers that need the reg field earlier use peekReg.
func (d *Decoder) modRM() (modRM, error) {
	if d.modrm {
		return modRM{}, errModRMReused
	}
	b, err := d.ReadU8()
	if err != nil {
		return modRM{}, err
	}
	d.modrm = true
	return modRM{mod: b >> 6, reg: b >> 3 & 7, rm: b & 7}, nil
}

// peekReg returns the reg field of the ModR/M byte at the cursor.
func (d *Decoder) peekReg() (byte, bool) {
	b, ok := d.Peek(0)
	return b >> 3 & 7, ok
}

// rmArg decodes the r/m operand as a register or memory of width w.
func (d *Decoder) rmArg(m modRM, w Width) (Arg, error) {
	if m.mod == 3 {
		return GPR(w, int(m.rm)), nil
	}
	return d.mem(m, w)
}

// regArg returns the register named by the reg field.
func regArg(m modRM, w Width) Reg { return GPR(w, int(m.reg)) }

// mem decodes a memory operand. mod must not be 3.
func (d *Decoder) mem(m modRM, w Width) (Arg, error) {
	if m.mod == 3 {
		return nil, ErrUnknownOpcode
	}
	if d.prefix&PrefixAddrSize != 0 {
		return nil, ErrUnsupported
	}
	if m.rm == 4 {
		return d.sib(m, w)
	}
	if m.mod == 0 && m.rm == 5 {
		addr, err := d.ReadU32()
		if err != nil {
			return nil, err
		}
		return MemDirect{Seg: d.seg, Size: w, Addr: addr}, nil
	}
	base := GPR(W32, int(m.rm))
	if m.mod == 0 {
		return MemBase{Seg: d.seg, Size: w, Base: base}, nil
	}
	disp, err := d.disp(m.mod)
	if err != nil {
		return nil, err
	}
	return MemBaseDisp{Seg: d.seg, Size: w, Base: base, Disp: disp}, nil
}

func (d *Decoder) disp(mod byte) (int32, error) {
	switch mod {
	case 1:
		b, err := d.ReadU8()
		return int32(int8(b)), err
	case 2:
		v, err := d.ReadU32()
		return int32(v), err
	}
	return 0, nil
}

func (d *Decoder) sib(m modRM, w Width) (Arg, error) {
	b, err := d.ReadU8()
	if err != nil {
		return nil, err
	}
	scale := uint8(1) << (b >> 6)
	index := int(b >> 3 & 7)
	baseN := int(b & 7)

	base := GPR(W32, baseN)
	var disp int32
	if baseN == 5 && m.mod == 0 {
		base = RegNone
		v, err := d.ReadU32()
		if err != nil {
			return nil, err
		}
		disp = int32(v)
	} else if disp, err = d.disp(m.mod); err != nil {
		return nil, err
	}

	if index == 4 {
		switch {
		case base == RegNone:
			return MemDirect{Seg: d.seg, Size: w, Addr: uint32(disp)}, nil
		case m.mod == 0:
			return MemBase{Seg: d.seg, Size: w, Base: base}, nil
		}
		return MemBaseDisp{Seg: d.seg, Size: w, Base: base, Disp: disp}, nil
	}
	return MemIndex{
		Seg:   d.seg,
		Size:  w,
		Base:  base,
		Index: GPR(W32, index),
		Scale: scale,
		Disp:  disp,
	}, nil
}
