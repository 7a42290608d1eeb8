// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

// Width is an operand access width in bytes.
type Width uint8

const (
	W8  Width = 1
	W16 Width = 2
	W32 Width = 4
	W64 Width = 8
	W80 Width = 10
)

// Bits returns the width in bits.
func (w Width) Bits() int { return int(w) * 8 }

// Mask returns the all-ones value for widths up to 32 bits.
func (w Width) Mask() uint32 {
	switch w {
	case W8:
		return 0xff
	case W16:
		return 0xffff
	}
	return 0xffffffff
}

func (w Width) ptr() string {
	switch w {
	case W8:
		return "BYTE PTR "
	case W16:
		return "WORD PTR "
	case W32:
		return "DWORD PTR "
	case W64:
		return "QWORD PTR "
	case W80:
		return "TBYTE PTR "
	}
	return ""
}

// Reg is a single register. The zero value means no register.
type Reg uint8

const (
	RegNone Reg = iota

	// 8-bit, in ModR/M encoding order.
	AL
	CL
	DL
	BL
	AH
	CH
	DH
	BH

	// 16-bit.
	AX
	CX
	DX
	BX
	SP
	BP
	SI
	DI

	// 32-bit.
	EAX
	ECX
	EDX
	EBX
	ESP
	EBP
	ESI
	EDI

	// x87 stack slots.
	ST0
	ST1
	ST2
	ST3
	ST4
	ST5
	ST6
	ST7

	// Segment registers, in sreg encoding order.
	ES
	CS
	SS
	DS
	FS
	GS
)

var regNames = [...]string{
	RegNone: "",
	AL:      "AL", CL: "CL", DL: "DL", BL: "BL", AH: "AH", CH: "CH", DH: "DH", BH: "BH",
	AX: "AX", CX: "CX", DX: "DX", BX: "BX", SP: "SP", BP: "BP", SI: "SI", DI: "DI",
	EAX: "EAX", ECX: "ECX", EDX: "EDX", EBX: "EBX", ESP: "ESP", EBP: "EBP", ESI: "ESI", EDI: "EDI",
	ST0: "ST0", ST1: "ST1", ST2: "ST2", ST3: "ST3", ST4: "ST4", ST5: "ST5", ST6: "ST6", ST7: "ST7",
	ES: "ES", CS: "CS", SS: "SS", DS: "DS", FS: "FS", GS: "GS",
}

func (r Reg) String() string {
	if int(r) < len(regNames) {
		return regNames[r]
	}
	return "R?"
}

// Width reports the register width. FPU slots are 80 bits wide.
func (r Reg) Width() Width {
	switch {
	case r >= AL && r <= BH:
		return W8
	case r >= AX && r <= DI:
		return W16
	case r >= EAX && r <= EDI:
		return W32
	case r >= ST0 && r <= ST7:
		return W80
	case r >= ES && r <= GS:
		return W16
	}
	return 0
}

// IsFPU reports whether r is an x87 stack slot.
func (r Reg) IsFPU() bool { return r >= ST0 && r <= ST7 }

// IsSegment reports whether r is a segment register.
func (r Reg) IsSegment() bool { return r >= ES && r <= GS }

// Num returns the 3-bit encoding of r.
func (r Reg) Num() int {
	switch {
	case r >= AL && r <= BH:
		return int(r - AL)
	case r >= AX && r <= DI:
		return int(r - AX)
	case r >= EAX && r <= EDI:
		return int(r - EAX)
	case r >= ST0 && r <= ST7:
		return int(r - ST0)
	case r >= ES && r <= GS:
		return int(r - ES)
	}
	return -1
}

// GPR returns general purpose register n of width w.
func GPR(w Width, n int) Reg {
	n &= 7
	switch w {
	case W8:
		return AL + Reg(n)
	case W16:
		return AX + Reg(n)
	}
	return EAX + Reg(n)
}

// Full returns the 32-bit register that contains r, or r itself for
// registers that have no wider alias.
func (r Reg) Full() Reg {
	switch {
	case r >= AL && r <= BL:
		return EAX + (r - AL)
	case r >= AH && r <= BH:
		return EAX + (r - AH)
	case r >= AX && r <= DI:
		return EAX + (r - AX)
	}
	return r
}

func stReg(n byte) Reg { return ST0 + Reg(n&7) }

func segReg(n byte) Reg { return ES + Reg(n&7) }
