// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

// An Op is an instruction mnemonic.
type Op uint16

const (
	BAD Op = iota

	// ALU group, in /reg order of opcodes 0x80-0x83.
	ADD
	OR
	ADC
	SBB
	AND
	SUB
	XOR
	CMP

	// Shift group, in /reg order of opcodes 0xC0, 0xC1, 0xD0-0xD3.
	ROL
	ROR
	RCL
	RCR
	SHL
	SHR
	SAL
	SAR

	INC
	DEC
	NOT
	NEG
	MUL
	IMUL
	DIV
	IDIV
	TEST

	MOV
	MOVZX
	MOVSX
	LEA
	XCHG
	PUSH
	POP
	PUSHAD
	POPAD
	PUSHFD
	POPFD
	LEAVE
	CBW
	CWDE
	CWD
	CDQ
	NOP
	HLT
	INT3
	INT
	CMC
	CLC
	STC
	CLD
	STD
	SAHF
	LAHF

	MOVSB
	MOVSW
	MOVSD
	STOSB
	STOSW
	STOSD
	LODSB
	LODSW
	LODSD
	SCASB
	SCASW
	SCASD
	CMPSB
	CMPSW
	CMPSD

	CALL
	JMP
	RET

	// Conditional jumps, in condition code order.
	JO
	JNO
	JB
	JAE
	JE
	JNE
	JBE
	JA
	JS
	JNS
	JP
	JNP
	JL
	JGE
	JLE
	JG

	SETO
	SETNO
	SETB
	SETAE
	SETE
	SETNE
	SETBE
	SETA
	SETS
	SETNS
	SETP
	SETNP
	SETL
	SETGE
	SETLE
	SETG

	CMOVO
	CMOVNO
	CMOVB
	CMOVAE
	CMOVE
	CMOVNE
	CMOVBE
	CMOVA
	CMOVS
	CMOVNS
	CMOVP
	CMOVNP
	CMOVL
	CMOVGE
	CMOVLE
	CMOVG

	// x87.
	FLD
	FST
	FSTP
	FILD
	FIST
	FISTP
	FADD
	FADDP
	FMUL
	FMULP
	FSUB
	FSUBP
	FSUBR
	FSUBRP
	FDIV
	FDIVP
	FDIVR
	FDIVRP
	FCOM
	FCOMP
	FCOMPP
	FXCH
	FCHS
	FABS
	FLD1
	FLDZ
	FLDCW
	FNSTCW
	FNSTSW

	maxOp
)

var opNames = [...]string{
	BAD: "BAD",
	ADD: "ADD", OR: "OR", ADC: "ADC", SBB: "SBB", AND: "AND", SUB: "SUB", XOR: "XOR", CMP: "CMP",
	ROL: "ROL", ROR: "ROR", RCL: "RCL", RCR: "RCR", SHL: "SHL", SHR: "SHR", SAL: "SAL", SAR: "SAR",
	INC: "INC", DEC: "DEC", NOT: "NOT", NEG: "NEG", MUL: "MUL", IMUL: "IMUL", DIV: "DIV", IDIV: "IDIV",
	TEST: "TEST",
	MOV: "MOV", MOVZX: "MOVZX", MOVSX: "MOVSX", LEA: "LEA", XCHG: "XCHG",
	PUSH: "PUSH", POP: "POP", PUSHAD: "PUSHAD", POPAD: "POPAD", PUSHFD: "PUSHFD", POPFD: "POPFD",
	LEAVE: "LEAVE", CBW: "CBW", CWDE: "CWDE", CWD: "CWD", CDQ: "CDQ",
	NOP: "NOP", HLT: "HLT", INT3: "INT3", INT: "INT",
	CMC: "CMC", CLC: "CLC", STC: "STC", CLD: "CLD", STD: "STD", SAHF: "SAHF", LAHF: "LAHF",
	MOVSB: "MOVSB", MOVSW: "MOVSW", MOVSD: "MOVSD", STOSB: "STOSB", STOSW: "STOSW", STOSD: "STOSD",
	LODSB: "LODSB", LODSW: "LODSW", LODSD: "LODSD", SCASB: "SCASB", SCASW: "SCASW", SCASD: "SCASD",
	CMPSB: "CMPSB", CMPSW: "CMPSW", CMPSD: "CMPSD",
	CALL: "CALL", JMP: "JMP", RET: "RET",
	JO: "JO", JNO: "JNO", JB: "JB", JAE: "JAE", JE: "JE", JNE: "JNE", JBE: "JBE", JA: "JA",
	JS: "JS", JNS: "JNS", JP: "JP", JNP: "JNP", JL: "JL", JGE: "JGE", JLE: "JLE", JG: "JG",
	SETO: "SETO", SETNO: "SETNO", SETB: "SETB", SETAE: "SETAE", SETE: "SETE", SETNE: "SETNE",
	SETBE: "SETBE", SETA: "SETA", SETS: "SETS", SETNS: "SETNS", SETP: "SETP", SETNP: "SETNP",
	SETL: "SETL", SETGE: "SETGE", SETLE: "SETLE", SETG: "SETG",
	CMOVO: "CMOVO", CMOVNO: "CMOVNO", CMOVB: "CMOVB", CMOVAE: "CMOVAE", CMOVE: "CMOVE",
	CMOVNE: "CMOVNE", CMOVBE: "CMOVBE", CMOVA: "CMOVA", CMOVS: "CMOVS", CMOVNS: "CMOVNS",
	CMOVP: "CMOVP", CMOVNP: "CMOVNP", CMOVL: "CMOVL", CMOVGE: "CMOVGE", CMOVLE: "CMOVLE", CMOVG: "CMOVG",
	FLD: "FLD", FST: "FST", FSTP: "FSTP", FILD: "FILD", FIST: "FIST", FISTP: "FISTP",
	FADD: "FADD", FADDP: "FADDP", FMUL: "FMUL", FMULP: "FMULP", FSUB: "FSUB", FSUBP: "FSUBP",
	FSUBR: "FSUBR", FSUBRP: "FSUBRP", FDIV: "FDIV", FDIVP: "FDIVP", FDIVR: "FDIVR", FDIVRP: "FDIVRP",
	FCOM: "FCOM", FCOMP: "FCOMP", FCOMPP: "FCOMPP", FXCH: "FXCH", FCHS: "FCHS", FABS: "FABS",
	FLD1: "FLD1", FLDZ: "FLDZ", FLDCW: "FLDCW", FNSTCW: "FNSTCW", FNSTSW: "FNSTSW",
}

func (op Op) String() string {
	if op < maxOp && opNames[op] != "" {
		return opNames[op]
	}
	return "Op?"
}

// Cond is an x86 condition code, the low nibble of Jcc/SETcc/CMOVcc.
type Cond uint8

const (
	CondO Cond = iota
	CondNO
	CondB
	CondAE
	CondE
	CondNE
	CondBE
	CondA
	CondS
	CondNS
	CondP
	CondNP
	CondL
	CondGE
	CondLE
	CondG
)

var condNames = [16]string{
	"O", "NO", "B", "AE", "E", "NE", "BE", "A",
	"S", "NS", "P", "NP", "L", "GE", "LE", "G",
}

func (c Cond) String() string { return condNames[c&15] }

// Negate returns the complementary condition.
func (c Cond) Negate() Cond { return c ^ 1 }

// Cond returns the condition code of a Jcc, SETcc or CMOVcc.
func (op Op) Cond() (Cond, bool) {
	switch {
	case op >= JO && op <= JG:
		return Cond(op - JO), true
	case op >= SETO && op <= SETG:
		return Cond(op - SETO), true
	case op >= CMOVO && op <= CMOVG:
		return Cond(op - CMOVO), true
	}
	return 0, false
}

// IsReturn reports whether op returns from a procedure.
func (op Op) IsReturn() bool { return op == RET }

// IsJump reports whether op is an unconditional jump.
func (op Op) IsJump() bool { return op == JMP }

// IsCondJump reports whether op is a conditional jump.
func (op Op) IsCondJump() bool { return op >= JO && op <= JG }

// IsCall reports whether op is a procedure call.
func (op Op) IsCall() bool { return op == CALL }

// IsTerminator reports whether op ends a basic block.
func (op Op) IsTerminator() bool {
	return op.IsReturn() || op.IsJump() || op.IsCondJump()
}

// IsFPU reports whether op is an x87 instruction.
func (op Op) IsFPU() bool { return op >= FLD && op <= FNSTSW }
