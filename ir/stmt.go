// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

// Stmt is a statement node. Result is the location the statement
// defines, or nil. Operands lists the expressions it reads.
type Stmt interface {
	Result() Expr
	Operands() []Expr
	isStmt()
}

// Extension selects how Move widens its source.
type Extension uint8

const (
	NoExt Extension = iota
	ZeroExt
	SignExt
)

// Move assigns Src to Dst. A non-nil Cond makes the move conditional.
type Move struct {
	Dst, Src Expr
	Ext      Extension
	Cond     Expr
}

// ArithOp is the operation of an Arith statement.
type ArithOp uint8

const (
	ADD ArithOp = iota
	ADC
	SUB
	SBB
	AND
	OR
	XOR
	CMP
	TEST
	INC
	DEC
	NEG
	NOT
	SHL
	SHR
	SAR
	ROL
	ROR
	MUL
	IMUL
	DIV
	IDIV
)

var arithNames = [...]string{
	ADD: "add", ADC: "adc", SUB: "sub", SBB: "sbb", AND: "and", OR: "or",
	XOR: "xor", CMP: "cmp", TEST: "test", INC: "inc", DEC: "dec", NEG: "neg",
	NOT: "not", SHL: "shl", SHR: "shr", SAR: "sar", ROL: "rol", ROR: "ror",
	MUL: "mul", IMUL: "imul", DIV: "div", IDIV: "idiv",
}

func (op ArithOp) String() string { return arithNames[op] }

// Unary reports whether op takes no source operand.
func (op ArithOp) Unary() bool {
	switch op {
	case INC, DEC, NEG, NOT:
		return true
	}
	return false
}

// Arith is a flag-producing arithmetic, logic or shift statement on Dst
// and, unless the operation is unary, Src. CMP and TEST only set flags.
type Arith struct {
	Op       ArithOp
	Dst, Src Expr
}

// Jump transfers control to Target, a constant address for direct
// jumps. A non-nil Cond makes the jump conditional.
type Jump struct {
	Target Expr
	Cond   Expr
}

// Call calls the procedure at Target.
type Call struct {
	Target Expr
}

// Push pushes Src on the stack.
type Push struct {
	Src Expr
}

// Pop pops the top of the stack into Dst.
type Pop struct {
	Dst Expr
}

// Return returns from the procedure, releasing Pop extra stack bytes.
type Return struct {
	Pop uint16
}

// FPU is an x87 operation, kept opaque.
type FPU struct {
	Op   string
	Args []Expr
}

// Unsupported stands for an instruction that has no lifting.
type Unsupported struct {
	Addr uint32
	Text string
}

func (Move) isStmt()        {}
func (Arith) isStmt()       {}
func (Jump) isStmt()        {}
func (Call) isStmt()        {}
func (Push) isStmt()        {}
func (Pop) isStmt()         {}
func (Return) isStmt()      {}
func (FPU) isStmt()         {}
func (Unsupported) isStmt() {}

func (s Move) Result() Expr { return s.Dst }

func (s Move) Operands() []Expr {
	ops := []Expr{s.Src}
	if s.Cond != nil {
		ops = append(ops, s.Cond)
	}
	return ops
}

func (s Arith) Result() Expr {
	if s.Op == CMP || s.Op == TEST {
		return nil
	}
	return s.Dst
}

func (s Arith) Operands() []Expr {
	if s.Src == nil {
		return []Expr{s.Dst}
	}
	return []Expr{s.Dst, s.Src}
}

// Value returns the value the operation computes from its inputs. For
// CMP and TEST it is the discarded difference or conjunction.
func (s Arith) Value() Expr {
	d, src := s.Dst, s.Src
	size := SizeOf(d)
	switch s.Op {
	case ADD:
		return Binary{Op: Add, L: d, R: src}
	case ADC:
		return Binary{Op: Add, L: Binary{Op: Add, L: d, R: src}, R: Carry}
	case SUB, CMP:
		return Binary{Op: Sub, L: d, R: src}
	case SBB:
		return Binary{Op: Sub, L: Binary{Op: Sub, L: d, R: src}, R: Carry}
	case AND, TEST:
		if d == src {
			return d
		}
		return Binary{Op: And, L: d, R: src}
	case OR:
		if d == src {
			return d
		}
		return Binary{Op: Or, L: d, R: src}
	case XOR:
		if d == src {
			return C(0, size)
		}
		return Binary{Op: Xor, L: d, R: src}
	case INC:
		return Binary{Op: Add, L: d, R: C(1, size)}
	case DEC:
		return Binary{Op: Sub, L: d, R: C(1, size)}
	case NEG:
		return Binary{Op: Sub, L: C(0, size), R: d}
	case NOT:
		return Binary{Op: Xor, L: d, R: C(0xFFFFFFFF, size)}
	case SHL:
		return Binary{Op: Shl, L: d, R: src}
	case SHR:
		return Binary{Op: Shr, L: d, R: src}
	case SAR:
		return Binary{Op: Sar, L: d, R: src}
	case ROL:
		return Binary{Op: Rol, L: d, R: src}
	case ROR:
		return Binary{Op: Ror, L: d, R: src}
	case MUL, IMUL:
		return Binary{Op: Mul, L: d, R: src}
	case DIV, IDIV:
		return Binary{Op: Div, L: d, R: src}
	}
	return nil
}

func (s Jump) Result() Expr { return nil }

func (s Jump) Operands() []Expr {
	ops := []Expr{s.Target}
	if s.Cond != nil {
		ops = append(ops, s.Cond)
	}
	return ops
}

func (s Call) Result() Expr       { return nil }
func (s Call) Operands() []Expr   { return []Expr{s.Target} }
func (s Push) Result() Expr       { return nil }
func (s Push) Operands() []Expr   { return []Expr{s.Src} }
func (s Pop) Result() Expr        { return s.Dst }
func (s Pop) Operands() []Expr    { return nil }
func (s Return) Result() Expr     { return nil }
func (s Return) Operands() []Expr { return nil }

func (s FPU) Result() Expr { return nil }

func (s FPU) Operands() []Expr { return append([]Expr(nil), s.Args...) }

func (s Unsupported) Result() Expr     { return nil }
func (s Unsupported) Operands() []Expr { return nil }

// Block is the lifted body of one basic block.
type Block struct {
	Addr  uint32
	Stmts []Stmt
}

// Function is a lifted procedure, its blocks in ascending address order.
type Function struct {
	Entry  uint32
	Blocks []Block
}
