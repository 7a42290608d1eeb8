// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ir is an architecture-neutral representation of lifted machine
// code: side-effect free expression trees and the statements that read
// and define them.
//
// Every expression is a comparable value. Two expressions are equal
// exactly when they have the same shape and leaves, so they may be
// compared with == and used as map keys.
package ir

// Size is an access width in bytes. Zero means boolean.
type Size uint8

const (
	S8  Size = 1
	S16 Size = 2
	S32 Size = 4
	S64 Size = 8
	S80 Size = 10
)

// mask returns the value mask for sizes up to 32 bits.
func (s Size) mask() uint32 {
	switch s {
	case S8:
		return 0xFF
	case S16:
		return 0xFFFF
	}
	return 0xFFFFFFFF
}

func (s Size) typeName() string {
	switch s {
	case S8:
		return "uint8"
	case S16:
		return "uint16"
	case S32:
		return "uint32"
	case S64:
		return "uint64"
	case S80:
		return "float80"
	}
	return "void"
}

// Expr is an expression node. The implementations are Const, Bool,
// Register, Flag, Memory, Deref, Binary, Logical, Compare and Not.
type Expr interface {
	String() string
	isExpr()
}

// Const is an integer constant of a given size. Signed marks constants
// that are rendered with an explicit sign, such as displacements.
type Const struct {
	Value  uint32
	Size   Size
	Signed bool
}

// Int returns c as a signed value of its size.
func (c Const) Int() int64 {
	switch c.Size {
	case S8:
		return int64(int8(c.Value))
	case S16:
		return int64(int16(c.Value))
	}
	return int64(int32(c.Value))
}

// Bool is a boolean constant.
type Bool bool

// Register is a named machine register.
type Register struct {
	Name string
	Size Size
}

// Flag is a processor status flag.
type Flag uint8

const (
	Zero Flag = iota
	Sign
	Carry
	Overflow
	Parity
	Auxiliary
	numFlags
)

var flagNames = [numFlags]string{"ZF", "SF", "CF", "OF", "PF", "AF"}

// Memory is an access at an absolute address.
type Memory struct {
	Seg  string // segment override, or empty
	Addr uint32
	Size Size
}

// Deref is an access through a computed pointer.
type Deref struct {
	Seg  string
	Ptr  Expr
	Size Size
}

// BinaryOp is an arithmetic or bitwise operator.
type BinaryOp uint8

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Mod
	And
	Or
	Xor
	Shl
	Shr
	Sar
	Rol
	Ror
)

// Binary applies an arithmetic or bitwise operator.
type Binary struct {
	Op   BinaryOp
	L, R Expr
}

// LogicalOp is a short-circuit boolean operator.
type LogicalOp uint8

const (
	LAnd LogicalOp = iota
	LOr
)

// Logical combines two boolean expressions.
type Logical struct {
	Op   LogicalOp
	L, R Expr
}

// CompareOp is a relational operator. Ordered comparisons come in
// signed and unsigned flavours.
type CompareOp uint8

const (
	Eq CompareOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
	ULt
	ULe
	UGt
	UGe
)

var negated = [...]CompareOp{
	Eq: Ne, Ne: Eq,
	Lt: Ge, Ge: Lt, Le: Gt, Gt: Le,
	ULt: UGe, UGe: ULt, ULe: UGt, UGt: ULe,
}

// Negate returns the complementary operator.
func (op CompareOp) Negate() CompareOp { return negated[op] }

// Unsigned reports whether op is an unsigned ordered comparison.
func (op CompareOp) Unsigned() bool { return op >= ULt }

// Compare relates two values.
type Compare struct {
	Op   CompareOp
	L, R Expr
}

// Negate returns the complementary comparison.
func (c Compare) Negate() Compare {
	return Compare{Op: c.Op.Negate(), L: c.L, R: c.R}
}

// Not negates a boolean expression.
type Not struct {
	X Expr
}

func (Const) isExpr()    {}
func (Bool) isExpr()     {}
func (Register) isExpr() {}
func (Flag) isExpr()     {}
func (Memory) isExpr()   {}
func (Deref) isExpr()    {}
func (Binary) isExpr()   {}
func (Logical) isExpr()  {}
func (Compare) isExpr()  {}
func (Not) isExpr()      {}

func (c Const) String() string    { return Format(c) }
func (b Bool) String() string     { return Format(b) }
func (r Register) String() string { return Format(r) }
func (f Flag) String() string     { return flagNames[f] }
func (m Memory) String() string   { return Format(m) }
func (d Deref) String() string    { return Format(d) }
func (b Binary) String() string   { return Format(b) }
func (l Logical) String() string  { return Format(l) }
func (c Compare) String() string  { return Format(c) }
func (n Not) String() string      { return Format(n) }

// C returns an unsigned constant of size s, masked to it.
func C(v uint32, s Size) Const { return Const{Value: v & s.mask(), Size: s} }

// Equal reports whether a and b are structurally equal.
func Equal(a, b Expr) bool { return a == b }

// SizeOf returns the value size of e, or 0 for boolean expressions.
func SizeOf(e Expr) Size {
	switch e := e.(type) {
	case Const:
		return e.Size
	case Register:
		return e.Size
	case Memory:
		return e.Size
	case Deref:
		return e.Size
	case Binary:
		if s := SizeOf(e.L); s != 0 {
			return s
		}
		return SizeOf(e.R)
	}
	return 0
}

// Walk calls fn for e and, while fn returns true, for its children in
// depth-first order.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch e := e.(type) {
	case Deref:
		Walk(e.Ptr, fn)
	case Binary:
		Walk(e.L, fn)
		Walk(e.R, fn)
	case Logical:
		Walk(e.L, fn)
		Walk(e.R, fn)
	case Compare:
		Walk(e.L, fn)
		Walk(e.R, fn)
	case Not:
		Walk(e.X, fn)
	}
}

// Uses reports whether x occurs anywhere inside e.
func Uses(e, x Expr) bool {
	found := false
	Walk(e, func(n Expr) bool {
		if n == x {
			found = true
		}
		return !found
	})
	return found
}
