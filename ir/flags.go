// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

import "strings"

// FlagSet is a set of flags.
type FlagSet uint8

// AllFlags contains every flag.
const AllFlags FlagSet = 1<<numFlags - 1

// Flags returns the set holding fs.
func Flags(fs ...Flag) FlagSet {
	var s FlagSet
	for _, f := range fs {
		s |= 1 << f
	}
	return s
}

// Has reports whether f is in s.
func (s FlagSet) Has(f Flag) bool { return s&(1<<f) != 0 }

// List returns the members of s in enumeration order.
func (s FlagSet) List() []Flag {
	var out []Flag
	for f := Flag(0); f < numFlags; f++ {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (s FlagSet) String() string {
	var names []string
	for _, f := range s.List() {
		names = append(names, f.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}

// arithFlags is the side-effect table for Arith statements. Flags left
// undefined by an operation are listed as affected.
var arithFlags = [...]FlagSet{
	ADD:  AllFlags,
	ADC:  AllFlags,
	SUB:  AllFlags,
	SBB:  AllFlags,
	AND:  AllFlags,
	OR:   AllFlags,
	XOR:  AllFlags,
	CMP:  AllFlags,
	TEST: AllFlags,
	INC:  AllFlags &^ Flags(Carry),
	DEC:  AllFlags &^ Flags(Carry),
	NEG:  AllFlags,
	NOT:  0,
	SHL:  AllFlags,
	SHR:  AllFlags,
	SAR:  AllFlags,
	ROL:  Flags(Carry, Overflow),
	ROR:  Flags(Carry, Overflow),
	MUL:  AllFlags,
	IMUL: AllFlags,
	DIV:  AllFlags,
	IDIV: AllFlags,
}

// Affects returns the flags s may write. A shift or rotate by a
// constant zero writes none; one by a register count is assumed to
// write all of its flags.
func Affects(s Stmt) FlagSet {
	switch s := s.(type) {
	case Arith:
		switch s.Op {
		case SHL, SHR, SAR, ROL, ROR:
			if n, ok := shiftCount(s); ok && n == 0 {
				return 0
			}
		}
		return arithFlags[s.Op]
	case Move:
		if f, ok := s.Dst.(Flag); ok {
			return Flags(f)
		}
	case Call, Unsupported:
		return AllFlags
	}
	return 0
}
