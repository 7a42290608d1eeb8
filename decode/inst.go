// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import "strings"

// Prefix is the set of legacy prefixes seen before an opcode.
type Prefix uint16

const (
	PrefixLock Prefix = 1 << iota
	PrefixRep
	PrefixRepne
	PrefixOpSize
	PrefixAddrSize
	PrefixSeg
)

// Inst is a decoded instruction. It is never modified after Decode
// returns it.
type Inst struct {
	Addr   uint32
	Len    int
	Op     Op
	Args   []Arg
	Prefix Prefix
}

// Next returns the address of the instruction that follows i.
func (i Inst) Next() uint32 { return i.Addr + uint32(i.Len) }

// Target returns the resolved target of a direct jump or call.
func (i Inst) Target() (uint32, bool) {
	if len(i.Args) != 1 {
		return 0, false
	}
	r, ok := i.Args[0].(Rel)
	return r.Target, ok
}

// IsIndirect reports whether i is a jump or call through a register or
// memory operand.
func (i Inst) IsIndirect() bool {
	if !i.Op.IsJump() && !i.Op.IsCall() {
		return false
	}
	_, ok := i.Target()
	return !ok
}

func (i Inst) String() string {
	var b strings.Builder
	if i.Prefix&PrefixLock != 0 {
		b.WriteString("LOCK ")
	}
	if i.Prefix&PrefixRep != 0 {
		b.WriteString("REP ")
	}
	if i.Prefix&PrefixRepne != 0 {
		b.WriteString("REPNE ")
	}
	b.WriteString(i.Op.String())
	for n, a := range i.Args {
		if n == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	return b.String()
}
