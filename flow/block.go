// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flow groups decoded instructions into basic blocks and builds
// control-flow graphs over them.
package flow

import (
	"sort"

	"github.com/google/x86lift/decode"
)

// Terminator classifies how a block ends.
type Terminator uint8

const (
	// TermFallthrough marks a block that ends without a control transfer,
	// because it was split or because decoding ran into another block.
	TermFallthrough Terminator = iota
	TermReturn
	TermJump
	TermCondJump
	TermIndirect // jump through a register or memory operand
)

func (t Terminator) String() string {
	switch t {
	case TermReturn:
		return "return"
	case TermJump:
		return "jump"
	case TermCondJump:
		return "cond-jump"
	case TermIndirect:
		return "indirect"
	}
	return "fallthrough"
}

// Block is a straight-line run of contiguous instructions.
type Block struct {
	Start uint32
	Insts []decode.Inst
}

// End returns the address just past the last instruction.
func (b *Block) End() uint32 {
	if len(b.Insts) == 0 {
		return b.Start
	}
	return b.Last().Next()
}

// Last returns the final instruction. b must not be empty.
func (b *Block) Last() decode.Inst { return b.Insts[len(b.Insts)-1] }

// Terminator classifies the last instruction of b.
func (b *Block) Terminator() Terminator {
	if len(b.Insts) == 0 {
		return TermFallthrough
	}
	last := b.Last()
	switch {
	case last.Op.IsReturn():
		return TermReturn
	case last.Op.IsCondJump():
		return TermCondJump
	case last.Op.IsJump() && last.IsIndirect():
		return TermIndirect
	case last.Op.IsJump():
		return TermJump
	}
	return TermFallthrough
}

// index returns the position of the instruction at addr, or -1.
func (b *Block) index(addr uint32) int {
	i := sort.Search(len(b.Insts), func(i int) bool { return b.Insts[i].Addr >= addr })
	if i < len(b.Insts) && b.Insts[i].Addr == addr {
		return i
	}
	return -1
}

// splitAt truncates b before the instruction at addr and returns a new
// block holding the rest.
func (b *Block) splitAt(addr uint32) *Block {
	i := b.index(addr)
	if i <= 0 {
		return nil
	}
	suffix := &Block{Start: addr, Insts: append([]decode.Inst(nil), b.Insts[i:]...)}
	b.Insts = b.Insts[:i:i]
	return suffix
}

// Blocks maps block start addresses to blocks.
type Blocks map[uint32]*Block

// Starts returns the block start addresses in ascending order.
func (bs Blocks) Starts() []uint32 {
	starts := make([]uint32, 0, len(bs))
	for a := range bs {
		starts = append(starts, a)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })
	return starts
}

// Sorted returns the blocks in ascending address order.
func (bs Blocks) Sorted() []*Block {
	out := make([]*Block, 0, len(bs))
	for _, a := range bs.Starts() {
		out = append(out, bs[a])
	}
	return out
}

// Clone returns a copy of bs that shares no blocks with it.
func (bs Blocks) Clone() Blocks {
	out := make(Blocks, len(bs))
	for a, b := range bs {
		out[a] = &Block{Start: b.Start, Insts: append([]decode.Inst(nil), b.Insts...)}
	}
	return out
}

// Unresolved records a control transfer whose target is not a block: an
// indirect jump, or a direct target outside the decoded buffer.
type Unresolved struct {
	From     uint32 // address of the transferring instruction
	Target   uint32 // zero when Indirect
	Indirect bool

	// Truncated marks the fall through of a block that decoding stopped
	// inside; Target is where the failed instruction would have begun.
	Truncated bool
}
