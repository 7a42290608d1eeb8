// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lift

import (
	"github.com/google/x86lift/flow"
	"github.com/google/x86lift/ir"
)

// Block lifts the instructions of b. Flag producers are tracked within
// the block only, so conditions that depend on flags set in a
// predecessor stay raw.
func Block(b *flow.Block) []ir.Stmt {
	p := NewProducers()
	var out []ir.Stmt
	for _, inst := range b.Insts {
		for _, s := range lift(inst, p) {
			out = append(out, s)
			p.Update(s)
		}
	}
	return out
}

// Function lifts every block the graph reaches, in ascending address
// order. A block that falls through to an address other than the next
// emitted block gets an explicit jump.
func Function(g *flow.Graph) *ir.Function {
	var blocks []*flow.Block
	for _, b := range g.Blocks.Sorted() {
		if g.Reached(b.Start) {
			blocks = append(blocks, b)
		}
	}
	fn := &ir.Function{Entry: g.Entry}
	for i, b := range blocks {
		stmts := Block(b)
		switch b.Terminator() {
		case flow.TermFallthrough, flow.TermCondJump:
			if i+1 == len(blocks) || blocks[i+1].Start != b.End() {
				stmts = append(stmts, ir.Jump{Target: ir.C(b.End(), ir.S32)})
			}
		}
		fn.Blocks = append(fn.Blocks, ir.Block{Addr: b.Start, Stmts: stmts})
	}
	return fn
}
