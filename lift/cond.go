// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lift

import (
	"github.com/google/x86lift/decode"
	"github.com/google/x86lift/ir"
)

// Producers records, per flag, the last statement that wrote it. A
// producer whose inputs have since been overwritten is forgotten, since
// conditions are expressed over those inputs. A nil *Producers knows no
// producers.
type Producers struct {
	last map[ir.Flag]ir.Stmt
}

// NewProducers returns an empty tracker.
func NewProducers() *Producers {
	return &Producers{last: make(map[ir.Flag]ir.Stmt)}
}

// Update records the effects of s, which executes after every statement
// seen so far.
func (p *Producers) Update(s ir.Stmt) {
	written := writes(s)
	for f, prod := range p.last {
		if reads(prod, written) {
			delete(p.last, f)
		}
	}
	for _, f := range ir.Affects(s).List() {
		p.last[f] = s
	}
}

// Producer returns the statement that last wrote f, or nil.
func (p *Producers) Producer(f ir.Flag) ir.Stmt {
	if p == nil {
		return nil
	}
	return p.last[f]
}

var esp = reg(decode.ESP)

// writes lists the locations s assigns, including the stack pointer and
// the stack slot for stack operations. Memory written through other
// pointers is not tracked.
func writes(s ir.Stmt) []ir.Expr {
	var out []ir.Expr
	if r := s.Result(); r != nil {
		out = append(out, r)
	}
	switch s.(type) {
	case ir.Push, ir.Call:
		out = append(out, esp, ir.Deref{Ptr: esp, Size: ir.S32})
	case ir.Pop, ir.Return:
		out = append(out, esp)
	}
	return out
}

// reads reports whether s reads any of locs.
func reads(s ir.Stmt, locs []ir.Expr) bool {
	for _, op := range s.Operands() {
		for _, l := range locs {
			if clobbers(l, op) {
				return true
			}
		}
	}
	return false
}

// parents maps every general purpose register name to the 32-bit
// register holding it.
var parents = func() map[string]string {
	m := make(map[string]string, 24)
	for n := 0; n < 8; n++ {
		full := decode.GPR(decode.W32, n).String()
		m[full] = full
		m[decode.GPR(decode.W16, n).String()] = full
		m[decode.GPR(decode.W8, n).String()] = decode.GPR(decode.W32, n&3).String()
	}
	return m
}()

func parent(r ir.Register) string {
	if p, ok := parents[r.Name]; ok {
		return p
	}
	return r.Name
}

// clobbers reports whether writing loc changes the value of e. Registers
// alias through their 32-bit parent and any memory write is assumed to
// reach any memory read.
func clobbers(loc, e ir.Expr) bool {
	found := false
	ir.Walk(e, func(n ir.Expr) bool {
		switch w := loc.(type) {
		case ir.Register:
			if r, ok := n.(ir.Register); ok && parent(r) == parent(w) {
				found = true
			}
		case ir.Memory, ir.Deref:
			switch n.(type) {
			case ir.Memory, ir.Deref:
				found = true
			}
		default:
			found = ir.Equal(n, loc)
		}
		return !found
	})
	return found
}

// condFlags lists the flags each condition code reads.
var condFlags = [16][]ir.Flag{
	decode.CondO:  {ir.Overflow},
	decode.CondNO: {ir.Overflow},
	decode.CondB:  {ir.Carry},
	decode.CondAE: {ir.Carry},
	decode.CondE:  {ir.Zero},
	decode.CondNE: {ir.Zero},
	decode.CondBE: {ir.Carry, ir.Zero},
	decode.CondA:  {ir.Carry, ir.Zero},
	decode.CondS:  {ir.Sign},
	decode.CondNS: {ir.Sign},
	decode.CondP:  {ir.Parity},
	decode.CondNP: {ir.Parity},
	decode.CondL:  {ir.Sign, ir.Overflow},
	decode.CondGE: {ir.Sign, ir.Overflow},
	decode.CondLE: {ir.Zero, ir.Sign, ir.Overflow},
	decode.CondG:  {ir.Zero, ir.Sign, ir.Overflow},
}

// Condition returns the boolean expression for cc given the producers.
func Condition(cc decode.Cond, p *Producers) ir.Expr { return p.Condition(cc) }

// Condition returns the boolean expression for cc. When one CMP or TEST
// produced every flag cc reads, the result is a direct comparison of its
// operands. Otherwise cc is composed from per-flag conditions, each
// translated from its producer or left as the raw flag.
func (p *Producers) Condition(cc decode.Cond) ir.Expr {
	if s, ok := p.common(cc); ok {
		if e, ok := direct(cc, s); ok {
			return e
		}
	}
	return ir.Simplify(p.compose(cc))
}

// common returns the single Arith statement producing every flag cc
// reads.
func (p *Producers) common(cc decode.Cond) (ir.Arith, bool) {
	var first ir.Stmt
	for _, f := range condFlags[cc&15] {
		s := p.Producer(f)
		if s == nil || (first != nil && !sameStmt(s, first)) {
			return ir.Arith{}, false
		}
		first = s
	}
	a, ok := first.(ir.Arith)
	return a, ok
}

func sameStmt(a, b ir.Stmt) bool {
	x, ok1 := a.(ir.Arith)
	y, ok2 := b.(ir.Arith)
	return ok1 && ok2 && ir.Equal(x.Dst, y.Dst) && ir.Equal(x.Src, y.Src) && x.Op == y.Op
}

func direct(cc decode.Cond, s ir.Arith) (ir.Expr, bool) {
	switch s.Op {
	case ir.CMP:
		ops := map[decode.Cond]ir.CompareOp{
			decode.CondE: ir.Eq, decode.CondNE: ir.Ne,
			decode.CondB: ir.ULt, decode.CondAE: ir.UGe,
			decode.CondBE: ir.ULe, decode.CondA: ir.UGt,
			decode.CondL: ir.Lt, decode.CondGE: ir.Ge,
			decode.CondLE: ir.Le, decode.CondG: ir.Gt,
		}
		if op, ok := ops[cc]; ok {
			return ir.Compare{Op: op, L: s.Dst, R: s.Src}, true
		}
	case ir.TEST:
		v := s.Value()
		size := ir.SizeOf(s.Dst)
		zero, szero := ir.C(0, size), ir.Const{Size: size, Signed: true}
		switch cc {
		case decode.CondE, decode.CondBE:
			return ir.Compare{Op: ir.Eq, L: v, R: zero}, true
		case decode.CondNE, decode.CondA:
			return ir.Compare{Op: ir.Ne, L: v, R: zero}, true
		case decode.CondS, decode.CondL:
			return ir.Compare{Op: ir.Lt, L: v, R: szero}, true
		case decode.CondNS, decode.CondGE:
			return ir.Compare{Op: ir.Ge, L: v, R: szero}, true
		case decode.CondLE:
			return ir.Compare{Op: ir.Le, L: v, R: szero}, true
		case decode.CondG:
			return ir.Compare{Op: ir.Gt, L: v, R: szero}, true
		case decode.CondB, decode.CondO:
			return ir.Bool(false), true
		case decode.CondAE, decode.CondNO:
			return ir.Bool(true), true
		}
	}
	return nil, false
}

func (p *Producers) compose(cc decode.Cond) ir.Expr {
	less := func() ir.Expr {
		return ir.OrExpr(
			ir.AndExpr(p.atom(ir.Sign, true), p.atom(ir.Overflow, false)),
			ir.AndExpr(p.atom(ir.Sign, false), p.atom(ir.Overflow, true)),
		)
	}
	greaterEq := func() ir.Expr {
		return ir.OrExpr(
			ir.AndExpr(p.atom(ir.Sign, true), p.atom(ir.Overflow, true)),
			ir.AndExpr(p.atom(ir.Sign, false), p.atom(ir.Overflow, false)),
		)
	}
	switch cc & 15 {
	case decode.CondO:
		return p.atom(ir.Overflow, true)
	case decode.CondNO:
		return p.atom(ir.Overflow, false)
	case decode.CondB:
		return p.atom(ir.Carry, true)
	case decode.CondAE:
		return p.atom(ir.Carry, false)
	case decode.CondE:
		return p.atom(ir.Zero, true)
	case decode.CondNE:
		return p.atom(ir.Zero, false)
	case decode.CondBE:
		return ir.OrExpr(p.atom(ir.Carry, true), p.atom(ir.Zero, true))
	case decode.CondA:
		return ir.AndExpr(p.atom(ir.Carry, false), p.atom(ir.Zero, false))
	case decode.CondS:
		return p.atom(ir.Sign, true)
	case decode.CondNS:
		return p.atom(ir.Sign, false)
	case decode.CondP:
		return p.atom(ir.Parity, true)
	case decode.CondNP:
		return p.atom(ir.Parity, false)
	case decode.CondL:
		return less()
	case decode.CondGE:
		return greaterEq()
	case decode.CondLE:
		return ir.OrExpr(p.atom(ir.Zero, true), less())
	default: // CondG
		return ir.AndExpr(p.atom(ir.Zero, false), greaterEq())
	}
}

// atom is "f == expected" after the flag's producer. Translations that
// read a location the producer overwrote are restated over the result
// for ZF and SF and dropped to the raw flag otherwise.
func (p *Producers) atom(f ir.Flag, expected bool) ir.Expr {
	s := p.Producer(f)
	if s == nil {
		return ir.Raw(f, expected)
	}
	e, ok := ir.FlagCondition(s, f, expected)
	if !ok {
		return ir.Raw(f, expected)
	}
	res := s.Result()
	if res == nil || !clobbers(res, e) {
		return e
	}
	size := ir.SizeOf(res)
	var c ir.Compare
	switch f {
	case ir.Zero:
		c = ir.Compare{Op: ir.Eq, L: res, R: ir.C(0, size)}
	case ir.Sign:
		c = ir.Compare{Op: ir.Lt, L: res, R: ir.Const{Size: size, Signed: true}}
	default:
		return ir.Raw(f, expected)
	}
	if !expected {
		c = c.Negate()
	}
	return c
}
