// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lift translates decoded x86 instructions into IR.
package lift

import (
	"github.com/google/x86lift/decode"
	"github.com/google/x86lift/ir"
)

var arithOps = map[decode.Op]ir.ArithOp{
	decode.ADD:  ir.ADD,
	decode.ADC:  ir.ADC,
	decode.SUB:  ir.SUB,
	decode.SBB:  ir.SBB,
	decode.AND:  ir.AND,
	decode.OR:   ir.OR,
	decode.XOR:  ir.XOR,
	decode.CMP:  ir.CMP,
	decode.TEST: ir.TEST,
	decode.INC:  ir.INC,
	decode.DEC:  ir.DEC,
	decode.NEG:  ir.NEG,
	decode.NOT:  ir.NOT,
	decode.SHL:  ir.SHL,
	decode.SAL:  ir.SHL,
	decode.SHR:  ir.SHR,
	decode.SAR:  ir.SAR,
	decode.ROL:  ir.ROL,
	decode.ROR:  ir.ROR,
}

// Expr converts a decoded operand to an expression.
func Expr(a decode.Arg) ir.Expr {
	switch a := a.(type) {
	case decode.Reg:
		return reg(a)
	case decode.MemDirect:
		return ir.Memory{Seg: seg(a.Seg), Addr: a.Addr, Size: ir.Size(a.Size)}
	case decode.MemBase:
		return ir.Deref{Seg: seg(a.Seg), Ptr: reg(a.Base), Size: ir.Size(a.Size)}
	case decode.MemBaseDisp:
		return ir.Deref{Seg: seg(a.Seg), Ptr: Address(a), Size: ir.Size(a.Size)}
	case decode.MemIndex:
		return ir.Deref{Seg: seg(a.Seg), Ptr: Address(a), Size: ir.Size(a.Size)}
	case decode.Imm:
		return ir.C(a.Value, ir.Size(a.Size))
	case decode.Rel:
		return ir.C(a.Target, ir.S32)
	}
	return nil
}

// Address returns the effective address computed by a memory operand.
func Address(m decode.Mem) ir.Expr {
	switch m := m.(type) {
	case decode.MemDirect:
		return ir.C(m.Addr, ir.S32)
	case decode.MemBase:
		return reg(m.Base)
	case decode.MemBaseDisp:
		return withDisp(reg(m.Base), m.Disp)
	case decode.MemIndex:
		var e ir.Expr = reg(m.Index)
		if m.Scale > 1 {
			e = ir.Binary{Op: ir.Mul, L: e, R: ir.C(uint32(m.Scale), ir.S32)}
		}
		if m.Base != decode.RegNone {
			e = ir.Binary{Op: ir.Add, L: reg(m.Base), R: e}
		}
		return withDisp(e, m.Disp)
	}
	return nil
}

func withDisp(e ir.Expr, disp int32) ir.Expr {
	if disp == 0 {
		return e
	}
	return ir.Binary{Op: ir.Add, L: e, R: ir.Const{Value: uint32(disp), Size: ir.S32, Signed: true}}
}

func reg(r decode.Reg) ir.Register {
	return ir.Register{Name: r.String(), Size: ir.Size(r.Width())}
}

func seg(r decode.Reg) string {
	if r == decode.RegNone {
		return ""
	}
	return r.String()
}

func args(inst decode.Inst) []ir.Expr {
	out := make([]ir.Expr, len(inst.Args))
	for i, a := range inst.Args {
		out[i] = Expr(a)
	}
	return out
}

// acc returns the accumulator of width w.
func acc(w decode.Width) ir.Register { return reg(decode.GPR(w, 0)) }

// Inst lifts one instruction. Conditional instructions are lifted with
// raw flag conditions; Block resolves them against earlier producers.
// NOP lifts to no statements.
func Inst(inst decode.Inst) []ir.Stmt {
	return lift(inst, nil)
}

func lift(inst decode.Inst, producers *Producers) []ir.Stmt {
	a := args(inst)
	unsupported := []ir.Stmt{ir.Unsupported{Addr: inst.Addr, Text: inst.String()}}
	if inst.Prefix&(decode.PrefixRep|decode.PrefixRepne|decode.PrefixLock) != 0 {
		return unsupported
	}

	if op, ok := arithOps[inst.Op]; ok {
		s := ir.Arith{Op: op, Dst: a[0]}
		if len(a) > 1 {
			s.Src = a[1]
		}
		return []ir.Stmt{s}
	}

	if cc, ok := inst.Op.Cond(); ok {
		cond := producers.Condition(cc)
		switch {
		case inst.Op.IsCondJump():
			return []ir.Stmt{ir.Jump{Target: a[0], Cond: cond}}
		case inst.Op >= decode.SETO && inst.Op <= decode.SETG:
			return []ir.Stmt{ir.Move{Dst: a[0], Src: cond}}
		default:
			return []ir.Stmt{ir.Move{Dst: a[0], Src: a[1], Cond: cond}}
		}
	}

	switch inst.Op {
	case decode.NOP:
		return nil
	case decode.MOV:
		return []ir.Stmt{ir.Move{Dst: a[0], Src: a[1]}}
	case decode.MOVZX:
		return []ir.Stmt{ir.Move{Dst: a[0], Src: a[1], Ext: ir.ZeroExt}}
	case decode.MOVSX:
		return []ir.Stmt{ir.Move{Dst: a[0], Src: a[1], Ext: ir.SignExt}}
	case decode.LEA:
		return []ir.Stmt{ir.Move{Dst: a[0], Src: Address(inst.Args[1].(decode.Mem))}}

	case decode.MUL, decode.IMUL, decode.DIV, decode.IDIV:
		op := map[decode.Op]ir.ArithOp{
			decode.MUL: ir.MUL, decode.IMUL: ir.IMUL,
			decode.DIV: ir.DIV, decode.IDIV: ir.IDIV,
		}[inst.Op]
		switch len(a) {
		case 1:
			// The one operand forms write a register pair, which has no
			// statement of its own.
			return unsupported
		case 2:
			return []ir.Stmt{ir.Arith{Op: op, Dst: a[0], Src: a[1]}}
		case 3:
			return []ir.Stmt{
				ir.Move{Dst: a[0], Src: a[1]},
				ir.Arith{Op: op, Dst: a[0], Src: a[2]},
			}
		}

	case decode.PUSH:
		return []ir.Stmt{ir.Push{Src: a[0]}}
	case decode.POP:
		return []ir.Stmt{ir.Pop{Dst: a[0]}}
	case decode.LEAVE:
		return []ir.Stmt{
			ir.Move{Dst: reg(decode.ESP), Src: reg(decode.EBP)},
			ir.Pop{Dst: reg(decode.EBP)},
		}
	case decode.CALL:
		return []ir.Stmt{ir.Call{Target: a[0]}}
	case decode.JMP:
		return []ir.Stmt{ir.Jump{Target: a[0]}}
	case decode.RET:
		var pop uint16
		if len(inst.Args) == 1 {
			pop = uint16(inst.Args[0].(decode.Imm).Value)
		}
		return []ir.Stmt{ir.Return{Pop: pop}}

	case decode.CLC:
		return []ir.Stmt{ir.Move{Dst: ir.Carry, Src: ir.Bool(false)}}
	case decode.STC:
		return []ir.Stmt{ir.Move{Dst: ir.Carry, Src: ir.Bool(true)}}
	case decode.CMC:
		return []ir.Stmt{ir.Move{Dst: ir.Carry, Src: ir.Not{X: ir.Carry}}}

	case decode.CBW, decode.CWDE:
		w := decode.W16
		if inst.Op == decode.CWDE {
			w = decode.W32
		}
		half := w / 2
		return []ir.Stmt{ir.Move{Dst: acc(w), Src: acc(half), Ext: ir.SignExt}}
	case decode.CWD, decode.CDQ:
		w := decode.W16
		if inst.Op == decode.CDQ {
			w = decode.W32
		}
		return []ir.Stmt{ir.Move{
			Dst: reg(decode.GPR(w, 2)),
			Src: ir.Binary{Op: ir.Sar, L: acc(w), R: ir.C(uint32(w.Bits()-1), ir.S8)},
		}}
	}

	if inst.Op.IsFPU() {
		return []ir.Stmt{ir.FPU{Op: inst.Op.String(), Args: a}}
	}
	return unsupported
}
