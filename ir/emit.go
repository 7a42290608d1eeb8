// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

import (
	"fmt"
	"io"
	"strings"
)

// The emitter renders IR as C-like text. Ordered comparisons are signed
// unless marked with a "u" suffix, as in "a <u b". Rotates and the
// arithmetic shift are rendered as calls.

var binarySyms = [...]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "%",
	And: "&", Or: "|", Xor: "^", Shl: "<<", Shr: ">>",
	Sar: "sar", Rol: "rol", Ror: "ror",
}

var compareSyms = [...]string{
	Eq: "==", Ne: "!=", Lt: "<", Le: "<=", Gt: ">", Ge: ">=",
	ULt: "<u", ULe: "<=u", UGt: ">u", UGe: ">=u",
}

const indentUnit = "    "

// printer carries the state of one rendering call.
type printer struct {
	b      strings.Builder
	indent int
}

// Format renders an expression or a statement on one line, or a Block
// as its label followed by indented statements.
func Format(node interface{}) string {
	var p printer
	switch n := node.(type) {
	case Expr:
		p.expr(n, false)
	case Stmt:
		p.stmt(n)
	case Block:
		p.indent = 1
		p.block(n)
		return strings.TrimSuffix(p.b.String(), "\n")
	default:
		return fmt.Sprintf("<%T>", node)
	}
	return p.b.String()
}

// Emit writes the rendering of node followed by a newline.
func Emit(w io.Writer, node interface{}) error {
	_, err := io.WriteString(w, Format(node)+"\n")
	return err
}

// EmitFunction writes fn as a C-like function body with one label per
// block.
func EmitFunction(w io.Writer, fn *Function) error {
	var p printer
	fmt.Fprintf(&p.b, "void sub_%08X() {\n", fn.Entry)
	p.indent++
	for _, b := range fn.Blocks {
		p.block(b)
	}
	p.indent--
	p.b.WriteString("}\n")
	_, err := io.WriteString(w, p.b.String())
	return err
}

func (p *printer) block(b Block) {
	// Labels sit one level left of the statements.
	fmt.Fprintf(&p.b, "%s%s:\n", strings.Repeat(indentUnit, p.indent-1), blockLabel(b.Addr))
	for _, s := range b.Stmts {
		p.b.WriteString(strings.Repeat(indentUnit, p.indent))
		p.stmt(s)
		p.b.WriteByte('\n')
	}
}

func blockLabel(addr uint32) string { return fmt.Sprintf("block_%08X", addr) }

func (p *printer) str(e Expr) string {
	var q printer
	q.expr(e, false)
	return q.b.String()
}

func (p *printer) stmt(s Stmt) {
	switch s := s.(type) {
	case Move:
		src := p.str(s.Src)
		switch s.Ext {
		case ZeroExt:
			src = fmt.Sprintf("zext(%s)", src)
		case SignExt:
			src = fmt.Sprintf("sext(%s)", src)
		}
		if s.Cond != nil {
			fmt.Fprintf(&p.b, "if (%s) ", p.str(s.Cond))
		}
		fmt.Fprintf(&p.b, "%s = %s;", p.str(s.Dst), src)
	case Arith:
		if s.Result() == nil {
			fmt.Fprintf(&p.b, "%s(%s, %s);", s.Op, p.str(s.Dst), p.str(s.Src))
			return
		}
		fmt.Fprintf(&p.b, "%s = %s;", p.str(s.Dst), p.str(s.Value()))
	case Jump:
		target := "*" + p.operand(s.Target)
		if c, ok := s.Target.(Const); ok {
			target = blockLabel(c.Value)
		}
		if s.Cond != nil {
			fmt.Fprintf(&p.b, "if (%s) ", p.str(s.Cond))
		}
		fmt.Fprintf(&p.b, "goto %s;", target)
	case Call:
		if c, ok := s.Target.(Const); ok {
			fmt.Fprintf(&p.b, "sub_%08X();", c.Value)
			return
		}
		fmt.Fprintf(&p.b, "(*%s)();", p.operand(s.Target))
	case Push:
		fmt.Fprintf(&p.b, "push(%s);", p.str(s.Src))
	case Pop:
		fmt.Fprintf(&p.b, "%s = pop();", p.str(s.Dst))
	case Return:
		if s.Pop != 0 {
			fmt.Fprintf(&p.b, "return; /* pop 0x%04X */", s.Pop)
			return
		}
		p.b.WriteString("return;")
	case FPU:
		args := make([]string, len(s.Args))
		for i, a := range s.Args {
			args[i] = p.str(a)
		}
		fmt.Fprintf(&p.b, "%s(%s);", strings.ToLower(s.Op), strings.Join(args, ", "))
	case Unsupported:
		fmt.Fprintf(&p.b, "__asm(%q); /* 0x%08X */", s.Text, s.Addr)
	default:
		fmt.Fprintf(&p.b, "/* %T */", s)
	}
}

// operand renders e parenthesized unless it is a leaf.
func (p *printer) operand(e Expr) string {
	var q printer
	q.expr(e, true)
	return q.b.String()
}

// expr renders e. nested asks for parentheses around compound nodes.
func (p *printer) expr(e Expr, nested bool) {
	open := func() {
		if nested {
			p.b.WriteByte('(')
		}
	}
	closeP := func() {
		if nested {
			p.b.WriteByte(')')
		}
	}
	switch e := e.(type) {
	case Const:
		p.b.WriteString(constString(e))
	case Bool:
		if e {
			p.b.WriteString("true")
		} else {
			p.b.WriteString("false")
		}
	case Register:
		p.b.WriteString(e.Name)
	case Flag:
		p.b.WriteString(e.String())
	case Memory:
		fmt.Fprintf(&p.b, "*(%s*)%s0x%08X", e.Size.typeName(), segPrefix(e.Seg), e.Addr)
	case Deref:
		fmt.Fprintf(&p.b, "*(%s*)%s", e.Size.typeName(), segPrefix(e.Seg))
		p.expr(e.Ptr, true)
	case Binary:
		if e.Op >= Sar {
			fmt.Fprintf(&p.b, "%s(%s, %s)", binarySyms[e.Op], p.str(e.L), p.str(e.R))
			return
		}
		open()
		p.expr(e.L, true)
		if c, ok := e.R.(Const); ok && c.Signed && (e.Op == Add || e.Op == Sub) {
			// Signed displacements fold their sign into the operator.
			neg := c.Int() < 0
			if e.Op == Sub {
				neg = !neg
			}
			sym := "+"
			if neg {
				sym = "-"
			}
			fmt.Fprintf(&p.b, " %s %s", sym, hexMagnitude(abs(c.Int())))
		} else {
			fmt.Fprintf(&p.b, " %s ", binarySyms[e.Op])
			p.expr(e.R, true)
		}
		closeP()
	case Logical:
		sym := " && "
		if e.Op == LOr {
			sym = " || "
		}
		open()
		p.expr(e.L, true)
		p.b.WriteString(sym)
		p.expr(e.R, true)
		closeP()
	case Compare:
		open()
		p.expr(e.L, true)
		fmt.Fprintf(&p.b, " %s ", compareSyms[e.Op])
		p.expr(e.R, true)
		closeP()
	case Not:
		p.b.WriteByte('!')
		p.expr(e.X, true)
	case nil:
		p.b.WriteString("<nil>")
	default:
		fmt.Fprintf(&p.b, "<%T>", e)
	}
}

func segPrefix(seg string) string {
	if seg == "" {
		return ""
	}
	return seg + ":"
}

// constString renders c in hex with 2, 4 or 8 digits chosen by
// magnitude. Signed constants carry an explicit sign.
func constString(c Const) string {
	if !c.Signed {
		return hexMagnitude(int64(c.Value))
	}
	v := c.Int()
	if v < 0 {
		return "-" + hexMagnitude(-v)
	}
	return "+" + hexMagnitude(v)
}

func hexMagnitude(v int64) string {
	switch {
	case v <= 0xFF:
		return fmt.Sprintf("0x%02X", v)
	case v <= 0xFFFF:
		return fmt.Sprintf("0x%04X", v)
	}
	return fmt.Sprintf("0x%08X", v)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
