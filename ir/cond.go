// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

// FlagCondition returns an expression equivalent to "f == expected"
// after s executes, written over the operand values s reads. The
// boolean result is false when the flag is not modelled precisely for
// s; callers then fall back to Raw.
//
// A false expectation flips the comparison instead of wrapping it in
// Not.
func FlagCondition(s Stmt, f Flag, expected bool) (Expr, bool) {
	switch s := s.(type) {
	case Arith:
		return arithCondition(s, f, expected)
	case Move:
		// Explicit flag writes such as CLC and STC.
		if s.Dst == f && s.Cond == nil {
			if b, ok := s.Src.(Bool); ok {
				return Bool(bool(b) == expected), true
			}
		}
	}
	return nil, false
}

func arithCondition(s Arith, f Flag, expected bool) (Expr, bool) {
	d, src := s.Dst, s.Src
	size := SizeOf(d)
	switch s.Op {
	case SUB, CMP:
		switch f {
		case Zero:
			return cmp(Eq, d, src, expected), true
		case Carry:
			return cmp(ULt, d, src, expected), true
		case Sign:
			return signTest(s.Value(), size, expected), true
		}

	case ADD:
		v := s.Value()
		switch f {
		case Zero:
			return zeroTest(v, size, expected), true
		case Sign:
			return signTest(v, size, expected), true
		case Carry:
			return cmp(ULt, v, d, expected), true
		}

	case AND, OR, XOR, TEST:
		v := s.Value()
		switch f {
		case Zero:
			if c, ok := v.(Const); ok {
				return Bool((c.Value == 0) == expected), true
			}
			return zeroTest(v, size, expected), true
		case Sign:
			if c, ok := v.(Const); ok {
				return Bool((c.Int() < 0) == expected), true
			}
			return signTest(v, size, expected), true
		case Carry, Overflow:
			return cleared(expected), true
		}

	case NOT:
		if f == Carry || f == Overflow {
			return cleared(expected), true
		}

	case INC, DEC:
		v := s.Value()
		switch f {
		case Zero:
			return zeroTest(v, size, expected), true
		case Sign:
			return signTest(v, size, expected), true
		case Overflow:
			edge := maxSigned(size)
			if s.Op == DEC {
				edge = minSigned(size)
			}
			return cmp(Eq, d, edge, expected), true
		}

	case NEG:
		switch f {
		case Zero:
			return zeroTest(d, size, expected), true
		case Carry:
			return zeroTest(d, size, !expected), true
		case Sign:
			return signTest(s.Value(), size, expected), true
		case Overflow:
			return cmp(Eq, d, minSigned(size), expected), true
		}

	case SHL, SHR, SAR:
		// A register count may be zero, which leaves the flags alone.
		if n, ok := shiftCount(s); !ok || n == 0 {
			return nil, false
		}
		v := s.Value()
		switch f {
		case Zero:
			return zeroTest(v, size, expected), true
		case Sign:
			return signTest(v, size, expected), true
		}
	}
	return nil, false
}

// shiftCount returns the constant count of a shift or rotate, masked
// the way the processor masks it.
func shiftCount(s Arith) (uint32, bool) {
	c, ok := s.Src.(Const)
	if !ok {
		return 0, false
	}
	return c.Value & 31, true
}

func cmp(op CompareOp, l, r Expr, expected bool) Compare {
	c := Compare{Op: op, L: l, R: r}
	if !expected {
		return c.Negate()
	}
	return c
}

func zeroTest(v Expr, size Size, expected bool) Compare {
	return cmp(Eq, v, C(0, size), expected)
}

func signTest(v Expr, size Size, expected bool) Compare {
	return cmp(Lt, v, Const{Size: size, Signed: true}, expected)
}

// cleared is "f == expected" for a flag the operation always clears.
func cleared(expected bool) Bool { return Bool(!expected) }

func maxSigned(s Size) Const { return C(s.mask()>>1, s) }

func minSigned(s Size) Const { return C(s.mask()>>1+1, s) }

// Raw is the fallback expression "f == expected" over the flag itself.
func Raw(f Flag, expected bool) Expr {
	if expected {
		return f
	}
	return Not{X: f}
}

// Simplify folds boolean constants out of Logical and Not nodes and
// pushes Not into comparisons.
func Simplify(e Expr) Expr {
	switch e := e.(type) {
	case Not:
		switch x := Simplify(e.X).(type) {
		case Bool:
			return !x
		case Compare:
			return x.Negate()
		case Not:
			return x.X
		default:
			return Not{X: x}
		}
	case Logical:
		l, r := Simplify(e.L), Simplify(e.R)
		if b, ok := l.(Bool); ok {
			return foldLogical(e.Op, b, r)
		}
		if b, ok := r.(Bool); ok {
			return foldLogical(e.Op, b, l)
		}
		if l == r {
			return l
		}
		return Logical{Op: e.Op, L: l, R: r}
	}
	return e
}

func foldLogical(op LogicalOp, b Bool, other Expr) Expr {
	switch {
	case op == LAnd && !bool(b):
		return Bool(false)
	case op == LOr && bool(b):
		return Bool(true)
	}
	return other
}

// AndExpr and OrExpr build Logical nodes.
func AndExpr(l, r Expr) Expr { return Logical{Op: LAnd, L: l, R: r} }

func OrExpr(l, r Expr) Expr { return Logical{Op: LOr, L: l, R: r} }
