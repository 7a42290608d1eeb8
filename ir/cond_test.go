// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	eax = Register{Name: "EAX", Size: S32}
	ebx = Register{Name: "EBX", Size: S32}
	ebp = Register{Name: "EBP", Size: S32}
	al  = Register{Name: "AL", Size: S8}
)

func TestFlagCondition(t *testing.T) {
	tests := []struct {
		name     string
		stmt     Stmt
		flag     Flag
		expected bool
		want     string // empty when not expressible
	}{
		{"cmp zero", Arith{Op: CMP, Dst: eax, Src: ebx}, Zero, true, "EAX == EBX"},
		{"cmp not zero", Arith{Op: CMP, Dst: eax, Src: ebx}, Zero, false, "EAX != EBX"},
		{"cmp carry", Arith{Op: CMP, Dst: eax, Src: ebx}, Carry, true, "EAX <u EBX"},
		{"cmp no carry", Arith{Op: CMP, Dst: eax, Src: ebx}, Carry, false, "EAX >=u EBX"},
		{"cmp byte carry", Arith{Op: CMP, Dst: al, Src: C(0x41, S8)}, Carry, true, "AL <u 0x41"},
		{"sub sign", Arith{Op: SUB, Dst: eax, Src: ebx}, Sign, true, "(EAX - EBX) < +0x00"},
		{"sub overflow", Arith{Op: SUB, Dst: eax, Src: ebx}, Overflow, true, ""},
		{"cmp parity", Arith{Op: CMP, Dst: eax, Src: ebx}, Parity, true, ""},
		{"add zero", Arith{Op: ADD, Dst: eax, Src: ebx}, Zero, true, "(EAX + EBX) == 0x00"},
		{"add carry", Arith{Op: ADD, Dst: eax, Src: ebx}, Carry, true, "(EAX + EBX) <u EAX"},
		{"add sign clear", Arith{Op: ADD, Dst: eax, Src: ebx}, Sign, false, "(EAX + EBX) >= +0x00"},
		{"adc carry", Arith{Op: ADC, Dst: eax, Src: ebx}, Carry, true, ""},
		{"and zero", Arith{Op: AND, Dst: eax, Src: C(0xFF, S32)}, Zero, true, "(EAX & 0xFF) == 0x00"},
		{"and carry", Arith{Op: AND, Dst: eax, Src: ebx}, Carry, true, "false"},
		{"or overflow clear", Arith{Op: OR, Dst: eax, Src: ebx}, Overflow, false, "true"},
		{"xor self zero", Arith{Op: XOR, Dst: eax, Src: eax}, Zero, true, "true"},
		{"xor self sign", Arith{Op: XOR, Dst: eax, Src: eax}, Sign, true, "false"},
		{"test self zero", Arith{Op: TEST, Dst: eax, Src: eax}, Zero, true, "EAX == 0x00"},
		{"test self sign", Arith{Op: TEST, Dst: eax, Src: eax}, Sign, false, "EAX >= +0x00"},
		{"test mask", Arith{Op: TEST, Dst: al, Src: C(1, S8)}, Zero, false, "(AL & 0x01) != 0x00"},
		{"test carry", Arith{Op: TEST, Dst: eax, Src: eax}, Carry, true, "false"},
		{"test overflow", Arith{Op: TEST, Dst: eax, Src: eax}, Overflow, false, "true"},
		{"not carry", Arith{Op: NOT, Dst: eax}, Carry, true, "false"},
		{"not zero", Arith{Op: NOT, Dst: eax}, Zero, true, ""},
		{"inc zero", Arith{Op: INC, Dst: eax}, Zero, true, "(EAX + 0x01) == 0x00"},
		{"inc overflow", Arith{Op: INC, Dst: eax}, Overflow, true, "EAX == 0x7FFFFFFF"},
		{"dec overflow", Arith{Op: DEC, Dst: al}, Overflow, true, "AL == 0x80"},
		{"inc carry", Arith{Op: INC, Dst: eax}, Carry, true, ""},
		{"neg carry", Arith{Op: NEG, Dst: eax}, Carry, true, "EAX != 0x00"},
		{"neg no carry", Arith{Op: NEG, Dst: eax}, Carry, false, "EAX == 0x00"},
		{"neg overflow", Arith{Op: NEG, Dst: eax}, Overflow, true, "EAX == 0x80000000"},
		{"shl zero", Arith{Op: SHL, Dst: eax, Src: C(4, S8)}, Zero, true, "(EAX << 0x04) == 0x00"},
		{"shl carry", Arith{Op: SHL, Dst: eax, Src: C(4, S8)}, Carry, true, ""},
		{"shl by register", Arith{Op: SHL, Dst: eax, Src: Register{Name: "CL", Size: S8}}, Zero, true, ""},
		{"sar by zero", Arith{Op: SAR, Dst: eax, Src: C(0, S8)}, Sign, true, ""},
		{"shr by masked zero", Arith{Op: SHR, Dst: eax, Src: C(32, S8)}, Zero, true, ""},
		{"shr sign", Arith{Op: SHR, Dst: eax, Src: C(1, S8)}, Sign, false, "(EAX >> 0x01) >= +0x00"},
		{"rol carry", Arith{Op: ROL, Dst: eax, Src: C(1, S8)}, Carry, true, ""},
		{"clc", Move{Dst: Carry, Src: Bool(false)}, Carry, true, "false"},
		{"stc", Move{Dst: Carry, Src: Bool(true)}, Carry, true, "true"},
		{"cmc", Move{Dst: Carry, Src: Not{X: Carry}}, Carry, true, ""},
		{"move", Move{Dst: eax, Src: ebx}, Zero, true, ""},
		{"call", Call{Target: C(0x1000, S32)}, Zero, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FlagCondition(tt.stmt, tt.flag, tt.expected)
			if tt.want == "" {
				assert.False(t, ok)
				assert.Nil(t, got)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, Format(got))
		})
	}
}

// TestFlagConditionNegates checks that a false expectation flips the
// comparison rather than wrapping it in Not.
func TestFlagConditionNegates(t *testing.T) {
	stmts := []Stmt{
		Arith{Op: CMP, Dst: eax, Src: ebx},
		Arith{Op: SUB, Dst: eax, Src: ebx},
		Arith{Op: ADD, Dst: eax, Src: ebx},
		Arith{Op: TEST, Dst: eax, Src: eax},
		Arith{Op: AND, Dst: eax, Src: ebx},
		Arith{Op: INC, Dst: eax},
		Arith{Op: DEC, Dst: eax},
		Arith{Op: NEG, Dst: eax},
		Arith{Op: SAR, Dst: eax, Src: C(1, S8)},
	}
	for _, s := range stmts {
		for f := Flag(0); f < numFlags; f++ {
			yes, ok := FlagCondition(s, f, true)
			no, ok2 := FlagCondition(s, f, false)
			require.Equal(t, ok, ok2)
			if !ok {
				continue
			}
			switch yes := yes.(type) {
			case Compare:
				assert.Equal(t, yes.Negate(), no, "%v %v", s, f)
			case Bool:
				assert.Equal(t, !yes, no, "%v %v", s, f)
			default:
				t.Errorf("%v %v: unexpected %T", s, f, yes)
			}
			_, isNot := no.(Not)
			assert.False(t, isNot)
		}
	}
}

func TestRaw(t *testing.T) {
	assert.Equal(t, Expr(Zero), Raw(Zero, true))
	assert.Equal(t, Expr(Not{X: Carry}), Raw(Carry, false))
	assert.Equal(t, "!CF", Format(Raw(Carry, false)))
}

func TestSimplify(t *testing.T) {
	cmpEq := Compare{Op: Eq, L: eax, R: ebx}
	tests := []struct {
		name string
		in   Expr
		want Expr
	}{
		{"and true", AndExpr(Bool(true), cmpEq), cmpEq},
		{"and false", AndExpr(cmpEq, Bool(false)), Bool(false)},
		{"or false", OrExpr(Bool(false), Sign), Sign},
		{"or true", OrExpr(Sign, Bool(true)), Bool(true)},
		{"not bool", Not{X: Bool(true)}, Bool(false)},
		{"not compare", Not{X: cmpEq}, cmpEq.Negate()},
		{"double not", Not{X: Not{X: Zero}}, Zero},
		{"not flag", Not{X: Zero}, Not{X: Zero}},
		{"same operands", AndExpr(Sign, Sign), Sign},
		{
			name: "less after test",
			// (SF && !OF) || (!SF && OF) with OF known clear.
			in: OrExpr(
				AndExpr(Sign, Not{X: Bool(false)}),
				AndExpr(Not{X: Sign}, Bool(false)),
			),
			want: Sign,
		},
		{"leaf", eax, eax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Simplify(tt.in))
		})
	}
}
