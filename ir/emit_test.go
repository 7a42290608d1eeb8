// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatExpr(t *testing.T) {
	ebpMinus8 := Deref{Ptr: Binary{Op: Add, L: ebp, R: Const{Value: 0xFFFFFFF8, Size: S32, Signed: true}}, Size: S32}
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"byte", C(5, S8), "0x05"},
		{"word", C(0x1234, S16), "0x1234"},
		{"dword", C(0x401000, S32), "0x00401000"},
		{"small dword", C(0x10, S32), "0x10"},
		{"negative signed", Const{Value: 0xFFFFFFF8, Size: S32, Signed: true}, "-0x08"},
		{"positive signed", Const{Value: 0x100, Size: S32, Signed: true}, "+0x0100"},
		{"negative signed byte", Const{Value: 0x80, Size: S8, Signed: true}, "-0x80"},
		{"bool", Bool(true), "true"},
		{"flag", Overflow, "OF"},
		{"memory", Memory{Addr: 0x401000, Size: S32}, "*(uint32*)0x00401000"},
		{"memory seg", Memory{Seg: "FS", Size: S32}, "*(uint32*)FS:0x00000000"},
		{"deref", ebpMinus8, "*(uint32*)(EBP - 0x08)"},
		{"deref register", Deref{Ptr: ebx, Size: S8}, "*(uint8*)EBX"},
		{"nested binary", Binary{Op: Mul, L: Binary{Op: Add, L: eax, R: ebx}, R: C(4, S32)}, "(EAX + EBX) * 0x04"},
		{"sar", Binary{Op: Sar, L: eax, R: C(31, S8)}, "sar(EAX, 0x1F)"},
		{"compare", Compare{Op: UGe, L: eax, R: ebx}, "EAX >=u EBX"},
		{"logical", OrExpr(Compare{Op: Lt, L: eax, R: ebx}, Not{X: Zero}), "(EAX < EBX) || !ZF"},
		{"not compare", Not{X: Compare{Op: Eq, L: eax, R: ebx}}, "!(EAX == EBX)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.expr))
			assert.Equal(t, tt.want, tt.expr.String())
		})
	}
}

func TestFormatStmt(t *testing.T) {
	tests := []struct {
		name string
		stmt Stmt
		want string
	}{
		{"move", Move{Dst: eax, Src: C(1, S32)}, "EAX = 0x01;"},
		{"zext", Move{Dst: eax, Src: al, Ext: ZeroExt}, "EAX = zext(AL);"},
		{"cmov", Move{Dst: eax, Src: ebx, Cond: Zero}, "if (ZF) EAX = EBX;"},
		{"add", Arith{Op: ADD, Dst: eax, Src: ebx}, "EAX = EAX + EBX;"},
		{"neg", Arith{Op: NEG, Dst: eax}, "EAX = 0x00 - EAX;"},
		{"cmp", Arith{Op: CMP, Dst: eax, Src: ebx}, "cmp(EAX, EBX);"},
		{"jump", Jump{Target: C(0x401000, S32)}, "goto block_00401000;"},
		{
			"cond jump",
			Jump{Target: C(0x401000, S32), Cond: Compare{Op: Eq, L: eax, R: ebx}},
			"if (EAX == EBX) goto block_00401000;",
		},
		{"indirect jump", Jump{Target: eax}, "goto *EAX;"},
		{"call", Call{Target: C(0x401000, S32)}, "sub_00401000();"},
		{"indirect call", Call{Target: Memory{Addr: 0x402000, Size: S32}}, "(**(uint32*)0x00402000)();"},
		{"push", Push{Src: ebp}, "push(EBP);"},
		{"pop", Pop{Dst: ebp}, "EBP = pop();"},
		{"return", Return{}, "return;"},
		{"return pop", Return{Pop: 8}, "return; /* pop 0x0008 */"},
		{"fpu", FPU{Op: "FADD", Args: []Expr{Register{Name: "ST0", Size: S80}, Register{Name: "ST1", Size: S80}}}, "fadd(ST0, ST1);"},
		{"unsupported", Unsupported{Addr: 0x1000, Text: "HLT"}, `__asm("HLT"); /* 0x00001000 */`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.stmt))
		})
	}
}

func testFunction() *Function {
	return &Function{
		Entry: 0x1000,
		Blocks: []Block{
			{Addr: 0x1000, Stmts: []Stmt{
				Move{Dst: eax, Src: C(1, S32)},
				Jump{Target: C(0x1008, S32)},
			}},
			{Addr: 0x1008, Stmts: []Stmt{Return{}}},
		},
	}
}

func TestEmitFunction(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EmitFunction(&buf, testFunction()))
	want := "void sub_00001000() {\n" +
		"block_00001000:\n" +
		"    EAX = 0x01;\n" +
		"    goto block_00001008;\n" +
		"block_00001008:\n" +
		"    return;\n" +
		"}\n"
	assert.Equal(t, want, buf.String())

	assert.Equal(t, "block_00001008:\n    return;", Format(testFunction().Blocks[1]))

	buf.Reset()
	require.NoError(t, Emit(&buf, Move{Dst: eax, Src: ebx}))
	assert.Equal(t, "EAX = EBX;\n", buf.String())
}

// TestEmitConcurrent renders from many goroutines at once; output must
// not depend on interleaving.
func TestEmitConcurrent(t *testing.T) {
	var want bytes.Buffer
	require.NoError(t, EmitFunction(&want, testFunction()))

	const n = 16
	got := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var buf bytes.Buffer
			if err := EmitFunction(&buf, testFunction()); err == nil {
				got[i] = buf.String()
			}
		}(i)
	}
	wg.Wait()
	for _, g := range got {
		assert.Equal(t, want.String(), g)
	}
}
