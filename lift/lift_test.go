// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lift

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/x86lift/decode"
	"github.com/google/x86lift/flow"
	"github.com/google/x86lift/ir"
)

func decodeAll(t *testing.T, buf []byte, base uint32) []decode.Inst {
	t.Helper()
	d := decode.NewDecoder(buf, base)
	var out []decode.Inst
	for d.CanRead(1) {
		inst, err := d.Decode()
		require.NoError(t, err)
		out = append(out, inst)
	}
	return out
}

func format(stmts []ir.Stmt) []string {
	out := []string{}
	for _, s := range stmts {
		out = append(out, ir.Format(s))
	}
	return out
}

func TestInst(t *testing.T) {
	tests := []struct {
		name  string
		bytes []byte
		want  []string
	}{
		{"add al", []byte{0x04, 0x05}, []string{"AL = AL + 0x05;"}},
		{"sub esp", []byte{0x83, 0xEC, 0x10}, []string{"ESP = ESP - 0x10;"}},
		{"cmp", []byte{0x39, 0xD8}, []string{"cmp(EAX, EBX);"}},
		{"load local", []byte{0x8B, 0x45, 0xF8}, []string{"EAX = *(uint32*)(EBP - 0x08);"}},
		{"load table", []byte{0x8B, 0x04, 0x8D, 0x00, 0x10, 0x40, 0x00}, []string{"EAX = *(uint32*)((ECX * 0x04) + 0x00401000);"}},
		{"load fs", []byte{0x64, 0xA1, 0x00, 0x00, 0x00, 0x00}, []string{"EAX = *(uint32*)FS:0x00000000;"}},
		{"lea", []byte{0x8D, 0x4C, 0x24, 0x10}, []string{"ECX = ESP + 0x10;"}},
		{"movzx", []byte{0x0F, 0xB6, 0xC1}, []string{"EAX = zext(CL);"}},
		{"cwde", []byte{0x98}, []string{"EAX = sext(AX);"}},
		{"cdq", []byte{0x99}, []string{"EDX = sar(EAX, 0x1F);"}},
		{"imul3", []byte{0x6B, 0xC1, 0x0C}, []string{"EAX = ECX;", "EAX = EAX * 0x0C;"}},
		{"imul2", []byte{0x0F, 0xAF, 0xC1}, []string{"EAX = EAX * ECX;"}},
		{"mul pair", []byte{0xF7, 0xE1}, []string{`__asm("MUL ECX"); /* 0x00001000 */`}},
		{"div pair", []byte{0xF7, 0xF1}, []string{`__asm("DIV ECX"); /* 0x00001000 */`}},
		{"idiv byte", []byte{0xF6, 0xFB}, []string{`__asm("IDIV BL"); /* 0x00001000 */`}},
		{"neg", []byte{0xF7, 0xD8}, []string{"EAX = 0x00 - EAX;"}},
		{"push", []byte{0x55}, []string{"push(EBP);"}},
		{"leave", []byte{0xC9}, []string{"ESP = EBP;", "EBP = pop();"}},
		{"ret", []byte{0xC3}, []string{"return;"}},
		{"ret imm", []byte{0xC2, 0x08, 0x00}, []string{"return; /* pop 0x0008 */"}},
		{"call", []byte{0xE8, 0x00, 0x00, 0x00, 0x00}, []string{"sub_00001005();"}},
		{"jmp indirect", []byte{0xFF, 0xE0}, []string{"goto *EAX;"}},
		{"je raw", []byte{0x74, 0x02}, []string{"if (ZF) goto block_00001004;"}},
		{"jl raw", []byte{0x7C, 0x02}, []string{"if ((SF && !OF) || (!SF && OF)) goto block_00001004;"}},
		{"sete raw", []byte{0x0F, 0x94, 0xC0}, []string{"AL = ZF;"}},
		{"clc", []byte{0xF8}, []string{"CF = false;"}},
		{"nop", []byte{0x90}, []string{}},
		{"fld", []byte{0xD9, 0x45, 0x08}, []string{"fld(*(uint32*)(EBP + 0x08));"}},
		{"rep stos", []byte{0xF3, 0xAB}, []string{`__asm("REP STOSD"); /* 0x00001000 */`}},
		{"hlt", []byte{0xF4}, []string{`__asm("HLT"); /* 0x00001000 */`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, err := decode.Decode(tt.bytes, 0x1000)
			require.NoError(t, err)
			assert.Equal(t, tt.want, format(Inst(inst)))
		})
	}
}

func TestBlockConditions(t *testing.T) {
	var (
		cmpEAXEBX = []byte{0x39, 0xD8}
		testEAX   = []byte{0x85, 0xC0}
		subEAXEBX = []byte{0x29, 0xD8}
	)
	cat := func(parts ...[]byte) []byte { return bytes.Join(parts, nil) }
	jcc := func(cc decode.Cond) []byte { return []byte{0x70 + byte(cc), 0x00} }

	tests := []struct {
		name string
		code []byte
		want string // rendering of the last statement
	}{
		{"cmp je", cat(cmpEAXEBX, jcc(decode.CondE)), "if (EAX == EBX) goto block_00000004;"},
		{"cmp jne", cat(cmpEAXEBX, jcc(decode.CondNE)), "if (EAX != EBX) goto block_00000004;"},
		{"cmp jb", cat(cmpEAXEBX, jcc(decode.CondB)), "if (EAX <u EBX) goto block_00000004;"},
		{"cmp ja", cat(cmpEAXEBX, jcc(decode.CondA)), "if (EAX >u EBX) goto block_00000004;"},
		{"cmp jl", cat(cmpEAXEBX, jcc(decode.CondL)), "if (EAX < EBX) goto block_00000004;"},
		{"cmp jge", cat(cmpEAXEBX, jcc(decode.CondGE)), "if (EAX >= EBX) goto block_00000004;"},
		{"cmp jle", cat(cmpEAXEBX, jcc(decode.CondLE)), "if (EAX <= EBX) goto block_00000004;"},
		{"cmp js", cat(cmpEAXEBX, jcc(decode.CondS)), "if ((EAX - EBX) < +0x00) goto block_00000004;"},
		{"cmp jo", cat(cmpEAXEBX, jcc(decode.CondO)), "if (OF) goto block_00000004;"},
		{"test je", cat(testEAX, jcc(decode.CondE)), "if (EAX == 0x00) goto block_00000004;"},
		{"test jle", cat(testEAX, jcc(decode.CondLE)), "if (EAX <= +0x00) goto block_00000004;"},
		{"test js", cat(testEAX, jcc(decode.CondS)), "if (EAX < +0x00) goto block_00000004;"},
		{"test jb", cat(testEAX, jcc(decode.CondB)), "if (false) goto block_00000004;"},
		{"test mask jne", cat([]byte{0xA8, 0x01}, jcc(decode.CondNE)), "if ((AL & 0x01) != 0x00) goto block_00000004;"},
		{"dec jne", cat([]byte{0x49}, jcc(decode.CondNE)), "if (ECX != 0x00) goto block_00000003;"},
		{"sub jb", cat(subEAXEBX, jcc(decode.CondB)), "if (CF) goto block_00000004;"},
		{
			"sub jl",
			cat(subEAXEBX, jcc(decode.CondL)),
			"if (((EAX < +0x00) && !OF) || ((EAX >= +0x00) && OF)) goto block_00000004;",
		},
		{"xor je", cat([]byte{0x31, 0xC0}, jcc(decode.CondE)), "if (true) goto block_00000004;"},
		{"clc jb", cat([]byte{0xF8}, jcc(decode.CondB)), "if (false) goto block_00000003;"},
		{
			"operand overwritten",
			cat(cmpEAXEBX, []byte{0xB8, 0x00, 0x00, 0x00, 0x00}, jcc(decode.CondE)),
			"if (ZF) goto block_00000009;",
		},
		{
			"flags clobbered by call",
			cat(cmpEAXEBX, []byte{0xE8, 0x00, 0x00, 0x00, 0x00}, jcc(decode.CondE)),
			"if (ZF) goto block_00000009;",
		},
		{
			"byte operand under full write",
			cat([]byte{0x3C, 0x05}, []byte{0xB8, 0x00, 0x00, 0x00, 0x00}, jcc(decode.CondE)),
			"if (ZF) goto block_00000009;",
		},
		{"operand under sete", cat(cmpEAXEBX, []byte{0x0F, 0x94, 0xC0}, jcc(decode.CondNE)), "if (!ZF) goto block_00000007;"},
		{"operand under word write", cat(cmpEAXEBX, []byte{0x66, 0xB8, 0x01, 0x00}, jcc(decode.CondE)), "if (ZF) goto block_00000008;"},
		{"operand under high byte write", cat(cmpEAXEBX, []byte{0xB4, 0x00}, jcc(decode.CondE)), "if (ZF) goto block_00000006;"},
		{"other byte register kept", cat([]byte{0x3C, 0x05}, []byte{0xB3, 0x00}, jcc(decode.CondE)), "if (AL == 0x05) goto block_00000006;"},
		{
			"memory operand under byte store",
			cat([]byte{0x83, 0x7D, 0xF8, 0x00}, []byte{0xC6, 0x45, 0xF8, 0x00}, jcc(decode.CondE)),
			"if (ZF) goto block_0000000A;",
		},
		{"shl by cl", cat([]byte{0xD3, 0xE0}, jcc(decode.CondE)), "if (ZF) goto block_00000004;"},
		{"shl by constant", cat([]byte{0xC1, 0xE0, 0x04}, jcc(decode.CondE)), "if (EAX == 0x00) goto block_00000005;"},
		{"shl by zero keeps cmp", cat([]byte{0x39, 0xD9}, []byte{0xC1, 0xE0, 0x00}, jcc(decode.CondE)), "if (ECX == EBX) goto block_00000007;"},
		{"cmp setl", cat(cmpEAXEBX, []byte{0x0F, 0x9C, 0xC0}), "AL = EAX < EBX;"},
		{"cmp cmovb", cat(cmpEAXEBX, []byte{0x0F, 0x42, 0xC1}), "if (EAX <u EBX) EAX = ECX;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insts := decodeAll(t, tt.code, 0)
			stmts := Block(&flow.Block{Start: 0, Insts: insts})
			require.NotEmpty(t, stmts)
			assert.Equal(t, tt.want, ir.Format(stmts[len(stmts)-1]))
		})
	}
}

func TestConditionWithoutProducers(t *testing.T) {
	assert.Equal(t, ir.Expr(ir.Zero), Condition(decode.CondE, nil))
	assert.Equal(t, "!CF && !ZF", ir.Format(Condition(decode.CondA, NewProducers())))
	assert.Equal(t, "ZF || ((SF && !OF) || (!SF && OF))", ir.Format(Condition(decode.CondLE, nil)))
}

func TestProducers(t *testing.T) {
	eax := ir.Register{Name: "EAX", Size: ir.S32}
	ebx := ir.Register{Name: "EBX", Size: ir.S32}
	cmp := ir.Arith{Op: ir.CMP, Dst: eax, Src: ebx}
	inc := ir.Arith{Op: ir.INC, Dst: ebx}

	p := NewProducers()
	p.Update(cmp)
	assert.Equal(t, ir.Stmt(cmp), p.Producer(ir.Carry))
	p.Update(ir.Move{Dst: ir.Register{Name: "ECX", Size: ir.S32}, Src: eax})
	assert.Equal(t, ir.Stmt(cmp), p.Producer(ir.Zero), "unrelated write keeps producer")

	p.Update(inc)
	assert.Equal(t, ir.Stmt(inc), p.Producer(ir.Zero))
	assert.Nil(t, p.Producer(ir.Carry), "CMP read EBX, which INC overwrote")

	for _, w := range []ir.Register{
		{Name: "AX", Size: ir.S16},
		{Name: "AL", Size: ir.S8},
		{Name: "AH", Size: ir.S8},
	} {
		p = NewProducers()
		p.Update(cmp)
		p.Update(ir.Move{Dst: w, Src: ir.C(1, w.Size)})
		assert.Nil(t, p.Producer(ir.Zero), "%s is part of EAX", w.Name)
	}

	p = NewProducers()
	p.Update(ir.Arith{Op: ir.CMP, Dst: ir.Register{Name: "AL", Size: ir.S8}, Src: ir.C(5, ir.S8)})
	p.Update(ir.Move{Dst: ir.Register{Name: "BH", Size: ir.S8}, Src: ir.C(0, ir.S8)})
	assert.NotNil(t, p.Producer(ir.Zero), "BH is not part of EAX")
	p.Update(ir.Move{Dst: eax, Src: ir.C(0, ir.S32)})
	assert.Nil(t, p.Producer(ir.Zero), "EAX holds AL")

	ebp := ir.Register{Name: "EBP", Size: ir.S32}
	local := ir.Deref{Ptr: ir.Binary{Op: ir.Sub, L: ebp, R: ir.C(8, ir.S8)}, Size: ir.S32}
	p = NewProducers()
	p.Update(ir.Arith{Op: ir.CMP, Dst: local, Src: ir.C(0, ir.S32)})
	p.Update(ir.Move{Dst: ir.Deref{Ptr: ebp, Size: ir.S8}, Src: ir.C(0, ir.S8)})
	assert.Nil(t, p.Producer(ir.Zero), "stores may overlap any load")

	p = NewProducers()
	p.Update(ir.Arith{Op: ir.CMP, Dst: local, Src: ir.C(0, ir.S32)})
	p.Update(ir.Push{Src: eax})
	assert.Nil(t, p.Producer(ir.Zero), "push stores to the stack")
}

func TestFunction(t *testing.T) {
	// 0  TEST EAX, EAX
	// 2  JE 0x9
	// 4  MOV EAX, 0x1
	// 9  RET
	code := []byte{0x85, 0xC0, 0x74, 0x05, 0xB8, 0x01, 0x00, 0x00, 0x00, 0xC3}
	res, err := flow.Disassemble(code, 0, 0)
	require.NoError(t, err)
	g, err := flow.Build(res.Blocks, 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ir.EmitFunction(&buf, Function(g)))
	want := "void sub_00000000() {\n" +
		"block_00000000:\n" +
		"    test(EAX, EAX);\n" +
		"    if (EAX == 0x00) goto block_00000009;\n" +
		"block_00000004:\n" +
		"    EAX = 0x01;\n" +
		"block_00000009:\n" +
		"    return;\n" +
		"}\n"
	assert.Equal(t, want, buf.String())
}

func TestFunctionExplicitFallthrough(t *testing.T) {
	code := []byte{0x85, 0xC0, 0x74, 0x05, 0xB8, 0x01, 0x00, 0x00, 0x00, 0xC3}
	insts := decodeAll(t, code, 0)
	blocks := flow.Blocks{
		0: {Start: 0, Insts: insts[:2]},
		9: {Start: 9, Insts: insts[3:]},
	}
	g, err := flow.Build(blocks, 0)
	require.NoError(t, err)

	fn := Function(g)
	require.Len(t, fn.Blocks, 2)
	assert.Equal(t, []string{
		"test(EAX, EAX);",
		"if (EAX == 0x00) goto block_00000009;",
		"goto block_00000004;",
	}, format(fn.Blocks[0].Stmts))
}
