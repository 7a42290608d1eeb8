// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scan

import (
	"bytes"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/google/x86lift/decode"
	"github.com/google/x86lift/ir"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func BenchmarkFindAll(b *testing.B) {
	entries := []uint32{0x1000, 0x100C}
	for ii := 0; ii < b.N; ii++ {
		_ = FindAll(image, 0x1000, entries, 0)
	}
}

// TestFindAll tests the worker pool with injected work.
func TestFindAll(t *testing.T) {
	for _, test := range []struct {
		name        string
		count       int
		concurrency int
	}{
		{name: "no entries"},
		{name: "one worker", count: 5, concurrency: 1},
		{name: "many entries", count: 100, concurrency: 10},
	} {
		t.Run(test.name, func(t *testing.T) {
			var entries []uint32
			var want []F
			// Submit in descending order; results come back sorted.
			for i := test.count; i > 0; i-- {
				entries = append(entries, uint32(i))
			}
			for i := 1; i <= test.count; i++ {
				want = append(want, F{Entry: uint32(i)})
			}

			var inFlight, peak int32
			find := func(entry uint32) F {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				defer atomic.AddInt32(&inFlight, -1)
				return F{Entry: entry}
			}

			got := findAll(entries, find, test.concurrency)
			assert.Equal(t, want, got)
			if test.concurrency > 0 {
				assert.LessOrEqual(t, int(peak), test.concurrency)
			}
		})
	}
}

// image holds two functions:
//
//	0x1000  PUSH EBP
//	0x1001  MOV EBP, ESP
//	0x1003  CALL 0x100C
//	0x1008  POP EBP
//	0x1009  RET
//	0x100A  NOP
//	0x100B  NOP
//	0x100C  XOR EAX, EAX
//	0x100E  RET
var image = []byte{
	0x55, 0x89, 0xE5, 0xE8, 0x04, 0x00, 0x00, 0x00, 0x5D, 0xC3,
	0x90, 0x90,
	0x31, 0xC0, 0xC3,
}

func TestFindAllImage(t *testing.T) {
	fs := FindAll(image, 0x1000, []uint32{0x100C, 0x1000, 0x100C}, 2)
	require.Len(t, fs, 2)

	caller, callee := fs[0], fs[1]
	assert.Equal(t, uint32(0x1000), caller.Entry)
	assert.NoError(t, caller.Err)
	assert.False(t, caller.Incomplete)
	require.NotNil(t, caller.Func)
	require.Len(t, caller.Func.Blocks, 1)
	assert.Contains(t, ir.Format(caller.Func.Blocks[0]), "sub_0000100C();")

	assert.Equal(t, uint32(0x100C), callee.Entry)
	require.NotNil(t, callee.Func)
	var buf bytes.Buffer
	require.NoError(t, ir.EmitFunction(&buf, callee.Func))
	assert.Equal(t, "void sub_0000100C() {\n"+
		"block_0000100C:\n"+
		"    EAX = 0x00;\n"+
		"    return;\n"+
		"}\n", buf.String())
}

func TestFindFailures(t *testing.T) {
	t.Run("entry outside image", func(t *testing.T) {
		f := Find(image, 0x1000, 0x2000)
		assert.True(t, errors.Is(f.Err, decode.ErrOutOfRange))
		assert.False(t, f.Incomplete)
		assert.Nil(t, f.Graph)
		assert.Nil(t, f.Func)
	})

	t.Run("entry does not decode", func(t *testing.T) {
		f := Find([]byte{0xE8, 0x00}, 0x3000, 0x3000)
		assert.True(t, f.Incomplete)
		assert.True(t, errors.Is(f.Err, decode.ErrTruncated))
		assert.Nil(t, f.Func)
	})

	t.Run("partial function", func(t *testing.T) {
		f := Find([]byte{0x90, 0xE8, 0x00}, 0x3000, 0x3000)
		assert.True(t, f.Incomplete)
		var derr *decode.Error
		require.True(t, errors.As(f.Err, &derr))
		assert.Equal(t, uint32(0x3001), derr.Addr)
		require.NotNil(t, f.Func)
		require.Len(t, f.Func.Blocks, 1)
		assert.Equal(t, []ir.Stmt{ir.Jump{Target: ir.C(0x3001, ir.S32)}}, f.Func.Blocks[0].Stmts)
	})
}
