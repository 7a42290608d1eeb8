// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exe

// A pattern is a byte sequence to match. The high byte of each element
// masks bits of the data byte that are ignored.
type pattern []uint16

const pWild uint16 = 0xff00

// Longer patterns come first so that a hot-patchable prologue is
// reported at its first byte.
var prologues = []pattern{
	// mov edi, edi
	// push ebp
	// mov ebp, esp
	{0x8b, 0xff, 0x55, 0x8b, 0xec},
	// push ebp
	// mov ebp, esp
	{0x55, 0x8b, 0xec},
	{0x55, 0x89, 0xe5},
	// enter imm16, 0
	{0xc8, pWild, pWild, 0x00},
}

func (p pattern) matchAt(data []byte, i int) bool {
	if len(data)-i < len(p) {
		return false
	}
	for j, c := range p {
		b, m := byte(c), byte(c>>8)
		if data[i+j]&^m != b {
			return false
		}
	}
	return true
}

// Prologues returns the addresses in data, whose first byte lives at
// base, where a frame-pointer function prologue begins.
func Prologues(data []byte, base uint32) []uint32 {
	var out []uint32
	for i := 0; i < len(data); i++ {
		for _, p := range prologues {
			if p.matchAt(data, i) {
				out = append(out, base+uint32(i))
				i += len(p) - 1
				break
			}
		}
	}
	return out
}

// Prologues returns the prologue addresses in the code region.
func (img *Image) Prologues() []uint32 { return Prologues(img.Data, img.Base) }
