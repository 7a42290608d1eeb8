// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flow

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

var edgeStyle = map[EdgeKind]string{
	EdgeFallthrough: `color="red"`,
	EdgeTaken:       `color="darkgreen"`,
	EdgeCall:        `color="blue", style="dashed"`,
	EdgeReturn:      `color="gray", style="dotted"`,
}

// WriteDOT writes g in Graphviz DOT syntax, one node per reached block
// labelled with its instructions.
func WriteDOT(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph cfg {")
	fmt.Fprintln(bw, `	node [shape="box", fontname="monospace"];`)
	for _, b := range g.Blocks.Sorted() {
		if !g.reached[b.Start] {
			continue
		}
		var label strings.Builder
		fmt.Fprintf(&label, "%s:\\l", hex(b.Start))
		for _, inst := range b.Insts {
			fmt.Fprintf(&label, "%08X  %s\\l", inst.Addr, dotEscape(inst.String()))
		}
		attrs := ""
		if b.Start == g.Entry {
			attrs = `, penwidth="2"`
		}
		fmt.Fprintf(bw, "\t%q [label=\"%s\"%s];\n", hex(b.Start), label.String(), attrs)
	}
	for _, e := range g.Edges {
		fmt.Fprintf(bw, "\t%q -> %q [label=%q, %s];\n", hex(e.From), hex(e.To), e.Kind.String(), edgeStyle[e.Kind])
	}
	for _, u := range g.Unresolved {
		id := fmt.Sprintf("unresolved_%08X_%08X", u.From, u.Target)
		label := "?"
		switch {
		case u.Truncated:
			label = hex(u.Target) + " (not decoded)"
		case !u.Indirect:
			label = hex(u.Target)
		}
		fmt.Fprintf(bw, "\t%q [label=%q, shape=\"plaintext\"];\n", id, label)
		fmt.Fprintf(bw, "\t%q -> %q [style=\"dashed\"];\n", hex(blockOf(g, u.From)), id)
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

// blockOf returns the start of the lowest block containing the
// instruction at addr.
func blockOf(g *Graph, addr uint32) uint32 {
	for _, b := range g.Blocks.Sorted() {
		if b.index(addr) >= 0 {
			return b.Start
		}
	}
	return addr
}

func dotEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
