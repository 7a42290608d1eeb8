// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/google/x86lift/flow"
	"github.com/google/x86lift/internal/exe"
)

// tree displays the blocks of the function at the entry point as the
// depth-first tree of their edges. A block already shown appears again
// as a leaf.
func tree(st *state, img *exe.Image) error {
	g, failure, err := st.graph(img)
	if err != nil {
		return err
	}
	if g != nil {
		fmt.Fprintln(st.stdout, blockTree(g).String())
	}
	return st.finish(failure)
}

func blockTree(g *flow.Graph) treeprint.Tree {
	root := treeprint.New()
	root.SetValue(fmt.Sprintf("sub_%08X", g.Entry))
	seen := map[uint32]bool{g.Entry: true}
	constructBlockTree(g, g.Entry, seen, root)
	return root
}

// constructBlockTree constructs the block tree in a depth-first fashion.
func constructBlockTree(g *flow.Graph, addr uint32, seen map[uint32]bool, tree treeprint.Tree) {
	for _, e := range g.Successors(addr) {
		label := fmt.Sprintf("block_%08X", e.To)
		if b, ok := g.Blocks[e.To]; ok {
			label += fmt.Sprintf(" (%d, %v)", len(b.Insts), b.Terminator())
		}
		if seen[e.To] {
			tree.AddMetaNode(e.Kind, label)
			continue
		}
		seen[e.To] = true
		constructBlockTree(g, e.To, seen, tree.AddMetaBranch(e.Kind, label))
	}
	for _, u := range g.Unresolved {
		if b, ok := g.Blocks[addr]; ok && len(b.Insts) > 0 && u.From == b.Last().Addr {
			tree.AddMetaNode("?", unresolvedString(u))
		}
	}
}
