// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flow

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEntry is returned when the entry address is not a block start.
	ErrNoEntry = errors.New("entry is not a block")

	// ErrUnreachable is returned by Validate when some block cannot be
	// reached from the graph's entries.
	ErrUnreachable = errors.New("unreachable blocks")
)

// EdgeKind distinguishes control-flow edges.
type EdgeKind uint8

const (
	EdgeFallthrough EdgeKind = iota
	EdgeTaken
	EdgeCall
	EdgeReturn
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeTaken:
		return "taken"
	case EdgeCall:
		return "call"
	case EdgeReturn:
		return "return"
	}
	return "fallthrough"
}

// Edge is a directed edge between two block starts.
type Edge struct {
	From, To uint32
	Kind     EdgeKind
}

// Graph is a control-flow graph derived from a block map.
type Graph struct {
	Entry  uint32
	Blocks Blocks
	Edges  []Edge

	// Unresolved lists transfers from reached blocks whose targets are
	// not blocks, including the fall through of blocks cut short by a
	// decode failure.
	Unresolved []Unresolved

	// Entries lists the additional entry points found by BuildTyped:
	// blocks with no incoming edge that the entry does not reach.
	Entries []uint32

	succ    map[uint32][]Edge
	pred    map[uint32][]Edge
	reached map[uint32]bool
}

// Build derives taken and fallthrough edges by a breadth-first walk from
// entry. A conditional jump yields a taken and a fallthrough edge, a jump
// a taken edge, a return nothing, and any other block falls through to
// its end address. Targets that are not blocks are recorded in
// Graph.Unresolved.
func Build(blocks Blocks, entry uint32) (*Graph, error) {
	return build(blocks, entry, false)
}

// BuildTyped is like Build but also emits call edges to direct call
// targets and return edges from the callee's returning blocks back to
// the calling block. Blocks with no incoming edge are walked as
// additional entries.
func BuildTyped(blocks Blocks, entry uint32) (*Graph, error) {
	return build(blocks, entry, true)
}

func build(blocks Blocks, entry uint32, typed bool) (*Graph, error) {
	if _, ok := blocks[entry]; !ok {
		return nil, fmt.Errorf("build graph at 0x%08X: %w", entry, ErrNoEntry)
	}
	g := &Graph{
		Entry:   entry,
		Blocks:  blocks,
		succ:    make(map[uint32][]Edge),
		pred:    make(map[uint32][]Edge),
		reached: make(map[uint32]bool),
	}
	seen := make(map[Unresolved]bool)

	var queue []uint32
	reach := func(a uint32) {
		if !g.reached[a] {
			g.reached[a] = true
			queue = append(queue, a)
		}
	}
	drain := func() {
		for len(queue) > 0 {
			a := queue[0]
			queue = queue[1:]
			edges, unres := successors(blocks, blocks[a], typed)
			for _, u := range unres {
				if !seen[u] {
					seen[u] = true
					g.Unresolved = append(g.Unresolved, u)
				}
			}
			for _, e := range edges {
				g.addEdge(e)
				reach(e.To)
			}
		}
	}

	reach(entry)
	drain()
	if typed {
		incoming := make(map[uint32]int)
		for _, b := range blocks {
			edges, _ := successors(blocks, b, true)
			for _, e := range edges {
				incoming[e.To]++
			}
		}
		for _, a := range blocks.Starts() {
			if !g.reached[a] && incoming[a] == 0 {
				g.Entries = append(g.Entries, a)
				reach(a)
				drain()
			}
		}
		g.addReturns()
	}
	sortUnresolved(g.Unresolved)
	return g, nil
}

// successors computes the outgoing edges of b.
func successors(blocks Blocks, b *Block, typed bool) (edges []Edge, unres []Unresolved) {
	link := func(from, to uint32, kind EdgeKind) {
		if _, ok := blocks[to]; ok {
			edges = append(edges, Edge{From: b.Start, To: to, Kind: kind})
			return
		}
		unres = append(unres, Unresolved{From: from, Target: to})
	}
	if typed {
		for _, inst := range b.Insts {
			if !inst.Op.IsCall() {
				continue
			}
			if t, ok := inst.Target(); ok {
				link(inst.Addr, t, EdgeCall)
			} else {
				unres = append(unres, Unresolved{From: inst.Addr, Indirect: true})
			}
		}
	}
	last := b.Last()
	switch b.Terminator() {
	case TermReturn:
	case TermIndirect:
		unres = append(unres, Unresolved{From: last.Addr, Indirect: true})
	case TermJump:
		t, _ := last.Target()
		link(last.Addr, t, EdgeTaken)
	case TermCondJump:
		t, _ := last.Target()
		link(last.Addr, t, EdgeTaken)
		link(last.Addr, b.End(), EdgeFallthrough)
	default:
		if _, ok := blocks[b.End()]; !ok {
			unres = append(unres, Unresolved{From: last.Addr, Target: b.End(), Truncated: true})
			break
		}
		link(last.Addr, b.End(), EdgeFallthrough)
	}
	return edges, unres
}

// addReturns links every returning block reachable inside a callee back
// to each block that calls it.
func (g *Graph) addReturns() {
	var calls []Edge
	for _, e := range g.Edges {
		if e.Kind == EdgeCall {
			calls = append(calls, e)
		}
	}
	rets := make(map[uint32][]uint32)
	for _, c := range calls {
		if _, ok := rets[c.To]; !ok {
			rets[c.To] = g.returnsOf(c.To)
		}
		for _, r := range rets[c.To] {
			g.addEdge(Edge{From: r, To: c.From, Kind: EdgeReturn})
		}
	}
}

// returnsOf lists the return blocks reachable from fn without following
// call or return edges.
func (g *Graph) returnsOf(fn uint32) []uint32 {
	var out []uint32
	seen := map[uint32]bool{fn: true}
	queue := []uint32{fn}
	for len(queue) > 0 {
		a := queue[0]
		queue = queue[1:]
		if g.Blocks[a].Terminator() == TermReturn {
			out = append(out, a)
		}
		for _, e := range g.succ[a] {
			if e.Kind != EdgeTaken && e.Kind != EdgeFallthrough {
				continue
			}
			if !seen[e.To] {
				seen[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}
	return out
}

func (g *Graph) addEdge(e Edge) {
	g.Edges = append(g.Edges, e)
	g.succ[e.From] = append(g.succ[e.From], e)
	g.pred[e.To] = append(g.pred[e.To], e)
}

// Successors returns the edges leaving the block at addr.
func (g *Graph) Successors(addr uint32) []Edge {
	return append([]Edge(nil), g.succ[addr]...)
}

// Predecessors returns the edges entering the block at addr.
func (g *Graph) Predecessors(addr uint32) []Edge {
	return append([]Edge(nil), g.pred[addr]...)
}

// Reached reports whether the walk visited the block at addr.
func (g *Graph) Reached(addr uint32) bool { return g.reached[addr] }

// Unreachable returns, in ascending order, the blocks the walk did not
// visit.
func (g *Graph) Unreachable() []uint32 {
	var out []uint32
	for _, a := range g.Blocks.Starts() {
		if !g.reached[a] {
			out = append(out, a)
		}
	}
	return out
}

// Validate checks that every block is reachable.
func (g *Graph) Validate() error {
	if u := g.Unreachable(); len(u) > 0 {
		return fmt.Errorf("%d of %d blocks from 0x%08X (first 0x%08X): %w",
			len(u), len(g.Blocks), g.Entry, u[0], ErrUnreachable)
	}
	return nil
}
