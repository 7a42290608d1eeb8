// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scan lifts the functions of an image in parallel.
package scan

import (
	"sort"

	"github.com/google/x86lift/flow"
	"github.com/google/x86lift/ir"
	"github.com/google/x86lift/lift"
)

// DefaultConcurrency is the number of functions lifted at once when the
// caller does not say otherwise.
const DefaultConcurrency = 10

// F is one lifted function.
type F struct {
	Entry      uint32
	Graph      *flow.Graph
	Func       *ir.Function
	Unresolved []flow.Unresolved

	// Incomplete is set when exploration stopped on a decode failure.
	// Graph and Func then cover the blocks decoded before it and Err
	// holds the failure.
	Incomplete bool
	Err        error
}

// FindAll lifts the function at each entry of buf, whose first byte lives
// at base. At most concurrency functions are in flight; a value below one
// means DefaultConcurrency. Duplicate entries are lifted once. Results
// are ordered by entry.
//
// Every function gets its own decoder; buf is only read.
func FindAll(buf []byte, base uint32, entries []uint32, concurrency int, opts ...flow.Option) []F {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return findAll(dedup(entries), func(entry uint32) F {
		return Find(buf, base, entry, opts...)
	}, concurrency)
}

// Allows to inject the per-function work for testing.
type findFunc func(entry uint32) F

func findAll(entries []uint32, find findFunc, concurrencyLimit int) []F {
	output := make(chan []F, 1)
	output <- nil
	// Using buffered channel as a semaphore to limit throughput.
	// See https://golang.org/doc/effective_go.html#channels
	type token struct{}
	sem := make(chan token, concurrencyLimit)
	for _, entry := range entries {
		sem <- token{}
		entry := entry
		go func() {
			defer func() { <-sem }()
			f := find(entry)
			output <- append(<-output, f)
		}()
	}
	// Acquire all semaphore slots to wait for work to complete.
	for n := cap(sem); n > 0; n-- {
		sem <- token{}
	}
	fs := <-output
	sort.Slice(fs, func(i, j int) bool { return fs[i].Entry < fs[j].Entry })
	return fs
}

// Find disassembles, builds and lifts the function at entry.
func Find(buf []byte, base, entry uint32, opts ...flow.Option) F {
	f := F{Entry: entry}
	res, err := flow.Disassemble(buf, base, entry, opts...)
	if err != nil && !res.Incomplete {
		f.Err = err
		return f
	}
	f.Incomplete, f.Err = res.Incomplete, err
	g, gerr := flow.Build(res.Blocks, entry)
	if gerr != nil {
		// The entry itself failed to decode.
		if f.Err == nil {
			f.Err = gerr
		}
		return f
	}
	f.Graph = g
	f.Unresolved = g.Unresolved
	f.Func = lift.Function(g)
	return f
}

func dedup(entries []uint32) []uint32 {
	seen := make(map[uint32]bool, len(entries))
	var out []uint32
	for _, e := range entries {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}
