// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"bufio"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/google/x86lift/flow"
	"github.com/google/x86lift/internal/exe"
	"github.com/google/x86lift/ir"
	"github.com/google/x86lift/lift"
	"github.com/google/x86lift/scan"
)

// painter colors the parts of a listing.
type painter struct {
	label, addr, bytes, sym, warn *color.Color
}

func (st *state) painter(w io.Writer) *painter {
	p := &painter{
		label: color.New(color.FgCyan, color.Bold),
		addr:  color.New(color.FgYellow),
		bytes: color.New(color.Faint),
		sym:   color.New(color.FgGreen),
		warn:  color.New(color.FgRed),
	}
	on := st.colorful(w)
	for _, c := range []*color.Color{p.label, p.addr, p.bytes, p.sym, p.warn} {
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func symbolNames(img *exe.Image) map[uint32]string {
	names := make(map[uint32]string, len(img.Symbols))
	for _, s := range img.Symbols {
		if _, ok := names[s.Addr]; !ok {
			names[s.Addr] = s.Name
		}
	}
	return names
}

func disasm(st *state, img *exe.Image) error {
	sw, failure, err := st.explore(img, st.entries(img)...)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(st.stdout)
	p := st.painter(st.stdout)
	names := symbolNames(img)
	for _, b := range sw.Blocks().Sorted() {
		if name, ok := names[b.Start]; ok {
			fmt.Fprintf(w, "%s:\n", p.sym.Sprint(name))
		}
		fmt.Fprintf(w, "%s:\n", p.label.Sprintf("block_%08X", b.Start))
		for _, inst := range b.Insts {
			off := inst.Addr - img.Base
			fmt.Fprintf(w, "  %s  %s  %s\n",
				p.addr.Sprintf("%08X", inst.Addr),
				p.bytes.Sprintf("%-20X", img.Data[off:off+uint32(inst.Len)]),
				inst)
		}
	}
	for _, u := range sw.Unresolved() {
		fmt.Fprintf(w, "%s %s\n", p.warn.Sprint("unresolved"), unresolvedString(u))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return st.finish(failure)
}

func blocks(st *state, img *exe.Image) error {
	sw, failure, err := st.explore(img, st.entries(img)...)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(st.stdout)
	p := st.painter(st.stdout)
	for _, b := range sw.Blocks().Sorted() {
		fmt.Fprintf(w, "%s-%s\t%d\t%v\n",
			p.addr.Sprintf("%08X", b.Start),
			p.addr.Sprintf("%08X", b.End()),
			len(b.Insts), b.Terminator())
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return st.finish(failure)
}

func cfg(st *state, img *exe.Image) error {
	g, failure, err := st.graph(img)
	if err != nil {
		return err
	}
	if g == nil {
		return st.finish(failure)
	}
	w := bufio.NewWriter(st.stdout)
	p := st.painter(st.stdout)
	for _, e := range g.Edges {
		fmt.Fprintf(w, "%s -> %s\t%v\n", p.addr.Sprintf("%08X", e.From), p.addr.Sprintf("%08X", e.To), e.Kind)
	}
	for _, u := range g.Unresolved {
		fmt.Fprintf(w, "%s %s\n", p.warn.Sprint("unresolved"), unresolvedString(u))
	}
	for _, a := range g.Entries {
		fmt.Fprintf(w, "entry %s\n", p.addr.Sprintf("%08X", a))
	}
	for _, a := range g.Unreachable() {
		fmt.Fprintf(w, "unreachable %s\n", p.addr.Sprintf("%08X", a))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return st.finish(failure)
}

func dot(st *state, img *exe.Image) error {
	g, failure, err := st.graph(img)
	if err != nil {
		return err
	}
	if g != nil {
		if err := flow.WriteDOT(st.stdout, g); err != nil {
			return err
		}
	}
	return st.finish(failure)
}

func liftFunction(st *state, img *exe.Image) error {
	g, failure, err := st.graph(img)
	if err != nil {
		return err
	}
	if g != nil {
		if err := ir.EmitFunction(st.stdout, lift.Function(g)); err != nil {
			return err
		}
	}
	return st.finish(failure)
}

func scanImage(st *state, img *exe.Image) error {
	entries := img.Entries()
	if st.conf.Prologues.Bool {
		entries = append(entries, img.Prologues()...)
	}
	conc := int(st.conf.Concurrency.Int64)
	st.logger.WithField("functions", len(entries)).Debug("scanning")

	w := bufio.NewWriter(st.stdout)
	incomplete := false
	for i, f := range scan.FindAll(img.Data, img.Base, entries, conc, st.flowOptions()...) {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if f.Func != nil {
			if err := ir.EmitFunction(w, f.Func); err != nil {
				return err
			}
		}
		if f.Err == nil {
			continue
		}
		if !f.Incomplete {
			fmt.Fprintf(w, "/* sub_%08X: %v */\n", f.Entry, f.Err)
			continue
		}
		incomplete = true
		fmt.Fprintln(w, incompleteMarker(f.Err))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if incomplete {
		return errIncomplete
	}
	return nil
}
