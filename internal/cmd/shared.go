// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/google/x86lift/decode"
	"github.com/google/x86lift/flow"
	"github.com/google/x86lift/internal"
	"github.com/google/x86lift/internal/exe"
)

// errIncomplete is returned by commands whose output covers only the code
// decoded before a failure. The output itself carries the details.
var errIncomplete = errors.New("incomplete output")

// ImageCommands returns the commands that work on a loaded image.
//
// Every command takes the same <pid|path> target and differs only in
// what it prints, so they are generated as thin wrappers around one
// function each.
func ImageCommands(st *state) []*cobra.Command {
	var res []*cobra.Command

	var cmds = []imageCommand{
		{
			name:  "disasm",
			short: "Prints the instructions of every block reachable from the entry points.",
			fn:    disasm,
		},
		{
			name:  "blocks",
			short: "Prints one line per basic block.",
			fn:    blocks,
		},
		{
			name:  "cfg",
			short: "Prints the control-flow edges of the function at the entry point.",
			fn:    cfg,
		},
		{
			name:  "dot",
			short: "Prints the control-flow graph in Graphviz DOT syntax.",
			fn:    dot,
		},
		{
			name:  "tree",
			short: "Displays the depth-first tree of blocks from the entry point.",
			fn:    tree,
		},
		{
			name:  "lift",
			short: "Prints the function at the entry point as C-like code.",
			fn:    liftFunction,
		},
		{
			name:  "scan",
			short: "Lifts every known function of the image in parallel.",
			fn:    scanImage,
		},
	}

	for _, c := range cmds {
		c := c
		res = append(res, &cobra.Command{
			Use:   fmt.Sprintf("%s <pid|path>", c.name),
			Short: c.short,

			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) < 1 {
					return errors.New("missing PID or path")
				}
				img, err := st.open(args[0])
				if err != nil {
					return err
				}
				defer img.Close()
				return c.fn(st, img)
			},

			// errors get double printed otherwise
			SilenceUsage:  true,
			SilenceErrors: true,
		})
	}

	return res
}

type imageCommand struct {
	name  string
	short string
	fn    func(st *state, img *exe.Image) error
}

// targetToPath resolves a target to an executable path. A target that
// names no file but parses as a PID resolves to that process' executable.
func (st *state) targetToPath(target string) (string, error) {
	if _, err := st.fs.Stat(target); err == nil {
		return target, nil
	}
	pid, err := strconv.Atoi(target)
	if err != nil {
		// Let the loader report the missing file.
		return target, nil
	}
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", errors.Wrapf(err, "couldn't find process %d", pid)
	}
	path, err := p.Exe()
	if err != nil {
		return "", errors.Wrapf(err, "couldn't get executable of PID %d", pid)
	}
	return path, nil
}

// open loads the target and applies the configured base and entry.
func (st *state) open(target string) (*exe.Image, error) {
	path, err := st.targetToPath(target)
	if err != nil {
		return nil, err
	}
	img, err := exe.Open(st.fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't load %s", target)
	}
	if base, ok, err := internal.Addr(st.conf.Base); err != nil {
		img.Close()
		return nil, errors.Wrap(err, "base")
	} else if ok {
		img.Rebase(base)
	}
	if entry, ok, err := internal.Addr(st.conf.Entry); err != nil {
		img.Close()
		return nil, errors.Wrap(err, "entry")
	} else if ok {
		img.Entry = entry
	}
	st.logger.WithFields(logrus.Fields{
		"path":   img.Path,
		"format": img.Format,
		"base":   fmt.Sprintf("0x%08X", img.Base),
		"entry":  fmt.Sprintf("0x%08X", img.Entry),
		"size":   len(img.Data),
	}).Debug("loaded image")
	return img, nil
}

// entries returns the entry point, followed by the prologues when they
// are asked for.
func (st *state) entries(img *exe.Image) []uint32 {
	entries := []uint32{img.Entry}
	if st.conf.Prologues.Bool {
		entries = append(entries, img.Prologues()...)
	}
	return entries
}

func (st *state) flowOptions() []flow.Option {
	return []flow.Option{
		flow.WithLogger(st.logger),
		flow.WithFollowCalls(st.conf.FollowCalls.Bool),
	}
}

// explore discovers the blocks reachable from entries. A decode failure
// is not an error here: it is returned as failure, alongside the blocks
// decoded before it.
func (st *state) explore(img *exe.Image, entries ...uint32) (sw *flow.Sweeper, failure, err error) {
	sw = flow.NewSweeper(img.Data, img.Base, st.flowOptions()...)
	if err := sw.Explore(entries...); err != nil {
		if !sw.Incomplete() {
			return nil, nil, errors.Wrap(err, "couldn't explore")
		}
		return sw, err, nil
	}
	return sw, nil, nil
}

// graph explores the function at the entry point and builds its
// control-flow graph. g is nil when the entry itself failed to decode.
func (st *state) graph(img *exe.Image) (g *flow.Graph, failure, err error) {
	sw, failure, err := st.explore(img, img.Entry)
	if err != nil {
		return nil, nil, err
	}
	build := flow.Build
	if st.conf.FollowCalls.Bool {
		build = flow.BuildTyped
	}
	g, err = build(sw.Blocks(), img.Entry)
	if err != nil {
		if failure != nil {
			return nil, failure, nil
		}
		return nil, nil, errors.Wrap(err, "couldn't build graph")
	}
	return g, failure, nil
}

// finish marks the output incomplete after a decode failure.
func (st *state) finish(failure error) error {
	if failure == nil {
		return nil
	}
	fmt.Fprintln(st.stdout, incompleteMarker(failure))
	return errIncomplete
}

func incompleteMarker(err error) string {
	var derr *decode.Error
	if errors.As(err, &derr) {
		return fmt.Sprintf("INCOMPLETE: decode failed at 0x%08X (offset 0x%X): %v", derr.Addr, derr.Offset, derr.Err)
	}
	return fmt.Sprintf("INCOMPLETE: %v", err)
}

func unresolvedString(u flow.Unresolved) string {
	switch {
	case u.Indirect:
		return fmt.Sprintf("0x%08X -> indirect", u.From)
	case u.Truncated:
		return fmt.Sprintf("0x%08X -> 0x%08X not decoded", u.From, u.Target)
	}
	return fmt.Sprintf("0x%08X -> 0x%08X outside image", u.From, u.Target)
}
