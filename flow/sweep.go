// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flow

import (
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/google/x86lift/decode"
)

// Sweeper discovers basic blocks with a worklist-driven linear sweep.
// It is not safe for concurrent use.
type Sweeper struct {
	dec    *decode.Decoder
	blocks Blocks
	owner  map[uint32]uint32 // instruction address to block start
	queue  []uint32

	unresolved []Unresolved
	seen       map[Unresolved]bool
	err        error

	log         logrus.FieldLogger
	followCalls bool
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithLogger sets the logger for exploration events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Sweeper) { s.log = l }
}

// WithFollowCalls makes the sweeper treat direct call targets as further
// entry points.
func WithFollowCalls(on bool) Option {
	return func(s *Sweeper) { s.followCalls = on }
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// NewSweeper returns a sweeper over buf, whose first byte lives at base.
func NewSweeper(buf []byte, base uint32, opts ...Option) *Sweeper {
	s := &Sweeper{
		dec:    decode.NewDecoder(buf, base),
		blocks: make(Blocks),
		owner:  make(map[uint32]uint32),
		seen:   make(map[Unresolved]bool),
		log:    discardLogger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Explore runs the worklist from the given entries until it is empty.
// It may be called again with more entries; addresses that are already
// block starts are skipped.
//
// A decode failure stops the run and is returned as a *decode.Error.
// Blocks decoded up to that point stay available and Incomplete reports
// true; later calls return the same error.
func (s *Sweeper) Explore(entries ...uint32) error {
	if s.err != nil {
		return s.err
	}
	for _, e := range entries {
		if !s.dec.Contains(e) {
			return fmt.Errorf("entry 0x%08X: %w", e, decode.ErrOutOfRange)
		}
	}
	s.queue = append(s.queue, entries...)
	for len(s.queue) > 0 {
		addr := s.queue[0]
		s.queue = s.queue[1:]
		if err := s.visit(addr); err != nil {
			s.err = err
			s.log.WithError(err).Warn("exploration stopped")
			return err
		}
	}
	return nil
}

// Blocks returns the discovered blocks. The map is owned by the sweeper
// and changes on further exploration.
func (s *Sweeper) Blocks() Blocks { return s.blocks }

// Unresolved returns the unresolved transfers seen so far, ordered by
// source address.
func (s *Sweeper) Unresolved() []Unresolved {
	out := append([]Unresolved(nil), s.unresolved...)
	sortUnresolved(out)
	return out
}

// Incomplete reports whether exploration stopped on a decode failure.
func (s *Sweeper) Incomplete() bool { return s.err != nil }

// Err returns the error that stopped exploration, if any.
func (s *Sweeper) Err() error { return s.err }

func (s *Sweeper) visit(addr uint32) error {
	if _, ok := s.blocks[addr]; ok {
		return nil
	}
	if start, ok := s.owner[addr]; ok {
		s.split(start, addr)
		return nil
	}

	log := s.log.WithField("block", hex(addr))
	if err := s.dec.Seek(addr); err != nil {
		return err
	}
	b := &Block{Start: addr}
	s.blocks[addr] = b
	for {
		pos := s.dec.Pos()
		if pos != addr {
			if _, ok := s.blocks[pos]; ok {
				log.WithField("next", hex(pos)).Debug("ran into block")
				return nil
			}
			if start, ok := s.owner[pos]; ok {
				log.WithField("next", hex(pos)).Debug("ran into instruction")
				s.split(start, pos)
				return nil
			}
		}

		inst, err := s.dec.Decode()
		if err != nil {
			if len(b.Insts) == 0 {
				delete(s.blocks, addr)
			}
			return err
		}
		b.Insts = append(b.Insts, inst)
		s.owner[inst.Addr] = addr

		if inst.Op.IsCall() && s.followCalls {
			s.transfer(inst)
		}
		if inst.Op.IsTerminator() {
			log.WithFields(logrus.Fields{
				"insts": len(b.Insts),
				"term":  b.Terminator(),
			}).Debug("block done")
			if inst.Op.IsCondJump() {
				s.enqueue(inst.Addr, inst.Next())
			}
			if !inst.Op.IsReturn() {
				s.transfer(inst)
			}
			return nil
		}
	}
}

// transfer enqueues the target of a jump or call, or records it as
// unresolved.
func (s *Sweeper) transfer(inst decode.Inst) {
	target, ok := inst.Target()
	if !ok {
		s.unresolve(Unresolved{From: inst.Addr, Indirect: true})
		return
	}
	s.enqueue(inst.Addr, target)
}

func (s *Sweeper) enqueue(from, addr uint32) {
	if !s.dec.Contains(addr) {
		s.unresolve(Unresolved{From: from, Target: addr})
		return
	}
	s.queue = append(s.queue, addr)
}

func (s *Sweeper) unresolve(u Unresolved) {
	if s.seen[u] {
		return
	}
	s.seen[u] = true
	s.unresolved = append(s.unresolved, u)
	s.log.WithFields(logrus.Fields{
		"from":     hex(u.From),
		"target":   hex(u.Target),
		"indirect": u.Indirect,
	}).Debug("unresolved target")
}

// split moves the instructions of block start from addr onwards into a
// new block at addr.
func (s *Sweeper) split(start, addr uint32) {
	suffix := s.blocks[start].splitAt(addr)
	if suffix == nil {
		return
	}
	s.blocks[addr] = suffix
	for _, inst := range suffix.Insts {
		s.owner[inst.Addr] = addr
	}
	s.log.WithFields(logrus.Fields{"block": hex(start), "at": hex(addr)}).Debug("split block")
}

// Result is the outcome of a one-shot disassembly.
type Result struct {
	Blocks     Blocks
	Unresolved []Unresolved
	Incomplete bool
}

// Disassemble explores buf from entry. On a decode failure it returns the
// partial result together with the error.
func Disassemble(buf []byte, base, entry uint32, opts ...Option) (*Result, error) {
	s := NewSweeper(buf, base, opts...)
	err := s.Explore(entry)
	return &Result{
		Blocks:     s.Blocks(),
		Unresolved: s.Unresolved(),
		Incomplete: s.Incomplete(),
	}, err
}

func sortUnresolved(us []Unresolved) {
	sort.Slice(us, func(i, j int) bool {
		if us[i].From != us[j].From {
			return us[i].From < us[j].From
		}
		return us[i].Target < us[j].Target
	})
}

func hex(a uint32) string { return fmt.Sprintf("0x%08X", a) }
