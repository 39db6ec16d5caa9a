// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package serf implements the king-facing event loop: it owns the
// scratch arena, the persistent snapshot, the jet tables, and the
// message port, and mediates every mutation that crosses an event
// boundary. Everything else in this module (noun, nock, jets, arena,
// persist, newt) is a collaborator Context assembles into one running
// process.
package serf

import (
	"time"

	"github.com/urbit-go/serf/arena"
	"github.com/urbit-go/serf/internal/log"
	"github.com/urbit-go/serf/internal/metrics"
	"github.com/urbit-go/serf/jets"
	"github.com/urbit-go/serf/newt"
	"github.com/urbit-go/serf/noun"
	"github.com/urbit-go/serf/persist"
	"github.com/urbit-go/serf/trace"
)

// scratchSlabSize is the initial slab each scratch-arena frame starts
// with. An event that needs more grows its slab chain on demand (see
// arena.BumpAllocator.RawAlloc); this is a starting point, not a cap.
const scratchSlabSize = 1 << 20

// Context is the process-wide, single instance spec.md §3 describes:
// the interpreter substrate (scratch stack, jet state, noun cache,
// scry stack, trace sink) plus the persistent fields copied out of the
// snapshot for fast access.
type Context struct {
	Stack *arena.Stack
	Mgr   *persist.Manager
	Port  *newt.Port

	Cold *jets.Cold
	Warm *jets.Warm
	Hot  *jets.Hot

	Epoch    uint64
	EventNum uint64
	Arvo     noun.Noun
	Mug      uint32

	ScryStack []noun.Noun

	Term *Terminator

	Trace   *trace.Sink
	Log     *log.Logger
	Metrics *metrics.Registry
}

// New assembles a Context from an already-opened snapshot manager and
// message port. hot is the compiled-in jet table this process ships.
func New(mgr *persist.Manager, port *newt.Port, hot *jets.Hot, logger *log.Logger) (*Context, error) {
	snap, err := mgr.Load()
	if err != nil {
		return nil, err
	}
	warm := jets.InitWarm(snap.Cold, hot)
	ctx := &Context{
		Stack:    arena.NewStack(scratchSlabSize),
		Mgr:      mgr,
		Port:     port,
		Cold:     snap.Cold,
		Warm:     warm,
		Hot:      hot,
		Epoch:    snap.Epoch,
		EventNum: snap.EventNum,
		Arvo:     snap.Arvo,
		Term:     NewTerminator(),
		Log:      logger,
		Metrics:  metrics.NewRegistry(),
	}
	ctx.Mug = noun.Mug(ctx.Arvo)
	return ctx, nil
}

// resetPerEvent clears the noun cache and scry stack, per spec.md
// §4.3: "before each request: reset noun cache and scry stack". The
// noun cache itself lives inside the nock.Context built fresh for
// every Interpret call (see formula.go), so there is nothing to clear
// here beyond the scry stack.
func (c *Context) resetPerEvent() {
	c.ScryStack = c.ScryStack[:0]
}

// EventUpdate commits new_event_num/new_arvo: it persists the
// snapshot, preserves jet state across a full scratch-arena reset,
// clears the noun cache and scry stack, and recomputes Mug.
func (c *Context) EventUpdate(newEventNum uint64, newArvo noun.Noun) error {
	return c.eventUpdate(newEventNum, newArvo)
}

// eventUpdate is EventUpdate's general form: extraRoots are noun
// pointers the caller still holds into the frame about to be reset —
// a replay batch's remaining, not-yet-applied events, for instance —
// and are relocated into the surviving frame alongside Arvo so they
// stay valid past the flip.
func (c *Context) eventUpdate(newEventNum uint64, newArvo noun.Noun, extraRoots ...*noun.Noun) error {
	c.EventNum = newEventNum
	c.Arvo = newArvo

	start := time.Now()
	if err := c.Mgr.Save(&persist.Snapshot{
		Epoch:    c.Epoch,
		EventNum: c.EventNum,
		Arvo:     c.Arvo,
		Cold:     c.Cold,
	}); err != nil {
		return err
	}
	c.Metrics.Timer("commit").Update(time.Since(start))

	c.preserve(extraRoots...)
	c.resetPerEvent()
	c.Mug = noun.Mug(c.Arvo)
	return nil
}

// preserve runs the scratch-arena reset protocol (spec.md §4.2):
// allocate a new top frame, deep-copy every pointer that must survive
// (arvo, cold, warm, hot, plus any caller-supplied extraRoots) into
// it, then drop the old top frame. Cold and Warm are plain Go maps
// under the hood (see jets.Cold.Preserve), so "deep copy" for them is
// a map clone rather than an arena walk; Arvo and extraRoots are the
// only values actually copied through the arena allocator, sharing
// one seen-set so any sharing between them survives the copy too.
func (c *Context) preserve(extraRoots ...*noun.Noun) {
	c.Stack.Flip(func(dst *arena.BumpAllocator) {
		seen := make(map[*noun.Cell]*noun.Cell)
		c.Arvo = noun.DeepCopy(c.Arvo, dst, seen)
		for _, root := range extraRoots {
			*root = noun.DeepCopy(*root, dst, seen)
		}
		c.Cold = c.Cold.Preserve()
		c.Warm = c.Warm.Preserve()
	})
}

// Next reads the next framed request from the message port, or nil on
// a clean peer close.
func (c *Context) Next() (noun.Noun, error) {
	return c.Port.Next(c.Stack.Current())
}
