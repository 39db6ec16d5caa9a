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

package serf

import (
	"fmt"
	"time"

	"github.com/fjl/memsize"
	"github.com/urbit-go/serf/nock"
	"github.com/urbit-go/serf/noun"
	"github.com/urbit-go/serf/trace"
)

// Request tag axes (spec.md §4.3): axis 2 carries the tag, axis 6 or 7
// the payload depending on the tag.
const (
	tagAxis     = 2
	livePayload = 6
	peekPayload = 7
	playPayload = 7
	workJobAxis = 7
)

// Dispatch runs the main loop: read one request at a time, route it by
// tag, and run the pre/post-request bookkeeping spec.md §4.3 requires.
// It returns nil on a clean EOF from the message port and a non-nil
// error for any other exit, all of which are fatal per spec.md §4.3's
// "any other tag is fatal."
func Dispatch(c *Context) error {
	for {
		req, err := c.Next()
		if err != nil {
			return fmt.Errorf("serf: reading request: %w", err)
		}
		if req == nil {
			return nil
		}

		c.Term.Clear()
		c.resetPerEvent()

		if err := c.dispatchOne(req); err != nil {
			return err
		}

		c.Term.Clear()
		c.preserve()

		if c.Trace != nil {
			if err := c.Trace.Flush(); err != nil {
				return fmt.Errorf("serf: flushing trace: %w", err)
			}
		}
	}
}

func (c *Context) dispatchOne(req noun.Noun) error {
	tagSlot, err := noun.Slot(req, tagAxis)
	if err != nil {
		return fmt.Errorf("serf: request missing tag: %w", err)
	}
	tagAtom, ok := noun.AsAtom(tagSlot)
	if !ok {
		return fmt.Errorf("serf: request tag is not a direct atom")
	}
	tag := string(tagAtom.Bytes())
	c.Metrics.Counter("dispatch." + tag).Inc(1)
	switch tag {
	case "live":
		return c.dispatchLive(req)
	case "peek":
		return c.dispatchPeek(req)
	case "play":
		return c.dispatchPlay(req)
	case "work":
		return c.dispatchWork(req)
	default:
		return fmt.Errorf("serf: unrecognized request tag %q", tagAtom.Bytes())
	}
}

func (c *Context) dispatchLive(req noun.Noun) error {
	sub, err := noun.Slot(req, livePayload)
	if err != nil {
		return fmt.Errorf("serf: live missing sub-tag: %w", err)
	}
	subAtom, ok := noun.AsAtom(sub)
	if !ok {
		return fmt.Errorf("serf: live sub-tag is not a direct atom")
	}
	switch string(subAtom.Bytes()) {
	case "save":
		c.Log.Debug("live %save: syncing persistent arena")
		if err := c.Mgr.Sync(); err != nil {
			return err
		}
	case "pack":
		footprint := memsize.Scan(c.Arvo)
		c.Log.Info("live %pack: arvo footprint", "bytes", footprint.Total)
	case "cram", "exit", "meld":
		c.Log.Warn("live sub-tag is a stub", "tag", string(subAtom.Bytes()))
		if string(subAtom.Bytes()) == "exit" {
			c.Term.SetHard()
		}
	default:
		c.Log.Warn("unrecognized live sub-tag", "tag", string(subAtom.Bytes()))
	}
	return c.Port.Live(c.Stack.Current())
}

func (c *Context) dispatchPeek(req noun.Noun) error {
	ovo, err := noun.Slot(req, peekPayload)
	if err != nil {
		return fmt.Errorf("serf: peek missing sample: %w", err)
	}
	if c.Trace != nil {
		c.Trace.Begin(trace.PeekName, now())
		defer c.Trace.End(trace.PeekName, now())
	}
	result, err := slam(c, PeekAxis, c.Arvo, ovo)
	if err != nil {
		// spec.md §4.5: scry failure outside virtual Nock is fatal; an
		// interpreter crash during peek is, in the current contract,
		// equally fatal (§7's stated open question leaves room for a
		// future goof-surfacing peek_bail, not implemented here).
		return fmt.Errorf("serf: peek crashed: %w", err)
	}
	return c.Port.PeekDone(c.Stack.Current(), result)
}

func (c *Context) dispatchPlay(req noun.Noun) error {
	events, err := noun.Slot(req, playPayload)
	if err != nil {
		return fmt.Errorf("serf: play missing event list: %w", err)
	}
	if c.Epoch == 0 && c.EventNum == 0 {
		return c.playLife(events)
	}
	return c.playEvents(events)
}

// playLife runs the lifecycle boot: apply the first event to itself to
// produce the initial kernel gate, whose axis 7 is the initial arvo.
// The committed event count after boot equals the list length
// (spec.md §4.4, original_source/rust/ares/src/serf.rs:494).
func (c *Context) playLife(events noun.Noun) error {
	a := c.Stack.Current()
	n := noun.ListLength(events)

	if c.Trace != nil {
		c.Trace.Begin(trace.BootName, now())
		defer c.Trace.End(trace.BootName, now())
	}

	formula := bootFormula(a)
	subject := noun.NewCell(a, formula, events)
	nc := newInterpContext(a, c.Warm, nil)
	kernel, ierr := nock.Interpret(nc, subject, formula)
	if ierr != nil {
		return c.playBail(goofFromErr(c, ierr))
	}
	arvo, err := noun.Slot(kernel, 7)
	if err != nil {
		return fmt.Errorf("serf: boot kernel missing arvo at axis 7: %w", err)
	}
	if err := c.EventUpdate(uint64(n), arvo); err != nil {
		return err
	}
	return c.Port.PlayDone(c.Stack.Current(), c.Mug)
}

// playEvents walks events one cell at a time rather than pre-extracting
// a Go slice: each commit flips the scratch arena (spec.md §4.2), which
// zeroes the frame the as-yet-unprocessed tail of the list lives in, so
// that tail must be named as an extra preservation root on every commit
// to stay valid for the next iteration.
func (c *Context) playEvents(events noun.Noun) error {
	n := noun.ListLength(events)
	if c.Trace != nil {
		c.Trace.Begin(trace.PlayName(n), now())
		defer c.Trace.End(trace.PlayName(n), now())
	}
	for {
		cell, ok := noun.AsCell(events)
		if !ok {
			break
		}
		job, rest := cell.Head, cell.Tail

		result, g := soft(c, job)
		if g != nil {
			return c.playBail(g)
		}
		resultCell, ok := noun.AsCell(result)
		if !ok {
			return fmt.Errorf("serf: play result is not [effects new-arvo]")
		}
		_, newArvo := resultCell.Head, resultCell.Tail
		if err := c.eventUpdate(c.EventNum+1, newArvo, &rest); err != nil {
			return err
		}
		events = rest
	}
	return c.Port.PlayDone(c.Stack.Current(), c.Mug)
}

// playBail reports a %play crash without committing anything: the
// event number it tells the king about is c.EventNum, the last number
// actually saved, matching serf.rs:256-263,533 always reporting
// context.event_num unmodified rather than whatever event was being
// attempted. dud is [%exit tang], tang being the mook-rendered trace
// already carried by g, not a flattened error string.
func (c *Context) playBail(g *goof) error {
	a := c.Stack.Current()
	dud := noun.T(a, cordAtom("exit"), g.Tang)
	return c.Port.PlayBail(a, c.EventNum, c.Mug, dud)
}

func (c *Context) dispatchWork(req noun.Noun) error {
	job, err := noun.Slot(req, workJobAxis)
	if err != nil {
		return fmt.Errorf("serf: work missing job: %w", err)
	}
	if c.Trace != nil {
		name := workTraceName(job)
		c.Trace.Begin(name, now())
		defer c.Trace.End(name, now())
	}
	return c.work(job)
}

// workTraceName reproduces the original's wire/tag trace-name
// rendering (SPEC_FULL.md "SUPPLEMENTED FEATURES" item 2): best-effort
// UTF-8 extraction of the wire and event tag at their fixed job axes,
// truncated at the first invalid byte.
func workTraceName(job noun.Noun) string {
	wire := cordAt(job, jobWireAxis)
	tag := cordAt(job, jobTagAxis)
	return trace.WorkName(wire, tag)
}

func cordAt(n noun.Noun, axis uint64) string {
	slot, err := noun.Slot(n, axis)
	if err != nil {
		return ""
	}
	a, ok := noun.AsAtom(slot)
	if !ok {
		return ""
	}
	return string(a.Bytes())
}

func now() time.Time {
	return time.Now()
}
