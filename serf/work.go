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
	"errors"
	"fmt"

	"github.com/urbit-go/serf/arena"
	"github.com/urbit-go/serf/nock"
	"github.com/urbit-go/serf/noun"
)

// errScryDuringSoft is the fatal condition spec.md §4.5 describes:
// soft only ever runs PokeAxis, and a poke that issues a scry outside
// virtual Nock is a programmer error this core does not try to
// recover from.
var errScryDuringSoft = errors.New("serf: scry during soft-run poke")

// goof pairs a formatted tang with the Nock error it was rendered
// from, the exact shape a crashed soft-run surfaces to its caller.
type goof struct {
	Tang noun.Noun
	Err  *nock.Error
}

// soft runs the poke gate against ovo and converts any interpreter
// failure into a goof: a deterministic or non-deterministic crash is
// rendered through nock.Mook into a tang and returned as an error
// value rather than propagated as a Go error from this function's own
// control flow, matching spec.md §4.5's "returns [%exit tang] as the
// error value" framing.
func soft(c *Context, ovo noun.Noun) (noun.Noun, *goof) {
	result, err := slam(c, PokeAxis, c.Arvo, ovo)
	if err == nil {
		return result, nil
	}
	return nil, goofFromErr(c, err)
}

// goofFromErr renders an interpreter failure into a goof, the shared
// conversion soft and playLife both need: a deterministic or
// non-deterministic crash is rendered through nock.Mook into a tang; a
// scry blocked or crashed outside virtual Nock is a programmer error
// this core does not try to recover from.
func goofFromErr(c *Context, err error) *goof {
	var nerr *nock.Error
	if errors.As(err, &nerr) {
		switch nerr.Kind {
		case nock.Deterministic, nock.NonDeterministic:
			tang := nock.Mook(c.Stack.Current(), nerr)
			return &goof{Tang: tang, Err: nerr}
		case nock.ScryBlocked, nock.ScryCrashed:
			panic(errScryDuringSoft)
		}
	}
	// Anything that isn't a *nock.Error is itself non-deterministic:
	// wrap it the same way.
	wrapped := &nock.Error{Kind: nock.NonDeterministic, Trace: []nock.Frame{{Note: err.Error()}}}
	return &goof{Tang: nock.Mook(c.Stack.Current(), wrapped), Err: wrapped}
}

// work runs one poke to completion: a clean success commits
// (event_num+1, new-arvo) and replies work_done; a crash enters the
// two-stage crud retry (spec.md §4.5).
func (c *Context) work(job noun.Noun) error {
	result, g := soft(c, job)
	if g == nil {
		cell, ok := noun.AsCell(result)
		if !ok {
			return fmt.Errorf("serf: work result is not [effects new-arvo]")
		}
		effects, newArvo := cell.Head, cell.Tail
		if err := c.eventUpdate(c.EventNum+1, newArvo, &effects); err != nil {
			return err
		}
		return c.Port.WorkDone(c.Stack.Current(), c.EventNum, c.Mug, effects)
	}
	return c.workSwap(job, g)
}

// workSwap is the crud-retry path: clear interrupts and the noun
// cache, build the substitute crud event, and run soft again. A second
// success commits the substitute and tells the king it did so
// (work_swap); a second failure commits nothing and surfaces both
// goofs (work_bail).
func (c *Context) workSwap(job noun.Noun, firstGoof *goof) error {
	c.Term.Clear()
	c.resetPerEvent()

	a := c.Stack.Current()
	goofNoun := noun.T(a, cordAtom("exit"), firstGoof.Tang)
	crud, err := buildCrudEvent(a, job, goofNoun)
	if err != nil {
		return err
	}

	result, g := soft(c, crud)
	if g == nil {
		cell, ok := noun.AsCell(result)
		if !ok {
			return fmt.Errorf("serf: work_swap result is not [effects new-arvo]")
		}
		effects, newArvo := cell.Head, cell.Tail
		if err := c.eventUpdate(c.EventNum+1, newArvo, &crud, &effects); err != nil {
			return err
		}
		return c.Port.WorkSwap(c.Stack.Current(), c.EventNum, c.Mug, crud, effects)
	}

	lud := noun.T(a, noun.T(a, cordAtom("exit"), g.Tang), goofNoun, noun.D(0))
	return c.Port.WorkBail(a, lud)
}

// jobNowAxis, jobWireAxis, and jobTagAxis are the fixed axes spec.md
// §6 defines a %work job noun's shape by: job = [now wire tag ...body].
const (
	jobNowAxis = 2
	jobWireAxis = 6
	jobTagAxis  = 14
)

// buildCrudEvent constructs ovo' = [now+1 [0 %arvo 0] %crud goof body],
// an exact 5-tuple — the original's axis for wire, [0 %arvo 0], is a
// 3-element list rather than a 2-element cell, and is preserved
// literally here rather than simplified
// (original_source/rust/ares/src/serf.rs). now is read back out of the
// original job at axis 2; body is the entire original job noun.
func buildCrudEvent(a arena.Allocator, job, goofTang noun.Noun) (noun.Noun, error) {
	nowSlot, err := noun.Slot(job, jobNowAxis)
	if err != nil {
		return nil, fmt.Errorf("serf: crud job missing now: %w", err)
	}
	now, ok := noun.AsAtom(nowSlot)
	if !ok {
		return nil, fmt.Errorf("serf: crud job now is not an atom")
	}
	nowVal, direct := now.Uint64()
	if !direct {
		return nil, fmt.Errorf("serf: crud job now too large")
	}

	wire := noun.T(a, noun.D(0), cordAtom("arvo"), noun.D(0))
	return noun.T(a, noun.D(nowVal+1), wire, cordAtom("crud"), goofTang, job), nil
}

func cordAtom(s string) noun.Noun {
	return noun.Indirect([]byte(s))
}
