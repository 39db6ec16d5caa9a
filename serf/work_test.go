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
	"bytes"
	"math/bits"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/urbit-go/serf/arena"
	"github.com/urbit-go/serf/internal/log"
	"github.com/urbit-go/serf/jets"
	"github.com/urbit-go/serf/newt"
	"github.com/urbit-go/serf/noun"
	"github.com/urbit-go/serf/persist"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	dir := t.TempDir()
	mgr, err := persist.Open(filepath.Join(dir, "serf.pma"))
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	var buf bytes.Buffer
	port := newt.NewPort(&buf, &buf)
	hot := jets.InitHot(jets.DefaultHotState)
	logger := log.New(&buf, "serf-test")

	ctx, err := New(mgr, port, hot, logger)
	require.NoError(t, err)
	return ctx
}

// embedAtAxis builds the minimal cell tree that places leaf at the
// given axis, padding every sibling the walk doesn't need with a
// placeholder atom. It is the inverse of noun.Slot's bit walk: Slot
// reads high-bit-to-low, so embedAtAxis applies the same steps from
// the leaf outward.
func embedAtAxis(a arena.Allocator, axis uint64, leaf noun.Noun) noun.Noun {
	highBit := bits.Len64(axis) - 1
	cur := leaf
	for i := 0; i < highBit; i++ {
		if (axis>>uint(i))&1 == 0 {
			cur = noun.NewCell(a, cur, noun.D(0))
		} else {
			cur = noun.NewCell(a, noun.D(0), cur)
		}
	}
	return cur
}

// echoCoreAtAxis builds a fake core whose formula at axis is [1 gate],
// quoting a three-element gate [battery [sample context]] whose
// battery is [0 6] (return the sample verbatim) so firing it after the
// slam formula's axis-6 sample edit returns exactly the value slammed
// in.
func echoCoreAtAxis(c *Context, axis uint64) noun.Noun {
	a := c.Stack.Current()
	battery := noun.T(a, noun.D(0), noun.D(6))
	gate := noun.T(a, battery, noun.D(0), noun.D(0))
	leaf := noun.T(a, noun.D(1), gate)
	return embedAtAxis(a, axis, leaf)
}

func TestEmbedAtAxisMatchesSlot(t *testing.T) {
	c := newTestContext(t)
	a := c.Stack.Current()
	leaf := noun.D(77)
	tree := embedAtAxis(a, 23, leaf)
	got, err := noun.Slot(tree, 23)
	require.NoError(t, err)
	gotAtom, ok := noun.AsAtom(got)
	require.True(t, ok)
	v, _ := gotAtom.Uint64()
	require.Equal(t, uint64(77), v)
}

func TestWorkCommitsAndRepliesWorkDone(t *testing.T) {
	c := newTestContext(t)
	a := c.Stack.Current()
	c.Arvo = echoCoreAtAxis(c, PokeAxis)

	effects := noun.D(111)
	newArvo := noun.D(222)
	job := noun.NewCell(a, effects, newArvo)

	require.NoError(t, c.work(job))
	require.Equal(t, uint64(1), c.EventNum)
	av, ok := noun.AsAtom(c.Arvo)
	require.True(t, ok)
	v, _ := av.Uint64()
	require.Equal(t, uint64(222), v)
}

func TestWorkCrashEntersCrudRetryAndBailsWhenSubstituteCrashes(t *testing.T) {
	c := newTestContext(t)
	a := c.Stack.Current()
	// Axis 50 does not exist on this core: the first soft-run crashes
	// deterministically, forcing the crud-retry path.
	c.Arvo = embedAtAxis(a, PokeAxis, noun.T(a, noun.D(0), noun.D(50)))

	job := noun.T(a, noun.D(1), noun.D(0), noun.D(0))
	err := c.work(job)
	// The crud substitute slams the same crashing poke gate, so it
	// also fails: work_bail is the expected outcome, not a Go error.
	require.NoError(t, err)
	require.Equal(t, uint64(0), c.EventNum, "neither the original nor the substitute job committed")
}

func TestBuildCrudEventShape(t *testing.T) {
	c := newTestContext(t)
	a := c.Stack.Current()
	job := noun.T(a, noun.D(5), noun.D(0), noun.D(0))
	tang := noun.D(0)
	goofNoun := noun.T(a, cordAtom("exit"), tang)

	crud, err := buildCrudEvent(a, job, goofNoun)
	require.NoError(t, err)

	nowSlot, err := noun.Slot(crud, 2)
	require.NoError(t, err)
	nowAtom, _ := noun.AsAtom(nowSlot)
	v, _ := nowAtom.Uint64()
	require.Equal(t, uint64(6), v)

	tagSlot, err := noun.Slot(crud, 14)
	require.NoError(t, err)
	tagAtom, _ := noun.AsAtom(tagSlot)
	require.Equal(t, "crud", string(tagAtom.Bytes()))
}
