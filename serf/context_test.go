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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/urbit-go/serf/jets"
	"github.com/urbit-go/serf/noun"
)

func TestNewOnFreshPierStartsAtEventZero(t *testing.T) {
	c := newTestContext(t)
	require.Equal(t, uint64(0), c.Epoch)
	require.Equal(t, uint64(0), c.EventNum)
	atom, ok := noun.AsAtom(c.Arvo)
	require.True(t, ok)
	v, _ := atom.Uint64()
	require.Equal(t, uint64(0), v)
	require.Equal(t, noun.Mug(c.Arvo), c.Mug)
}

func TestResetPerEventClearsScryStack(t *testing.T) {
	c := newTestContext(t)
	c.ScryStack = append(c.ScryStack, noun.D(1), noun.D(2))
	c.resetPerEvent()
	require.Len(t, c.ScryStack, 0)
}

func TestEventUpdateAdvancesStateAndRecomputesMug(t *testing.T) {
	c := newTestContext(t)
	newArvo := noun.D(42)
	require.NoError(t, c.EventUpdate(1, newArvo))
	require.Equal(t, uint64(1), c.EventNum)
	require.Equal(t, noun.Mug(noun.D(42)), c.Mug)

	snap, err := c.Mgr.Load()
	require.NoError(t, err)
	require.Equal(t, uint64(1), snap.EventNum)
}

func TestPreserveCopiesArvoIntoNewFrame(t *testing.T) {
	c := newTestContext(t)
	a := c.Stack.Current()
	cell := noun.NewCell(a, noun.D(7), noun.D(8))
	c.Arvo = cell

	c.preserve()

	got, ok := noun.AsCell(c.Arvo)
	require.True(t, ok)
	require.NotSame(t, cell, got, "preserve must deep-copy arvo into the new frame, not alias it")
	headAtom, _ := noun.AsAtom(got.Head)
	v, _ := headAtom.Uint64()
	require.Equal(t, uint64(7), v)
}

func TestPreservePreservesColdRegistrations(t *testing.T) {
	c := newTestContext(t)
	c.Cold.Register(0xdead, jets.Label{"test-jet"})
	c.preserve()
	label, ok := c.Cold.Lookup(0xdead)
	require.True(t, ok)
	require.Equal(t, jets.Label{"test-jet"}, label)
}
