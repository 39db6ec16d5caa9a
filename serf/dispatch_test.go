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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/urbit-go/serf/internal/log"
	"github.com/urbit-go/serf/jets"
	"github.com/urbit-go/serf/newt"
	"github.com/urbit-go/serf/noun"
	"github.com/urbit-go/serf/persist"
)

// newDispatchTestContext wires requests and replies through separate
// buffers so a test can both feed requests in and decode what the
// dispatcher wrote back.
func newDispatchTestContext(t *testing.T) (ctx *Context, requests, replies *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	mgr, err := persist.Open(filepath.Join(dir, "serf.pma"))
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	requests = &bytes.Buffer{}
	replies = &bytes.Buffer{}
	port := newt.NewPort(requests, replies)
	hot := jets.InitHot(jets.DefaultHotState)
	logger := log.New(&bytes.Buffer{}, "serf-dispatch-test")

	ctx, err = New(mgr, port, hot, logger)
	require.NoError(t, err)
	return ctx, requests, replies
}

func TestDispatchLiveSaveAcksAndSyncs(t *testing.T) {
	c, _, replies := newDispatchTestContext(t)
	a := c.Stack.Current()

	req := noun.T(a, cordAtom("live"), cordAtom("save"), noun.D(0))
	require.NoError(t, c.dispatchOne(req))
	require.Greater(t, replies.Len(), 0)
}

func TestDispatchPeekSlamsPeekAxis(t *testing.T) {
	c, _, replies := newDispatchTestContext(t)
	c.Arvo = echoCoreAtAxis(c, PeekAxis)
	a := c.Stack.Current()

	req := noun.T(a, cordAtom("peek"), noun.D(0), noun.D(321))
	require.NoError(t, c.dispatchOne(req))
	require.Greater(t, replies.Len(), 0)
}

func TestDispatchWorkCommitsThroughMainLoop(t *testing.T) {
	c, _, replies := newDispatchTestContext(t)
	c.Arvo = echoCoreAtAxis(c, PokeAxis)
	a := c.Stack.Current()

	job := noun.NewCell(a, noun.D(1), noun.D(2))
	req := noun.T(a, cordAtom("work"), noun.D(0), job)
	require.NoError(t, c.dispatchOne(req))
	require.Equal(t, uint64(1), c.EventNum)
	require.Greater(t, replies.Len(), 0)
}

func TestDispatchUnknownTagIsFatal(t *testing.T) {
	c, _, _ := newDispatchTestContext(t)
	a := c.Stack.Current()
	req := noun.T(a, cordAtom("bogus"), noun.D(0), noun.D(0))
	err := c.dispatchOne(req)
	require.Error(t, err)
}

func TestPlayLifeBootsFromSelfApplyingEventList(t *testing.T) {
	c, _, replies := newDispatchTestContext(t)
	a := c.Stack.Current()

	arvoInitial := noun.D(555)
	kernel := noun.T(a, noun.D(1), noun.D(2), arvoInitial)
	quote := noun.T(a, noun.D(1), kernel)
	events := noun.NewCell(a, quote, noun.D(0))

	req := noun.T(a, cordAtom("play"), noun.D(0), events)
	require.NoError(t, c.dispatchOne(req))

	require.Equal(t, uint64(1), c.EventNum)
	atom, ok := noun.AsAtom(c.Arvo)
	require.True(t, ok)
	v, _ := atom.Uint64()
	require.Equal(t, uint64(555), v)
	require.Greater(t, replies.Len(), 0)
}

func TestPlayEventsAfterBootRunsEachJobInOrder(t *testing.T) {
	c, _, _ := newDispatchTestContext(t)
	a := c.Stack.Current()
	echoCore := echoCoreAtAxis(c, PokeAxis)
	c.Arvo = echoCore
	c.EventNum = 1 // simulate an already-booted pier

	// Each job's new-arvo is the echo gate itself, so the poke gate
	// stays slammable across both events in the list.
	job1 := noun.NewCell(a, noun.D(1), echoCore)
	job2 := noun.NewCell(a, noun.D(2), echoCore)
	events := noun.NewCell(a, job1, noun.NewCell(a, job2, noun.D(0)))

	req := noun.T(a, cordAtom("play"), noun.D(0), events)
	require.NoError(t, c.dispatchOne(req))
	require.Equal(t, uint64(3), c.EventNum)
}

func TestCordAtOnMissingAxisReturnsEmptyString(t *testing.T) {
	require.Equal(t, "", cordAt(noun.D(0), 6))
}
