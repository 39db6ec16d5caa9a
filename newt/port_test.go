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

package newt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/urbit-go/serf/arena"
	"github.com/urbit-go/serf/noun"
)

func TestPortRipeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	heap := arena.DefaultHeap
	p := NewPort(&buf, &buf)
	require.NoError(t, p.Ripe(heap, 42, 7))

	got, err := p.Next(heap)
	require.NoError(t, err)
	cell, ok := noun.AsCell(got)
	require.True(t, ok)
	tagAtom, ok := noun.AsAtom(cell.Head)
	require.True(t, ok)
	require.Equal(t, "ripe", string(tagAtom.Bytes()))

	body, ok := noun.AsCell(cell.Tail)
	require.True(t, ok)
	evNum, ok := noun.AsAtom(body.Head)
	require.True(t, ok)
	v, _ := evNum.Uint64()
	require.Equal(t, uint64(42), v)
}

func TestPortNextOnClosedPipeIsCleanEOF(t *testing.T) {
	p := NewPort(&bytes.Buffer{}, &bytes.Buffer{})
	got, err := p.Next(arena.DefaultHeap)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPortWorkDoneShape(t *testing.T) {
	var buf bytes.Buffer
	heap := arena.DefaultHeap
	p := NewPort(&buf, &buf)
	fec := noun.T(heap, noun.D(1), noun.D(2))
	require.NoError(t, p.WorkDone(heap, 5, 99, fec))

	got, err := p.Next(heap)
	require.NoError(t, err)
	cell, ok := noun.AsCell(got)
	require.True(t, ok)
	tagAtom, _ := noun.AsAtom(cell.Head)
	require.Equal(t, "work-done", string(tagAtom.Bytes()))
}
