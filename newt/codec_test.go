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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/urbit-go/serf/arena"
	"github.com/urbit-go/serf/noun"
)

func TestJamCueRoundTripAtom(t *testing.T) {
	n := noun.D(12345)
	out, err := Cue(Jam(n), arena.DefaultHeap)
	require.NoError(t, err)
	a, ok := noun.AsAtom(out)
	require.True(t, ok)
	v, ok := a.Uint64()
	require.True(t, ok)
	require.Equal(t, uint64(12345), v)
}

func TestJamCueRoundTripBigAtom(t *testing.T) {
	big := make([]byte, 40)
	for i := range big {
		big[i] = byte(i + 1)
	}
	n := noun.Indirect(big)
	out, err := Cue(Jam(n), arena.DefaultHeap)
	require.NoError(t, err)
	a, ok := noun.AsAtom(out)
	require.True(t, ok)
	require.True(t, a.Eq(n))
}

func TestJamCueRoundTripCell(t *testing.T) {
	a := arena.DefaultHeap
	tree := noun.T(a, noun.D(1), noun.D(2), noun.D(3))
	out, err := Cue(Jam(tree), a)
	require.NoError(t, err)
	require.Equal(t, noun.Mug(tree), noun.Mug(out))
}

func TestJamPreservesSharingViaBackref(t *testing.T) {
	a := arena.DefaultHeap
	shared := noun.T(a, noun.D(7), noun.D(8))
	root := noun.NewCell(a, shared, shared)

	data := Jam(root)
	out, err := Cue(data, a)
	require.NoError(t, err)

	cell, ok := noun.AsCell(out)
	require.True(t, ok)
	headCell, ok := noun.AsCell(cell.Head)
	require.True(t, ok)
	tailCell, ok := noun.AsCell(cell.Tail)
	require.True(t, ok)
	// The back-reference tag must have rebuilt a single shared cell,
	// not two structurally-equal-but-distinct copies.
	require.Same(t, headCell, tailCell)
}

func TestJamCueRoundTripDeepCore(t *testing.T) {
	a := arena.DefaultHeap
	n := noun.T(a, noun.D(0), noun.T(a, noun.D(1), noun.D(2)), noun.D(99))
	out, err := Cue(Jam(n), a)
	require.NoError(t, err)
	require.Equal(t, noun.Mug(n), noun.Mug(out))
}

func TestCueRejectsTruncatedStream(t *testing.T) {
	_, err := Cue([]byte{tagCell, tagAtom}, arena.DefaultHeap)
	require.Error(t, err)
}

func TestCueRejectsBadBackref(t *testing.T) {
	var buf []byte
	buf = append(buf, tagBackref)
	buf = append(buf, 99)
	_, err := Cue(buf, arena.DefaultHeap)
	require.ErrorIs(t, err, errBadBackref)
}
