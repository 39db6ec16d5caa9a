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

package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStackFlipPreservesAcrossReset(t *testing.T) {
	s := NewStack(4096)
	before := s.Current()
	ptr := New[uint64](before)
	*ptr = 7

	var preservedVal uint64
	s.Flip(func(dst *BumpAllocator) {
		cp := New[uint64](dst)
		*cp = *ptr
		preservedVal = *cp
	})

	require.Equal(t, uint64(7), preservedVal)
	require.NotSame(t, before, s.Current())
	require.Zero(t, before.Used(), "the old frame must be reset once flipped out")
}

func TestStackFlipAlternatesFrames(t *testing.T) {
	s := NewStack(4096)
	first := s.Current()
	s.Flip(func(dst *BumpAllocator) {})
	second := s.Current()
	require.NotSame(t, first, second)
	s.Flip(func(dst *BumpAllocator) {})
	require.Same(t, first, s.Current())
}

func TestStackSetMaxTotalAppliesToBothFrames(t *testing.T) {
	s := NewStack(64)
	s.SetMaxTotal(64)
	require.Panics(t, func() {
		New[[128]byte](s.Current())
	})
	s.Flip(func(dst *BumpAllocator) {})
	require.Panics(t, func() {
		New[[128]byte](s.Current())
	})
}
