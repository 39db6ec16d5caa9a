// Copyright 2016 The go-ethereum Authors
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

package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCounterAccumulates(t *testing.T) {
	c := &Counter{}
	c.Inc(3)
	c.Inc(4)
	require.Equal(t, int64(7), c.Count())
}

func TestTimerMeanOfZeroSamplesIsZero(t *testing.T) {
	tm := &Timer{}
	require.Equal(t, time.Duration(0), tm.Mean())
}

func TestTimerMeanAveragesSamples(t *testing.T) {
	tm := &Timer{}
	tm.Update(10 * time.Millisecond)
	tm.Update(20 * time.Millisecond)
	require.Equal(t, 15*time.Millisecond, tm.Mean())
}

func TestRegistryCreatesSeriesLazily(t *testing.T) {
	r := NewRegistry()
	r.Counter("work").Inc(1)
	r.Counter("work").Inc(1)
	r.Timer("commit").Update(5 * time.Millisecond)

	snap := r.Snapshot()
	require.Equal(t, int64(2), snap["work"])
	_, ok := snap["commit"]
	require.False(t, ok, "snapshot only reports counters, not timers")
}

func TestRegistryReturnsSameInstanceOnRepeatedLookup(t *testing.T) {
	r := NewRegistry()
	require.Same(t, r.Counter("a"), r.Counter("a"))
	require.Same(t, r.Timer("b"), r.Timer("b"))
}
