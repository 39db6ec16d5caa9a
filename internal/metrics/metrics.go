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

// Package metrics is a minimal counter/timer registry, scaled down from
// the teacher's metrics package (itself a thin wrapper over
// rcrowley/go-metrics) to the handful of series a single serf process
// needs: per-tag event counts and commit latency. Registered series
// live for the process lifetime, unlike the scratch arena or the noun
// cache, which are reset every event.
package metrics

import (
	"sync"
	"time"
)

// Counter is a monotonically increasing named count.
type Counter struct {
	mu  sync.Mutex
	val int64
}

func (c *Counter) Inc(delta int64) {
	c.mu.Lock()
	c.val += delta
	c.mu.Unlock()
}

func (c *Counter) Count() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.val
}

// Timer tracks a running count and total duration of timed operations,
// enough to report a mean without retaining a full sample history.
type Timer struct {
	mu    sync.Mutex
	count int64
	total time.Duration
}

func (t *Timer) Update(d time.Duration) {
	t.mu.Lock()
	t.count++
	t.total += d
	t.mu.Unlock()
}

func (t *Timer) Mean() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.count == 0 {
		return 0
	}
	return t.total / time.Duration(t.count)
}

// Registry is a named set of Counters and Timers, created lazily on
// first access so callers never need an init-time registration pass.
type Registry struct {
	mu       sync.Mutex
	counters map[string]*Counter
	timers   map[string]*Timer
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[string]*Counter),
		timers:   make(map[string]*Timer),
	}
}

// Counter returns the named counter, creating it if this is its first use.
func (r *Registry) Counter(name string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.counters[name]
	if !ok {
		c = &Counter{}
		r.counters[name] = c
	}
	return c
}

// Timer returns the named timer, creating it if this is its first use.
func (r *Registry) Timer(name string) *Timer {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.timers[name]
	if !ok {
		t = &Timer{}
		r.timers[name] = t
	}
	return t
}

// Snapshot returns the current count of every counter, for diagnostic
// reporting. Timers are not included.
func (r *Registry) Snapshot() map[string]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int64, len(r.counters))
	for name, c := range r.counters {
		out[name] = c.Count()
	}
	return out
}
