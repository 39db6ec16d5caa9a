// Copyright 2014 The go-ethereum Authors
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

// Package jets implements the three jet-registration tables the
// interpreter consults when deciding whether a core it's about to
// interpret has a faster native implementation: Cold (persisted across
// restarts), Warm (rebuilt every boot from Cold and Hot), and Hot
// (compiled into the binary). Only Cold crosses the snapshot boundary;
// spec.md §3 is explicit that Warm and Hot are rebuilt, not persisted.
//
// The registration scheme is grounded on the teacher's JUMPDEST analysis
// cache (core/vm/analysis.go): there, a bytecode's validity bitmap is
// computed once and cached by the code's identity so that repeat
// invocations skip the scan. Here the identity is a battery core's mug
// instead of a code hash, and the cached payload is a jet label path
// instead of a bitvector, but the shape — compute once, key by identity,
// reuse until invalidated — is the same.
package jets

import (
	"sort"
	"sync"

	"github.com/urbit-go/serf/arena"
	"github.com/urbit-go/serf/noun"
)

// Label is a jet's dotted path, e.g. {"k", "down", "dec"} for the
// standard-library decrement jet under the kernel's "down" core.
type Label []string

// Cold is the persisted battery-identity → jet-label registry. It is
// part of the snapshot record (spec.md §3) and therefore must support
// both a noun encoding (for persist.Manager) and Preserve (for the
// scratch-arena reset, spec.md §4.2).
type Cold struct {
	mu      sync.RWMutex
	entries map[uint32]Label
}

// NewCold returns an empty cold table, as used on a fresh pier
// (snapshot version 0, spec.md §4.1).
func NewCold() *Cold {
	return &Cold{entries: make(map[uint32]Label)}
}

// Register records that the battery whose core mugs to batteryMug is the
// named jet. Re-registering the same mug overwrites the label; the
// interpreter is expected to call this only when it first proves a
// battery's identity, which this package takes on faith.
func (c *Cold) Register(batteryMug uint32, label Label) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[batteryMug] = label
}

// Lookup returns the jet label registered for batteryMug, if any.
func (c *Cold) Lookup(batteryMug uint32) (Label, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.entries[batteryMug]
	return l, ok
}

// Len reports how many batteries are currently registered.
func (c *Cold) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Preserve returns an independent copy of c, for the scratch-arena
// frame-flip (spec.md §4.2: cold must survive every event). The jet
// table's backing store is a plain Go map rather than an arena-allocated
// noun tree, so "deep copy" here is a map clone rather than a pointer
// graph walk — there is nothing for the map values to share.
func (c *Cold) Preserve() *Cold {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cp := NewCold()
	for k, v := range c.entries {
		label := make(Label, len(v))
		copy(label, v)
		cp.entries[k] = label
	}
	return cp
}

// ColdEntry is one registered battery identity, as reported by Entries.
type ColdEntry struct {
	Mug   uint32
	Label Label
}

// Entries returns every registration sorted by mug, for read-only
// inspection tools (cmd/serf dump) that have no other way to walk the
// table.
func (c *Cold) Entries() []ColdEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ColdEntry, 0, len(c.entries))
	for mug, label := range c.entries {
		out = append(out, ColdEntry{Mug: mug, Label: label})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mug < out[j].Mug })
	return out
}

// ToNoun renders c as a canonical noun: a list of [mug label] pairs
// sorted by mug, where label is itself a list of cord atoms. Sorting
// makes the encoding deterministic, which matters because the snapshot
// record's mug (spec.md §3) is computed over the whole arvo+cold shape
// in some deployments and must be reproducible across saves.
func (c *Cold) ToNoun(a arena.Allocator) noun.Noun {
	c.mu.RLock()
	defer c.mu.RUnlock()

	mugs := make([]uint32, 0, len(c.entries))
	for k := range c.entries {
		mugs = append(mugs, k)
	}
	sort.Slice(mugs, func(i, j int) bool { return mugs[i] < mugs[j] })

	tail := noun.Noun(noun.D(0))
	for i := len(mugs) - 1; i >= 0; i-- {
		m := mugs[i]
		label := labelToNoun(a, c.entries[m])
		pair := noun.T(a, noun.D(uint64(m)), label)
		tail = noun.NewCell(a, pair, tail)
	}
	return tail
}

func labelToNoun(a arena.Allocator, label Label) noun.Noun {
	tail := noun.Noun(noun.D(0))
	for i := len(label) - 1; i >= 0; i-- {
		tail = noun.NewCell(a, cordToAtom(label[i]), tail)
	}
	return tail
}

func cordToAtom(s string) noun.Atom {
	return noun.Indirect([]byte(s))
}

// ColdFromNoun decodes the inverse of ToNoun.
func ColdFromNoun(n noun.Noun) (*Cold, error) {
	c := NewCold()
	for _, pair := range noun.ListToSlice(n) {
		cell, ok := noun.AsCell(pair)
		if !ok {
			return nil, errColdMalformed
		}
		mugAtom, ok := noun.AsAtom(cell.Head)
		if !ok {
			return nil, errColdMalformed
		}
		mugVal, ok := mugAtom.Uint64()
		if !ok {
			return nil, errColdMalformed
		}
		var label Label
		for _, piece := range noun.ListToSlice(cell.Tail) {
			a, ok := noun.AsAtom(piece)
			if !ok {
				return nil, errColdMalformed
			}
			label = append(label, string(a.Bytes()))
		}
		c.entries[uint32(mugVal)] = label
	}
	return c, nil
}
