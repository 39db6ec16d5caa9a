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

package jets

// Warm binds a Cold registration to the compiled-in Hot implementation it
// names, for the lifetime of one process. It survives every event
// (spec.md §4.2 lists it alongside arvo, cold, hot as a preserved root)
// but is rebuilt from Cold and Hot on every boot rather than persisted —
// a battery identity recorded in Cold before a binary upgrade may now
// bind to a different (or no) Hot entry, and Warm must reflect the
// binary actually running, not the one that wrote the snapshot.
type Warm struct {
	bindings map[uint32]Entry
}

// InitWarm rebuilds Warm from every Cold registration whose label has a
// matching compiled-in Hot entry.
func InitWarm(cold *Cold, hot *Hot) *Warm {
	w := &Warm{bindings: make(map[uint32]Entry)}
	cold.mu.RLock()
	defer cold.mu.RUnlock()
	for mug, label := range cold.entries {
		if entry, ok := hot.Lookup(label); ok {
			w.bindings[mug] = entry
		}
	}
	return w
}

// Lookup returns the Hot entry bound to batteryMug, if Cold has
// registered that battery and Hot still implements its label.
func (w *Warm) Lookup(batteryMug uint32) (Entry, bool) {
	e, ok := w.bindings[batteryMug]
	return e, ok
}

// Preserve returns an independent copy of w for the scratch-arena
// frame-flip, mirroring Cold.Preserve.
func (w *Warm) Preserve() *Warm {
	cp := &Warm{bindings: make(map[uint32]Entry, len(w.bindings))}
	for k, v := range w.bindings {
		cp.bindings[k] = v
	}
	return cp
}

// Len reports the number of live bindings.
func (w *Warm) Len() int {
	return len(w.bindings)
}
