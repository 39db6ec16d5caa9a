// Copyright 2020 The go-ethereum Authors
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

package noun

import "github.com/urbit-go/serf/arena"

// DeepCopy produces a copy of n on dst, de-duplicating by the source
// *Cell pointer so that shared sub-trees (nouns form DAGs, not just
// trees) are copied once and referenced twice in the destination,
// exactly as spec.md §9 requires: "implementers should use an
// address-keyed mapping local to each copy pass." seen must be supplied
// by the caller and is scoped to a single copy pass — serf.Context's
// preserve step starts a fresh map on every frame flip so that sharing
// within one event's surviving values is preserved without leaking
// identity across unrelated passes.
//
// Atoms carry no identity (they are immutable values, spec.md §3) and
// are returned as-is: an Atom is a value whose magnitude bytes live on
// the Go heap, not on any arena. Only cells participate in seen.
func DeepCopy(n Noun, dst arena.Allocator, seen map[*Cell]*Cell) Noun {
	switch v := n.(type) {
	case Atom:
		return v
	case *Cell:
		if existing, ok := seen[v]; ok {
			return existing
		}
		cp := arena.New[Cell](dst)
		seen[v] = cp
		cp.Head = DeepCopy(v.Head, dst, seen)
		cp.Tail = DeepCopy(v.Tail, dst, seen)
		if v.mugSet {
			cp.mug, cp.mugSet = v.mug, true
		}
		return cp
	default:
		panic("noun: DeepCopy of unknown noun type")
	}
}
