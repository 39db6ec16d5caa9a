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

import "math/bits"

// Slot extracts the sub-tree of n at the given axis. Axis 1 is the whole
// noun, axis 2 is the head, axis 3 the tail, and axis 2n/2n+1 is the
// head/tail of the sub-tree at axis n — the usual Nock convention.
//
// Axes are carried as uint64, which bounds tree depth to 63 — comfortably
// more than any axis the dispatcher or formula builder ever constructs
// (the deepest fixed axis used anywhere in this core is 23, §4.4).
func Slot(n Noun, axis uint64) (Noun, error) {
	if axis == 0 {
		return nil, ErrBadAxis
	}
	highBit := bits.Len64(axis) - 1
	cur := n
	for i := highBit - 1; i >= 0; i-- {
		cell, ok := cur.(*Cell)
		if !ok {
			return nil, ErrBadAxis
		}
		if (axis>>uint(i))&1 == 0 {
			cur = cell.Head
		} else {
			cur = cell.Tail
		}
	}
	return cur, nil
}

// MustSlot is Slot but panics on a bad axis; used only where the axis is
// a compile-time constant pulled from a well-formed request noun the
// caller has already validated the tag of (spec.md §6's request shapes).
func MustSlot(n Noun, axis uint64) Noun {
	s, err := Slot(n, axis)
	if err != nil {
		panic(err)
	}
	return s
}
