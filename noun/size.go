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

import "unsafe"

// SizeOf estimates the arena bytes a deep copy of n would need,
// de-duplicating shared cells the same way DeepCopy does so the two
// never disagree about how much space a root needs. It exists so a
// destination arena can be sized once up front instead of growing
// (and invalidating already-handed-out pointers) mid-copy — the same
// count-before-you-encode idiom as rlp.CountBytes.
func SizeOf(n Noun) uintptr {
	seen := make(map[*Cell]bool)
	return sizeOf(n, seen)
}

func sizeOf(n Noun, seen map[*Cell]bool) uintptr {
	switch v := n.(type) {
	case Atom:
		if v.big != nil {
			return uintptr(len(v.big))
		}
		return 0
	case *Cell:
		if seen[v] {
			return 0
		}
		seen[v] = true
		return unsafe.Sizeof(Cell{}) + sizeOf(v.Head, seen) + sizeOf(v.Tail, seen)
	default:
		panic("noun: SizeOf of unknown noun type")
	}
}
