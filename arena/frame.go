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

// Stack is the two-frame scratch arena a serf event runs against: one
// BumpAllocator is "current" and receives every allocation an event
// makes, the other sits idle, empty since it was reset when it was last
// flipped out.
// Flip moves the live roots across into the idle frame and discards
// the frame that was current, the allocator-level half of the
// scratch-arena reset protocol — the policy of which pointers count as
// roots and how each is deep-copied belongs to the caller, since this
// package knows nothing about nouns or jet tables.
type Stack struct {
	frames [2]*BumpAllocator
	cur    int
}

// NewStack allocates both frames with an initial slab of slabSize bytes.
func NewStack(slabSize int) *Stack {
	return &Stack{
		frames: [2]*BumpAllocator{
			NewBumpAllocator(make([]byte, slabSize)),
			NewBumpAllocator(make([]byte, slabSize)),
		},
	}
}

// Current returns the live frame new allocations should use.
func (s *Stack) Current() *BumpAllocator {
	return s.frames[s.cur]
}

// Flip hands the idle frame to preserve, which must copy every root the
// caller wants to survive into it (using the frame as the destination
// Allocator), then resets and discards the frame that was current.
// After Flip returns, Current() is the frame preserve just populated.
func (s *Stack) Flip(preserve func(dst *BumpAllocator)) {
	oldIdx := s.cur
	newIdx := 1 - s.cur
	preserve(s.frames[newIdx])
	s.frames[oldIdx].Reset()
	s.cur = newIdx
}

// SetMaxTotal applies the same cap to both frames, since a runaway
// event could occupy either one depending on parity.
func (s *Stack) SetMaxTotal(max uintptr) {
	s.frames[0].SetMaxTotal(max)
	s.frames[1].SetMaxTotal(max)
}
