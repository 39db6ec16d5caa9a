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

// Package arena provides the scratch-stack memory backing for one event's
// worth of noun allocation. A BumpAllocator never frees individual values;
// it is reset wholesale between events by the frame machinery in frame.go.
package arena

import "unsafe"

// Allocator is the minimal interface frame.go and the noun package need:
// raw, alignment-aware allocation of zeroed memory.
type Allocator interface {
	RawAlloc(size, align uintptr) unsafe.Pointer
}

// New allocates a zeroed T on a and returns a pointer to it.
func New[T any](a Allocator) *T {
	var zero T
	ptr := a.RawAlloc(unsafe.Sizeof(zero), unsafe.Alignof(zero))
	return (*T)(ptr)
}

// MakeSlice allocates a zeroed slice of T with the given length and capacity.
func MakeSlice[T any](a Allocator, length, capacity int) []T {
	var zero T
	if capacity < length {
		capacity = length
	}
	if capacity == 0 {
		return []T{}
	}
	ptr := a.RawAlloc(unsafe.Sizeof(zero)*uintptr(capacity), unsafe.Alignof(zero))
	return unsafe.Slice((*T)(ptr), capacity)[:length:capacity]
}

// slabDefaultSize is the minimum size of any slab grown after the first;
// the first slab is the one passed to NewBumpAllocator.
const slabDefaultSize = 64 << 10

// BumpAllocator is a bump-pointer allocator backed by a chain of byte
// slabs. Allocation is O(1); nothing is freed until Reset, which discards
// every slab but the first and rewinds the bump pointer to its start.
//
// It is the "scratch arena" of the event-loop core: one BumpAllocator
// backs one stack frame, and a frame's entire allocation set is released
// in a single Reset when the frame is flipped (see frame.go).
type BumpAllocator struct {
	slabs    [][]byte
	off      int // bump offset into the current (last) slab
	maxTotal uintptr
	total    uintptr
}

// NewBumpAllocator creates a BumpAllocator whose first slab is the given
// byte slice. The caller gives up ownership of slab.
func NewBumpAllocator(slab []byte) *BumpAllocator {
	return &BumpAllocator{
		slabs: [][]byte{slab},
		total: uintptr(len(slab)),
	}
}

// SetMaxTotal installs an upper bound on the cumulative size of every slab
// ever allocated by this BumpAllocator; RawAlloc panics once exceeded. A
// zero bound (the default) means unbounded.
func (b *BumpAllocator) SetMaxTotal(max uintptr) {
	b.maxTotal = max
}

func align(off int, a uintptr) int {
	mask := int(a) - 1
	return (off + mask) &^ mask
}

// RawAlloc returns size bytes of zeroed memory aligned to align, growing
// the slab chain if the current slab cannot satisfy the request.
func (b *BumpAllocator) RawAlloc(size, alignTo uintptr) unsafe.Pointer {
	if alignTo == 0 {
		alignTo = 1
	}
	cur := b.slabs[len(b.slabs)-1]
	start := align(b.off, alignTo)
	if uintptr(start)+size <= uintptr(len(cur)) {
		b.off = start
		ptr := unsafe.Pointer(&cur[b.off])
		for i := start; i < start+int(size); i++ {
			cur[i] = 0
		}
		b.off += int(size)
		return ptr
	}
	// Current slab can't fit the request: grow.
	grow := uintptr(slabDefaultSize)
	if size > grow {
		grow = size
	}
	if b.maxTotal != 0 && b.total+grow > b.maxTotal {
		panic("arena: bump allocator total capacity exceeded")
	}
	next := make([]byte, grow)
	b.slabs = append(b.slabs, next)
	b.total += grow
	b.off = int(size)
	return unsafe.Pointer(&next[0])
}

// SlabCount returns how many slabs have been allocated so far (1 plus the
// number of growths).
func (b *BumpAllocator) SlabCount() int {
	return len(b.slabs)
}

// Used returns the number of bytes bumped out of the current (last) slab.
func (b *BumpAllocator) Used() int {
	return b.off
}

// Remaining returns the number of bytes left in the current slab.
func (b *BumpAllocator) Remaining() int {
	return len(b.slabs[len(b.slabs)-1]) - b.off
}

// Reset discards every slab but the first and rewinds the bump pointer,
// making the whole arena available for reuse. This is the mechanism by
// which a stack frame's memory is released: no individual value is ever
// freed, the frame is.
func (b *BumpAllocator) Reset() {
	first := b.slabs[0]
	for i := range first {
		first[i] = 0
	}
	b.slabs = b.slabs[:1]
	b.off = 0
	b.total = uintptr(len(first))
}

// HeapAllocator satisfies Allocator by delegating to the Go heap. It is
// used for long-lived values that must outlive every scratch frame (the
// persistent-arena staging buffers in package persist) and in tests.
type HeapAllocator struct {
	pins []interface{}
}

// DefaultHeap is a ready-to-use HeapAllocator shared by call sites that
// have no frame-local state of their own.
var DefaultHeap = &HeapAllocator{}

// RawAlloc allocates size bytes on the Go heap. The allocation is pinned
// in h.pins so that callers may hold only an unsafe.Pointer to it without
// the garbage collector reclaiming the backing array.
func (h *HeapAllocator) RawAlloc(size, alignTo uintptr) unsafe.Pointer {
	buf := make([]byte, size)
	h.pins = append(h.pins, buf)
	if len(buf) == 0 {
		// Zero-sized allocations still need a valid, unique address.
		var z struct{}
		return unsafe.Pointer(&z)
	}
	return unsafe.Pointer(&buf[0])
}

// Reset drops every pin, allowing the garbage collector to reclaim heap
// allocations made through h once nothing else references them.
func (h *HeapAllocator) Reset() {
	h.pins = nil
}
