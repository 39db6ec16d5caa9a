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

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

type mixedFields struct {
	A uint64
	B uint32
	C byte
}

func TestBumpAllocatorAlignment(t *testing.T) {
	alloc := NewBumpAllocator(make([]byte, 4096))
	alloc.RawAlloc(1, 1)

	var zero uint64
	ptr := alloc.RawAlloc(unsafe.Sizeof(zero), unsafe.Alignof(zero))
	require.Zero(t, uintptr(ptr)%unsafe.Alignof(zero))
}

func TestBumpAllocatorZeroesMemory(t *testing.T) {
	slab := make([]byte, 4096)
	for i := range slab {
		slab[i] = 0xFF
	}
	alloc := NewBumpAllocator(slab)

	ptr := alloc.RawAlloc(64, 1)
	for i, b := range unsafe.Slice((*byte)(ptr), 64) {
		require.Zerof(t, b, "byte %d was not zeroed", i)
	}
}

func TestBumpAllocatorGrowsSlabs(t *testing.T) {
	alloc := NewBumpAllocator(make([]byte, 32))
	require.Equal(t, 1, alloc.SlabCount())

	alloc.RawAlloc(64, 1)
	require.Equal(t, 2, alloc.SlabCount())
}

func TestBumpAllocatorEnforcesMaxTotal(t *testing.T) {
	alloc := NewBumpAllocator(make([]byte, 32))
	alloc.SetMaxTotal(32 + slabDefaultSize)

	alloc.RawAlloc(64, 1) // grows one default-size slab: total now exactly the cap, fine
	require.Panics(t, func() {
		alloc.RawAlloc(slabDefaultSize, 1) // does not fit the slab's remainder; another slab would exceed the cap
	})
}

func TestBumpAllocatorReset(t *testing.T) {
	alloc := NewBumpAllocator(make([]byte, 256))
	alloc.RawAlloc(128, 1)
	require.NotZero(t, alloc.Used())

	alloc.Reset()
	require.Zero(t, alloc.Used())
	require.Equal(t, 256, alloc.Remaining())

	// the arena must be reusable after Reset
	alloc.RawAlloc(128, 1)
}

func TestGenericNewHeap(t *testing.T) {
	v := New[uint64](DefaultHeap)
	require.Zero(t, *v)
	*v = 42
	require.EqualValues(t, 42, *v)
}

func TestGenericNewBump(t *testing.T) {
	alloc := NewBumpAllocator(make([]byte, 4096))

	s := New[mixedFields](alloc)
	require.Zero(t, *s)
	s.A = 1

	require.Zero(t, uintptr(unsafe.Pointer(s))%unsafe.Alignof(mixedFields{}))
}

func TestMakeSliceHeap(t *testing.T) {
	s := MakeSlice[uint64](&HeapAllocator{}, 3, 8)
	require.Len(t, s, 3)
	require.Equal(t, 8, cap(s))
	s[0], s[1], s[2] = 10, 20, 30
	require.Equal(t, []uint64{10, 20, 30}, s)
}

func TestMakeSliceBump(t *testing.T) {
	alloc := NewBumpAllocator(make([]byte, 4096))
	s := MakeSlice[uint64](alloc, 3, 8)
	require.Len(t, s, 3)
	for _, v := range s {
		require.Zero(t, v)
	}
}

func TestHeapAllocatorResetDropsPins(t *testing.T) {
	h := &HeapAllocator{}
	h.RawAlloc(32, 1)
	h.RawAlloc(64, 1)
	require.Len(t, h.pins, 2)

	h.Reset()
	require.Empty(t, h.pins)
}
