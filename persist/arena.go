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

// Package persist implements the memory-mapped persistent arena and the
// snapshot manager that reads and writes it. spec.md leaves both the
// arena primitives and the snapshot manager's storage format external;
// this package gives them a concrete, file-backed implementation.
package persist

import (
	"encoding/binary"
	"errors"
	"os"

	"github.com/edsrzf/mmap-go"
)

// pmaMagic identifies a serf persistent arena file. Files without it
// are refused rather than silently reinterpreted.
var pmaMagic = [8]byte{'S', 'E', 'R', 'F', 'P', 'M', 'A', 1}

// headerSize is the fixed region at the front of the file holding the
// magic, version, and the two BTMetaField slots (spec.md §6). The bump
// region for jammed snapshot bytes starts immediately after it.
const headerSize = 64

// Metadata slot indices, matching spec.md §6's BTMetaField.
const (
	MetaSnapshotVersion = 0
	MetaSnapshot        = 1
)

const (
	metaSlotSize   = 8
	metaBase       = 8 + 1 // past magic + version byte
	defaultReserve = 4 << 20
)

// ErrBadMagic is returned when opening a file that isn't a serf PMA.
var ErrBadMagic = errors.New("persist: not a serf persistent arena file")

// Arena is a growable, memory-mapped file holding jammed snapshot byte
// strings plus two small metadata slots. Unlike arena.BumpAllocator it
// never hands out typed Go pointers into the mapping — everything
// crossing a process restart must be a self-contained byte encoding
// (see newt.Jam/newt.Cue), since a live Go pointer embedded in mapped
// bytes cannot survive being reopened at a different virtual address.
type Arena struct {
	file *os.File
	mm   mmap.MMap
	off  uint64 // bump offset into the post-header region
}

// OpenArena opens (creating if necessary) the persistent arena at path.
// A freshly created file is zero-initialized, which callers interpret
// as metadata slot 0 (SnapshotVersion) reading as 0 — "fresh pier" in
// spec.md §4.1's terms — since OpenArena itself writes only the magic
// and leaves the metadata slots at their zero value.
func OpenArena(path string) (*Arena, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	a := &Arena{file: f, off: headerSize}
	if info.Size() == 0 {
		if err := f.Truncate(defaultReserve); err != nil {
			f.Close()
			return nil, err
		}
		if err := a.remap(); err != nil {
			f.Close()
			return nil, err
		}
		copy(a.mm[:8], pmaMagic[:])
		return a, nil
	}

	if err := a.remap(); err != nil {
		f.Close()
		return nil, err
	}
	if [8]byte(a.mm[:8]) != pmaMagic {
		a.Close()
		return nil, ErrBadMagic
	}
	if rec := a.ReadMeta(MetaSnapshot); rec != 0 {
		// Resume appending past the last committed record (always the
		// last thing a Save appends) so the next Save never overwrites it.
		a.off = rec + packedHeaderSize
	}
	return a, nil
}

func (a *Arena) remap() error {
	if a.mm != nil {
		if err := a.mm.Unmap(); err != nil {
			return err
		}
	}
	mm, err := mmap.Map(a.file, mmap.RDWR, 0)
	if err != nil {
		return err
	}
	a.mm = mm
	return nil
}

// ReadMeta returns metadata slot i.
func (a *Arena) ReadMeta(slot int) uint64 {
	start := metaBase + slot*metaSlotSize
	return binary.LittleEndian.Uint64(a.mm[start : start+metaSlotSize])
}

// WriteMeta sets metadata slot i. Callers committing a new snapshot
// must write MetaSnapshot before MetaSnapshotVersion so a crash
// between the two writes never makes a half-written snapshot visible
// (spec.md §4.1's crash-safety requirement).
func (a *Arena) WriteMeta(slot int, v uint64) {
	start := metaBase + slot*metaSlotSize
	binary.LittleEndian.PutUint64(a.mm[start:start+metaSlotSize], v)
}

// grow doubles the backing file until at least additional bytes are
// free beyond the current bump offset — grounded on
// core/rawdb/freezer_table.go's chunked, pre-sized file growth.
func (a *Arena) grow(additional uint64) error {
	need := a.off + additional
	cur := uint64(len(a.mm))
	if need <= cur {
		return nil
	}
	newSize := cur
	for newSize < need {
		newSize *= 2
	}
	if err := a.mm.Unmap(); err != nil {
		return err
	}
	if err := a.file.Truncate(int64(newSize)); err != nil {
		return err
	}
	return a.remap()
}

// Append writes p into the bump region, growing the file if needed,
// and returns the byte offset it was written at.
func (a *Arena) Append(p []byte) (uint64, error) {
	if err := a.grow(uint64(len(p))); err != nil {
		return 0, err
	}
	start := a.off
	copy(a.mm[start:], p)
	a.off = start + uint64(len(p))
	return start, nil
}

// ReadAt returns the length bytes starting at offset. The returned
// slice aliases the mapping and must not be retained past the next
// call that might grow (and therefore remap) the arena.
func (a *Arena) ReadAt(offset, length uint64) []byte {
	return a.mm[offset : offset+length]
}

// Sync forces the mapping to durable storage (spec.md §4.1's `sync`).
func (a *Arena) Sync() error {
	return a.mm.Flush()
}

// Close unmaps and closes the backing file.
func (a *Arena) Close() error {
	if a.mm != nil {
		if err := a.mm.Unmap(); err != nil {
			a.file.Close()
			return err
		}
	}
	return a.file.Close()
}
