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

package persist

import (
	"fmt"

	"github.com/urbit-go/serf/arena"
	"github.com/urbit-go/serf/jets"
	"github.com/urbit-go/serf/newt"
	"github.com/urbit-go/serf/noun"
)

// supportedVersion is the only non-zero SnapshotVersion this core
// understands. Any other value found on disk is fatal (spec.md §4.1).
const supportedVersion = 1

// Snapshot is the in-memory reconstruction of a packed snapshot record:
// everything a fresh process needs before it can dispatch its first
// event. A freshly initialized pier (version 0) has Epoch and EventNum
// both zero, Arvo the atom 0, and an empty Cold table.
type Snapshot struct {
	Epoch    uint64
	EventNum uint64
	Arvo     noun.Noun
	Cold     *jets.Cold
}

// Manager opens, loads, and persists the snapshot record backing one
// serf process. It owns the Arena but not the scratch arena events run
// against — Save builds the cold-table noun on arena.DefaultHeap and
// jams it and arvo into byte strings before they are copied into the
// mapping.
type Manager struct {
	arena *Arena
}

// Open opens (creating if necessary) the persistent arena at path.
func Open(path string) (*Manager, error) {
	a, err := OpenArena(path)
	if err != nil {
		return nil, err
	}
	return &Manager{arena: a}, nil
}

// Close releases the underlying arena.
func (m *Manager) Close() error {
	return m.arena.Close()
}

// Load reads the metadata slot SnapshotVersion and reconstructs a
// Snapshot. Version 0 means a fresh pier; version 1 reconstructs from
// the packed record the Snapshot metadata slot points at; any other
// version is fatal.
func (m *Manager) Load() (*Snapshot, error) {
	version := m.arena.ReadMeta(MetaSnapshotVersion)
	switch version {
	case 0:
		return &Snapshot{
			Epoch:    0,
			EventNum: 0,
			Arvo:     noun.D(0),
			Cold:     jets.NewCold(),
		}, nil
	case supportedVersion:
		return m.loadPacked()
	default:
		return nil, fmt.Errorf("persist: unsupported snapshot version %d", version)
	}
}

func (m *Manager) loadPacked() (*Snapshot, error) {
	recordOffset := m.arena.ReadMeta(MetaSnapshot)
	raw := m.arena.ReadAt(recordOffset, packedHeaderSize)
	hdr := unmarshalPacked(raw)

	arvoBytes := m.arena.ReadAt(hdr.ArvoOffset, hdr.ArvoLength)
	arvo, err := newt.Cue(arvoBytes, arena.DefaultHeap)
	if err != nil {
		return nil, fmt.Errorf("persist: corrupt arvo snapshot: %w", err)
	}

	coldBytes := m.arena.ReadAt(hdr.ColdOffset, hdr.ColdLength)
	coldNoun, err := newt.Cue(coldBytes, arena.DefaultHeap)
	if err != nil {
		return nil, fmt.Errorf("persist: corrupt cold snapshot: %w", err)
	}
	cold, err := jets.ColdFromNoun(coldNoun)
	if err != nil {
		return nil, fmt.Errorf("persist: corrupt cold snapshot: %w", err)
	}

	return &Snapshot{
		Epoch:    hdr.Epoch,
		EventNum: hdr.EventNum,
		Arvo:     arvo,
		Cold:     cold,
	}, nil
}

// Save jams arvo and the cold table, appends the two jammed byte
// strings and the packed header describing them past the end of the
// bump region, and finally commits the new generation by writing the
// metadata slots. Appending rather than rewinding over the previous
// generation's bytes means the metadata slots still point at a
// complete, readable record for however long the new generation takes
// to write; only the final WriteMeta calls retarget them. It writes
// MetaSnapshot before MetaSnapshotVersion: by the time MetaSnapshot is
// retargeted the new record is completely written, so a crash between
// the two writes leaves a complete record visible (spec.md §4.1's
// crash-safety requirement), never a half-written one, and a crash
// during the Append calls above that
// leaves the bump offset mid-write never touches the previous
// generation's bytes at all. Reclaiming superseded generations'
// bytes is %meld, a stub per spec.md §9. Save does not force
// durability; call Sync for that.
func (m *Manager) Save(snap *Snapshot) error {
	arvoBytes := newt.Jam(snap.Arvo)
	coldBytes := newt.Jam(snap.Cold.ToNoun(arena.DefaultHeap))

	arvoOffset, err := m.arena.Append(arvoBytes)
	if err != nil {
		return err
	}
	coldOffset, err := m.arena.Append(coldBytes)
	if err != nil {
		return err
	}

	hdr := packedHeader{
		Epoch:      snap.Epoch,
		EventNum:   snap.EventNum,
		ArvoOffset: arvoOffset,
		ArvoLength: uint64(len(arvoBytes)),
		ColdOffset: coldOffset,
		ColdLength: uint64(len(coldBytes)),
	}
	recordOffset, err := m.arena.Append(hdr.marshal())
	if err != nil {
		return err
	}

	m.arena.WriteMeta(MetaSnapshot, recordOffset)
	m.arena.WriteMeta(MetaSnapshotVersion, supportedVersion)
	return nil
}

// Sync forces the persistent arena to durable storage.
func (m *Manager) Sync() error {
	return m.arena.Sync()
}
