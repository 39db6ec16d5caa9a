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

package newt

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/urbit-go/serf/arena"
	"github.com/urbit-go/serf/noun"
)

// Port is the framed noun message port the king and serf speak over
// (spec.md §6.2): every message, in either direction, is an 8-byte
// little-endian length prefix followed by that many bytes of a jammed
// noun. Port owns no buffering beyond what io.Reader/io.Writer give it;
// the serf.Context that wraps one owns the allocator replies are built
// on.
type Port struct {
	r io.Reader
	w io.Writer
}

// NewPort wraps the given pipe ends as a Port.
func NewPort(r io.Reader, w io.Writer) *Port {
	return &Port{r: r, w: w}
}

// Next reads the next framed request, or (nil, nil) on a clean EOF
// (the peer closed its end) — spec.md §6.2's `next() → optional<Noun>`.
func (p *Port) Next(a arena.Allocator) (noun.Noun, error) {
	var lenBuf [8]byte
	if _, err := io.ReadFull(p.r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("newt: reading frame length: %w", err)
	}
	n := binary.LittleEndian.Uint64(lenBuf[:])
	body := make([]byte, n)
	if _, err := io.ReadFull(p.r, body); err != nil {
		return nil, fmt.Errorf("newt: reading frame body: %w", err)
	}
	return Cue(body, a)
}

// writeFrame jams n and writes it length-prefixed.
func (p *Port) writeFrame(n noun.Noun) error {
	body := Jam(n)
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(body)))
	if _, err := p.w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("newt: writing frame length: %w", err)
	}
	if _, err := p.w.Write(body); err != nil {
		return fmt.Errorf("newt: writing frame body: %w", err)
	}
	return nil
}

func cord(s string) noun.Noun {
	return noun.Indirect([]byte(s))
}

func tagged(a arena.Allocator, tag string, rest ...noun.Noun) noun.Noun {
	pieces := append([]noun.Noun{cord(tag)}, rest...)
	return noun.T(a, pieces...)
}

// Ripe announces the serf and its committed state at startup:
// [%ripe [event-num mug]].
func (p *Port) Ripe(a arena.Allocator, eventNum uint64, mug uint32) error {
	return p.writeFrame(tagged(a, "ripe", noun.T(a, noun.D(eventNum), noun.D(uint64(mug)))))
}

// Live acknowledges a live request.
func (p *Port) Live(a arena.Allocator) error {
	return p.writeFrame(tagged(a, "live", noun.D(0)))
}

// PeekDone replies to a %peek with the scry result dat.
func (p *Port) PeekDone(a arena.Allocator, dat noun.Noun) error {
	return p.writeFrame(tagged(a, "peek-done", dat))
}

// PlayDone replies to a finished %play with the new mug.
func (p *Port) PlayDone(a arena.Allocator, mug uint32) error {
	return p.writeFrame(tagged(a, "play-done", noun.D(uint64(mug))))
}

// PlayBail replies to a %play that crashed mid-replay.
func (p *Port) PlayBail(a arena.Allocator, eventNum uint64, mug uint32, dud noun.Noun) error {
	return p.writeFrame(tagged(a, "play-bail", noun.T(a, noun.D(eventNum), noun.D(uint64(mug)), dud)))
}

// WorkDone replies to a successful %work with the committed effects.
func (p *Port) WorkDone(a arena.Allocator, eventNum uint64, mug uint32, fec noun.Noun) error {
	return p.writeFrame(tagged(a, "work-done", noun.T(a, noun.D(eventNum), noun.D(uint64(mug)), fec)))
}

// WorkSwap replies when the original job failed but its crud
// substitute committed: the king is told both the substitute job and
// the effects it produced.
func (p *Port) WorkSwap(a arena.Allocator, eventNum uint64, mug uint32, job, fec noun.Noun) error {
	return p.writeFrame(tagged(a, "work-swap", noun.T(a, noun.D(eventNum), noun.D(uint64(mug)), job, fec)))
}

// WorkBail replies when both the original job and its crud substitute
// failed: no event was committed.
func (p *Port) WorkBail(a arena.Allocator, lud noun.Noun) error {
	return p.writeFrame(tagged(a, "work-bail", lud))
}
