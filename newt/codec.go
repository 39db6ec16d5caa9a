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

// Package newt implements the king↔serf wire protocol: length-prefixed
// framed noun messages, and the noun byte encoding (jam/cue in Urbit's
// own terminology) used both on the wire and, by package persist, for
// the on-disk snapshot record.
//
// The encoder is a recursive, type-driven walk in the same spirit as
// rlp.CountBytes/rlp.Encode: every value knows how to write itself and
// nothing is buffered twice. It departs from RLP's list/string shape
// because a noun has only two shapes (atom, cell) and needs DAG-sharing
// preservation RLP doesn't attempt — so cells already written are
// back-referenced by byte offset instead of re-encoded.
package newt

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/urbit-go/serf/arena"
	"github.com/urbit-go/serf/noun"
)

const (
	tagAtom    = 0
	tagCell    = 1
	tagBackref = 2
)

var errTruncated = errors.New("newt: truncated jam stream")
var errBadBackref = errors.New("newt: back-reference to unknown offset")

// Jam serializes n into a self-contained byte string. Cells reachable
// more than once from n are written once and referenced thereafter by
// the byte offset of their first occurrence, preserving the sharing
// noun.DeepCopy and noun.Mug also rely on.
func Jam(n noun.Noun) []byte {
	w := &jamWriter{seen: make(map[*noun.Cell]uint64)}
	w.write(n)
	return w.buf.Bytes()
}

type jamWriter struct {
	buf  bytes.Buffer
	seen map[*noun.Cell]uint64
}

func (w *jamWriter) write(n noun.Noun) {
	switch v := n.(type) {
	case noun.Atom:
		w.buf.WriteByte(tagAtom)
		b := v.Bytes()
		writeUvarint(&w.buf, uint64(len(b)))
		w.buf.Write(b)
	case *noun.Cell:
		if off, ok := w.seen[v]; ok {
			w.buf.WriteByte(tagBackref)
			writeUvarint(&w.buf, off)
			return
		}
		w.seen[v] = uint64(w.buf.Len())
		w.buf.WriteByte(tagCell)
		w.write(v.Head)
		w.write(v.Tail)
	default:
		panic("newt: jam of unknown noun type")
	}
}

// Cue decodes a byte string produced by Jam, allocating every cell on
// a. Nock nouns are acyclic, so a back-reference always names an
// offset whose cell has already finished decoding by the time it is
// referenced.
func Cue(data []byte, a arena.Allocator) (noun.Noun, error) {
	r := &jamReader{buf: data, built: make(map[uint64]*noun.Cell)}
	n, err := r.read(a)
	if err != nil {
		return nil, err
	}
	return n, nil
}

type jamReader struct {
	buf   []byte
	pos   int
	built map[uint64]*noun.Cell
}

func (r *jamReader) read(a arena.Allocator) (noun.Noun, error) {
	start := uint64(r.pos)
	if r.pos >= len(r.buf) {
		return nil, errTruncated
	}
	tag := r.buf[r.pos]
	r.pos++
	switch tag {
	case tagAtom:
		n, err := r.readUvarint()
		if err != nil {
			return nil, err
		}
		if r.pos+int(n) > len(r.buf) {
			return nil, errTruncated
		}
		b := r.buf[r.pos : r.pos+int(n)]
		r.pos += int(n)
		return noun.Indirect(b), nil
	case tagCell:
		cell := arena.New[noun.Cell](a)
		head, err := r.read(a)
		if err != nil {
			return nil, err
		}
		tail, err := r.read(a)
		if err != nil {
			return nil, err
		}
		cell.Head = head
		cell.Tail = tail
		r.built[start] = cell
		return cell, nil
	case tagBackref:
		off, err := r.readUvarint()
		if err != nil {
			return nil, err
		}
		cell, ok := r.built[off]
		if !ok {
			return nil, errBadBackref
		}
		return cell, nil
	default:
		return nil, errTruncated
	}
}

func (r *jamReader) readUvarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.pos:])
	if n <= 0 {
		return 0, errTruncated
	}
	r.pos += n
	return v, nil
}

func writeUvarint(w io.ByteWriter, v uint64) {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	for i := 0; i < n; i++ {
		w.WriteByte(buf[i])
	}
}
