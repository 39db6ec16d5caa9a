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

import "encoding/binary"

// packedHeader is the fixed-layout record the MetaSnapshot slot points
// at: six little-endian uint64 fields describing where the jammed arvo
// noun and the jammed cold table live in the arena, plus the event
// count and epoch a restart must resume from (spec.md §4.1, §4.4).
type packedHeader struct {
	Epoch       uint64
	EventNum    uint64
	ArvoOffset  uint64
	ArvoLength  uint64
	ColdOffset  uint64
	ColdLength  uint64
}

const packedHeaderSize = 6 * 8

func (h packedHeader) marshal() []byte {
	buf := make([]byte, packedHeaderSize)
	binary.LittleEndian.PutUint64(buf[0:8], h.Epoch)
	binary.LittleEndian.PutUint64(buf[8:16], h.EventNum)
	binary.LittleEndian.PutUint64(buf[16:24], h.ArvoOffset)
	binary.LittleEndian.PutUint64(buf[24:32], h.ArvoLength)
	binary.LittleEndian.PutUint64(buf[32:40], h.ColdOffset)
	binary.LittleEndian.PutUint64(buf[40:48], h.ColdLength)
	return buf
}

func unmarshalPacked(buf []byte) packedHeader {
	return packedHeader{
		Epoch:      binary.LittleEndian.Uint64(buf[0:8]),
		EventNum:   binary.LittleEndian.Uint64(buf[8:16]),
		ArvoOffset: binary.LittleEndian.Uint64(buf[16:24]),
		ArvoLength: binary.LittleEndian.Uint64(buf[24:32]),
		ColdOffset: binary.LittleEndian.Uint64(buf[32:40]),
		ColdLength: binary.LittleEndian.Uint64(buf[40:48]),
	}
}
