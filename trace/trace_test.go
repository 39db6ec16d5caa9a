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

package trace

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/require"
)

func TestFlushWritesCompressedFramedBlock(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)
	now := time.Unix(0, 0)
	s.Begin(WorkName("talk", "poke"), now)
	s.End(WorkName("talk", "poke"), now)
	require.NoError(t, s.Flush())
	require.NotZero(t, buf.Len())

	n := binary.LittleEndian.Uint64(buf.Bytes()[:8])
	raw, err := snappy.Decode(nil, buf.Bytes()[8:8+n])
	require.NoError(t, err)
	require.Contains(t, string(raw), "work [talk poke]")
}

func TestFlushWithNoPendingEventsIsNoop(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)
	require.NoError(t, s.Flush())
	require.Zero(t, buf.Len())
}

func TestPlayNameFormat(t *testing.T) {
	require.Equal(t, "play [3]", PlayName(3))
}

func TestWorkNameTruncatesInvalidUTF8(t *testing.T) {
	bad := "wire\xff\xfeend"
	require.Equal(t, "work [wire tag]", WorkName(bad, "tag"))
}
