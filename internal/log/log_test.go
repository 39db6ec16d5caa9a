// Copyright 2016 The go-ethereum Authors
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

package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultLevelSuppressesDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "test")
	l.Debug("should not appear")
	require.Empty(t, buf.String())
}

func TestInfoAndAboveAreEmitted(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "test")
	l.Info("hello", "k", "v")
	out := buf.String()
	require.Contains(t, out, "INFO")
	require.Contains(t, out, "hello")
	require.Contains(t, out, "k=v")
	require.Contains(t, out, "ctx=[test]")
}

func TestSetLevelLowersThreshold(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "test")
	l.SetLevel(LevelDebug)
	l.Debug("now visible")
	require.Contains(t, buf.String(), "now visible")
}

func TestWithAppendsContextWithoutMutatingParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(&buf, "serf")
	child := parent.With("dispatch")
	require.Equal(t, []string{"serf"}, parent.ctx)
	require.Equal(t, []string{"serf", "dispatch"}, child.ctx)
}

func TestWarnIncludesCallerFrame(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "test")
	l.Warn("careful")
	require.Contains(t, buf.String(), "caller=")
}

func TestErrorLineIncludesAllKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "test")
	l.Error("boom", "a", 1, "b", 2)
	out := buf.String()
	require.True(t, strings.Contains(out, "a=1") && strings.Contains(out, "b=2"))
}
