// Copyright 2014 The go-ethereum Authors
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

package nock

import (
	"fmt"

	"github.com/urbit-go/serf/noun"
)

// Kind distinguishes the four ways a Nock evaluation can fail, matching
// spec.md §9's taxonomy. Only Deterministic and NonDeterministic are
// handled by the serf core (they become goofs); ScryBlocked and
// ScryCrashed are programmer errors at this layer and are fatal.
type Kind int

const (
	Deterministic Kind = iota
	NonDeterministic
	ScryBlocked
	ScryCrashed
)

func (k Kind) String() string {
	switch k {
	case Deterministic:
		return "deterministic"
	case NonDeterministic:
		return "non-deterministic"
	case ScryBlocked:
		return "scry-blocked"
	case ScryCrashed:
		return "scry-crashed"
	default:
		return "unknown"
	}
}

// Frame is one entry of the crash trace collected while an evaluation
// unwinds, the raw material mook.go renders into a tang.
type Frame struct {
	Op   byte
	Note string
}

// Error is returned by Interpret on any Nock failure. It satisfies the
// standard error interface and additionally exposes the trace needed to
// build a goof (spec.md §4.5).
type Error struct {
	Kind  Kind
	Trace []Frame
	Path  noun.Noun // set for ScryBlocked/ScryCrashed
}

func (e *Error) Error() string {
	if e.Path != nil {
		return fmt.Sprintf("nock: %s at %v", e.Kind, noun.Dump(e.Path))
	}
	return fmt.Sprintf("nock: %s crash (%d frames)", e.Kind, len(e.Trace))
}

// maxTraceDepth bounds how many frames Error.Trace retains; deeper
// recursion simply stops appending frames once the cap is hit, so the
// outermost frames are the ones dropped.
const maxTraceDepth = 24

func (e *Error) push(f Frame) *Error {
	if len(e.Trace) >= maxTraceDepth {
		return e
	}
	e.Trace = append(e.Trace, f)
	return e
}
