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

	"github.com/urbit-go/serf/arena"
	"github.com/urbit-go/serf/noun"
)

// Mook renders a crash into a tang — a Nock list of cord lines — the
// format Arvo's own error-printer expects and the shape the dispatcher
// wraps into a goof (`[%exit tang]`, spec.md §4.5). Each trace frame
// becomes one line, innermost (closest to the crash) first.
func Mook(a arena.Allocator, err *Error) noun.Noun {
	lines := make([]string, 0, len(err.Trace)+1)
	lines = append(lines, fmt.Sprintf("crash: %s", err.Kind))
	for _, f := range err.Trace {
		if f.Op == 0 && f.Note == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("op%d: %s", f.Op, f.Note))
	}
	if err.Path != nil {
		lines = append(lines, fmt.Sprintf("path: %s", noun.Dump(err.Path)))
	}

	var tail noun.Noun = noun.Direct(0)
	for i := len(lines) - 1; i >= 0; i-- {
		tail = noun.NewCell(a, cordToAtom(lines[i]), tail)
	}
	return tail
}

func cordToAtom(s string) noun.Noun {
	return noun.Indirect([]byte(s))
}
