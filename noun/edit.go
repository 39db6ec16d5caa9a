// Copyright 2020 The go-ethereum Authors
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

package noun

import "github.com/urbit-go/serf/arena"

// Edit replaces the sub-tree of tree at axis with value, reusing every
// sibling sub-tree untouched. It is the noun-level primitive behind
// Nock opcode 10's edit form, peeling one bit of axis per recursive step
// the same way Slot does.
func Edit(a arena.Allocator, axis uint64, value, tree Noun) (Noun, error) {
	if axis == 0 {
		return nil, ErrBadAxis
	}
	if axis == 1 {
		return value, nil
	}
	sibling, err := Slot(tree, axis^1)
	if err != nil {
		return nil, err
	}
	var merged Noun
	if axis%2 == 0 {
		merged = NewCell(a, value, sibling)
	} else {
		merged = NewCell(a, sibling, value)
	}
	return Edit(a, axis/2, merged, tree)
}
