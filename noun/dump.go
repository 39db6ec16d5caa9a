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

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// Dump renders n as a bounded-depth tree, for error messages and tang
// lines (nock.Error, nock.Mook). It is a debug aid, not a codec — compare
// core/state/dump.go's JSON account dump in the teacher, which exists
// purely to let an operator eyeball state without decoding RLP by hand.
func Dump(n Noun) string {
	var b strings.Builder
	dump(&b, n, 0, 6)
	return b.String()
}

func dump(b *strings.Builder, n Noun, depth, maxDepth int) {
	indent := strings.Repeat("  ", depth)
	if depth >= maxDepth {
		fmt.Fprintf(b, "%s...\n", indent)
		return
	}
	switch v := n.(type) {
	case Atom:
		if dv, ok := v.Uint64(); ok {
			fmt.Fprintf(b, "%s%d\n", indent, dv)
		} else {
			fmt.Fprintf(b, "%s%s\n", indent, spew.Sdump(v.Bytes()))
		}
	case *Cell:
		fmt.Fprintf(b, "%s[\n", indent)
		dump(b, v.Head, depth+1, maxDepth)
		dump(b, v.Tail, depth+1, maxDepth)
		fmt.Fprintf(b, "%s]\n", indent)
	default:
		fmt.Fprintf(b, "%s<unknown noun>\n", indent)
	}
}
