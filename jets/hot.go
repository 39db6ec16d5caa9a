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

package jets

import (
	"strings"

	"github.com/urbit-go/serf/noun"
)

// Jet is a native Go implementation of a Nock gate, taking the sample
// noun extracted at the gate's axis and returning the would-be Nock
// result. It exists purely as a performance escape hatch: if absent,
// the interpreter still produces the right answer by evaluating the
// gate's formula directly.
type Jet func(sample noun.Noun) (noun.Noun, error)

// Entry pairs a jet's label with its implementation, the unit the
// compiled-in Hot table is built from.
type Entry struct {
	Label Label
	Run   Jet
}

// Hot is the compiled-in, per-process jet table. Unlike Cold (persisted)
// and Warm (rebuilt from Cold+Hot every boot), Hot's contents are fixed
// at build time — this mirrors params/eips.go's pattern of a constant
// table of named patches applied to a jump table, except the entries
// here are jets rather than opcode/gas overrides.
type Hot struct {
	byLabel map[string]Entry
}

func labelKey(l Label) string {
	return strings.Join(l, "/")
}

// InitHot builds a Hot table from a caller-supplied constant list of
// entries (see DefaultHotState for the table this core ships with).
func InitHot(entries []Entry) *Hot {
	h := &Hot{byLabel: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		h.byLabel[labelKey(e.Label)] = e
	}
	return h
}

// Lookup returns the compiled-in entry for label, if this binary ships
// a jet for it.
func (h *Hot) Lookup(label Label) (Entry, bool) {
	e, ok := h.byLabel[labelKey(label)]
	return e, ok
}

// Len reports how many jets this binary ships.
func (h *Hot) Len() int {
	return len(h.byLabel)
}

// DefaultHotState is the compiled-in jet table this serf ships with. Real
// Arvo kernels register hundreds of jets under the standard library and
// each vane; this core's responsibility ends at providing the registry,
// so the default table carries only the handful of arithmetic jets
// exercised by its own tests.
var DefaultHotState = []Entry{
	{Label: Label{"k", "dec"}, Run: jetDec},
	{Label: Label{"k", "add"}, Run: jetAdd},
}

func jetDec(sample noun.Noun) (noun.Noun, error) {
	a, ok := noun.AsAtom(sample)
	if !ok {
		return nil, errJetSampleShape
	}
	v, ok := a.Uint64()
	if !ok || v == 0 {
		return dec(a), nil
	}
	return noun.Direct(v - 1), nil
}

func dec(a noun.Atom) noun.Noun {
	big := a.BigInt()
	big.Sub(big, bigOne)
	return noun.FromBigInt(big)
}

func jetAdd(sample noun.Noun) (noun.Noun, error) {
	cell, ok := noun.AsCell(sample)
	if !ok {
		return nil, errJetSampleShape
	}
	a, aok := noun.AsAtom(cell.Head)
	b, bok := noun.AsAtom(cell.Tail)
	if !aok || !bok {
		return nil, errJetSampleShape
	}
	av, aDirect := a.Uint64()
	bv, bDirect := b.Uint64()
	if aDirect && bDirect && av <= ^uint64(0)-bv {
		return noun.Direct(av + bv), nil
	}
	sum := a.BigInt()
	sum.Add(sum, b.BigInt())
	return noun.FromBigInt(sum), nil
}
