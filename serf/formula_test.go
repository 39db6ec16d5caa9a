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

package serf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/urbit-go/serf/nock"
	"github.com/urbit-go/serf/noun"
)

func TestSlamEchoesOvoThroughGate(t *testing.T) {
	c := newTestContext(t)
	core := echoCoreAtAxis(c, PokeAxis)
	ovo := noun.D(99)

	result, err := slam(c, PokeAxis, core, ovo)
	require.NoError(t, err)
	atom, ok := noun.AsAtom(result)
	require.True(t, ok)
	v, _ := atom.Uint64()
	require.Equal(t, uint64(99), v)
}

func TestSlamOnMissingAxisIsDeterministicError(t *testing.T) {
	c := newTestContext(t)
	a := c.Stack.Current()
	// No axis-PokeAxis arm at all: Slot itself fails inside op9.
	core := noun.D(5)

	_, err := slam(c, PokeAxis, core, noun.D(0))
	require.Error(t, err)
	var nockErr *nock.Error
	require.ErrorAs(t, err, &nockErr)
	require.Equal(t, nock.Deterministic, nockErr.Kind)
	_ = a
}

func TestScryFuncNilWithEmptyStack(t *testing.T) {
	c := newTestContext(t)
	require.Nil(t, c.scryFunc())
}

func TestScryFuncReturnsTopOfStack(t *testing.T) {
	c := newTestContext(t)
	c.ScryStack = append(c.ScryStack, noun.D(1), noun.D(2))
	fn := c.scryFunc()
	require.NotNil(t, fn)
	result, err := fn(noun.D(0))
	require.NoError(t, err)
	atom, ok := noun.AsAtom(result)
	require.True(t, ok)
	v, _ := atom.Uint64()
	require.Equal(t, uint64(2), v, "scryFunc must resolve from the top of the stack")
}
