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

// Package nock evaluates Nock formulas against a subject noun. It is one
// of the "external collaborators" this core treats as a black box at
// the specification level, but the dispatcher, formula builder and soft
// runner all need something behind that interface to exercise against,
// so this package provides a complete, direct (non-macro-expanded)
// implementation of the twelve standard opcodes plus the scry opcode
// ares and vere both ship as Nock 12.
//
// Dispatch is a flat switch rather than a jump table of closures —
// core/vm/jump_table.go's table-of-operations shape doesn't pay for
// itself at twelve fixed, never-extended opcodes, but the per-opcode
// separation of concerns (each case doing exactly one thing and
// delegating recursion back into eval) is lifted directly from how
// core/vm/instructions.go implements each EVM opcode as its own function
// rather than one monolithic interpreter loop.
package nock

import (
	"errors"
	"math/big"

	lru "github.com/hashicorp/golang-lru"
	"github.com/urbit-go/serf/arena"
	"github.com/urbit-go/serf/jets"
	"github.com/urbit-go/serf/noun"
)

// ScryFunc resolves a scry request (Nock opcode 12) issued during
// evaluation. A nil ScryFunc makes every scry attempt fail as
// ScryBlocked; a non-nil one that itself returns an error produces
// ScryCrashed.
type ScryFunc func(path noun.Noun) (noun.Noun, error)

// Context carries everything one Interpret call needs beyond the
// subject and formula: the allocator new cells are built on, the Warm
// jet table consulted on every arm invocation, and the scry callback
// for opcode 12. Callers construct one per event and may reuse it
// across many Interpret calls within that event.
type Context struct {
	Alloc arena.Allocator
	Warm  *jets.Warm
	Scry  ScryFunc

	// axisCache memoizes Slot lookups within a single Interpret call,
	// keyed by a (noun pointer, axis) composite. It is sized small and
	// reset per top-level Interpret call since nouns are reallocated
	// every event and a cache entry from a prior event's cells would
	// only ever miss.
	axisCache *lru.Cache
}

// NewContext builds a Context ready for repeated Interpret calls.
func NewContext(a arena.Allocator, warm *jets.Warm, scry ScryFunc) *Context {
	cache, _ := lru.New(1024)
	return &Context{Alloc: a, Warm: warm, Scry: scry, axisCache: cache}
}

// maxDepth bounds formula recursion. A legitimate Arvo formula never
// comes close to it; a formula that does is treated the same way a
// real runtime treats a stack overflow — as a non-deterministic
// resource crash rather than a provably-wrong program.
const maxDepth = 100000

var errBadOpcode = errors.New("nock: unrecognized opcode")
var errBadLoobean = errors.New("nock: if-test did not produce 0 or 1")

// Interpret evaluates formula against subject and returns the result,
// or an *Error describing why evaluation crashed.
func Interpret(ctx *Context, subject, formula noun.Noun) (result noun.Noun, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &Error{Kind: NonDeterministic, Trace: []Frame{{Note: "recovered panic during evaluation"}}}
		}
	}()
	if ctx.axisCache != nil {
		ctx.axisCache.Purge()
	}
	return eval(ctx, subject, formula, 0)
}

func eval(ctx *Context, subject, formula noun.Noun, depth int) (noun.Noun, error) {
	if depth > maxDepth {
		return nil, &Error{Kind: NonDeterministic, Trace: []Frame{{Note: "recursion depth exceeded"}}}
	}

	cell, ok := formula.(*noun.Cell)
	if !ok {
		return nil, wrapErr(0, "formula is a bare atom", errBadOpcode)
	}

	// A cell-headed formula, [[b c] d], evaluates both halves against
	// the subject and conses the results — Nock's autocons rule.
	if headCell, ok := cell.Head.(*noun.Cell); ok {
		left, err := eval(ctx, subject, headCell, depth+1)
		if err != nil {
			return nil, wrapErr(0, "autocons head", err)
		}
		right, err := eval(ctx, subject, cell.Tail, depth+1)
		if err != nil {
			return nil, wrapErr(0, "autocons tail", err)
		}
		return noun.NewCell(ctx.Alloc, left, right), nil
	}

	opAtom, ok := cell.Head.(noun.Atom)
	if !ok {
		return nil, wrapErr(0, "opcode slot is not an atom", errBadOpcode)
	}
	op, isDirect := opAtom.Uint64()
	if !isDirect || op > 12 {
		return nil, wrapErr(byte(op), "unrecognized opcode", errBadOpcode)
	}
	args := cell.Tail

	switch op {
	case 0: // axis lookup
		axis, err := wantAtom(args)
		if err != nil {
			return nil, wrapErr(0, "op0 axis", err)
		}
		v, ok := axis.Uint64()
		if !ok {
			return nil, wrapErr(0, "op0 axis too large", errBadOpcode)
		}
		res, err := slotCached(ctx, subject, v)
		if err != nil {
			return nil, wrapErr(0, "op0 slot", err)
		}
		return res, nil

	case 1: // quote
		return args, nil

	case 2: // evaluate
		b, c, err := wantPair(args)
		if err != nil {
			return nil, wrapErr(2, "op2 args", err)
		}
		newSubject, err := eval(ctx, subject, b, depth+1)
		if err != nil {
			return nil, wrapErr(2, "op2 subject formula", err)
		}
		newFormula, err := eval(ctx, subject, c, depth+1)
		if err != nil {
			return nil, wrapErr(2, "op2 result formula", err)
		}
		res, err := eval(ctx, newSubject, newFormula, depth+1)
		if err != nil {
			return nil, wrapErr(2, "op2 inner eval", err)
		}
		return res, nil

	case 3: // cell test
		v, err := eval(ctx, subject, args, depth+1)
		if err != nil {
			return nil, wrapErr(3, "op3 operand", err)
		}
		if _, isCell := v.(*noun.Cell); isCell {
			return noun.Direct(0), nil // 0 == yes
		}
		return noun.Direct(1), nil

	case 4: // increment
		v, err := eval(ctx, subject, args, depth+1)
		if err != nil {
			return nil, wrapErr(4, "op4 operand", err)
		}
		a, ok := noun.AsAtom(v)
		if !ok {
			return nil, wrapErr(4, "op4 operand is a cell", errBadOpcode)
		}
		return increment(a), nil

	case 5: // equality test
		b, c, err := wantPair(args)
		if err != nil {
			return nil, wrapErr(5, "op5 args", err)
		}
		lhs, err := eval(ctx, subject, b, depth+1)
		if err != nil {
			return nil, wrapErr(5, "op5 lhs", err)
		}
		rhs, err := eval(ctx, subject, c, depth+1)
		if err != nil {
			return nil, wrapErr(5, "op5 rhs", err)
		}
		if nounEqual(lhs, rhs) {
			return noun.Direct(0), nil
		}
		return noun.Direct(1), nil

	case 6: // if
		return evalIf(ctx, subject, args, depth)

	case 7: // compose
		b, c, err := wantPair(args)
		if err != nil {
			return nil, wrapErr(7, "op7 args", err)
		}
		mid, err := eval(ctx, subject, b, depth+1)
		if err != nil {
			return nil, wrapErr(7, "op7 first stage", err)
		}
		res, err := eval(ctx, mid, c, depth+1)
		if err != nil {
			return nil, wrapErr(7, "op7 second stage", err)
		}
		return res, nil

	case 8: // push
		b, c, err := wantPair(args)
		if err != nil {
			return nil, wrapErr(8, "op8 args", err)
		}
		pushed, err := eval(ctx, subject, b, depth+1)
		if err != nil {
			return nil, wrapErr(8, "op8 pushed value", err)
		}
		newSubject := noun.NewCell(ctx.Alloc, pushed, subject)
		res, err := eval(ctx, newSubject, c, depth+1)
		if err != nil {
			return nil, wrapErr(8, "op8 body", err)
		}
		return res, nil

	case 9: // invoke arm
		return evalInvoke(ctx, subject, args, depth)

	case 10: // edit or hint
		return evalEditOrHint(ctx, subject, args, depth)

	case 11: // hint
		return evalHint(ctx, subject, args, depth)

	case 12: // scry
		return evalScry(ctx, subject, args, depth)

	default:
		return nil, wrapErr(byte(op), "unrecognized opcode", errBadOpcode)
	}
}

func evalIf(ctx *Context, subject, args noun.Noun, depth int) (noun.Noun, error) {
	cell, ok := args.(*noun.Cell)
	if !ok {
		return nil, wrapErr(6, "op6 args", errBadOpcode)
	}
	b := cell.Head
	rest, ok := cell.Tail.(*noun.Cell)
	if !ok {
		return nil, wrapErr(6, "op6 missing branches", errBadOpcode)
	}
	c, d := rest.Head, rest.Tail

	test, err := eval(ctx, subject, b, depth+1)
	if err != nil {
		return nil, wrapErr(6, "op6 test", err)
	}
	a, ok := noun.AsAtom(test)
	if !ok {
		return nil, wrapErr(6, "op6 test produced a cell", errBadLoobean)
	}
	v, direct := a.Uint64()
	if !direct || v > 1 {
		return nil, wrapErr(6, "op6 test out of range", errBadLoobean)
	}
	branch := c
	if v == 1 {
		branch = d
	}
	res, err := eval(ctx, subject, branch, depth+1)
	if err != nil {
		return nil, wrapErr(6, "op6 branch", err)
	}
	return res, nil
}

func evalInvoke(ctx *Context, subject, args noun.Noun, depth int) (noun.Noun, error) {
	b, c, err := wantPair(args)
	if err != nil {
		return nil, wrapErr(9, "op9 args", err)
	}
	axis, ok := noun.AsAtom(b)
	if !ok {
		return nil, wrapErr(9, "op9 axis is a cell", errBadOpcode)
	}
	axisVal, direct := axis.Uint64()
	if !direct {
		return nil, wrapErr(9, "op9 axis too large", errBadOpcode)
	}

	core, err := eval(ctx, subject, c, depth+1)
	if err != nil {
		return nil, wrapErr(9, "op9 core", err)
	}

	if ctx.Warm != nil {
		if battery, berr := noun.Slot(core, 2); berr == nil {
			if sample, serr := noun.Slot(core, 6); serr == nil {
				mug := noun.Mug(battery)
				if entry, ok := ctx.Warm.Lookup(mug); ok {
					if out, jetErr := entry.Run(sample); jetErr == nil {
						return out, nil
					}
					// Fall through to the slow path: a jet mismatch is a
					// jet bug, not a program crash.
				}
			}
		}
	}

	armFormula, err := noun.Slot(core, axisVal)
	if err != nil {
		return nil, wrapErr(9, "op9 arm lookup", err)
	}
	res, err := eval(ctx, core, armFormula, depth+1)
	if err != nil {
		return nil, wrapErr(9, "op9 arm body", err)
	}
	return res, nil
}

func evalEditOrHint(ctx *Context, subject, args noun.Noun, depth int) (noun.Noun, error) {
	cell, ok := args.(*noun.Cell)
	if !ok {
		return nil, wrapErr(10, "op10 args", errBadOpcode)
	}
	bc, ok := cell.Head.(*noun.Cell)
	if !ok {
		// Plain hint form: *[a 10 b c] = *[a c].
		res, err := eval(ctx, subject, cell.Tail, depth+1)
		if err != nil {
			return nil, wrapErr(10, "op10 hint body", err)
		}
		return res, nil
	}
	axisAtom, ok := bc.Head.(noun.Atom)
	if !ok {
		return nil, wrapErr(10, "op10 edit axis", errBadOpcode)
	}
	axisVal, direct := axisAtom.Uint64()
	if !direct {
		return nil, wrapErr(10, "op10 edit axis too large", errBadOpcode)
	}
	value, err := eval(ctx, subject, bc.Tail, depth+1)
	if err != nil {
		return nil, wrapErr(10, "op10 edit value", err)
	}
	tree, err := eval(ctx, subject, cell.Tail, depth+1)
	if err != nil {
		return nil, wrapErr(10, "op10 edit target", err)
	}
	res, err := noun.Edit(ctx.Alloc, axisVal, value, tree)
	if err != nil {
		return nil, wrapErr(10, "op10 edit", err)
	}
	return res, nil
}

func evalHint(ctx *Context, subject, args noun.Noun, depth int) (noun.Noun, error) {
	cell, ok := args.(*noun.Cell)
	if !ok {
		return nil, wrapErr(11, "op11 args", errBadOpcode)
	}
	bc, isPair := cell.Head.(*noun.Cell)
	if !isPair {
		// *[a 11 b c] = *[a c]; b is a bare tag with no payload formula.
		res, err := eval(ctx, subject, cell.Tail, depth+1)
		if err != nil {
			return nil, wrapErr(11, "op11 body", err)
		}
		return res, nil
	}
	// *[a 11 [b c] d] = *[a d], after evaluating c for its side effect
	// (tracing, jet registration hints and the like — none of which this
	// core's hints currently drive).
	if _, err := eval(ctx, subject, bc.Tail, depth+1); err != nil {
		return nil, wrapErr(11, "op11 hint payload", err)
	}
	res, err := eval(ctx, subject, cell.Tail, depth+1)
	if err != nil {
		return nil, wrapErr(11, "op11 body", err)
	}
	return res, nil
}

func evalScry(ctx *Context, subject, args noun.Noun, depth int) (noun.Noun, error) {
	path, err := eval(ctx, subject, args, depth+1)
	if err != nil {
		return nil, wrapErr(12, "op12 path", err)
	}
	if ctx.Scry == nil {
		return nil, &Error{Kind: ScryBlocked, Path: path}
	}
	res, scryErr := ctx.Scry(path)
	if scryErr != nil {
		return nil, &Error{Kind: ScryCrashed, Path: path}
	}
	return res, nil
}

func increment(a noun.Atom) noun.Noun {
	if v, ok := a.Uint64(); ok && v < ^uint64(0) {
		return noun.Direct(v + 1)
	}
	big := a.BigInt()
	big.Add(big, bigOne)
	return noun.FromBigInt(big)
}

var bigOne = big.NewInt(1)

// axisKey is only ever built from a *noun.Cell subject: a bare-atom
// subject can only satisfy axis 1, not worth caching, and an Atom's
// []byte field makes it an unsafe, possibly-unhashable map key.
type axisKey struct {
	subject *noun.Cell
	axis    uint64
}

// slotCached wraps noun.Slot with the per-Context LRU, skipping the
// cache entirely for bare-atom subjects.
func slotCached(ctx *Context, subject noun.Noun, axis uint64) (noun.Noun, error) {
	sc, isCell := subject.(*noun.Cell)
	if !isCell || ctx.axisCache == nil {
		return noun.Slot(subject, axis)
	}
	key := axisKey{sc, axis}
	if cached, ok := ctx.axisCache.Get(key); ok {
		return cached.(noun.Noun), nil
	}
	res, err := noun.Slot(subject, axis)
	if err != nil {
		return nil, err
	}
	ctx.axisCache.Add(key, res)
	return res, nil
}

func wantAtom(n noun.Noun) (noun.Atom, error) {
	a, ok := noun.AsAtom(n)
	if !ok {
		return noun.Atom{}, errBadOpcode
	}
	return a, nil
}

func wantPair(n noun.Noun) (noun.Noun, noun.Noun, error) {
	c, ok := n.(*noun.Cell)
	if !ok {
		return nil, nil, errBadOpcode
	}
	return c.Head, c.Tail, nil
}

func nounEqual(a, b noun.Noun) bool {
	if aa, ok := noun.AsAtom(a); ok {
		ba, ok := noun.AsAtom(b)
		return ok && aa.Eq(ba)
	}
	ac, ok := a.(*noun.Cell)
	if !ok {
		return false
	}
	bc, ok := b.(*noun.Cell)
	if !ok {
		return false
	}
	if noun.Mug(ac) != noun.Mug(bc) {
		return false
	}
	return nounEqual(ac.Head, bc.Head) && nounEqual(ac.Tail, bc.Tail)
}

func wrapErr(op byte, note string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e.push(Frame{Op: op, Note: note})
	}
	return &Error{Kind: Deterministic, Trace: []Frame{{Op: op, Note: note}}}
}
