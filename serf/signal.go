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
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// Terminator is the interrupt flag shared by the dispatch loop and the
// SIGINT handler installed by WatchSIGINT, which is its only other
// writer. The flag is cleared before and after every event. The
// interpreter does not poll it: a raised flag does not stop an
// evaluation in progress; only the second SIGINT, which exits the
// process, does.
type Terminator struct {
	flag atomic.Bool
	hard atomic.Bool
}

// NewTerminator returns a cleared Terminator.
func NewTerminator() *Terminator {
	return &Terminator{}
}

// Set raises the interrupt flag.
func (t *Terminator) Set() {
	t.flag.Store(true)
}

// Clear lowers the interrupt flag. Called before and after every event.
func (t *Terminator) Clear() {
	t.flag.Store(false)
}

// Interrupted reports whether the flag is currently raised.
func (t *Terminator) Interrupted() bool {
	return t.flag.Load()
}

// SetHard records that an unconditional exit has been requested; the
// live %exit stub calls it. Dispatch does not consult this flag, so
// setting it does not end the process.
func (t *Terminator) SetHard() {
	t.hard.Store(true)
}

// Hard reports whether an unconditional exit has been requested.
func (t *Terminator) Hard() bool {
	return t.hard.Load()
}

// WatchSIGINT installs the two-strike SIGINT handler: the first signal
// sets the flag (see Terminator), the second calls exit directly. It
// returns a stop function that restores default signal handling.
func WatchSIGINT(t *Terminator) (stop func()) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT)
	done := make(chan struct{})
	go func() {
		strikes := 0
		for {
			select {
			case <-ch:
				strikes++
				if strikes == 1 {
					t.Set()
				} else {
					os.Exit(130)
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
