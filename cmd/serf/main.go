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

// Command serf is the king-facing worker process: it is spawned with a
// pier path and a flag bitmap, speaks the newt protocol over stdin and
// stdout, and runs until the king closes the pipe or a fatal error
// forces an early exit.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"

	"github.com/urbit-go/serf/internal/log"
	"github.com/urbit-go/serf/jets"
	"github.com/urbit-go/serf/migration"
	"github.com/urbit-go/serf/newt"
	"github.com/urbit-go/serf/noun"
	"github.com/urbit-go/serf/persist"
	"github.com/urbit-go/serf/serf"
	"github.com/urbit-go/serf/trace"
)

// flagTrace is bit 8 of the flag-bitmap positional argument: set it to
// enable JSON event tracing to a file under the pier.
const flagTrace = 0x100

func main() {
	app := cli.NewApp()
	app.Name = "serf"
	app.Usage = "king-serf event loop worker"
	app.Action = runServe
	app.Commands = []cli.Command{
		{
			Name:   "dump",
			Usage:  "inspect a pier's persistent snapshot without running it",
			Action: runDump,
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "v", Usage: "print the full cold jet table"},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "serf:", err)
		os.Exit(1)
	}
}

// runServe implements `serf <pier-path> <unused> <flag-bitmap>`: open
// the pier's persistent arena, run any pending migration, assemble a
// Context wired to stdin/stdout, and dispatch until the king closes the
// pipe or a fatal error occurs.
func runServe(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) < 3 {
		return fmt.Errorf("usage: serf <pier-path> <unused> <flag-bitmap>")
	}
	pier := args[0]
	bitmap, err := strconv.ParseUint(args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("serf: malformed flag-bitmap %q: %w", args[2], err)
	}

	chkDir := filepath.Join(pier, ".urb", "chk")
	if err := os.MkdirAll(chkDir, 0o755); err != nil {
		return fmt.Errorf("serf: creating pier arena directory: %w", err)
	}

	logger := log.New(os.Stderr, "serf")
	if err := migration.Hook(pier, logger); err != nil {
		return fmt.Errorf("serf: migration: %w", err)
	}

	mgr, err := persist.Open(filepath.Join(chkDir, "serf.pma"))
	if err != nil {
		return fmt.Errorf("serf: opening persistent arena: %w", err)
	}
	defer mgr.Close()

	hot := jets.InitHot(jets.DefaultHotState)
	port := newt.NewPort(os.Stdin, os.Stdout)

	c, err := serf.New(mgr, port, hot, logger)
	if err != nil {
		return fmt.Errorf("serf: initializing context: %w", err)
	}

	if bitmap&flagTrace != 0 {
		sink, closeTrace, err := openTraceSink(pier)
		if err != nil {
			return fmt.Errorf("serf: opening trace file: %w", err)
		}
		defer closeTrace()
		c.Trace = sink
	}

	stop := serf.WatchSIGINT(c.Term)
	defer stop()

	if err := c.Port.Ripe(c.Stack.Current(), c.EventNum, c.Mug); err != nil {
		return fmt.Errorf("serf: announcing ripe state: %w", err)
	}

	if err := serf.Dispatch(c); err != nil {
		return err
	}
	if c.Trace != nil {
		return c.Trace.Flush()
	}
	return nil
}

// openTraceSink opens the pier's trace file, creating its parent
// directory if necessary, and returns a Sink wrapping it plus a closer
// the caller must defer.
func openTraceSink(pier string) (*trace.Sink, func() error, error) {
	putDir := filepath.Join(pier, ".urb", "put")
	if err := os.MkdirAll(putDir, 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(putDir, "serf.trace"), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return trace.New(f), f.Close, nil
}

// runDump is the read-only pier inspector: it opens the persistent
// arena, loads the snapshot, and reports the committed event number,
// mug, and cold jet table size, without ever calling Manager.Save.
func runDump(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) < 1 {
		return fmt.Errorf("usage: serf dump <pier-path>")
	}
	pier := args[0]

	mgr, err := persist.Open(filepath.Join(pier, ".urb", "chk", "serf.pma"))
	if err != nil {
		return fmt.Errorf("serf dump: opening persistent arena: %w", err)
	}
	defer mgr.Close()

	snap, err := mgr.Load()
	if err != nil {
		return fmt.Errorf("serf dump: loading snapshot: %w", err)
	}

	fmt.Printf("epoch:       %d\n", snap.Epoch)
	fmt.Printf("event-num:   %d\n", snap.EventNum)
	fmt.Printf("mug:         %d\n", noun.Mug(snap.Arvo))
	fmt.Printf("cold-jets:   %d\n", snap.Cold.Len())

	if ctx.Bool("v") {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"battery mug", "jet label"})
		for _, entry := range snap.Cold.Entries() {
			table.Append([]string{strconv.FormatUint(uint64(entry.Mug), 10), fmt.Sprint([]string(entry.Label))})
		}
		table.Render()
	}
	return nil
}
