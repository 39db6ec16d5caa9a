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

// Package log is a small leveled, component-tagged logger in the shape
// of the teacher's own top-level log package: plain key/value pairs,
// color when the output is a terminal, and a call-site frame captured
// with go-stack/stack for anything at warn level or above.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level is a logging severity, lowest to highest.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "EROR"
	default:
		return "????"
	}
}

var levelColor = map[Level]*color.Color{
	LevelDebug: color.New(color.FgHiBlack),
	LevelInfo:  color.New(color.FgGreen),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed, color.Bold),
}

// Logger writes leveled, component-tagged lines to an underlying
// writer. The zero value is not usable; construct with New.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
	min      Level
	ctx      []string // component name stack, e.g. []string{"serf", "dispatch"}
}

// New builds a Logger writing to w, tagged with component ctx...
// (e.g. New(os.Stderr, "serf")). Color is enabled automatically when w
// is a terminal, matching the teacher's StreamHandler heuristic.
func New(w io.Writer, ctx ...string) *Logger {
	colorize := false
	out := w
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		out = colorable.NewColorable(f)
		colorize = true
	}
	return &Logger{out: out, colorize: colorize, min: LevelInfo, ctx: ctx}
}

// SetLevel changes the minimum level this logger emits.
func (l *Logger) SetLevel(lvl Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.min = lvl
}

// With returns a child logger with extra context appended, without
// affecting the parent's level or destination.
func (l *Logger) With(ctx ...string) *Logger {
	return &Logger{out: l.out, colorize: l.colorize, min: l.min, ctx: append(append([]string{}, l.ctx...), ctx...)}
}

func (l *Logger) log(lvl Level, msg string, kv []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lvl < l.min {
		return
	}
	ts := time.Now().Format("01-02|15:04:05.000")
	tag := lvl.String()
	if l.colorize {
		tag = levelColor[lvl].Sprint(tag)
	}
	line := fmt.Sprintf("%s[%s] %s", ts, tag, msg)
	if len(l.ctx) > 0 {
		line += " ctx=" + fmt.Sprint(l.ctx)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		line += fmt.Sprintf(" %v=%v", kv[i], kv[i+1])
	}
	if lvl >= LevelWarn {
		frame := stack.Caller(2)
		line += fmt.Sprintf(" caller=%+v", frame)
	}
	fmt.Fprintln(l.out, line)
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.log(LevelDebug, msg, kv) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.log(LevelInfo, msg, kv) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.log(LevelWarn, msg, kv) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.log(LevelError, msg, kv) }

// Root is the default logger used by packages that don't carry their
// own Logger reference (e.g. package-level init diagnostics).
var Root = New(os.Stderr)
