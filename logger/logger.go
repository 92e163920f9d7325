// This file is part of lyn.
//
// lyn is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// lyn is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with lyn.  If not, see <https://www.gnu.org/licenses/>.

// Package logger provides a capacity-bounded log of tagged diagnostic lines.
// Most call sites don't care about a particular *Logger instance and just
// want to leave a trail; for those, package-level Log/Logf append to a
// single default instance, dumped to stderr with -v only if the run
// succeeds. Code that wants an isolated, inspectable log (tests, mainly)
// creates its own with NewLogger.
//
// Permission gating lets a call site skip the cost of formatting a detail
// string when nothing would come of it.
package logger

import (
	"fmt"
	"io"
)

// Permission decides, at the point of a Log/Logf call, whether the line is
// worth recording at all.
type Permission interface {
	AllowLogging() bool
}

// alwaysAllow is the permission used when a call site has no finer-grained
// condition to apply.
type alwaysAllow struct{}

func (alwaysAllow) AllowLogging() bool { return true }

// Allow is the zero-condition Permission: always log.
var Allow Permission = alwaysAllow{}

// entry is one recorded line, kept pre-formatted so Tail() and Write() never
// need to re-derive the "tag: detail" text.
type entry string

// Logger is a capacity-bounded ring of log entries.
type Logger struct {
	capacity int
	entries  []entry
}

// NewLogger creates a Logger that retains at most capacity entries, oldest
// dropped first.
func NewLogger(capacity int) *Logger {
	return &Logger{capacity: capacity}
}

// Clear empties the log.
func (l *Logger) Clear() {
	l.entries = l.entries[:0]
}

func formatDetail(detail interface{}) string {
	switch d := detail.(type) {
	case string:
		return d
	case error:
		return d.Error()
	case fmt.Stringer:
		return d.String()
	default:
		return fmt.Sprintf("%v", d)
	}
}

// Log records tag and detail if permission allows it.
func (l *Logger) Log(permission Permission, tag string, detail interface{}) {
	if permission == nil || !permission.AllowLogging() {
		return
	}
	l.append(tag, formatDetail(detail))
}

// Logf is like Log but builds the detail string with a format string,
// matching fmt.Sprintf semantics.
func (l *Logger) Logf(permission Permission, tag string, format string, args ...interface{}) {
	if permission == nil || !permission.AllowLogging() {
		return
	}
	l.append(tag, fmt.Sprintf(format, args...))
}

func (l *Logger) append(tag, detail string) {
	e := entry(fmt.Sprintf("%s: %s", tag, detail))

	if l.capacity > 0 && len(l.entries) >= l.capacity {
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, e)
}

// Write writes every recorded entry to w, one per line.
func (l *Logger) Write(w io.Writer) {
	for _, e := range l.entries {
		fmt.Fprintf(w, "%s\n", e)
	}
}

// Tail writes the most recent n entries to w, one per line. Asking for more
// entries than exist is not an error; every entry is written.
func (l *Logger) Tail(w io.Writer, n int) {
	if n <= 0 {
		return
	}
	start := 0
	if n < len(l.entries) {
		start = len(l.entries) - n
	}
	for _, e := range l.entries[start:] {
		fmt.Fprintf(w, "%s\n", e)
	}
}

// std is the default Logger used by the package-level Log/Logf/Write/Tail
// functions.
var std = NewLogger(1000)

// Log records tag and detail to the default Logger.
func Log(tag string, detail interface{}) {
	std.Log(Allow, tag, detail)
}

// Logf is like Log but builds the detail string with a format string.
func Logf(tag string, format string, args ...interface{}) {
	std.Logf(Allow, tag, format, args...)
}

// Write writes every entry recorded on the default Logger to w.
func Write(w io.Writer) {
	std.Write(w)
}

// Tail writes the most recent n entries recorded on the default Logger to w.
func Tail(w io.Writer, n int) {
	std.Tail(w, n)
}

// Clear empties the default Logger, used between independent runs (tests
// mainly) that don't want to see each other's entries.
func Clear() {
	std.Clear()
}
