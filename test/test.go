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

// Package test collects the small assertion helpers used by every other
// package's _test.go files, in place of a third-party assertion library.
package test

import (
	"fmt"
	"math"
	"reflect"
	"testing"
)

// isFailure mirrors the way the rest of the codebase treats a value as
// "success" or "failure": booleans are taken at face value; everything else
// is a failure only if it is a non-nil error.
func isFailure(v interface{}) bool {
	switch o := v.(type) {
	case bool:
		return !o
	case error:
		return o != nil
	case nil:
		return false
	default:
		return false
	}
}

// ExpectFailure fails the test unless v represents failure (false, or a
// non-nil error).
func ExpectFailure(t *testing.T, v interface{}) {
	t.Helper()
	if !isFailure(v) {
		t.Errorf("expected failure, got %v", v)
	}
}

// ExpectSuccess fails the test unless v represents success (true, nil, or a
// nil error).
func ExpectSuccess(t *testing.T, v interface{}) {
	t.Helper()
	if isFailure(v) {
		t.Errorf("expected success, got %v", v)
	}
}

// ExpectedFailure is an alias for ExpectFailure, matching the naming used in
// some of the corpus's older test files.
func ExpectedFailure(t *testing.T, v interface{}) {
	t.Helper()
	ExpectFailure(t, v)
}

// ExpectedSuccess is an alias for ExpectSuccess, matching the naming used in
// some of the corpus's older test files.
func ExpectedSuccess(t *testing.T, v interface{}) {
	t.Helper()
	ExpectSuccess(t, v)
}

// Equate fails the test unless a and b are deeply equal.
func Equate(t *testing.T, a, b interface{}) {
	t.Helper()
	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected %v (%T) to equal %v (%T)", a, a, b, b)
	}
}

// ExpectEquality is an alias for Equate.
func ExpectEquality(t *testing.T, a, b interface{}) {
	t.Helper()
	Equate(t, a, b)
}

// ExpectInequality fails the test if a and b are deeply equal.
func ExpectInequality(t *testing.T, a, b interface{}) {
	t.Helper()
	if reflect.DeepEqual(a, b) {
		t.Errorf("expected %v (%T) to not equal %v (%T)", a, a, b, b)
	}
}

// ExpectApproximate fails the test unless a and b are within tolerance of
// one another.
func ExpectApproximate(t *testing.T, a, b, tolerance float64) {
	t.Helper()
	if math.Abs(a-b) > tolerance {
		t.Errorf("expected %v to be within %v of %v", a, tolerance, b)
	}
}

// Writer is an io.Writer that accumulates everything written to it, for
// comparison against an expected string in tests that exercise something
// that writes to an io.Writer (the logger, the emitter, modalflag's help
// text).
type Writer struct {
	buf []byte
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// String returns everything written so far.
func (w *Writer) String() string {
	return string(w.buf)
}

// Compare reports whether everything written so far equals s.
func (w *Writer) Compare(s string) bool {
	return w.String() == s
}

// Reset clears the accumulated buffer.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

var _ fmt.Stringer = (*Writer)(nil)
