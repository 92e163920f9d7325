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

package main

import (
	"io"
	"os"
	"strings"
	"testing"
)

func pipePair(t *testing.T) (*os.File, *os.File, func() string) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %s", err)
	}
	return r, w, func() string {
		w.Close()
		b, _ := io.ReadAll(r)
		return string(b)
	}
}

func TestRunHelp(t *testing.T) {
	outR, outW, readOut := pipePair(t)
	errR, errW, readErr := pipePair(t)
	defer outR.Close()
	defer errR.Close()

	err := run([]string{"-help"}, outW, errW)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	readOut()
	if !strings.Contains(readErr(), "Usage:") {
		t.Fatalf("expected help text on stderr")
	}
}

func TestRunRequiresAnInputPath(t *testing.T) {
	outR, outW, readOut := pipePair(t)
	errR, errW, readErr := pipePair(t)
	defer outR.Close()
	defer errR.Close()

	err := run([]string{}, outW, errW)
	readOut()
	readErr()
	if err == nil {
		t.Fatalf("expected an error when no input paths are given")
	}
	if !strings.Contains(err.Error(), "input") {
		t.Fatalf("expected an error mentioning the missing input, got: %s", err)
	}
}

func TestSHA1ExpectationsForPath(t *testing.T) {
	var f sha1Expectations
	f.Set("patch.o:deadbeef")
	f.Set("base.o:cafef00d")

	if got := f.forPath("patch.o"); got != "patch.o:deadbeef" {
		t.Fatalf("forPath(patch.o) = %q", got)
	}
	if got := f.forPath("missing.o"); got != "" {
		t.Fatalf("forPath(missing.o) = %q, want empty", got)
	}
}
