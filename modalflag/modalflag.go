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

// Package modalflag is a thin wrapper around the standard library's flag
// package. It adds a "-help" mode that renders flag defaults alongside an
// optional list of sub-modes, and tracks the positional arguments left over
// once flags (and, if registered, a leading sub-mode) have been consumed.
//
// lyn itself has no sub-modes (spec.md's CLI surface is flat: a list of
// input paths plus a handful of toggles) but AddSubModes is kept because it
// is part of the contract this package is grounded on, and because
// modalflag.Modes is also the natural place to add the one thing lyn's CLI
// needs that plain "flag" does not give it for free: paired toggle flags
// such as "-link"/"-nolink".
package modalflag

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// ParseResult is returned by Parse to say what the caller should do next.
type ParseResult int

const (
	// ParseContinue means argument parsing completed normally.
	ParseContinue ParseResult = iota

	// ParseHelp means help text was requested (and has already been
	// written to Output); the caller should exit without doing anything
	// else.
	ParseHelp
)

// Modes wraps a flag.FlagSet with help rendering, an optional leading
// sub-mode, and toggle-pair flags.
type Modes struct {
	// Output is where help text is written. Required.
	Output io.Writer

	fs        *flag.FlagSet
	args      []string
	remaining []string

	subModes []string
	mode     string

	toggles []func()
}

// NewArgs resets Modes for a new round of parsing over args.
func (md *Modes) NewArgs(args []string) {
	md.args = args
	md.fs = flag.NewFlagSet("", flag.ContinueOnError)
	md.fs.SetOutput(io.Discard)
	md.remaining = nil
	md.mode = ""
	md.toggles = nil
}

func (md *Modes) ensure() {
	if md.fs == nil {
		md.NewArgs(nil)
	}
}

// AddBool registers a plain boolean flag, returning a pointer to its value.
func (md *Modes) AddBool(name string, value bool, usage string) *bool {
	md.ensure()
	return md.fs.Bool(name, value, usage)
}

// AddString registers a plain string flag, returning a pointer to its
// value.
func (md *Modes) AddString(name string, value string, usage string) *string {
	md.ensure()
	return md.fs.String(name, value, usage)
}

// Var registers a flag.Value directly, for repeatable or otherwise
// non-primitive flags such as "-expect-sha1", which may be given more than
// once on the command line.
func (md *Modes) Var(value flag.Value, name string, usage string) {
	md.ensure()
	md.fs.Var(value, name, usage)
}

// AddToggle registers a pair of boolean flags, "-name" and "-noname", that
// together behave as a single three-way default: the returned pointer holds
// value until Parse() runs, at which point it is resolved to defaultValue
// unless one of the pair was given on the command line, in which case the
// pair's sense (on/off) wins. If both are given, "-noname" takes priority,
// matching the CLI's own "-raw" shortcut which only ever sets the negative
// form.
func (md *Modes) AddToggle(name string, defaultValue bool, usage string) *bool {
	md.ensure()

	pos := md.fs.Bool(name, defaultValue, usage)
	neg := md.fs.Bool("no"+name, false, "disable "+usage)

	result := new(bool)
	*result = defaultValue

	md.toggles = append(md.toggles, func() {
		if *neg {
			*result = false
			return
		}
		*result = *pos
	})

	return result
}

// AddSubModes registers the names of the program's sub-modes, the first of
// which is the default shown in help text. lyn itself registers none.
func (md *Modes) AddSubModes(modes ...string) {
	md.subModes = append(md.subModes, modes...)
}

// Mode returns the sub-mode selected by the leading positional argument, or
// the empty string if no sub-modes are registered or none was given.
func (md *Modes) Mode() string {
	return md.mode
}

// Path returns the sub-mode as a "/"-joined path, for programs with nested
// sub-modes. lyn has exactly zero or one level, so this is just Mode().
func (md *Modes) Path() string {
	if md.mode == "" {
		return ""
	}
	return md.mode
}

// RemainingArgs returns the positional arguments left over after flags (and
// any leading sub-mode) have been consumed.
func (md *Modes) RemainingArgs() []string {
	return md.remaining
}

// WasSet reports whether name was actually given on the command line, as
// opposed to merely holding its zero-value default. Must be called after
// Parse. For a toggle pair registered with AddToggle, callers check both
// name and "no"+name.
func (md *Modes) WasSet(name string) bool {
	found := false
	md.fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// Parse parses the arguments given to NewArgs.
func (md *Modes) Parse() (ParseResult, error) {
	md.ensure()

	err := md.fs.Parse(md.args)
	if err == flag.ErrHelp {
		md.help()
		return ParseHelp, nil
	}
	if err != nil {
		return ParseContinue, err
	}

	md.remaining = md.fs.Args()

	if len(md.subModes) > 0 && len(md.remaining) > 0 {
		md.mode = md.remaining[0]
		md.remaining = md.remaining[1:]
	}

	for _, resolve := range md.toggles {
		resolve()
	}

	return ParseContinue, nil
}

func (md *Modes) help() {
	hasFlags := false
	md.fs.VisitAll(func(*flag.Flag) { hasFlags = true })
	hasModes := len(md.subModes) > 0

	if !hasFlags && !hasModes {
		fmt.Fprint(md.Output, "No help available\n")
		return
	}

	fmt.Fprint(md.Output, "Usage:\n")

	if hasFlags {
		md.fs.SetOutput(md.Output)
		md.fs.PrintDefaults()
	}

	if hasFlags && hasModes {
		fmt.Fprint(md.Output, "\n")
	}

	if hasModes {
		fmt.Fprintf(md.Output, "  available sub-modes: %s\n", strings.Join(md.subModes, ", "))
		fmt.Fprintf(md.Output, "    default: %s\n", md.subModes[0])
	}
}
