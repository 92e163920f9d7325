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

// Command lyn turns one or more relocatable ARM32 ELF object files into an
// Event Assembler script. See SPEC_FULL.md for the full CLI surface.
package main

import (
	"bufio"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/jetsetilly/lyn/config"
	"github.com/jetsetilly/lyn/elfimage"
	"github.com/jetsetilly/lyn/elfinput"
	"github.com/jetsetilly/lyn/errors"
	"github.com/jetsetilly/lyn/eventcode"
	"github.com/jetsetilly/lyn/link"
	"github.com/jetsetilly/lyn/logger"
	"github.com/jetsetilly/lyn/modalflag"
	"github.com/jetsetilly/lyn/paths"
)

var colorError = color.New(color.FgRed, color.Bold)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		colorError.Fprintf(os.Stderr, "[lyn] ERROR: %s\n", err)
		os.Exit(1)
	}
}

// sha1Expectations collects repeated "-expect-sha1=path:hex" values.
type sha1Expectations []string

func (f *sha1Expectations) String() string { return strings.Join(*f, ",") }

func (f *sha1Expectations) Set(value string) error {
	*f = append(*f, value)
	return nil
}

// forPath returns the expectation whose path half matches p, or the empty
// string if none was given. elfinput.NewLoader already ignores a
// non-matching one, so this just saves handing it the whole list.
func (f sha1Expectations) forPath(p string) string {
	for _, e := range f {
		path, _, ok := strings.Cut(e, ":")
		if ok && path == p {
			return e
		}
	}
	return ""
}

func run(args []string, stdout, stderr *os.File) error {
	md := &modalflag.Modes{Output: stderr}
	md.NewArgs(args)

	linkEnabled := md.AddToggle("link", true, "resolve relative and absolute relocations where possible")
	longcalls := md.AddToggle("longcalls", false, "insert Thumb-to-ARM veneers for cross-anchor call targets")
	hook := md.AddToggle("hook", true, "emit hook redirects for symbols matching reference absolutes")
	temp := md.AddToggle("temp", false, "keep unused local symbols visible in the output")
	raw := md.AddBool("raw", false, "shortcut for -nolink -nolongcalls -nohook")
	verbose := md.AddBool("v", false, "dump the diagnostic log to stderr after a successful run")

	defaultConfig, err := paths.ResourcePath("", "lyn.yml")
	if err != nil {
		return err
	}
	configPath := md.AddString("config", defaultConfig, "load CLI defaults and reference paths from this YAML file")

	var expectSHA1 sha1Expectations
	md.Var(&expectSHA1, "expect-sha1", "verify an input's SHA-1 hash, given as path:hexdigest (repeatable)")

	pr, err := md.Parse()
	if err != nil {
		return err
	}
	if pr == modalflag.ParseHelp {
		return nil
	}

	if *raw {
		*linkEnabled = false
		*longcalls = false
		*hook = false
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	config.ApplyIfUnset(linkEnabled, *raw || md.WasSet("link") || md.WasSet("nolink"), cfg.Link)
	config.ApplyIfUnset(longcalls, *raw || md.WasSet("longcalls") || md.WasSet("nolongcalls"), cfg.LongCalls)
	config.ApplyIfUnset(hook, *raw || md.WasSet("hook") || md.WasSet("nohook"), cfg.Hook)
	config.ApplyIfUnset(temp, md.WasSet("temp") || md.WasSet("notemp"), cfg.Temp)

	inputPaths := append(append([]string{}, cfg.References...), md.RemainingArgs()...)
	if len(inputPaths) == 0 {
		return errors.Errorf("lyn: %v", "at least one input ELF file is required")
	}

	images, err := loadImages(inputPaths, expectSHA1)
	if err != nil {
		return err
	}

	result, err := link.Run(images, link.Options{
		Link:      *linkEnabled,
		Hook:      *hook,
		LongCalls: *longcalls,
	})
	if err != nil {
		return err
	}

	w := bufio.NewWriter(stdout)
	if err := eventcode.Emit(w, eventcode.Pipeline{
		Images:        result.Images,
		Layout:        result.Layout,
		Table:         result.Table,
		IncludeLocals: *temp,
	}); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if *verbose {
		logger.Tail(stderr, 1000)
	}

	return nil
}

// loadImages reads and sanitizes every input path in order, in the form
// link.Run requires.
func loadImages(inputPaths []string, expectSHA1 sha1Expectations) ([]*elfimage.ElfImage, error) {
	images := make([]*elfimage.ElfImage, 0, len(inputPaths))
	for _, p := range inputPaths {
		ld := elfinput.NewLoader(p, expectSHA1.forPath(p))
		if err := ld.Open(); err != nil {
			return nil, errors.Errorf(errors.IO, err)
		}

		img, err := elfimage.New(p, ld.Data)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	return images, nil
}
