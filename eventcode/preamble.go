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

package eventcode

import (
	"fmt"
	"io"
	"sort"

	"github.com/jetsetilly/lyn/layout"
	"github.com/jetsetilly/lyn/symtab"
)

// WritePreamble emits "ALIGN 4", a label for every global symbol resolved
// to a FloatRom address (so forward and backward references in the section
// bodies that follow can name them), and an ORG-anchored label or #define
// for every resolved Absolute global. An Undefined symbol gets neither: it
// is resolved by the assembler's own namespace, not lyn's. A Local symbol
// is normally of no use outside the section it was defined in (every
// reference to it is already rendered as CURRENTOFFSET arithmetic), so it
// is skipped unless includeLocals asks to keep it visible for debugging
// (the command line's "-temp" flag).
func WritePreamble(w io.Writer, tab *symtab.Table, includeLocals bool) error {
	if _, err := fmt.Fprintln(w, "ALIGN 4"); err != nil {
		return err
	}

	var floatRom []symtab.Symbol
	var absolute []symtab.Symbol

	for _, s := range tab.Symbols {
		if s.Name == "" || s.Address == nil {
			continue
		}
		if s.Scope != symtab.Global && !(includeLocals && s.Scope == symtab.Local) {
			continue
		}
		switch s.Address.Anchor {
		case layout.FloatRom:
			floatRom = append(floatRom, s)
		case layout.Absolute:
			absolute = append(absolute, s)
		}
	}

	if len(floatRom) > 0 {
		sort.Slice(floatRom, func(i, j int) bool {
			return floatRom[i].Address.Offset < floatRom[j].Address.Offset
		})

		if _, err := fmt.Fprintln(w, "PUSH"); err != nil {
			return err
		}
		var cursor int32
		for _, s := range floatRom {
			delta := s.Address.Offset - cursor
			sign := "+"
			if delta < 0 {
				sign = "-"
				delta = -delta
			}
			if _, err := fmt.Fprintf(w, "ORG CURRENTOFFSET%s%s\n%s:\n", sign, renderLiteral(uint32(delta)), s.Name); err != nil {
				return err
			}
			cursor = s.Address.Offset
		}
		if _, err := fmt.Fprintln(w, "POP"); err != nil {
			return err
		}
	}

	for _, s := range absolute {
		addr := layout.Address{Anchor: layout.Absolute, Offset: s.Address.Offset}
		if addr.InRom() {
			if _, err := fmt.Fprintf(w, "PUSH\nORG $%X\n%s:\nPOP\n", uint32(s.Address.Offset), s.Name); err != nil {
				return err
			}
		} else {
			if _, err := fmt.Fprintf(w, "#define %s $%X\n", s.Name, uint32(s.Address.Offset)); err != nil {
				return err
			}
		}
	}

	return nil
}
