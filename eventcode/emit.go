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

	"github.com/jetsetilly/lyn/elfimage"
	"github.com/jetsetilly/lyn/layout"
	"github.com/jetsetilly/lyn/logger"
	"github.com/jetsetilly/lyn/symtab"
)

// Pipeline is the subset of link.Result that Emit needs: kept as its own
// interface-free struct rather than importing package link, so that
// eventcode has no dependency on the orchestration package that depends on
// it transitively through cmd/lyn.
type Pipeline struct {
	Images []*elfimage.ElfImage
	Layout *layout.Layout
	Table  *symtab.Table

	// IncludeLocals keeps otherwise-unused local symbols visible in the
	// preamble, for debugging (the command line's "-temp" flag).
	IncludeLocals bool
}

// Emit writes the complete Event Assembler script for a finished pipeline
// run: the label/define preamble, then every laid-out section's body,
// framed according to its anchor.
func Emit(w io.Writer, p Pipeline) error {
	if err := WritePreamble(w, p.Table, p.IncludeLocals); err != nil {
		return err
	}

	for _, ls := range p.Layout.Sections {
		img := p.Images[ls.ElfIdx]
		sec := &img.Sections[ls.SecIdx]

		blk, err := Build(sec, ls.Address, p.Table)
		if err != nil {
			return err
		}

		switch ls.Address.Anchor {
		case layout.FloatRom:
			if err := writeFloatRomSection(w, sec, blk, ls.Address); err != nil {
				return err
			}
		case layout.Absolute:
			if err := writeAbsoluteSection(w, sec, blk, ls.Address); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeFloatRomSection(w io.Writer, sec *elfimage.ElfSectionRef, blk *Block, addr layout.Address) error {
	if _, err := fmt.Fprintln(w, "ALIGN 4"); err != nil {
		return err
	}
	return WriteBlock(w, sec, blk, addr.Offset)
}

func writeAbsoluteSection(w io.Writer, sec *elfimage.ElfSectionRef, blk *Block, addr layout.Address) error {
	if !addr.InRom() {
		logger.Logf("eventcode", "skipping section %s: absolute address 0x%08x outside ROM window", sec.Name, uint32(addr.Offset))
		return nil
	}

	if _, err := fmt.Fprintf(w, "PUSH\nORG $%X\n", uint32(addr.Offset)); err != nil {
		return err
	}
	if err := WriteBlock(w, sec, blk, addr.Offset); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "POP")
	return err
}
