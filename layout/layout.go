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

// Package layout assigns every retained section of every input ELF an
// Address: either a fixed absolute ROM location, or a floating offset
// within the patch emitted by lyn, decided purely by input and header
// order.
package layout

import (
	"github.com/jetsetilly/lyn/elfimage"
	"github.com/jetsetilly/lyn/errors"
)

// Anchor is the conceptual origin an Address is measured from.
type Anchor int

const (
	// Absolute is a fixed ROM (or other) virtual address.
	Absolute Anchor = iota

	// FloatRom is an offset within the patch lyn is building, whose
	// concrete base the assembler decides at assembly time.
	FloatRom
)

func (a Anchor) String() string {
	switch a {
	case Absolute:
		return "Absolute"
	case FloatRom:
		return "FloatRom"
	default:
		return "Unknown"
	}
}

// RomBase and RomTop bound the ROM address window: an Absolute offset
// inside this range names a ROM address; outside it, some other kind of
// absolute (an SRAM mirror, an IWRAM constant, ...).
const (
	RomBase = 0x08000000
	RomTop  = 0x09FFFFFF
)

// Address is a position relative to an Anchor.
type Address struct {
	Anchor Anchor
	Offset int32
}

// Add returns a new Address delta further along the same anchor.
func (a Address) Add(delta int32) Address {
	return Address{Anchor: a.Anchor, Offset: a.Offset + delta}
}

// InRom reports whether an Absolute address falls within the ROM window.
func (a Address) InRom() bool {
	return a.Anchor == Absolute && a.Offset >= RomBase && uint32(a.Offset) <= RomTop
}

// Section is one entry in the layout vector: the (elf, section) pair it
// came from, and the address it was assigned.
type Section struct {
	Address Address
	ElfIdx  int
	SecIdx  int
}

// Layout is the ordered list of laid-out sections. Prepare fills it with
// FloatRom entries only, in placement order; Absolute entries (hook veneers)
// and further FloatRom entries (long-call veneers) are appended later by the
// link package, so Absolute entries are not kept ahead of FloatRom ones.
type Layout struct {
	Sections []Section
}

// align4 rounds n up to the next multiple of 4.
func align4(n int32) int32 {
	return (n + 3) &^ 3
}

// Prepare walks every ELF in input order and, within each, every section in
// header order, appending a FloatRom Layout.Section for each retained
// section (nonzero size, SHF_ALLOC set). A retained section with SHF_WRITE
// set is an error: writable (RAM) layout is not supported. Each retained
// section's LayoutIndex is set to its new position in l.Sections.
//
// Absolute-anchored sections (reserved for sections named "__lyn__at" or
// "__lyn__replace") are not implemented; images carrying one are rejected.
func Prepare(images []*elfimage.ElfImage) (*Layout, error) {
	l := &Layout{}

	for elfIdx, img := range images {
		for secIdx := range img.Sections {
			sec := &img.Sections[secIdx]

			if sec.Name == "__lyn__at" || sec.Name == "__lyn__replace" {
				return nil, errors.Errorf("lyn: %v", "absolute-anchored input sections are not supported")
			}

			if !sec.Retained() {
				continue
			}

			if sec.Writable() {
				return nil, errors.Errorf(errors.WritableSectionLayout, sec.Name)
			}

			sec.LayoutIndex = len(l.Sections)
			l.Sections = append(l.Sections, Section{
				Address: Address{Anchor: FloatRom, Offset: 0},
				ElfIdx:  elfIdx,
				SecIdx:  secIdx,
			})
		}
	}

	return l, nil
}

// Finalize walks the layout in order, assigning each FloatRom entry a
// concrete offset: the running cursor aligned up to 4, then advanced by the
// section's size. Absolute entries are untouched.
func Finalize(l *Layout, images []*elfimage.ElfImage) {
	var cursor int32

	for i := range l.Sections {
		s := &l.Sections[i]
		if s.Address.Anchor != FloatRom {
			continue
		}

		cursor = align4(cursor)
		s.Address.Offset = cursor

		sec := &images[s.ElfIdx].Sections[s.SecIdx]
		cursor += int32(len(sec.Data))
	}
}

// SectionAddress returns the address assigned to the section at layoutIdx.
func (l *Layout) SectionAddress(layoutIdx int) Address {
	return l.Sections[layoutIdx].Address
}
