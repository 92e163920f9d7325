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

// Package link is where the pieces come together: it fills in every global
// symbol's final address once layout is finalized, walks every input ELF's
// relocations to concretely patch what it can and defer the rest, finds and
// builds hook veneers, and drives the pipeline end to end.
package link

import (
	"github.com/jetsetilly/lyn/elfimage"
	"github.com/jetsetilly/lyn/layout"
	"github.com/jetsetilly/lyn/symtab"
)

// AddressSymbols fills in the Address of every entry in tab from the
// finalized layout l. A symbol whose defining ELF entry is SHN_UNDEF or
// SHN_COMMON gets a nil address: "only knowable at assembly time". A
// symbol defined in a section that was never retained for layout also gets
// a nil address, silently: this pass never fails on a discarded section,
// unlike the relocation applier.
func AddressSymbols(tab *symtab.Table, l *layout.Layout, images []*elfimage.ElfImage) error {
	for i := range tab.Symbols {
		s := &tab.Symbols[i]

		sym, err := images[s.ElfIdx].Symbol(s.SecIdx, s.SymIdx)
		if err != nil {
			return err
		}

		switch sym.Shndx {
		case elfimage.ShnUndef, elfimage.ShnCommon:
			s.Address = nil

		case elfimage.ShnAbs:
			addr := layout.Address{Anchor: layout.Absolute, Offset: int32(sym.Value)}
			s.Address = &addr

		default:
			owner, err := images[s.ElfIdx].SectionHeader(int(sym.Shndx))
			if err != nil {
				return err
			}
			if owner.LayoutIndex < 0 {
				s.Address = nil
				continue
			}
			addr := l.SectionAddress(owner.LayoutIndex).Add(int32(sym.Value))
			s.Address = &addr
		}
	}

	return nil
}
