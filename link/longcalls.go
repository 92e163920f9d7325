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

package link

import (
	"fmt"

	"github.com/jetsetilly/lyn/elfimage"
	"github.com/jetsetilly/lyn/layout"
	"github.com/jetsetilly/lyn/logger"
	"github.com/jetsetilly/lyn/reloc"
	"github.com/jetsetilly/lyn/symtab"
)

// longCallBuilder lazily appends one veneer per distinct callee address to a
// synthetic image, for relative (BL-shaped) relocations whose target lives
// in a different anchor than the call site. Going through a veneer avoids
// depending on the assembler's own range check for a branch whose distance
// to an absolute ROM address isn't known until assembly time: the veneer
// itself is always a short, local, same-anchor hop, and it alone carries
// the long, absolute jump as a loaded pointer.
type longCallBuilder struct {
	tab    *symtab.Table
	l      *layout.Layout
	images []*elfimage.ElfImage
	img    *elfimage.ElfImage
	byAddr map[int32]*layout.Address
}

func newLongCallBuilder(tab *symtab.Table, l *layout.Layout, images []*elfimage.ElfImage) *longCallBuilder {
	return &longCallBuilder{tab: tab, l: l, images: images, byAddr: make(map[int32]*layout.Address)}
}

func (b *longCallBuilder) sizeOf(elfIdx, secIdx int) int {
	if elfIdx < len(b.images) {
		return len(b.images[elfIdx].Sections[secIdx].Data)
	}
	return len(b.img.Sections[secIdx].Data)
}

func (b *longCallBuilder) nextFloatRomOffset() int32 {
	var maxEnd int32
	var any bool
	for _, s := range b.l.Sections {
		if s.Address.Anchor != layout.FloatRom {
			continue
		}
		any = true
		end := s.Address.Offset + int32(b.sizeOf(s.ElfIdx, s.SecIdx))
		if end > maxEnd {
			maxEnd = end
		}
	}
	if !any {
		return 0
	}
	return (maxEnd + 3) &^ 3
}

// veneerFor returns the FloatRom address of a proxy that loads calleeAddr
// into the ARM program counter, building one the first time calleeAddr is
// seen and reusing it for every later call to the same address.
func (b *longCallBuilder) veneerFor(calleeName string, calleeAddr layout.Address) *layout.Address {
	if addr, ok := b.byAddr[calleeAddr.Offset]; ok {
		return addr
	}

	if b.img == nil {
		b.img = &elfimage.ElfImage{Name: "<longcalls>", Indirection: make(map[int][]uint32)}
	}

	calleeIdx := len(b.tab.Symbols)
	target := calleeAddr
	b.tab.Symbols = append(b.tab.Symbols, symtab.Symbol{Name: calleeName, Scope: symtab.Global, Address: &target})

	data := make([]byte, len(hookVeneer))
	copy(data, hookVeneer)

	secIdx := len(b.img.Sections)
	b.img.Sections = append(b.img.Sections, elfimage.ElfSectionRef{
		SecIdx:      secIdx,
		Name:        fmt.Sprintf("__lyn_longcall_%s", calleeName),
		Type:        elfimage.ShtProgbits,
		Flags:       0x2, // SHF_ALLOC
		Data:        data,
		LayoutIndex: -1,
		Pending: []elfimage.PendingRelocation{
			{Offset: 12, Kind: reloc.RArmAbs32, Symbol: calleeIdx},
		},
	})

	addr := layout.Address{Anchor: layout.FloatRom, Offset: b.nextFloatRomOffset()}
	b.img.Sections[secIdx].LayoutIndex = len(b.l.Sections)
	b.l.Sections = append(b.l.Sections, layout.Section{
		Address: addr,
		ElfIdx:  len(b.images),
		SecIdx:  secIdx,
	})

	logger.Logf("link", "longcall veneer for %s at float offset %d", calleeName, addr.Offset)

	b.byAddr[calleeAddr.Offset] = &addr
	return &addr
}

// finish appends the synthetic veneer image, if any veneer was built, and
// returns the (possibly extended) image list.
func (b *longCallBuilder) finish() []*elfimage.ElfImage {
	if b.img == nil {
		return b.images
	}
	return append(b.images, b.img)
}
