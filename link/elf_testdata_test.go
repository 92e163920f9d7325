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

package link_test

import (
	"encoding/binary"

	"github.com/jetsetilly/lyn/elfimage"
)

// symtabSecIdx is the fixed section index imageBuilder reserves for the
// SYMTAB it always carries, so addRela's callers can name a relocation's
// linked symbol table without threading an index through every test.
const symtabSecIdx = 1

// imageBuilder assembles an ElfImage by hand: a fixed STRTAB/SYMTAB pair
// plus any number of retained data sections and REL/RELA sections, without
// going through the real ELF byte parser. link.Run operates on already
// parsed ElfImage values, so a test fixture only needs to shape those
// directly, the same way symtab_test.go's imageBuilder does for the merge
// tests.
type imageBuilder struct {
	strtab []byte
	symtab []byte
	rest   []elfimage.ElfSectionRef
}

func newImageBuilder() *imageBuilder {
	return &imageBuilder{strtab: []byte{0}}
}

// addSymbol appends a symbol table entry and returns its local index.
func (b *imageBuilder) addSymbol(name string, value uint32, bind, typ uint8, shndx uint16) int {
	var nameOff uint32
	if name != "" {
		nameOff = uint32(len(b.strtab))
		b.strtab = append(b.strtab, []byte(name)...)
		b.strtab = append(b.strtab, 0)
	}
	e := make([]byte, 16)
	binary.LittleEndian.PutUint32(e[0:], nameOff)
	binary.LittleEndian.PutUint32(e[4:], value)
	e[12] = bind<<4 | typ
	binary.LittleEndian.PutUint16(e[14:], shndx)
	idx := len(b.symtab) / 16
	b.symtab = append(b.symtab, e...)
	return idx
}

// addSection appends a retained (SHF_ALLOC, non-writable) data section and
// returns its section index.
func (b *imageBuilder) addSection(name string, data []byte) int {
	idx := 2 + len(b.rest)
	b.rest = append(b.rest, elfimage.ElfSectionRef{
		SecIdx: idx, Name: name, Type: elfimage.ShtProgbits, Flags: 0x2, Data: data, LayoutIndex: -1,
	})
	return idx
}

// relaEntry is one SHT_RELA entry: offset within the target section, the
// local symbol index it refers to, the ARM32 relocation type, and the
// addend carried in the entry itself (as opposed to one read back out of
// the target bytes, the way SHT_REL does).
type relaEntry struct {
	offset uint32
	sym    int
	kind   uint32
	addend int32
}

// addRela appends an SHT_RELA section relocating the section at targetIdx.
func (b *imageBuilder) addRela(targetIdx int, entries ...relaEntry) int {
	var data []byte
	for _, e := range entries {
		entry := make([]byte, 12)
		binary.LittleEndian.PutUint32(entry[0:], e.offset)
		binary.LittleEndian.PutUint32(entry[4:], uint32(e.sym)<<8|e.kind)
		binary.LittleEndian.PutUint32(entry[8:], uint32(e.addend))
		data = append(data, entry...)
	}
	idx := 2 + len(b.rest)
	b.rest = append(b.rest, elfimage.ElfSectionRef{
		SecIdx: idx, Type: elfimage.ShtRela, Link: symtabSecIdx, Info: uint32(targetIdx), Entsize: 12, Data: data, LayoutIndex: -1,
	})
	return idx
}

// build finalizes the image: section 0 is the STRTAB, section 1 the
// SYMTAB, followed by every section added via addSection/addRela in order.
func (b *imageBuilder) build(name string) *elfimage.ElfImage {
	img := &elfimage.ElfImage{Name: name, Indirection: make(map[int][]uint32)}
	img.Sections = append(img.Sections,
		elfimage.ElfSectionRef{SecIdx: 0, Type: elfimage.ShtStrtab, Data: b.strtab, LayoutIndex: -1},
		elfimage.ElfSectionRef{SecIdx: symtabSecIdx, Type: elfimage.ShtSymtab, Link: 0, Entsize: 16, Data: b.symtab, LayoutIndex: -1},
	)
	img.Sections = append(img.Sections, b.rest...)
	return img
}
