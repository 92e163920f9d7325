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

package elfimage_test

import "encoding/binary"

// builder assembles a minimal little-endian ELF32 image by hand, section by
// section, for use as test fixtures. It is deliberately bare: no program
// headers, no unnecessary sections.
type builder struct {
	shstrtab []byte // accumulated section name strings, starts with a NUL
	sections []section
}

type section struct {
	name    string
	typ     uint32
	flags   uint32
	link    uint32
	info    uint32
	entsize uint32
	data    []byte
}

func newBuilder() *builder {
	return &builder{shstrtab: []byte{0}}
}

func (b *builder) addSection(s section) int {
	b.sections = append(b.sections, s)
	return len(b.sections) - 1
}

func (b *builder) strtabOffset(name string) uint32 {
	off := uint32(len(b.shstrtab))
	b.shstrtab = append(b.shstrtab, []byte(name)...)
	b.shstrtab = append(b.shstrtab, 0)
	return off
}

// build lays out: NULL section, every added section in order, then the
// shstrtab section itself, and returns the final image bytes.
func (b *builder) build() []byte {
	nameOffsets := make([]uint32, len(b.sections))
	for i, s := range b.sections {
		nameOffsets[i] = b.strtabOffset(s.name)
	}
	shstrtabNameOff := b.strtabOffset(".shstrtab")

	const ehSize = 0x34
	const shSize = 40

	shnum := len(b.sections) + 2 // NULL + sections + shstrtab
	shstrndx := shnum - 1

	buf := make([]byte, ehSize)
	buf[0], buf[1], buf[2], buf[3] = 0x7f, 'E', 'L', 'F'
	buf[4] = 1 // ELFCLASS32
	buf[5] = 1 // ELFDATA2LSB
	buf[6] = 1
	binary.LittleEndian.PutUint16(buf[0x12:], 40) // EM_ARM

	dataOff := ehSize

	type laidOut struct {
		off  uint32
		size uint32
	}
	var layout []laidOut

	align := func(n int) int { return (n + 3) &^ 3 }

	cursor := dataOff
	for _, s := range b.sections {
		cursor = align(cursor)
		layout = append(layout, laidOut{off: uint32(cursor), size: uint32(len(s.data))})
		if s.typ != 8 { // SHT_NOBITS
			cursor += len(s.data)
		}
	}
	cursor = align(cursor)
	shstrtabOff := cursor
	cursor += len(b.shstrtab)

	body := make([]byte, cursor-dataOff)
	for i, s := range b.sections {
		if s.typ == 8 {
			continue
		}
		copy(body[layout[i].off-uint32(dataOff):], s.data)
	}
	copy(body[shstrtabOff-dataOff:], b.shstrtab)

	buf = append(buf, body...)

	shoff := len(buf)
	binary.LittleEndian.PutUint32(buf[0x20:], uint32(shoff))
	binary.LittleEndian.PutUint16(buf[0x2e:], shSize)
	binary.LittleEndian.PutUint16(buf[0x30:], uint16(shnum))
	binary.LittleEndian.PutUint16(buf[0x32:], uint16(shstrndx))

	writeSh := func(name, typ, flags, off, size, link, info, entsize uint32) {
		sh := make([]byte, shSize)
		binary.LittleEndian.PutUint32(sh[0:], name)
		binary.LittleEndian.PutUint32(sh[4:], typ)
		binary.LittleEndian.PutUint32(sh[8:], flags)
		binary.LittleEndian.PutUint32(sh[16:], off)
		binary.LittleEndian.PutUint32(sh[20:], size)
		binary.LittleEndian.PutUint32(sh[24:], link)
		binary.LittleEndian.PutUint32(sh[28:], info)
		binary.LittleEndian.PutUint32(sh[36:], entsize)
		buf = append(buf, sh...)
	}

	writeSh(0, 0, 0, 0, 0, 0, 0, 0)
	for i, s := range b.sections {
		writeSh(nameOffsets[i], s.typ, s.flags, layout[i].off, layout[i].size, s.link, s.info, s.entsize)
	}
	writeSh(shstrtabNameOff, 3, 0, uint32(shstrtabOff), uint32(len(b.shstrtab)), 0, 0, 0)

	return buf
}

// putSym appends a 16-byte ELF32 symbol table entry.
func putSym(name, value, size uint32, info, other uint8, shndx uint16) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint32(b[0:], name)
	binary.LittleEndian.PutUint32(b[4:], value)
	binary.LittleEndian.PutUint32(b[8:], size)
	b[12] = info
	b[13] = other
	binary.LittleEndian.PutUint16(b[14:], shndx)
	return b
}

func symInfo(bind, typ uint8) uint8 { return bind<<4 | typ }
