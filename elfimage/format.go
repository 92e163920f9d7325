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

// Package elfimage parses, sanitizes and gives typed access to a relocatable
// ARM32 ELF32 object file. The byte layout constants below mirror the ELF
// specification directly; nothing here is ARM-specific except the e_machine
// check in the sanitizer.
package elfimage

// byte offsets and sizes within the ELF32 file header (e_ident through
// e_shstrndx), 52 bytes total.
const (
	ehSize = 0x34

	eiMag0    = 0
	eiMag1    = 1
	eiMag2    = 2
	eiMag3    = 3
	eiClass   = 4
	eiData    = 5
	eiVersion = 6

	ehMachine  = 0x12
	ehShoff    = 0x20
	ehShentsize = 0x2e
	ehShnum    = 0x30
	ehShstrndx = 0x32
)

const (
	elfMag0 = 0x7f
	elfMag1 = 'E'
	elfMag2 = 'L'
	elfMag3 = 'F'

	elfClass32 = 1

	elfData2LSB = 1
	elfData2MSB = 2
)

// EM_ARM, the only e_machine value the sanitizer accepts.
const emARM = 40

// section header layout, 40 bytes.
const (
	shSize = 40

	shName      = 0
	shType      = 4
	shFlags     = 8
	shAddr      = 12
	shOffset    = 16
	shSz        = 20
	shLink      = 24
	shInfo      = 28
	shAddralign = 32
	shEntsize   = 36
)

// section types (sh_type).
const (
	shtNull    = 0
	shtProgbits = 1
	shtSymtab  = 2
	shtStrtab  = 3
	shtRela    = 4
	shtNobits  = 8
	shtRel     = 9
)

// section flags (sh_flags).
const (
	shfWrite = 0x1
	shfAlloc = 0x2
)

// symbol table entry layout, 16 bytes.
const (
	symSize = 16

	symName  = 0
	symValue = 4
	symSz    = 8
	symInfo  = 12
	symOther = 13
	symShndx = 14
)

// special section indices (st_shndx).
const (
	shnUndef  = 0x0000
	shnAbs    = 0xfff1
	shnCommon = 0xfff2
)

// symbol binding (top nibble of st_info).
const (
	stbLocal  = 0
	stbGlobal = 1
	stbWeak   = 2
)

// symbol type (bottom nibble of st_info).
const (
	sttNotype  = 0
	sttObject  = 1
	sttFunc    = 2
	sttSection = 3
	sttFile    = 4
)

// REL entry layout, 8 bytes.
const (
	relSize   = 8
	relOffset = 0
	relInfo   = 4
)

// RELA entry layout, 12 bytes.
const (
	relaSize   = 12
	relaOffset = 0
	relaInfo   = 4
	relaAddend = 8
)

// symBind returns the binding (STB_*) encoded in a symbol's st_info byte.
func symBind(info uint8) uint8 {
	return info >> 4
}

// symType returns the type (STT_*) encoded in a symbol's st_info byte.
func symType(info uint8) uint8 {
	return info & 0xf
}

// relSym returns the symbol table index encoded in a REL/RELA r_info field.
func relSym(info uint32) uint32 {
	return info >> 8
}

// relType returns the relocation type encoded in a REL/RELA r_info field.
func relType(info uint32) uint32 {
	return info & 0xff
}
