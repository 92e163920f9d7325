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

package elfimage

import (
	"github.com/jetsetilly/lyn/bitio"
	"github.com/jetsetilly/lyn/errors"
	"github.com/jetsetilly/lyn/logger"
)

// Sanitize validates that buf is a relocatable ARM32 ELF32 image and
// byte-swaps every multi-byte field in place to little-endian (native)
// order, so that every later reader can use bitio's plain little-endian
// accessors regardless of how the object file was originally encoded.
//
// buf is mutated in place when the image is big-endian. It is never mutated
// otherwise.
func Sanitize(buf []byte) error {
	if len(buf) < ehSize {
		return errors.Errorf(errors.Truncated, "ELF header")
	}

	if buf[eiMag0] != elfMag0 || buf[eiMag1] != elfMag1 || buf[eiMag2] != elfMag2 || buf[eiMag3] != elfMag3 {
		return errors.Errorf(errors.NotElf, "bad magic")
	}

	if buf[eiClass] != elfClass32 {
		return errors.Errorf(errors.NotElf32, "unsupported class")
	}

	var swap bool
	switch buf[eiData] {
	case elfData2LSB:
		swap = false
	case elfData2MSB:
		swap = true
	default:
		return errors.Errorf(errors.NotLittleEndian, "unrecognised data encoding")
	}

	if swap {
		swapHeader(buf)
	}

	machine := bitio.U16(buf, ehMachine)
	if machine != emARM {
		return errors.Errorf(errors.NotArm32, "e_machine %d", machine)
	}

	shoff := int(bitio.U32(buf, ehShoff))
	shentsize := int(bitio.U16(buf, ehShentsize))
	shnum := int(bitio.U16(buf, ehShnum))

	if shnum > 0 && shentsize != shSize {
		return errors.Errorf(errors.BadEntrySize, "section header entry size %d", shentsize)
	}

	if shoff+shnum*shSize > len(buf) {
		return errors.Errorf(errors.Truncated, "section header table")
	}

	for i := 0; i < shnum; i++ {
		o := shoff + i*shSize
		sh := buf[o : o+shSize]

		if swap {
			swapSectionHeader(sh)
		}

		typ := bitio.U32(sh, shType)
		off := int(bitio.U32(sh, shOffset))
		size := int(bitio.U32(sh, shSz))
		entsize := int(bitio.U32(sh, shEntsize))

		switch typ {
		case shtSymtab:
			if err := swapEntries(buf, off, size, entsize, symSize, swapSymbol, swap); err != nil {
				return err
			}
		case shtRel:
			if err := swapEntries(buf, off, size, entsize, relSize, swapRel, swap); err != nil {
				return err
			}
		case shtRela:
			if err := swapEntries(buf, off, size, entsize, relaSize, swapRela, swap); err != nil {
				return err
			}
		}
	}

	logger.Logf("elfimage", "sanitized image: %d section(s), swap=%v", shnum, swap)

	return nil
}

// swapEntries validates and, if swap is set, byte-swaps every entry of a
// table section (symtab/rel/rela) in place.
func swapEntries(buf []byte, off, size, entsize, wantEntsize int, swapOne func([]byte), swap bool) error {
	if size == 0 {
		return nil
	}
	if entsize != wantEntsize {
		return errors.Errorf(errors.BadEntrySize, "table entry size %d", entsize)
	}
	if off+size > len(buf) {
		return errors.Errorf(errors.Truncated, "table data")
	}
	if !swap {
		return nil
	}
	for p := off; p+entsize <= off+size; p += entsize {
		swapOne(buf[p : p+entsize])
	}
	return nil
}

func swapHeader(buf []byte) {
	bitio.Swap16(buf, ehMachine)
	bitio.Swap32(buf, ehShoff)
	bitio.Swap16(buf, ehShentsize)
	bitio.Swap16(buf, ehShnum)
	bitio.Swap16(buf, ehShstrndx)
}

func swapSectionHeader(sh []byte) {
	bitio.Swap32(sh, shName)
	bitio.Swap32(sh, shType)
	bitio.Swap32(sh, shFlags)
	bitio.Swap32(sh, shAddr)
	bitio.Swap32(sh, shOffset)
	bitio.Swap32(sh, shSz)
	bitio.Swap32(sh, shLink)
	bitio.Swap32(sh, shInfo)
	bitio.Swap32(sh, shAddralign)
	bitio.Swap32(sh, shEntsize)
}

func swapSymbol(sym []byte) {
	bitio.Swap32(sym, symName)
	bitio.Swap32(sym, symValue)
	bitio.Swap32(sym, symSz)
	bitio.Swap16(sym, symShndx)
}

func swapRel(rel []byte) {
	bitio.Swap32(rel, relOffset)
	bitio.Swap32(rel, relInfo)
}

func swapRela(rela []byte) {
	bitio.Swap32(rela, relaOffset)
	bitio.Swap32(rela, relaInfo)
	bitio.Swap32(rela, relaAddend)
}
