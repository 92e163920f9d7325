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

// Package reloc is a table-driven codec for the ARM32 relocation kinds lyn
// understands. Rather than one type per kind with virtual extract/inject
// methods, every kind is a constant Info value; behaviour falls
// out of the data instead of dispatch.
package reloc

import (
	"github.com/jetsetilly/lyn/bitio"
	"github.com/jetsetilly/lyn/errors"
)

// ARM32 relocation type numbers, as they appear in an ELF REL/RELA entry.
const (
	RArmAbs32     = 2
	RArmRel32     = 3
	RArmAbs16     = 5
	RArmAbs8      = 8
	RArmThmCall   = 10
	RArmV4Bx      = 40
	RArmCall      = 28
	RArmJump24    = 29
	RArmThmJump11 = 102
	RArmThmJump8  = 103
)

// Part describes one part_size-byte slot that a relocation's logical value
// is scattered across.
type Part struct {
	BitOffset int
	BitSize   int
	Truncate  int
}

// Shift is the effective shift between the encoded field and the logical
// value: positive shifts right on extract, negative shifts left.
func (p Part) Shift() int { return p.BitOffset - p.Truncate }

// Mask is the bit mask this part occupies within its part_size-byte slot.
func (p Part) Mask() uint32 {
	return ((uint32(1) << uint(p.BitSize)) - 1) << uint(p.BitOffset)
}

// Info is the constant descriptor for one relocation kind.
type Info struct {
	Kind       uint32
	IsRelative bool

	// PartSize is the byte width of each slot in Parts; 0 means the
	// relocation carries no encoded bits (R_ARM_V4BX).
	PartSize int

	// SignBit is the bit number (counting from 0) of the combined logical
	// value that is sign-extended. 0 means the value is unsigned.
	SignBit int

	Parts []Part
}

// table is keyed by ARM32 relocation type number.
var table = map[uint32]Info{
	RArmAbs32: {Kind: RArmAbs32, IsRelative: false, PartSize: 4, Parts: []Part{{0, 32, 0}}},
	RArmRel32: {Kind: RArmRel32, IsRelative: true, PartSize: 4, SignBit: 31, Parts: []Part{{0, 32, 0}}},
	RArmAbs16: {Kind: RArmAbs16, IsRelative: false, PartSize: 2, Parts: []Part{{0, 16, 0}}},
	RArmAbs8:  {Kind: RArmAbs8, IsRelative: false, PartSize: 1, Parts: []Part{{0, 8, 0}}},
	RArmThmCall: {
		Kind: RArmThmCall, IsRelative: true, PartSize: 2, SignBit: 22,
		Parts: []Part{{0, 11, 12}, {0, 11, 1}},
	},
	RArmCall:   {Kind: RArmCall, IsRelative: true, PartSize: 4, SignBit: 25, Parts: []Part{{0, 24, 2}}},
	RArmJump24: {Kind: RArmJump24, IsRelative: true, PartSize: 4, SignBit: 25, Parts: []Part{{0, 24, 2}}},
	RArmThmJump11: {
		Kind: RArmThmJump11, IsRelative: true, PartSize: 2, SignBit: 11,
		Parts: []Part{{0, 11, 1}},
	},
	RArmThmJump8: {
		Kind: RArmThmJump8, IsRelative: true, PartSize: 2, SignBit: 8,
		Parts: []Part{{0, 8, 1}},
	},
	RArmV4Bx: {Kind: RArmV4Bx, PartSize: 0, Parts: nil},
}

// Lookup returns the descriptor for an ARM32 relocation type number.
// R_ARM_V4BX is accepted but carries no encoded bits. Any other unknown
// number is errors.UnhandledRelocation.
func Lookup(kind uint32) (Info, error) {
	info, ok := table[kind]
	if !ok {
		return Info{}, errors.Errorf(errors.UnhandledRelocation, kind)
	}
	return info, nil
}

// readSlot reads one of this relocation's PartSize-byte little-endian slots
// at byte offset o within data.
func readSlot(partSize int, data []byte, o int) uint32 {
	switch partSize {
	case 1:
		return uint32(bitio.U8(data, o))
	case 2:
		return uint32(bitio.U16(data, o))
	default:
		return bitio.U32(data, o)
	}
}

func writeSlot(partSize int, data []byte, o int, v uint32) {
	switch partSize {
	case 1:
		bitio.PutU8(data, o, uint8(v))
	case 2:
		bitio.PutU16(data, o, uint16(v))
	default:
		bitio.PutU32(data, o, v)
	}
}

// Extract reads this relocation's encoded field out of data (starting at
// byte offset 0 of data, one PartSize-byte slot per part in order),
// OR-combines the parts, and sign extends at SignBit.
func (r Info) Extract(data []byte) int32 {
	var v uint32
	for i, p := range r.Parts {
		slot := readSlot(r.PartSize, data, i*r.PartSize)
		extracted := slot & p.Mask()
		shift := p.Shift()
		if shift > 0 {
			extracted >>= uint(shift)
		} else if shift < 0 {
			extracted <<= uint(-shift)
		}
		v |= extracted
	}
	return bitio.SignExtend(v, uint(r.SignBit))
}

// Inject writes value into this relocation's encoded field in data,
// preserving every bit outside the union of part masks.
func (r Info) Inject(data []byte, value int32) {
	v := uint32(value)
	for i, p := range r.Parts {
		o := i * r.PartSize
		slot := readSlot(r.PartSize, data, o)

		shift := p.Shift()
		var field uint32
		if shift > 0 {
			field = v << uint(shift)
		} else if shift < 0 {
			field = v >> uint(-shift)
		} else {
			field = v
		}
		field &= p.Mask()

		writeSlot(r.PartSize, data, o, (slot & ^p.Mask())|field)
	}
}

// CanEncode reports whether value fits losslessly in the union of this
// relocation's part fields: sign-extending from SignBit after truncation
// must reproduce value exactly.
func (r Info) CanEncode(value int32) bool {
	size := r.PartSize * len(r.Parts)
	if size == 0 {
		return value == 0
	}
	scratch := make([]byte, size)
	r.Inject(scratch, value)
	return r.Extract(scratch) == value
}
