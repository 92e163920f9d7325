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
	"strings"

	"github.com/jetsetilly/lyn/bitio"
	"github.com/jetsetilly/lyn/elfimage"
	"github.com/jetsetilly/lyn/errors"
	"github.com/jetsetilly/lyn/layout"
	"github.com/jetsetilly/lyn/reloc"
	"github.com/jetsetilly/lyn/symtab"
)

// Build synthesizes the Block for one laid-out section: every pending
// relocation becomes a typed directive with a synthesized textual
// expression. Pack and Optimize run afterwards, but every code mapped here is
// marked macro, which combinable never merges, so each relocation keeps a
// directive of its own.
func Build(sec *elfimage.ElfSectionRef, secAddr layout.Address, tab *symtab.Table) (*Block, error) {
	blk := NewBlock(len(sec.Data))

	for _, p := range sec.Pending {
		info, err := reloc.Lookup(p.Kind)
		if err != nil {
			return nil, err
		}
		if info.PartSize == 0 {
			// R_ARM_V4BX: no encoded bits, nothing to emit.
			continue
		}

		code, err := synthesize(sec, secAddr, p, info, tab)
		if err != nil {
			return nil, err
		}
		blk.MapCode(p.Offset, code)
	}

	blk.Pack()
	blk.Optimize()

	return blk, nil
}

// kindFor chooses the directive kind for a relocation descriptor: 1-byte
// and 2-byte fields map directly to Byte/Short; 4-byte fields split on
// whether the relocation is relative (Word, an arithmetic displacement) or
// absolute (Poin, a pointer).
func kindFor(info reloc.Info) Kind {
	switch info.PartSize {
	case 1:
		return Byte
	case 2:
		return Short
	case 4:
		if info.IsRelative {
			return Word
		}
		return Poin
	default:
		return Word
	}
}

// synthesize builds the Code for one pending relocation, following
// spec.md §4.7's seven-step textual expression synthesis.
func synthesize(sec *elfimage.ElfSectionRef, secAddr layout.Address, p elfimage.PendingRelocation, info reloc.Info, tab *symtab.Table) (Code, error) {
	if p.Symbol < 0 || p.Symbol >= len(tab.Symbols) {
		return Code{}, errors.Errorf("lyn: pending relocation references an invalid symbol index %d", p.Symbol)
	}
	sym := tab.Symbols[p.Symbol]

	data := sec.Data[p.Offset:]
	addend := info.Extract(data)

	var target string
	currentOffset := false

	switch {
	case sym.Scope != symtab.Local && sym.Name != "":
		// Any non-local symbol with a known name renders by that name,
		// whether or not lyn also computed an address for it: the
		// assembler's own namespace already resolves it, and other
		// sections may need to reference it by name too.
		target = sym.Name

	case sym.Address != nil:
		addend += sym.Address.Offset
		switch {
		case sym.Address.Anchor == secAddr.Anchor:
			target = "CURRENTOFFSET"
			addend -= secAddr.Offset + int32(p.Offset)
			currentOffset = true
		case sym.Address.Anchor == layout.Absolute:
			target = ""
		default:
			target = sym.Name
		}

	default:
		// No computed address and no name to fall back on: this should
		// never be reachable given the relocation applier's invariants,
		// but render something self-describing rather than an empty
		// directive.
		target = sym.Name
	}

	target = appendAddend(target, addend)

	if info.IsRelative {
		target = wrapForBinary(target) + " - CURRENTOFFSET"
		currentOffset = true
	}

	args := make([]string, len(info.Parts))
	for i, part := range info.Parts {
		o := i * info.PartSize
		slot := readSlot(info.PartSize, data, o)
		base := slot &^ part.Mask()
		args[i] = renderPart(target, part, info.PartSize, base)
	}

	return Code{Kind: kindFor(info), Args: args, CurrentOffsetAnchor: currentOffset, macro: true}, nil
}

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

// slotBits is the full bit width of one part_size-byte slot.
func slotBits(partSize int) uint {
	return uint(partSize) * 8
}

// renderPart renders "((target << shift) & mask) | base", omitting the
// shift when zero, the mask when it covers the whole slot, and the "| base"
// term when base is zero.
func renderPart(target string, part reloc.Part, partSize int, base uint32) string {
	expr := target
	shift := part.Shift()

	switch {
	case shift > 0:
		expr = fmt.Sprintf("(%s << %d)", expr, shift)
	case shift < 0:
		expr = fmt.Sprintf("(%s >> %d)", expr, -shift)
	}

	mask := part.Mask()
	fullMask := uint32(1)<<slotBits(partSize) - 1
	if fullMask == 0 {
		// 32-bit slot: 1<<32 overflows uint32 to 0; treat as all-ones.
		fullMask = ^uint32(0)
	}
	if mask != fullMask {
		expr = fmt.Sprintf("(%s) & %s", expr, renderLiteral(mask))
	}

	if base != 0 {
		expr = fmt.Sprintf("(%s) | %s", expr, renderLiteral(base))
	}

	return expr
}

// wrapForBinary parenthesizes expr if it contains a binary operator, so
// that a later " - CURRENTOFFSET" suffix or "<<"/"&"/"|" wrapping cannot
// change its meaning.
func wrapForBinary(expr string) string {
	if strings.ContainsAny(expr, "+-") && !strings.HasPrefix(expr, "$") {
		return "(" + expr + ")"
	}
	return expr
}

// appendAddend folds a signed addend into expr: if expr is empty, the
// addend becomes the whole expression (decimal if small, hex otherwise);
// otherwise it is appended as a signed term.
func appendAddend(expr string, addend int32) string {
	if expr == "" {
		return renderSigned(addend)
	}
	if addend == 0 {
		return expr
	}
	if addend > 0 {
		return fmt.Sprintf("%s+%s", expr, renderLiteral(uint32(addend)))
	}
	return fmt.Sprintf("%s-%s", expr, renderLiteral(uint32(-addend)))
}

// renderLiteral renders an unsigned literal: decimal if it fits in under
// 16, "$"-prefixed uppercase hex otherwise.
func renderLiteral(v uint32) string {
	if v < 16 {
		return fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("$%X", v)
}

// renderSigned renders a signed literal using the same decimal/hex cutoff,
// with a leading "-" for negative values.
func renderSigned(v int32) string {
	if v < 0 {
		return "-" + renderLiteral(uint32(-v))
	}
	return renderLiteral(uint32(v))
}
