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

// Package eventcode builds and writes the Event Assembler directive stream
// for one relocated section: runs of raw bytes packed into the widest
// directive alignment allows, and pending relocations lowered to typed
// directives carrying a textual expression.
package eventcode

import "fmt"

// Kind is the width (and, for 4-byte values, the semantic flavour) of one
// emitted directive.
type Kind int

const (
	Byte Kind = iota
	Short
	Word
	Poin
)

// Size returns the byte width of one slot of this kind.
func (k Kind) Size() int {
	switch k {
	case Byte:
		return 1
	case Short:
		return 2
	default:
		return 4
	}
}

// directive is the keyword this kind writes when aligned to its own size.
func (k Kind) directive() string {
	switch k {
	case Byte:
		return "BYTE"
	case Short:
		return "SHORT"
	case Word:
		return "WORD"
	default:
		return "POIN"
	}
}

// misalignedDirective is the keyword this kind writes when its file offset
// is not a multiple of its own size. Byte has no misaligned form (every
// offset is "aligned" to 1).
func (k Kind) misalignedDirective() string {
	switch k {
	case Short:
		return "SHORT2"
	case Word:
		return "WORD2"
	case Poin:
		return "POIN2"
	default:
		return k.directive()
	}
}

// Code is one directive's worth of arguments: either a relocation's
// synthesized textual expressions (one per Part of its RelocationInfo), or
// a packed run of raw bytes rendered as decimal/hex literals.
type Code struct {
	Kind Kind

	// Args are the directive's space-separated arguments, already rendered
	// as Event Assembler expression text.
	Args []string

	// CurrentOffsetAnchor is true when any Arg references CURRENTOFFSET,
	// which inhibits combining this code with a neighbour: the assembler's
	// cursor at combine time would no longer match the site the expression
	// was synthesized against.
	CurrentOffsetAnchor bool

	// macro is true for codes synthesized from a relocation (an expression,
	// not a plain integer literal run); macro codes never combine with a
	// neighbour even when both are CurrentOffsetAnchor == false.
	macro bool
}

// size is the number of bytes this code occupies: one Kind-sized slot per
// argument.
func (c Code) size() int {
	return c.Kind.Size() * len(c.Args)
}

// combinable reports whether b may be merged onto the right of a: same
// Kind, neither is a macro (relocation-derived) code, and b does not
// reference CURRENTOFFSET (a already having CURRENTOFFSET on its left is
// harmless; it's the right-hand operand's position that would shift).
func combinable(a, b Code) bool {
	return !a.macro && !b.macro && a.Kind == b.Kind && !b.CurrentOffsetAnchor
}

// directiveFor renders this code's keyword, choosing the misaligned variant
// when fileOffset is not a multiple of the kind's natural size.
func (c Code) directiveFor(fileOffset int) string {
	if c.Kind != Byte && fileOffset%c.Kind.Size() != 0 {
		return c.Kind.misalignedDirective()
	}
	return c.Kind.directive()
}

// String renders the full directive line (without the trailing newline)
// using the aligned keyword, e.g. "POIN G_Foo+4".
func (c Code) String() string {
	return fmt.Sprintf("%s %s", c.Kind.directive(), joinArgs(c.Args))
}

func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}
