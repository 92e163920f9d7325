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
	"testing"

	"github.com/jetsetilly/lyn/elfimage"
	"github.com/jetsetilly/lyn/errors"
	"github.com/jetsetilly/lyn/link"
	"github.com/jetsetilly/lyn/reloc"
	"github.com/jetsetilly/lyn/test"
)

// TestRunConcretizesIntraAnchorRelativeCall covers a relative relocation
// whose call site and target both land in the patch's own FloatRom space:
// -link concretizes it in place, leaving nothing pending.
func TestRunConcretizesIntraAnchorRelativeCall(t *testing.T) {
	b := newImageBuilder()
	calleeIdx := b.addSymbol("callee", 0, elfimage.StbGlobal, elfimage.SttFunc, 3)
	textIdx := b.addSection(".text", make([]byte, 4))
	b.addSection(".text2", make([]byte, 4))
	b.addRela(textIdx, relaEntry{offset: 0, sym: calleeIdx, kind: reloc.RArmRel32})

	images := []*elfimage.ElfImage{b.build("patch")}

	result, err := link.Run(images, link.Options{Link: true})
	test.ExpectSuccess(t, err)

	sec := &result.Images[0].Sections[textIdx]
	test.Equate(t, len(sec.Pending), 0)
	// callee lands at float offset 4 (right after .text's own 4 bytes),
	// call site at float offset 0: displacement 4 - 0 = 4.
	test.Equate(t, binary.LittleEndian.Uint32(sec.Data), uint32(4))
}

// TestRunLongCallsRedirectsThroughVeneer covers scenario S3: a relative call
// whose target is a reference ELF's absolute address, under -longcalls. The
// call is redirected through a same-anchor veneer appended to a synthetic
// image, and the original relocation concretizes against that veneer
// instead of staying pending against the far absolute address.
func TestRunLongCallsRedirectsThroughVeneer(t *testing.T) {
	b := newImageBuilder()
	refIdx := b.addSymbol("G_Ref", 0x08010000, elfimage.StbGlobal, elfimage.SttFunc, elfimage.ShnAbs)
	textIdx := b.addSection(".text", make([]byte, 4))
	b.addRela(textIdx, relaEntry{offset: 0, sym: refIdx, kind: reloc.RArmCall})

	images := []*elfimage.ElfImage{b.build("patch")}

	result, err := link.Run(images, link.Options{Link: true, LongCalls: true})
	test.ExpectSuccess(t, err)

	test.Equate(t, len(result.Images), 2)

	sec := &result.Images[0].Sections[textIdx]
	test.Equate(t, len(sec.Pending), 0)

	info, err := reloc.Lookup(reloc.RArmCall)
	test.ExpectSuccess(t, err)
	// the veneer lands right after .text's own 4 bytes, at float offset 4;
	// the call site is at float offset 0, so the concretized displacement
	// is 4.
	test.Equate(t, info.Extract(sec.Data), int32(4))

	veneerImg := result.Images[1]
	test.Equate(t, len(veneerImg.Sections), 1)
	veneerSec := &veneerImg.Sections[0]
	test.Equate(t, len(veneerSec.Data), 16)
	test.Equate(t, veneerSec.Data[0:4], []byte{0x78, 0x47, 0xC0, 0x46})

	test.Equate(t, len(veneerSec.Pending), 1)
	pend := veneerSec.Pending[0]
	test.Equate(t, pend.Offset, 12)
	test.Equate(t, pend.Kind, uint32(reloc.RArmAbs32))

	calleeSym := result.Table.Symbols[pend.Symbol]
	test.Equate(t, calleeSym.Name, "G_Ref")
	test.Equate(t, calleeSym.Address.Offset, int32(0x08010000))
}

// TestRunPropagatesMultiplyDefinedSymbol covers scenario S6: two input ELFs
// both strongly defining the same global name is an error raised all the
// way out of link.Run, not just out of the symbol merge in isolation.
func TestRunPropagatesMultiplyDefinedSymbol(t *testing.T) {
	a := newImageBuilder()
	a.addSymbol("Proc_OnFrame", 0x10, elfimage.StbGlobal, elfimage.SttFunc, elfimage.ShnAbs)

	b := newImageBuilder()
	b.addSymbol("Proc_OnFrame", 0x20, elfimage.StbGlobal, elfimage.SttFunc, elfimage.ShnAbs)

	images := []*elfimage.ElfImage{a.build("a"), b.build("b")}

	_, err := link.Run(images, link.Options{Link: true})
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, errors.Is(err, errors.MultiplyDefined))
}

// TestRunResolvesRelocationAgainstOtherImageDefinition guards the bug the
// other tests in this file would not otherwise catch: a relocation in one
// image against a name defined in a *different* image must resolve against
// that image's own definition, not be left permanently pending because the
// referencing image's own symbol table entry for the name is SHN_UNDEF.
func TestRunResolvesRelocationAgainstOtherImageDefinition(t *testing.T) {
	a := newImageBuilder()
	calleeIdx := a.addSymbol("callee", 0, elfimage.StbGlobal, elfimage.SttFunc, elfimage.ShnUndef)
	textIdx := a.addSection(".text", make([]byte, 4))
	a.addRela(textIdx, relaEntry{offset: 0, sym: calleeIdx, kind: reloc.RArmRel32})

	b := newImageBuilder()
	b.addSymbol("callee", 0, elfimage.StbGlobal, elfimage.SttFunc, 2)
	b.addSection(".text2", make([]byte, 4))

	images := []*elfimage.ElfImage{a.build("a"), b.build("b")}

	result, err := link.Run(images, link.Options{Link: true})
	test.ExpectSuccess(t, err)

	sec := &result.Images[0].Sections[textIdx]
	test.Equate(t, len(sec.Pending), 0)
	// a's .text lands at float offset 0 (size 4), b's .text2 right after at
	// float offset 4: displacement 4 - 0 = 4.
	test.Equate(t, binary.LittleEndian.Uint32(sec.Data), uint32(4))
}
