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
	"github.com/jetsetilly/lyn/errors"
	"github.com/jetsetilly/lyn/layout"
	"github.com/jetsetilly/lyn/logger"
	"github.com/jetsetilly/lyn/reloc"
	"github.com/jetsetilly/lyn/symtab"
)

// hookVeneer is the 16-byte Thumb-to-ARM trampoline dropped at a reference
// ELF's original address. It loads a literal ARM address from the pool word
// at offset 12 and branches to it:
//
//	BX PC            ; 78 47         (switch to ARM state)
//	NOP              ; C0 46
//	LDR IP, [PC, #0] ; 00 C0 9F E5
//	BX IP            ; 1C FF 2F E1
//	<pool word, relocated to the new implementation>
var hookVeneer = []byte{0x78, 0x47, 0xC0, 0x46, 0x00, 0xC0, 0x9F, 0xE5, 0x1C, 0xFF, 0x2F, 0xE1, 0, 0, 0, 0}

// referenceSymbol is one non-local SHN_ABS symbol contributed by a reference
// ELF, kept separate from the merged global table since a patch ELF's own
// definition of the same name is expected to win the merge.
type referenceSymbol struct {
	name   string
	value  uint32
	isFunc bool
}

func collectReferenceSymbols(images []*elfimage.ElfImage) ([]referenceSymbol, error) {
	var out []referenceSymbol

	for _, img := range images {
		isRef, err := img.IsImplicitReference()
		if err != nil {
			return nil, err
		}
		if !isRef {
			continue
		}

		for secIdx := range img.Sections {
			sec := &img.Sections[secIdx]
			if sec.Type != elfimage.ShtSymtab {
				continue
			}
			n, err := img.EntryCount(secIdx)
			if err != nil {
				return nil, err
			}
			for j := 0; j < n; j++ {
				sym, err := img.Symbol(secIdx, j)
				if err != nil {
					return nil, err
				}
				if sym.Bind() == elfimage.StbLocal || sym.Shndx != elfimage.ShnAbs {
					continue
				}
				name, err := img.StringAt(int(sec.Link), sym.Name)
				if err != nil {
					return nil, err
				}
				if name == "" {
					continue
				}
				out = append(out, referenceSymbol{name: name, value: sym.Value, isFunc: sym.Type() == elfimage.SttFunc})
			}
		}
	}

	return out, nil
}

// BuildHookVeneers finds every reference symbol whose name was re-defined by
// a real patch symbol (a "hook") and appends a synthetic image carrying one
// Absolute-anchored section per hook, placed at the reference symbol's own
// ROM address (Thumb bit masked off) so old code branching to the original
// location lands in the veneer and is redirected into the new
// implementation. A hook target outside ROM, or not STT_FUNC, is fatal.
func BuildHookVeneers(tab *symtab.Table, images []*elfimage.ElfImage, l *layout.Layout) ([]*elfimage.ElfImage, error) {
	refs, err := collectReferenceSymbols(images)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, nil
	}

	veneerImg := &elfimage.ElfImage{Name: "<hooks>", Indirection: make(map[int][]uint32)}
	var veneerTargets []uint32

	for _, ref := range refs {
		winnerIdx, ok := tab.Lookup(ref.name)
		if !ok {
			continue
		}
		winner := tab.Symbols[winnerIdx]
		if winner.Address == nil || winner.Address.Anchor != layout.FloatRom {
			// no patch definition replaced the reference: nothing to hook.
			continue
		}

		addr := layout.Address{Anchor: layout.Absolute, Offset: int32(ref.value)}
		if !addr.InRom() {
			return nil, errors.Errorf(errors.HookNotInRom, ref.name)
		}
		if !ref.isFunc {
			return nil, errors.Errorf(errors.HookNotAFunction, ref.name)
		}

		logger.Logf("link", "hooking %s at 0x%08x", ref.name, ref.value)

		data := make([]byte, len(hookVeneer))
		copy(data, hookVeneer)

		sec := elfimage.ElfSectionRef{
			SecIdx:      len(veneerImg.Sections),
			Name:        fmt.Sprintf("__lyn_hook_%s", ref.name),
			Type:        elfimage.ShtProgbits,
			Flags:       0x2, // SHF_ALLOC
			Data:        data,
			LayoutIndex: -1,
			Pending: []elfimage.PendingRelocation{
				{Offset: 12, Kind: reloc.RArmAbs32, Symbol: winnerIdx},
			},
		}
		veneerImg.Sections = append(veneerImg.Sections, sec)
		veneerTargets = append(veneerTargets, ref.value)
	}

	if len(veneerImg.Sections) == 0 {
		return nil, nil
	}

	for i := range veneerImg.Sections {
		sec := &veneerImg.Sections[i]
		sec.LayoutIndex = len(l.Sections)
		l.Sections = append(l.Sections, layout.Section{
			// Veneers live at the reference ELF's original ROM address, not
			// floating within the patch: old callers still branch to the
			// original location and must land in the trampoline. The Thumb
			// bit is masked off; ORG wants a plain byte address.
			Address: layout.Address{Anchor: layout.Absolute, Offset: int32(veneerTargets[i] &^ 1)},
			ElfIdx:  len(images),
			SecIdx:  i,
		})
	}

	return append(images, veneerImg), nil
}
