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
	"sort"

	"github.com/jetsetilly/lyn/elfimage"
	"github.com/jetsetilly/lyn/errors"
	"github.com/jetsetilly/lyn/layout"
	"github.com/jetsetilly/lyn/reloc"
	"github.com/jetsetilly/lyn/symtab"
)

// ApplyRelocations walks every SHT_REL and SHT_RELA section of every image,
// concretizing what it can and recording the rest as a PendingRelocation on
// the section being relocated. When concretize is false (the -nolink flag),
// nothing is ever concretized: every relocation is left pending for the
// event emitter to render textually. When longCalls is true, a veneer (see
// longCallBuilder) is built for every relative relocation whose target sits
// in a different anchor than its call site; the relocation is redirected
// through it only when it is concretized. A relocation left pending still
// names its original symbol, so its veneer is built but not referenced.
// Returns the (possibly
// longcall-veneer-extended) image list.
func ApplyRelocations(tab *symtab.Table, l *layout.Layout, images []*elfimage.ElfImage, concretize, longCalls bool) ([]*elfimage.ElfImage, error) {
	lc := newLongCallBuilder(tab, l, images)

	for _, img := range images {
		for secIdx := range img.Sections {
			sec := &img.Sections[secIdx]
			if sec.Type != elfimage.ShtRel && sec.Type != elfimage.ShtRela {
				continue
			}

			target, err := img.SectionHeader(int(sec.Info))
			if err != nil {
				return nil, err
			}
			if target.LayoutIndex < 0 {
				continue
			}

			symtabSecIdx := int(sec.Link)

			n, err := img.EntryCount(secIdx)
			if err != nil {
				return nil, err
			}

			for i := 0; i < n; i++ {
				var offset uint32
				var localSymIdx uint32
				var kind uint32
				var entryAddend int32

				if sec.Type == elfimage.ShtRela {
					rela, err := img.RelaEntry(secIdx, i)
					if err != nil {
						return nil, err
					}
					offset, localSymIdx, kind, entryAddend = rela.Offset, rela.Sym(), rela.Type(), rela.Addend
				} else {
					rel, err := img.RelEntry(secIdx, i)
					if err != nil {
						return nil, err
					}
					offset, localSymIdx, kind = rel.Offset, rel.Sym(), rel.Type()
				}

				if kind == reloc.RArmV4Bx {
					continue
				}

				info, err := reloc.Lookup(kind)
				if err != nil {
					return nil, err
				}

				if int(offset)+info.PartSize*len(info.Parts) > len(target.Data) {
					return nil, errors.Errorf(errors.Truncated, "relocation at offset %d of section %d", offset, target.SecIdx)
				}

				globalIdx := int(img.Indirection[symtabSecIdx][localSymIdx])

				addend := entryAddend + info.Extract(target.Data[offset:])

				targetAddr, err := resolveRelocationTarget(images, tab, globalIdx, l)
				if err != nil {
					return nil, err
				}

				if targetAddr == nil {
					info.Inject(target.Data[offset:], addend)
					target.Pending = append(target.Pending, elfimage.PendingRelocation{
						Offset: int(offset), Kind: kind, Symbol: globalIdx,
					})
					continue
				}

				secAddr := l.SectionAddress(target.LayoutIndex)

				if longCalls && info.IsRelative && targetAddr.Anchor != secAddr.Anchor {
					veneerAddr := lc.veneerFor(tab.Symbols[globalIdx].Name, *targetAddr)
					targetAddr = veneerAddr
				}

				if concretize && !info.IsRelative && targetAddr.Anchor == layout.Absolute {
					value := targetAddr.Offset + addend
					if info.CanEncode(value) {
						info.Inject(target.Data[offset:], value)
						continue
					}
				}

				if concretize && info.IsRelative && targetAddr.Anchor == secAddr.Anchor {
					value := targetAddr.Offset + addend - (secAddr.Offset + int32(offset))
					if info.CanEncode(value) {
						info.Inject(target.Data[offset:], value)
						continue
					}
				}

				info.Inject(target.Data[offset:], addend)
				target.Pending = append(target.Pending, elfimage.PendingRelocation{
					Offset: int(offset), Kind: kind, Symbol: globalIdx,
				})
			}

			sort.Slice(target.Pending, func(i, j int) bool {
				return target.Pending[i].Offset < target.Pending[j].Offset
			})
		}
	}

	return lc.finish(), nil
}

// resolveRelocationTarget computes the address the relocation's symbol
// resolves to, following the rules on the winning definition's own raw ELF
// entry (SHN_ABS, SHN_UNDEF, SHN_COMMON, or else the owning section's layout
// slot). It looks the entry up through the merged global table's own
// (ElfIdx, SecIdx, SymIdx), not through the referencing image's local
// symbol: a relocation against a name defined in another input ELF must
// resolve against that ELF's definition, not the referencing image's own
// SHN_UNDEF placeholder for the same name. Unlike AddressSymbols, a
// reference to a discarded section is fatal here: a relocation that can
// never be satisfied is a real error, not a silently-absent address.
func resolveRelocationTarget(images []*elfimage.ElfImage, tab *symtab.Table, globalIdx int, l *layout.Layout) (*layout.Address, error) {
	gsym := tab.Symbols[globalIdx]
	img := images[gsym.ElfIdx]

	sym, err := img.Symbol(gsym.SecIdx, gsym.SymIdx)
	if err != nil {
		return nil, err
	}

	switch sym.Shndx {
	case elfimage.ShnAbs:
		return &layout.Address{Anchor: layout.Absolute, Offset: int32(sym.Value)}, nil

	case elfimage.ShnUndef:
		return nil, nil

	case elfimage.ShnCommon:
		symtabSec, err := img.SectionHeader(gsym.SecIdx)
		if err != nil {
			return nil, err
		}
		name, err := img.StringAt(int(symtabSec.Link), sym.Name)
		if err != nil {
			return nil, err
		}
		return nil, errors.Errorf(errors.RelocationToCommon, name)

	default:
		owner, err := img.SectionHeader(int(sym.Shndx))
		if err != nil {
			return nil, err
		}
		if owner.LayoutIndex < 0 {
			return nil, errors.Errorf(errors.RelocationToDiscarded, owner.Name)
		}
		addr := l.SectionAddress(owner.LayoutIndex).Add(int32(sym.Value))
		return &addr, nil
	}
}
