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
	"fmt"

	"github.com/jetsetilly/lyn/bitio"
	"github.com/jetsetilly/lyn/errors"
)

// PendingRelocation is a relocation that could not be concretized at link
// time and must be rendered as a textual expression by the event emitter.
type PendingRelocation struct {
	Offset int
	Kind   uint32
	Symbol int // index into the global symbol table
}

// ElfSectionRef is everything later phases need to know about one section
// of one input ELF.
type ElfSectionRef struct {
	SecIdx  int
	Name    string
	Type    uint32
	Flags   uint32
	Link    uint32
	Info    uint32
	Entsize uint32

	// Data is the section's raw bytes, empty for SHT_NOBITS.
	Data []byte

	// LayoutIndex is the index into the layout vector this section was
	// assigned, or -1 if the section has not been (or will never be) laid
	// out.
	LayoutIndex int

	// Pending is the set of relocations that could not be concretized,
	// sorted by Offset ascending once the relocation applier has run.
	Pending []PendingRelocation
}

// Alloc reports whether the section is marked SHF_ALLOC.
func (s *ElfSectionRef) Alloc() bool { return s.Flags&shfAlloc != 0 }

// Writable reports whether the section is marked SHF_WRITE.
func (s *ElfSectionRef) Writable() bool { return s.Flags&shfWrite != 0 }

// Retained reports whether the section should be considered for layout: a
// nonzero-size, allocated section. Writable sections are retained here too;
// layout.Prepare rejects them.
func (s *ElfSectionRef) Retained() bool {
	return len(s.Data) > 0 && s.Alloc()
}

// Sym is a typed view of one ELF32 symbol table entry.
type Sym struct {
	Name  uint32
	Value uint32
	Size  uint32
	Info  uint8
	Other uint8
	Shndx uint16
}

// Bind returns the symbol's binding (STB_*).
func (s Sym) Bind() uint8 { return symBind(s.Info) }

// Type returns the symbol's type (STT_*).
func (s Sym) Type() uint8 { return symType(s.Info) }

// Rel is a typed view of one ELF32 REL entry.
type Rel struct {
	Offset uint32
	Info   uint32
}

// Sym returns the symbol table index this relocation refers to.
func (r Rel) Sym() uint32 { return relSym(r.Info) }

// Type returns the ARM32 relocation type number.
func (r Rel) Type() uint32 { return relType(r.Info) }

// Rela is a typed view of one ELF32 RELA entry.
type Rela struct {
	Offset uint32
	Info   uint32
	Addend int32
}

// Sym returns the symbol table index this relocation refers to.
func (r Rela) Sym() uint32 { return relSym(r.Info) }

// Type returns the ARM32 relocation type number.
func (r Rela) Type() uint32 { return relType(r.Info) }

// ElfImage is a sanitized view over one input ELF object file.
type ElfImage struct {
	// Name is used in diagnostics; typically the input filename.
	Name string

	// Raw is the sanitized (native-endian) byte buffer. Owned by this
	// ElfImage; later phases read it but never write it.
	Raw []byte

	Sections []ElfSectionRef

	shstrndx int

	// Indirection maps a SHT_SYMTAB section index to a vector translating
	// local symbol indices to global symbol table indices. Populated by the
	// symtab package.
	Indirection map[int][]uint32
}

// New sanitizes raw in place and builds an ElfImage over it.
func New(name string, raw []byte) (*ElfImage, error) {
	if err := Sanitize(raw); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	shoff := int(bitio.U32(raw, ehShoff))
	shnum := int(bitio.U16(raw, ehShnum))
	shstrndx := int(bitio.U16(raw, ehShstrndx))

	img := &ElfImage{
		Name:        name,
		Raw:         raw,
		shstrndx:    shstrndx,
		Indirection: make(map[int][]uint32),
	}

	for i := 0; i < shnum; i++ {
		o := shoff + i*shSize
		sh := raw[o : o+shSize]

		sec := ElfSectionRef{
			SecIdx:      i,
			Type:        bitio.U32(sh, shType),
			Flags:       bitio.U32(sh, shFlags),
			Link:        bitio.U32(sh, shLink),
			Info:        bitio.U32(sh, shInfo),
			Entsize:     bitio.U32(sh, shEntsize),
			LayoutIndex: -1,
		}

		off := int(bitio.U32(sh, shOffset))
		size := int(bitio.U32(sh, shSz))

		if sec.Type != shtNobits && size > 0 {
			if off+size > len(raw) {
				return nil, errors.Errorf(errors.Truncated, "section %d data", i)
			}
			sec.Data = raw[off : off+size]
		}

		img.Sections = append(img.Sections, sec)
	}

	if shstrndx >= 0 && shstrndx < len(img.Sections) {
		for i := range img.Sections {
			name, err := img.StringAt(shstrndx, bitio.U32(raw[shoff+i*shSize:], shName))
			if err != nil {
				return nil, err
			}
			img.Sections[i].Name = name
		}
	}

	return img, nil
}

// SectionHeader returns the section reference for secIdx.
func (img *ElfImage) SectionHeader(secIdx int) (*ElfSectionRef, error) {
	if secIdx < 0 || secIdx >= len(img.Sections) {
		return nil, errors.Errorf(errors.BadSectionLink, "section index %d", secIdx)
	}
	return &img.Sections[secIdx], nil
}

// SectionData returns the data span for secIdx.
func (img *ElfImage) SectionData(secIdx int) ([]byte, error) {
	sec, err := img.SectionHeader(secIdx)
	if err != nil {
		return nil, err
	}
	return sec.Data, nil
}

// EntryCount returns the number of fixed-size entries in secIdx, derived
// from sh_size / sh_entsize.
func (img *ElfImage) EntryCount(secIdx int) (int, error) {
	sec, err := img.SectionHeader(secIdx)
	if err != nil {
		return 0, err
	}
	if sec.Entsize == 0 {
		if len(sec.Data) == 0 {
			return 0, nil
		}
		return 0, errors.Errorf(errors.BadEntrySize, "section %d has zero entsize", secIdx)
	}
	return len(sec.Data) / int(sec.Entsize), nil
}

// StringAt reads a null-terminated string at offset within the STRTAB
// section strtabSecIdx. An offset past the end of the section's data
// returns the empty string rather than an error.
func (img *ElfImage) StringAt(strtabSecIdx int, offset uint32) (string, error) {
	sec, err := img.SectionHeader(strtabSecIdx)
	if err != nil {
		return "", err
	}

	o := int(offset)
	if o < 0 || o >= len(sec.Data) {
		return "", nil
	}

	end := o
	for end < len(sec.Data) && sec.Data[end] != 0 {
		end++
	}

	return string(sec.Data[o:end]), nil
}

// Symbol returns the idx'th entry of the SHT_SYMTAB section secIdx.
func (img *ElfImage) Symbol(secIdx, idx int) (Sym, error) {
	sec, err := img.SectionHeader(secIdx)
	if err != nil {
		return Sym{}, err
	}
	o := idx * symSize
	if o+symSize > len(sec.Data) {
		return Sym{}, errors.Errorf(errors.Truncated, "symbol %d of section %d", idx, secIdx)
	}
	b := sec.Data[o : o+symSize]
	return Sym{
		Name:  bitio.U32(b, symName),
		Value: bitio.U32(b, symValue),
		Size:  bitio.U32(b, symSz),
		Info:  bitio.U8(b, symInfo),
		Other: bitio.U8(b, symOther),
		Shndx: bitio.U16(b, symShndx),
	}, nil
}

// RelEntry returns the idx'th entry of the SHT_REL section secIdx.
func (img *ElfImage) RelEntry(secIdx, idx int) (Rel, error) {
	sec, err := img.SectionHeader(secIdx)
	if err != nil {
		return Rel{}, err
	}
	o := idx * relSize
	if o+relSize > len(sec.Data) {
		return Rel{}, errors.Errorf(errors.Truncated, "REL entry %d of section %d", idx, secIdx)
	}
	b := sec.Data[o : o+relSize]
	return Rel{Offset: bitio.U32(b, relOffset), Info: bitio.U32(b, relInfo)}, nil
}

// RelaEntry returns the idx'th entry of the SHT_RELA section secIdx.
func (img *ElfImage) RelaEntry(secIdx, idx int) (Rela, error) {
	sec, err := img.SectionHeader(secIdx)
	if err != nil {
		return Rela{}, err
	}
	o := idx * relaSize
	if o+relaSize > len(sec.Data) {
		return Rela{}, errors.Errorf(errors.Truncated, "RELA entry %d of section %d", idx, secIdx)
	}
	b := sec.Data[o : o+relaSize]
	return Rela{
		Offset: bitio.U32(b, relaOffset),
		Info:   bitio.U32(b, relaInfo),
		Addend: int32(bitio.U32(b, relaAddend)),
	}, nil
}

// symbolName resolves a symbol's name via the STRTAB linked from its symtab
// section (Link).
func (img *ElfImage) symbolName(symtabSecIdx int, sym Sym) (string, error) {
	symtab, err := img.SectionHeader(symtabSecIdx)
	if err != nil {
		return "", err
	}
	return img.StringAt(int(symtab.Link), sym.Name)
}

// IsImplicitReference classifies this ELF as "a table of reference
// addresses" rather than "a patch to emit": true when it has no allocated
// section with nonzero size, and every non-local symbol is either
// SHN_UNDEF or SHN_ABS.
func (img *ElfImage) IsImplicitReference() (bool, error) {
	for i := range img.Sections {
		if img.Sections[i].Retained() {
			return false, nil
		}
	}

	for i := range img.Sections {
		if img.Sections[i].Type != shtSymtab {
			continue
		}
		n, err := img.EntryCount(i)
		if err != nil {
			return false, err
		}
		for j := 0; j < n; j++ {
			sym, err := img.Symbol(i, j)
			if err != nil {
				return false, err
			}
			if sym.Bind() == stbLocal {
				continue
			}
			if sym.Shndx != shnUndef && sym.Shndx != shnAbs {
				return false, nil
			}
		}
	}

	return true, nil
}

// BuildReferenceAddresses returns a name -> address map built from this
// ELF's SHN_ABS non-local symbols. Everything else is ignored.
func (img *ElfImage) BuildReferenceAddresses() (map[string]uint32, error) {
	out := make(map[string]uint32)

	for i := range img.Sections {
		if img.Sections[i].Type != shtSymtab {
			continue
		}
		n, err := img.EntryCount(i)
		if err != nil {
			return nil, err
		}
		for j := 0; j < n; j++ {
			sym, err := img.Symbol(i, j)
			if err != nil {
				return nil, err
			}
			if sym.Bind() == stbLocal || sym.Shndx != shnAbs {
				continue
			}
			name, err := img.symbolName(i, sym)
			if err != nil {
				return nil, err
			}
			if name == "" {
				continue
			}
			out[name] = sym.Value
		}
	}

	return out, nil
}
