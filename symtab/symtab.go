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

// Package symtab merges the per-ELF symbol tables of every input ELF into
// one global table, applying ELF's weak/strong/undefined precedence rules,
// and builds the per-ELF indirection vectors the relocation applier uses to
// translate a local symbol index into a global one.
package symtab

import (
	"github.com/jetsetilly/lyn/elfimage"
	"github.com/jetsetilly/lyn/errors"
	"github.com/jetsetilly/lyn/layout"
)

// Scope classifies a global table entry.
type Scope int

const (
	Local Scope = iota
	Global
	Undefined
)

// Symbol is one entry of the global symbol table.
type Symbol struct {
	ElfIdx int
	SecIdx int
	SymIdx int
	Name   string
	Scope  Scope

	// Address is filled by the link package once layout has been
	// finalized. Nil means "only knowable at assembly time" (a weak
	// undefined symbol left to the assembler) or not yet computed.
	Address *layout.Address

	// weak records whether the current definition (if Scope == Global)
	// came from a weak symbol, for the purposes of future merges. It has
	// no meaning when Scope is Local or Undefined.
	weak bool
}

// Table is the global symbol table built across every input ELF.
type Table struct {
	Symbols []Symbol

	// byName indexes non-local symbols by name for the merge algorithm.
	byName map[string]int
}

// Lookup returns the global table index of the winning definition for name,
// if any non-local symbol by that name was ever seen.
func (t *Table) Lookup(name string) (int, bool) {
	idx, ok := t.byName[name]
	return idx, ok
}

// Build walks every SHT_SYMTAB section of every image in order, producing
// the global symbol table and, for each symtab section, an indirection
// vector (stored on the owning ElfImage) mapping local symbol index to
// global table index.
func Build(images []*elfimage.ElfImage) (*Table, error) {
	tab := &Table{byName: make(map[string]int)}

	for elfIdx, img := range images {
		for secIdx := range img.Sections {
			sec := &img.Sections[secIdx]
			if sec.Type != elfimage.ShtSymtab {
				continue
			}

			n, err := img.EntryCount(secIdx)
			if err != nil {
				return nil, err
			}

			indirection := make([]uint32, n)

			for symIdx := 0; symIdx < n; symIdx++ {
				sym, err := img.Symbol(secIdx, symIdx)
				if err != nil {
					return nil, err
				}

				name, err := img.StringAt(int(sec.Link), sym.Name)
				if err != nil {
					return nil, err
				}

				globalIdx, err := tab.merge(elfIdx, secIdx, symIdx, name, sym)
				if err != nil {
					return nil, err
				}

				indirection[symIdx] = uint32(globalIdx)
			}

			img.Indirection[secIdx] = indirection
		}
	}

	return tab, nil
}

// merge applies the per-name merge rules and returns the global index the
// local symbol should map to.
func (t *Table) merge(elfIdx, secIdx, symIdx int, name string, sym elfimage.Sym) (int, error) {
	if name == "" || sym.Bind() == elfimage.StbLocal {
		t.Symbols = append(t.Symbols, Symbol{
			ElfIdx: elfIdx, SecIdx: secIdx, SymIdx: symIdx, Name: name, Scope: Local,
		})
		return len(t.Symbols) - 1, nil
	}

	incomingDefined := sym.Shndx != elfimage.ShnUndef
	incomingWeak := sym.Bind() == elfimage.StbWeak

	existingIdx, ok := t.byName[name]
	if !ok {
		scope := Global
		if !incomingDefined {
			scope = Undefined
		}
		t.Symbols = append(t.Symbols, Symbol{
			ElfIdx: elfIdx, SecIdx: secIdx, SymIdx: symIdx, Name: name, Scope: scope, weak: incomingWeak,
		})
		idx := len(t.Symbols) - 1
		t.byName[name] = idx
		return idx, nil
	}

	// incoming is undefined: always reuse the existing entry, whatever it is.
	if !incomingDefined {
		return existingIdx, nil
	}

	existing := &t.Symbols[existingIdx]

	switch {
	case existing.Scope == Undefined || existing.weak:
		existing.ElfIdx, existing.SecIdx, existing.SymIdx = elfIdx, secIdx, symIdx
		existing.Name = name
		existing.Scope = Global
		existing.weak = incomingWeak
	case incomingWeak:
		// keep existing strong (or equally weak) definition
	default:
		return existingIdx, errors.Errorf(errors.MultiplyDefined, name)
	}

	return existingIdx, nil
}
