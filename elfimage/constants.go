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

// Exported ELF constants needed by callers (symtab, link, eventcode) that
// inspect section types, symbol bindings and special section indices
// directly.
const (
	ShtNull     = shtNull
	ShtProgbits = shtProgbits
	ShtSymtab   = shtSymtab
	ShtStrtab   = shtStrtab
	ShtRela     = shtRela
	ShtNobits   = shtNobits
	ShtRel      = shtRel

	ShnUndef  = shnUndef
	ShnAbs    = shnAbs
	ShnCommon = shnCommon

	StbLocal  = stbLocal
	StbGlobal = stbGlobal
	StbWeak   = stbWeak

	SttNotype  = sttNotype
	SttObject  = sttObject
	SttFunc    = sttFunc
	SttSection = sttSection
	SttFile    = sttFile
)
