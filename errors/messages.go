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

package errors

// error categories, one const per entry in the taxonomy of spec.md §7. Each
// is used as the "pattern" argument to Errorf() and so doubles as the key
// compared against in Is() and Has().
const (
	// IO covers failure to open or read an input file, including hash
	// verification failures raised by the elfinput package.
	IO = "IO error: %v"

	// structural ELF errors, raised by the elfimage sanitizer.
	NotElf              = "not an ELF file: %v"
	NotElf32            = "not an ELF32 file: %v"
	NotLittleEndian     = "unrecognised ELF data encoding: %v"
	NotArm32            = "not an ARM ELF file: %v"
	Truncated           = "truncated ELF data: %v"
	BadStringTable      = "bad string table reference: %v"
	BadSectionLink      = "bad section link: %v"
	BadEntrySize        = "bad entry size: %v"
	UnhandledRelocation = "unhandled relocation type: %v"

	// symbol table and layout errors.
	MultiplyDefined       = "multiple definitions of symbol '%v'"
	WritableSectionLayout = "cannot lay out writable section: %v"

	// relocation applier errors.
	RelocationToDiscarded = "relocation to discarded section: %v"
	RelocationToCommon    = "relocation to common symbol is not supported: %v"

	// hook emission errors.
	HookNotInRom     = "hook target is not in ROM: %v"
	HookNotAFunction = "hook target is not a function: %v"

	// ambient: configuration loading.
	ConfigError = "config error: %v"
)
