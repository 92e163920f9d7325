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
	"github.com/jetsetilly/lyn/elfimage"
	"github.com/jetsetilly/lyn/layout"
	"github.com/jetsetilly/lyn/logger"
	"github.com/jetsetilly/lyn/symtab"
)

// Options configures a pipeline run. It mirrors the command line's
// -link/-hook/-longcalls toggles.
type Options struct {
	// Link enables concretizing relocations that can be resolved now,
	// instead of always deferring to a textual expression.
	Link bool

	// Hook enables generating Thumb-to-ARM veneers at reference addresses
	// whose symbol is redefined by a patch.
	Hook bool

	// LongCalls enables generating a veneer for a relative relocation whose
	// target anchor differs from its call site, instead of deferring
	// straight to a textual branch to the absolute address.
	LongCalls bool
}

// Result is everything the event emitter needs.
type Result struct {
	Images []*elfimage.ElfImage
	Layout *layout.Layout
	Table  *symtab.Table
}

// Run drives every phase in order: merge symbol tables, lay out retained
// sections, optionally insert hook veneers and re-finalize, compute every
// symbol's address, then apply every relocation.
func Run(images []*elfimage.ElfImage, opts Options) (*Result, error) {
	tab, err := symtab.Build(images)
	if err != nil {
		return nil, err
	}

	l, err := layout.Prepare(images)
	if err != nil {
		return nil, err
	}
	layout.Finalize(l, images)

	if err := AddressSymbols(tab, l, images); err != nil {
		return nil, err
	}

	if opts.Hook {
		withVeneers, err := BuildHookVeneers(tab, images, l)
		if err != nil {
			return nil, err
		}
		if withVeneers != nil {
			images = withVeneers
			layout.Finalize(l, images)
			if err := AddressSymbols(tab, l, images); err != nil {
				return nil, err
			}
		}
	}

	images, err = ApplyRelocations(tab, l, images, opts.Link, opts.LongCalls)
	if err != nil {
		return nil, err
	}

	logger.Logf("link", "%d symbols, %d layout sections, %d images", len(tab.Symbols), len(l.Sections), len(images))

	return &Result{Images: images, Layout: l, Table: tab}, nil
}
