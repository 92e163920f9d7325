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
	"io"

	"github.com/jetsetilly/lyn/bitio"
	"github.com/jetsetilly/lyn/elfimage"
)

// WriteBlock writes one section's directive stream to w. base is the
// section's own emitted file offset (its Address.Offset), used only to
// decide directive alignment; it does not affect the bytes read, which are
// always relative to the start of sec.Data.
func WriteBlock(w io.Writer, sec *elfimage.ElfSectionRef, blk *Block, base int32) error {
	i := 0
	n := len(blk.CodeMap)

	for i < n {
		idx := blk.CodeMap[i]
		if idx >= 0 {
			code := blk.Pool[idx]
			fileOffset := int(base) + i
			if _, err := fmt.Fprintf(w, "%s %s\n", code.directiveFor(fileOffset), joinArgs(code.Args)); err != nil {
				return err
			}
			i += code.size()
			continue
		}

		end := i
		for end < n && blk.CodeMap[end] < 0 {
			end++
		}

		for i < end {
			off := int(base) + i
			remaining := end - i

			var err error
			switch {
			case off%4 == 0 && remaining >= 4:
				v := bitio.U32(sec.Data, i)
				_, err = fmt.Fprintf(w, "WORD %s\n", renderLiteral(v))
				i += 4
			case off%2 == 0 && remaining >= 2:
				v := uint32(bitio.U16(sec.Data, i))
				_, err = fmt.Fprintf(w, "SHORT %s\n", renderLiteral(v))
				i += 2
			default:
				v := uint32(bitio.U8(sec.Data, i))
				_, err = fmt.Fprintf(w, "BYTE %s\n", renderLiteral(v))
				i++
			}
			if err != nil {
				return err
			}
		}
	}

	return nil
}
