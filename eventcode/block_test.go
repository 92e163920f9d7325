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

package eventcode_test

import (
	"testing"

	"github.com/jetsetilly/lyn/eventcode"
	"github.com/jetsetilly/lyn/test"
)

func TestNewBlockStartsAllRaw(t *testing.T) {
	b := eventcode.NewBlock(4)
	for _, v := range b.CodeMap {
		test.Equate(t, v, -1)
	}
}

func TestMapCodeOccupiesFullRun(t *testing.T) {
	b := eventcode.NewBlock(4)
	b.MapCode(0, eventcode.Code{Kind: eventcode.Short, Args: []string{"1"}})
	test.Equate(t, b.CodeMap[0], 0)
	test.Equate(t, b.CodeMap[1], 0)
	test.Equate(t, b.CodeMap[2], -1)
}

func TestPackCombinesNeighbouringPlainCodes(t *testing.T) {
	b := eventcode.NewBlock(2)
	b.MapCode(0, eventcode.Code{Kind: eventcode.Byte, Args: []string{"1"}})
	b.MapCode(1, eventcode.Code{Kind: eventcode.Byte, Args: []string{"2"}})

	b.Pack()
	b.Optimize()

	test.Equate(t, len(b.Pool), 1)
	test.Equate(t, b.Pool[0].Args, []string{"1", "2"})
}

func TestPackDoesNotCombineAcrossCurrentOffsetAnchor(t *testing.T) {
	b := eventcode.NewBlock(2)
	b.MapCode(0, eventcode.Code{Kind: eventcode.Byte, Args: []string{"1"}})
	b.MapCode(1, eventcode.Code{Kind: eventcode.Byte, Args: []string{"CURRENTOFFSET"}, CurrentOffsetAnchor: true})

	b.Pack()
	b.Optimize()

	test.Equate(t, len(b.Pool), 2)
}

func TestPackDoesNotCombineDifferentKinds(t *testing.T) {
	b := eventcode.NewBlock(3)
	b.MapCode(0, eventcode.Code{Kind: eventcode.Byte, Args: []string{"1"}})
	b.MapCode(1, eventcode.Code{Kind: eventcode.Short, Args: []string{"2"}})

	b.Pack()
	b.Optimize()

	test.Equate(t, len(b.Pool), 2)
}
