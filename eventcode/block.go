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

// Block is one section's worth of emitted directives: a map from byte
// offset to the pool index of the Code occupying it (-1 meaning "use the
// section's raw byte at this offset"), plus the pool itself.
//
// Invariant: if CodeMap[i] == idx, the code occupies the contiguous run
// [start, start+size) where start is the smallest offset mapping to idx.
type Block struct {
	CodeMap []int
	Pool    []Code
}

// NewBlock creates a Block for a section of the given size, with every
// offset initially unmapped (raw bytes).
func NewBlock(size int) *Block {
	m := make([]int, size)
	for i := range m {
		m[i] = -1
	}
	return &Block{CodeMap: m}
}

// MapCode appends code to the pool and maps [offset, offset+code.size())
// to it.
func (b *Block) MapCode(offset int, code Code) {
	idx := len(b.Pool)
	b.Pool = append(b.Pool, code)
	n := code.size()
	for i := 0; i < n; i++ {
		b.CodeMap[offset+i] = idx
	}
}

// runStart returns the smallest offset whose CodeMap entry equals idx,
// scanning from hint (the last known start) backwards only as far as
// necessary; callers always pass a hint inside the run.
func (b *Block) runStart(idx, hint int) int {
	start := hint
	for start > 0 && b.CodeMap[start-1] == idx {
		start--
	}
	return start
}

// Pack scans the code map in ascending order, merging each mapped code
// into its predecessor whenever combinable() allows it, and rewrites the
// merged range's map entries to the surviving pool index.
func (b *Block) Pack() {
	i := 0
	for i < len(b.CodeMap) {
		idx := b.CodeMap[i]
		if idx < 0 {
			i++
			continue
		}
		start := i
		for i < len(b.CodeMap) && b.CodeMap[i] == idx {
			i++
		}
		// i is now one past this code's run; try to merge every following
		// run that is combinable, walking forward until one doesn't fit.
		for i < len(b.CodeMap) {
			nextIdx := b.CodeMap[i]
			if nextIdx < 0 {
				break
			}
			nextStart := i
			for i < len(b.CodeMap) && b.CodeMap[i] == nextIdx {
				i++
			}
			if !combinable(b.Pool[idx], b.Pool[nextIdx]) {
				i = nextStart
				break
			}
			merged := Code{
				Kind:                b.Pool[idx].Kind,
				Args:                append(append([]string(nil), b.Pool[idx].Args...), b.Pool[nextIdx].Args...),
				CurrentOffsetAnchor: b.Pool[idx].CurrentOffsetAnchor || b.Pool[nextIdx].CurrentOffsetAnchor,
			}
			newIdx := len(b.Pool)
			b.Pool = append(b.Pool, merged)
			for j := start; j < i; j++ {
				b.CodeMap[j] = newIdx
			}
			idx = newIdx
		}
	}
}

// Optimize rebuilds the pool in map order, dropping any entry the map no
// longer references (an orphan left behind by Pack's merges).
func (b *Block) Optimize() {
	newPool := make([]Code, 0, len(b.Pool))
	translate := make(map[int]int, len(b.Pool))

	i := 0
	for i < len(b.CodeMap) {
		idx := b.CodeMap[i]
		if idx < 0 {
			i++
			continue
		}
		if newIdx, ok := translate[idx]; ok {
			// already emitted in the new pool; skip to the end of this run.
			for i < len(b.CodeMap) && b.CodeMap[i] == idx {
				b.CodeMap[i] = newIdx
				i++
			}
			continue
		}
		newIdx := len(newPool)
		newPool = append(newPool, b.Pool[idx])
		translate[idx] = newIdx
		for i < len(b.CodeMap) && b.CodeMap[i] == idx {
			b.CodeMap[i] = newIdx
			i++
		}
	}

	b.Pool = newPool
}
