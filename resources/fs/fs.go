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

// Package fs is the narrow filesystem seam used by elfinput and config, so
// that neither package needs to import "os" directly. Isolating the seam
// here means tests for those packages can, in principle, substitute an
// in-memory implementation without touching the real filesystem.
package fs

import "os"

// Open opens name for reading.
func Open(name string) (*os.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire named file into memory.
func ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// Stat returns the FileInfo for name.
func Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}
