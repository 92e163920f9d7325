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

// Package paths builds paths to lyn's own resources, relative to a single
// root directory name, without touching the filesystem itself.
package paths

import "path/filepath"

// root is the directory name under which lyn keeps its own resources (most
// notably the auto-discovered lyn.yml config file).
const root = ".lyn"

// ResourcePath joins subPath and filename onto the lyn resource root. Either
// argument may be the empty string.
func ResourcePath(subPath string, filename string) (string, error) {
	p := root
	if subPath != "" {
		p = filepath.Join(p, subPath)
	}
	if filename != "" {
		p = filepath.Join(p, filename)
	}
	return p, nil
}
