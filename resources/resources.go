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

// Package resources builds paths to lyn's own resources. The filesystem
// access itself (reading, opening) lives in the resources/fs subpackage so
// that callers depend on a narrow seam rather than on "os" directly.
package resources

import "path/filepath"

// root is the directory name under which lyn keeps its own resources.
const root = ".lyn"

// JoinPath joins every non-empty element in parts onto the lyn resource
// root.
func JoinPath(parts ...string) (string, error) {
	p := []string{root}
	for _, e := range parts {
		if e != "" {
			p = append(p, e)
		}
	}
	return filepath.Join(p...), nil
}
