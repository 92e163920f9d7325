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

// Package elfinput abstracts the one way lyn ever acquires an ELF object:
// reading it whole from a local file. It exists mainly so that the
// remainder of the pipeline (elfimage onwards) depends on a []byte, not on
// an os.File or a filename, and so that an optional SHA-1 check can sit at
// the boundary rather than scattered through the linker.
package elfinput

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"strings"

	"github.com/jetsetilly/lyn/logger"
	"github.com/jetsetilly/lyn/resources/fs"
)

// Loader reads a single relocatable object file from disk.
type Loader struct {
	// Filename as given on the command line.
	Filename string

	// ExpectedSHA1, if non-empty, is checked against the loaded bytes by
	// Open. It is given in lowercase hexadecimal, matching the output of
	// "sha1sum".
	ExpectedSHA1 string

	// Data is nil until Open succeeds.
	Data []byte

	// HashSHA1 is the hash of Data, populated by Open.
	HashSHA1 string
}

// NewLoader prepares a Loader for filename. expectSHA1 is checked against
// an "-expect-sha1" command line value of the form "path:hexdigest"; if
// filename does not match the path half, expectSHA1 is ignored for this
// loader.
func NewLoader(filename string, expectSHA1 string) Loader {
	ld := Loader{Filename: filename}

	if expectSHA1 == "" {
		return ld
	}

	path, digest, ok := strings.Cut(expectSHA1, ":")
	if ok && path == filename {
		ld.ExpectedSHA1 = strings.ToLower(strings.TrimSpace(digest))
	}

	return ld
}

// Open reads the entirety of the file into Data and, if ExpectedSHA1 is
// set, verifies it.
func (ld *Loader) Open() error {
	data, err := fs.ReadFile(ld.Filename)
	if err != nil {
		return fmt.Errorf("elfinput: %w", err)
	}

	ld.Data = data
	ld.HashSHA1 = fmt.Sprintf("%x", sha1.Sum(data))
	logger.Logf("elfinput", "read %d bytes from %s", len(data), ld.Filename)

	if ld.ExpectedSHA1 != "" && ld.ExpectedSHA1 != ld.HashSHA1 {
		return fmt.Errorf("elfinput: %s: unexpected SHA-1 hash: got %s, wanted %s",
			ld.Filename, ld.HashSHA1, ld.ExpectedSHA1)
	}

	return nil
}

// Reader returns a fresh reader over the loaded data. It panics if called
// before a successful Open, mirroring the programming-error nature of the
// mistake.
func (ld *Loader) Reader() *bytes.Reader {
	if ld.Data == nil {
		panic("elfinput: Reader() called before Open()")
	}
	return bytes.NewReader(ld.Data)
}
