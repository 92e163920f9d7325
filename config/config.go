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

// Package config loads an optional YAML sidecar file giving default values
// for lyn's CLI toggles and a list of reference ELF paths that are always
// included ahead of whatever is given on the command line. A missing file
// at the auto-discovered location is not an error; a malformed one is.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jetsetilly/lyn/errors"
	"github.com/jetsetilly/lyn/logger"
	"github.com/jetsetilly/lyn/resources/fs"
)

// Defaults holds the subset of lyn's CLI toggles a config file may
// override. A nil *bool means "not set in the file"; the command line's own
// default still applies.
type Defaults struct {
	Link       *bool `yaml:"link"`
	LongCalls  *bool `yaml:"longcalls"`
	Hook       *bool `yaml:"hook"`
	Temp       *bool `yaml:"temp"`
	References []string `yaml:"references"`
}

// Config is the parsed content of a lyn.yml file.
type Config struct {
	Defaults `yaml:",inline"`
}

// Load reads and parses path. An empty path is a no-op (returns a zero
// Config, no error) so that "-config=" can disable config loading from the
// command line entirely.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Logf("config", "no config file at %s", path)
			return Config{}, nil
		}
		return Config{}, errors.Errorf(errors.ConfigError, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Errorf(errors.ConfigError, err)
	}

	logger.Logf("config", "loaded %s: %d reference path(s)", path, len(cfg.References))

	return cfg, nil
}

// ApplyIfUnset copies *fromConfig into *dst, unless explicit (the command
// line flag of the same name was given) or fromConfig is nil (the config
// file didn't mention this key). Command-line flags always win over the
// config file, which always wins over modalflag's own built-in default.
func ApplyIfUnset(dst *bool, explicit bool, fromConfig *bool) {
	if explicit || fromConfig == nil {
		return
	}
	*dst = *fromConfig
}
