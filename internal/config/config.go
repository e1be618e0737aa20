// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package config loads the optional per-project ".astrograph.yaml" that
// supplies CLI flag defaults, so a team can commit analysis settings
// instead of repeating flags on every invocation.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hashsoft7/astrograph/internal/ue"
)

// FileName is the project config file name, looked up in the analysis
// root.
const FileName = ".astrograph.yaml"

// Config holds the overridable defaults a project can commit. Every field
// except IgnoreGlobs is also settable by CLI flag; flags take precedence
// when both are set. IgnoreGlobs is parsed but not applied by the CLI: file
// collection does not read it.
type Config struct {
	Workers        int      `yaml:"workers"`
	Out            string   `yaml:"out"`
	Cache          string   `yaml:"cache"`
	FollowSymlinks bool     `yaml:"follow_symlinks"`
	Entrypoints    []string `yaml:"entrypoints"`
	IgnoreGlobs    []string `yaml:"ignore"`
}

// Load reads root/.astrograph.yaml. A missing file is not an error: it
// returns a zero-value Config so callers can apply flag defaults on top
// unconditionally.
func Load(root string) (*Config, error) {
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, ue.NewIoError(
			"Failed to read "+FileName,
			err.Error(),
			"check that "+path+" is readable",
			err,
		)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, ue.NewParseError(
			"Failed to parse "+FileName,
			err.Error(),
			"fix the YAML syntax in "+path,
			err,
		)
	}
	return &cfg, nil
}
