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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsZeroValueConfig(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 0, cfg.Workers)
	assert.Empty(t, cfg.Out)
}

func TestLoad_ParsesYAMLFields(t *testing.T) {
	root := t.TempDir()
	content := `workers: 4
out: report.json
cache: .astrograph-cache.json
follow_symlinks: true
entrypoints:
  - main
  - b::handler
ignore:
  - "*.gen.ts"
`
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(content), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "report.json", cfg.Out)
	assert.Equal(t, ".astrograph-cache.json", cfg.Cache)
	assert.True(t, cfg.FollowSymlinks)
	assert.Equal(t, []string{"main", "b::handler"}, cfg.Entrypoints)
	assert.Equal(t, []string{"*.gen.ts"}, cfg.IgnoreGlobs)
}

func TestLoad_InvalidYAMLReturnsParseError(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("workers: [this is not valid\n"), 0o644))

	cfg, err := Load(root)
	assert.Nil(t, cfg)
	require.Error(t, err)
}
