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

package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestCollectFiles_SkipsHardSkipDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", "fn a() {}")
	writeFile(t, root, "node_modules/pkg/index.js", "function a() {}")
	writeFile(t, root, "target/debug/out.rs", "fn b() {}")
	writeFile(t, root, ".git/info/exclude", "")

	files, err := CollectFiles(root, false, nil)
	require.NoError(t, err)

	assert.Contains(t, files, "src/lib.rs")
	assert.NotContains(t, files, "node_modules/pkg/index.js")
	assert.NotContains(t, files, "target/debug/out.rs")
}

func TestCollectFiles_SkipsDotDirectoriesExceptGithub(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".idea/workspace.js", "function a() {}")
	writeFile(t, root, ".github/workflows/ci.ts", "function b() {}")

	files, err := CollectFiles(root, false, nil)
	require.NoError(t, err)

	assert.NotContains(t, files, ".idea/workspace.js")
	assert.Contains(t, files, ".github/workflows/ci.ts")
}

func TestCollectFiles_FiltersUnsupportedExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# hi")
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "app.ts", "function a() {}")

	files, err := CollectFiles(root, false, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"app.ts"}, files)
}

func TestCollectFiles_HonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "generated/\n*.gen.ts\n")
	writeFile(t, root, "generated/model.ts", "function a() {}")
	writeFile(t, root, "foo.gen.ts", "function a() {}")
	writeFile(t, root, "foo.ts", "function a() {}")

	files, err := CollectFiles(root, false, nil)
	require.NoError(t, err)

	assert.Contains(t, files, "foo.ts")
	assert.NotContains(t, files, "generated/model.ts")
	assert.NotContains(t, files, "foo.gen.ts")
}

func TestCollectFiles_NegationReincludesFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "*.ts\n!keep.ts\n")
	writeFile(t, root, "drop.ts", "function a() {}")
	writeFile(t, root, "keep.ts", "function a() {}")

	files, err := CollectFiles(root, false, nil)
	require.NoError(t, err)

	assert.Contains(t, files, "keep.ts")
	assert.NotContains(t, files, "drop.ts")
}

func TestCollectFiles_NestedGitignoreScopedToItsDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/.gitignore", "skip.ts\n")
	writeFile(t, root, "a/skip.ts", "function a() {}")
	writeFile(t, root, "b/skip.ts", "function a() {}")

	files, err := CollectFiles(root, false, nil)
	require.NoError(t, err)

	assert.NotContains(t, files, "a/skip.ts")
	assert.Contains(t, files, "b/skip.ts")
}

func TestCollectFiles_OnFileCallbackFiresInWalkOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.ts", "function a() {}")
	writeFile(t, root, "b.ts", "function b() {}")

	var seen []string
	_, err := CollectFiles(root, false, func(relPath string, processed int) {
		seen = append(seen, relPath)
		assert.Equal(t, len(seen), processed)
	})
	require.NoError(t, err)
	assert.Len(t, seen, 2)
}

func TestCollectFiles_SymlinkedDirectoryOnlyRecursedWhenFollowSymlinksSet(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "real/inner.ts", "function a() {}")
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "linked")))

	files, err := CollectFiles(root, false, nil)
	require.NoError(t, err)
	assert.Contains(t, files, "real/inner.ts")
	assert.NotContains(t, files, "linked/inner.ts")

	files, err = CollectFiles(root, true, nil)
	require.NoError(t, err)
	assert.Contains(t, files, "real/inner.ts")
	assert.Contains(t, files, "linked/inner.ts")
}

func TestCollectFiles_SymlinkCycleDoesNotHang(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/keep.ts", "function a() {}")
	require.NoError(t, os.Symlink(root, filepath.Join(root, "a", "loop")))

	files, err := CollectFiles(root, true, nil)
	require.NoError(t, err)
	assert.Contains(t, files, "a/keep.ts")
}
