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
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashsoft7/astrograph/internal/ue"
)

// hardSkipDirs are never descended into regardless of ignore files
// (spec.md §4.2 item 1).
var hardSkipDirs = map[string]struct{}{
	".git":         {},
	"target":       {},
	"node_modules": {},
	"dist":         {},
	"build":        {},
	".turbo":       {},
	".idea":        {},
	".vscode":      {},
	".cargo":       {},
}

// CollectProgress is called once per discovered file during the sequential
// collection path, in walk order, with a running count (total is unknown
// during collecting per spec.md §5 so callers pass 0).
type CollectProgress func(relPath string, processed int)

// CollectFiles walks root (already canonicalized) honoring the ignore
// precedence of spec.md §4.2 and returns repo-relative, slash-separated
// paths whose extension is in the supported set. onFile, if non-nil, is
// invoked once per kept file in walk order (used by the sequential,
// progress-observing pipeline path).
//
// The walk is hand-rolled rather than built on filepath.WalkDir because
// WalkDir's fs.DirEntry is lstat-based: it reports IsDir() == false for a
// symlink pointing at a directory, so the directory branch (and its
// recursive descent) is never reached for a symlinked subtree no matter
// what followSymlinks says. Resolving each entry's real target here lets
// followSymlinks actually gate recursion into symlinked directories, the
// way the original engine's WalkDir::new(root).follow_links(...) does.
func CollectFiles(root string, followSymlinks bool, onFile CollectProgress) ([]string, error) {
	global := globalIgnoreRules(root)

	// dirRules caches the accumulated ignoreSet for each visited directory
	// (repo-relative, "" for root), inherited from its parent plus any
	// .gitignore/.astrographignore declared directly in it.
	rootRules := append([]ignoreRule{}, global...)
	rootRules = append(rootRules, loadDirIgnoreRules(root, "")...)
	dirRules := map[string]*ignoreSet{
		"": {rules: rootRules},
	}

	var files []string
	processed := 0

	// visitedRealDirs guards against symlink cycles: once a directory's
	// resolved real path has been descended into, it is never re-entered.
	visitedRealDirs := map[string]struct{}{}
	if real, err := filepath.EvalSymlinks(root); err == nil {
		visitedRealDirs[real] = struct{}{}
	}

	var walk func(absDir, relDir string) error
	walk = func(absDir, relDir string) error {
		entries, err := os.ReadDir(absDir)
		if err != nil {
			return err
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, entry := range entries {
			name := entry.Name()
			relPath := name
			if relDir != "" {
				relPath = relDir + "/" + name
			}
			absPath := filepath.Join(absDir, name)

			isDir := entry.IsDir()
			if entry.Type()&fs.ModeSymlink != 0 {
				if !followSymlinks {
					continue
				}
				target, statErr := os.Stat(absPath)
				if statErr != nil {
					// Broken symlink: nothing to collect.
					continue
				}
				isDir = target.IsDir()
				if isDir {
					real, evalErr := filepath.EvalSymlinks(absPath)
					if evalErr != nil {
						continue
					}
					if _, seen := visitedRealDirs[real]; seen {
						continue
					}
					visitedRealDirs[real] = struct{}{}
				}
			}

			if isDir {
				if _, skip := hardSkipDirs[name]; skip {
					continue
				}
				if len(name) > 0 && name[0] == '.' && name != ".github" {
					continue
				}

				parentSet := dirRules[relDir]
				if parentSet == nil {
					parentSet = &ignoreSet{}
				}
				if parentSet.ignored(relPath, true) {
					continue
				}

				own := append([]ignoreRule{}, parentSet.rules...)
				own = append(own, loadDirIgnoreRules(root, relPath)...)
				dirRules[relPath] = &ignoreSet{rules: own}

				if err := walk(absPath, relPath); err != nil {
					return err
				}
				continue
			}

			set := dirRules[relDir]
			if set != nil && set.ignored(relPath, false) {
				continue
			}

			if _, ok := DetectLanguage(relPath); !ok {
				continue
			}

			files = append(files, relPath)
			processed++
			if onFile != nil {
				onFile(relPath, processed)
			}
		}
		return nil
	}

	if err := walk(root, ""); err != nil {
		return nil, ue.NewIoError(
			"Failed to walk repository",
			err.Error(),
			"Check that the root path exists and is readable.",
			err,
		)
	}

	return files, nil
}
