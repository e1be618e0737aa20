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
	"bufio"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ignoreRule is one parsed line from a .gitignore/.astrographignore file,
// scoped to the directory (repo-relative, slash-separated) it was read from.
type ignoreRule struct {
	base      string // repo-relative dir the rule was declared in ("" for root)
	pattern   string // doublestar pattern, matched against the path relative to base
	dirOnly   bool
	negate    bool
	anchored  bool // pattern contained a "/" before its final segment
}

// ignoreSet accumulates rules discovered while walking a tree and answers
// whether a given repo-relative path is ignored, honoring the last-match-wins
// precedence that both .gitignore and .astrographignore use.
type ignoreSet struct {
	rules []ignoreRule
}

// globalIgnoreRules loads rules that apply to every directory regardless of
// position: the repo's ".git/info/exclude" and the user's global gitignore
// (git config core.excludesFile, falling back to the XDG default path).
func globalIgnoreRules(root string) []ignoreRule {
	var rules []ignoreRule

	if data, err := os.ReadFile(filepath.Join(root, ".git", "info", "exclude")); err == nil {
		rules = append(rules, parseIgnoreLines(data, "")...)
	}

	if p := globalExcludesFile(); p != "" {
		if data, err := os.ReadFile(p); err == nil {
			rules = append(rules, parseIgnoreLines(data, "")...)
		}
	}

	return rules
}

// globalExcludesFile resolves git's core.excludesFile, falling back to the
// conventional XDG location. Absence of git or the file is not an error.
func globalExcludesFile() string {
	out, err := exec.Command("git", "config", "--get", "core.excludesFile").Output()
	if err == nil {
		if p := strings.TrimSpace(string(out)); p != "" {
			return expandHome(p)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ".config", "git", "ignore")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}

// loadDirIgnoreRules reads .gitignore and .astrographignore from dir (a
// repo-relative, slash-separated path, "" for root) if present.
func loadDirIgnoreRules(rootAbs, dir string) []ignoreRule {
	var rules []ignoreRule
	for _, name := range []string{".gitignore", ".astrographignore"} {
		full := filepath.Join(rootAbs, filepath.FromSlash(dir), name)
		data, err := os.ReadFile(full)
		if err != nil {
			continue
		}
		rules = append(rules, parseIgnoreLines(data, dir)...)
	}
	return rules
}

func parseIgnoreLines(data []byte, base string) []ignoreRule {
	var rules []ignoreRule
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		negate := false
		if strings.HasPrefix(trimmed, "!") {
			negate = true
			trimmed = trimmed[1:]
		}
		dirOnly := strings.HasSuffix(trimmed, "/")
		trimmed = strings.TrimSuffix(trimmed, "/")
		if trimmed == "" {
			continue
		}
		anchored := strings.Contains(strings.TrimPrefix(trimmed, "/"), "/")
		pattern := strings.TrimPrefix(trimmed, "/")
		rules = append(rules, ignoreRule{
			base:     base,
			pattern:  pattern,
			dirOnly:  dirOnly,
			negate:   negate,
			anchored: anchored || strings.HasPrefix(trimmed, "/"),
		})
	}
	return rules
}

// matches reports whether relPath (repo-relative, slash-separated, no
// leading slash) matches this rule given whether it names a directory.
func (r ignoreRule) matches(relPath string, isDir bool) bool {
	if r.dirOnly && !isDir {
		return false
	}
	scoped := relPath
	if r.base != "" {
		if !strings.HasPrefix(relPath+"/", r.base+"/") {
			return false
		}
		scoped = strings.TrimPrefix(relPath, r.base+"/")
	}
	if scoped == "" {
		return false
	}

	if r.anchored {
		ok, _ := doublestar.Match(r.pattern, scoped)
		return ok
	}
	// Unanchored: the pattern may match any path segment at any depth.
	if ok, _ := doublestar.Match(r.pattern, scoped); ok {
		return true
	}
	ok, _ := doublestar.Match("**/"+r.pattern, scoped)
	return ok
}

// ignored applies last-match-wins precedence across every accumulated rule.
func (s *ignoreSet) ignored(relPath string, isDir bool) bool {
	relPath = path.Clean(filepath.ToSlash(relPath))
	result := false
	for _, r := range s.rules {
		if r.matches(relPath, isDir) {
			result = !r.negate
		}
	}
	return result
}
