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
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// extensionLanguage maps a lowercased file extension (without the dot) to
// its language tag. The map IS the closed set from spec.md §3/§4.1.
var extensionLanguage = map[string]Language{
	"rs":  LanguageRust,
	"js":  LanguageJavaScript,
	"cjs": LanguageJavaScript,
	"mjs": LanguageJavaScript,
	"ts":  LanguageTypeScript,
	"tsx": LanguageTsx,
}

// DetectLanguage maps a path to a language tag by its lowercased final
// extension. Returns false when the extension is not in the registry.
func DetectLanguage(path string) (Language, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	lang, ok := extensionLanguage[ext]
	return lang, ok
}

// SupportedExtensions returns the closed set of recognized extensions.
func SupportedExtensions() map[string]struct{} {
	exts := make(map[string]struct{}, len(extensionLanguage))
	for ext := range extensionLanguage {
		exts[ext] = struct{}{}
	}
	return exts
}

// grammars holds one tree-sitter grammar per language tag, loaded once.
var grammars = map[Language]*sitter.Language{
	LanguageRust:       rust.GetLanguage(),
	LanguageJavaScript: javascript.GetLanguage(),
	LanguageTypeScript: typescript.GetLanguage(),
	LanguageTsx:        tsx.GetLanguage(),
}

// Grammar returns the opaque tree-sitter grammar handle for tag.
func Grammar(tag Language) *sitter.Language {
	return grammars[tag]
}

// parserSet holds one *sitter.Parser per language tag, reused across
// files of that language within a run. A *sitter.Parser is not safe for
// concurrent use, so callers must take one per goroutine (see newParserSet).
type parserSet struct {
	parsers map[Language]*sitter.Parser
}

// newParserSet builds a fresh parser for every language tag, so each
// extraction worker gets its own non-shared set.
func newParserSet() *parserSet {
	ps := &parserSet{parsers: make(map[Language]*sitter.Parser, len(grammars))}
	for tag, grammar := range grammars {
		p := sitter.NewParser()
		p.SetLanguage(grammar)
		ps.parsers[tag] = p
	}
	return ps
}

func (ps *parserSet) forLanguage(tag Language) *sitter.Parser {
	return ps.parsers[tag]
}
