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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage_KnownExtensions(t *testing.T) {
	cases := map[string]Language{
		"a.rs":       LanguageRust,
		"a.js":       LanguageJavaScript,
		"a.cjs":      LanguageJavaScript,
		"a.mjs":      LanguageJavaScript,
		"a.ts":       LanguageTypeScript,
		"a.tsx":      LanguageTsx,
		"dir/b.RS":   LanguageRust,
		"dir/b.TsX":  LanguageTsx,
	}
	for path, want := range cases {
		got, ok := DetectLanguage(path)
		require.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}
}

func TestDetectLanguage_UnknownExtension(t *testing.T) {
	_, ok := DetectLanguage("a.go")
	assert.False(t, ok)

	_, ok = DetectLanguage("README.md")
	assert.False(t, ok)

	_, ok = DetectLanguage("noext")
	assert.False(t, ok)
}

func TestSupportedExtensions_MatchesRegistry(t *testing.T) {
	exts := SupportedExtensions()
	for _, want := range []string{"rs", "js", "cjs", "mjs", "ts", "tsx"} {
		_, ok := exts[want]
		assert.True(t, ok, want)
	}
}

func TestGrammar_ReturnsNonNilForEachLanguage(t *testing.T) {
	for _, lang := range []Language{LanguageRust, LanguageJavaScript, LanguageTypeScript, LanguageTsx} {
		assert.NotNil(t, Grammar(lang), string(lang))
	}
}

func TestNewParserSet_HasOneParserPerLanguage(t *testing.T) {
	ps := newParserSet()
	for _, lang := range []Language{LanguageRust, LanguageJavaScript, LanguageTypeScript, LanguageTsx} {
		assert.NotNil(t, ps.forLanguage(lang), string(lang))
	}
}
