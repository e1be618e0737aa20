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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/hashsoft7/astrograph/internal/ue"
)

// HashBytes is the file hasher of spec.md §4.3: SHA-256 of raw bytes,
// lowercase hex.
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// gateOutcome is one per-file decision: reuse the cached entry or invoke
// the extractor.
type gateOutcome struct {
	fromCache bool
	cached    CachedFile
}

// cacheGate implements spec.md §4.3: path+hash+language match ⇒ reuse
// verbatim; any mismatch ⇒ reparse. No partial reuse.
func cacheGate(cache map[string]CachedFile, relPath, hash string, language Language) gateOutcome {
	if cached, ok := cache[relPath]; ok {
		if cached.Hash == hash && cached.Language == language {
			return gateOutcome{fromCache: true, cached: cached}
		}
	}
	return gateOutcome{fromCache: false}
}

// LoadCache reads an AnalysisCache JSON file. A missing file is not an
// error (returns nil, nil) so a first run with --cache works.
func LoadCache(path string) (*AnalysisCache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, ue.NewIoError(
			"Failed to read cache file",
			err.Error(),
			"Check that "+path+" is readable, or omit --cache to start fresh.",
			err,
		)
	}

	var cache AnalysisCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, ue.NewCacheFormatError(
			"Cache file is not valid JSON",
			err.Error(),
			"Delete "+path+" and rerun, or omit --cache to start fresh.",
			err,
		)
	}
	if cache.Files == nil {
		cache.Files = make(map[string]CachedFile)
	}
	return &cache, nil
}

// SaveJSON writes v as indented JSON to path atomically: a temp file is
// written alongside path and renamed into place, so a crash mid-write never
// leaves a truncated file at path.
func SaveJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ue.NewInternalError(
			"Failed to serialize output",
			err.Error(),
			"This is a bug; please report it.",
			err,
		)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ue.NewIoError("Failed to create output directory", err.Error(), "Check permissions on "+dir, err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return ue.NewIoError("Failed to write output file", err.Error(), "Check permissions on "+dir, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return ue.NewIoError("Failed to finalize output file", err.Error(), "Check permissions on "+dir, err)
	}
	return nil
}
