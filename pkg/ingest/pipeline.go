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
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashsoft7/astrograph/internal/ue"
)

// RunOptions configures one analysis run (spec.md §4.8, §5, §6).
type RunOptions struct {
	Root              string
	FollowSymlinks    bool
	ManualEntrypoints []string
	Workers           int
	Cache             *AnalysisCache
	Sink              Sink
	Logger            *slog.Logger
}

// fileOutcome is the per-file product of step 4: either a cache hit
// (symbols/calls reused verbatim) or a fresh extraction.
type fileOutcome struct {
	path      string
	language  Language
	hash      string
	byteSize  int
	parsed    ParsedFile
	fromCache bool
}

// Run executes the full pipeline driver of spec.md §4.8 and returns the
// report plus the refreshed cache to persist.
func Run(opts RunOptions) (*AnalysisResult, *AnalysisCache, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Step 1: canonicalize root.
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, nil, ue.NewInvalidPathError(
			"Cannot resolve root path",
			err.Error(),
			"pass an existing, readable directory with --root",
		)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, nil, ue.NewInvalidPathError(
			"Root is not a directory",
			root+" does not exist or is not a directory",
			"pass an existing directory with --root",
		)
	}
	rootString := root

	logger.Info("pipeline.run.start", "root", rootString)

	// Step 2: seed cache, snapshot cached_files.
	cache := opts.Cache
	if cache == nil {
		cache = NewAnalysisCache(rootString)
	}
	cachedFiles := make(map[string]CachedFile, len(cache.Files))
	for k, v := range cache.Files {
		cachedFiles[k] = v
	}

	sequential := opts.Sink != nil

	// Step 3: collect file list.
	logger.Info("pipeline.collect.start")
	var collected []string
	if sequential {
		collected, err = CollectFiles(root, opts.FollowSymlinks, func(relPath string, processed int) {
			opts.Sink(ProgressEvent{Phase: PhaseCollecting, CurrentFile: relPath, Processed: uint32(processed)})
		})
	} else {
		collected, err = CollectFiles(root, opts.FollowSymlinks, nil)
	}
	if err != nil {
		return nil, nil, err
	}
	logger.Info("pipeline.collect.complete", "file_count", len(collected))

	filesSet := make(map[string]struct{}, len(collected))
	for _, p := range collected {
		filesSet[p] = struct{}{}
	}

	// Step 4: compute outcomes (parallel, or sequential when a Sink is
	// attached so progress events arrive in walk order — spec.md §5). A
	// single file's extraction failure aborts the whole run: the tree may
	// be in an unknown state, so there is nothing safe to report
	// partially (spec.md §7; mirrors analyze_project's
	// .collect::<Result<Vec<_>>>()? in the original Rust engine).
	logger.Info("pipeline.analyze.start", "file_count", len(collected))
	var outcomes []fileOutcome
	if sequential {
		outcomes, err = analyzeSequential(root, collected, cachedFiles, opts.Sink, logger)
	} else {
		outcomes, err = analyzeParallel(root, collected, cachedFiles, opts.Workers, logger)
	}
	if err != nil {
		return nil, nil, err
	}

	// Step 5: aggregate outcomes.
	fileInfos := make([]FileInfo, 0, len(outcomes))
	var symbols []Symbol
	var calls []CallEdge
	var reusedCacheFiles, reanalyzedFiles int

	newCache := NewAnalysisCache(rootString)
	for _, o := range outcomes {
		if o.fromCache {
			reusedCacheFiles++
		} else {
			reanalyzedFiles++
		}
		fileInfos = append(fileInfos, FileInfo{
			Path:     o.path,
			Language: o.language,
			Hash:     o.hash,
			ByteSize: o.byteSize,
		})
		symbols = append(symbols, o.parsed.Symbols...)
		calls = append(calls, o.parsed.Calls...)
		newCache.Upsert(o.path, o.hash, o.language, o.parsed.Symbols, o.parsed.Calls)
	}

	// Step 6: drop cache entries whose paths are not in F.
	newCache.RetainOnly(filesSet)

	// Step 7: resolver.
	calls = ResolveCalls(calls, symbols)

	// Step 8: manual-entrypoint overlay.
	ApplyManualEntrypoints(symbols, opts.ManualEntrypoints)

	// Step 9: entrypoints list.
	entrypointSet := make(map[string]struct{})
	for _, s := range symbols {
		if s.IsEntrypoint {
			entrypointSet[s.ID] = struct{}{}
		}
	}
	entrypoints := make([]string, 0, len(entrypointSet))
	for id := range entrypointSet {
		entrypoints = append(entrypoints, id)
	}
	sort.Strings(entrypoints)

	// Step 10: sort.
	sort.Slice(symbols, func(i, j int) bool {
		if symbols[i].FQName != symbols[j].FQName {
			return symbols[i].FQName < symbols[j].FQName
		}
		return symbols[i].ID < symbols[j].ID
	})
	sort.Slice(calls, func(i, j int) bool {
		if calls[i].CallerID != calls[j].CallerID {
			return calls[i].CallerID < calls[j].CallerID
		}
		if calls[i].CalleeName != calls[j].CalleeName {
			return calls[i].CalleeName < calls[j].CalleeName
		}
		return calls[i].ID < calls[j].ID
	})
	sort.Slice(fileInfos, func(i, j int) bool { return fileInfos[i].Path < fileInfos[j].Path })

	// Step 11: produce result.
	result := &AnalysisResult{
		SchemaVersion: SchemaVersion,
		Root:          rootString,
		GeneratedAt:   generatedAtRFC3339(),
		Stats: AnalysisStats{
			FileCount:        len(fileInfos),
			SymbolCount:      len(symbols),
			CallCount:        len(calls),
			EntrypointCount:  len(entrypoints),
			ReusedCacheFiles: reusedCacheFiles,
			ReanalyzedFiles:  reanalyzedFiles,
		},
		Files:       fileInfos,
		Symbols:     symbols,
		Calls:       calls,
		Entrypoints: entrypoints,
	}

	logger.Info("pipeline.run.complete",
		"file_count", result.Stats.FileCount,
		"symbol_count", result.Stats.SymbolCount,
		"call_count", result.Stats.CallCount,
		"entrypoint_count", result.Stats.EntrypointCount,
	)

	// Step 12: return {result, cache}.
	return result, newCache, nil
}

// generatedAtRFC3339 formats the current UTC instant as RFC3339, falling
// back to the literal "unknown" on failure (spec.md §4.8.11). time.Format
// never errors in Go, but the fallback is kept so the contract holds even
// under a future panic-raising clock source.
func generatedAtRFC3339() (out string) {
	defer func() {
		if recover() != nil {
			out = "unknown"
		}
	}()
	return time.Now().UTC().Format(time.RFC3339)
}

// analyzeOne hashes p's bytes, consults the cache gate, and either reuses
// the cached entry or invokes the extractor. It is an independent pure
// function over (bytes, path, language, cache snapshot) per spec.md §5.
func analyzeOne(ps *parserSet, root, relPath string, cachedFiles map[string]CachedFile) (fileOutcome, error) {
	language, ok := DetectLanguage(relPath)
	if !ok {
		return fileOutcome{}, ue.NewInternalError(
			"Collected a file with no detected language: "+relPath,
			"collector and language registry disagree",
			"this is a bug; please report it",
			nil,
		)
	}

	absPath := filepath.Join(root, filepath.FromSlash(relPath))
	data, err := os.ReadFile(absPath)
	if err != nil {
		return fileOutcome{}, ue.NewIoError(
			"Failed to read "+relPath,
			err.Error(),
			"check the file is readable and was not removed mid-run",
			err,
		)
	}

	hash := HashBytes(data)
	gate := cacheGate(cachedFiles, relPath, hash, language)
	if gate.fromCache {
		return fileOutcome{
			path:      relPath,
			language:  language,
			hash:      hash,
			byteSize:  len(data),
			parsed:    ParsedFile{Symbols: gate.cached.Symbols, Calls: gate.cached.Calls},
			fromCache: true,
		}, nil
	}

	parsed, err := ExtractFile(ps, relPath, data, language)
	if err != nil {
		return fileOutcome{}, err
	}

	return fileOutcome{
		path:     relPath,
		language: language,
		hash:     hash,
		byteSize: len(data),
		parsed:   parsed,
	}, nil
}

// analyzeSequential walks files in order, emitting one progress event per
// file so callers observing a Sink see monotonically increasing counts
// (spec.md §5). It stops and returns the first extraction error it hits:
// a half-analyzed tree has no well-defined partial result (spec.md §7).
func analyzeSequential(root string, files []string, cachedFiles map[string]CachedFile, sink Sink, logger *slog.Logger) ([]fileOutcome, error) {
	ps := newParserSet()
	outcomes := make([]fileOutcome, 0, len(files))

	for i, relPath := range files {
		outcome, err := analyzeOne(ps, root, relPath, cachedFiles)
		if err != nil {
			logger.Error("pipeline.analyze.file_error", "path", relPath, "err", err)
			return nil, err
		}
		outcomes = append(outcomes, outcome)
		if sink != nil {
			sink(ProgressEvent{
				Phase:       PhaseAnalyzing,
				CurrentFile: relPath,
				Processed:   uint32(i + 1),
				Total:       uint32(len(files)),
			})
		}
	}
	return outcomes, nil
}

// analyzeParallel fans per-file analysis across a worker pool, one
// *sitter.Parser set per worker since parsers are not goroutine-safe
// (spec.md §5; grounded on the teacher's parseFilesParallel worker-pool
// shape). The first worker to hit an extraction error signals the rest
// to stop picking up new jobs and the error propagates to the caller,
// matching analyze_project's fail-fast collect in the original engine.
func analyzeParallel(root string, files []string, cachedFiles map[string]CachedFile, numWorkers int, logger *slog.Logger) ([]fileOutcome, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if len(files) < 10 || numWorkers <= 1 {
		return analyzeSequential(root, files, cachedFiles, nil, logger)
	}

	jobs := make(chan int, len(files))
	type jobResult struct {
		index   int
		outcome fileOutcome
		err     error
	}
	results := make(chan jobResult, len(files))

	var stopped int32
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ps := newParserSet()
			for i := range jobs {
				if atomic.LoadInt32(&stopped) != 0 {
					continue
				}
				outcome, err := analyzeOne(ps, root, files[i], cachedFiles)
				if err != nil {
					atomic.StoreInt32(&stopped, 1)
					results <- jobResult{index: i, err: err}
					continue
				}
				results <- jobResult{index: i, outcome: outcome}
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]*fileOutcome, len(files))
	var firstErr error
	var firstErrPath string
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
				firstErrPath = files[r.index]
			}
			continue
		}
		o := r.outcome
		ordered[r.index] = &o
	}
	if firstErr != nil {
		logger.Error("pipeline.analyze.file_error", "path", firstErrPath, "err", firstErr)
		return nil, firstErr
	}

	outcomes := make([]fileOutcome, 0, len(files))
	for _, o := range ordered {
		if o != nil {
			outcomes = append(outcomes, *o)
		}
	}
	return outcomes, nil
}
