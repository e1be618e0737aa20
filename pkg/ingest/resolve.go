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
	"runtime"
	"sort"
	"strings"
	"sync"
)

// resolveThreshold is the call-count above which resolution fans out across
// workers; below it, sequential avoids goroutine overhead (mirrors the
// parser's own small/large split).
const resolveThreshold = 1000

// nameIndex is the pair of lookup tables built once per run: by_name for
// unqualified callee names, by_fq for dotted/scoped callee names
// (spec.md §4.6).
type nameIndex struct {
	byName map[string][]Symbol
	byFQ   map[string][]Symbol
}

// buildNameIndex indexes every symbol by its bare name and by its fq_name.
func buildNameIndex(symbols []Symbol) *nameIndex {
	idx := &nameIndex{
		byName: make(map[string][]Symbol),
		byFQ:   make(map[string][]Symbol),
	}
	for _, s := range symbols {
		idx.byName[s.Name] = append(idx.byName[s.Name], s)
		idx.byFQ[s.FQName] = append(idx.byFQ[s.FQName], s)
	}
	return idx
}

// ResolveCalls implements spec.md §4.6: for each call edge, collect
// candidate symbols from the by_name/by_fq indices, and when non-empty set
// callee_id to the (fq_name, id)-sorted first candidate. calls is mutated
// in place and also returned for convenience.
func ResolveCalls(calls []CallEdge, symbols []Symbol) []CallEdge {
	idx := buildNameIndex(symbols)

	if len(calls) < resolveThreshold {
		resolveSequential(calls, idx)
		return calls
	}
	resolveParallel(calls, idx)
	return calls
}

func resolveSequential(calls []CallEdge, idx *nameIndex) {
	for i := range calls {
		resolveOne(&calls[i], idx)
	}
}

// resolveParallel fans the (read-only index, independent-per-edge) work
// across a worker pool; each edge is only ever written by its own worker so
// no synchronization is needed beyond the WaitGroup.
func resolveParallel(calls []CallEdge, idx *nameIndex) {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int, len(calls))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				resolveOne(&calls[i], idx)
			}
		}()
	}
	for i := range calls {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

func resolveOne(call *CallEdge, idx *nameIndex) {
	var candidates []Symbol

	if strings.ContainsAny(call.CalleeName, ":.") {
		candidates = append(candidates, idx.byFQ[call.CalleeName]...)
		candidates = append(candidates, idx.byName[lastSegment(call.CalleeName)]...)
	} else {
		candidates = append(candidates, idx.byName[call.CalleeName]...)
	}

	if len(candidates) == 0 {
		return
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].FQName != candidates[j].FQName {
			return candidates[i].FQName < candidates[j].FQName
		}
		return candidates[i].ID < candidates[j].ID
	})

	id := candidates[0].ID
	call.CalleeID = &id
}

// lastSegment returns the portion of name after its final ':' or '.'
// (spec.md §4.6).
func lastSegment(name string) string {
	idx := strings.LastIndexAny(name, ":.")
	if idx < 0 {
		return name
	}
	return name[idx+1:]
}

// ApplyManualEntrypoints implements spec.md §4.7: a symbol becomes an
// entrypoint if its bare name or its fq_name is in names. Mutates symbols
// in place.
func ApplyManualEntrypoints(symbols []Symbol, names []string) {
	if len(names) == 0 {
		return
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	for i := range symbols {
		if _, ok := set[symbols[i].Name]; ok {
			symbols[i].IsEntrypoint = true
			continue
		}
		if _, ok := set[symbols[i].FQName]; ok {
			symbols[i].IsEntrypoint = true
		}
	}
}
