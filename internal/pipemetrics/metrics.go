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

// Package pipemetrics exposes optional Prometheus instrumentation for the
// analysis pipeline, registered only when the CLI is started with
// --metrics-addr.
package pipemetrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type pipelineMetrics struct {
	once sync.Once

	filesCollected   prometheus.Counter
	filesReused      prometheus.Counter
	filesReanalyzed  prometheus.Counter
	filesParseErrors prometheus.Counter
	symbolsExtracted prometheus.Counter
	callsExtracted   prometheus.Counter
	callsResolved    prometheus.Counter

	runDuration prometheus.Histogram
}

var metrics pipelineMetrics

// Init registers every metric exactly once; safe to call from multiple
// analysis runs within one process.
func Init() {
	metrics.once.Do(func() {
		metrics.filesCollected = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "astrograph_files_collected_total", Help: "Files discovered by the collector across all runs.",
		})
		metrics.filesReused = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "astrograph_files_cache_reused_total", Help: "Files whose symbols/calls were reused from cache.",
		})
		metrics.filesReanalyzed = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "astrograph_files_reanalyzed_total", Help: "Files re-extracted due to a cache miss.",
		})
		metrics.filesParseErrors = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "astrograph_files_parse_errors_total", Help: "Files that failed to parse.",
		})
		metrics.symbolsExtracted = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "astrograph_symbols_extracted_total", Help: "Symbols produced across all runs.",
		})
		metrics.callsExtracted = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "astrograph_calls_extracted_total", Help: "Call edges produced across all runs.",
		})
		metrics.callsResolved = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "astrograph_calls_resolved_total", Help: "Call edges whose callee_id was resolved.",
		})

		buckets := []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}
		metrics.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "astrograph_run_seconds", Help: "Wall-clock duration of a full analysis run.", Buckets: buckets,
		})

		prometheus.MustRegister(
			metrics.filesCollected, metrics.filesReused, metrics.filesReanalyzed, metrics.filesParseErrors,
			metrics.symbolsExtracted, metrics.callsExtracted, metrics.callsResolved,
			metrics.runDuration,
		)
	})
}

// ObserveRun records one run's result counters and duration. Init must
// have been called first.
func ObserveRun(fileCount, reused, reanalyzed, parseErrors, symbolCount, callCount, resolvedCalls int, seconds float64) {
	metrics.filesCollected.Add(float64(fileCount))
	metrics.filesReused.Add(float64(reused))
	metrics.filesReanalyzed.Add(float64(reanalyzed))
	metrics.filesParseErrors.Add(float64(parseErrors))
	metrics.symbolsExtracted.Add(float64(symbolCount))
	metrics.callsExtracted.Add(float64(callCount))
	metrics.callsResolved.Add(float64(resolvedCalls))
	metrics.runDuration.Observe(seconds)
}
