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

package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hashsoft7/astrograph/internal/config"
	"github.com/hashsoft7/astrograph/internal/output"
	"github.com/hashsoft7/astrograph/internal/pipemetrics"
	"github.com/hashsoft7/astrograph/internal/progress"
	"github.com/hashsoft7/astrograph/internal/ue"
	"github.com/hashsoft7/astrograph/internal/ui"
	"github.com/hashsoft7/astrograph/pkg/ingest"
)

// cliFlags is the invariant CLI surface of spec.md §6.
type cliFlags struct {
	Root           string
	Out            string
	Cache          string
	Entrypoints    []string
	FollowSymlinks bool
	Workers        int
	JSON           bool
	Quiet          bool
	NoColor        bool
	Debug          bool
	MetricsAddr    string
}

// jsonSummary is the --json rendering of a completed run, independent of
// the report file written to --out.
type jsonSummary struct {
	Root        string `json:"root"`
	Files       int    `json:"files"`
	Symbols     int    `json:"symbols"`
	Calls       int    `json:"calls"`
	Entrypoints int    `json:"entrypoints"`
}

func runAnalyze(flags cliFlags) {
	ui.InitColors(flags.NoColor)

	logLevel := slog.LevelInfo
	if flags.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	projectCfg, err := config.Load(flags.Root)
	if err != nil {
		ue.FatalError(err, flags.JSON)
	}
	applyProjectDefaults(&flags, projectCfg)

	metricsEnabled := flags.MetricsAddr != ""
	if metricsEnabled {
		pipemetrics.Init()
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: flags.MetricsAddr, Handler: mux}
			logger.Info("metrics.http.start", "addr", flags.MetricsAddr, "path", "/metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics.http.error", "err", err)
			}
		}()
	}

	// No cancellation at the core level (spec.md §5): a signal during a run
	// terminates the process outright rather than unwinding to a partial
	// result.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown.signal", "signal", sig.String())
		os.Exit(130)
	}()

	if !flags.JSON {
		fmt.Printf("Analyzing %s ...\n", flags.Root)
	}

	var cache *ingest.AnalysisCache
	if flags.Cache != "" {
		cache, err = ingest.LoadCache(flags.Cache)
		if err != nil {
			ue.FatalError(err, flags.JSON)
		}
	}

	reporter := progress.NewReporter(progress.NewConfig(flags.Quiet, flags.JSON, flags.NoColor))

	result, newCache, err := ingest.Run(ingest.RunOptions{
		Root:              flags.Root,
		FollowSymlinks:    flags.FollowSymlinks,
		ManualEntrypoints: flags.Entrypoints,
		Workers:           flags.Workers,
		Cache:             cache,
		Sink:              reporter.Sink(),
		Logger:            logger,
	})
	reporter.Finish()
	if err != nil {
		ue.FatalError(err, flags.JSON)
	}

	if !flags.JSON {
		fmt.Printf("Writing analysis to %s ...\n", flags.Out)
	}
	if err := ingest.SaveJSON(flags.Out, result); err != nil {
		ue.FatalError(err, flags.JSON)
	}

	if flags.Cache != "" {
		if !flags.JSON {
			fmt.Printf("Writing cache to %s ...\n", flags.Cache)
		}
		if err := ingest.SaveJSON(flags.Cache, newCache); err != nil {
			ue.FatalError(err, flags.JSON)
		}
	}

	if metricsEnabled {
		pipemetrics.ObserveRun(
			result.Stats.FileCount,
			result.Stats.ReusedCacheFiles,
			result.Stats.ReanalyzedFiles,
			0,
			result.Stats.SymbolCount,
			result.Stats.CallCount,
			countResolved(result),
			0,
		)
	}

	printSummary(flags, result)
}

func applyProjectDefaults(flags *cliFlags, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if flags.Workers == 0 && cfg.Workers != 0 {
		flags.Workers = cfg.Workers
	}
	if flags.Out == "analysis.json" && cfg.Out != "" {
		flags.Out = cfg.Out
	}
	if flags.Cache == "" && cfg.Cache != "" {
		flags.Cache = cfg.Cache
	}
	if !flags.FollowSymlinks && cfg.FollowSymlinks {
		flags.FollowSymlinks = true
	}
	if len(flags.Entrypoints) == 0 && len(cfg.Entrypoints) > 0 {
		flags.Entrypoints = cfg.Entrypoints
	}
}

func countResolved(result *ingest.AnalysisResult) int {
	n := 0
	for _, c := range result.Calls {
		if c.CalleeID != nil {
			n++
		}
	}
	return n
}

func printSummary(flags cliFlags, result *ingest.AnalysisResult) {
	if flags.JSON {
		summary := jsonSummary{
			Root:        result.Root,
			Files:       result.Stats.FileCount,
			Symbols:     result.Stats.SymbolCount,
			Calls:       result.Stats.CallCount,
			Entrypoints: result.Stats.EntrypointCount,
		}
		if err := output.JSON(summary); err != nil {
			ue.FatalError(err, true)
		}
		return
	}

	ui.Success("Astrograph analysis complete.")
	fmt.Printf("Files: %s\n", ui.CountText(result.Stats.FileCount))
	fmt.Printf("Symbols: %s\n", ui.CountText(result.Stats.SymbolCount))
	fmt.Printf("Calls: %s\n", ui.CountText(result.Stats.CallCount))
	fmt.Printf("Entrypoints: %s\n", ui.CountText(result.Stats.EntrypointCount))
}
