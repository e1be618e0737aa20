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

// Package main implements the astrograph CLI: a static analysis tool that
// walks a repository, extracts symbols and call edges, resolves calls, and
// emits a deterministic JSON report plus an incremental-analysis cache.
//
// Usage:
//
//	astrograph --root . --out analysis.json
//	astrograph --root . --cache .astrograph-cache.json --entrypoint main
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var flags cliFlags

	pflag.StringVar(&flags.Root, "root", ".", "Root directory of the repository to analyze")
	pflag.StringVar(&flags.Out, "out", "analysis.json", "Output JSON report path")
	pflag.StringVar(&flags.Cache, "cache", "", "Optional cache file path for incremental analysis")
	pflag.StringArrayVar(&flags.Entrypoints, "entrypoint", nil, "Mark a symbol as an entrypoint by name or fq_name (repeatable)")
	pflag.BoolVar(&flags.FollowSymlinks, "follow-symlinks", false, "Follow symlinks while scanning")
	pflag.IntVar(&flags.Workers, "workers", 0, "Worker count for parallel extraction (0 = NumCPU)")
	pflag.BoolVar(&flags.JSON, "json", false, "Emit the run summary as JSON instead of human-readable text")
	pflag.BoolVar(&flags.Quiet, "quiet", false, "Suppress progress output")
	pflag.BoolVar(&flags.NoColor, "no-color", false, "Disable colored output")
	pflag.BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	pflag.StringVar(&flags.MetricsAddr, "metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	showVersion := pflag.Bool("version", false, "Show version and exit")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, `astrograph - static code-analysis engine

Usage:
  astrograph [options]

Options:
`)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *showVersion {
		fmt.Printf("astrograph version %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		os.Exit(0)
	}

	runAnalyze(flags)
}
