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

// Package progress renders ingest.Run's progress events to a terminal
// bar/spinner, or disables itself entirely when output is not a TTY.
package progress

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/hashsoft7/astrograph/pkg/ingest"
)

// Config determines if and how progress should be displayed.
type Config struct {
	// Enabled indicates whether progress bars should be shown. Disabled
	// when --json or --quiet is set, or when stderr is not a TTY.
	Enabled bool

	// Writer is where progress output goes (always os.Stderr).
	Writer io.Writer

	// NoColor disables colored output in the bar.
	NoColor bool
}

// NewConfig builds a Config from the CLI's quiet/json/no-color flags and
// TTY detection.
func NewConfig(quiet, jsonOutput, noColor bool) Config {
	enabled := !quiet && !jsonOutput && isatty.IsTerminal(os.Stderr.Fd())
	return Config{Enabled: enabled, Writer: os.Stderr, NoColor: noColor}
}

func newSpinner(cfg Config, description string) *progressbar.ProgressBar {
	if !cfg.Enabled {
		return nil
	}
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(cfg.Writer),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionEnableColorCodes(!cfg.NoColor),
	)
}

func newBar(cfg Config, total int64, description string) *progressbar.ProgressBar {
	if !cfg.Enabled {
		return nil
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(cfg.Writer),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(!cfg.NoColor),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// Reporter adapts ingest.ProgressEvent into a terminal spinner during the
// collecting phase and a bar once the analyzing phase's total is known. It
// implements ingest.Sink via its Report method.
type Reporter struct {
	cfg     Config
	spinner *progressbar.ProgressBar
	bar     *progressbar.ProgressBar
	phase   ingest.Phase
}

// NewReporter builds a Reporter. When cfg.Enabled is false every Report
// call is a no-op, so callers can always pass Reporter.Report as a Sink.
func NewReporter(cfg Config) *Reporter {
	return &Reporter{cfg: cfg}
}

// Sink returns r.Report as an ingest.Sink when progress is enabled, or nil
// otherwise. Passing nil (rather than a no-op func) matters: ingest.Run
// picks its parallel, non-progress-observing path only when Sink is nil
// (spec.md §5), so a disabled Reporter must not force the slower
// sequential path.
func (r *Reporter) Sink() ingest.Sink {
	if !r.cfg.Enabled {
		return nil
	}
	return r.Report
}

// Report implements ingest.Sink.
func (r *Reporter) Report(event ingest.ProgressEvent) {
	if !r.cfg.Enabled {
		return
	}

	if event.Phase != r.phase {
		r.phase = event.Phase
		switch event.Phase {
		case ingest.PhaseCollecting:
			r.spinner = newSpinner(r.cfg, "collecting files")
		case ingest.PhaseAnalyzing:
			if r.spinner != nil {
				_ = r.spinner.Finish()
				r.spinner = nil
			}
			r.bar = newBar(r.cfg, int64(event.Total), "analyzing")
		}
	}

	switch event.Phase {
	case ingest.PhaseCollecting:
		if r.spinner != nil {
			_ = r.spinner.Add(1)
		}
	case ingest.PhaseAnalyzing:
		if r.bar != nil {
			_ = r.bar.Set(int(event.Processed))
		}
	}
}

// Finish clears any still-visible bar or spinner. Safe to call even when
// progress is disabled.
func (r *Reporter) Finish() {
	if r.spinner != nil {
		_ = r.spinner.Finish()
	}
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}
