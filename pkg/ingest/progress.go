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

// Phase names a stage of the driver's sequential, progress-observed path
// (spec.md §5).
type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseAnalyzing  Phase = "analyzing"
)

// ProgressEvent is emitted once per file when a Sink is attached to a run
// (spec.md §6: "Progress event shape"). Total is 0 during PhaseCollecting
// because the file count isn't known yet.
type ProgressEvent struct {
	Phase       Phase  `json:"phase"`
	CurrentFile string `json:"current_file"`
	Processed   uint32 `json:"processed"`
	Total       uint32 `json:"total"`
}

// Sink receives one ProgressEvent per file processed. Attaching a Sink
// forces the driver onto its sequential path so events arrive in walk
// order with monotonically increasing Processed (spec.md §5).
type Sink func(ProgressEvent)
