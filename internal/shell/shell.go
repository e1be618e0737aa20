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

// Package shell is the collaborator surface a desktop shell embeds the
// engine through: analyze a directory, read a file under the analyzed
// root with path-escape protection, and open a file in the host's default
// application (spec.md §6, "Desktop-shell interface").
package shell

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hashsoft7/astrograph/internal/ue"
	"github.com/hashsoft7/astrograph/pkg/ingest"
)

// AnalyzeDirectory runs a full, uncached analysis of path and returns its
// report. There is no progress sink: a desktop shell calling this
// synchronously gets the parallel driver path (spec.md §5).
func AnalyzeDirectory(path string) (*ingest.AnalysisResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, ue.NewInvalidPathError(
			"Path does not exist: "+path,
			err.Error(),
			"pass an existing directory",
		)
	}
	if !info.IsDir() {
		return nil, ue.NewInvalidPathError(
			"Not a directory: "+path,
			"the given path is a file",
			"pass a directory path",
		)
	}

	result, _, err := ingest.Run(ingest.RunOptions{Root: path})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReadFile reads relPath joined onto root, refusing to read anything that
// escapes root after the join is resolved. This is the path-escape
// protection contract of spec.md §6: the resolved candidate must be a
// prefix of root when compared as path components, else an invalid-path
// failure is returned and no read occurs.
func ReadFile(root, relPath string) ([]byte, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, ue.NewInvalidPathError("Cannot resolve root path", err.Error(), "pass a valid root directory")
	}
	candidate := filepath.Join(rootAbs, relPath)

	rootComponents := strings.Split(filepath.Clean(rootAbs), string(filepath.Separator))
	candidateComponents := strings.Split(filepath.Clean(candidate), string(filepath.Separator))
	if len(candidateComponents) < len(rootComponents) {
		return nil, escapeError(relPath)
	}
	for i, c := range rootComponents {
		if candidateComponents[i] != c {
			return nil, escapeError(relPath)
		}
	}

	data, err := os.ReadFile(candidate)
	if err != nil {
		return nil, ue.NewIoError(
			"Failed to read "+relPath,
			err.Error(),
			"check the file exists under "+root+" and is readable",
			err,
		)
	}
	return data, nil
}

func escapeError(relPath string) error {
	return ue.NewInvalidPathError(
		"Path escapes analysis root: "+relPath,
		"the resolved path is not contained within root",
		"pass a path relative to the analyzed root",
	)
}

// OpenFile opens path in the host's default application, following the
// same per-OS launcher convention as the teacher's progress/terminal code
// picks its isatty-detected terminal behavior: one concrete command per
// platform, no generic abstraction layer.
func OpenFile(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return ue.NewIoError(
			"Failed to open "+path,
			err.Error(),
			"check that a default application handler is configured for this file type",
			err,
		)
	}
	return nil
}
