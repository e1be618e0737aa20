// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package ue

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError_Error(t *testing.T) {
	withUnderlying := &UserError{Message: "Cannot read file", Err: fmt.Errorf("permission denied")}
	assert.Equal(t, "Cannot read file: permission denied", withUnderlying.Error())

	withoutUnderlying := &UserError{Message: "Invalid root"}
	assert.Equal(t, "Invalid root", withoutUnderlying.Error())
}

func TestUserError_Unwrap(t *testing.T) {
	underlying := fmt.Errorf("underlying")
	err := &UserError{Message: "x", Err: underlying}
	assert.Equal(t, underlying, err.Unwrap())

	bare := &UserError{Message: "x"}
	assert.Nil(t, bare.Unwrap())
}

func TestExitCodesUnique(t *testing.T) {
	codes := []int{ExitSuccess, ExitInvalidPath, ExitIO, ExitParse, ExitCacheFormat, ExitInternal}
	seen := map[int]bool{}
	for _, c := range codes {
		require.False(t, seen[c], "duplicate exit code %d", c)
		seen[c] = true
	}
}

func TestConstructors(t *testing.T) {
	underlying := fmt.Errorf("boom")

	invalidPath := NewInvalidPathError("Root not found", "path does not exist", "check --root")
	assert.Equal(t, ExitInvalidPath, invalidPath.ExitCode)
	assert.Nil(t, invalidPath.Err)

	io := NewIoError("Walk failed", "permission denied", "check permissions", underlying)
	assert.Equal(t, ExitIO, io.ExitCode)
	assert.Equal(t, underlying, io.Err)

	parse := NewParseError("Parse failed for a.ts", "syntax error", "fix the source", underlying)
	assert.Equal(t, ExitParse, parse.ExitCode)

	cacheFmt := NewCacheFormatError("Cache unreadable", "invalid JSON", "delete the cache file", underlying)
	assert.Equal(t, ExitCacheFormat, cacheFmt.ExitCode)

	internal := NewInternalError("Invariant violated", "bug", "report it", underlying)
	assert.Equal(t, ExitInternal, internal.ExitCode)
}

func TestErrorChain(t *testing.T) {
	sentinel := fmt.Errorf("sentinel")
	wrapped := fmt.Errorf("wrapped: %w", sentinel)
	err := NewIoError("io error", "cause", "fix", wrapped)

	assert.True(t, errors.Is(err, sentinel))

	var target *UserError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, ExitIO, target.ExitCode)
}

func TestUserError_Format(t *testing.T) {
	err := &UserError{
		Message: "Cannot analyze repository",
		Cause:   "root is not a directory",
		Fix:     "pass an existing directory with --root",
	}
	out := err.Format(true)
	assert.Contains(t, out, "Error: Cannot analyze repository")
	assert.Contains(t, out, "Cause: root is not a directory")
	assert.Contains(t, out, "Fix:   pass an existing directory with --root")
}

func TestUserError_Format_NoColorEnv(t *testing.T) {
	old := os.Getenv("NO_COLOR")
	defer func() {
		if old != "" {
			os.Setenv("NO_COLOR", old)
		} else {
			os.Unsetenv("NO_COLOR")
		}
	}()
	os.Setenv("NO_COLOR", "1")

	err := &UserError{Message: "x", Cause: "y", Fix: "z"}
	out := err.Format(false)
	assert.False(t, strings.Contains(out, "\x1b["))
}

func TestUserError_ToJSON(t *testing.T) {
	err := &UserError{Message: "Cache unreadable", Cause: "bad json", Fix: "delete it", ExitCode: ExitCacheFormat}
	j := err.ToJSON()
	assert.Equal(t, "Cache unreadable", j.Error)
	assert.Equal(t, "bad json", j.Cause)
	assert.Equal(t, "delete it", j.Fix)
	assert.Equal(t, ExitCacheFormat, j.ExitCode)
}

func TestFatalError_NilIsNoop(t *testing.T) {
	FatalError(nil, false)
}
