// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"strings"
	"testing"

	"hardenctl/internal/issue"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version takes priority", func(t *testing.T) {
		// Save and restore package-level vars.
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2025-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2025-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("fallback to dev when no build info", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "dev"
		Commit = "unknown"
		BuildDate = "unknown"

		got := getVersionString()
		want := "dev (built from source)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})
}

func TestFormatErrorForDisplay(t *testing.T) {
	t.Parallel()

	t.Run("plain error uses Error()", func(t *testing.T) {
		t.Parallel()

		err := errors.New("something broke")
		if got := formatErrorForDisplay(err, false); got != "something broke" {
			t.Errorf("formatErrorForDisplay() = %q, want %q", got, "something broke")
		}
	})

	t.Run("actionable error uses Format", func(t *testing.T) {
		t.Parallel()

		err := issue.NewErrorContext().
			WithOperation("load settings file").
			WithSuggestion("Check the file path").
			Wrap(errors.New("no such file")).
			BuildError()

		got := formatErrorForDisplay(err, false)
		if !strings.Contains(got, "load settings file") {
			t.Errorf("formatErrorForDisplay() = %q, want the operation mentioned", got)
		}
		if !strings.Contains(got, "Check the file path") {
			t.Errorf("formatErrorForDisplay() = %q, want the suggestion included", got)
		}
	})
}

func TestExitError(t *testing.T) {
	t.Parallel()

	t.Run("wraps an underlying error", func(t *testing.T) {
		t.Parallel()

		inner := errors.New("boom")
		err := &ExitError{Code: 2, Err: inner}
		if err.Error() != "boom" {
			t.Errorf("Error() = %q, want %q", err.Error(), "boom")
		}
		if !errors.Is(err, inner) {
			t.Error("errors.Is() should reach the wrapped error")
		}
	})

	t.Run("bare code has a synthetic message", func(t *testing.T) {
		t.Parallel()

		err := &ExitError{Code: 3}
		if err.Error() != "exit status 3" {
			t.Errorf("Error() = %q, want %q", err.Error(), "exit status 3")
		}
	})
}
