// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRunValidate(t *testing.T) {
	t.Run("valid settings file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "ok.yaml")
		content := "disabled_hotkeys:\n  - R\n  - E\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		if err := runValidate(validateCmd, []string{path}); err != nil {
			t.Errorf("runValidate() error = %v", err)
		}
	})

	t.Run("missing file exits non-zero", func(t *testing.T) {
		err := runValidate(validateCmd, []string{filepath.Join(t.TempDir(), "absent.yaml")})
		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("runValidate() error = %T, want *ExitError", err)
		}
		if exitErr.Code != 1 {
			t.Errorf("exit code = %d, want 1", exitErr.Code)
		}
	})

	t.Run("invalid settings exit non-zero", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "bad.yaml")
		content := "disabled_hotkeys:\n  - \"RE\"\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		err := runValidate(validateCmd, []string{path})
		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("runValidate() error = %T, want *ExitError", err)
		}
	})
}
