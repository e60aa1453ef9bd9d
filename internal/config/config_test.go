// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.OutputDir != "" {
		t.Errorf("OutputDir = %q, want empty (current directory)", cfg.OutputDir)
	}
	if cfg.GPO.Domain != DefaultGPODomain {
		t.Errorf("GPO.Domain = %q, want %q", cfg.GPO.Domain, DefaultGPODomain)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("UI.ColorScheme = %q, want %q", cfg.UI.ColorScheme, ColorSchemeAuto)
	}
	if cfg.UI.Verbose {
		t.Error("UI.Verbose = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}

func TestColorSchemeValidate(t *testing.T) {
	tests := []struct {
		scheme  ColorScheme
		wantErr bool
	}{
		{ColorSchemeAuto, false},
		{ColorSchemeDark, false},
		{ColorSchemeLight, false},
		{ColorScheme("neon"), true},
		{ColorScheme(""), true},
	}

	for _, tt := range tests {
		t.Run(string(tt.scheme), func(t *testing.T) {
			err := tt.scheme.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidColorScheme) {
					t.Errorf("Validate() = %v, want ErrInvalidColorScheme", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestConfigDirOverride(t *testing.T) {
	t.Cleanup(Reset)

	dir := t.TempDir()
	SetConfigDirOverride(dir)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir = %q, want %q", got, dir)
	}
}

func TestLoadWithOptions_NoConfigFileUsesDefaults(t *testing.T) {
	t.Cleanup(Reset)

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("loadWithOptions: %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("ColorScheme = %q, want default", cfg.UI.ColorScheme)
	}
	if cfg.GPO.Domain != DefaultGPODomain {
		t.Errorf("GPO.Domain = %q, want %q", cfg.GPO.Domain, DefaultGPODomain)
	}
}

func TestLoadWithOptions_ReadsCUEFile(t *testing.T) {
	t.Cleanup(Reset)

	dir := t.TempDir()
	cuePath := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	content := `
output_dir: "/tmp/packages"
gpo: domain: "corp.internal"
ui: {
	color_scheme: "dark"
	verbose:      true
}
`
	if err := os.WriteFile(cuePath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions: %v", err)
	}
	if path != cuePath {
		t.Errorf("resolved path = %q, want %q", path, cuePath)
	}
	if cfg.OutputDir != "/tmp/packages" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.GPO.Domain != "corp.internal" {
		t.Errorf("GPO.Domain = %q", cfg.GPO.Domain)
	}
	if cfg.UI.ColorScheme != ColorSchemeDark || !cfg.UI.Verbose {
		t.Errorf("UI = %+v", cfg.UI)
	}
}

func TestLoadWithOptions_ExplicitFilePath(t *testing.T) {
	t.Cleanup(Reset)

	cuePath := filepath.Join(t.TempDir(), "custom.cue")
	if err := os.WriteFile(cuePath, []byte(`ui: verbose: true`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: cuePath})
	if err != nil {
		t.Fatalf("loadWithOptions: %v", err)
	}
	if path != cuePath {
		t.Errorf("resolved path = %q, want %q", path, cuePath)
	}
	if !cfg.UI.Verbose {
		t.Error("UI.Verbose not read from explicit file")
	}
}

func TestLoadWithOptions_MissingExplicitFile(t *testing.T) {
	t.Cleanup(Reset)

	_, _, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue"),
	})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("error = %v", err)
	}
}

func TestLoadWithOptions_RejectsSchemaViolations(t *testing.T) {
	t.Cleanup(Reset)

	dir := t.TempDir()
	cuePath := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	// color_scheme constrained to auto|dark|light by the schema
	if err := os.WriteFile(cuePath, []byte(`ui: color_scheme: "neon"`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir}); err == nil {
		t.Fatal("expected schema violation error")
	}
}

func TestLoadWithOptions_CanceledContext(t *testing.T) {
	t.Cleanup(Reset)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := loadWithOptions(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestGenerateCUERoundTrip(t *testing.T) {
	t.Cleanup(Reset)

	cfg := &Config{
		OutputDir: "/srv/out",
		GPO:       GPOConfig{Domain: "corp.internal"},
		UI:        UIConfig{ColorScheme: ColorSchemeLight, Verbose: true},
	}

	dir := t.TempDir()
	cuePath := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(cuePath, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions: %v", err)
	}
	if loaded.OutputDir != cfg.OutputDir || loaded.GPO.Domain != cfg.GPO.Domain || loaded.UI != cfg.UI {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestSetConfigFilePathOverride_ClearsCache(t *testing.T) {
	t.Cleanup(Reset)

	cuePath := filepath.Join(t.TempDir(), "a.cue")
	if err := os.WriteFile(cuePath, []byte(`ui: verbose: true`), 0o644); err != nil {
		t.Fatal(err)
	}

	SetConfigFilePathOverride(cuePath)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.UI.Verbose {
		t.Error("override file not loaded")
	}

	SetConfigFilePathOverride("")
	if globalConfig != nil {
		t.Error("cache not invalidated by SetConfigFilePathOverride")
	}
}

func TestGet_FallsBackToDefaults(t *testing.T) {
	t.Cleanup(Reset)

	// Point at a nonexistent explicit file so Load fails.
	SetConfigFilePathOverride(filepath.Join(t.TempDir(), "missing.cue"))

	cfg := Get()
	if cfg == nil {
		t.Fatal("Get returned nil")
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("fallback config = %+v", cfg)
	}
}
