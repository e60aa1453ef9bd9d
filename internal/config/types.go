// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

// DefaultGPODomain is the placeholder Active Directory domain written into
// GPO documents when no real domain is configured.
const DefaultGPODomain = "example.com"

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidGPODomain is returned when the configured GPO domain is whitespace-only.
	ErrInvalidGPODomain = errors.New("invalid gpo domain")
	// ErrInvalidOutputDir is returned when the configured output directory is whitespace-only.
	ErrInvalidOutputDir = errors.New("invalid output dir")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// GPOConfig controls how Group Policy artifacts are rendered.
	GPOConfig struct {
		// Domain is the Active Directory domain written into GPO
		// documents. Defaults to the example.com placeholder.
		Domain string `mapstructure:"domain"`
	}

	// UIConfig controls terminal output behavior.
	UIConfig struct {
		ColorScheme ColorScheme `mapstructure:"color_scheme"`
		Verbose     bool        `mapstructure:"verbose"`
	}

	// Config is the root application configuration.
	Config struct {
		// OutputDir is where generated packages are written. Empty
		// means the current working directory.
		OutputDir string    `mapstructure:"output_dir"`
		GPO       GPOConfig `mapstructure:"gpo"`
		UI        UIConfig  `mapstructure:"ui"`
	}
)

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("%v: %q (valid: auto, dark, light)", ErrInvalidColorScheme, e.Value)
}

func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Validate checks that the color scheme is one of the known values.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: c}
	}
}

// Validate checks constraints the CUE schema cannot express on its own.
func (c *Config) Validate() error {
	if err := c.UI.ColorScheme.Validate(); err != nil {
		return err
	}
	if c.OutputDir != "" && strings.TrimSpace(c.OutputDir) == "" {
		return ErrInvalidOutputDir
	}
	if c.GPO.Domain != "" && strings.TrimSpace(c.GPO.Domain) == "" {
		return ErrInvalidGPODomain
	}
	return nil
}

// DefaultConfig returns the built-in configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		OutputDir: "",
		GPO:       GPOConfig{Domain: DefaultGPODomain},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
