// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for hardenctl.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"hardenctl/internal/config"
	"hardenctl/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// Verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "hardenctl",
		Short: "Generate Windows security hardening packages",
		Long: TitleStyle.Render("hardenctl") + SubtitleStyle.Render(" - Generate Windows security hardening packages") + `

hardenctl turns a declarative description of a security control into a
deployable package of Windows artifacts: a Group Policy Object export,
a PowerShell script, a registry file, a batch deployment wrapper and a
JSON manifest, zipped together with a README.

Controls come from the built-in catalog or from a settings file in CUE,
TOML, YAML or JSON format.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Pick a control with: hardenctl controls
  2. Generate its package: hardenctl generate <control-id>
  3. Review the artifacts, then deploy with the batch wrapper

` + SubtitleStyle.Render("Examples:") + `
  hardenctl controls                      List the control catalog
  hardenctl controls show hotkeys         Inspect one control
  hardenctl generate file-associations    Package a built-in control
  hardenctl generate custom --settings my.cue --name "Kiosk Lockdown"
  hardenctl validate my.cue               Check a settings file
  hardenctl config show                   Show current configuration`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/hardenctl/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(controlsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	// Set custom config file path if provided via --config flag
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Always surface config loading errors to the user
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}

	// Apply verbose from config if not set via flag
	if cfg != nil && !verbose {
		verbose = cfg.UI.Verbose
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}
