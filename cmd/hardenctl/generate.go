// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hardenctl/internal/config"
	"hardenctl/internal/issue"
	"hardenctl/pkg/artifact"
	"hardenctl/pkg/bundle"
	"hardenctl/pkg/control"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	generateSettings    string
	generateOutput      string
	generateName        string
	generateDomain      string
	generateListFormats bool

	generateCmd = &cobra.Command{
		Use:   "generate <control-id>",
		Short: "Generate a deployable package for a security control",
		Long: `Generate all compatible artifacts for a security control and zip them
into a deployment package.

Without --settings the control's default configuration is used. The
'custom' control has no defaults and always needs a settings file.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGenerate,
	}
)

func init() {
	generateCmd.Flags().StringVarP(&generateSettings, "settings", "s", "", "settings file (.cue, .toml, .yaml or .json) overriding the control defaults")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "directory to write the package to (default from config, falling back to the current directory)")
	generateCmd.Flags().StringVarP(&generateName, "name", "n", "", "control name used in artifact headers and filenames (default: the catalog name)")
	generateCmd.Flags().StringVar(&generateDomain, "domain", "", "Active Directory domain recorded in the GPO export")
	generateCmd.Flags().BoolVar(&generateListFormats, "list-formats", false, "list the compatible output formats and exit without generating")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	ctrl, err := control.Lookup(args[0])
	if err != nil {
		renderIssue(issue.ControlNotFoundId)
		return &ExitError{Code: 1, Err: err}
	}

	settings, err := resolveSettings(ctrl)
	if err != nil {
		return err
	}

	name := generateName
	if name == "" {
		name = ctrl.Metadata.Name
	}

	domain := generateDomain
	if domain == "" {
		domain = cfg.GPO.Domain
	}

	registry := artifact.DefaultRegistry(domain)

	if generateListFormats {
		compatible := registry.Compatible(settings)
		if len(compatible) == 0 {
			fmt.Println(WarningStyle.Render("No output format can render these settings."))
			return nil
		}
		for _, g := range compatible {
			fmt.Printf("%s  %s (.%s)\n", CmdStyle.Render(string(g.Format())), g.Label(), g.Extension())
		}
		return nil
	}

	logLevel := log.WarnLevel
	if verbose {
		logLevel = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "generate", Level: logLevel})

	orch := artifact.NewOrchestrator(registry, logger)
	now := time.Now()

	result, err := orch.GenerateAll(name, settings, now)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	// No compatible format is not a failure: the settings were valid, there
	// is just nothing to package.
	if len(result.Artifacts) == 0 {
		renderIssue(issue.NoCompatibleFormatsId)
		fmt.Fprintln(os.Stderr, WarningStyle.Render(fmt.Sprintf("No artifacts generated for control %q; nothing to package.", args[0])))
		return nil
	}

	for _, id := range result.Order {
		if genErr, ok := result.Failures[id]; ok {
			fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+genErr.Error())
		}
	}
	if len(result.Failures) > 0 {
		renderIssue(issue.GenerationFailedId)
	}

	data, err := bundle.Assemble(name, result.Produced(), now)
	if err != nil {
		renderIssue(issue.PackagingFailedId)
		return &ExitError{Code: 1, Err: err}
	}

	outDir := generateOutput
	if outDir == "" {
		outDir = cfg.OutputDir
	}
	if outDir == "" {
		outDir = "."
	}
	outPath := filepath.Join(outDir, artifact.SanitizeControlName(name)+".zip")

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		renderIssue(issue.OutputWriteFailedId)
		return &ExitError{Code: 1, Err: fmt.Errorf("failed to create output directory %s: %w", outDir, err)}
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		renderIssue(issue.OutputWriteFailedId)
		return &ExitError{Code: 1, Err: fmt.Errorf("failed to write package %s: %w", outPath, err)}
	}

	fmt.Printf("%s Wrote %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(outPath))
	for _, id := range result.Order {
		if _, ok := result.Artifacts[id]; ok {
			fmt.Printf("  - %s\n", result.Filenames[id])
		}
	}
	fmt.Printf("  - %s\n", bundle.ReadmeName)
	if len(result.Failures) > 0 {
		fmt.Println(WarningStyle.Render(fmt.Sprintf("%d format(s) skipped due to errors; package is incomplete", len(result.Failures))))
	}

	return nil
}

// resolveSettings loads the settings file when --settings is given, otherwise
// falls back to the control's defaults. The custom control has no defaults
// and requires an explicit file.
func resolveSettings(ctrl *control.Control) (*control.Settings, error) {
	if generateSettings == "" {
		if ctrl.Defaults == nil {
			return nil, &ExitError{Code: 1, Err: fmt.Errorf("control %q has no default settings; pass --settings", ctrl.Metadata.ID)}
		}
		return ctrl.DefaultSettings(), nil
	}

	settings, err := control.ParseFile(generateSettings)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist):
			renderIssue(issue.SettingsFileNotFoundId)
		case isValidationError(err):
			renderIssue(issue.SettingsInvalidId)
		default:
			renderIssue(issue.SettingsParseErrorId)
		}
		return nil, &ExitError{Code: 1, Err: err}
	}
	return settings, nil
}

func isValidationError(err error) bool {
	var verrs control.ValidationErrors
	return errors.As(err, &verrs)
}

// renderIssue prints the styled troubleshooting card for an issue to stderr.
// Rendering failures are ignored; the plain error still reaches the user.
func renderIssue(id issue.Id) {
	rendered, err := issue.Get(id).Render(issueStylePath())
	if err != nil {
		return
	}
	fmt.Fprint(os.Stderr, rendered)
}

// issueStylePath maps the configured color scheme to a glamour style name.
func issueStylePath() string {
	switch config.Get().UI.ColorScheme {
	case config.ColorSchemeLight:
		return "light"
	default:
		return "dark"
	}
}
