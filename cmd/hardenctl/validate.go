// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"hardenctl/internal/issue"
	"hardenctl/pkg/artifact"
	"hardenctl/pkg/control"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <settings-file>",
	Short: "Validate a settings file without generating anything",
	Long: `Validate a settings file against the settings schema and the semantic
rules generators rely on (known extensions map to known handlers, hotkey
letters are single uppercase characters, firewall rule names are unique).

The file format is chosen by extension: .cue, .toml, .yaml/.yml or .json.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]

	settings, err := control.ParseFile(path)
	if err != nil {
		var verrs control.ValidationErrors
		switch {
		case errors.Is(err, os.ErrNotExist):
			renderIssue(issue.SettingsFileNotFoundId)
		case errors.As(err, &verrs):
			fmt.Println(ErrorStyle.Render("✗ ") + fmt.Sprintf("%s failed validation:", path))
			for _, vi := range verrs {
				fmt.Printf("  - %s\n", vi.Error())
			}
			renderIssue(issue.SettingsInvalidId)
		default:
			renderIssue(issue.SettingsParseErrorId)
		}
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Printf("%s %s is valid\n", SuccessStyle.Render("✓"), CmdStyle.Render(path))

	keys := settings.Keys()
	if len(keys) > 0 {
		fmt.Println()
		fmt.Println(SubtitleStyle.Render("Recognized settings:"))
		for _, key := range keys {
			fmt.Printf("  - %s\n", key)
		}
	}
	if custom := settings.CustomKeys(); len(custom) > 0 {
		fmt.Println()
		fmt.Println(SubtitleStyle.Render("Custom settings (manifest only):"))
		for _, key := range custom {
			fmt.Printf("  - %s\n", key)
		}
	}

	compatible := artifact.DefaultRegistry(artifact.DefaultGPODomain).Compatible(settings)
	fmt.Println()
	if len(compatible) == 0 {
		fmt.Println(WarningStyle.Render("No output format can render these settings."))
		return nil
	}
	fmt.Println(SubtitleStyle.Render("Compatible output formats:"))
	for _, g := range compatible {
		fmt.Printf("  - %s (.%s)\n", g.Label(), g.Extension())
	}

	return nil
}
