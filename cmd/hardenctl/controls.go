// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"hardenctl/internal/issue"
	"hardenctl/pkg/artifact"
	"hardenctl/pkg/control"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var controlsCmd = &cobra.Command{
	Use:   "controls",
	Short: "List the built-in security control catalog",
	RunE:  runControlsList,
}

var controlsShowCmd = &cobra.Command{
	Use:           "show <control-id>",
	Short:         "Show a control's details and default configuration",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runControlsShow,
}

func init() {
	controlsCmd.AddCommand(controlsShowCmd)
}

func runControlsList(cmd *cobra.Command, args []string) error {
	fmt.Println(TitleStyle.Render("Available Security Controls"))
	fmt.Println()

	for _, c := range control.Catalog() {
		meta := c.Metadata
		fmt.Printf("  %s  %s %s\n",
			CmdStyle.Render(fmt.Sprintf("%-18s", meta.ID)),
			meta.Name,
			riskStyle(meta.Risk).Render("["+meta.Risk.Title()+" risk]"))
		fmt.Printf("  %s  %s\n", strings.Repeat(" ", 18), SubtitleStyle.Render(meta.Description))
	}

	fmt.Println()
	fmt.Printf("Run %s for details on one control.\n", CmdStyle.Render("hardenctl controls show <control-id>"))
	return nil
}

func runControlsShow(cmd *cobra.Command, args []string) error {
	ctrl, err := control.Lookup(args[0])
	if err != nil {
		renderIssue(issue.ControlNotFoundId)
		return &ExitError{Code: 1, Err: err}
	}

	rendered, err := glamour.Render(controlMarkdown(ctrl), issueStylePath())
	if err != nil {
		// Fall back to the raw markdown if the renderer chokes
		fmt.Print(controlMarkdown(ctrl))
		return nil
	}
	fmt.Print(rendered)
	return nil
}

// controlMarkdown builds the detail view for one control as markdown, so the
// output matches the styling of the issue catalog.
func controlMarkdown(ctrl *control.Control) string {
	meta := ctrl.Metadata

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", meta.Name)
	fmt.Fprintf(&b, "%s\n\n", meta.Description)
	fmt.Fprintf(&b, "- **ID**: `%s`\n", meta.ID)
	fmt.Fprintf(&b, "- **Category**: %s\n", meta.Category)
	fmt.Fprintf(&b, "- **Risk**: %s\n", meta.Risk.Title())
	fmt.Fprintf(&b, "\n## Purpose\n\n%s\n", meta.Purpose)

	if targets := meta.Targets(); len(targets) > 0 {
		b.WriteString("\n## Common targets\n\n")
		for _, t := range targets {
			fmt.Fprintf(&b, "- `%s`\n", t)
		}
	}

	b.WriteString("\n## Default configuration\n\n")
	if ctrl.Defaults == nil {
		b.WriteString("This control has no defaults. Provide a settings file:\n\n")
		fmt.Fprintf(&b, "    hardenctl generate %s --settings my.cue\n", meta.ID)
	} else {
		settings := ctrl.DefaultSettings()
		for _, key := range settings.Keys() {
			fmt.Fprintf(&b, "- `%s`\n", key)
		}
		b.WriteString("\n## Output formats\n\n")
		for _, g := range artifact.DefaultRegistry(artifact.DefaultGPODomain).Compatible(settings) {
			fmt.Fprintf(&b, "- %s (`.%s`)\n", g.Label(), g.Extension())
		}
	}

	return b.String()
}
