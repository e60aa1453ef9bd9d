// SPDX-License-Identifier: MPL-2.0

// Package bundle assembles generated artifacts into a single
// downloadable zip archive with a README deployment guide. Artifact
// content is opaque bytes here; assembly only fails on structural
// archive errors, never on what a generator produced.
package bundle

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"time"

	"hardenctl/pkg/artifact"
)

// ReadmeName is the fixed name of the guide inside every package.
const ReadmeName = "README.txt"

// formatDescriptions annotates README file listings per format.
var formatDescriptions = map[artifact.FormatID]string{
	artifact.FormatGPO:        "Group Policy Object export",
	artifact.FormatPowerShell: "PowerShell implementation script",
	artifact.FormatRegistry:   "Registry file for manual import",
	artifact.FormatBatch:      "Batch script for deployment",
	artifact.FormatManifest:   "JSON manifest of the applied settings",
}

// Assemble packages the artifacts into a zip archive under their
// canonical filenames and adds a README describing them. The artifact
// order is preserved, so identical input yields an identical archive
// layout.
func Assemble(controlName string, artifacts []artifact.Artifact, now time.Time) ([]byte, error) {
	if len(artifacts) == 0 {
		return nil, fmt.Errorf("assembling package for %q: no artifacts to package", controlName)
	}

	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)

	for _, a := range artifacts {
		header := &zip.FileHeader{
			Name:     a.Filename(controlName),
			Method:   zip.Deflate,
			Modified: now,
		}
		writer, err := zipWriter.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("failed to create archive entry %s: %w", header.Name, err)
		}
		if _, err := writer.Write([]byte(a.Content)); err != nil {
			return nil, fmt.Errorf("failed to write archive entry %s: %w", header.Name, err)
		}
	}

	readme, err := zipWriter.CreateHeader(&zip.FileHeader{
		Name:     ReadmeName,
		Method:   zip.Deflate,
		Modified: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create README entry: %w", err)
	}
	if _, err := readme.Write([]byte(buildReadme(controlName, artifacts, now))); err != nil {
		return nil, fmt.Errorf("failed to write README entry: %w", err)
	}

	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// buildReadme synthesizes the plain-text deployment guide: included
// files, the non-production-testing warning, and numbered steps.
func buildReadme(controlName string, artifacts []artifact.Artifact, now time.Time) string {
	var b strings.Builder

	b.WriteString("Windows Security Control Package\n")
	b.WriteString("=================================\n\n")
	fmt.Fprintf(&b, "Control Name: %s\n", controlName)
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format("2006-01-02 15:04:05"))

	b.WriteString("Files Included:\n")
	for _, a := range artifacts {
		desc := formatDescriptions[a.Format]
		if desc == "" {
			desc = "Generated artifact"
		}
		fmt.Fprintf(&b, "- %s: %s\n", a.Filename(controlName), desc)
	}

	b.WriteString("\nIMPORTANT: Always test these configurations in a non-production environment first!\n\n")
	b.WriteString("Implementation Notes:\n")
	b.WriteString("1. Run scripts with Administrator privileges\n")
	b.WriteString("2. Backup your system before applying changes\n")
	b.WriteString("3. Test thoroughly before deploying to production\n")
	b.WriteString("4. Consider the impact on user workflows and deploy incrementally\n")

	return b.String()
}
