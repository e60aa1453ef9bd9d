// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"fmt"
	"strings"

	"hardenctl/pkg/control"
)

// RegistryFileGenerator renders a Windows registry import file. Only
// settings with a pure registry representation are supported; WinX
// menu removal is filesystem surgery and firewall rules need the
// firewall service, so both are left to the script formats.
type RegistryFileGenerator struct{}

func (g *RegistryFileGenerator) Format() FormatID  { return FormatRegistry }
func (g *RegistryFileGenerator) Label() string     { return "Registry" }
func (g *RegistryFileGenerator) Extension() string { return "reg" }
func (g *RegistryFileGenerator) MIMEType() string  { return "text/plain" }

func (g *RegistryFileGenerator) SupportedKeys() []control.Key {
	return []control.Key{
		control.KeyFileAssociations,
		control.KeyDisabledHotkeys,
		control.KeyDisableAllHotkeys,
	}
}

const regHeader = "Windows Registry Editor Version 5.00"

func (g *RegistryFileGenerator) Generate(req Request) (string, error) {
	s := req.Settings
	lines := []string{
		regHeader,
		"",
		"; Windows Security Control: " + req.ControlName,
		"; Generated: " + req.Now.Format("2006-01-02 15:04:05"),
		"",
	}

	if s.Has(control.KeyFileAssociations) {
		assocLines, err := g.fileAssociationLines(s.FileAssociations)
		if err != nil {
			return "", err
		}
		lines = append(lines, assocLines...)
	}

	if s.DisableAllHotkeys {
		lines = append(lines,
			"; Windows Hotkey Control: disable ALL Windows hotkeys (system-wide)",
			`[HKEY_LOCAL_MACHINE\SOFTWARE\Microsoft\Windows\CurrentVersion\Policies\Explorer]`,
			`"NoWinKeys"=dword:00000001`,
			"",
		)
	} else if letters := s.HotkeyLetters(); len(letters) > 0 {
		joined := strings.Join(letters, "")
		lines = append(lines,
			"; Windows Hotkey Control: disable specific hotkeys ("+joined+")",
			"; Registry import applies to the importing user only; use the",
			"; deployment script to cover every profile",
			`[HKEY_CURRENT_USER\Software\Microsoft\Windows\CurrentVersion\Explorer\Advanced]`,
			fmt.Sprintf(`"DisabledHotkeys"="%s"`, joined),
			"",
		)
	}

	return strings.Join(lines, "\n") + "\n", nil
}

func (g *RegistryFileGenerator) fileAssociationLines(assocs []control.FileAssociation) ([]string, error) {
	lines := []string{
		"; File Association Changes",
		`; Using HKLM\SOFTWARE\Classes instead of HKCR to avoid dynamic generation issues`,
	}

	// Handler class blocks are emitted once per distinct application,
	// in first-use order, before the extension assignments.
	seen := map[string]bool{}
	blocked := false
	for _, assoc := range assocs {
		if assoc.Application == control.BlockSentinel {
			blocked = true
			continue
		}
		if seen[assoc.Application] {
			continue
		}
		seen[assoc.Application] = true

		command, err := regString(fmt.Sprintf(`%s "%%1"`, assoc.Application))
		if err != nil {
			return nil, fmt.Errorf("unsupported setting value for %s: %w", assoc.Application, err)
		}
		lines = append(lines,
			fmt.Sprintf(`[HKEY_LOCAL_MACHINE\SOFTWARE\Classes\%sFile\shell\open\command]`, assoc.Application),
			fmt.Sprintf(`@="%s"`, command),
			"",
		)
	}
	if blocked {
		label, _ := regString(blockedHandlerLabel)
		lines = append(lines,
			"; Handler class with no open command; files associated with it",
			"; cannot be executed by double-click",
			fmt.Sprintf(`[HKEY_LOCAL_MACHINE\SOFTWARE\Classes\%s]`, blockedHandlerClass),
			fmt.Sprintf(`@="%s"`, label),
			"",
		)
	}

	for _, assoc := range assocs {
		handler := assoc.Application + "File"
		if assoc.Application == control.BlockSentinel {
			handler = blockedHandlerClass
		}
		value, err := regString(handler)
		if err != nil {
			return nil, fmt.Errorf("unsupported setting value for %s: %w", assoc.Extension, err)
		}
		lines = append(lines,
			fmt.Sprintf(`[HKEY_LOCAL_MACHINE\SOFTWARE\Classes\%s]`, assoc.Extension),
			fmt.Sprintf(`@="%s"`, value),
			"",
		)
	}

	return lines, nil
}

// regString escapes a value for a quoted .reg string. Control
// characters have no textual encoding in the format, so they are
// rejected rather than silently dropped.
func regString(s string) (string, error) {
	for _, r := range s {
		if r < 0x20 {
			return "", fmt.Errorf("control character %q has no .reg encoding", r)
		}
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s, nil
}
