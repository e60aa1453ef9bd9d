// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"encoding/json"
	"fmt"
	"time"

	"hardenctl/pkg/control"
)

// ManifestGenerator renders a JSON description of the settings
// payload. It is the universal fallback: it can represent custom keys
// that no platform-specific format understands, so a control made of
// unrecognized settings still produces at least one artifact.
type ManifestGenerator struct{}

func (g *ManifestGenerator) Format() FormatID  { return FormatManifest }
func (g *ManifestGenerator) Label() string     { return "Manifest" }
func (g *ManifestGenerator) Extension() string { return "json" }
func (g *ManifestGenerator) MIMEType() string  { return "application/json" }

// SupportedKeys returns nil: the manifest accepts any non-empty
// settings payload.
func (g *ManifestGenerator) SupportedKeys() []control.Key { return nil }

type manifestRule struct {
	ProgramPath string `json:"program_path"`
	RuleName    string `json:"rule_name"`
	Direction   string `json:"direction"`
}

func (g *ManifestGenerator) Generate(req Request) (string, error) {
	s := req.Settings

	settings := map[string]any{}
	if s.Has(control.KeyFileAssociations) {
		assocs := make(map[string]string, len(s.FileAssociations))
		for _, a := range s.FileAssociations {
			assocs[a.Extension] = a.Application
		}
		settings[string(control.KeyFileAssociations)] = assocs
	}
	if s.Has(control.KeyFirewallRules) {
		rules := make([]manifestRule, 0, len(s.FirewallRules))
		for _, r := range s.FirewallRules {
			rules = append(rules, manifestRule{
				ProgramPath: r.ProgramPath,
				RuleName:    r.RuleName,
				Direction:   string(r.Direction),
			})
		}
		settings[string(control.KeyFirewallRules)] = rules
	}
	if s.Has(control.KeyWinXRemoval) {
		settings[string(control.KeyWinXRemoval)] = s.WinXRemoval
	}
	if s.DisableAllHotkeys {
		settings[string(control.KeyDisableAllHotkeys)] = true
	} else if letters := s.HotkeyLetters(); len(letters) > 0 {
		settings[string(control.KeyDisabledHotkeys)] = letters
	}
	for _, k := range s.CustomKeys() {
		settings[k] = s.Custom[k]
	}

	doc := map[string]any{
		"control":   req.ControlName,
		"generated": req.Now.UTC().Format(time.RFC3339),
		"settings":  settings,
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling settings manifest: %w", err)
	}
	return string(out) + "\n", nil
}
