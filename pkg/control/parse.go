// SPDX-License-Identifier: MPL-2.0

package control

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hardenctl/pkg/cueutil"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v3"
)

//go:embed settings_schema.cue
var settingsSchema string

// Recognized settings-file keys beyond the Key constants. The source form is
// a convenience shorthand expanded into firewall_rules during parsing.
const keyFirewallRulesSource = "firewall_rules_source"

// ParseFile reads and parses a settings file. The codec is chosen by file
// extension: .cue (validated against the embedded schema), .toml, .yaml/.yml,
// or .json. The result is normalized and validated; a settings value that
// fails validation is never returned.
func ParseFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	return ParseBytes(data, path)
}

// ParseBytes parses settings content, using path only to pick the codec and
// label errors.
func ParseBytes(data []byte, path string) (*Settings, error) {
	raw, err := decodeRaw(data, path)
	if err != nil {
		return nil, err
	}

	settings, err := FromMap(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	settings.Normalize()
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return settings, nil
}

// decodeRaw turns the file bytes into a generic key/value map.
func decodeRaw(data []byte, path string) (map[string]any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		result, err := cueutil.ParseAndDecode[map[string]any](
			settingsSchema,
			data,
			"#Settings",
			cueutil.WithFilename(path),
		)
		if err != nil {
			return nil, err
		}
		return *result.Value, nil
	case ".toml":
		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return raw, nil
	case ".yaml", ".yml":
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return raw, nil
	case ".json":
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("%s: unsupported settings format %q (expected .cue, .toml, .yaml or .json)", path, filepath.Ext(path))
	}
}

// FromMap builds a Settings value from a generic key/value map. Recognized
// keys are coerced into their typed fields; everything else lands in the
// opaque custom bag. Shape errors are collected into a ValidationErrors so a
// caller sees every problem at once.
func FromMap(raw map[string]any) (*Settings, error) {
	s := &Settings{}
	var errs ValidationErrors

	// Iterate in sorted key order, not map order: firewall_rules and
	// firewall_rules_source both append to FirewallRules, and the result
	// must not depend on map iteration order.
	keys := maps.Keys(raw)
	sort.Strings(keys)

	for _, key := range keys {
		value := raw[key]
		switch Key(key) {
		case KeyFileAssociations:
			assocs, err := coerceFileAssociations(value)
			if err != nil {
				errs = append(errs, ValidationIssue{Field: key, Message: err.Error()})
				continue
			}
			s.FileAssociations = assocs
		case KeyFirewallRules:
			rules, err := coerceFirewallRules(value)
			if err != nil {
				errs = append(errs, ValidationIssue{Field: key, Message: err.Error()})
				continue
			}
			s.FirewallRules = append(s.FirewallRules, rules...)
		case KeyWinXRemoval:
			items, err := coerceStringSlice(value)
			if err != nil {
				errs = append(errs, ValidationIssue{Field: key, Message: err.Error()})
				continue
			}
			s.WinXRemoval = items
		case KeyDisabledHotkeys:
			letters, err := coerceStringSlice(value)
			if err != nil {
				errs = append(errs, ValidationIssue{Field: key, Message: err.Error()})
				continue
			}
			s.DisabledHotkeys = letters
		case KeyDisableAllHotkeys:
			flag, ok := value.(bool)
			if !ok {
				errs = append(errs, ValidationIssue{Field: key, Message: fmt.Sprintf("expected bool, got %T", value)})
				continue
			}
			s.DisableAllHotkeys = flag
		default:
			if key == keyFirewallRulesSource {
				binaries, err := coerceBinaryPaths(value)
				if err != nil {
					errs = append(errs, ValidationIssue{Field: key, Message: err.Error()})
					continue
				}
				rules, err := ExpandFirewallRules(binaries)
				if err != nil {
					errs = append(errs, ValidationIssue{Field: key, Message: err.Error()})
					continue
				}
				s.FirewallRules = append(s.FirewallRules, rules...)
				continue
			}
			if s.Custom == nil {
				s.Custom = make(map[string]any)
			}
			s.Custom[key] = value
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return s, nil
}

func coerceFileAssociations(value any) ([]FileAssociation, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a map of extension to application, got %T", value)
	}
	assocs := make([]FileAssociation, 0, len(m))
	for ext, appValue := range m {
		app, ok := appValue.(string)
		if !ok {
			return nil, fmt.Errorf("application for %q must be a string, got %T", ext, appValue)
		}
		assocs = append(assocs, FileAssociation{Extension: ext, Application: app})
	}
	return assocs, nil
}

func coerceFirewallRules(value any) ([]FirewallRule, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of rules, got %T", value)
	}
	rules := make([]FirewallRule, 0, len(list))
	for i, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("rule %d: expected a map, got %T", i, entry)
		}
		rule := FirewallRule{}
		if v, present := m["program_path"]; present {
			path, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("rule %d: program_path must be a string", i)
			}
			rule.ProgramPath = path
		}
		if v, present := m["rule_name"]; present {
			name, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("rule %d: rule_name must be a string", i)
			}
			rule.RuleName = name
		}
		if v, present := m["direction"]; present {
			dir, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("rule %d: direction must be a string", i)
			}
			rule.Direction = Direction(dir)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func coerceBinaryPaths(value any) (map[string][]string, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a map of binary name to program paths, got %T", value)
	}
	binaries := make(map[string][]string, len(m))
	for name, pathsValue := range m {
		paths, err := coerceStringSlice(pathsValue)
		if err != nil {
			return nil, fmt.Errorf("binary %q: %w", name, err)
		}
		binaries[name] = paths
	}
	return binaries, nil
}

func coerceStringSlice(value any) ([]string, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of strings, got %T", value)
	}
	out := make([]string, 0, len(list))
	for i, entry := range list {
		s, ok := entry.(string)
		if !ok {
			return nil, fmt.Errorf("entry %d: expected a string, got %T", i, entry)
		}
		out = append(out, s)
	}
	return out, nil
}
