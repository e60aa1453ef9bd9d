// SPDX-License-Identifier: MPL-2.0

// Package control defines the settings model for Windows security-hardening
// controls and the catalog of built-in controls.
//
// A Settings value is the normalized, validated representation of one
// control's configuration: file-extension-to-application mappings, outbound
// firewall block rules for risky binaries, WinX menu-item removals, and
// Windows hotkey disables. Arbitrary additional keys are carried as an opaque
// custom bag for user-defined controls.
//
// Settings are created by the CLI layer (from a settings file or a control's
// default configuration), validated once at that boundary, and consumed
// read-only by the artifact generators in pkg/artifact. Nothing in this
// package touches a live Windows registry; the model is pure data.
package control

import "sort"

// Key identifies one recognized settings kind. The artifact generators
// declare compatibility in terms of these keys.
type Key string

const (
	// KeyFileAssociations maps dangerous file extensions to safe handlers.
	KeyFileAssociations Key = "file_associations"
	// KeyFirewallRules holds outbound block rules for risky binaries.
	KeyFirewallRules Key = "firewall_rules"
	// KeyWinXRemoval lists WinX menu entries to remove.
	KeyWinXRemoval Key = "winx_removal"
	// KeyDisabledHotkeys lists individual Win+<letter> hotkeys to disable.
	KeyDisabledHotkeys Key = "disabled_hotkeys"
	// KeyDisableAllHotkeys disables every Windows hotkey system-wide.
	KeyDisableAllHotkeys Key = "disable_all_hotkeys"
)

// BlockSentinel is the application token meaning "block execution" rather
// than reassociating the extension with a viewer application.
const BlockSentinel = "block"

// Direction is the traffic direction of a firewall rule. Only outbound rules
// are generated; the point of the control is stopping exfiltration and C2
// traffic from living-off-the-land binaries.
type Direction string

// DirectionOutbound is the only supported rule direction.
const DirectionOutbound Direction = "outbound"

// FileAssociation maps one file extension to the application that should
// open it, or to BlockSentinel.
type FileAssociation struct {
	// Extension is the lowercase extension including the leading dot.
	Extension string `json:"extension"`
	// Application is a known-safe handler (e.g. "notepad.exe") or BlockSentinel.
	Application string `json:"application"`
}

// FirewallRule is one outbound block rule for a single program path.
// A logical binary with multiple install paths (x86/x64) expands to one
// FirewallRule per path; see ExpandFirewallRules.
type FirewallRule struct {
	// ProgramPath is the absolute path of the blocked executable.
	ProgramPath string `json:"program_path"`
	// RuleName is the display name of the rule, unique within the settings.
	RuleName string `json:"rule_name"`
	// Direction is always DirectionOutbound.
	Direction Direction `json:"direction"`
}

// Settings is the validated configuration of one security control.
//
// The struct is a discriminated representation: each recognized kind has a
// typed field, and unrecognized keys from user-defined controls live in
// Custom. A Settings value must be treated as immutable once handed to the
// generation orchestrator.
type Settings struct {
	// FileAssociations is kept in a stable order (sorted by extension) so
	// repeated generation from an unchanged model is byte-identical.
	FileAssociations []FileAssociation

	// FirewallRules preserves the order rules were declared or expanded in.
	FirewallRules []FirewallRule

	// WinXRemoval holds canonical WinX menu entry names.
	WinXRemoval []string

	// DisableAllHotkeys, when true, takes precedence over DisabledHotkeys:
	// generators render only the disable-everything path. Both may coexist
	// in a stored settings file; precedence is applied at generation time.
	DisableAllHotkeys bool

	// DisabledHotkeys holds single uppercase letters, each a Win+<letter>
	// shortcut to disable.
	DisabledHotkeys []string

	// Custom carries unrecognized settings keys as opaque pass-through data.
	// Only the universal manifest generator renders them.
	Custom map[string]any
}

// Keys returns the recognized keys present in the settings, in a stable
// order. DisableAllHotkeys counts as present only when true; slice-backed
// kinds count as present when non-empty. Custom keys are not included: they
// have no dedicated generator support and are covered by the universal
// fallback.
func (s *Settings) Keys() []Key {
	var keys []Key
	if len(s.FileAssociations) > 0 {
		keys = append(keys, KeyFileAssociations)
	}
	if len(s.FirewallRules) > 0 {
		keys = append(keys, KeyFirewallRules)
	}
	if len(s.WinXRemoval) > 0 {
		keys = append(keys, KeyWinXRemoval)
	}
	if len(s.DisabledHotkeys) > 0 {
		keys = append(keys, KeyDisabledHotkeys)
	}
	if s.DisableAllHotkeys {
		keys = append(keys, KeyDisableAllHotkeys)
	}
	return keys
}

// Has reports whether the given recognized key is present.
func (s *Settings) Has(key Key) bool {
	for _, k := range s.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the settings carry no data at all, recognized or
// custom.
func (s *Settings) IsEmpty() bool {
	return len(s.Keys()) == 0 && len(s.Custom) == 0
}

// HotkeyLetters returns the per-letter disable list in sorted order, or nil
// when DisableAllHotkeys is set: the all-keys path supersedes the specific
// list, and generators must never emit both.
func (s *Settings) HotkeyLetters() []string {
	if s.DisableAllHotkeys || len(s.DisabledHotkeys) == 0 {
		return nil
	}
	letters := make([]string, len(s.DisabledHotkeys))
	copy(letters, s.DisabledHotkeys)
	sort.Strings(letters)
	return letters
}

// CustomKeys returns the custom bag's keys in sorted order.
func (s *Settings) CustomKeys() []string {
	if len(s.Custom) == 0 {
		return nil
	}
	keys := make([]string, 0, len(s.Custom))
	for k := range s.Custom {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
