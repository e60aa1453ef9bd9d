// SPDX-License-Identifier: MPL-2.0

package control_test

import (
	"reflect"
	"strings"
	"testing"

	"hardenctl/pkg/control"
)

func TestSettingsKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		settings control.Settings
		want     []control.Key
	}{
		{
			name:     "empty settings have no keys",
			settings: control.Settings{},
			want:     nil,
		},
		{
			name: "file associations only",
			settings: control.Settings{
				FileAssociations: []control.FileAssociation{{Extension: ".scr", Application: "notepad.exe"}},
			},
			want: []control.Key{control.KeyFileAssociations},
		},
		{
			name: "disable-all flag counts only when set",
			settings: control.Settings{
				DisableAllHotkeys: true,
				DisabledHotkeys:   []string{"R"},
			},
			want: []control.Key{control.KeyDisabledHotkeys, control.KeyDisableAllHotkeys},
		},
		{
			name: "custom-only settings have no recognized keys",
			settings: control.Settings{
				Custom: map[string]any{"audit_level": "strict"},
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.settings.Keys()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keys() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSettingsIsEmpty(t *testing.T) {
	t.Parallel()

	empty := control.Settings{}
	if !empty.IsEmpty() {
		t.Error("zero settings should be empty")
	}

	customOnly := control.Settings{Custom: map[string]any{"k": "v"}}
	if customOnly.IsEmpty() {
		t.Error("custom-only settings should not be empty")
	}
}

func TestHotkeyLettersPrecedence(t *testing.T) {
	t.Parallel()

	// disable_all_hotkeys=true must suppress the per-letter list so no
	// generator ever emits both code paths for one settings value.
	s := control.Settings{
		DisableAllHotkeys: true,
		DisabledHotkeys:   []string{"R", "X"},
	}
	if got := s.HotkeyLetters(); got != nil {
		t.Errorf("HotkeyLetters() = %v, want nil when disable-all is set", got)
	}

	s.DisableAllHotkeys = false
	if got := s.HotkeyLetters(); !reflect.DeepEqual(got, []string{"R", "X"}) {
		t.Errorf("HotkeyLetters() = %v, want [R X]", got)
	}
}

func TestExpandFirewallRules(t *testing.T) {
	t.Parallel()

	rules, err := control.ExpandFirewallRules(map[string][]string{
		"powershell.exe": {
			`C:\Windows\System32\powershell.exe`,
			`C:\Windows\SysWOW64\powershell.exe`,
		},
	})
	if err != nil {
		t.Fatalf("ExpandFirewallRules() error = %v", err)
	}

	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2 (one per path)", len(rules))
	}
	for _, rule := range rules {
		if !strings.HasPrefix(rule.RuleName, "Block_powershell.exe_Outbound") {
			t.Errorf("rule name %q does not follow the Block_<binary>_Outbound pattern", rule.RuleName)
		}
		if rule.Direction != control.DirectionOutbound {
			t.Errorf("rule %q direction = %q, want outbound", rule.RuleName, rule.Direction)
		}
	}
	if rules[0].RuleName == rules[1].RuleName {
		t.Errorf("duplicate rule name %q across alternate paths", rules[0].RuleName)
	}
}

func TestExpandFirewallRulesEmptyPaths(t *testing.T) {
	t.Parallel()

	_, err := control.ExpandFirewallRules(map[string][]string{"cmd.exe": {}})
	if err == nil {
		t.Fatal("expected error for a binary with no paths")
	}
}

func TestExpandFirewallRulesDeterministic(t *testing.T) {
	t.Parallel()

	binaries := map[string][]string{
		"wscript.exe": {`C:\Windows\System32\wscript.exe`},
		"cmd.exe":     {`C:\Windows\System32\cmd.exe`},
		"mshta.exe":   {`C:\Windows\System32\mshta.exe`},
	}

	first, err := control.ExpandFirewallRules(binaries)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := control.ExpandFirewallRules(binaries)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("expansion order changed between runs: %v vs %v", first, again)
		}
	}
	if first[0].RuleName != "Block_cmd.exe_Outbound" {
		t.Errorf("first rule = %q, want binaries expanded in sorted order", first[0].RuleName)
	}
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	controls := control.Catalog()
	if len(controls) != 5 {
		t.Fatalf("Catalog() returned %d controls, want 5", len(controls))
	}

	for _, c := range controls {
		if c.Metadata.ID == "" || c.Metadata.Name == "" {
			t.Errorf("control %+v has incomplete metadata", c.Metadata)
		}
		// Defaults must be valid out of the box.
		s := c.DefaultSettings()
		s.Normalize()
		if err := s.Validate(); err != nil {
			t.Errorf("control %s default settings invalid: %v", c.Metadata.ID, err)
		}
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	c, err := control.Lookup("network-traffic")
	if err != nil {
		t.Fatalf("Lookup(network-traffic) error = %v", err)
	}
	if c.Metadata.Risk != control.RiskHigh {
		t.Errorf("network-traffic risk = %q, want high", c.Metadata.Risk)
	}

	defaults := c.DefaultSettings()
	if len(defaults.FirewallRules) < len(control.RiskyBinaries()) {
		t.Errorf("default rules %d, want at least one per risky binary (%d)",
			len(defaults.FirewallRules), len(control.RiskyBinaries()))
	}

	if _, err := control.Lookup("no-such-control"); err == nil {
		t.Error("Lookup of unknown control should fail")
	}
}

func TestCanonicalWinXItem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "short name", input: "PowerShell", want: "Windows PowerShell (Admin)", ok: true},
		{name: "canonical name", input: "Windows PowerShell (Admin)", want: "Windows PowerShell (Admin)", ok: true},
		{name: "case insensitive", input: "powershell", want: "Windows PowerShell (Admin)", ok: true},
		{name: "unknown entry", input: "Solitaire", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := control.CanonicalWinXItem(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("CanonicalWinXItem(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}
