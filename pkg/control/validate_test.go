// SPDX-License-Identifier: MPL-2.0

package control_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"hardenctl/pkg/control"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	s := &control.Settings{
		FileAssociations: []control.FileAssociation{
			{Extension: " .VBS ", Application: " notepad.exe "},
			{Extension: ".bat", Application: "wordpad.exe"},
		},
		FirewallRules: []control.FirewallRule{
			{ProgramPath: `C:\Windows\System32\cmd.exe`, RuleName: "Block_cmd.exe_Outbound"},
		},
		WinXRemoval:     []string{"powershell"},
		DisabledHotkeys: []string{"x", "r", "R"},
	}
	s.Normalize()

	wantAssocs := []control.FileAssociation{
		{Extension: ".bat", Application: "wordpad.exe"},
		{Extension: ".vbs", Application: "notepad.exe"},
	}
	if !reflect.DeepEqual(s.FileAssociations, wantAssocs) {
		t.Errorf("FileAssociations = %v, want %v", s.FileAssociations, wantAssocs)
	}

	if s.FirewallRules[0].Direction != control.DirectionOutbound {
		t.Errorf("missing direction should default to outbound, got %q", s.FirewallRules[0].Direction)
	}

	if !reflect.DeepEqual(s.WinXRemoval, []string{"Windows PowerShell (Admin)"}) {
		t.Errorf("WinXRemoval = %v, want canonical entry", s.WinXRemoval)
	}

	if !reflect.DeepEqual(s.DisabledHotkeys, []string{"R", "X"}) {
		t.Errorf("DisabledHotkeys = %v, want deduplicated uppercase [R X]", s.DisabledHotkeys)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		settings  control.Settings
		wantIssue string // substring of the expected issue; empty means valid
	}{
		{
			name:     "empty settings are valid",
			settings: control.Settings{},
		},
		{
			name: "valid file association",
			settings: control.Settings{
				FileAssociations: []control.FileAssociation{{Extension: ".scr", Application: "notepad.exe"}},
			},
		},
		{
			name: "extension without dot",
			settings: control.Settings{
				FileAssociations: []control.FileAssociation{{Extension: "scr", Application: "notepad.exe"}},
			},
			wantIssue: "must start with a dot",
		},
		{
			name: "case-insensitive extension collision",
			settings: control.Settings{
				FileAssociations: []control.FileAssociation{
					{Extension: ".scr", Application: "notepad.exe"},
					{Extension: ".SCR", Application: "wordpad.exe"},
				},
			},
			wantIssue: "collides",
		},
		{
			name: "empty application",
			settings: control.Settings{
				FileAssociations: []control.FileAssociation{{Extension: ".scr", Application: ""}},
			},
			wantIssue: "empty application",
		},
		{
			name: "firewall rule without path",
			settings: control.Settings{
				FirewallRules: []control.FirewallRule{{RuleName: "r", Direction: control.DirectionOutbound}},
			},
			wantIssue: "empty program path",
		},
		{
			name: "firewall rule with inbound direction",
			settings: control.Settings{
				FirewallRules: []control.FirewallRule{{ProgramPath: `C:\x.exe`, RuleName: "r", Direction: "inbound"}},
			},
			wantIssue: "unsupported direction",
		},
		{
			name: "unknown winx entry",
			settings: control.Settings{
				WinXRemoval: []string{"Minesweeper"},
			},
			wantIssue: "not a known WinX menu entry",
		},
		{
			name: "hotkey not a single letter",
			settings: control.Settings{
				DisabledHotkeys: []string{"RX"},
			},
			wantIssue: "single uppercase letter",
		},
		{
			name: "disable-all alongside specific letters is allowed",
			settings: control.Settings{
				DisableAllHotkeys: true,
				DisabledHotkeys:   []string{"R", "X"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.settings.Validate()
			if tt.wantIssue == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want issue containing %q", tt.wantIssue)
			}
			if !strings.Contains(err.Error(), tt.wantIssue) {
				t.Errorf("Validate() = %q, want substring %q", err, tt.wantIssue)
			}
		})
	}
}

func TestValidateCollectsAllIssues(t *testing.T) {
	t.Parallel()

	s := control.Settings{
		FileAssociations: []control.FileAssociation{{Extension: "scr", Application: ""}},
		DisabledHotkeys:  []string{"winkey"},
	}
	err := s.Validate()

	var verrs control.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Validate() = %T, want ValidationErrors", err)
	}
	if len(verrs) != 3 {
		t.Errorf("got %d issues, want 3 (dot, empty app, hotkey): %v", len(verrs), verrs)
	}
}
