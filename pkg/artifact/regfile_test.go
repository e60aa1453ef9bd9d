// SPDX-License-Identifier: MPL-2.0

package artifact_test

import (
	"strings"
	"testing"

	"hardenctl/pkg/artifact"
	"hardenctl/pkg/control"
)

func TestRegistryFileGenerate(t *testing.T) {
	t.Parallel()

	gen := &artifact.RegistryFileGenerator{}
	settings := &control.Settings{
		FileAssociations: []control.FileAssociation{
			{Extension: ".bat", Application: "notepad.exe"},
			{Extension: ".cmd", Application: "notepad.exe"},
			{Extension: ".scr", Application: "block"},
		},
	}

	out, err := gen.Generate(artifact.Request{ControlName: "File Assoc", Settings: settings, Now: fixedNow})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !strings.HasPrefix(out, "Windows Registry Editor Version 5.00\n") {
		t.Errorf("missing fixed header, got %q", out[:min(len(out), 60)])
	}
	for _, want := range []string{
		"; Windows Security Control: File Assoc",
		"; Generated: 2024-03-15 10:30:00",
		`[HKEY_LOCAL_MACHINE\SOFTWARE\Classes\notepad.exeFile\shell\open\command]`,
		`@="notepad.exe \"%1\""`,
		`[HKEY_LOCAL_MACHINE\SOFTWARE\Classes\.bat]`,
		`@="notepad.exeFile"`,
		`[HKEY_LOCAL_MACHINE\SOFTWARE\Classes\Blocked.File]`,
		`[HKEY_LOCAL_MACHINE\SOFTWARE\Classes\.scr]`,
		`@="Blocked.File"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}

	// One handler block per distinct application, not per extension.
	if n := strings.Count(out, `notepad.exeFile\shell\open\command`); n != 1 {
		t.Errorf("handler block emitted %d times, want 1", n)
	}
}

func TestRegistryFileHotkeys(t *testing.T) {
	t.Parallel()

	gen := &artifact.RegistryFileGenerator{}

	tests := []struct {
		name     string
		settings *control.Settings
		want     string
		forbid   string
	}{
		{
			name:     "disable all renders dword policy",
			settings: &control.Settings{DisableAllHotkeys: true},
			want:     `"NoWinKeys"=dword:00000001`,
			forbid:   "DisabledHotkeys",
		},
		{
			name:     "specific letters render string value",
			settings: &control.Settings{DisabledHotkeys: []string{"R", "X"}},
			want:     `"DisabledHotkeys"="RX"`,
			forbid:   "NoWinKeys",
		},
		{
			name:     "disable all wins when both set",
			settings: &control.Settings{DisableAllHotkeys: true, DisabledHotkeys: []string{"R"}},
			want:     `"NoWinKeys"=dword:00000001`,
			forbid:   "DisabledHotkeys",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := gen.Generate(artifact.Request{ControlName: "c", Settings: tt.settings, Now: fixedNow})
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q\n%s", tt.want, out)
			}
			if strings.Contains(out, tt.forbid) {
				t.Errorf("output must not contain %q\n%s", tt.forbid, out)
			}
		})
	}
}

func TestRegistryFileEscaping(t *testing.T) {
	t.Parallel()

	gen := &artifact.RegistryFileGenerator{}
	settings := &control.Settings{
		FileAssociations: []control.FileAssociation{
			{Extension: ".xyz", Application: `C:\Tools\view "safe".exe`},
		},
	}

	out, err := gen.Generate(artifact.Request{ControlName: "c", Settings: settings, Now: fixedNow})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, `@="C:\\Tools\\view \"safe\".exe \"%1\""`) {
		t.Errorf("backslashes and quotes not escaped:\n%s", out)
	}
}

func TestRegistryFileRejectsControlCharacters(t *testing.T) {
	t.Parallel()

	gen := &artifact.RegistryFileGenerator{}
	settings := &control.Settings{
		FileAssociations: []control.FileAssociation{
			{Extension: ".xyz", Application: "bad\napp.exe"},
		},
	}

	_, err := gen.Generate(artifact.Request{ControlName: "c", Settings: settings, Now: fixedNow})
	if err == nil {
		t.Fatal("expected error for control character in value")
	}
	if !strings.Contains(err.Error(), "unsupported setting value") {
		t.Errorf("error = %v, want unsupported setting value", err)
	}
}
