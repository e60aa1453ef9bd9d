// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"fmt"
	"sort"
	"strings"

	"hardenctl/pkg/control"
)

// PowerShellGenerator renders the executable implementation script.
// The script is structured as privilege check, then backups of every
// key it is about to touch, then the mutations with per-item error
// trapping, then a verification summary. A failure in one setting is
// logged and counted but never aborts the remaining settings.
type PowerShellGenerator struct{}

func (g *PowerShellGenerator) Format() FormatID  { return FormatPowerShell }
func (g *PowerShellGenerator) Label() string     { return "Script" }
func (g *PowerShellGenerator) Extension() string { return "ps1" }
func (g *PowerShellGenerator) MIMEType() string  { return "text/plain" }

func (g *PowerShellGenerator) SupportedKeys() []control.Key {
	return []control.Key{
		control.KeyFileAssociations,
		control.KeyFirewallRules,
		control.KeyWinXRemoval,
		control.KeyDisabledHotkeys,
		control.KeyDisableAllHotkeys,
	}
}

const (
	psClassesRoot       = `HKLM:\SOFTWARE\Classes`
	psPoliciesExplorer  = `SOFTWARE\Microsoft\Windows\CurrentVersion\Policies\Explorer`
	psExplorerAdvanced  = `Software\Microsoft\Windows\CurrentVersion\Explorer\Advanced`
	psWinXRelative      = `AppData\Local\Microsoft\Windows\WinX`
	psDefaultWinXPath   = `C:\Users\Default\AppData\Local\Microsoft\Windows\WinX`
	blockedHandlerLabel = "Blocked File (execution disabled)"
)

func (g *PowerShellGenerator) Generate(req Request) (string, error) {
	s := req.Settings
	lines := []string{
		"# Windows Security Control Implementation Script",
		"# Control: " + req.ControlName,
		"# Generated: " + req.Now.Format("2006-01-02 15:04:05"),
		"",
		"# Requires Administrator privileges",
		"if (-NOT ([Security.Principal.WindowsPrincipal] [Security.Principal.WindowsIdentity]::GetCurrent()).IsInRole([Security.Principal.WindowsBuiltInRole] 'Administrator')) {",
		"    Write-Error 'This script requires Administrator privileges'",
		"    exit 1",
		"}",
		"",
		"$script:applied = 0",
		"$script:failed = 0",
		"",
		"Write-Host 'Implementing security control...' -ForegroundColor Green",
		"",
	}

	// Backups for every key the apply phase will touch are emitted
	// first, so a mid-script failure still leaves a complete backup.
	lines = append(lines, g.backupLines(s, req)...)
	lines = append(lines,
		"$ErrorActionPreference = 'Stop'",
		"",
	)

	if s.Has(control.KeyFileAssociations) {
		lines = append(lines, g.fileAssociationLines(s.FileAssociations)...)
	}
	if s.Has(control.KeyFirewallRules) {
		lines = append(lines, g.firewallLines(s.FirewallRules)...)
	}
	if s.Has(control.KeyWinXRemoval) {
		lines = append(lines, g.winxLines(s.WinXRemoval)...)
	}
	// Exactly one hotkey path is rendered: disable-all wins over the
	// per-letter list when both are present in the source settings.
	if s.DisableAllHotkeys {
		lines = append(lines, g.disableAllHotkeysLines()...)
	} else if letters := s.HotkeyLetters(); len(letters) > 0 {
		lines = append(lines, g.disabledHotkeysLines(letters)...)
	}

	lines = append(lines,
		"# Verification summary",
		"Write-Host ''",
		`Write-Host "Settings applied: $script:applied" -ForegroundColor Green`,
		"if ($script:failed -gt 0) {",
		`    Write-Host "Settings failed:  $script:failed (review warnings above)" -ForegroundColor Red`,
		"} else {",
		"    Write-Host 'All settings applied successfully' -ForegroundColor Green",
		"}",
		`Write-Host "Backups stored in $backupDir" -ForegroundColor Cyan`,
		"Write-Host 'Please reboot the system to ensure all changes take effect.' -ForegroundColor Cyan",
		"if ($script:failed -gt 0) { exit 1 }",
	)

	return strings.Join(lines, "\n") + "\n", nil
}

// backupLines emits a best-effort snapshot of every target the apply
// phase mutates. Backup failures (missing keys on a fresh system) are
// suppressed so they never block hardening.
func (g *PowerShellGenerator) backupLines(s *control.Settings, req Request) []string {
	lines := []string{
		"# Backup current state before any changes",
		fmt.Sprintf("$backupDir = Join-Path $env:SystemDrive 'HardenBackup_%s'", req.Now.Format("20060102_1504")),
		"New-Item -ItemType Directory -Path $backupDir -Force | Out-Null",
		`Write-Host "Backing up current settings to $backupDir" -ForegroundColor Yellow`,
	}

	if s.Has(control.KeyFileAssociations) {
		for _, assoc := range s.FileAssociations {
			safe := strings.TrimPrefix(assoc.Extension, ".")
			lines = append(lines, fmt.Sprintf(
				`reg export "HKLM\SOFTWARE\Classes\%s" "$backupDir\classes_%s.reg" /y >$null 2>&1`,
				assoc.Extension, safe))
		}
	}
	if s.Has(control.KeyFirewallRules) {
		lines = append(lines, `netsh advfirewall export "$backupDir\firewall-policy.wfw" >$null 2>&1`)
	}
	if s.Has(control.KeyWinXRemoval) {
		lines = append(lines,
			"$winxBackup = Join-Path $backupDir 'WinX'",
			"New-Item -ItemType Directory -Path $winxBackup -Force | Out-Null",
			`foreach ($userProfile in Get-ChildItem 'C:\Users' -Directory) {`,
			fmt.Sprintf(`    $src = Join-Path $userProfile.FullName '%s'`, psWinXRelative),
			"    if (Test-Path $src) {",
			"        Copy-Item $src (Join-Path $winxBackup $userProfile.Name) -Recurse -Force -ErrorAction SilentlyContinue",
			"    }",
			"}",
		)
	}
	if s.DisableAllHotkeys {
		lines = append(lines, fmt.Sprintf(
			`reg export "HKLM\%s" "$backupDir\policies_explorer.reg" /y >$null 2>&1`, psPoliciesExplorer))
	} else if len(s.HotkeyLetters()) > 0 {
		lines = append(lines,
			"foreach ($hive in Get-ChildItem 'Registry::HKEY_USERS' | Where-Object { $_.PSChildName -notmatch '_Classes$' }) {",
			fmt.Sprintf(`    reg export "HKU\$($hive.PSChildName)\%s" "$backupDir\hotkeys_$($hive.PSChildName).reg" /y >$null 2>&1`, psExplorerAdvanced),
			"}",
		)
	}

	lines = append(lines, "")
	return lines
}

func (g *PowerShellGenerator) fileAssociationLines(assocs []control.FileAssociation) []string {
	lines := []string{
		"# File Association Security Control",
		"Write-Host 'Modifying file associations via registry...' -ForegroundColor Yellow",
		"",
		"# Set up file type handlers",
	}

	blocked := false
	appSet := map[string]bool{}
	for _, assoc := range assocs {
		if assoc.Application == control.BlockSentinel {
			blocked = true
			continue
		}
		appSet[assoc.Application] = true
	}
	apps := make([]string, 0, len(appSet))
	for app := range appSet {
		apps = append(apps, app)
	}
	sort.Strings(apps)

	for _, app := range apps {
		commandKey := fmt.Sprintf(`%s\%sFile\shell\open\command`, psClassesRoot, app)
		lines = append(lines, psTry("Handler for "+app,
			fmt.Sprintf("New-Item -Path '%s' -Force | Out-Null", psQuote(commandKey)),
			fmt.Sprintf("Set-ItemProperty -Path '%s' -Name '(Default)' -Value '%s'",
				psQuote(commandKey), psQuote(fmt.Sprintf(`"%s" "%%1"`, app))),
		)...)
	}
	if blocked {
		blockedKey := psClassesRoot + `\` + blockedHandlerClass
		lines = append(lines, psTry("Blocked file handler",
			fmt.Sprintf("New-Item -Path '%s' -Force | Out-Null", psQuote(blockedKey)),
			fmt.Sprintf("Set-ItemProperty -Path '%s' -Name '(Default)' -Value '%s'",
				psQuote(blockedKey), psQuote(blockedHandlerLabel)),
		)...)
	}
	lines = append(lines, "", "# Associate extensions with handlers")

	for _, assoc := range assocs {
		handler := assoc.Application + "File"
		if assoc.Application == control.BlockSentinel {
			handler = blockedHandlerClass
		}
		extKey := psClassesRoot + `\` + assoc.Extension
		lines = append(lines, psTry("Association for "+assoc.Extension,
			fmt.Sprintf("New-Item -Path '%s' -Force | Out-Null", psQuote(extKey)),
			fmt.Sprintf("Set-ItemProperty -Path '%s' -Name '(Default)' -Value '%s'",
				psQuote(extKey), psQuote(handler)),
		)...)
	}

	lines = append(lines, "")
	return lines
}

func (g *PowerShellGenerator) firewallLines(rules []control.FirewallRule) []string {
	lines := []string{
		"# Windows Firewall Rules",
		"Write-Host 'Adding outbound block rules...' -ForegroundColor Yellow",
		"",
	}
	for _, rule := range rules {
		lines = append(lines, psTry("Firewall rule "+rule.RuleName,
			fmt.Sprintf("New-NetFirewallRule -DisplayName '%s' -Direction Outbound -Program '%s' -Action Block -Protocol TCP | Out-Null",
				psQuote(rule.RuleName), psQuote(rule.ProgramPath)),
		)...)
	}
	lines = append(lines, "")
	return lines
}

func (g *PowerShellGenerator) winxLines(items []string) []string {
	lines := []string{
		"# WinX Menu Modification - Apply to all users and default profile",
		"Write-Host 'Modifying WinX menu for all users...' -ForegroundColor Yellow",
		"",
		`$userProfiles = Get-ChildItem 'C:\Users' -Directory | Where-Object { $_.Name -notin @('Public', 'Default', 'All Users', 'Default User') }`,
		"foreach ($userProfile in $userProfiles) {",
		fmt.Sprintf(`    $winxPath = Join-Path $userProfile.FullName '%s'`, psWinXRelative),
		"    if (Test-Path $winxPath) {",
		`        Write-Host "  Processing: $($userProfile.Name)" -ForegroundColor Cyan`,
	}
	for _, item := range items {
		lines = append(lines, fmt.Sprintf(
			`        Remove-Item -Path "$winxPath\*%s*" -Recurse -Force -ErrorAction SilentlyContinue`, item))
	}
	lines = append(lines,
		"    }",
		"}",
		"",
		"# Modify default user profile for new users",
		fmt.Sprintf(`$defaultWinxPath = '%s'`, psDefaultWinXPath),
		"if (Test-Path $defaultWinxPath) {",
		"    Write-Host '  Processing: Default User Profile' -ForegroundColor Cyan",
	)
	for _, item := range items {
		lines = append(lines, fmt.Sprintf(
			`    Remove-Item -Path "$defaultWinxPath\*%s*" -Recurse -Force -ErrorAction SilentlyContinue`, item))
	}
	lines = append(lines,
		"}",
		"$script:applied++",
		"",
		"# Restart Explorer to apply changes",
		"Stop-Process -ProcessName explorer -Force -ErrorAction SilentlyContinue",
		"Start-Process explorer",
		"",
	)
	return lines
}

func (g *PowerShellGenerator) disableAllHotkeysLines() []string {
	policyKey := `HKLM:\` + psPoliciesExplorer
	return append([]string{
		"# Windows Hotkey Control",
		"Write-Host 'Disabling all Windows hotkeys (system-wide)...' -ForegroundColor Yellow",
		"",
	}, append(psTry("NoWinKeys policy",
		fmt.Sprintf("New-Item -Path '%s' -Force | Out-Null", policyKey),
		fmt.Sprintf("Set-ItemProperty -Path '%s' -Name 'NoWinKeys' -Value 1 -Type DWord", policyKey),
	), "")...)
}

func (g *PowerShellGenerator) disabledHotkeysLines(letters []string) []string {
	joined := strings.Join(letters, "")
	lines := []string{
		"# Windows Hotkey Control",
		fmt.Sprintf("Write-Host 'Disabling specific Windows hotkeys: %s' -ForegroundColor Yellow", joined),
		"",
		"foreach ($hive in Get-ChildItem 'Registry::HKEY_USERS' | Where-Object { $_.PSChildName -notmatch '_Classes$' }) {",
		fmt.Sprintf(`    $advKey = "Registry::HKEY_USERS\$($hive.PSChildName)\%s"`, psExplorerAdvanced),
		"    try {",
		"        New-Item -Path $advKey -Force | Out-Null",
		fmt.Sprintf("        Set-ItemProperty -Path $advKey -Name 'DisabledHotkeys' -Value '%s'", joined),
		"        $script:applied++",
		"    } catch {",
		`        Write-Warning ("Hotkey restriction for " + $hive.PSChildName + " failed: " + $_)`,
		"        $script:failed++",
		"    }",
		"}",
		"",
	}
	return lines
}

// psTry wraps the given statements in a try/catch block that updates
// the applied/failed counters instead of aborting the script.
func psTry(desc string, stmts ...string) []string {
	lines := []string{"try {"}
	for _, stmt := range stmts {
		lines = append(lines, "    "+stmt)
	}
	lines = append(lines,
		"    $script:applied++",
		"} catch {",
		fmt.Sprintf("    Write-Warning ('%s failed: ' + $_)", psQuote(desc)),
		"    $script:failed++",
		"}",
	)
	return lines
}

// psQuote escapes a value for interpolation inside a single-quoted
// PowerShell string literal.
func psQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
