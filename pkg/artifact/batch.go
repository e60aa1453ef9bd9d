// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"fmt"
	"strings"

	"hardenctl/pkg/control"
)

// BatchGenerator renders the deployment wrapper. It does not restate
// any setting itself; it checks for administrative context and then
// drives the registry import and the PowerShell script by their
// package filenames, which the orchestrator passes in via
// Request.Siblings. Any missing file or failing step exits non-zero.
type BatchGenerator struct{}

func (g *BatchGenerator) Format() FormatID  { return FormatBatch }
func (g *BatchGenerator) Label() string     { return "Deploy" }
func (g *BatchGenerator) Extension() string { return "bat" }
func (g *BatchGenerator) MIMEType() string  { return "text/plain" }

func (g *BatchGenerator) SupportedKeys() []control.Key {
	return []control.Key{
		control.KeyFileAssociations,
		control.KeyFirewallRules,
		control.KeyWinXRemoval,
		control.KeyDisabledHotkeys,
		control.KeyDisableAllHotkeys,
	}
}

func (g *BatchGenerator) Generate(req Request) (string, error) {
	regFile := req.Siblings[FormatRegistry]
	scriptFile := req.Siblings[FormatPowerShell]
	if regFile == "" && scriptFile == "" {
		return "", fmt.Errorf("deployment wrapper needs at least one sibling artifact to run")
	}

	lines := []string{
		"@echo off",
		"REM Windows Security Control: " + req.ControlName,
		"REM Generated: " + req.Now.Format("2006-01-02 15:04:05"),
		"",
		"REM Check for administrator privileges",
		"net session >nul 2>&1",
		"if %errorLevel% neq 0 (",
		"    echo This script requires Administrator privileges",
		"    exit /b 1",
		")",
		"",
		"echo Deploying security control...",
		"",
	}

	if regFile != "" {
		lines = append(lines,
			"REM Import registry settings",
			fmt.Sprintf(`if not exist "%%~dp0%s" (`, regFile),
			fmt.Sprintf("    echo Missing required file: %s", regFile),
			"    exit /b 2",
			")",
			fmt.Sprintf(`regedit /s "%%~dp0%s"`, regFile),
			"if %errorLevel% neq 0 (",
			"    echo Registry import failed",
			"    exit /b 3",
			")",
			"",
		)
	}

	if scriptFile != "" {
		lines = append(lines,
			"REM Run the PowerShell implementation script",
			fmt.Sprintf(`if not exist "%%~dp0%s" (`, scriptFile),
			fmt.Sprintf("    echo Missing required file: %s", scriptFile),
			"    exit /b 2",
			")",
			fmt.Sprintf(`powershell -NoProfile -ExecutionPolicy Bypass -File "%%~dp0%s"`, scriptFile),
			"if %errorLevel% neq 0 (",
			"    echo PowerShell script reported failures",
			"    exit /b 4",
			")",
			"",
		)
	}

	lines = append(lines,
		"echo Security control deployment completed.",
		"echo Please reboot the system to ensure all changes take effect.",
		"exit /b 0",
	)

	return strings.Join(lines, "\r\n") + "\r\n", nil
}
