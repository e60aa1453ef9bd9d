// SPDX-License-Identifier: MPL-2.0

package control

import (
	"fmt"
	"sort"
	"strings"
)

// TargetInfo documents one entry a control can act on: an extension, a
// binary, a menu item or a hotkey letter.
type TargetInfo struct {
	// Description explains what the target is.
	Description string
	// Detail carries target-kind specific information: the default handler
	// for an extension, the risk note for a hotkey.
	Detail string
	// Paths lists the filesystem paths for a binary target. A binary with
	// x86 and x64 install locations has one entry per path.
	Paths []string
}

// dangerousExtensions lists file extensions commonly abused to deliver
// malware, with the handler they are reassociated to by default.
var dangerousExtensions = map[string]TargetInfo{
	".scr":  {Description: "Screen saver files (often malicious)", Detail: "notepad.exe"},
	".cab":  {Description: "Cabinet files", Detail: "notepad.exe"},
	".appx": {Description: "AppX package files", Detail: "notepad.exe"},
	".ps1":  {Description: "PowerShell script files", Detail: "notepad.exe"},
	".bat":  {Description: "Batch files", Detail: "notepad.exe"},
	".cmd":  {Description: "Command files", Detail: "notepad.exe"},
	".vbs":  {Description: "VBScript files", Detail: "notepad.exe"},
	".vbe":  {Description: "VBScript Encoded Script files", Detail: "notepad.exe"},
	".hta":  {Description: "HTML Application files", Detail: "notepad.exe"},
	".shs":  {Description: "Shell Scrap Object files", Detail: "notepad.exe"},
	".shb":  {Description: "Shell Scrap files", Detail: "notepad.exe"},
	".js":   {Description: "JavaScript files", Detail: "notepad.exe"},
	".jse":  {Description: "JScript Encoded Script files", Detail: "notepad.exe"},
	".jar":  {Description: "Java Archive files", Detail: "notepad.exe"},
	".wsh":  {Description: "Windows Script Host files", Detail: "notepad.exe"},
	".wsc":  {Description: "Windows Script Component files", Detail: "notepad.exe"},
	".wsf":  {Description: "Windows Script Files", Detail: "notepad.exe"},
	".sct":  {Description: "Windows Scriptlet files", Detail: "notepad.exe"},
	".chm":  {Description: "Compiled HTML Help files", Detail: "notepad.exe"},
	".iso":  {Description: "ISO image files", Detail: "notepad.exe"},
}

// SafeApplications lists the handlers the file-association control offers,
// ending with the block sentinel.
var SafeApplications = []string{"notepad.exe", "wordpad.exe", BlockSentinel}

// riskyBinaries lists living-off-the-land binaries whose outbound traffic is
// blocked by the network-traffic control. Binaries with both x64 and x86
// install locations carry one path per location.
var riskyBinaries = map[string]TargetInfo{
	"powershell.exe": {
		Description: "PowerShell executable",
		Paths: []string{
			`C:\Windows\System32\WindowsPowerShell\v1.0\powershell.exe`,
			`C:\Windows\SysWOW64\WindowsPowerShell\v1.0\powershell.exe`,
		},
	},
	"cmd.exe": {
		Description: "Command Prompt executable",
		Paths:       []string{`C:\Windows\System32\cmd.exe`},
	},
	"wscript.exe": {
		Description: "Windows Script Host",
		Paths:       []string{`C:\Windows\System32\wscript.exe`},
	},
	"cscript.exe": {
		Description: "Console Script Host",
		Paths:       []string{`C:\Windows\System32\cscript.exe`},
	},
	"regsvr32.exe": {
		Description: "Microsoft Register Server",
		Paths:       []string{`C:\Windows\System32\regsvr32.exe`},
	},
	"rundll32.exe": {
		Description: "Windows Run DLL",
		Paths:       []string{`C:\Windows\System32\rundll32.exe`},
	},
	"mshta.exe": {
		Description: "Microsoft HTML Application Host",
		Paths:       []string{`C:\Windows\System32\mshta.exe`},
	},
	"bitsadmin.exe": {
		Description: "Background Intelligent Transfer Service",
		Paths:       []string{`C:\Windows\System32\bitsadmin.exe`},
	},
}

// winxItems maps short WinX menu item names to their canonical menu entry
// identifiers. winx_removal settings must resolve against this table.
var winxItems = map[string]TargetInfo{
	"Command Prompt":      {Description: "Command Prompt with admin privileges", Detail: "Command Prompt (Admin)"},
	"PowerShell":          {Description: "PowerShell with admin privileges", Detail: "Windows PowerShell (Admin)"},
	"Computer Management": {Description: "Computer Management console", Detail: "Computer Management"},
	"Event Viewer":        {Description: "Windows Event Viewer", Detail: "Event Viewer"},
	"Task Manager":        {Description: "Windows Task Manager", Detail: "Task Manager"},
	"Settings":            {Description: "Windows Settings app", Detail: "Settings"},
	"File Explorer":       {Description: "Windows File Explorer", Detail: "File Explorer"},
	"Device Manager":      {Description: "Device Manager console", Detail: "Device Manager"},
	"Network Connections": {Description: "Network Connections settings", Detail: "Network Connections"},
	"Disk Management":     {Description: "Disk Management console", Detail: "Disk Management"},
}

// commonHotkeys documents the Win+<letter> shortcuts the hotkey control can
// disable individually.
var commonHotkeys = map[string]TargetInfo{
	"R": {Description: "Win+R (Run dialog)", Detail: "High - Can be used to execute commands"},
	"S": {Description: "Win+S (Search)", Detail: "Medium - Can search and launch programs"},
	"X": {Description: "Win+X (WinX menu)", Detail: "Medium - Provides access to admin tools"},
}

// DangerousExtensions returns the extension table keys in sorted order.
func DangerousExtensions() []string { return sortedKeys(dangerousExtensions) }

// RiskyBinaries returns the LOLBIN table keys in sorted order.
func RiskyBinaries() []string { return sortedKeys(riskyBinaries) }

// WinXItems returns the WinX table keys in sorted order.
func WinXItems() []string { return sortedKeys(winxItems) }

// CommonHotkeys returns the documented hotkey letters in sorted order.
func CommonHotkeys() []string { return sortedKeys(commonHotkeys) }

// TargetDetail returns the TargetInfo for a target of any built-in control.
func TargetDetail(table, target string) (TargetInfo, bool) {
	var m map[string]TargetInfo
	switch table {
	case "extensions":
		m = dangerousExtensions
	case "binaries":
		m = riskyBinaries
	case "winx":
		m = winxItems
	case "hotkeys":
		m = commonHotkeys
	default:
		return TargetInfo{}, false
	}
	info, ok := m[target]
	return info, ok
}

// CanonicalWinXItem resolves a WinX menu item name to its canonical menu
// entry identifier. Both the short name ("PowerShell") and the canonical
// entry ("Windows PowerShell (Admin)") are accepted; matching is
// case-insensitive.
func CanonicalWinXItem(name string) (string, bool) {
	for short, info := range winxItems {
		if strings.EqualFold(name, short) || strings.EqualFold(name, info.Detail) {
			return info.Detail, true
		}
	}
	return "", false
}

// ExpandFirewallRules expands a risky-binary map (binary name to one or more
// program paths) into one outbound block rule per path. Rule names follow
// Block_<binary>_Outbound; alternate paths of the same binary get an index
// suffix so names stay unique. Binaries are processed in sorted order so the
// expansion is deterministic.
func ExpandFirewallRules(binaries map[string][]string) ([]FirewallRule, error) {
	names := make([]string, 0, len(binaries))
	for name := range binaries {
		names = append(names, name)
	}
	sort.Strings(names)

	var rules []FirewallRule
	for _, name := range names {
		paths := binaries[name]
		if len(paths) == 0 {
			return nil, fmt.Errorf("binary %q has no program paths", name)
		}
		for i, path := range paths {
			ruleName := fmt.Sprintf("Block_%s_Outbound", name)
			if i > 0 {
				ruleName = fmt.Sprintf("%s_%d", ruleName, i+1)
			}
			rules = append(rules, FirewallRule{
				ProgramPath: path,
				RuleName:    ruleName,
				Direction:   DirectionOutbound,
			})
		}
	}
	return rules, nil
}

func sortedKeys(m map[string]TargetInfo) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// --- Built-in controls ---

var fileAssociationControl = &Control{
	Metadata: Metadata{
		ID:            "file-associations",
		Name:          "File Association Security",
		Description:   "Change default applications for commonly abused file extensions",
		Purpose:       "Prevent execution of malicious files by changing default applications for commonly abused extensions",
		Category:      "File System Security",
		Risk:          RiskLow,
		CommonTargets: DangerousExtensions(),
	},
	Defaults: func() *Settings {
		assocs := make([]FileAssociation, 0, len(dangerousExtensions))
		for _, ext := range DangerousExtensions() {
			assocs = append(assocs, FileAssociation{
				Extension:   ext,
				Application: dangerousExtensions[ext].Detail,
			})
		}
		return &Settings{FileAssociations: assocs}
	},
}

var networkTrafficControl = &Control{
	Metadata: Metadata{
		ID:            "network-traffic",
		Name:          "Network Traffic Control",
		Description:   "Block outbound traffic from commonly abused Windows binaries",
		Purpose:       "Block network traffic from commonly abused Windows binaries to prevent data exfiltration and C2 communication",
		Category:      "Network Security",
		Risk:          RiskHigh,
		CommonTargets: RiskyBinaries(),
	},
	Defaults: func() *Settings {
		binaries := make(map[string][]string, len(riskyBinaries))
		for name, info := range riskyBinaries {
			binaries[name] = info.Paths
		}
		rules, err := ExpandFirewallRules(binaries)
		if err != nil {
			// The built-in table always has paths; reaching here is a
			// programming error in the table itself.
			panic(err)
		}
		return &Settings{FirewallRules: rules}
	},
}

var winxMenuControl = &Control{
	Metadata: Metadata{
		ID:            "winx-menu",
		Name:          "WinX Menu Hardening",
		Description:   "Remove potentially dangerous entries from the Windows+X menu",
		Purpose:       "Remove potentially dangerous entries from the Windows+X (WinX) menu to limit user access to administrative tools",
		Category:      "User Interface Security",
		Risk:          RiskLow,
		CommonTargets: WinXItems(),
	},
	Defaults: func() *Settings {
		return &Settings{
			WinXRemoval: []string{
				winxItems["Command Prompt"].Detail,
				winxItems["PowerShell"].Detail,
			},
		}
	},
}

var hotkeyControl = &Control{
	Metadata: Metadata{
		ID:            "hotkeys",
		Name:          "Windows Hotkey Control",
		Description:   "Disable Windows hotkeys to prevent unauthorized access to system functions",
		Purpose:       "Disable Windows hotkeys (keyboard shortcuts) to limit user access to system functions and prevent bypass of security controls",
		Category:      "User Interface Security",
		Risk:          RiskMedium,
		CommonTargets: CommonHotkeys(),
	},
	Defaults: func() *Settings {
		// Win+R and Win+X are the high-value targets; disabling everything
		// is too disruptive for a default.
		return &Settings{
			DisableAllHotkeys: false,
			DisabledHotkeys:   []string{"R", "X"},
		}
	},
}

var customControl = &Control{
	Metadata: Metadata{
		ID:          "custom",
		Name:        "Custom Control",
		Description: "User-defined security control with opaque settings",
		Purpose:     "Package arbitrary user-defined settings for documentation and review",
		Category:    "Custom",
		Risk:        RiskMedium,
	},
}
