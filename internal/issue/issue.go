// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ControlNotFoundId Id = iota + 1
	SettingsFileNotFoundId
	SettingsParseErrorId
	SettingsInvalidId
	NoCompatibleFormatsId
	GenerationFailedId
	PackagingFailedId
	ConfigLoadFailedId
	OutputWriteFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	controlNotFoundIssue = &Issue{
		id: ControlNotFoundId,
		mdMsg: `
# Control not found!

The security control you specified is not in the catalog.

## Things you can try:
- List all available controls:
~~~
$ hardenctl controls
~~~

- Check for typos in the control id
- Use the generic control for ad-hoc settings:
~~~
$ hardenctl generate custom --settings ./settings.cue
~~~`,
	}

	settingsFileNotFoundIssue = &Issue{
		id: SettingsFileNotFoundId,
		mdMsg: `
# No settings file found!

We could not read the settings file at the path you provided.

## Things you can try:
- Check the path and the file permissions
- Generate a control from its built-in defaults instead:
~~~
$ hardenctl generate file-associations
~~~

## Example settings file (CUE):
~~~cue
file_associations: {
    ".scr": "notepad.exe"
    ".bat": "block"
}
disable_all_hotkeys: true
~~~`,
	}

	settingsParseErrorIssue = &Issue{
		id: SettingsParseErrorId,
		mdMsg: `
# Failed to parse settings!

Your settings file contains syntax errors or values of the wrong shape.

## Supported formats (by extension):
- CUE (.cue), TOML (.toml), YAML (.yaml/.yml), JSON (.json)

## Things you can try:
- Check the error message above for the specific field
- Validate the file without generating anything:
~~~
$ hardenctl validate ./settings.cue
~~~

## Example of a valid firewall rule list:
~~~cue
firewall_rules: [
    {
        program_path: "C:\\Windows\\System32\\cmd.exe"
        rule_name:    "Block_cmd.exe_Outbound"
    },
]
~~~`,
	}

	settingsInvalidIssue = &Issue{
		id: SettingsInvalidId,
		mdMsg: `
# Settings failed validation!

The file parsed, but one or more values violate the settings rules.

## Common issues:
- Extensions without a leading dot (use ".scr", not "scr")
- Two extensions differing only by case
- Firewall rules with an empty program path or rule name
- Hotkey entries that are not a single letter A-Z

## Things you can try:
- Review every issue listed above; they are all reported in one pass
- Fix the file and re-run:
~~~
$ hardenctl validate ./settings.cue
~~~`,
	}

	noCompatibleFormatsIssue = &Issue{
		id: NoCompatibleFormatsId,
		mdMsg: `
# No compatible output format!

None of the artifact generators can express the settings you provided.

## How compatibility works:
- Each format declares the setting keys it understands
- A format is used only when it shares at least one key with your settings
- The JSON manifest accepts anything non-empty, so this usually means
  the settings payload was empty

## Things you can try:
- Check that the settings file actually sets at least one key
- Inspect what a control would produce:
~~~
$ hardenctl controls show file-associations
~~~`,
	}

	generationFailedIssue = &Issue{
		id: GenerationFailedId,
		mdMsg: `
# Some artifacts could not be generated!

One or more output formats failed while rendering. The remaining
formats were still generated and packaged.

## Things you can try:
- Review the per-format warnings above
- Look for values a format cannot encode (control characters in
  application names are the usual culprit)
- Re-run with verbose mode for more details:
~~~
$ hardenctl --verbose generate custom --settings ./settings.cue
~~~`,
	}

	packagingFailedIssue = &Issue{
		id: PackagingFailedId,
		mdMsg: `
# Failed to assemble the package!

The artifacts were generated but could not be written into the zip
archive.

## Things you can try:
- Check free disk space and permissions on the output directory
- Pick a different output directory:
~~~
$ hardenctl generate file-associations --output /tmp
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your config file exists but could not be read or parsed.

## Things you can try:
- Check the syntax of your config file
- Show the effective configuration:
~~~
$ hardenctl config show
~~~

- Bypass the broken file with an explicit one:
~~~
$ hardenctl --config /path/to/config.yaml controls
~~~`,
	}

	outputWriteFailedIssue = &Issue{
		id: OutputWriteFailedId,
		mdMsg: `
# Failed to write the package!

The archive was assembled but could not be written to disk.

## Common causes:
- The output directory does not exist
- No write permission on the output directory
- Disk full

## Things you can try:
- Create the directory first, or point --output at one you own`,
	}

	issues = map[Id]*Issue{
		controlNotFoundIssue.Id():      controlNotFoundIssue,
		settingsFileNotFoundIssue.Id(): settingsFileNotFoundIssue,
		settingsParseErrorIssue.Id():   settingsParseErrorIssue,
		settingsInvalidIssue.Id():      settingsInvalidIssue,
		noCompatibleFormatsIssue.Id():  noCompatibleFormatsIssue,
		generationFailedIssue.Id():     generationFailedIssue,
		packagingFailedIssue.Id():      packagingFailedIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		outputWriteFailedIssue.Id():    outputWriteFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
