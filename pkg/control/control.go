// SPDX-License-Identifier: MPL-2.0

package control

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// RiskLevel classifies how disruptive a control is when deployed.
type RiskLevel string

const (
	// RiskLow controls are safe to deploy broadly with minimal user impact.
	RiskLow RiskLevel = "low"
	// RiskMedium controls restrict functionality some users rely on.
	RiskMedium RiskLevel = "medium"
	// RiskHigh controls can break legitimate workflows and need staged rollout.
	RiskHigh RiskLevel = "high"
)

// Title returns the risk level capitalized for display.
func (r RiskLevel) Title() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// Metadata describes a security control independent of any configuration.
type Metadata struct {
	// ID is the stable identifier used on the CLI (e.g. "file-associations").
	ID string
	// Name is the display name, used in artifact headers and package filenames.
	Name string
	// Description is a one-line summary.
	Description string
	// Purpose explains what threat the control addresses.
	Purpose string
	// Category groups related controls (e.g. "Network Security").
	Category string
	// Risk is the deployment risk level.
	Risk RiskLevel
	// CommonTargets lists the extensions, binaries, menu items or hotkeys
	// the control typically applies to.
	CommonTargets []string
}

// Control is one entry in the built-in catalog: metadata plus a factory for
// its default configuration. Controls hold no mutable state; Defaults returns
// a fresh Settings value on every call.
type Control struct {
	Metadata Metadata

	// Defaults builds the control's default configuration. Nil for controls
	// with no sensible default (the custom control).
	Defaults func() *Settings
}

// DefaultSettings returns the control's default configuration, or an empty
// Settings value when the control defines none.
func (c *Control) DefaultSettings() *Settings {
	if c.Defaults == nil {
		return &Settings{}
	}
	return c.Defaults()
}

// catalog is the static control table, built once at process start. There is
// no dynamic registration: new controls are added here at compile time.
var catalog = map[string]*Control{
	fileAssociationControl.Metadata.ID: fileAssociationControl,
	networkTrafficControl.Metadata.ID:  networkTrafficControl,
	winxMenuControl.Metadata.ID:        winxMenuControl,
	hotkeyControl.Metadata.ID:          hotkeyControl,
	customControl.Metadata.ID:          customControl,
}

// Catalog returns all built-in controls sorted by ID.
func Catalog() []*Control {
	controls := maps.Values(catalog)
	sort.Slice(controls, func(i, j int) bool {
		return controls[i].Metadata.ID < controls[j].Metadata.ID
	})
	return controls
}

// Lookup returns the control with the given ID.
func Lookup(id string) (*Control, error) {
	c, ok := catalog[id]
	if !ok {
		ids := maps.Keys(catalog)
		sort.Strings(ids)
		return nil, fmt.Errorf("unknown control %q (available: %s)", id, strings.Join(ids, ", "))
	}
	return c, nil
}

// IDs returns all catalog IDs sorted.
func IDs() []string {
	ids := maps.Keys(catalog)
	sort.Strings(ids)
	return ids
}

// Targets returns a copy of the control's common targets.
func (m Metadata) Targets() []string {
	return slices.Clone(m.CommonTargets)
}
