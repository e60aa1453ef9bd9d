// SPDX-License-Identifier: MPL-2.0

// Package artifact turns validated control settings into deployable
// Windows hardening artifacts. Each output format (Group Policy XML,
// PowerShell, registry import file, batch deployment wrapper, JSON
// manifest) is produced by a Generator registered in a Registry, and
// every generator declares which setting keys it understands so the
// orchestrator can skip formats that cannot express a given control.
package artifact

import (
	"fmt"
	"strings"
	"time"

	"hardenctl/pkg/control"
	"hardenctl/pkg/platform"
)

// FormatID identifies one artifact output format.
type FormatID string

const (
	// FormatGPO is the Group Policy Object XML format.
	FormatGPO FormatID = "gpo"
	// FormatPowerShell is the executable PowerShell implementation script.
	FormatPowerShell FormatID = "powershell"
	// FormatRegistry is the Windows registry import (.reg) format.
	FormatRegistry FormatID = "registry"
	// FormatBatch is the batch wrapper that deploys the other artifacts.
	FormatBatch FormatID = "batch"
	// FormatManifest is the JSON manifest fallback that can represent
	// any settings payload, including unrecognized custom keys.
	FormatManifest FormatID = "manifest"
)

// Artifact is one generated output file, held in memory until the
// bundle assembler writes it into an archive.
type Artifact struct {
	Format    FormatID
	Label     string
	Extension string
	MIMEType  string
	Content   string
}

// Filename returns the canonical download name for the artifact:
// the sanitized control name, the format label, and the extension.
func (a Artifact) Filename(controlName string) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeControlName(controlName), a.Label, a.Extension)
}

// Request carries everything a generator needs to produce its output.
// Now is injected by the caller so that a fixed timestamp yields
// byte-identical artifacts.
type Request struct {
	// ControlName is the display name of the control being generated.
	ControlName string
	// Settings is the validated settings model.
	Settings *control.Settings
	// Now is the generation timestamp embedded in artifact text.
	Now time.Time
	// Siblings maps each format that will coexist in the final bundle
	// to its filename. Generators that reference other artifacts (the
	// batch wrapper) read their targets from here instead of guessing.
	Siblings map[FormatID]string
}

// Generator produces one artifact format from a settings model.
type Generator interface {
	// Format returns the stable identifier for this output format.
	Format() FormatID
	// Label is the human-facing name used in canonical filenames.
	Label() string
	// Extension is the file extension without the leading dot.
	Extension() string
	// MIMEType is the content type advertised for the artifact.
	MIMEType() string
	// SupportedKeys lists the setting keys this generator can express.
	// A nil slice means the generator accepts any non-empty settings
	// payload, recognized or not.
	SupportedKeys() []control.Key
	// Generate renders the artifact text. It must be deterministic for
	// a fixed Request and must not touch the host system.
	Generate(req Request) (string, error)
}

// Supports reports whether a generator can produce meaningful output
// for the given settings. Universal generators (nil SupportedKeys)
// support anything except an empty payload; others need at least one
// recognized key in common with the settings.
func Supports(g Generator, s *control.Settings) bool {
	if s == nil || s.IsEmpty() {
		return false
	}
	keys := g.SupportedKeys()
	if keys == nil {
		return true
	}
	for _, k := range keys {
		if s.Has(k) {
			return true
		}
	}
	return false
}

// Registry holds the known generators in a stable order.
type Registry struct {
	generators []Generator
	byFormat   map[FormatID]Generator
}

// NewRegistry builds a registry from the given generators. Order is
// preserved; it determines generation and bundle ordering.
func NewRegistry(gens ...Generator) *Registry {
	r := &Registry{byFormat: make(map[FormatID]Generator, len(gens))}
	for _, g := range gens {
		if _, dup := r.byFormat[g.Format()]; dup {
			continue
		}
		r.generators = append(r.generators, g)
		r.byFormat[g.Format()] = g
	}
	return r
}

// DefaultRegistry returns the standard generator set. The batch
// wrapper is registered last so that every artifact it references is
// generated before it.
func DefaultRegistry(gpoDomain string) *Registry {
	return NewRegistry(
		&GPOGenerator{Domain: gpoDomain},
		&PowerShellGenerator{},
		&RegistryFileGenerator{},
		&ManifestGenerator{},
		&BatchGenerator{},
	)
}

// Get returns the generator for a format, if registered.
func (r *Registry) Get(id FormatID) (Generator, bool) {
	g, ok := r.byFormat[id]
	return g, ok
}

// All returns the generators in registration order.
func (r *Registry) All() []Generator {
	out := make([]Generator, len(r.generators))
	copy(out, r.generators)
	return out
}

// Compatible returns the generators that support the given settings,
// in registration order.
func (r *Registry) Compatible(s *control.Settings) []Generator {
	var out []Generator
	for _, g := range r.generators {
		if Supports(g, s) {
			out = append(out, g)
		}
	}
	return out
}

// SanitizeControlName makes a control name safe for use in filenames:
// spaces and path or shell metacharacters become underscores, and
// Windows device names get a suffix so the artifact files stay
// creatable on the target platform.
func SanitizeControlName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r == ' ', r == '/', r == '\\', r == ':', r == '*', r == '?',
			r == '"', r == '<', r == '>', r == '|':
			return '_'
		case r < 0x20:
			return -1
		default:
			return r
		}
	}, strings.TrimSpace(name))
	if mapped == "" {
		return "security_control"
	}
	if platform.IsWindowsReservedName(mapped) {
		return mapped + "_control"
	}
	return mapped
}
