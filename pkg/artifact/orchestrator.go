// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"hardenctl/pkg/control"
)

// Result is the outcome of one GenerateAll call. A result with fewer
// artifacts than registered generators is a normal success state:
// incompatible formats are skipped silently and individually failed
// formats are recorded in Failures without affecting the rest.
type Result struct {
	// Artifacts holds the successfully generated outputs by format.
	Artifacts map[FormatID]Artifact
	// Order lists the produced formats in generation order, for
	// stable iteration and bundle layout.
	Order []FormatID
	// Failures records per-format generation errors.
	Failures map[FormatID]error
	// Filenames maps every attempted format to its canonical package
	// filename, including formats that later failed.
	Filenames map[FormatID]string
}

// Produced returns the generated artifacts in generation order.
func (r *Result) Produced() []Artifact {
	out := make([]Artifact, 0, len(r.Order))
	for _, id := range r.Order {
		out = append(out, r.Artifacts[id])
	}
	return out
}

// Orchestrator runs every compatible generator for a settings model
// and collects the results, isolating per-format failures.
type Orchestrator struct {
	registry *Registry
	logger   *log.Logger
}

// NewOrchestrator wires a registry to a logger. A nil logger gets a
// stderr default.
func NewOrchestrator(reg *Registry, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "generate"})
	}
	return &Orchestrator{registry: reg, logger: logger}
}

// GenerateAll renders every compatible format for the given control.
// The same (controlName, settings, now) triple always yields the same
// result, byte for byte. An empty settings model is compatible with
// nothing and yields an empty result, not an error; zero compatible
// generators for non-empty settings is logged as a warning.
func (o *Orchestrator) GenerateAll(controlName string, s *control.Settings, now time.Time) (*Result, error) {
	if s == nil {
		return nil, fmt.Errorf("generating artifacts for %q: settings model is nil", controlName)
	}

	res := &Result{
		Artifacts: map[FormatID]Artifact{},
		Failures:  map[FormatID]error{},
		Filenames: map[FormatID]string{},
	}

	compatible := o.registry.Compatible(s)
	if len(compatible) == 0 {
		if !s.IsEmpty() {
			o.logger.Warn("no compatible output format for settings", "control", controlName, "keys", s.Keys())
		}
		return res, nil
	}

	// The batch wrapper references the other artifacts by filename,
	// so it runs last; every other format keeps registration order.
	ordered := make([]Generator, 0, len(compatible))
	var deferred []Generator
	for _, g := range compatible {
		if g.Format() == FormatBatch {
			deferred = append(deferred, g)
			continue
		}
		ordered = append(ordered, g)
	}
	ordered = append(ordered, deferred...)

	siblings := map[FormatID]string{}
	for _, g := range ordered {
		name := fmt.Sprintf("%s_%s.%s", SanitizeControlName(controlName), g.Label(), g.Extension())
		siblings[g.Format()] = name
		res.Filenames[g.Format()] = name
	}

	req := Request{
		ControlName: controlName,
		Settings:    s,
		Now:         now,
		Siblings:    siblings,
	}

	for _, g := range ordered {
		id := g.Format()
		content, err := safeGenerate(g, req)
		if err != nil {
			o.logger.Warn("format unavailable", "control", controlName, "format", id, "err", err)
			res.Failures[id] = fmt.Errorf("format %s unavailable: %w", id, err)
			continue
		}
		o.logger.Debug("artifact generated", "control", controlName, "format", id, "bytes", len(content))
		res.Artifacts[id] = Artifact{
			Format:    id,
			Label:     g.Label(),
			Extension: g.Extension(),
			MIMEType:  g.MIMEType(),
			Content:   content,
		}
		res.Order = append(res.Order, id)
	}

	return res, nil
}

// safeGenerate converts a generator panic into a per-format error so
// one broken generator cannot take down the whole package.
func safeGenerate(g Generator, req Request) (content string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panicked: %v", r)
		}
	}()
	return g.Generate(req)
}
