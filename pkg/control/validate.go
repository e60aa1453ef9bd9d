// SPDX-License-Identifier: MPL-2.0

package control

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationIssue represents a single problem found in a settings value.
type ValidationIssue struct {
	// Field names the setting the issue was found in (e.g. "file_associations").
	Field string
	// Message describes the specific problem.
	Message string
}

// Error implements the error interface for ValidationIssue.
func (v ValidationIssue) Error() string {
	if v.Field != "" {
		return fmt.Sprintf("[%s] %s", v.Field, v.Message)
	}
	return v.Message
}

// ValidationErrors aggregates all issues found in one validation pass.
// Settings are rejected as a whole: a value that fails validation never
// reaches artifact generation.
type ValidationErrors []ValidationIssue

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, issue := range e {
		msgs[i] = issue.Error()
	}
	return fmt.Sprintf("invalid settings: %s", strings.Join(msgs, "; "))
}

// Normalize canonicalizes the settings in place: extensions are lowercased,
// trimmed and sorted, hotkey letters are uppercased, deduplicated and sorted,
// WinX names are resolved to their canonical menu entries where known, and
// firewall rules get the default outbound direction. Normalize never rejects
// anything; Validate reports what cannot be fixed.
func (s *Settings) Normalize() {
	for i := range s.FileAssociations {
		s.FileAssociations[i].Extension = strings.ToLower(strings.TrimSpace(s.FileAssociations[i].Extension))
		s.FileAssociations[i].Application = strings.TrimSpace(s.FileAssociations[i].Application)
	}
	sort.Slice(s.FileAssociations, func(i, j int) bool {
		return s.FileAssociations[i].Extension < s.FileAssociations[j].Extension
	})

	for i := range s.FirewallRules {
		s.FirewallRules[i].ProgramPath = strings.TrimSpace(s.FirewallRules[i].ProgramPath)
		s.FirewallRules[i].RuleName = strings.TrimSpace(s.FirewallRules[i].RuleName)
		if s.FirewallRules[i].Direction == "" {
			s.FirewallRules[i].Direction = DirectionOutbound
		}
	}

	for i, item := range s.WinXRemoval {
		if canonical, ok := CanonicalWinXItem(strings.TrimSpace(item)); ok {
			s.WinXRemoval[i] = canonical
		} else {
			s.WinXRemoval[i] = strings.TrimSpace(item)
		}
	}

	seen := make(map[string]bool, len(s.DisabledHotkeys))
	letters := s.DisabledHotkeys[:0]
	for _, letter := range s.DisabledHotkeys {
		upper := strings.ToUpper(strings.TrimSpace(letter))
		if !seen[upper] {
			seen[upper] = true
			letters = append(letters, upper)
		}
	}
	sort.Strings(letters)
	s.DisabledHotkeys = letters
}

// Validate checks every structural invariant of the settings model and
// returns a ValidationErrors listing each violation, or nil. Callers are
// expected to Normalize first; Validate does not mutate.
//
// DisableAllHotkeys set alongside a non-empty DisabledHotkeys list is not an
// error: the all-keys path takes precedence at generation time and the
// specific list is ignored.
func (s *Settings) Validate() error {
	var errs ValidationErrors

	seenExt := make(map[string]string, len(s.FileAssociations))
	for _, assoc := range s.FileAssociations {
		if !strings.HasPrefix(assoc.Extension, ".") {
			errs = append(errs, ValidationIssue{
				Field:   string(KeyFileAssociations),
				Message: fmt.Sprintf("extension %q must start with a dot", assoc.Extension),
			})
		}
		lower := strings.ToLower(assoc.Extension)
		if prev, dup := seenExt[lower]; dup {
			errs = append(errs, ValidationIssue{
				Field:   string(KeyFileAssociations),
				Message: fmt.Sprintf("extension %q collides with %q after case normalization", assoc.Extension, prev),
			})
		}
		seenExt[lower] = assoc.Extension
		if assoc.Application == "" {
			errs = append(errs, ValidationIssue{
				Field:   string(KeyFileAssociations),
				Message: fmt.Sprintf("extension %q has an empty application", assoc.Extension),
			})
		}
	}

	for i, rule := range s.FirewallRules {
		if rule.ProgramPath == "" {
			errs = append(errs, ValidationIssue{
				Field:   string(KeyFirewallRules),
				Message: fmt.Sprintf("rule %d has an empty program path", i),
			})
		}
		if rule.RuleName == "" {
			errs = append(errs, ValidationIssue{
				Field:   string(KeyFirewallRules),
				Message: fmt.Sprintf("rule %d has an empty rule name", i),
			})
		}
		if rule.Direction != DirectionOutbound {
			errs = append(errs, ValidationIssue{
				Field:   string(KeyFirewallRules),
				Message: fmt.Sprintf("rule %q has unsupported direction %q (only %q is supported)", rule.RuleName, rule.Direction, DirectionOutbound),
			})
		}
	}

	for _, item := range s.WinXRemoval {
		if _, ok := CanonicalWinXItem(item); !ok {
			errs = append(errs, ValidationIssue{
				Field:   string(KeyWinXRemoval),
				Message: fmt.Sprintf("%q is not a known WinX menu entry", item),
			})
		}
	}

	for _, letter := range s.DisabledHotkeys {
		if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
			errs = append(errs, ValidationIssue{
				Field:   string(KeyDisabledHotkeys),
				Message: fmt.Sprintf("%q is not a single uppercase letter", letter),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
