// Package matcher classifies a parsed note against a user's category
// catalog. It has no network access and no hidden state: the same inputs
// always produce the same category.
package matcher

import (
	"strings"

	"github.com/minhdn/jarbot/internal/domain"
)

// Matcher applies the three-tier matching rules: exact name equality,
// substring containment in either direction, then the keyword rule table.
type Matcher struct {
	rules *RuleSet
}

// New creates a Matcher. A nil ruleset falls back to DefaultRules.
func New(rules *RuleSet) *Matcher {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Matcher{rules: rules}
}

// Match returns the best category for the note, or found=false when no rule
// fires. Callers then present a manual selection menu; Match never guesses.
func (m *Matcher) Match(note string, kind domain.Kind, catalog []domain.Category) (domain.Category, bool) {
	var candidates []domain.Category
	for _, c := range catalog {
		if kindMatches(c.Kind, kind) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return domain.Category{}, false
	}

	lower := strings.ToLower(strings.TrimSpace(note))

	// 1. Exact name equality.
	for _, c := range candidates {
		if strings.ToLower(c.Name) == lower {
			return c, true
		}
	}

	// 2. Substring containment, either direction.
	if lower != "" {
		for _, c := range candidates {
			name := strings.ToLower(c.Name)
			if name == "" {
				continue
			}
			if strings.Contains(lower, name) || strings.Contains(name, lower) {
				return c, true
			}
		}
	}

	// 3. Keyword rule table, resolved back against the catalog.
	if target, ok := m.rules.Lookup(note, kind); ok {
		if c, ok := findByName(candidates, target); ok {
			return c, true
		}
	}

	return domain.Category{}, false
}

func findByName(catalog []domain.Category, name string) (domain.Category, bool) {
	lower := strings.ToLower(name)
	for _, c := range catalog {
		if strings.ToLower(c.Name) == lower {
			return c, true
		}
	}
	// The user may have renamed the canonical category slightly; accept a
	// containment match before giving up.
	for _, c := range catalog {
		if strings.Contains(strings.ToLower(c.Name), lower) {
			return c, true
		}
	}
	return domain.Category{}, false
}
