// Package intent routes a question to an Intent Profile by scanning a
// priority-ordered profile directory. No I/O, deterministic.
package intent

import (
	"fmt"
	"strings"

	"basegraph.app/helixask/internal/domain"
)

// Expectation carries the caller-supplied signals the directory uses to
// decide whether a profile's domain fallback should apply.
type Expectation struct {
	HasRepoHints     bool
	HasFilePathHints bool
}

// Directory is a read-only, priority-ordered list of intent profiles
// loaded at startup.
type Directory struct {
	profiles []domain.IntentProfile
	byID     map[string]domain.IntentProfile
}

// NewDirectory builds a directory from profiles in declared priority order.
func NewDirectory(profiles []domain.IntentProfile) *Directory {
	byID := make(map[string]domain.IntentProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	return &Directory{profiles: profiles, byID: byID}
}

// Match scans matchers in declared priority; first hit wins. If the
// matched profile has a Fallback and the caller reports a repo expectation
// the profile's own domain can't satisfy (general, with either hint set),
// the fallback profile is returned instead. Returns a human-readable
// reason string for audit.
func (d *Directory) Match(question domain.Question, exp Expectation) (domain.IntentProfile, string) {
	text := strings.ToLower(question.Prompt)

	for _, profile := range d.profiles {
		for _, m := range profile.Matchers {
			if matcherHits(m, text) {
				resolved, reason := d.applyFallback(profile, exp, m)
				return resolved, reason
			}
		}
	}

	general, ok := d.byID["general"]
	if !ok && len(d.profiles) > 0 {
		general = d.profiles[len(d.profiles)-1]
	}
	return general, "no matcher hit; defaulted to general"
}

func (d *Directory) applyFallback(profile domain.IntentProfile, exp Expectation, m domain.Matcher) (domain.IntentProfile, string) {
	matchedOn := m.Phrase
	if matchedOn == "" && m.Pattern != nil {
		matchedOn = m.Pattern.String()
	}

	if profile.Domain == domain.DomainGeneral && profile.Fallback != "" &&
		(exp.HasRepoHints || exp.HasFilePathHints) {
		if fallback, ok := d.byID[profile.Fallback]; ok {
			return fallback, fmt.Sprintf(
				"matched %q on %q; escalated general->%s on repo expectation",
				profile.ID, matchedOn, fallback.ID)
		}
	}

	return profile, fmt.Sprintf("matched %q on %q", profile.ID, matchedOn)
}

func matcherHits(m domain.Matcher, lowerText string) bool {
	if m.Pattern != nil {
		return m.Pattern.MatchString(lowerText)
	}
	if m.Phrase != "" {
		return strings.Contains(lowerText, strings.ToLower(m.Phrase))
	}
	return false
}
