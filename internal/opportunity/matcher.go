// Package opportunity matches a student profile against the opportunity catalogue.
package opportunity

import (
	"strings"
	"unicode"

	"github.com/cloudflare/ahocorasick"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jonesrussell/north-cloud/extracurricular/internal/domain"
)

// Locations that match every student.
var openLocations = map[string]struct{}{
	"remote":   {},
	"national": {},
}

// Matcher filters a fixed catalogue. It is safe for concurrent use.
type Matcher struct {
	catalogue []domain.Opportunity
	// folded holds title, description and organization per entry, pre-folded.
	folded []string
}

// NewMatcher creates a Matcher over catalogue.
func NewMatcher(catalogue []domain.Opportunity) *Matcher {
	m := &Matcher{
		catalogue: catalogue,
		folded:    make([]string, len(catalogue)),
	}
	for i, o := range catalogue {
		m.folded[i] = fold(o.Title + "\n" + o.Description + "\n" + o.Organization)
	}
	return m
}

// Find returns the catalogue entries, in catalogue order, where some
// interest occurs in the title, description or organization and the
// location is compatible. Matching ignores case and accents.
func (m *Matcher) Find(in domain.UserInput) []domain.Opportunity {
	matches := make([]domain.Opportunity, 0, len(m.catalogue))

	interests := make([]string, 0, len(in.Interests))
	for _, interest := range in.Interests {
		if f := fold(strings.TrimSpace(interest)); f != "" {
			interests = append(interests, f)
		}
	}
	if len(interests) == 0 {
		return matches
	}

	interestMatcher := ahocorasick.NewStringMatcher(interests)
	location := fold(strings.TrimSpace(in.Location))

	for i, o := range m.catalogue {
		if len(interestMatcher.Match([]byte(m.folded[i]))) == 0 {
			continue
		}
		if !locationMatches(fold(o.Location), location) {
			continue
		}
		matches = append(matches, o)
	}
	return matches
}

func locationMatches(opportunity, student string) bool {
	if _, open := openLocations[opportunity]; open {
		return true
	}
	return strings.Contains(opportunity, student) || strings.Contains(student, opportunity)
}

// fold case-folds s and strips diacritics.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Fold(), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}
