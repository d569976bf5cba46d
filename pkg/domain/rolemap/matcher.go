package rolemap

import (
	"fmt"
	"sort"
	"strings"
)

// Scoring policy constants. The three signals are scored independently in
// [0,1] and combined by taking the maximum, so each can be tuned or
// tested without touching the others.
const (
	// tokenForwardWeight weighs how much of the role type's name appears
	// in the job title; the reverse direction gets the remainder.
	tokenForwardWeight = 0.7
	// categoryKeywordCap bounds the category-keyword signal: keywords
	// nudge, they never decide on their own.
	categoryKeywordCap = 0.6
	// minSuggestionConfidence filters out noise suggestions.
	minSuggestionConfidence = 0.2
)

// categoryKeywords maps lowercased job-title keywords to the catalog
// categories they hint at.
var categoryKeywords = map[string][]string{
	"engineer":  {"engineering"},
	"developer": {"engineering"},
	"software":  {"engineering"},
	"qa":        {"engineering", "quality"},
	"test":      {"quality"},
	"designer":  {"design"},
	"ux":        {"design"},
	"product":   {"product"},
	"owner":     {"product"},
	"manager":   {"management"},
	"lead":      {"management", "engineering"},
	"senior":    {"engineering", "management"},
	"principal": {"engineering"},
	"analyst":   {"analysis"},
	"data":      {"analysis", "engineering"},
	"scrum":     {"delivery"},
	"delivery":  {"delivery"},
}

// Matcher scores free-text job titles against a role-type catalog.
// Inactive role types are never suggested.
type Matcher struct {
	catalog []RoleType
}

// NewMatcher builds a matcher over the given catalog.
func NewMatcher(catalog []RoleType) *Matcher {
	return &Matcher{catalog: catalog}
}

// SuggestMappings returns scored candidates for a job title, ranked by
// confidence descending. Ties break on catalog name for determinism.
func (m *Matcher) SuggestMappings(jobTitle string) []Suggestion {
	title := strings.TrimSpace(jobTitle)
	if title == "" {
		return nil
	}

	var out []Suggestion
	for _, rt := range m.catalog {
		if !rt.IsActive {
			continue
		}
		s, reason := m.score(title, rt)
		if s < minSuggestionConfidence {
			continue
		}
		out = append(out, Suggestion{
			RoleTypeID:   rt.ID,
			RoleTypeName: rt.Name,
			Confidence:   s,
			Reasoning:    reason,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].RoleTypeName < out[j].RoleTypeName
	})
	return out
}

// score evaluates the three signals for one candidate and combines them
// by taking the maximum.
func (m *Matcher) score(title string, rt RoleType) (float64, string) {
	if exactScore(title, rt) == 1 {
		return 1, fmt.Sprintf("Exact match on %q", rt.Name)
	}

	best := tokenOverlapScore(title, rt.Name)
	bestVia := rt.Name
	for _, alias := range rt.Aliases {
		if s := tokenOverlapScore(title, alias); s > best {
			best = s
			bestVia = alias
		}
	}
	reason := fmt.Sprintf("Matched via token overlap with %q", bestVia)

	if kw, s := categoryScore(title, rt.Category); s > best {
		best = s
		reason = fmt.Sprintf("Keyword %q suggests category %q", kw, rt.Category)
	}

	return best, reason
}

// exactScore is signal 1: case-insensitive equality with the role name or
// any alias.
func exactScore(title string, rt RoleType) float64 {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == strings.ToLower(strings.TrimSpace(rt.Name)) {
		return 1
	}
	for _, alias := range rt.Aliases {
		if t == strings.ToLower(strings.TrimSpace(alias)) {
			return 1
		}
	}
	return 0
}

// tokenOverlapScore is signal 2: a weighted average of the two
// directional containment ratios between the token sets.
func tokenOverlapScore(title, roleName string) float64 {
	titleTokens := tokenize(title)
	roleTokens := tokenize(roleName)
	if len(titleTokens) == 0 || len(roleTokens) == 0 {
		return 0
	}

	forward := containment(roleTokens, titleTokens) // role tokens found in title
	reverse := containment(titleTokens, roleTokens) // title tokens found in role
	return tokenForwardWeight*forward + (1-tokenForwardWeight)*reverse
}

// categoryScore is signal 3: curated keywords hinting at the candidate's
// category, capped so it cannot outvote a real textual match.
func categoryScore(title, category string) (string, float64) {
	if category == "" {
		return "", 0
	}
	cat := strings.ToLower(category)
	for _, tok := range tokenize(title) {
		for _, hinted := range categoryKeywords[tok] {
			if hinted == cat {
				return tok, categoryKeywordCap
			}
		}
	}
	return "", 0
}

// containment is the fraction of needles present in haystack.
func containment(needles, haystack []string) float64 {
	if len(needles) == 0 {
		return 0
	}
	set := make(map[string]bool, len(haystack))
	for _, t := range haystack {
		set[t] = true
	}
	found := 0
	for _, t := range needles {
		if set[t] {
			found++
		}
	}
	return float64(found) / float64(len(needles))
}

// tokenize splits on non-alphanumeric runes and lowercases.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return fields
}
