package rolemap

import (
	"strings"

	"github.com/google/uuid"
)

// AutoMapReport summarizes one batch auto-map run.
type AutoMapReport struct {
	Mapped  int `json:"mapped"`
	Skipped int `json:"skipped"`
}

// AutoMapUnmapped takes each job title that has no existing mapping,
// scores it, and creates an ai-suggested mapping when the top suggestion
// clears the threshold. Titles below the threshold are counted as
// skipped, never silently mapped. Returns the new mappings and the
// report; Mapped+Skipped equals the number of previously unmapped titles.
func AutoMapUnmapped(titles []string, existing []Mapping, matcher *Matcher, threshold float64) ([]Mapping, AutoMapReport) {
	mapped := make(map[string]bool, len(existing))
	for _, m := range existing {
		mapped[strings.ToLower(strings.TrimSpace(m.JobTitle))] = true
	}

	seen := make(map[string]bool, len(titles))
	var created []Mapping
	var report AutoMapReport

	for _, title := range titles {
		key := strings.ToLower(strings.TrimSpace(title))
		if key == "" || seen[key] || mapped[key] {
			continue
		}
		seen[key] = true

		suggestions := matcher.SuggestMappings(title)
		if len(suggestions) == 0 || suggestions[0].Confidence < threshold {
			report.Skipped++
			continue
		}

		top := suggestions[0]
		created = append(created, Mapping{
			ID:         uuid.NewString(),
			JobTitle:   strings.TrimSpace(title),
			RoleTypeID: top.RoleTypeID,
			Confidence: top.Confidence,
			Source:     SourceAISuggested,
			Notes:      top.Reasoning,
		})
		report.Mapped++
	}

	return created, report
}
