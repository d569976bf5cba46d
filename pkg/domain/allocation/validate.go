package allocation

import "github.com/planport/planport/pkg/domain/imports"

// ValidationOutcome partitions validated rows from the issues found.
type ValidationOutcome struct {
	Valid  []Result
	Issues imports.IssueList
}

// Validate cross-checks allocation results against reference data. The
// policy is deliberately asymmetric: an unresolved team is an error and
// drops the row, an unresolved epic is only a warning because run-work
// buckets are not pre-registered epic entities. Out-of-range percentages
// warn but keep the row, since rounded partial imports are expected.
func Validate(results []Result, teams *TeamDirectory, epics *EpicDirectory) ValidationOutcome {
	var out ValidationOutcome

	for _, r := range results {
		if _, ok := teams.Find(r.TeamName); !ok {
			out.Issues.RowError(0, "unknown team %q for epic %q in sprint %q", r.TeamName, r.EpicName, r.Sprint)
			continue
		}

		if _, ok := epics.Find(r.EpicName); !ok {
			out.Issues.Warn(0, "epic %q not found in workspace; importing anyway", r.EpicName)
		}

		if r.Percentage <= 0 || r.Percentage > 100 {
			out.Issues.Warn(0, "percentage %d out of range for team %q epic %q", r.Percentage, r.TeamName, r.EpicName)
		}

		out.Valid = append(out.Valid, r)
	}

	return out
}
