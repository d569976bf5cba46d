package allocation

import (
	"math"
	"sort"

	"github.com/planport/planport/pkg/domain/imports"
)

// TeamSprintAggregate is one epic's share of a team's effort in one
// sprint, computed proportionally to story points.
type TeamSprintAggregate struct {
	TeamName    string
	SprintLabel string
	EpicName    string
	ProjectName string
	TotalPoints float64
	Percentage  int
}

// AggregateTeamSprintData folds story rows into per-team, per-sprint
// allocation candidates. A story missing team or project context inherits
// it from its parent epic, resolved by name. Percentages are each epic's
// share of the group's total points, rounded half-up; groups with zero
// total points are excluded with a warning rather than divided by zero.
func AggregateTeamSprintData(epics []imports.EpicRecord, stories []imports.StoryRecord) ([]TeamSprintAggregate, imports.IssueList) {
	var issues imports.IssueList

	epicIndex := make(map[string]imports.EpicRecord, len(epics))
	for _, e := range epics {
		epicIndex[imports.FoldName(e.EpicName)] = e
	}

	type groupKey struct{ team, sprint string }
	type epicPoints struct {
		epicName    string
		projectName string
		points      float64
	}

	groups := make(map[groupKey][]epicPoints)
	// Original casing of team and sprint labels, per group.
	displayNames := make(map[groupKey][2]string)
	var order []groupKey

	for _, s := range stories {
		parent, hasParent := epicIndex[imports.FoldName(s.EpicName)]

		team := s.TeamName
		if team == "" && hasParent {
			team = parent.Team
		}
		if team == "" {
			issues.Warn(0, "story under epic %q has no team and no parent epic to inherit one from", s.EpicName)
			continue
		}

		project := ""
		if hasParent {
			project = parent.ProjectName
		}

		k := groupKey{imports.FoldName(team), imports.FoldName(s.SprintLabel)}
		bucket := groups[k]
		if bucket == nil {
			order = append(order, k)
		}

		merged := false
		for i := range bucket {
			if imports.FoldName(bucket[i].epicName) == imports.FoldName(s.EpicName) {
				bucket[i].points += s.StoryPoints
				merged = true
				break
			}
		}
		if !merged {
			bucket = append(bucket, epicPoints{epicName: s.EpicName, projectName: project, points: s.StoryPoints})
		}
		groups[k] = bucket

		if _, ok := displayNames[k]; !ok {
			displayNames[k] = [2]string{team, s.SprintLabel}
		}
	}

	var out []TeamSprintAggregate
	for _, k := range order {
		bucket := groups[k]

		var total float64
		for _, ep := range bucket {
			total += ep.points
		}
		names := displayNames[k]
		if total == 0 {
			issues.Warn(0, "no effort recorded for team %q in sprint %q", names[0], names[1])
			continue
		}

		sort.SliceStable(bucket, func(i, j int) bool { return bucket[i].epicName < bucket[j].epicName })
		for _, ep := range bucket {
			out = append(out, TeamSprintAggregate{
				TeamName:    names[0],
				SprintLabel: names[1],
				EpicName:    ep.epicName,
				ProjectName: ep.projectName,
				TotalPoints: ep.points,
				Percentage:  roundHalfUp(100 * ep.points / total),
			})
		}
	}

	return out, issues
}

// roundHalfUp is the single rounding rule for percentages; math.Round
// rounds half away from zero, which for non-negative shares is half-up.
func roundHalfUp(v float64) int {
	return int(math.Round(v))
}
