package imports

import "strings"

// EpicRecord is a typed epic row from the tracker export. Identity within
// a batch is the (ProjectName, EpicName) pair.
type EpicRecord struct {
	EpicName    string
	Description string
	Effort      float64 // story points
	Team        string  // team name reference, resolved later
	TargetDate  string
	ProjectName string
	Milestone   string
}

// StoryRecord is a typed story row from the tracker export.
type StoryRecord struct {
	EpicName    string
	SprintLabel string
	StoryPoints float64
	TeamName    string
}

// AllocationRow is a typed row from the planning-tool allocation export.
type AllocationRow struct {
	TeamName        string
	Quarter         string
	IterationNumber int
	EpicName        string
	ProjectName     string
	Percentage      float64
	Notes           string
}

// RosterRecord is a typed row from the HR roster export.
type RosterRecord struct {
	Name           string
	Email          string
	Role           string // free-text job title, input to role mapping
	TeamName       string
	TeamID         string
	EmploymentType string
	AnnualSalary   float64
	HourlyRate     float64
	DailyRate      float64
	StartDate      string
	EndDate        string
	IsActive       bool
	DivisionName   string
	DivisionID     string
	TeamCapacity   float64
}

// EpicRecordsFromRows converts parsed rows into epic records, merging
// duplicate (project, epic) pairs: a later row's non-empty fields fill in
// blanks left by earlier rows of the same pair. Order of first appearance
// is preserved.
func EpicRecordsFromRows(rows []RawRow) []EpicRecord {
	type key struct{ project, epic string }

	index := make(map[key]int)
	var out []EpicRecord

	for _, row := range rows {
		rec := EpicRecord{
			EpicName:    row["epic_name"],
			Description: row["epic_description"],
			Effort:      row.Number("epic_effort"),
			Team:        row["epic_team"],
			TargetDate:  row["epic_target_date"],
			ProjectName: row["project_name"],
			Milestone:   row["milestone_name"],
		}

		k := key{foldName(rec.ProjectName), foldName(rec.EpicName)}
		if i, ok := index[k]; ok {
			mergeEpic(&out[i], rec)
			continue
		}
		index[k] = len(out)
		out = append(out, rec)
	}
	return out
}

// mergeEpic fills blanks in dst from src. Effort sticks with the first
// non-zero value seen.
func mergeEpic(dst *EpicRecord, src EpicRecord) {
	if dst.Description == "" {
		dst.Description = src.Description
	}
	if dst.Effort == 0 {
		dst.Effort = src.Effort
	}
	if dst.Team == "" {
		dst.Team = src.Team
	}
	if dst.TargetDate == "" {
		dst.TargetDate = src.TargetDate
	}
	if dst.Milestone == "" {
		dst.Milestone = src.Milestone
	}
}

// StoryRecordsFromRows converts parsed rows into story records.
func StoryRecordsFromRows(rows []RawRow) []StoryRecord {
	out := make([]StoryRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, StoryRecord{
			EpicName:    row["epic_name"],
			SprintLabel: row["sprint"],
			StoryPoints: row.Number("story_points"),
			TeamName:    row["team_name"],
		})
	}
	return out
}

// AllocationRowsFromRows converts parsed rows into allocation rows.
func AllocationRowsFromRows(rows []RawRow) []AllocationRow {
	out := make([]AllocationRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, AllocationRow{
			TeamName:        row["team_name"],
			Quarter:         row["quarter"],
			IterationNumber: int(row.Number("iteration_number")),
			EpicName:        row["epic_name"],
			ProjectName:     row["project_name"],
			Percentage:      row.Number("percentage"),
			Notes:           row["notes"],
		})
	}
	return out
}

// RosterRecordsFromRows converts parsed rows into roster records.
func RosterRecordsFromRows(rows []RawRow) []RosterRecord {
	out := make([]RosterRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, RosterRecord{
			Name:           row["name"],
			Email:          row["email"],
			Role:           row["role"],
			TeamName:       row["team_name"],
			TeamID:         row["team_id"],
			EmploymentType: row["employment_type"],
			AnnualSalary:   row.Number("annual_salary"),
			HourlyRate:     row.Number("hourly_rate"),
			DailyRate:      row.Number("daily_rate"),
			StartDate:      row["start_date"],
			EndDate:        row["end_date"],
			IsActive:       parseBool(row["is_active"]),
			DivisionName:   row["division_name"],
			DivisionID:     row["division_id"],
			TeamCapacity:   row.Number("team_capacity"),
		})
	}
	return out
}

// parseBool accepts the spellings HR exports actually produce. Blank
// defaults to true since inactive people are usually filtered upstream.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "true", "yes", "y", "1", "active":
		return true
	}
	return false
}

// foldName normalizes a name for identity comparison: trimmed and
// case-folded. Shared by reference-data lookups across the pipeline.
func foldName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FoldName is the canonical name normalization used for reference-data
// keys throughout the import pipeline.
func FoldName(s string) string {
	return foldName(s)
}
