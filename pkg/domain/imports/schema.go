package imports

// ColumnSpec describes one column of a known import schema.
type ColumnSpec struct {
	Name     string
	Required bool // empty after fill-down rejects the row
	Numeric  bool // parsed permissively, 0 + warning on garbage
	FillDown bool // blank cells inherit the nearest preceding value
}

// Schema is the column contract for one import file type. Unknown extra
// columns in the input are ignored; a required column missing from the
// header entirely is a structural error.
type Schema struct {
	Name    string
	Columns []ColumnSpec
}

// Column returns the spec for a column name, or nil if the schema does
// not declare it.
func (s Schema) Column(name string) *ColumnSpec {
	for i := range s.Columns {
		if s.Columns[i].Name == name {
			return &s.Columns[i]
		}
	}
	return nil
}

// RequiredColumns returns the names of all required columns.
func (s Schema) RequiredColumns() []string {
	var out []string
	for _, c := range s.Columns {
		if c.Required {
			out = append(out, c.Name)
		}
	}
	return out
}

// EpicStorySchema is the combined epic/story tracker export. Project-level
// columns follow the fill-down convention: only the first row of a project
// block carries them.
var EpicStorySchema = Schema{
	Name: "epics",
	Columns: []ColumnSpec{
		{Name: "project_name", FillDown: true},
		{Name: "project_description", FillDown: true},
		{Name: "project_status", FillDown: true},
		{Name: "project_start_date", FillDown: true},
		{Name: "project_end_date", FillDown: true},
		{Name: "project_budget", Numeric: true, FillDown: true},
		{Name: "epic_name", Required: true},
		{Name: "epic_description"},
		{Name: "epic_effort", Numeric: true},
		{Name: "epic_team"},
		{Name: "epic_target_date"},
		{Name: "milestone_name"},
		{Name: "milestone_due_date"},
	},
}

// StorySchema is the story-level tracker export that accompanies the epic
// file. Sprint labels are free text ("Sprint 1", "2024-Q1-S3", ...).
var StorySchema = Schema{
	Name: "stories",
	Columns: []ColumnSpec{
		{Name: "epic_name", Required: true},
		{Name: "sprint", Required: true},
		{Name: "story_points", Numeric: true},
		{Name: "team_name"},
	},
}

// AllocationSchema is the planning-tool allocation export.
var AllocationSchema = Schema{
	Name: "allocations",
	Columns: []ColumnSpec{
		{Name: "team_name", Required: true},
		{Name: "quarter"},
		{Name: "iteration_number", Numeric: true},
		{Name: "epic_name"},
		{Name: "project_name"},
		{Name: "percentage", Required: true, Numeric: true},
		{Name: "notes"},
	},
}

// RosterSchema is the HR roster export.
var RosterSchema = Schema{
	Name: "roster",
	Columns: []ColumnSpec{
		{Name: "name", Required: true},
		{Name: "email"},
		{Name: "role"},
		{Name: "team_name"},
		{Name: "team_id"},
		{Name: "employment_type"},
		{Name: "annual_salary", Numeric: true},
		{Name: "hourly_rate", Numeric: true},
		{Name: "daily_rate", Numeric: true},
		{Name: "start_date"},
		{Name: "end_date"},
		{Name: "is_active"},
		{Name: "division_name"},
		{Name: "division_id"},
		{Name: "team_capacity", Numeric: true},
	},
}
