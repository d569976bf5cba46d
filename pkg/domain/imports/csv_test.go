package imports_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/planport/planport/pkg/domain/imports"
)

const epicCSV = `project_name,project_description,project_status,project_start_date,project_end_date,project_budget,epic_name,epic_description,epic_effort,epic_team,epic_target_date,milestone_name,milestone_due_date
Proj A,First project,active,2024-01-01,2024-12-31,100000,Epic A,Build it,10,Team One,2024-06-01,M1,2024-06-15
,,,,,,Epic B,Extend it,20,Team One,,,
,,,,,,Epic C,"Fix, then ship",5,Team Two,,,
`

func TestParseTable_FillDown(t *testing.T) {
	res := imports.ParseTable(epicCSV, imports.EpicStorySchema)
	if len(res.Issues.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", res.Issues.Messages())
	}
	if len(res.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(res.Rows))
	}

	for i, row := range res.Rows {
		if row["project_name"] != "Proj A" {
			t.Errorf("row %d: expected project_name filled down to Proj A, got %q", i, row["project_name"])
		}
	}
	if res.Rows[2]["epic_description"] != "Fix, then ship" {
		t.Errorf("quoted field mangled: %q", res.Rows[2]["epic_description"])
	}
}

func TestParseTable_Idempotent(t *testing.T) {
	first := imports.ParseTable(epicCSV, imports.EpicStorySchema)
	second := imports.ParseTable(epicCSV, imports.EpicStorySchema)

	if !reflect.DeepEqual(first.Rows, second.Rows) {
		t.Error("re-parsing the same text produced different rows")
	}
	if !reflect.DeepEqual(first.Issues, second.Issues) {
		t.Error("re-parsing the same text produced different issues")
	}
}

func TestParseTable_RequiredFieldRejectsRow(t *testing.T) {
	csv := "epic_name,sprint,story_points,team_name\n" +
		"Epic A,Sprint 1,5,Team One\n" +
		",Sprint 1,3,Team One\n" +
		"Epic B,Sprint 2,8,Team One\n"

	res := imports.ParseTable(csv, imports.StorySchema)
	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 surviving rows, got %d", len(res.Rows))
	}

	errs := res.Issues.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 row error, got %d: %v", len(errs), res.Issues.Messages())
	}
	if errs[0].Severity != imports.SeverityRow {
		t.Errorf("expected row severity, got %s", errs[0].Severity)
	}
	if errs[0].Row != 3 {
		t.Errorf("expected error on row 3, got %d", errs[0].Row)
	}
}

func TestParseTable_MissingRequiredColumnIsStructural(t *testing.T) {
	csv := "sprint,story_points\nSprint 1,5\n"

	res := imports.ParseTable(csv, imports.StorySchema)
	if !res.Issues.HasStructural() {
		t.Fatal("expected a structural issue for a missing required column")
	}
	if len(res.Rows) != 0 {
		t.Errorf("expected no rows on structural failure, got %d", len(res.Rows))
	}
}

func TestParseTable_NonNumericWarnsAndDefaultsToZero(t *testing.T) {
	csv := "epic_name,sprint,story_points,team_name\nEpic A,Sprint 1,lots,Team One\n"

	res := imports.ParseTable(csv, imports.StorySchema)
	if len(res.Rows) != 1 {
		t.Fatalf("expected the row to survive, got %d rows", len(res.Rows))
	}
	if res.Rows[0].Number("story_points") != 0 {
		t.Errorf("expected 0 for non-numeric content, got %v", res.Rows[0].Number("story_points"))
	}
	if len(res.Issues.Warnings()) != 1 {
		t.Errorf("expected 1 warning, got %v", res.Issues.Messages())
	}
	if len(res.Issues.Errors()) != 0 {
		t.Errorf("non-numeric content must not be an error: %v", res.Issues.Messages())
	}
}

func TestParseTable_NumericFormats(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12", 12},
		{"12.5", 12.5},
		{"1,5", 1.5},
		{"1,25", 1.25},
		{" 7 ", 7},
		{"1,250", 1250},
		{"12,345,678", 12345678},
		{"1,234.5", 1234.5},
	}

	for _, tt := range tests {
		// Values are quoted so embedded commas stay in one field.
		csv := "epic_name,sprint,story_points,team_name\nEpic A,S1,\"" + tt.in + "\",T1\n"
		res := imports.ParseTable(csv, imports.StorySchema)
		if len(res.Rows) != 1 {
			t.Fatalf("%q: row rejected: %v", tt.in, res.Issues.Messages())
		}
		if got := res.Rows[0].Number("story_points"); got != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestParseTable_StripsByteOrderMark(t *testing.T) {
	csv := "\uFEFFepic_name,sprint,story_points,team_name\nEpic A,Sprint 1,5,Team One\n"

	res := imports.ParseTable(csv, imports.StorySchema)
	if res.Issues.HasStructural() {
		t.Fatalf("BOM-prefixed header rejected: %v", res.Issues.Messages())
	}
	if len(res.Rows) != 1 || res.Rows[0]["epic_name"] != "Epic A" {
		t.Errorf("row lost behind the BOM: %+v", res.Rows)
	}
}

func TestParseTable_IgnoresUnknownColumnsAndBlankLines(t *testing.T) {
	csv := "epic_name,sprint,story_points,team_name,mystery_column\n" +
		"Epic A,Sprint 1,5,Team One,whatever\n" +
		",,,,\n"

	res := imports.ParseTable(csv, imports.StorySchema)
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Rows))
	}
	if _, ok := res.Rows[0]["mystery_column"]; ok {
		t.Error("unknown column leaked into the row")
	}
}

func TestParseTable_EmbeddedNewline(t *testing.T) {
	csv := "epic_name,sprint,story_points,team_name\n" +
		"\"Epic\nWith Newline\",Sprint 1,5,Team One\n"

	res := imports.ParseTable(csv, imports.StorySchema)
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d: %v", len(res.Rows), res.Issues.Messages())
	}
	if !strings.Contains(res.Rows[0]["epic_name"], "\n") {
		t.Errorf("embedded newline lost: %q", res.Rows[0]["epic_name"])
	}
}
