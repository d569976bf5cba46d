package wizard_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/planport/planport/pkg/domain/allocation"
	"github.com/planport/planport/pkg/domain/calendar"
	"github.com/planport/planport/pkg/domain/wizard"
)

const epicCSV = `project_name,epic_name,epic_effort,epic_team
Proj A,Epic A,10,T1
,Epic B,20,T1
`

const storyCSV = `epic_name,sprint,story_points,team_name
Epic A,Sprint 1,5,T1
Epic B,Sprint 1,15,T1
`

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func readySession() wizard.Session {
	return wizard.NewSession().
		WithFiles(wizard.File{Name: "epics.csv", Text: epicCSV}, wizard.File{Name: "stories.csv", Text: storyCSV}).
		WithCalendar("2024-04-01", "Q1", []string{"Q1", "Q2"})
}

func testRefData() (*allocation.TeamDirectory, *allocation.EpicDirectory) {
	teams := allocation.NewTeamDirectory([]allocation.Team{{ID: "t-1", Name: "T1"}})
	epics := allocation.NewEpicDirectory([]allocation.Epic{
		{ID: "e-a", Name: "Epic A"},
		{ID: "e-b", Name: "Epic B"},
	})
	return teams, epics
}

func testCalendar() (*calendar.Resolver, []calendar.Cycle, []calendar.FinancialYear) {
	anchor := calendar.Anchor{Month: time.April, Day: 1}
	resolver := calendar.NewResolver(anchor, func() time.Time { return date(2024, time.June, 1) })
	fys := calendar.GenerateFinancialYearOptions(anchor, 2024, 1)
	cycles := []calendar.Cycle{
		{ID: "q1", Name: "Q1 FY24", Type: calendar.CycleQuarterly, Start: date(2024, time.April, 1), End: date(2024, time.June, 30), FinancialYearID: "2024-04-01"},
		{ID: "it-1", Name: "Iteration 1", Type: calendar.CycleIteration, Start: date(2024, time.April, 1), End: date(2024, time.April, 14)},
		{ID: "it-2", Name: "Iteration 2", Type: calendar.CycleIteration, Start: date(2024, time.April, 15), End: date(2024, time.April, 28)},
	}
	return resolver, cycles, fys
}

func TestValidate_GateBlocksIncompleteUpload(t *testing.T) {
	s := wizard.NewSession().Validate()

	if s.Step != wizard.StepUpload {
		t.Fatalf("incomplete session advanced to %s", s.Step)
	}
	gate := s.StepIssues(wizard.StepUpload)
	if !gate.HasStructural() {
		t.Fatalf("expected structural gate issues, got %v", gate.Messages())
	}
}

func TestValidate_StructuralParseFailureStays(t *testing.T) {
	s := readySession().
		WithFiles(wizard.File{Name: "epics.csv", Text: "wrong_column\nx\n"}, wizard.File{Name: "stories.csv", Text: storyCSV}).
		Validate()

	if s.Step != wizard.StepUpload {
		t.Fatalf("structurally broken file advanced to %s", s.Step)
	}
	if !s.StepIssues(wizard.StepValidate).HasStructural() {
		t.Errorf("missing structural issue, got %v", s.StepIssues(wizard.StepValidate).Messages())
	}
}

func TestValidate_ParsesAndAdvances(t *testing.T) {
	s := readySession().Validate()

	if s.Step != wizard.StepValidate {
		t.Fatalf("expected validate step, got %s", s.Step)
	}
	if len(s.Epics) != 2 || len(s.Stories) != 2 {
		t.Fatalf("parsed %d epics / %d stories, want 2 / 2", len(s.Epics), len(s.Stories))
	}
	// Fill-down: Epic B's blank project inherits Proj A.
	if s.Epics[1].ProjectName != "Proj A" {
		t.Errorf("fill-down lost, Epic B project = %q", s.Epics[1].ProjectName)
	}
}

func TestAggregate_ComputesShares(t *testing.T) {
	teams, epics := testRefData()
	s := readySession().Validate().Aggregate(teams, epics, nil)

	if s.Step != wizard.StepAggregate {
		t.Fatalf("expected aggregate step, got %s", s.Step)
	}
	if len(s.Valid) != 2 {
		t.Fatalf("expected 2 valid results, got %d", len(s.Valid))
	}
	byEpic := map[string]int{}
	for _, r := range s.Valid {
		byEpic[r.EpicName] = r.Percentage
	}
	if byEpic["Epic A"] != 25 || byEpic["Epic B"] != 75 {
		t.Errorf("shares = %v, want Epic A 25 / Epic B 75", byEpic)
	}
}

func TestValidate_StoryFileNoUsableRowsIsStructural(t *testing.T) {
	// Every story row fails required-field validation (blank sprint).
	badStories := "epic_name,sprint,story_points,team_name\nEpic A,,5,T1\nEpic B,,15,T1\n"
	s := readySession().
		WithFiles(wizard.File{Name: "epics.csv", Text: epicCSV}, wizard.File{Name: "stories.csv", Text: badStories}).
		Validate()

	if s.Step != wizard.StepUpload {
		t.Fatalf("story file with no usable rows advanced to %s", s.Step)
	}
	if !s.StepIssues(wizard.StepValidate).HasStructural() {
		t.Errorf("expected a structural issue, got %v", s.StepIssues(wizard.StepValidate).Messages())
	}
	if len(s.Stories) != 0 {
		t.Errorf("no stories should be retained, got %d", len(s.Stories))
	}
}

func TestForwardTransitionsAnchorToSource(t *testing.T) {
	teams, epics := testRefData()

	if s := readySession().Resolve(); s.Step != wizard.StepUpload {
		t.Errorf("Resolve from upload advanced to %s", s.Step)
	} else if len(s.StepIssues(wizard.StepUpload)) == 0 {
		t.Error("refused Resolve should leave an issue behind")
	}

	if s := readySession().Validate().Preview(); s.Step != wizard.StepValidate {
		t.Errorf("Preview from validate advanced to %s", s.Step)
	}

	// Repeating a transition is refused: Validate belongs to upload only.
	if s := readySession().Validate().Validate(); s.Step != wizard.StepValidate {
		t.Errorf("repeated Validate moved the session to %s", s.Step)
	}

	done := readySession().Validate().Aggregate(teams, epics, nil).Resolve().Preview()
	if s := done.Aggregate(teams, epics, nil); s.Step != wizard.StepPreview {
		t.Errorf("Aggregate at preview moved the session to %s", s.Step)
	}
}

func TestAggregate_FromWrongStepRecordsIssue(t *testing.T) {
	teams, epics := testRefData()
	s := readySession().Aggregate(teams, epics, nil) // still at upload

	if s.Step != wizard.StepUpload {
		t.Fatalf("invalid transition advanced to %s", s.Step)
	}
	if len(s.StepIssues(wizard.StepUpload)) == 0 {
		t.Error("refused transition should leave an issue behind")
	}
}

func TestBack_PreservesWorkingSet(t *testing.T) {
	teams, epics := testRefData()
	forward := readySession().Validate().Aggregate(teams, epics, nil)
	back := forward.Back()

	if back.Step != wizard.StepValidate {
		t.Fatalf("back landed on %s", back.Step)
	}
	if !reflect.DeepEqual(back.Epics, forward.Epics) || !reflect.DeepEqual(back.Valid, forward.Valid) {
		t.Error("back navigation must preserve parsed data and results")
	}
	if back.FinancialYearID != forward.FinancialYearID || back.Quarter != forward.Quarter {
		t.Error("back navigation must preserve calendar selections")
	}

	// The original value is untouched.
	if forward.Step != wizard.StepAggregate {
		t.Errorf("transition mutated its receiver: %s", forward.Step)
	}
}

func TestBack_FromUploadIsNoOp(t *testing.T) {
	s := wizard.NewSession().Back()
	if s.Step != wizard.StepUpload {
		t.Errorf("back from upload moved to %s", s.Step)
	}
}

func TestConfirm_BeforePreviewFails(t *testing.T) {
	resolver, cycles, fys := testCalendar()
	teams, _ := testRefData()

	_, _, err := readySession().Validate().Confirm(resolver, cycles, fys, teams)
	var notReady *wizard.NotReadyError
	if !errors.As(err, &notReady) {
		t.Fatalf("expected NotReadyError, got %v", err)
	}
	if notReady.Step != wizard.StepValidate {
		t.Errorf("error should carry the offending step, got %s", notReady.Step)
	}
}

func TestConfirm_ExpandsAcrossIterations(t *testing.T) {
	resolver, cycles, fys := testCalendar()
	teams, epics := testRefData()

	s := readySession().Validate().Aggregate(teams, epics, nil).Resolve().Preview()
	if s.Step != wizard.StepPreview {
		t.Fatalf("expected preview step, got %s", s.Step)
	}

	records, report, err := s.Confirm(resolver, cycles, fys, teams)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	// 2 valid results x 2 iteration cycles.
	if report.Iterations != 2 || report.Records != 4 || len(records) != 4 {
		t.Fatalf("report = %+v with %d records, want 2 iterations / 4 records", report, len(records))
	}
	if report.RejectedTeams != 0 {
		t.Errorf("no team should be rejected, got %d", report.RejectedTeams)
	}
	for _, r := range records {
		if r.TeamID != "t-1" {
			t.Errorf("record %s has unresolved team id %q", r.EpicName, r.TeamID)
		}
		if r.BatchID != s.BatchID {
			t.Errorf("record missing the session batch id")
		}
		if r.CycleID != "it-1" && r.CycleID != "it-2" {
			t.Errorf("record bound to unexpected cycle %q", r.CycleID)
		}
	}
}

func TestConfirm_RejectsUnresolvableTeams(t *testing.T) {
	resolver, cycles, fys := testCalendar()
	teams, epics := testRefData()

	s := readySession().Validate().Aggregate(teams, epics, nil).Resolve().Preview()

	// Reference data changed between validate and confirm: the team is gone.
	empty := allocation.NewTeamDirectory(nil)
	records, report, err := s.Confirm(resolver, cycles, fys, empty)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("records emitted with dangling team ids: %d", len(records))
	}
	if report.RejectedTeams != 2 {
		t.Errorf("expected both results rejected, got %+v", report)
	}
}
