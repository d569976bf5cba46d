package wizard

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/planport/planport/pkg/domain/allocation"
	"github.com/planport/planport/pkg/domain/calendar"
	"github.com/planport/planport/pkg/domain/imports"
)

// File is one uploaded spreadsheet export: the name for display, the text
// already read from disk. Reading the bytes is the caller's concern; the
// session itself never touches I/O.
type File struct {
	Name string
	Text string
}

// Session is the wizard's working set for one import run. It is an
// immutable value: every transition returns a new Session, which makes
// back navigation and re-runs trivially comparable. Issues are attached
// to the step where they were detected.
type Session struct {
	BatchID string
	Step    Step

	EpicFile  File
	StoryFile File

	FinancialYearID   string
	Quarter           string
	AvailableQuarters []string

	Epics   []imports.EpicRecord
	Stories []imports.StoryRecord

	Aggregates []allocation.TeamSprintAggregate
	Valid      []allocation.Result

	Issues map[Step]imports.IssueList
}

// NewSession starts a fresh wizard at the upload step.
func NewSession() Session {
	return Session{
		BatchID: uuid.NewString(),
		Step:    StepUpload,
		Issues:  map[Step]imports.IssueList{},
	}
}

// WithFiles records the two uploads. Only meaningful at the upload step,
// but permitted anywhere: re-uploading from a later step is how users fix
// bad data, and the next Validate re-parses from scratch.
func (s Session) WithFiles(epics, stories File) Session {
	s = s.clone()
	s.EpicFile = epics
	s.StoryFile = stories
	return s
}

// WithCalendar records the target financial year and quarter along with
// the quarters available for that year.
func (s Session) WithCalendar(fyID, quarter string, available []string) Session {
	s = s.clone()
	s.FinancialYearID = fyID
	s.Quarter = quarter
	s.AvailableQuarters = append([]string(nil), available...)
	return s
}

// advanceFrom resolves a forward transition anchored at its source step.
// A session positioned anywhere else refuses to advance: each transition
// belongs to exactly one step, so steps can never be skipped.
func (s Session) advanceFrom(source Step) (Step, error) {
	if s.Step != source {
		return s.Step, fmt.Errorf("session is at the %s step, not %s", s.Step, source)
	}
	return nextStep(source, EventAdvance, nil)
}

// refuse records a rejected transition as a structural issue against the
// step the session is stuck at. Callers must hold a cloned session.
func (s Session) refuse(err error) {
	s.Issues[s.Step] = append(s.Issues[s.Step], imports.Issue{
		Severity: imports.SeverityStructural, Message: err.Error(),
	})
}

// uploadGate checks the upload-to-validate preconditions.
func (s Session) uploadGate() imports.IssueList {
	var issues imports.IssueList
	if s.EpicFile.Text == "" {
		issues.Structural("no epic file uploaded")
	}
	if s.StoryFile.Text == "" {
		issues.Structural("no story file uploaded")
	}
	if s.FinancialYearID == "" {
		issues.Structural("no financial year selected")
	}
	if s.Quarter == "" {
		issues.Structural("no quarter selected")
	}
	if len(s.AvailableQuarters) == 0 {
		issues.Structural("no quarters available for the selected financial year")
	}
	return issues
}

// Validate is the upload-to-validate transition: it checks the gate,
// then parses both files. A structural parse failure keeps the session
// at the upload step with the errors attached; row-level failures
// proceed with the surviving rows and retained issues.
func (s Session) Validate() Session {
	s = s.clone()

	next, err := s.advanceFrom(StepUpload)
	if err != nil {
		s.refuse(err)
		return s
	}

	if gate := s.uploadGate(); len(gate) > 0 {
		s.Issues[StepUpload] = append(s.Issues[StepUpload], gate...)
		return s
	}

	epicRes := imports.ParseTable(s.EpicFile.Text, imports.EpicStorySchema)
	storyRes := imports.ParseTable(s.StoryFile.Text, imports.StorySchema)

	issues := append(imports.IssueList{}, epicRes.Issues...)
	issues = append(issues, storyRes.Issues...)

	structural := epicRes.Issues.HasStructural() || storyRes.Issues.HasStructural()
	// A file whose every row failed required-field validation is treated
	// as structurally broken rather than continuing with nothing.
	if !structural && len(epicRes.Rows) == 0 {
		issues.Structural("epic file %q produced no usable rows", s.EpicFile.Name)
		structural = true
	}
	if !structural && len(storyRes.Rows) == 0 {
		issues.Structural("story file %q produced no usable rows", s.StoryFile.Name)
		structural = true
	}
	s.Issues[StepValidate] = issues
	if structural {
		return s
	}

	s.Step = next
	s.Epics = imports.EpicRecordsFromRows(epicRes.Rows)
	s.Stories = imports.StoryRecordsFromRows(storyRes.Rows)
	return s
}

// Aggregate is the validate→aggregate transition: it folds stories into
// per-team/per-sprint candidates, projects them into allocation results,
// and cross-checks against reference data.
func (s Session) Aggregate(teams *allocation.TeamDirectory, epics *allocation.EpicDirectory, classifier *allocation.RunWorkClassifier) Session {
	s = s.clone()

	next, err := s.advanceFrom(StepValidate)
	if err != nil {
		s.refuse(err)
		return s
	}

	aggregates, aggIssues := allocation.AggregateTeamSprintData(s.Epics, s.Stories)
	results := allocation.CalculateAllocationPercentages(aggregates, classifier)
	outcome := allocation.Validate(results, teams, epics)

	s.Step = next
	s.Aggregates = aggregates
	s.Valid = outcome.Valid
	s.Issues[StepAggregate] = append(append(imports.IssueList{}, aggIssues...), outcome.Issues...)
	return s
}

// Resolve is the aggregate→resolve transition. Manual reconciliation of
// unmatched epics and teams is reserved for this step; it currently
// passes the working set through untouched.
func (s Session) Resolve() Session {
	s = s.clone()
	next, err := s.advanceFrom(StepAggregate)
	if err != nil {
		s.refuse(err)
		return s
	}
	s.Step = next
	return s
}

// Preview is the resolve→preview transition. The preview step exposes
// Valid for display; nothing is recomputed.
func (s Session) Preview() Session {
	s = s.clone()
	next, err := s.advanceFrom(StepResolve)
	if err != nil {
		s.refuse(err)
		return s
	}
	s.Step = next
	return s
}

// Back navigates one step backward, preserving all entered selections and
// parsed data. From the first step it is a no-op.
func (s Session) Back() Session {
	s = s.clone()
	next, err := nextStep(s.Step, EventBack, nil)
	if err != nil {
		return s
	}
	s.Step = next
	return s
}

// StepIssues returns the issues recorded at a step.
func (s Session) StepIssues(step Step) imports.IssueList {
	return s.Issues[step]
}

// AllIssues flattens the per-step issues in step order.
func (s Session) AllIssues() imports.IssueList {
	var out imports.IssueList
	for _, step := range Order() {
		out = append(out, s.Issues[step]...)
	}
	return out
}

// clone copies the session's mutable parts so transitions never alias the
// previous value's issue map.
func (s Session) clone() Session {
	issues := make(map[Step]imports.IssueList, len(s.Issues))
	for k, v := range s.Issues {
		issues[k] = append(imports.IssueList{}, v...)
	}
	s.Issues = issues
	return s
}

// ExportRecord is one emitted allocation: a validated result expanded to
// a concrete iteration cycle, with the team resolved to its ID.
type ExportRecord struct {
	ID          string              `json:"id"`
	BatchID     string              `json:"batchId"`
	TeamID      string              `json:"teamId"`
	TeamName    string              `json:"teamName"`
	EpicName    string              `json:"epicName"`
	EpicType    allocation.EpicType `json:"epicType"`
	CycleID     string              `json:"cycleId"`
	CycleName   string              `json:"cycleName"`
	Sprint      string              `json:"sprint"`
	Percentage  int                 `json:"percentage"`
	StoryPoints float64             `json:"storyPoints"`
}

// ConfirmReport summarizes a confirm run.
type ConfirmReport struct {
	Records    int `json:"records"`
	Iterations int `json:"iterations"`
	// RejectedTeams counts results dropped because their team no longer
	// resolved to an ID at confirm time. The validator has already
	// dropped unknown teams, so a nonzero count means reference data
	// changed between validate and confirm.
	RejectedTeams int `json:"rejectedTeams"`
}

// Confirm expands each accepted result across every iteration cycle in
// the selected quarter, one record per (iteration, team, epic). Rows
// whose team cannot be resolved to an ID are rejected and counted
// rather than emitted with a dangling empty teamId. Only valid at the
// preview step.
func (s Session) Confirm(resolver *calendar.Resolver, cycles []calendar.Cycle, fys []calendar.FinancialYear, teams *allocation.TeamDirectory) ([]ExportRecord, ConfirmReport, error) {
	var report ConfirmReport

	if s.Step != StepPreview {
		return nil, report, &NotReadyError{Step: s.Step}
	}

	iterations := resolver.IterationsInQuarter(cycles, s.FinancialYearID, s.Quarter, fys)
	report.Iterations = len(iterations)

	var out []ExportRecord
	for _, r := range s.Valid {
		team, ok := teams.Find(r.TeamName)
		if !ok {
			report.RejectedTeams++
			continue
		}
		for _, it := range iterations {
			out = append(out, ExportRecord{
				ID:          uuid.NewString(),
				BatchID:     s.BatchID,
				TeamID:      team.ID,
				TeamName:    r.TeamName,
				EpicName:    r.EpicName,
				EpicType:    r.EpicType,
				CycleID:     it.ID,
				CycleName:   it.Name,
				Sprint:      r.Sprint,
				Percentage:  r.Percentage,
				StoryPoints: r.StoryPoints,
			})
		}
	}

	report.Records = len(out)
	return out, report, nil
}

// NotReadyError reports a confirm attempted before the preview step.
type NotReadyError struct {
	Step Step
}

func (e *NotReadyError) Error() string {
	return "cannot confirm from the " + string(e.Step) + " step"
}
