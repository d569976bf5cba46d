package calendar

import (
	"regexp"
	"time"
)

// CycleType distinguishes quarter-level from iteration-level cycles.
type CycleType string

const (
	CycleQuarterly CycleType = "quarterly"
	CycleIteration CycleType = "iteration"
)

// Cycle is a planning period from the workspace calendar. Read-only
// reference data for the import pipeline. FinancialYearID is empty on
// legacy records; the resolver falls back to date-range overlap for those.
type Cycle struct {
	ID              string    `yaml:"id" json:"id"`
	Name            string    `yaml:"name" json:"name"`
	Type            CycleType `yaml:"type" json:"type"`
	Start           time.Time `yaml:"start" json:"start"`
	End             time.Time `yaml:"end" json:"end"`
	FinancialYearID string    `yaml:"financialYearId,omitempty" json:"financialYearId,omitempty"`
}

// Contains reports whether t falls inside the cycle, bounds inclusive.
func (c Cycle) Contains(t time.Time) bool {
	return !t.Before(c.Start) && !t.After(c.End)
}

var quarterToken = regexp.MustCompile(`Q[1-4]`)

// QuarterLabel extracts the Q1..Q4 token from the cycle name, or returns
// the empty string when the name carries none.
func (c Cycle) QuarterLabel() string {
	return quarterToken.FindString(c.Name)
}
