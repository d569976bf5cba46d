package calendar

import (
	"fmt"
	"time"
)

// FinancialYear is a generated fiscal window. It is derived from the
// configured anchor, never stored: the ID is the ISO start date, which
// makes regeneration deterministic.
type FinancialYear struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the financial year, inclusive.
func (fy FinancialYear) Contains(t time.Time) bool {
	return !t.Before(fy.Start) && !t.After(fy.End)
}

// Anchor is the configured fiscal-year start (month and day), e.g. April 1
// for an AU/UK-style fiscal calendar.
type Anchor struct {
	Month time.Month `yaml:"month"`
	Day   int        `yaml:"day"`
}

// DefaultAnchor is a calendar-year fiscal configuration.
var DefaultAnchor = Anchor{Month: time.January, Day: 1}

// GenerateFinancialYearOptions derives the FY windows for each start year
// in [centerYear-span, centerYear+span]. Each window starts at the anchor
// and ends one year later minus one day. The label is "FY 2024" when the
// window ends in its start year, "FY 2024-2025" when it spans two.
func GenerateFinancialYearOptions(anchor Anchor, centerYear, span int) []FinancialYear {
	if span < 0 {
		span = 0
	}
	out := make([]FinancialYear, 0, 2*span+1)
	for year := centerYear - span; year <= centerYear+span; year++ {
		start := time.Date(year, anchor.Month, anchor.Day, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(1, 0, -1)

		label := fmt.Sprintf("FY %d", year)
		if end.Year() != year {
			label = fmt.Sprintf("FY %d-%d", year, end.Year())
		}

		out = append(out, FinancialYear{
			ID:    start.Format("2006-01-02"),
			Label: label,
			Start: start,
			End:   end,
		})
	}
	return out
}
