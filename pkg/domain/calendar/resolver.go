package calendar

import (
	"sort"
	"time"
)

// Resolver answers calendar questions for the import pipeline: which
// financial year is current, which quarters belong to a financial year,
// and which iteration cycles make up a quarter. The clock is injected so
// "today" is testable.
type Resolver struct {
	anchor Anchor
	span   int
	now    func() time.Time
}

// NewResolver builds a resolver over the given fiscal anchor. A nil now
// func defaults to time.Now.
func NewResolver(anchor Anchor, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{anchor: anchor, span: 3, now: now}
}

// FinancialYearOptions returns the selectable FY windows around the
// current year.
func (r *Resolver) FinancialYearOptions() []FinancialYear {
	return GenerateFinancialYearOptions(r.anchor, r.now().Year(), r.span)
}

// CurrentFinancialYear returns the FY id for today. It prefers the
// financial year recorded on whichever existing cycle contains today;
// legacy calendars without tagging fall back to containment against the
// generated FY windows. Empty string when nothing matches.
func (r *Resolver) CurrentFinancialYear(cycles []Cycle) string {
	today := r.now()

	for _, c := range cycles {
		if c.FinancialYearID != "" && c.Contains(today) {
			return c.FinancialYearID
		}
	}

	for _, fy := range r.FinancialYearOptions() {
		if fy.Contains(today) {
			return fy.ID
		}
	}
	return ""
}

// CurrentQuarter returns the Q1..Q4 label of the quarterly cycle that
// contains today, or the empty string when no quarterly cycle does.
func (r *Resolver) CurrentQuarter(cycles []Cycle) string {
	today := r.now()
	for _, c := range cycles {
		if c.Type == CycleQuarterly && c.Contains(today) {
			if q := c.QuarterLabel(); q != "" {
				return q
			}
		}
	}
	return ""
}

// QuartersForFinancialYear lists the quarter labels available in a
// financial year. The primary strategy is an exact match on the cycle's
// recorded financialYearId; when that yields nothing (legacy data) it
// falls back to date-range overlap against the FY window. Labels are
// deduplicated and returned in ascending quarter order.
func (r *Resolver) QuartersForFinancialYear(cycles []Cycle, fyID string, fys []FinancialYear) []string {
	seen := make(map[string]bool)
	var labels []string
	add := func(c Cycle) {
		q := c.QuarterLabel()
		if q != "" && !seen[q] {
			seen[q] = true
			labels = append(labels, q)
		}
	}

	for _, c := range cycles {
		if c.Type == CycleQuarterly && c.FinancialYearID == fyID {
			add(c)
		}
	}

	if len(labels) == 0 {
		fy, ok := findYear(fys, fyID)
		if ok {
			for _, c := range cycles {
				if c.Type == CycleQuarterly && rangesOverlap(c.Start, c.End, fy.Start, fy.End) {
					add(c)
				}
			}
		}
	}

	sort.Strings(labels)
	return labels
}

// IterationsInQuarter returns the iteration-level cycles whose date range
// overlaps any quarterly cycle carrying the given quarter label within
// the financial year. Results are ordered by start date.
func (r *Resolver) IterationsInQuarter(cycles []Cycle, fyID, quarter string, fys []FinancialYear) []Cycle {
	var quarterlies []Cycle
	for _, c := range cycles {
		if c.Type != CycleQuarterly || c.QuarterLabel() != quarter {
			continue
		}
		if c.FinancialYearID == fyID {
			quarterlies = append(quarterlies, c)
			continue
		}
		if c.FinancialYearID == "" {
			if fy, ok := findYear(fys, fyID); ok && rangesOverlap(c.Start, c.End, fy.Start, fy.End) {
				quarterlies = append(quarterlies, c)
			}
		}
	}

	var out []Cycle
	for _, c := range cycles {
		if c.Type != CycleIteration {
			continue
		}
		for _, q := range quarterlies {
			if rangesOverlap(c.Start, c.End, q.Start, q.End) {
				out = append(out, c)
				break
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// rangesOverlap is the inclusive-overlap test: the ranges intersect when
// either endpoint of [aStart,aEnd] falls inside [bStart,bEnd], or when
// the first range fully covers the second.
func rangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	within := func(t, lo, hi time.Time) bool {
		return !t.Before(lo) && !t.After(hi)
	}
	if within(aStart, bStart, bEnd) || within(aEnd, bStart, bEnd) {
		return true
	}
	return !aStart.After(bStart) && !aEnd.Before(bEnd)
}

func findYear(fys []FinancialYear, id string) (FinancialYear, bool) {
	for _, fy := range fys {
		if fy.ID == id {
			return fy, true
		}
	}
	return FinancialYear{}, false
}
