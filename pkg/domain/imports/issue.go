package imports

import "fmt"

// Severity classifies an import issue.
type Severity string

const (
	// SeverityStructural means the input as a whole is unusable (missing
	// required column, unreadable file). Blocks the current step.
	SeverityStructural Severity = "structural"
	// SeverityRow means a single row was rejected; the batch continues.
	SeverityRow Severity = "row"
	// SeverityWarning means the data was kept but looks suspicious.
	SeverityWarning Severity = "warning"
)

// Issue is a single problem detected while parsing or validating import
// data. Row is 1-based (header is row 1) and 0 when the issue is not tied
// to a specific row.
type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Row      int      `json:"row,omitempty"`
}

func (i Issue) String() string {
	if i.Row > 0 {
		return fmt.Sprintf("row %d: %s", i.Row, i.Message)
	}
	return i.Message
}

// IssueList accumulates issues across pipeline stages.
type IssueList []Issue

// Structural appends a structural issue.
func (l *IssueList) Structural(format string, args ...interface{}) {
	*l = append(*l, Issue{Severity: SeverityStructural, Message: fmt.Sprintf(format, args...)})
}

// RowError appends a row-level issue for the given 1-based row.
func (l *IssueList) RowError(row int, format string, args ...interface{}) {
	*l = append(*l, Issue{Severity: SeverityRow, Message: fmt.Sprintf(format, args...), Row: row})
}

// Warn appends a warning. Pass row 0 when not row-specific.
func (l *IssueList) Warn(row int, format string, args ...interface{}) {
	*l = append(*l, Issue{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...), Row: row})
}

// Errors returns the structural and row-level issues.
func (l IssueList) Errors() []Issue {
	var out []Issue
	for _, i := range l {
		if i.Severity != SeverityWarning {
			out = append(out, i)
		}
	}
	return out
}

// Warnings returns only the warning issues.
func (l IssueList) Warnings() []Issue {
	var out []Issue
	for _, i := range l {
		if i.Severity == SeverityWarning {
			out = append(out, i)
		}
	}
	return out
}

// HasStructural reports whether any issue blocks the current step.
func (l IssueList) HasStructural() bool {
	for _, i := range l {
		if i.Severity == SeverityStructural {
			return true
		}
	}
	return false
}

// Messages flattens the list into display strings.
func (l IssueList) Messages() []string {
	out := make([]string, 0, len(l))
	for _, i := range l {
		out = append(out, i.String())
	}
	return out
}
