package imports

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// RawRow maps column names to cell values for one CSV line.
type RawRow map[string]string

// ParseResult carries the surviving rows and every issue detected while
// parsing. Rows and Issues are both populated on partial failure; a
// structural issue means Rows should not be trusted.
type ParseResult struct {
	Rows   []RawRow
	Issues IssueList
}

// ParseTable parses delimited text against a schema. The first line is the
// header; fields map positionally to header names, honoring quoted-field
// CSV semantics (escaped quotes, embedded commas and newlines). Rows
// missing a required value after fill-down are rejected individually;
// the parse as a whole only fails structurally when a required column is
// absent from the header.
func ParseTable(text string, schema Schema) ParseResult {
	var res ParseResult

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		res.Issues.Structural("%s: cannot read header: %v", schema.Name, err)
		return res
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\uFEFF"))
	}

	headerIndex := make(map[string]int, len(header))
	for i, name := range header {
		headerIndex[name] = i
	}
	for _, req := range schema.RequiredColumns() {
		if _, ok := headerIndex[req]; !ok {
			res.Issues.Structural("%s: required column %q missing from header", schema.Name, req)
		}
	}
	if res.Issues.HasStructural() {
		return res
	}

	fill := make(map[string]string) // last seen non-empty fill-down values
	rowNum := 1                     // header occupies row 1

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			res.Issues.RowError(rowNum, "%s: malformed line: %v", schema.Name, err)
			continue
		}
		if isBlank(record) {
			continue
		}
		if len(record) > len(header) {
			res.Issues.Warn(rowNum, "%s: %d extra fields ignored", schema.Name, len(record)-len(header))
			record = record[:len(header)]
		}

		row := make(RawRow, len(schema.Columns))
		for _, col := range schema.Columns {
			idx, ok := headerIndex[col.Name]
			var val string
			if ok && idx < len(record) {
				val = strings.TrimSpace(record[idx])
			}
			if col.FillDown {
				if val == "" {
					val = fill[col.Name]
				} else {
					fill[col.Name] = val
				}
			}
			row[col.Name] = val
		}

		rejected := false
		for _, req := range schema.RequiredColumns() {
			if row[req] == "" {
				res.Issues.RowError(rowNum, "%s: required field %q is empty", schema.Name, req)
				rejected = true
			}
		}
		if rejected {
			continue
		}

		for _, col := range schema.Columns {
			if !col.Numeric || row[col.Name] == "" {
				continue
			}
			if _, ok := parseNumber(row[col.Name]); !ok {
				res.Issues.Warn(rowNum, "%s: %q is not numeric in %q, using 0", schema.Name, row[col.Name], col.Name)
			}
		}

		res.Rows = append(res.Rows, row)
	}

	return res
}

// Number returns the numeric value of a cell, defaulting to 0 on garbage.
// The warning for non-numeric content is recorded at parse time.
func (r RawRow) Number(column string) float64 {
	n, _ := parseNumber(r[column])
	return n
}

// parseNumber parses integers and floats leniently. Surrounding and
// grouping spaces are tolerated. Commas are ambiguous across locales:
// when a dot is present, or every comma-separated group after the first
// has exactly three digits, commas are thousands separators ("1,250" is
// 1250); any other comma is a decimal separator ("1,5" is 1.5).
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") || commasAreGrouping(s) {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// commasAreGrouping reports whether every comma-separated group after
// the first has exactly three digits.
func commasAreGrouping(s string) bool {
	parts := strings.Split(s, ",")
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
