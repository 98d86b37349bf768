package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Pre-compiled regex for numeric literals (avoids recompilation on each cell)
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ParseWarning records a source line the parser skipped or adjusted.
// Warnings never abort parsing.
type ParseWarning struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// Parse converts CSV text into a Table.
//
// The first record supplies the headers. Every later non-blank line becomes
// one row; cells whose trimmed text is a numeric literal become numbers,
// empty cells become missing and everything else is kept verbatim as a
// string. Lines that cannot be parsed, or whose field count differs from
// the header, are skipped and reported as warnings.
func Parse(text string) (Table, []ParseWarning) {
	data := normalizeInput([]byte(text))

	empty := Table{Headers: []string{}, Rows: []Row{}}
	if len(bytes.TrimSpace(data)) == 0 {
		return empty, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var (
		warnings []ParseWarning
		headers  []string
		rows     = []Row{}
	)

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				warnings = append(warnings, ParseWarning{Message: fmt.Sprintf("read aborted: %v", err)})
				break
			}
			warnings = append(warnings, ParseWarning{Line: pe.StartLine, Message: pe.Err.Error()})
			continue
		}

		line, _ := r.FieldPos(0)

		if isBlankRecord(rec) {
			continue
		}

		if headers == nil {
			var dup []ParseWarning
			headers, dup = uniqueHeaders(rec, line)
			warnings = append(warnings, dup...)
			continue
		}

		if len(rec) != len(headers) {
			warnings = append(warnings, ParseWarning{
				Line:    line,
				Message: fmt.Sprintf("row has %d fields, expected %d", len(rec), len(headers)),
			})
			continue
		}

		row := make(Row, len(headers))
		for i, h := range headers {
			row[h] = inferValue(rec[i])
		}
		rows = append(rows, row)
	}

	if headers == nil {
		return empty, warnings
	}
	return Table{Headers: headers, Rows: rows}, warnings
}

// ParseReader reads at most limit bytes from r and parses them. A limit of
// zero or less reads everything.
func ParseReader(r io.Reader, limit int64) (Table, []ParseWarning, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, nil, fmt.Errorf("read csv: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return Table{}, nil, fmt.Errorf("file too large: exceeds %d bytes", limit)
	}
	t, warnings := Parse(string(data))
	return t, warnings, nil
}

// maxExactInt is the largest integer a float64 holds without rounding.
const maxExactInt = 1<<53 - 1

// inferValue converts a raw CSV field into a typed cell. Integer literals
// too large to hold exactly stay strings so IDs survive a round trip.
func inferValue(raw string) Value {
	if raw == "" {
		return Missing()
	}
	trimmed := strings.TrimSpace(raw)
	if numericRegex.MatchString(trimmed) {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			if math.Abs(f) > maxExactInt && !strings.ContainsAny(trimmed, ".eE") {
				return String(raw)
			}
			return Number(f)
		}
	}
	return String(raw)
}

// isBlankRecord reports whether a record came from a line holding nothing
// but whitespace. A lone quoted empty field ("") is not blank: it is how a
// single-column row with a missing value is written.
func isBlankRecord(rec []string) bool {
	return len(rec) == 1 && rec[0] != "" && strings.TrimSpace(rec[0]) == ""
}

// uniqueHeaders suffixes repeated header names with _1, _2, ... so that
// every column can be addressed by name. The first occurrence of a name
// keeps it, and a suffix never takes a name another column already has.
func uniqueHeaders(rec []string, line int) ([]string, []ParseWarning) {
	headers := make([]string, len(rec))
	taken := make(map[string]bool, len(rec))
	for _, h := range rec {
		taken[h] = true
	}
	first := make(map[string]bool, len(rec))
	var warnings []ParseWarning

	for i, h := range rec {
		if !first[h] {
			first[h] = true
			headers[i] = h
			continue
		}
		name := h
		for n := 1; taken[name]; n++ {
			name = h + "_" + strconv.Itoa(n)
		}
		warnings = append(warnings, ParseWarning{
			Line:    line,
			Message: fmt.Sprintf("duplicate header %q renamed to %q", h, name),
		})
		taken[name] = true
		headers[i] = name
	}
	return headers, warnings
}
