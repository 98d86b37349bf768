package core

import (
	"sort"
	"strings"
)

// CleaningOptions toggles the pipeline stages. The zero value disables
// every stage.
type CleaningOptions struct {
	TrimWhitespace    bool `json:"trim_whitespace"`
	RemoveEmptyRows   bool `json:"remove_empty_rows"`
	ImputeNumeric     bool `json:"impute_numeric"`
	ImputeCategorical bool `json:"impute_categorical"`
}

// DefaultCleaningOptions are the options preselected for a fresh dataset.
func DefaultCleaningOptions() CleaningOptions {
	return CleaningOptions{
		TrimWhitespace:  true,
		RemoveEmptyRows: true,
		ImputeNumeric:   true,
	}
}

// Any reports whether at least one stage is enabled.
func (o CleaningOptions) Any() bool {
	return o.TrimWhitespace || o.RemoveEmptyRows || o.ImputeNumeric || o.ImputeCategorical
}

// Stage names used in the transformation log.
const (
	StepTrimWhitespace    = "trim_whitespace"
	StepRemoveEmptyRows   = "remove_empty_rows"
	StepImputeNumeric     = "impute_numeric_mean"
	StepImputeCategorical = "impute_categorical_mode"
)

// Step records what one pipeline stage changed.
type Step struct {
	Name     string   `json:"name"`
	Affected int      `json:"affected"`
	Columns  []string `json:"columns,omitempty"`
}

// OptionsFromSteps returns the options that would log steps. Unknown
// step names are ignored.
func OptionsFromSteps(steps []Step) CleaningOptions {
	var o CleaningOptions
	for _, st := range steps {
		switch st.Name {
		case StepTrimWhitespace:
			o.TrimWhitespace = true
		case StepRemoveEmptyRows:
			o.RemoveEmptyRows = true
		case StepImputeNumeric:
			o.ImputeNumeric = true
		case StepImputeCategorical:
			o.ImputeCategorical = true
		}
	}
	return o
}

// Apply runs the enabled stages in their fixed order and returns the new
// table. The input table is never modified.
func Apply(t Table, opts CleaningOptions) Table {
	out, _ := ApplyWithLog(t, opts)
	return out
}

// ApplyWithLog is Apply plus a log of the stages that ran.
//
// Order: trim, remove empty rows, impute numeric mean, impute categorical
// mode. Column classification for both imputation stages is taken once,
// after the first two stages and before any imputation.
func ApplyWithLog(t Table, opts CleaningOptions) (Table, []Step) {
	var steps []Step
	rows := t.Rows

	if opts.TrimWhitespace {
		var n int
		rows, n = trimRows(rows)
		steps = append(steps, Step{Name: StepTrimWhitespace, Affected: n})
	}

	if opts.RemoveEmptyRows {
		before := len(rows)
		rows = dropEmptyRows(rows)
		steps = append(steps, Step{Name: StepRemoveEmptyRows, Affected: before - len(rows)})
	}

	if opts.ImputeNumeric || opts.ImputeCategorical {
		numeric := classifyColumns(t.Headers, rows)

		if opts.ImputeNumeric {
			var n int
			var cols []string
			rows, n, cols = imputeMean(t.Headers, rows, numeric)
			steps = append(steps, Step{Name: StepImputeNumeric, Affected: n, Columns: cols})
		}
		if opts.ImputeCategorical {
			var n int
			var cols []string
			rows, n, cols = imputeMode(t.Headers, rows, numeric)
			steps = append(steps, Step{Name: StepImputeCategorical, Affected: n, Columns: cols})
		}
	}

	return Table{Headers: cloneHeaders(t.Headers), Rows: cloneRows(rows)}, steps
}

// Trim strips leading and trailing whitespace from every string cell.
func Trim(t Table) Table {
	rows, _ := trimRows(t.Rows)
	return Table{Headers: cloneHeaders(t.Headers), Rows: rows}
}

// RemoveEmptyRows drops rows whose every value is missing.
func RemoveEmptyRows(t Table) Table {
	return Table{Headers: cloneHeaders(t.Headers), Rows: cloneRows(dropEmptyRows(t.Rows))}
}

// ImputeNumericMean fills missing values in numeric columns with the
// column mean.
func ImputeNumericMean(t Table) Table {
	rows, _, _ := imputeMean(t.Headers, t.Rows, classifyColumns(t.Headers, t.Rows))
	return Table{Headers: cloneHeaders(t.Headers), Rows: cloneRows(rows)}
}

// ImputeCategoricalMode fills missing values in non-numeric columns with
// the most frequent value.
func ImputeCategoricalMode(t Table) Table {
	rows, _, _ := imputeMode(t.Headers, t.Rows, classifyColumns(t.Headers, t.Rows))
	return Table{Headers: cloneHeaders(t.Headers), Rows: cloneRows(rows)}
}

// trimRows returns trimmed copies of rows and the number of cells changed.
func trimRows(rows []Row) ([]Row, int) {
	if rows == nil {
		return nil, 0
	}
	out := make([]Row, len(rows))
	changed := 0
	for i, r := range rows {
		nr := make(Row, len(r))
		for k, v := range r {
			if s, ok := v.Str(); ok {
				trimmed := strings.TrimSpace(s)
				if trimmed != s {
					changed++
				}
				v = String(trimmed)
			}
			nr[k] = v
		}
		out[i] = nr
	}
	return out, changed
}

func dropEmptyRows(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if !r.IsEmpty() {
			out = append(out, r)
		}
	}
	return out
}

// classifyColumns marks a column numeric when every non-missing value is a
// number. Columns with no values at all count as numeric.
func classifyColumns(headers []string, rows []Row) map[string]bool {
	numeric := make(map[string]bool, len(headers))
	for _, h := range headers {
		isNum := true
		for _, r := range rows {
			v := r[h]
			if !v.IsMissing() && !v.IsNumber() {
				isNum = false
				break
			}
		}
		numeric[h] = isNum
	}
	return numeric
}

// imputeMean fills missing cells of numeric columns with the column mean,
// or 0 when the column holds no numbers.
func imputeMean(headers []string, rows []Row, numeric map[string]bool) ([]Row, int, []string) {
	out := shallowRows(rows)
	filled := 0
	var cols []string

	for _, h := range headers {
		if !numeric[h] {
			continue
		}

		var sum float64
		var n int
		for _, r := range out {
			if f, ok := r[h].Float(); ok {
				sum += f
				n++
			}
		}
		mean := 0.0
		if n > 0 {
			mean = sum / float64(n)
		}

		colFilled := 0
		for i, r := range out {
			if r[h].IsMissing() {
				out[i] = withValue(r, h, Number(mean))
				colFilled++
			}
		}
		if colFilled > 0 {
			cols = append(cols, h)
			filled += colFilled
		}
	}
	return out, filled, cols
}

// imputeMode fills missing cells of categorical columns with the most
// frequent stringified value. Ties go to the value seen first.
func imputeMode(headers []string, rows []Row, numeric map[string]bool) ([]Row, int, []string) {
	out := shallowRows(rows)
	filled := 0
	var cols []string

	for _, h := range headers {
		if numeric[h] {
			continue
		}

		mode, ok := columnMode(out, h)
		if !ok {
			continue
		}

		colFilled := 0
		for i, r := range out {
			if r[h].IsMissing() {
				out[i] = withValue(r, h, String(mode))
				colFilled++
			}
		}
		if colFilled > 0 {
			cols = append(cols, h)
			filled += colFilled
		}
	}
	return out, filled, cols
}

// columnMode returns the most frequent non-missing value of column h.
func columnMode(rows []Row, h string) (string, bool) {
	type entry struct {
		key   string
		count int
	}

	index := make(map[string]int)
	var freq []entry
	for _, r := range rows {
		v := r[h]
		if v.IsMissing() {
			continue
		}
		key := v.Text()
		if i, ok := index[key]; ok {
			freq[i].count++
			continue
		}
		index[key] = len(freq)
		freq = append(freq, entry{key: key, count: 1})
	}
	if len(freq) == 0 {
		return "", false
	}

	sort.SliceStable(freq, func(i, j int) bool {
		return freq[i].count > freq[j].count
	})
	return freq[0].key, true
}

// withValue returns a copy of r with column h set to v.
func withValue(r Row, h string, v Value) Row {
	nr := r.Clone()
	nr[h] = v
	return nr
}

func shallowRows(rows []Row) []Row {
	return append([]Row(nil), rows...)
}

// cloneRows deep-copies rows. A nil slice stays nil.
func cloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

func cloneHeaders(h []string) []string {
	if h == nil {
		return nil
	}
	return append([]string{}, h...)
}
