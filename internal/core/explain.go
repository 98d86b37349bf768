package core

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

const explanationTitle = "AutoPrep Explanation"

// Canonical rationale sentences, one per cleaning option.
const (
	rationaleTrim        = "- Trimming whitespace removes accidental spaces that can create duplicate categories."
	rationaleRemoveEmpty = "- Removing fully empty rows reduces noise and improves training stability."
	rationaleNumeric     = "- Numeric missing values are filled with the column mean for a simple, explainable baseline."
	rationaleCategorical = "- Categorical missing values are filled with the most frequent category (mode)."
	rationaleNone        = "- No automatic fixes selected; dataset retained as-is."
)

// BuildExplanation renders the plain-text report describing a dataset and
// the cleaning actions chosen for it.
func BuildExplanation(s Summary, stats []ColumnStat, opts CleaningOptions) string {
	lines := []string{
		explanationTitle,
		strings.Repeat("=", len(explanationTitle)),
		fmt.Sprintf("Rows: %d, Columns: %d, Missing cells: %d", s.RowCount, s.ColCount, s.MissingCellCount),
		fmt.Sprintf("Estimated quality score: %d%%", s.QualityScore),
		"",
		"Selected preprocessing actions:",
		"- Trim whitespace: " + yesNo(opts.TrimWhitespace),
		"- Remove empty rows: " + yesNo(opts.RemoveEmptyRows),
		"- Impute numeric mean: " + yesNo(opts.ImputeNumeric),
		"- Impute categorical mode: " + yesNo(opts.ImputeCategorical),
		"",
	}

	if cols := NumericColumns(stats); len(cols) > 0 {
		lines = append(lines, fmt.Sprintf("Numeric columns (%d): %s", len(cols), strings.Join(cols, ", ")))
	}
	if cols := CategoricalColumns(stats); len(cols) > 0 {
		lines = append(lines, fmt.Sprintf("Categorical columns (%d): %s", len(cols), strings.Join(cols, ", ")))
	}

	lines = append(lines, "", "Rationale:")
	if opts.TrimWhitespace {
		lines = append(lines, rationaleTrim)
	}
	if opts.RemoveEmptyRows {
		lines = append(lines, rationaleRemoveEmpty)
	}
	if opts.ImputeNumeric {
		lines = append(lines, rationaleNumeric)
	}
	if opts.ImputeCategorical {
		lines = append(lines, rationaleCategorical)
	}
	if !opts.Any() {
		lines = append(lines, rationaleNone)
	}

	if len(stats) > 0 {
		lines = append(lines, "", "Column profile:", RenderColumnProfile(stats))
	}

	return strings.Join(lines, "\n")
}

// RenderColumnProfile renders per-column stats as a text table.
func RenderColumnProfile(stats []ColumnStat) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Column", "Type", "Missing", "Unique", "Sample"})
	for _, c := range stats {
		kind := "categorical"
		if c.IsNumeric {
			kind = "numeric"
		}
		tw.AppendRow(table.Row{c.Name, kind, c.MissingCount, c.UniqueCount, strings.Join(c.SampleValues, ", ")})
	}
	tw.SetStyle(table.StyleDefault)
	return tw.Render()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
