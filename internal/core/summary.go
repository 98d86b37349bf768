package core

import (
	"math"
	"strconv"
	"strings"
)

// maxSampleValues caps ColumnStat.SampleValues.
const maxSampleValues = 3

// Summary is the aggregate data-quality view of a table.
type Summary struct {
	RowCount         int `json:"row_count"`
	ColCount         int `json:"col_count"`
	MissingCellCount int `json:"missing_cells"`
	DuplicateRows    int `json:"duplicate_rows"`
	QualityScore     int `json:"quality_score"`
}

// TotalCells returns rows × columns.
func (s Summary) TotalCells() int {
	return s.RowCount * s.ColCount
}

// ColumnStat describes one column of a table.
type ColumnStat struct {
	Name         string   `json:"name"`
	IsNumeric    bool     `json:"is_numeric"`
	MissingCount int      `json:"missing"`
	UniqueCount  int      `json:"uniques"`
	SampleValues []string `json:"sample"`
}

// Summarize computes row, column, missing-cell and duplicate-row counts
// plus the quality score. It is a pure function of t.
func Summarize(t Table) Summary {
	s := Summary{
		RowCount: len(t.Rows),
		ColCount: len(t.Headers),
	}
	seen := make(map[string]struct{}, len(t.Rows))
	for _, r := range t.Rows {
		for _, h := range t.Headers {
			if r[h].IsMissing() {
				s.MissingCellCount++
			}
		}
		key := rowKey(t.Headers, r)
		if _, dup := seen[key]; dup {
			s.DuplicateRows++
		} else {
			seen[key] = struct{}{}
		}
	}
	s.QualityScore = QualityScore(s.MissingCellCount, s.TotalCells())
	return s
}

// rowKey encodes the header-ordered cells of r. Two rows share a key only
// when every cell has the same kind and text.
func rowKey(headers []string, r Row) string {
	var b strings.Builder
	for _, h := range headers {
		v := r[h]
		b.WriteByte(byte('0' + v.Kind()))
		text := v.Text()
		b.WriteString(strconv.Itoa(len(text)))
		b.WriteByte(':')
		b.WriteString(text)
	}
	return b.String()
}

// QualityScore returns round(clamp(100 - 100*missing/total, 0, 100)).
// An empty table (total == 0) scores 100.
func QualityScore(missing, total int) int {
	if total <= 0 {
		return 100
	}
	pct := 100 - float64(missing)/float64(total)*100
	pct = math.Max(0, math.Min(100, pct))
	// Half-up rounding, matching the score shown to users in the browser.
	return int(math.Floor(pct + 0.5))
}

// ColumnStats returns one ColumnStat per header, in header order.
func ColumnStats(t Table) []ColumnStat {
	stats := make([]ColumnStat, len(t.Headers))
	for i, h := range t.Headers {
		stats[i] = columnStat(h, t.Column(h))
	}
	return stats
}

func columnStat(name string, values []Value) ColumnStat {
	cs := ColumnStat{
		Name:         name,
		IsNumeric:    true,
		SampleValues: []string{},
	}
	uniques := make(map[string]struct{})

	for _, v := range values {
		if v.IsMissing() {
			cs.MissingCount++
			continue
		}
		if !v.IsNumber() {
			cs.IsNumeric = false
		}
		text := v.Text()
		uniques[text] = struct{}{}
		if len(cs.SampleValues) < maxSampleValues {
			cs.SampleValues = append(cs.SampleValues, text)
		}
	}

	cs.UniqueCount = len(uniques)
	return cs
}

// NumericColumns returns the names of numeric columns, in order.
func NumericColumns(stats []ColumnStat) []string {
	var out []string
	for _, c := range stats {
		if c.IsNumeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// CategoricalColumns returns the names of non-numeric columns, in order.
func CategoricalColumns(stats []ColumnStat) []string {
	var out []string
	for _, c := range stats {
		if !c.IsNumeric {
			out = append(out, c.Name)
		}
	}
	return out
}
