package core

import (
	"fmt"
	"math"
	"sort"
)

// minAuditRows is the smallest table the outlier audit looks at.
const minAuditRows = 5

// iqrFence scales the interquartile range into the outlier fences.
const iqrFence = 1.5

// Audit is the result of an outlier audit over a table.
type Audit struct {
	Count   int    `json:"audit_count"`
	Rows    []int  `json:"outlier_indices"`
	Summary string `json:"summary"`
}

// AuditOutliers flags rows holding a value outside the Tukey fences
// (Q1 - 1.5*IQR, Q3 + 1.5*IQR) of any numeric column. Row indices are
// zero-based and ascending. Tables under five rows are never flagged.
func AuditOutliers(t Table) Audit {
	flagged := make(map[int]bool)
	if len(t.Rows) >= minAuditRows {
		for _, name := range NumericColumns(ColumnStats(t)) {
			for _, i := range columnOutliers(t.Column(name)) {
				flagged[i] = true
			}
		}
	}

	rows := make([]int, 0, len(flagged))
	for i := range flagged {
		rows = append(rows, i)
	}
	sort.Ints(rows)

	return Audit{
		Count:   len(rows),
		Rows:    rows,
		Summary: fmt.Sprintf("Audit found %d anomalies.", len(rows)),
	}
}

// columnOutliers returns the indices of values outside the fences.
// Missing values are skipped.
func columnOutliers(values []Value) []int {
	var nums []float64
	for _, v := range values {
		if f, ok := v.Float(); ok {
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 {
		return nil
	}
	sort.Float64s(nums)

	q1 := quantile(nums, 0.25)
	q3 := quantile(nums, 0.75)
	iqr := q3 - q1
	lo, hi := q1-iqrFence*iqr, q3+iqrFence*iqr

	var out []int
	for i, v := range values {
		if f, ok := v.Float(); ok && (f < lo || f > hi) {
			out = append(out, i)
		}
	}
	return out
}

// quantile interpolates the p-quantile of sorted.
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lower, upper := math.Floor(pos), math.Ceil(pos)
	if lower == upper {
		return sorted[int(pos)]
	}
	frac := pos - lower
	return sorted[int(lower)] + frac*(sorted[int(upper)]-sorted[int(lower)])
}
