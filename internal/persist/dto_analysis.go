package persist

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/autoprep/internal/core"
)

// IssuesDetected counts detected problems. The canonical encoding is
// snake_case; camelCase keys are accepted when decoding. Keys other than
// the known counts are kept in Extra and written back unchanged.
type IssuesDetected struct {
	MissingValues int
	DuplicateRows int
	Extra         map[string]json.RawMessage
}

var issueKeys = [...][2]string{
	{"missing_values", "missingValues"},
	{"duplicate_rows", "duplicateRows"},
}

func (i *IssuesDetected) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var counts [len(issueKeys)]int
	for n, keys := range issueKeys {
		v, err := firstInt(raw, keys[0], keys[1])
		if err != nil {
			return err
		}
		counts[n] = v
		delete(raw, keys[0])
		delete(raw, keys[1])
	}
	*i = IssuesDetected{MissingValues: counts[0], DuplicateRows: counts[1]}
	if len(raw) > 0 {
		i.Extra = raw
	}
	return nil
}

func (i IssuesDetected) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.Extra)+2)
	for k, v := range i.Extra {
		out[k] = v
	}
	out["missing_values"] = i.MissingValues
	if i.DuplicateRows != 0 {
		out["duplicate_rows"] = i.DuplicateRows
	}
	return json.Marshal(out)
}

// firstInt decodes the first of keys present in raw.
func firstInt(raw map[string]json.RawMessage, keys ...string) (int, error) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		var n int
		if err := json.Unmarshal(v, &n); err != nil {
			return 0, fmt.Errorf("issues_detected.%s: %w", k, err)
		}
		return n, nil
	}
	return 0, nil
}

// AnalysisInput is the client-side shape of an analysis save.
type AnalysisInput struct {
	QualityScore   float64         `json:"quality_score" validate:"gte=0,lte=100"`
	IssuesDetected IssuesDetected  `json:"issues_detected"`
	ColumnAnalysis json.RawMessage `json:"column_analysis,omitempty"`
	AIInsights     json.RawMessage `json:"ai_insights,omitempty"`
}

// Analysis is a stored analysis result as the backend returns it. The
// backend writes some summaries itself, so both parts stay raw.
type Analysis struct {
	ID        string          `json:"id"`
	Summary   json.RawMessage `json:"summary"`
	Details   json.RawMessage `json:"details"`
	CreatedAt string          `json:"created_at,omitempty"`
}

type analysisSummary struct {
	QualityScore   float64        `json:"quality_score"`
	IssuesDetected IssuesDetected `json:"issues_detected"`
}

type analysisDetails struct {
	ColumnAnalysis json.RawMessage `json:"column_analysis,omitempty"`
	AIInsights     json.RawMessage `json:"ai_insights,omitempty"`
}

// analysisPayload is the body the backend accepts for an analysis.
type analysisPayload struct {
	Summary analysisSummary `json:"summary"`
	Details analysisDetails `json:"details"`
}

func (in AnalysisInput) toPayload() analysisPayload {
	return analysisPayload{
		Summary: analysisSummary{
			QualityScore:   in.QualityScore,
			IssuesDetected: in.IssuesDetected,
		},
		Details: analysisDetails{
			ColumnAnalysis: in.ColumnAnalysis,
			AIInsights:     in.AIInsights,
		},
	}
}

// Input converts a stored analysis back to the client-side shape. Parts
// the backend stored in another shape, such as the plain text summary of
// an audit, decode to zero values.
func (a Analysis) Input() (AnalysisInput, error) {
	var in AnalysisInput
	if isObject(a.Summary) {
		var s analysisSummary
		if err := json.Unmarshal(a.Summary, &s); err != nil {
			return in, fmt.Errorf("decode analysis summary: %w", err)
		}
		in.QualityScore = s.QualityScore
		in.IssuesDetected = s.IssuesDetected
	}
	if isObject(a.Details) {
		var d analysisDetails
		if err := json.Unmarshal(a.Details, &d); err != nil {
			return in, fmt.Errorf("decode analysis details: %w", err)
		}
		in.ColumnAnalysis = d.ColumnAnalysis
		in.AIInsights = d.AIInsights
	}
	return in, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// NewAnalysisInput builds the analysis saved alongside an upload. The
// quality score is stored as a fraction of one.
func NewAnalysisInput(s core.Summary, stats []core.ColumnStat) (AnalysisInput, error) {
	cols, err := json.Marshal(stats)
	if err != nil {
		return AnalysisInput{}, fmt.Errorf("encode column analysis: %w", err)
	}
	return AnalysisInput{
		QualityScore:   float64(s.QualityScore) / 100,
		IssuesDetected: IssuesDetected{MissingValues: s.MissingCellCount, DuplicateRows: s.DuplicateRows},
		ColumnAnalysis: cols,
		AIInsights:     json.RawMessage(`{"status":"completed"}`),
	}, nil
}
