package persist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/autoprep/internal/backend"
	"github.com/JonMunkholm/autoprep/internal/core"
)

// auditRecord is an audit as stored with the analysis results: a plain
// text summary plus the flagged row indices.
type auditRecord struct {
	Summary string       `json:"summary"`
	Details auditDetails `json:"details"`
}

type auditDetails struct {
	OutlierIndices []int `json:"outlier_indices"`
}

// Audit runs the outlier audit over the stored dataset of project pid and
// records the result as an analysis entry.
func (s *Service) Audit(ctx context.Context, pid string) (*core.Audit, error) {
	if s.Remote() {
		return s.remoteAudit(ctx, pid)
	}

	tbl, err := s.LoadTable(ctx, pid)
	if err != nil {
		return nil, err
	}
	audit := core.AuditOutliers(tbl)

	rec := auditRecord{Summary: audit.Summary, Details: auditDetails{OutlierIndices: audit.Rows}}
	if _, err := s.localAppend(ctx, pid, analysisKey(pid), rec); err != nil {
		return nil, fmt.Errorf("save audit: %w", err)
	}
	return &audit, nil
}

func (s *Service) remoteAudit(ctx context.Context, pid string) (*core.Audit, error) {
	var audit core.Audit
	if err := s.client.Post(ctx, projectPath(pid)+"/analysis/audit", struct{}{}, &audit); err != nil {
		return nil, fmt.Errorf("audit project: %w", err)
	}
	if audit.Rows == nil {
		audit.Rows = []int{}
	}
	return &audit, nil
}

// PipelineScript returns the pandas script reproducing the latest
// processing run of project pid. Without a recorded run the script only
// reads and writes the data.
func (s *Service) PipelineScript(ctx context.Context, pid string) ([]byte, error) {
	if s.Remote() {
		body, err := s.client.GetRaw(ctx, projectPath(pid)+"/pipeline/download")
		if err != nil {
			if backend.IsNotFound(err) {
				return nil, fmt.Errorf("%w: %w", ErrProjectNotFound, err)
			}
			return nil, fmt.Errorf("download pipeline: %w", err)
		}
		return body, nil
	}

	detail, err := s.GetProject(ctx, pid)
	if err != nil {
		return nil, err
	}
	var stats []core.ColumnStat
	if d, ok := pickDataset(detail.Datasets); ok {
		stats = core.ColumnStats(d.Table())
	}
	var opts core.CleaningOptions
	if len(detail.ProcessingHistory) > 0 {
		opts = detail.ProcessingHistory[0].Options()
	}
	return []byte(core.BuildPipelineScript(stats, opts) + "\n"), nil
}

// Options recovers the cleaning options from the recorded steps. A step
// is either a step object or a bare step name; anything else is skipped.
func (p ProcessingRecord) Options() core.CleaningOptions {
	var items []json.RawMessage
	if err := json.Unmarshal(p.Steps, &items); err != nil {
		return core.CleaningOptions{}
	}
	steps := make([]core.Step, 0, len(items))
	for _, it := range items {
		var st core.Step
		if err := json.Unmarshal(it, &st); err == nil {
			steps = append(steps, st)
			continue
		}
		var name string
		if err := json.Unmarshal(it, &name); err == nil {
			steps = append(steps, core.Step{Name: name})
		}
	}
	return core.OptionsFromSteps(steps)
}
