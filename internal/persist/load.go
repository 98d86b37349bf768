package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/autoprep/internal/core"
)

// ErrNoDatasetRows is returned when a project has no stored rows to load.
var ErrNoDatasetRows = errors.New("no dataset rows stored for this project")

// LoadTable rebuilds the original dataset of project id as a table.
func (s *Service) LoadTable(ctx context.Context, id string) (core.Table, error) {
	detail, err := s.GetProject(ctx, id)
	if err != nil {
		return core.Table{}, err
	}
	d, ok := pickDataset(detail.Datasets)
	if !ok || len(d.Rows) == 0 {
		return core.Table{}, ErrNoDatasetRows
	}
	return d.Table(), nil
}

// SaveResult lists the records written by SaveTable.
type SaveResult struct {
	ProjectID  string `json:"project_id"`
	DatasetID  string `json:"dataset_id"`
	AnalysisID string `json:"analysis_id"`
}

// SaveTable stores t as the original dataset of project pid, keeping at
// most rowLimit rows, followed by its analysis. Summary and column stats
// cover the whole table.
func (s *Service) SaveTable(ctx context.Context, pid string, t core.Table, rowLimit int) (*SaveResult, error) {
	ds, err := s.SaveDataset(ctx, pid, NewDatasetInput(t, rowLimit))
	if err != nil {
		return nil, fmt.Errorf("save dataset: %w", err)
	}

	analysis, err := NewAnalysisInput(core.Summarize(t), core.ColumnStats(t))
	if err != nil {
		return nil, err
	}
	an, err := s.SaveAnalysis(ctx, pid, analysis)
	if err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}

	return &SaveResult{ProjectID: pid, DatasetID: ds.ID, AnalysisID: an.ID}, nil
}

// CreateFromTable creates a project describing t and saves t into it.
func (s *Service) CreateFromTable(ctx context.Context, fileName string, fileSize int64, t core.Table, rowLimit int) (*SaveResult, error) {
	created, err := s.CreateProject(ctx, NewProjectInput(fileName, fileSize, t, s.now()))
	if err != nil {
		return nil, err
	}
	return s.SaveTable(ctx, created.ID, t, rowLimit)
}

// RecordProcessing saves one pipeline run under project pid.
func (s *Service) RecordProcessing(ctx context.Context, pid string, steps []core.Step, before, after core.Summary, elapsed time.Duration) (Created, error) {
	in, err := NewProcessingInput(steps, before, after, elapsed)
	if err != nil {
		return Created{}, err
	}
	return s.SaveProcessing(ctx, pid, in)
}
