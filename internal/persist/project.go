package persist

import (
	"fmt"
	"time"

	"github.com/JonMunkholm/autoprep/internal/core"
)

// Project is a project summary as the backend returns it.
type Project struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Meta        map[string]any `json:"meta"`
	CreatedAt   string         `json:"created_at,omitempty"`
}

// ProjectDetail is a project with its nested collections, the shape of
// GET /api/projects/{id}.
type ProjectDetail struct {
	Project
	Datasets          []Dataset          `json:"datasets"`
	AnalysisResults   []Analysis         `json:"analysis_results"`
	ProcessingHistory []ProcessingRecord `json:"processing_history"`
}

// ProjectInput is the body of a project create request.
type ProjectInput struct {
	Name             string         `json:"name,omitempty" validate:"max=200"`
	Description      *string        `json:"description,omitempty" validate:"omitempty,max=2000"`
	Meta             map[string]any `json:"meta,omitempty"`
	OriginalFilename string         `json:"original_filename,omitempty" validate:"max=255"`
	FileSize         int64          `json:"file_size,omitempty" validate:"gte=0"`
	ColumnsCount     int            `json:"columns_count,omitempty" validate:"gte=0"`
	RowsCount        int            `json:"rows_count,omitempty" validate:"gte=0"`
}

// ProjectUpdate is a partial update. Nil fields are left unchanged.
type ProjectUpdate struct {
	Name        *string        `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=2000"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// Created is the reply to any create call.
type Created struct {
	ID string `json:"id"`
}

// DefaultProjectName is used when a project is created without a name.
const DefaultProjectName = "Untitled Project"

// withFileMeta returns in with the upload facts folded into Meta when no
// Meta was given, so they survive a backend that only stores name,
// description and meta.
func (in ProjectInput) withFileMeta() ProjectInput {
	if in.Meta != nil {
		return in
	}
	if in.OriginalFilename == "" && in.FileSize == 0 && in.ColumnsCount == 0 && in.RowsCount == 0 {
		return in
	}
	in.Meta = map[string]any{
		"original_filename": in.OriginalFilename,
		"file_size":         in.FileSize,
		"columns_count":     in.ColumnsCount,
		"rows_count":        in.RowsCount,
	}
	return in
}

// NewProjectInput describes a project created for an uploaded table.
func NewProjectInput(fileName string, fileSize int64, t core.Table, now time.Time) ProjectInput {
	desc := fmt.Sprintf("Processed dataset with %d rows and %d columns", len(t.Rows), len(t.Headers))
	return ProjectInput{
		Name:             "CSV Analysis " + now.Format("2006-01-02"),
		Description:      &desc,
		OriginalFilename: fileName,
		FileSize:         fileSize,
		ColumnsCount:     len(t.Headers),
		RowsCount:        len(t.Rows),
	}
}
