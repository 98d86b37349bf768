package web

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/JonMunkholm/autoprep/internal/core"
	"github.com/JonMunkholm/autoprep/internal/logging"
)

const tracerName = "github.com/JonMunkholm/autoprep/internal/web"

// profileResponse is the reply of POST /api/profile.
type profileResponse struct {
	FileName  string              `json:"file_name"`
	Headers   []string            `json:"headers"`
	Rows      []core.Row          `json:"rows"`
	TotalRows int                 `json:"total_rows"`
	Summary   core.Summary        `json:"summary"`
	Columns   []core.ColumnStat   `json:"columns"`
	Issues    []core.Issue        `json:"issues"`
	Warnings  []core.ParseWarning `json:"warnings"`
}

// cleanResponse is the reply of POST /api/clean.
type cleanResponse struct {
	FileName     string               `json:"file_name"`
	Headers      []string             `json:"headers"`
	Rows         []core.Row           `json:"rows"`
	Before       core.Summary         `json:"before"`
	After        core.Summary         `json:"after"`
	Options      core.CleaningOptions `json:"options"`
	Steps        []core.Step          `json:"steps"`
	Columns      []core.ColumnStat    `json:"columns"`
	Explanation  string               `json:"explanation"`
	Script       string               `json:"script"`
	Warnings     []core.ParseWarning  `json:"warnings"`
	ProcessingID string               `json:"processing_id,omitempty"`
}

// startSpan opens a span for one dataset job.
func startSpan(ctx context.Context, name string, req datasetRequest) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(
		attribute.String("dataset.file_name", req.FileName),
		attribute.Int("dataset.bytes", len(req.CSV)),
	))
}

// handleProfile parses a dataset and reports its quality metrics.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	req, err := s.readDataset(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx, span := startSpan(r.Context(), "profile dataset", req)
	defer span.End()

	var resp profileResponse
	err = s.jobs.Do(ctx, func() error {
		ws := core.NewWorkspace().Load(req.FileName, req.CSV)
		resp = profileResponse{
			FileName:  ws.FileName,
			Headers:   ws.Table.Headers,
			Rows:      nonNil(ws.Table.Head(s.cfg.Processing.PreviewRows).Rows),
			TotalRows: len(ws.Table.Rows),
			Summary:   ws.Summary(),
			Columns:   ws.ColumnStats(),
			Issues:    nonNil(ws.Issues()),
			Warnings:  nonNil(ws.Warnings),
		}
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	span.SetAttributes(attribute.Int("dataset.rows", resp.TotalRows))
	render.JSON(w, r, resp)
}

// cleanDataset runs the whole pipeline for req under a job slot.
func (s *Server) cleanDataset(ctx context.Context, req datasetRequest) (core.Workspace, core.Summary, time.Duration, error) {
	var (
		ws      core.Workspace
		before  core.Summary
		elapsed time.Duration
	)
	err := s.jobs.Do(ctx, func() error {
		start := time.Now()
		ws = core.NewWorkspace().Load(req.FileName, req.CSV).WithOptions(req.options())
		before = ws.Summary()
		ws = ws.ApplyFixes().Explain()
		elapsed = time.Since(start)
		return nil
	})
	return ws, before, elapsed, err
}

// handleClean applies the cleaning pipeline and returns the cleaned table
// with its explanation and pipeline script. With a project_id the run is
// recorded as processing history of that project.
func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	req, err := s.readDataset(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx, span := startSpan(r.Context(), "clean dataset", req)
	defer span.End()

	ws, before, elapsed, err := s.cleanDataset(ctx, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	after := ws.Summary()
	resp := cleanResponse{
		FileName:    ws.FileName,
		Headers:     ws.Table.Headers,
		Rows:        nonNil(ws.Table.Rows),
		Before:      before,
		After:       after,
		Options:     ws.Options,
		Steps:       nonNil(ws.Steps),
		Columns:     ws.ColumnStats(),
		Explanation: ws.Explanation,
		Script:      ws.PipelineScript(),
		Warnings:    nonNil(ws.Warnings),
	}

	if req.ProjectID != "" {
		created, err := s.persist.RecordProcessing(ctx, req.ProjectID, ws.Steps, before, after, elapsed)
		if err != nil {
			s.respondError(w, r, fmt.Errorf("record processing: %w", err))
			return
		}
		resp.ProcessingID = created.ID
		logging.WithFields(ctx, "project_id", req.ProjectID).Info("processing recorded",
			"processing_id", created.ID,
			"steps", len(ws.Steps),
		)
	}

	render.JSON(w, r, resp)
}

// exportFormat describes one downloadable artifact.
type exportFormat struct {
	fileName    string
	contentType string
	write       func(buf *bytes.Buffer, ws core.Workspace) error
}

var exportFormats = map[string]exportFormat{
	"csv": {
		fileName:    "dataset.csv",
		contentType: "text/csv; charset=utf-8",
		write: func(buf *bytes.Buffer, ws core.Workspace) error {
			return core.WriteCSV(buf, ws.Table)
		},
	},
	"xlsx": {
		fileName:    "dataset.xlsx",
		contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		write: func(buf *bytes.Buffer, ws core.Workspace) error {
			return core.WriteXLSX(buf, ws.Table)
		},
	},
	"pipeline": {
		fileName:    "pipeline.py",
		contentType: "text/x-python; charset=utf-8",
		write: func(buf *bytes.Buffer, ws core.Workspace) error {
			_, err := buf.WriteString(ws.PipelineScript())
			return err
		},
	},
	"explanation": {
		fileName:    "explanation.txt",
		contentType: "text/plain; charset=utf-8",
		write: func(buf *bytes.Buffer, ws core.Workspace) error {
			_, err := buf.WriteString(ws.Explanation)
			return err
		},
	},
}

// handleExport cleans the dataset and returns one artifact as a download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "format")
	format, ok := exportFormats[name]
	if !ok {
		s.respondError(w, r, fmt.Errorf("%w: %q", errUnknownFormat, name))
		return
	}

	req, err := s.readDataset(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx, span := startSpan(r.Context(), "export dataset", req)
	defer span.End()
	span.SetAttributes(attribute.String("export.format", name))

	ws, _, _, err := s.cleanDataset(ctx, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := format.write(&buf, ws); err != nil {
		s.respondError(w, r, fmt.Errorf("export %s: %w", name, err))
		return
	}

	w.Header().Set("Content-Type", format.contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.fileName))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(ctx).Error("write export", "format", name, "error", err)
	}
}

// sampleInfo lists a sample without its data.
type sampleInfo struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// handleListSamples lists the built-in sample datasets.
func (s *Server) handleListSamples(w http.ResponseWriter, r *http.Request) {
	samples := core.Samples()
	out := make([]sampleInfo, len(samples))
	for i, sm := range samples {
		out[i] = sampleInfo{Key: sm.Key, Name: sm.Name}
	}
	render.JSON(w, r, out)
}

// handleGetSample returns one sample as CSV. Unknown keys are a 404.
func (s *Server) handleGetSample(w http.ResponseWriter, r *http.Request) {
	sm, ok := core.LookupSample(chi.URLParam(r, "key"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", sm.Key+".csv"))
	_, _ = w.Write([]byte(sm.CSV))
}

// nonNil returns s, or an empty slice when s is nil, so it encodes as [].
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
