package web

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/autoprep/internal/core"
	"github.com/JonMunkholm/autoprep/internal/logging"
	"github.com/JonMunkholm/autoprep/internal/persist"
)

// projectEnvelope wraps a project as {"project": ...}.
type projectEnvelope struct {
	Project any `json:"project"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// healthFailure is the 500 reply of GET /api/health.
type healthFailure struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// handleHealth reports whether the backend (or the local store) answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report, err := s.persist.Health(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Warn("health check failed", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, healthFailure{
			Status:  persist.HealthError,
			Message: "Service unavailable",
			Error:   err.Error(),
		})
		return
	}
	render.JSON(w, r, report)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.persist.ListProjects(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in persist.ProjectInput
	if err := s.decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	created, err := s.persist.CreateProject(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.WithFields(r.Context(), "project_id", created.ID).Info("project created")
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, created)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := s.projectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	detail, err := s.persist.GetProject(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, projectEnvelope{Project: detail})
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := s.projectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var upd persist.ProjectUpdate
	if err := s.decodeJSON(w, r, &upd); err != nil {
		s.respondError(w, r, err)
		return
	}

	project, err := s.persist.UpdateProject(r.Context(), id, upd)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, projectEnvelope{Project: project})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := s.projectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.persist.DeleteProject(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.WithFields(r.Context(), "project_id", id).Info("project deleted")
	render.JSON(w, r, messageResponse{Message: "Project deleted successfully"})
}

// saveChild decodes a nested record of type T and stores it with save.
func saveChild[T any](s *Server, w http.ResponseWriter, r *http.Request,
	save func(s *persist.Service, r *http.Request, pid string, in T) (persist.Created, error)) {
	id, err := s.projectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var in T
	if err := s.decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	created, err := save(s.persist, r, id, in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, created)
}

func (s *Server) handleSaveDataset(w http.ResponseWriter, r *http.Request) {
	saveChild(s, w, r, func(p *persist.Service, r *http.Request, pid string, in persist.DatasetInput) (persist.Created, error) {
		return p.SaveDataset(r.Context(), pid, in)
	})
}

func (s *Server) handleSaveAnalysis(w http.ResponseWriter, r *http.Request) {
	saveChild(s, w, r, func(p *persist.Service, r *http.Request, pid string, in persist.AnalysisInput) (persist.Created, error) {
		return p.SaveAnalysis(r.Context(), pid, in)
	})
}

func (s *Server) handleSaveProcessing(w http.ResponseWriter, r *http.Request) {
	saveChild(s, w, r, func(p *persist.Service, r *http.Request, pid string, in persist.ProcessingInput) (persist.Created, error) {
		return p.SaveProcessing(r.Context(), pid, in)
	})
}

// handleSaveTable parses an uploaded dataset and stores it, with its
// analysis, under an existing project.
func (s *Server) handleSaveTable(w http.ResponseWriter, r *http.Request) {
	id, err := s.projectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	req, err := s.readDataset(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var tbl core.Table
	err = s.jobs.Do(r.Context(), func() error {
		tbl, _ = core.Parse(req.CSV)
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.persist.SaveTable(r.Context(), id, tbl, s.cfg.Processing.SaveRowLimit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.WithFields(r.Context(), "project_id", id).Info("dataset saved",
		"file_name", req.FileName,
		"rows", len(tbl.Rows),
		"columns", len(tbl.Headers),
	)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, res)
}

// tableResponse is the reply of GET /api/projects/{id}/table.
type tableResponse struct {
	ProjectID string            `json:"project_id"`
	Headers   []string          `json:"headers"`
	Rows      []core.Row        `json:"rows"`
	Summary   core.Summary      `json:"summary"`
	Columns   []core.ColumnStat `json:"columns"`
}

// handleLoadTable reopens the stored original dataset of a project.
func (s *Server) handleLoadTable(w http.ResponseWriter, r *http.Request) {
	id, err := s.projectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	tbl, err := s.persist.LoadTable(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ws := core.NewWorkspace().LoadTable(id, tbl)
	render.JSON(w, r, tableResponse{
		ProjectID: id,
		Headers:   ws.Table.Headers,
		Rows:      nonNil(ws.Table.Rows),
		Summary:   ws.Summary(),
		Columns:   nonNil(ws.ColumnStats()),
	})
}

// handleAuditProject runs the outlier audit over the stored dataset.
func (s *Server) handleAuditProject(w http.ResponseWriter, r *http.Request) {
	id, err := s.projectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	audit, err := s.persist.Audit(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.WithFields(r.Context(), "project_id", id).Info("audit complete", "outliers", audit.Count)
	render.JSON(w, r, audit)
}

// handleDownloadPipeline serves the pandas script of the latest
// processing run as pipeline.py.
func (s *Server) handleDownloadPipeline(w http.ResponseWriter, r *http.Request) {
	id, err := s.projectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	script, err := s.persist.PipelineScript(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/x-python; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "pipeline.py"))
	w.Header().Set("Content-Length", fmt.Sprint(len(script)))
	if _, err := w.Write(script); err != nil {
		logging.FromContext(r.Context()).Error("write pipeline", "project_id", id, "error", err)
	}
}
