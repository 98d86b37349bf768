package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/autoprep/internal/backend"
	"github.com/JonMunkholm/autoprep/internal/config"
	"github.com/JonMunkholm/autoprep/internal/core"
	"github.com/JonMunkholm/autoprep/internal/persist"
	"github.com/JonMunkholm/autoprep/internal/store"
)

const exampleCSV = "a,b\n1,\n,2\n3,3"

func testConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	base := map[string]string{
		"STORE_DRIVER":       "memory",
		"RATE_LIMIT_ENABLED": "false",
		"LOG_LEVEL":          "error",
	}
	for k, v := range env {
		base[k] = v
	}
	cfg, err := config.LoadFrom(func(k string) string { return base[k] })
	require.NoError(t, err)
	return cfg
}

func newTestServer(t *testing.T, env map[string]string) *Server {
	t.Helper()
	svc := persist.NewService(nil, store.NewMemory())
	return NewServer(testConfig(t, env), svc, nil)
}

// do sends a request through the router and returns the recorder.
func do(t *testing.T, s *Server, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createProject(t *testing.T, s *Server, name string) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/projects", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[persist.Created](t, rec).ID
}

func TestIndex(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "AutoPrep")
	assert.Contains(t, rec.Body.String(), "/api/samples/titanic")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestProfile(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/profile", map[string]any{"csv": exampleCSV})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[profileResponse](t, rec)
	assert.Equal(t, []string{"a", "b"}, resp.Headers)
	assert.Equal(t, 3, resp.TotalRows)
	assert.Equal(t, 3, resp.Summary.RowCount)
	assert.Equal(t, 2, resp.Summary.MissingCellCount)
	assert.Equal(t, 67, resp.Summary.QualityScore)
	assert.Len(t, resp.Columns, 2)
	assert.Equal(t, "dataset.csv", resp.FileName)
}

func TestProfile_PreviewLimit(t *testing.T) {
	s := newTestServer(t, map[string]string{"PROCESSING_PREVIEW_ROWS": "2"})

	rec := do(t, s, http.MethodPost, "/api/profile", map[string]any{"csv": exampleCSV})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[profileResponse](t, rec)
	assert.Len(t, resp.Rows, 2)
	assert.Equal(t, 3, resp.TotalRows)
}

func TestProfile_RawCSV(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/profile?file_name=raw.csv", strings.NewReader(exampleCSV))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "raw.csv", decode[profileResponse](t, rec).FileName)
}

func TestProfile_Multipart(t *testing.T) {
	s := newTestServer(t, nil)

	var buf bytes.Buffer
	mp := multipart.NewWriter(&buf)
	part, err := mp.CreateFormFile("file", "upload.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(exampleCSV))
	require.NoError(t, err)
	require.NoError(t, mp.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/profile", &buf)
	req.Header.Set("Content-Type", mp.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[profileResponse](t, rec)
	assert.Equal(t, "upload.csv", resp.FileName)
	assert.Equal(t, 3, resp.TotalRows)
}

func TestProcessing_BadInput(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"missing csv", "/api/profile", map[string]any{}, http.StatusBadRequest, "FILE004"},
		{"blank csv", "/api/clean", map[string]any{"csv": "   "}, http.StatusBadRequest, "FILE004"},
		{"malformed json", "/api/clean", "{", http.StatusBadRequest, "VAL001"},
		{"unknown format", "/api/export/pdf", map[string]any{"csv": exampleCSV}, http.StatusBadRequest, "VAL003"},
		{"file name too long", "/api/profile", map[string]any{"csv": exampleCSV, "file_name": strings.Repeat("x", 300)}, http.StatusUnprocessableEntity, "VAL002"},
	}

	s := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestProcessing_BodyTooLarge(t *testing.T) {
	s := newTestServer(t, map[string]string{"PROCESSING_MAX_BODY_SIZE": "16"})

	rec := do(t, s, http.MethodPost, "/api/profile", map[string]any{"csv": exampleCSV + strings.Repeat("\n1,2", 20)})

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "FILE001", decode[ErrorResponse](t, rec).Code)
}

func TestClean(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/clean", map[string]any{"csv": exampleCSV})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[cleanResponse](t, rec)
	assert.Equal(t, 67, resp.Before.QualityScore)
	assert.Equal(t, 0, resp.After.MissingCellCount)
	assert.Equal(t, 100, resp.After.QualityScore)
	assert.Len(t, resp.Steps, 3)
	assert.Contains(t, resp.Explanation, "Rows: 3, Columns: 2, Missing cells: 0")
	assert.Contains(t, resp.Script, "import pandas as pd")
	assert.Empty(t, resp.ProcessingID)

	a, _ := resp.Rows[1]["a"].Float()
	b, _ := resp.Rows[0]["b"].Float()
	assert.Equal(t, 2.0, a)
	assert.Equal(t, 2.5, b)
}

func TestClean_OptionsOff(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/clean", map[string]any{
		"csv":     exampleCSV,
		"options": map[string]bool{},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[cleanResponse](t, rec)
	assert.Empty(t, resp.Steps)
	assert.Equal(t, resp.Before, resp.After)
}

func TestClean_RecordsProcessing(t *testing.T) {
	s := newTestServer(t, nil)
	id := createProject(t, s, "history")

	rec := do(t, s, http.MethodPost, "/api/clean", map[string]any{"csv": exampleCSV, "project_id": id})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode[cleanResponse](t, rec).ProcessingID)

	rec = do(t, s, http.MethodGet, "/api/projects/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[struct {
		Project persist.ProjectDetail `json:"project"`
	}](t, rec).Project
	require.Len(t, detail.ProcessingHistory, 1)

	in, err := detail.ProcessingHistory[0].Input()
	require.NoError(t, err)
	assert.Contains(t, string(in.Transformations), "impute_numeric")
}

func TestClean_UnknownProject(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/clean", map[string]any{"csv": exampleCSV, "project_id": "missing"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PRJ001", decode[ErrorResponse](t, rec).Code)
}

func TestExport(t *testing.T) {
	tests := []struct {
		format      string
		fileName    string
		contentType string
		check       func(t *testing.T, body []byte)
	}{
		{"csv", "dataset.csv", "text/csv", func(t *testing.T, body []byte) {
			assert.Equal(t, "a,b\n1,2.5\n2,2\n3,3\n", string(body))
		}},
		{"xlsx", "dataset.xlsx", "spreadsheetml", func(t *testing.T, body []byte) {
			assert.True(t, bytes.HasPrefix(body, []byte("PK")), "xlsx is a zip archive")
		}},
		{"pipeline", "pipeline.py", "text/x-python", func(t *testing.T, body []byte) {
			assert.Contains(t, string(body), "import pandas as pd")
		}},
		{"explanation", "explanation.txt", "text/plain", func(t *testing.T, body []byte) {
			assert.Contains(t, string(body), "Missing cells: 0")
		}},
	}

	s := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/export/"+tt.format, map[string]any{"csv": exampleCSV})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			assert.Contains(t, rec.Header().Get("Content-Type"), tt.contentType)
			assert.Equal(t, fmt.Sprintf("attachment; filename=%q", tt.fileName), rec.Header().Get("Content-Disposition"))
			tt.check(t, rec.Body.Bytes())
		})
	}
}

func TestSamples(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/samples", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]sampleInfo](t, rec)
	require.Len(t, list, 3)
	assert.Equal(t, "pima", list[0].Key)

	rec = do(t, s, http.MethodGet, "/api/samples/iris", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.NotEmpty(t, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/samples/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjects_CRUD(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	id := createProject(t, s, "Sales")

	rec = do(t, s, http.MethodGet, "/api/projects/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[struct {
		Project persist.ProjectDetail `json:"project"`
	}](t, rec).Project
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Sales", got.Name)
	assert.NotNil(t, got.Datasets)

	rec = do(t, s, http.MethodPut, "/api/projects/"+id, map[string]any{"name": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[struct {
		Project persist.Project `json:"project"`
	}](t, rec).Project
	assert.Equal(t, "Renamed", updated.Name)

	rec = do(t, s, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]persist.Project](t, rec), 1)

	rec = do(t, s, http.MethodDelete, "/api/projects/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Project deleted successfully"}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/projects/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjects_DefaultName(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/projects", map[string]any{})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[persist.Created](t, rec).ID

	rec = do(t, s, http.MethodGet, "/api/projects/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), persist.DefaultProjectName)
}

func TestProjects_NestedSaves(t *testing.T) {
	s := newTestServer(t, nil)
	id := createProject(t, s, "nested")

	tests := []struct {
		path string
		body any
	}{
		{"/datasets", map[string]any{
			"type": "original",
			"data": []map[string]any{{"a": 1, "b": "x"}},
			"metadata": map[string]any{"columns": []string{"a", "b"}, "totalRows": 1},
		}},
		{"/analysis", map[string]any{
			"quality_score":   0.5,
			"issues_detected": map[string]any{"missing_values": 2},
		}},
		{"/processing", map[string]any{
			"transformations": []string{"trim"},
			"processing_time": 1.5,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/projects/"+id+tt.path, tt.body)
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[persist.Created](t, rec).ID)
		})
	}

	rec := do(t, s, http.MethodGet, "/api/projects/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[struct {
		Project persist.ProjectDetail `json:"project"`
	}](t, rec).Project
	assert.Len(t, detail.Datasets, 1)
	assert.Len(t, detail.AnalysisResults, 1)
	assert.Len(t, detail.ProcessingHistory, 1)
}

func TestProjects_InvalidAnalysis(t *testing.T) {
	s := newTestServer(t, nil)
	id := createProject(t, s, "p")

	rec := do(t, s, http.MethodPost, "/api/projects/"+id+"/analysis", map[string]any{"quality_score": 150})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VAL002", decode[ErrorResponse](t, rec).Code)
}

func TestProjects_SaveToUnknownProject(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/projects/ghost/analysis", map[string]any{"quality_score": 0.5})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjects_SaveAndLoadTable(t *testing.T) {
	s := newTestServer(t, nil)
	id := createProject(t, s, "table")

	rec := do(t, s, http.MethodGet, "/api/projects/"+id+"/table", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/projects/"+id+"/save", map[string]any{"csv": exampleCSV, "file_name": "ex.csv"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[persist.SaveResult](t, rec)
	assert.Equal(t, id, res.ProjectID)
	assert.NotEmpty(t, res.DatasetID)
	assert.NotEmpty(t, res.AnalysisID)

	rec = do(t, s, http.MethodGet, "/api/projects/"+id+"/table", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tbl := decode[tableResponse](t, rec)
	assert.Equal(t, []string{"a", "b"}, tbl.Headers)
	assert.Equal(t, 3, tbl.Summary.RowCount)
	assert.Equal(t, 2, tbl.Summary.MissingCellCount)
}

func TestProjects_Audit(t *testing.T) {
	s := newTestServer(t, nil)
	id := createProject(t, s, "audit")

	rec := do(t, s, http.MethodPost, "/api/projects/"+id+"/analysis/audit", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/projects/"+id+"/save", map[string]any{"csv": "n\n10\n11\n12\n11\n10\n500", "file_name": "n.csv"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/api/projects/"+id+"/analysis/audit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	audit := decode[core.Audit](t, rec)
	assert.Equal(t, 1, audit.Count)
	assert.Equal(t, []int{5}, audit.Rows)

	rec = do(t, s, http.MethodPost, "/api/projects/ghost/analysis/audit", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjects_DownloadPipeline(t *testing.T) {
	s := newTestServer(t, nil)
	id := createProject(t, s, "pipeline")

	rec := do(t, s, http.MethodPost, "/api/projects/"+id+"/save", map[string]any{"csv": exampleCSV, "file_name": "ex.csv"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = do(t, s, http.MethodPost, "/api/clean", map[string]any{
		"csv":        exampleCSV,
		"project_id": id,
		"options":    core.CleaningOptions{ImputeNumeric: true},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/projects/"+id+"/pipeline/download", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/x-python")
	assert.Equal(t, `attachment; filename="pipeline.py"`, rec.Header().Get("Content-Disposition"))
	body := rec.Body.String()
	assert.Contains(t, body, "import pandas as pd")
	assert.Contains(t, body, `for col in ["a","b"]:`)
	assert.NotContains(t, body, "dropna")

	rec = do(t, s, http.MethodGet, "/api/projects/ghost/pipeline/download", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjects_DownloadPipelineFromBackend(t *testing.T) {
	const script = "import pandas as pd\n# from backend\n"
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/projects/p1/pipeline/download" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/x-python")
		_, _ = w.Write([]byte(script))
	}))
	defer upstream.Close()

	svc := persist.NewService(backend.New(upstream.URL, backend.WithRetryPolicy(backend.NoRetry())), nil)
	s := NewServer(testConfig(t, nil), svc, nil)

	rec := do(t, s, http.MethodGet, "/api/projects/p1/pipeline/download", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, script, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/projects/p2/pipeline/download", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth_Local(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	report := decode[persist.HealthReport](t, rec)
	assert.Equal(t, persist.HealthOK, report.Status)
	assert.Equal(t, "connected (local memory store)", report.Database)
	assert.NotEmpty(t, report.Timestamp)
}

func TestHealth_BackendUnreachable(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	url := dead.URL
	dead.Close()

	client := backend.New(url, backend.WithRetryPolicy(backend.NoRetry()))
	svc := persist.NewService(client, nil)
	s := NewServer(testConfig(t, nil), svc, nil)

	rec := do(t, s, http.MethodGet, "/api/health", nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode[healthFailure](t, rec)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "Service unavailable", resp.Message)
	assert.NotEmpty(t, resp.Error)
}

func TestBackendErrorPassthrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"name already taken","code":"DUP"}`))
	}))
	defer upstream.Close()

	svc := persist.NewService(backend.New(upstream.URL, backend.WithRetryPolicy(backend.NoRetry())), nil)
	s := NewServer(testConfig(t, nil), svc, nil)

	rec := do(t, s, http.MethodPost, "/api/projects", map[string]any{"name": "dup"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "name already taken", resp.Error)
	assert.Equal(t, "DUP", resp.Code)
}

func TestAPIKeyGate(t *testing.T) {
	s := newTestServer(t, map[string]string{"REQUIRE_API_KEY": "true", "API_KEYS": "secret"})

	rec := do(t, s, http.MethodGet, "/api/projects", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/projects", nil, "X-API-Key", "wrong")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/projects", nil, "X-API-Key", "secret")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProcessingRateLimit(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"RATE_LIMIT_ENABLED":             "true",
		"RATE_LIMIT_REQUESTS_PER_MINUTE": "100",
		"RATE_LIMIT_PROCESSING":          "1",
	})
	t.Cleanup(func() {
		for _, l := range s.limiters {
			l.Stop()
		}
	})

	rec := do(t, s, http.MethodPost, "/api/profile", map[string]any{"csv": exampleCSV})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/profile", map[string]any{"csv": exampleCSV})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = do(t, s, http.MethodGet, "/api/projects", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	do(t, s, http.MethodGet, "/api/health", nil)

	rec := do(t, s, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "autoprep_http_requests_total")
	assert.Contains(t, body, "autoprep_jobs_active")
	assert.Contains(t, body, `route="/api/health"`)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("get: %w", persist.ErrProjectNotFound), http.StatusNotFound},
		{"backend status", &backend.Error{Status: http.StatusTeapot, Message: "x"}, http.StatusTeapot},
		{"backend unreachable", &backend.Error{Message: "GET /health"}, http.StatusBadGateway},
		{"no rows", persist.ErrNoDatasetRows, http.StatusUnprocessableEntity},
		{"no csv", errNoCSV, http.StatusBadRequest},
		{"local store", &persist.LocalFallbackError{Op: "get", Err: io.ErrUnexpectedEOF}, http.StatusInternalServerError},
		{"other", io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
