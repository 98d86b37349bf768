// Package persist stores projects and their datasets, analysis results
// and processing records. With a backend configured every call is
// forwarded to it; otherwise the records live in a local key-value store.
package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/autoprep/internal/backend"
	"github.com/JonMunkholm/autoprep/internal/store"
)

// ErrProjectNotFound is returned when a project id does not exist.
var ErrProjectNotFound = errors.New("project not found")

// LocalFallbackError wraps failures of the local store.
type LocalFallbackError struct {
	Op  string
	Err error
}

func (e *LocalFallbackError) Error() string {
	return fmt.Sprintf("local store: %s: %v", e.Op, e.Err)
}

func (e *LocalFallbackError) Unwrap() error {
	return e.Err
}

// Local store keys.
const (
	keyProjects         = "autoprep_projects"
	keyDatasetsPrefix   = "autoprep_datasets_"
	keyAnalysisPrefix   = "autoprep_analysis_"
	keyProcessingPrefix = "autoprep_processing_"
)

func datasetsKey(pid string) string   { return keyDatasetsPrefix + pid }
func analysisKey(pid string) string   { return keyAnalysisPrefix + pid }
func processingKey(pid string) string { return keyProcessingPrefix + pid }

// Service is the persistence proxy. It is safe for concurrent use.
type Service struct {
	client *backend.Client
	store  store.Store
	logger *slog.Logger

	now   func() time.Time
	newID func() string

	// mu serializes read-modify-write cycles on the local store.
	mu sync.Mutex
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger used for degraded sub-fetches.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithClock replaces time.Now for created_at stamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the UUID generator for local records.
func WithIDGenerator(f func() string) ServiceOption {
	return func(s *Service) { s.newID = f }
}

// NewService builds the proxy. A nil client selects the local store,
// which must then be non-nil.
func NewService(client *backend.Client, st store.Store, opts ...ServiceOption) *Service {
	s := &Service{
		client: client,
		store:  st,
		logger: slog.Default(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Remote reports whether calls go to the backend.
func (s *Service) Remote() bool {
	return s.client != nil
}

// Target names where records go: the backend URL or the local store kind.
func (s *Service) Target() string {
	if s.Remote() {
		return s.client.BaseURL()
	}
	return store.Describe(s.store)
}

// ListProjects returns all projects, newest first.
func (s *Service) ListProjects(ctx context.Context) ([]Project, error) {
	if s.Remote() {
		return s.remoteListProjects(ctx)
	}
	return s.localListProjects(ctx)
}

// CreateProject creates a project and returns its id.
func (s *Service) CreateProject(ctx context.Context, in ProjectInput) (Created, error) {
	in = in.withFileMeta()
	if s.Remote() {
		return s.remoteCreateProject(ctx, in)
	}
	return s.localCreateProject(ctx, in)
}

// GetProject returns a project with its datasets, analysis results and
// processing history. A failing nested fetch degrades to an empty list.
func (s *Service) GetProject(ctx context.Context, id string) (*ProjectDetail, error) {
	if s.Remote() {
		return s.remoteGetProject(ctx, id)
	}
	return s.localGetProject(ctx, id)
}

// UpdateProject applies a partial update and returns the project as
// stored afterwards.
func (s *Service) UpdateProject(ctx context.Context, id string, upd ProjectUpdate) (*Project, error) {
	if s.Remote() {
		return s.remoteUpdateProject(ctx, id, upd)
	}
	return s.localUpdateProject(ctx, id, upd)
}

// DeleteProject removes a project and its nested collections.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if s.Remote() {
		return s.remoteDeleteProject(ctx, id)
	}
	return s.localDeleteProject(ctx, id)
}

// SaveDataset stores a dataset under project pid.
func (s *Service) SaveDataset(ctx context.Context, pid string, in DatasetInput) (Created, error) {
	payload := in.toPayload()
	if s.Remote() {
		return s.remoteCreate(ctx, projectPath(pid)+"/datasets", payload)
	}
	return s.localAppend(ctx, pid, datasetsKey(pid), localDataset{Type: in.Type, datasetPayload: payload})
}

// SaveAnalysis stores an analysis result under project pid.
func (s *Service) SaveAnalysis(ctx context.Context, pid string, in AnalysisInput) (Created, error) {
	payload := in.toPayload()
	if s.Remote() {
		return s.remoteCreate(ctx, projectPath(pid)+"/analysis", payload)
	}
	return s.localAppend(ctx, pid, analysisKey(pid), payload)
}

// SaveProcessing stores a processing record under project pid.
func (s *Service) SaveProcessing(ctx context.Context, pid string, in ProcessingInput) (Created, error) {
	payload := in.toPayload()
	if s.Remote() {
		return s.remoteCreate(ctx, projectPath(pid)+"/processing", payload)
	}
	return s.localAppend(ctx, pid, processingKey(pid), payload)
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}
