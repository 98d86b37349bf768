package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/JonMunkholm/autoprep/internal/store"
)

func (s *Service) localListProjects(ctx context.Context) ([]Project, error) {
	projects := []Project{}
	if err := s.loadList(ctx, keyProjects, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *Service) localCreateProject(ctx context.Context, in ProjectInput) (Created, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.localListProjects(ctx)
	if err != nil {
		return Created{}, err
	}

	p := Project{
		ID:          s.newID(),
		Name:        in.Name,
		Description: in.Description,
		Meta:        in.Meta,
		CreatedAt:   s.timestamp(),
	}
	if p.Name == "" {
		p.Name = DefaultProjectName
	}

	if err := s.saveList(ctx, keyProjects, append([]Project{p}, projects...)); err != nil {
		return Created{}, err
	}
	return Created{ID: p.ID}, nil
}

func (s *Service) localFindProject(ctx context.Context, id string) (Project, error) {
	projects, err := s.localListProjects(ctx)
	if err != nil {
		return Project{}, err
	}
	for _, p := range projects {
		if p.ID == id {
			return p, nil
		}
	}
	return Project{}, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
}

func (s *Service) localGetProject(ctx context.Context, id string) (*ProjectDetail, error) {
	p, err := s.localFindProject(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ProjectDetail{
		Project:           p,
		Datasets:          []Dataset{},
		AnalysisResults:   []Analysis{},
		ProcessingHistory: []ProcessingRecord{},
	}
	// Nested collections degrade to empty, as they do against a backend.
	if err := s.loadList(ctx, datasetsKey(id), &detail.Datasets); err != nil {
		s.logger.WarnContext(ctx, "read datasets", "project_id", id, "error", err)
		detail.Datasets = []Dataset{}
	}
	if err := s.loadList(ctx, analysisKey(id), &detail.AnalysisResults); err != nil {
		s.logger.WarnContext(ctx, "read analysis results", "project_id", id, "error", err)
		detail.AnalysisResults = []Analysis{}
	}
	if err := s.loadList(ctx, processingKey(id), &detail.ProcessingHistory); err != nil {
		s.logger.WarnContext(ctx, "read processing history", "project_id", id, "error", err)
		detail.ProcessingHistory = []ProcessingRecord{}
	}
	return detail, nil
}

func (s *Service) localUpdateProject(ctx context.Context, id string, upd ProjectUpdate) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.localListProjects(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, p := range projects {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}

	p := projects[idx]
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = upd.Description
	}
	if upd.Meta != nil {
		p.Meta = upd.Meta
	}
	projects[idx] = p

	if err := s.saveList(ctx, keyProjects, projects); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) localDeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.localListProjects(ctx)
	if err != nil {
		return err
	}

	kept := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(projects) {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}

	if err := s.saveList(ctx, keyProjects, kept); err != nil {
		return err
	}
	for _, key := range []string{datasetsKey(id), analysisKey(id), processingKey(id)} {
		if err := s.store.Delete(ctx, key); err != nil {
			return &LocalFallbackError{Op: "delete " + key, Err: err}
		}
	}
	return nil
}

// localAppend stores payload as a new record at the front of the list
// under key, stamped with an id and created_at.
func (s *Service) localAppend(ctx context.Context, pid, key string, payload any) (Created, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.localFindProject(ctx, pid); err != nil {
		return Created{}, err
	}

	record, err := stampRecord(payload, s.newID(), s.timestamp())
	if err != nil {
		return Created{}, err
	}

	var list []json.RawMessage
	if err := s.loadList(ctx, key, &list); err != nil {
		return Created{}, err
	}
	if err := s.saveList(ctx, key, append([]json.RawMessage{record}, list...)); err != nil {
		return Created{}, err
	}

	var c Created
	if err := json.Unmarshal(record, &c); err != nil {
		return Created{}, fmt.Errorf("decode stored record: %w", err)
	}
	return c, nil
}

// stampRecord returns payload as a JSON object with id and created_at set.
func stampRecord(payload any, id, createdAt string) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	fields["id"], _ = json.Marshal(id)
	fields["created_at"], _ = json.Marshal(createdAt)
	return json.Marshal(fields)
}

// loadList decodes the JSON list stored under key into out. A missing key
// leaves out untouched.
func (s *Service) loadList(ctx context.Context, key string, out any) error {
	data, err := s.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return &LocalFallbackError{Op: "get " + key, Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &LocalFallbackError{Op: "decode " + key, Err: err}
	}
	return nil
}

func (s *Service) saveList(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &LocalFallbackError{Op: "encode " + key, Err: err}
	}
	if err := s.store.Set(ctx, key, data); err != nil {
		return &LocalFallbackError{Op: "set " + key, Err: err}
	}
	return nil
}
