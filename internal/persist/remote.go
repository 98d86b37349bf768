package persist

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/autoprep/internal/backend"
)

func projectPath(id string) string {
	return "/api/projects/" + url.PathEscape(id)
}

func (s *Service) remoteListProjects(ctx context.Context) ([]Project, error) {
	projects := []Project{}
	if err := s.client.Get(ctx, "/api/projects", &projects); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if projects == nil {
		projects = []Project{}
	}
	return projects, nil
}

func (s *Service) remoteCreateProject(ctx context.Context, in ProjectInput) (Created, error) {
	var c Created
	if err := s.client.Post(ctx, "/api/projects", in, &c); err != nil {
		return Created{}, fmt.Errorf("create project: %w", err)
	}
	return c, nil
}

func (s *Service) remoteFetchProject(ctx context.Context, id string) (*Project, error) {
	var p Project
	if err := s.client.Get(ctx, projectPath(id), &p); err != nil {
		if backend.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %w", ErrProjectNotFound, err)
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

func (s *Service) remoteGetProject(ctx context.Context, id string) (*ProjectDetail, error) {
	p, err := s.remoteFetchProject(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ProjectDetail{Project: *p}
	base := projectPath(id)

	var g errgroup.Group
	g.Go(func() error {
		detail.Datasets = fetchList[Dataset](ctx, s, base+"/datasets")
		return nil
	})
	g.Go(func() error {
		detail.AnalysisResults = fetchList[Analysis](ctx, s, base+"/analysis")
		return nil
	})
	g.Go(func() error {
		detail.ProcessingHistory = fetchList[ProcessingRecord](ctx, s, base+"/processing")
		return nil
	})
	// Sub-fetches never fail the composite read.
	_ = g.Wait()

	return detail, nil
}

// fetchList reads a nested collection. Any failure yields an empty list.
func fetchList[T any](ctx context.Context, s *Service, path string) []T {
	var out []T
	if err := s.client.Get(ctx, path, &out); err != nil {
		s.logger.WarnContext(ctx, "nested fetch failed", "path", path, "error", err)
		return []T{}
	}
	if out == nil {
		return []T{}
	}
	return out
}

func (s *Service) remoteUpdateProject(ctx context.Context, id string, upd ProjectUpdate) (*Project, error) {
	if err := s.client.Put(ctx, projectPath(id), upd, nil); err != nil {
		if backend.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %w", ErrProjectNotFound, err)
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return s.remoteFetchProject(ctx, id)
}

func (s *Service) remoteDeleteProject(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, projectPath(id), nil); err != nil {
		if backend.IsNotFound(err) {
			return fmt.Errorf("%w: %w", ErrProjectNotFound, err)
		}
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

func (s *Service) remoteCreate(ctx context.Context, path string, payload any) (Created, error) {
	var c Created
	if err := s.client.Post(ctx, path, payload, &c); err != nil {
		return Created{}, fmt.Errorf("save %s: %w", path, err)
	}
	return c, nil
}
