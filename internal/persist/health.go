package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonMunkholm/autoprep/internal/store"
)

// Health statuses.
const (
	HealthOK    = "ok"
	HealthError = "error"
)

// HealthReport is the reply of a successful health check.
type HealthReport struct {
	Status          string          `json:"status"`
	Database        string          `json:"database"`
	BackendResponse json.RawMessage `json:"backend_response,omitempty"`
	Timestamp       string          `json:"timestamp"`
}

// Health checks the backend, or the local store when no backend is
// configured. An error means the service is unavailable.
func (s *Service) Health(ctx context.Context) (*HealthReport, error) {
	report := &HealthReport{Status: HealthOK}

	if s.Remote() {
		raw, err := s.client.Health(ctx)
		if err != nil {
			return nil, err
		}
		report.Database = "connected (backend " + s.client.BaseURL() + ")"
		report.BackendResponse = raw
	} else {
		if err := s.store.Ping(ctx); err != nil {
			return nil, &LocalFallbackError{Op: "ping", Err: err}
		}
		report.Database = fmt.Sprintf("connected (local %s store)", store.Describe(s.store))
	}

	report.Timestamp = s.now().UTC().Format(time.RFC3339Nano)
	return report, nil
}
