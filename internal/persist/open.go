package persist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/autoprep/internal/backend"
	"github.com/JonMunkholm/autoprep/internal/config"
	"github.com/JonMunkholm/autoprep/internal/store"
)

// Open builds the Service selected by cfg: a backend client when
// BACKEND_URL is set, otherwise the configured local store. The returned
// close func releases the store and is safe to call in both modes.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, clientOpts ...backend.Option) (*Service, func() error, error) {
	if cfg.Backend.Enabled() {
		client := backend.NewFromConfig(cfg.Backend, clientOpts...)
		logger.Info("using backend", "url", client.BaseURL())
		return NewService(client, nil, WithLogger(logger)), func() error { return nil }, nil
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	logger.Info("using local store", "driver", store.Describe(st))
	return NewService(nil, st, WithLogger(logger)), st.Close, nil
}
