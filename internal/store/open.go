package store

import (
	"context"
	"log/slog"

	"github.com/ckpl/auction-ingest/internal/config"
)

// Open picks the backend from configuration: a direct Postgres pool when
// DATABASE_URL is set, the REST endpoint otherwise.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	if cfg.UsesPostgres() {
		logger.Info("Connecting to database...")
		pg, err := OpenPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("Database connected", "min_conns", cfg.DBPoolMinConns, "max_conns", cfg.DBPoolMaxConns)
		return pg, nil
	}
	logger.Info("Using REST store", "url", cfg.StoreURL, "requests_per_minute", cfg.StoreRequestsPerMinute)
	return OpenREST(cfg, logger), nil
}
