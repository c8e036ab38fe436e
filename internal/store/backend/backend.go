// Package backend selects the snapshot store implementation for a driver name.
package backend

import (
	"context"
	"fmt"

	"smartpark/ledger-service/internal/config"
	"smartpark/ledger-service/internal/store"
	"smartpark/ledger-service/internal/store/postgres"
	"smartpark/ledger-service/internal/store/sqlite"
)

func Open(ctx context.Context, cfg config.Config) (store.SnapshotStore, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		st, err := sqlite.Open(cfg.SQLitePath, sqlite.Options{})
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres driver requires DB_DSN")
		}
		st, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverMemory:
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
