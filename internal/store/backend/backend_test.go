package backend

import (
	"context"
	"path/filepath"
	"testing"

	"smartpark/ledger-service/internal/config"
	"smartpark/ledger-service/internal/store"
)

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{name: "memory", cfg: config.Config{StorageDriver: config.DriverMemory}},
		{name: "sqlite", cfg: config.Config{StorageDriver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "ledger.db")}},
		{name: "postgres without dsn", cfg: config.Config{StorageDriver: config.DriverPostgres}, wantErr: true},
		{name: "unknown", cfg: config.Config{StorageDriver: "redis"}, wantErr: true},
	}
	for _, tt := range tests {
		st, err := Open(ctx, tt.cfg)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: open: %v", tt.name, err)
		}
		if err := store.SaveJSON(ctx, st, store.KeyRates, map[string]string{"Car": "5"}); err != nil {
			t.Fatalf("%s: save: %v", tt.name, err)
		}
		_ = st.Close()
	}
}
