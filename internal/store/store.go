package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection keys. Each key holds one JSON document and is written
// independently of the others.
const (
	KeyVehicles     = "vehicles"
	KeyTransactions = "transactions"
	KeyActivityLogs = "activity_logs"
	KeyRates        = "rates"
	KeyBranches     = "branches"
	KeyUsers        = "users"
)

var Keys = []string{KeyVehicles, KeyTransactions, KeyActivityLogs, KeyRates, KeyBranches, KeyUsers}

// SnapshotStore is a flat key-value store for collection snapshots.
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, payload []byte) error
	Close() error
}

// LoadJSON decodes the snapshot under key into out. It reports false when
// the key has never been written. Undecodable payloads wrap
// ErrCorruptSnapshot.
func LoadJSON(ctx context.Context, s SnapshotStore, key string, out any) (bool, error) {
	payload, ok, err := s.Load(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("decode %s: %w: %v", key, ErrCorruptSnapshot, err)
	}
	return true, nil
}

func SaveJSON(ctx context.Context, s SnapshotStore, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Save(ctx, key, payload); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
