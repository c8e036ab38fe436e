package sqlite

import (
	"context"
	"fmt"
	"log"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `
CREATE TABLE IF NOT EXISTS ledger_snapshots (
	key        TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// Store keeps collection snapshots in a local SQLite file.
type Store struct {
	pool *sqlitex.Pool
	path string
	now  func() time.Time
}

type Options struct {
	// PoolSize defaults to 4. Use 1 for ":memory:" databases, where each
	// connection would otherwise see its own empty database.
	PoolSize int
}

func Open(path string, options Options) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store: path is required")
	}
	poolSize := options.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}
	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConn,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open %s: %w", path, err)
	}
	s := &Store{pool: pool, path: path, now: time.Now}

	// Touch one connection so schema errors surface at open time.
	conn, err := pool.Take(context.Background())
	if err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("sqlite store: open %s: %w", path, err)
	}
	pool.Put(conn)

	log.Printf("snapshot store opened driver=sqlite path=%s pool_size=%d", path, poolSize)
	return s, nil
}

func prepareConn(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("sqlite store: %s: %w", pragma, err)
		}
	}
	return sqlitex.ExecuteScript(conn, schema, nil)
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("sqlite store: take: %w", err)
	}
	defer s.pool.Put(conn)

	var payload []byte
	found := false
	err = sqlitex.Execute(conn, `SELECT payload FROM ledger_snapshots WHERE key = ?`, &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			payload = []byte(stmt.ColumnText(0))
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("sqlite store: load %s: %w", key, err)
	}
	return payload, found, nil
}

func (s *Store) Save(ctx context.Context, key string, payload []byte) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("sqlite store: take: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, `
		INSERT INTO ledger_snapshots (key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		&sqlitex.ExecOptions{
			Args: []any{key, string(payload), s.now().UTC().Format(time.RFC3339Nano)},
		})
	if err != nil {
		return fmt.Errorf("sqlite store: save %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	if err := s.pool.Close(); err != nil {
		return fmt.Errorf("sqlite store: close %s: %w", s.path, err)
	}
	return nil
}
