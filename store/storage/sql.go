package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know about.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv (
	name  TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLBackend stores every key as a row of the kv table. It works with the
// "sqlite" (modernc.org/sqlite) and "postgres" (lib/pq) drivers.
type SQLBackend struct {
	db *sqlx.DB
}

// OpenSQL connects with the given driver and creates the kv table if needed.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLBackend, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		// one writer keeps sqlite from returning SQLITE_BUSY under concurrent handlers
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, kvSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}
	return &SQLBackend{db: db}, nil
}

func (b *SQLBackend) Close() error {
	return b.db.Close()
}

func (b *SQLBackend) State(key string) State {
	return &SQLState{db: b.db, name: key}
}

// SQLState is one row of the kv table.
type SQLState struct {
	db   *sqlx.DB
	name string
}

func (s *SQLState) Load(ctx context.Context) ([]byte, error) {
	var value string
	err := s.db.GetContext(ctx, &value, s.db.Rebind(`SELECT value FROM kv WHERE name = ?`), s.name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("kv %s: %w", s.name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", s.name, err)
	}
	return []byte(value), nil
}

func (s *SQLState) Save(ctx context.Context, data []byte) error {
	query := s.db.Rebind(`
		INSERT INTO kv (name, value) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value`)
	if _, err := s.db.ExecContext(ctx, query, s.name, string(data)); err != nil {
		return fmt.Errorf("failed to upsert %s: %w", s.name, err)
	}
	return nil
}

func (s *SQLState) Delete(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM kv WHERE name = ?`), s.name); err != nil {
		return fmt.Errorf("failed to delete %s: %w", s.name, err)
	}
	return nil
}
