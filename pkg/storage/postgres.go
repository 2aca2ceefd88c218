package storage

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS objects (
	path       TEXT PRIMARY KEY,
	parent     TEXT NOT NULL,
	data       BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS objects_parent_idx ON objects (parent);
`

// PostgresStorage keeps every path as one row of the objects table. The
// parent column makes List a single indexed lookup.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage connects to dsn and creates the objects table if it
// does not exist yet.
func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create objects table: %w", err)
	}
	return &PostgresStorage{pool: pool}, nil
}

func (s *PostgresStorage) Close() {
	s.pool.Close()
}

func parentOf(p string) string {
	dir := path.Dir(p)
	if dir == "." {
		return ""
	}
	return dir
}

func (s *PostgresStorage) Read(ctx context.Context, p string) ([]byte, error) {
	c, err := CleanPath(p)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", p, err)
	}
	var data []byte
	err = s.pool.QueryRow(ctx, `SELECT data FROM objects WHERE path = $1`, c).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return data, nil
}

func (s *PostgresStorage) Write(ctx context.Context, p string, data []byte) error {
	c, err := CleanPath(p)
	if err != nil {
		return fmt.Errorf("%q: %w", p, err)
	}
	if data == nil {
		data = []byte{}
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO objects (path, parent, data, updated_at) VALUES ($1, $2, $3, now())
ON CONFLICT (path) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		c, parentOf(c), data)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}

func (s *PostgresStorage) Delete(ctx context.Context, p string) error {
	c, err := CleanPath(p)
	if err != nil {
		return fmt.Errorf("%q: %w", p, err)
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM objects WHERE path = $1`, c)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", p, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	return nil
}

func (s *PostgresStorage) List(ctx context.Context, prefix string) ([]string, error) {
	c, err := cleanPrefix(prefix)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", prefix, err)
	}
	rows, err := s.pool.Query(ctx, `SELECT path FROM objects WHERE parent = $1 ORDER BY path`, c)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	paths, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	return paths, nil
}

func (s *PostgresStorage) Exists(ctx context.Context, p string) (bool, error) {
	c, err := CleanPath(p)
	if err != nil {
		return false, fmt.Errorf("%q: %w", p, err)
	}
	var ok bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM objects WHERE path = $1)`, c).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", p, err)
	}
	return ok, nil
}
