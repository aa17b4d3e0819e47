package kv

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresStore keeps each key as a row in a kv_entries table:
//
//	CREATE TABLE kv_entries (
//	    key   TEXT PRIMARY KEY,
//	    value JSONB NOT NULL
//	);
type PostgresStore struct {
	DB *sql.DB
}

// NewPostgresStore returns a Store backed by the given database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT value
		FROM kv_entries
		WHERE key = $1
	`
	var value []byte
	err := s.DB.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_entries (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value
	`
	_, err := s.DB.ExecContext(ctx, query, key, value)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_entries WHERE key = $1`
	_, err := s.DB.ExecContext(ctx, query, key)
	return err
}
