package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists sessions to a SQLite database so they survive process
// restarts. Values are serialized with CBOR.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
);
`

// OpenSQLiteStore opens (creating if needed) the session database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize session schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, id string) (map[string]any, bool, error) {
	var data []byte
	var expiresAt int64
	row := s.db.QueryRowContext(ctx, `SELECT data, expires_at FROM sessions WHERE id = ?`, id)
	if err := row.Scan(&data, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	if expiresAt > 0 && time.Now().Unix() > expiresAt {
		_ = s.Delete(ctx, id)
		return nil, false, nil
	}

	var values map[string]any
	if err := cbor.Unmarshal(data, &values); err != nil {
		return nil, false, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return values, true, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, id string, values map[string]any, ttl time.Duration) error {
	data, err := cbor.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", id, err)
	}

	var expiresAt int64
	if ttl != 0 {
		expiresAt = time.Now().Add(ttl).Unix()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (id, data, expires_at) VALUES (?, ?, ?)`,
		id, data, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", id, err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
