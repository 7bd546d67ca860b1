package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shopkeeper/internal/cryptox"
	"github.com/dmitrijs2005/shopkeeper/internal/dbx"
)

// recordKey is the one key the session record lives under.
const recordKey = "current"

// SQLiteStore is the durable Store adapter backed by the client's local
// SQLite database. The record occupies a single row replaced with one upsert
// statement, so a reader can never observe a half-written pair. When a Box
// is supplied the serialized record is sealed at rest.
type SQLiteStore struct {
	db  dbx.DBTX
	box *cryptox.Box
}

// NewSQLiteStore wires a store over db. box may be nil to persist the record
// unsealed (tests, debugging).
func NewSQLiteStore(db dbx.DBTX, box *cryptox.Box) *SQLiteStore {
	return &SQLiteStore{db: db, box: box}
}

func (s *SQLiteStore) Read(ctx context.Context) (*Record, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session WHERE key = ?`, recordKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session record: %w", err)
	}

	if s.box != nil {
		opened, err := s.box.Open(value)
		if err != nil {
			// Undecryptable counts as malformed: treat as no session.
			return nil, nil
		}
		value = opened
	}

	var rec Record
	if err := json.Unmarshal(value, &rec); err != nil {
		return nil, nil
	}
	return &rec, nil
}

func (s *SQLiteStore) Write(ctx context.Context, rec *Record) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to serialize session record: %w", err)
	}

	if s.box != nil {
		if value, err = s.box.Seal(value); err != nil {
			return fmt.Errorf("failed to seal session record: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, recordKey, value)
	if err != nil {
		return fmt.Errorf("failed to write session record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE key = ?`, recordKey)
	if err != nil {
		return fmt.Errorf("failed to clear session record: %w", err)
	}
	return nil
}
