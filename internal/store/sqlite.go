package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLite persists the session slot in a local SQLite file. One row, fixed
// key; the payload is the JSON-encoded Session.
type SQLite struct {
	db *sql.DB
}

const createSlotTable = `
CREATE TABLE IF NOT EXISTS session_slots (
	slot_key TEXT PRIMARY KEY,
	payload  BLOB NOT NULL,
	saved_at INTEGER NOT NULL
)`

// OpenSQLite opens (creating if needed) the session database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(createSlotTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create slot table: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Save(ctx context.Context, sess Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session_slots (slot_key, payload, saved_at)
		VALUES (?, ?, ?)
		ON CONFLICT (slot_key) DO UPDATE SET
			payload = excluded.payload,
			saved_at = excluded.saved_at`,
		SessionKey, payload, sess.SavedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("write session slot: %w", err)
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context) (Session, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM session_slots WHERE slot_key = ?`, SessionKey,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("read session slot: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return Session{}, false, fmt.Errorf("decode session slot: %w", err)
	}
	return sess, true, nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM session_slots WHERE slot_key = ?`, SessionKey); err != nil {
		return fmt.Errorf("clear session slot: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
