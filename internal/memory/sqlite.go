package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists fact documents in a local SQLite database.
// Values are stored as JSON so scalar and list facts share one column.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the fact database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open fact database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS facts (
		user_id    TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, key)
	);

	CREATE TABLE IF NOT EXISTS messages (
		id              TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		user_id         TEXT NOT NULL,
		role            TEXT NOT NULL,
		text            TEXT NOT NULL,
		created_at      TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_user
		ON messages(user_id, created_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the handle so the transcript store can share one file.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) Get(ctx context.Context, user, key string) (Value, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM facts WHERE user_id = ? AND key = ?`, user, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Value{}, ErrNotFound
	}
	if err != nil {
		return Value{}, fmt.Errorf("query fact: %w", err)
	}

	var v Value
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return Value{}, fmt.Errorf("decode fact value: %w", err)
	}
	return v, nil
}

func (s *SQLiteStore) Set(ctx context.Context, user, key string, value Value) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode fact value: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO facts (user_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		user, key, string(raw), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("write fact: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, user, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM facts WHERE user_id = ? AND key = ?`, user, key,
	); err != nil {
		return fmt.Errorf("delete fact: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, user string) (map[string]Value, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM facts WHERE user_id = ?`, user,
	)
	if err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}
	defer rows.Close()

	facts := make(map[string]Value)
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		var v Value
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("decode fact value: %w", err)
		}
		facts[key] = v
	}
	return facts, rows.Err()
}
