// Package storage provides implementations of the timer state ports:
// a SQLite table, a directory of JSON files, and a fallback pair of the two.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xvierd/tec-office/internal/domain"
	"github.com/xvierd/tec-office/internal/ports"
	"modernc.org/sqlite"
)

// sqliteStorage implements ports.Storage as a key-value table of JSON
// documents keyed by user id.
type sqliteStorage struct {
	db *sql.DB
}

// Ensure sqliteStorage implements ports.Storage.
var _ ports.Storage = (*sqliteStorage)(nil)

// New creates a new SQLite storage instance.
func New(dbPath string) (ports.Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Timer callbacks save from their own goroutines; a single connection
	// keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	storage := &sqliteStorage{db: db}

	if err := storage.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return storage, nil
}

// NewMemory creates a new in-memory SQLite storage instance for testing.
func NewMemory() (ports.Storage, error) {
	return New(":memory:")
}

// Save upserts the user's state document.
func (s *sqliteStorage) Save(ctx context.Context, userID string, state domain.TimerState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode timer state: %w", err)
	}

	query := `
		INSERT INTO timer_states (user_id, timer_state, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			timer_state = excluded.timer_state,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, userID, string(data), time.Now().UTC()); err != nil {
		if isBusyError(err) {
			return fmt.Errorf("database busy saving state for %s: %w", userID, err)
		}
		return fmt.Errorf("failed to save timer state: %w", err)
	}
	return nil
}

// Load returns the stored state, or nil if the user has none.
func (s *sqliteStorage) Load(ctx context.Context, userID string) (*domain.TimerState, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT timer_state FROM timer_states WHERE user_id = ?`, userID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load timer state: %w", err)
	}

	var state domain.TimerState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("failed to decode timer state for %s: %w", userID, err)
	}
	return &state, nil
}

// Close closes the database connection.
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

// Migrate creates the database schema.
func (s *sqliteStorage) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS timer_states (
		user_id TEXT PRIMARY KEY,
		timer_state TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_timer_states_updated ON timer_states(updated_at);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// isBusyError checks if an error is SQLITE_BUSY or SQLITE_LOCKED.
func isBusyError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code() & 0xff
	return code == 5 || code == 6
}
