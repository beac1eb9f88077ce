package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"net/url"
	"path/filepath"

	"github.com/xvierd/tec-office/internal/domain"
	"github.com/xvierd/tec-office/internal/ports"
)

// fileStore keeps one pomodoro_<user>.json document per user in a directory.
type fileStore struct {
	dir string
}

// Ensure fileStore implements ports.Storage.
var _ ports.Storage = (*fileStore)(nil)

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string) (ports.Storage, error) {
	s := &fileStore{dir: dir}
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes the document atomically via a temp file and rename.
func (s *fileStore) Save(ctx context.Context, userID string, state domain.TimerState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode timer state: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".pomodoro-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write timer state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write timer state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(userID)); err != nil {
		return fmt.Errorf("failed to replace timer state: %w", err)
	}
	return nil
}

// Load returns the stored state, or nil if no file exists.
func (s *fileStore) Load(ctx context.Context, userID string) (*domain.TimerState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(userID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read timer state: %w", err)
	}

	var state domain.TimerState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode timer state for %s: %w", userID, err)
	}
	return &state, nil
}

// Close is a no-op.
func (s *fileStore) Close() error {
	return nil
}

// Migrate creates the storage directory.
func (s *fileStore) Migrate() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	return nil
}

// path escapes userID reversibly, so distinct users never share a file
// and no separator survives into the name.
func (s *fileStore) path(userID string) string {
	return filepath.Join(s.dir, "pomodoro_"+url.QueryEscape(userID)+".json")
}
