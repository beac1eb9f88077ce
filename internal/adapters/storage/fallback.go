package storage

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/xvierd/tec-office/internal/domain"
	"github.com/xvierd/tec-office/internal/ports"
)

// fallbackStore writes to a primary store and falls back to a secondary one
// when the primary is missing or failing.
type fallbackStore struct {
	primary   ports.Storage
	secondary ports.Storage
	logger    *log.Logger
}

// Ensure fallbackStore implements ports.Storage.
var _ ports.Storage = (*fallbackStore)(nil)

// NewFallback combines two stores. primary may be nil, in which case every
// call goes straight to secondary.
func NewFallback(primary, secondary ports.Storage, logger *log.Logger) ports.Storage {
	if logger == nil {
		logger = log.Default()
	}
	return &fallbackStore{primary: primary, secondary: secondary, logger: logger}
}

// Save tries the primary first.
func (f *fallbackStore) Save(ctx context.Context, userID string, state domain.TimerState) error {
	if f.primary != nil {
		err := f.primary.Save(ctx, userID, state)
		if err == nil {
			return nil
		}
		f.logger.Warn("primary store failed, saving to fallback", "user", userID, "err", err)
	}
	return f.secondary.Save(ctx, userID, state)
}

// Load reads the primary first. The secondary is consulted when the primary
// fails or has no record for the user.
func (f *fallbackStore) Load(ctx context.Context, userID string) (*domain.TimerState, error) {
	if f.primary != nil {
		state, err := f.primary.Load(ctx, userID)
		if err == nil && state != nil {
			return state, nil
		}
		if err != nil {
			f.logger.Warn("primary store failed, loading from fallback", "user", userID, "err", err)
		}
	}
	return f.secondary.Load(ctx, userID)
}

// Close closes both stores.
func (f *fallbackStore) Close() error {
	var errs []error
	if f.primary != nil {
		errs = append(errs, f.primary.Close())
	}
	errs = append(errs, f.secondary.Close())
	return errors.Join(errs...)
}

// Migrate migrates both stores.
func (f *fallbackStore) Migrate() error {
	var errs []error
	if f.primary != nil {
		errs = append(errs, f.primary.Migrate())
	}
	errs = append(errs, f.secondary.Migrate())
	return errors.Join(errs...)
}
