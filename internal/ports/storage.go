// Package ports defines the interfaces (driven and driving ports)
// for the Airth timer application following hexagonal architecture principles.
// These interfaces define the contracts between the domain layer and
// external infrastructure.
package ports

import (
	"context"

	"github.com/xvierd/tec-office/internal/domain"
)

// StateStore persists one pomodoro TimerState per user identifier.
// This is a driven port (implemented by adapters).
type StateStore interface {
	// Save writes the state for a user, replacing any previous record.
	Save(ctx context.Context, userID string, state domain.TimerState) error

	// Load returns the stored state for a user, or nil when nothing is stored.
	Load(ctx context.Context, userID string) (*domain.TimerState, error)
}

// Storage is a StateStore backed by a resource that must be released.
type Storage interface {
	StateStore

	// Close releases the underlying resource.
	Close() error

	// Migrate prepares the backing schema.
	Migrate() error
}
