package domain

import "github.com/google/uuid"

// NewID creates a new unique identifier for a timer instance.
func NewID() string {
	return uuid.New().String()
}
