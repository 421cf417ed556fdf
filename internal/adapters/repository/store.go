// Package repository defines the shot store interface and its
// in-memory implementation.
package repository

import (
	"context"

	"github.com/jrklab/basket-counting/internal/domain/model"
)

// Stats summarizes the current session.
type Stats struct {
	SessionID  string
	Makes      int
	Misses     int
	Total      int
	Percentage float64
}

// Store provides read/write access to the session's shot history.
type Store interface {
	// Record appends a classified shot to the session.
	Record(ctx context.Context, e model.ShotEvent) error

	// List returns all shots of the current session in arrival order.
	List(ctx context.Context) ([]model.ShotEvent, error)

	// Stats returns make/miss counts and the shooting percentage for
	// the current session.
	Stats(ctx context.Context) (Stats, error)

	// Reset discards the session history and starts a new session.
	// Returns the new session id.
	Reset(ctx context.Context) (string, error)

	// Count returns the number of shots recorded in the session.
	Count(ctx context.Context) int
}
