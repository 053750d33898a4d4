// Package store provides the memory persistence interface and SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/ryan/internal/model"
)

// ErrNotFound is returned when no entry exists for a user and key.
var ErrNotFound = errors.New("memory not found")

// PutParams holds parameters for storing a memory.
type PutParams struct {
	User     string
	Key      string
	Value    string
	Category string
}

// GetParams holds parameters for retrieving a memory.
type GetParams struct {
	User string
	Key  string
}

// ListParams holds parameters for listing memories.
type ListParams struct {
	User     string
	Category string
	Limit    int // 0 means no limit
}

// RmParams holds parameters for deleting a memory.
type RmParams struct {
	User string
	Key  string
}

// Store defines the persistence backend for memories.
// Keys passed in are expected to be sanitized already.
type Store interface {
	// Put creates or overwrites the entry at (user, key). Last write wins.
	Put(ctx context.Context, p PutParams) (*model.Entry, error)

	// Get retrieves an entry. Returns ErrNotFound when absent.
	Get(ctx context.Context, p GetParams) (*model.Entry, error)

	// List returns the user's entries ordered by key.
	List(ctx context.Context, p ListParams) ([]model.Entry, error)

	// Rm deletes an entry. Returns ErrNotFound when absent.
	Rm(ctx context.Context, p RmParams) error

	// Wipe deletes every entry of a user and reports how many were removed.
	Wipe(ctx context.Context, user string) (int, error)

	// Close closes the store.
	Close() error
}
