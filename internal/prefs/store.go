// Package prefs provides the persisted key/value store that survives
// restarts. Values are plain strings; callers own serialization of anything
// richer (the session record is JSON, the theme mode is a bare token).
package prefs

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("prefs: key not found")

// Store is the persisted preference store consumed by the theme resolver,
// session store, and onboarding seen-marker.
type Store interface {
	// Get returns the value for key, or ErrNotFound when absent.
	Get(ctx context.Context, key string) (string, error)

	// Set writes the value for key, creating it if absent.
	Set(ctx context.Context, key, value string) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any underlying resources.
	Close() error
}
