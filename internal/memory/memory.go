// Package memory implements the per-user memory store used by the chat router.
//
// Every operation reports failure as false or absent instead of an error;
// backend errors are logged here and never reach the caller.
package memory

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/rcliao/ryan/internal/model"
	"github.com/rcliao/ryan/internal/store"
)

// Store is a memory view scoped to one user. A nil backend makes the store
// unavailable: saves fail and reads come back empty.
type Store struct {
	backend store.Store
	user    string
	log     zerolog.Logger
	newKey  func() string
}

// New returns a Store for user on top of backend.
func New(backend store.Store, user string, log zerolog.Logger) *Store {
	return &Store{
		backend: backend,
		user:    user,
		log:     log.With().Str("component", "memory").Str("user", user).Logger(),
		newKey:  GenerateKey,
	}
}

// ForUser returns a view of the same backend for another user.
func (s *Store) ForUser(user string) *Store {
	return New(s.backend, user, s.log)
}

// User returns the user this store is scoped to.
func (s *Store) User() string { return s.user }

// Available reports whether a backend is configured.
func (s *Store) Available() bool { return s != nil && s.backend != nil }

// Save stores value under key in the default category.
func (s *Store) Save(ctx context.Context, key, value string) bool {
	return s.SaveCategory(ctx, key, value, model.DefaultCategory)
}

// SaveCategory stores value under key. It returns false for an empty key or
// value, an unavailable backend, or a write failure.
func (s *Store) SaveCategory(ctx context.Context, key, value, category string) bool {
	if !s.Available() {
		s.log.Error().Str("key", key).Msg("memory backend not available, cannot save")
		observe("save", false)
		return false
	}
	if key == "" || value == "" {
		s.log.Warn().Str("key", key).Msg("attempted to save empty key or value")
		observe("save", false)
		return false
	}

	sanitized := Sanitize(key)
	if sanitized == "" {
		sanitized = s.newKey()
		s.log.Warn().Str("key", key).Str("generated", sanitized).Msg("key sanitized to empty, using generated key")
	}

	_, err := s.backend.Put(ctx, store.PutParams{
		User:     s.user,
		Key:      sanitized,
		Value:    value,
		Category: category,
	})
	if err != nil {
		s.log.Error().Err(err).Str("key", sanitized).Msg("failed to save memory")
		observe("save", false)
		return false
	}

	s.log.Info().Str("key", key).Str("sanitized_key", sanitized).Msg("memory saved")
	observe("save", true)
	return true
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool) {
	if !s.Available() {
		observe("get", false)
		return "", false
	}
	sanitized := Sanitize(key)
	if sanitized == "" {
		observe("get", false)
		return "", false
	}

	e, err := s.backend.Get(ctx, store.GetParams{User: s.user, Key: sanitized})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log.Debug().Str("key", sanitized).Msg("memory not found")
		} else {
			s.log.Error().Err(err).Str("key", sanitized).Msg("failed to get memory")
		}
		observe("get", false)
		return "", false
	}
	if e.Value == "" {
		observe("get", false)
		return "", false
	}
	observe("get", true)
	return e.Value, true
}

// All returns every stored value keyed by sanitized key.
func (s *Store) All(ctx context.Context) map[string]string {
	out := map[string]string{}
	for _, e := range s.Entries(ctx) {
		out[e.Key] = e.Value
	}
	return out
}

// Entries returns every stored entry ordered by key.
func (s *Store) Entries(ctx context.Context) []model.Entry {
	if !s.Available() {
		return nil
	}
	entries, err := s.backend.List(ctx, store.ListParams{User: s.user})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list memory")
		observe("list", false)
		return nil
	}
	observe("list", true)
	return entries
}

// Delete removes key. It returns false when the key was not found.
func (s *Store) Delete(ctx context.Context, key string) bool {
	if !s.Available() {
		observe("delete", false)
		return false
	}
	sanitized := Sanitize(key)
	if sanitized == "" {
		observe("delete", false)
		return false
	}

	err := s.backend.Rm(ctx, store.RmParams{User: s.user, Key: sanitized})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log.Warn().Str("key", sanitized).Msg("memory key not found for deletion")
		} else {
			s.log.Error().Err(err).Str("key", sanitized).Msg("failed to delete memory")
		}
		observe("delete", false)
		return false
	}
	s.log.Info().Str("key", sanitized).Msg("memory deleted")
	observe("delete", true)
	return true
}

// Wipe removes every entry for the user.
func (s *Store) Wipe(ctx context.Context) (int, error) {
	if !s.Available() {
		return 0, errors.New("memory backend not available")
	}
	n, err := s.backend.Wipe(ctx, s.user)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to wipe memory")
		return 0, err
	}
	s.log.Info().Int("removed", n).Msg("memory wiped")
	observe("wipe", true)
	return n, nil
}
