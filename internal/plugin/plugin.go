// Package plugin provides the command-handler registry consulted by chat
// before falling back to the model.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned by Run for an unregistered plugin name.
var ErrNotFound = errors.New("plugin not found")

// Handler is a chat command. Handle returns ok=false when the input is not
// for this handler.
type Handler interface {
	Name() string
	Handle(ctx context.Context, input string) (reply string, ok bool, err error)
}

// Registry holds handlers in registration order.
type Registry struct {
	mu       sync.RWMutex
	handlers []Handler
	byName   map[string]Handler
	log      zerolog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		byName: map[string]Handler{},
		log:    log.With().Str("component", "plugins").Logger(),
	}
}

// Register adds h. Names must be unique.
func (r *Registry) Register(h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byName[h.Name()]; dup {
		return fmt.Errorf("plugin %q already registered", h.Name())
	}
	r.handlers = append(r.handlers, h)
	r.byName[h.Name()] = h
	r.log.Info().Str("plugin", h.Name()).Msg("plugin registered")
	return nil
}

// Names lists registered plugins in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for _, h := range r.handlers {
		out = append(out, h.Name())
	}
	return out
}

// Dispatch offers input to each handler in order and returns the first claim.
func (r *Registry) Dispatch(ctx context.Context, input string) (name, reply string, ok bool, err error) {
	r.mu.RLock()
	handlers := append([]Handler(nil), r.handlers...)
	r.mu.RUnlock()

	for _, h := range handlers {
		reply, ok, err := h.Handle(ctx, input)
		if err != nil {
			r.log.Error().Err(err).Str("plugin", h.Name()).Msg("plugin failed")
			return h.Name(), "", true, err
		}
		if ok {
			r.log.Info().Str("plugin", h.Name()).Msg("plugin handled input")
			return h.Name(), reply, true, nil
		}
	}
	return "", "", false, nil
}

// Run invokes the named plugin directly.
func (r *Registry) Run(ctx context.Context, name, input string) (string, bool, error) {
	r.mu.RLock()
	h, found := r.byName[name]
	r.mu.RUnlock()
	if !found {
		return "", false, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return h.Handle(ctx, input)
}
