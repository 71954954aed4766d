package contexts

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/lectern/internal/catalog"
)

// System defines the public contract for context session operations.
type System interface {
	Handler() *Handler

	// Create opens a session over a fresh catalog snapshot. A failed
	// snapshot fetch still yields a session, opened degraded.
	Create(ctx context.Context) *Session

	Find(id uuid.UUID) (*Session, error)
	Delete(id uuid.UUID) error
}

type registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	catalog  catalog.System
	logger   *slog.Logger
}

// New creates a context session registry implementing the System interface.
func New(cat catalog.System, logger *slog.Logger) System {
	return &registry{
		sessions: make(map[uuid.UUID]*Session),
		catalog:  cat,
		logger:   logger.With("system", "contexts"),
	}
}

func (r *registry) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *registry) Create(ctx context.Context) *Session {
	s := newSession(ctx, r.catalog, r.logger)

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()

	r.logger.Info("context session opened", "session", s.ID(), "available", s.Available())
	return s
}

func (r *registry) Find(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *registry) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}

	delete(r.sessions, id)
	r.logger.Info("context session closed", "session", id)
	return nil
}
