package chat

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lectern/internal/catalog"
	"github.com/JaimeStill/lectern/internal/config"
	"github.com/JaimeStill/lectern/internal/contexts"
)

// System defines the public contract for chat operations.
type System interface {
	Handler() *Handler

	Models() []config.ModelConfig
	Create(cmd CreateCommand) (*Session, error)
	Find(id uuid.UUID) (*Session, error)
	List() []*Session
	Delete(id uuid.UUID) error

	// Send appends a user message, executes the completion with the bound
	// context session's document selection, and appends the reply.
	Send(ctx context.Context, id uuid.UUID, cmd SendCommand) (*Exchange, error)
}

type registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	cfg       config.ChatConfig
	catalog   catalog.System
	contexts  contexts.System
	completer Completer
	logger    *slog.Logger
}

// New creates a chat session registry implementing the System interface.
func New(
	cfg config.ChatConfig,
	cat catalog.System,
	ctxs contexts.System,
	completer Completer,
	logger *slog.Logger,
) System {
	return &registry{
		sessions:  make(map[uuid.UUID]*Session),
		cfg:       cfg,
		catalog:   cat,
		contexts:  ctxs,
		completer: completer,
		logger:    logger.With("system", "chat"),
	}
}

func (r *registry) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *registry) Models() []config.ModelConfig {
	return r.cfg.Models
}

func (r *registry) Create(cmd CreateCommand) (*Session, error) {
	modelID := cmd.ModelID
	if modelID == "" {
		modelID = r.cfg.DefaultModel
	}
	if modelID == "" {
		return nil, ErrNoModel
	}
	if _, ok := r.cfg.Model(modelID); !ok {
		return nil, ErrUnknownModel
	}

	title := cmd.Title
	if title == "" {
		title = "New conversation"
	}

	now := time.Now()
	s := &Session{
		ID:        uuid.New(),
		Title:     title,
		ModelID:   modelID,
		ContextID: cmd.ContextID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.logger.Info("chat session opened", "session", s.ID, "model", modelID)
	return s.clone(), nil
}

// Find returns a snapshot of the session taken under the registry lock.
// Callers marshal and inspect it freely while Send mutates the stored one.
func (r *registry) Find(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.clone(), nil
}

// List returns snapshots of every session, oldest first.
func (r *registry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s.clone())
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions
}

func (r *registry) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}

	delete(r.sessions, id)
	r.logger.Info("chat session closed", "session", id)
	return nil
}
