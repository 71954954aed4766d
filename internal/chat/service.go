package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/JaimeStill/lectern/internal/config"
)

// Send executes one chat exchange. The completion runs outside the registry
// lock so a slow model endpoint never blocks other sessions; the session is
// re-checked before the reply is appended in case it was deleted mid-flight.
func (r *registry) Send(ctx context.Context, id uuid.UUID, cmd SendCommand) (*Exchange, error) {
	content := strings.TrimSpace(cmd.Message)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	r.mu.Lock()
	session, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return nil, ErrSessionNotFound
	}

	model, err := r.resolveModel(cmd.ModelID, session.ModelID)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}

	userMsg := Message{
		ID:        uuid.New(),
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
	session.Messages = append(session.Messages, userMsg)
	session.UpdatedAt = userMsg.CreatedAt

	history := make([]PromptMessage, 0, len(session.Messages))
	for _, m := range session.Messages {
		history = append(history, PromptMessage{Role: m.Role, Content: m.Content})
	}
	contextID := session.ContextID
	r.mu.Unlock()

	system := r.cfg.SystemPrompt
	var documentIDs []string
	if cmd.includeContext() && contextID != nil {
		block, ids := r.buildContext(ctx, *contextID)
		if block != "" {
			system = system + "\n\n" + block
		}
		documentIDs = ids
	}

	start := time.Now()
	result, err := r.completer.Complete(ctx, CompletionRequest{
		Model:    *model,
		System:   system,
		Messages: history,
	})
	if err != nil {
		r.logger.Error("completion failed", "session", id, "model", model.ID, "error", err)
		return nil, err
	}
	duration := time.Since(start)

	reply := Message{
		ID:        uuid.New(),
		Role:      RoleAssistant,
		Content:   result.Content,
		CreatedAt: time.Now(),
	}

	r.mu.Lock()
	if current, ok := r.sessions[id]; ok {
		current.Messages = append(current.Messages, reply)
		current.UpdatedAt = reply.CreatedAt
	}
	r.mu.Unlock()

	r.logger.Info("chat exchange complete",
		"session", id,
		"model", model.ID,
		"documents", len(documentIDs),
		"tokens", result.TokensUsed,
		"duration", duration,
	)

	return &Exchange{
		Reply:       reply,
		DocumentIDs: documentIDs,
		Model:       model.ID,
		TokensUsed:  result.TokensUsed,
		DurationMS:  duration.Milliseconds(),
	}, nil
}

// resolveModel picks the exchange model: explicit override, then the
// session's model, then the configured default.
func (r *registry) resolveModel(override, sessionModel string) (*config.ModelConfig, error) {
	for _, id := range []string{override, sessionModel, r.cfg.DefaultModel} {
		if id == "" {
			continue
		}
		model, ok := r.cfg.Model(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownModel, id)
		}
		return model, nil
	}
	return nil, ErrNoModel
}

// buildContext assembles the document context block for the bound context
// session. Failures degrade rather than abort: a missing context session or
// an unreadable document yields a smaller block, never a failed send.
func (r *registry) buildContext(ctx context.Context, contextID uuid.UUID) (string, []string) {
	ctxSession, err := r.contexts.Find(contextID)
	if err != nil {
		r.logger.Warn("context session missing, sending without context",
			"context", contextID)
		return "", nil
	}

	docs := ctxSession.SelectedDocuments()
	if len(docs) == 0 {
		return "", nil
	}
	if len(docs) > r.cfg.MaxContextDocs {
		r.logger.Warn("document selection exceeds context limit, truncating",
			"selected", len(docs), "limit", r.cfg.MaxContextDocs)
		docs = docs[:r.cfg.MaxContextDocs]
	}

	var b strings.Builder
	b.WriteString("Use the following exam documents as context:\n")

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		content, err := r.catalog.Content(ctx, d.ID)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				r.logger.Warn("document content unavailable, skipping",
					"document", d.ID, "error", err)
			}
			continue
		}
		if len(content) > r.cfg.MaxDocumentChars {
			cut := r.cfg.MaxDocumentChars
			for cut > 0 && !utf8.RuneStart(content[cut]) {
				cut--
			}
			content = content[:cut] + "\n[truncated]"
		}

		fmt.Fprintf(&b, "\n### Document: %s (%s)\n%s\n", d.Filename, d.Type, content)
		ids = append(ids, d.ID)
	}

	if len(ids) == 0 {
		return "", nil
	}
	return b.String(), ids
}
