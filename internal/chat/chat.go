// Package chat provides model-backed conversations grounded in a context
// session's resolved document selection. Sessions are transient: they live
// in process memory and disappear on restart, like the context sessions
// they reference.
package chat

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Role identifies a message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a chat session.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is a chat conversation, optionally bound to a context session
// whose resolved document selection is injected into each exchange.
type Session struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	ModelID   string     `json:"model_id"`
	ContextID *uuid.UUID `json:"context_id,omitempty"`
	Messages  []Message  `json:"messages"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// clone returns an independent copy of the session, safe to read and marshal
// after the registry lock is released while Send keeps mutating the original.
func (s *Session) clone() *Session {
	c := *s
	c.Messages = slices.Clone(s.Messages)
	if s.ContextID != nil {
		id := *s.ContextID
		c.ContextID = &id
	}
	return &c
}

// CreateCommand carries the fields for opening a chat session.
type CreateCommand struct {
	Title     string     `json:"title"`
	ModelID   string     `json:"model_id"`
	ContextID *uuid.UUID `json:"context_id,omitempty"`
}

// SendCommand carries one user message. ModelID overrides the session model
// for this exchange only. IncludeContext defaults to true; explicit false
// sends the message without document context even when a context session is
// bound.
type SendCommand struct {
	Message        string `json:"message"`
	ModelID        string `json:"model_id,omitempty"`
	IncludeContext *bool  `json:"include_context,omitempty"`
}

// Exchange is the result of one send: the assistant reply plus the document
// set that grounded it.
type Exchange struct {
	Reply       Message  `json:"reply"`
	DocumentIDs []string `json:"document_ids"`
	Model       string   `json:"model"`
	TokensUsed  int      `json:"tokens_used"`
	DurationMS  int64    `json:"duration_ms"`
}

func (c SendCommand) includeContext() bool {
	return c.IncludeContext == nil || *c.IncludeContext
}
