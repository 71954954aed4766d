package chat_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/JaimeStill/lectern/internal/catalog"
	"github.com/JaimeStill/lectern/internal/chat"
	"github.com/JaimeStill/lectern/internal/config"
	"github.com/JaimeStill/lectern/internal/contexts"
)

type fakeCompleter struct {
	mu      sync.Mutex
	lastReq chat.CompletionRequest
	reply   string
	err     error
}

func (f *fakeCompleter) Complete(ctx context.Context, req chat.CompletionRequest) (*chat.CompletionResult, error) {
	f.mu.Lock()
	f.lastReq = req
	err := f.err
	reply := f.reply
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &chat.CompletionResult{Content: reply, TokensUsed: 42}, nil
}

func (f *fakeCompleter) last() chat.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

func ptr[T any](v T) *T {
	return &v
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func chatConfig() config.ChatConfig {
	return config.ChatConfig{
		SystemPrompt:     "You are a grading assistant.",
		DefaultModel:     "local",
		MaxContextDocs:   50,
		MaxDocumentChars: 5000,
		Models: []config.ModelConfig{
			{ID: "local", Name: "Llama 3.1 8B", Provider: "ollama", Model: "llama3.1:8b"},
			{ID: "cloud", Name: "GPT-4o mini", Provider: "openai", Model: "gpt-4o-mini"},
		},
	}
}

func fixtureCatalog() *catalog.Static {
	static := catalog.NewStatic([]catalog.Document{
		{
			ID: "d1", Type: catalog.TypeStatement,
			SubjectID: ptr("math"), Filename: "exam.pdf", Extension: ".pdf",
		},
		{
			ID: "d2", Type: catalog.TypeSubmission,
			SubjectID: ptr("math"), StudentID: ptr("s1"),
			Filename: "ana.pdf", Extension: ".pdf",
		},
	})
	static.Contents = map[string]string{
		"d1": "Question 1: solve for x.",
		"d2": "Answer: x equals four.",
	}
	return static
}

type harness struct {
	sys       chat.System
	contexts  contexts.System
	completer *fakeCompleter
	static    *catalog.Static
}

func setup(t *testing.T, cfg config.ChatConfig) *harness {
	t.Helper()

	static := fixtureCatalog()
	ctxSys := contexts.New(static, discard())
	completer := &fakeCompleter{reply: "The answer is four."}

	return &harness{
		sys:       chat.New(cfg, static, ctxSys, completer, discard()),
		contexts:  ctxSys,
		completer: completer,
		static:    static,
	}
}

func (h *harness) sessionWithContext(t *testing.T) *chat.Session {
	t.Helper()

	ctxSession := h.contexts.Create(context.Background())
	contextID := ctxSession.ID()

	session, err := h.sys.Create(chat.CreateCommand{
		Title:     "Review",
		ContextID: &contextID,
	})
	if err != nil {
		t.Fatalf("create chat session: %v", err)
	}
	return session
}

func TestCreateUsesDefaultModel(t *testing.T) {
	h := setup(t, chatConfig())

	session, err := h.sys.Create(chat.CreateCommand{Title: "Review"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if session.ModelID != "local" {
		t.Errorf("model: got %s, want local", session.ModelID)
	}
}

func TestCreateUnknownModel(t *testing.T) {
	h := setup(t, chatConfig())

	if _, err := h.sys.Create(chat.CreateCommand{ModelID: "nope"}); !errors.Is(err, chat.ErrUnknownModel) {
		t.Errorf("got %v, want ErrUnknownModel", err)
	}
}

func TestCreateNoModelsConfigured(t *testing.T) {
	h := setup(t, config.ChatConfig{SystemPrompt: "x"})

	if _, err := h.sys.Create(chat.CreateCommand{}); !errors.Is(err, chat.ErrNoModel) {
		t.Errorf("got %v, want ErrNoModel", err)
	}
}

func TestSendWithDocumentContext(t *testing.T) {
	h := setup(t, chatConfig())
	session := h.sessionWithContext(t)

	exchange, err := h.sys.Send(context.Background(), session.ID, chat.SendCommand{
		Message: "Did Ana get question one right?",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if exchange.Reply.Role != chat.RoleAssistant {
		t.Errorf("reply role: got %s", exchange.Reply.Role)
	}
	if exchange.Reply.Content != "The answer is four." {
		t.Errorf("reply content: got %q", exchange.Reply.Content)
	}
	if exchange.Model != "local" {
		t.Errorf("model: got %s, want local", exchange.Model)
	}
	if len(exchange.DocumentIDs) != 2 {
		t.Errorf("document ids: got %v, want [d1 d2]", exchange.DocumentIDs)
	}

	system := h.completer.last().System
	if !strings.Contains(system, "You are a grading assistant.") {
		t.Error("system prompt missing configured prompt")
	}
	if !strings.Contains(system, "### Document: exam.pdf (statement)") {
		t.Errorf("system prompt missing document header: %q", system)
	}
	if !strings.Contains(system, "Answer: x equals four.") {
		t.Error("system prompt missing document content")
	}

	stored, err := h.sys.Find(session.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(stored.Messages) != 2 {
		t.Fatalf("messages: got %d, want 2", len(stored.Messages))
	}
	if stored.Messages[0].Role != chat.RoleUser || stored.Messages[1].Role != chat.RoleAssistant {
		t.Error("message roles out of order")
	}
}

func TestSendWithoutContext(t *testing.T) {
	h := setup(t, chatConfig())
	session := h.sessionWithContext(t)

	include := false
	exchange, err := h.sys.Send(context.Background(), session.ID, chat.SendCommand{
		Message:        "General question.",
		IncludeContext: &include,
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(exchange.DocumentIDs) != 0 {
		t.Errorf("document ids: got %v, want none", exchange.DocumentIDs)
	}
	if strings.Contains(h.completer.last().System, "### Document:") {
		t.Error("system prompt should carry no document block")
	}
}

func TestSendMissingContextSessionDegrades(t *testing.T) {
	h := setup(t, chatConfig())

	orphan := uuid.New()
	session, err := h.sys.Create(chat.CreateCommand{ContextID: &orphan})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	exchange, err := h.sys.Send(context.Background(), session.ID, chat.SendCommand{
		Message: "Still works?",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(exchange.DocumentIDs) != 0 {
		t.Errorf("document ids: got %v, want none", exchange.DocumentIDs)
	}
}

func TestSendTruncatesLongDocuments(t *testing.T) {
	cfg := chatConfig()
	cfg.MaxDocumentChars = 10

	h := setup(t, cfg)
	session := h.sessionWithContext(t)

	if _, err := h.sys.Send(context.Background(), session.ID, chat.SendCommand{
		Message: "Summarize.",
	}); err != nil {
		t.Fatalf("send: %v", err)
	}

	system := h.completer.last().System
	if !strings.Contains(system, "[truncated]") {
		t.Error("long document content should be truncated")
	}
	if strings.Contains(system, "solve for x") {
		t.Error("content past the limit should be cut")
	}
}

func TestSendTruncatesAtRuneBoundary(t *testing.T) {
	cfg := chatConfig()
	cfg.MaxDocumentChars = 5

	h := setup(t, cfg)
	h.static.Contents = map[string]string{
		"d1": strings.Repeat("á", 8),
		"d2": strings.Repeat("ç", 8),
	}
	session := h.sessionWithContext(t)

	if _, err := h.sys.Send(context.Background(), session.ID, chat.SendCommand{
		Message: "Summarize.",
	}); err != nil {
		t.Fatalf("send: %v", err)
	}

	system := h.completer.last().System
	if !strings.Contains(system, "[truncated]") {
		t.Error("long document content should be truncated")
	}
	if !utf8.ValidString(system) {
		t.Errorf("truncation split a multi-byte rune: %q", system)
	}
	if !strings.Contains(system, "áá") {
		t.Errorf("content up to the rune boundary should survive: %q", system)
	}
}

func TestSendCapsContextDocuments(t *testing.T) {
	cfg := chatConfig()
	cfg.MaxContextDocs = 1

	h := setup(t, cfg)
	session := h.sessionWithContext(t)

	exchange, err := h.sys.Send(context.Background(), session.ID, chat.SendCommand{
		Message: "Summarize.",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(exchange.DocumentIDs) != 1 || exchange.DocumentIDs[0] != "d1" {
		t.Errorf("document ids: got %v, want [d1]", exchange.DocumentIDs)
	}
}

func TestSendEmptyMessage(t *testing.T) {
	h := setup(t, chatConfig())
	session := h.sessionWithContext(t)

	if _, err := h.sys.Send(context.Background(), session.ID, chat.SendCommand{
		Message: "   ",
	}); !errors.Is(err, chat.ErrEmptyMessage) {
		t.Errorf("got %v, want ErrEmptyMessage", err)
	}
}

func TestSendModelOverride(t *testing.T) {
	h := setup(t, chatConfig())
	session := h.sessionWithContext(t)

	exchange, err := h.sys.Send(context.Background(), session.ID, chat.SendCommand{
		Message: "Hello",
		ModelID: "cloud",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if exchange.Model != "cloud" {
		t.Errorf("model: got %s, want cloud", exchange.Model)
	}

	if _, err := h.sys.Send(context.Background(), session.ID, chat.SendCommand{
		Message: "Hello",
		ModelID: "nope",
	}); !errors.Is(err, chat.ErrUnknownModel) {
		t.Errorf("got %v, want ErrUnknownModel", err)
	}
}

func TestSendCompletionFailure(t *testing.T) {
	h := setup(t, chatConfig())
	session := h.sessionWithContext(t)

	h.completer.err = chat.ErrCompletionFailed

	if _, err := h.sys.Send(context.Background(), session.ID, chat.SendCommand{
		Message: "Hello",
	}); !errors.Is(err, chat.ErrCompletionFailed) {
		t.Errorf("got %v, want ErrCompletionFailed", err)
	}
}

func TestFindReturnsIndependentSnapshot(t *testing.T) {
	h := setup(t, chatConfig())
	session := h.sessionWithContext(t)

	before, err := h.sys.Find(session.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	if _, err := h.sys.Send(context.Background(), session.ID, chat.SendCommand{
		Message: "Hello",
	}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(before.Messages) != 0 {
		t.Errorf("earlier snapshot observed a later send: %d messages", len(before.Messages))
	}

	after, err := h.sys.Find(session.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	after.Messages = append(after.Messages, chat.Message{Role: chat.RoleUser, Content: "local edit"})
	after.Title = "local edit"

	stored, err := h.sys.Find(session.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(stored.Messages) != 2 {
		t.Errorf("mutating a snapshot leaked into the registry: %d messages", len(stored.Messages))
	}
	if stored.Title != "Review" {
		t.Errorf("title: got %q, want Review", stored.Title)
	}
}

func TestConcurrentSendAndRead(t *testing.T) {
	h := setup(t, chatConfig())
	session := h.sessionWithContext(t)

	var wg sync.WaitGroup
	for range 4 {
		wg.Go(func() {
			for range 8 {
				if _, err := h.sys.Send(context.Background(), session.ID, chat.SendCommand{
					Message: "ping",
				}); err != nil {
					t.Errorf("send: %v", err)
					return
				}
			}
		})
		wg.Go(func() {
			for range 8 {
				found, err := h.sys.Find(session.ID)
				if err != nil {
					t.Errorf("find: %v", err)
					return
				}
				if _, err := json.Marshal(found); err != nil {
					t.Errorf("marshal found session: %v", err)
					return
				}
				if _, err := json.Marshal(h.sys.List()); err != nil {
					t.Errorf("marshal session list: %v", err)
					return
				}
			}
		})
	}
	wg.Wait()

	stored, err := h.sys.Find(session.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(stored.Messages) != 64 {
		t.Errorf("messages: got %d, want 64", len(stored.Messages))
	}
}

func TestSessionLifecycle(t *testing.T) {
	h := setup(t, chatConfig())

	first, err := h.sys.Create(chat.CreateCommand{Title: "First"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := h.sys.Create(chat.CreateCommand{Title: "Second"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	sessions := h.sys.List()
	if len(sessions) != 2 {
		t.Fatalf("list: got %d, want 2", len(sessions))
	}
	if sessions[0].ID != first.ID || sessions[1].ID != second.ID {
		t.Error("list should be in creation order")
	}

	if err := h.sys.Delete(first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := h.sys.Find(first.ID); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Errorf("find after delete: got %v, want ErrSessionNotFound", err)
	}
}
