package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvChatDefaultModel = "LECTERN_CHAT_DEFAULT_MODEL"
	EnvChatSystemPrompt = "LECTERN_CHAT_SYSTEM_PROMPT"
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"

	EnvChatMaxContextDocs   = "LECTERN_CHAT_MAX_CONTEXT_DOCS"
	EnvChatMaxDocumentChars = "LECTERN_CHAT_MAX_DOCUMENT_CHARS"
)

const defaultSystemPrompt = "You are an educational assistant specialized in " +
	"exam review and grading. Answer using the supplied exam documents as " +
	"context when they are provided, and say so explicitly when the documents " +
	"do not contain the information needed."

// ModelConfig describes one chat model the service can route to. BaseURL is
// optional; when empty the provider's default OpenAI-compatible endpoint is
// used. APIKeyEnv names the environment variable holding the credential —
// keys themselves never appear in config files.
type ModelConfig struct {
	ID        string `toml:"id"`
	Name      string `toml:"name"`
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	BaseURL   string `toml:"base_url"`
	APIKeyEnv string `toml:"api_key_env"`
}

// ChatConfig holds the chat model catalog and context assembly limits.
type ChatConfig struct {
	SystemPrompt     string        `toml:"system_prompt"`
	DefaultModel     string        `toml:"default_model"`
	MaxContextDocs   int           `toml:"max_context_docs"`
	MaxDocumentChars int           `toml:"max_document_chars"`
	Models           []ModelConfig `toml:"models"`
}

// Finalize applies defaults, environment variable overrides, and validation.
// With no models configured and OPENAI_API_KEY present, a default OpenAI
// model is seeded so a bare environment still gets a working chat.
func (c *ChatConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ChatConfig) Merge(overlay *ChatConfig) {
	if overlay.SystemPrompt != "" {
		c.SystemPrompt = overlay.SystemPrompt
	}
	if overlay.DefaultModel != "" {
		c.DefaultModel = overlay.DefaultModel
	}
	if overlay.MaxContextDocs != 0 {
		c.MaxContextDocs = overlay.MaxContextDocs
	}
	if overlay.MaxDocumentChars != 0 {
		c.MaxDocumentChars = overlay.MaxDocumentChars
	}
	if len(overlay.Models) > 0 {
		c.Models = overlay.Models
	}
}

// Model returns the model config with the given id.
func (c *ChatConfig) Model(id string) (*ModelConfig, bool) {
	for i := range c.Models {
		if c.Models[i].ID == id {
			return &c.Models[i], true
		}
	}
	return nil, false
}

func (c *ChatConfig) loadDefaults() {
	if c.SystemPrompt == "" {
		c.SystemPrompt = defaultSystemPrompt
	}
	if c.MaxContextDocs == 0 {
		c.MaxContextDocs = 50
	}
	if c.MaxDocumentChars == 0 {
		c.MaxDocumentChars = 5000
	}
}

func (c *ChatConfig) loadEnv() {
	if v := os.Getenv(EnvChatSystemPrompt); v != "" {
		c.SystemPrompt = v
	}
	if v := os.Getenv(EnvChatDefaultModel); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv(EnvChatMaxContextDocs); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxContextDocs = n
		}
	}
	if v := os.Getenv(EnvChatMaxDocumentChars); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxDocumentChars = n
		}
	}

	if len(c.Models) == 0 && os.Getenv(EnvOpenAIAPIKey) != "" {
		c.Models = []ModelConfig{{
			ID:        "openai-default",
			Name:      "GPT-4o mini",
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			APIKeyEnv: EnvOpenAIAPIKey,
		}}
	}
}

func (c *ChatConfig) validate() error {
	seen := make(map[string]bool, len(c.Models))
	for _, m := range c.Models {
		if m.ID == "" {
			return fmt.Errorf("model id required")
		}
		if m.Model == "" {
			return fmt.Errorf("model %s: model name required", m.ID)
		}
		if seen[m.ID] {
			return fmt.Errorf("duplicate model id: %s", m.ID)
		}
		seen[m.ID] = true
	}

	if c.DefaultModel != "" {
		if _, ok := c.Model(c.DefaultModel); !ok {
			return fmt.Errorf("default_model %s not in model list", c.DefaultModel)
		}
	}
	if c.DefaultModel == "" && len(c.Models) > 0 {
		c.DefaultModel = c.Models[0].ID
	}

	return nil
}
