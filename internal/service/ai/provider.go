package ai

import (
	"context"
	"errors"
	"net/http"
)

// Provider is a chat-completion backend.
type Provider interface {
	// Name returns the provider name.
	Name() string
	// Model returns the model the provider was built for.
	Model() string
	// Test sends a short probe message and returns the reply.
	Test(ctx context.Context) (string, error)
	// Stream generates a completion incrementally.
	// The text channel is closed when streaming is complete; the error
	// channel carries at most one error and is closed after it.
	Stream(ctx context.Context, systemPrompt, prompt string) (<-chan string, <-chan error)
	// Complete generates a response without streaming.
	Complete(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// Config holds the configuration for an AI provider.
type Config struct {
	Provider        string // openai, gemini, anthropic, compatible
	APIKey          string
	BaseURL         string // optional except for compatible
	Model           string // empty selects DefaultModel(Provider)
	MaxOutputTokens int
	Thinking        bool   // enable thinking/reasoning
	ThinkingBudget  int    // Anthropic budget_tokens
	ReasoningEffort string // OpenAI effort: low/medium/high/minimal
}

const (
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderAnthropic  = "anthropic"
	ProviderCompatible = "compatible"
)

// DefaultMaxOutputTokens caps each completion when Config leaves it unset.
const DefaultMaxOutputTokens = 1000

var (
	ErrInvalidProvider = errors.New("invalid provider")
	ErrMissingAPIKey   = errors.New("API key is required")
	ErrMissingBaseURL  = errors.New("base URL is required for compatible provider")
	ErrMissingModel    = errors.New("model is required")
)

var defaultModels = map[string]string{
	ProviderOpenAI:    "gpt-3.5-turbo",
	ProviderGemini:    "gemini-1.5-flash",
	ProviderAnthropic: "claude-3-5-haiku-latest",
}

// Providers lists the supported provider names.
func Providers() []string {
	return []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderCompatible}
}

// DefaultModel returns the model used when none is configured, or "" when
// the provider has no sensible default.
func DefaultModel(provider string) string {
	return defaultModels[provider]
}

// IsValidProvider reports whether name is a supported provider.
func IsValidProvider(name string) bool {
	for _, p := range Providers() {
		if p == name {
			return true
		}
	}
	return false
}

// NewProvider creates a provider from cfg. httpClient may be nil to use the
// SDK default client.
func NewProvider(cfg Config, httpClient *http.Client) (Provider, error) {
	if !IsValidProvider(cfg.Provider) {
		return nil, ErrInvalidProvider
	}
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	if cfg.Model == "" {
		return nil, ErrMissingModel
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = DefaultMaxOutputTokens
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg, httpClient)
	case ProviderGemini:
		return NewGeminiProvider(cfg, httpClient)
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg, httpClient)
	default:
		if cfg.BaseURL == "" {
			return nil, ErrMissingBaseURL
		}
		return NewCompatibleProvider(cfg, httpClient)
	}
}

// sendText delivers one chunk unless ctx is done.
func sendText(ctx context.Context, textCh chan<- string, text string) bool {
	select {
	case textCh <- text:
		return true
	case <-ctx.Done():
		return false
	}
}

// sendErr records err without blocking; errCh is buffered for one value.
func sendErr(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
	}
}
