package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"translation-agent/backend/internal/config"
	"translation-agent/backend/internal/network"
	"translation-agent/backend/internal/repository"
	"translation-agent/backend/internal/service/ai"
)

// ProviderFactory builds a provider over an HTTP client.
type ProviderFactory func(cfg ai.Config, httpClient *http.Client) (ai.Provider, error)

// ProviderSelection carries the per-request provider choice. APIKeys holds
// caller-supplied keys by provider name; only the selected provider's key
// is used.
type ProviderSelection struct {
	LLM     string
	Model   string
	APIKeys map[string]string
}

// ProviderResolver merges request overrides, runtime settings and the
// environment into a provider configuration.
type ProviderResolver struct {
	settingsRepo repository.SettingsRepository
	cfg          config.Config
	clients      *network.ClientFactory
	factory      ProviderFactory
}

// NewProviderResolver creates a resolver. factory may be nil to use
// ai.NewProvider.
func NewProviderResolver(settingsRepo repository.SettingsRepository, cfg config.Config, clients *network.ClientFactory, factory ProviderFactory) *ProviderResolver {
	if factory == nil {
		factory = ai.NewProvider
	}
	if clients == nil {
		clients = network.NewClientFactory(nil)
	}
	return &ProviderResolver{
		settingsRepo: settingsRepo,
		cfg:          cfg,
		clients:      clients,
		factory:      factory,
	}
}

// Resolve returns the configuration for sel. The request wins over stored
// settings, which win over the environment. Stored settings only apply to
// the provider they were saved for.
func (r *ProviderResolver) Resolve(ctx context.Context, sel ProviderSelection) (ai.Config, error) {
	stored, err := r.storedSettings(ctx)
	if err != nil {
		return ai.Config{}, err
	}

	name := strings.ToLower(strings.TrimSpace(sel.LLM))
	if name == "" {
		name = stored[keyAIProvider]
	}
	if name == "" {
		name = r.cfg.Provider
	}
	if !ai.IsValidProvider(name) {
		return ai.Config{}, fmt.Errorf("%w: unknown provider %q", ErrInvalid, name)
	}

	env, _ := r.cfg.ProviderConfig(name)
	out := ai.Config{
		Provider:        name,
		APIKey:          env.APIKey,
		BaseURL:         env.BaseURL,
		Model:           env.Model,
		MaxOutputTokens: r.cfg.MaxOutputTokens,
	}

	if stored[keyAIProvider] == name {
		if v := stored[keyAIAPIKey]; v != "" {
			out.APIKey = v
		}
		if v := stored[keyAIBaseURL]; v != "" {
			out.BaseURL = v
		}
		if v := stored[keyAIModel]; v != "" {
			out.Model = v
		}
		out.Thinking = stored[keyAIThinking] == "true"
		out.ThinkingBudget, _ = strconv.Atoi(stored[keyAIThinkingBudget])
		out.ReasoningEffort = stored[keyAIReasoningEffort]
	}

	if key := strings.TrimSpace(sel.APIKeys[name]); key != "" {
		out.APIKey = key
	}
	if m := strings.TrimSpace(sel.Model); m != "" {
		out.Model = m
	}
	if out.Model == "" {
		out.Model = ai.DefaultModel(name)
	}

	switch {
	case out.APIKey == "":
		return out, fmt.Errorf("%w: %s API key is not set", ErrNotConfigured, name)
	case out.Model == "":
		return out, fmt.Errorf("%w: %s model is not set", ErrNotConfigured, name)
	case name == ai.ProviderCompatible && out.BaseURL == "":
		return out, fmt.Errorf("%w: %s base URL is not set", ErrNotConfigured, name)
	}
	return out, nil
}

// Configured reports whether the named provider resolves without overrides.
func (r *ProviderResolver) Configured(ctx context.Context, name string) bool {
	_, err := r.Resolve(ctx, ProviderSelection{LLM: name})
	return err == nil
}

// Build creates a provider for cfg over the proxy-aware HTTP client.
func (r *ProviderResolver) Build(ctx context.Context, cfg ai.Config) (ai.Provider, error) {
	p, err := r.factory(cfg, r.clients.NewHTTPClient(ctx, 0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return p, nil
}

// DefaultProvider returns the provider used when a request names none.
func (r *ProviderResolver) DefaultProvider(ctx context.Context) string {
	stored, err := r.storedSettings(ctx)
	if err == nil && stored[keyAIProvider] != "" {
		return stored[keyAIProvider]
	}
	return r.cfg.Provider
}

func (r *ProviderResolver) storedSettings(ctx context.Context) (map[string]string, error) {
	settings, err := r.settingsRepo.GetByPrefix(ctx, "ai.")
	if err != nil {
		return nil, fmt.Errorf("get AI settings: %w", err)
	}
	out := make(map[string]string, len(settings))
	for _, s := range settings {
		out[s.Key] = s.Value
	}
	return out, nil
}
