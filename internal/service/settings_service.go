package service

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"translation-agent/backend/internal/logger"
	"translation-agent/backend/internal/network"
	"translation-agent/backend/internal/repository"
	"translation-agent/backend/internal/service/ai"
)

// AISettings holds the runtime provider configuration.
type AISettings struct {
	Provider        string `json:"provider"`
	APIKey          string `json:"apiKey"`
	BaseURL         string `json:"baseUrl"`
	Model           string `json:"model"`
	Thinking        bool   `json:"thinking"`
	ThinkingBudget  int    `json:"thinkingBudget"`
	ReasoningEffort string `json:"reasoningEffort"`
	RateLimit       int    `json:"rateLimit"`
}

// AITestConfig is a provider configuration to probe before saving it.
type AITestConfig struct {
	Provider        string
	APIKey          string
	BaseURL         string
	Model           string
	Thinking        bool
	ThinkingBudget  int
	ReasoningEffort string
}

// NetworkSettings holds the outbound proxy configuration.
type NetworkSettings struct {
	Enabled  bool   `json:"enabled"`
	Type     string `json:"type"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Setting keys
const (
	keyAIProvider        = "ai.provider"
	keyAIAPIKey          = "ai.api_key"
	keyAIBaseURL         = "ai.base_url"
	keyAIModel           = "ai.model"
	keyAIThinking        = "ai.thinking"
	keyAIThinkingBudget  = "ai.thinking_budget"
	keyAIReasoningEffort = "ai.reasoning_effort"
	keyAIRateLimit       = "ai.rate_limit"

	keyNetworkEnabled  = "network.enabled"
	keyNetworkType     = "network.type"
	keyNetworkHost     = "network.host"
	keyNetworkPort     = "network.port"
	keyNetworkUsername = "network.username"
	keyNetworkPassword = "network.password"
)

// SettingsService provides settings management.
type SettingsService interface {
	// GetAISettings returns the AI configuration with masked API keys.
	GetAISettings(ctx context.Context) (*AISettings, error)
	// SetAISettings updates the AI configuration.
	// If apiKey is empty or masked, it keeps the existing key.
	SetAISettings(ctx context.Context, settings *AISettings) error
	// TestAI probes a provider with a short "Hello world" message.
	TestAI(ctx context.Context, cfg AITestConfig) (string, error)
	// RestoreRateLimit applies the stored rate limit to the limiter.
	RestoreRateLimit(ctx context.Context) error

	// GetNetworkSettings returns the proxy configuration with a masked password.
	GetNetworkSettings(ctx context.Context) (*NetworkSettings, error)
	// SetNetworkSettings updates the proxy configuration.
	// If password is empty or masked, it keeps the existing password.
	SetNetworkSettings(ctx context.Context, settings *NetworkSettings) error
}

type settingsService struct {
	repo        repository.SettingsRepository
	resolver    *ProviderResolver
	rateLimiter *ai.RateLimiter
}

// NewSettingsService creates a new settings service.
func NewSettingsService(repo repository.SettingsRepository, resolver *ProviderResolver, rateLimiter *ai.RateLimiter) SettingsService {
	return &settingsService{repo: repo, resolver: resolver, rateLimiter: rateLimiter}
}

func (s *settingsService) GetAISettings(ctx context.Context) (*AISettings, error) {
	settings := &AISettings{
		Provider:        s.resolver.DefaultProvider(ctx),
		ThinkingBudget:  10000,    // default budget
		ReasoningEffort: "medium", // default effort
		RateLimit:       s.rateLimiter.GetLimit(),
	}

	stored, err := s.resolver.storedSettings(ctx)
	if err != nil {
		return nil, err
	}
	if val := stored[keyAIAPIKey]; val != "" {
		settings.APIKey = maskAPIKey(val)
	}
	settings.BaseURL = stored[keyAIBaseURL]
	settings.Model = stored[keyAIModel]
	settings.Thinking = stored[keyAIThinking] == "true"
	if val, err := strconv.Atoi(stored[keyAIThinkingBudget]); err == nil && val > 0 {
		settings.ThinkingBudget = val
	}
	// Allow empty string to override default (for Compatible Budget mode)
	if val, ok := stored[keyAIReasoningEffort]; ok {
		settings.ReasoningEffort = val
	}
	return settings, nil
}

func (s *settingsService) SetAISettings(ctx context.Context, settings *AISettings) error {
	if settings.Provider != "" {
		provider := strings.ToLower(settings.Provider)
		if !ai.IsValidProvider(provider) {
			return fmt.Errorf("%w: unknown provider %q", ErrInvalid, settings.Provider)
		}
		if err := s.repo.Set(ctx, keyAIProvider, provider); err != nil {
			return fmt.Errorf("set provider: %w", err)
		}
	}
	if err := s.setSecret(ctx, keyAIAPIKey, settings.APIKey); err != nil {
		return fmt.Errorf("set api key: %w", err)
	}
	if err := s.repo.Set(ctx, keyAIBaseURL, settings.BaseURL); err != nil {
		return fmt.Errorf("set base url: %w", err)
	}
	if err := s.repo.Set(ctx, keyAIModel, settings.Model); err != nil {
		return fmt.Errorf("set model: %w", err)
	}
	if err := s.repo.Set(ctx, keyAIThinking, strconv.FormatBool(settings.Thinking)); err != nil {
		return fmt.Errorf("set thinking: %w", err)
	}
	if err := s.repo.Set(ctx, keyAIThinkingBudget, strconv.Itoa(settings.ThinkingBudget)); err != nil {
		return fmt.Errorf("set thinking budget: %w", err)
	}
	if err := s.repo.Set(ctx, keyAIReasoningEffort, settings.ReasoningEffort); err != nil {
		return fmt.Errorf("set reasoning effort: %w", err)
	}
	if settings.RateLimit > 0 {
		if err := s.repo.Set(ctx, keyAIRateLimit, strconv.Itoa(settings.RateLimit)); err != nil {
			return fmt.Errorf("set rate limit: %w", err)
		}
		s.rateLimiter.SetLimit(settings.RateLimit)
	}
	logger.Info("ai settings updated", "module", "service", "action", "update", "resource", "settings", "result", "ok", "provider", settings.Provider)
	return nil
}

func (s *settingsService) RestoreRateLimit(ctx context.Context) error {
	val, err := s.getString(ctx, keyAIRateLimit)
	if err != nil || val == "" {
		return err
	}
	limit, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("parse rate limit: %w", err)
	}
	s.rateLimiter.SetLimit(limit)
	return nil
}

func (s *settingsService) TestAI(ctx context.Context, cfg AITestConfig) (string, error) {
	provider := strings.ToLower(cfg.Provider)
	apiKey := cfg.APIKey
	// A masked or empty key means "use the key the server already has".
	if apiKey == "" || isMaskedKey(apiKey) {
		resolved, err := s.resolver.Resolve(ctx, ProviderSelection{LLM: provider})
		if err != nil && resolved.APIKey == "" {
			return "", err
		}
		apiKey = resolved.APIKey
	}

	p, err := s.resolver.Build(ctx, ai.Config{
		Provider:        provider,
		APIKey:          apiKey,
		BaseURL:         cfg.BaseURL,
		Model:           cfg.Model,
		MaxOutputTokens: ai.DefaultMaxOutputTokens,
		Thinking:        cfg.Thinking,
		ThinkingBudget:  cfg.ThinkingBudget,
		ReasoningEffort: cfg.ReasoningEffort,
	})
	if err != nil {
		return "", err
	}

	if err := s.rateLimiter.Wait(ctx, "test"); err != nil {
		return "", err
	}
	reply, err := p.Test(ctx)
	if err != nil {
		logger.Warn("ai test failed", "module", "service", "action", "request", "resource", "ai", "result", "failed", "provider", provider, "model", p.Model(), "error", err)
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	return reply, nil
}

func (s *settingsService) GetNetworkSettings(ctx context.Context) (*NetworkSettings, error) {
	settings, err := loadNetworkSettings(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	settings.Password = maskAPIKey(settings.Password)
	return settings, nil
}

func (s *settingsService) SetNetworkSettings(ctx context.Context, settings *NetworkSettings) error {
	proxyType := strings.ToLower(settings.Type)
	if proxyType == "" {
		proxyType = "http"
	}
	switch proxyType {
	case "http", "https", "socks5":
	default:
		return fmt.Errorf("%w: proxy type %q", ErrInvalid, settings.Type)
	}
	if settings.Enabled && (settings.Host == "" || settings.Port <= 0 || settings.Port > 65535) {
		return fmt.Errorf("%w: proxy host and port are required", ErrInvalid)
	}

	values := []struct{ key, value string }{
		{keyNetworkEnabled, strconv.FormatBool(settings.Enabled)},
		{keyNetworkType, proxyType},
		{keyNetworkHost, settings.Host},
		{keyNetworkPort, strconv.Itoa(settings.Port)},
		{keyNetworkUsername, settings.Username},
	}
	for _, v := range values {
		if err := s.repo.Set(ctx, v.key, v.value); err != nil {
			return fmt.Errorf("set %s: %w", v.key, err)
		}
	}
	if err := s.setSecret(ctx, keyNetworkPassword, settings.Password); err != nil {
		return fmt.Errorf("set proxy password: %w", err)
	}
	logger.Info("network settings updated", "module", "service", "action", "update", "resource", "settings", "result", "ok", "enabled", settings.Enabled, "type", proxyType)
	return nil
}

// settingsProxy resolves the outbound proxy from stored network settings,
// falling back to a fixed URL from the environment.
type settingsProxy struct {
	repo     repository.SettingsRepository
	fallback string
}

// NewSettingsProxyProvider returns a network.ProxyProvider backed by the
// stored network settings.
func NewSettingsProxyProvider(repo repository.SettingsRepository, fallback string) network.ProxyProvider {
	return &settingsProxy{repo: repo, fallback: fallback}
}

func (p *settingsProxy) GetProxyURL(ctx context.Context) string {
	settings, err := loadNetworkSettings(ctx, p.repo)
	if err != nil || !settings.Enabled {
		return p.fallback
	}
	return BuildProxyURL(settings)
}

// BuildProxyURL renders settings as a proxy URL, or "" when incomplete.
func BuildProxyURL(settings *NetworkSettings) string {
	if settings.Host == "" || settings.Port <= 0 {
		return ""
	}
	scheme := settings.Type
	if scheme == "" {
		scheme = "http"
	}
	u := url.URL{Scheme: scheme, Host: net.JoinHostPort(settings.Host, strconv.Itoa(settings.Port))}
	if settings.Username != "" {
		u.User = url.UserPassword(settings.Username, settings.Password)
	}
	return u.String()
}

func loadNetworkSettings(ctx context.Context, repo repository.SettingsRepository) (*NetworkSettings, error) {
	stored, err := repo.GetByPrefix(ctx, "network.")
	if err != nil {
		return nil, fmt.Errorf("get network settings: %w", err)
	}
	settings := &NetworkSettings{Type: "http"}
	for _, s := range stored {
		switch s.Key {
		case keyNetworkEnabled:
			settings.Enabled = s.Value == "true"
		case keyNetworkType:
			if s.Value != "" {
				settings.Type = s.Value
			}
		case keyNetworkHost:
			settings.Host = s.Value
		case keyNetworkPort:
			settings.Port, _ = strconv.Atoi(s.Value)
		case keyNetworkUsername:
			settings.Username = s.Value
		case keyNetworkPassword:
			settings.Password = s.Value
		}
	}
	return settings, nil
}

// maskAPIKey returns a masked version of the API key for display.
func maskAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return "***"
	}
	// Find prefix (e.g., "sk-" for OpenAI)
	prefixEnd := 0
	for i, c := range apiKey {
		if c == '-' {
			prefixEnd = i + 1
			break
		}
		if i >= 4 {
			break
		}
	}
	return apiKey[:prefixEnd] + "***" + apiKey[len(apiKey)-3:]
}

// isMaskedKey checks if a string looks like a masked API key.
func isMaskedKey(key string) bool {
	if len(key) == 0 || len(key) >= 20 {
		return false
	}
	return strings.Contains(key, "***")
}

func (s *settingsService) getString(ctx context.Context, key string) (string, error) {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if setting == nil {
		return "", nil
	}
	return setting.Value, nil
}

// setSecret stores a key or password.
// If the value is empty or looks masked, it keeps the existing one.
func (s *settingsService) setSecret(ctx context.Context, key, value string) error {
	if value == "" || isMaskedKey(value) {
		return nil
	}
	return s.repo.Set(ctx, key, value)
}
