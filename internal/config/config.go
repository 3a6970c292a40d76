package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AppName    = "Translation Agent"
	AppVersion = "1.0.0"
)

// Provider names accepted by RELAY_PROVIDER.
const (
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderAnthropic  = "anthropic"
	ProviderCompatible = "compatible"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// ProviderConfig holds the server-side credentials of one LLM provider.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type Config struct {
	Addr      string
	DataDir   string
	DBPath    string
	StaticDir string
	LogLevel  string
	LogFormat string

	// Provider is the default provider used when a request does not name one.
	Provider string
	// Providers is keyed by provider name.
	Providers map[string]ProviderConfig

	MaxOutputTokens int
	AIQPS           int
	ClientRPS       float64
	ProxyURL        string

	CacheTTL      time.Duration
	PruneInterval time.Duration

	CORSOrigins      []string
	AllowKeyOverride bool
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env is optional when the environment already carries the values.
	}

	dataDir := getEnv("RELAY_DATA_DIR", "./data")
	dbPath := getEnv("RELAY_DB_PATH", filepath.Join(dataDir, "relay.db"))
	staticDir := os.Getenv("RELAY_STATIC_DIR")
	if staticDir == "" {
		staticDir = detectStaticDir()
	}

	cfg := Config{
		Addr:      getEnv("RELAY_ADDR", ":8080"),
		DataDir:   filepath.Clean(dataDir),
		DBPath:    filepath.Clean(dbPath),
		StaticDir: cleanPath(staticDir),
		LogLevel:  getEnv("RELAY_LOG_LEVEL", "info"),
		LogFormat: getEnv("RELAY_LOG_FORMAT", "text"),
		Provider:  strings.ToLower(getEnv("RELAY_PROVIDER", ProviderGemini)),
		Providers: map[string]ProviderConfig{
			ProviderOpenAI: {
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				BaseURL: getEnv("OPENAI_BASE_URL", defaultOpenAIBaseURL),
				Model:   os.Getenv("OPENAI_MODEL"),
			},
			ProviderGemini: {
				APIKey:  os.Getenv("GEMINI_API_KEY"),
				BaseURL: os.Getenv("GEMINI_BASE_URL"),
				Model:   os.Getenv("GEMINI_MODEL"),
			},
			ProviderAnthropic: {
				APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
				BaseURL: os.Getenv("ANTHROPIC_BASE_URL"),
				Model:   os.Getenv("ANTHROPIC_MODEL"),
			},
			ProviderCompatible: {
				APIKey:  os.Getenv("COMPATIBLE_API_KEY"),
				BaseURL: os.Getenv("COMPATIBLE_BASE_URL"),
				Model:   os.Getenv("COMPATIBLE_MODEL"),
			},
		},
		ProxyURL:    os.Getenv("RELAY_PROXY_URL"),
		CORSOrigins: splitList(getEnv("RELAY_CORS_ORIGINS", "*")),
	}

	// RELAY_MODEL overrides the model of the default provider only.
	if model := os.Getenv("RELAY_MODEL"); model != "" {
		p := cfg.Providers[cfg.Provider]
		p.Model = model
		cfg.Providers[cfg.Provider] = p
	}

	var err error
	if cfg.MaxOutputTokens, err = getInt("RELAY_MAX_OUTPUT_TOKENS", 1000); err != nil {
		return cfg, err
	}
	if cfg.AIQPS, err = getInt("RELAY_AI_QPS", 10); err != nil {
		return cfg, err
	}
	if cfg.ClientRPS, err = getFloat("RELAY_CLIENT_RPS", 5); err != nil {
		return cfg, err
	}
	if cfg.CacheTTL, err = getDuration("RELAY_CACHE_TTL", 7*24*time.Hour); err != nil {
		return cfg, err
	}
	if cfg.PruneInterval, err = getDuration("RELAY_PRUNE_INTERVAL", time.Hour); err != nil {
		return cfg, err
	}
	if cfg.AllowKeyOverride, err = getBool("RELAY_ALLOW_KEY_OVERRIDE", true); err != nil {
		return cfg, err
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, ok := c.Providers[c.Provider]; !ok {
		return fmt.Errorf("config: RELAY_PROVIDER %q is not one of openai, gemini, anthropic, compatible", c.Provider)
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("config: RELAY_MAX_OUTPUT_TOKENS must be positive")
	}
	if c.PruneInterval <= 0 {
		return fmt.Errorf("config: RELAY_PRUNE_INTERVAL must be positive")
	}
	return nil
}

// ProviderConfig returns the server-side configuration of the named provider.
func (c Config) ProviderConfig(name string) (ProviderConfig, bool) {
	p, ok := c.Providers[name]
	return p, ok
}

func detectStaticDir() string {
	candidates := []string{
		"./frontend/dist",
		"../frontend/dist",
	}
	for _, candidate := range candidates {
		indexPath := filepath.Join(candidate, "index.html")
		if info, err := os.Stat(indexPath); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

func cleanPath(p string) string {
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
