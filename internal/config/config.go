package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"arena-platform"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Redis    Redis
	LMStudio LMStudio
	DeepSeek DeepSeek
	Grok     Grok
	Arena    Arena
	Search   Search
	CORS     CORS
}

// Redis holds history + cache storage configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// LMStudio points at the local OpenAI-compatible model server.
type LMStudio struct {
	BaseURL     string        `env:"LMSTUDIO_BASE_URL" envDefault:"http://localhost:1234"`
	HTTPTimeout time.Duration `env:"LMSTUDIO_HTTP_TIMEOUT" envDefault:"120s"`
}

// DeepSeek configures the DeepSeek cloud provider. Optional; models
// from this provider only appear in the roster when the key is set.
type DeepSeek struct {
	APIKey       string `env:"DEEPSEEK_API_KEY"`
	BaseURL      string `env:"DEEPSEEK_BASE_URL" envDefault:"https://api.deepseek.com"`
	DefaultModel string `env:"DEEPSEEK_MODEL" envDefault:"deepseek-chat"`
}

// Grok configures the xAI cloud provider. Optional.
type Grok struct {
	APIKey       string `env:"GROK_API_KEY"`
	BaseURL      string `env:"GROK_BASE_URL" envDefault:"https://api.x.ai"`
	DefaultModel string `env:"GROK_MODEL" envDefault:"grok-3-mini"`
}

// Arena groups round evaluation defaults.
type Arena struct {
	HistoryTTL        time.Duration `env:"ARENA_HISTORY_TTL" envDefault:"720h"`
	SelectionCacheTTL time.Duration `env:"ARENA_SELECTION_CACHE_TTL" envDefault:"1h"`
}

// Search configures the web search client.
type Search struct {
	Enabled     bool          `env:"SEARCH_ENABLED" envDefault:"true"`
	HTTPTimeout time.Duration `env:"SEARCH_HTTP_TIMEOUT" envDefault:"12s"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
