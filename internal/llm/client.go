package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Message roles for chat-completions requests.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token accounting when the backend provides it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Completion is the assembled result of one inference call.
type Completion struct {
	Content string
	Usage   *Usage
}

// Options tunes a single completion request. Zero values mean backend
// defaults.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Client is the inference boundary the arena depends on. The arena
// only needs the final assembled content per turn; streaming is an
// implementation detail of the transport.
type Client interface {
	Complete(ctx context.Context, model string, messages []Message, opts Options) (Completion, error)
}

// Provider holds connection details for one cloud API (DeepSeek,
// Grok). All speak the OpenAI chat-completions dialect.
type Provider struct {
	BaseURL      string
	APIKey       string
	DefaultModel string
}

// Config wires the router to LM Studio and any configured providers.
type Config struct {
	LMStudioURL string
	Timeout     time.Duration
	Providers   map[string]Provider
}

// Router dispatches completions by model id: "provider:model" ids go
// to that provider's endpoint, bare ids to the local LM Studio server.
type Router struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

var _ Client = (*Router)(nil)

func NewRouter(cfg Config, logger zerolog.Logger) *Router {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if cfg.LMStudioURL == "" {
		cfg.LMStudioURL = "http://localhost:1234"
	}
	cfg.LMStudioURL = strings.TrimSuffix(cfg.LMStudioURL, "/")
	return &Router{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
		logger:     logger.With().Str("component", "llm_router").Logger(),
	}
}

// IsCloudModel reports whether a model id denotes a provider-hosted
// model ("provider:model") rather than a local one.
func IsCloudModel(id string) bool {
	return strings.Contains(id, ":")
}

// SplitCloudID splits "deepseek:deepseek-chat" into provider and
// model name. Local ids return an empty provider.
func SplitCloudID(id string) (provider, model string) {
	if i := strings.Index(id, ":"); i >= 0 {
		return id[:i], id[i+1:]
	}
	return "", id
}

// Complete performs a non-streaming chat completion against the
// backend the model id selects.
func (r *Router) Complete(ctx context.Context, model string, messages []Message, opts Options) (Completion, error) {
	baseURL := r.config.LMStudioURL
	apiKey := ""
	requestModel := model

	if provider, name := SplitCloudID(model); provider != "" {
		p, ok := r.config.Providers[provider]
		if !ok || p.APIKey == "" {
			return Completion{}, fmt.Errorf("provider %q not configured", provider)
		}
		baseURL = strings.TrimSuffix(p.BaseURL, "/")
		apiKey = p.APIKey
		requestModel = name
	}

	payload := map[string]any{
		"model":    requestModel,
		"messages": messages,
		"stream":   false,
	}
	if opts.Temperature > 0 {
		payload["temperature"] = opts.Temperature
	}
	if opts.MaxTokens > 0 {
		payload["max_tokens"] = opts.MaxTokens
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Completion{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Completion{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return Completion{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return Completion{}, fmt.Errorf("inference backend returned status %d", resp.StatusCode)
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage *Usage `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Completion{}, fmt.Errorf("decode completion: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return Completion{}, fmt.Errorf("inference backend returned no choices")
	}

	r.logger.Debug().Str("model", model).Msg("completion received")
	return Completion{Content: decoded.Choices[0].Message.Content, Usage: decoded.Usage}, nil
}
