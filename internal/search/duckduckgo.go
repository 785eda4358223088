// Package search provides web context for judge prompts and question
// generation via the DuckDuckGo Instant Answer API. No API key needed.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultEndpoint = "https://api.duckduckgo.com/"
	defaultTimeout  = 12 * time.Second
	retryDelay      = 1500 * time.Millisecond
	maxRelated      = 8
)

// Result is a normalized search outcome.
type Result struct {
	Abstract       string
	AbstractURL    string
	AbstractSource string
	Related        []RelatedItem
}

// RelatedItem is one auxiliary result line.
type RelatedItem struct {
	Text string
	URL  string
}

// Client queries DuckDuckGo and formats results for model consumption.
type Client struct {
	httpClient *http.Client
	endpoint   string
	logger     zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithEndpoint overrides the API endpoint. Used by tests.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

func NewClient(logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		endpoint:   defaultEndpoint,
		logger:     logger.With().Str("component", "search").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type instantAnswer struct {
	Abstract       string         `json:"Abstract"`
	AbstractURL    string         `json:"AbstractURL"`
	AbstractSource string         `json:"AbstractSource"`
	Heading        string         `json:"Heading"`
	RelatedTopics  []relatedTopic `json:"RelatedTopics"`
}

type relatedTopic struct {
	Text     string         `json:"Text"`
	FirstURL string         `json:"FirstURL"`
	Topics   []relatedTopic `json:"Topics"`
}

// Search runs a query and returns the result formatted as a single
// block of context text. Retries once: the first attempt may fail on a
// cold connection. Implements arena.WebSearcher.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", nil
	}

	result, err := c.query(ctx, q)
	if err != nil {
		c.logger.Debug().Err(err).Str("query", q).Msg("search attempt failed, retrying")
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(retryDelay):
		}
		result, err = c.query(ctx, q)
		if err != nil {
			return "", fmt.Errorf("web search failed after retry: %w", err)
		}
	}

	return FormatForPrompt(q, result), nil
}

func (c *Client) query(ctx context.Context, q string) (*Result, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading search response: %w", err)
	}

	var answer instantAnswer
	if err := json.Unmarshal(body, &answer); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	result := &Result{
		Abstract:       answer.Abstract,
		AbstractURL:    answer.AbstractURL,
		AbstractSource: answer.AbstractSource,
	}
	collectRelated(answer.RelatedTopics, &result.Related)
	return result, nil
}

// collectRelated flattens nested topic groups into a single list.
func collectRelated(topics []relatedTopic, out *[]RelatedItem) {
	for _, t := range topics {
		if len(*out) >= maxRelated {
			return
		}
		if len(t.Topics) > 0 {
			collectRelated(t.Topics, out)
			continue
		}
		if t.Text == "" || t.FirstURL == "" {
			continue
		}
		*out = append(*out, RelatedItem{Text: t.Text, URL: t.FirstURL})
	}
}

// FormatForPrompt renders a result as the context block handed to a
// model alongside the question.
func FormatForPrompt(query string, result *Result) string {
	lines := []string{
		"The user asked a question that required a web search. Use the following search results to answer. Base your answer on these results.",
		"",
		fmt.Sprintf("Web search for: %q", query),
	}
	if result.Abstract != "" {
		lines = append(lines, "", result.Abstract)
		if result.AbstractURL != "" {
			lines = append(lines, "Source: "+result.AbstractURL)
		}
	}
	if len(result.Related) > 0 {
		lines = append(lines, "", "Search results:")
		for i, r := range result.Related {
			if i >= maxRelated {
				break
			}
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, r.Text))
			lines = append(lines, "   "+r.URL)
		}
	}
	return strings.Join(lines, "\n")
}
