package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

const sampleAnswer = `{
	"Abstract": "Go is a statically typed programming language.",
	"AbstractURL": "https://example.org/go",
	"AbstractSource": "Example",
	"RelatedTopics": [
		{"Text": "Go (programming language)", "FirstURL": "https://example.org/go-lang"},
		{"Topics": [
			{"Text": "Gopher", "FirstURL": "https://example.org/gopher"}
		]},
		{"Text": "", "FirstURL": "https://example.org/skip-me"}
	]
}`

func TestSearchFormatsResults(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(sampleAnswer))
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithEndpoint(server.URL))
	got, err := client.Search(context.Background(), "golang")

	assert.NoError(t, err)
	assert.Equal(t, "golang", gotQuery)
	assert.Contains(t, got, `Web search for: "golang"`)
	assert.Contains(t, got, "Go is a statically typed programming language.")
	assert.Contains(t, got, "Source: https://example.org/go")
	assert.Contains(t, got, "1. Go (programming language)")
	assert.Contains(t, got, "   https://example.org/go-lang")
	assert.Contains(t, got, "2. Gopher")
	assert.NotContains(t, got, "skip-me", "entries without text are dropped")
}

func TestSearchEmptyQuery(t *testing.T) {
	client := NewClient(zerolog.Nop(), WithEndpoint("http://127.0.0.1:1"))
	got, err := client.Search(context.Background(), "   ")
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchRetriesOnce(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(sampleAnswer))
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithEndpoint(server.URL))
	got, err := client.Search(context.Background(), "golang")

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, got, "Go is a statically typed")
}

func TestSearchFailsAfterRetry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithEndpoint(server.URL))
	_, err := client.Search(context.Background(), "golang")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "after retry")
}

func TestSearchContextCancelDuringRetryWait(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(zerolog.Nop(), WithEndpoint(server.URL))
	_, err := client.Search(ctx, "golang")
	assert.Error(t, err)
}

func TestFormatForPromptNoAbstract(t *testing.T) {
	got := FormatForPrompt("query", &Result{
		Related: []RelatedItem{{Text: "item", URL: "https://example.org"}},
	})
	assert.Contains(t, got, "Search results:")
	assert.NotContains(t, got, "Source:")
}

func TestCollectRelatedCapped(t *testing.T) {
	topics := make([]relatedTopic, 0, 12)
	for i := 0; i < 12; i++ {
		topics = append(topics, relatedTopic{Text: "t", FirstURL: "u"})
	}
	var out []RelatedItem
	collectRelated(topics, &out)
	assert.Len(t, out, maxRelated)
}
