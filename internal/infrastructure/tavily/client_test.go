package tavily

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/competitorlens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key", "https://api.example.com/", ClientConfig{}, nil)

	assert.NotNil(t, client)
	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Equal(t, "https://api.example.com", client.baseURL)
	assert.Equal(t, "basic", client.searchDepth)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.NotNil(t, client.rateLimiter)
	assert.NotNil(t, client.logger)
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	client := NewClient("key", "", ClientConfig{}, nil)
	assert.Equal(t, DefaultBaseURL, client.baseURL)
}

func TestSearch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var body searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "notion alternatives", body.Query)
		assert.Equal(t, 10, body.MaxResults)
		assert.Equal(t, "basic", body.SearchDepth)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SearchResponse{
			Query: body.Query,
			Results: []Result{
				{Title: "ClickUp", URL: "https://clickup.com", Content: "One app to replace them all"},
				{Title: "Coda", URL: "https://coda.io", Content: "Docs as powerful as apps"},
			},
		})
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, ClientConfig{}, nil)
	results, err := client.Search(context.Background(), "notion alternatives", 10)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://clickup.com", results[0].URL)
	assert.Equal(t, "ClickUp", results[0].Title)
	assert.Equal(t, "Docs as powerful as apps", results[1].Content)
}

func TestSearch_BareArrayResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"title":"Linear","url":"https://linear.app","content":"Issue tracking"}]`))
	}))
	defer server.Close()

	client := NewClient("key", server.URL, ClientConfig{}, nil)
	results, err := client.Search(context.Background(), "jira alternatives", 5)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://linear.app", results[0].URL)
}

func TestSearch_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query":"x","results":[]}`))
	}))
	defer server.Close()

	client := NewClient("key", server.URL, ClientConfig{}, nil)
	results, err := client.Search(context.Background(), "x", 5)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_TruncatesToMaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[
			{"url":"https://a.com"},{"url":"https://b.com"},{"url":"https://c.com"}
		]}`))
	}))
	defer server.Close()

	client := NewClient("key", server.URL, ClientConfig{}, nil)
	results, err := client.Search(context.Background(), "x", 2)

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"detail":"invalid key"}`},
		{"server error", http.StatusInternalServerError, `oops`},
		{"malformed body", http.StatusOK, `{"results":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient("key", server.URL, ClientConfig{}, nil)
			results, err := client.Search(context.Background(), "x", 5)

			require.Error(t, err)
			assert.Nil(t, results)
			assert.True(t, errors.Is(err, domain.ErrSearchProviderFailure))
			assert.Equal(t, 1, calls, "failed requests must not be retried")
		})
	}
}

func TestSearch_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient("key", url, ClientConfig{Timeout: time.Second}, nil)
	_, err := client.Search(context.Background(), "x", 5)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSearchProviderFailure))
}

func TestSearch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("key", server.URL, ClientConfig{}, nil)
	_, err := client.Search(ctx, "x", 5)

	assert.Error(t, err)
}

func TestSearch_AdvancedDepth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "advanced", body.SearchDepth)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := NewClient("key", server.URL, ClientConfig{SearchDepth: "advanced"}, nil)
	_, err := client.Search(context.Background(), "figma alternatives", 5)

	require.NoError(t, err)
}
