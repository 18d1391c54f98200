package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/competitorlens/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the Tavily API endpoint
const DefaultBaseURL = "https://api.tavily.com"

// ClientConfig holds tuning for the Tavily client
type ClientConfig struct {
	Timeout     time.Duration
	RateLimit   float64 // requests per second
	Burst       int
	SearchDepth string // "basic" or "advanced"
}

// Client handles communication with the Tavily search API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	searchDepth string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a new Tavily API client
func NewClient(apiKey, baseURL string, config ClientConfig, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit <= 0 {
		config.RateLimit = 5
	}
	if config.Burst <= 0 {
		config.Burst = 10
	}
	if config.SearchDepth == "" {
		config.SearchDepth = "basic"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		searchDepth: config.SearchDepth,
		rateLimiter: rate.NewLimiter(rate.Limit(config.RateLimit), config.Burst),
		logger:      logger,
	}
}

// searchRequest is the body of POST /search
type searchRequest struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

// doRequest executes an authenticated JSON POST
func (c *Client) doRequest(ctx context.Context, endpoint string, body interface{}) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", "CompetitorLens/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchProviderFailure, err)
	}

	return resp, nil
}

// Search runs a single web search. An empty result set is not an error.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := c.doRequest(ctx, c.baseURL+"/search", searchRequest{
		Query:       query,
		MaxResults:  maxResults,
		SearchDepth: c.searchDepth,
	})
	if err != nil {
		c.logger.Error("tavily request failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrSearchProviderFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("tavily API error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(body), 500)))
		return nil, fmt.Errorf("%w: status %d", domain.ErrSearchProviderFailure, resp.StatusCode)
	}

	hits, err := decodeResults(body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrSearchProviderFailure, err)
	}

	results := MapToSearchResults(hits)
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}

	c.logger.Debug("tavily search completed", zap.String("query", query), zap.Int("results", len(results)))
	return results, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
