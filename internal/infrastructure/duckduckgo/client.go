package duckduckgo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/competitorlens/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL serves the JavaScript-free results page
const DefaultBaseURL = "https://html.duckduckgo.com"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// ClientConfig holds tuning for the DuckDuckGo client
type ClientConfig struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second
	Burst     int
}

// Client scrapes DuckDuckGo's HTML results page. It needs no API key.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a new DuckDuckGo client
func NewClient(baseURL string, config ClientConfig, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit <= 0 {
		config.RateLimit = 1
	}
	if config.Burst <= 0 {
		config.Burst = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient:  &http.Client{Timeout: config.Timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: rate.NewLimiter(rate.Limit(config.RateLimit), config.Burst),
		logger:      logger,
	}
}

// Search fetches one results page and returns at most maxResults hits
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	endpoint := fmt.Sprintf("%s/html/?q=%s", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("duckduckgo request failed", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrSearchProviderFailure, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse results page: %v", domain.ErrSearchProviderFailure, err)
	}

	results := parseResults(doc, maxResults)
	c.logger.Debug("duckduckgo search completed", zap.String("query", query), zap.Int("results", len(results)))
	return results, nil
}

// parseResults reads organic result blocks, skipping ads and entries without a link
func parseResults(doc *goquery.Document, maxResults int) []domain.SearchResult {
	results := make([]domain.SearchResult, 0)
	doc.Find(".result__body").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if maxResults > 0 && len(results) >= maxResults {
			return false
		}
		if s.ParentsFiltered(".result--ad").Length() > 0 {
			return true
		}

		link := s.Find(".result__title a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		target := resolveLink(href)
		if target == "" {
			return true
		}

		results = append(results, domain.SearchResult{
			URL:     target,
			Title:   strings.TrimSpace(link.Text()),
			Content: strings.TrimSpace(s.Find(".result__snippet").Text()),
		})
		return true
	})
	return results
}

// resolveLink unwraps DuckDuckGo redirect links (/l/?uddg=<target>)
func resolveLink(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	if parsed.Scheme == "http" || parsed.Scheme == "https" {
		return href
	}
	return ""
}
