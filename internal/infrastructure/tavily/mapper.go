package tavily

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/competitorlens/backend/internal/domain"
)

// Result is a single hit as returned by the Tavily API
type Result struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	RawContent string  `json:"raw_content,omitempty"`
	Score      float64 `json:"score"`
}

// SearchResponse is the envelope returned by POST /search
type SearchResponse struct {
	Query        string   `json:"query"`
	Results      []Result `json:"results"`
	ResponseTime float64  `json:"response_time"`
}

// decodeResults accepts both the {"results": [...]} envelope and a bare array
func decodeResults(body []byte) ([]Result, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var results []Result
		if err := json.Unmarshal(trimmed, &results); err != nil {
			return nil, err
		}
		return results, nil
	}

	var envelope SearchResponse
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	return envelope.Results, nil
}

// MapToSearchResults converts Tavily hits to domain results, dropping hits
// without a URL. Content falls back to raw_content when the snippet is empty.
func MapToSearchResults(hits []Result) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		url := strings.TrimSpace(hit.URL)
		if url == "" {
			continue
		}
		content := strings.TrimSpace(hit.Content)
		if content == "" {
			content = strings.TrimSpace(hit.RawContent)
		}
		results = append(results, domain.SearchResult{
			URL:     url,
			Title:   strings.TrimSpace(hit.Title),
			Content: content,
		})
	}
	return results
}
