package domain

import "time"

// SearchResult is a single web search hit
type SearchResult struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ResearchRequest represents an inbound competitor research request
type ResearchRequest struct {
	Query string `json:"query" form:"query"`
}

// ResponseMetadata describes the request that produced a SearchResponse
type ResponseMetadata struct {
	Query        string    `json:"query"`
	Timestamp    time.Time `json:"timestamp"`
	SourcesCount int       `json:"sources_count"`
}

// SearchResponse is the envelope returned by the research endpoint.
// Exactly one of Data or Error is set, depending on Success.
type SearchResponse struct {
	Success  bool              `json:"success"`
	Data     *MarketAnalysis   `json:"data,omitempty"`
	Metadata *ResponseMetadata `json:"metadata,omitempty"`
	Error    string            `json:"error,omitempty"`
}
