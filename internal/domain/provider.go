package domain

import "context"

// SearchProvider defines the interface for web search backends.
// Result order is not guaranteed and an empty slice is a valid outcome.
type SearchProvider interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// LLMClient defines the interface for the language model used for analysis
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
