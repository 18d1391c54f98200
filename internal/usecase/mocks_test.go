package usecase

import (
	"context"
	"sync"

	"github.com/competitorlens/backend/internal/domain"
)

// MockSearchProvider is a mock implementation of domain.SearchProvider.
// Results and errors are keyed by the exact query string.
type MockSearchProvider struct {
	mu      sync.Mutex
	results map[string][]domain.SearchResult
	errors  map[string]error
	err     error
	queries []string
}

func NewMockSearchProvider() *MockSearchProvider {
	return &MockSearchProvider{
		results: make(map[string][]domain.SearchResult),
		errors:  make(map[string]error),
	}
}

func (m *MockSearchProvider) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	if err, ok := m.errors[query]; ok {
		return nil, err
	}
	results := m.results[query]
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

func (m *MockSearchProvider) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// MockLLMClient is a mock implementation of domain.LLMClient
type MockLLMClient struct {
	response string
	err      error
	prompts  []string
}

func (m *MockLLMClient) Complete(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}
