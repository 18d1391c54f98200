package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/competitorlens/backend/internal/domain"
	"go.uber.org/zap"
)

const analysisInstructions = `You are a market research analyst. Using ONLY the search results provided below, identify the competitors relevant to the user's query and compare them.

Rules:
- Extract facts only from the provided sources. Do not rely on prior knowledge.
- Never invent or guess website URLs. Only use a URL that appears verbatim in the sources; otherwise set "website_url" to null.
- Prefer a company's own homepage over articles, reviews, blogs or videos about it.
- Every competitor must have a "name" and a "key_features" list (use an empty list if nothing is known).
- "pricing_model", "tech_stack", "target_market" and "market_positioning" are lists of short strings; use null when the sources say nothing.
- "summary" is a list of 2 to 5 short sentences describing the competitive landscape.
- Respond with a single JSON object and nothing else.`

const analysisExample = `{
  "summary": ["Short observation about the market", "Another observation"],
  "competitors_details": [
    {
      "name": "Company name",
      "website_url": "https://company.com",
      "key_features": ["Feature one", "Feature two"],
      "pricing_model": ["Freemium", "Per-seat subscription"],
      "tech_stack": ["React", "Go"],
      "target_market": ["Small teams"],
      "market_positioning": ["All-in-one workspace"]
    }
  ]
}`

// AnalysisRequestor asks the language model for a structured competitor comparison
type AnalysisRequestor struct {
	llm    domain.LLMClient
	logger *zap.Logger
}

// NewAnalysisRequestor creates a requestor backed by the given model client
func NewAnalysisRequestor(llm domain.LLMClient, logger *zap.Logger) *AnalysisRequestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisRequestor{llm: llm, logger: logger}
}

// BuildPrompt composes the instructions, query, context block and output example
func BuildPrompt(contextText, query string) string {
	var sb strings.Builder
	sb.WriteString(analysisInstructions)
	sb.WriteString("\n\nUser query: ")
	sb.WriteString(query)
	sb.WriteString("\n\nSearch results:\n")
	sb.WriteString(contextText)
	sb.WriteString("\n\nReturn JSON exactly in this shape:\n")
	sb.WriteString(analysisExample)
	sb.WriteString("\n")
	return sb.String()
}

// RequestAnalysis sends a single prompt to the model and returns its raw text.
// There is no retry; failures are reported as ErrLLMFailure.
func (r *AnalysisRequestor) RequestAnalysis(ctx context.Context, contextText, query string) (string, error) {
	prompt := BuildPrompt(contextText, query)
	r.logger.Debug("requesting analysis", zap.String("query", query), zap.Int("prompt_chars", len(prompt)))

	raw, err := r.llm.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(err, domain.ErrLLMFailure) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrLLMFailure, err)
	}

	return raw, nil
}
