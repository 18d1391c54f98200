package domain

import "errors"

var (
	// ErrInvalidQuery is returned when the research query is empty or unusable
	ErrInvalidQuery = errors.New("query must not be empty")

	// ErrSearchProviderFailure is returned when a web search request fails
	ErrSearchProviderFailure = errors.New("web search request failed")

	// ErrLLMFailure is returned when the language model request fails
	ErrLLMFailure = errors.New("language model request failed")

	// ErrInvalidAnalysis is returned when model output is not valid JSON or
	// does not match the analysis schema
	ErrInvalidAnalysis = errors.New("invalid analysis response")

	// ErrRepairSearchFailure is returned when a per-competitor website search fails
	ErrRepairSearchFailure = errors.New("competitor website search failed")
)
