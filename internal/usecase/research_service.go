package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/competitorlens/backend/internal/domain"
	"github.com/competitorlens/backend/internal/logging"
	"go.uber.org/zap"
)

// ResearchServiceConfig holds configuration for the research service
type ResearchServiceConfig struct {
	MaxResults       int
	RepairMaxResults int
	MaxQueryLength   int
	Scoring          ScoringConfig
}

// ResearchService runs the competitor research pipeline:
// search -> context -> LLM -> parse/validate -> URL repair -> response
type ResearchService struct {
	dispatcher *QueryDispatcher
	requestor  *AnalysisRequestor
	repairer   *URLRepairer
	scorer     *URLScorer
	logger     *zap.Logger
	now        func() time.Time
}

// NewResearchService creates a new research service with dependencies
func NewResearchService(
	searchProvider domain.SearchProvider,
	llm domain.LLMClient,
	config ResearchServiceConfig,
	logger *zap.Logger,
) *ResearchService {
	if logger == nil {
		logger = zap.NewNop()
	}

	scorer := NewURLScorer(config.Scoring)

	dispatcher := NewQueryDispatcher(searchProvider, scorer, DispatcherConfig{
		MaxResults:     config.MaxResults,
		MaxQueryLength: config.MaxQueryLength,
	}, logger)

	repairer := NewURLRepairer(searchProvider, scorer, RepairConfig{
		RepairMaxResults: config.RepairMaxResults,
	}, logger)

	return &ResearchService{
		dispatcher: dispatcher,
		requestor:  NewAnalysisRequestor(llm, logger),
		repairer:   repairer,
		scorer:     scorer,
		logger:     logger,
		now:        time.Now,
	}
}

// Research answers a competitor research query. The returned response is
// never nil; the error, when set, classifies the failure (ErrInvalidQuery,
// ErrSearchProviderFailure, ErrLLMFailure) and is already reflected in the response.
func (s *ResearchService) Research(ctx context.Context, query string) (resp *domain.SearchResponse, err error) {
	startedAt := s.now()
	defer logging.LogDuration(ctx, s.logger, "ResearchService.Research")()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("research pipeline panicked", zap.Any("panic", r), zap.String("query", query))
			err = fmt.Errorf("research pipeline panic: %v", r)
			resp = &domain.SearchResponse{Success: false, Error: err.Error()}
		}
	}()

	results, err := s.dispatcher.Search(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuery) {
			return &domain.SearchResponse{Success: false, Error: err.Error()}, err
		}
		return s.failure(query, startedAt, err), err
	}

	contextText, idx := BuildContext(results, s.scorer)

	raw, err := s.requestor.RequestAnalysis(ctx, contextText, query)
	if err != nil {
		s.logger.Error("analysis request failed", zap.String("query", query), zap.Error(err))
		return s.failure(query, startedAt, err), err
	}

	analysis := s.repairer.ParseAndRepair(ctx, raw, results, idx)

	s.logger.Info("research completed",
		zap.String("query", query),
		zap.Int("sources", len(results)),
		zap.Int("competitors", len(analysis.CompetitorsDetails)),
		zap.Duration("duration", s.now().Sub(startedAt)))

	return &domain.SearchResponse{
		Success: true,
		Data:    analysis,
		Metadata: &domain.ResponseMetadata{
			Query:        query,
			Timestamp:    startedAt,
			SourcesCount: len(results),
		},
	}, nil
}

// failure builds the provider-failure envelope with zero-valued source metadata
func (s *ResearchService) failure(query string, at time.Time, err error) *domain.SearchResponse {
	return &domain.SearchResponse{
		Success: false,
		Error:   err.Error(),
		Metadata: &domain.ResponseMetadata{
			Query:     query,
			Timestamp: at,
		},
	}
}
