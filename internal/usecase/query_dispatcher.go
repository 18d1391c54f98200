package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/competitorlens/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// defaultMaxResults bounds each outbound search
const defaultMaxResults = 10

// DispatcherConfig holds configuration for the query dispatcher
type DispatcherConfig struct {
	MaxResults     int
	MaxQueryLength int
}

// QueryDispatcher runs the general and homepage-targeted searches for a query
type QueryDispatcher struct {
	provider     domain.SearchProvider
	scorer       *URLScorer
	preprocessor *QueryPreprocessor
	maxResults   int
	logger       *zap.Logger
}

// NewQueryDispatcher creates a dispatcher backed by the given search provider
func NewQueryDispatcher(
	provider domain.SearchProvider,
	scorer *URLScorer,
	config DispatcherConfig,
	logger *zap.Logger,
) *QueryDispatcher {
	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &QueryDispatcher{
		provider:     provider,
		scorer:       scorer,
		preprocessor: NewQueryPreprocessor(config.MaxQueryLength),
		maxResults:   maxResults,
		logger:       logger,
	}
}

// Search issues both searches concurrently, merges them (general results
// first), removes duplicate URLs keeping the first occurrence, and ranks the
// remainder by URL score.
func (d *QueryDispatcher) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	normalized, err := d.preprocessor.NormalizeQuery(query)
	if err != nil {
		return nil, err
	}

	var general, targeted []domain.SearchResult
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		results, err := d.searchOnce(egCtx, normalized)
		if err != nil {
			return fmt.Errorf("general search: %w", err)
		}
		general = results
		return nil
	})

	eg.Go(func() error {
		results, err := d.searchOnce(egCtx, TargetedQuery(normalized))
		if err != nil {
			return fmt.Errorf("targeted search: %w", err)
		}
		targeted = results
		return nil
	})

	if err := eg.Wait(); err != nil {
		d.logger.Error("search failed", zap.String("query", normalized), zap.Error(err))
		if errors.Is(err, domain.ErrSearchProviderFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchProviderFailure, err)
	}

	merged := d.mergeResults(general, targeted)
	d.logger.Debug("search completed",
		zap.String("query", normalized),
		zap.Int("general", len(general)),
		zap.Int("targeted", len(targeted)),
		zap.Int("unique", len(merged)))

	return merged, nil
}

// searchOnce calls the provider, turning a panic on the search goroutine
// into ErrSearchProviderFailure
func (d *QueryDispatcher) searchOnce(ctx context.Context, query string) (results []domain.SearchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("search provider panicked", zap.String("query", query), zap.Any("panic", r))
			results, err = nil, fmt.Errorf("%w: panic: %v", domain.ErrSearchProviderFailure, r)
		}
	}()
	return d.provider.Search(ctx, query, d.maxResults)
}

// mergeResults concatenates result lists, drops duplicate and empty URLs, and
// stable-sorts by descending score so equal scores keep arrival order
func (d *QueryDispatcher) mergeResults(lists ...[]domain.SearchResult) []domain.SearchResult {
	seen := make(map[string]bool)
	var merged []domain.SearchResult

	for _, list := range lists {
		for _, result := range list {
			if result.URL == "" || seen[result.URL] {
				continue
			}
			seen[result.URL] = true
			merged = append(merged, result)
		}
	}

	scores := make(map[string]int, len(merged))
	for _, result := range merged {
		scores[result.URL] = d.scorer.Score(result.URL)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return scores[merged[i].URL] > scores[merged[j].URL]
	})

	return merged
}
