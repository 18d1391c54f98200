package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/competitorlens/backend/internal/domain"
	"go.uber.org/zap"
)

// defaultRepairMaxResults bounds each per-competitor homepage search
const defaultRepairMaxResults = 5

// repairStrategy proposes replacement URLs for one competitor. Candidates are
// pure functions of the lower-cased name, the indices and the ranked results.
type repairStrategy struct {
	name string

	// onlyWhenNegative skips the strategy once the running best score is >= 0
	onlyWhenNegative bool

	// stopAtFirst keeps the first improving candidate instead of the best one
	stopAtFirst bool

	candidates func(name string, idx *Indices, results []domain.SearchResult) []string
}

// defaultRepairStrategies lists the fallback chain in precedence order
var defaultRepairStrategies = []repairStrategy{
	{name: "company_index", candidates: companyIndexCandidates},
	{name: "word_index", candidates: wordIndexCandidates},
	{name: "result_mention", candidates: resultMentionCandidates},
	{name: "article_links", onlyWhenNegative: true, stopAtFirst: true, candidates: articleLinkCandidates},
}

// companyIndexCandidates returns the top URL for the exact company name, then
// the keyword index entry for the name with separators removed
func companyIndexCandidates(name string, idx *Indices, _ []domain.SearchResult) []string {
	var candidates []string
	if u := idx.TopCompanyURL(name); u != "" {
		candidates = append(candidates, u)
	}
	if compact := strings.Join(NameTokens(name), ""); compact != "" {
		if u := idx.Domains[compact]; u != "" {
			candidates = append(candidates, u)
		}
	}
	return candidates
}

// wordIndexCandidates returns the top URL for each name token
func wordIndexCandidates(name string, idx *Indices, _ []domain.SearchResult) []string {
	var candidates []string
	for _, token := range NameTokens(name) {
		if u := idx.TopWordURL(token); u != "" {
			candidates = append(candidates, u)
		}
	}
	return candidates
}

// resultMentionCandidates returns the first non-article result that mentions the name
func resultMentionCandidates(name string, _ *Indices, results []domain.SearchResult) []string {
	for _, result := range results {
		if IsArticle(result.URL) {
			continue
		}
		if strings.Contains(strings.ToLower(result.Title), name) ||
			strings.Contains(strings.ToLower(result.Content), name) {
			return []string{result.URL}
		}
	}
	return nil
}

// articleLinkCandidates returns links embedded in article results whose
// domain contains one of the name tokens
func articleLinkCandidates(name string, _ *Indices, results []domain.SearchResult) []string {
	tokens := NameTokens(name)
	if len(tokens) == 0 {
		return nil
	}

	var candidates []string
	for _, result := range results {
		if !IsArticle(result.URL) {
			continue
		}
		for _, embedded := range ExtractEmbeddedURLs(result.Content) {
			host := domainToken(embedded)
			for _, token := range tokens {
				if strings.Contains(host, token) {
					candidates = append(candidates, embedded)
					break
				}
			}
		}
	}
	return candidates
}

// RepairConfig holds configuration for the URL repairer
type RepairConfig struct {
	RepairMaxResults int
}

// URLRepairer replaces missing or low-quality competitor website URLs
type URLRepairer struct {
	provider         domain.SearchProvider
	scorer           *URLScorer
	strategies       []repairStrategy
	repairMaxResults int
	logger           *zap.Logger
}

// NewURLRepairer creates a repairer that falls back to the given search provider
func NewURLRepairer(
	provider domain.SearchProvider,
	scorer *URLScorer,
	config RepairConfig,
	logger *zap.Logger,
) *URLRepairer {
	maxResults := config.RepairMaxResults
	if maxResults <= 0 {
		maxResults = defaultRepairMaxResults
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &URLRepairer{
		provider:         provider,
		scorer:           scorer,
		strategies:       defaultRepairStrategies,
		repairMaxResults: maxResults,
		logger:           logger,
	}
}

// Repair improves every competitor's website URL in place: first from the
// request's own search results, then with one targeted search per competitor
// still lacking a homepage.
func (r *URLRepairer) Repair(
	ctx context.Context,
	analysis *domain.MarketAnalysis,
	results []domain.SearchResult,
	idx *Indices,
) {
	if analysis == nil {
		return
	}

	for i := range analysis.CompetitorsDetails {
		r.repairFromResults(&analysis.CompetitorsDetails[i], results, idx)
	}

	for i := range analysis.CompetitorsDetails {
		competitor := &analysis.CompetitorsDetails[i]
		if competitor.WebsiteURL != "" && !IsArticle(competitor.WebsiteURL) {
			continue
		}
		if ctx.Err() != nil {
			r.logger.Warn("website repair interrupted", zap.Error(ctx.Err()))
			return
		}
		if err := r.repairWithSearch(ctx, competitor); err != nil {
			r.logger.Warn("website repair search failed",
				zap.String("competitor", competitor.Name),
				zap.Error(err))
		}
	}
}

// repairFromResults walks the strategy chain, keeping the best-scoring candidate
func (r *URLRepairer) repairFromResults(competitor *domain.CompetitorRecord, results []domain.SearchResult, idx *Indices) {
	name := strings.ToLower(strings.TrimSpace(competitor.Name))
	if name == "" {
		return
	}

	best := competitor.WebsiteURL
	bestScore := r.scorer.Score(best)

	for _, strategy := range r.strategies {
		if strategy.onlyWhenNegative && bestScore >= 0 {
			continue
		}
		for _, candidate := range strategy.candidates(name, idx, results) {
			score := r.scorer.Score(candidate)
			if score <= bestScore {
				continue
			}
			r.logger.Debug("website candidate accepted",
				zap.String("competitor", competitor.Name),
				zap.String("strategy", strategy.name),
				zap.String("url", candidate),
				zap.Int("score", score))
			best, bestScore = candidate, score
			if strategy.stopAtFirst {
				break
			}
		}
	}

	competitor.WebsiteURL = best
}

// repairWithSearch runs one homepage search and accepts the best result only
// if it beats the current URL and has a positive score
func (r *URLRepairer) repairWithSearch(ctx context.Context, competitor *domain.CompetitorRecord) error {
	results, err := r.provider.Search(ctx, TargetedQuery(competitor.Name), r.repairMaxResults)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRepairSearchFailure, err)
	}

	currentScore := r.scorer.Score(competitor.WebsiteURL)
	best, bestScore := "", NoURLScore
	for _, result := range results {
		if score := r.scorer.Score(result.URL); score > bestScore {
			best, bestScore = result.URL, score
		}
	}

	if best != "" && bestScore > currentScore && bestScore > 0 {
		competitor.WebsiteURL = best
	}
	return nil
}

// ParseAndRepair parses model output and repairs website URLs. Output that
// cannot be parsed degrades to an analysis with no competitors whose summary
// explains the failure; it is never retried.
func (r *URLRepairer) ParseAndRepair(
	ctx context.Context,
	raw string,
	results []domain.SearchResult,
	idx *Indices,
) *domain.MarketAnalysis {
	analysis, err := ParseAnalysis(raw)
	if err != nil {
		r.logger.Warn("analysis parse failed", zap.Error(err), zap.Int("sources", len(results)))
		return DegradedAnalysis(len(results))
	}

	r.Repair(ctx, analysis, results, idx)
	return analysis
}

// DegradedAnalysis is returned when model output fails validation
func DegradedAnalysis(sourcesCount int) *domain.MarketAnalysis {
	return &domain.MarketAnalysis{
		Summary: []string{
			fmt.Sprintf("The competitor analysis could not be parsed from the model response (%d sources searched).", sourcesCount),
		},
		CompetitorsDetails: []domain.CompetitorRecord{},
	}
}
