package main

import (
	"testing"
	"time"

	"github.com/competitorlens/backend/config"
	"github.com/competitorlens/backend/internal/usecase"
)

func TestTavilyConfig(t *testing.T) {
	got := tavilyConfig(config.SearchConfig{
		Timeout:     5 * time.Second,
		RateLimit:   1.5,
		Burst:       3,
		SearchDepth: "advanced",
	})

	if got.SearchDepth != "advanced" {
		t.Errorf("SearchDepth = %s, want advanced", got.SearchDepth)
	}
	if got.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", got.Timeout)
	}
	if got.RateLimit != 1.5 || got.Burst != 3 {
		t.Errorf("RateLimit/Burst = %v/%d, want 1.5/3", got.RateLimit, got.Burst)
	}
}

func TestScoringConfig_KeepsZeroWeights(t *testing.T) {
	got := scoringConfig(config.ScoringConfig{
		ArticlePenalty: 100,
		RootMaxSlashes: 3,
		RootBonus:      10,
		DeepMinSlashes: 5,
		DeepPenalty:    5,
		PreferredTLDs:  []string{"io"},
		TLDBonus:       5,
		QueryPenalty:   0,
		HTTPSBonus:     2,
	})

	scorer := usecase.NewURLScorer(got)
	if a, b := scorer.Score("https://a.io/?ref=x"), scorer.Score("https://a.io/"); a != b {
		t.Errorf("Score with query = %d, want %d when query_penalty is 0", a, b)
	}
}
