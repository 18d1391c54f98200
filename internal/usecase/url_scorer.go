package usecase

import (
	"math"
	"net/url"
	"regexp"
	"strings"
)

// NoURLScore is the score of an absent URL. It loses against every real URL.
const NoURLScore = math.MinInt32

// articlePathPatterns are URL fragments that point at editorial, video or
// social content rather than a product homepage
var articlePathPatterns = []string{
	"/blog/", "/blogs/", "/news/", "/article", "/post/", "/posts/",
	"/story/", "/stories/", "/press/", "/insights/", "/review/", "/reviews/",
	"/compare/", "/comparison", "/vs/", "-vs-", "/alternatives", "/best-",
	"/top-", "/guide/", "/guides/", "/learn/", "/resources/", "/podcast",
	"/video/", "/videos/", "/watch?", "/shorts/", "/wiki/", "/magazine/",
	"/opinion/", "/tag/", "/category/",
}

// articleDomains are media, social and review sites, matched against the host
var articleDomains = []string{
	"techcrunch.com", "forbes.com", "medium.com", "substack.com",
	"youtube.com", "youtu.be", "vimeo.com", "tiktok.com",
	"reddit.com", "quora.com", "twitter.com", "x.com", "facebook.com",
	"instagram.com", "linkedin.com", "wikipedia.org",
	"g2.com", "capterra.com", "getapp.com", "trustradius.com", "producthunt.com",
	"theverge.com", "wired.com", "venturebeat.com", "zdnet.com", "cnet.com",
	"businessinsider.com", "bloomberg.com", "reuters.com", "nytimes.com",
	"crunchbase.com", "news.ycombinator.com", "dev.to", "hackernoon.com",
}

// yearPathRegex matches dated article paths like /2024/ or /2019/05/
var yearPathRegex = regexp.MustCompile(`/(19|20)\d{2}/`)

// IsArticle reports whether a URL looks like editorial/media content rather
// than a company or product page. Matching is case-insensitive.
func IsArticle(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, pattern := range articlePathPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	host := strings.TrimPrefix(hostOf(lower), "www.")
	for _, d := range articleDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return yearPathRegex.MatchString(lower)
}

// ScoringConfig holds the URL scoring weights
type ScoringConfig struct {
	ArticlePenalty int
	RootMaxSlashes int
	RootBonus      int
	DeepMinSlashes int // penalty applies when slash count exceeds this
	DeepPenalty    int
	PreferredTLDs  []string
	TLDBonus       int
	QueryPenalty   int
	HTTPSBonus     int
}

func (c ScoringConfig) isZero() bool {
	return c.ArticlePenalty == 0 && c.RootMaxSlashes == 0 && c.RootBonus == 0 &&
		c.DeepMinSlashes == 0 && c.DeepPenalty == 0 && len(c.PreferredTLDs) == 0 &&
		c.TLDBonus == 0 && c.QueryPenalty == 0 && c.HTTPSBonus == 0
}

// DefaultScoringConfig returns the stock scoring weights
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		ArticlePenalty: 100,
		RootMaxSlashes: 3,
		RootBonus:      10,
		DeepMinSlashes: 5,
		DeepPenalty:    5,
		PreferredTLDs:  []string{"io", "com", "ai", "app", "tech"},
		TLDBonus:       5,
		QueryPenalty:   3,
		HTTPSBonus:     2,
	}
}

// URLScorer ranks URLs by how likely they are to be a company homepage
type URLScorer struct {
	config ScoringConfig
	tlds   map[string]bool
}

// NewURLScorer creates a scorer. An all-zero config selects the stock
// weights; any other config is used exactly as given, so a weight may be 0.
func NewURLScorer(config ScoringConfig) *URLScorer {
	if config.isZero() {
		config = DefaultScoringConfig()
	}

	tlds := make(map[string]bool, len(config.PreferredTLDs))
	for _, tld := range config.PreferredTLDs {
		tlds[strings.ToLower(strings.TrimPrefix(tld, "."))] = true
	}

	return &URLScorer{config: config, tlds: tlds}
}

// Score returns an additive quality score for a URL. Higher is better; the
// value is only meaningful relative to other scores.
func (s *URLScorer) Score(rawURL string) int {
	if rawURL == "" {
		return NoURLScore
	}

	score := 0
	if IsArticle(rawURL) {
		score -= s.config.ArticlePenalty
	}

	slashes := strings.Count(rawURL, "/")
	if slashes <= s.config.RootMaxSlashes {
		score += s.config.RootBonus
	} else if slashes > s.config.DeepMinSlashes {
		score -= s.config.DeepPenalty
	}

	if s.tlds[topLevelDomain(rawURL)] {
		score += s.config.TLDBonus
	}

	if strings.Contains(rawURL, "?") {
		score -= s.config.QueryPenalty
	}

	if strings.HasPrefix(strings.ToLower(rawURL), "https://") {
		score += s.config.HTTPSBonus
	}

	return score
}

// topLevelDomain returns the lower-cased last label of the URL host
func topLevelDomain(rawURL string) string {
	host := hostOf(rawURL)
	if idx := strings.LastIndex(host, "."); idx >= 0 {
		return host[idx+1:]
	}
	return ""
}

// hostOf extracts the lower-cased host, tolerating scheme-less input
func hostOf(rawURL string) string {
	candidate := rawURL
	if !strings.Contains(candidate, "://") {
		candidate = "http://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// domainToken strips scheme, "www." and path, leaving e.g. "clickup.com"
func domainToken(rawURL string) string {
	return strings.TrimPrefix(hostOf(rawURL), "www.")
}

// domainLabel returns the registrable label of a domain, e.g. "clickup" for
// "app.clickup.com"
func domainLabel(rawURL string) string {
	parts := strings.Split(domainToken(rawURL), ".")
	if len(parts) < 2 {
		return parts[0]
	}
	return parts[len(parts)-2]
}
