package usecase

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/competitorlens/backend/internal/domain"
)

// embeddedURLRegex finds http(s) links inside free text
var embeddedURLRegex = regexp.MustCompile(`https?://[^\s"'<>()\[\]{}]+`)

// Indices are request-scoped lookup tables built from search results and
// later used to correct competitor website URLs.
type Indices struct {
	// Domains maps a bare domain token or title keyword to the first URL seen for it
	Domains map[string]string
	// Companies maps a lower-cased company name to URLs ranked by score
	Companies map[string][]string
	// Words maps a lower-cased title word to URLs ranked by score
	Words map[string][]string
}

func newIndices() *Indices {
	return &Indices{
		Domains:   make(map[string]string),
		Companies: make(map[string][]string),
		Words:     make(map[string][]string),
	}
}

// TopCompanyURL returns the best ranked URL indexed for a company name
func (idx *Indices) TopCompanyURL(name string) string {
	if urls := idx.Companies[name]; len(urls) > 0 {
		return urls[0]
	}
	return ""
}

// TopWordURL returns the best ranked URL indexed for a title word
func (idx *Indices) TopWordURL(word string) string {
	if urls := idx.Words[word]; len(urls) > 0 {
		return urls[0]
	}
	return ""
}

func (idx *Indices) addDomain(key, rawURL string) {
	if key == "" {
		return
	}
	if _, exists := idx.Domains[key]; !exists {
		idx.Domains[key] = rawURL
	}
}

// indexResult records a non-article result under its domain, company name and title words
func (idx *Indices) indexResult(result domain.SearchResult) {
	idx.addDomain(domainToken(result.URL), result.URL)

	if company := CompanyFromTitle(result.Title); company != "" {
		idx.Companies[company] = append(idx.Companies[company], result.URL)
	}

	for _, word := range TitleWords(result.Title) {
		idx.addDomain(word, result.URL)
		idx.Words[word] = append(idx.Words[word], result.URL)
	}
}

// indexEmbeddedURL records a link found inside article text. There is no
// title, so the domain label stands in for the company name.
func (idx *Indices) indexEmbeddedURL(rawURL string) {
	idx.addDomain(domainToken(rawURL), rawURL)
	if label := domainLabel(rawURL); label != "" {
		idx.Companies[label] = append(idx.Companies[label], rawURL)
	}
}

// rank de-duplicates and stable-sorts every URL list by descending score
func (idx *Indices) rank(scorer *URLScorer) {
	for key, urls := range idx.Companies {
		idx.Companies[key] = rankURLs(urls, scorer)
	}
	for key, urls := range idx.Words {
		idx.Words[key] = rankURLs(urls, scorer)
	}
}

func rankURLs(urls []string, scorer *URLScorer) []string {
	seen := make(map[string]bool, len(urls))
	unique := make([]string, 0, len(urls))
	for _, u := range urls {
		if !seen[u] {
			seen[u] = true
			unique = append(unique, u)
		}
	}
	sort.SliceStable(unique, func(i, j int) bool {
		return scorer.Score(unique[i]) > scorer.Score(unique[j])
	})
	return unique
}

// ExtractEmbeddedURLs returns the non-article links found in text, in order of appearance
func ExtractEmbeddedURLs(text string) []string {
	var urls []string
	for _, match := range embeddedURLRegex.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:!?'\"")
		if match == "" || IsArticle(match) {
			continue
		}
		urls = append(urls, match)
	}
	return urls
}

// BuildContext turns ranked search results into the LLM context block and the
// lookup indices used for URL repair
func BuildContext(results []domain.SearchResult, scorer *URLScorer) (string, *Indices) {
	idx := newIndices()

	for _, result := range results {
		if IsArticle(result.URL) {
			for _, embedded := range ExtractEmbeddedURLs(result.Content) {
				idx.indexEmbeddedURL(embedded)
			}
			continue
		}
		idx.indexResult(result)
	}
	idx.rank(scorer)

	blocks := make([]string, 0, len(results))
	for i, result := range results {
		blocks = append(blocks, fmt.Sprintf("[Source %d] %s\n%s\nURL: %s\n",
			i+1, strings.TrimSpace(result.Title), strings.TrimSpace(result.Content), result.URL))
	}

	return strings.Join(blocks, "\n"), idx
}
