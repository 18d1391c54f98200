package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/competitorlens/backend/internal/domain"
)

// targetedQuerySuffix is appended to a query to bias results towards homepages
const targetedQuerySuffix = " official website homepage"

// defaultMaxQueryLength caps queries sent to search providers
const defaultMaxQueryLength = 500

// Compiled regex patterns for query preprocessing
var (
	multiSpacePattern    = regexp.MustCompile(`\s+`)
	nonAlphanumericSplit = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// QueryPreprocessor cleans research queries and tokenizes names and titles
type QueryPreprocessor struct {
	maxQueryLength int
}

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor(maxQueryLength int) *QueryPreprocessor {
	if maxQueryLength <= 0 {
		maxQueryLength = defaultMaxQueryLength
	}
	return &QueryPreprocessor{maxQueryLength: maxQueryLength}
}

// NormalizeQuery trims and collapses whitespace, then limits the query length
// at a word boundary. An empty result is reported as ErrInvalidQuery.
func (p *QueryPreprocessor) NormalizeQuery(query string) (string, error) {
	cleaned := strings.TrimSpace(multiSpacePattern.ReplaceAllString(query, " "))
	if cleaned == "" {
		return "", domain.ErrInvalidQuery
	}

	if utf8.RuneCountInString(cleaned) > p.maxQueryLength {
		runes := []rune(cleaned)
		cleaned = string(runes[:p.maxQueryLength])
		// Try to cut at word boundary
		if lastSpace := strings.LastIndex(cleaned, " "); lastSpace > len(cleaned)/2 {
			cleaned = cleaned[:lastSpace]
		}
	}

	return cleaned, nil
}

// TargetedQuery turns a query or company name into a homepage-seeking query
func TargetedQuery(query string) string {
	return strings.TrimSpace(query) + targetedQuerySuffix
}

// NameTokens splits a competitor name into lower-cased tokens longer than two characters
func NameTokens(name string) []string {
	return wordsLongerThan(name, 2)
}

// TitleWords splits a result title into lower-cased words longer than three characters
func TitleWords(title string) []string {
	return wordsLongerThan(title, 3)
}

func wordsLongerThan(s string, n int) []string {
	var words []string
	for _, word := range nonAlphanumericSplit.Split(strings.ToLower(s), -1) {
		if utf8.RuneCountInString(word) > n {
			words = append(words, word)
		}
	}
	return words
}

// companyNameSeparators end the company part of a title, as in "ClickUp | Project management"
const companyNameSeparators = "-–—:|"

// CompanyFromTitle returns the lower-cased title text before the first separator
func CompanyFromTitle(title string) string {
	name := title
	if idx := strings.IndexAny(name, companyNameSeparators); idx >= 0 {
		name = name[:idx]
	}
	return strings.TrimSpace(strings.ToLower(name))
}
