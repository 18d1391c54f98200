package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/competitorlens/backend/internal/domain"
)

// fencedJSONRegex matches a ```json ... ``` (or bare ```) block
var fencedJSONRegex = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// ExtractJSON pulls the JSON object out of model output that may be wrapped in
// code fences or surrounded by prose. Input without an object is returned trimmed.
func ExtractJSON(input string) string {
	input = strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '\uFEFF' || r == '\u200B' || r == '\u200C' || r == '\u200D' {
			return -1
		}
		return r
	}, input))

	if match := fencedJSONRegex.FindStringSubmatch(input); len(match) > 1 {
		input = strings.TrimSpace(match[1])
	}

	start := strings.Index(input, "{")
	end := strings.LastIndex(input, "}")
	if start >= 0 && end > start {
		return input[start : end+1]
	}
	return input
}

// ParseAnalysis validates model output against the analysis schema and
// normalises it. Singular values become one-element lists, null optional
// lists stay absent and a missing key_features becomes an empty list.
func ParseAnalysis(raw string) (*domain.MarketAnalysis, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &top); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidAnalysis, err)
	}
	if top == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", domain.ErrInvalidAnalysis)
	}

	summary, err := decodeStringList(top["summary"])
	if err != nil {
		return nil, fmt.Errorf("%w: summary: %v", domain.ErrInvalidAnalysis, err)
	}
	if summary == nil {
		summary = []string{}
	}

	details, ok := top["competitors_details"]
	if !ok || isNull(details) {
		return nil, fmt.Errorf("%w: competitors_details is required", domain.ErrInvalidAnalysis)
	}

	var rawCompetitors []json.RawMessage
	if err := json.Unmarshal(details, &rawCompetitors); err != nil {
		return nil, fmt.Errorf("%w: competitors_details must be an array", domain.ErrInvalidAnalysis)
	}

	competitors := make([]domain.CompetitorRecord, 0, len(rawCompetitors))
	for i, rc := range rawCompetitors {
		record, err := decodeCompetitor(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: competitors_details[%d]: %v", domain.ErrInvalidAnalysis, i, err)
		}
		competitors = append(competitors, record)
	}

	return &domain.MarketAnalysis{
		Summary:            summary,
		CompetitorsDetails: competitors,
	}, nil
}

func decodeCompetitor(raw json.RawMessage) (domain.CompetitorRecord, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return domain.CompetitorRecord{}, fmt.Errorf("expected an object")
	}

	var record domain.CompetitorRecord

	var name string
	if err := json.Unmarshal(fields["name"], &name); err != nil || strings.TrimSpace(name) == "" {
		return record, fmt.Errorf("name is required and must be a string")
	}
	record.Name = strings.TrimSpace(name)

	if website := fields["website_url"]; len(website) > 0 && !isNull(website) {
		var url string
		if err := json.Unmarshal(website, &url); err != nil {
			return record, fmt.Errorf("website_url must be a string")
		}
		record.WebsiteURL = strings.TrimSpace(url)
	}

	lists := []struct {
		key    string
		target *[]string
	}{
		{"key_features", &record.KeyFeatures},
		{"pricing_model", &record.PricingModel},
		{"tech_stack", &record.TechStack},
		{"target_market", &record.TargetMarket},
		{"market_positioning", &record.MarketPositioning},
	}
	for _, l := range lists {
		values, err := decodeStringList(fields[l.key])
		if err != nil {
			return record, fmt.Errorf("%s: %v", l.key, err)
		}
		*l.target = values
	}

	if record.KeyFeatures == nil {
		record.KeyFeatures = []string{}
	}

	return record, nil
}

// decodeStringList accepts a string, a scalar or a list of scalars. Missing,
// null and blank input yield nil.
func decodeStringList(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || isNull(raw) {
		return nil, nil
	}

	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		var values []string
		for _, item := range items {
			value, ok, err := decodeScalar(item)
			if err != nil {
				return nil, err
			}
			if ok {
				values = append(values, value)
			}
		}
		return values, nil
	}

	value, ok, err := decodeScalar(trimmed)
	if err != nil || !ok {
		return nil, err
	}
	return []string{value}, nil
}

// decodeScalar renders a JSON string, number or boolean as text. Objects and
// arrays are rejected; null and blank strings are skipped.
func decodeScalar(raw json.RawMessage) (string, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || isNull(trimmed) {
		return "", false, nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false, err
		}
		s = strings.TrimSpace(s)
		return s, s != "", nil
	case '{', '[':
		return "", false, fmt.Errorf("expected string values, got %s", string(trimmed[:1]))
	default:
		var v interface{}
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return "", false, err
		}
		return string(trimmed), true, nil
	}
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
