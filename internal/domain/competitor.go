package domain

// CompetitorRecord holds the structured facts extracted for one competitor.
// KeyFeatures is always serialised (empty list when unknown); the remaining
// list fields are omitted when absent.
type CompetitorRecord struct {
	Name              string   `json:"name"`
	WebsiteURL        string   `json:"website_url,omitempty"`
	KeyFeatures       []string `json:"key_features"`
	PricingModel      []string `json:"pricing_model,omitempty"`
	TechStack         []string `json:"tech_stack,omitempty"`
	TargetMarket      []string `json:"target_market,omitempty"`
	MarketPositioning []string `json:"market_positioning,omitempty"`
}

// MarketAnalysis is the validated analysis returned to clients
type MarketAnalysis struct {
	Summary            []string           `json:"summary"`
	CompetitorsDetails []CompetitorRecord `json:"competitors_details"`
}
