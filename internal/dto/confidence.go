package dto

import "time"

// Play is a prospective trade setup to be scored before entry.
type Play struct {
	Ticker           string   `json:"ticker"`
	Strategy         string   `json:"strategy,omitempty"`
	Direction        string   `json:"direction,omitempty"`
	SentimentScore   *float64 `json:"sentiment_score,omitempty"`
	Cost             float64  `json:"cost,omitempty"`
	TheoreticalValue float64  `json:"theoretical_value,omitempty"`
}

// FactorScore is one of the six weighted confidence factors. Score is
// 0-100 where 50 means "no edge either way".
type FactorScore struct {
	Score   float64  `json:"score"`
	Detail  string   `json:"detail"`
	WinRate *float64 `json:"winRate,omitempty"`
	Weight  float64  `json:"weight"`
}

// ConfidenceBreakdown carries every factor that fed the composite score.
type ConfidenceBreakdown struct {
	TickerHistory     FactorScore `json:"tickerHistory"`
	SetupHistory      FactorScore `json:"setupHistory"`
	RegimeAlignment   FactorScore `json:"regimeAlignment"`
	SentimentStrength FactorScore `json:"sentimentStrength"`
	PricingEdge       FactorScore `json:"pricingEdge"`
	FactorAgreement   FactorScore `json:"factorAgreement"`
}

// ConfidenceScore is the scored verdict for a play. Value object; the
// scorer never persists it.
type ConfidenceScore struct {
	Score     int                 `json:"score"`
	Grade     string              `json:"grade"`
	Ticker    string              `json:"ticker"`
	Setup     string              `json:"setup,omitempty"`
	Direction string              `json:"direction,omitempty"`
	Breakdown ConfidenceBreakdown `json:"breakdown"`
	Timestamp time.Time           `json:"timestamp"`
}
