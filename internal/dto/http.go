package dto

// ValidateRequest is the HTTP payload for running a validation.
type ValidateRequest struct {
	Trials int `json:"trials" validate:"omitempty,min=1,max=10000"`
}

// ConfidenceRequest is the HTTP payload for scoring a play.
type ConfidenceRequest struct {
	Ticker           string   `json:"ticker" validate:"required"`
	Setup            string   `json:"setup"`
	Direction        string   `json:"direction" validate:"omitempty,oneof=bullish bearish long short neutral call put"`
	SentimentScore   *float64 `json:"sentiment_score"`
	Cost             float64  `json:"cost" validate:"omitempty,min=0"`
	TheoreticalValue float64  `json:"theoretical_value" validate:"omitempty,min=0"`
}
