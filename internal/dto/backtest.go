package dto

import "time"

// AnalyzedTrade is the normalized outcome of a single closed position.
// Recomputed on every replay run, never persisted with its own identity.
type AnalyzedTrade struct {
	ID            int64      `json:"id"`
	Ticker        string     `json:"ticker"`
	Strategy      string     `json:"strategy"`
	Direction     string     `json:"direction"`
	Vehicle       string     `json:"vehicle"`
	RegimeAtEntry string     `json:"regime_at_entry,omitempty"`
	EntryPrice    float64    `json:"entry_price"`
	ExitPrice     float64    `json:"exit_price"`
	Quantity      int        `json:"quantity"`
	CostBasis     float64    `json:"cost_basis"`
	RealizedPNL   float64    `json:"realized_pnl"`
	ReturnPct     float64    `json:"return_pct"`
	HoldDays      *int       `json:"hold_days"`
	IsWin         bool       `json:"is_win"`
	HitTarget     bool       `json:"hit_target"`
	HitStop       bool       `json:"hit_stop"`
	ExitReason    string     `json:"exit_reason"`
	EntryDate     *time.Time `json:"entry_date"`
	ExitDate      *time.Time `json:"exit_date"`
	Expiry        string     `json:"expiry,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// BreakdownBucket accumulates per-category performance (regime, setup,
// direction).
type BreakdownBucket struct {
	Trades  int     `json:"trades"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
	PNL     float64 `json:"pnl"`
}

// TradeExtreme identifies the best or worst trade of a run.
type TradeExtreme struct {
	Ticker    string  `json:"ticker"`
	PNL       float64 `json:"pnl"`
	ReturnPct float64 `json:"return_pct"`
}

// AggregateMetrics rolls a set of analyzed trades up into portfolio-level
// statistics. Invariant: Wins + Losses == TradeCount.
type AggregateMetrics struct {
	TradeCount   int                         `json:"trade_count"`
	Wins         int                         `json:"wins"`
	Losses       int                         `json:"losses"`
	WinRate      float64                     `json:"win_rate"`
	Expectancy   float64                     `json:"expectancy"`
	TotalPNL     float64                     `json:"total_pnl"`
	AvgPNL       float64                     `json:"avg_pnl"`
	AvgReturnPct float64                     `json:"avg_return_pct"`
	AvgWin       float64                     `json:"avg_win"`
	AvgLoss      float64                     `json:"avg_loss"`
	SharpeRatio  float64                     `json:"sharpe_ratio"`
	MaxDrawdown  float64                     `json:"max_drawdown"`
	AvgHoldDays  *float64                    `json:"avg_hold_days"`
	ByRegime     map[string]*BreakdownBucket `json:"by_regime"`
	BySetup      map[string]*BreakdownBucket `json:"by_setup"`
	ByDirection  map[string]*BreakdownBucket `json:"by_direction"`
	BestTrade    *TradeExtreme               `json:"best_trade"`
	WorstTrade   *TradeExtreme               `json:"worst_trade"`
}

// ReplayResult is the output of a replay run.
type ReplayResult struct {
	Trades  []AnalyzedTrade  `json:"trades"`
	Metrics AggregateMetrics `json:"metrics"`
}

// ValidateResult is the full validation deliverable: replay + baseline +
// significance. Baseline and Significance are nil when there were no
// closed trades to validate.
type ValidateResult struct {
	Timestamp          time.Time           `json:"timestamp"`
	Trades             []AnalyzedTrade     `json:"trades"`
	Metrics            AggregateMetrics    `json:"metrics"`
	Baseline           *BaselineSummary    `json:"baseline"`
	Significance       *SignificanceResult `json:"significance"`
	PortfolioReturnPct float64             `json:"portfolio_return_pct"`
}
