package service

import (
	"strings"
	"testing"

	"backtest-engine/internal/dto"

	"github.com/stretchr/testify/assert"
)

func validateResultFixture() *dto.ValidateResult {
	return &dto.ValidateResult{
		Metrics: dto.AggregateMetrics{
			TradeCount:  4,
			WinRate:     75.0,
			TotalPNL:    210.5,
			Expectancy:  52.63,
			SharpeRatio: 2.345,
			MaxDrawdown: 60,
			ByRegime: map[string]*dto.BreakdownBucket{
				dto.RegimeGreen: {Trades: 3, Wins: 3, WinRate: 100, PNL: 270.5},
				dto.RegimeRed:   {Trades: 1, Wins: 0, WinRate: 0, PNL: -60},
			},
			ByDirection: map[string]*dto.BreakdownBucket{
				dto.DirectionBullish: {Trades: 4, Wins: 3, WinRate: 75, PNL: 210.5},
			},
		},
		Baseline: &dto.BaselineSummary{Trials: 50},
		Significance: &dto.SignificanceResult{
			Sigma:          2.31,
			PValue:         0.02,
			Interpretation: VerdictSignal,
		},
	}
}

func TestFormatReport(t *testing.T) {
	title, body := FormatReport(validateResultFixture())

	assert.Equal(t, "Backtest: 75.0% win rate, 2.3σ vs random", title)
	assert.Contains(t, body, "**4 trades analyzed** | Win rate: 75.0%")
	assert.Contains(t, body, "Total P&L: +$210.50 | Expectancy: +$52.63/trade")
	assert.Contains(t, body, "**Monte Carlo (50 trials):** 2.31σ from random | p=0.0200")
	assert.Contains(t, body, "Verdict: "+VerdictSignal)
	assert.Contains(t, body, "- GREEN: 100.0% win (3 trades, +$270.50)")
	assert.Contains(t, body, "- RED: 0.0% win (1 trades, -$60.00)")
}

func TestFormatReport_StableBucketOrder(t *testing.T) {
	_, body := FormatReport(validateResultFixture())

	greenAt := strings.Index(body, "- GREEN:")
	redAt := strings.Index(body, "- RED:")
	assert.Greater(t, redAt, greenAt)
}

func TestFormatReport_NoBaseline(t *testing.T) {
	result := validateResultFixture()
	result.Baseline = nil
	result.Significance = nil

	title, body := FormatReport(result)

	assert.Equal(t, "Backtest: 75.0% win rate, no baseline vs random", title)
	assert.NotContains(t, body, "Monte Carlo")
}
