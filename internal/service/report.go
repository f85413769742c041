package service

import (
	"fmt"
	"sort"
	"strings"

	"backtest-engine/internal/dto"
	"backtest-engine/pkg/utils"
)

// FormatReport renders a validate result into the activity feed title and
// markdown body.
func FormatReport(result *dto.ValidateResult) (title, body string) {
	m := result.Metrics
	s := result.Significance

	lines := []string{
		fmt.Sprintf("**%d trades analyzed** | Win rate: %.1f%%", m.TradeCount, m.WinRate),
		fmt.Sprintf("Total P&L: %s | Expectancy: %s/trade", utils.FormatMoney(m.TotalPNL), utils.FormatMoney(m.Expectancy)),
		fmt.Sprintf("Sharpe: %.3f | Max DD: %s", m.SharpeRatio, utils.FormatMoney(m.MaxDrawdown)),
	}

	if s != nil && result.Baseline != nil {
		lines = append(lines, "",
			fmt.Sprintf("**Monte Carlo (%d trials):** %.2fσ from random | p=%.4f", result.Baseline.Trials, s.Sigma, s.PValue),
			fmt.Sprintf("Verdict: %s", s.Interpretation),
		)
	}

	if len(m.ByRegime) > 0 {
		lines = append(lines, "", "**By Regime:**")
		lines = append(lines, breakdownLines(m.ByRegime)...)
	}

	if len(m.ByDirection) > 0 {
		lines = append(lines, "", "**By Direction:**")
		lines = append(lines, breakdownLines(m.ByDirection)...)
	}

	sigmaLabel := "no baseline"
	if s != nil {
		sigmaLabel = fmt.Sprintf("%.1fσ", s.Sigma)
	}
	title = fmt.Sprintf("Backtest: %.1f%% win rate, %s vs random", m.WinRate, sigmaLabel)

	return title, strings.Join(lines, "\n")
}

func breakdownLines(buckets map[string]*dto.BreakdownBucket) []string {
	keys := sortedBucketKeys(buckets)
	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		b := buckets[key]
		lines = append(lines, fmt.Sprintf("- %s: %.1f%% win (%d trades, %s)", key, b.WinRate, b.Trades, utils.FormatMoney(b.PNL)))
	}
	return lines
}

// sortedBucketKeys keeps report output stable across runs; map iteration
// order would shuffle lines otherwise.
func sortedBucketKeys(buckets map[string]*dto.BreakdownBucket) []string {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
