package service

import (
	"backtest-engine/internal/dto"
	"backtest-engine/pkg/utils"
)

// Interpretation bands for the sigma distance. Thresholds are inclusive on
// the lower bound and the exact wording is part of the published contract.
const (
	VerdictStrongSignal    = "STRONG SIGNAL — Model significantly outperforms random chance"
	VerdictSignal          = "SIGNAL — Model likely outperforms random chance"
	VerdictWeakSignal      = "WEAK SIGNAL — Suggestive but not conclusive"
	VerdictNoSignal        = "NO SIGNAL — Performance within random range"
	VerdictUnderperforming = "UNDERPERFORMING — Worse than random chance"
)

// ComputeSignificance measures how far an actual return sits from the
// random baseline: z-score, empirical p-value (fraction of random trials
// at or above the actual return), and percentile rank.
func ComputeSignificance(actualReturnPct float64, baseline *dto.RandomBaselineResult) dto.SignificanceResult {
	var sigma float64
	if baseline.Stdev > 0 {
		sigma = (actualReturnPct - baseline.Mean) / baseline.Stdev
	}

	var beatCount, belowCount int
	for _, r := range baseline.Distribution {
		if r >= actualReturnPct {
			beatCount++
		} else {
			belowCount++
		}
	}

	var pValue, percentile float64
	if n := len(baseline.Distribution); n > 0 {
		pValue = float64(beatCount) / float64(n)
		percentile = float64(belowCount) / float64(n) * 100
	}

	return dto.SignificanceResult{
		Sigma:          utils.Round3(sigma),
		PValue:         utils.Round4(pValue),
		Percentile:     utils.Round1(percentile),
		Interpretation: interpretSigma(sigma),
	}
}

func interpretSigma(sigma float64) string {
	switch {
	case sigma >= 3:
		return VerdictStrongSignal
	case sigma >= 2:
		return VerdictSignal
	case sigma >= 1:
		return VerdictWeakSignal
	case sigma >= 0:
		return VerdictNoSignal
	default:
		return VerdictUnderperforming
	}
}
