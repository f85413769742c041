package service

import (
	"math"

	"backtest-engine/internal/dto"
	"backtest-engine/pkg/utils"
)

// ComputeMetrics rolls analyzed trades up into aggregate statistics. Pure
// and total: an empty input yields a well-defined zero state. Max drawdown
// walks trades in input order, so the caller passes them chronologically.
func ComputeMetrics(trades []dto.AnalyzedTrade) dto.AggregateMetrics {
	metrics := dto.AggregateMetrics{
		ByRegime:    make(map[string]*dto.BreakdownBucket),
		BySetup:     make(map[string]*dto.BreakdownBucket),
		ByDirection: make(map[string]*dto.BreakdownBucket),
	}

	if len(trades) == 0 {
		return metrics
	}

	var (
		wins       int
		totalPNL   float64
		sumReturn  float64
		sumWinPNL  float64
		sumLossPNL float64
	)
	for _, t := range trades {
		totalPNL += t.RealizedPNL
		sumReturn += t.ReturnPct
		if t.IsWin {
			wins++
			sumWinPNL += t.RealizedPNL
		} else {
			sumLossPNL += t.RealizedPNL
		}
	}
	losses := len(trades) - wins
	winRate := float64(wins) / float64(len(trades))

	var avgWin, avgLoss float64
	if wins > 0 {
		avgWin = sumWinPNL / float64(wins)
	}
	if losses > 0 {
		avgLoss = math.Abs(sumLossPNL / float64(losses))
	}
	expectancy := avgWin*winRate - avgLoss*(1-winRate)

	// Sharpe, annualized with each trade treated as one daily return
	// sample. Statistically loose but deliberately kept: downstream
	// tooling depends on this exact number.
	returns := make([]float64, len(trades))
	for i, t := range trades {
		returns[i] = t.ReturnPct / 100
	}
	meanReturn := utils.Mean(returns)
	returnStdev := utils.PopulationStdev(returns)
	var sharpeRatio float64
	if returnStdev > 0 {
		sharpeRatio = meanReturn / returnStdev * math.Sqrt(252)
	}

	// Max drawdown over the cumulative P&L sequence.
	var peak, maxDrawdown, cumulative float64
	for _, t := range trades {
		cumulative += t.RealizedPNL
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}

	var avgHoldDays *float64
	var sumHold, holdCount int
	for _, t := range trades {
		if t.HoldDays != nil {
			sumHold += *t.HoldDays
			holdCount++
		}
	}
	if holdCount > 0 {
		avgHoldDays = utils.ToPointer(utils.Round1(float64(sumHold) / float64(holdCount)))
	}

	for _, t := range trades {
		regime := t.RegimeAtEntry
		if regime == "" {
			regime = dto.RegimeUnknown
		}
		addToBucket(metrics.ByRegime, regime, t)

		setup := t.Strategy
		if setup == "" {
			setup = dto.SetupUnknown
		}
		addToBucket(metrics.BySetup, setup, t)

		direction := t.Direction
		if direction == "" {
			direction = dto.DirectionUnknown
		}
		addToBucket(metrics.ByDirection, direction, t)
	}
	finalizeBuckets(metrics.ByRegime)
	finalizeBuckets(metrics.BySetup)
	finalizeBuckets(metrics.ByDirection)

	best, worst := trades[0], trades[0]
	for _, t := range trades[1:] {
		if t.RealizedPNL > best.RealizedPNL {
			best = t
		}
		if t.RealizedPNL < worst.RealizedPNL {
			worst = t
		}
	}

	metrics.TradeCount = len(trades)
	metrics.Wins = wins
	metrics.Losses = losses
	metrics.WinRate = utils.Round1(winRate * 100)
	metrics.Expectancy = utils.Round2(expectancy)
	metrics.TotalPNL = utils.Round2(totalPNL)
	metrics.AvgPNL = utils.Round2(totalPNL / float64(len(trades)))
	metrics.AvgReturnPct = utils.Round2(sumReturn / float64(len(trades)))
	metrics.AvgWin = utils.Round2(avgWin)
	metrics.AvgLoss = utils.Round2(avgLoss)
	metrics.SharpeRatio = utils.Round3(sharpeRatio)
	metrics.MaxDrawdown = utils.Round2(maxDrawdown)
	metrics.AvgHoldDays = avgHoldDays
	metrics.BestTrade = &dto.TradeExtreme{Ticker: best.Ticker, PNL: best.RealizedPNL, ReturnPct: best.ReturnPct}
	metrics.WorstTrade = &dto.TradeExtreme{Ticker: worst.Ticker, PNL: worst.RealizedPNL, ReturnPct: worst.ReturnPct}

	return metrics
}

func addToBucket(buckets map[string]*dto.BreakdownBucket, key string, t dto.AnalyzedTrade) {
	bucket, ok := buckets[key]
	if !ok {
		bucket = &dto.BreakdownBucket{}
		buckets[key] = bucket
	}
	bucket.Trades++
	if t.IsWin {
		bucket.Wins++
	}
	bucket.PNL += t.RealizedPNL
}

func finalizeBuckets(buckets map[string]*dto.BreakdownBucket) {
	for _, bucket := range buckets {
		if bucket.Trades > 0 {
			bucket.WinRate = utils.Round1(float64(bucket.Wins) / float64(bucket.Trades) * 100)
		}
	}
}
