package service

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"backtest-engine/config"
	"backtest-engine/internal/dto"
	"backtest-engine/pkg/logger"
	"backtest-engine/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// Liquid large-cap tickers drawn per simulated trade. The draw is purely
// narrative: the simulated return comes from the normal model below, not
// from any real price series, so the baseline represents generic
// market-volatility chance rather than ticker-specific history.
var liquidTickers = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "JPM", "V", "MA",
	"UNH", "HD", "PG", "JNJ", "XOM", "CVX", "BAC", "WMT", "KO", "PEP",
	"ABBV", "MRK", "COST", "AVGO", "TMO", "LLY", "ORCL", "ACN", "MCD", "CRM",
	"AMD", "NFLX", "ADBE", "QCOM", "TXN", "INTC", "AMAT", "INTU", "ISRG", "BKNG",
	"GILD", "MDLZ", "ADP", "REGN", "VRTX", "PANW", "SNPS", "KLAC", "CDNS", "LRCX",
}

// S&P 500 daily return characteristics used by the Box-Muller draw.
const (
	dailyReturnMean  = 0.0004
	dailyReturnStdev = 0.012
	positionFraction = 0.2
)

// GenerateOptions sizes one Monte Carlo run. Zero values fall back to
// config defaults; a zero BaseSeed means "seed from the clock".
type GenerateOptions struct {
	Trials          int
	TradesPerTrial  int
	StartingCapital float64
	BaseSeed        int64
}

// RandomBaselineGenerator simulates random trading portfolios to build a
// "chance" distribution of returns.
type RandomBaselineGenerator interface {
	Generate(ctx context.Context, opts GenerateOptions) (*dto.RandomBaselineResult, error)
}

type randomBaselineGenerator struct {
	cfg    *config.Config
	logger *logger.Logger
}

func NewRandomBaselineGenerator(cfg *config.Config, log *logger.Logger) RandomBaselineGenerator {
	return &randomBaselineGenerator{cfg: cfg, logger: log}
}

// Generate runs the trials concurrently. Each trial owns a rand.Rand seeded
// baseSeed+trialIndex, so results for a fixed seed are reproducible
// regardless of how the trials are scheduled across workers.
func (g *randomBaselineGenerator) Generate(ctx context.Context, opts GenerateOptions) (*dto.RandomBaselineResult, error) {
	trials := opts.Trials
	if trials <= 0 {
		trials = g.cfg.Backtest.DefaultTrials
	}
	tradesPerTrial := opts.TradesPerTrial
	if tradesPerTrial <= 0 {
		tradesPerTrial = 10
	}
	startingCapital := opts.StartingCapital
	if startingCapital <= 0 {
		startingCapital = g.cfg.Backtest.StartingCapital
	}
	baseSeed := opts.BaseSeed
	if baseSeed == 0 {
		baseSeed = g.cfg.Backtest.BaseSeed
	}
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}

	g.logger.InfoContext(ctx, "Generating random portfolios",
		logger.IntField("trials", trials),
		logger.IntField("trades_per_trial", tradesPerTrial),
		logger.Float64Field("starting_capital", startingCapital),
	)

	returns := make([]float64, trials)

	workers := g.cfg.Backtest.MaxTrialWorkers
	if workers <= 0 {
		workers = 4
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i := 0; i < trials; i++ {
		i := i
		eg.Go(func() error {
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			default:
			}
			rng := rand.New(rand.NewSource(baseSeed + int64(i)))
			returns[i] = g.runTrial(egCtx, rng, tradesPerTrial, startingCapital)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sorted := make([]float64, trials)
	copy(sorted, returns)
	sort.Float64s(sorted)

	result := &dto.RandomBaselineResult{
		Trials:          trials,
		TradesPerTrial:  tradesPerTrial,
		StartingCapital: startingCapital,
		Mean:            utils.Mean(returns),
		Stdev:           utils.PopulationStdev(returns),
		Min:             sorted[0],
		Max:             sorted[trials-1],
		Percentiles: dto.Percentiles{
			P5:  percentileAt(sorted, 0.05),
			P25: percentileAt(sorted, 0.25),
			P50: percentileAt(sorted, 0.50),
			P75: percentileAt(sorted, 0.75),
			P95: percentileAt(sorted, 0.95),
		},
		Distribution: returns,
	}

	g.logger.InfoContext(ctx, "Random baseline generated",
		logger.Float64Field("mean_pct", result.Mean),
		logger.Float64Field("stdev_pct", result.Stdev),
		logger.Float64Field("min_pct", result.Min),
		logger.Float64Field("max_pct", result.Max),
	)

	return result, nil
}

// runTrial simulates one random portfolio and returns its total return %.
func (g *randomBaselineGenerator) runTrial(ctx context.Context, rng *rand.Rand, tradesPerTrial int, startingCapital float64) float64 {
	capital := startingCapital
	for t := 0; t < tradesPerTrial; t++ {
		ticker := liquidTickers[rng.Intn(len(liquidTickers))]
		dailyReturn := sampleDailyReturn(rng)
		positionSize := capital * positionFraction
		pnl := positionSize * dailyReturn
		capital += pnl

		g.logger.DebugContext(ctx, "Simulated random trade",
			logger.StringField("ticker", ticker),
			logger.Float64Field("return_pct", dailyReturn*100),
			logger.Float64Field("pnl", pnl),
		)
	}
	return (capital - startingCapital) / startingCapital * 100
}

// sampleDailyReturn draws from N(mean, stdev) via the Box-Muller transform.
func sampleDailyReturn(rng *rand.Rand) float64 {
	u1 := rng.Float64()
	u2 := rng.Float64()
	if u1 == 0 {
		u1 = math.SmallestNonzeroFloat64
	}
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return dailyReturnMean + z*dailyReturnStdev
}

// percentileAt indexes a sorted distribution at floor(len*p).
func percentileAt(sorted []float64, p float64) float64 {
	idx := int(math.Floor(float64(len(sorted)) * p))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
