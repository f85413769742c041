package service

import (
	"context"
	"time"

	"backtest-engine/config"
	"backtest-engine/internal/dto"
	"backtest-engine/internal/repository"
	"backtest-engine/pkg/common"
	"backtest-engine/pkg/logger"
	"backtest-engine/pkg/utils"
)

// RunOptions carries the per-invocation knobs shared by the commands.
type RunOptions struct {
	Trials int
	DryRun bool
}

// BacktestService is the orchestrator: replay closed trades, generate a
// random chance baseline, validate the two against each other, and publish
// a report. Each call is an independent one-shot batch; missing external
// data degrades to defaults and never crashes a run.
type BacktestService interface {
	Replay(ctx context.Context) (*dto.ReplayResult, error)
	Random(ctx context.Context, opts RunOptions) (*dto.RandomBaselineResult, error)
	Validate(ctx context.Context, opts RunOptions) (*dto.ValidateResult, error)
	Report(ctx context.Context, opts RunOptions) (*dto.ValidateResult, error)
}

type backtestService struct {
	cfg                *config.Config
	logger             *logger.Logger
	missionControlRepo repository.MissionControlRepository
	deliverableRepo    repository.DeliverableRepository
	generator          RandomBaselineGenerator
}

func NewBacktestService(
	cfg *config.Config,
	log *logger.Logger,
	missionControlRepo repository.MissionControlRepository,
	deliverableRepo repository.DeliverableRepository,
	generator RandomBaselineGenerator,
) BacktestService {
	return &backtestService{
		cfg:                cfg,
		logger:             log,
		missionControlRepo: missionControlRepo,
		deliverableRepo:    deliverableRepo,
		generator:          generator,
	}
}

// Replay fetches closed positions, analyzes each, and aggregates metrics.
// Zero closed positions is a valid empty result, not an error.
func (s *backtestService) Replay(ctx context.Context) (*dto.ReplayResult, error) {
	positions := s.loadClosedPositions(ctx)

	trades := make([]dto.AnalyzedTrade, 0, len(positions))
	for _, p := range positions {
		trade := AnalyzeTrade(p)
		trades = append(trades, trade)

		s.logger.DebugContext(ctx, "Analyzed trade",
			logger.Field("id", trade.ID),
			logger.StringField("ticker", trade.Ticker),
			logger.StringField("strategy", trade.Strategy),
			logger.StringField("pnl", utils.FormatMoney(trade.RealizedPNL)),
			logger.StringField("return", utils.FormatPct(trade.ReturnPct)),
		)
	}

	metrics := ComputeMetrics(trades)

	s.logger.InfoContext(ctx, "Replay complete",
		logger.IntField("trades", metrics.TradeCount),
		logger.Float64Field("win_rate", metrics.WinRate),
		logger.StringField("total_pnl", utils.FormatMoney(metrics.TotalPNL)),
		logger.StringField("expectancy", utils.FormatMoney(metrics.Expectancy)),
		logger.Float64Field("sharpe", metrics.SharpeRatio),
		logger.StringField("max_drawdown", utils.FormatMoney(metrics.MaxDrawdown)),
	)

	return &dto.ReplayResult{Trades: trades, Metrics: metrics}, nil
}

// Random generates the Monte Carlo baseline, sized from the live portfolio
// and closed-trade count.
func (s *backtestService) Random(ctx context.Context, opts RunOptions) (*dto.RandomBaselineResult, error) {
	startingCapital := s.loadStartingCapital(ctx)

	tradesPerTrial := len(s.loadClosedPositions(ctx))
	if tradesPerTrial < s.cfg.Backtest.MinTradesPerTrial {
		tradesPerTrial = s.cfg.Backtest.MinTradesPerTrial
	}

	return s.generator.Generate(ctx, GenerateOptions{
		Trials:          opts.Trials,
		TradesPerTrial:  tradesPerTrial,
		StartingCapital: startingCapital,
	})
}

// Validate is the full pipeline: replay, then a baseline sized to the
// replay, then significance. With zero trades it short-circuits and never
// generates a baseline against nothing.
func (s *backtestService) Validate(ctx context.Context, opts RunOptions) (*dto.ValidateResult, error) {
	replay, err := s.Replay(ctx)
	if err != nil {
		return nil, err
	}

	result := &dto.ValidateResult{
		Timestamp: time.Now().UTC(),
		Trades:    replay.Trades,
		Metrics:   replay.Metrics,
	}

	if len(replay.Trades) == 0 {
		s.logger.InfoContext(ctx, "No trades to validate")
		return result, nil
	}

	startingCapital := s.loadStartingCapital(ctx)

	baseline, err := s.generator.Generate(ctx, GenerateOptions{
		Trials:          opts.Trials,
		TradesPerTrial:  len(replay.Trades),
		StartingCapital: startingCapital,
	})
	if err != nil {
		return nil, err
	}

	totalReturnPct := replay.Metrics.TotalPNL / startingCapital * 100
	significance := ComputeSignificance(totalReturnPct, baseline)

	result.Baseline = baseline.Summary()
	result.Significance = &significance
	result.PortfolioReturnPct = totalReturnPct

	s.logger.InfoContext(ctx, "Validation complete",
		logger.StringField("our_return", utils.FormatPct(totalReturnPct)),
		logger.StringField("random_mean", utils.FormatPct(baseline.Mean)),
		logger.Float64Field("sigma", significance.Sigma),
		logger.Float64Field("p_value", significance.PValue),
		logger.StringField("verdict", significance.Interpretation),
	)

	if opts.DryRun {
		s.logger.WarnContext(ctx, "Dry run, skipping deliverable save")
	} else if _, err := s.deliverableRepo.SaveBacktest(ctx, utils.TodayStamp(), result); err != nil {
		s.logger.WarnContext(ctx, "Failed to save deliverable", logger.ErrorField(err))
	}

	return result, nil
}

// Report runs a validation, formats the human-readable summary, and posts
// it to the activity feed. The POST is fire-and-forget: a feed failure is
// logged and the report still succeeds.
func (s *backtestService) Report(ctx context.Context, opts RunOptions) (*dto.ValidateResult, error) {
	result, err := s.Validate(ctx, opts)
	if err != nil {
		return nil, err
	}

	if len(result.Trades) == 0 {
		s.logger.InfoContext(ctx, "No trades to report")
		return result, nil
	}

	title, body := FormatReport(result)

	if opts.DryRun {
		s.logger.WarnContext(ctx, "Dry run, skipping activity post")
		return result, nil
	}

	activity := dto.ActivityPost{
		AgentName: s.cfg.MissionControl.AgentName,
		Type:      common.ACTIVITY_TYPE_ANALYSIS,
		Domain:    common.ACTIVITY_DOMAIN,
		Title:     title,
		Body:      body,
	}
	if err := s.missionControlRepo.PostActivity(ctx, activity); err != nil {
		s.logger.WarnContext(ctx, "Failed to post report to activity feed", logger.ErrorField(err))
		return result, nil
	}

	s.logger.InfoContext(ctx, "Report posted to activity feed", logger.StringField("title", title))
	return result, nil
}

// loadClosedPositions degrades to an empty slice on any fetch failure;
// partial data is normal for this tool.
func (s *backtestService) loadClosedPositions(ctx context.Context) []dto.ClosedPosition {
	positions, err := s.missionControlRepo.GetClosedPositions(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to load closed positions, continuing with none", logger.ErrorField(err))
		return nil
	}
	return positions
}

// loadStartingCapital degrades to the configured default bankroll.
func (s *backtestService) loadStartingCapital(ctx context.Context) float64 {
	portfolio, err := s.missionControlRepo.GetPortfolio(ctx)
	if err != nil || portfolio == nil || portfolio.StartingBankroll <= 0 {
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to load portfolio, using default capital", logger.ErrorField(err))
		}
		return s.cfg.Backtest.StartingCapital
	}
	return portfolio.StartingBankroll
}
