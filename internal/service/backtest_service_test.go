package service

import (
	"context"
	"errors"
	"testing"

	"backtest-engine/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMissionControl struct {
	positions      []dto.ClosedPosition
	positionsErr   error
	portfolio      *dto.Portfolio
	portfolioErr   error
	postErr        error
	positionCalls  int
	portfolioCalls int
	activities     []dto.ActivityPost
}

func (s *stubMissionControl) GetClosedPositions(ctx context.Context) ([]dto.ClosedPosition, error) {
	s.positionCalls++
	return s.positions, s.positionsErr
}

func (s *stubMissionControl) GetPortfolio(ctx context.Context) (*dto.Portfolio, error) {
	s.portfolioCalls++
	return s.portfolio, s.portfolioErr
}

func (s *stubMissionControl) PostActivity(ctx context.Context, activity dto.ActivityPost) error {
	s.activities = append(s.activities, activity)
	return s.postErr
}

type stubRegimeRepo struct {
	signal *dto.RegimeSignal
	err    error
	calls  int
}

func (s *stubRegimeRepo) GetCurrentSignal(ctx context.Context) (*dto.RegimeSignal, error) {
	s.calls++
	return s.signal, s.err
}

type stubDeliverableRepo struct {
	saves    int
	lastDate string
	err      error
}

func (s *stubDeliverableRepo) SaveBacktest(ctx context.Context, date string, result interface{}) (string, error) {
	s.saves++
	s.lastDate = date
	return date + "-backtest.json", s.err
}

type stubGenerator struct {
	result   *dto.RandomBaselineResult
	err      error
	calls    int
	lastOpts GenerateOptions
}

func (s *stubGenerator) Generate(ctx context.Context, opts GenerateOptions) (*dto.RandomBaselineResult, error) {
	s.calls++
	s.lastOpts = opts
	return s.result, s.err
}

func fixedBaseline() *dto.RandomBaselineResult {
	return &dto.RandomBaselineResult{
		Trials:         50,
		TradesPerTrial: 2,
		Mean:           0,
		Stdev:          1,
		Distribution:   []float64{-1, 0, 1, 2},
	}
}

func closedPositionFixtures() []dto.ClosedPosition {
	return []dto.ClosedPosition{
		{ID: 1, Ticker: "AAPL", Direction: dto.DirectionBullish, EntryPrice: 1.0, ExitPrice: 2.0, Quantity: 1, PNL: 150, Notes: "Bull call 190/195, GREEN regime"},
		{ID: 2, Ticker: "MSFT", Direction: dto.DirectionBearish, EntryPrice: 2.0, ExitPrice: 1.4, Quantity: 1, PNL: -60, Notes: "Bear put 400/395"},
	}
}

func TestReplay_DegradesToEmptyOnFetchFailure(t *testing.T) {
	mc := &stubMissionControl{positionsErr: errors.New("api down")}
	svc := NewBacktestService(testConfig(), testLogger(), mc, &stubDeliverableRepo{}, &stubGenerator{})

	result, err := svc.Replay(context.Background())
	require.NoError(t, err)

	assert.Empty(t, result.Trades)
	assert.Equal(t, 0, result.Metrics.TradeCount)
}

func TestReplay_AnalyzesAllPositions(t *testing.T) {
	mc := &stubMissionControl{positions: closedPositionFixtures()}
	svc := NewBacktestService(testConfig(), testLogger(), mc, &stubDeliverableRepo{}, &stubGenerator{})

	result, err := svc.Replay(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Trades, 2)
	assert.Equal(t, 2, result.Metrics.TradeCount)
	assert.Equal(t, 50.0, result.Metrics.WinRate)
	assert.Equal(t, 90.0, result.Metrics.TotalPNL)
	assert.Equal(t, dto.SetupBullCallSpread, result.Trades[0].Strategy)
	assert.Equal(t, dto.RegimeGreen, result.Trades[0].RegimeAtEntry)
}

func TestValidate_ZeroTradesShortCircuits(t *testing.T) {
	mc := &stubMissionControl{}
	deliverables := &stubDeliverableRepo{}
	gen := &stubGenerator{result: fixedBaseline()}
	svc := NewBacktestService(testConfig(), testLogger(), mc, deliverables, gen)

	result, err := svc.Validate(context.Background(), RunOptions{Trials: 50})
	require.NoError(t, err)

	assert.Empty(t, result.Trades)
	assert.Nil(t, result.Baseline)
	assert.Nil(t, result.Significance)
	assert.Equal(t, 0, gen.calls)
	assert.Equal(t, 0, deliverables.saves)
	assert.Equal(t, 0, mc.portfolioCalls)
}

func TestValidate_FullPipeline(t *testing.T) {
	mc := &stubMissionControl{positions: closedPositionFixtures(), portfolioErr: errors.New("timeout")}
	deliverables := &stubDeliverableRepo{}
	gen := &stubGenerator{result: fixedBaseline()}
	svc := NewBacktestService(testConfig(), testLogger(), mc, deliverables, gen)

	result, err := svc.Validate(context.Background(), RunOptions{Trials: 50})
	require.NoError(t, err)

	// Portfolio fetch failed, so the default capital of 3000 applies:
	// +90 P&L is a 3% return, three sigma above the fixed baseline.
	assert.Equal(t, 3.0, result.PortfolioReturnPct)
	require.NotNil(t, result.Significance)
	assert.Equal(t, 3.0, result.Significance.Sigma)
	assert.Equal(t, VerdictStrongSignal, result.Significance.Interpretation)

	require.NotNil(t, result.Baseline)
	assert.Equal(t, 50, result.Baseline.Trials)

	// Baseline is sized to the replayed trade count.
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 2, gen.lastOpts.TradesPerTrial)
	assert.Equal(t, 3000.0, gen.lastOpts.StartingCapital)

	assert.Equal(t, 1, deliverables.saves)
}

func TestValidate_DryRunSkipsDeliverable(t *testing.T) {
	mc := &stubMissionControl{positions: closedPositionFixtures()}
	deliverables := &stubDeliverableRepo{}
	gen := &stubGenerator{result: fixedBaseline()}
	svc := NewBacktestService(testConfig(), testLogger(), mc, deliverables, gen)

	_, err := svc.Validate(context.Background(), RunOptions{Trials: 50, DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 0, deliverables.saves)
}

func TestValidate_DeliverableFailureIsNotFatal(t *testing.T) {
	mc := &stubMissionControl{positions: closedPositionFixtures()}
	deliverables := &stubDeliverableRepo{err: errors.New("disk full")}
	gen := &stubGenerator{result: fixedBaseline()}
	svc := NewBacktestService(testConfig(), testLogger(), mc, deliverables, gen)

	result, err := svc.Validate(context.Background(), RunOptions{Trials: 50})
	require.NoError(t, err)
	assert.NotNil(t, result.Significance)
}

func TestRandom_SizesTrialFromHistory(t *testing.T) {
	mc := &stubMissionControl{positions: closedPositionFixtures()}
	gen := &stubGenerator{result: fixedBaseline()}
	svc := NewBacktestService(testConfig(), testLogger(), mc, &stubDeliverableRepo{}, gen)

	_, err := svc.Random(context.Background(), RunOptions{Trials: 100})
	require.NoError(t, err)

	// Two closed trades is below the configured floor of five.
	assert.Equal(t, 100, gen.lastOpts.Trials)
	assert.Equal(t, 5, gen.lastOpts.TradesPerTrial)
}

func TestReport_PostsActivity(t *testing.T) {
	mc := &stubMissionControl{positions: closedPositionFixtures()}
	gen := &stubGenerator{result: fixedBaseline()}
	svc := NewBacktestService(testConfig(), testLogger(), mc, &stubDeliverableRepo{}, gen)

	_, err := svc.Report(context.Background(), RunOptions{Trials: 50})
	require.NoError(t, err)

	require.Len(t, mc.activities, 1)
	activity := mc.activities[0]
	assert.Equal(t, "Backtest: 50.0% win rate, 3.0σ vs random", activity.Title)
	assert.Contains(t, activity.Body, "**2 trades analyzed**")
	assert.Contains(t, activity.Body, "Verdict: "+VerdictStrongSignal)
}

func TestReport_FeedFailureIsNotFatal(t *testing.T) {
	mc := &stubMissionControl{positions: closedPositionFixtures(), postErr: errors.New("feed down")}
	gen := &stubGenerator{result: fixedBaseline()}
	svc := NewBacktestService(testConfig(), testLogger(), mc, &stubDeliverableRepo{}, gen)

	result, err := svc.Report(context.Background(), RunOptions{Trials: 50})
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestReport_DryRunSkipsPost(t *testing.T) {
	mc := &stubMissionControl{positions: closedPositionFixtures()}
	gen := &stubGenerator{result: fixedBaseline()}
	svc := NewBacktestService(testConfig(), testLogger(), mc, &stubDeliverableRepo{}, gen)

	_, err := svc.Report(context.Background(), RunOptions{Trials: 50, DryRun: true})
	require.NoError(t, err)

	assert.Empty(t, mc.activities)
}

func TestReport_ZeroTradesSkipsPost(t *testing.T) {
	mc := &stubMissionControl{}
	gen := &stubGenerator{result: fixedBaseline()}
	svc := NewBacktestService(testConfig(), testLogger(), mc, &stubDeliverableRepo{}, gen)

	_, err := svc.Report(context.Background(), RunOptions{Trials: 50})
	require.NoError(t, err)

	assert.Empty(t, mc.activities)
}
