package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"backtest-engine/config"
	"backtest-engine/internal/dto"
	"backtest-engine/internal/repository"
	"backtest-engine/internal/service"
	"backtest-engine/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMissionControl struct {
	positions []dto.ClosedPosition
}

func (f *fakeMissionControl) GetClosedPositions(ctx context.Context) ([]dto.ClosedPosition, error) {
	return f.positions, nil
}

func (f *fakeMissionControl) GetPortfolio(ctx context.Context) (*dto.Portfolio, error) {
	return &dto.Portfolio{StartingBankroll: 3000}, nil
}

func (f *fakeMissionControl) PostActivity(ctx context.Context, activity dto.ActivityPost) error {
	return nil
}

type fakeRegime struct{}

func (f *fakeRegime) GetCurrentSignal(ctx context.Context) (*dto.RegimeSignal, error) {
	return &dto.RegimeSignal{Signal: dto.RegimeGreen}, nil
}

type fakeDeliverable struct{}

func (f *fakeDeliverable) SaveBacktest(ctx context.Context, date string, result interface{}) (string, error) {
	return date + "-backtest.json", nil
}

func newTestHandler(t *testing.T, positions []dto.ClosedPosition) (*HttpAPIHandler, *echo.Echo) {
	t.Helper()

	cfg := &config.Config{
		Backtest: config.Backtest{
			DefaultTrials:     20,
			MinTradesPerTrial: 5,
			MaxTrialWorkers:   4,
			BaseSeed:          42,
			StartingCapital:   3000,
		},
		Cache: config.Cache{DefaultExpiration: time.Minute},
	}
	log := &logger.Logger{Logger: zap.NewNop()}

	repo := &repository.Repository{
		MissionControlRepo: &fakeMissionControl{positions: positions},
		RegimeRepo:         &fakeRegime{},
		DeliverableRepo:    &fakeDeliverable{},
	}
	services := service.NewService(cfg, log, repo)

	e := echo.New()
	handler := NewHttpAPIHandler(context.Background(), e, goValidator.New(), services)
	handler.SetupRoutes()
	return handler, e
}

func TestRunReplay(t *testing.T) {
	positions := []dto.ClosedPosition{
		{ID: 1, Ticker: "AAPL", EntryPrice: 1, ExitPrice: 2, Quantity: 1, PNL: 100},
	}
	_, e := newTestHandler(t, positions)

	req := httptest.NewRequest(http.MethodGet, "/api/backtest/replay", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"trade_count":1`)
	assert.Contains(t, rec.Body.String(), `"ticker":"AAPL"`)
}

func TestRunValidate(t *testing.T) {
	positions := []dto.ClosedPosition{
		{ID: 1, Ticker: "AAPL", EntryPrice: 1, ExitPrice: 2, Quantity: 1, PNL: 100},
		{ID: 2, Ticker: "MSFT", EntryPrice: 2, ExitPrice: 1, Quantity: 1, PNL: -100},
	}
	_, e := newTestHandler(t, positions)

	req := httptest.NewRequest(http.MethodPost, "/api/backtest/validate", strings.NewReader(`{"trials":25}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"significance"`)
	assert.Contains(t, rec.Body.String(), `"trials":25`)
}

func TestRunValidate_RejectsBadTrials(t *testing.T) {
	_, e := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/backtest/validate", strings.NewReader(`{"trials":-5}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoreConfidence(t *testing.T) {
	_, e := newTestHandler(t, nil)

	body := `{"ticker":"AAPL","direction":"bullish","sentiment_score":0.8}`
	req := httptest.NewRequest(http.MethodPost, "/api/confidence", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"grade"`)
	assert.Contains(t, rec.Body.String(), `"regimeAlignment"`)
}

func TestScoreConfidence_RequiresTicker(t *testing.T) {
	_, e := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/confidence", strings.NewReader(`{"direction":"bullish"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
