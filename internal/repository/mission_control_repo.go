package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"backtest-engine/config"
	"backtest-engine/internal/dto"
	"backtest-engine/pkg/cache"
	"backtest-engine/pkg/common"
	"backtest-engine/pkg/httpclient"
	"backtest-engine/pkg/logger"

	"golang.org/x/time/rate"
)

// MissionControlRepository talks to the Mission Control API, the single
// source of truth for positions, portfolio, and the activity feed.
type MissionControlRepository interface {
	GetClosedPositions(ctx context.Context) ([]dto.ClosedPosition, error)
	GetPortfolio(ctx context.Context) (*dto.Portfolio, error)
	PostActivity(ctx context.Context, activity dto.ActivityPost) error
}

type missionControlRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	inmemoryCache  cache.Cache
	requestLimiter *rate.Limiter
	mu             sync.Mutex
}

func NewMissionControlRepository(cfg *config.Config, inmemoryCache cache.Cache, log *logger.Logger) MissionControlRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.MissionControl.MaxRequestPerMin)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &missionControlRepository{
		httpClient:     httpclient.New(cfg.MissionControl.BaseURL, cfg.MissionControl.Timeout, cfg.MissionControl.UserAgent),
		cfg:            cfg,
		logger:         log,
		inmemoryCache:  inmemoryCache,
		requestLimiter: requestLimiter,
	}
}

// GetClosedPositions fetches every closed position. Results are cached for
// the configured TTL so validate/report and the confidence scorer share one
// fetch per run window.
func (r *missionControlRepository) GetClosedPositions(ctx context.Context) ([]dto.ClosedPosition, error) {
	if cached, found := cache.GetTyped[[]dto.ClosedPosition](r.inmemoryCache, common.KEY_CLOSED_POSITIONS); found {
		r.logger.DebugContext(ctx, "Closed positions served from cache", logger.IntField("count", len(cached)))
		return cached, nil
	}

	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Get(ctx, "/positions", map[string]string{"status": "closed"}, nil)
	if err != nil {
		return nil, fmt.Errorf("get closed positions: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get closed positions: unexpected status %d", resp.StatusCode)
	}

	positions, err := decodePositions(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("get closed positions: %w", err)
	}

	r.inmemoryCache.Set(common.KEY_CLOSED_POSITIONS, positions, r.cfg.Cache.DefaultExpiration)
	r.logger.InfoContext(ctx, "Loaded closed positions", logger.IntField("count", len(positions)))
	return positions, nil
}

// decodePositions accepts both envelope versions of the endpoint: a bare
// array or a {data: [...]} wrapper.
func decodePositions(body []byte) ([]dto.ClosedPosition, error) {
	var bare []dto.ClosedPosition
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	var wrapped dto.PositionsResponse
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode positions payload: %w", err)
	}
	return wrapped.Data, nil
}

func (r *missionControlRepository) GetPortfolio(ctx context.Context) (*dto.Portfolio, error) {
	if cached, found := cache.GetTyped[*dto.Portfolio](r.inmemoryCache, common.KEY_PORTFOLIO); found {
		return cached, nil
	}

	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	var portfolio dto.Portfolio
	resp, err := r.httpClient.Get(ctx, "/portfolio", nil, &portfolio)
	if err != nil {
		return nil, fmt.Errorf("get portfolio: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get portfolio: unexpected status %d", resp.StatusCode)
	}

	r.inmemoryCache.Set(common.KEY_PORTFOLIO, &portfolio, r.cfg.Cache.DefaultExpiration)
	return &portfolio, nil
}

// PostActivity publishes to the activity feed. At-most-once by design: the
// caller treats failures as log-and-continue, never as a run failure.
func (r *missionControlRepository) PostActivity(ctx context.Context, activity dto.ActivityPost) error {
	if err := r.wait(ctx); err != nil {
		return err
	}

	resp, err := r.httpClient.Post(ctx, "/activity", activity, nil)
	if err != nil {
		return fmt.Errorf("post activity: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("post activity: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (r *missionControlRepository) wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.requestLimiter.Allow() {
		r.logger.WarnContext(ctx, "Mission Control request limit reached, throttling",
			logger.IntField("max_request_per_min", r.cfg.MissionControl.MaxRequestPerMin),
		)
	}
	return r.requestLimiter.Wait(ctx)
}
