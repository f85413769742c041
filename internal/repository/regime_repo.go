package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"backtest-engine/config"
	"backtest-engine/internal/dto"
	"backtest-engine/pkg/cache"
	"backtest-engine/pkg/common"
	"backtest-engine/pkg/logger"
)

// RegimeRepository reads the current market regime signal. The signal is
// written by an external process to a local JSON file; a missing or corrupt
// file simply means "no regime data" to every consumer.
type RegimeRepository interface {
	GetCurrentSignal(ctx context.Context) (*dto.RegimeSignal, error)
}

type regimeRepository struct {
	cfg           *config.Config
	logger        *logger.Logger
	inmemoryCache cache.Cache
}

func NewRegimeRepository(cfg *config.Config, inmemoryCache cache.Cache, log *logger.Logger) RegimeRepository {
	return &regimeRepository{
		cfg:           cfg,
		logger:        log,
		inmemoryCache: inmemoryCache,
	}
}

func (r *regimeRepository) GetCurrentSignal(ctx context.Context) (*dto.RegimeSignal, error) {
	if cached, found := cache.GetTyped[*dto.RegimeSignal](r.inmemoryCache, common.KEY_REGIME_SIGNAL); found {
		return cached, nil
	}

	data, err := os.ReadFile(r.cfg.Backtest.RegimePath)
	if err != nil {
		return nil, fmt.Errorf("read regime signal: %w", err)
	}

	var signal dto.RegimeSignal
	if err := json.Unmarshal(data, &signal); err != nil {
		return nil, fmt.Errorf("decode regime signal: %w", err)
	}
	signal.Signal = strings.ToUpper(signal.Signal)

	r.inmemoryCache.Set(common.KEY_REGIME_SIGNAL, &signal, r.cfg.Cache.DefaultExpiration)
	r.logger.DebugContext(ctx, "Regime signal loaded",
		logger.StringField("signal", signal.Signal),
		logger.StringField("label", signal.Label),
	)
	return &signal, nil
}
