package repository

import (
	"backtest-engine/config"
	"backtest-engine/pkg/cache"
	"backtest-engine/pkg/logger"
)

type Repository struct {
	MissionControlRepo MissionControlRepository
	RegimeRepo         RegimeRepository
	DeliverableRepo    DeliverableRepository
}

func NewRepository(cfg *config.Config, inmemoryCache cache.Cache, log *logger.Logger) *Repository {
	return &Repository{
		MissionControlRepo: NewMissionControlRepository(cfg, inmemoryCache, log),
		RegimeRepo:         NewRegimeRepository(cfg, inmemoryCache, log),
		DeliverableRepo:    NewDeliverableRepository(cfg, log),
	}
}
