package service

import (
	"backtest-engine/config"
	"backtest-engine/internal/repository"
	"backtest-engine/pkg/logger"
)

type Service struct {
	BacktestService   BacktestService
	ConfidenceService ConfidenceService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
) *Service {
	generator := NewRandomBaselineGenerator(cfg, log)

	return &Service{
		BacktestService:   NewBacktestService(cfg, log, repo.MissionControlRepo, repo.DeliverableRepo, generator),
		ConfidenceService: NewConfidenceService(cfg, log, repo.MissionControlRepo, repo.RegimeRepo),
	}
}
