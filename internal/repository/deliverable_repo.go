package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"backtest-engine/config"
	"backtest-engine/pkg/logger"
)

// DeliverableRepository persists run artifacts as date-keyed JSON files.
type DeliverableRepository interface {
	SaveBacktest(ctx context.Context, date string, result interface{}) (string, error)
}

type deliverableRepository struct {
	cfg    *config.Config
	logger *logger.Logger
}

func NewDeliverableRepository(cfg *config.Config, log *logger.Logger) DeliverableRepository {
	return &deliverableRepository{cfg: cfg, logger: log}
}

func (r *deliverableRepository) SaveBacktest(ctx context.Context, date string, result interface{}) (string, error) {
	if err := os.MkdirAll(r.cfg.Backtest.DeliverablesDir, 0o755); err != nil {
		return "", fmt.Errorf("create deliverables dir: %w", err)
	}

	path := filepath.Join(r.cfg.Backtest.DeliverablesDir, fmt.Sprintf("%s-backtest.json", date))

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal deliverable: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write deliverable: %w", err)
	}

	r.logger.InfoContext(ctx, "Deliverable saved", logger.StringField("path", path))
	return path, nil
}
