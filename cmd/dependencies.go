package cmd

import (
	"backtest-engine/config"
	"backtest-engine/pkg/cache"
	"backtest-engine/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type AppDependency struct {
	cfg       *config.Config
	log       *logger.Logger
	validator *goValidator.Validate
	echo      *echo.Echo
	cache     cache.Cache
}

func NewAppDependency() (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if flagVerbose {
		level = "debug"
	}

	log, err := logger.New(level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}

	// Error-level entries that opt in via the alert hook field are mirrored
	// to the activity feed so operators see failed runs without tailing logs.
	activityURL := cfg.MissionControl.BaseURL + "/activity"
	log = &logger.Logger{Logger: log.Logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return logger.NewAlertCore(core, zapcore.ErrorLevel, activityURL, cfg.MissionControl.AgentName)
	}))}

	return &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: goValidator.New(),
		echo:      echo.New(),
		cache:     cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
	}, nil
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	return d.log.Sync()
}
